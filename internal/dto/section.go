package dto

// ── 分组模块 DTO ──

// CreateSectionRequest 创建分组
// start_date 与 class_time 同时提供时视为已排课，并生成 14 周课次
type CreateSectionRequest struct {
	CourseID      string  `json:"course_id"      binding:"required,uuid"`
	SectionType   string  `json:"section_type"   binding:"required,oneof=Lecture Tutorial"`
	SectionNumber int     `json:"section_number" binding:"omitempty,min=1"`
	LecturerID    *string `json:"lecturer_id"    binding:"omitempty,uuid"`
	StartDate     *string `json:"start_date"     binding:"omitempty,date"`
	ClassTime     *string `json:"class_time"     binding:"omitempty,hhmm"`
	Duration      int     `json:"duration"       binding:"omitempty,min=30,max=300"`
	MaxStudents   int     `json:"max_students"   binding:"omitempty,min=1,max=1000"`
}

// UpdateSectionRequest 更新分组
// 空字符串表示清除排课或讲师
type UpdateSectionRequest struct {
	SectionNumber *int    `json:"section_number" binding:"omitempty,min=1"`
	LecturerID    *string `json:"lecturer_id"    binding:"omitempty,max=36"`
	StartDate     *string `json:"start_date"     binding:"omitempty,max=10"`
	ClassTime     *string `json:"class_time"     binding:"omitempty,max=8"`
	Duration      *int    `json:"duration"       binding:"omitempty,min=30,max=300"`
	MaxStudents   *int    `json:"max_students"   binding:"omitempty,min=1,max=1000"`
	Version       int     `json:"version"        binding:"required,min=1"`
}

// SectionListRequest 分组列表查询参数
type SectionListRequest struct {
	CourseID    string `form:"course_id"    binding:"omitempty,uuid"`
	LecturerID  string `form:"lecturer_id"  binding:"omitempty,uuid"`
	SectionType string `form:"section_type" binding:"omitempty,oneof=Lecture Tutorial"`
}

// SectionResponse 分组响应
type SectionResponse struct {
	ID            string        `json:"id"`
	Course        *CourseBrief  `json:"course,omitempty"`
	SectionType   string        `json:"section_type"`
	SectionNumber int           `json:"section_number"`
	Lecturer      *UserBrief    `json:"lecturer,omitempty"`
	StartDate     *string       `json:"start_date,omitempty"`
	ClassTime     *string       `json:"class_time,omitempty"`
	Weekday       string        `json:"weekday,omitempty"`
	Duration      int           `json:"duration"`
	MaxStudents   int           `json:"max_students"`
	Enrolled      int64         `json:"enrolled"`
	Remaining     int64         `json:"remaining"`
	Scheduled     bool          `json:"scheduled"`
	Version       int           `json:"version"`
	Sessions      []SessionItem `json:"sessions,omitempty"`
}

// UserBrief 用户简要信息
type UserBrief struct {
	ID       string `json:"id"`
	MatricID string `json:"matric_id"`
	Name     string `json:"name"`
}

// SessionItem 课次
type SessionItem struct {
	ID         string `json:"id"`
	WeekNumber int    `json:"week_number"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
}

// ConflictItem 冲突描述
type ConflictItem struct {
	StudentID   string `json:"student_id,omitempty"`
	MatricID    string `json:"matric_id,omitempty"`
	SectionID   string `json:"section_id"`
	Section     string `json:"section"`
	OtherID     string `json:"other_section_id"`
	OtherLabel  string `json:"other_section"`
	Description string `json:"description"`
}

// [自证通过] internal/dto/section.go
