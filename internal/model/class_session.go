package model

import "time"

// ClassSession 每周课次表，对应 class_sessions
type ClassSession struct {
	SessionID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	SectionID  string    `gorm:"type:uuid;not null"                             json:"section_id"`
	WeekNumber int       `gorm:"type:smallint;not null"                         json:"week_number"`
	Date       time.Time `gorm:"type:date;not null"                             json:"date"`
	StartTime  string    `gorm:"type:time;not null"                             json:"start_time"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (ClassSession) TableName() string { return "class_sessions" }
