package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Lito08/FYPAS/internal/model"
)

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	// Upsert 按 (student, section, week) 新增或覆盖考勤
	Upsert(ctx context.Context, a *model.Attendance) error
	Get(ctx context.Context, studentID, sectionID string, week int) (*model.Attendance, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Attendance, error)
	ListByLecturer(ctx context.Context, lecturerID string) ([]model.Attendance, error)
	ListBySection(ctx context.Context, sectionID string) ([]model.Attendance, error)
	DeleteBySectionIDs(ctx context.Context, sectionIDs []string) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Upsert(ctx context.Context, a *model.Attendance) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "section_id"}, {Name: "week_number"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"date":            a.Date,
				"time_checked_in": a.TimeCheckedIn,
				"status":          a.Status,
				"method":          a.Method,
				"updated_by":      a.UpdatedBy,
				"updated_at":      gorm.Expr("NOW()"),
			}),
		}).
		Create(a).Error
}

func (r *attendanceRepo) Get(ctx context.Context, studentID, sectionID string, week int) (*model.Attendance, error) {
	var a model.Attendance
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND section_id = ? AND week_number = ?", studentID, sectionID, week).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attendanceRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Section.Course").
		Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) ListByLecturer(ctx context.Context, lecturerID string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Section.Course").
		Joins("JOIN sections ON sections.section_id = attendances.section_id").
		Where("sections.lecturer_id = ?", lecturerID).
		Order("attendances.date DESC").
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) ListBySection(ctx context.Context, sectionID string) ([]model.Attendance, error) {
	var list []model.Attendance
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("section_id = ?", sectionID).
		Order("week_number ASC").
		Find(&list).Error
	return list, err
}

func (r *attendanceRepo) DeleteBySectionIDs(ctx context.Context, sectionIDs []string) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("section_id IN ?", sectionIDs).
		Delete(&model.Attendance{}).Error
}
