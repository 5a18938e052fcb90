package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Lito08/FYPAS/internal/model"
)

// FaceStatusRepository 人脸识别开关数据访问接口
type FaceStatusRepository interface {
	Get(ctx context.Context, sectionID string) (*model.FaceRecognitionStatus, error)
	Upsert(ctx context.Context, status *model.FaceRecognitionStatus) error
	DeleteBySectionIDs(ctx context.Context, sectionIDs []string) error
}

type faceStatusRepo struct {
	db *gorm.DB
}

// NewFaceStatusRepo 创建 FaceStatusRepository 实例
func NewFaceStatusRepo(db *gorm.DB) FaceStatusRepository {
	return &faceStatusRepo{db: db}
}

func (r *faceStatusRepo) Get(ctx context.Context, sectionID string) (*model.FaceRecognitionStatus, error) {
	var st model.FaceRecognitionStatus
	err := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *faceStatusRepo) Upsert(ctx context.Context, status *model.FaceRecognitionStatus) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "section_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_enabled", "enabled_at", "updated_at"}),
		}).
		Create(status).Error
}

func (r *faceStatusRepo) DeleteBySectionIDs(ctx context.Context, sectionIDs []string) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("section_id IN ?", sectionIDs).
		Delete(&model.FaceRecognitionStatus{}).Error
}
