package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/repository"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound   = errors.New("课程不存在")
	ErrCourseCodeExists = errors.New("课程代码已存在")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureCodeFree(ctx, code, ""); err != nil {
		return nil, err
	}

	course := &model.Course{
		Code:             code,
		Name:             req.Name,
		Description:      req.Description,
		LectureRequired:  req.LectureRequired,
		TutorialRequired: req.TutorialRequired,
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	// 课程与默认分组在同一事务内创建
	err := inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Course.Create(ctx, course); err != nil {
			s.logger.Error("创建课程失败", zap.Error(err))
			return err
		}
		return s.syncDefaultSections(ctx, txRepo, course, callerID)
	})
	if err != nil {
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error) {
	courses, total, err := s.repo.Course.List(ctx, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code != course.Code {
			if err := s.ensureCodeFree(ctx, code, course.CourseID); err != nil {
				return nil, err
			}
			course.Code = code
		}
	}
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.LectureRequired != nil {
		course.LectureRequired = *req.LectureRequired
	}
	if req.TutorialRequired != nil {
		course.TutorialRequired = *req.TutorialRequired
	}
	course.UpdatedBy = &callerID

	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Course.Update(ctx, course); err != nil {
			s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
			return err
		}
		return s.syncDefaultSections(ctx, txRepo, course, callerID)
	})
	if err != nil {
		return nil, err
	}

	return toCourseResponse(course), nil
}

// syncDefaultSections 按必选标记维护默认分组
// 标记开启：确保存在 1 号分组（未排课，60 分钟）；标记关闭：删除该类型全部分组
func (s *courseService) syncDefaultSections(ctx context.Context, repo *repository.Repository, course *model.Course, callerID string) error {
	flags := []struct {
		sectionType string
		required    bool
	}{
		{model.SectionTypeLecture, course.LectureRequired},
		{model.SectionTypeTutorial, course.TutorialRequired},
	}

	for _, f := range flags {
		if f.required {
			_, err := repo.Section.GetByCourseTypeNumber(ctx, course.CourseID, f.sectionType, 1)
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Error("查询默认分组失败", zap.Error(err))
				return err
			}
			sec := &model.Section{
				CourseID:      course.CourseID,
				SectionType:   f.sectionType,
				SectionNumber: 1,
				Duration:      model.DefaultSectionDuration,
				MaxStudents:   model.DefaultSectionMaxStudents,
			}
			sec.CreatedBy = &callerID
			sec.UpdatedBy = &callerID
			if err := repo.Section.Create(ctx, sec); err != nil {
				s.logger.Error("创建默认分组失败", zap.String("type", f.sectionType), zap.Error(err))
				return err
			}
			continue
		}

		sections, err := repo.Section.List(ctx, repository.SectionFilter{CourseID: course.CourseID, SectionType: f.sectionType})
		if err != nil {
			s.logger.Error("查询分组失败", zap.Error(err))
			return err
		}
		if len(sections) == 0 {
			continue
		}
		ids := make([]string, 0, len(sections))
		for _, sec := range sections {
			ids = append(ids, sec.SectionID)
		}
		if err := purgeSections(ctx, repo, ids); err != nil {
			s.logger.Error("删除分组失败", zap.String("type", f.sectionType), zap.Error(err))
			return err
		}
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

// Delete 显式按顺序删除：选课车 → 考勤 → 人脸开关 → 选课 → 课次 → 分组 → 课程
func (s *courseService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getCourse(ctx, id); err != nil {
		return err
	}

	sections, err := s.repo.Section.ListByCourse(ctx, id)
	if err != nil {
		s.logger.Error("查询课程分组失败", zap.String("id", id), zap.Error(err))
		return err
	}
	ids := make([]string, 0, len(sections))
	for _, sec := range sections {
		ids = append(ids, sec.SectionID)
	}

	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := txRepo.Cart.DeleteByCourse(ctx, id); err != nil {
			return err
		}
		if err := purgeSections(ctx, txRepo, ids); err != nil {
			return err
		}
		return txRepo.Course.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("删除课程", zap.String("id", id), zap.Int("sections", len(ids)), zap.String("by", callerID))
	return nil
}

func (s *courseService) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

func (s *courseService) ensureCodeFree(ctx context.Context, code, selfID string) error {
	existing, err := s.repo.Course.GetByCode(ctx, code)
	if err == nil && existing.CourseID != selfID {
		return ErrCourseCodeExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程代码失败", zap.Error(err))
		return err
	}
	return nil
}

// purgeSections 删除分组及其全部从属数据，需在事务内调用
// 顺序：选课车行 → 考勤 → 人脸开关 → 选课 → 课次 → 分组
func purgeSections(ctx context.Context, repo *repository.Repository, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := repo.Cart.DeleteBySectionIDs(ctx, ids); err != nil {
		return err
	}
	if err := repo.Attendance.DeleteBySectionIDs(ctx, ids); err != nil {
		return err
	}
	if err := repo.FaceStatus.DeleteBySectionIDs(ctx, ids); err != nil {
		return err
	}
	if err := repo.Enrollment.DeleteBySectionIDs(ctx, ids); err != nil {
		return err
	}
	if err := repo.Session.DeleteBySectionIDs(ctx, ids); err != nil {
		return err
	}
	for _, id := range ids {
		if err := repo.Section.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// [自证通过] internal/service/course_service.go
