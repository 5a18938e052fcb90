package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/internal/authz"
	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/metrics"
	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/repository"
	"github.com/Lito08/FYPAS/internal/scheduling"
)

// ── 选课模块业务错误 ──

var (
	ErrEnrollmentNotFound = errors.New("选课记录不存在")
	ErrStudentNotFound    = errors.New("学生不存在")
	ErrNotStudent         = errors.New("指定用户不是学生")
)

// EnrollmentService 已提交选课业务接口
type EnrollmentService interface {
	// AdminEnroll 管理员直接为学生选课，名额与冲突均为硬校验
	AdminEnroll(ctx context.Context, req *dto.AdminEnrollRequest, callerID string) (*dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, id string, callerID string) error
	List(ctx context.Context, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error)
	ListMine(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger}
}

// ────────────────────── AdminEnroll ──────────────────────

func (s *enrollmentService) AdminEnroll(ctx context.Context, req *dto.AdminEnrollRequest, callerID string) (*dto.EnrollmentResponse, error) {
	student, err := getStudent(ctx, s.repo, s.logger, req.StudentID)
	if err != nil {
		return nil, err
	}

	var (
		enrollment *model.Enrollment
		section    model.Section
		enrolled   int64
	)
	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		// 先锁分组再锁学生，与 Finalize 保持相同加锁顺序
		locked, err := txRepo.Section.LockByIDs(ctx, []string{req.SectionID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return ErrSectionNotFound
		}
		section = locked[0]
		if err := txRepo.User.LockByID(ctx, student.UserID); err != nil {
			return err
		}

		exists, err := txRepo.Enrollment.Exists(ctx, student.UserID, section.SectionID)
		if err != nil {
			return err
		}
		if exists {
			return scheduling.ErrDuplicateEnrollment
		}

		candidate, err := section.Slot()
		if err != nil {
			return ErrInvalidSchedule
		}
		if !candidate.Scheduled {
			return scheduling.ErrUnscheduledSection
		}

		enrolled, err = txRepo.Enrollment.CountBySection(ctx, section.SectionID)
		if err != nil {
			return err
		}
		if err := scheduling.CheckCapacity(enrolled, int64(section.MaxStudents)); err != nil {
			return err
		}

		current, err := enrolledSlots(ctx, txRepo, student.UserID)
		if err != nil {
			return err
		}
		if err := scheduling.CheckConflict(candidate, current); err != nil {
			return err
		}

		enrollment = &model.Enrollment{StudentID: student.UserID, SectionID: section.SectionID}
		enrollment.CreatedBy = &callerID
		enrollment.UpdatedBy = &callerID
		return txRepo.Enrollment.Create(ctx, enrollment)
	})
	metrics.EnrollmentOps.WithLabelValues("admin_enroll", resultLabel(err)).Inc()
	if err != nil {
		if resultLabel(err) == metrics.ResultError {
			s.logger.Error("手动选课失败", zap.String("student", student.MatricID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("手动选课",
		zap.String("student", student.MatricID),
		zap.String("section", section.Label()),
		zap.String("by", callerID))

	enrollment.Student = student
	enrollment.Section = &section
	resp := toEnrollmentResponse(enrollment, enrolled+1)
	return &resp, nil
}

// ────────────────────── Unenroll ──────────────────────

func (s *enrollmentService) Unenroll(ctx context.Context, id string, callerID string) error {
	e, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		s.logger.Error("查询选课记录失败", zap.String("id", id), zap.Error(err))
		return err
	}

	err = s.repo.Enrollment.Delete(ctx, id)
	metrics.EnrollmentOps.WithLabelValues("unenroll", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("退课失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("退课",
		zap.String("student", e.StudentID),
		zap.String("section", e.SectionID),
		zap.String("by", callerID))
	return nil
}

// ────────────────────── List ──────────────────────

func (s *enrollmentService) List(ctx context.Context, req *dto.EnrollmentListRequest) ([]dto.EnrollmentResponse, int64, error) {
	list, total, err := s.repo.Enrollment.List(ctx, repository.EnrollmentFilter{
		StudentID: req.StudentID,
		SectionID: req.SectionID,
		CourseID:  req.CourseID,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出选课记录失败", zap.Error(err))
		return nil, 0, err
	}
	resp, err := s.withCounts(ctx, list)
	return resp, total, err
}

func (s *enrollmentService) ListMine(ctx context.Context, studentID string) ([]dto.EnrollmentResponse, error) {
	list, err := s.repo.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询学生选课失败", zap.String("student", studentID), zap.Error(err))
		return nil, err
	}
	return s.withCounts(ctx, list)
}

func (s *enrollmentService) withCounts(ctx context.Context, list []model.Enrollment) ([]dto.EnrollmentResponse, error) {
	ids := make([]string, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.SectionID)
	}
	counts, err := s.repo.Enrollment.CountBySections(ctx, ids)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(list))
	for i := range list {
		result = append(result, toEnrollmentResponse(&list[i], counts[list[i].SectionID]))
	}
	return result, nil
}

// ── 内部工具 ──

func toEnrollmentResponse(e *model.Enrollment, enrolled int64) dto.EnrollmentResponse {
	resp := dto.EnrollmentResponse{
		ID:        e.EnrollmentID,
		Student:   toUserBrief(e.Student),
		CreatedAt: e.CreatedAt.UTC().Format(timestampLayout),
	}
	if e.Section != nil {
		resp.Section = toSectionResponse(e.Section, enrolled)
	}
	return resp
}

// getStudent 查询并确认用户为学生
func getStudent(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.User, error) {
	u, err := repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if u.Role != string(authz.RoleStudent) {
		return nil, ErrNotStudent
	}
	return u, nil
}

// enrolledSlots 学生已提交选课的时段
func enrolledSlots(ctx context.Context, repo *repository.Repository, studentID string) ([]scheduling.Slot, error) {
	list, err := repo.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	secs := make([]model.Section, 0, len(list))
	for _, e := range list {
		if e.Section != nil {
			secs = append(secs, *e.Section)
		}
	}
	return sectionSlots(secs), nil
}

// resultLabel 将错误归类为指标标签
func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, scheduling.ErrScheduleConflict):
		return metrics.ResultConflict
	case errors.Is(err, scheduling.ErrSectionFull):
		return metrics.ResultFull
	case errors.Is(err, scheduling.ErrMissingRequiredSection):
		return metrics.ResultMissing
	case errors.Is(err, scheduling.ErrDuplicateEnrollment),
		errors.Is(err, scheduling.ErrUnscheduledSection),
		errors.Is(err, scheduling.ErrCartEmpty),
		errors.Is(err, ErrSectionNotFound),
		errors.Is(err, ErrInvalidSchedule),
		errors.Is(err, ErrNoPermission),
		errors.Is(err, ErrCartNotFound):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
