package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/metrics"
	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/repository"
	"github.com/Lito08/FYPAS/internal/scheduling"
)

// ── 选课车业务错误 ──

var (
	ErrCartNotFound = errors.New("选课车记录不存在")
	ErrCartChanged  = errors.New("选课车已变更，请刷新后重试")
)

// CartService 选课车业务接口
// 选课车只记录意向，不占名额；提交时整体生效或整体失败
type CartService interface {
	Get(ctx context.Context, studentID string) (*dto.CartResponse, error)
	AddPick(ctx context.Context, studentID string, req *dto.AddPickRequest) (*dto.CartResponse, error)
	Remove(ctx context.Context, studentID, cartID string) error
	Finalize(ctx context.Context, studentID string) (*dto.FinalizeResponse, error)
}

type cartService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCartService 创建 CartService 实例
func NewCartService(repo *repository.Repository, logger *zap.Logger) CartService {
	return &cartService{repo: repo, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *cartService) Get(ctx context.Context, studentID string) (*dto.CartResponse, error) {
	carts, err := s.repo.Cart.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询选课车失败", zap.String("student", studentID), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(carts)*2)
	for _, c := range carts {
		ids = append(ids, cartRow(&c).SectionIDs()...)
	}
	counts, err := s.repo.Enrollment.CountBySections(ctx, ids)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.CartResponse{Rows: make([]dto.CartRowResponse, 0, len(carts))}
	ready := len(carts) > 0
	for i := range carts {
		c := &carts[i]
		row := cartRow(c)
		item := dto.CartRowResponse{
			ID:      c.CartID,
			State:   string(row.State()),
			Missing: row.Missing(),
		}
		if brief := toCourseBrief(c.Course); brief != nil {
			item.Course = *brief
		}
		if c.LectureSection != nil {
			item.LectureSection = toSectionResponse(c.LectureSection, counts[c.LectureSection.SectionID])
		}
		if c.TutorialSection != nil {
			item.TutorialSection = toSectionResponse(c.TutorialSection, counts[c.TutorialSection.SectionID])
		}
		if row.State() != scheduling.CartComplete {
			ready = false
		}
		resp.Rows = append(resp.Rows, item)
	}
	resp.ReadyToSubmit = ready
	return resp, nil
}

// ────────────────────── AddPick ──────────────────────

// AddPick 校验顺序：存在且已排课 → 未重复选课 → 有名额 → 无时间冲突 → 写入槽位
func (s *cartService) AddPick(ctx context.Context, studentID string, req *dto.AddPickRequest) (*dto.CartResponse, error) {
	err := s.addPick(ctx, studentID, req.SectionID)
	metrics.EnrollmentOps.WithLabelValues("add_pick", resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, studentID)
}

func (s *cartService) addPick(ctx context.Context, studentID, sectionID string) error {
	section, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectionNotFound
		}
		s.logger.Error("查询分组失败", zap.String("id", sectionID), zap.Error(err))
		return err
	}
	candidate, err := section.Slot()
	if err != nil {
		return ErrInvalidSchedule
	}
	if !candidate.Scheduled {
		return scheduling.ErrUnscheduledSection
	}

	exists, err := s.repo.Enrollment.Exists(ctx, studentID, sectionID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return err
	}
	if exists {
		return scheduling.ErrDuplicateEnrollment
	}

	enrolled, err := s.repo.Enrollment.CountBySection(ctx, sectionID)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.Error(err))
		return err
	}
	if err := scheduling.CheckCapacity(enrolled, int64(section.MaxStudents)); err != nil {
		return err
	}

	carts, err := s.repo.Cart.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询选课车失败", zap.Error(err))
		return err
	}
	current, err := enrolledSlots(ctx, s.repo, studentID)
	if err != nil {
		s.logger.Error("查询学生选课失败", zap.Error(err))
		return err
	}

	pc := scheduling.PickContext{Enrolled: current}
	var row *model.EnrollmentCart
	for i := range carts {
		c := &carts[i]
		if c.CourseID == section.CourseID {
			row = c
			// 同行只与另一槽位比较，被替换的同槽位旧选择不参与
			other := c.TutorialSection
			if section.SectionType == model.SectionTypeTutorial {
				other = c.LectureSection
			}
			if other != nil {
				if slot, err := other.Slot(); err == nil {
					pc.SameRowOther = &slot
				}
			}
			continue
		}
		pc.OtherCart = append(pc.OtherCart, cartSlots(c)...)
	}
	if err := scheduling.CheckPick(candidate, pc); err != nil {
		return err
	}

	if row == nil {
		row = &model.EnrollmentCart{StudentID: studentID, CourseID: section.CourseID}
		setPick(row, section)
		row.CreatedBy = &studentID
		row.UpdatedBy = &studentID
		if err := s.repo.Cart.Create(ctx, row); err != nil {
			s.logger.Error("创建选课车失败", zap.Error(err))
			return err
		}
		return nil
	}

	setPick(row, section)
	row.UpdatedBy = &studentID
	if err := s.repo.Cart.UpdatePicks(ctx, row); err != nil {
		s.logger.Error("更新选课车失败", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Remove ──────────────────────

func (s *cartService) Remove(ctx context.Context, studentID, cartID string) error {
	c, err := s.repo.Cart.GetByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		s.logger.Error("查询选课车失败", zap.String("id", cartID), zap.Error(err))
		return err
	}
	if c.StudentID != studentID {
		return ErrNoPermission
	}
	if err := s.repo.Cart.Delete(ctx, cartID); err != nil {
		s.logger.Error("删除选课车失败", zap.String("id", cartID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Finalize ──────────────────────

// Finalize 提交全部选课车
// 先校验所有行完整，再在单个事务中锁定分组与学生，重新检查名额与冲突后写入
func (s *cartService) Finalize(ctx context.Context, studentID string) (*dto.FinalizeResponse, error) {
	created, err := s.finalize(ctx, studentID)
	metrics.EnrollmentOps.WithLabelValues("finalize", resultLabel(err)).Inc()
	if err != nil {
		if resultLabel(err) == metrics.ResultError {
			s.logger.Error("提交选课失败", zap.String("student", studentID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("提交选课", zap.String("student", studentID), zap.Int("count", len(created)))
	resp := &dto.FinalizeResponse{Enrollments: make([]dto.EnrollmentResponse, 0, len(created))}
	for i := range created {
		resp.Enrollments = append(resp.Enrollments, toEnrollmentResponse(&created[i], 0))
	}
	return resp, nil
}

func (s *cartService) finalize(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	carts, err := s.repo.Cart.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	rows := cartRows(carts)
	if err := scheduling.ValidateCart(rows); err != nil {
		return nil, err
	}

	var ids []string
	for _, r := range rows {
		ids = append(ids, r.SectionIDs()...)
	}

	var created []model.Enrollment
	err = inTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		locked, err := txRepo.Section.LockByIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(locked) != len(ids) {
			return ErrSectionNotFound
		}
		if err := txRepo.User.LockByID(ctx, studentID); err != nil {
			return err
		}

		// 加锁后重读选课车，期间被修改则整体放弃
		fresh, err := txRepo.Cart.ListByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		freshRows := cartRows(fresh)
		if err := scheduling.ValidateCart(freshRows); err != nil {
			return err
		}
		if !sameSections(freshRows, ids) {
			return ErrCartChanged
		}

		byID := make(map[string]*model.Section, len(locked))
		for i := range locked {
			byID[locked[i].SectionID] = &locked[i]
		}
		counts, err := txRepo.Enrollment.CountBySections(ctx, ids)
		if err != nil {
			return err
		}
		accepted, err := enrolledSlots(ctx, txRepo, studentID)
		if err != nil {
			return err
		}

		// 全部校验通过后才写入
		for _, id := range ids {
			sec := byID[id]
			exists, err := txRepo.Enrollment.Exists(ctx, studentID, id)
			if err != nil {
				return err
			}
			if exists {
				return scheduling.ErrDuplicateEnrollment
			}
			candidate, err := sec.Slot()
			if err != nil {
				return ErrInvalidSchedule
			}
			if !candidate.Scheduled {
				return scheduling.ErrUnscheduledSection
			}
			if err := scheduling.CheckCapacity(counts[id], int64(sec.MaxStudents)); err != nil {
				return err
			}
			if err := scheduling.CheckConflict(candidate, accepted); err != nil {
				return err
			}
			accepted = append(accepted, candidate)
		}

		for _, id := range ids {
			e := model.Enrollment{StudentID: studentID, SectionID: id, Section: byID[id]}
			e.CreatedBy = &studentID
			e.UpdatedBy = &studentID
			if err := txRepo.Enrollment.Create(ctx, &e); err != nil {
				return err
			}
			created = append(created, e)
		}
		return txRepo.Cart.DeleteByStudent(ctx, studentID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ── 内部工具 ──

func setPick(c *model.EnrollmentCart, sec *model.Section) {
	id := sec.SectionID
	if sec.SectionType == model.SectionTypeTutorial {
		c.TutorialSectionID = &id
		c.TutorialSection = sec
		return
	}
	c.LectureSectionID = &id
	c.LectureSection = sec
}

func cartRow(c *model.EnrollmentCart) scheduling.CartRow {
	row := scheduling.CartRow{CourseID: c.CourseID}
	if c.Course != nil {
		row.CourseCode = c.Course.Code
		row.TutorialRequired = c.Course.TutorialRequired
	}
	if c.LectureSectionID != nil {
		row.LectureSectionID = *c.LectureSectionID
	}
	if c.TutorialSectionID != nil {
		row.TutorialSectionID = *c.TutorialSectionID
	}
	return row
}

func cartRows(carts []model.EnrollmentCart) []scheduling.CartRow {
	rows := make([]scheduling.CartRow, 0, len(carts))
	for i := range carts {
		rows = append(rows, cartRow(&carts[i]))
	}
	return rows
}

func cartSlots(c *model.EnrollmentCart) []scheduling.Slot {
	var secs []model.Section
	if c.LectureSection != nil {
		secs = append(secs, *c.LectureSection)
	}
	if c.TutorialSection != nil {
		secs = append(secs, *c.TutorialSection)
	}
	return sectionSlots(secs)
}

func sameSections(rows []scheduling.CartRow, ids []string) bool {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	n := 0
	for _, r := range rows {
		for _, id := range r.SectionIDs() {
			if !want[id] {
				return false
			}
			n++
		}
	}
	return n == len(ids)
}
