package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Lito08/FYPAS/config"
	"github.com/Lito08/FYPAS/internal/authz"
	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/metrics"
	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/repository"
	"github.com/Lito08/FYPAS/internal/scheduling"
	"github.com/Lito08/FYPAS/pkg/jwt"
)

// ── 考勤模块业务错误 ──

var (
	ErrNotEnrolled        = errors.New("未选该分组，不能签到")
	ErrSessionNotFound    = errors.New("该周课次不存在")
	ErrNotSessionDay      = errors.New("只能在上课当天签到")
	ErrFaceInactive       = errors.New("人脸识别签到未开启或已过期")
	ErrInvalidQRToken     = errors.New("签到二维码无效或已过期")
	ErrCheckInTarget      = errors.New("人脸签到需提供分组与周次")
	ErrNotSectionLecturer = errors.New("仅该分组讲师可操作")
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	// CheckIn 学生通过人脸或二维码签到，同一周重复签到不会降级已有状态
	CheckIn(ctx context.Context, studentID string, req *dto.CheckInRequest) (*dto.AttendanceResponse, error)
	IssueQR(ctx context.Context, lecturerID, sectionID string, req *dto.IssueQRRequest) (*dto.QRTokenResponse, error)
	ToggleFace(ctx context.Context, lecturerID, sectionID string, req *dto.ToggleFaceRequest) (*dto.FaceStatusResponse, error)
	GetFaceStatus(ctx context.Context, sectionID string) (*dto.FaceStatusResponse, error)
	Manual(ctx context.Context, lecturerID, sectionID string, req *dto.ManualAttendanceRequest) (*dto.AttendanceResponse, error)
	Records(ctx context.Context, userID, role string) ([]dto.AttendanceResponse, error)
}

type attendanceService struct {
	cfg    *config.AttendanceConfig
	loc    *time.Location
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	logger *zap.Logger
	now    func() time.Time
}

// NewAttendanceService 创建 AttendanceService 实例
// timezone 无法解析时退回 UTC
func NewAttendanceService(cfg *config.AttendanceConfig, timezone string, repo *repository.Repository, jwtMgr *jwt.Manager, logger *zap.Logger) AttendanceService {
	return &attendanceService{
		cfg:    cfg,
		loc:    loadLocation(timezone, logger),
		repo:   repo,
		jwtMgr: jwtMgr,
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── CheckIn ──────────────────────

func (s *attendanceService) CheckIn(ctx context.Context, studentID string, req *dto.CheckInRequest) (*dto.AttendanceResponse, error) {
	sectionID, week := req.SectionID, req.WeekNumber
	now := s.now().In(s.loc)

	switch req.Method {
	case model.CheckInMethodQR:
		claims, err := s.jwtMgr.ParseCheckInToken(req.Token)
		if err != nil {
			return nil, ErrInvalidQRToken
		}
		sectionID, week = claims.SectionID, claims.WeekNumber
	case model.CheckInMethodFace:
		if sectionID == "" || !scheduling.ValidWeek(week) {
			return nil, ErrCheckInTarget
		}
		status, err := s.repo.FaceStatus.Get(ctx, sectionID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询人脸识别状态失败", zap.Error(err))
			return nil, err
		}
		if status == nil || status.EnabledAt == nil ||
			!scheduling.FaceActive(status.IsEnabled, *status.EnabledAt, now, s.cfg.FaceWindow) {
			return nil, ErrFaceInactive
		}
	default:
		return nil, ErrCheckInTarget
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, studentID, sectionID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	session, err := s.repo.Session.GetBySectionWeek(ctx, sectionID, week)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询课次失败", zap.Error(err))
		return nil, err
	}
	if session.Date.Format(dateLayout) != now.Format(dateLayout) {
		return nil, ErrNotSessionDay
	}

	start, err := scheduling.SessionStart(session.Date, session.StartTime, s.loc)
	if err != nil {
		return nil, ErrInvalidSchedule
	}
	grace := time.Duration(s.cfg.LateAfterMinutes) * time.Minute
	status := scheduling.ClassifyCheckIn(start, now, grace)

	existing, err := s.repo.Attendance.Get(ctx, studentID, sectionID, week)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}
	// 已出勤或已迟到的记录保持不变
	if existing != nil && existing.Status != scheduling.StatusAbsent {
		resp := toAttendanceResponse(existing)
		return &resp, nil
	}

	checkedIn := now.Format("15:04:05")
	a := &model.Attendance{
		StudentID:     studentID,
		SectionID:     sectionID,
		WeekNumber:    week,
		Date:          session.Date,
		TimeCheckedIn: &checkedIn,
		Status:        status,
		Method:        req.Method,
	}
	a.CreatedBy = &studentID
	a.UpdatedBy = &studentID
	if err := s.repo.Attendance.Upsert(ctx, a); err != nil {
		s.logger.Error("写入考勤记录失败", zap.Error(err))
		return nil, err
	}
	metrics.CheckIns.WithLabelValues(req.Method, status).Inc()

	resp := toAttendanceResponse(a)
	return &resp, nil
}

// ────────────────────── QR ──────────────────────

func (s *attendanceService) IssueQR(ctx context.Context, lecturerID, sectionID string, req *dto.IssueQRRequest) (*dto.QRTokenResponse, error) {
	sec, err := s.ownedSection(ctx, lecturerID, sectionID)
	if err != nil {
		return nil, err
	}
	if !sec.IsScheduled() {
		return nil, scheduling.ErrUnscheduledSection
	}
	if _, err := s.repo.Session.GetBySectionWeek(ctx, sectionID, req.WeekNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询课次失败", zap.Error(err))
		return nil, err
	}

	token, expiresAt, err := s.jwtMgr.GenerateCheckInToken(sectionID, req.WeekNumber)
	if err != nil {
		s.logger.Error("生成签到二维码失败", zap.Error(err))
		return nil, err
	}
	return &dto.QRTokenResponse{
		Token:      token,
		SectionID:  sectionID,
		WeekNumber: req.WeekNumber,
		ExpiresAt:  expiresAt.UTC().Format(timestampLayout),
	}, nil
}

// ────────────────────── Face ──────────────────────

func (s *attendanceService) ToggleFace(ctx context.Context, lecturerID, sectionID string, req *dto.ToggleFaceRequest) (*dto.FaceStatusResponse, error) {
	if _, err := s.ownedSection(ctx, lecturerID, sectionID); err != nil {
		return nil, err
	}

	now := s.now()
	status := &model.FaceRecognitionStatus{SectionID: sectionID, IsEnabled: req.Enabled, UpdatedAt: now}
	if req.Enabled {
		status.EnabledAt = &now
	}
	if err := s.repo.FaceStatus.Upsert(ctx, status); err != nil {
		s.logger.Error("更新人脸识别状态失败", zap.Error(err))
		return nil, err
	}
	s.logger.Info("切换人脸识别", zap.String("section", sectionID), zap.Bool("enabled", req.Enabled))
	return s.faceResponse(status), nil
}

func (s *attendanceService) GetFaceStatus(ctx context.Context, sectionID string) (*dto.FaceStatusResponse, error) {
	status, err := s.repo.FaceStatus.Get(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.FaceStatusResponse{SectionID: sectionID}, nil
		}
		s.logger.Error("查询人脸识别状态失败", zap.Error(err))
		return nil, err
	}
	return s.faceResponse(status), nil
}

// faceResponse 过期在读取时计算
func (s *attendanceService) faceResponse(st *model.FaceRecognitionStatus) *dto.FaceStatusResponse {
	resp := &dto.FaceStatusResponse{SectionID: st.SectionID}
	if st.EnabledAt == nil {
		return resp
	}
	resp.Enabled = scheduling.FaceActive(st.IsEnabled, *st.EnabledAt, s.now(), s.cfg.FaceWindow)
	if resp.Enabled {
		window := s.cfg.FaceWindow
		if window <= 0 {
			window = scheduling.DefaultFaceWindow
		}
		enabledAt := st.EnabledAt.UTC().Format(timestampLayout)
		expiresAt := st.EnabledAt.Add(window).UTC().Format(timestampLayout)
		resp.EnabledAt = &enabledAt
		resp.ExpiresAt = &expiresAt
	}
	return resp
}

// ────────────────────── Manual ──────────────────────

func (s *attendanceService) Manual(ctx context.Context, lecturerID, sectionID string, req *dto.ManualAttendanceRequest) (*dto.AttendanceResponse, error) {
	if _, err := s.ownedSection(ctx, lecturerID, sectionID); err != nil {
		return nil, err
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, req.StudentID, sectionID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}
	session, err := s.repo.Session.GetBySectionWeek(ctx, sectionID, req.WeekNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询课次失败", zap.Error(err))
		return nil, err
	}

	a := &model.Attendance{
		StudentID:  req.StudentID,
		SectionID:  sectionID,
		WeekNumber: req.WeekNumber,
		Date:       session.Date,
		Status:     req.Status,
		Method:     model.CheckInMethodManual,
	}
	if req.Status != scheduling.StatusAbsent {
		t := s.now().In(s.loc).Format("15:04:05")
		a.TimeCheckedIn = &t
	}
	a.CreatedBy = &lecturerID
	a.UpdatedBy = &lecturerID
	if err := s.repo.Attendance.Upsert(ctx, a); err != nil {
		s.logger.Error("写入考勤记录失败", zap.Error(err))
		return nil, err
	}
	metrics.CheckIns.WithLabelValues(model.CheckInMethodManual, req.Status).Inc()

	resp := toAttendanceResponse(a)
	return &resp, nil
}

// ────────────────────── Records ──────────────────────

func (s *attendanceService) Records(ctx context.Context, userID, role string) ([]dto.AttendanceResponse, error) {
	var (
		list []model.Attendance
		err  error
	)
	switch authz.Role(role) {
	case authz.RoleLecturer:
		list, err = s.repo.Attendance.ListByLecturer(ctx, userID)
	case authz.RoleStudent:
		list, err = s.repo.Attendance.ListByStudent(ctx, userID)
	default:
		return nil, ErrNoPermission
	}
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceResponse, 0, len(list))
	for i := range list {
		result = append(result, toAttendanceResponse(&list[i]))
	}
	return result, nil
}

// ── 内部工具 ──

// ownedSection 查询分组并确认调用者为其讲师
func (s *attendanceService) ownedSection(ctx context.Context, lecturerID, sectionID string) (*model.Section, error) {
	sec, err := s.repo.Section.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		s.logger.Error("查询分组失败", zap.String("id", sectionID), zap.Error(err))
		return nil, err
	}
	if sec.LecturerID == nil || *sec.LecturerID != lecturerID {
		return nil, ErrNotSectionLecturer
	}
	return sec, nil
}

func loadLocation(name string, logger *zap.Logger) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("时区无效，使用 UTC", zap.String("timezone", name), zap.Error(err))
		return time.UTC
	}
	return loc
}
