package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/Lito08/FYPAS/internal/repository"
	"github.com/Lito08/FYPAS/internal/scheduling"
)

// ── 课表日历 ────────────────────────────────────────────────
//
// 将学生已提交选课的课次导出为 iCalendar (RFC 5545)。
// 每个课次一个 VEVENT，UID 取课次 ID，便于客户端重复导入时去重。
// ─────────────────────────────────────────────────────────────

const calendarProductID = "-//FYPAS//Class Timetable//EN"

// CalendarService 日历导出接口
type CalendarService interface {
	// StudentCalendar 返回 .ics 内容与建议文件名
	StudentCalendar(ctx context.Context, studentID string) ([]byte, string, error)
}

type calendarService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, timezone string, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, loc: loadLocation(timezone, logger), logger: logger}
}

func (s *calendarService) StudentCalendar(ctx context.Context, studentID string) ([]byte, string, error) {
	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询学生选课失败", zap.String("student", studentID), zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Class Timetable")
	cal.SetXWRTimezone(s.loc.String())

	stamp := time.Now().UTC()
	for _, e := range enrollments {
		sec := e.Section
		if sec == nil || !sec.IsScheduled() {
			continue
		}
		sessions, err := s.repo.Session.ListBySection(ctx, sec.SectionID)
		if err != nil {
			s.logger.Error("查询课次失败", zap.String("section", sec.SectionID), zap.Error(err))
			return nil, "", err
		}

		description := sec.SectionType
		if sec.Course != nil {
			description = sec.Course.Name
		}
		if sec.Lecturer != nil {
			description += " / " + sec.Lecturer.FullName()
		}

		for _, cs := range sessions {
			start, err := scheduling.SessionStart(cs.Date, cs.StartTime, s.loc)
			if err != nil {
				s.logger.Warn("课次时间无效，跳过", zap.String("session", cs.SessionID), zap.Error(err))
				continue
			}
			event := cal.AddEvent(cs.SessionID)
			event.SetDtStampTime(stamp)
			event.SetStartAt(start)
			event.SetEndAt(start.Add(time.Duration(sec.Duration) * time.Minute))
			event.SetSummary(fmt.Sprintf("%s (W%d)", sec.Label(), cs.WeekNumber))
			event.SetDescription(description)
		}
	}

	return []byte(cal.Serialize()), "timetable.ics", nil
}
