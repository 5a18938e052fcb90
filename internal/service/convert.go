package service

import (
	"time"

	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/model"
	"github.com/Lito08/FYPAS/internal/scheduling"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	dateLayout      = "2006-01-02"
)

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:            u.UserID,
		MatricID:      u.MatricID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		PersonalEmail: u.PersonalEmail,
		Role:          u.Role,
		FirstLogin:    u.FirstLogin,
		CreatedAt:     u.CreatedAt.UTC().Format(timestampLayout),
	}
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{ID: u.UserID, MatricID: u.MatricID, Name: u.FullName()}
}

func toCourseBrief(c *model.Course) *dto.CourseBrief {
	if c == nil {
		return nil
	}
	return &dto.CourseBrief{ID: c.CourseID, Code: c.Code, Name: c.Name}
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:               c.CourseID,
		Code:             c.Code,
		Name:             c.Name,
		Description:      c.Description,
		LectureRequired:  c.LectureRequired,
		TutorialRequired: c.TutorialRequired,
		CreatedAt:        c.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:        c.UpdatedAt.UTC().Format(timestampLayout),
	}
}

func toSectionResponse(sec *model.Section, enrolled int64) *dto.SectionResponse {
	resp := &dto.SectionResponse{
		ID:            sec.SectionID,
		Course:        toCourseBrief(sec.Course),
		SectionType:   sec.SectionType,
		SectionNumber: sec.SectionNumber,
		Lecturer:      toUserBrief(sec.Lecturer),
		Duration:      sec.Duration,
		MaxStudents:   sec.MaxStudents,
		Enrolled:      enrolled,
		Remaining:     scheduling.Remaining(enrolled, int64(sec.MaxStudents)),
		Scheduled:     sec.IsScheduled(),
		Version:       sec.Version,
	}
	if sec.StartDate != nil {
		d := sec.StartDate.Format(dateLayout)
		resp.StartDate = &d
		resp.Weekday = sec.StartDate.Weekday().String()
	}
	if sec.ClassTime != nil {
		if ct, err := scheduling.NormalizeClock(*sec.ClassTime); err == nil {
			resp.ClassTime = &ct
		}
	}
	return resp
}

func toSessionItems(sessions []model.ClassSession) []dto.SessionItem {
	items := make([]dto.SessionItem, 0, len(sessions))
	for _, s := range sessions {
		start := s.StartTime
		if ct, err := scheduling.NormalizeClock(s.StartTime); err == nil {
			start = ct
		}
		items = append(items, dto.SessionItem{
			ID:         s.SessionID,
			WeekNumber: s.WeekNumber,
			Date:       s.Date.Format(dateLayout),
			StartTime:  start,
		})
	}
	return items
}

func toAttendanceResponse(a *model.Attendance) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:            a.AttendanceID,
		Student:       toUserBrief(a.Student),
		SectionID:     a.SectionID,
		WeekNumber:    a.WeekNumber,
		Date:          a.Date.Format(dateLayout),
		TimeCheckedIn: a.TimeCheckedIn,
		Status:        a.Status,
		Method:        a.Method,
	}
	if a.Section != nil {
		resp.Section = a.Section.Label()
		resp.Course = toCourseBrief(a.Section.Course)
	}
	return resp
}

// parseDate 解析 "2006-01-02"
func parseDate(v string) (time.Time, error) {
	return time.Parse(dateLayout, v)
}

// sectionSlots 将分组列表转换为排课时段，跳过时间数据损坏的记录
func sectionSlots(sections []model.Section) []scheduling.Slot {
	slots := make([]scheduling.Slot, 0, len(sections))
	for i := range sections {
		slot, err := sections[i].Slot()
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}
