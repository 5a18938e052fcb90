package scheduling

import "time"

// WeeksPerSemester 每学期周数
const WeeksPerSemester = 14

// SessionPlan 一次具体课次
type SessionPlan struct {
	WeekNumber int
	Date       time.Time
	StartTime  string // "HH:MM"
}

// GenerateSessions 将每周时段展开为 14 次课
// 未排课时返回 nil；日期 = 开课日期 + 7*(周次-1) 天
func GenerateSessions(startDate *time.Time, classTime *string) ([]SessionPlan, error) {
	if startDate == nil || classTime == nil || *classTime == "" {
		return nil, nil
	}
	clock, err := NormalizeClock(*classTime)
	if err != nil {
		return nil, err
	}

	base := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	plans := make([]SessionPlan, 0, WeeksPerSemester)
	for w := 1; w <= WeeksPerSemester; w++ {
		plans = append(plans, SessionPlan{
			WeekNumber: w,
			Date:       base.AddDate(0, 0, 7*(w-1)),
			StartTime:  clock,
		})
	}
	return plans, nil
}

// ValidWeek 周次是否在 1..14
func ValidWeek(w int) bool {
	return w >= 1 && w <= WeeksPerSemester
}
