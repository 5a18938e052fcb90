package scheduling

import "time"

// 考勤状态
const (
	StatusPresent = "Present"
	StatusLate    = "Late"
	StatusAbsent  = "Absent"
)

// ClassifyCheckIn 根据签到时刻判定出勤或迟到
// 课次开始后 grace 以内签到为 Present，之后为 Late
func ClassifyCheckIn(sessionStart, at time.Time, grace time.Duration) string {
	if at.After(sessionStart.Add(grace)) {
		return StatusLate
	}
	return StatusPresent
}

// SessionStart 合并课次日期与开始时间
func SessionStart(date time.Time, startTime string, loc *time.Location) (time.Time, error) {
	minute, err := ParseClock(startTime)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(date.Year(), date.Month(), date.Day(), minute/60, minute%60, 0, 0, loc), nil
}
