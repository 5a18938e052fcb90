package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Interval 半开时间区间 [Start, Start+Duration)
type Interval struct {
	Start    time.Time
	Duration time.Duration
}

// End 区间结束时刻（不含）
func (i Interval) End() time.Time {
	return i.Start.Add(i.Duration)
}

// Overlaps 判断两个区间是否重叠
// 严格半开：首尾相接不算冲突；时长为 0 的区间与任何区间都不重叠
func Overlaps(a, b Interval) bool {
	if a.Duration <= 0 || b.Duration <= 0 {
		return false
	}
	return a.Start.Before(b.End()) && b.Start.Before(a.End())
}

// ── 每周时间窗 ──

// weekAnchor 参考周的周一 00:00（2001-01-01 为周一）
var weekAnchor = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

const week = 7 * 24 * time.Hour

// Slot 分组的每周固定上课时段
// Scheduled 为 false 时表示未排课，不参与任何冲突比较
type Slot struct {
	SectionID string
	Label     string
	Scheduled bool
	Weekday   time.Weekday
	Minute    int // 当天第几分钟开始
	Duration  int // 分钟
}

// NewSlot 由开课日期与上课时间构造时段
// startDate 或 classTime 为空时返回未排课时段
func NewSlot(sectionID, label string, startDate *time.Time, classTime *string, durationMinutes int) (Slot, error) {
	s := Slot{SectionID: sectionID, Label: label, Duration: durationMinutes}
	if startDate == nil || classTime == nil || *classTime == "" {
		return s, nil
	}
	minute, err := ParseClock(*classTime)
	if err != nil {
		return s, err
	}
	s.Scheduled = true
	s.Weekday = startDate.Weekday()
	s.Minute = minute
	return s, nil
}

// Window 将时段投影到参考周上的区间
func (s Slot) Window() Interval {
	dayOffset := (int(s.Weekday) + 6) % 7 // 周一为 0
	start := weekAnchor.
		Add(time.Duration(dayOffset) * 24 * time.Hour).
		Add(time.Duration(s.Minute) * time.Minute)
	return Interval{Start: start, Duration: time.Duration(s.Duration) * time.Minute}
}

// OverlapsWeekly 判断两个每周时段是否冲突
// 跨越周日午夜的时段会额外与下一周比较
func OverlapsWeekly(a, b Slot) bool {
	if !a.Scheduled || !b.Scheduled {
		return false
	}
	wa, wb := a.Window(), b.Window()
	if Overlaps(wa, wb) {
		return true
	}
	shiftedA := Interval{Start: wa.Start.Add(week), Duration: wa.Duration}
	shiftedB := Interval{Start: wb.Start.Add(week), Duration: wb.Duration}
	return Overlaps(shiftedA, wb) || Overlaps(wa, shiftedB)
}

func (s Slot) describe() string {
	if !s.Scheduled {
		return fmt.Sprintf("%s（未排课）", s.Label)
	}
	return fmt.Sprintf("%s（%s %s，%d 分钟）", s.Label, s.Weekday, FormatClock(s.Minute), s.Duration)
}

// ── 时间解析 ──

// ParseClock 解析 "HH:MM" 或 "HH:MM:SS"，返回当天分钟数
// 秒会被忽略，数据库 TIME 列读出的值带秒
func ParseClock(v string) (int, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, ErrInvalidClock
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 || len(parts[0]) != 2 {
		return 0, ErrInvalidClock
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, ErrInvalidClock
	}
	return h*60 + m, nil
}

// FormatClock 将当天分钟数格式化为 "HH:MM"
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// NormalizeClock 统一为 "HH:MM"
func NormalizeClock(v string) (string, error) {
	m, err := ParseClock(v)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}
