package scheduling

import (
	"testing"
	"time"
)

func TestGenerateSessions_FourteenWeeks(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	ct := "09:00"

	plans, err := GenerateSessions(&start, &ct)
	if err != nil {
		t.Fatalf("GenerateSessions 应成功: %v", err)
	}
	if len(plans) != WeeksPerSemester {
		t.Fatalf("期望 14 次课，实际 %d", len(plans))
	}

	wantDates := []string{"2025-01-06", "2025-01-13", "2025-01-20"}
	for i, d := range wantDates {
		if got := plans[i].Date.Format("2006-01-02"); got != d {
			t.Errorf("第 %d 周期望 %s，实际 %s", i+1, d, got)
		}
	}
	last := plans[len(plans)-1]
	if last.WeekNumber != 14 || last.Date.Format("2006-01-02") != "2025-04-07" {
		t.Errorf("第 14 周错误: %+v", last)
	}
	for _, p := range plans {
		if p.StartTime != "09:00" {
			t.Errorf("第 %d 周开始时间应为 09:00，实际 %s", p.WeekNumber, p.StartTime)
		}
	}
}

func TestGenerateSessions_Unscheduled(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	plans, err := GenerateSessions(&start, nil)
	if err != nil || plans != nil {
		t.Errorf("未排课应返回空: plans=%v err=%v", plans, err)
	}
}

func TestGenerateSessions_NormalizesSeconds(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	ct := "14:30:00"
	plans, err := GenerateSessions(&start, &ct)
	if err != nil {
		t.Fatalf("GenerateSessions 应成功: %v", err)
	}
	if plans[0].StartTime != "14:30" {
		t.Errorf("期望 14:30，实际 %s", plans[0].StartTime)
	}
}

func TestValidWeek(t *testing.T) {
	if ValidWeek(0) || ValidWeek(15) || !ValidWeek(1) || !ValidWeek(14) {
		t.Error("周次范围应为 1..14")
	}
}
