package scheduling

import (
	"errors"
	"testing"
	"time"
)

func TestCartRow_State(t *testing.T) {
	cases := []struct {
		name string
		row  CartRow
		want CartState
	}{
		{"empty", CartRow{}, CartEmpty},
		{"lecture only, tutorial optional", CartRow{LectureSectionID: "L"}, CartComplete},
		{"lecture only, tutorial required", CartRow{LectureSectionID: "L", TutorialRequired: true}, CartPartiallyFilled},
		{"tutorial only", CartRow{TutorialSectionID: "T", TutorialRequired: true}, CartPartiallyFilled},
		{"both", CartRow{LectureSectionID: "L", TutorialSectionID: "T", TutorialRequired: true}, CartComplete},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.row.State(); got != c.want {
				t.Errorf("期望 %s，实际 %s", c.want, got)
			}
		})
	}
}

func TestCartRow_Validate(t *testing.T) {
	if err := (CartRow{TutorialSectionID: "T"}).Validate(); !errors.Is(err, ErrMissingLecture) {
		t.Errorf("期望 ErrMissingLecture，实际: %v", err)
	}
	err := (CartRow{LectureSectionID: "L", TutorialRequired: true}).Validate()
	if !errors.Is(err, ErrMissingTutorial) || !errors.Is(err, ErrMissingRequiredSection) {
		t.Errorf("期望 ErrMissingTutorial 且属于 ErrMissingRequiredSection，实际: %v", err)
	}
}

func TestValidateCart_AllOrNothing(t *testing.T) {
	if err := ValidateCart(nil); !errors.Is(err, ErrCartEmpty) {
		t.Errorf("期望 ErrCartEmpty，实际: %v", err)
	}

	rows := []CartRow{
		{CourseID: "c1", CourseCode: "CS101", LectureSectionID: "L1"},
		{CourseID: "c2", CourseCode: "CS102", LectureSectionID: "L2", TutorialRequired: true},
	}
	err := ValidateCart(rows)
	var re *RowError
	if !errors.As(err, &re) || re.CourseID != "c2" {
		t.Fatalf("期望 c2 行失败，实际: %v", err)
	}
	if !errors.Is(err, ErrMissingRequiredSection) {
		t.Errorf("行错误应可识别为 ErrMissingRequiredSection: %v", err)
	}
}

// 学生已选周二 10:00-11:00 讲课，再选另一门课周二 10:30 的辅导
func TestCheckPick_CrossCourseConflict(t *testing.T) {
	lecture := slotOn("L1", time.Tuesday, "10:00", 60)
	tutorial := slotOn("T1", time.Tuesday, "10:30", 30)

	err := CheckPick(tutorial, PickContext{OtherCart: []Slot{lecture}})
	if !errors.Is(err, ErrScheduleConflict) {
		t.Errorf("期望 ErrScheduleConflict，实际: %v", err)
	}
}

func TestCheckPick_SameRowAndEnrolled(t *testing.T) {
	lecture := slotOn("L1", time.Wednesday, "14:00", 120)
	tutorial := slotOn("T1", time.Wednesday, "15:00", 60)
	if err := CheckPick(tutorial, PickContext{SameRowOther: &lecture}); !errors.Is(err, ErrScheduleConflict) {
		t.Errorf("同一行讲课与辅导冲突应被拒绝，实际: %v", err)
	}

	enrolled := slotOn("E1", time.Friday, "08:00", 60)
	pick := slotOn("L2", time.Friday, "08:30", 60)
	if err := CheckPick(pick, PickContext{Enrolled: []Slot{enrolled}}); !errors.Is(err, ErrScheduleConflict) {
		t.Errorf("与已选课程冲突应被拒绝，实际: %v", err)
	}

	free := slotOn("L3", time.Friday, "09:00", 60)
	if err := CheckPick(free, PickContext{Enrolled: []Slot{enrolled}}); err != nil {
		t.Errorf("首尾相接不应冲突: %v", err)
	}
}

func TestCheckPick_Unscheduled(t *testing.T) {
	if err := CheckPick(Slot{SectionID: "U"}, PickContext{}); !errors.Is(err, ErrUnscheduledSection) {
		t.Errorf("期望 ErrUnscheduledSection，实际: %v", err)
	}
}
