package validation

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	ClassTime string `validate:"omitempty,hhmm"`
	StartDate string `validate:"omitempty,date"`
	MatricID  string `validate:"omitempty,matric"`
	Duration  int    `validate:"min=30,max=300"`
}

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := RegisterOn(v); err != nil {
		t.Fatalf("注册校验规则失败: %v", err)
	}
	return v
}

func TestHHMM(t *testing.T) {
	v := newValidator(t)
	cases := map[string]bool{
		"09:00": true,
		"23:59": true,
		"00:00": true,
		"24:00": false,
		"9:00":  false,
		"09:60": false,
		"abc":   false,
	}
	for in, want := range cases {
		err := v.Struct(sample{ClassTime: in, Duration: 60})
		if (err == nil) != want {
			t.Errorf("hhmm(%q) 期望 %v，实际错误: %v", in, want, err)
		}
	}
}

func TestDateAndMatric(t *testing.T) {
	v := newValidator(t)

	if err := v.Struct(sample{StartDate: "2026-02-30", Duration: 60}); err == nil {
		t.Error("非法日期应校验失败")
	}
	if err := v.Struct(sample{StartDate: "2026-02-02", MatricID: "S1234567", Duration: 60}); err != nil {
		t.Errorf("合法输入不应失败: %v", err)
	}
	if err := v.Struct(sample{MatricID: "X1234567", Duration: 60}); err == nil {
		t.Error("非法学号前缀应校验失败")
	}
}

func TestDescribe(t *testing.T) {
	v := newValidator(t)
	err := v.Struct(sample{ClassTime: "25:00", Duration: 10})
	msg := Describe(err)
	if !strings.Contains(msg, "ClassTime") || !strings.Contains(msg, "Duration") {
		t.Errorf("描述应包含所有字段: %s", msg)
	}
}
