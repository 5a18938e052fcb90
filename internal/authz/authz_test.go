package authz

import "testing"

func TestAllowed(t *testing.T) {
	cases := []struct {
		role Role
		op   Operation
		want bool
	}{
		{RoleStudent, OpCartUse, true},
		{RoleAdmin, OpCartUse, false},
		{RoleLecturer, OpAttendanceQRIssue, true},
		{RoleStudent, OpAttendanceQRIssue, false},
		{RoleSuperadmin, OpCourseWrite, true},
		{RoleLecturer, OpCourseWrite, false},
		{RoleStudent, OpCourseRead, true},
		{RoleAdmin, OpAttendanceRecords, false},
		{RoleStudent, Operation("unknown.op"), false},
	}
	for _, c := range cases {
		if got := Allowed(c.role, c.op); got != c.want {
			t.Errorf("Allowed(%s, %s) 期望 %v，实际 %v", c.role, c.op, c.want, got)
		}
	}
}

func TestEveryOperationHasRoles(t *testing.T) {
	for op, roles := range table {
		if len(roles) == 0 {
			t.Errorf("操作 %s 未配置任何角色", op)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole("Lecturer"); !ok || r != RoleLecturer {
		t.Errorf("ParseRole(Lecturer) 失败: %v %v", r, ok)
	}
	if _, ok := ParseRole("lecturer"); ok {
		t.Error("角色区分大小写")
	}
}

func TestMatricPrefix(t *testing.T) {
	want := map[Role]string{
		RoleSuperadmin: "A",
		RoleAdmin:      "A",
		RoleLecturer:   "L",
		RoleStudent:    "S",
	}
	for r, p := range want {
		if got := r.MatricPrefix(); got != p {
			t.Errorf("%s 前缀期望 %s，实际 %s", r, p, got)
		}
	}
}

func TestCanManageRole(t *testing.T) {
	if !CanManageRole(RoleAdmin, RoleStudent) {
		t.Error("管理员应能创建学生")
	}
	if CanManageRole(RoleAdmin, RoleAdmin) {
		t.Error("管理员不能创建管理员")
	}
	if !CanManageRole(RoleSuperadmin, RoleAdmin) {
		t.Error("超级管理员应能创建管理员")
	}
	if CanManageRole(RoleSuperadmin, RoleSuperadmin) {
		t.Error("超级管理员账号不能通过接口创建")
	}
}
