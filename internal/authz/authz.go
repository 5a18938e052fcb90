// Package authz 定义角色与操作权限表
// 每个路由在边界处按操作检查一次，handler 内不再做角色判断
package authz

// Role 用户角色
type Role string

const (
	RoleSuperadmin Role = "Superadmin"
	RoleAdmin      Role = "Admin"
	RoleLecturer   Role = "Lecturer"
	RoleStudent    Role = "Student"
)

// ParseRole 校验角色字符串
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleSuperadmin, RoleAdmin, RoleLecturer, RoleStudent:
		return r, true
	}
	return "", false
}

// MatricPrefix 学号前缀：管理员类 A，讲师 L，学生 S
func (r Role) MatricPrefix() string {
	switch r {
	case RoleLecturer:
		return "L"
	case RoleStudent:
		return "S"
	default:
		return "A"
	}
}

// Operation 受保护的业务操作
type Operation string

const (
	OpUserCreate Operation = "user.create"
	OpUserRead   Operation = "user.read"
	OpUserDelete Operation = "user.delete"

	OpCourseRead  Operation = "course.read"
	OpCourseWrite Operation = "course.write"

	OpSectionRead       Operation = "section.read"
	OpSectionWrite      Operation = "section.write"
	OpSectionRegenerate Operation = "section.regenerate"
	OpSectionConflicts  Operation = "section.conflicts"
	OpRosterExport      Operation = "section.roster_export"

	OpEnrollmentManage Operation = "enrollment.manage"
	OpEnrollmentSelf   Operation = "enrollment.self"

	OpCartUse Operation = "cart.use"

	OpAttendanceCheckIn    Operation = "attendance.check_in"
	OpAttendanceQRIssue    Operation = "attendance.qr_issue"
	OpAttendanceFaceToggle Operation = "attendance.face_toggle"
	OpAttendanceManual     Operation = "attendance.manual"
	OpAttendanceRecords    Operation = "attendance.records"
	OpAttendanceExport     Operation = "attendance.export"
)

var (
	admins         = []Role{RoleSuperadmin, RoleAdmin}
	staff          = []Role{RoleSuperadmin, RoleAdmin, RoleLecturer}
	everyone       = []Role{RoleSuperadmin, RoleAdmin, RoleLecturer, RoleStudent}
	lecturerOnly   = []Role{RoleLecturer}
	studentOnly    = []Role{RoleStudent}
	lecturerAndStu = []Role{RoleLecturer, RoleStudent}
)

// table 操作 → 允许的角色
var table = map[Operation][]Role{
	OpUserCreate: admins,
	OpUserRead:   admins,
	OpUserDelete: admins,

	OpCourseRead:  everyone,
	OpCourseWrite: admins,

	OpSectionRead:       everyone,
	OpSectionWrite:      admins,
	OpSectionRegenerate: admins,
	OpSectionConflicts:  admins,
	OpRosterExport:      staff,

	OpEnrollmentManage: admins,
	OpEnrollmentSelf:   studentOnly,

	OpCartUse: studentOnly,

	OpAttendanceCheckIn:    studentOnly,
	OpAttendanceQRIssue:    lecturerOnly,
	OpAttendanceFaceToggle: lecturerOnly,
	OpAttendanceManual:     lecturerOnly,
	OpAttendanceRecords:    lecturerAndStu,
	OpAttendanceExport:     staff,
}

// Allowed 判断角色能否执行操作；未登记的操作一律拒绝
func Allowed(role Role, op Operation) bool {
	for _, r := range table[op] {
		if r == role {
			return true
		}
	}
	return false
}

// CanManageRole 创建或删除用户时的角色层级
// 只有超级管理员能管理管理员；超级管理员账号只能通过运维命令创建
func CanManageRole(actor, target Role) bool {
	switch target {
	case RoleSuperadmin:
		return false
	case RoleAdmin:
		return actor == RoleSuperadmin
	case RoleLecturer, RoleStudent:
		return actor == RoleSuperadmin || actor == RoleAdmin
	}
	return false
}
