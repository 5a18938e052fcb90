package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Lito08/FYPAS/internal/api/middleware"
	"github.com/Lito08/FYPAS/internal/scheduling"
	"github.com/Lito08/FYPAS/internal/service"
	pkgerrors "github.com/Lito08/FYPAS/pkg/errors"
	"github.com/Lito08/FYPAS/pkg/response"
	"github.com/Lito08/FYPAS/pkg/validation"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Course     *CourseHandler
	Section    *SectionHandler
	Enrollment *EnrollmentHandler
	Cart       *CartHandler
	Attendance *AttendanceHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, secureCookie bool) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, secureCookie),
		User:       NewUserHandler(svc.User),
		Course:     NewCourseHandler(svc.Course, svc.Section),
		Section:    NewSectionHandler(svc.Section, svc.Export),
		Enrollment: NewEnrollmentHandler(svc.Enrollment, svc.Calendar),
		Cart:       NewCartHandler(svc.Cart),
		Attendance: NewAttendanceHandler(svc.Attendance, svc.Export),
	}
}

// ── 公共错误映射 ──

// handleCommonError 基础设施错误与未知错误
func handleCommonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		response.ServiceUnavailable(c)
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, "数据已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}

// handleEnrollmentRuleError 选课规则错误，选课车、提交与管理员选课共用
// 返回 false 表示不是选课规则错误
func handleEnrollmentRuleError(c *gin.Context, err error) bool {
	var conflict *scheduling.ConflictError
	var rowErr *scheduling.RowError
	switch {
	case errors.As(err, &conflict):
		response.ConflictWithDetails(c, 15001, "时间冲突", conflict.Error())
	case errors.Is(err, scheduling.ErrScheduleConflict):
		response.Conflict(c, 15001, "时间冲突")
	case errors.Is(err, scheduling.ErrSectionFull):
		response.Conflict(c, 15002, "该分组名额已满")
	case errors.As(err, &rowErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, 15003, "缺少必选分组", rowErr.Error())
	case errors.Is(err, scheduling.ErrMissingRequiredSection):
		response.BadRequest(c, 15003, "缺少必选分组")
	case errors.Is(err, scheduling.ErrDuplicateEnrollment):
		response.Conflict(c, 15004, "已选过该分组")
	case errors.Is(err, scheduling.ErrUnscheduledSection):
		response.BadRequest(c, 15005, "该分组尚未排课")
	case errors.Is(err, scheduling.ErrCartEmpty):
		response.BadRequest(c, 15006, "选课车为空")
	default:
		return false
	}
	return true
}

// bindError 参数绑定或校验失败
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		_ = c.Error(err)
		response.Error(c, http.StatusRequestEntityTooLarge, middleware.CodeBodyTooLarge, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", validation.Describe(err))
}

// sendFile 以附件形式下发文件
func sendFile(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// [自证通过] internal/api/handler/handler.go
