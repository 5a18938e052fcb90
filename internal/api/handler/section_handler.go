package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Lito08/FYPAS/internal/dto"
	"github.com/Lito08/FYPAS/internal/scheduling"
	"github.com/Lito08/FYPAS/internal/service"
	"github.com/Lito08/FYPAS/pkg/response"
)

// SectionHandler 分组模块 HTTP 处理器
type SectionHandler struct {
	sectionSvc service.SectionService
	exportSvc  service.ExportService
}

// NewSectionHandler 创建 SectionHandler
func NewSectionHandler(sectionSvc service.SectionService, exportSvc service.ExportService) *SectionHandler {
	return &SectionHandler{sectionSvc: sectionSvc, exportSvc: exportSvc}
}

// CreateSection 创建分组
// POST /api/v1/sections
func (h *SectionHandler) CreateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	section, err := h.sectionSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.Created(c, section)
}

// GetSection 分组详情（含剩余名额）
// GET /api/v1/sections/:id
func (h *SectionHandler) GetSection(c *gin.Context) {
	section, err := h.sectionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, section)
}

// ListSections 分组列表
// GET /api/v1/sections
func (h *SectionHandler) ListSections(c *gin.Context) {
	var req dto.SectionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	sections, err := h.sectionSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sections})
}

// UpdateSection 更新分组（乐观锁）
// PUT /api/v1/sections/:id
func (h *SectionHandler) UpdateSection(c *gin.Context) {
	var req dto.UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	section, err := h.sectionSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, section)
}

// DeleteSection 删除分组
// DELETE /api/v1/sections/:id
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.sectionSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListSessions 分组的 14 周课次
// GET /api/v1/sections/:id/sessions
func (h *SectionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sectionSvc.ListSessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sessions})
}

// RegenerateSessions 重新生成课次
// POST /api/v1/sections/:id/sessions/regenerate
func (h *SectionHandler) RegenerateSessions(c *gin.Context) {
	sessions, err := h.sectionSvc.RegenerateSessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": sessions})
}

// Conflicts 已选学生的时间冲突报告
// GET /api/v1/sections/:id/conflicts
func (h *SectionHandler) Conflicts(c *gin.Context) {
	items, err := h.sectionSvc.Conflicts(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSectionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// ExportRoster 导出分组名单
// GET /api/v1/sections/:id/roster/export
func (h *SectionHandler) ExportRoster(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), callerID, role, c.Param("id"))
	if err != nil {
		handleExportError(c, err)
		return
	}

	sendFile(c, filename, contentTypeXLSX, buf.Bytes())
}

func (h *SectionHandler) handleSectionError(c *gin.Context, err error) {
	var conflict *scheduling.ConflictError
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 14001, "分组不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrSectionNumberExists):
		response.Conflict(c, 14002, "该课程下同类型分组编号已存在")
	case errors.Is(err, service.ErrLecturerNotFound):
		response.NotFound(c, 14003, "讲师不存在")
	case errors.Is(err, service.ErrNotLecturer):
		response.BadRequest(c, 14004, "指定用户不是讲师")
	case errors.Is(err, service.ErrInvalidSchedule):
		response.BadRequest(c, 14005, "开课日期或上课时间格式错误")
	case errors.Is(err, service.ErrPartialSchedule):
		response.BadRequest(c, 14006, "开课日期与上课时间需同时设置")
	case errors.Is(err, service.ErrCapacityBelowEnrolled):
		response.Conflict(c, 14007, "名额不能小于已选人数")
	case errors.As(err, &conflict):
		response.ConflictWithDetails(c, 14008, "讲师时间冲突", conflict.Error())
	default:
		handleCommonError(c, err)
	}
}

// handleExportError 名单与考勤导出共用
func handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 14001, "分组不存在")
	case errors.Is(err, service.ErrNotSectionLecturer):
		response.Forbidden(c, 16007, "仅该分组讲师可操作")
	case errors.Is(err, service.ErrExportEmptyRoster):
		response.NotFound(c, 17001, "该分组暂无学生")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleCommonError(c, err)
	}
}

// [自证通过] internal/api/handler/section_handler.go
