package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"peerhub/backend/internal/service"
	"peerhub/backend/pkg/response"
)

// AdminHandler 运营管理模块 HTTP 处理器
// 承载不走用户自助路径的管理操作：手动扫描、取消/重新分配、覆盖补齐
type AdminHandler struct {
	assignmentSvc service.AssignmentService
	coverageSvc   service.CoverageService
	sweeperSvc    service.SweeperService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(assignmentSvc service.AssignmentService, coverageSvc service.CoverageService, sweeperSvc service.SweeperService) *AdminHandler {
	return &AdminHandler{
		assignmentSvc: assignmentSvc,
		coverageSvc:   coverageSvc,
		sweeperSvc:    sweeperSvc,
	}
}

// Sweep 手动触发一轮过期扫描
// POST /api/v1/admin/sweep
func (h *AdminHandler) Sweep(c *gin.Context) {
	result, err := h.sweeperSvc.Sweep(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// CancelAssignment 取消评审任务
// POST /api/v1/admin/assignments/:id/cancel
func (h *AdminHandler) CancelAssignment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "任务ID不能为空")
		return
	}

	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentSvc.Cancel(c.Request.Context(), id, actorID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, assignment)
}

// ReassignAssignment 取消评审任务并立即重新评估覆盖
// POST /api/v1/admin/assignments/:id/reassign
func (h *AdminHandler) ReassignAssignment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "任务ID不能为空")
		return
	}

	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	status, err := h.assignmentSvc.Reassign(c.Request.Context(), id, actorID)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, status)
}

// EnsureCoverage 手动触发作品的覆盖评估与补齐
// POST /api/v1/admin/submissions/:id/ensure-coverage
func (h *AdminHandler) EnsureCoverage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "作品ID不能为空")
		return
	}

	status, err := h.coverageSvc.EnsureCoverage(c.Request.Context(), id)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, status)
}

// ListSubmissionAssignments 查看作品的全部评审分配
// GET /api/v1/admin/submissions/:id/assignments
func (h *AdminHandler) ListSubmissionAssignments(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "作品ID不能为空")
		return
	}

	assignments, err := h.assignmentSvc.ListBySubmission(c.Request.Context(), id)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}

func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15002, "评审任务不存在")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 15004, "该评审任务已被处理，无法执行此操作")
	case errors.Is(err, service.ErrNoCandidates):
		response.Conflict(c, 15007, "无可用评审候选人")
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 14002, "作品不存在")
	case errors.Is(err, service.ErrSubmissionNotSubmitted):
		response.Conflict(c, 14006, "作品尚未提交，无法发起评审")
	default:
		response.InternalError(c)
	}
}
