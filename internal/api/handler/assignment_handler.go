package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"peerhub/backend/internal/dto"
	"peerhub/backend/internal/service"
	"peerhub/backend/pkg/response"
)

// AssignmentHandler 评审分配模块 HTTP 处理器
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
	calendarSvc   service.CalendarService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService, calendarSvc service.CalendarService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc, calendarSvc: calendarSvc}
}

// ListMine 获取我的评审任务
// GET /api/v1/assignments/my
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	var req dto.ListAssignmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignments, total, err := h.assignmentSvc.ListMine(c.Request.Context(), userID, req.Status, req.GetPage(), req.GetPageSize())
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OKPage(c, assignments, total, req.GetPage(), req.GetPageSize())
}

// Get 获取评审任务详情
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "任务ID不能为空")
		return
	}

	assignment, err := h.assignmentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// Accept 接受评审任务
// POST /api/v1/assignments/:id/accept
func (h *AssignmentHandler) Accept(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "任务ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentSvc.Accept(c.Request.Context(), id, userID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// Reject 拒绝评审任务
// POST /api/v1/assignments/:id/reject
func (h *AssignmentHandler) Reject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "任务ID不能为空")
		return
	}

	var req dto.RejectAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentSvc.Reject(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.OK(c, assignment)
}

// SubmitReview 提交评审内容
// POST /api/v1/assignments/:id/review
func (h *AssignmentHandler) SubmitReview(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "任务ID不能为空")
		return
	}

	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	review, err := h.assignmentSvc.SubmitReview(c.Request.Context(), id, userID, &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}

	response.Created(c, review)
}

// Calendar 我的评审任务日历订阅
// GET /api/v1/assignments/my/calendar.ics
func (h *AssignmentHandler) Calendar(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	feed, err := h.calendarSvc.ReviewerFeed(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=review-assignments.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15002, "评审任务不存在")
	case errors.Is(err, service.ErrNotAssignedToUser):
		response.Forbidden(c, 15003, "该评审任务未分配给当前用户")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 15004, "该评审任务已被处理，无法执行此操作")
	case errors.Is(err, service.ErrRejectionReasonRequired):
		response.BadRequest(c, 15005, "拒绝评审需填写原因")
	case errors.Is(err, service.ErrReviewInvalid):
		response.BadRequest(c, 15006, "评审内容不合法")
	case errors.Is(err, service.ErrNoCandidates):
		response.Conflict(c, 15007, "无可用评审候选人")
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 14002, "作品不存在")
	default:
		response.InternalError(c)
	}
}
