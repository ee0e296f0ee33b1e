package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"peerhub/backend/internal/dto"
	"peerhub/backend/internal/service"
	"peerhub/backend/pkg/response"
)

// SubmissionHandler 作品提交模块 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// Create 创建作品草稿
// POST /api/v1/submissions
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionSvc.CreateDraft(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.Created(c, submission)
}

// Submit 提交作品进入评审队列
// POST /api/v1/submissions/:id/submit
func (h *SubmissionHandler) Submit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "作品ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionSvc.Submit(c.Request.Context(), id, userID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, submission)
}

// Get 获取作品详情（含评审反馈与覆盖统计）
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "作品ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	detail, err := h.submissionSvc.Get(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, detail)
}

// ListMine 获取我的作品列表
// GET /api/v1/submissions/my
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	submissions, total, err := h.submissionSvc.ListMine(c.Request.Context(), userID, req.GetPage(), req.GetPageSize())
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OKPage(c, submissions, total, req.GetPage(), req.GetPageSize())
}

func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 14002, "作品不存在")
	case errors.Is(err, service.ErrSubmissionNotOwner):
		response.Forbidden(c, 14003, "无权操作他人的作品")
	case errors.Is(err, service.ErrSubmissionNotDraft):
		response.Conflict(c, 14004, "作品已提交，不能重复提交")
	case errors.Is(err, service.ErrProjectNotAvailable):
		response.BadRequest(c, 14005, "项目不存在或已下线")
	default:
		response.InternalError(c)
	}
}
