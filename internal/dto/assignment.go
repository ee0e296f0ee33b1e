package dto

import "peerhub/backend/internal/model"

// ── 评审分配模块 DTO ──

// RejectAssignmentRequest 拒绝评审请求
type RejectAssignmentRequest struct {
	Reason string `json:"reason" binding:"required,min=2,max=500"`
}

// SubmitReviewRequest 提交评审内容请求
// OverallScore 用指针区分"未填写"与合法的 0 分
type SubmitReviewRequest struct {
	OverallScore     *int           `json:"overall_score"      binding:"required,min=0,max=100"`
	CriteriaScores   map[string]int `json:"criteria_scores"    binding:"required"`
	Strengths        string         `json:"strengths"          binding:"omitempty,max=5000"`
	Improvements     string         `json:"improvements"       binding:"omitempty,max=5000"`
	Suggestions      string         `json:"suggestions"        binding:"omitempty,max=5000"`
	TimeSpentMinutes int            `json:"time_spent_minutes" binding:"omitempty,min=0"`
}

// ListAssignmentsRequest 我的评审任务查询参数
type ListAssignmentsRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=assigned accepted completed rejected expired cancelled"`
	PaginationRequest
}

// AssignmentResponse 评审分配响应
type AssignmentResponse struct {
	AssignmentID    string           `json:"assignment_id"`
	SubmissionID    string           `json:"submission_id"`
	Submission      *SubmissionBrief `json:"submission,omitempty"`
	ReviewerID      *string          `json:"reviewer_id,omitempty"`
	Reviewer        *ReviewerBrief   `json:"reviewer,omitempty"`
	AssignmentType  string           `json:"assignment_type"`
	Priority        int              `json:"priority"`
	Status          string           `json:"status"`
	DueDate         string           `json:"due_date"`
	AcceptedAt      *string          `json:"accepted_at,omitempty"`
	CompletedAt     *string          `json:"completed_at,omitempty"`
	RejectedAt      *string          `json:"rejected_at,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	ExpiredAt       *string          `json:"expired_at,omitempty"`
	CancelledAt     *string          `json:"cancelled_at,omitempty"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
}

// SubmissionBrief 作品简要信息（嵌入分配响应）
type SubmissionBrief struct {
	SubmissionID string        `json:"submission_id"`
	Status       string        `json:"status"`
	Project      *ProjectBrief `json:"project,omitempty"`
}

// ReviewerBrief 评审人简要信息
type ReviewerBrief struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// ReviewResponse 评审内容响应
type ReviewResponse struct {
	ReviewID         string         `json:"review_id"`
	AssignmentID     string         `json:"assignment_id"`
	SubmissionID     string         `json:"submission_id"`
	ReviewerID       string         `json:"reviewer_id"`
	OverallScore     int            `json:"overall_score"`
	CriteriaScores   map[string]int `json:"criteria_scores"`
	Strengths        string         `json:"strengths,omitempty"`
	Improvements     string         `json:"improvements,omitempty"`
	Suggestions      string         `json:"suggestions,omitempty"`
	TimeSpentMinutes int            `json:"time_spent_minutes"`
	CreatedAt        string         `json:"created_at"`
}

// ToAssignmentResponse 模型 → 响应
func ToAssignmentResponse(a *model.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		AssignmentID:    a.AssignmentID,
		SubmissionID:    a.SubmissionID,
		ReviewerID:      a.ReviewerID,
		AssignmentType:  a.AssignmentType,
		Priority:        a.Priority,
		Status:          a.Status,
		DueDate:         formatTime(a.DueDate),
		AcceptedAt:      formatTimePtr(a.AcceptedAt),
		CompletedAt:     formatTimePtr(a.CompletedAt),
		RejectedAt:      formatTimePtr(a.RejectedAt),
		RejectionReason: a.RejectionReason,
		ExpiredAt:       formatTimePtr(a.ExpiredAt),
		CancelledAt:     formatTimePtr(a.CancelledAt),
		CreatedAt:       formatTime(a.CreatedAt),
		UpdatedAt:       formatTime(a.UpdatedAt),
	}
	if a.Submission != nil {
		resp.Submission = &SubmissionBrief{
			SubmissionID: a.Submission.SubmissionID,
			Status:       a.Submission.Status,
			Project:      ToProjectBrief(a.Submission.Project),
		}
	}
	if a.Reviewer != nil {
		resp.Reviewer = &ReviewerBrief{
			UserID: a.Reviewer.UserID,
			Name:   a.Reviewer.Name,
			Role:   a.Reviewer.Role,
		}
	}
	return resp
}

// ToReviewResponse 模型 → 响应
func ToReviewResponse(r *model.Review) ReviewResponse {
	return ReviewResponse{
		ReviewID:         r.ReviewID,
		AssignmentID:     r.AssignmentID,
		SubmissionID:     r.SubmissionID,
		ReviewerID:       r.ReviewerID,
		OverallScore:     r.OverallScore,
		CriteriaScores:   map[string]int(r.CriteriaScores),
		Strengths:        r.Strengths,
		Improvements:     r.Improvements,
		Suggestions:      r.Suggestions,
		TimeSpentMinutes: r.TimeSpentMinutes,
		CreatedAt:        formatTime(r.CreatedAt),
	}
}
