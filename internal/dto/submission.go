package dto

import "peerhub/backend/internal/model"

// ── 作品提交模块 DTO ──

// CreateSubmissionRequest 创建作品草稿请求
type CreateSubmissionRequest struct {
	ProjectID string `json:"project_id" binding:"required,uuid"`
	Content   string `json:"content"    binding:"omitempty,max=65535"`
}

// SubmissionResponse 作品响应
type SubmissionResponse struct {
	SubmissionID string        `json:"submission_id"`
	ProjectID    string        `json:"project_id"`
	Project      *ProjectBrief `json:"project,omitempty"`
	UserID       string        `json:"user_id"`
	Status       string        `json:"status"`
	SubmittedAt  *string       `json:"submitted_at,omitempty"`
	CreatedAt    string        `json:"created_at"`
	UpdatedAt    string        `json:"updated_at"`
}

// SubmissionDetailResponse 作品详情（含评审内容与覆盖统计）
type SubmissionDetailResponse struct {
	SubmissionResponse
	Content        string           `json:"content,omitempty"`
	Reviews        []ReviewResponse `json:"reviews"`
	CompletedCount int              `json:"completed_count"`
	ActiveCount    int              `json:"active_count"`
	AverageScore   *float64         `json:"average_score,omitempty"`
}

// CoverageStatusResponse 覆盖评估结果
type CoverageStatusResponse struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
	MinReviews   int    `json:"min_reviews"`
	Completed    int    `json:"completed"`
	Active       int    `json:"active"`
	Needed       int    `json:"needed"`
}

// SweepResponse 过期扫描结果
type SweepResponse struct {
	Scanned  int `json:"scanned"`
	Expired  int `json:"expired"`
	Skipped  int `json:"skipped"`
	Reminded int `json:"reminded"`
}

// ToSubmissionResponse 模型 → 响应
func ToSubmissionResponse(s *model.Submission) SubmissionResponse {
	return SubmissionResponse{
		SubmissionID: s.SubmissionID,
		ProjectID:    s.ProjectID,
		Project:      ToProjectBrief(s.Project),
		UserID:       s.UserID,
		Status:       s.Status,
		SubmittedAt:  formatTimePtr(s.SubmittedAt),
		CreatedAt:    formatTime(s.CreatedAt),
		UpdatedAt:    formatTime(s.UpdatedAt),
	}
}

// ToSubmissionDetailResponse 模型 → 详情响应
func ToSubmissionDetailResponse(s *model.Submission, reviews []model.Review, activeCount int) SubmissionDetailResponse {
	detail := SubmissionDetailResponse{
		SubmissionResponse: ToSubmissionResponse(s),
		Content:            s.Content,
		Reviews:            make([]ReviewResponse, 0, len(reviews)),
		CompletedCount:     len(reviews),
		ActiveCount:        activeCount,
	}
	if len(reviews) > 0 {
		sum := 0
		for i := range reviews {
			detail.Reviews = append(detail.Reviews, ToReviewResponse(&reviews[i]))
			sum += reviews[i].OverallScore
		}
		avg := float64(sum) / float64(len(reviews))
		detail.AverageScore = &avg
	}
	return detail
}
