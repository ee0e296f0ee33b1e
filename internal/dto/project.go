package dto

import "peerhub/backend/internal/model"

// ── 项目模块 DTO ──

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title       string `json:"title"       binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Category    string `json:"category"    binding:"required,min=2,max=50"`
	Difficulty  int    `json:"difficulty"  binding:"required,min=1,max=3"`
	MinReviews  int    `json:"min_reviews" binding:"required,min=1,max=10"`
}

// UpdateProjectRequest 更新项目请求（字段均可选）
type UpdateProjectRequest struct {
	Title       *string `json:"title"       binding:"omitempty,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Category    *string `json:"category"    binding:"omitempty,min=2,max=50"`
	Difficulty  *int    `json:"difficulty"  binding:"omitempty,min=1,max=3"`
	MinReviews  *int    `json:"min_reviews" binding:"omitempty,min=1,max=10"`
	IsActive    *bool   `json:"is_active"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ProjectID   string `json:"project_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Difficulty  int    `json:"difficulty"`
	MinReviews  int    `json:"min_reviews"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ProjectBrief 项目简要信息（嵌入作品/分配响应）
type ProjectBrief struct {
	ProjectID  string `json:"project_id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Difficulty int    `json:"difficulty"`
	MinReviews int    `json:"min_reviews"`
}

// ToProjectResponse 模型 → 响应
func ToProjectResponse(p *model.Project) ProjectResponse {
	return ProjectResponse{
		ProjectID:   p.ProjectID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Difficulty:  p.Difficulty,
		MinReviews:  p.MinReviews,
		IsActive:    p.IsActive,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

// ToProjectBrief 模型 → 简要信息
func ToProjectBrief(p *model.Project) *ProjectBrief {
	if p == nil {
		return nil
	}
	return &ProjectBrief{
		ProjectID:  p.ProjectID,
		Title:      p.Title,
		Category:   p.Category,
		Difficulty: p.Difficulty,
		MinReviews: p.MinReviews,
	}
}
