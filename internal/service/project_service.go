package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"peerhub/backend/internal/dto"
	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
)

// ── 项目模块业务错误 ──

var (
	ErrProjectNotFound = errors.New("项目不存在")
	ErrProjectInvalid  = errors.New("项目参数不合法")
)

// ProjectService 项目业务接口
// category / difficulty / min_reviews 是评审分配引擎的输入，由平台人员维护
type ProjectService interface {
	Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	Update(ctx context.Context, projectID string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, projectID string) (*dto.ProjectResponse, error)
	List(ctx context.Context, page, pageSize int) ([]dto.ProjectResponse, int64, error)
}

type projectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProjectService 创建 ProjectService 实例
func NewProjectService(repo *repository.Repository, logger *zap.Logger) ProjectService {
	return &projectService{repo: repo, logger: logger}
}

func (s *projectService) Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	if err := validateProjectParams(req.Difficulty, req.MinReviews); err != nil {
		return nil, err
	}

	project := &model.Project{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		MinReviews:  req.MinReviews,
		IsActive:    true,
	}
	project.CreatedBy = &callerID
	if err := s.repo.Project.Create(ctx, project); err != nil {
		s.logger.Error("创建项目失败", zap.Error(err))
		return nil, err
	}

	resp := dto.ToProjectResponse(project)
	return &resp, nil
}

func (s *projectService) Update(ctx context.Context, projectID string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Category != nil {
		project.Category = *req.Category
	}
	if req.Difficulty != nil {
		project.Difficulty = *req.Difficulty
	}
	if req.MinReviews != nil {
		project.MinReviews = *req.MinReviews
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}
	if err := validateProjectParams(project.Difficulty, project.MinReviews); err != nil {
		return nil, err
	}

	project.UpdatedBy = &callerID
	if err := s.repo.Project.Update(ctx, project); err != nil {
		s.logger.Error("更新项目失败", zap.Error(err))
		return nil, err
	}

	resp := dto.ToProjectResponse(project)
	return &resp, nil
}

func (s *projectService) GetByID(ctx context.Context, projectID string) (*dto.ProjectResponse, error) {
	project, err := s.repo.Project.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}

	resp := dto.ToProjectResponse(project)
	return &resp, nil
}

func (s *projectService) List(ctx context.Context, page, pageSize int) ([]dto.ProjectResponse, int64, error) {
	offset := (page - 1) * pageSize
	projects, total, err := s.repo.Project.List(ctx, offset, pageSize)
	if err != nil {
		s.logger.Error("查询项目列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		result = append(result, dto.ToProjectResponse(&projects[i]))
	}
	return result, total, nil
}

func validateProjectParams(difficulty, minReviews int) error {
	if difficulty < 1 || difficulty > 3 {
		return ErrProjectInvalid
	}
	if minReviews < 1 {
		return ErrProjectInvalid
	}
	return nil
}
