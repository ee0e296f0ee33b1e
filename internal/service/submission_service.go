package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"peerhub/backend/internal/dto"
	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
	pkgerrors "peerhub/backend/pkg/errors"
)

// ── 作品提交模块业务错误 ──

var (
	ErrSubmissionNotOwner  = errors.New("无权操作他人的作品")
	ErrSubmissionNotDraft  = errors.New("作品已提交，不能重复提交")
	ErrProjectNotAvailable = errors.New("项目不存在或已下线")
)

// SubmissionService 作品提交业务接口
type SubmissionService interface {
	// CreateDraft 创建作品草稿
	CreateDraft(ctx context.Context, req *dto.CreateSubmissionRequest, userID string) (*dto.SubmissionResponse, error)
	// Submit 提交作品：draft → submitted（条件更新），随后触发覆盖评估
	Submit(ctx context.Context, submissionID, userID string) (*dto.SubmissionResponse, error)
	// Get 获取作品详情（含已完成评审与覆盖统计）；仅作者或平台人员可见
	Get(ctx context.Context, submissionID, callerID, callerRole string) (*dto.SubmissionDetailResponse, error)
	ListMine(ctx context.Context, userID string, page, pageSize int) ([]dto.SubmissionResponse, int64, error)
}

type submissionService struct {
	repo     *repository.Repository
	coverage CoverageService
	logger   *zap.Logger
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, coverage CoverageService, logger *zap.Logger) SubmissionService {
	return &submissionService{repo: repo, coverage: coverage, logger: logger}
}

func (s *submissionService) CreateDraft(ctx context.Context, req *dto.CreateSubmissionRequest, userID string) (*dto.SubmissionResponse, error) {
	project, err := s.repo.Project.GetByID(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotAvailable
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}
	if !project.IsActive {
		return nil, ErrProjectNotAvailable
	}

	submission := &model.Submission{
		ProjectID: project.ProjectID,
		UserID:    userID,
		Status:    model.SubmissionStatusDraft,
		Content:   req.Content,
	}
	submission.CreatedBy = &userID
	if err := s.repo.Submission.Create(ctx, submission); err != nil {
		s.logger.Error("创建作品草稿失败", zap.Error(err))
		return nil, err
	}

	submission.Project = project
	resp := dto.ToSubmissionResponse(submission)
	return &resp, nil
}

func (s *submissionService) Submit(ctx context.Context, submissionID, userID string) (*dto.SubmissionResponse, error) {
	submission, err := s.getOwned(ctx, submissionID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.repo.Submission.TransitionStatus(ctx, submissionID,
		[]string{model.SubmissionStatusDraft},
		map[string]interface{}{
			"status":       model.SubmissionStatusSubmitted,
			"submitted_at": now,
			"updated_at":   now,
			"updated_by":   userID,
		})
	if err != nil {
		// 条件更新落败：作品已不在草稿状态（重复点击提交）
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrSubmissionNotDraft
		}
		s.logger.Error("提交作品失败", zap.Error(err))
		return nil, err
	}
	submission.Status = model.SubmissionStatusSubmitted
	submission.SubmittedAt = &now

	// 首轮覆盖评估。失败不回滚提交：作品已进入队列，
	// 覆盖会由后续扫描或运营手动触发补齐
	if status, err := s.coverage.EnsureCoverage(ctx, submissionID); err != nil {
		s.logger.Error("提交后的覆盖评估失败",
			zap.String("submission_id", submissionID),
			zap.Error(err))
	} else {
		submission.Status = status.Status
	}

	resp := dto.ToSubmissionResponse(submission)
	return &resp, nil
}

func (s *submissionService) Get(ctx context.Context, submissionID, callerID, callerRole string) (*dto.SubmissionDetailResponse, error) {
	submission, err := s.get(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	isStaff := callerRole == model.RoleStaff || callerRole == model.RoleAdmin
	if submission.UserID != callerID && !isStaff {
		return nil, ErrSubmissionNotOwner
	}

	reviews, err := s.repo.Review.ListBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("查询评审内容失败", zap.Error(err))
		return nil, err
	}
	active, err := s.repo.Assignment.CountActiveBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("统计活跃分配失败", zap.Error(err))
		return nil, err
	}

	detail := dto.ToSubmissionDetailResponse(submission, reviews, int(active))
	return &detail, nil
}

func (s *submissionService) ListMine(ctx context.Context, userID string, page, pageSize int) ([]dto.SubmissionResponse, int64, error) {
	offset := (page - 1) * pageSize
	submissions, total, err := s.repo.Submission.ListByUser(ctx, userID, offset, pageSize)
	if err != nil {
		s.logger.Error("查询我的作品失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		result = append(result, dto.ToSubmissionResponse(&submissions[i]))
	}
	return result, total, nil
}

// ── 内部辅助 ──

func (s *submissionService) get(ctx context.Context, submissionID string) (*model.Submission, error) {
	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询作品失败", zap.Error(err))
		return nil, err
	}
	return submission, nil
}

func (s *submissionService) getOwned(ctx context.Context, submissionID, userID string) (*model.Submission, error) {
	submission, err := s.get(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.UserID != userID {
		return nil, ErrSubmissionNotOwner
	}
	return submission, nil
}
