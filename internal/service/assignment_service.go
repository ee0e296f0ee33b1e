package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"peerhub/backend/internal/dto"
	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
	pkgerrors "peerhub/backend/pkg/errors"
)

// ── 评审分配生命周期业务错误 ──

var (
	ErrAssignmentNotFound      = errors.New("评审任务不存在")
	ErrNotAssignedToUser       = errors.New("该评审任务未分配给当前用户")
	ErrInvalidTransition       = errors.New("该评审任务已被处理，无法执行此操作")
	ErrRejectionReasonRequired = errors.New("拒绝评审需填写原因")
	ErrReviewInvalid           = errors.New("评审内容不合法")
	ErrAssignmentNotDue        = errors.New("评审任务尚未到期")
)

// AssignmentService 评审分配生命周期接口
//
// 状态机：assigned → accepted → completed；assigned → rejected；
// assigned|accepted → expired / cancelled。全部转换通过条件更新实现，
// 并发竞争下恰有一方生效，落败方得到 ErrInvalidTransition（或对系统
// 调用方而言是良性空操作），不会破坏状态。
type AssignmentService interface {
	// Accept 评审人接受任务（仅 assigned，仅被分配者本人）
	Accept(ctx context.Context, assignmentID, reviewerID string) (*dto.AssignmentResponse, error)
	// Reject 评审人拒绝任务（仅 assigned）；触发一次替补分配
	Reject(ctx context.Context, assignmentID, reviewerID, reason string) (*dto.AssignmentResponse, error)
	// SubmitReview 提交评审内容（仅 accepted）；创建不可变 Review 并触发覆盖重评
	SubmitReview(ctx context.Context, assignmentID, reviewerID string, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, error)
	// Expire 系统调用：将超期任务置为 expired；触发一次替补分配。
	// 返回 false 表示竞争落败（已被其他操作转换），为良性空操作
	Expire(ctx context.Context, assignmentID string) (bool, error)
	// Cancel 管理操作：从任意非终态取消；不自动补位，由调用方决定下一步
	Cancel(ctx context.Context, assignmentID, actorID string) (*dto.AssignmentResponse, error)
	// Reassign 管理操作：取消当前任务并立即重新评估覆盖
	Reassign(ctx context.Context, assignmentID, actorID string) (*dto.CoverageStatusResponse, error)

	GetByID(ctx context.Context, assignmentID string) (*dto.AssignmentResponse, error)
	ListMine(ctx context.Context, reviewerID, status string, page, pageSize int) ([]dto.AssignmentResponse, int64, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo     *repository.Repository
	coverage CoverageService
	notifier NotificationService
	logger   *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(
	repo *repository.Repository,
	coverage CoverageService,
	notifier NotificationService,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{
		repo:     repo,
		coverage: coverage,
		notifier: notifier,
		logger:   logger,
	}
}

// ── 生命周期转换 ──

func (s *assignmentService) Accept(ctx context.Context, assignmentID, reviewerID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.getBound(ctx, assignmentID, reviewerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.repo.Assignment.TransitionStatus(ctx, assignmentID,
		[]string{model.AssignmentStatusAssigned},
		map[string]interface{}{
			"status":      model.AssignmentStatusAccepted,
			"accepted_at": now,
			"updated_at":  now,
			"updated_by":  reviewerID,
		})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrInvalidTransition
		}
		s.logger.Error("接受评审任务失败", zap.Error(err))
		return nil, err
	}

	assignment.Status = model.AssignmentStatusAccepted
	assignment.AcceptedAt = &now
	resp := dto.ToAssignmentResponse(assignment)
	return &resp, nil
}

func (s *assignmentService) Reject(ctx context.Context, assignmentID, reviewerID, reason string) (*dto.AssignmentResponse, error) {
	if reason == "" {
		return nil, ErrRejectionReasonRequired
	}

	assignment, err := s.getBound(ctx, assignmentID, reviewerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.repo.Assignment.TransitionStatus(ctx, assignmentID,
		[]string{model.AssignmentStatusAssigned},
		map[string]interface{}{
			"status":           model.AssignmentStatusRejected,
			"rejected_at":      now,
			"rejection_reason": reason,
			"updated_at":       now,
			"updated_by":       reviewerID,
		})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrInvalidTransition
		}
		s.logger.Error("拒绝评审任务失败", zap.Error(err))
		return nil, err
	}

	// 转换恰好成功一次，替补评估也只会进行一次
	s.requestReplacement(ctx, assignment.SubmissionID, "reject")

	assignment.Status = model.AssignmentStatusRejected
	assignment.RejectedAt = &now
	assignment.RejectionReason = reason
	resp := dto.ToAssignmentResponse(assignment)
	return &resp, nil
}

func (s *assignmentService) SubmitReview(ctx context.Context, assignmentID, reviewerID string, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, error) {
	assignment, err := s.getBound(ctx, assignmentID, reviewerID)
	if err != nil {
		return nil, err
	}

	if err := validateReviewPayload(req); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.repo.Assignment.TransitionStatus(ctx, assignmentID,
		[]string{model.AssignmentStatusAccepted},
		map[string]interface{}{
			"status":       model.AssignmentStatusCompleted,
			"completed_at": now,
			"updated_at":   now,
			"updated_by":   reviewerID,
		})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrInvalidTransition
		}
		s.logger.Error("完成评审任务失败", zap.Error(err))
		return nil, err
	}

	// 转换成功即持有该分配的"完成权"，Review 创建不会与他人竞争
	review := &model.Review{
		AssignmentID:     assignmentID,
		SubmissionID:     assignment.SubmissionID,
		ReviewerID:       reviewerID,
		OverallScore:     *req.OverallScore,
		CriteriaScores:   model.JSONMap(req.CriteriaScores),
		Strengths:        req.Strengths,
		Improvements:     req.Improvements,
		Suggestions:      req.Suggestions,
		TimeSpentMinutes: req.TimeSpentMinutes,
	}
	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.logger.Error("保存评审内容失败",
			zap.String("assignment_id", assignmentID),
			zap.Error(err))
		return nil, err
	}

	if assignment.Submission != nil {
		s.notifier.NotifyReviewCompleted(ctx, assignment, assignment.Submission.UserID)
	}

	// 覆盖重评：达到 min_reviews 时把作品置为 reviewed
	if _, err := s.coverage.EnsureCoverage(ctx, assignment.SubmissionID); err != nil {
		s.logger.Warn("评审完成后的覆盖重评失败",
			zap.String("submission_id", assignment.SubmissionID),
			zap.Error(err))
	}

	resp := dto.ToReviewResponse(review)
	return &resp, nil
}

func (s *assignmentService) Expire(ctx context.Context, assignmentID string) (bool, error) {
	assignment, err := s.get(ctx, assignmentID)
	if err != nil {
		return false, err
	}

	now := time.Now()
	if !now.After(assignment.DueDate) {
		return false, ErrAssignmentNotDue
	}

	err = s.repo.Assignment.TransitionStatus(ctx, assignmentID,
		model.ActiveAssignmentStatuses,
		map[string]interface{}{
			"status":     model.AssignmentStatusExpired,
			"expired_at": now,
			"updated_at": now,
		})
	if err != nil {
		// 与 accept/submitReview 竞争落败：对方已完成转换，空操作
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return false, nil
		}
		s.logger.Error("过期评审任务失败", zap.Error(err))
		return false, err
	}

	s.requestReplacement(ctx, assignment.SubmissionID, "expire")
	return true, nil
}

func (s *assignmentService) Cancel(ctx context.Context, assignmentID, actorID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.repo.Assignment.TransitionStatus(ctx, assignmentID,
		model.ActiveAssignmentStatuses,
		map[string]interface{}{
			"status":       model.AssignmentStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
			"updated_by":   actorID,
		})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrInvalidTransition
		}
		s.logger.Error("取消评审任务失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("评审任务已取消",
		zap.String("assignment_id", assignmentID),
		zap.String("actor_id", actorID))

	// 取消不自动补位：是否补位由管理流程（如 Reassign）显式决定
	assignment.Status = model.AssignmentStatusCancelled
	assignment.CancelledAt = &now
	resp := dto.ToAssignmentResponse(assignment)
	return &resp, nil
}

func (s *assignmentService) Reassign(ctx context.Context, assignmentID, actorID string) (*dto.CoverageStatusResponse, error) {
	assignment, err := s.Cancel(ctx, assignmentID, actorID)
	if err != nil {
		return nil, err
	}
	return s.coverage.EnsureCoverage(ctx, assignment.SubmissionID)
}

// ── 查询 ──

func (s *assignmentService) GetByID(ctx context.Context, assignmentID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToAssignmentResponse(assignment)
	return &resp, nil
}

func (s *assignmentService) ListMine(ctx context.Context, reviewerID, status string, page, pageSize int) ([]dto.AssignmentResponse, int64, error) {
	offset := (page - 1) * pageSize
	assignments, total, err := s.repo.Assignment.ListByReviewer(ctx, reviewerID, status, offset, pageSize)
	if err != nil {
		s.logger.Error("查询我的评审任务失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, dto.ToAssignmentResponse(&assignments[i]))
	}
	return result, total, nil
}

func (s *assignmentService) ListBySubmission(ctx context.Context, submissionID string) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.Assignment.ListBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("查询作品评审任务失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, dto.ToAssignmentResponse(&assignments[i]))
	}
	return result, nil
}

// ── 内部辅助 ──

func (s *assignmentService) get(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询评审任务失败", zap.Error(err))
		return nil, err
	}
	return assignment, nil
}

// getBound 查询并校验任务绑定给了当前评审人
func (s *assignmentService) getBound(ctx context.Context, assignmentID, reviewerID string) (*model.Assignment, error) {
	assignment, err := s.get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.ReviewerID == nil || *assignment.ReviewerID != reviewerID {
		return nil, ErrNotAssignedToUser
	}
	return assignment, nil
}

// requestReplacement 拒绝/过期后的替补评估。
// 失败只记日志：原转换已落库，覆盖会在下一次触发（新的完成、
// 过期扫描或运营手动 ensure-coverage）时再次补齐
func (s *assignmentService) requestReplacement(ctx context.Context, submissionID, cause string) {
	if _, err := s.coverage.EnsureCoverage(ctx, submissionID); err != nil {
		s.logger.Error("替补分配评估失败",
			zap.String("submission_id", submissionID),
			zap.String("cause", cause),
			zap.Error(err))
	}
}

// validateReviewPayload 校验评审内容：总分 0-100，分项评分非空且各项 0-100
func validateReviewPayload(req *dto.SubmitReviewRequest) error {
	if req.OverallScore == nil {
		return fmt.Errorf("%w: 缺少总分", ErrReviewInvalid)
	}
	if *req.OverallScore < 0 || *req.OverallScore > 100 {
		return fmt.Errorf("%w: 总分必须在 0-100 之间", ErrReviewInvalid)
	}
	if len(req.CriteriaScores) == 0 {
		return fmt.Errorf("%w: 分项评分不能为空", ErrReviewInvalid)
	}
	for name, score := range req.CriteriaScores {
		if score < 0 || score > 100 {
			return fmt.Errorf("%w: 分项 %q 的评分必须在 0-100 之间", ErrReviewInvalid, name)
		}
	}
	if req.TimeSpentMinutes < 0 {
		return fmt.Errorf("%w: 评审耗时不能为负", ErrReviewInvalid)
	}
	return nil
}
