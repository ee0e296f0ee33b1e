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

// ── 覆盖协调器业务错误 ──

var (
	ErrSubmissionNotFound     = errors.New("作品不存在")
	ErrSubmissionNotSubmitted = errors.New("作品尚未提交，无法发起评审")
)

// CoverageService 覆盖协调器接口
//
// 唯一有权决定"还需要多少评审分配"的组件：作品提交、评审被拒、
// 评审超时、评审完成后都会回到这里重新评估。各生命周期转换自身
// 从不创建分配，避免并发下的重复创建。
type CoverageService interface {
	// EnsureCoverage 重新评估作品的评审覆盖并按需补齐分配。
	// 已完成数 ≥ min_reviews 时把作品置为 reviewed；
	// 候选池与兜底池同时耗尽时返回 ErrNoCandidates，供运营介入。
	EnsureCoverage(ctx context.Context, submissionID string) (*dto.CoverageStatusResponse, error)
}

type coverageService struct {
	repo        *repository.Repository
	eligibility EligibilityService
	factory     AssignmentFactory
	notifier    NotificationService
	logger      *zap.Logger
}

// NewCoverageService 创建 CoverageService 实例
func NewCoverageService(
	repo *repository.Repository,
	eligibility EligibilityService,
	factory AssignmentFactory,
	notifier NotificationService,
	logger *zap.Logger,
) CoverageService {
	return &coverageService{
		repo:        repo,
		eligibility: eligibility,
		factory:     factory,
		notifier:    notifier,
		logger:      logger,
	}
}

// ═══════════════════════════════════════════════════════════
// EnsureCoverage — 覆盖评估与补齐
// ═══════════════════════════════════════════════════════════
//
// 1. 统计已完成评审数，达到 min_reviews 即置 reviewed 并结束
// 2. 统计活跃分配数，在途数量足够则不动作
// 3. 缺口 = min_reviews - 已完成 - 活跃：先从候选池补同行分配，
//    候选不足时调用一次兜底分配，保证覆盖不会被空候选池永久阻塞
//
// 计数均按需从分配表重算，不维护独立计数器，避免双源漂移。

func (s *coverageService) EnsureCoverage(ctx context.Context, submissionID string) (*dto.CoverageStatusResponse, error) {
	submission, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询作品失败", zap.Error(err))
		return nil, err
	}
	if submission.Status == model.SubmissionStatusDraft {
		return nil, ErrSubmissionNotSubmitted
	}
	if submission.Project == nil {
		s.logger.Error("作品缺少项目关联", zap.String("submission_id", submissionID))
		return nil, gorm.ErrRecordNotFound
	}
	minReviews := submission.Project.MinReviews

	// ── 1. 已完成评审数 ──
	completed, err := s.repo.Assignment.CountCompletedBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("统计已完成评审失败", zap.Error(err))
		return nil, err
	}
	if completed >= int64(minReviews) {
		s.markReviewed(ctx, submission)
		return s.status(submission, minReviews, completed, 0), nil
	}

	// ── 2. 在途分配数 ──
	active, err := s.repo.Assignment.CountActiveBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("统计活跃分配失败", zap.Error(err))
		return nil, err
	}
	needed := minReviews - int(completed) - int(active)
	if needed <= 0 {
		return s.status(submission, minReviews, completed, active), nil
	}

	// ── 3. 补齐分配 ──
	candidates, err := s.eligibility.FindCandidates(
		ctx, submissionID, submission.UserID, submission.Project.Category,
		submission.Project.Difficulty, needed)
	if err != nil {
		return nil, err
	}

	created := 0
	for _, candidate := range candidates {
		_, err := s.factory.CreatePeer(ctx, submission, candidate.UserID)
		if err != nil {
			// 并发的另一轮补齐可能已抢先创建，跳过即可
			if errors.Is(err, ErrDuplicateAssignment) || errors.Is(err, ErrSelfReview) {
				continue
			}
			return nil, err
		}
		created++
	}

	if created < needed {
		// 候选池耗尽：兜底一次，保证覆盖最终可达
		if _, err := s.factory.CreateAdminFallback(ctx, submission); err != nil {
			if errors.Is(err, ErrNoCandidates) {
				s.logger.Error("候选池与兜底池均已耗尽",
					zap.String("submission_id", submissionID),
					zap.Int("needed", needed),
					zap.Int("created", created))
				return nil, ErrNoCandidates
			}
			return nil, err
		}
		created++
	}

	s.logger.Info("评审覆盖补齐完成",
		zap.String("submission_id", submissionID),
		zap.Int("needed", needed),
		zap.Int("created", created))

	// 首轮分配建立后，作品从 submitted 进入 under_review
	if submission.Status == model.SubmissionStatusSubmitted && created > 0 {
		err := s.repo.Submission.TransitionStatus(ctx, submissionID,
			[]string{model.SubmissionStatusSubmitted},
			map[string]interface{}{
				"status":     model.SubmissionStatusUnderReview,
				"updated_at": time.Now(),
			})
		if err != nil && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("作品转入评审中状态失败", zap.Error(err))
		}
		submission.Status = model.SubmissionStatusUnderReview
	}

	return s.status(submission, minReviews, completed, active+int64(created)), nil
}

// markReviewed 覆盖达标：submitted/under_review → reviewed
// 条件更新落败说明已被并发评估置为 reviewed，视为空操作
func (s *coverageService) markReviewed(ctx context.Context, submission *model.Submission) {
	err := s.repo.Submission.TransitionStatus(ctx, submission.SubmissionID,
		[]string{model.SubmissionStatusSubmitted, model.SubmissionStatusUnderReview},
		map[string]interface{}{
			"status":     model.SubmissionStatusReviewed,
			"updated_at": time.Now(),
		})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("作品置为已评审失败",
				zap.String("submission_id", submission.SubmissionID),
				zap.Error(err))
		}
		return
	}
	submission.Status = model.SubmissionStatusReviewed
	s.notifier.NotifySubmissionReviewed(ctx, submission.UserID, submission.SubmissionID)
}

func (s *coverageService) status(submission *model.Submission, minReviews int, completed, active int64) *dto.CoverageStatusResponse {
	needed := minReviews - int(completed) - int(active)
	if needed < 0 {
		needed = 0
	}
	return &dto.CoverageStatusResponse{
		SubmissionID: submission.SubmissionID,
		Status:       submission.Status,
		MinReviews:   minReviews,
		Completed:    int(completed),
		Active:       int(active),
		Needed:       needed,
	}
}
