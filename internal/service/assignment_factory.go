package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"peerhub/backend/config"
	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
)

// ── 分配工厂业务错误 ──

var (
	ErrDuplicateAssignment = errors.New("该评审人已持有此作品的活跃评审任务")
	ErrSelfReview          = errors.New("不能将作品分配给提交者本人评审")
	ErrNoCandidates        = errors.New("无可用评审候选人")
)

// AssignmentFactory 评审分配工厂接口
// 负责把选定的候选人（或平台兜底评审人员）落库为 assigned 状态的分配记录。
// 只创建记录，不发起状态转换；通知为事后尽力投递。
type AssignmentFactory interface {
	// CreatePeer 创建同行评审分配，期限 = now + review.peer_due_days
	CreatePeer(ctx context.Context, submission *model.Submission, reviewerID string) (*model.Assignment, error)
	// CreateAdminFallback 候选池耗尽时的兜底：在平台评审人员中轮转选人，
	// 期限 = now + review.admin_due_days。无可用人员时返回 ErrNoCandidates
	CreateAdminFallback(ctx context.Context, submission *model.Submission) (*model.Assignment, error)
}

type assignmentFactory struct {
	cfg      *config.ReviewConfig
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewAssignmentFactory 创建 AssignmentFactory 实例
func NewAssignmentFactory(cfg *config.ReviewConfig, repo *repository.Repository, notifier NotificationService, logger *zap.Logger) AssignmentFactory {
	return &assignmentFactory{cfg: cfg, repo: repo, notifier: notifier, logger: logger}
}

func (f *assignmentFactory) CreatePeer(ctx context.Context, submission *model.Submission, reviewerID string) (*model.Assignment, error) {
	if reviewerID == submission.UserID {
		return nil, ErrSelfReview
	}

	exists, err := f.repo.Assignment.HasActive(ctx, submission.SubmissionID, reviewerID)
	if err != nil {
		f.logger.Error("查询活跃分配失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateAssignment
	}

	now := time.Now()
	assignment := &model.Assignment{
		SubmissionID:   submission.SubmissionID,
		ReviewerID:     &reviewerID,
		AssignmentType: model.AssignmentTypePeer,
		Status:         model.AssignmentStatusAssigned,
		DueDate:        now.Add(time.Duration(f.cfg.PeerDueDays) * 24 * time.Hour),
	}
	// 活跃唯一索引会拦截并发下的重复创建
	if err := f.repo.Assignment.Create(ctx, assignment); err != nil {
		f.logger.Error("创建同行评审分配失败",
			zap.String("submission_id", submission.SubmissionID),
			zap.String("reviewer_id", reviewerID),
			zap.Error(err))
		return nil, err
	}

	f.touchAndNotify(ctx, assignment, reviewerID, now)
	return assignment, nil
}

func (f *assignmentFactory) CreateAdminFallback(ctx context.Context, submission *model.Submission) (*model.Assignment, error) {
	staff, err := f.repo.User.ListStaff(ctx)
	if err != nil {
		f.logger.Error("查询平台评审人员失败", zap.Error(err))
		return nil, err
	}

	// 轮转：按最久未被分配排序逐个尝试，跳过提交者本人与已持有活跃分配者
	for _, candidate := range staff {
		if candidate.UserID == submission.UserID {
			continue
		}
		exists, err := f.repo.Assignment.HasActive(ctx, submission.SubmissionID, candidate.UserID)
		if err != nil {
			f.logger.Error("查询活跃分配失败", zap.Error(err))
			return nil, err
		}
		if exists {
			continue
		}

		now := time.Now()
		reviewerID := candidate.UserID
		assignment := &model.Assignment{
			SubmissionID:   submission.SubmissionID,
			ReviewerID:     &reviewerID,
			AssignmentType: model.AssignmentTypeAdmin,
			Priority:       f.cfg.AdminPriority,
			Status:         model.AssignmentStatusAssigned,
			DueDate:        now.Add(time.Duration(f.cfg.AdminDueDays) * 24 * time.Hour),
		}
		if err := f.repo.Assignment.Create(ctx, assignment); err != nil {
			f.logger.Error("创建兜底评审分配失败",
				zap.String("submission_id", submission.SubmissionID),
				zap.String("reviewer_id", reviewerID),
				zap.Error(err))
			return nil, err
		}

		f.touchAndNotify(ctx, assignment, reviewerID, now)
		return assignment, nil
	}

	// 候选池与兜底池同时耗尽：向上抛出，由运营人员介入
	return nil, ErrNoCandidates
}

// touchAndNotify 更新负载均衡时间戳并投递创建通知（均为尽力而为）
func (f *assignmentFactory) touchAndNotify(ctx context.Context, assignment *model.Assignment, reviewerID string, now time.Time) {
	if err := f.repo.User.TouchLastAssigned(ctx, reviewerID, now); err != nil {
		f.logger.Warn("更新评审人分配时间戳失败",
			zap.String("reviewer_id", reviewerID),
			zap.Error(err))
	}
	f.notifier.NotifyAssignmentCreated(ctx, assignment)
}
