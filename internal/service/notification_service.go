package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"peerhub/backend/internal/dto"
	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
)

// NotificationService 通知业务接口
// Notify* 系列为 fire-and-forget：通知失败只记日志，绝不阻断业务主流程。
// 推送与邮件由外部分发服务消费通知表，不在本引擎范围内。
type NotificationService interface {
	NotifyAssignmentCreated(ctx context.Context, assignment *model.Assignment)
	NotifyAssignmentExpiring(ctx context.Context, assignment *model.Assignment)
	NotifyReviewCompleted(ctx context.Context, assignment *model.Assignment, ownerID string)
	NotifySubmissionReviewed(ctx context.Context, ownerID, submissionID string)

	List(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) NotifyAssignmentCreated(ctx context.Context, assignment *model.Assignment) {
	if assignment.ReviewerID == nil {
		return
	}
	s.create(ctx, &model.Notification{
		UserID:      *assignment.ReviewerID,
		Type:        model.NotificationAssignmentCreated,
		Title:       "你有新的评审任务",
		Content:     fmt.Sprintf("你被分配了一项评审任务，请在 %s 前完成。", assignment.DueDate.Format("2006-01-02 15:04")),
		RelatedType: strPtr("assignment"),
		RelatedID:   &assignment.AssignmentID,
	})
}

func (s *notificationService) NotifyAssignmentExpiring(ctx context.Context, assignment *model.Assignment) {
	if assignment.ReviewerID == nil {
		return
	}
	s.create(ctx, &model.Notification{
		UserID:      *assignment.ReviewerID,
		Type:        model.NotificationAssignmentExpiring,
		Title:       "评审任务即将到期",
		Content:     fmt.Sprintf("你的评审任务将于 %s 到期，逾期将被收回并重新分配。", assignment.DueDate.Format("2006-01-02 15:04")),
		RelatedType: strPtr("assignment"),
		RelatedID:   &assignment.AssignmentID,
	})
}

func (s *notificationService) NotifyReviewCompleted(ctx context.Context, assignment *model.Assignment, ownerID string) {
	s.create(ctx, &model.Notification{
		UserID:      ownerID,
		Type:        model.NotificationAssignmentCompleted,
		Title:       "你的作品收到一份新评审",
		Content:     "有评审人完成了对你作品的评审，去看看反馈吧。",
		RelatedType: strPtr("submission"),
		RelatedID:   &assignment.SubmissionID,
	})
}

func (s *notificationService) NotifySubmissionReviewed(ctx context.Context, ownerID, submissionID string) {
	s.create(ctx, &model.Notification{
		UserID:      ownerID,
		Type:        model.NotificationSubmissionReviewed,
		Title:       "你的作品已完成评审",
		Content:     "你的作品已收到足够数量的评审，评审阶段结束。",
		RelatedType: strPtr("submission"),
		RelatedID:   &submissionID,
	})
}

func (s *notificationService) create(ctx context.Context, n *model.Notification) {
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("通知投递失败",
			zap.String("user_id", n.UserID),
			zap.String("type", n.Type),
			zap.Error(err))
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]dto.NotificationResponse, int64, error) {
	offset := (page - 1) * pageSize
	notifications, total, err := s.repo.Notification.ListByUser(ctx, userID, unreadOnly, offset, pageSize)
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, dto.ToNotificationResponse(&n))
	}
	return result, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.repo.Notification.MarkRead(ctx, notificationID, userID)
}

func strPtr(s string) *string { return &s }
