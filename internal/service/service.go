package service

import (
	"go.uber.org/zap"

	"peerhub/backend/config"
	"peerhub/backend/internal/repository"
	"peerhub/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Project      ProjectService
	Submission   SubmissionService
	Eligibility  EligibilityService
	Factory      AssignmentFactory
	Coverage     CoverageService
	Assignment   AssignmentService
	Sweeper      SweeperService
	Notification NotificationService
	Export       ExportService
	Calendar     CalendarService
}

// NewService 创建 Service 聚合
// 依赖顺序：通知 → 筛选/工厂 → 覆盖协调 → 生命周期 → 扫描器
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, logger)
	eligibility := NewEligibilityService(repo, logger)
	factory := NewAssignmentFactory(&cfg.Review, repo, notification, logger)
	coverage := NewCoverageService(repo, eligibility, factory, notification, logger)
	assignment := NewAssignmentService(repo, coverage, notification, logger)
	sweeper := NewSweeperService(&cfg.Review, repo, assignment, notification, rdb, logger)

	return &Service{
		Project:      NewProjectService(repo, logger),
		Submission:   NewSubmissionService(repo, coverage, logger),
		Eligibility:  eligibility,
		Factory:      factory,
		Coverage:     coverage,
		Assignment:   assignment,
		Sweeper:      sweeper,
		Notification: notification,
		Export:       NewExportService(repo, logger),
		Calendar:     NewCalendarService(repo, logger),
	}
}
