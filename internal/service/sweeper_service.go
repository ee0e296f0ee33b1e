package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"peerhub/backend/config"
	"peerhub/backend/internal/dto"
	"peerhub/backend/internal/repository"
	"peerhub/backend/pkg/redis"
)

// SweeperService 过期扫描器接口
//
// 周期性调度（cmd/server 中的 ticker）或由运维端点手动触发。
// 超时以 due_date 比较表达，不依赖存活定时器；与用户操作并发时
// 依靠分配表的条件更新保证每条过期转换只生效一次，竞争落败方
// 计入 Skipped 而非报错。
type SweeperService interface {
	Sweep(ctx context.Context) (*dto.SweepResponse, error)
}

type sweeperService struct {
	cfg        *config.ReviewConfig
	repo       *repository.Repository
	assignment AssignmentService
	notifier   NotificationService
	rdb        *redis.Client // 可为 nil：仅用于多副本去重，不影响正确性
	logger     *zap.Logger
}

// NewSweeperService 创建 SweeperService 实例
func NewSweeperService(
	cfg *config.ReviewConfig,
	repo *repository.Repository,
	assignment AssignmentService,
	notifier NotificationService,
	rdb *redis.Client,
	logger *zap.Logger,
) SweeperService {
	return &sweeperService{
		cfg:        cfg,
		repo:       repo,
		assignment: assignment,
		notifier:   notifier,
		rdb:        rdb,
		logger:     logger,
	}
}

func (s *sweeperService) Sweep(ctx context.Context) (*dto.SweepResponse, error) {
	// 多副本部署时用 Redis 锁避免重复扫描；拿不到锁直接返回空结果。
	// Redis 不可用时照常扫描——条件更新已保证安全，只是可能做无用功
	if s.rdb != nil {
		acquired, err := s.rdb.AcquireSweepLock(ctx, time.Minute)
		if err != nil {
			s.logger.Warn("获取扫描锁失败，继续执行", zap.Error(err))
		} else if !acquired {
			s.logger.Info("另一副本正在扫描，本轮跳过")
			return &dto.SweepResponse{}, nil
		}
	}

	now := time.Now()
	result := &dto.SweepResponse{}

	// ── 到期前提醒 ──
	reminderWindow := time.Duration(s.cfg.ExpiryReminderHours) * time.Hour
	expiring, err := s.repo.Assignment.ListExpiring(ctx, now, now.Add(reminderWindow), s.cfg.SweepBatchSize)
	if err != nil {
		s.logger.Error("查询即将到期的分配失败", zap.Error(err))
	} else {
		for i := range expiring {
			s.notifier.NotifyAssignmentExpiring(ctx, &expiring[i])
			if err := s.repo.Assignment.MarkReminded(ctx, expiring[i].AssignmentID, now); err != nil {
				s.logger.Warn("标记提醒状态失败",
					zap.String("assignment_id", expiring[i].AssignmentID),
					zap.Error(err))
				continue
			}
			result.Reminded++
		}
	}

	// ── 过期处理 ──
	overdue, err := s.repo.Assignment.ListOverdue(ctx, now, s.cfg.SweepBatchSize)
	if err != nil {
		s.logger.Error("查询超期分配失败", zap.Error(err))
		return nil, err
	}
	result.Scanned = len(overdue)

	for i := range overdue {
		expired, err := s.assignment.Expire(ctx, overdue[i].AssignmentID)
		if err != nil {
			s.logger.Error("过期处理失败",
				zap.String("assignment_id", overdue[i].AssignmentID),
				zap.Error(err))
			continue
		}
		if expired {
			result.Expired++
		} else {
			// 查询后、更新前被用户操作抢先转换，良性落败
			result.Skipped++
		}
	}

	s.logger.Info("过期扫描完成",
		zap.Int("scanned", result.Scanned),
		zap.Int("expired", result.Expired),
		zap.Int("skipped", result.Skipped),
		zap.Int("reminded", result.Reminded))

	return result, nil
}
