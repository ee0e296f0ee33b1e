package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"peerhub/backend/internal/model"
	"peerhub/backend/internal/repository"
)

// EligibilityService 评审候选人筛选接口
//
// 规则（按序应用）：
//  1. 排除提交者本人
//  2. 排除已对该作品持有活跃分配的用户
//  3. 优先有同类别评审经验的用户
//  4. 优先自身难度等级 ≥ 作品难度的用户（评审人不应弱于被评作品）
//  5. 同分按最久未被分配优先（负载均衡），最终按用户 ID 稳定排序
//
// 候选池耗尽时返回少于请求数量的结果，这不是错误——
// 由调用方（覆盖协调器）决定是否回退到平台评审人员。无副作用。
type EligibilityService interface {
	FindCandidates(ctx context.Context, submissionID, submitterID, category string, difficulty, limit int) ([]model.User, error)
}

type eligibilityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEligibilityService 创建 EligibilityService 实例
func NewEligibilityService(repo *repository.Repository, logger *zap.Logger) EligibilityService {
	return &eligibilityService{repo: repo, logger: logger}
}

// 软偏好的评分权重，分数越低越优先
const (
	scoreNoCategoryExperience = 100 // 无同类别评审经验
	scoreBelowDifficulty      = 50  // 自身难度等级低于作品难度
)

func (s *eligibilityService) FindCandidates(ctx context.Context, submissionID, submitterID, category string, difficulty, limit int) ([]model.User, error) {
	if limit <= 0 {
		return nil, nil
	}

	// ── 硬性排除：提交者本人 + 已持有活跃分配的评审人 ──
	activeIDs, err := s.repo.Assignment.ActiveReviewerIDs(ctx, submissionID)
	if err != nil {
		s.logger.Error("查询活跃评审人失败", zap.Error(err))
		return nil, err
	}
	excludeIDs := append([]string{submitterID}, activeIDs...)

	pool, err := s.repo.User.ListPeerCandidates(ctx, excludeIDs)
	if err != nil {
		s.logger.Error("查询候选池失败", zap.Error(err))
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	// ── 软偏好打分 ──
	poolIDs := make([]string, len(pool))
	for i, u := range pool {
		poolIDs[i] = u.UserID
	}
	categoryCounts, err := s.repo.Review.CountByReviewerInCategory(ctx, poolIDs, category)
	if err != nil {
		s.logger.Error("查询类别评审经验失败", zap.Error(err))
		return nil, err
	}

	type scoredCandidate struct {
		user  model.User
		score int
	}
	scored := make([]scoredCandidate, 0, len(pool))
	for _, u := range pool {
		score := 0
		if categoryCounts[u.UserID] == 0 {
			score += scoreNoCategoryExperience
		}
		if u.DifficultyLevel < difficulty {
			score += scoreBelowDifficulty
		}
		scored = append(scored, scoredCandidate{user: u, score: score})
	}

	// 分数升序；同分按最久未被分配优先（从未被分配排最前）；
	// 再同按用户 ID 排序，保证结果确定性
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score < scored[j].score
		}
		li, lj := scored[i].user.LastAssignedAt, scored[j].user.LastAssignedAt
		switch {
		case li == nil && lj != nil:
			return true
		case li != nil && lj == nil:
			return false
		case li != nil && lj != nil && !li.Equal(*lj):
			return li.Before(*lj)
		}
		return scored[i].user.UserID < scored[j].user.UserID
	})

	if limit > len(scored) {
		limit = len(scored)
	}
	candidates := make([]model.User, 0, limit)
	for _, sc := range scored[:limit] {
		candidates = append(candidates, sc.user)
	}
	return candidates, nil
}
