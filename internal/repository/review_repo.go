package repository

import (
	"context"

	"gorm.io/gorm"

	"peerhub/backend/internal/model"
)

// ReviewRepository 评审内容数据访问接口
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	GetByAssignment(ctx context.Context, assignmentID string) (*model.Review, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]model.Review, error)
	// CountByReviewerInCategory 统计指定评审人在某项目类别下的已完成评审数，
	// 返回 reviewerID → 数量（无记录的评审人不出现在结果中）
	CountByReviewerInCategory(ctx context.Context, reviewerIDs []string, category string) (map[string]int64, error)
}

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo 创建 ReviewRepository 实例
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepo) GetByAssignment(ctx context.Context, assignmentID string) (*model.Review, error) {
	var review model.Review
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) ListBySubmission(ctx context.Context, submissionID string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepo) CountByReviewerInCategory(ctx context.Context, reviewerIDs []string, category string) (map[string]int64, error) {
	if len(reviewerIDs) == 0 {
		return map[string]int64{}, nil
	}

	type row struct {
		ReviewerID string
		Count      int64
	}
	var rows []row

	err := r.db.WithContext(ctx).
		Model(&model.Review{}).
		Select("reviews.reviewer_id AS reviewer_id, COUNT(*) AS count").
		Joins("JOIN submissions ON submissions.submission_id = reviews.submission_id").
		Joins("JOIN projects ON projects.project_id = submissions.project_id").
		Where("reviews.reviewer_id IN ? AND projects.category = ?", reviewerIDs, category).
		Group("reviews.reviewer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.ReviewerID] = row.Count
	}
	return result, nil
}
