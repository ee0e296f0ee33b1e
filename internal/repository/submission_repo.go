package repository

import (
	"context"

	"gorm.io/gorm"

	"peerhub/backend/internal/model"
	pkgerrors "peerhub/backend/pkg/errors"
)

// SubmissionRepository 作品提交数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Submission, int64, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Submission, error)
	// TransitionStatus 条件状态转换：仅当当前状态在 fromStatuses 中时生效，
	// 否则返回 pkg/errors.ErrOptimisticLock
	TransitionStatus(ctx context.Context, submissionID string, fromStatuses []string, updates map[string]interface{}) error
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("User").
		Where("submission_id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]model.Submission, int64, error) {
	var submissions []model.Submission
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("user_id = ?", userID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Project").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepo) ListByProject(ctx context.Context, projectID string) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepo) TransitionStatus(ctx context.Context, submissionID string, fromStatuses []string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("submission_id = ? AND status IN ?", submissionID, fromStatuses).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
