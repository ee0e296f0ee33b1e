package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"peerhub/backend/internal/model"
	pkgerrors "peerhub/backend/pkg/errors"
)

// AssignmentRepository 评审分配数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]model.Assignment, error)
	ListByReviewer(ctx context.Context, reviewerID, status string, offset, limit int) ([]model.Assignment, int64, error)
	ListActiveByReviewer(ctx context.Context, reviewerID string) ([]model.Assignment, error)
	// ActiveReviewerIDs 返回对指定作品持有活跃分配的评审人 ID
	ActiveReviewerIDs(ctx context.Context, submissionID string) ([]string, error)
	CountActiveBySubmission(ctx context.Context, submissionID string) (int64, error)
	CountCompletedBySubmission(ctx context.Context, submissionID string) (int64, error)
	HasActive(ctx context.Context, submissionID, reviewerID string) (bool, error)
	// ListOverdue 返回已超期仍活跃的分配（due_date < now），按到期时间升序
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]model.Assignment, error)
	// ListExpiring 返回将在 [now, until] 内到期、尚未提醒过的活跃分配
	ListExpiring(ctx context.Context, now, until time.Time, limit int) ([]model.Assignment, error)
	MarkReminded(ctx context.Context, assignmentID string, at time.Time) error
	// TransitionStatus 条件状态转换：仅当当前状态在 fromStatuses 中时生效。
	// 两个并发转换竞争同一条记录时恰有一方成功，落败方收到
	// pkg/errors.ErrOptimisticLock，由调用方决定报错或视为空操作
	TransitionStatus(ctx context.Context, assignmentID string, fromStatuses []string, updates map[string]interface{}) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Submission").Preload("Submission.Project").
		Preload("Reviewer").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) ListBySubmission(ctx context.Context, submissionID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListByReviewer(ctx context.Context, reviewerID, status string, offset, limit int) ([]model.Assignment, int64, error) {
	var assignments []model.Assignment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("reviewer_id = ?", reviewerID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Submission").Preload("Submission.Project").
		Offset(offset).Limit(limit).
		Order("due_date ASC").
		Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (r *assignmentRepo) ListActiveByReviewer(ctx context.Context, reviewerID string) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Submission").Preload("Submission.Project").
		Where("reviewer_id = ? AND status IN ?", reviewerID, model.ActiveAssignmentStatuses).
		Order("due_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ActiveReviewerIDs(ctx context.Context, submissionID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("submission_id = ? AND status IN ?", submissionID, model.ActiveAssignmentStatuses).
		Where("reviewer_id IS NOT NULL").
		Pluck("reviewer_id", &ids).Error
	return ids, err
}

func (r *assignmentRepo) CountActiveBySubmission(ctx context.Context, submissionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("submission_id = ? AND status IN ?", submissionID, model.ActiveAssignmentStatuses).
		Count(&count).Error
	return count, err
}

func (r *assignmentRepo) CountCompletedBySubmission(ctx context.Context, submissionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("submission_id = ? AND status = ?", submissionID, model.AssignmentStatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *assignmentRepo) HasActive(ctx context.Context, submissionID, reviewerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("submission_id = ? AND reviewer_id = ? AND status IN ?",
			submissionID, reviewerID, model.ActiveAssignmentStatuses).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *assignmentRepo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?", model.ActiveAssignmentStatuses, now).
		Order("due_date ASC").
		Limit(limit).
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListExpiring(ctx context.Context, now, until time.Time, limit int) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date >= ? AND due_date <= ? AND reminded_at IS NULL",
			model.ActiveAssignmentStatuses, now, until).
		Order("due_date ASC").
		Limit(limit).
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) MarkReminded(ctx context.Context, assignmentID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", assignmentID).
		Update("reminded_at", at).Error
}

func (r *assignmentRepo) TransitionStatus(ctx context.Context, assignmentID string, fromStatuses []string, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ? AND status IN ?", assignmentID, fromStatuses).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
