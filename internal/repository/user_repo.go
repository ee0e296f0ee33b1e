package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"peerhub/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]model.User, int64, error)
	// ListPeerCandidates 返回可进入同行评审候选池的活跃普通用户，排除指定用户
	ListPeerCandidates(ctx context.Context, excludeIDs []string) ([]model.User, error)
	// ListStaff 返回平台评审人员，按最近被分配时间升序（最久未被分配优先，NULL 最前）
	ListStaff(ctx context.Context) ([]model.User, error)
	// TouchLastAssigned 更新负载均衡时间戳
	TouchLastAssigned(ctx context.Context, userID string, at time.Time) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) ListPeerCandidates(ctx context.Context, excludeIDs []string) ([]model.User, error) {
	var users []model.User
	db := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("role = ?", model.RoleMember)
	if len(excludeIDs) > 0 {
		db = db.Where("user_id NOT IN ?", excludeIDs)
	}
	err := db.Order("user_id ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) ListStaff(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("role IN ?", []string{model.RoleStaff, model.RoleAdmin}).
		Order("last_assigned_at ASC NULLS FIRST, user_id ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) TouchLastAssigned(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("last_assigned_at", at).Error
}
