package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Project      ProjectRepository
	Submission   SubmissionRepository
	Assignment   AssignmentRepository
	Review       ReviewRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Project:      NewProjectRepo(db),
		Submission:   NewSubmissionRepo(db),
		Assignment:   NewAssignmentRepo(db),
		Review:       NewReviewRepo(db),
		Notification: NewNotificationRepo(db),
	}
}
