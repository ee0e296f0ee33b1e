package model

import "time"

// 作品提交状态
const (
	SubmissionStatusDraft       = "draft"
	SubmissionStatusSubmitted   = "submitted"
	SubmissionStatusUnderReview = "under_review"
	SubmissionStatusReviewed    = "reviewed"
)

// Submission 作品提交表 — 对应 submissions
// 状态仅由覆盖协调器推进；reviewed 当且仅当完成评审数 ≥ project.min_reviews
type Submission struct {
	SubmissionID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	ProjectID    string     `gorm:"type:uuid;not null"                             json:"project_id"`
	UserID       string     `gorm:"type:uuid;not null"                             json:"user_id"`
	Status       string     `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"` // draft | submitted | under_review | reviewed
	Content      string     `gorm:"type:text"                                      json:"content,omitempty"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	VersionedModel

	// 关联
	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
	User    *User    `gorm:"foreignKey:UserID;references:UserID"       json:"user,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }
