package model

import "time"

// 评审分配类型
const (
	AssignmentTypePeer  = "peer"
	AssignmentTypeAdmin = "admin"
)

// 评审分配状态机：
//
//	assigned → accepted → completed        （正常路径）
//	assigned → rejected                    （评审人拒绝）
//	assigned | accepted → expired          （超时，由扫描器触发）
//	assigned | accepted → cancelled        （管理员取消）
//
// completed / rejected / expired / cancelled 均为终态
const (
	AssignmentStatusAssigned  = "assigned"
	AssignmentStatusAccepted  = "accepted"
	AssignmentStatusCompleted = "completed"
	AssignmentStatusRejected  = "rejected"
	AssignmentStatusExpired   = "expired"
	AssignmentStatusCancelled = "cancelled"
)

// ActiveAssignmentStatuses 活跃（占用评审名额）的状态集合
var ActiveAssignmentStatuses = []string{AssignmentStatusAssigned, AssignmentStatusAccepted}

// Assignment 评审分配表 — 对应 assignments
// 表示一名评审人对一份作品的评审义务。
// 不变量：同一 (submission, reviewer) 同时最多一条活跃记录（数据库部分唯一索引兜底）；
// 评审人不会被分配到自己的作品。
type Assignment struct {
	AssignmentID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	SubmissionID    string     `gorm:"type:uuid;not null"                             json:"submission_id"`
	ReviewerID      *string    `gorm:"type:uuid"                                      json:"reviewer_id,omitempty"`
	AssignmentType  string     `gorm:"type:varchar(10);not null;default:'peer'"       json:"assignment_type"` // peer | admin
	Priority        int        `gorm:"not null;default:0"                             json:"priority"`
	Status          string     `gorm:"type:varchar(20);not null;default:'assigned'"   json:"status"`
	DueDate         time.Time  `gorm:"not null"                                       json:"due_date"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `gorm:"type:varchar(500)"                              json:"rejection_reason,omitempty"`
	ExpiredAt       *time.Time `json:"expired_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	RemindedAt      *time.Time `json:"reminded_at,omitempty"` // 到期前提醒已发送
	VersionedModel

	// 关联
	Submission *Submission `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"submission,omitempty"`
	Reviewer   *User       `gorm:"foreignKey:ReviewerID;references:UserID"         json:"reviewer,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// IsActive 是否处于活跃（非终态）状态
func (a *Assignment) IsActive() bool {
	return a.Status == AssignmentStatusAssigned || a.Status == AssignmentStatusAccepted
}

// IsOverdue 是否已超过评审期限
func (a *Assignment) IsOverdue(now time.Time) bool {
	return a.IsActive() && now.After(a.DueDate)
}
