package model

// 通知类型
const (
	NotificationAssignmentCreated   = "assignment_created"
	NotificationAssignmentExpiring  = "assignment_expiring"
	NotificationAssignmentCompleted = "assignment_completed"
	NotificationSubmissionReviewed  = "submission_reviewed"
)

// Notification 通知消息表 — 对应 notifications
// 站内通知落库即视为投递完成；推送/邮件由外部分发服务消费
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // submission | assignment
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
