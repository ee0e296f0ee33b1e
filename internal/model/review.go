package model

// Review 评审内容表 — 对应 reviews
// 仅在分配转入 completed 时创建，创建后不可修改（无更新路径）
type Review struct {
	ReviewID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"review_id"`
	AssignmentID     string  `gorm:"type:uuid;not null;uniqueIndex"                 json:"assignment_id"`
	SubmissionID     string  `gorm:"type:uuid;not null"                             json:"submission_id"`
	ReviewerID       string  `gorm:"type:uuid;not null"                             json:"reviewer_id"`
	OverallScore     int     `gorm:"not null"                                       json:"overall_score"` // 0-100
	CriteriaScores   JSONMap `gorm:"type:jsonb;not null"                            json:"criteria_scores"`
	Strengths        string  `gorm:"type:text"                                      json:"strengths,omitempty"`
	Improvements     string  `gorm:"type:text"                                      json:"improvements,omitempty"`
	Suggestions      string  `gorm:"type:text"                                      json:"suggestions,omitempty"`
	TimeSpentMinutes int     `gorm:"not null;default:0"                             json:"time_spent_minutes"`
	BaseModel

	// 关联
	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
}

// TableName 指定表名
func (Review) TableName() string { return "reviews" }
