package model

// Project 实战项目表 — 对应 projects
// category / difficulty / min_reviews 驱动评审候选人筛选与覆盖判定
type Project struct {
	ProjectID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"project_id"`
	Title       string `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	Category    string `gorm:"type:varchar(50);not null"                      json:"category"`
	Difficulty  int    `gorm:"not null;default:1"                             json:"difficulty"`
	MinReviews  int    `gorm:"not null;default:1"                             json:"min_reviews"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Project) TableName() string { return "projects" }
