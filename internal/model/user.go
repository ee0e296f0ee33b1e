package model

import "time"

// 用户角色
const (
	RoleMember = "member"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

// User 用户表 — 对应 users
// 密码与登录凭据由外部身份服务管理，此处只保存评审分配所需的画像字段
type User struct {
	UserID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name            string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Email           string     `gorm:"type:varchar(255);not null"                     json:"email"`
	Role            string     `gorm:"type:varchar(20);not null;default:'member'"     json:"role"` // member | staff | admin
	DifficultyLevel int        `gorm:"not null;default:1"                             json:"difficulty_level"`
	LastAssignedAt  *time.Time `json:"last_assigned_at,omitempty"` // 负载均衡：最近一次被分配评审
	IsActive        bool       `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsStaff 判断用户是否属于平台评审人员
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}
