package model

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户表，对应 users（标签持有者 / 管理员）
type User struct {
	UserID          string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name            string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email           string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	Phone           *string `gorm:"type:varchar(32)"                               json:"phone,omitempty"`
	WhatsAppEnabled bool    `gorm:"column:whatsapp_enabled;not null;default:false" json:"whatsapp_enabled"`
	PasswordHash    string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role            string  `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
