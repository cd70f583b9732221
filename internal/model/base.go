package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 审计字段：批次、标签等由后台或用户创建的记录都会带上操作人
// CreatedBy/UpdatedBy 为空表示系统或命令行操作
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"              json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"              json:"updated_by,omitempty"`
}

// SoftDeleteModel 物品、零售商、留言、通知使用软删除
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"    json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 带乐观锁版本号，用于认领/释放标签与用户资料更新
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
