package model

import "time"

// 标签状态
const (
	QRStatusUnassigned = "unassigned"
	QRStatusActive     = "active"
	QRStatusDisabled   = "disabled"
)

// QRCode 实体二维码标签，对应 qr_codes
// 揭示流程只读取 IsPublic 与 AssignedTo，从不修改标签
type QRCode struct {
	QRCodeID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"qr_code_id"`
	Identifier string     `gorm:"type:varchar(64);not null;uniqueIndex"            json:"identifier"`
	LoqatrID   string     `gorm:"type:varchar(16);not null;uniqueIndex"            json:"loqatr_id"`
	Status     string     `gorm:"type:varchar(20);not null;default:'unassigned'"   json:"status"`
	IsPublic   bool       `gorm:"not null;default:false"                           json:"is_public"`
	AssignedTo *string    `gorm:"type:uuid;index"                                  json:"assigned_to,omitempty"`
	ItemID     *string    `gorm:"type:uuid"                                        json:"item_id,omitempty"`
	RetailerID *string    `gorm:"type:uuid"                                        json:"retailer_id,omitempty"`
	BatchID    *string    `gorm:"type:uuid;index"                                  json:"batch_id,omitempty"`
	ClaimedAt  *time.Time `json:"claimed_at,omitempty"`
	VersionedModel

	// 关联
	Item  *Item `gorm:"foreignKey:ItemID;references:ItemID"      json:"item,omitempty"`
	Owner *User `gorm:"foreignKey:AssignedTo;references:UserID" json:"owner,omitempty"`
}

// TableName 指定表名
func (QRCode) TableName() string { return "qr_codes" }

// IsOwnedBy 判断标签是否归属于指定用户
func (q *QRCode) IsOwnedBy(userID string) bool {
	return userID != "" && q.AssignedTo != nil && *q.AssignedTo == userID
}
