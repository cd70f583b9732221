package model

import "time"

// Scan 扫码记录，对应 scans
// 非持有者打开标签公开页时创建；ip_address 由揭示函数事后写入
// 限流窗口按 ip_stamped_at 计算，与页面打开时间无关
type Scan struct {
	ScanID          int64      `gorm:"primaryKey;autoIncrement"                  json:"scan_id"`
	QRCodeID        string     `gorm:"type:uuid;not null;index"                  json:"qr_code_id"`
	ScannedAt       time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index"  json:"scanned_at"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	Address         *string    `gorm:"type:text"                                 json:"address,omitempty"`
	ContactRevealed bool       `gorm:"not null;default:false"                    json:"contact_revealed"`
	IPAddress       *string    `gorm:"type:varchar(64);index"                    json:"-"`
	IPStampedAt     *time.Time `gorm:"index"                                    json:"-"`
	UserAgent       *string    `gorm:"type:text"                                 json:"-"`
}

// TableName 指定表名
func (Scan) TableName() string { return "scans" }

// RevealedContact 揭示出的持有者联系方式（仅是 reveal_contact 函数的结果投影，不落库）
type RevealedContact struct {
	OwnerName   *string `gorm:"column:owner_name"   json:"owner_name"`
	OwnerEmail  *string `gorm:"column:owner_email"  json:"owner_email"`
	OwnerPhone  *string `gorm:"column:owner_phone"  json:"owner_phone"`
	WhatsAppURL *string `gorm:"column:whatsapp_url" json:"whatsapp_url"`
}
