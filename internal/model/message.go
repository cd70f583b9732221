package model

// Message 匿名留言，对应 messages（私密模式标签的拾获者留言）
type Message struct {
	MessageID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	QRCodeID      string  `gorm:"type:uuid;not null;index"                       json:"qr_code_id"`
	RecipientID   string  `gorm:"type:uuid;not null;index"                       json:"recipient_id"`
	ScanID        *int64  `json:"scan_id,omitempty"`
	SenderName    *string `gorm:"type:varchar(100)"                              json:"sender_name,omitempty"`
	SenderContact *string `gorm:"type:varchar(255)"                              json:"sender_contact,omitempty"`
	Body          string  `gorm:"type:text;not null"                             json:"body"`
	IsRead        bool    `gorm:"not null;default:false"                         json:"is_read"`
	SoftDeleteModel
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }
