package model

// QRBatch 二维码批次，对应 qr_batches
type QRBatch struct {
	BatchID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"batch_id"`
	RetailerID *string `gorm:"type:uuid"                                      json:"retailer_id,omitempty"`
	Prefix     string  `gorm:"type:varchar(16);not null"                      json:"prefix"`
	Count      int     `gorm:"not null"                                       json:"count"`
	BaseModel

	Retailer *Retailer `gorm:"foreignKey:RetailerID;references:RetailerID" json:"retailer,omitempty"`
}

// TableName 指定表名
func (QRBatch) TableName() string { return "qr_batches" }
