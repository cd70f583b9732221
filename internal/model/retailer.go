package model

// Retailer 零售渠道，对应 retailers（批量标签的销售方）
type Retailer struct {
	RetailerID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"retailer_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	ContactEmail string `gorm:"type:varchar(255)"                              json:"contact_email,omitempty"`
	Website      string `gorm:"type:varchar(255)"                              json:"website,omitempty"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (Retailer) TableName() string { return "retailers" }
