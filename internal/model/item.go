package model

// Item 物品信息，对应 items（每个已认领标签一条）
type Item struct {
	ItemID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"item_id"`
	OwnerID     string `gorm:"type:uuid;not null;index"                       json:"owner_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Item) TableName() string { return "items" }
