package dto

// ── 零售商 DTO ──

// CreateRetailerRequest 创建零售商
type CreateRetailerRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=100"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	Website      string `json:"website"       binding:"omitempty,url"`
}

// UpdateRetailerRequest 更新零售商
type UpdateRetailerRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	Website      *string `json:"website"       binding:"omitempty,url"`
	IsActive     *bool   `json:"is_active"`
}

// RetailerListRequest 零售商列表查询参数
type RetailerListRequest struct {
	PaginationRequest
	IncludeInactive bool   `form:"include_inactive"`
	Keyword         string `form:"keyword" binding:"omitempty,max=100"`
}

// RetailerResponse 零售商信息
type RetailerResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
	Website      string `json:"website,omitempty"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ── 二维码批次 DTO ──

// CreateQRBatchRequest 批量生成标签
type CreateQRBatchRequest struct {
	RetailerID *string `json:"retailer_id" binding:"omitempty,uuid"`
	Prefix     string  `json:"prefix"      binding:"required,alphanum,min=1,max=8"`
	Count      int     `json:"count"       binding:"required,min=1"`
}

// QRBatchResponse 批次信息
type QRBatchResponse struct {
	ID          string   `json:"id"`
	RetailerID  *string  `json:"retailer_id,omitempty"`
	Prefix      string   `json:"prefix"`
	Count       int      `json:"count"`
	Identifiers []string `json:"identifiers,omitempty"`
	CreatedAt   string   `json:"created_at"`
}
