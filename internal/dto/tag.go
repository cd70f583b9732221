package dto

// ── 标签模块 DTO ──

// ClaimTagRequest 认领标签请求（loqatr_id 为标签背面印制的短码）
type ClaimTagRequest struct {
	LoqatrID        string `json:"loqatr_id"        binding:"required,min=4,max=16"`
	ItemName        string `json:"item_name"        binding:"required,min=1,max=100"`
	ItemDescription string `json:"item_description" binding:"omitempty,max=2000"`
	IsPublic        bool   `json:"is_public"`
}

// UpdateTagRequest 编辑标签请求
type UpdateTagRequest struct {
	ItemName        *string `json:"item_name"        binding:"omitempty,min=1,max=100"`
	ItemDescription *string `json:"item_description" binding:"omitempty,max=2000"`
	IsPublic        *bool   `json:"is_public"`
	Version         int     `json:"version"          binding:"required,min=1"`
}

// TagListRequest 我的标签列表查询参数
type TagListRequest struct {
	PaginationRequest
}

// TagResponse 标签详情（持有者视角）
type TagResponse struct {
	ID              string `json:"id"`
	Identifier      string `json:"identifier"`
	LoqatrID        string `json:"loqatr_id"`
	Status          string `json:"status"`
	IsPublic        bool   `json:"is_public"`
	ItemName        string `json:"item_name,omitempty"`
	ItemDescription string `json:"item_description,omitempty"`
	ClaimedAt       string `json:"claimed_at,omitempty"`
	Version         int    `json:"version"`
}

// ── 公开扫码 DTO ──

// PublicTagResponse 拾获者扫码看到的标签信息
// ScanID 仅在非持有者访问时返回，供后续揭示 / 留言关联
type PublicTagResponse struct {
	Identifier      string `json:"identifier"`
	Claimable       bool   `json:"claimable"`
	IsOwner         bool   `json:"is_owner"`
	IsPublic        bool   `json:"is_public"`
	ItemName        string `json:"item_name,omitempty"`
	ItemDescription string `json:"item_description,omitempty"`
	ScanID          *int64 `json:"scan_id,omitempty"`
}

// UpdateScanLocationRequest 拾获者补充位置
type UpdateScanLocationRequest struct {
	QRIdentifier string   `json:"qr_identifier" binding:"required"`
	Latitude     *float64 `json:"latitude"      binding:"omitempty,latitude"`
	Longitude    *float64 `json:"longitude"     binding:"omitempty,longitude"`
	Address      *string  `json:"address"       binding:"omitempty,max=500"`
}

// ScanListRequest 扫码记录查询参数
type ScanListRequest struct {
	PaginationRequest
}

// ScanResponse 扫码记录（持有者视角，不含 IP）
type ScanResponse struct {
	ID              int64    `json:"id"`
	ScannedAt       string   `json:"scanned_at"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	Address         *string  `json:"address,omitempty"`
	ContactRevealed bool     `json:"contact_revealed"`
}
