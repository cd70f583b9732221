package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name            string  `json:"name"             binding:"required,min=2,max=100"`
	Email           string  `json:"email"            binding:"required,email"`
	Password        string  `json:"password"         binding:"required,min=8,max=72"`
	Phone           *string `json:"phone"            binding:"omitempty,e164"`
	WhatsAppEnabled bool    `json:"whatsapp_enabled"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest 修改联系偏好
type UpdateProfileRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=2,max=100"`
	Phone           *string `json:"phone"            binding:"omitempty,e164"`
	WhatsAppEnabled *bool   `json:"whatsapp_enabled"`
}
