package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ── 联系方式揭示（边缘函数契约）──

// RevealContactRequest POST /functions/v1/reveal-contact 请求体
// 三个必填字段缺一即 400；坐标与地址为客户端附带的可选信息
type RevealContactRequest struct {
	ScanID         int64    `json:"scan_id"`
	QRIdentifier   string   `json:"qr_identifier"`
	TurnstileToken string   `json:"turnstile_token"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Address        *string  `json:"address,omitempty"`
}

// HasRequiredFields 三个必填字段是否齐全
func (r *RevealContactRequest) HasRequiredFields() bool {
	return r.ScanID != 0 && r.QRIdentifier != "" && r.TurnstileToken != ""
}

// ContactPayload 揭示出的联系方式；服务端与客户端共用同一结构
// 字段为 nil 时序列化为 null
type ContactPayload struct {
	OwnerName   *string `json:"owner_name"   validate:"omitempty,max=100"`
	OwnerEmail  *string `json:"owner_email"  validate:"omitempty,email"`
	OwnerPhone  *string `json:"owner_phone"  validate:"omitempty,max=32"`
	WhatsAppURL *string `json:"whatsapp_url" validate:"omitempty,url"`
}

// RevealContactResponse 揭示成功响应体
type RevealContactResponse struct {
	Success bool            `json:"success" validate:"eq=true"`
	Contact *ContactPayload `json:"contact" validate:"required"`
}

// RevealErrorResponse 揭示失败响应体
type RevealErrorResponse struct {
	Error string `json:"error"`
}

var contactValidator = validator.New()

// Validate 校验揭示响应结构，拒绝形状异常的负载
func (r *RevealContactResponse) Validate() error {
	if err := contactValidator.Struct(r); err != nil {
		return fmt.Errorf("invalid reveal response: %w", err)
	}
	return nil
}
