package dto

// ── 匿名留言 DTO ──

// SendMessageRequest 拾获者给私密标签持有者留言
type SendMessageRequest struct {
	TurnstileToken string  `json:"turnstile_token" binding:"required"`
	ScanID         *int64  `json:"scan_id"`
	SenderName     *string `json:"sender_name"     binding:"omitempty,max=100"`
	SenderContact  *string `json:"sender_contact"  binding:"omitempty,max=255"`
	Body           string  `json:"body"            binding:"required,min=1,max=2000"`
}

// MessageListRequest 收件箱查询参数
type MessageListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// MessageResponse 收件箱留言
type MessageResponse struct {
	ID            string  `json:"id"`
	TagID         string  `json:"tag_id"`
	SenderName    *string `json:"sender_name,omitempty"`
	SenderContact *string `json:"sender_contact,omitempty"`
	Body          string  `json:"body"`
	IsRead        bool    `json:"is_read"`
	CreatedAt     string  `json:"created_at"`
}

// ── 通知 DTO ──

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse 通知
type NotificationResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	IsRead      bool    `json:"is_read"`
	RelatedType *string `json:"related_type,omitempty"`
	RelatedID   *string `json:"related_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
}
