package handler

import (
	"go.uber.org/zap"

	"github.com/claudialoqatr/lost-found-helper-sub000/config"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Reveal       *RevealHandler
	Tag          *TagHandler
	Public       *PublicHandler
	Message      *MessageHandler
	Notification *NotificationHandler
	Admin        *AdminHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, &cfg.Auth),
		Reveal:       NewRevealHandler(svc.Reveal, logger),
		Tag:          NewTagHandler(svc.Tag),
		Public:       NewPublicHandler(svc.Public),
		Message:      NewMessageHandler(svc.Message),
		Notification: NewNotificationHandler(svc.Notification),
		Admin:        NewAdminHandler(svc.Retailer, svc.QRBatch, cfg.QR.PNGSize),
	}
}
