package service

import (
	"go.uber.org/zap"

	"github.com/claudialoqatr/lost-found-helper-sub000/config"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/captcha"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Reveal       RevealService
	Tag          TagService
	Public       PublicService
	Message      MessageService
	Notification NotificationService
	Retailer     RetailerService
	QRBatch      QRBatchService
	Maintenance  MaintenanceService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	verifier captcha.Verifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Reveal:       NewRevealService(cfg, repo, verifier, logger),
		Tag:          NewTagService(repo, logger),
		Public:       NewPublicService(repo, verifier, logger),
		Message:      NewMessageService(repo, logger),
		Notification: NewNotificationService(repo, logger),
		Retailer:     NewRetailerService(repo, logger),
		QRBatch:      NewQRBatchService(cfg, repo, logger),
		Maintenance:  NewMaintenanceService(cfg, repo, logger),
	}
}
