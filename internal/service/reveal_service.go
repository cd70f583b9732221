package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/claudialoqatr/lost-found-helper-sub000/config"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/captcha"
	pkgerrors "github.com/claudialoqatr/lost-found-helper-sub000/pkg/errors"
)

// UnknownClientIP 无法从请求头取得来源 IP 时写入扫码记录的占位值
// 所有无法识别来源的请求共享同一个限流桶
const UnknownClientIP = "unknown"

// ── 揭示模块业务错误 ──

var (
	ErrCaptchaFailed       = errors.New("captcha verification failed")
	ErrContactNotAvailable = errors.New("contact information not available")
)

// RevealService 联系方式揭示
// 严格按顺序执行：人机验证 → 写入扫码 IP → 调用 reveal_contact
type RevealService interface {
	// Reveal 成功时返回联系方式；限流与数据库函数错误以 *pkgerrors.RevealProcedureError 返回
	Reveal(ctx context.Context, req *dto.RevealContactRequest, clientIP string) (*dto.ContactPayload, error)
}

type revealService struct {
	cfg      *config.Config
	repo     *repository.Repository
	verifier captcha.Verifier
	logger   *zap.Logger
}

// NewRevealService 创建 RevealService 实例
func NewRevealService(
	cfg *config.Config,
	repo *repository.Repository,
	verifier captcha.Verifier,
	logger *zap.Logger,
) RevealService {
	return &revealService{
		cfg:      cfg,
		repo:     repo,
		verifier: verifier,
		logger:   logger,
	}
}

func (s *revealService) Reveal(ctx context.Context, req *dto.RevealContactRequest, clientIP string) (*dto.ContactPayload, error) {
	// 1. 服务端复核 token；失败时不产生任何写操作
	remoteIP := clientIP
	if remoteIP == UnknownClientIP {
		remoteIP = ""
	}
	ok, err := s.verifier.Verify(ctx, req.TurnstileToken, remoteIP)
	if err != nil {
		s.logger.Error("调用人机验证服务失败", zap.Error(err))
		return nil, fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		s.logger.Info("人机验证未通过",
			zap.Int64("scan_id", req.ScanID),
			zap.String("qr_identifier", req.QRIdentifier),
		)
		return nil, ErrCaptchaFailed
	}

	// 2. 写入扫码 IP，本次请求计入限流窗口；失败只记日志
	if err := s.repo.Scan.UpdateIP(ctx, req.ScanID, clientIP); err != nil {
		s.logger.Warn("写入扫码 IP 失败",
			zap.Int64("scan_id", req.ScanID),
			zap.Error(err),
		)
	}

	// 3. 数据库函数负责配额检查与联系方式读取
	contact, err := s.repo.Reveal.RevealContact(ctx, req.QRIdentifier, req.ScanID, s.cfg.Reveal.HourlyQuota)
	if err != nil {
		if pkgerrors.IsRevealRateLimited(err) {
			s.logger.Info("揭示请求超出配额",
				zap.String("ip", clientIP),
				zap.String("qr_identifier", req.QRIdentifier),
			)
		} else {
			s.logger.Error("reveal_contact 调用失败",
				zap.Int64("scan_id", req.ScanID),
				zap.Error(err),
			)
		}
		return nil, err
	}
	if contact == nil {
		return nil, ErrContactNotAvailable
	}

	s.afterReveal(ctx, req)

	return &dto.ContactPayload{
		OwnerName:   contact.OwnerName,
		OwnerEmail:  contact.OwnerEmail,
		OwnerPhone:  contact.OwnerPhone,
		WhatsAppURL: contact.WhatsAppURL,
	}, nil
}

// afterReveal 揭示成功后的附带写操作：保存拾获者位置、通知持有者
// 均为尽力而为，不影响响应
func (s *revealService) afterReveal(ctx context.Context, req *dto.RevealContactRequest) {
	tag, err := s.repo.QRCode.GetByIdentifier(ctx, req.QRIdentifier)
	if err != nil {
		s.logger.Warn("揭示后查询标签失败", zap.String("qr_identifier", req.QRIdentifier), zap.Error(err))
		return
	}

	if req.Latitude != nil || req.Address != nil {
		if err := s.repo.Scan.UpdateLocation(ctx, req.ScanID, tag.QRCodeID, req.Latitude, req.Longitude, req.Address); err != nil {
			s.logger.Warn("保存拾获者位置失败", zap.Int64("scan_id", req.ScanID), zap.Error(err))
		}
	}

	if tag.AssignedTo == nil {
		return
	}
	relatedType := "scan"
	relatedID := fmt.Sprintf("%d", req.ScanID)
	notification := &model.Notification{
		UserID:      *tag.AssignedTo,
		Type:        model.NotificationContactRevealed,
		Title:       "Someone viewed your contact details",
		Content:     fmt.Sprintf("A finder revealed your contact details for %s.", itemLabel(tag)),
		RelatedType: &relatedType,
		RelatedID:   &relatedID,
	}
	if err := s.repo.Notification.Create(ctx, notification); err != nil {
		s.logger.Warn("创建揭示通知失败", zap.Error(err))
	}
}
