package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/captcha"
)

var (
	ErrScanNotFound       = errors.New("scan not found")
	ErrIncompleteLocation = errors.New("latitude and longitude must be provided together")
	ErrTagNotReachable    = errors.New("this tag is not accepting messages")
)

// PublicService 拾获者（匿名）侧的标签访问
type PublicService interface {
	// ViewTag 非持有者访问时创建扫码记录；viewerID 为空表示匿名访问
	ViewTag(ctx context.Context, identifier, viewerID, userAgent string) (*dto.PublicTagResponse, error)
	UpdateScanLocation(ctx context.Context, scanID int64, req *dto.UpdateScanLocationRequest) error
	SendMessage(ctx context.Context, identifier string, req *dto.SendMessageRequest, clientIP string) error
}

type publicService struct {
	repo     *repository.Repository
	verifier captcha.Verifier
	logger   *zap.Logger
}

// NewPublicService 创建 PublicService 实例
func NewPublicService(repo *repository.Repository, verifier captcha.Verifier, logger *zap.Logger) PublicService {
	return &publicService{repo: repo, verifier: verifier, logger: logger}
}

// ────────────────────── ViewTag ──────────────────────

func (s *publicService) ViewTag(ctx context.Context, identifier, viewerID, userAgent string) (*dto.PublicTagResponse, error) {
	tag, err := s.getTag(ctx, identifier)
	if err != nil {
		return nil, err
	}

	resp := &dto.PublicTagResponse{Identifier: tag.Identifier}
	switch tag.Status {
	case model.QRStatusDisabled:
		return nil, ErrTagDisabled
	case model.QRStatusUnassigned:
		resp.Claimable = true
		return resp, nil
	}

	resp.IsPublic = tag.IsPublic
	if tag.Item != nil {
		resp.ItemName = tag.Item.Name
		resp.ItemDescription = tag.Item.Description
	}

	if tag.IsOwnedBy(viewerID) {
		resp.IsOwner = true
		return resp, nil
	}

	scan := &model.Scan{QRCodeID: tag.QRCodeID}
	if ua := strings.TrimSpace(userAgent); ua != "" {
		scan.UserAgent = &ua
	}
	if err := s.repo.Scan.Create(ctx, scan); err != nil {
		s.logger.Error("创建扫码记录失败", zap.String("qr_code_id", tag.QRCodeID), zap.Error(err))
		return nil, err
	}
	resp.ScanID = &scan.ScanID

	s.notifyOwner(ctx, tag, model.NotificationTagScanned,
		"Your tag was scanned",
		fmt.Sprintf("Someone scanned the tag on %s.", itemLabel(tag)),
		"scan", fmt.Sprintf("%d", scan.ScanID),
	)
	return resp, nil
}

// ────────────────────── UpdateScanLocation ──────────────────────

func (s *publicService) UpdateScanLocation(ctx context.Context, scanID int64, req *dto.UpdateScanLocationRequest) error {
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return ErrIncompleteLocation
	}

	tag, err := s.getTag(ctx, req.QRIdentifier)
	if err != nil {
		return err
	}

	if err := s.repo.Scan.UpdateLocation(ctx, scanID, tag.QRCodeID, req.Latitude, req.Longitude, req.Address); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScanNotFound
		}
		s.logger.Error("更新扫码位置失败", zap.Int64("scan_id", scanID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── SendMessage ──────────────────────

func (s *publicService) SendMessage(ctx context.Context, identifier string, req *dto.SendMessageRequest, clientIP string) error {
	remoteIP := clientIP
	if remoteIP == UnknownClientIP {
		remoteIP = ""
	}
	ok, err := s.verifier.Verify(ctx, req.TurnstileToken, remoteIP)
	if err != nil {
		s.logger.Error("调用人机验证服务失败", zap.Error(err))
		return fmt.Errorf("verify captcha: %w", err)
	}
	if !ok {
		return ErrCaptchaFailed
	}

	tag, err := s.getTag(ctx, identifier)
	if err != nil {
		return err
	}
	if tag.Status != model.QRStatusActive || tag.AssignedTo == nil {
		return ErrTagNotReachable
	}

	msg := &model.Message{
		QRCodeID:      tag.QRCodeID,
		RecipientID:   *tag.AssignedTo,
		ScanID:        req.ScanID,
		SenderName:    trimmedOrNil(req.SenderName),
		SenderContact: trimmedOrNil(req.SenderContact),
		Body:          strings.TrimSpace(req.Body),
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Message.Create(ctx, msg); err != nil {
		rollback(tx)
		s.logger.Error("保存留言失败", zap.Error(err))
		return err
	}

	relatedType := "message"
	notification := &model.Notification{
		UserID:      *tag.AssignedTo,
		Type:        model.NotificationMessageReceived,
		Title:       "New message about your item",
		Content:     fmt.Sprintf("A finder left a message about %s.", itemLabel(tag)),
		RelatedType: &relatedType,
		RelatedID:   &msg.MessageID,
	}
	if err := txRepo.Notification.Create(ctx, notification); err != nil {
		rollback(tx)
		s.logger.Error("创建留言通知失败", zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.logger.Info("收到匿名留言", zap.String("qr_code_id", tag.QRCodeID))
	return nil
}

// ── 辅助 ──

func (s *publicService) getTag(ctx context.Context, identifier string) (*model.QRCode, error) {
	tag, err := s.repo.QRCode.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

// notifyOwner 尽力创建通知，失败只记日志
func (s *publicService) notifyOwner(ctx context.Context, tag *model.QRCode, typ, title, content, relatedType, relatedID string) {
	if tag.AssignedTo == nil {
		return
	}
	n := &model.Notification{
		UserID:      *tag.AssignedTo,
		Type:        typ,
		Title:       title,
		Content:     content,
		RelatedType: &relatedType,
		RelatedID:   &relatedID,
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("创建通知失败", zap.String("type", typ), zap.Error(err))
	}
}

func itemLabel(tag *model.QRCode) string {
	if tag.Item != nil && tag.Item.Name != "" {
		return tag.Item.Name
	}
	return "your item"
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
