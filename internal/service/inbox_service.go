package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
)

var (
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// MessageService 持有者收件箱
type MessageService interface {
	List(ctx context.Context, req *dto.MessageListRequest, userID string) ([]dto.MessageResponse, int64, error)
	MarkAsRead(ctx context.Context, id, userID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// NotificationService 持有者通知
type NotificationService interface {
	List(ctx context.Context, req *dto.NotificationListRequest, userID string) ([]dto.NotificationResponse, int64, error)
	MarkAsRead(ctx context.Context, id, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
}

// ────────────────────── Message ──────────────────────

type messageService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMessageService 创建 MessageService 实例
func NewMessageService(repo *repository.Repository, logger *zap.Logger) MessageService {
	return &messageService{repo: repo, logger: logger}
}

func (s *messageService) List(ctx context.Context, req *dto.MessageListRequest, userID string) ([]dto.MessageResponse, int64, error) {
	msgs, total, err := s.repo.Message.List(ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	list := make([]dto.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		list = append(list, dto.MessageResponse{
			ID:            m.MessageID,
			TagID:         m.QRCodeID,
			SenderName:    m.SenderName,
			SenderContact: m.SenderContact,
			Body:          m.Body,
			IsRead:        m.IsRead,
			CreatedAt:     formatTime(m.CreatedAt),
		})
	}
	return list, total, nil
}

func (s *messageService) MarkAsRead(ctx context.Context, id, userID string) error {
	if err := s.repo.Message.MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}

func (s *messageService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.repo.Message.CountUnread(ctx, userID)
}

// ────────────────────── Notification ──────────────────────

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) List(ctx context.Context, req *dto.NotificationListRequest, userID string) ([]dto.NotificationResponse, int64, error) {
	items, total, err := s.repo.Notification.List(ctx, userID, req.UnreadOnly, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	list := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		list = append(list, dto.NotificationResponse{
			ID:          n.NotificationID,
			Type:        n.Type,
			Title:       n.Title,
			Content:     n.Content,
			IsRead:      n.IsRead,
			RelatedType: n.RelatedType,
			RelatedID:   n.RelatedID,
			CreatedAt:   formatTime(n.CreatedAt),
		})
	}
	return list, total, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID string) error {
	if err := s.repo.Notification.MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.Notification.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("批量标记通知已读失败", zap.Error(err))
		return 0, err
	}
	return n, nil
}
