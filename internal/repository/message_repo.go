package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
)

// MessageRepository 匿名留言数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	List(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]model.Message, int64, error)
	// MarkAsRead 仅允许收件人标记，未命中返回 gorm.ErrRecordNotFound
	MarkAsRead(ctx context.Context, id, recipientID string) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepo) List(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]model.Message, int64, error) {
	var msgs []model.Message
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Message{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&msgs).Error; err != nil {
		return nil, 0, err
	}

	return msgs, total, nil
}

func (r *messageRepo) MarkAsRead(ctx context.Context, id, recipientID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("message_id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *messageRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}
