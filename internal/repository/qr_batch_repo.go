package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
)

// QRBatchRepository 二维码批次数据访问接口
type QRBatchRepository interface {
	Create(ctx context.Context, batch *model.QRBatch) error
	GetByID(ctx context.Context, id string) (*model.QRBatch, error)
	List(ctx context.Context, offset, limit int) ([]model.QRBatch, int64, error)
}

type qrBatchRepo struct {
	db *gorm.DB
}

// NewQRBatchRepo 创建 QRBatchRepository 实例
func NewQRBatchRepo(db *gorm.DB) QRBatchRepository {
	return &qrBatchRepo{db: db}
}

func (r *qrBatchRepo) Create(ctx context.Context, batch *model.QRBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *qrBatchRepo) GetByID(ctx context.Context, id string) (*model.QRBatch, error) {
	var batch model.QRBatch
	err := r.db.WithContext(ctx).
		Preload("Retailer").
		Where("batch_id = ?", id).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *qrBatchRepo) List(ctx context.Context, offset, limit int) ([]model.QRBatch, int64, error) {
	var batches []model.QRBatch
	var total int64

	db := r.db.WithContext(ctx).Model(&model.QRBatch{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Retailer").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&batches).Error; err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}
