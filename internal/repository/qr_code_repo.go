package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
	pkgerrors "github.com/claudialoqatr/lost-found-helper-sub000/pkg/errors"
)

// QRCodeRepository 标签数据访问接口
type QRCodeRepository interface {
	BatchCreate(ctx context.Context, codes []model.QRCode) error
	GetByID(ctx context.Context, id string) (*model.QRCode, error)
	GetByIdentifier(ctx context.Context, identifier string) (*model.QRCode, error)
	// GetByLoqatrIDForUpdate 使用 SELECT ... FOR UPDATE 行级锁查询，防止同一标签被并发认领
	GetByLoqatrIDForUpdate(ctx context.Context, loqatrID string) (*model.QRCode, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]model.QRCode, int64, error)
	ListByBatch(ctx context.Context, batchID string) ([]model.QRCode, error)
	// CountByIdentifierPrefix 统计以 prefix 开头的标识（含已删除），用于续编批次序号
	CountByIdentifierPrefix(ctx context.Context, prefix string) (int64, error)
	Update(ctx context.Context, code *model.QRCode) error
}

type qrCodeRepo struct {
	db *gorm.DB
}

// NewQRCodeRepo 创建 QRCodeRepository 实例
func NewQRCodeRepo(db *gorm.DB) QRCodeRepository {
	return &qrCodeRepo{db: db}
}

func (r *qrCodeRepo) BatchCreate(ctx context.Context, codes []model.QRCode) error {
	if len(codes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(codes, 100).Error
}

func (r *qrCodeRepo) GetByID(ctx context.Context, id string) (*model.QRCode, error) {
	var code model.QRCode
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("qr_code_id = ?", id).
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *qrCodeRepo) GetByIdentifier(ctx context.Context, identifier string) (*model.QRCode, error) {
	var code model.QRCode
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("identifier = ?", identifier).
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

// GetByLoqatrIDForUpdate 必须在事务连接上调用（通过 Repository.WithTx 注入）
func (r *qrCodeRepo) GetByLoqatrIDForUpdate(ctx context.Context, loqatrID string) (*model.QRCode, error) {
	var code model.QRCode
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loqatr_id = ?", loqatrID).
		First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *qrCodeRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]model.QRCode, int64, error) {
	var codes []model.QRCode
	var total int64

	db := r.db.WithContext(ctx).Model(&model.QRCode{}).Where("assigned_to = ?", ownerID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Item").
		Offset(offset).Limit(limit).
		Order("claimed_at DESC NULLS LAST, identifier ASC").
		Find(&codes).Error; err != nil {
		return nil, 0, err
	}

	return codes, total, nil
}

func (r *qrCodeRepo) ListByBatch(ctx context.Context, batchID string) ([]model.QRCode, error) {
	var codes []model.QRCode
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("identifier ASC").
		Find(&codes).Error
	return codes, err
}

func (r *qrCodeRepo) CountByIdentifierPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.QRCode{}).
		Where("identifier LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

// Update 按 version 乐观锁更新标签归属与可见性
func (r *qrCodeRepo) Update(ctx context.Context, code *model.QRCode) error {
	oldVersion := code.Version
	result := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Where("qr_code_id = ? AND version = ?", code.QRCodeID, oldVersion).
		Updates(map[string]interface{}{
			"status":      code.Status,
			"is_public":   code.IsPublic,
			"assigned_to": code.AssignedTo,
			"item_id":     code.ItemID,
			"claimed_at":  code.ClaimedAt,
			"updated_by":  code.UpdatedBy,
			"updated_at":  gorm.Expr("NOW()"),
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	code.Version = oldVersion + 1
	return nil
}
