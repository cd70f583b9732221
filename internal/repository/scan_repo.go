package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
)

// ScanRepository 扫码记录数据访问接口
type ScanRepository interface {
	Create(ctx context.Context, scan *model.Scan) error
	GetByID(ctx context.Context, id int64) (*model.Scan, error)
	// UpdateIP 为扫码记录写入请求方 IP（揭示前调用，尽力而为）
	UpdateIP(ctx context.Context, id int64, ip string) error
	// UpdateLocation 仅当扫码记录属于 qrCodeID 时更新，否则返回 gorm.ErrRecordNotFound
	UpdateLocation(ctx context.Context, id int64, qrCodeID string, lat, lng *float64, address *string) error
	ListByQRCode(ctx context.Context, qrCodeID string, offset, limit int) ([]model.Scan, int64, error)
	// PurgeIPsBefore 清空早于 cutoff 的扫码 IP，返回受影响行数
	PurgeIPsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type scanRepo struct {
	db *gorm.DB
}

// NewScanRepo 创建 ScanRepository 实例
func NewScanRepo(db *gorm.DB) ScanRepository {
	return &scanRepo{db: db}
}

func (r *scanRepo) Create(ctx context.Context, scan *model.Scan) error {
	return r.db.WithContext(ctx).Create(scan).Error
}

func (r *scanRepo) GetByID(ctx context.Context, id int64) (*model.Scan, error) {
	var scan model.Scan
	err := r.db.WithContext(ctx).
		Where("scan_id = ?", id).
		First(&scan).Error
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

func (r *scanRepo) UpdateIP(ctx context.Context, id int64, ip string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Scan{}).
		Where("scan_id = ?", id).
		Updates(map[string]interface{}{
			"ip_address":    ip,
			"ip_stamped_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scanRepo) UpdateLocation(ctx context.Context, id int64, qrCodeID string, lat, lng *float64, address *string) error {
	updates := map[string]interface{}{}
	if lat != nil && lng != nil {
		updates["latitude"] = *lat
		updates["longitude"] = *lng
	}
	if address != nil {
		updates["address"] = *address
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&model.Scan{}).
		Where("scan_id = ? AND qr_code_id = ?", id, qrCodeID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *scanRepo) ListByQRCode(ctx context.Context, qrCodeID string, offset, limit int) ([]model.Scan, int64, error) {
	var scans []model.Scan
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Scan{}).Where("qr_code_id = ?", qrCodeID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("scanned_at DESC").
		Find(&scans).Error; err != nil {
		return nil, 0, err
	}

	return scans, total, nil
}

func (r *scanRepo) PurgeIPsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Scan{}).
		Where("scanned_at < ? AND ip_address IS NOT NULL", cutoff).
		Update("ip_address", nil)
	return result.RowsAffected, result.Error
}
