package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
)

// RetailerRepository 零售商数据访问接口
type RetailerRepository interface {
	Create(ctx context.Context, retailer *model.Retailer) error
	GetByID(ctx context.Context, id string) (*model.Retailer, error)
	List(ctx context.Context, includeInactive bool, keyword string, offset, limit int) ([]model.Retailer, int64, error)
	Update(ctx context.Context, retailer *model.Retailer) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type retailerRepo struct {
	db *gorm.DB
}

// NewRetailerRepo 创建 RetailerRepository 实例
func NewRetailerRepo(db *gorm.DB) RetailerRepository {
	return &retailerRepo{db: db}
}

func (r *retailerRepo) Create(ctx context.Context, retailer *model.Retailer) error {
	return r.db.WithContext(ctx).Create(retailer).Error
}

func (r *retailerRepo) GetByID(ctx context.Context, id string) (*model.Retailer, error) {
	var retailer model.Retailer
	err := r.db.WithContext(ctx).
		Where("retailer_id = ?", id).
		First(&retailer).Error
	if err != nil {
		return nil, err
	}
	return &retailer, nil
}

func (r *retailerRepo) List(ctx context.Context, includeInactive bool, keyword string, offset, limit int) ([]model.Retailer, int64, error) {
	var retailers []model.Retailer
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Retailer{})
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	if keyword != "" {
		db = db.Where("name ILIKE ?", "%"+keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&retailers).Error; err != nil {
		return nil, 0, err
	}

	return retailers, total, nil
}

func (r *retailerRepo) Update(ctx context.Context, retailer *model.Retailer) error {
	return r.db.WithContext(ctx).Save(retailer).Error
}

func (r *retailerRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Retailer{}).
		Where("retailer_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
