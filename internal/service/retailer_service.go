package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
)

var ErrRetailerNotFound = errors.New("retailer not found")

// RetailerService 零售商管理
type RetailerService interface {
	Create(ctx context.Context, req *dto.CreateRetailerRequest, callerID string) (*dto.RetailerResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RetailerResponse, error)
	List(ctx context.Context, req *dto.RetailerListRequest) ([]dto.RetailerResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateRetailerRequest, callerID string) (*dto.RetailerResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type retailerService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRetailerService 创建 RetailerService 实例
func NewRetailerService(repo *repository.Repository, logger *zap.Logger) RetailerService {
	return &retailerService{repo: repo, logger: logger}
}

func (s *retailerService) Create(ctx context.Context, req *dto.CreateRetailerRequest, callerID string) (*dto.RetailerResponse, error) {
	retailer := &model.Retailer{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Website:      req.Website,
		IsActive:     true,
	}
	retailer.CreatedBy = &callerID

	if err := s.repo.Retailer.Create(ctx, retailer); err != nil {
		s.logger.Error("创建零售商失败", zap.Error(err))
		return nil, err
	}

	resp := toRetailerResponse(retailer)
	return &resp, nil
}

func (s *retailerService) GetByID(ctx context.Context, id string) (*dto.RetailerResponse, error) {
	retailer, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toRetailerResponse(retailer)
	return &resp, nil
}

func (s *retailerService) List(ctx context.Context, req *dto.RetailerListRequest) ([]dto.RetailerResponse, int64, error) {
	retailers, total, err := s.repo.Retailer.List(ctx, req.IncludeInactive, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	list := make([]dto.RetailerResponse, 0, len(retailers))
	for i := range retailers {
		list = append(list, toRetailerResponse(&retailers[i]))
	}
	return list, total, nil
}

func (s *retailerService) Update(ctx context.Context, id string, req *dto.UpdateRetailerRequest, callerID string) (*dto.RetailerResponse, error) {
	retailer, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		retailer.Name = *req.Name
	}
	if req.ContactEmail != nil {
		retailer.ContactEmail = *req.ContactEmail
	}
	if req.Website != nil {
		retailer.Website = *req.Website
	}
	if req.IsActive != nil {
		retailer.IsActive = *req.IsActive
	}
	retailer.UpdatedBy = &callerID

	if err := s.repo.Retailer.Update(ctx, retailer); err != nil {
		s.logger.Error("更新零售商失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toRetailerResponse(retailer)
	return &resp, nil
}

func (s *retailerService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Retailer.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除零售商失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *retailerService) get(ctx context.Context, id string) (*model.Retailer, error) {
	retailer, err := s.repo.Retailer.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRetailerNotFound
		}
		return nil, err
	}
	return retailer, nil
}

func toRetailerResponse(r *model.Retailer) dto.RetailerResponse {
	return dto.RetailerResponse{
		ID:           r.RetailerID,
		Name:         r.Name,
		ContactEmail: r.ContactEmail,
		Website:      r.Website,
		IsActive:     r.IsActive,
		CreatedAt:    formatTime(r.CreatedAt),
		UpdatedAt:    formatTime(r.UpdatedAt),
	}
}
