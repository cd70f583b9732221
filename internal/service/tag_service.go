package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
	pkgerrors "github.com/claudialoqatr/lost-found-helper-sub000/pkg/errors"
)

// ── 标签模块业务错误 ──

var (
	ErrTagNotFound       = errors.New("tag not found")
	ErrTagAlreadyClaimed = errors.New("tag has already been claimed")
	ErrTagDisabled       = errors.New("tag is disabled")
	ErrNotTagOwner       = errors.New("you do not own this tag")
)

// TagService 持有者的标签管理
type TagService interface {
	Claim(ctx context.Context, req *dto.ClaimTagRequest, userID string) (*dto.TagResponse, error)
	ListMine(ctx context.Context, req *dto.TagListRequest, userID string) ([]dto.TagResponse, int64, error)
	Get(ctx context.Context, id, userID string) (*dto.TagResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTagRequest, userID string) (*dto.TagResponse, error)
	// Release 解除绑定，标签回到 unassigned 可被重新认领
	Release(ctx context.Context, id, userID string) error
	ListScans(ctx context.Context, id string, req *dto.ScanListRequest, userID string) ([]dto.ScanResponse, int64, error)
}

type tagService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTagService 创建 TagService 实例
func NewTagService(repo *repository.Repository, logger *zap.Logger) TagService {
	return &tagService{repo: repo, logger: logger}
}

// ────────────────────── Claim ──────────────────────

func (s *tagService) Claim(ctx context.Context, req *dto.ClaimTagRequest, userID string) (*dto.TagResponse, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			rollback(tx)
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	tag, err := txRepo.QRCode.GetByLoqatrIDForUpdate(ctx, strings.ToUpper(strings.TrimSpace(req.LoqatrID)))
	if err != nil {
		rollback(tx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}

	switch tag.Status {
	case model.QRStatusDisabled:
		rollback(tx)
		return nil, ErrTagDisabled
	case model.QRStatusActive:
		rollback(tx)
		return nil, ErrTagAlreadyClaimed
	}

	item := &model.Item{
		OwnerID:     userID,
		Name:        strings.TrimSpace(req.ItemName),
		Description: req.ItemDescription,
	}
	item.CreatedBy = &userID
	if err := txRepo.Item.Create(ctx, item); err != nil {
		rollback(tx)
		s.logger.Error("创建物品失败", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	tag.Status = model.QRStatusActive
	tag.IsPublic = req.IsPublic
	tag.AssignedTo = &userID
	tag.ItemID = &item.ItemID
	tag.ClaimedAt = &now
	tag.UpdatedBy = &userID

	if err := txRepo.QRCode.Update(ctx, tag); err != nil {
		rollback(tx)
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrTagAlreadyClaimed
		}
		s.logger.Error("认领标签失败", zap.String("qr_code_id", tag.QRCodeID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	tag.Item = item
	s.logger.Info("标签已认领",
		zap.String("qr_code_id", tag.QRCodeID),
		zap.String("user_id", userID),
	)
	resp := toTagResponse(tag)
	return &resp, nil
}

// ────────────────────── Query ──────────────────────

func (s *tagService) ListMine(ctx context.Context, req *dto.TagListRequest, userID string) ([]dto.TagResponse, int64, error) {
	tags, total, err := s.repo.QRCode.ListByOwner(ctx, userID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	list := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		list = append(list, toTagResponse(&tags[i]))
	}
	return list, total, nil
}

func (s *tagService) Get(ctx context.Context, id, userID string) (*dto.TagResponse, error) {
	tag, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	resp := toTagResponse(tag)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *tagService) Update(ctx context.Context, id string, req *dto.UpdateTagRequest, userID string) (*dto.TagResponse, error) {
	tag, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	// 物品与标签分表更新，先行比对版本避免写入一半
	if tag.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.ItemName != nil || req.ItemDescription != nil {
		if tag.Item == nil {
			return nil, ErrTagNotFound
		}
		if req.ItemName != nil {
			tag.Item.Name = strings.TrimSpace(*req.ItemName)
		}
		if req.ItemDescription != nil {
			tag.Item.Description = *req.ItemDescription
		}
		tag.Item.UpdatedBy = &userID
		if err := s.repo.Item.Update(ctx, tag.Item); err != nil {
			s.logger.Error("更新物品失败", zap.Error(err))
			return nil, err
		}
	}

	if req.IsPublic != nil {
		tag.IsPublic = *req.IsPublic
	}
	tag.UpdatedBy = &userID

	if err := s.repo.QRCode.Update(ctx, tag); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新标签失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	resp := toTagResponse(tag)
	return &resp, nil
}

// ────────────────────── Release ──────────────────────

func (s *tagService) Release(ctx context.Context, id, userID string) error {
	tag, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return err
	}
	txRepo := s.repo.WithTx(tx)

	itemID := tag.ItemID
	tag.Status = model.QRStatusUnassigned
	tag.IsPublic = false
	tag.AssignedTo = nil
	tag.ItemID = nil
	tag.ClaimedAt = nil
	tag.UpdatedBy = &userID

	if err := txRepo.QRCode.Update(ctx, tag); err != nil {
		rollback(tx)
		return err
	}
	if itemID != nil {
		if err := txRepo.Item.Delete(ctx, *itemID, userID); err != nil {
			rollback(tx)
			s.logger.Error("删除物品失败", zap.Error(err))
			return err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.logger.Info("标签已解除绑定", zap.String("qr_code_id", id), zap.String("user_id", userID))
	return nil
}

// ────────────────────── Scans ──────────────────────

func (s *tagService) ListScans(ctx context.Context, id string, req *dto.ScanListRequest, userID string) ([]dto.ScanResponse, int64, error) {
	if _, err := s.getOwned(ctx, id, userID); err != nil {
		return nil, 0, err
	}

	scans, total, err := s.repo.Scan.ListByQRCode(ctx, id, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	list := make([]dto.ScanResponse, 0, len(scans))
	for _, sc := range scans {
		list = append(list, dto.ScanResponse{
			ID:              sc.ScanID,
			ScannedAt:       formatTime(sc.ScannedAt),
			Latitude:        sc.Latitude,
			Longitude:       sc.Longitude,
			Address:         sc.Address,
			ContactRevealed: sc.ContactRevealed,
		})
	}
	return list, total, nil
}

// ── 辅助 ──

// getOwned 查询标签并校验归属
func (s *tagService) getOwned(ctx context.Context, id, userID string) (*model.QRCode, error) {
	tag, err := s.repo.QRCode.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	if !tag.IsOwnedBy(userID) {
		return nil, ErrNotTagOwner
	}
	return tag, nil
}

func toTagResponse(tag *model.QRCode) dto.TagResponse {
	resp := dto.TagResponse{
		ID:         tag.QRCodeID,
		Identifier: tag.Identifier,
		LoqatrID:   tag.LoqatrID,
		Status:     tag.Status,
		IsPublic:   tag.IsPublic,
		Version:    tag.Version,
	}
	if tag.Item != nil {
		resp.ItemName = tag.Item.Name
		resp.ItemDescription = tag.Item.Description
	}
	if tag.ClaimedAt != nil {
		resp.ClaimedAt = formatTime(*tag.ClaimedAt)
	}
	return resp
}

func rollback(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}
