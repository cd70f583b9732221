package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/config"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/model"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/qrcode"
)

// ── 批次模块业务错误 ──

var (
	ErrBatchNotFound      = errors.New("qr batch not found")
	ErrBatchTooLarge      = errors.New("batch size exceeds the configured maximum")
	ErrExportGenerateFail = errors.New("failed to generate export file")
)

// loqatrIDAlphabet 去掉易混淆字符 0/O/1/I 的短码字母表
const (
	loqatrIDAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	loqatrIDLength   = 8
)

// QRBatchService 管理员批量生成与导出标签
type QRBatchService interface {
	Create(ctx context.Context, req *dto.CreateQRBatchRequest, callerID string) (*dto.QRBatchResponse, error)
	Get(ctx context.Context, id string) (*dto.QRBatchResponse, error)
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.QRBatchResponse, int64, error)
	// Export 生成批次清单 xlsx，每行内嵌该标签的二维码图片
	Export(ctx context.Context, id string) (*bytes.Buffer, string, error)
	TagPNG(ctx context.Context, identifier string, size int) ([]byte, error)
}

type qrBatchService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewQRBatchService 创建 QRBatchService 实例
func NewQRBatchService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) QRBatchService {
	return &qrBatchService{cfg: cfg, repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *qrBatchService) Create(ctx context.Context, req *dto.CreateQRBatchRequest, callerID string) (*dto.QRBatchResponse, error) {
	if req.Count > s.cfg.QR.MaxBatchSize {
		return nil, ErrBatchTooLarge
	}

	if req.RetailerID != nil {
		if _, err := s.repo.Retailer.GetByID(ctx, *req.RetailerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRetailerNotFound
			}
			return nil, err
		}
	}

	prefix := strings.ToUpper(req.Prefix)
	identifierPrefix := fmt.Sprintf("%s-%s-", s.cfg.QR.IdentifierPrefix, prefix)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	existing, err := txRepo.QRCode.CountByIdentifierPrefix(ctx, identifierPrefix)
	if err != nil {
		rollback(tx)
		return nil, err
	}

	batch := &model.QRBatch{
		RetailerID: req.RetailerID,
		Prefix:     prefix,
		Count:      req.Count,
	}
	// 命令行生成时没有操作人
	if callerID != "" {
		batch.CreatedBy = &callerID
	}
	if err := txRepo.QRBatch.Create(ctx, batch); err != nil {
		rollback(tx)
		s.logger.Error("创建批次失败", zap.Error(err))
		return nil, err
	}

	codes := make([]model.QRCode, 0, req.Count)
	identifiers := make([]string, 0, req.Count)
	for i := 1; i <= req.Count; i++ {
		loqatrID, err := generateLoqatrID()
		if err != nil {
			rollback(tx)
			return nil, err
		}
		identifier := fmt.Sprintf("%s%03d", identifierPrefix, int(existing)+i)
		code := model.QRCode{
			Identifier: identifier,
			LoqatrID:   loqatrID,
			Status:     model.QRStatusUnassigned,
			RetailerID: req.RetailerID,
			BatchID:    &batch.BatchID,
		}
		code.CreatedBy = &callerID
		codes = append(codes, code)
		identifiers = append(identifiers, identifier)
	}

	if err := txRepo.QRCode.BatchCreate(ctx, codes); err != nil {
		rollback(tx)
		s.logger.Error("批量创建标签失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("批次已生成",
		zap.String("batch_id", batch.BatchID),
		zap.String("prefix", prefix),
		zap.Int("count", req.Count),
	)

	resp := toQRBatchResponse(batch)
	resp.Identifiers = identifiers
	return &resp, nil
}

// ────────────────────── Query ──────────────────────

func (s *qrBatchService) Get(ctx context.Context, id string) (*dto.QRBatchResponse, error) {
	batch, err := s.getBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	codes, err := s.repo.QRCode.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := toQRBatchResponse(batch)
	resp.Identifiers = make([]string, 0, len(codes))
	for _, c := range codes {
		resp.Identifiers = append(resp.Identifiers, c.Identifier)
	}
	return &resp, nil
}

func (s *qrBatchService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.QRBatchResponse, int64, error) {
	batches, total, err := s.repo.QRBatch.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		return nil, 0, err
	}

	list := make([]dto.QRBatchResponse, 0, len(batches))
	for i := range batches {
		list = append(list, toQRBatchResponse(&batches[i]))
	}
	return list, total, nil
}

// ═══════════════════════════════════════════════════════════
// Export 批次清单
// ═══════════════════════════════════════════════════════════
//
// 表头: | 标识 | 认领码 | 扫码地址 | 状态 | 二维码 |
// 二维码列内嵌 PNG，行高随图片放大

func (s *qrBatchService) Export(ctx context.Context, id string) (*bytes.Buffer, string, error) {
	batch, err := s.getBatch(ctx, id)
	if err != nil {
		return nil, "", err
	}

	codes, err := s.repo.QRCode.ListByBatch(ctx, id)
	if err != nil {
		s.logger.Error("查询批次标签失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Tags"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 48)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"Identifier", "Claim code", "Scan URL", "Status", "QR"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	const pngSize = 128
	for i, c := range codes {
		row := i + 2
		tagURL := qrcode.TagURL(s.cfg.Server.PublicURL, c.Identifier)

		f.SetCellValue(sheetName, cell("A", row), c.Identifier)
		f.SetCellValue(sheetName, cell("B", row), c.LoqatrID)
		f.SetCellValue(sheetName, cell("C", row), tagURL)
		f.SetCellValue(sheetName, cell("D", row), c.Status)

		png, err := qrcode.PNG(tagURL, pngSize)
		if err != nil {
			s.logger.Error("生成二维码失败", zap.String("identifier", c.Identifier), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		f.SetRowHeight(sheetName, row, 100)
		if err := f.AddPictureFromBytes(sheetName, cell("E", row), &excelize.Picture{
			Extension: ".png",
			File:      png,
			Format: &excelize.GraphicOptions{
				ScaleX:  0.75,
				ScaleY:  0.75,
				OffsetX: 4,
				OffsetY: 4,
			},
		}); err != nil {
			s.logger.Error("写入二维码图片失败", zap.String("identifier", c.Identifier), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("qr-batch-%s-%s.xlsx", batch.Prefix, shortID(batch.BatchID))
	return buf, filename, nil
}

// ────────────────────── TagPNG ──────────────────────

func (s *qrBatchService) TagPNG(ctx context.Context, identifier string, size int) ([]byte, error) {
	if _, err := s.repo.QRCode.GetByIdentifier(ctx, identifier); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	if size <= 0 {
		size = s.cfg.QR.PNGSize
	}
	return qrcode.PNG(qrcode.TagURL(s.cfg.Server.PublicURL, identifier), size)
}

// ── 辅助函数 ──

func (s *qrBatchService) getBatch(ctx context.Context, id string) (*model.QRBatch, error) {
	batch, err := s.repo.QRBatch.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	return batch, nil
}

func toQRBatchResponse(b *model.QRBatch) dto.QRBatchResponse {
	return dto.QRBatchResponse{
		ID:         b.BatchID,
		RetailerID: b.RetailerID,
		Prefix:     b.Prefix,
		Count:      b.Count,
		CreatedAt:  formatTime(b.CreatedAt),
	}
}

// generateLoqatrID 生成标签背面印制的认领短码
func generateLoqatrID() (string, error) {
	max := big.NewInt(int64(len(loqatrIDAlphabet)))
	b := make([]byte, loqatrIDLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("生成认领码失败: %w", err)
		}
		b[i] = loqatrIDAlphabet[n.Int64()]
	}
	return string(b), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
