package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/claudialoqatr/lost-found-helper-sub000/config"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
)

// MaintenanceService 数据保留类运维操作（定时任务与 loqatrctl 共用）
type MaintenanceService interface {
	// PurgeScanIPs 清空超过保留期的扫码 IP；只清字段，不删扫码记录
	PurgeScanIPs(ctx context.Context) (int64, error)
}

type maintenanceService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewMaintenanceService 创建 MaintenanceService 实例
func NewMaintenanceService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) MaintenanceService {
	return &maintenanceService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

func (s *maintenanceService) PurgeScanIPs(ctx context.Context) (int64, error) {
	days := s.cfg.Job.ScanIPRetentionDay
	if days <= 0 {
		days = 30
	}
	cutoff := s.now().AddDate(0, 0, -days)

	n, err := s.repo.Scan.PurgeIPsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("清理扫码 IP 失败", zap.Error(err))
		return 0, err
	}
	s.logger.Info("扫码 IP 清理完成",
		zap.Time("cutoff", cutoff),
		zap.Int64("rows", n),
	)
	return n, nil
}
