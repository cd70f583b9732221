// Package job 后台定时任务
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/service"
)

const (
	scanIPPurgeName    = "ScanIPPurge"
	scanIPPurgeTimeout = 5 * time.Minute
)

// ScanIPPurger 定期清空超过保留期的扫码 IP
type ScanIPPurger struct {
	maintenance service.MaintenanceService
	spec        string
	cron        *cron.Cron
	logger      *zap.Logger
}

// NewScanIPPurger spec 为 robfig/cron 表达式，如 "@daily"、"0 30 3 * * *"
func NewScanIPPurger(maintenance service.MaintenanceService, spec string, logger *zap.Logger) *ScanIPPurger {
	return &ScanIPPurger{
		maintenance: maintenance,
		spec:        spec,
		cron:        cron.New(),
		logger:      logger.Named(scanIPPurgeName),
	}
}

// Start 注册并启动定时任务；表达式非法时返回错误
func (p *ScanIPPurger) Start() error {
	if err := p.cron.AddFunc(p.spec, p.run); err != nil {
		return fmt.Errorf("注册 %s 任务失败: %w", scanIPPurgeName, err)
	}
	p.cron.Start()
	p.logger.Info("定时任务已启动", zap.String("spec", p.spec))
	return nil
}

// Stop 停止调度，不等待正在执行的任务
func (p *ScanIPPurger) Stop() {
	p.cron.Stop()
}

// RunOnce 立即执行一次，供命令行工具与测试使用
func (p *ScanIPPurger) RunOnce(ctx context.Context) (int64, error) {
	n, err := p.maintenance.PurgeScanIPs(ctx)
	if err != nil {
		p.logger.Error("清理扫码 IP 失败", zap.Error(err))
		return 0, err
	}
	p.logger.Info("清理扫码 IP 完成", zap.Int64("rows", n))
	return n, nil
}

func (p *ScanIPPurger) run() {
	ctx, cancel := context.WithTimeout(context.Background(), scanIPPurgeTimeout)
	defer cancel()
	p.RunOnce(ctx)
}
