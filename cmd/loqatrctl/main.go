// loqatrctl 运维命令行：数据库迁移、批量生成标签、清理扫码 IP
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/claudialoqatr/lost-found-helper-sub000/config"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/job"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/repository"
	"github.com/claudialoqatr/lost-found-helper-sub000/internal/service"
	"github.com/claudialoqatr/lost-found-helper-sub000/pkg/database"
	applogger "github.com/claudialoqatr/lost-found-helper-sub000/pkg/logger"
)

// 版本信息，编译时通过 ldflags 设置
var Version = "dev"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "loqatrctl: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "loqatrctl",
		Usage:   "LOQATR 运维工具",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
				Sources: cli.EnvVars("LOQATR_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "数据库迁移",
				Commands: []*cli.Command{
					{
						Name:   "up",
						Usage:  "执行全部未应用的迁移",
						Action: migrateUp,
					},
					{
						Name:  "down",
						Usage: "回滚指定步数",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "回滚步数"},
						},
						Action: migrateDown,
					},
				},
			},
			{
				Name:  "generate-tags",
				Usage: "批量生成二维码标签",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Required: true, Usage: "批次前缀，字母数字，最多 8 位"},
					&cli.IntFlag{Name: "count", Required: true, Usage: "生成数量"},
					&cli.StringFlag{Name: "retailer", Usage: "所属零售商 ID"},
				},
				Action: generateTags,
			},
			{
				Name:   "purge-scan-ips",
				Usage:  "立即清空超过保留期的扫码 IP",
				Action: purgeScanIPs,
			},
		},
	}
}

// runtimeEnv 子命令共用的依赖
type runtimeEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func bootstrap(cmd *cli.Command) (*runtimeEnv, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	return &runtimeEnv{cfg: cfg, logger: logger, db: db}, nil
}

func (e *runtimeEnv) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
	e.logger.Sync()
}

func migrateUp(_ context.Context, cmd *cli.Command) error {
	env, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	sqlDB, err := env.db.DB()
	if err != nil {
		return err
	}
	return database.RunMigrations(sqlDB, env.logger)
}

func migrateDown(_ context.Context, cmd *cli.Command) error {
	steps := int(cmd.Int("steps"))
	if steps <= 0 {
		return fmt.Errorf("steps 必须大于 0")
	}

	env, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	sqlDB, err := env.db.DB()
	if err != nil {
		return err
	}
	return database.RollbackMigrations(sqlDB, steps, env.logger)
}

// batchRequest 参数在连接数据库前校验
func batchRequest(cmd *cli.Command) (*dto.CreateQRBatchRequest, error) {
	req := &dto.CreateQRBatchRequest{
		Prefix: strings.TrimSpace(cmd.String("prefix")),
		Count:  int(cmd.Int("count")),
	}
	if req.Prefix == "" || len(req.Prefix) > 8 {
		return nil, fmt.Errorf("prefix 长度需在 1 到 8 之间")
	}
	for _, r := range req.Prefix {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return nil, fmt.Errorf("prefix 只能包含字母和数字")
		}
	}
	if req.Count <= 0 {
		return nil, fmt.Errorf("count 必须大于 0")
	}
	if retailer := strings.TrimSpace(cmd.String("retailer")); retailer != "" {
		req.RetailerID = &retailer
	}
	return req, nil
}

func generateTags(ctx context.Context, cmd *cli.Command) error {
	req, err := batchRequest(cmd)
	if err != nil {
		return err
	}

	env, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	svc := service.NewQRBatchService(env.cfg, repository.NewRepository(env.db), env.logger)
	batch, err := svc.Create(ctx, req, "")
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "batch %s: %d tags\n", batch.ID, batch.Count)
	for _, id := range batch.Identifiers {
		fmt.Fprintln(cmd.Root().Writer, id)
	}
	return nil
}

func purgeScanIPs(ctx context.Context, cmd *cli.Command) error {
	env, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	maintenance := service.NewMaintenanceService(env.cfg, repository.NewRepository(env.db), env.logger)
	n, err := job.NewScanIPPurger(maintenance, env.cfg.Job.PurgeCron, env.logger).RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "cleared %d scan ips\n", n)
	return nil
}
