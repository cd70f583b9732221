package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("读取内嵌迁移目录失败: %v", err)
	}

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Errorf("up/down 迁移数量不匹配: up=%d down=%d", ups, downs)
	}
}

func TestRevealFunctionUsesRateLimitSQLState(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000002_reveal_contact.up.sql")
	if err != nil {
		t.Fatalf("读取迁移失败: %v", err)
	}
	sql := string(b)
	if !strings.Contains(sql, "ERRCODE = 'LQ429'") {
		t.Error("reveal_contact 应以 SQLSTATE LQ429 标记限流")
	}
	if !strings.Contains(sql, "Rate limit exceeded") {
		t.Error("限流消息应包含 Rate limit exceeded")
	}
}

func TestRevealQuotaCountsByStampTime(t *testing.T) {
	b, err := fs.ReadFile(migrationsFS, "migrations/000003_scan_ip_stamped_at.up.sql")
	if err != nil {
		t.Fatalf("读取迁移失败: %v", err)
	}
	sql := string(b)
	if !strings.Contains(sql, "ip_stamped_at > NOW() - INTERVAL '1 hour'") {
		t.Error("reveal_contact 应按 ip_stamped_at 统计最近一小时")
	}
	if strings.Contains(sql, "scanned_at > NOW()") {
		t.Error("配额统计不应使用 scanned_at")
	}
}

func TestGormLogLevel(t *testing.T) {
	if gormLogLevel("debug") <= gormLogLevel("info") {
		t.Error("debug 级别应输出更多 SQL 日志")
	}
}
