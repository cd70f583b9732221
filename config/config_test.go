package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LOQATR_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")
	t.Setenv("LOQATR_CAPTCHA_SECRET_KEY", "1x0000000000000000000000000000000AA")
	t.Setenv("LOQATR_SERVER_PORT", "9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 Port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Reveal.HourlyQuota != 12 {
		t.Errorf("期望 HourlyQuota=12，实际=%d", cfg.Reveal.HourlyQuota)
	}
	if cfg.Captcha.Timeout != 5*time.Second {
		t.Errorf("期望 Captcha.Timeout=5s，实际=%v", cfg.Captcha.Timeout)
	}
	if cfg.Captcha.VerifyURL == "" {
		t.Error("Captcha.VerifyURL 应有默认值")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 8088
auth:
  jwt_secret: file-secret-key-0123456789
captcha:
  secret_key: file-captcha-secret
reveal:
  hourly_quota: 5
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 8088 {
		t.Errorf("期望 Port=8088，实际=%d", cfg.Server.Port)
	}
	if cfg.Reveal.HourlyQuota != 5 {
		t.Errorf("期望 HourlyQuota=5，实际=%d", cfg.Reveal.HourlyQuota)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server:  ServerConfig{Port: 8080},
		Auth:    AuthConfig{JWTSecret: "0123456789abcdef"},
		Captcha: CaptchaConfig{SecretKey: "secret"},
		Reveal:  RevealConfig{HourlyQuota: 12},
		QR:      QRConfig{MaxBatchSize: 500},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}

	cases := map[string]func(c *Config){
		"空 JWT 密钥": func(c *Config) { c.Auth.JWTSecret = "" },
		"JWT 密钥过短": func(c *Config) { c.Auth.JWTSecret = "short" },
		"端口越界":     func(c *Config) { c.Server.Port = 70000 },
		"缺少验证码密钥":  func(c *Config) { c.Captcha.SecretKey = "" },
		"揭示配额为 0":  func(c *Config) { c.Reveal.HourlyQuota = 0 },
		"批量上限为 0":  func(c *Config) { c.QR.MaxBatchSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}
