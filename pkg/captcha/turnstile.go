package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claudialoqatr/lost-found-helper-sub000/config"
)

const (
	defaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	defaultTimeout   = 5 * time.Second
	maxResponseBytes = 64 << 10
)

// ErrMissingSecret 未配置 Turnstile 密钥
var ErrMissingSecret = errors.New("captcha secret key cannot be empty")

type turnstileVerifier struct {
	verifyURL  string
	secretKey  string
	httpClient *http.Client
}

// siteverifyResponse 提供方返回体，只关心 success 与错误码
type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname,omitempty"`
}

// NewTurnstileVerifier 创建 Turnstile 校验器
func NewTurnstileVerifier(cfg *config.CaptchaConfig) (Verifier, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecret
	}
	verifyURL := cfg.VerifyURL
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &turnstileVerifier{
		verifyURL:  verifyURL,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (v *turnstileVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	form := url.Values{
		"secret":   {v.secretKey},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to create captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call captcha api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha api returned HTTP %d", resp.StatusCode)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode captcha response: %w", err)
	}
	return out.Success, nil
}
