package revealgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
)

// 响应体读取上限
const maxResponseBytes = 64 << 10

// Client 调用揭示边缘函数
type Client interface {
	Reveal(ctx context.Context, req *dto.RevealContactRequest) (*dto.ContactPayload, error)
}

// FunctionError 边缘函数返回的非 200 响应
type FunctionError struct {
	Status  int
	Message string
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("reveal-contact %d: %s", e.Status, e.Message)
}

// RateLimited 以状态码为准；兼容只在文案中标记限流的旧版本函数
func (e *FunctionError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests || strings.Contains(e.Message, "Rate limit")
}

// HTTPRevealClient 基于 net/http 的 Client 实现
type HTTPRevealClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPRevealClient endpoint 形如 https://api.loqatr.app/functions/v1/reveal-contact
// httpClient 为 nil 时使用 http.DefaultClient，超时由调用方的 ctx 控制
func NewHTTPRevealClient(endpoint, apiKey string, httpClient *http.Client) *HTTPRevealClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPRevealClient{endpoint: endpoint, apiKey: apiKey, httpClient: httpClient}
}

// Reveal 发送揭示请求并校验响应结构
func (c *HTTPRevealClient) Reveal(ctx context.Context, req *dto.RevealContactRequest) (*dto.ContactPayload, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode reveal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read reveal response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var fe dto.RevealErrorResponse
		if err := json.Unmarshal(raw, &fe); err != nil || fe.Error == "" {
			fe.Error = http.StatusText(resp.StatusCode)
		}
		return nil, &FunctionError{Status: resp.StatusCode, Message: fe.Error}
	}

	var out dto.RevealContactResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode reveal response: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out.Contact, nil
}
