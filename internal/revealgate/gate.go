// Package revealgate 拾获者端的联系方式揭示流程
//
// 状态：idle（无验证码 token）→ verified → revealing → verified（失败）或 revealed（成功）。
// 只有 token 过期会清空 token，失败不会，用户无需为偶发错误重新做人机验证。
package revealgate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
)

// State 揭示流程状态
type State int

const (
	StateIdle State = iota
	StateVerified
	StateRevealing
	StateRevealed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateVerified:
		return "verified"
	case StateRevealing:
		return "revealing"
	case StateRevealed:
		return "revealed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	ErrTokenMissing    = errors.New("captcha token missing")
	ErrRevealInFlight  = errors.New("reveal already in progress")
	ErrAlreadyRevealed = errors.New("contact already revealed")
	ErrRateLimited     = errors.New("reveal rate limited")
	ErrTimeout         = errors.New("reveal timed out")
	ErrRevealFailed    = errors.New("reveal failed")
)

const (
	defaultTimeout = 15 * time.Second
	defaultQuota   = 12
)

// Target 本次揭示针对的扫码记录与拾获者位置
type Target struct {
	ScanID       int64
	QRIdentifier string
	Latitude     *float64
	Longitude    *float64
	Address      *string
}

// Gate 单个标签页上的揭示流程，方法可并发调用
type Gate struct {
	client     Client
	target     Target
	timeout    time.Duration
	quota      int
	onRevealed func(*dto.ContactPayload)
	logger     *zap.Logger

	mu         sync.Mutex
	state      State
	token      string
	captchaErr bool
	message    string
}

// Option Gate 配置项
type Option func(*Gate)

// WithTimeout 单次揭示请求超时
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithHourlyQuota 限流提示中展示的配额，需与服务端一致
func WithHourlyQuota(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.quota = n
		}
	}
}

// WithOnRevealed 揭示成功回调，父组件据此切换到联系方式展示
func WithOnRevealed(fn func(*dto.ContactPayload)) Option {
	return func(g *Gate) { g.onRevealed = fn }
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New 创建 Gate，初始状态 idle
func New(client Client, target Target, opts ...Option) *Gate {
	g := &Gate{
		client:  client,
		target:  target,
		timeout: defaultTimeout,
		quota:   defaultQuota,
		logger:  zap.NewNop(),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ── 人机验证回调 ──

// OnCaptchaSuccess 保存 token 并清除错误标记
func (g *Gate) OnCaptchaSuccess(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.token = token
	g.captchaErr = false
	if g.state == StateIdle {
		g.state = StateVerified
	}
}

// OnCaptchaError 仅设置错误标记，已有 token 保留
func (g *Gate) OnCaptchaError() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captchaErr = true
}

// OnCaptchaExpire 清空 token，必须重新验证
func (g *Gate) OnCaptchaExpire() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.token = ""
	if g.state == StateVerified {
		g.state = StateIdle
	}
}

// ── 揭示 ──

// RequestReveal 发起揭示；失败时回到 verified 并保留 token
// 返回的错误可用 errors.Is 区分 ErrTokenMissing / ErrRateLimited / ErrTimeout / ErrRevealFailed
func (g *Gate) RequestReveal(ctx context.Context) (*dto.ContactPayload, error) {
	g.mu.Lock()
	switch {
	case g.state == StateRevealed:
		g.mu.Unlock()
		return nil, ErrAlreadyRevealed
	case g.state == StateRevealing:
		g.mu.Unlock()
		return nil, ErrRevealInFlight
	case g.token == "":
		g.message = MsgCompleteCaptcha
		g.mu.Unlock()
		return nil, ErrTokenMissing
	}
	g.state = StateRevealing
	g.message = ""
	req := &dto.RevealContactRequest{
		ScanID:         g.target.ScanID,
		QRIdentifier:   g.target.QRIdentifier,
		TurnstileToken: g.token,
		Latitude:       g.target.Latitude,
		Longitude:      g.target.Longitude,
		Address:        g.target.Address,
	}
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contact, err := g.client.Reveal(ctx, req)

	g.mu.Lock()
	if err != nil {
		kind, msg := g.classify(err)
		g.state = StateVerified
		// 揭示期间 token 过期时回到 idle
		if g.token == "" {
			g.state = StateIdle
		}
		g.message = msg
		g.mu.Unlock()

		g.logger.Warn("揭示联系方式失败",
			zap.String("qr_identifier", req.QRIdentifier),
			zap.Int64("scan_id", req.ScanID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", kind, err)
	}
	g.state = StateRevealed
	onRevealed := g.onRevealed
	g.mu.Unlock()

	if onRevealed != nil {
		onRevealed(contact)
	}
	return contact, nil
}

func (g *Gate) classify(err error) (error, string) {
	var fe *FunctionError
	switch {
	case errors.As(err, &fe) && fe.RateLimited():
		return ErrRateLimited, fmt.Sprintf(MsgRateLimitedFmt, g.quota)
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout, MsgTimeout
	default:
		return ErrRevealFailed, MsgGeneric
	}
}

// ── 视图状态 ──

// State 当前状态
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Message 最近一次提示文案，无提示时为空
func (g *Gate) Message() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.message
}

// CaptchaFailed 人机验证组件是否报错
func (g *Gate) CaptchaFailed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.captchaErr
}

// HasToken 是否持有可用 token
func (g *Gate) HasToken() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token != ""
}
