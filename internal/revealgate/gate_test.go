package revealgate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/claudialoqatr/lost-found-helper-sub000/internal/dto"
)

// ── 测试辅助 ──

type fakeClient struct {
	mu       sync.Mutex
	contact  *dto.ContactPayload
	err      error
	block    chan struct{} // 非 nil 时阻塞到关闭或 ctx 结束
	calls    int
	requests []*dto.RevealContactRequest
}

func (f *fakeClient) Reveal(ctx context.Context, req *dto.RevealContactRequest) (*dto.ContactPayload, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.contact, f.err
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func strPtr(s string) *string { return &s }

func testTarget() Target {
	lat, lng := -33.9249, 18.4241
	return Target{
		ScanID:       42,
		QRIdentifier: "LOQ-A-001",
		Latitude:     &lat,
		Longitude:    &lng,
		Address:      strPtr("Cape Town"),
	}
}

// ── 状态迁移 ──

func TestGate_CaptchaTransitions(t *testing.T) {
	g := New(&fakeClient{}, testTarget())
	if g.State() != StateIdle {
		t.Fatalf("initial state = %s, want idle", g.State())
	}

	g.OnCaptchaSuccess("tok")
	if g.State() != StateVerified || !g.HasToken() {
		t.Fatalf("after success: state=%s token=%v", g.State(), g.HasToken())
	}

	g.OnCaptchaError()
	if !g.CaptchaFailed() || !g.HasToken() {
		t.Error("captcha error should set flag and keep token")
	}

	g.OnCaptchaSuccess("tok2")
	if g.CaptchaFailed() {
		t.Error("captcha success should clear error flag")
	}

	g.OnCaptchaExpire()
	if g.State() != StateIdle || g.HasToken() {
		t.Errorf("after expire: state=%s token=%v", g.State(), g.HasToken())
	}
}

func TestGate_RequestReveal_NoToken(t *testing.T) {
	client := &fakeClient{}
	g := New(client, testTarget())

	_, err := g.RequestReveal(context.Background())
	if !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
	if client.callCount() != 0 {
		t.Error("no network call expected without token")
	}
	if g.Message() != MsgCompleteCaptcha {
		t.Errorf("unexpected message %q", g.Message())
	}
}

func TestGate_RequestReveal_Success(t *testing.T) {
	contact := &dto.ContactPayload{OwnerName: strPtr("Jane"), OwnerEmail: strPtr("jane@x.com")}
	client := &fakeClient{contact: contact}

	var revealed *dto.ContactPayload
	g := New(client, testTarget(), WithOnRevealed(func(c *dto.ContactPayload) { revealed = c }))
	g.OnCaptchaSuccess("valid")

	got, err := g.RequestReveal(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != contact || revealed != contact {
		t.Error("contact should be returned and passed to callback")
	}
	if g.State() != StateRevealed {
		t.Errorf("state = %s, want revealed", g.State())
	}

	req := client.requests[0]
	if req.ScanID != 42 || req.QRIdentifier != "LOQ-A-001" || req.TurnstileToken != "valid" {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Latitude == nil || *req.Address != "Cape Town" {
		t.Error("location should be forwarded")
	}

	if _, err := g.RequestReveal(context.Background()); !errors.Is(err, ErrAlreadyRevealed) {
		t.Errorf("second reveal: expected ErrAlreadyRevealed, got %v", err)
	}
}

func TestGate_RequestReveal_RateLimited(t *testing.T) {
	client := &fakeClient{err: &FunctionError{Status: 429, Message: "Rate limit exceeded: 12/hour"}}
	g := New(client, testTarget())
	g.OnCaptchaSuccess("valid")

	_, err := g.RequestReveal(context.Background())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if !strings.Contains(g.Message(), "12 contacts per hour") {
		t.Errorf("unexpected message %q", g.Message())
	}
	if g.State() != StateVerified || !g.HasToken() {
		t.Errorf("failure should return to verified with token kept, state=%s", g.State())
	}
}

func TestGate_RequestReveal_CustomQuotaMessage(t *testing.T) {
	client := &fakeClient{err: &FunctionError{Status: 429, Message: "Rate limit exceeded: 5/hour"}}
	g := New(client, testTarget(), WithHourlyQuota(5))
	g.OnCaptchaSuccess("valid")

	g.RequestReveal(context.Background())
	if !strings.Contains(g.Message(), "5 contacts per hour") {
		t.Errorf("unexpected message %q", g.Message())
	}
}

func TestGate_RequestReveal_GenericFailure(t *testing.T) {
	cases := map[string]error{
		"captcha 403": &FunctionError{Status: 403, Message: "Captcha verification failed"},
		"not found":   &FunctionError{Status: 404, Message: "Contact information not available"},
		"network":     errors.New("connection refused"),
	}
	for name, cerr := range cases {
		t.Run(name, func(t *testing.T) {
			g := New(&fakeClient{err: cerr}, testTarget())
			g.OnCaptchaSuccess("valid")

			_, err := g.RequestReveal(context.Background())
			if !errors.Is(err, ErrRevealFailed) {
				t.Fatalf("expected ErrRevealFailed, got %v", err)
			}
			if g.Message() != MsgGeneric {
				t.Errorf("unexpected message %q", g.Message())
			}
			if g.State() != StateVerified || !g.HasToken() {
				t.Errorf("state=%s token=%v", g.State(), g.HasToken())
			}
		})
	}
}

func TestGate_RequestReveal_Timeout(t *testing.T) {
	client := &fakeClient{block: make(chan struct{})}
	g := New(client, testTarget(), WithTimeout(20*time.Millisecond))
	g.OnCaptchaSuccess("valid")

	_, err := g.RequestReveal(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if g.Message() != MsgTimeout {
		t.Errorf("unexpected message %q", g.Message())
	}
	if g.State() != StateVerified {
		t.Errorf("state = %s, want verified", g.State())
	}
}

func TestGate_RequestReveal_InFlight(t *testing.T) {
	client := &fakeClient{block: make(chan struct{}), contact: &dto.ContactPayload{}}
	g := New(client, testTarget())
	g.OnCaptchaSuccess("valid")

	done := make(chan error, 1)
	go func() {
		_, err := g.RequestReveal(context.Background())
		done <- err
	}()

	// 等待第一次请求进入 revealing
	deadline := time.Now().Add(time.Second)
	for g.State() != StateRevealing {
		if time.Now().After(deadline) {
			t.Fatal("first reveal never started")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := g.RequestReveal(context.Background()); !errors.Is(err, ErrRevealInFlight) {
		t.Errorf("expected ErrRevealInFlight, got %v", err)
	}

	close(client.block)
	if err := <-done; err != nil {
		t.Fatalf("first reveal failed: %v", err)
	}
	if client.callCount() != 1 {
		t.Errorf("expected exactly one call, got %d", client.callCount())
	}
}

func TestGate_ExpireDuringReveal(t *testing.T) {
	client := &fakeClient{block: make(chan struct{}), err: errors.New("boom")}
	g := New(client, testTarget())
	g.OnCaptchaSuccess("valid")

	done := make(chan struct{})
	go func() {
		g.RequestReveal(context.Background())
		close(done)
	}()
	for g.State() != StateRevealing {
		time.Sleep(time.Millisecond)
	}
	g.OnCaptchaExpire()
	close(client.block)
	<-done

	if g.State() != StateIdle {
		t.Errorf("state = %s, want idle after expiry", g.State())
	}
}
