package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeMaintenance struct {
	rows  int64
	err   error
	calls int32
	ran   chan struct{}
}

func (f *fakeMaintenance) PurgeScanIPs(_ context.Context) (int64, error) {
	if atomic.AddInt32(&f.calls, 1) == 1 && f.ran != nil {
		close(f.ran)
	}
	return f.rows, f.err
}

func TestScanIPPurger_RunOnce(t *testing.T) {
	m := &fakeMaintenance{rows: 7}
	p := NewScanIPPurger(m, "@daily", zap.NewNop())

	n, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7 rows, got %d", n)
	}
}

func TestScanIPPurger_RunOnceError(t *testing.T) {
	m := &fakeMaintenance{err: errors.New("db down")}
	p := NewScanIPPurger(m, "@daily", zap.NewNop())

	if _, err := p.RunOnce(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestScanIPPurger_InvalidSpec(t *testing.T) {
	p := NewScanIPPurger(&fakeMaintenance{}, "not a cron spec", zap.NewNop())

	if err := p.Start(); err == nil {
		p.Stop()
		t.Error("expected error for invalid spec")
	}
}

func TestScanIPPurger_Schedules(t *testing.T) {
	m := &fakeMaintenance{ran: make(chan struct{})}
	p := NewScanIPPurger(m, "@every 1s", zap.NewNop())

	if err := p.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer p.Stop()

	select {
	case <-m.ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled purge never ran")
	}
}
