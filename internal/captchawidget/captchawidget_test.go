package captchawidget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// ── 测试辅助 ──

// fakeBackend 模拟第三方组件库：Remove 不幂等，重复移除返回 ErrWidgetNotFound
type fakeBackend struct {
	mu        sync.Mutex
	seq       int
	live      map[WidgetID]string
	renders   []string
	resets    []WidgetID
	removeErr error
	renderErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{live: map[WidgetID]string{}}
}

func (b *fakeBackend) Render(container, siteKey string, _ Callbacks) (WidgetID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.renderErr != nil {
		return "", b.renderErr
	}
	b.seq++
	id := WidgetID(fmt.Sprintf("w%d", b.seq))
	b.live[id] = siteKey
	b.renders = append(b.renders, container+":"+siteKey)
	return id, nil
}

func (b *fakeBackend) Reset(id WidgetID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resets = append(b.resets, id)
}

func (b *fakeBackend) Remove(id WidgetID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.removeErr != nil {
		return b.removeErr
	}
	if _, ok := b.live[id]; !ok {
		return ErrWidgetNotFound
	}
	delete(b.live, id)
	return nil
}

func (b *fakeBackend) liveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

func readyLoader() *ScriptLoader {
	return NewScriptLoader(func(context.Context) error { return nil })
}

// ── ScriptLoader ──

func TestScriptLoader_LoadsOnceForConcurrentCallers(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	l := NewScriptLoader(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		<-release
		return nil
	})

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- l.Ready(context.Background())
		}()
	}

	time.Sleep(10 * time.Millisecond)
	if l.Loaded() {
		t.Fatal("loader should still be loading")
	}
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("load called %d times, want 1", got)
	}

	// 加载完成后再调用立即返回
	if err := l.Ready(context.Background()); err != nil {
		t.Errorf("late caller: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Error("late caller should not trigger another load")
	}
}

func TestScriptLoader_ErrorSharedByAllCallers(t *testing.T) {
	loadErr := errors.New("script blocked")
	l := NewScriptLoader(func(context.Context) error { return loadErr })

	for i := 0; i < 3; i++ {
		if err := l.Ready(context.Background()); !errors.Is(err, loadErr) {
			t.Errorf("call %d: expected load error, got %v", i, err)
		}
	}
}

func TestScriptLoader_CallerCancelDoesNotAbortLoad(t *testing.T) {
	release := make(chan struct{})
	l := NewScriptLoader(func(ctx context.Context) error {
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Ready(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
	if err := l.Ready(context.Background()); err != nil {
		t.Errorf("shared load should still succeed, got %v", err)
	}
}

// ── Adapter ──

func TestAdapter_MountRendersOnce(t *testing.T) {
	b := newFakeBackend()
	a := NewAdapter(readyLoader(), b, "#captcha", nil)

	if err := a.Mount(context.Background(), "site-1", Callbacks{}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := a.Mount(context.Background(), "site-1", Callbacks{}); err != nil {
		t.Fatalf("second mount: %v", err)
	}
	if len(b.renders) != 1 || b.renders[0] != "#captcha:site-1" {
		t.Errorf("unexpected renders %v", b.renders)
	}
}

func TestAdapter_UpdateRebuildsWidget(t *testing.T) {
	b := newFakeBackend()
	a := NewAdapter(readyLoader(), b, "#captcha", nil)
	a.Mount(context.Background(), "site-1", Callbacks{})

	if err := a.Update("site-2", Callbacks{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(b.renders) != 2 || b.renders[1] != "#captcha:site-2" {
		t.Errorf("unexpected renders %v", b.renders)
	}
	if b.liveCount() != 1 {
		t.Errorf("expected exactly one live widget, got %d", b.liveCount())
	}
}

func TestAdapter_UpdateBeforeMount(t *testing.T) {
	b := newFakeBackend()
	a := NewAdapter(readyLoader(), b, "#captcha", nil)

	if err := a.Update("site-2", Callbacks{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(b.renders) != 0 {
		t.Error("update before mount should not render")
	}
}

func TestAdapter_RemountAfterUnmount(t *testing.T) {
	b := newFakeBackend()
	a := NewAdapter(readyLoader(), b, "#captcha", nil)
	ctx := context.Background()

	if err := a.Mount(ctx, "site-1", Callbacks{}); err != nil {
		t.Fatal(err)
	}
	// 组件被外部提前移除，Unmount 时 Remove 返回 ErrWidgetNotFound
	b.mu.Lock()
	b.live = map[WidgetID]string{}
	b.mu.Unlock()

	a.Unmount()
	if a.Mounted() {
		t.Error("adapter should be unmounted")
	}
	if err := a.Mount(ctx, "site-1", Callbacks{}); err != nil {
		t.Fatalf("remount: %v", err)
	}
	a.Unmount()
	a.Unmount()
}

func TestAdapter_UnmountSwallowsOtherErrors(t *testing.T) {
	b := newFakeBackend()
	a := NewAdapter(readyLoader(), b, "#captcha", nil)
	a.Mount(context.Background(), "site-1", Callbacks{})

	b.removeErr = errors.New("library exploded")
	a.Unmount()
	if a.Mounted() {
		t.Error("adapter should be unmounted even when remove fails")
	}

	b.removeErr = nil
	if err := a.Mount(context.Background(), "site-1", Callbacks{}); err != nil {
		t.Fatalf("remount: %v", err)
	}
}

func TestAdapter_Reset(t *testing.T) {
	b := newFakeBackend()
	a := NewAdapter(readyLoader(), b, "#captcha", nil)

	a.Reset()
	if len(b.resets) != 0 {
		t.Error("reset before mount should be a no-op")
	}

	a.Mount(context.Background(), "site-1", Callbacks{})
	a.Reset()
	if len(b.resets) != 1 || b.resets[0] != "w1" {
		t.Errorf("unexpected resets %v", b.resets)
	}
}

func TestAdapter_MountLoadFailure(t *testing.T) {
	b := newFakeBackend()
	l := NewScriptLoader(func(context.Context) error { return errors.New("offline") })
	a := NewAdapter(l, b, "#captcha", nil)

	if err := a.Mount(context.Background(), "site-1", Callbacks{}); err == nil {
		t.Fatal("expected error when script fails to load")
	}
	if a.Mounted() || len(b.renders) != 0 {
		t.Error("nothing should render when script fails to load")
	}
}

func TestAdapter_SharedLoaderAcrossInstances(t *testing.T) {
	var calls int32
	l := NewScriptLoader(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	b := newFakeBackend()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := NewAdapter(l, b, fmt.Sprintf("#c%d", i), nil)
			if err := a.Mount(context.Background(), "site-1", Callbacks{}); err != nil {
				t.Errorf("mount %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("script loaded %d times, want 1", calls)
	}
	if b.liveCount() != 5 {
		t.Errorf("expected 5 widgets, got %d", b.liveCount())
	}
}
