// Package captchawidget 人机验证组件的无界面适配层
//
// Backend 对应第三方组件库；Adapter 负责在单个容器内挂载、重建与移除组件。
package captchawidget

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrWidgetNotFound 组件已被移除；Backend.Remove 非幂等时返回
var ErrWidgetNotFound = errors.New("captcha widget not found")

// WidgetID 第三方组件返回的句柄
type WidgetID string

// Callbacks 组件事件回调
type Callbacks struct {
	OnSuccess func(token string)
	OnError   func()
	OnExpire  func()
}

// Backend 第三方验证码组件库
type Backend interface {
	Render(container, siteKey string, cb Callbacks) (WidgetID, error)
	Reset(id WidgetID)
	Remove(id WidgetID) error
}

// Adapter 单容器的组件生命周期管理
// 组件库没有原地更新回调的接口，属性变化时先移除再重建
type Adapter struct {
	loader    *ScriptLoader
	backend   Backend
	container string
	logger    *zap.Logger

	mu      sync.Mutex
	siteKey string
	cb      Callbacks
	id      WidgetID
	mounted bool
}

// NewAdapter 创建 Adapter
func NewAdapter(loader *ScriptLoader, backend Backend, container string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{loader: loader, backend: backend, container: container, logger: logger}
}

// Mount 等待脚本就绪后渲染组件；已挂载时不重复渲染
func (a *Adapter) Mount(ctx context.Context, siteKey string, cb Callbacks) error {
	if err := a.loader.Ready(ctx); err != nil {
		return fmt.Errorf("load captcha script: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mounted {
		return nil
	}
	a.siteKey, a.cb = siteKey, cb
	return a.render()
}

// Update 站点密钥或回调变化时重建组件；未挂载时只记录新属性
func (a *Adapter) Update(siteKey string, cb Callbacks) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.siteKey, a.cb = siteKey, cb
	if !a.mounted {
		return nil
	}
	a.remove()
	return a.render()
}

// Unmount 移除组件，移除失败只记日志
func (a *Adapter) Unmount() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mounted {
		a.remove()
	}
}

// Reset 重置组件，用户需重新完成验证
func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mounted {
		a.backend.Reset(a.id)
	}
}

// Mounted 是否已挂载
func (a *Adapter) Mounted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mounted
}

func (a *Adapter) render() error {
	id, err := a.backend.Render(a.container, a.siteKey, a.cb)
	if err != nil {
		return fmt.Errorf("render captcha widget: %w", err)
	}
	a.id = id
	a.mounted = true
	return nil
}

// remove 调用前需持有 mu
func (a *Adapter) remove() {
	if err := a.backend.Remove(a.id); err != nil && !errors.Is(err, ErrWidgetNotFound) {
		a.logger.Warn("移除验证码组件失败", zap.String("widget_id", string(a.id)), zap.Error(err))
	}
	a.id = ""
	a.mounted = false
}
