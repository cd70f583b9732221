package captchawidget

import (
	"context"
	"sync"
)

// LoadFunc 加载第三方验证码脚本，只会被调用一次
type LoadFunc func(ctx context.Context) error

// ScriptLoader 页面级共享的脚本加载器
// 第一个 Ready 调用触发加载，之后所有调用方（并发或稍后）等待同一个完成信号
type ScriptLoader struct {
	load LoadFunc
	once sync.Once
	done chan struct{}
	err  error
}

// NewScriptLoader 创建加载器
func NewScriptLoader(load LoadFunc) *ScriptLoader {
	return &ScriptLoader{load: load, done: make(chan struct{})}
}

// Ready 阻塞到脚本加载完成或 ctx 结束
// 调用方的 ctx 取消只影响自身等待，不会中断共享的加载过程
func (l *ScriptLoader) Ready(ctx context.Context) error {
	l.once.Do(func() {
		loadCtx := context.WithoutCancel(ctx)
		go func() {
			l.err = l.load(loadCtx)
			close(l.done)
		}()
	})

	select {
	case <-l.done:
		return l.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Loaded 加载是否已结束（成功或失败）
func (l *ScriptLoader) Loaded() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
