// Package captcha 服务端人机验证（Cloudflare Turnstile siteverify）
package captcha

import "context"

// Verifier 校验前端组件给出的一次性 token
type Verifier interface {
	// Verify 返回提供方判定结果；err 仅表示调用提供方本身失败
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}
