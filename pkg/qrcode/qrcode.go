// Package qrcode 生成实体标签上印制的二维码图片
package qrcode

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

const (
	minSize     = 64
	maxSize     = 2048
	DefaultSize = 256
)

// ErrEmptyContent 二维码内容为空
var ErrEmptyContent = errors.New("qr content cannot be empty")

// TagURL 标签二维码编码的扫码地址：<publicURL>/t/<identifier>
func TagURL(publicURL, identifier string) string {
	return strings.TrimRight(publicURL, "/") + "/t/" + url.PathEscape(identifier)
}

// PNG 以中等纠错级别生成 PNG；size 超出范围时回退为默认尺寸
func PNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if size < minSize || size > maxSize {
		size = DefaultSize
	}
	png, err := goqrcode.Encode(content, goqrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("生成二维码失败: %w", err)
	}
	return png, nil
}
