package emoji

import (
	"context"
	"errors"
	"image"
)

// ErrNotFound 表示该码点没有可用的 emoji 图片。
var ErrNotFound = errors.New("emoji 图片不存在")

// Resolver 把单个码点解析为图片。实现必须可并发调用。
// 任何错误（包括超时）都由调用方降级为文字渲染。
type Resolver interface {
	Resolve(ctx context.Context, r rune) (image.Image, error)
}

// ResolverFunc 让普通函数满足 Resolver。
type ResolverFunc func(ctx context.Context, r rune) (image.Image, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, r rune) (image.Image, error) { return f(ctx, r) }

// Disabled 是永远失败的 Resolver，用于关闭 emoji 图片。
var Disabled Resolver = ResolverFunc(func(context.Context, rune) (image.Image, error) {
	return nil, ErrNotFound
})
