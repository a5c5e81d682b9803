package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Renderer 把一段文字渲染为最终图片字节（PNG 或动画）。
// 返回的错误只会是 ErrEmptyText、ErrImageConversion 或 ErrWebpConversion 的包装。
type Renderer interface {
	Render(ctx context.Context, text string) ([]byte, error)
	ContentType() string
}

var (
	// ErrEmptyText 表示请求缺少文字。
	ErrEmptyText = errors.New("texto é obrigatório")
	// ErrImageConversion 表示静态图片渲染失败。
	ErrImageConversion = errors.New("Erro ao converter imagem")
	// ErrWebpConversion 表示动画编码失败。
	ErrWebpConversion = errors.New("Erro ao converter para WebP")
)

// Mode 选择静态或动画输出。
type Mode int

const (
	ModeStatic Mode = iota
	ModeAnimated
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeAnimated:
		return "animated"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode 解析命令行/配置中的模式名。
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "static", "ttp", "png":
		return ModeStatic, nil
	case "animated", "attp", "anim":
		return ModeAnimated, nil
	default:
		return ModeStatic, fmt.Errorf("未知的渲染模式 %q", s)
	}
}

// Request 是一次渲染请求。
type Request struct {
	Text string
	Mode Mode
}

// Validate 检查请求是否可渲染。
func (r Request) Validate() error {
	if r.Text == "" {
		return ErrEmptyText
	}
	return nil
}

// Set 按模式持有两种渲染器。
type Set struct {
	Static   Renderer
	Animated Renderer
}

// For 返回 mode 对应的渲染器。
func (s Set) For(mode Mode) (Renderer, error) {
	var r Renderer
	switch mode {
	case ModeStatic:
		r = s.Static
	case ModeAnimated:
		r = s.Animated
	}
	if r == nil {
		return nil, fmt.Errorf("模式 %s 没有可用的渲染器", mode)
	}
	return r, nil
}

// Render 校验请求并交给对应模式的渲染器。
func (s Set) Render(ctx context.Context, req Request) ([]byte, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}
	r, err := s.For(req.Mode)
	if err != nil {
		return nil, "", err
	}
	data, err := r.Render(ctx, req.Text)
	if err != nil {
		return nil, "", err
	}
	return data, r.ContentType(), nil
}
