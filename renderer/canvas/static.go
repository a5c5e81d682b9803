package canvasrenderer

import (
	"context"
	"fmt"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/ttp/layout"
	"github.com/ByLCY/ttp/renderer"
)

// StaticRenderer 输出单张带描边文字与 emoji 图片的透明 PNG。
type StaticRenderer struct {
	family *canvas.FontFamily
	opts   Options
}

var _ renderer.Renderer = (*StaticRenderer)(nil)

// NewStaticRenderer 创建静态渲染器。family 需已通过 fonts.Register 注册。
func NewStaticRenderer(family *canvas.FontFamily, opts Options) *StaticRenderer {
	return &StaticRenderer{family: family, opts: opts.withDefaults()}
}

// ContentType implements renderer.Renderer.
func (r *StaticRenderer) ContentType() string { return "image/png" }

// Layout 计算 text 在静态画布上的排版结果。
func (r *StaticRenderer) Layout(text string) layout.FittedLayout {
	return layout.Fit(text, layout.StaticBox(), NewSurface(r.family))
}

// Render implements renderer.Renderer.
func (r *StaticRenderer) Render(ctx context.Context, text string) (out []byte, err error) {
	if text == "" {
		return nil, renderer.ErrEmptyText
	}
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, r.fail(fmt.Errorf("panic: %v", p))
		}
	}()

	surface := NewSurface(r.family)
	box := layout.StaticBox()
	fitted := layout.Fit(text, box, surface)
	size := float64(fitted.FontSize)
	comp := newCompositor(surface, box.LetterSpacing, r.opts)

	c, cctx := newPage()
	for i, line := range fitted.Lines {
		glyphs := comp.Glyphs(ctx, line, size)
		comp.DrawLine(cctx, glyphs, size, fitted.LineTop(i))
	}
	if err := ctx.Err(); err != nil {
		return nil, r.fail(err)
	}

	data, err := encodePNG(rasterize(c))
	if err != nil {
		return nil, r.fail(err)
	}
	r.opts.Logger.Debug("静态贴纸渲染完成", "fontSize", fitted.FontSize, "lines", len(fitted.Lines), "bytes", len(data))
	return data, nil
}

func (r *StaticRenderer) fail(cause error) error {
	r.opts.Logger.Error("渲染静态贴纸失败", "error", cause)
	return fmt.Errorf("%w: %v", renderer.ErrImageConversion, cause)
}
