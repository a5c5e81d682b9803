package canvasrenderer

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/ttp/animation"
	"github.com/ByLCY/ttp/layout"
	"github.com/ByLCY/ttp/paint"
	"github.com/ByLCY/ttp/renderer"
)

// AnimatedRenderer 输出循环动画，每帧用调色板中的一个颜色填充整行文字，外加一圈细黑描边。
type AnimatedRenderer struct {
	family *canvas.FontFamily
	opts   Options
}

var _ renderer.Renderer = (*AnimatedRenderer)(nil)

// NewAnimatedRenderer 创建动画渲染器。
func NewAnimatedRenderer(family *canvas.FontFamily, opts Options) *AnimatedRenderer {
	return &AnimatedRenderer{family: family, opts: opts.withDefaults()}
}

// ContentType implements renderer.Renderer.
// 响应体是 GIF 动画字节流，沿用服务一直对外声明的类型。
func (r *AnimatedRenderer) ContentType() string { return "image/webp" }

// Layout 计算 text 在动画画布上的排版结果。
func (r *AnimatedRenderer) Layout(text string) layout.FittedLayout {
	return layout.Fit(text, layout.AnimatedBox(), NewSurface(r.family))
}

// Render implements renderer.Renderer.
func (r *AnimatedRenderer) Render(ctx context.Context, text string) (out []byte, err error) {
	if text == "" {
		return nil, renderer.ErrEmptyText
	}
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, r.fail(fmt.Errorf("panic: %v", p))
		}
	}()

	surface := NewSurface(r.family)
	fitted := layout.Fit(text, layout.AnimatedBox(), surface)

	enc, err := animation.Open(r.opts.Animation)
	if err != nil {
		return nil, r.fail(err)
	}
	defer func() {
		if cerr := enc.Close(); cerr != nil {
			r.opts.Logger.Warn("清理动画临时文件失败", "error", cerr)
		}
	}()

	for _, swatch := range r.opts.Palette {
		if err := ctx.Err(); err != nil {
			return nil, r.fail(err)
		}
		if err := enc.AddFrame(r.drawFrame(surface, fitted, swatch)); err != nil {
			return nil, r.fail(err)
		}
	}

	data, err := enc.Finish()
	if err != nil {
		return nil, r.fail(err)
	}
	r.opts.Logger.Debug("动画贴纸渲染完成", "fontSize", fitted.FontSize, "lines", len(fitted.Lines), "frames", len(r.opts.Palette), "bytes", len(data))
	return data, nil
}

// drawFrame 在一张新的透明画布上用 swatch 颜色绘制所有行。
// 每行作为整体先用黑色 1 单位描边，再用 swatch 填充。
func (r *AnimatedRenderer) drawFrame(surface *Surface, fitted layout.FittedLayout, swatch paint.Swatch) *image.RGBA {
	c, cctx := newPage()
	size := float64(fitted.FontSize)
	face := surface.Face(size, swatch.Color)
	ascent := surface.Ascent(size)
	for i, line := range fitted.Lines {
		top := fitted.LineTop(i) + BaselineOffset
		x := (layout.CanvasWidth - surface.TextWidth(size, line)) / 2
		r.drawLine(cctx, face, line, swatch.Color, x, flipY(top+ascent))
	}
	return rasterize(c)
}

func (r *AnimatedRenderer) drawLine(ctx *canvas.Context, face *canvas.FontFace, line string, fill color.Color, x, y float64) {
	p, _, err := face.ToPath(line)
	if err != nil || p == nil {
		if err != nil {
			r.opts.Logger.Debug("行路径不可用", "line", line, "error", err)
		}
		return
	}

	ctx.Push()
	defer ctx.Pop()

	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(r.opts.AnimationStroke)
	ctx.SetStrokeWidth(AnimationStrokeWidth)
	ctx.SetStrokeJoiner(canvas.RoundJoin)
	ctx.DrawPath(x, y, p)

	ctx.SetFillColor(fill)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetStrokeWidth(0)
	ctx.DrawPath(x, y, p)
}

func (r *AnimatedRenderer) fail(cause error) error {
	r.opts.Logger.Error("渲染动画贴纸失败", "error", cause)
	return fmt.Errorf("%w: %v", renderer.ErrWebpConversion, cause)
}
