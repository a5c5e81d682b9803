package canvasrenderer

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/creachadair/taskgroup"
	"github.com/tdewolff/canvas"
	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/ttp/emoji"
	"github.com/ByLCY/ttp/layout"
)

// GlyphKind 区分普通字形与 emoji。
type GlyphKind int

const (
	GlyphText GlyphKind = iota
	GlyphEmoji
)

// Glyph 是一行中的一个可见码点。Image 为空的 emoji 按普通文字绘制。
// 只有 emoji.NeedsImage 为真的码点才标记为 GlyphEmoji。
type Glyph struct {
	Rune    rune
	Kind    GlyphKind
	Image   image.Image
	Advance float64
}

// Compositor 按码点逐个排布并绘制一行文字，emoji 以图片替换。
type Compositor struct {
	surface       *Surface
	resolver      emoji.Resolver
	timeout       time.Duration
	concurrency   int
	letterSpacing float64

	stroke      color.Color
	fill        color.Color
	strokeWidth float64

	logger *slog.Logger
}

func newCompositor(surface *Surface, letterSpacing float64, opts Options) *Compositor {
	return &Compositor{
		surface:       surface,
		resolver:      opts.Resolver,
		timeout:       opts.EmojiTimeout,
		concurrency:   opts.Concurrency,
		letterSpacing: letterSpacing,
		stroke:        opts.Stroke,
		fill:          opts.Fill,
		strokeWidth:   opts.StrokeWidth,
		logger:        opts.Logger,
	}
}

// Glyphs 拆分 line 并在测量前解析其中的 emoji 图片。
// 变体选择符与零宽连接符被跳过；解析失败的 emoji 退化为文字。
func (c *Compositor) Glyphs(ctx context.Context, line string, fontSize float64) []Glyph {
	var glyphs []Glyph
	var pending []int
	for _, r := range line {
		if emoji.IsInvisible(r) {
			continue
		}
		g := Glyph{Rune: r, Kind: GlyphText}
		if emoji.NeedsImage(r) {
			g.Kind = GlyphEmoji
			pending = append(pending, len(glyphs))
		}
		glyphs = append(glyphs, g)
	}

	c.resolveAll(ctx, glyphs, pending, int(fontSize))

	for i := range glyphs {
		g := &glyphs[i]
		if g.Image != nil {
			g.Advance = fontSize + c.letterSpacing
		} else {
			g.Advance = c.surface.TextWidth(fontSize, string(g.Rune)) + c.letterSpacing
		}
	}
	return glyphs
}

// resolveAll 并行解析 emoji，结果按下标写回，因此绘制顺序不受完成顺序影响。
func (c *Compositor) resolveAll(ctx context.Context, glyphs []Glyph, pending []int, size int) {
	if len(pending) == 0 || size <= 0 {
		return
	}
	g, run := taskgroup.New(nil).Limit(c.concurrency)
	for _, idx := range pending {
		run.Run(func() {
			glyphs[idx].Image = c.resolve(ctx, glyphs[idx].Rune, size)
		})
	}
	g.Wait()
}

func (c *Compositor) resolve(ctx context.Context, r rune, size int) image.Image {
	rctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	img, err := c.resolver.Resolve(rctx, r)
	if err != nil {
		c.logger.Debug("emoji 图片不可用，退化为文字", "codepoint", emoji.CodePoint(r), "error", err)
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// MeasureLine 返回一行的总推进宽度。
func MeasureLine(glyphs []Glyph) float64 {
	width := 0.0
	for _, g := range glyphs {
		width += g.Advance
	}
	return width
}

// DrawLine 把一行水平居中绘制在 top（自画布顶部起算）处。
// 文字先描边后填充；emoji 图片绘制在 top + 0.1×fontSize。
func (c *Compositor) DrawLine(ctx *canvas.Context, glyphs []Glyph, fontSize, top float64) {
	width := MeasureLine(glyphs)
	x := (layout.CanvasWidth - width) / 2
	baseline := top + c.surface.Ascent(fontSize)
	face := c.surface.Face(fontSize, c.fill)

	for _, g := range glyphs {
		if g.Image != nil {
			// DrawImage 以图片左下角定位
			ctx.DrawImage(x, flipY(top+0.1*fontSize+fontSize), g.Image, canvas.DPMM(1.0))
			x += g.Advance
			continue
		}
		c.drawGlyph(ctx, face, g.Rune, x, baseline)
		x += g.Advance
	}
}

func (c *Compositor) drawGlyph(ctx *canvas.Context, face *canvas.FontFace, r rune, x, baseline float64) {
	p, _, err := face.ToPath(string(r))
	if err != nil || p == nil {
		if err != nil {
			c.logger.Debug("字形路径不可用", "rune", string(r), "error", err)
		}
		return
	}
	y := flipY(baseline)

	ctx.Push()
	defer ctx.Pop()

	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(c.stroke)
	ctx.SetStrokeWidth(c.strokeWidth)
	ctx.SetStrokeJoiner(canvas.RoundJoin)
	ctx.DrawPath(x, y, p)

	ctx.SetFillColor(c.fill)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetStrokeWidth(0)
	ctx.DrawPath(x, y, p)
}
