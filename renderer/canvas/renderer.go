package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"time"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/ttp/animation"
	"github.com/ByLCY/ttp/emoji"
	"github.com/ByLCY/ttp/layout"
	"github.com/ByLCY/ttp/paint"
)

// 默认的描边与填充参数。
const (
	DefaultStrokeWidth  = 8
	DefaultEmojiTimeout = 3 * time.Second
	DefaultConcurrency  = 4

	// AnimationStrokeWidth 是动画帧的描边宽度。
	AnimationStrokeWidth = 1
	// BaselineOffset 是动画模式下每行顶部的固定下移量，等于 AnimationStrokeWidth 的一半。
	BaselineOffset = AnimationStrokeWidth / 2.0
)

// Options configures the canvas renderers.
type Options struct {
	Resolver     emoji.Resolver // nil 表示不加载 emoji 图片
	EmojiTimeout time.Duration  // 单个 emoji 的解析超时
	Concurrency  int            // 每行并行解析 emoji 的上限

	Stroke      color.Color
	Fill        color.Color
	StrokeWidth float64

	Palette         []paint.Swatch
	AnimationStroke color.Color // 动画帧的描边颜色，默认黑色
	Animation       animation.Options

	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Resolver == nil {
		o.Resolver = emoji.Disabled
	}
	if o.EmojiTimeout <= 0 {
		o.EmojiTimeout = DefaultEmojiTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Stroke == nil {
		o.Stroke = paint.MustParse("black")
	}
	if o.Fill == nil {
		o.Fill = paint.MustParse("white")
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = DefaultStrokeWidth
	}
	if o.AnimationStroke == nil {
		o.AnimationStroke = paint.MustParse("black")
	}
	if len(o.Palette) == 0 {
		o.Palette = paint.Rainbow()
	}
	if o.Animation.Transparent == nil {
		o.Animation.Transparent = paint.MustParse("rgba(0,0,0,0)")
	}
	o.Animation.Width = layout.CanvasWidth
	o.Animation.Height = layout.CanvasHeight
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// newPage 创建一张透明画布。画布单位与像素一一对应。
func newPage() (*canvas.Canvas, *canvas.Context) {
	c := canvas.New(layout.CanvasWidth, layout.CanvasHeight)
	return c, canvas.NewContext(c)
}

// flipY 把以左上角为原点、向下为正的布局坐标转换为画布坐标（左下角为原点）。
func flipY(y float64) float64 { return layout.CanvasHeight - y }

func rasterize(c *canvas.Canvas) *image.RGBA {
	return rasterizer.Draw(c, canvas.DPMM(layout.DotsPerUnit), canvas.DefaultColorSpace)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}
