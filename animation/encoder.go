package animation

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"time"

	"github.com/ByLCY/ttp/atomicfile"
)

// Options 描述一条循环动画的编码参数。
type Options struct {
	Width       int
	Height      int
	Delay       time.Duration // 每帧停留时间
	LoopCount   int           // 0 表示无限循环
	Quality     int           // 颜色量化步长，1 为最精细
	Transparent color.Color   // 透明色键
	SpoolDir    string        // 临时文件目录，空则使用系统临时目录
}

// DefaultOptions 与贴纸服务的动画参数一致：512×512、无限循环、每帧 200ms、质量 10。
func DefaultOptions() Options {
	return Options{
		Width:       512,
		Height:      512,
		Delay:       200 * time.Millisecond,
		LoopCount:   0,
		Quality:     10,
		Transparent: color.NRGBA{},
	}
}

var (
	errFinished = errors.New("动画已经完成编码")
	errNoFrames = errors.New("动画没有任何帧")
)

// Encoder 逐帧累积动画并在 Finish 时输出字节。
// 生命周期：Open → AddFrame… → Finish → Close；Close 在任何路径上都要调用，用于删除临时文件。
type Encoder struct {
	opts     Options
	spool    *atomicfile.Spool
	frames   []*image.Paletted
	finished bool
}

// Open 创建编码器并准备临时输出文件。
func Open(opts Options) (*Encoder, error) {
	def := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Delay <= 0 {
		opts.Delay = def.Delay
	}
	if opts.LoopCount < 0 {
		opts.LoopCount = -1
	}
	if opts.Quality <= 0 {
		opts.Quality = def.Quality
	}
	if opts.Transparent == nil {
		opts.Transparent = def.Transparent
	}
	spool, err := atomicfile.NewSpool(opts.SpoolDir, "ttp-anim-*.gif")
	if err != nil {
		return nil, err
	}
	return &Encoder{opts: opts, spool: spool}, nil
}

// Options 返回规范化后的参数。
func (e *Encoder) Options() Options { return e.opts }

// Len 返回已追加的帧数。
func (e *Encoder) Len() int { return len(e.frames) }

// AddFrame 量化并追加一帧。帧尺寸必须与 Options 一致。
func (e *Encoder) AddFrame(img image.Image) error {
	if e.finished {
		return errFinished
	}
	b := img.Bounds()
	if b.Dx() != e.opts.Width || b.Dy() != e.opts.Height {
		return fmt.Errorf("帧尺寸 %dx%d 与动画尺寸 %dx%d 不一致", b.Dx(), b.Dy(), e.opts.Width, e.opts.Height)
	}
	e.frames = append(e.frames, Quantize(toRGBA(img), e.opts.Quality, e.opts.Transparent))
	return nil
}

// Finish 把所有帧写入临时文件并返回完整的动画字节。
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, errFinished
	}
	e.finished = true
	if len(e.frames) == 0 {
		return nil, errNoFrames
	}

	delay := int(e.opts.Delay / (10 * time.Millisecond))
	anim := &gif.GIF{
		Image:     e.frames,
		Delay:     make([]int, len(e.frames)),
		Disposal:  make([]byte, len(e.frames)),
		LoopCount: e.opts.LoopCount,
		Config:    image.Config{Width: e.opts.Width, Height: e.opts.Height},
	}
	for i := range e.frames {
		anim.Delay[i] = delay
		anim.Disposal[i] = gif.DisposalBackground
	}
	if err := gif.EncodeAll(e.spool, anim); err != nil {
		return nil, fmt.Errorf("编码动画失败: %w", err)
	}
	return e.spool.Bytes()
}

// Close 释放帧并删除临时文件，可重复调用。
func (e *Encoder) Close() error {
	e.frames = nil
	e.finished = true
	return e.spool.Close()
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}
