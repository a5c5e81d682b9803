package animation

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"os"
	"testing"
	"time"
)

func solidFrame(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	// 左半透明，右半为指定颜色
	draw.Draw(img, image.Rect(w/2, 0, w, h), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestEncoderProducesLoopingAnimation(t *testing.T) {
	dir := t.TempDir()
	enc, err := Open(Options{Width: 16, Height: 16, Delay: 200 * time.Millisecond, SpoolDir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer enc.Close()

	colors := []color.RGBA{{255, 0, 0, 255}, {0, 128, 0, 255}, {0, 0, 255, 255}}
	for _, c := range colors {
		if err := enc.AddFrame(solidFrame(16, 16, c)); err != nil {
			t.Fatalf("AddFrame: %v", err)
		}
	}
	if enc.Len() != len(colors) {
		t.Fatalf("expected %d frames, got %d", len(colors), enc.Len())
	}
	data, err := enc.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != len(colors) {
		t.Fatalf("decoded %d frames", len(anim.Image))
	}
	if anim.LoopCount != 0 {
		t.Fatalf("expected infinite loop, got %d", anim.LoopCount)
	}
	for i, frame := range anim.Image {
		if anim.Delay[i] != 20 {
			t.Fatalf("frame %d delay %d, want 20", i, anim.Delay[i])
		}
		if _, _, _, a := frame.At(0, 0).RGBA(); a != 0 {
			t.Fatalf("frame %d: left half should be transparent", i)
		}
		r, g, b, a := frame.At(15, 0).RGBA()
		want := colors[i]
		if a == 0 || absDiff(r>>8, uint32(want.R)) > 10 || absDiff(g>>8, uint32(want.G)) > 10 || absDiff(b>>8, uint32(want.B)) > 10 {
			t.Fatalf("frame %d: got %d,%d,%d want %v", i, r>>8, g>>8, b>>8, want)
		}
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temporary spool not removed: %d entries", len(entries))
	}
}

func TestEncoderCloseWithoutFinishRemovesSpool(t *testing.T) {
	dir := t.TempDir()
	enc, err := Open(Options{Width: 4, Height: 4, SpoolDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.AddFrame(solidFrame(4, 4, color.White)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temporary spool not removed: %d entries", len(entries))
	}
	if err := enc.AddFrame(solidFrame(4, 4, color.White)); err == nil {
		t.Fatal("AddFrame after Close should fail")
	}
}

func TestEncoderRejectsBadInput(t *testing.T) {
	enc, err := Open(Options{Width: 8, Height: 8, SpoolDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	if err := enc.AddFrame(solidFrame(4, 4, color.White)); err == nil {
		t.Fatal("expected size mismatch error")
	}
	if _, err := enc.Finish(); err == nil {
		t.Fatal("expected error when finishing without frames")
	}
	if _, err := enc.Finish(); err == nil {
		t.Fatal("expected error on second Finish")
	}
}

func TestOpenAppliesDefaults(t *testing.T) {
	enc, err := Open(Options{SpoolDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	got := enc.Options()
	if got.Width != 512 || got.Height != 512 || got.Delay != 200*time.Millisecond || got.Quality != 10 {
		t.Fatalf("unexpected defaults %+v", got)
	}
}

func TestQuantizeLimitsPalette(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), uint8((x + y) * 2), 255})
		}
	}
	p := Quantize(img, 1, color.NRGBA{})
	if len(p.Palette) > 256 {
		t.Fatalf("palette too large: %d", len(p.Palette))
	}
	if _, _, _, a := p.Palette[0].RGBA(); a != 0 {
		t.Fatal("index 0 must be the transparent key")
	}
	for i, idx := range p.Pix {
		if idx == 0 {
			t.Fatalf("opaque pixel %d mapped to transparent index", i)
		}
	}
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
