package paint_test

import (
	"image/color"
	"testing"

	"github.com/ByLCY/ttp/paint"
)

func TestParseColors(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"red", color.NRGBA{255, 0, 0, 255}},
		{"White", color.NRGBA{255, 255, 255, 255}},
		{"transparent", color.NRGBA{0, 0, 0, 0}},
		{"#000", color.NRGBA{0, 0, 0, 255}},
		{"#4B0082", color.NRGBA{75, 0, 130, 255}},
		{"#ff000080", color.NRGBA{255, 0, 0, 128}},
		{"rgb(1, 2, 3)", color.NRGBA{1, 2, 3, 255}},
		{"rgba(0, 0, 0, 0)", color.NRGBA{0, 0, 0, 0}},
		{"rgba(255,255,255,0.5)", color.NRGBA{255, 255, 255, 128}},
		{"rgb(100% 0% 0% / 50%)", color.NRGBA{255, 0, 0, 128}},
		{"  blue  ", color.NRGBA{0, 0, 255, 255}},
	}
	for _, tc := range cases {
		got, err := paint.Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "notacolor", "#12", "#0x00000000", "rgb(1,2)", "hsl(1,2,3)", "rgb(1,2,3"} {
		if _, err := paint.Parse(in); err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
}

func TestRainbowOrder(t *testing.T) {
	want := []string{"red", "orange", "yellow", "green", "blue", "indigo", "violet"}
	got := paint.Rainbow()
	if len(got) != len(want) {
		t.Fatalf("expected %d swatches, got %d", len(want), len(got))
	}
	for i, sw := range got {
		if sw.Name != want[i] {
			t.Fatalf("swatch %d: got %s want %s", i, sw.Name, want[i])
		}
		if sw.Color.A != 255 {
			t.Fatalf("swatch %s must be opaque", sw.Name)
		}
	}
	if got[5].Color != (color.NRGBA{75, 0, 130, 255}) {
		t.Fatalf("indigo mismatch: %v", got[5].Color)
	}
}

func TestParsePalette(t *testing.T) {
	pal, err := paint.ParsePalette([]string{"#fff", "black"})
	if err != nil {
		t.Fatalf("ParsePalette: %v", err)
	}
	if len(pal) != 2 || pal[1].Color != (color.NRGBA{0, 0, 0, 255}) {
		t.Fatalf("unexpected palette: %#v", pal)
	}
	if _, err := paint.ParsePalette([]string{"red", "nope"}); err == nil {
		t.Fatal("expected error for invalid entry")
	}
}
