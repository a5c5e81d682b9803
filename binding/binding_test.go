package binding

import (
	"reflect"
	"testing"
)

func TestInterpolate(t *testing.T) {
	tmpl := "https://cdn.example/twemoji@${version}/72x72/${emoji.hex}.png"
	data := map[string]any{
		"version": "14.0.2",
		"emoji":   map[string]string{"hex": "1f525"},
	}
	got := Interpolate(tmpl, data)
	want := "https://cdn.example/twemoji@14.0.2/72x72/1f525.png"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestInterpolateKeepsUnknownPlaceholders(t *testing.T) {
	got := Interpolate("${missing}/${ hex }", map[string]string{"hex": "a9"})
	if got != "${missing}/a9" {
		t.Fatalf("unexpected result %q", got)
	}
	if got := Interpolate("${hex}", nil); got != "${hex}" {
		t.Fatalf("nil data should keep template, got %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("${a}/${ b.c }/plain")
	if !reflect.DeepEqual(got, []string{"a", "b.c"}) {
		t.Fatalf("unexpected placeholders %q", got)
	}
}
