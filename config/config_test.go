package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/ttp/paint"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.Addr != ":3001" {
		t.Fatalf("unexpected default addr %q", cfg.Server.Addr)
	}
	if cfg.Emoji.Timeout() != 3*time.Second || cfg.Animation.Delay() != 200*time.Millisecond {
		t.Fatal("unexpected default durations")
	}
	if cfg.Emoji.RetryMax != 0 {
		t.Fatalf("emoji retries must be off by default, got %d", cfg.Emoji.RetryMax)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "ttp.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Font.Src != DefaultConfig().Font.Src {
		t.Fatalf("expected default font src, got %q", cfg.Font.Src)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttp.toml")
	writeConfig(t, path, `
[server]
addr = "127.0.0.1:8080"

[emoji]
enabled = false
concurrency = 8

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" || cfg.Emoji.Enabled || cfg.Emoji.Concurrency != 8 || cfg.Log.Level != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Emoji.CacheSize != 512 || cfg.Animation.Quality != 10 {
		t.Fatalf("unset fields should keep defaults: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad level":    "[log]\nlevel = \"loud\"\n",
		"bad quality":  "[animation]\nquality = 0\n",
		"bad timeout":  "[emoji]\ntimeout_ms = -1\n",
		"bad template": "[emoji]\nurl_template = \"https://example.com/x.png\"\n",
		"char only":    "[emoji]\nurl_template = \"https://example.com/${char}.png\"\n",
		"bad palette":  "[animation]\npalette = [\"red\", \"not-a-colour\"]\n",
		"bad render":   "[server]\nrender_timeout_ms = -5\n",
		"bad toml":     "[server\naddr = 1",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ttp.toml")
			writeConfig(t, path, content)
			if _, err := Load(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadPaletteAndRenderTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttp.toml")
	writeConfig(t, path, `
[server]
render_timeout_ms = 1500

[emoji]
url_template = "https://cdn.example.com/${ codepoint }.png"

[animation]
palette = ["#ff0000", "rgb(0, 255, 0)", "blue"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.RenderTimeout() != 1500*time.Millisecond {
		t.Fatalf("render timeout %s", cfg.Server.RenderTimeout())
	}
	swatches, err := cfg.Animation.Swatches()
	if err != nil {
		t.Fatalf("Swatches: %v", err)
	}
	if len(swatches) != 3 || swatches[1].Color != (color.NRGBA{G: 255, A: 255}) || swatches[2].Name != "blue" {
		t.Fatalf("unexpected palette %+v", swatches)
	}

	def, err := DefaultConfig().Animation.Swatches()
	if err != nil || len(def) != len(paint.Rainbow()) {
		t.Fatalf("default palette should be the rainbow, got %d (%v)", len(def), err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttp.toml")
	cfg := DefaultConfig()
	cfg.Font.Src = "/usr/share/fonts/**/impact.ttf"
	cfg.Log.Level = "warn"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[emoji]") {
		t.Fatalf("saved config missing sections:\n%s", data)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Font.Src != cfg.Font.Src || got.Log.Level != "warn" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ttp.toml")
	writeConfig(t, path, "[log]\nlevel = \"info\"\n")

	changes := make(chan *Config, 4)
	w, err := Watch(path, nil, func(c *Config) { changes <- c })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	// 其他文件的变化不应触发回调
	writeConfig(t, filepath.Join(dir, "other.toml"), "x = 1\n")
	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changes:
			if c.Log.Level == "debug" {
				return
			}
		case <-deadline:
			t.Fatal("watcher did not report the change")
		}
	}
}

func TestWatchCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttp.toml")
	w, err := Watch(path, nil, func(*Config) {})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
