// Package config 负责读取贴纸服务的 TOML 配置。
//
// 配置文件缺失时使用 DefaultConfig；文件中出现的字段覆盖默认值。
package config

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ByLCY/ttp/atomicfile"
	"github.com/ByLCY/ttp/binding"
	"github.com/ByLCY/ttp/emoji"
	"github.com/ByLCY/ttp/fonts"
	"github.com/ByLCY/ttp/paint"
)

// Config 是顶层配置。
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Font      FontConfig      `toml:"font"`
	Emoji     EmojiConfig     `toml:"emoji"`
	Animation AnimationConfig `toml:"animation"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig 是 HTTP 监听设置。
type ServerConfig struct {
	Addr                     string `toml:"addr"`
	ReadHeaderTimeoutSeconds int    `toml:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds   int    `toml:"shutdown_timeout_seconds"`
	// RenderTimeoutMS 限制单次渲染时长，0 表示只跟随请求上下文。
	RenderTimeoutMS int `toml:"render_timeout_ms"`
}

// FontConfig 指定启动时注册的字体族。
type FontConfig struct {
	Family string `toml:"family"`
	// Src 可为 "embed:gobold"、文件路径或 doublestar 通配符。
	Src string `toml:"src"`
}

// EmojiConfig 控制 emoji 图片的获取与缓存。
type EmojiConfig struct {
	Enabled     bool   `toml:"enabled"`
	URLTemplate string `toml:"url_template"`
	TimeoutMS   int    `toml:"timeout_ms"`
	RetryMax    int    `toml:"retry_max"`
	CacheSize   int    `toml:"cache_size"`
	Concurrency int    `toml:"concurrency"`
}

// AnimationConfig 控制动画编码。
type AnimationConfig struct {
	SpoolDir string `toml:"spool_dir"`
	Quality  int    `toml:"quality"`
	DelayMS  int    `toml:"delay_ms"`
	// Palette 按帧顺序列出颜色字面量，为空时使用七色彩虹。
	Palette []string `toml:"palette"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File 为空时输出到 stderr。
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
}

// DefaultConfig 返回内置默认值。
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                     ":3001",
			ReadHeaderTimeoutSeconds: 10,
			ShutdownTimeoutSeconds:   5,
		},
		Font: FontConfig{
			Family: "impact",
			Src:    fonts.DefaultSrc,
		},
		Emoji: EmojiConfig{
			Enabled:     true,
			URLTemplate: emoji.DefaultURLTemplate,
			TimeoutMS:   3000,
			RetryMax:    0,
			CacheSize:   emoji.DefaultCacheSize,
			Concurrency: 4,
		},
		Animation: AnimationConfig{
			Quality: 10,
			DelayMS: 200,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// Load 读取 path；文件不存在时返回默认配置。
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}

// Save 以原子方式写入配置。
func (c *Config) Save(path string) error {
	return atomicfile.WriteWith(path, 0o644, func(w io.Writer) error {
		if err := toml.NewEncoder(w).Encode(c); err != nil {
			return fmt.Errorf("编码配置失败: %w", err)
		}
		return nil
	})
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate 检查取值范围。
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr 不能为空")
	}
	if c.Server.ReadHeaderTimeoutSeconds <= 0 {
		return fmt.Errorf("server.read_header_timeout_seconds 必须 > 0，当前为 %d", c.Server.ReadHeaderTimeoutSeconds)
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("server.shutdown_timeout_seconds 必须 >= 0，当前为 %d", c.Server.ShutdownTimeoutSeconds)
	}
	if c.Font.Src == "" {
		return fmt.Errorf("font.src 不能为空")
	}
	if c.Server.RenderTimeoutMS < 0 {
		return fmt.Errorf("server.render_timeout_ms 必须 >= 0，当前为 %d", c.Server.RenderTimeoutMS)
	}
	if c.Emoji.Enabled && !slices.Contains(binding.Placeholders(c.Emoji.URLTemplate), emoji.CodePointKey) {
		return fmt.Errorf("emoji.url_template %q 缺少 ${%s} 占位符", c.Emoji.URLTemplate, emoji.CodePointKey)
	}
	if c.Emoji.TimeoutMS <= 0 {
		return fmt.Errorf("emoji.timeout_ms 必须 > 0，当前为 %d", c.Emoji.TimeoutMS)
	}
	if c.Emoji.RetryMax < 0 {
		return fmt.Errorf("emoji.retry_max 必须 >= 0，当前为 %d", c.Emoji.RetryMax)
	}
	if c.Emoji.CacheSize <= 0 {
		return fmt.Errorf("emoji.cache_size 必须 > 0，当前为 %d", c.Emoji.CacheSize)
	}
	if c.Emoji.Concurrency <= 0 {
		return fmt.Errorf("emoji.concurrency 必须 > 0，当前为 %d", c.Emoji.Concurrency)
	}
	if c.Animation.Quality < 1 || c.Animation.Quality > 30 {
		return fmt.Errorf("animation.quality 必须在 1..30 之间，当前为 %d", c.Animation.Quality)
	}
	if c.Animation.DelayMS < 10 {
		return fmt.Errorf("animation.delay_ms 必须 >= 10，当前为 %d", c.Animation.DelayMS)
	}
	if _, err := c.Animation.Swatches(); err != nil {
		return err
	}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level %q 无效：只能是 trace、debug、info、warn 或 error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb 必须 > 0，当前为 %d", c.Log.MaxSizeMB)
	}
	return nil
}

func (c ServerConfig) ReadHeaderTimeout() time.Duration {
	return time.Duration(c.ReadHeaderTimeoutSeconds) * time.Second
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c ServerConfig) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutMS) * time.Millisecond
}

func (c EmojiConfig) Timeout() time.Duration { return time.Duration(c.TimeoutMS) * time.Millisecond }

func (c AnimationConfig) Delay() time.Duration { return time.Duration(c.DelayMS) * time.Millisecond }

// Swatches 解析动画调色板；未配置时返回 paint.Rainbow。
func (c AnimationConfig) Swatches() ([]paint.Swatch, error) {
	if len(c.Palette) == 0 {
		return paint.Rainbow(), nil
	}
	swatches, err := paint.ParsePalette(c.Palette)
	if err != nil {
		return nil, fmt.Errorf("animation.palette 无效: %w", err)
	}
	return swatches, nil
}
