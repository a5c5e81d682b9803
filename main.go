package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ByLCY/ttp/animation"
	"github.com/ByLCY/ttp/atomicfile"
	"github.com/ByLCY/ttp/config"
	"github.com/ByLCY/ttp/emoji"
	"github.com/ByLCY/ttp/fonts"
	"github.com/ByLCY/ttp/layout"
	"github.com/ByLCY/ttp/logger"
	"github.com/ByLCY/ttp/renderer"
	canvasrenderer "github.com/ByLCY/ttp/renderer/canvas"
	"github.com/ByLCY/ttp/server"
)

// options 是命令行参数。
type options struct {
	configPath  string
	writeConfig string
	text        string
	mode        string
	output      string
	debug       string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "ttp.toml", "TOML 配置文件路径")
	flag.StringVar(&opts.writeConfig, "write-config", "", "把默认配置写入该路径后退出")
	flag.StringVar(&opts.text, "text", "", "直接渲染这段文字（不启动 HTTP 服务）")
	flag.StringVar(&opts.mode, "mode", "static", "渲染模式：static 或 animated")
	flag.StringVar(&opts.output, "out", "", "渲染输出路径，默认 output/sticker.png 或 output/sticker.gif")
	flag.StringVar(&opts.debug, "debug", "", "排版调试 JSON 输出路径")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "ttp: %v\n", err)
		os.Exit(1)
	}
}

// run 加载配置并按参数渲染单张贴纸或启动 HTTP 服务。
func run(opts options) error {
	if opts.writeConfig != "" {
		if err := config.DefaultConfig().Save(opts.writeConfig); err != nil {
			return fmt.Errorf("写入默认配置失败: %w", err)
		}
		fmt.Printf("已写入默认配置：%s\n", opts.writeConfig)
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	log, level, closer := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File, MaxSizeMB: cfg.Log.MaxSizeMB})
	defer closer.Close()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, err := buildRenderers(cfg, log)
	if err != nil {
		logger.Fail(log, "初始化渲染器失败", "error", err)
		return fmt.Errorf("初始化渲染器失败: %w", err)
	}

	if opts.text != "" {
		if err := renderOnce(ctx, set, opts.text, opts.mode, opts.output, opts.debug); err != nil {
			logger.Fail(log, "渲染失败", "error", err)
			return err
		}
		return nil
	}

	if w, err := config.Watch(opts.configPath, log, func(next *config.Config) {
		level.Set(logger.ParseLevel(next.Log.Level))
	}); err != nil {
		log.Warn("无法监听配置文件，日志级别不会热更新", "error", err)
	} else {
		defer w.Close()
	}

	srv := server.New(set.Set, log, server.WithTimeout(cfg.Server.RenderTimeout()))
	if err := srv.Run(ctx, server.RunOptions{
		Addr:              cfg.Server.Addr,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout(),
		ShutdownTimeout:   cfg.Server.ShutdownTimeout(),
	}); err != nil {
		logger.Fail(log, "HTTP 服务退出", "error", err)
		return fmt.Errorf("HTTP 服务退出: %w", err)
	}
	return nil
}

type renderers struct {
	renderer.Set
	static   *canvasrenderer.StaticRenderer
	animated *canvasrenderer.AnimatedRenderer
}

// buildRenderers 注册字体并组装 emoji 解析链与两种渲染器。字体只在这里注册一次。
func buildRenderers(cfg *config.Config, log *slog.Logger) (*renderers, error) {
	family, err := fonts.Register(cfg.Font.Family, cfg.Font.Src)
	if err != nil {
		return nil, err
	}

	palette, err := cfg.Animation.Swatches()
	if err != nil {
		return nil, err
	}

	resolver := emoji.Disabled
	if cfg.Emoji.Enabled {
		resolver = emoji.NewCache(emoji.NewHTTPResolver(emoji.HTTPOptions{
			URLTemplate: cfg.Emoji.URLTemplate,
			Timeout:     cfg.Emoji.Timeout(),
			RetryMax:    cfg.Emoji.RetryMax,
			Logger:      log,
		}), cfg.Emoji.CacheSize)
	}

	opts := canvasrenderer.Options{
		Resolver:     resolver,
		EmojiTimeout: cfg.Emoji.Timeout(),
		Concurrency:  cfg.Emoji.Concurrency,
		Palette:      palette,
		Animation: animation.Options{
			Delay:    cfg.Animation.Delay(),
			Quality:  cfg.Animation.Quality,
			SpoolDir: cfg.Animation.SpoolDir,
		},
		Logger: log,
	}
	static := canvasrenderer.NewStaticRenderer(family, opts)
	animated := canvasrenderer.NewAnimatedRenderer(family, opts)
	return &renderers{
		Set:      renderer.Set{Static: static, Animated: animated},
		static:   static,
		animated: animated,
	}, nil
}

// renderOnce 串联排版与渲染，并把结果原子写入文件。
func renderOnce(ctx context.Context, set *renderers, text, modeName, outputPath, debugPath string) error {
	mode, err := renderer.ParseMode(modeName)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = "output/sticker.png"
		if mode == renderer.ModeAnimated {
			outputPath = "output/sticker.gif"
		}
	}

	if debugPath != "" {
		var fitted layout.FittedLayout
		if mode == renderer.ModeAnimated {
			fitted = set.animated.Layout(text)
		} else {
			fitted = set.static.Layout(text)
		}
		if err := writeDebug(&fitted, debugPath); err != nil {
			return err
		}
	}

	data, _, err := set.Render(ctx, renderer.Request{Text: text, Mode: mode})
	if err != nil {
		return fmt.Errorf("渲染 %s 失败: %w", mode, err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := atomicfile.Write(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	fmt.Printf("已生成贴纸：%s\n", outputPath)
	return nil
}

func writeDebug(fitted *layout.FittedLayout, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(fitted, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
