package emoji

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/ttp/binding"
)

// DefaultURLTemplate 指向 twemoji 14.0.2 的 72×72 PNG 资源。
const DefaultURLTemplate = "https://cdn.jsdelivr.net/gh/twitter/twemoji@14.0.2/assets/72x72/${codepoint}.png"

// URL 模板中可用的占位符名。CodePointKey 是必需的。
const (
	CodePointKey = "codepoint"
	CharKey      = "char"
)

const maxImageBytes = 1 << 20

// HTTPOptions 配置基于 HTTP 的 emoji 图片获取。
type HTTPOptions struct {
	URLTemplate string        // 支持 ${codepoint} 与 ${char}
	Timeout     time.Duration // 单次请求超时
	RetryMax    int
	Logger      *slog.Logger
}

// HTTPResolver 从 CDN 下载 emoji 图片。
type HTTPResolver struct {
	template string
	client   *retryablehttp.Client
}

var _ Resolver = (*HTTPResolver)(nil)

// NewHTTPResolver 创建 HTTPResolver。
func NewHTTPResolver(opts HTTPOptions) *HTTPResolver {
	tmpl := opts.URLTemplate
	if tmpl == "" {
		tmpl = DefaultURLTemplate
	}
	client := retryablehttp.NewClient()
	client.RetryMax = opts.RetryMax
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 500 * time.Millisecond
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}
	if opts.Logger != nil {
		client.Logger = opts.Logger.With("component", "emoji-http")
	} else {
		client.Logger = nil
	}
	return &HTTPResolver{template: tmpl, client: client}
}

// URL 返回码点 r 对应的图片地址。
func (h *HTTPResolver) URL(r rune) string {
	return binding.Interpolate(h.template, map[string]string{
		CodePointKey: CodePoint(r),
		CharKey:      string(r),
	})
}

// Resolve implements Resolver.
func (h *HTTPResolver) Resolve(ctx context.Context, r rune) (image.Image, error) {
	url := h.URL(r)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("构造 emoji 请求失败: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("GET %s: %w", url, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("解码 emoji 图片 %s 失败: %w", url, err)
	}
	return img, nil
}
