package fonts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultSrc 是未配置字体时使用的内置粗体。
const DefaultSrc = "embed:gobold"

var builtin = map[string][]byte{
	"gobold":    gobold.TTF,
	"goregular": goregular.TTF,
}

// Load 返回字体的字节数据。src 可写为 "embed:gobold"、文件路径，或 doublestar 通配符（取排序后的第一个匹配）。
func Load(src string) ([]byte, error) {
	if src == "" {
		src = DefaultSrc
	}
	if name, ok := strings.CutPrefix(src, "embed:"); ok {
		data, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置字体 %s", src)
		}
		return data, nil
	}
	path, err := Resolve(src)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

// Resolve 把可能带通配符的字体路径展开为单个文件。
func Resolve(pattern string) (string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return pattern, nil
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("字体通配符 %s 无效: %w", pattern, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("字体通配符 %s 没有匹配的文件", pattern)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// Register 加载 src 并注册为名为 family 的字体族。启动时调用一次，之后只读。
func Register(family, src string) (*canvas.FontFamily, error) {
	data, err := Load(src)
	if err != nil {
		return nil, err
	}
	if family == "" {
		family = "ttp"
	}
	ff := canvas.NewFontFamily(family)
	if err := ff.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("注册字体 %s 失败: %w", src, err)
	}
	return ff, nil
}
