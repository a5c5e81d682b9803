// Package paint 解析 CSS 风格的颜色字面量，并提供动画使用的固定调色板。
package paint

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	colorLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Hex", Pattern: `#[0-9A-Fa-f]+`},
		{Name: "Number", Pattern: `(?:\d+\.\d*|\.\d+|\d+)%?`},
		{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9-]*`},
		{Name: "Punct", Pattern: `[(),/]`},
	})

	colorParser = participle.MustBuild[Expr](
		participle.Lexer(colorLexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Ident"),
	)
)

// Expr 是颜色字面量的 AST：#hex、命名颜色或 rgb()/rgba() 函数。
type Expr struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Hex   *string        `parser:"  @Hex"`
	Ident *IdentExpr     `parser:"| @@"`
}

// IdentExpr 是命名颜色，带参数时为函数调用。
type IdentExpr struct {
	Name string    `parser:"@Ident"`
	Call *CallArgs `parser:"@@?"`
}

// CallArgs 捕获函数参数，允许逗号或空格分隔，alpha 可用 "/" 引出。
type CallArgs struct {
	Args  []string `parser:"'(' @Number ( ','? @Number )*"`
	Alpha *string  `parser:"( '/' @Number )? ')'"`
}

// Parse 解析颜色字面量，例如 "red"、"#ff0000"、"rgba(0, 0, 0, 0)"。
func Parse(s string) (color.NRGBA, error) {
	expr, err := colorParser.ParseString("", strings.TrimSpace(s))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("解析颜色 %q 失败: %w", s, err)
	}
	c, err := expr.Eval()
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("解析颜色 %q 失败: %w", s, err)
	}
	return c, nil
}

// MustParse 与 Parse 相同，但在失败时 panic，用于包级常量。
func MustParse(s string) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Eval 计算表达式对应的颜色。
func (e *Expr) Eval() (color.NRGBA, error) {
	switch {
	case e.Hex != nil:
		return parseHex(*e.Hex)
	case e.Ident != nil:
		return e.Ident.eval()
	default:
		return color.NRGBA{}, fmt.Errorf("空颜色表达式")
	}
}

func (id *IdentExpr) eval() (color.NRGBA, error) {
	name := strings.ToLower(id.Name)
	if id.Call == nil {
		c, ok := namedColors[name]
		if !ok {
			return color.NRGBA{}, fmt.Errorf("未知颜色名 %s", id.Name)
		}
		return c, nil
	}
	args := id.Call.Args
	if id.Call.Alpha != nil {
		args = append(append([]string{}, args...), *id.Call.Alpha)
	}
	switch name {
	case "rgb", "rgba":
	default:
		return color.NRGBA{}, fmt.Errorf("不支持的颜色函数 %s", id.Name)
	}
	if len(args) != 3 && len(args) != 4 {
		return color.NRGBA{}, fmt.Errorf("%s 需要 3 或 4 个参数，实际 %d", name, len(args))
	}
	var out color.NRGBA
	channels := []*uint8{&out.R, &out.G, &out.B}
	for i, ch := range channels {
		v, err := parseChannel(args[i])
		if err != nil {
			return color.NRGBA{}, err
		}
		*ch = v
	}
	out.A = 255
	if len(args) == 4 {
		a, err := parseAlpha(args[3])
		if err != nil {
			return color.NRGBA{}, err
		}
		out.A = a
	}
	return out, nil
}

func parseChannel(raw string) (uint8, error) {
	if strings.HasSuffix(raw, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("无效的颜色分量 %s: %w", raw, err)
		}
		return clampByte(v / 100 * 255), nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("无效的颜色分量 %s: %w", raw, err)
	}
	return clampByte(v), nil
}

func parseAlpha(raw string) (uint8, error) {
	if strings.HasSuffix(raw, "%") {
		return parseChannel(raw)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("无效的透明度 %s: %w", raw, err)
	}
	return clampByte(v * 255), nil
}

func parseHex(raw string) (color.NRGBA, error) {
	digits := strings.TrimPrefix(raw, "#")
	switch len(digits) {
	case 3, 4:
		expanded := make([]byte, 0, len(digits)*2)
		for i := 0; i < len(digits); i++ {
			expanded = append(expanded, digits[i], digits[i])
		}
		digits = string(expanded)
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("无效的十六进制颜色 %s", raw)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("无效的十六进制颜色 %s: %w", raw, err)
	}
	if len(digits) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
