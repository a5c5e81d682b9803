package layout

// 该文件定义画布规格与拟合结果，供拟合引擎、渲染器与调试 JSON 共用。

// MeasureMode 决定拟合阶段如何测量候选行。
type MeasureMode int

const (
	// MeasureSpaced 在文本宽度之外累加 (字符数-1)×字间距，静态图使用。
	MeasureSpaced MeasureMode = iota
	// MeasurePlain 只使用字体测量的文本宽度，动画使用。
	MeasurePlain
)

func (m MeasureMode) String() string {
	switch m {
	case MeasureSpaced:
		return "spaced"
	case MeasurePlain:
		return "plain"
	default:
		return "unknown"
	}
}

// Box 描述拟合目标区域与字号范围，单位均为像素。
type Box struct {
	Width         float64     `json:"width"`
	Height        float64     `json:"height"`
	Margin        float64     `json:"margin"`
	MinFontSize   int         `json:"minFontSize"`
	MaxFontSize   int         `json:"maxFontSize"`
	LineHeight    float64     `json:"lineHeight"` // 行高倍数
	LetterSpacing float64     `json:"letterSpacing"`
	Mode          MeasureMode `json:"mode"`
}

const (
	CanvasWidth  = 512
	CanvasHeight = 512

	defaultMinFontSize = 20
	defaultMaxFontSize = 200
	defaultLineHeight  = 1.2
)

// StaticBox 返回静态贴图的画布规格：边距 40，字间距 2。
func StaticBox() Box {
	return Box{
		Width:         CanvasWidth,
		Height:        CanvasHeight,
		Margin:        40,
		MinFontSize:   defaultMinFontSize,
		MaxFontSize:   defaultMaxFontSize,
		LineHeight:    defaultLineHeight,
		LetterSpacing: 2,
		Mode:          MeasureSpaced,
	}
}

// AnimatedBox 返回动画贴图的画布规格：边距 30，无字间距，纯文本测量。
func AnimatedBox() Box {
	return Box{
		Width:       CanvasWidth,
		Height:      CanvasHeight,
		Margin:      30,
		MinFontSize: defaultMinFontSize,
		MaxFontSize: defaultMaxFontSize,
		LineHeight:  defaultLineHeight,
		Mode:        MeasurePlain,
	}
}

// MaxLineWidth 是单行允许的最大宽度。
func (b Box) MaxLineWidth() float64 { return b.Width - 2*b.Margin }

// MaxTextHeight 是所有行允许的总高度。
func (b Box) MaxTextHeight() float64 { return b.Height - 2*b.Margin }

// FittedLayout 记录拟合出的字号与折行结果。
type FittedLayout struct {
	FontSize int      `json:"fontSize"`
	Lines    []string `json:"lines"`
	// Fits 为 false 表示已降到最小字号仍然溢出（尽力而为）。
	Fits bool `json:"fits"`
	Box  Box  `json:"box"`
}

// LineHeight 返回像素行高。
func (l FittedLayout) LineHeight() float64 {
	return float64(l.FontSize) * l.Box.LineHeight
}

// TextHeight 返回全部行的总高度。
func (l FittedLayout) TextHeight() float64 {
	return float64(len(l.Lines)) * l.LineHeight()
}

// StartY 返回垂直居中时第一行的顶部坐标。
func (l FittedLayout) StartY() float64 {
	return (l.Box.Height - l.TextHeight()) / 2
}

// LineTop 返回第 i 行的顶部坐标。
func (l FittedLayout) LineTop(i int) float64 {
	return l.StartY() + float64(i)*l.LineHeight()
}
