package layout

// Measurer 负责在给定像素字号下测量一段文本的宽度（像素）。
// 实现必须是确定性的：相同输入返回相同宽度。
type Measurer interface {
	TextWidth(fontSize float64, text string) float64
}

// MeasurerFunc 让普通函数满足 Measurer。
type MeasurerFunc func(fontSize float64, text string) float64

// TextWidth implements Measurer.
func (f MeasurerFunc) TextWidth(fontSize float64, text string) float64 { return f(fontSize, text) }
