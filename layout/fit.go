package layout

import (
	"strings"
	"unicode/utf8"
)

// Fit 从最大字号开始逐级递减，寻找能让折行后的文本放进 box 的最大字号。
// 文本按单个空格切分，连续空格产生的空词会原样保留在行内。
// 所有字号都放不下时返回最小字号下的折行结果（Fits=false），不视为错误。
func Fit(text string, box Box, m Measurer) FittedLayout {
	minSize := box.MinFontSize
	if minSize < 1 {
		minSize = 1
	}
	maxSize := box.MaxFontSize
	if maxSize < minSize {
		maxSize = minSize
	}

	words := strings.Split(text, " ")
	for size := maxSize; size >= minSize; size-- {
		lines, overflow := wrapWords(words, float64(size), box, m)
		height := float64(len(lines)) * float64(size) * box.LineHeight
		if !overflow && height <= box.MaxTextHeight() {
			return FittedLayout{FontSize: size, Lines: lines, Fits: true, Box: box}
		}
		if size == minSize {
			return FittedLayout{FontSize: size, Lines: lines, Fits: false, Box: box}
		}
	}
	// 不可达：循环至少执行一次
	return FittedLayout{FontSize: minSize, Box: box}
}

// wrapWords 使用贪心算法把词累加到当前行，候选行超出宽度时换行。
// overflow 表示存在单个词就超出行宽的行。
func wrapWords(words []string, size float64, box Box, m Measurer) (lines []string, overflow bool) {
	limit := box.MaxLineWidth()
	current := ""
	for _, word := range words {
		candidate := current + word + " "
		if measureCandidate(candidate, size, box, m) <= limit {
			current = candidate
			continue
		}
		if strings.TrimSpace(current) != "" {
			lines = append(lines, strings.TrimSpace(current))
			current = word + " "
			if measureCandidate(current, size, box, m) > limit {
				overflow = true
			}
			continue
		}
		// 当前行还没有词，超宽的词单独占一行
		current = candidate
		overflow = true
	}
	lines = append(lines, strings.TrimSpace(current))
	return lines, overflow
}

// MeasureLine 按 box 的测量模式返回一行文本的宽度。
func MeasureLine(line string, size float64, box Box, m Measurer) float64 {
	return measureCandidate(line, size, box, m)
}

func measureCandidate(candidate string, size float64, box Box, m Measurer) float64 {
	width := m.TextWidth(size, candidate)
	if box.Mode == MeasureSpaced {
		if n := utf8.RuneCountInString(candidate); n > 1 {
			width += float64(n-1) * box.LetterSpacing
		}
	}
	return width
}
