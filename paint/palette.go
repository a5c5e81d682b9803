package paint

import "image/color"

// Swatch 是调色板中的一个具名颜色。
type Swatch struct {
	Name  string
	Color color.NRGBA
}

// rainbowNames 是动画帧的固定顺序，每个颜色恰好出现一次。
var rainbowNames = []string{"red", "orange", "yellow", "green", "blue", "indigo", "violet"}

// Rainbow 返回七色调色板（按帧顺序）。
func Rainbow() []Swatch {
	out := make([]Swatch, 0, len(rainbowNames))
	for _, name := range rainbowNames {
		out = append(out, Swatch{Name: name, Color: MustParse(name)})
	}
	return out
}

// ParsePalette 把一组颜色字面量解析为调色板。
func ParsePalette(lits []string) ([]Swatch, error) {
	out := make([]Swatch, 0, len(lits))
	for _, lit := range lits {
		c, err := Parse(lit)
		if err != nil {
			return nil, err
		}
		out = append(out, Swatch{Name: lit, Color: c})
	}
	return out, nil
}
