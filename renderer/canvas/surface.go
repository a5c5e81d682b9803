package canvasrenderer

import (
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/ttp/layout"
)

type faceKey struct {
	size  float64
	color color.NRGBA
}

// Surface 基于已注册字体族提供字形度量与字体面。
// 每次渲染创建一个 Surface；字体面按字号与颜色缓存，不可并发使用。
type Surface struct {
	family *canvas.FontFamily
	faces  map[faceKey]*canvas.FontFace
}

var _ layout.Measurer = (*Surface)(nil)

// NewSurface 创建使用 family 的 Surface。
func NewSurface(family *canvas.FontFamily) *Surface {
	return &Surface{family: family, faces: map[faceKey]*canvas.FontFace{}}
}

// Face 返回字号为 size（像素）的字体面。
func (s *Surface) Face(size float64, col color.Color) *canvas.FontFace {
	key := faceKey{size: size, color: color.NRGBAModel.Convert(col).(color.NRGBA)}
	if face, ok := s.faces[key]; ok {
		return face
	}
	// 画布单位即像素，字体系统使用 pt，这里做一次换算
	face := s.family.Face(layout.PxToPt(size), col, canvas.FontRegular, canvas.FontNormal)
	s.faces[key] = face
	return face
}

// TextWidth 实现 layout.Measurer。
func (s *Surface) TextWidth(fontSize float64, text string) float64 {
	return s.Face(fontSize, color.Black).TextWidth(text)
}

// Ascent 返回字号 size 下基线到顶部的距离。
func (s *Surface) Ascent(size float64) float64 {
	return s.Face(size, color.Black).Metrics().Ascent
}
