package animation

import (
	"image"
	"image/color"
	"sort"
)

// 每帧最多 256 色，索引 0 留给透明色键。
const maxOpaqueColors = 255

// alpha 低于该值的像素视为透明。
const alphaThreshold = 128

type bucket struct {
	key   uint32
	count int
}

// Quantize 把一帧转换为调色板图像。
// quality 是每个通道的量化步长；出现次数最多的 255 个颜色桶进入调色板，其余像素映射到最近的颜色。
func Quantize(img *image.RGBA, quality int, transparent color.Color) *image.Paletted {
	if quality < 1 {
		quality = 1
	}
	step := uint32(quality)
	b := img.Rect

	counts := map[uint32]int{}
	keys := make([]uint32, b.Dx()*b.Dy())
	opaque := make([]bool, len(keys))
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+4]
			if p[3] >= alphaThreshold {
				r, g, bl := unpremultiply(p[0], p[3]), unpremultiply(p[1], p[3]), unpremultiply(p[2], p[3])
				k := uint32(r)/step<<16 | uint32(g)/step<<8 | uint32(bl)/step
				keys[i] = k
				opaque[i] = true
				counts[k]++
			}
			i++
		}
	}

	buckets := make([]bucket, 0, len(counts))
	for k, c := range counts {
		buckets = append(buckets, bucket{key: k, count: c})
	}
	sort.Slice(buckets, func(a, b int) bool {
		if buckets[a].count != buckets[b].count {
			return buckets[a].count > buckets[b].count
		}
		return buckets[a].key < buckets[b].key
	})
	if len(buckets) > maxOpaqueColors {
		buckets = buckets[:maxOpaqueColors]
	}

	tr := color.NRGBAModel.Convert(transparent).(color.NRGBA)
	tr.A = 0
	palette := color.Palette{tr}
	index := make(map[uint32]uint8, len(counts))
	for n, bk := range buckets {
		palette = append(palette, bucketColor(bk.key, step))
		index[bk.key] = uint8(n + 1)
	}

	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette)
	for j, k := range keys {
		if !opaque[j] {
			continue
		}
		idx, ok := index[k]
		if !ok {
			idx = nearest(palette, bucketColor(k, step))
			index[k] = idx
		}
		out.Pix[j] = idx
	}
	return out
}

func unpremultiply(c, a uint8) uint8 {
	if a == 0xff {
		return c
	}
	v := uint32(c) * 0xff / uint32(a)
	if v > 0xff {
		v = 0xff
	}
	return uint8(v)
}

// bucketColor 返回颜色桶的中心色。
func bucketColor(key, step uint32) color.NRGBA {
	ch := func(v uint32) uint8 {
		c := v*step + step/2
		if c > 0xff {
			c = 0xff
		}
		return uint8(c)
	}
	return color.NRGBA{R: ch(key >> 16 & 0xff), G: ch(key >> 8 & 0xff), B: ch(key & 0xff), A: 0xff}
}

func nearest(p color.Palette, c color.NRGBA) uint8 {
	best, bestDist := 1, -1
	for i := 1; i < len(p); i++ {
		q := p[i].(color.NRGBA)
		dr, dg, db := int(c.R)-int(q.R), int(c.G)-int(q.G), int(c.B)-int(q.B)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best)
}
