package layout

// 画布坐标约定：canvas 内部以毫米为单位，光栅化时使用 1 dot/mm，
// 因此 1 个坐标单位 == 1 个像素。字体度量接口使用 pt，需要在边界处换算。

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// DotsPerUnit 是光栅化分辨率（每毫米像素数）。
const DotsPerUnit = 1.0

// PxToPt 将像素字号转换为字体面需要的 pt。
func PxToPt(px float64) float64 { return px / DotsPerUnit * MmToPt }

// PtToPx 将 pt 转换回像素。
func PtToPx(pt float64) float64 { return pt * PtToMm * DotsPerUnit }
