package escape

import (
	"math/big"

	"github.com/gogpu/deepzoom/internal/pixel"
	"github.com/gogpu/deepzoom/internal/viewport"
)

// RenderRow fills dst with raster row y of rect as RGBA pixels. The row width
// is len(dst)/4. The kernel path follows rect.HighPrecision.
func RenderRow(dst []byte, y int, rect *viewport.Rect, p Params) {
	width := len(dst) / pixel.BytesPerPixel
	if rect.HighPrecision() {
		renderRowBig(dst, width, y, rect, p)
		return
	}
	renderRowFixed(dst, width, y, rect, p)
}

func renderRowFixed(dst []byte, width, y int, rect *viewport.Rect, p Params) {
	ox, oy := rect.OriginFloat64()
	step := rect.StepFloat64()
	fy := oy + float64(y)*step

	for x := 0; x < width; x++ {
		fx := ox + float64(x)*step
		Fixed(fx, fy, p).Put(dst[x*pixel.BytesPerPixel:])
	}
}

func renderRowBig(dst []byte, width, y int, rect *viewport.Rect, p Params) {
	prec := rect.Precision()
	step := rect.Scale()
	ox, oy := rect.Origin()

	py := new(big.Float).SetPrec(prec).SetInt64(int64(y))
	py.Mul(py, step)
	py.Add(py, oy)

	px := new(big.Float).SetPrec(prec)
	for x := 0; x < width; x++ {
		px.SetInt64(int64(x))
		px.Mul(px, step)
		px.Add(px, ox)
		Arbitrary(px, py, p).Put(dst[x*pixel.BytesPerPixel:])
	}
}
