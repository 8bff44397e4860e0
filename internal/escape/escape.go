// Package escape computes Mandelbrot escape-time colors.
//
// Two iteration paths exist: Fixed runs on float64 and is used while the
// viewport can still be resolved by a 52-bit mantissa, Arbitrary runs on
// math/big at the viewport's working precision. Both return the same color
// for the same escape, so switching paths mid-zoom does not shift the palette.
//
// Every function here is pure and safe for concurrent use.
package escape

import (
	"math"
	"math/big"

	"github.com/gogpu/deepzoom/internal/color"
)

// Bailout is the squared escape radius.
const Bailout = 4

// Params are the palette and budget inputs of the kernel.
type Params struct {
	// MaxIterations is the iteration budget; points that survive it are
	// inside the set.
	MaxIterations uint32

	// ColorCycle divides the smoothed iteration count before it becomes a hue.
	ColorCycle uint32

	// Saturation of the HSV palette, in [0,1].
	Saturation float32
}

// Fixed returns the color of fractal-frame point (x, y) using float64.
func Fixed(x, y float64, p Params) color.RGB {
	iter, magSq := iterateFloat64(3*x-0.5, 3*y, p.MaxIterations)
	return shade(iter, magSq, p)
}

// Arbitrary returns the color of fractal-frame point (x, y) using math/big at
// the precision of x.
func Arbitrary(x, y *big.Float, p Params) color.RGB {
	prec := x.Prec()

	three := new(big.Float).SetPrec(prec).SetInt64(3)
	half := new(big.Float).SetPrec(prec).SetFloat64(0.5)

	cr := new(big.Float).SetPrec(prec).Mul(x, three)
	cr.Sub(cr, half)
	ci := new(big.Float).SetPrec(prec).Mul(y, three)

	iter, magSq := iterateBig(cr, ci, p.MaxIterations)
	return shade(iter, magSq, p)
}

// Color dispatches to Arbitrary when high is set and to Fixed otherwise.
func Color(x, y *big.Float, high bool, p Params) color.RGB {
	if high {
		return Arbitrary(x, y, p)
	}
	fx, _ := x.Float64()
	fy, _ := y.Float64()
	return Fixed(fx, fy, p)
}

// shade maps an escape to a palette color. A zero magnitude marks a point
// that never escaped.
func shade(iter uint32, magSq float32, p Params) color.RGB {
	if magSq < Bailout {
		return color.Black
	}
	subIter := 4.5/magSq - 0.125
	hue := float32(math.Sqrt(float64(float32(iter)+subIter))) / float32(p.ColorCycle) * 360
	return color.HSVToRGB(hue, p.Saturation, 1)
}

// iterateFloat64 runs z <- z^2 + c from zero. It returns the iteration at
// which |z|^2 first exceeded Bailout with that magnitude, or (0, 0).
func iterateFloat64(cr, ci float64, maxIter uint32) (uint32, float32) {
	var zr, zi float64
	for iter := uint32(0); iter < maxIter; iter++ {
		rr := zr * zr
		ii := zi * zi
		if mag := rr + ii; mag > Bailout {
			return iter, float32(mag)
		}
		zi = 2*zr*zi + ci
		zr = rr - ii + cr
	}
	return 0, 0
}

// iterateBig is iterateFloat64 on math/big. All temporaries share the
// precision of cr and are reused across iterations.
func iterateBig(cr, ci *big.Float, maxIter uint32) (uint32, float32) {
	prec := cr.Prec()
	four := new(big.Float).SetPrec(prec).SetInt64(Bailout)

	zr := new(big.Float).SetPrec(prec)
	zi := new(big.Float).SetPrec(prec)
	rr := new(big.Float).SetPrec(prec)
	ii := new(big.Float).SetPrec(prec)
	mag := new(big.Float).SetPrec(prec)

	for iter := uint32(0); iter < maxIter; iter++ {
		rr.Mul(zr, zr)
		ii.Mul(zi, zi)
		mag.Add(rr, ii)
		if mag.Cmp(four) > 0 {
			m, _ := mag.Float32()
			return iter, m
		}

		// zi = 2*zr*zi + ci
		zi.Mul(zi, zr)
		zi.SetMantExp(zi, 1)
		zi.Add(zi, ci)

		// zr = rr - ii + cr
		zr.Sub(rr, ii)
		zr.Add(zr, cr)
	}
	return 0, 0
}
