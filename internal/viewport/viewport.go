// Package viewport maps raster pixels to points of the complex plane at a
// precision that follows the zoom depth.
//
// A Rect stores the plane coordinate of raster pixel (0,0) as a pair of
// math/big floats and the per-pixel step as a power of two, 2^-exp. The
// working precision of the origin is re-derived from exp whenever the scale
// changes, so deep zooms keep enough mantissa bits to tell neighbouring
// pixels apart and shallow views do not pay for bits they cannot use.
package viewport

import (
	"fmt"
	"math"
	"math/big"

	"github.com/gogpu/deepzoom/internal/pixel"
)

const (
	// ExtraPrecision is the number of bits kept beyond what the scale
	// exponent itself requires.
	ExtraPrecision = 16

	// MinPrecision is the precision floor used for shallow zoom levels.
	MinPrecision = 64

	// Float64Mantissa is the explicit mantissa width of float64. Past this
	// exponent neighbouring pixels collapse to the same float64 value.
	Float64Mantissa = 52
)

// Rect is the numeric viewport: origin plus power-of-two pixel step.
//
// Rect is not safe for concurrent mutation. Workers read their own Clone.
type Rect struct {
	x   *big.Float
	y   *big.Float
	exp float64
}

// New returns a viewport for a raster of window*aliasing pixels, scaled so
// that the shorter window side spans one unit and centered on the origin.
func New(window pixel.Size, aliasing int) *Rect {
	r := &Rect{
		x: new(big.Float).SetPrec(MinPrecision),
		y: new(big.Float).SetPrec(MinPrecision),
	}

	minSide := min(window.W, window.H)
	r.ScaleMul(1 / float64(minSide*aliasing))
	r.OffsetAdd(pixel.Point{
		X: window.W * aliasing / -2,
		Y: window.H * aliasing / -2,
	})
	return r
}

// ScaleMul multiplies the per-pixel step by factor and re-applies the
// working precision to the origin. Factors below one zoom in.
func (r *Rect) ScaleMul(factor float64) {
	r.exp -= math.Log2(factor)
	prec := r.Precision()
	r.x.SetPrec(prec)
	r.y.SetPrec(prec)
}

// OffsetAdd moves the origin by delta pixels at the current scale.
func (r *Rect) OffsetAdd(delta pixel.Point) {
	s := r.Scale()

	dx := new(big.Float).SetPrec(r.x.Prec()).SetInt64(int64(delta.X))
	dx.Mul(dx, s)
	r.x.Add(r.x, dx)

	dy := new(big.Float).SetPrec(r.y.Prec()).SetInt64(int64(delta.Y))
	dy.Mul(dy, s)
	r.y.Add(r.y, dy)
}

// Scale returns the plane distance spanned by one pixel, 2^-exp, at the
// working precision.
//
// The integer part of the exponent is applied exactly; the fractional part
// comes from math.Exp2 and carries float64 accuracy.
func (r *Rect) Scale() *big.Float {
	n := math.Floor(-r.exp)
	mant := new(big.Float).SetPrec(r.Precision()).SetFloat64(math.Exp2(-r.exp - n))
	return mant.SetMantExp(mant, int(n))
}

// Precision returns the working precision in bits:
// ceil(exp) + ExtraPrecision, never less than MinPrecision.
func (r *Rect) Precision() uint {
	p := math.Ceil(r.exp) + ExtraPrecision
	if p < MinPrecision {
		return MinPrecision
	}
	return uint(p)
}

// HighPrecision reports whether float64 can no longer resolve one pixel and
// the arbitrary-precision kernel must be used.
func (r *Rect) HighPrecision() bool {
	return r.exp > Float64Mantissa
}

// ScaleExponent returns log2 of the inverse pixel step.
func (r *Rect) ScaleExponent() float64 {
	return r.exp
}

// Origin returns copies of the plane coordinate of pixel (0,0).
func (r *Rect) Origin() (x, y *big.Float) {
	return new(big.Float).Copy(r.x), new(big.Float).Copy(r.y)
}

// OriginFloat64 returns the origin rounded to float64.
func (r *Rect) OriginFloat64() (x, y float64) {
	x, _ = r.x.Float64()
	y, _ = r.y.Float64()
	return x, y
}

// Pixel returns the plane coordinate of raster pixel (px, py) at the working
// precision.
func (r *Rect) Pixel(px, py int) (x, y *big.Float) {
	prec := r.Precision()
	s := r.Scale()

	x = new(big.Float).SetPrec(prec).SetInt64(int64(px))
	x.Mul(x, s).Add(x, r.x)
	y = new(big.Float).SetPrec(prec).SetInt64(int64(py))
	y.Mul(y, s).Add(y, r.y)
	return x, y
}

// PixelFloat64 is Pixel rounded to float64.
func (r *Rect) PixelFloat64(px, py int) (x, y float64) {
	ox, oy := r.OriginFloat64()
	step := r.StepFloat64()
	return ox + float64(px)*step, oy + float64(py)*step
}

// StepFloat64 returns the per-pixel step rounded to float64.
func (r *Rect) StepFloat64() float64 {
	return math.Exp2(-r.exp)
}

// Clone returns an independent copy of r.
func (r *Rect) Clone() *Rect {
	return &Rect{
		x:   new(big.Float).Copy(r.x),
		y:   new(big.Float).Copy(r.y),
		exp: r.exp,
	}
}

// Equal reports whether r and o describe the same mapping exactly.
func (r *Rect) Equal(o *Rect) bool {
	if r == o {
		return true
	}
	if r == nil || o == nil {
		return false
	}
	return r.exp == o.exp && r.x.Cmp(o.x) == 0 && r.y.Cmp(o.y) == 0
}

func (r *Rect) String() string {
	return fmt.Sprintf("Rect{x=%s y=%s exp=%.4f prec=%d}",
		r.x.Text('g', 24), r.y.Text('g', 24), r.exp, r.Precision())
}
