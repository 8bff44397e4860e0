// Package pixel provides the raster resampling operations used to reuse
// already computed pixels across pan, zoom and resize.
//
// All operations work on flat RGBA byte slices (4 bytes per pixel, row-major)
// described by a Size and a pitch in bytes. They never modify their input and
// always return a freshly allocated slice, so callers may swap the result in
// while the source is still referenced elsewhere.
//
// Pixels that have no source are zero (transparent black). The presentation
// layer draws those as holes until the worker pool recomputes them.
package pixel

import "fmt"

// BytesPerPixel is the size of one RGBA pixel.
const BytesPerPixel = 4

// Size is a raster size in pixels.
type Size struct {
	W int
	H int
}

// Pitch returns the row stride in bytes of a tightly packed raster.
func (s Size) Pitch() int {
	return s.W * BytesPerPixel
}

// Len returns the byte length of a tightly packed raster.
func (s Size) Len() int {
	return s.W * s.H * BytesPerPixel
}

// Empty reports whether the size has no pixels.
func (s Size) Empty() bool {
	return s.W <= 0 || s.H <= 0
}

// Min returns the component-wise minimum of s and o.
func (s Size) Min(o Size) Size {
	return Size{W: min(s.W, o.W), H: min(s.H, o.H)}
}

// Scale returns s multiplied by an integer factor.
func (s Size) Scale(k int) Size {
	return Size{W: s.W * k, H: s.H * k}
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Point is an integer pixel offset.
type Point struct {
	X int
	Y int
}

// Neg returns -p.
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Mul returns p scaled by k.
func (p Point) Mul(k int) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction selects a zoom step of the raster.
type Direction uint8

const (
	// Up magnifies the raster: every source pixel becomes a 2x2 block.
	Up Direction = iota

	// Down shrinks the raster: every other source pixel is kept on both axes.
	Down
)

// Factor returns the multiplier applied to the per-pixel plane step.
// Up halves the step (zoom in), Down doubles it.
func (d Direction) Factor() float64 {
	if d == Up {
		return 0.5
	}
	return 2.0
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}
