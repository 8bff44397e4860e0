// Package deepzoom is a progressive, precision-adaptive Mandelbrot raster
// engine.
//
// # Overview
//
// An Engine owns a raster of window*aliasing pixels and a pool of workers
// that fill it row by row. The raster is always presentable: after a pan,
// zoom or resize the already computed pixels are resampled into their new
// position and only then recomputed, so the picture never goes blank while
// the user is moving.
//
// # Quick Start
//
//	eng, err := deepzoom.New(
//	    deepzoom.WithWindowSize(800, 600),
//	    deepzoom.WithMaxIterations(10000),
//	)
//	if err != nil {
//	    return err
//	}
//	eng.Start(ctx)
//	defer eng.Close()
//
//	// Once per frame:
//	eng.Flush(func(f deepzoom.Frame) {
//	    // upload f.Rows of f.Pixels to a texture
//	})
//
// # Precision
//
// While a pixel step is still representable in a float64 mantissa the
// kernel iterates in float64. Past 2^-52 it switches to math/big at a
// precision of the zoom exponent plus 16 bits, so zoom depth is bounded by
// memory and patience only.
//
// # Navigation
//
// A Navigator turns pointer drags, wheel motion and zoom impulses into
// presentation offsets and, when the presented texture has been magnified
// or shrunk far enough, into whole-pixel Engine transforms. It has no
// window toolkit dependency; cmd/deepzoom drives it from ebiten.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Engine, Navigator, Status, Option
//   - internal/viewport: origin and pixel step at adaptive precision
//   - internal/escape, internal/color: escape-time kernel and HSV palette
//   - internal/pixel: translate, scale and extend of RGBA rasters
//   - internal/parallel: shared raster buffer and row-claiming worker pool
package deepzoom

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
