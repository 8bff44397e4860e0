package deepzoom

import (
	"errors"

	"github.com/gogpu/deepzoom/internal/parallel"
)

// Common errors returned by the engine.
var (
	// ErrInvalidOption is returned by New for an out-of-range setting.
	ErrInvalidOption = errors.New("deepzoom: invalid option")

	// ErrClosed is returned when an operation needs a running engine.
	ErrClosed = errors.New("deepzoom: engine closed")

	// ErrInvalidSize is returned for a window or raster with no pixels.
	ErrInvalidSize = parallel.ErrInvalidSize

	// ErrBufferTooLarge is returned when the raster would overflow.
	ErrBufferTooLarge = parallel.ErrBufferTooLarge

	// ErrWorkerPanic wraps a panic recovered from a row worker. It ends the
	// session.
	ErrWorkerPanic = parallel.ErrWorkerPanic
)
