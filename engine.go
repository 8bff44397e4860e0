package deepzoom

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/deepzoom/internal/escape"
	"github.com/gogpu/deepzoom/internal/parallel"
	"github.com/gogpu/deepzoom/internal/pixel"
	"github.com/gogpu/deepzoom/internal/viewport"
)

type (
	// Size is a size in pixels.
	Size = pixel.Size

	// Point is an integer pixel offset.
	Point = pixel.Point

	// Direction selects a zoom step.
	Direction = pixel.Direction

	// Frame is the raster handed to Flush callbacks. Pixels is only valid
	// inside the callback.
	Frame = parallel.Frame

	// Span is a half-open range of raster rows.
	Span = parallel.Span

	// Stats is a copy of the raster bookkeeping.
	Stats = parallel.Stats
)

// Zoom step directions.
const (
	Up   = pixel.Up
	Down = pixel.Down
)

// Engine is the progressive raster: a shared buffer, its numeric viewport and
// the workers filling it.
//
// All methods are safe for concurrent use. The expected pattern is one
// controller goroutine feeding transforms and calling Flush once per frame.
type Engine struct {
	cfg    Config
	params escape.Params

	buf  *parallel.Buffer
	pool *parallel.WorkerPool
	log  *slog.Logger

	mu      sync.Mutex
	window  Size
	started bool
	closed  bool
	err     error
}

// New creates an engine. Options are applied over DefaultConfig and
// validated; the workers do not run until Start.
func New(opts ...Option) (*Engine, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = Logger()
	}

	rect := viewport.New(cfg.Window, cfg.Aliasing)
	buf, err := parallel.NewBuffer(cfg.Raster(), rect, cfg.MaxIterations, log)
	if err != nil {
		return nil, fmt.Errorf("deepzoom: buffer: %w", err)
	}

	e := &Engine{
		cfg: cfg,
		params: escape.Params{
			MaxIterations: cfg.MaxIterations,
			ColorCycle:    cfg.ColorCycle,
			Saturation:    cfg.Saturation,
		},
		buf:    buf,
		log:    log,
		window: cfg.Window,
	}
	e.pool = parallel.NewWorkerPool(buf, cfg.Workers, e.renderRow, log)
	return e, nil
}

// renderRow is the pool's row function: the color kernel with the budget the
// row was claimed under.
func (e *Engine) renderRow(dst []byte, y int, snap *parallel.Snapshot) {
	p := e.params
	p.MaxIterations = snap.MaxIterations
	escape.RenderRow(dst, y, snap.Rect, p)
}

// Start launches the workers. Cancelling ctx stops them as Close would.
// Start returns ErrClosed after Close; later calls are no-ops.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.started {
		return nil
	}
	e.started = true
	e.pool.Start(ctx)

	e.log.Info("deepzoom: engine started",
		"window", e.window,
		"raster", e.cfg.Raster(),
		"workers", e.pool.Workers(),
		"max_iterations", e.cfg.MaxIterations)
	return nil
}

// Close stops the workers and waits for them. It returns the session error,
// if a worker failed, and is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return e.err
	}
	e.closed = true
	e.err = e.pool.Close()

	st := e.buf.Stats()
	e.log.Info("deepzoom: engine stopped",
		"committed", st.Committed,
		"discarded", st.Discarded,
		"err", e.err)
	return e.err
}

// Err returns the fatal session error, or nil while the workers are healthy.
// It does not block.
func (e *Engine) Err() error {
	return e.pool.Err()
}

// Translate shifts the raster by delta raster pixels.
func (e *Engine) Translate(delta Point) {
	e.buf.Translate(delta)
}

// ScaleStep zooms one power of two: Up halves the pixel step around raster
// pixel delta, Down doubles it.
func (e *Engine) ScaleStep(delta Point, dir Direction) {
	e.buf.Scale(delta, dir)
}

// Resize changes the window size. The raster follows as w*h*aliasing and
// keeps its overlapping pixels.
func (e *Engine) Resize(w, h int) error {
	window := Size{W: w, H: h}
	if window.Empty() {
		return fmt.Errorf("%w: window %s", ErrInvalidSize, window)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if err := e.buf.Resize(window.Scale(e.cfg.Aliasing)); err != nil {
		return err
	}
	e.window = window
	return nil
}

// AdjustIterations changes the iteration budget by delta, saturating at zero,
// and restarts the fill. It returns the new budget.
func (e *Engine) AdjustIterations(delta int) uint32 {
	return e.buf.AdjustIterations(delta)
}

// Flush calls fn with the raster if rows landed since the previous flush.
// It reports whether fn was called.
func (e *Engine) Flush(fn func(Frame)) bool {
	return e.buf.Flush(fn)
}

// Stats returns the raster bookkeeping.
func (e *Engine) Stats() Stats {
	return e.buf.Stats()
}

// Window returns the current window size.
func (e *Engine) Window() Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.window
}

// Config returns the settings the engine was created with. Window reflects
// the creation size, not later resizes.
func (e *Engine) Config() Config {
	return e.cfg
}

// Status summarizes the current zoom depth and kernel mode.
func (e *Engine) Status() Status {
	return newStatus(e.buf.Stats(), e.Window(), e.cfg.Aliasing)
}
