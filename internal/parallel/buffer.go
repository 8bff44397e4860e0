// Package parallel provides the shared raster and the worker pool that fills
// it progressively.
//
// The Buffer is the only shared mutable state of the engine. A single mutex
// guards pixels, viewport, size and counters, and is held only for claiming a
// row, committing a row and running a transform. Per-pixel work never runs
// under the lock.
//
// Workers take tickets from a claim counter. Ticket t maps to row
// InterlaceRow(t, h), so visible structure appears across the whole frame
// instead of top to bottom. A transform resets the counter; rows computed
// against an older viewport are detected at commit time and dropped.
package parallel

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/deepzoom/internal/pixel"
	"github.com/gogpu/deepzoom/internal/viewport"
)

// InterlaceStride is the row stride between consecutive tickets.
const InterlaceStride = 31

// maxBufferLen bounds the pixel slice so width*height*4 cannot overflow or
// exceed what a presentation texture can hold.
const maxBufferLen = math.MaxInt32

// Common errors for buffer operations.
var (
	// ErrInvalidSize is returned when a raster dimension is not positive.
	ErrInvalidSize = errors.New("parallel: invalid raster size")

	// ErrBufferTooLarge is returned when a raster would not fit in memory
	// addressable by a single texture upload.
	ErrBufferTooLarge = errors.New("parallel: raster too large")
)

// InterlaceRow maps claim ticket t in [0, height) to a raster row.
//
// Rows follow t*31 mod height. When height is a multiple of 31 that sequence
// repeats after height/31 tickets, so each repetition is shifted down by one
// row; tickets [0, height) still cover every row exactly once.
func InterlaceRow(ticket, height int) int {
	row := ticket * InterlaceStride % height
	if height%InterlaceStride == 0 {
		row = (row + ticket/(height/InterlaceStride)) % height
	}
	return row
}

// CheckSize validates a raster size.
func CheckSize(size pixel.Size) error {
	if size.Empty() {
		return fmt.Errorf("%w: %s", ErrInvalidSize, size)
	}
	if size.W > maxBufferLen/pixel.BytesPerPixel/size.H {
		return fmt.Errorf("%w: %s", ErrBufferTooLarge, size)
	}
	return nil
}

// Snapshot is the state a worker captured when it claimed a row.
type Snapshot struct {
	Rect          *viewport.Rect
	Size          pixel.Size
	MaxIterations uint32

	// Generation counts content invalidations and only tags snapshots.
	Generation uint64
}

// Frame is what Flush hands to the presentation layer.
// Pixels aliases the live raster and is only valid inside the callback.
type Frame struct {
	Pixels []byte
	Pitch  int
	Size   pixel.Size

	// Rows lists the row spans written since the previous flush.
	Rows []Span
}

// Stats is a consistent copy of the buffer's bookkeeping.
type Stats struct {
	Size          pixel.Size
	ScaleExponent float64
	HighPrecision bool
	MaxIterations uint32
	Claims        int
	Generation    uint64
	Committed     uint64
	Discarded     uint64
}

// Buffer is the shared raster: pixels, viewport, iteration budget and the
// row-claim counter.
//
// Thread safety: all methods are safe for concurrent use.
type Buffer struct {
	mu   sync.Mutex
	wake *sync.Cond

	size    pixel.Size
	pixels  []byte
	rect    *viewport.Rect
	maxIter uint32

	claims   int
	gen      uint64
	dirty    bool
	rows     *RowSet
	shutdown bool

	committed uint64
	discarded uint64

	log *slog.Logger
}

// NewBuffer allocates a zeroed raster of the given size. The buffer takes
// ownership of rect.
func NewBuffer(size pixel.Size, rect *viewport.Rect, maxIter uint32, log *slog.Logger) (*Buffer, error) {
	if err := CheckSize(size); err != nil {
		return nil, err
	}
	if rect == nil {
		return nil, errors.New("parallel: nil viewport")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	b := &Buffer{
		size:    size,
		pixels:  make([]byte, size.Len()),
		rect:    rect,
		maxIter: maxIter,
		rows:    NewRowSet(size.H),
		log:     log,
	}
	b.wake = sync.NewCond(&b.mu)
	return b, nil
}

// claim blocks until a row is available or the buffer shuts down. It
// returns the row to compute and a snapshot of the state it belongs to.
func (b *Buffer) claim() (int, Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.shutdown && b.claims >= b.size.H {
		b.wake.Wait()
	}
	if b.shutdown {
		return 0, Snapshot{}, false
	}

	ticket := b.claims
	b.claims++

	return InterlaceRow(ticket, b.size.H), Snapshot{
		Rect:          b.rect.Clone(),
		Size:          b.size,
		MaxIterations: b.maxIter,
		Generation:    b.gen,
	}, true
}

// commit copies row y into the raster if snap still matches the live state.
// It reports whether the row was written.
func (b *Buffer) commit(y int, snap *Snapshot, row []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.currentLocked(snap) {
		b.discarded++
		return false
	}

	off := y * b.size.Pitch()
	copy(b.pixels[off:off+b.size.Pitch()], row)
	b.dirty = true
	b.rows.Mark(y)
	b.committed++
	return true
}

func (b *Buffer) currentLocked(snap *Snapshot) bool {
	return snap.Size == b.size &&
		snap.MaxIterations == b.maxIter &&
		snap.Rect.Equal(b.rect)
}

// Translate shifts the raster by delta pixels and moves the viewport with it.
func (b *Buffer) Translate(delta pixel.Point) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pixels = pixel.Translate(b.pixels, b.size, b.size.Pitch(), delta)
	b.rect.OffsetAdd(delta)
	b.invalidateLocked()

	b.log.Debug("parallel: translate", "delta", delta, "generation", b.gen)
}

// Scale resamples the raster one zoom step around delta and adjusts the
// viewport origin and scale to match.
func (b *Buffer) Scale(delta pixel.Point, dir pixel.Direction) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pixels = pixel.Scale(b.pixels, b.size, b.size.Pitch(), delta, dir)
	b.rect.OffsetAdd(delta)
	b.rect.ScaleMul(dir.Factor())
	b.invalidateLocked()

	b.log.Debug("parallel: scale",
		"direction", dir,
		"delta", delta,
		"exponent", b.rect.ScaleExponent(),
		"precision", b.rect.Precision(),
		"generation", b.gen)
}

// Resize changes the raster size, keeping the overlapping pixels. The
// viewport is not changed.
func (b *Buffer) Resize(size pixel.Size) error {
	if err := CheckSize(size); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if size == b.size {
		return nil
	}

	b.pixels = pixel.Extend(b.pixels, b.size, b.size.Pitch(), size, size.Pitch())
	b.size = size
	b.rows = NewRowSet(size.H)
	b.invalidateLocked()

	b.log.Debug("parallel: resize", "size", size, "generation", b.gen)
	return nil
}

// AdjustIterations adds delta to the iteration budget, saturating at zero
// and at math.MaxUint32, and restarts the fill. It returns the new budget.
func (b *Buffer) AdjustIterations(delta int) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := int64(b.maxIter) + int64(delta)
	next = max(0, min(next, math.MaxUint32))
	b.maxIter = uint32(next)
	b.restartLocked()

	b.log.Debug("parallel: iterations", "max", b.maxIter, "generation", b.gen)
	return b.maxIter
}

// Restart resets the claim counter so every row is computed again.
func (b *Buffer) Restart() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restartLocked()
}

// invalidateLocked records a pixel-changing transform.
func (b *Buffer) invalidateLocked() {
	b.dirty = true
	b.rows.MarkAll()
	b.restartLocked()
}

func (b *Buffer) restartLocked() {
	b.claims = 0
	b.gen++
	b.wake.Broadcast()
}

// Flush calls fn with the current frame if anything changed since the last
// flush and clears the dirty state. It reports whether fn was called.
func (b *Buffer) Flush(fn func(Frame)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.dirty {
		return false
	}

	fn(Frame{
		Pixels: b.pixels,
		Pitch:  b.size.Pitch(),
		Size:   b.size,
		Rows:   b.rows.GetAndClear(),
	})
	b.dirty = false
	return true
}

// Dirty reports whether rows were written since the last flush.
func (b *Buffer) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty
}

// Stats returns a snapshot of the buffer's bookkeeping.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		Size:          b.size,
		ScaleExponent: b.rect.ScaleExponent(),
		HighPrecision: b.rect.HighPrecision(),
		MaxIterations: b.maxIter,
		Claims:        b.claims,
		Generation:    b.gen,
		Committed:     b.committed,
		Discarded:     b.discarded,
	}
}

// Viewport returns a copy of the live viewport.
func (b *Buffer) Viewport() *viewport.Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rect.Clone()
}

// Shutdown makes every worker exit at its next claim. It is idempotent.
func (b *Buffer) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shutdown {
		return
	}
	b.shutdown = true
	b.wake.Broadcast()
}

// Closed reports whether Shutdown was called.
func (b *Buffer) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shutdown
}
