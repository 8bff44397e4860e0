package parallel

import (
	"math/bits"
	"sync/atomic"
)

// Span is a half-open range of raster rows [Y0, Y1).
type Span struct {
	Y0 int
	Y1 int
}

// Len returns the number of rows in the span.
func (s Span) Len() int {
	return s.Y1 - s.Y0
}

// RowSet tracks which raster rows changed since the last present using an
// atomic bitmap, one bit per row packed into uint64 words.
//
// All methods are safe for concurrent use without external synchronization.
// The Buffer updates it under its own lock; the bitmap stays atomic so
// callers can poll Count or IsDirty without taking that lock.
type RowSet struct {
	// words holds the bitmap. Bit index = row, word index = row / 64.
	words []atomic.Uint64

	// rows is the number of rows tracked.
	rows int
}

// NewRowSet creates a tracker for the given number of rows, all clean.
// Returns nil if rows is zero or negative.
func NewRowSet(rows int) *RowSet {
	if rows <= 0 {
		return nil
	}
	return &RowSet{
		words: make([]atomic.Uint64, (rows+63)/64),
		rows:  rows,
	}
}

// Mark marks row y as dirty. Out-of-range rows are ignored.
func (s *RowSet) Mark(y int) {
	if y < 0 || y >= s.rows {
		return
	}
	s.words[y/64].Or(1 << (y & 63))
}

// MarkAll marks every row as dirty.
func (s *RowSet) MarkAll() {
	full := s.rows / 64
	for i := 0; i < full; i++ {
		s.words[i].Store(^uint64(0))
	}
	if rem := s.rows % 64; rem > 0 {
		s.words[full].Store((uint64(1) << rem) - 1)
	}
}

// Clear marks every row as clean.
func (s *RowSet) Clear() {
	for i := range s.words {
		s.words[i].Store(0)
	}
}

// IsDirty reports whether row y is dirty. Out-of-range rows are clean.
func (s *RowSet) IsDirty(y int) bool {
	if y < 0 || y >= s.rows {
		return false
	}
	return s.words[y/64].Load()&(1<<(y&63)) != 0
}

// IsEmpty reports whether no row is dirty.
func (s *RowSet) IsEmpty() bool {
	for i := range s.words {
		if s.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of dirty rows.
func (s *RowSet) Count() int {
	count := 0
	for i := range s.words {
		count += bits.OnesCount64(s.words[i].Load())
	}
	return count
}

// Rows returns the number of rows tracked.
func (s *RowSet) Rows() int {
	return s.rows
}

// GetAndClear atomically takes every dirty row and returns them coalesced
// into ascending spans of consecutive rows.
func (s *RowSet) GetAndClear() []Span {
	var spans []Span

	for wi := range s.words {
		word := s.words[wi].Swap(0)
		for word != 0 {
			y := wi*64 + bits.TrailingZeros64(word)
			if y >= s.rows {
				break
			}
			if n := len(spans); n > 0 && spans[n-1].Y1 == y {
				spans[n-1].Y1++
			} else {
				spans = append(spans, Span{Y0: y, Y1: y + 1})
			}
			word &= word - 1
		}
	}

	return spans
}
