package parallel

import (
	"errors"
	"testing"

	"github.com/gogpu/deepzoom/internal/pixel"
	"github.com/gogpu/deepzoom/internal/viewport"
)

func newTestBuffer(t *testing.T, size pixel.Size, maxIter uint32) *Buffer {
	t.Helper()
	b, err := NewBuffer(size, viewport.New(size, 1), maxIter, nil)
	if err != nil {
		t.Fatalf("NewBuffer(%v) error = %v", size, err)
	}
	return b
}

func filledRow(size pixel.Size, v byte) []byte {
	row := make([]byte, size.Pitch())
	for i := range row {
		row[i] = v
	}
	return row
}

// =============================================================================
// Interlace Tests
// =============================================================================

func TestInterlaceRow_Coverage(t *testing.T) {
	for h := 1; h <= 200; h++ {
		seen := make([]bool, h)
		for ticket := 0; ticket < h; ticket++ {
			y := InterlaceRow(ticket, h)
			if y < 0 || y >= h {
				t.Fatalf("h=%d: InterlaceRow(%d) = %d out of range", h, ticket, y)
			}
			if seen[y] {
				t.Fatalf("h=%d: row %d claimed twice", h, y)
			}
			seen[y] = true
		}
	}
}

func TestInterlaceRow_Stride(t *testing.T) {
	const h = 97
	for ticket := 0; ticket < h; ticket++ {
		if got, want := InterlaceRow(ticket, h), ticket*31%h; got != want {
			t.Fatalf("InterlaceRow(%d, %d) = %d, want %d", ticket, h, got, want)
		}
	}
}

func TestInterlaceRow_MultipleOfStride(t *testing.T) {
	// 62 rows: the plain stride would alternate between rows 0 and 31.
	got := []int{InterlaceRow(0, 62), InterlaceRow(1, 62), InterlaceRow(2, 62), InterlaceRow(3, 62)}
	want := []int{0, 31, 1, 32}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("InterlaceRow(%d, 62) = %d, want %d", i, got[i], want[i])
		}
	}
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestCheckSize(t *testing.T) {
	tests := []struct {
		name string
		size pixel.Size
		want error
	}{
		{"valid", pixel.Size{W: 1600, H: 1200}, nil},
		{"zero width", pixel.Size{W: 0, H: 10}, ErrInvalidSize},
		{"negative height", pixel.Size{W: 10, H: -1}, ErrInvalidSize},
		{"too large", pixel.Size{W: 1 << 20, H: 1 << 20}, ErrBufferTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSize(tt.size)
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckSize(%v) = %v, want %v", tt.size, err, tt.want)
			}
		})
	}
}

func TestNewBuffer_Errors(t *testing.T) {
	if _, err := NewBuffer(pixel.Size{}, viewport.New(pixel.Size{W: 1, H: 1}, 1), 10, nil); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("empty size error = %v, want ErrInvalidSize", err)
	}
	if _, err := NewBuffer(pixel.Size{W: 4, H: 4}, nil, 10, nil); err == nil {
		t.Error("nil viewport should fail")
	}
}

func TestNewBuffer_Initial(t *testing.T) {
	b := newTestBuffer(t, pixel.Size{W: 8, H: 6}, 100)

	s := b.Stats()
	if s.Size != (pixel.Size{W: 8, H: 6}) || s.MaxIterations != 100 || s.Claims != 0 {
		t.Errorf("Stats() = %+v", s)
	}
	if b.Dirty() {
		t.Error("new buffer should not be dirty")
	}
	if len(b.pixels) != 8*6*4 {
		t.Errorf("len(pixels) = %d, want %d", len(b.pixels), 8*6*4)
	}
}

// =============================================================================
// Claim / Commit Tests
// =============================================================================

func TestClaimCommit(t *testing.T) {
	size := pixel.Size{W: 4, H: 5}
	b := newTestBuffer(t, size, 50)

	y, snap, ok := b.claim()
	if !ok {
		t.Fatal("claim() failed on a fresh buffer")
	}
	if y != 0 || snap.Size != size || snap.MaxIterations != 50 {
		t.Errorf("claim() = (%d, %+v)", y, snap)
	}
	if !b.commit(y, &snap, filledRow(size, 7)) {
		t.Fatal("commit() of a current snapshot was rejected")
	}
	if !b.Dirty() {
		t.Error("commit should mark the buffer dirty")
	}
	if b.pixels[0] != 7 || b.pixels[size.Pitch()-1] != 7 || b.pixels[size.Pitch()] != 0 {
		t.Error("commit wrote the wrong bytes")
	}
	if got := b.Stats().Claims; got != 1 {
		t.Errorf("Claims = %d, want 1", got)
	}
}

func TestCommit_StaleDiscarded(t *testing.T) {
	size := pixel.Size{W: 4, H: 4}

	tests := []struct {
		name   string
		mutate func(b *Buffer)
	}{
		{"translate", func(b *Buffer) { b.Translate(pixel.Point{X: 1}) }},
		{"scale", func(b *Buffer) { b.Scale(pixel.Point{X: 1, Y: 1}, pixel.Up) }},
		{"resize", func(b *Buffer) { _ = b.Resize(pixel.Size{W: 6, H: 4}) }},
		{"iterations", func(b *Buffer) { b.AdjustIterations(1000) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuffer(t, size, 10)
			y, snap, _ := b.claim()
			tt.mutate(b)

			before := append([]byte(nil), b.pixels...)
			if b.commit(y, &snap, filledRow(snap.Size, 9)) {
				t.Fatal("stale commit was accepted")
			}
			if string(before) != string(b.pixels) {
				t.Error("stale commit modified pixels")
			}
			if got := b.Stats().Discarded; got != 1 {
				t.Errorf("Discarded = %d, want 1", got)
			}
		})
	}
}

func TestCommit_ZeroTranslateStaysCurrent(t *testing.T) {
	size := pixel.Size{W: 4, H: 4}
	b := newTestBuffer(t, size, 10)

	y, snap, _ := b.claim()
	b.Translate(pixel.Point{})

	if !b.commit(y, &snap, filledRow(size, 1)) {
		t.Error("commit rejected although the viewport did not change")
	}
}

// =============================================================================
// Transform Tests
// =============================================================================

func TestTransforms_ResetClaims(t *testing.T) {
	size := pixel.Size{W: 4, H: 4}
	b := newTestBuffer(t, size, 10)

	for range 3 {
		b.claim()
	}
	gen := b.Stats().Generation

	b.Translate(pixel.Point{X: 2})
	s := b.Stats()
	if s.Claims != 0 {
		t.Errorf("Claims after Translate = %d, want 0", s.Claims)
	}
	if s.Generation != gen+1 {
		t.Errorf("Generation = %d, want %d", s.Generation, gen+1)
	}
	if !b.Dirty() {
		t.Error("Translate should mark the buffer dirty")
	}
}

func TestScale_UpdatesViewport(t *testing.T) {
	size := pixel.Size{W: 8, H: 8}
	b := newTestBuffer(t, size, 10)
	before := b.Viewport()

	b.Scale(pixel.Point{X: 2, Y: 2}, pixel.Up)

	want := before.Clone()
	want.OffsetAdd(pixel.Point{X: 2, Y: 2})
	want.ScaleMul(0.5)
	if !b.Viewport().Equal(want) {
		t.Errorf("viewport = %v, want %v", b.Viewport(), want)
	}
	if got := b.Stats().ScaleExponent; got != before.ScaleExponent()+1 {
		t.Errorf("ScaleExponent = %v, want %v", got, before.ScaleExponent()+1)
	}
}

func TestResize(t *testing.T) {
	b := newTestBuffer(t, pixel.Size{W: 4, H: 4}, 10)
	view := b.Viewport()

	if err := b.Resize(pixel.Size{W: 6, H: 3}); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if b.Stats().Size != (pixel.Size{W: 6, H: 3}) {
		t.Errorf("Size = %v, want 6x3", b.Stats().Size)
	}
	if len(b.pixels) != 6*3*4 {
		t.Errorf("len(pixels) = %d, want %d", len(b.pixels), 6*3*4)
	}
	if !b.Viewport().Equal(view) {
		t.Error("Resize must not change the viewport")
	}

	if err := b.Resize(pixel.Size{W: 0, H: 3}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(0x3) error = %v, want ErrInvalidSize", err)
	}

	gen := b.Stats().Generation
	if err := b.Resize(pixel.Size{W: 6, H: 3}); err != nil || b.Stats().Generation != gen {
		t.Error("Resize to the same size should be a no-op")
	}
}

func TestAdjustIterations_Saturates(t *testing.T) {
	b := newTestBuffer(t, pixel.Size{W: 2, H: 2}, 500)

	if got := b.AdjustIterations(-1000); got != 0 {
		t.Errorf("AdjustIterations(-1000) = %d, want 0", got)
	}
	if got := b.AdjustIterations(1000); got != 1000 {
		t.Errorf("AdjustIterations(+1000) = %d, want 1000", got)
	}
	if got := b.AdjustIterations(1 << 40); got != ^uint32(0) {
		t.Errorf("AdjustIterations(huge) = %d, want MaxUint32", got)
	}
}

// =============================================================================
// Flush Tests
// =============================================================================

func TestFlush(t *testing.T) {
	size := pixel.Size{W: 3, H: 70}
	b := newTestBuffer(t, size, 10)

	if b.Flush(func(Frame) { t.Error("Flush called fn on a clean buffer") }) {
		t.Error("Flush() = true on a clean buffer")
	}

	for range 3 {
		y, snap, _ := b.claim()
		b.commit(y, &snap, filledRow(size, 1))
	}

	var got Frame
	if !b.Flush(func(f Frame) { got = f }) {
		t.Fatal("Flush() = false after commits")
	}
	if got.Pitch != size.Pitch() || got.Size != size || len(got.Pixels) != size.Len() {
		t.Errorf("Frame = {pitch %d size %v len %d}", got.Pitch, got.Size, len(got.Pixels))
	}
	// Tickets 0, 1, 2 of 70 rows map to rows 0, 31 and 62.
	want := []Span{{0, 1}, {31, 32}, {62, 63}}
	if len(got.Rows) != len(want) {
		t.Fatalf("Rows = %v, want %v", got.Rows, want)
	}
	for i := range want {
		if got.Rows[i] != want[i] {
			t.Errorf("Rows[%d] = %v, want %v", i, got.Rows[i], want[i])
		}
	}

	if b.Dirty() {
		t.Error("Flush should clear the dirty flag")
	}

	b.Translate(pixel.Point{Y: 1})
	b.Flush(func(f Frame) { got = f })
	if len(got.Rows) != 1 || got.Rows[0] != (Span{0, size.H}) {
		t.Errorf("Rows after transform = %v, want one full span", got.Rows)
	}
}

func TestShutdown_ReleasesClaim(t *testing.T) {
	b := newTestBuffer(t, pixel.Size{W: 2, H: 1}, 10)
	b.claim()

	done := make(chan bool)
	go func() {
		_, _, ok := b.claim()
		done <- ok
	}()

	b.Shutdown()
	b.Shutdown()
	if ok := <-done; ok {
		t.Error("claim() after Shutdown returned ok")
	}
	if !b.Closed() {
		t.Error("Closed() = false after Shutdown")
	}
}
