package pixel

import (
	"bytes"
	"testing"
)

// =============================================================================
// Helpers
// =============================================================================

// pattern returns a raster where every pixel encodes its own coordinates,
// with alpha forced opaque so zero-filled pixels are distinguishable.
func pattern(size Size) []byte {
	buf := make([]byte, size.Len())
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			i := (y*size.W + x) * BytesPerPixel
			buf[i] = byte(x)
			buf[i+1] = byte(y)
			buf[i+2] = byte(x ^ y)
			buf[i+3] = 0xFF
		}
	}
	return buf
}

func at(buf []byte, size Size, x, y int) []byte {
	i := (y*size.W + x) * BytesPerPixel
	return buf[i : i+BytesPerPixel]
}

var zeroPixel = []byte{0, 0, 0, 0}

// =============================================================================
// Translate Tests
// =============================================================================

func TestTranslate_Shift(t *testing.T) {
	size := Size{W: 16, H: 12}
	src := pattern(size)
	delta := Point{X: 3, Y: -2}

	dst := Translate(src, size, size.Pitch(), delta)

	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			sx, sy := x+delta.X, y+delta.Y
			got := at(dst, size, x, y)
			if sx < 0 || sx >= size.W || sy < 0 || sy >= size.H {
				if !bytes.Equal(got, zeroPixel) {
					t.Fatalf("pixel (%d,%d) = %v, want zero", x, y, got)
				}
				continue
			}
			if want := at(src, size, sx, sy); !bytes.Equal(got, want) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestTranslate_DoesNotAliasInput(t *testing.T) {
	size := Size{W: 4, H: 4}
	src := pattern(size)
	orig := append([]byte(nil), src...)

	dst := Translate(src, size, size.Pitch(), Point{})
	dst[0] = 42

	if !bytes.Equal(src, orig) {
		t.Error("Translate modified its input")
	}
}

func TestTranslate_Inverse(t *testing.T) {
	size := Size{W: 20, H: 15}
	src := pattern(size)

	tests := []Point{
		{X: 0, Y: 0},
		{X: 4, Y: 0},
		{X: 0, Y: -3},
		{X: -5, Y: 6},
		{X: 7, Y: 7},
	}

	for _, d := range tests {
		t.Run(d.String(), func(t *testing.T) {
			back := Translate(Translate(src, size, size.Pitch(), d), size, size.Pitch(), d.Neg())

			for y := 0; y < size.H; y++ {
				for x := 0; x < size.W; x++ {
					// The strip the shift passed through is not recoverable.
					if x < max(d.X, 0) || x >= size.W-max(-d.X, 0) ||
						y < max(d.Y, 0) || y >= size.H-max(-d.Y, 0) {
						continue
					}
					if got, want := at(back, size, x, y), at(src, size, x, y); !bytes.Equal(got, want) {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestTranslate_BeyondBounds(t *testing.T) {
	size := Size{W: 8, H: 8}
	dst := Translate(pattern(size), size, size.Pitch(), Point{X: 8, Y: 0})

	if !bytes.Equal(dst, make([]byte, size.Len())) {
		t.Error("shift by the full width should leave an empty raster")
	}
}

// =============================================================================
// Extend Tests
// =============================================================================

func TestExtend_GrowAndShrink(t *testing.T) {
	small := Size{W: 10, H: 6}
	large := Size{W: 14, H: 9}
	src := pattern(small)

	grown := Extend(src, small, small.Pitch(), large, large.Pitch())
	if len(grown) != large.Len() {
		t.Fatalf("len = %d, want %d", len(grown), large.Len())
	}
	for y := 0; y < large.H; y++ {
		for x := 0; x < large.W; x++ {
			got := at(grown, large, x, y)
			if x >= small.W || y >= small.H {
				if !bytes.Equal(got, zeroPixel) {
					t.Fatalf("grown pixel (%d,%d) = %v, want zero", x, y, got)
				}
				continue
			}
			if want := at(src, small, x, y); !bytes.Equal(got, want) {
				t.Fatalf("grown pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	back := Extend(grown, large, large.Pitch(), small, small.Pitch())
	if !bytes.Equal(back, src) {
		t.Error("Extend(Extend(buf, S1), S0) should reproduce the input")
	}
}

func TestExtend_Idempotent_Shrink(t *testing.T) {
	orig := Size{W: 12, H: 12}
	other := Size{W: 7, H: 15}
	src := pattern(orig)

	back := Extend(Extend(src, orig, orig.Pitch(), other, other.Pitch()), other, other.Pitch(), orig, orig.Pitch())

	overlap := orig.Min(other)
	for y := 0; y < overlap.H; y++ {
		for x := 0; x < overlap.W; x++ {
			if got, want := at(back, orig, x, y), at(src, orig, x, y); !bytes.Equal(got, want) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestExtend_CustomPitch(t *testing.T) {
	size := Size{W: 3, H: 2}
	srcPitch := 5 * BytesPerPixel
	src := make([]byte, srcPitch*size.H)
	for i := range src {
		src[i] = byte(i)
	}

	dst := Extend(src, size, srcPitch, size, size.Pitch())
	for y := 0; y < size.H; y++ {
		want := src[y*srcPitch : y*srcPitch+size.Pitch()]
		got := dst[y*size.Pitch() : (y+1)*size.Pitch()]
		if !bytes.Equal(got, want) {
			t.Errorf("row %d = %v, want %v", y, got, want)
		}
	}
}

// =============================================================================
// Scale Tests
// =============================================================================

func TestScale_UpDuplicates(t *testing.T) {
	size := Size{W: 16, H: 16}
	src := pattern(size)
	delta := Point{X: 4, Y: 2}

	dst := Scale(src, size, size.Pitch(), delta, Up)

	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			want := at(src, size, delta.X+x/2, delta.Y+y/2)
			if got := at(dst, size, x, y); !bytes.Equal(got, want) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestScale_DownDecimates(t *testing.T) {
	size := Size{W: 16, H: 12}
	src := pattern(size)
	delta := Point{X: -8, Y: -6}

	dst := Scale(src, size, size.Pitch(), delta, Down)

	origin := Point{X: 4, Y: 3}
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			got := at(dst, size, x, y)
			px, py := x-origin.X, y-origin.Y
			if px < 0 || px >= size.W/2 || py < 0 || py >= size.H/2 {
				if !bytes.Equal(got, zeroPixel) {
					t.Fatalf("pixel (%d,%d) = %v, want zero", x, y, got)
				}
				continue
			}
			if want := at(src, size, 2*px, 2*py); !bytes.Equal(got, want) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestScale_RoundTrip(t *testing.T) {
	size := Size{W: 24, H: 18}
	src := pattern(size)

	tests := []Point{
		{X: 0, Y: 0},
		{X: 6, Y: 4},
		{X: 12, Y: 9},
	}

	for _, anchor := range tests {
		t.Run(anchor.String(), func(t *testing.T) {
			up := Scale(src, size, size.Pitch(), anchor, Up)
			back := Scale(up, size, size.Pitch(), anchor.Mul(-2), Down)

			// Interior: the half-size window that Up magnified.
			for y := anchor.Y; y < min(anchor.Y+size.H/2, size.H); y++ {
				for x := anchor.X; x < min(anchor.X+size.W/2, size.W); x++ {
					if got, want := at(back, size, x, y), at(src, size, x, y); !bytes.Equal(got, want) {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestScale_OutOfRangeAnchor(t *testing.T) {
	size := Size{W: 8, H: 8}
	src := pattern(size)

	tests := []struct {
		name  string
		delta Point
		dir   Direction
	}{
		{"up negative", Point{X: -3, Y: -1}, Up},
		{"up past edge", Point{X: 20, Y: 20}, Up},
		{"down positive", Point{X: 6, Y: 2}, Down},
		{"down far", Point{X: -40, Y: 0}, Down},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Must not panic.
			dst := Scale(src, size, size.Pitch(), tt.delta, tt.dir)
			if len(dst) != size.Len() {
				t.Errorf("len = %d, want %d", len(dst), size.Len())
			}
		})
	}
}

func TestScale_UpNegativeAnchorZeroFills(t *testing.T) {
	size := Size{W: 8, H: 8}
	src := pattern(size)

	dst := Scale(src, size, size.Pitch(), Point{X: -1, Y: 0}, Up)

	// Columns 0 and 1 map to source column -1.
	for y := 0; y < size.H; y++ {
		for x := 0; x < 2; x++ {
			if got := at(dst, size, x, y); !bytes.Equal(got, zeroPixel) {
				t.Fatalf("pixel (%d,%d) = %v, want zero", x, y, got)
			}
		}
		if got, want := at(dst, size, 2, y), at(src, size, 0, y/2); !bytes.Equal(got, want) {
			t.Fatalf("pixel (2,%d) = %v, want %v", y, got, want)
		}
	}
}

func TestDirection_Factor(t *testing.T) {
	if Up.Factor() != 0.5 {
		t.Errorf("Up.Factor() = %v, want 0.5", Up.Factor())
	}
	if Down.Factor() != 2 {
		t.Errorf("Down.Factor() = %v, want 2", Down.Factor())
	}
}
