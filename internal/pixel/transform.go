package pixel

// Translate shifts the raster so that destination pixel p holds source pixel
// p+delta. The overlapping rectangle is copied row by row; pixels exposed at
// the edges are zero.
func Translate(src []byte, size Size, pitch int, delta Point) []byte {
	dst := make([]byte, pitch*size.H)

	width := size.W - abs(delta.X)
	height := size.H - abs(delta.Y)
	if width <= 0 || height <= 0 {
		return dst
	}

	srcOff := max(delta.Y, 0)*pitch + max(delta.X, 0)*BytesPerPixel
	dstOff := max(-delta.Y, 0)*pitch + max(-delta.X, 0)*BytesPerPixel
	n := width * BytesPerPixel

	for y := 0; y < height; y++ {
		s := srcOff + y*pitch
		d := dstOff + y*pitch
		copy(dst[d:d+n], src[s:s+n])
	}

	return dst
}

// Extend copies src into a raster of a different size. The top-left
// min-overlap rectangle is kept, grown regions are zero and shrunk regions
// are dropped.
func Extend(src []byte, srcSize Size, srcPitch int, dstSize Size, dstPitch int) []byte {
	dst := make([]byte, dstPitch*dstSize.H)

	overlap := srcSize.Min(dstSize)
	if overlap.Empty() {
		return dst
	}

	n := overlap.W * BytesPerPixel
	for y := 0; y < overlap.H; y++ {
		s := y * srcPitch
		d := y * dstPitch
		copy(dst[d:d+n], src[s:s+n])
	}

	return dst
}

// Scale resamples the raster by a factor of two around an integer anchor.
//
// For Up, delta is the source pixel that lands on destination (0,0) and every
// source pixel is duplicated into a 2x2 block: dst(p) = src(delta + p/2).
//
// For Down, the whole source is decimated into a half-size image placed at
// destination -delta/2: dst(p - delta/2) = src(2p). Callers keep delta even
// so the plane mapping stays exact.
//
// Samples falling outside the source are zero, so any delta is accepted.
func Scale(src []byte, size Size, pitch int, delta Point, dir Direction) []byte {
	dst := make([]byte, pitch*size.H)
	if size.Empty() {
		return dst
	}

	switch dir {
	case Up:
		scaleUp(dst, src, size, pitch, delta)
	case Down:
		scaleDown(dst, src, size, pitch, Point{X: -delta.X / 2, Y: -delta.Y / 2})
	}

	return dst
}

// scaleUp writes dst(x, y) = src(origin.x + x/2, origin.y + y/2).
func scaleUp(dst, src []byte, size Size, pitch int, origin Point) {
	// Destination columns whose source column is in range.
	x0, x1 := upRange(origin.X, size.W)
	if x0 >= x1 {
		return
	}

	for y := 0; y < size.H; y++ {
		sy := origin.Y + y/2
		if sy < 0 || sy >= size.H {
			continue
		}
		// Odd rows repeat the row above them.
		if y&1 == 1 {
			prev := (y - 1) * pitch
			cur := y * pitch
			copy(dst[cur+x0*BytesPerPixel:cur+x1*BytesPerPixel], dst[prev+x0*BytesPerPixel:prev+x1*BytesPerPixel])
			continue
		}

		srow := src[sy*pitch:]
		drow := dst[y*pitch:]
		for x := x0; x < x1; x++ {
			s := (origin.X + x/2) * BytesPerPixel
			d := x * BytesPerPixel
			copy(drow[d:d+BytesPerPixel], srow[s:s+BytesPerPixel])
		}
	}
}

// upRange returns the destination column range [lo, hi) whose source column
// origin + x/2 lies in [0, width).
func upRange(origin, width int) (lo, hi int) {
	lo = 0
	if origin < 0 {
		lo = -2 * origin
	}
	hi = 2 * (width - origin)
	if hi > width {
		hi = width
	}
	return lo, hi
}

// scaleDown writes dst(origin.x + x, origin.y + y) = src(2x, 2y).
func scaleDown(dst, src []byte, size Size, pitch int, origin Point) {
	half := Size{W: (size.W + 1) / 2, H: (size.H + 1) / 2}

	for y := 0; y < half.H; y++ {
		dy := origin.Y + y
		if dy < 0 || dy >= size.H {
			continue
		}
		srow := src[2*y*pitch:]
		drow := dst[dy*pitch:]
		for x := 0; x < half.W; x++ {
			dx := origin.X + x
			if dx < 0 || dx >= size.W {
				continue
			}
			s := 2 * x * BytesPerPixel
			d := dx * BytesPerPixel
			copy(drow[d:d+BytesPerPixel], srow[s:s+BytesPerPixel])
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
