// Package color provides the palette used to turn escape values into pixels.
package color

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Black is the color of points inside the set.
var Black = RGB{}

// Put writes c into an RGBA pixel with alpha 0xFF.
// dst must hold at least 4 bytes.
func (c RGB) Put(dst []byte) {
	_ = dst[3]
	dst[0] = c.R
	dst[1] = c.G
	dst[2] = c.B
	dst[3] = 0xFF
}
