package color

import "math"

// HSVToRGB converts a hue in degrees and saturation/value in [0,1] to RGB
// using the six-sector piecewise-linear model.
//
// The hue is reduced modulo 360 before the sector is chosen, so callers may
// pass unbounded hues. Components are truncated, not rounded, to uint8.
func HSVToRGB(hue, saturation, value float32) RGB {
	h := float32(math.Mod(float64(hue), 360))
	if h < 0 {
		h += 360
	}

	c := value * saturation
	x := c * (1 - abs32(mod32(h/60, 2)-1))
	m := value - c

	var r, g, b float32
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB{
		R: toU8((r + m) * 255),
		G: toU8((g + m) * 255),
		B: toU8((b + m) * 255),
	}
}

func mod32(a, b float32) float32 {
	return float32(math.Mod(float64(a), float64(b)))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// toU8 truncates v to [0,255].
func toU8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
