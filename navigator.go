package deepzoom

import (
	"math"
)

// Canvas scale bounds. Past ScaleUpThreshold the raster is resampled one zoom
// step in, below ScaleDownThreshold one step out, so the presented texture
// always stays between one and a bit over two window pixels per raster
// pixel group.
const (
	ScaleUpThreshold   = 2.2
	ScaleDownThreshold = 1.1
)

// ZoomImpulse is the wheel-equivalent amount of one keyboard or
// double-click zoom.
const ZoomImpulse = 10

// restThreshold is the residual motion below which momentum stops.
const restThreshold = 0.5

// Transformer is the part of an Engine a Navigator drives.
type Transformer interface {
	Translate(delta Point)
	ScaleStep(delta Point, dir Direction)
	Resize(w, h int) error
}

// Navigator maps pointer input onto the presented texture and the raster.
//
// The texture is drawn at Canvas() offset and scale. Drags and wheel motion
// move and scale the canvas immediately; once the canvas scale leaves
// [ScaleDownThreshold, ScaleUpThreshold] or the texture no longer covers the
// window, Step snaps the change into whole raster pixels and hands it to the
// Transformer.
//
// A Navigator is not safe for concurrent use. It belongs to the controller
// goroutine.
type Navigator struct {
	t Transformer

	window     Size
	aliasing   float64
	zoomFactor float64
	decay      float64

	offX, offY float64
	scale      float64

	mouseX, mouseY int
	moveX, moveY   float64
	moving         bool
	scroll         float64
	scrolling      bool
}

// NewNavigator creates a navigator over t using the window, aliasing, zoom
// and decay settings of cfg. The canvas starts unscaled, so the first Step
// zooms the raster out once to leave margin around the window.
func NewNavigator(t Transformer, cfg Config) *Navigator {
	return &Navigator{
		t:          t,
		window:     cfg.Window,
		aliasing:   float64(cfg.Aliasing),
		zoomFactor: cfg.ZoomFactor,
		decay:      cfg.MotionDecay,
		scale:      1,
	}
}

// Point records the cursor position in window pixels.
func (n *Navigator) Point(x, y int) {
	n.mouseX, n.mouseY = x, y
}

// Drag records pointer motion in window pixels for this frame.
func (n *Navigator) Drag(dx, dy float64) {
	n.moveX, n.moveY = dx, dy
	n.moving = true
}

// Scroll records wheel motion for this frame. Positive zooms in.
func (n *Navigator) Scroll(amount float64) {
	n.scroll = amount
	n.scrolling = true
}

// Zoom starts a zoom that decays over the following frames. Use
// ZoomImpulse or -ZoomImpulse for a key press.
func (n *Navigator) Zoom(amount float64) {
	n.scroll = amount
}

// Resize records a new window size and resizes the raster.
func (n *Navigator) Resize(w, h int) error {
	if err := n.t.Resize(w, h); err != nil {
		return err
	}
	n.window = Size{W: w, H: h}
	return nil
}

// Canvas returns the texture offset in window pixels and its scale relative
// to the window.
func (n *Navigator) Canvas() (x, y, scale float64) {
	return n.offX, n.offY, n.scale
}

// Step advances one frame. It reports whether the canvas moved.
func (n *Navigator) Step() bool {
	changed := false

	if n.moving || math.Abs(n.moveX) > restThreshold || math.Abs(n.moveY) > restThreshold {
		n.offX += n.moveX
		n.offY += n.moveY
		n.moveX *= n.decay
		n.moveY *= n.decay
		n.moving = false
		changed = true
	}

	if n.scrolling || math.Abs(n.scroll) > restThreshold {
		n.zoom(n.scroll)
		n.scroll *= n.decay
		n.scrolling = false
		changed = true
	}

	if n.scale > ScaleUpThreshold {
		n.scaleStep(Up)
		changed = true
	} else if n.scale < ScaleDownThreshold {
		n.scaleStep(Down)
		changed = true
	}

	if !n.covered() {
		n.recenter()
		changed = true
	}

	return changed
}

// zoom scales the canvas around the cursor.
func (n *Navigator) zoom(amount float64) {
	z := amount * n.zoomFactor
	mx := float64(clamp(n.mouseX, 0, n.window.W))
	my := float64(clamp(n.mouseY, 0, n.window.H))

	n.offX += (n.offX - mx) * z
	n.offY += (n.offY - my) * z
	n.scale *= 1 + z
}

// scaleStep resamples the raster one step so the centered window keeps
// showing the same region, and rescales the canvas to match.
func (n *Navigator) scaleStep(dir Direction) {
	factor := dir.Factor()
	w, h := float64(n.window.W), float64(n.window.H)

	off := Point{
		X: int((w-n.offX*2)/n.scale-w*factor) / 2,
		Y: int((h-n.offY*2)/n.scale-h*factor) / 2,
	}
	delta := off.Mul(int(n.aliasing))
	if dir == Down {
		// Decimation moves the origin by delta/2 pixels.
		delta.X &^= 1
		delta.Y &^= 1
	}

	n.offX += float64(delta.X) / n.aliasing * n.scale
	n.offY += float64(delta.Y) / n.aliasing * n.scale
	n.scale *= factor

	n.t.ScaleStep(delta, dir)
}

// covered reports whether the texture still fills the window.
func (n *Navigator) covered() bool {
	w, h := float64(n.window.W), float64(n.window.H)
	return n.offX <= 0 && n.offX >= w*(1-n.scale) &&
		n.offY <= 0 && n.offY >= h*(1-n.scale)
}

// recenter translates the raster so the texture is centered on the window
// again.
func (n *Navigator) recenter() {
	w, h := float64(n.window.W), float64(n.window.H)
	k := n.aliasing / n.scale

	delta := Point{
		X: int(math.Round((w*(1-n.scale)/2 - n.offX) * k)),
		Y: int(math.Round((h*(1-n.scale)/2 - n.offY) * k)),
	}

	n.offX += float64(delta.X) / k
	n.offY += float64(delta.Y) / k

	n.t.Translate(delta)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
