package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/gogpu/deepzoom"
	"github.com/gogpu/deepzoom/internal/settings"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	doubleClickInterval = 300 * time.Millisecond
	iterationStep       = 1000
	hudFontSize         = 14
)

// game hosts the engine in an ebiten window. Update feeds input into the
// navigator; Draw uploads the rows the workers finished and presents the
// texture at the canvas offset and scale.
type game struct {
	ctx context.Context
	eng *deepzoom.Engine
	nav *deepzoom.Navigator
	log *slog.Logger

	aliasing float64
	layout   deepzoom.Size
	window   deepzoom.Size
	tex      *ebiten.Image
	title    string

	hud  bool
	face *text.GoTextFace

	lastX, lastY int
	dragging     bool
	lastClick    time.Time
}

func newGame(ctx context.Context, eng *deepzoom.Engine, hud bool) (*game, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("loading overlay font: %w", err)
	}

	cfg := eng.Config()
	return &game{
		ctx:      ctx,
		eng:      eng,
		nav:      deepzoom.NewNavigator(eng, cfg),
		log:      deepzoom.Logger(),
		aliasing: float64(cfg.Aliasing),
		window:   eng.Window(),
		hud:      hud,
		face:     &text.GoTextFace{Source: src, Size: hudFontSize},
	}, nil
}

// run opens the window and blocks until it closes.
func (g *game) run(s settings.Settings) error {
	ebiten.SetWindowSize(s.Width, s.Height)
	ebiten.SetWindowTitle(g.eng.Status().String())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(s.TargetTPS)
	return ebiten.RunGame(g)
}

func (g *game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}
	if err := g.eng.Err(); err != nil {
		return err
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if err := g.resize(); err != nil {
		return err
	}
	g.handleKeys()
	g.handleMouse()
	g.nav.Step()

	if title := g.eng.Status().String(); title != g.title {
		ebiten.SetWindowTitle(title)
		g.title = title
	}
	return nil
}

// resize follows the window size reported by Layout.
func (g *game) resize() error {
	if g.layout.Empty() || g.layout == g.window {
		return nil
	}
	err := g.nav.Resize(g.layout.W, g.layout.H)
	switch {
	case errors.Is(err, deepzoom.ErrClosed):
		return err
	case err != nil:
		g.log.Warn("deepzoom: resize ignored", "size", g.layout, "err", err)
	default:
		g.log.Debug("deepzoom: resized", "size", g.layout)
	}
	g.window = g.layout
	return nil
}

func (g *game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.nav.Zoom(deepzoom.ZoomImpulse)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.nav.Zoom(-deepzoom.ZoomImpulse)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		n := g.eng.AdjustIterations(-iterationStep)
		g.log.Debug("deepzoom: iteration budget", "max", n)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		n := g.eng.AdjustIterations(iterationStep)
		g.log.Debug("deepzoom: iteration budget", "max", n)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.hud = !g.hud
	}
}

func (g *game) handleMouse() {
	x, y := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragging = true
		now := time.Now()
		if now.Sub(g.lastClick) < doubleClickInterval {
			amount := float64(deepzoom.ZoomImpulse)
			if ebiten.IsKeyPressed(ebiten.KeyShift) {
				amount = -amount
			}
			g.nav.Zoom(amount)
			g.lastClick = time.Time{}
		} else {
			g.lastClick = now
		}
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
	}

	if g.dragging && (x != g.lastX || y != g.lastY) {
		g.nav.Drag(float64(x-g.lastX), float64(y-g.lastY))
	}
	g.lastX, g.lastY = x, y
	g.nav.Point(x, y)

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.nav.Scroll(wy)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	g.eng.Flush(g.upload)

	if g.tex != nil {
		x, y, scale := g.nav.Canvas()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(scale/g.aliasing, scale/g.aliasing)
		op.GeoM.Translate(x, y)
		op.Filter = ebiten.FilterLinear
		screen.DrawImage(g.tex, op)
	}

	if g.hud {
		g.drawHUD(screen)
	}
}

// upload copies the finished rows of f into the texture, recreating it when
// the raster size changed.
func (g *game) upload(f deepzoom.Frame) {
	if g.tex == nil || g.tex.Bounds().Dx() != f.Size.W || g.tex.Bounds().Dy() != f.Size.H {
		if g.tex != nil {
			g.tex.Deallocate()
		}
		g.tex = ebiten.NewImage(f.Size.W, f.Size.H)
		g.tex.WritePixels(f.Pixels)
		return
	}

	for _, span := range f.Rows {
		sub := g.tex.SubImage(image.Rect(0, span.Y0, f.Size.W, span.Y1)).(*ebiten.Image)
		sub.WritePixels(f.Pixels[span.Y0*f.Pitch : span.Y1*f.Pitch])
	}
}

func (g *game) drawHUD(screen *ebiten.Image) {
	st := g.eng.Status()
	stats := g.eng.Stats()

	msg := fmt.Sprintf("10^%d  %s\n%s\nrows %d/%d",
		st.Magnitude(), st.Mode, st.Iterations(),
		min(stats.Claims, stats.Size.H), stats.Size.H)

	for _, layer := range []struct {
		off float64
		clr color.Color
	}{
		{1, color.Black},
		{0, color.White},
	} {
		op := &text.DrawOptions{}
		op.GeoM.Translate(8+layer.off, 8+layer.off)
		op.ColorScale.ScaleWithColor(layer.clr)
		op.LineSpacing = hudFontSize * 1.4
		text.Draw(screen, msg, g.face, op)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.layout = deepzoom.Size{W: outsideWidth, H: outsideHeight}
	return outsideWidth, outsideHeight
}
