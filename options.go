package deepzoom

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/gogpu/deepzoom/internal/parallel"
	"github.com/gogpu/deepzoom/internal/pixel"
)

// Config holds the engine and navigation settings.
//
// The zero value is not usable; start from DefaultConfig or pass Options
// to New.
type Config struct {
	// Window is the presentation size in window pixels.
	Window Size

	// Aliasing is the supersampling factor: the raster has
	// Window*Aliasing pixels.
	Aliasing int

	// ZoomFactor converts one unit of wheel motion into a relative change of
	// the canvas scale.
	ZoomFactor float64

	// Workers is the number of row workers.
	Workers int

	// MotionDecay is the per-frame multiplier applied to residual pan and
	// zoom motion. Must be in [0, 1).
	MotionDecay float64

	// MaxIterations is the initial iteration budget.
	MaxIterations uint32

	// ColorCycle divides the smoothed iteration count before it becomes a hue.
	ColorCycle uint32

	// Saturation of the palette, in [0, 1].
	Saturation float32

	// TargetTPS is the host update rate. The engine itself does not use it.
	TargetTPS int

	// Logger receives engine logs. Nil means the package Logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		Window:        Size{W: 800, H: 600},
		Aliasing:      2,
		ZoomFactor:    0.01,
		Workers:       runtime.NumCPU(),
		MotionDecay:   0.9,
		MaxIterations: 10000,
		ColorCycle:    10,
		Saturation:    0.8,
		TargetTPS:     60,
	}
}

// Raster returns the raster size, Window*Aliasing.
func (c Config) Raster() Size {
	return c.Window.Scale(c.Aliasing)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Window.Empty():
		return fmt.Errorf("%w: window %s", ErrInvalidSize, c.Window)
	case c.Aliasing < 1:
		return fmt.Errorf("%w: aliasing %d", ErrInvalidOption, c.Aliasing)
	case !(c.ZoomFactor > 0 && c.ZoomFactor < 1):
		return fmt.Errorf("%w: zoom factor %v", ErrInvalidOption, c.ZoomFactor)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidOption, c.Workers)
	case !(c.MotionDecay >= 0 && c.MotionDecay < 1):
		return fmt.Errorf("%w: motion decay %v", ErrInvalidOption, c.MotionDecay)
	case c.ColorCycle == 0:
		return fmt.Errorf("%w: color cycle 0", ErrInvalidOption)
	case !(c.Saturation >= 0 && c.Saturation <= 1):
		return fmt.Errorf("%w: saturation %v", ErrInvalidOption, c.Saturation)
	case c.TargetTPS < 1:
		return fmt.Errorf("%w: target tps %d", ErrInvalidOption, c.TargetTPS)
	}
	return parallel.CheckSize(c.Raster())
}

// Option configures an Engine during creation.
//
// Example:
//
//	eng, err := deepzoom.New(
//	    deepzoom.WithWindowSize(1024, 768),
//	    deepzoom.WithAliasing(1),
//	)
type Option func(*Config)

// WithConfig replaces every setting with c.
func WithConfig(c Config) Option {
	return func(o *Config) {
		*o = c
	}
}

// WithWindowSize sets the initial window size in window pixels.
func WithWindowSize(w, h int) Option {
	return func(o *Config) {
		o.Window = pixel.Size{W: w, H: h}
	}
}

// WithAliasing sets the supersampling factor.
func WithAliasing(factor int) Option {
	return func(o *Config) {
		o.Aliasing = factor
	}
}

// WithZoomFactor sets the canvas scale change per unit of wheel motion.
func WithZoomFactor(f float64) Option {
	return func(o *Config) {
		o.ZoomFactor = f
	}
}

// WithWorkers sets the number of row workers. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *Config) {
		o.Workers = n
	}
}

// WithMotionDecay sets the per-frame decay of pan and zoom momentum.
func WithMotionDecay(d float64) Option {
	return func(o *Config) {
		o.MotionDecay = d
	}
}

// WithMaxIterations sets the initial iteration budget.
func WithMaxIterations(n uint32) Option {
	return func(o *Config) {
		o.MaxIterations = n
	}
}

// WithColorCycle sets the palette cycle length.
func WithColorCycle(n uint32) Option {
	return func(o *Config) {
		o.ColorCycle = n
	}
}

// WithSaturation sets the palette saturation.
func WithSaturation(s float32) Option {
	return func(o *Config) {
		o.Saturation = s
	}
}

// WithTargetTPS sets the host update rate.
func WithTargetTPS(tps int) Option {
	return func(o *Config) {
		o.TargetTPS = tps
	}
}

// WithLogger sets the engine logger, overriding the package Logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Config) {
		o.Logger = l
	}
}
