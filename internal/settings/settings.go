// Package settings loads the explorer's settings from defaults, an optional
// TOML file and command-line flags, in that order of precedence.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/deepzoom"
	"github.com/spf13/pflag"
)

// ErrUnknownKey is returned when a settings file contains keys that map to
// no setting.
var ErrUnknownKey = errors.New("settings: unknown key")

// Settings is the flat, file- and flag-facing form of deepzoom.Config plus
// the host-only switches.
type Settings struct {
	Width         int     `toml:"width"`
	Height        int     `toml:"height"`
	Aliasing      int     `toml:"aliasing"`
	ZoomFactor    float64 `toml:"zoom_factor"`
	Workers       int     `toml:"workers"`
	MotionDecay   float64 `toml:"motion_decay"`
	MaxIterations uint32  `toml:"max_iterations"`
	ColorCycle    uint32  `toml:"color_cycle"`
	Saturation    float32 `toml:"saturation"`
	TargetTPS     int     `toml:"target_tps"`

	// HUD shows the status overlay.
	HUD bool `toml:"hud"`

	// Debug selects debug-level logging.
	Debug bool `toml:"debug"`
}

// Default returns the settings matching deepzoom.DefaultConfig.
func Default() Settings {
	c := deepzoom.DefaultConfig()
	return Settings{
		Width:         c.Window.W,
		Height:        c.Window.H,
		Aliasing:      c.Aliasing,
		ZoomFactor:    c.ZoomFactor,
		Workers:       c.Workers,
		MotionDecay:   c.MotionDecay,
		MaxIterations: c.MaxIterations,
		ColorCycle:    c.ColorCycle,
		Saturation:    c.Saturation,
		TargetTPS:     c.TargetTPS,
		HUD:           true,
	}
}

// BindFlags registers one flag per setting on fs, writing into s.
func (s *Settings) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&s.Width, "width", s.Width, "Initial window width in pixels")
	fs.IntVar(&s.Height, "height", s.Height, "Initial window height in pixels")
	fs.IntVarP(&s.Aliasing, "aliasing", "a", s.Aliasing, "Supersampling factor per axis")
	fs.Float64Var(&s.ZoomFactor, "zoom-factor", s.ZoomFactor, "Canvas scale change per wheel step")
	fs.IntVarP(&s.Workers, "workers", "w", s.Workers, "Number of row workers (0 = GOMAXPROCS)")
	fs.Float64Var(&s.MotionDecay, "motion-decay", s.MotionDecay, "Per-frame decay of pan and zoom momentum")
	fs.Uint32VarP(&s.MaxIterations, "max-iterations", "i", s.MaxIterations, "Initial iteration budget")
	fs.Uint32Var(&s.ColorCycle, "color-cycle", s.ColorCycle, "Palette cycle length")
	fs.Float32Var(&s.Saturation, "saturation", s.Saturation, "Palette saturation in [0,1]")
	fs.IntVar(&s.TargetTPS, "tps", s.TargetTPS, "Target updates per second")
	fs.BoolVar(&s.HUD, "hud", s.HUD, "Show the status overlay")
	fs.BoolVarP(&s.Debug, "debug", "d", s.Debug, "Enable debug logging")
}

// LoadFile overlays the TOML file at path onto s. Flags already set on fs
// keep their command-line values. fs may be nil.
func (s *Settings) LoadFile(path string, fs *pflag.FlagSet) error {
	changed := map[string]string{}
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			changed[f.Name] = f.Value.String()
		})
	}

	md, err := toml.DecodeFile(path, s)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w in %s: %s", ErrUnknownKey, path, strings.Join(keys, ", "))
	}

	for name, value := range changed {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("restoring flag --%s: %w", name, err)
		}
	}
	return nil
}

// Config converts s to an engine configuration using log as the logger.
func (s Settings) Config(log *slog.Logger) deepzoom.Config {
	return deepzoom.Config{
		Window:        deepzoom.Size{W: s.Width, H: s.Height},
		Aliasing:      s.Aliasing,
		ZoomFactor:    s.ZoomFactor,
		Workers:       s.Workers,
		MotionDecay:   s.MotionDecay,
		MaxIterations: s.MaxIterations,
		ColorCycle:    s.ColorCycle,
		Saturation:    s.Saturation,
		TargetTPS:     s.TargetTPS,
		Logger:        log,
	}
}

// Level returns the slog level selected by Debug.
func (s Settings) Level() slog.Level {
	if s.Debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
