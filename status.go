package deepzoom

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Mode is the arithmetic the kernel currently runs on.
type Mode uint8

const (
	// ModeFixed iterates in float64.
	ModeFixed Mode = iota

	// ModeArbitrary iterates in math/big at the viewport precision.
	ModeArbitrary
)

func (m Mode) String() string {
	if m == ModeArbitrary {
		return "arbitrary"
	}
	return "fixed"
}

// Status is a presentation summary of the engine state.
type Status struct {
	// Depth is the zoom depth in decimal orders of magnitude relative to
	// the initial view.
	Depth float64

	Mode          Mode
	MaxIterations uint32
}

var printer = message.NewPrinter(language.English)

func newStatus(st Stats, window Size, aliasing int) Status {
	mode := ModeFixed
	if st.HighPrecision {
		mode = ModeArbitrary
	}
	base := math.Log2(float64(min(window.W, window.H) * aliasing))
	return Status{
		Depth:         (st.ScaleExponent - base) * math.Log10(2),
		Mode:          mode,
		MaxIterations: st.MaxIterations,
	}
}

// String returns the window title form, e.g.
// "deepzoom - 10^12 - arbitrary - 10,000 iterations".
func (s Status) String() string {
	return fmt.Sprintf("deepzoom - 10^%d - %s - %s", s.Magnitude(), s.Mode, s.Iterations())
}

// Magnitude returns Depth rounded to the nearest order of magnitude.
func (s Status) Magnitude() int {
	return int(math.Round(s.Depth))
}

// Iterations returns the budget with thousands separators, e.g.
// "10,000 iterations".
func (s Status) Iterations() string {
	return printer.Sprintf("%d iterations", s.MaxIterations)
}
