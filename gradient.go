package gpath

import (
	"math"
	"sort"
)

// ExtendMode defines how gradients extend beyond their defined bounds.
type ExtendMode int

const (
	// ExtendPad extends edge colors beyond bounds (default behavior).
	ExtendPad ExtendMode = iota
	// ExtendRepeat repeats the gradient pattern.
	ExtendRepeat
	// ExtendReflect mirrors the gradient pattern.
	ExtendReflect
	// ExtendNone leaves everything outside the gradient transparent.
	ExtendNone
)

// String returns the extend mode name.
func (m ExtendMode) String() string {
	switch m {
	case ExtendPad:
		return "pad"
	case ExtendRepeat:
		return "repeat"
	case ExtendReflect:
		return "reflect"
	case ExtendNone:
		return "none"
	default:
		return "unknown"
	}
}

// ColorStop represents a color at a specific position in a gradient.
type ColorStop struct {
	Offset float64 // Position in gradient, 0.0 to 1.0
	Color  RGBA    // Color at this position
}

// SortStops returns a copy of stops ordered by offset. Stops with equal
// offsets keep their relative order, which produces a hard transition.
func SortStops(stops []ColorStop) []ColorStop {
	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// ApplyExtend maps a gradient parameter into [0, 1] according to mode, the
// way a texture sampler addresses the color ramp. The boolean result is false
// when the parameter falls outside the gradient under ExtendNone.
func ApplyExtend(t float64, mode ExtendMode) (float64, bool) {
	switch mode {
	case ExtendRepeat:
		t -= math.Floor(t)
	case ExtendReflect:
		t = math.Abs(t)
		period := math.Floor(t)
		t -= period
		if int64(period)%2 == 1 {
			t = 1 - t
		}
	case ExtendNone:
		if t < 0 || t > 1 {
			return 0, false
		}
	default:
		t = clamp01(t)
	}
	return t, true
}

// clamp01 clamps a value to [0, 1] range.
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
