// Package source turns paints into the shading parameters a device needs:
// a constant color, a texture matrix into a 1D color ramp, or the constants
// of the radial gradient program.
package source

import (
	"fmt"
	"math"

	"github.com/gogpu/gpath"
)

// Kind selects the shading method of a State.
type Kind int

const (
	// Solid shades with a constant color.
	Solid Kind = iota
	// Linear looks up the color ramp at the first texture coordinate.
	Linear
	// Radial runs the radial gradient program in pattern space.
	Radial
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Solid:
		return "solid"
	case Linear:
		return "linear"
	case Radial:
		return "radial"
	default:
		return "unknown"
	}
}

// State describes how to shade the cover geometry of a draw.
type State struct {
	Kind  Kind
	Color gpath.RGBA

	// Matrix maps device space to the ramp coordinate (row 0, Linear) or
	// to pattern space centered on the first circle (Radial).
	Matrix gpath.Matrix4

	// Radial gradient constants. Circle2 is the second center relative to
	// the first.
	Circle2 gpath.Vec2
	R1, R2  float64

	// Stops are sorted by offset.
	Stops  []gpath.ColorStop
	Extend gpath.ExtendMode
}

// Gradient reports whether the state samples a color ramp.
func (s State) Gradient() bool {
	return s.Kind != Solid
}

// Derive computes the shading state of p. Surface patterns are not
// supported and fail with gpath.ErrUnsupportedPattern.
func Derive(p gpath.Paint) (State, error) {
	switch p := p.(type) {
	case gpath.SolidPaint:
		return State{Kind: Solid, Color: p.Color}, nil

	case gpath.LinearGradient:
		return deriveLinear(p), nil

	case gpath.RadialGradient:
		m := gpath.Translate4(float32(-p.C1.X), float32(-p.C1.Y), 0).
			Mul(gpath.Affine4(gpath.PatternMatrix(p.Matrix)))
		return State{
			Kind:    Radial,
			Matrix:  m,
			Circle2: p.C2.Sub(p.C1),
			R1:      p.R1,
			R2:      p.R2,
			Stops:   gpath.SortStops(p.Stops),
			Extend:  p.Extend,
		}, nil

	case gpath.SurfacePattern:
		return State{}, fmt.Errorf("source: surface pattern: %w", gpath.ErrUnsupportedPattern)

	case nil:
		return State{}, fmt.Errorf("source: nil paint: %w", gpath.ErrUnsupportedPattern)

	default:
		return State{}, fmt.Errorf("source: paint %T: %w", p, gpath.ErrUnsupportedPattern)
	}
}

// deriveLinear projects device points onto the gradient axis. With
// d = (p2-p1)/|p2-p1|², the ramp coordinate of a pattern-space point q is
// d·(q-p1): 0 at p1 and 1 at p2.
func deriveLinear(p gpath.LinearGradient) State {
	stops := gpath.SortStops(p.Stops)
	axis := p.P2.Sub(p.P1)
	lenSq := axis.LengthSq()
	if lenSq == 0 {
		// A zero-length axis has no direction. Pad shows the last stop
		// everywhere; every other extend mode shows nothing.
		s := State{Kind: Solid, Color: gpath.Transparent}
		if p.Extend == gpath.ExtendPad && len(stops) > 0 {
			s.Color = stops[len(stops)-1].Color
		}
		return s
	}
	d := axis.Div(lenSq)

	pm := gpath.PatternMatrix(p.Matrix)
	a := d.X*pm.A + d.Y*pm.D
	b := d.X*pm.B + d.Y*pm.E
	c := d.X*pm.C + d.Y*pm.F - d.Dot(p.P1)

	return State{
		Kind: Linear,
		Matrix: gpath.Matrix4{
			float32(a), float32(b), 0, float32(c),
			0, 0, 0, 0,
			0, 0, 0, 0,
			0, 0, 0, 1,
		},
		Stops:  stops,
		Extend: p.Extend,
	}
}

// Ramp renders stops into width ARGB texels. Texel i holds the color at
// offset i/width. Stops are placed at floor(offset*width) and interpolated
// linearly between neighbors. Outside the first and last stop, ExtendNone
// leaves texels transparent, ExtendPad and ExtendReflect repeat the end
// colors, and ExtendRepeat blends from the last color back to the first
// across the padding so that a wrapping sampler sees a continuous ramp.
func Ramp(stops []gpath.ColorStop, extend gpath.ExtendMode, width int) []uint32 {
	if width <= 0 {
		return nil
	}
	out := make([]uint32, width)
	if len(stops) == 0 {
		return out
	}
	stops = gpath.SortStops(stops)

	pix := func(offset float64) int {
		offset = max(0, min(1, offset))
		return min(int(offset*float64(width)), width-1)
	}
	first := pix(stops[0].Offset)
	last := pix(stops[len(stops)-1].Offset)
	firstCol, lastCol := stops[0].Color, stops[len(stops)-1].Color

	switch extend {
	case gpath.ExtendNone:
	case gpath.ExtendRepeat:
		pad := float64(first + width - last - 1)
		for i := 0; i < first; i++ {
			out[i] = firstCol.Lerp(lastCol, float64(first-i)/pad).ARGB()
		}
		for i := last + 1; i < width; i++ {
			out[i] = lastCol.Lerp(firstCol, float64(i-last)/pad).ARGB()
		}
	default:
		for i := 0; i < first; i++ {
			out[i] = firstCol.ARGB()
		}
		for i := last + 1; i < width; i++ {
			out[i] = lastCol.ARGB()
		}
	}

	left, leftPix := firstCol, first
	out[leftPix] = left.ARGB()
	for _, s := range stops[1:] {
		rightPix := pix(s.Offset)
		for p := leftPix + 1; p <= rightPix; p++ {
			t := float64(p-leftPix) / float64(rightPix-leftPix)
			out[p] = left.Lerp(s.Color, t).ARGB()
		}
		left, leftPix = s.Color, rightPix
	}
	return out
}

// RadialParameter solves for the gradient parameter at pattern-space point
// q of the radial gradient with circles (0, r1) and (c2, r2): the largest t
// for which q lies on the circle centered at t·c2 with radius
// r1 + t·(r2-r1) and that radius is not negative. It reports false where no
// such circle passes through q.
func RadialParameter(q, c2 gpath.Vec2, r1, r2 float64) (float64, bool) {
	dr := r2 - r1
	a := c2.Dot(c2) - dr*dr
	b := q.Dot(c2) + r1*dr
	c := q.Dot(q) - r1*r1

	valid := func(t float64) bool { return r1+t*dr >= 0 }

	if math.Abs(a) < 1e-12 {
		if b == 0 {
			return 0, false
		}
		t := c / (2 * b)
		return t, valid(t)
	}

	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t1, t2 := (b+sq)/a, (b-sq)/a
	hi, lo := max(t1, t2), min(t1, t2)
	if valid(hi) {
		return hi, true
	}
	return lo, valid(lo)
}
