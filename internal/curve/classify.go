// Package curve classifies cubic Bezier segments for fragment-program
// filling.
//
// Every cubic is the zero set of an implicit function k³ - l·m evaluated over
// texture coordinates (k, l, m) that are linear across the control-point
// hull. Classify derives those coordinates for the four control points so a
// fragment program can decide per pixel on which side of the true curve a
// sample lies; SplitAtInflections cuts a curve into pieces for which that
// test is valid.
package curve

import (
	"math"

	"github.com/gogpu/gpath"
)

// Kind is the algebraic class of a cubic.
type Kind int

const (
	// Line is a cubic whose control points are collinear. It has no
	// interior and is never filled by the fragment program.
	Line Kind = iota
	// Quadratic is a degree-elevated quadratic.
	Quadratic
	// CuspAtInfinity has one inflection and a cusp at t = ∞.
	CuspAtInfinity
	// Serpentine has two distinct real inflections.
	Serpentine
	// Cusp has a double inflection (zero discriminant).
	Cusp
	// Loop has a self-intersection (double point).
	Loop
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Quadratic:
		return "quadratic"
	case CuspAtInfinity:
		return "cusp-at-infinity"
	case Serpentine:
		return "serpentine"
	case Cusp:
		return "cusp"
	case Loop:
		return "loop"
	default:
		return "unknown"
	}
}

// Serpentine reports whether k belongs to the serpentine family: curves
// with real inflection points and a non-negative discriminant, which share
// the serpentine closed form.
func (k Kind) Serpentine() bool {
	return k == Serpentine || k == Cusp || k == CuspAtInfinity
}

// Fillable reports whether curves of kind k have an interior the fragment
// program can evaluate.
func (k Kind) Fillable() bool {
	return k != Line
}

// Discriminants holds the values d1, d2 and d3 computed from the control
// points.
type Discriminants struct {
	D1, D2, D3 float64
}

// Discriminate computes the discriminants of c from the triple products of
// its control points taken as homogeneous 2D points.
func Discriminate(c gpath.Cubic) Discriminants {
	b0 := c[0].Homogeneous()
	b1 := c[1].Homogeneous()
	b2 := c[2].Homogeneous()
	b3 := c[3].Homogeneous()

	a1 := b0.Dot(b3.Cross(b2))
	a2 := b1.Dot(b0.Cross(b3))
	a3 := b2.Dot(b1.Cross(b0))

	return Discriminants{
		D1: a1 - 2*a2 + 3*a3,
		D2: -a2 + 3*a3,
		D3: 3 * a3,
	}
}

// Result is the classification of one cubic.
type Result struct {
	Kind Kind

	// M holds the (k, l, m) coordinates of the four control points. The
	// curve is the zero set of k³ - l·m; samples with k³ - l·m <= 0 lie on
	// the filled side.
	M [4]gpath.Vec3

	// Reverse reports whether k and l were negated to orient the curve's
	// interior consistently with the control polygon winding.
	Reverse bool

	D Discriminants
}

// roots returns the serpentine-form root pairs (ls, lt) and (ms, mt) for a
// cubic with d1 != 0. disc is the discriminant 3d2² - 4d1d3.
func (d Discriminants) roots(disc float64) (ls, lt, ms, mt float64) {
	if disc >= 0 {
		disc /= 3
	} else {
		disc = -disc
	}
	sq := math.Sqrt(disc)
	ls = d.D2 - sq
	lt = 2 * d.D1
	ms = d.D2 + sq
	mt = 2 * d.D1
	return ls, lt, ms, mt
}

// Classify determines the kind of c and the implicit coordinates of its
// control points. Discriminants are computed in float64 throughout; the
// exact-zero tests treat only exactly degenerate input as Line, Quadratic or
// CuspAtInfinity.
func Classify(c gpath.Cubic) Result {
	d := Discriminate(c)
	r := Result{D: d}

	switch {
	case d.D1 == 0 && d.D2 == 0 && d.D3 == 0:
		r.Kind = Line
		return r

	case d.D1 == 0 && d.D2 == 0:
		r.Kind = Quadratic
		r.M = [4]gpath.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1.0 / 3, Y: 0, Z: 1.0 / 3},
			{X: 2.0 / 3, Y: 1.0 / 3, Z: 2.0 / 3},
			{X: 1, Y: 1, Z: 1},
		}

	case d.D1 == 0:
		r.Kind = CuspAtInfinity
		ls := d.D3
		lt := 3 * d.D2
		r.M = [4]gpath.Vec3{
			{X: ls, Y: ls * ls * ls, Z: 1},
			{X: ls - lt/3, Y: ls * ls * (ls - lt), Z: 1},
			{X: ls - 2*lt/3, Y: (ls - lt) * (ls - lt) * ls, Z: 1},
			{X: ls - lt, Y: (ls - lt) * (ls - lt) * (ls - lt), Z: 1},
		}

	default:
		disc := 3*d.D2*d.D2 - 4*d.D1*d.D3
		ls, lt, ms, mt := d.roots(disc)

		m1x := (3*ls*ms - ls*mt - lt*ms) / 3
		m2x := (lt*(mt-2*ms) + ls*(3*ms-2*mt)) / 3
		m3x := (lt - ls) * (mt - ms)

		if disc >= 0 {
			r.Kind = Serpentine
			if disc == 0 {
				r.Kind = Cusp
			}
			r.M = [4]gpath.Vec3{
				{X: ls * ms, Y: ls * ls * ls, Z: ms * ms * ms},
				{X: m1x, Y: ls * ls * (ls - lt), Z: ms * ms * (ms - mt)},
				{X: m2x, Y: (lt - ls) * (lt - ls) * ls, Z: (mt - ms) * (mt - ms) * ms},
				{X: m3x, Y: -(lt - ls) * (lt - ls) * (lt - ls), Z: -(mt - ms) * (mt - ms) * (mt - ms)},
			}
			r.Reverse = d.D1 < 0
		} else {
			r.Kind = Loop
			r.M = [4]gpath.Vec3{
				{X: ls * ms, Y: ls * ls * ms, Z: ls * ms * ms},
				{
					X: m1x,
					Y: -ls * (ls*(mt-3*ms) + 2*lt*ms) / 3,
					Z: -ms * (ls*(2*mt-3*ms) + lt*ms) / 3,
				},
				{
					X: m2x,
					Y: (lt - ls) * (ls*(2*mt-3*ms) + lt*ms) / 3,
					Z: (mt - ms) * (ls*(mt-3*ms) + 2*lt*ms) / 3,
				},
				{X: m3x, Y: -(lt - ls) * (lt - ls) * (mt - ms), Z: -(lt - ls) * (mt - ms) * (mt - ms)},
			}
			r.Reverse = (d.D1 < 0 && m1x > 0) || (d.D1 > 0 && m1x < 0)
		}
	}

	// The quadratic coefficients are fixed per control point and already
	// put the interior on the control-point side of the chord.
	if r.Kind != Quadratic && c.IsClockwise() {
		r.Reverse = !r.Reverse
	}
	if r.Reverse {
		for i := range r.M {
			r.M[i].X = -r.M[i].X
			r.M[i].Y = -r.M[i].Y
		}
	}
	return r
}

// Implicit evaluates k³ - l·m for interpolated coordinates v.
func Implicit(v gpath.Vec3) float64 {
	return v.X*v.X*v.X - v.Y*v.Z
}
