package gpath

import "iter"

// maxFlattenDepth bounds recursive subdivision when flattening.
const maxFlattenDepth = 24

// Cubic is a cubic Bezier segment given by its four control points.
type Cubic [4]Vec2

// Subdivide splits the curve at parameter t using De Casteljau's
// construction. left covers [0,t] and right covers [t,1]; left[3] and
// right[0] are the same point.
func (c Cubic) Subdivide(t float64) (left, right Cubic) {
	p01 := c[0].Lerp(c[1], t)
	p12 := c[1].Lerp(c[2], t)
	p23 := c[2].Lerp(c[3], t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	p0123 := p012.Lerp(p123, t)

	left = Cubic{c[0], p01, p012, p0123}
	right = Cubic{p0123, p123, p23, c[3]}
	return left, right
}

// Eval returns the point on the curve at parameter t.
func (c Cubic) Eval(t float64) Vec2 {
	u := 1 - t
	b0 := u * u * u
	b1 := 3 * u * u * t
	b2 := 3 * u * t * t
	b3 := t * t * t
	return Vec2{
		X: b0*c[0].X + b1*c[1].X + b2*c[2].X + b3*c[3].X,
		Y: b0*c[0].Y + b1*c[1].Y + b2*c[2].Y + b3*c[3].Y,
	}
}

// IsClockwise reports the winding of the control polygon as seen from p0.
// Of the two signed areas p0p1p2 and p0p2p3 the one with the larger
// magnitude decides; a positive area is clockwise in y-down device space.
func (c Cubic) IsClockwise() bool {
	d01 := c[1].Sub(c[0])
	d02 := c[2].Sub(c[0])
	d03 := c[3].Sub(c[0])

	angle := d01.Cross(d02)
	if angle2 := d02.Cross(d03); abs(angle2) > abs(angle) {
		angle = angle2
	}
	return angle > 0
}

// IsDegenerate reports whether the curve collapses to a single point
// tangent-wise: both handles coincide with their endpoints.
func (c Cubic) IsDegenerate() bool {
	return c[0] == c[1] && c[2] == c[3]
}

// ErrorSquared returns the squared distance from the inner control points to
// the chord c[0]-c[3], whichever is larger. It bounds how far the curve can
// stray from its chord.
func (c Cubic) ErrorSquared() float64 {
	return max(chordDistanceSq(c[1], c[0], c[3]), chordDistanceSq(c[2], c[0], c[3]))
}

// chordDistanceSq returns the squared distance from p to segment a-d.
func chordDistanceSq(p, a, d Vec2) float64 {
	v := d.Sub(a)
	if v.IsZero() {
		return p.Sub(a).LengthSq()
	}
	u := p.Sub(a).Dot(v) / v.LengthSq()
	switch {
	case u <= 0:
		return p.Sub(a).LengthSq()
	case u >= 1:
		return p.Sub(d).LengthSq()
	default:
		return p.Sub(a.Add(v.Mul(u))).LengthSq()
	}
}

// Flatten yields points approximating the curve to within tolerance. The
// start point c[0] is not yielded; the last point is always c[3].
func (c Cubic) Flatten(tolerance float64) iter.Seq[Vec2] {
	return func(yield func(Vec2) bool) {
		c.flatten(tolerance*tolerance, 0, yield)
	}
}

func (c Cubic) flatten(tolSq float64, depth int, yield func(Vec2) bool) bool {
	if depth >= maxFlattenDepth || c.ErrorSquared() < tolSq {
		return yield(c[3])
	}
	left, right := c.Subdivide(0.5)
	if !left.flatten(tolSq, depth+1, yield) {
		return false
	}
	return right.flatten(tolSq, depth+1, yield)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
