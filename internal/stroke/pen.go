package stroke

import (
	"math"

	"github.com/gogpu/gpath"
)

// The circular pen in user space is transformed into an ellipse in device
// space. The pen is constructed by computing points along the circumference
// using equally spaced angles.
//
// This approximation to the ellipse has maximum error at the major axis of
// the ellipse.
//
// Set
//
//	M = major axis length
//	m = minor axis length
//
// Align 'M' along the X axis and 'm' along the Y axis and draw an ellipse
// parameterized by angle 't':
//
//	x = M cos t			y = m sin t
//
// Perturb t by ± d and compute two new points (x+,y+), (x-,y-). The distance
// from the average of these two points to (x,y) represents the maximum error
// in approximating the ellipse with a polygon formed from vertices 2∆
// radians apart.
//
//	x+ = M cos (t+∆)		y+ = m sin (t+∆)
//	x- = M cos (t-∆)		y- = m sin (t-∆)
//
// Now compute the approximation error, E:
//
//	Ex = (x - (x+ + x-) / 2)
//	Ex = (M cos(t) - (Mcos(t+∆) + Mcos(t-∆))/2)
//	   = M (cos(t) - (cos(t)cos(∆) + sin(t)sin(∆) +
//			  cos(t)cos(∆) - sin(t)sin(∆))/2)
//	   = M(cos(t) - cos(t)cos(∆))
//	   = M cos(t) (1 - cos(∆))
//
//	Ey = y - (y+ - y-) / 2
//	   = m sin (t) - (m sin(t+∆) + m sin(t-∆)) / 2
//	   = m (sin(t) - (sin(t)cos(∆) + cos(t)sin(∆) +
//			  sin(t)cos(∆) - cos(t)sin(∆))/2)
//	   = m (sin(t) - sin(t)cos(∆))
//	   = m sin(t) (1 - cos(∆))
//
//	E² = Ex² + Ey²
//	   = (M cos(t) (1 - cos (∆)))² + (m sin(t) (1-cos(∆)))²
//	   = (1 - cos(∆))² (M² cos²(t) + m² sin²(t))
//	   = (1 - cos(∆))² ((m² + M² - m²) cos² (t) + m² sin²(t))
//	   = (1 - cos(∆))² (M² - m²) cos² (t) + (1 - cos(∆))² m²
//
// Find the extremum by differentiation wrt t and setting that to zero
//
//	∂(E²)/∂(t) = (1-cos(∆))² (M² - m²) (-2 cos(t) sin(t))
//
//	         0 = 2 cos (t) sin (t)
//		 0 = sin (2t)
//		 t = nπ
//
// Which is to say that the maximum and minimum errors occur on the axes of
// the ellipse at 0 and π radians:
//
//	E²(0) = (1-cos(∆))² (M² - m²) + (1-cos(∆))² m²
//	      = (1-cos(∆))² M²
//	E²(π) = (1-cos(∆))² m²
//
//	maximum error = M (1-cos(∆))
//	minimum error = m (1-cos(∆))
//
// We must make maximum error ≤ tolerance, so compute the ∆ needed:
//
//	    tolerance = M (1-cos(∆))
//	tolerance / M = 1 - cos (∆)
//	       cos(∆) = 1 - tolerance/M
//	            ∆ = acos (1 - tolerance / M);
//
// Remembering that ∆ is half of our angle between vertices, the number of
// vertices is then
//
//	vertices = ceil(2π/2∆).
//	         = ceil(π/∆).
//
// Note that this also equation works for M == m (a circle) as it doesn't
// matter where on the circle the error is computed.

// VerticesNeeded returns the number of pen vertices that keep a polygonal
// approximation of a circle of the given radius, transformed by ctm, within
// tolerance of the true ellipse. The result is even and at least 4.
func VerticesNeeded(tolerance, radius float64, ctm gpath.Matrix) int {
	major := ctm.TransformedCircleMajorAxis(radius)

	// Where tolerance / M is > 1, we use 4 points.
	if tolerance >= major {
		return 4
	}

	delta := math.Acos(1 - tolerance/major)
	n := int(math.Ceil(math.Pi / delta))
	if n%2 != 0 {
		n++
	}
	return max(n, 4)
}

// Vertex is one corner of a pen. Point is relative to the pen center.
type Vertex struct {
	Point gpath.Vec2

	// SlopeCW runs from the previous vertex to this one, SlopeCCW from this
	// vertex to the next.
	SlopeCW  gpath.Vec2
	SlopeCCW gpath.Vec2
}

// Pen is a convex polygon standing in for the stroke's cross-section.
type Pen struct {
	Vertices []Vertex
	Radius   float64
}

// NewPen builds the pen for a circle of the given radius under ctm. A
// non-positive radius or a singular ctm yields an empty pen, which strokes
// nothing.
//
// Vertex positions are snapped to the 24.8 fixed-point grid so opposite
// vertices are exact negatives of each other and slope comparisons between
// pen edges are exact.
func NewPen(radius, tolerance float64, ctm gpath.Matrix) *Pen {
	pen := &Pen{Radius: radius}
	if radius <= 0 || ctm.Determinant() == 0 || tolerance <= 0 {
		return pen
	}

	n := VerticesNeeded(tolerance, radius, ctm)
	reflect := ctm.Determinant() < 0

	pen.Vertices = make([]Vertex, n)
	for i := range pen.Vertices {
		theta := 2 * math.Pi * float64(i) / float64(n)
		if reflect {
			theta = -theta
		}
		d := ctm.TransformVector(gpath.V2(radius*math.Cos(theta), radius*math.Sin(theta)))
		pen.Vertices[i].Point = gpath.FixedPt(d).Vec2()
	}
	pen.computeSlopes()

	gpath.Logger().Debug("stroke: pen", "radius", radius, "vertices", n, "reflect", reflect)
	return pen
}

func (p *Pen) computeSlopes() {
	n := len(p.Vertices)
	for i := range p.Vertices {
		prev := p.Vertices[(i+n-1)%n].Point
		next := p.Vertices[(i+1)%n].Point
		v := &p.Vertices[i]
		v.SlopeCW = v.Point.Sub(prev)
		v.SlopeCCW = next.Sub(v.Point)
	}
}

// Len returns the number of pen vertices.
func (p *Pen) Len() int {
	return len(p.Vertices)
}

// CompareSlopes orders two direction vectors by angle. It returns a
// negative value, zero or a positive value as a is less than, equal to or
// greater than b. Vectors on the same line but pointing in opposite
// directions differ by π: the one pointing right (or straight down) is
// greater. The zero vector is greater than everything else.
func CompareSlopes(a, b gpath.Vec2) int {
	l, r := a.Y*b.X, b.Y*a.X
	switch {
	case l > r:
		return 1
	case l < r:
		return -1
	}

	az, bz := a.IsZero(), b.IsZero()
	switch {
	case az && bz:
		return 0
	case az:
		return 1
	case bz:
		return -1
	}

	if a.X*b.X < 0 || a.Y*b.Y < 0 {
		if a.X > 0 || (a.X == 0 && a.Y > 0) {
			return 1
		}
		return -1
	}
	return 0
}

// FindActiveCW returns the index of the vertex that is active for a
// stroke travelling along slope on its clockwise side: the first vertex
// whose clockwise slope is at or before slope and whose counter-clockwise
// slope is after it. A degenerate pen that matches nothing uses vertex 0.
func (p *Pen) FindActiveCW(slope gpath.Vec2) int {
	for i, v := range p.Vertices {
		if CompareSlopes(slope, v.SlopeCCW) < 0 && CompareSlopes(slope, v.SlopeCW) >= 0 {
			return i
		}
	}
	return 0
}

// FindActiveCCW returns the vertex active on the counter-clockwise side,
// searching backwards for the reversed slope. A degenerate pen that
// matches nothing uses the last vertex.
func (p *Pen) FindActiveCCW(slope gpath.Vec2) int {
	neg := slope.Neg()
	for i := len(p.Vertices) - 1; i >= 0; i-- {
		v := p.Vertices[i]
		if CompareSlopes(v.SlopeCCW, neg) >= 0 && CompareSlopes(v.SlopeCW, neg) < 0 {
			return i
		}
	}
	return len(p.Vertices) - 1
}
