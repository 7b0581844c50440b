package stroke

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/gpath"
)

func TestVerticesNeeded(t *testing.T) {
	tests := []struct {
		name      string
		tolerance float64
		radius    float64
		ctm       gpath.Matrix
		want      int
	}{
		{"tolerance above radius", 10, 5, gpath.Identity(), 4},
		{"tolerance equals radius", 5, 5, gpath.Identity(), 4},
		{"fine circle", 0.1, 100, gpath.Identity(), 72},
		{"scaled up", 1, 5, gpath.Scale(2, 1), 8},
		{"scaled down", 2, 100, gpath.Scale(0.01, 0.01), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerticesNeeded(tt.tolerance, tt.radius, tt.ctm); got != tt.want {
				t.Errorf("VerticesNeeded(%v, %v) = %d, want %d", tt.tolerance, tt.radius, got, tt.want)
			}
		})
	}
}

// The pen vertex count follows from this derivation, which the test below
// checks numerically.
//
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
func TestVerticesNeededBoundsError(t *testing.T) {
	prev := 0
	for _, tol := range []float64{4, 2, 1, 0.5, 0.25, 0.1, 0.01} {
		const radius = 20
		n := VerticesNeeded(tol, radius, gpath.Identity())
		if n < 4 || n%2 != 0 {
			t.Errorf("tolerance %v: %d vertices, want an even count of at least 4", tol, n)
		}
		if n < prev {
			t.Errorf("tolerance %v: %d vertices, fewer than %d for a coarser tolerance", tol, n, prev)
		}
		prev = n
		if e := radius * (1 - math.Cos(math.Pi/float64(n))); e > tol {
			t.Errorf("tolerance %v: %d vertices leave error %v", tol, n, e)
		}
	}
}

func TestNewPenSquare(t *testing.T) {
	p := NewPen(5, 10, gpath.Identity())
	want := []Vertex{
		{Point: gpath.V2(5, 0), SlopeCW: gpath.V2(5, 5), SlopeCCW: gpath.V2(-5, 5)},
		{Point: gpath.V2(0, 5), SlopeCW: gpath.V2(-5, 5), SlopeCCW: gpath.V2(-5, -5)},
		{Point: gpath.V2(-5, 0), SlopeCW: gpath.V2(-5, -5), SlopeCCW: gpath.V2(5, -5)},
		{Point: gpath.V2(0, -5), SlopeCW: gpath.V2(5, -5), SlopeCCW: gpath.V2(5, 5)},
	}
	if diff := cmp.Diff(want, p.Vertices); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
}

func TestNewPenEmpty(t *testing.T) {
	for name, p := range map[string]*Pen{
		"zero radius":    NewPen(0, 0.1, gpath.Identity()),
		"negative":       NewPen(-1, 0.1, gpath.Identity()),
		"singular":       NewPen(3, 0.1, gpath.Scale(0, 1)),
		"zero tolerance": NewPen(3, 0, gpath.Identity()),
	} {
		if p.Len() != 0 {
			t.Errorf("%s: %d vertices, want 0", name, p.Len())
		}
	}
}

func TestNewPenReflection(t *testing.T) {
	plain := NewPen(7.5, 0.1, gpath.Identity())
	flipped := NewPen(7.5, 0.1, gpath.Scale(1, -1))
	if diff := cmp.Diff(plain.Vertices, flipped.Vertices); diff != "" {
		t.Errorf("reflected pen is not wound like the plain one (-plain +flipped):\n%s", diff)
	}
}

func TestNewPenSymmetric(t *testing.T) {
	for _, r := range []float64{7.5, 100} {
		p := NewPen(r, 0.1, gpath.Identity())
		n := p.Len()
		for i := 0; i < n/2; i++ {
			a, b := p.Vertices[i].Point, p.Vertices[i+n/2].Point
			if a != b.Neg() {
				t.Errorf("radius %v: vertex %d %v is not opposite vertex %d %v", r, i, a, i+n/2, b)
			}
		}
	}
}

func TestCompareSlopes(t *testing.T) {
	tests := []struct {
		name string
		a, b gpath.Vec2
		want int
	}{
		{"right before down", gpath.V2(1, 0), gpath.V2(0, 1), -1},
		{"down after right", gpath.V2(0, 1), gpath.V2(1, 0), 1},
		{"same direction", gpath.V2(2, 2), gpath.V2(1, 1), 0},
		{"right opposite left", gpath.V2(1, 0), gpath.V2(-1, 0), 1},
		{"left opposite right", gpath.V2(-1, 0), gpath.V2(1, 0), -1},
		{"down opposite up", gpath.V2(0, 1), gpath.V2(0, -1), 1},
		{"up opposite down", gpath.V2(0, -1), gpath.V2(0, 1), -1},
		{"zero first", gpath.V2(0, 0), gpath.V2(1, 0), 1},
		{"zero second", gpath.V2(1, 0), gpath.V2(0, 0), -1},
		{"both zero", gpath.V2(0, 0), gpath.V2(0, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareSlopes(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareSlopes(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFindActive(t *testing.T) {
	p := NewPen(5, 10, gpath.Identity())
	tests := []struct {
		slope   gpath.Vec2
		cw, ccw int
	}{
		{gpath.V2(1, 0), 3, 1},
		{gpath.V2(0, 1), 0, 2},
		{gpath.V2(-1, 0), 1, 3},
		{gpath.V2(0, -1), 2, 0},
	}
	for _, tt := range tests {
		if got := p.FindActiveCW(tt.slope); got != tt.cw {
			t.Errorf("FindActiveCW(%v) = %d, want %d", tt.slope, got, tt.cw)
		}
		if got := p.FindActiveCCW(tt.slope); got != tt.ccw {
			t.Errorf("FindActiveCCW(%v) = %d, want %d", tt.slope, got, tt.ccw)
		}
		if got, want := p.FindActiveCCW(tt.slope), p.FindActiveCW(tt.slope.Neg()); got != want {
			t.Errorf("FindActiveCCW(%v) = %d, FindActiveCW of the reverse = %d", tt.slope, got, want)
		}
	}
}
