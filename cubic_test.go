package gpath

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCubicSubdivide(t *testing.T) {
	c := Cubic{{0, 0}, {0, 10}, {10, 10}, {10, 0}}
	for _, tt := range []float64{0.25, 0.5, 0.8} {
		left, right := c.Subdivide(tt)
		if left[0] != c[0] || right[3] != c[3] {
			t.Errorf("t=%v: endpoints moved", tt)
		}
		if left[3] != right[0] {
			t.Errorf("t=%v: halves do not meet: %v %v", tt, left[3], right[0])
		}
		if diff := cmp.Diff(c.Eval(tt), left[3], approx); diff != "" {
			t.Errorf("t=%v: split point mismatch (-eval +split):\n%s", tt, diff)
		}
		// Each half reparameterizes its part of the curve.
		for _, u := range []float64{0.3, 0.7} {
			if diff := cmp.Diff(c.Eval(tt*u), left.Eval(u), approx); diff != "" {
				t.Errorf("t=%v u=%v: left half mismatch:\n%s", tt, u, diff)
			}
			if diff := cmp.Diff(c.Eval(tt+(1-tt)*u), right.Eval(u), approx); diff != "" {
				t.Errorf("t=%v u=%v: right half mismatch:\n%s", tt, u, diff)
			}
		}
	}
}

func TestCubicIsClockwise(t *testing.T) {
	tests := []struct {
		name string
		c    Cubic
		want bool
	}{
		// y-down: up then right is a right turn on screen.
		{"bulge up", Cubic{{0, 0}, {0, -10}, {10, -10}, {10, 0}}, true},
		{"bulge down", Cubic{{0, 0}, {0, 10}, {10, 10}, {10, 0}}, false},
		{"second triangle decides", Cubic{{0, 0}, {1, -0.01}, {2, 0}, {2, -10}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsClockwise(); got != tt.want {
				t.Errorf("IsClockwise() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCubicIsDegenerate(t *testing.T) {
	if !(Cubic{{0, 0}, {0, 0}, {5, 5}, {5, 5}}).IsDegenerate() {
		t.Error("line-like cubic not degenerate")
	}
	if (Cubic{{0, 0}, {1, 0}, {5, 5}, {5, 5}}).IsDegenerate() {
		t.Error("curved cubic reported degenerate")
	}
}

func TestCubicErrorSquared(t *testing.T) {
	c := Cubic{{0, 0}, {2, 3}, {8, -4}, {10, 0}}
	if got := c.ErrorSquared(); math.Abs(got-16) > 1e-12 {
		t.Errorf("ErrorSquared() = %v, want 16", got)
	}
	// Control points beyond the chord ends measure to the end point.
	c = Cubic{{0, 0}, {-3, 4}, {10, 0}, {10, 0}}
	if got := c.ErrorSquared(); math.Abs(got-25) > 1e-12 {
		t.Errorf("ErrorSquared() = %v, want 25", got)
	}
}

func TestCubicFlatten(t *testing.T) {
	c := Cubic{{0, 0}, {30, 60}, {70, -60}, {100, 0}}
	for _, tol := range []float64{2, 0.5, 0.05} {
		var pts []Vec2
		for p := range c.Flatten(tol) {
			pts = append(pts, p)
		}
		if pts[len(pts)-1] != c[3] {
			t.Errorf("tol=%v: last point %v, want %v", tol, pts[len(pts)-1], c[3])
		}
		// Every chord midpoint stays near the curve: sample the curve
		// densely and check that each sample is close to some chord.
		poly := append([]Vec2{c[0]}, pts...)
		for i := 0; i <= 200; i++ {
			q := c.Eval(float64(i) / 200)
			best := math.Inf(1)
			for j := 1; j < len(poly); j++ {
				best = min(best, chordDistanceSq(q, poly[j-1], poly[j]))
			}
			if math.Sqrt(best) > tol {
				t.Errorf("tol=%v: sample %v is %v from the polyline", tol, q, math.Sqrt(best))
				break
			}
		}
	}
}

func TestCubicFlattenStopsEarly(t *testing.T) {
	c := Cubic{{0, 0}, {0, 100}, {100, 100}, {100, 0}}
	n := 0
	for range c.Flatten(0.01) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("iterated %d points, want 3", n)
	}
}
