package stroke

import (
	"fmt"

	"github.com/gogpu/gpath"
)

// Stroker sweeps a pen along paths and splines into a Mesh. It implements
// gpath.PathVisitor; Stroke drives it over a whole path.
//
// Each contour becomes one continuous strip. Corners are joined by turning
// the pen at the corner point, which yields round joins. Contours that are
// closed are also joined at their start. No caps are drawn.
type Stroker struct {
	pen       *Pen
	mesh      *Mesh
	tolerance float64

	// Active pen vertices and the point they are attached to.
	fwd, bwd int
	last     gpath.Vec2

	start, current gpath.Vec2
	startSlope     gpath.Vec2
	hasCurrent     bool
	opened         bool
}

// NewStroker returns a stroker using pen that writes to m. tolerance bounds
// the flattening error of curves.
func NewStroker(pen *Pen, m *Mesh, tolerance float64) *Stroker {
	return &Stroker{pen: pen, mesh: m, tolerance: tolerance}
}

// Hairline reports whether the pen is too small to cover anything.
func (s *Stroker) Hairline() bool {
	return s.pen.Len() <= 1
}

// Stroke walks src, emits its stroke triangles and renders the mesh. It
// returns the bounding box of the emitted vertices.
func (s *Stroker) Stroke(src gpath.PathSource) (gpath.Box, error) {
	b := s.mesh.Builder()
	if s.Hairline() {
		return b.Bounds(), nil
	}
	s.hasCurrent, s.opened = false, false

	if err := src.Interpret(s); err != nil {
		return b.Bounds(), err
	}
	s.mesh.Close()
	if err := b.Render(); err != nil {
		return b.Bounds(), err
	}
	gpath.Logger().Debug("stroke: pen sweep",
		"pen", s.pen.Len(), "triangles", s.mesh.Triangles(), "batches", b.Batches())
	return b.Bounds(), nil
}

func (s *Stroker) hull(i int) gpath.Vec2 {
	return s.last.Add(s.pen.Vertices[i].Point)
}

// begin opens a strip at p with the pen oriented along slope.
func (s *Stroker) begin(p, slope gpath.Vec2) error {
	s.last = p
	s.fwd = s.pen.FindActiveCW(slope)
	s.bwd = s.pen.FindActiveCW(slope.Neg())
	return s.mesh.Open(s.hull(s.fwd), s.hull(s.bwd))
}

// addConvolved turns the active vertices at s.last until both are active
// for slope, emitting a triangle for every step, and extends the strip to
// s.last.
func (s *Stroker) addConvolved(slope gpath.Vec2) error {
	n := s.pen.Len()
	back := slope.Neg()
	extendFwd, extendBwd := true, true

	for guard := 0; extendFwd || extendBwd; guard++ {
		if guard > 2*n+2 {
			return fmt.Errorf("stroke: pen walk did not settle for slope %v: %w", slope, gpath.ErrInvariant)
		}

		fp, bp := s.mesh.fwdP, s.mesh.bwdP
		if extendFwd {
			fp = s.hull(s.fwd)
		}
		if extendBwd {
			bp = s.hull(s.bwd)
		}
		if err := s.mesh.Extend(fp, bp); err != nil {
			return err
		}

		if extendFwd {
			s.fwd, extendFwd = s.step(s.fwd, slope)
		}
		if extendBwd {
			s.bwd, extendBwd = s.step(s.bwd, back)
		}
	}
	return nil
}

// step moves vertex i one place towards the vertex active for slope. It
// reports false when i is already active.
func (s *Stroker) step(i int, slope gpath.Vec2) (int, bool) {
	n := s.pen.Len()
	v := s.pen.Vertices[i]
	switch {
	case CompareSlopes(slope, v.SlopeCCW) > 0:
		return (i + 1) % n, true
	case CompareSlopes(slope, v.SlopeCW) < 0:
		return (i + n - 1) % n, true
	}
	return i, false
}

// Spline sweeps the pen along the cubic a, b, c, d as a strip of its own.
func (s *Stroker) Spline(a, b, c, d gpath.Vec2) error {
	if s.Hairline() || (a == b && c == d) {
		return nil
	}
	initial, final := splineSlopes(a, b, c, d)

	if err := s.begin(a, initial); err != nil {
		return err
	}
	for q := range (gpath.Cubic{a, b, c, d}).Flatten(s.tolerance) {
		// Turn the pen at the segment's start, then move on.
		if err := s.addConvolved(q.Sub(s.last)); err != nil {
			return err
		}
		s.last = q
	}
	if err := s.addConvolved(final); err != nil {
		return err
	}
	s.mesh.Close()
	return nil
}

// splineSlopes returns the tangent directions at both ends of a cubic,
// falling back to further control points where neighbors coincide.
func splineSlopes(a, b, c, d gpath.Vec2) (initial, final gpath.Vec2) {
	initial = b.Sub(a)
	if initial.IsZero() {
		initial = c.Sub(a)
		if initial.IsZero() {
			initial = d.Sub(a)
		}
	}
	final = d.Sub(c)
	if final.IsZero() {
		final = d.Sub(b)
		if final.IsZero() {
			final = d.Sub(a)
		}
	}
	return initial, final
}

// segmentStart prepares a segment leaving the current point along slope:
// it opens the contour's strip or joins the previous segment.
func (s *Stroker) segmentStart(slope gpath.Vec2) error {
	if !s.opened {
		s.opened = true
		s.startSlope = slope
		return s.begin(s.current, slope)
	}
	s.last = s.current
	return s.addConvolved(slope)
}

// MoveTo implements gpath.PathVisitor.
func (s *Stroker) MoveTo(p gpath.Vec2) error {
	s.mesh.Close()
	s.opened = false
	s.hasCurrent = true
	s.start, s.current = p, p
	return nil
}

// LineTo implements gpath.PathVisitor.
func (s *Stroker) LineTo(p gpath.Vec2) error {
	if !s.hasCurrent {
		return s.MoveTo(p)
	}
	if p == s.current {
		return nil
	}
	slope := p.Sub(s.current)
	if err := s.segmentStart(slope); err != nil {
		return err
	}
	s.last, s.current = p, p
	return s.addConvolved(slope)
}

// CurveTo implements gpath.PathVisitor.
func (s *Stroker) CurveTo(p1, p2, p3 gpath.Vec2) error {
	if !s.hasCurrent {
		if err := s.MoveTo(p1); err != nil {
			return err
		}
	}
	c := gpath.Cubic{s.current, p1, p2, p3}
	if c.IsDegenerate() {
		return s.LineTo(p3)
	}

	initial, final := splineSlopes(c[0], c[1], c[2], c[3])
	if err := s.segmentStart(initial); err != nil {
		return err
	}
	for q := range c.Flatten(s.tolerance) {
		if err := s.addConvolved(q.Sub(s.last)); err != nil {
			return err
		}
		s.last = q
	}
	s.current = p3
	return s.addConvolved(final)
}

// ClosePath implements gpath.PathVisitor.
func (s *Stroker) ClosePath() error {
	if !s.opened {
		return nil
	}
	if s.current != s.start {
		if err := s.LineTo(s.start); err != nil {
			return err
		}
	}
	s.last = s.start
	if err := s.addConvolved(s.startSlope); err != nil {
		return err
	}
	s.mesh.Close()
	s.opened = false
	return nil
}
