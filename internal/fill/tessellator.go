// Package fill triangulates path interiors for stencil-based fill-rule
// evaluation.
//
// Each contour becomes a fan of triangles anchored at its first point.
// Drawn with increment/decrement (nonzero) or invert (even-odd) stencil
// operations, the fans leave a nonzero stencil value exactly where the
// polygon formed by the contour vertices is inside. Curves are either
// flattened into the fan or, when a spline buffer is supplied, reduced to
// their chords and deferred; Splines then draws the control hull of every
// deferred curve with implicit coordinates so a fragment program can correct
// the region between chord and curve.
package fill

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/internal/curve"
	"github.com/gogpu/gpath/internal/mesh"
	"github.com/gogpu/gpath/internal/splines"
)

// Tessellator emits contour fans into a mesh. It implements
// gpath.PathVisitor.
type Tessellator struct {
	mesh      *mesh.Builder
	splines   *splines.Buffer
	tolerance float64

	start, current gpath.Vec2
	open           bool

	anchor, prev mesh.Handle
	hasAnchor    bool
	hasPrev      bool
	vertices     int // vertices emitted for the current contour
	triangles    int // triangles emitted for the current contour

	total int
}

// New returns a tessellator writing to m. With a non-nil buf curves are
// deferred to buf for the spline pass; otherwise they are flattened.
func New(m *mesh.Builder, buf *splines.Buffer) *Tessellator {
	return &Tessellator{mesh: m, splines: buf}
}

// Fill walks src and emits its fan triangulation, then renders the mesh. It
// returns the bounding box of every emitted vertex.
func (t *Tessellator) Fill(src gpath.PathSource, tolerance float64) (gpath.Box, error) {
	t.tolerance = tolerance
	t.open = false
	t.resetContour()

	var err error
	if t.splines == nil {
		err = src.InterpretFlat(tolerance, t)
	} else {
		err = src.Interpret(t)
	}
	if err != nil {
		return t.mesh.Bounds(), err
	}
	t.discardDegenerate()

	if err := t.mesh.Render(); err != nil {
		return t.mesh.Bounds(), err
	}
	gpath.Logger().Debug("fill: stencil fan",
		"triangles", t.total, "batches", t.mesh.Batches(), "deferred", t.deferred())
	return t.mesh.Bounds(), nil
}

// Triangles returns the number of fan triangles emitted so far.
func (t *Tessellator) Triangles() int {
	return t.total
}

func (t *Tessellator) deferred() int {
	if t.splines == nil {
		return 0
	}
	return t.splines.Len()
}

func (t *Tessellator) resetContour() {
	t.hasAnchor = false
	t.hasPrev = false
	t.vertices = 0
	t.triangles = 0
}

// discardDegenerate retracts a contour that produced a single edge and no
// area.
func (t *Tessellator) discardDegenerate() {
	if t.vertices == 2 && t.triangles == 0 {
		if t.mesh.Retract(t.prev) {
			t.mesh.Retract(t.anchor)
		}
	}
}

// MoveTo implements gpath.PathVisitor.
func (t *Tessellator) MoveTo(p gpath.Vec2) error {
	t.discardDegenerate()
	t.resetContour()
	t.start = p
	t.current = p
	t.open = true
	return nil
}

// LineTo implements gpath.PathVisitor.
func (t *Tessellator) LineTo(p gpath.Vec2) error {
	if !t.open {
		return t.MoveTo(p)
	}
	if p == t.current {
		return nil
	}
	t.current = p

	// An edge back to the anchor only closes the fan; the triangle it would
	// produce has no area, and so has the one after it.
	if p == t.start {
		t.hasPrev = false
		return nil
	}

	if !t.hasAnchor {
		h, err := t.mesh.AddVertex(float32(t.start.X), float32(t.start.Y))
		if err != nil {
			return err
		}
		t.anchor = h
		t.hasAnchor = true
		t.vertices++
	}

	next, err := t.mesh.AddVertex(float32(p.X), float32(p.Y))
	if err != nil {
		return err
	}
	t.vertices++

	if t.hasPrev {
		for _, h := range [...]*mesh.Handle{&t.anchor, &t.prev, &next} {
			if err := t.mesh.AddIndex(h); err != nil {
				return err
			}
		}
		t.triangles++
		t.total++
	}
	t.prev = next
	t.hasPrev = true
	return nil
}

// CurveTo implements gpath.PathVisitor.
func (t *Tessellator) CurveTo(p1, p2, p3 gpath.Vec2) error {
	if !t.open {
		if err := t.MoveTo(p1); err != nil {
			return err
		}
	}
	c := gpath.Cubic{t.current, p1, p2, p3}

	if t.splines == nil {
		for q := range c.Flatten(t.tolerance) {
			if err := t.LineTo(q); err != nil {
				return err
			}
		}
		return nil
	}

	if c.IsDegenerate() || curve.Classify(c).Kind == curve.Line {
		return t.LineTo(p3)
	}
	return curve.SplitAtInflections(c, func(piece gpath.Cubic) error {
		if err := t.splines.Add(piece); err != nil {
			return err
		}
		return t.LineTo(piece[3])
	})
}

// ClosePath implements gpath.PathVisitor. The fan closes implicitly.
func (t *Tessellator) ClosePath() error {
	return nil
}

// Splines emits the control hull of every fillable cubic in buf as the
// triangles (0,1,2) and (0,2,3), with the implicit coordinates of each
// control point as its texture coordinate, and renders m. It returns the
// number of cubics drawn.
func Splines(m *mesh.Builder, buf *splines.Buffer) (int, error) {
	if !m.Textured() {
		return 0, fmt.Errorf("fill: spline pass needs a textured mesh: %w", gpath.ErrInvariant)
	}

	drawn := 0
	for c := range buf.All() {
		r := curve.Classify(c)
		if !r.Kind.Fillable() {
			continue
		}
		tc := normalize(r.M)

		var hull [4]mesh.Handle
		for i := range hull {
			h, err := m.AddVertexTex(float32(c[i].X), float32(c[i].Y), tc[i])
			if err != nil {
				return drawn, err
			}
			hull[i] = h
		}
		for _, i := range [...]int{0, 1, 2, 0, 2, 3} {
			if err := m.AddIndex(&hull[i]); err != nil {
				return drawn, err
			}
		}
		drawn++
	}
	if err := m.Render(); err != nil {
		return drawn, err
	}
	gpath.Logger().Debug("fill: spline pass", "cubics", buf.Len(), "drawn", drawn)
	return drawn, nil
}

// normalize rescales implicit coordinates into single-precision range. k is
// scaled by s and l, m by s^1.5 each, which multiplies k³ - l·m by s³ and
// keeps its sign.
func normalize(m [4]gpath.Vec3) [4]f32.Vec3 {
	var big float64
	for _, v := range m {
		big = max(big, math.Abs(v.X))
	}
	s, s32 := 1.0, 1.0
	if big > 0 {
		s = 1 / big
		s32 = s * math.Sqrt(s)
	}

	var out [4]f32.Vec3
	for i, v := range m {
		out[i] = f32.Vec3{float32(v.X * s), float32(v.Y * s32), float32(v.Z * s32)}
	}
	return out
}
