package stroke

import (
	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/internal/mesh"
)

// Mesh turns a moving pair of hull points into a triangle strip. Open
// places the first pair; every Extend adds one triangle per hull point that
// moved. Hull handles follow the strip across mesh flushes.
type Mesh struct {
	b *mesh.Builder

	fwd, bwd   mesh.Handle
	fwdP, bwdP gpath.Vec2
	open       bool
	triangles  int
}

// NewMesh returns a stroke mesh writing to b.
func NewMesh(b *mesh.Builder) *Mesh {
	return &Mesh{b: b}
}

// Builder returns the underlying mesh builder.
func (m *Mesh) Builder() *mesh.Builder {
	return m.b
}

// Triangles returns the number of triangles emitted so far.
func (m *Mesh) Triangles() int {
	return m.triangles
}

func (m *Mesh) vertex(p gpath.Vec2) (mesh.Handle, error) {
	return m.b.AddVertex(float32(p.X), float32(p.Y))
}

func (m *Mesh) triangle(a, b, c *mesh.Handle) error {
	for _, h := range [...]*mesh.Handle{a, b, c} {
		if err := m.b.AddIndex(h); err != nil {
			return err
		}
	}
	m.triangles++
	return nil
}

// Open starts a strip at the given forward and backward hull points.
func (m *Mesh) Open(fwd, bwd gpath.Vec2) error {
	var err error
	if m.fwd, err = m.vertex(fwd); err != nil {
		return err
	}
	if m.bwd, err = m.vertex(bwd); err != nil {
		return err
	}
	m.fwdP, m.bwdP = fwd, bwd
	m.open = true
	return nil
}

// Extend advances the strip to new hull points. Each side that moved
// contributes the triangle formed by the current pair and its new point.
func (m *Mesh) Extend(fwd, bwd gpath.Vec2) error {
	if fwd != m.fwdP {
		h, err := m.vertex(fwd)
		if err != nil {
			return err
		}
		if err := m.triangle(&m.fwd, &m.bwd, &h); err != nil {
			return err
		}
		m.fwd, m.fwdP = h, fwd
	}
	if bwd != m.bwdP {
		h, err := m.vertex(bwd)
		if err != nil {
			return err
		}
		if err := m.triangle(&m.fwd, &m.bwd, &h); err != nil {
			return err
		}
		m.bwd, m.bwdP = h, bwd
	}
	return nil
}

// Close ends the strip. The last triangle was emitted by Extend.
func (m *Mesh) Close() {
	m.open = false
}

// Triangle emits a standalone triangle.
func (m *Mesh) Triangle(a, b, c gpath.Vec2) error {
	var h [3]mesh.Handle
	for i, p := range [...]gpath.Vec2{a, b, c} {
		v, err := m.vertex(p)
		if err != nil {
			return err
		}
		h[i] = v
	}
	return m.triangle(&h[0], &h[1], &h[2])
}

// ConvexQuad emits a convex quadrilateral as the triangles (0,1,2) and
// (0,2,3).
func (m *Mesh) ConvexQuad(a, b, c, d gpath.Vec2) error {
	var h [4]mesh.Handle
	for i, p := range [...]gpath.Vec2{a, b, c, d} {
		v, err := m.vertex(p)
		if err != nil {
			return err
		}
		h[i] = v
	}
	if err := m.triangle(&h[0], &h[1], &h[2]); err != nil {
		return err
	}
	return m.triangle(&h[0], &h[2], &h[3])
}
