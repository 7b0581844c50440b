// Package mesh accumulates triangle lists in fixed-capacity vertex and index
// arrays sized to the hardware buffers, flushing them to a Target whenever a
// capacity is reached.
//
// Vertices are addressed through Handles tagged with the flush generation
// they were written in. A handle that survives one flush is transparently
// re-materialized: its vertex is copied from the retained previous batch into
// the current one the next time the handle is indexed. This lets fan anchors
// and stroke hull points span batch boundaries.
package mesh

import (
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpath"
)

// maxCapacity is the largest capacity addressable by 16-bit indices.
const maxCapacity = 1 << 16

// Batch is one triangle list submitted to a Target. The slices alias the
// builder's storage and are only valid for the duration of the call.
type Batch struct {
	Positions []f32.Vec3
	// TexCoords is nil for untextured meshes; otherwise it has one entry per
	// position.
	TexCoords []f32.Vec3
	Indices   []uint16
}

// Triangles returns the number of triangles in the batch.
func (b Batch) Triangles() int {
	return len(b.Indices) / 3
}

// Target receives completed batches, typically by uploading them to GPU
// buffers and issuing one indexed triangle-list draw.
type Target interface {
	DrawTriangles(b Batch) error
}

// TargetFunc adapts a function to the Target interface.
type TargetFunc func(b Batch) error

// DrawTriangles calls f(b).
func (f TargetFunc) DrawTriangles(b Batch) error {
	return f(b)
}

// Handle refers to a vertex written to a Builder.
type Handle struct {
	gen  uint32
	slot uint16
}

// store is one generation's vertex data.
type store struct {
	pos []f32.Vec3
	tex []f32.Vec3
}

func newStore(n int, textured bool) store {
	s := store{pos: make([]f32.Vec3, n)}
	if textured {
		s.tex = make([]f32.Vec3, n)
	}
	return s
}

// Builder accumulates vertices and indices for one tessellation call.
//
// Vertices must be added at triangle boundaries: when the vertex array is
// full, AddVertex flushes only if every queued index belongs to a complete
// triangle and fails with ErrCapacityExceeded otherwise. Tessellators
// therefore add a triangle's new vertex before indexing it.
type Builder struct {
	target   Target
	textured bool

	cur, prev store
	indices   []uint16
	nv, ni    int
	gen       uint32

	box     gpath.Box
	batches int
}

// New creates a builder holding up to capVertices vertices and capIndices
// indices. capIndices must be a multiple of 3. Textured builders carry a
// 3-component texture coordinate per vertex.
func New(target Target, capVertices, capIndices int, textured bool) (*Builder, error) {
	if capVertices < 3 || capVertices > maxCapacity {
		return nil, fmt.Errorf("mesh: vertex capacity %d out of range: %w", capVertices, gpath.ErrInvariant)
	}
	if capIndices < 3 || capIndices%3 != 0 {
		return nil, fmt.Errorf("mesh: index capacity %d is not a positive multiple of 3: %w", capIndices, gpath.ErrInvariant)
	}
	return &Builder{
		target:   target,
		textured: textured,
		cur:      newStore(capVertices, textured),
		prev:     newStore(capVertices, textured),
		indices:  make([]uint16, capIndices),
		gen:      1,
		box:      gpath.EmptyBox(),
	}, nil
}

// Textured reports whether the builder carries texture coordinates.
func (b *Builder) Textured() bool {
	return b.textured
}

// AddVertex appends a vertex and returns its handle.
func (b *Builder) AddVertex(x, y float32) (Handle, error) {
	return b.addVertex(x, y, f32.Vec3{})
}

// AddVertexTex appends a vertex with a texture coordinate. On an untextured
// builder the coordinate is dropped.
func (b *Builder) AddVertexTex(x, y float32, tc f32.Vec3) (Handle, error) {
	return b.addVertex(x, y, tc)
}

func (b *Builder) addVertex(x, y float32, tc f32.Vec3) (Handle, error) {
	if b.nv == len(b.cur.pos) {
		if b.ni%3 != 0 {
			return Handle{}, fmt.Errorf("mesh: vertex %d with %d pending indices: %w",
				b.nv, b.ni%3, gpath.ErrCapacityExceeded)
		}
		if err := b.Render(); err != nil {
			return Handle{}, err
		}
	}

	slot := b.nv
	b.cur.pos[slot] = f32.Vec3{x, y, 0}
	if b.textured {
		b.cur.tex[slot] = tc
	}
	b.nv++
	b.box = b.box.Add(float64(x), float64(y))
	return Handle{gen: b.gen, slot: uint16(slot)}, nil
}

// AddIndex appends an index referring to *h. If *h was written before the
// most recent flush, its vertex is copied into the current batch first and
// *h is updated to the copy. When the index array becomes full the builder
// renders.
func (b *Builder) AddIndex(h *Handle) error {
	switch h.gen {
	case 0:
		return fmt.Errorf("mesh: zero vertex handle: %w", gpath.ErrInvariant)
	case b.gen:
		if int(h.slot) >= b.nv {
			return fmt.Errorf("mesh: handle slot %d beyond %d vertices: %w", h.slot, b.nv, gpath.ErrInvariant)
		}
	case b.gen - 1:
		tc := f32.Vec3{}
		if b.textured {
			tc = b.prev.tex[h.slot]
		}
		p := b.prev.pos[h.slot]
		fresh, err := b.addVertex(p[0], p[1], tc)
		if err != nil {
			return err
		}
		*h = fresh
	default:
		return fmt.Errorf("mesh: stale handle from generation %d (current %d): %w", h.gen, b.gen, gpath.ErrInvariant)
	}

	b.indices[b.ni] = h.slot
	b.ni++
	if b.ni < len(b.indices) {
		return nil
	}
	return b.Render()
}

// Retract removes the most recently added vertex if h refers to it. It
// reports whether the vertex was removed. Bounds are not shrunk.
func (b *Builder) Retract(h Handle) bool {
	if h.gen != b.gen || int(h.slot) != b.nv-1 {
		return false
	}
	for i := 0; i < b.ni; i++ {
		if b.indices[i] == h.slot {
			return false
		}
	}
	b.nv--
	return true
}

// Render submits the queued triangles to the target and starts a new
// generation. With fewer than 3 queued indices nothing is drawn but the
// builder is still reset. A queued index count that is not a multiple of 3
// is an invariant violation.
func (b *Builder) Render() error {
	if b.ni >= 3 {
		if b.ni%3 != 0 {
			return fmt.Errorf("mesh: render with %d indices: %w", b.ni, gpath.ErrInvariant)
		}
		batch := Batch{
			Positions: b.cur.pos[:b.nv],
			Indices:   b.indices[:b.ni],
		}
		if b.textured {
			batch.TexCoords = b.cur.tex[:b.nv]
		}
		gpath.Logger().Debug("mesh: flush",
			"vertices", b.nv, "indices", b.ni, "generation", b.gen, "textured", b.textured)
		if err := b.target.DrawTriangles(batch); err != nil {
			return fmt.Errorf("mesh: draw batch: %w", err)
		}
		b.batches++
	}

	// The submitted data becomes the previous generation so handles that
	// outlive this flush can be re-materialized from it.
	b.cur, b.prev = b.prev, b.cur
	b.gen++
	b.nv, b.ni = 0, 0
	return nil
}

// Reset discards queued vertices and indices without drawing, invalidates
// every outstanding handle and empties the bounding box.
func (b *Builder) Reset() {
	b.gen += 2
	b.nv, b.ni = 0, 0
	b.box = gpath.EmptyBox()
}

// Counts returns the number of queued vertices and indices.
func (b *Builder) Counts() (vertices, indices int) {
	return b.nv, b.ni
}

// Batches returns the number of batches submitted so far.
func (b *Builder) Batches() int {
	return b.batches
}

// Bounds returns the bounding box of every vertex added so far, including
// vertices already flushed.
func (b *Builder) Bounds() gpath.Box {
	return b.box
}

// SetBounds replaces the running bounding box. The deferred spline pass
// seeds its mesh with the stencil mesh's bounds this way.
func (b *Builder) SetBounds(box gpath.Box) {
	b.box = box
}
