package soft

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/render"
)

// Vertices are snapped to 1/256 pixel before rasterization, so coverage
// decisions are exact integer arithmetic.
const (
	subpixelBits = 8
	subpixel     = 1 << subpixelBits
	halfSubpixel = subpixel / 2
)

type vertex struct {
	x, y int64 // pixel coordinates in subpixel units, y down
	z    float32
	tc   f32.Vec3
}

// project maps p through the world transform to snapped pixel space.
func (d *Device) project(m gpath.Matrix4, p f32.Vec3) vertex {
	v := m.Apply(p[0], p[1], p[2])
	w := v[3]
	if w == 0 {
		w = 1
	}
	px := (v[0]/w + 1) * 0.5 * float32(d.w)
	py := (1 - v[1]/w) * 0.5 * float32(d.h)
	return vertex{
		x: int64(math32.Round(px * subpixel)),
		y: int64(math32.Round(py * subpixel)),
		z: v[2] / w,
	}
}

// Render implements render.Device.
func (d *Device) Render(op *render.RenderOperation) error {
	pos, err := d.own(op.Positions, render.BufferPosition)
	if err != nil {
		return err
	}
	var tex *buffer
	if op.Layout.Textured() {
		if op.TexCoords == nil {
			return fmt.Errorf("soft: %s layout without texture coordinates: %w", op.Layout, gpath.ErrInvariant)
		}
		if tex, err = d.own(op.TexCoords, render.BufferTexCoord); err != nil {
			return err
		}
	}
	sh, err := d.shader(&op.Paint)
	if err != nil {
		return err
	}
	if err := checkBlend(op.State.Blend); err != nil {
		return err
	}

	fetch := func(i int) (vertex, error) {
		if i >= pos.n {
			return vertex{}, fmt.Errorf("soft: vertex %d beyond %d: %w", i, pos.n, gpath.ErrInvariant)
		}
		v := d.project(op.State.Transform, pos.vertices[i])
		if tex != nil {
			v.tc = tex.vertices[i]
		}
		return v, nil
	}

	var ids func(i int) (int, error)
	if op.Indices != nil {
		idx, err := d.own(op.Indices, render.BufferIndex)
		if err != nil {
			return err
		}
		if op.Count > idx.n {
			return fmt.Errorf("soft: %d indices beyond %d: %w", op.Count, idx.n, gpath.ErrInvariant)
		}
		ids = func(i int) (int, error) { return int(idx.indices[i]), nil }
	} else {
		ids = func(i int) (int, error) { return i, nil }
	}

	tri := func(i0, i1, i2 int) error {
		var v [3]vertex
		for k, i := range [3]int{i0, i1, i2} {
			id, err := ids(i)
			if err != nil {
				return err
			}
			if v[k], err = fetch(id); err != nil {
				return err
			}
		}
		d.triangle(v[0], v[1], v[2], op, sh)
		return nil
	}

	switch op.Topology {
	case gputypes.PrimitiveTopologyTriangleList:
		if op.Count%3 != 0 {
			return fmt.Errorf("soft: triangle list of %d vertices: %w", op.Count, gpath.ErrInvariant)
		}
		for i := 0; i+2 < op.Count; i += 3 {
			if err := tri(i, i+1, i+2); err != nil {
				return err
			}
		}
	case gputypes.PrimitiveTopologyTriangleStrip:
		for i := 0; i+2 < op.Count; i++ {
			a, b := i, i+1
			if i%2 == 1 {
				a, b = b, a
			}
			if err := tri(a, b, i+2); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("soft: unsupported topology %s", op.Topology)
	}
	d.draws++
	return nil
}

// orient returns twice the signed area of a, b, c in subpixel units.
// Positive is clockwise on screen.
func orient(a, b, c vertex) int64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// edge evaluates the edge a->b at the subpixel point (px, py).
func edge(a, b vertex, px, py int64) int64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether a->b is a top or left edge of a clockwise
// triangle. Pixel centers exactly on such edges are covered; centers on
// other edges are not, so triangles sharing an edge never both cover a
// pixel.
func topLeft(a, b vertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return (dy == 0 && dx > 0) || dy < 0
}

func covers(e int64, tl bool) bool {
	return e > 0 || (e == 0 && tl)
}

// triangle rasterizes one triangle. Front faces are counter-clockwise in
// normalized device coordinates, a negative orient in y-down pixel space.
func (d *Device) triangle(a, b, c vertex, op *render.RenderOperation, sh shader) {
	area := orient(a, b, c)
	if area == 0 {
		return
	}
	front := area < 0
	switch op.State.Cull {
	case gputypes.CullModeFront:
		if front {
			return
		}
	case gputypes.CullModeBack:
		if !front {
			return
		}
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := min(a.x, b.x, c.x)
	maxX := max(a.x, b.x, c.x)
	minY := min(a.y, b.y, c.y)
	maxY := max(a.y, b.y, c.y)
	x0 := max(0, int(floorDiv(minX-halfSubpixel, subpixel)))
	x1 := min(d.w-1, int(floorDiv(maxX, subpixel)))
	y0 := max(0, int(floorDiv(minY-halfSubpixel, subpixel)))
	y1 := min(d.h-1, int(floorDiv(maxY, subpixel)))

	tlAB, tlBC, tlCA := topLeft(a, b), topLeft(b, c), topLeft(c, a)
	inv := 1 / float32(area)

	for y := y0; y <= y1; y++ {
		py := int64(y)*subpixel + halfSubpixel
		for x := x0; x <= x1; x++ {
			px := int64(x)*subpixel + halfSubpixel
			eBC := edge(b, c, px, py)
			eCA := edge(c, a, px, py)
			eAB := edge(a, b, px, py)
			if !covers(eBC, tlBC) || !covers(eCA, tlCA) || !covers(eAB, tlAB) {
				continue
			}
			la, lb, lc := float32(eBC)*inv, float32(eCA)*inv, float32(eAB)*inv
			f := fragment{
				x:     x,
				y:     y,
				z:     la*a.z + lb*b.z + lc*c.z,
				front: front,
			}
			for k := range f.tc {
				f.tc[k] = la*a.tc[k] + lb*b.tc[k] + lc*c.tc[k]
			}
			d.process(f, op, sh)
		}
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

type fragment struct {
	x, y  int
	z     float32
	tc    f32.Vec3
	front bool
}

// process runs the per-fragment pipeline: program discard, stencil test,
// depth test, stencil update, depth write and blending.
func (d *Device) process(f fragment, op *render.RenderOperation, sh shader) {
	color, keep := sh(float32(f.x)+0.5, float32(f.y)+0.5, f.tc)
	if !keep {
		return
	}
	st := &op.State
	i := f.y*d.w + f.x

	face := st.StencilFront
	if !f.front {
		face = st.StencilBack
	}
	if st.StencilTest && !compare(face.Compare, float32(st.StencilRef), float32(d.stencil[i])) {
		d.stencil[i] = stencilOp(face.FailOp, d.stencil[i], st.StencilRef)
		return
	}
	if st.DepthTest && !compare(st.DepthCompare, f.z, d.depth[i]) {
		if st.StencilTest {
			d.stencil[i] = stencilOp(face.DepthFailOp, d.stencil[i], st.StencilRef)
		}
		return
	}
	if st.StencilTest {
		d.stencil[i] = stencilOp(face.PassOp, d.stencil[i], st.StencilRef)
	}
	if st.DepthWrite {
		d.depth[i] = f.z
	}
	if st.ColorWrite {
		d.fragments++
		d.blend(f.x, f.y, color, st.Blend)
	}
}

// compare applies fn as "value fn stored".
func compare(fn gputypes.CompareFunction, value, stored float32) bool {
	switch fn {
	case gputypes.CompareFunctionNever:
		return false
	case gputypes.CompareFunctionLess:
		return value < stored
	case gputypes.CompareFunctionEqual:
		return value == stored
	case gputypes.CompareFunctionLessEqual:
		return value <= stored
	case gputypes.CompareFunctionGreater:
		return value > stored
	case gputypes.CompareFunctionNotEqual:
		return value != stored
	case gputypes.CompareFunctionGreaterEqual:
		return value >= stored
	default:
		return true
	}
}

func stencilOp(op gputypes.StencilOperation, v, ref uint8) uint8 {
	switch op {
	case gputypes.StencilOperationZero:
		return 0
	case gputypes.StencilOperationReplace:
		return ref
	case gputypes.StencilOperationInvert:
		return ^v
	case gputypes.StencilOperationIncrementClamp:
		if v == 0xff {
			return v
		}
		return v + 1
	case gputypes.StencilOperationDecrementClamp:
		if v == 0 {
			return v
		}
		return v - 1
	case gputypes.StencilOperationIncrementWrap:
		return v + 1
	case gputypes.StencilOperationDecrementWrap:
		return v - 1
	default:
		return v
	}
}
