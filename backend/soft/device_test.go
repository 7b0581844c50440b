package soft

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/backend"
	"github.com/gogpu/gpath/render"
)

type fixture struct {
	dev       *Device
	positions render.Buffer
	texcoords render.Buffer
	indices   render.Buffer
}

func newFixture(t *testing.T, w, h int, opts ...Option) *fixture {
	t.Helper()
	dev := New(render.NewPixmapTarget(w, h), opts...)
	f := &fixture{dev: dev}
	var err error
	if f.positions, err = dev.CreateBuffer(render.BufferPosition, 64); err != nil {
		t.Fatal(err)
	}
	if f.texcoords, err = dev.CreateBuffer(render.BufferTexCoord, 64); err != nil {
		t.Fatal(err)
	}
	if f.indices, err = dev.CreateBuffer(render.BufferIndex, 64); err != nil {
		t.Fatal(err)
	}
	return f
}

// triangles draws an indexed triangle list over pts.
func (f *fixture) triangles(t *testing.T, pts []f32.Vec3, idx []uint16, st render.State, p render.Paint) {
	t.Helper()
	if err := f.dev.WriteVertices(f.positions, pts); err != nil {
		t.Fatal(err)
	}
	if err := f.dev.WriteIndices(f.indices, idx); err != nil {
		t.Fatal(err)
	}
	err := f.dev.Render(&render.RenderOperation{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		Layout:    render.LayoutStencil,
		Positions: f.positions,
		Indices:   f.indices,
		Count:     len(idx),
		State:     st,
		Paint:     p,
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}

func quad(x0, y0, x1, y1 float32) []f32.Vec3 {
	return []f32.Vec3{{x0, y0, 0}, {x1, y0, 0}, {x1, y1, 0}, {x0, y1, 0}}
}

func countStencil(d *Device) map[uint8]int {
	out := map[uint8]int{}
	for _, v := range d.stencil {
		out[v]++
	}
	return out
}

func TestSharedEdgeCoveredOnce(t *testing.T) {
	tests := []struct {
		name string
		pts  []f32.Vec3
		want int
	}{
		{"axis aligned", quad(2, 2, 6, 6), 16},
		{"fractional", quad(1.5, 2.25, 5.5, 6.25), 16},
		{"half pixel edges", quad(0.5, 0.5, 3.5, 2.5), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 8, 8)
			st := render.InitialState(8, 8, false)
			st.ColorWrite = false
			st.StencilTest = true
			st.StencilFront = gputypes.StencilFaceState{
				Compare: gputypes.CompareFunctionAlways, PassOp: gputypes.StencilOperationIncrementClamp,
			}
			st.StencilBack = st.StencilFront
			f.triangles(t, tt.pts, []uint16{0, 1, 2, 0, 2, 3}, st, render.Paint{})

			got := countStencil(f.dev)
			if got[1] != tt.want || got[2] != 0 {
				t.Errorf("stencil histogram %v, want %d pixels at 1 and none at 2", got, tt.want)
			}
		})
	}
}

func TestAdjacentQuadsTile(t *testing.T) {
	f := newFixture(t, 8, 8)
	st := render.InitialState(8, 8, false)
	st.StencilTest = true
	st.StencilFront = gputypes.StencilFaceState{
		Compare: gputypes.CompareFunctionAlways, PassOp: gputypes.StencilOperationIncrementClamp,
	}
	st.StencilBack = st.StencilFront

	pts := append(quad(0.3, 0.3, 4.7, 5.2), quad(4.7, 0.3, 6.2, 5.2)...)
	f.triangles(t, pts, []uint16{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}, st, render.Paint{})
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := uint8(0)
			if x <= 5 && y <= 4 {
				want = 1
			}
			if got := f.dev.Stencil(x, y); got != want {
				t.Errorf("stencil(%d, %d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestWindingFaces(t *testing.T) {
	f := newFixture(t, 8, 8)
	st := render.InitialState(8, 8, false).FillMask(gpath.FillRuleNonZero)

	ccw := []f32.Vec3{{1, 1, 0}, {1, 7, 0}, {7, 7, 0}} // counter-clockwise on screen
	f.triangles(t, ccw, []uint16{0, 1, 2}, st, render.Paint{})
	if got := f.dev.Stencil(2, 5); got != 1 {
		t.Errorf("front face stencil = %d, want 1", got)
	}
	f.triangles(t, ccw, []uint16{0, 2, 1}, st, render.Paint{})
	f.triangles(t, ccw, []uint16{0, 2, 1}, st, render.Paint{})
	if got := f.dev.Stencil(2, 5); got != 0xff {
		t.Errorf("stencil after two back faces = %d, want 255", got)
	}
}

func TestStripQuadSolid(t *testing.T) {
	f := newFixture(t, 6, 4)
	red := gpath.RGB(1, 0, 0)
	pts := []f32.Vec3{{5, 1, 0}, {1, 1, 0}, {5, 3, 0}, {1, 3, 0}}
	if err := f.dev.WriteVertices(f.positions, pts); err != nil {
		t.Fatal(err)
	}
	err := f.dev.Render(&render.RenderOperation{
		Topology:  gputypes.PrimitiveTopologyTriangleStrip,
		Positions: f.positions,
		Count:     4,
		State:     render.InitialState(6, 4, false),
		Paint:     render.Paint{Shader: render.ShaderSolid, Color: red},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img := f.dev.Pixmap().Image()
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			c := img.RGBAAt(x, y)
			inside := x >= 1 && x < 5 && y >= 1 && y < 3
			if inside != (c.R == 255 && c.A == 255) {
				t.Errorf("pixel (%d, %d) = %v, inside %v", x, y, c, inside)
			}
		}
	}
	if draws, frags := f.dev.Stats(); draws != 1 || frags != 8 {
		t.Errorf("Stats() = %d draws, %d fragments, want 1, 8", draws, frags)
	}
}

func TestStencilOp(t *testing.T) {
	tests := []struct {
		op   gputypes.StencilOperation
		v    uint8
		want uint8
	}{
		{gputypes.StencilOperationKeep, 7, 7},
		{gputypes.StencilOperationZero, 7, 0},
		{gputypes.StencilOperationReplace, 7, 3},
		{gputypes.StencilOperationInvert, 0, 0xff},
		{gputypes.StencilOperationInvert, 0xff, 0},
		{gputypes.StencilOperationIncrementClamp, 0xff, 0xff},
		{gputypes.StencilOperationIncrementClamp, 4, 5},
		{gputypes.StencilOperationDecrementClamp, 0, 0},
		{gputypes.StencilOperationIncrementWrap, 0xff, 0},
		{gputypes.StencilOperationDecrementWrap, 0, 0xff},
	}
	for _, tt := range tests {
		if got := stencilOp(tt.op, tt.v, 3); got != tt.want {
			t.Errorf("stencilOp(%s, %d) = %d, want %d", tt.op, tt.v, got, tt.want)
		}
	}
}

func TestSample(t *testing.T) {
	texels := []uint32{0xffff0000, 0xff00ff00, 0xff0000ff, 0xffffffff}
	red := [4]float32{1, 0, 0, 1}
	green := [4]float32{0, 1, 0, 1}
	blue := [4]float32{0, 0, 1, 1}
	white := [4]float32{1, 1, 1, 1}
	tests := []struct {
		name   string
		extend gpath.ExtendMode
		t      float32
		want   [4]float32
	}{
		{"inside", gpath.ExtendPad, 0.3, green},
		{"end", gpath.ExtendPad, 1, white},
		{"pad below", gpath.ExtendPad, -3, red},
		{"pad above", gpath.ExtendPad, 7, white},
		{"none below", gpath.ExtendNone, -0.1, [4]float32{}},
		{"none above", gpath.ExtendNone, 1.1, [4]float32{}},
		{"repeat", gpath.ExtendRepeat, 1.6, blue},
		{"repeat negative", gpath.ExtendRepeat, -0.1, white},
		{"reflect", gpath.ExtendReflect, 1.1, white},
		{"reflect twice", gpath.ExtendReflect, 1.9, red},
		{"reflect negative", gpath.ExtendReflect, -0.3, green},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sample(texels, tt.extend, tt.t); got != tt.want {
				t.Errorf("sample(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestBlendSourceOver(t *testing.T) {
	f := newFixture(t, 4, 4)
	if err := f.dev.Clear(render.ClearColor, gpath.White, 1, 0); err != nil {
		t.Fatal(err)
	}
	f.triangles(t, quad(0, 0, 4, 4), []uint16{0, 1, 2, 0, 2, 3},
		render.InitialState(4, 4, false),
		render.Paint{Shader: render.ShaderSolid, Color: gpath.NewRGBA(1, 0, 0, 0.5)})

	got := f.dev.Pixmap().Image().RGBAAt(1, 1)
	want := [4]float32{255, 128, 128, 255}
	have := [4]float32{float32(got.R), float32(got.G), float32(got.B), float32(got.A)}
	if diff := cmp.Diff(want, have, cmpopts.EquateApprox(0, 1)); diff != "" {
		t.Errorf("half red over white mismatch (-want +got):\n%s", diff)
	}
}

func TestCubicFillDiscards(t *testing.T) {
	f := newFixture(t, 8, 8)
	prog, err := f.dev.CreateProgram(render.ProgramCubicFill)
	if err != nil {
		t.Fatal(err)
	}
	// k runs from -1 at x=0 to 1 at x=8 while l = m = 0: the curve test
	// k³ <= 0 keeps the left half.
	pts := quad(0, 0, 8, 8)
	tcs := []f32.Vec3{{-1, 0, 0}, {1, 0, 0}, {1, 0, 0}, {-1, 0, 0}}
	if err := f.dev.WriteVertices(f.positions, pts); err != nil {
		t.Fatal(err)
	}
	if err := f.dev.WriteVertices(f.texcoords, tcs); err != nil {
		t.Fatal(err)
	}
	if err := f.dev.WriteIndices(f.indices, []uint16{0, 1, 2, 0, 2, 3}); err != nil {
		t.Fatal(err)
	}
	st := render.InitialState(8, 8, false).FillMask(gpath.FillRuleEvenOdd)
	err = f.dev.Render(&render.RenderOperation{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		Layout:    render.LayoutSpline,
		Positions: f.positions,
		TexCoords: f.texcoords,
		Indices:   f.indices,
		Count:     6,
		State:     st,
		Paint:     render.Paint{Shader: render.ShaderCubicFill, Program: prog},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for x := 0; x < 8; x++ {
		want := uint8(0)
		if x < 4 {
			want = 0xff
		}
		if got := f.dev.Stencil(x, 3); got != want {
			t.Errorf("stencil(%d, 3) = %#x, want %#x", x, got, want)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	f := newFixture(t, 4, 4)
	other := newFixture(t, 4, 4)

	tests := []struct {
		name string
		op   render.RenderOperation
		want error
	}{
		{
			name: "foreign buffer",
			op:   render.RenderOperation{Positions: other.positions, Count: 3},
			want: ErrForeignObject,
		},
		{
			name: "spline without texcoords",
			op:   render.RenderOperation{Layout: render.LayoutSpline, Positions: f.positions, Count: 3},
			want: gpath.ErrInvariant,
		},
		{
			name: "partial triangle",
			op:   render.RenderOperation{Positions: f.positions, Count: 4},
			want: gpath.ErrInvariant,
		},
		{
			name: "radial without program",
			op: render.RenderOperation{
				Positions: f.positions, Count: 3,
				Paint: render.Paint{Shader: render.ShaderRadial},
			},
			want: ErrForeignObject,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := tt.op
			if err := f.dev.Render(&op); !errors.Is(err, tt.want) {
				t.Errorf("Render() error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := f.dev.WriteVertices(f.positions, make([]f32.Vec3, 65)); !errors.Is(err, gpath.ErrCapacityExceeded) {
		t.Errorf("oversized write error = %v, want ErrCapacityExceeded", err)
	}
}

func TestWithoutFragmentPrograms(t *testing.T) {
	dev := New(render.NewPixmapTarget(2, 2), WithoutFragmentPrograms())
	if dev.Capabilities().FragmentPrograms {
		t.Error("FragmentPrograms reported")
	}
	if _, err := dev.CreateProgram(render.ProgramRadial); err == nil {
		t.Error("CreateProgram() succeeded")
	}
}

func TestClearDepthStencil(t *testing.T) {
	dev := New(render.NewPixmapTarget(3, 3))
	if dev.Depth(1, 1) != 1 || dev.Stencil(1, 1) != 0 {
		t.Fatalf("initial depth %v stencil %d", dev.Depth(1, 1), dev.Stencil(1, 1))
	}
	if err := dev.Clear(render.ClearDepth|render.ClearStencil, gpath.Transparent, 0.5, 9); err != nil {
		t.Fatal(err)
	}
	if dev.Depth(2, 0) != 0.5 || dev.Stencil(0, 2) != 9 {
		t.Errorf("cleared depth %v stencil %d", dev.Depth(2, 0), dev.Stencil(0, 2))
	}
	if c := dev.Pixmap().Image().RGBAAt(0, 0); c.A != 0 {
		t.Errorf("color touched by a depth/stencil clear: %v", c)
	}
}

func TestRegistered(t *testing.T) {
	dev, err := backend.Open(backend.BackendSoft, 16, 8)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if tgt := dev.Target(); tgt.Width() != 16 || tgt.Height() != 8 {
		t.Errorf("target %dx%d, want 16x8", tgt.Width(), tgt.Height())
	}
}
