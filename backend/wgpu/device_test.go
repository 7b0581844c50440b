//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/backend"
	"github.com/gogpu/gpath/render"
	"github.com/gogpu/gpath/surface"
)

func TestStencilOp(t *testing.T) {
	tests := []struct {
		in   gputypes.StencilOperation
		want wgpu.StencilOperation
	}{
		{gputypes.StencilOperationUndefined, wgpu.StencilOperationKeep},
		{gputypes.StencilOperationKeep, wgpu.StencilOperationKeep},
		{gputypes.StencilOperationZero, wgpu.StencilOperationZero},
		{gputypes.StencilOperationReplace, wgpu.StencilOperationReplace},
		{gputypes.StencilOperationInvert, wgpu.StencilOperationInvert},
		{gputypes.StencilOperationIncrementClamp, wgpu.StencilOperationIncrementClamp},
		{gputypes.StencilOperationDecrementClamp, wgpu.StencilOperationDecrementClamp},
		{gputypes.StencilOperationIncrementWrap, wgpu.StencilOperationIncrementWrap},
		{gputypes.StencilOperationDecrementWrap, wgpu.StencilOperationDecrementWrap},
	}
	for _, tt := range tests {
		if got := stencilOp(tt.in); got != tt.want {
			t.Errorf("stencilOp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestDepthStencilFillMask(t *testing.T) {
	st := render.InitialState(8, 8, false).FillMask(gpath.FillRuleNonZero)
	ds := depthStencil(st.DepthStencil(depthStencilFormat))

	want := wgpu.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      wgpu.StencilOperationKeep,
		DepthFailOp: wgpu.StencilOperationKeep,
		PassOp:      wgpu.StencilOperationIncrementWrap,
	}
	if diff := cmp.Diff(want, ds.StencilFront); diff != "" {
		t.Errorf("front face mismatch (-want +got):\n%s", diff)
	}
	want.PassOp = wgpu.StencilOperationDecrementWrap
	if diff := cmp.Diff(want, ds.StencilBack); diff != "" {
		t.Errorf("back face mismatch (-want +got):\n%s", diff)
	}
	if ds.Format != depthStencilFormat {
		t.Errorf("Format = %s, want %s", ds.Format, depthStencilFormat)
	}
}

func TestKeyOf(t *testing.T) {
	op := &render.RenderOperation{
		Topology: gputypes.PrimitiveTopologyTriangleList,
		State:    render.InitialState(8, 8, false),
		Paint:    render.Paint{Shader: render.ShaderSolid},
	}
	a := keyOf(op)
	if !a.blended {
		t.Error("source-over state gave an unblended key")
	}

	// The stencil reference and the transform are dynamic.
	op.State.StencilRef = 3
	op.State.Transform = gpath.Identity4()
	if b := keyOf(op); b != a {
		t.Error("dynamic state changed the pipeline key")
	}

	op.State = op.State.Cover()
	if c := keyOf(op); c == a {
		t.Error("cover state kept the pipeline key")
	}
	op.Layout = render.LayoutSpline
	if d := keyOf(op); d.layout != render.LayoutSpline {
		t.Errorf("layout = %s, want %s", d.layout, render.LayoutSpline)
	}
}

func TestEncodeUniforms(t *testing.T) {
	op := &render.RenderOperation{
		State: render.State{Transform: gpath.Translate4(5, 6, 7)},
		Paint: render.Paint{
			Shader:    render.ShaderRadial,
			Color:     gpath.RGBA{R: 1, G: 0.5, B: 0.25, A: 1},
			Extend:    gpath.ExtendReflect,
			Matrix:    gpath.Scale4(2, 3, 1),
			Constants: [4]float32{10, 20, 1, 4},
		},
	}
	var buf [uniformSize]byte
	for i := range buf {
		buf[i] = 0xee
	}
	encodeUniforms(&buf, op)

	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	// Column-major: the translation is the fourth column.
	if got := [3]float32{f(48), f(52), f(56)}; got != [3]float32{5, 6, 7} {
		t.Errorf("transform column 3 = %v, want [5 6 7]", got)
	}
	if got := [2]float32{f(64), f(64 + 20)}; got != [2]float32{2, 3} {
		t.Errorf("paint diagonal = %v, want [2 3]", got)
	}
	if got := [4]float32{f(128), f(132), f(136), f(140)}; got != [4]float32{1, 0.5, 0.25, 1} {
		t.Errorf("color = %v", got)
	}
	if got := [4]float32{f(144), f(148), f(152), f(156)}; got != op.Paint.Constants {
		t.Errorf("constants = %v, want %v", got, op.Paint.Constants)
	}
	if got := binary.LittleEndian.Uint32(buf[160:]); got != uint32(gpath.ExtendReflect) {
		t.Errorf("extend = %d, want %d", got, gpath.ExtendReflect)
	}
	for i := 164; i < uniformSize; i++ {
		if buf[i] != 0 {
			t.Fatalf("padding byte %d = %#x, want 0", i, buf[i])
		}
	}
}

func TestRampBytes(t *testing.T) {
	got := rampBytes([]uint32{0x80ff4020, 0x00000000})
	want := []byte{0xff, 0x40, 0x20, 0x80, 0, 0, 0, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rampBytes mismatch (-want +got):\n%s", diff)
	}
}

func TestAlign(t *testing.T) {
	tests := []struct{ n, a, want uint32 }{
		{0, 256, 0},
		{1, 256, 256},
		{256, 256, 256},
		{400, 256, 512},
		{6, 4, 8},
	}
	for _, tt := range tests {
		if got := align(tt.n, tt.a); got != tt.want {
			t.Errorf("align(%d, %d) = %d, want %d", tt.n, tt.a, got, tt.want)
		}
	}
}

// openDevice opens a GPU device or skips the test.
func openDevice(t *testing.T, w, h int) *Device {
	t.Helper()
	d, err := Open(render.NewPixmapTarget(w, h))
	if errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Skipf("no GPU: %v", err)
	}
	if err != nil {
		t.Skipf("GPU device setup failed: %v", err)
	}
	t.Cleanup(d.Release)
	return d
}

func TestGPUFillRectangle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping GPU test in short mode")
	}
	d := openDevice(t, 16, 16)
	res, err := render.NewResources(d, gpath.NewConfig())
	if err != nil {
		t.Fatal(err)
	}
	s, err := surface.New(res)
	res.Release()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	red := gpath.RGB(1, 0, 0)
	p := gpath.NewPath()
	p.Rectangle(4, 4, 8, 8)
	if err := s.Fill(gpath.OperatorOver, gpath.Solid(red), p, gpath.FillRuleNonZero, 0.25); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	img := d.target.Image()
	if got := img.RGBAAt(8, 8); got.R != 255 || got.A != 255 {
		t.Errorf("inside pixel = %v, want opaque red", got)
	}
	if got := img.RGBAAt(1, 1); got.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", got)
	}
	if d.Draws() == 0 {
		t.Error("no draws submitted")
	}
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendWGPU) {
		t.Fatal("wgpu backend not registered")
	}
}
