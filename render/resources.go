// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/internal/cache"
	"github.com/gogpu/gpath/internal/mesh"
	"github.com/gogpu/gpath/internal/source"
)

// ErrReleased is returned when drawing through resources whose last
// reference has been released.
var ErrReleased = errors.New("render: resources released")

// quadVertices is the number of vertices of a cover quad.
const quadVertices = 4

// Resources is the shared GPU context of every surface on one device: the
// hardware vertex and index buffers, the fragment programs and the color
// ramp. It is reference counted; the hardware objects are destroyed when
// the last reference is released.
type Resources struct {
	dev  Device
	cfg  gpath.Config
	caps Capabilities

	positions Buffer
	texcoords Buffer
	indices   Buffer
	ramp      Ramp
	programs  [ProgramCubicFill + 1]Program

	// ramps caches texels by rampKey. loaded is the key of the texels
	// currently in ramp, empty when unknown.
	rampMu sync.Mutex
	ramps  *cache.Cache[string, []uint32]
	loaded string

	refs atomic.Int32
}

// NewResources creates the buffers, ramp and programs for dev. The result
// holds one reference.
//
// Programs are compiled only when cfg.FragmentPrograms is set and the
// device reports fragment-program support. A program that fails to compile
// is logged and left out; the features that need it become unavailable.
func NewResources(dev Device, cfg gpath.Config) (*Resources, error) {
	r := &Resources{dev: dev, cfg: cfg, caps: dev.Capabilities()}
	capacity := max(cfg.MeshCapacity, quadVertices)

	var err error
	if r.positions, err = dev.CreateBuffer(BufferPosition, capacity); err != nil {
		return nil, fmt.Errorf("render: position buffer: %w", err)
	}
	if r.texcoords, err = dev.CreateBuffer(BufferTexCoord, capacity); err != nil {
		r.destroy()
		return nil, fmt.Errorf("render: texcoord buffer: %w", err)
	}
	if r.indices, err = dev.CreateBuffer(BufferIndex, capacity); err != nil {
		r.destroy()
		return nil, fmt.Errorf("render: index buffer: %w", err)
	}
	if cfg.RampWidth > 0 {
		if r.ramp, err = dev.CreateRamp(cfg.RampWidth); err != nil {
			r.destroy()
			return nil, fmt.Errorf("render: color ramp: %w", err)
		}
		if cfg.RampCache > 0 {
			r.ramps = cache.New[string, []uint32](cfg.RampCache)
		}
	}

	if cfg.FragmentPrograms && r.caps.FragmentPrograms {
		for kind := range r.programs {
			p, err := dev.CreateProgram(ProgramKind(kind))
			if err != nil {
				gpath.Logger().Warn("render: program unavailable",
					"program", ProgramKind(kind), "err", err)
				continue
			}
			r.programs[kind] = p
		}
	}

	r.refs.Store(1)
	gpath.Logger().Debug("render: resources",
		"capacity", capacity, "ramp", cfg.RampWidth,
		"radial", r.programs[ProgramRadial] != nil,
		"cubicFill", r.programs[ProgramCubicFill] != nil,
		"device", r.caps.DeviceName)
	return r, nil
}

// Acquire adds a reference and returns r.
func (r *Resources) Acquire() *Resources {
	r.refs.Add(1)
	return r
}

// Release drops a reference. The last release destroys the hardware
// objects.
func (r *Resources) Release() {
	switch n := r.refs.Add(-1); {
	case n == 0:
		r.destroy()
		gpath.Logger().Debug("render: resources destroyed")
	case n < 0:
		gpath.Logger().Warn("render: resources released too often", "refs", n)
	}
}

// Refs returns the current reference count.
func (r *Resources) Refs() int {
	return int(r.refs.Load())
}

func (r *Resources) destroy() {
	for _, b := range []Buffer{r.positions, r.texcoords, r.indices} {
		if b != nil {
			b.Destroy()
		}
	}
	r.positions, r.texcoords, r.indices = nil, nil, nil
	if r.ramp != nil {
		r.ramp.Destroy()
		r.ramp = nil
	}
	for i, p := range r.programs {
		if p != nil {
			p.Destroy()
			r.programs[i] = nil
		}
	}
}

// Device returns the device the resources belong to.
func (r *Resources) Device() Device {
	return r.dev
}

// Config returns the configuration the resources were created with.
func (r *Resources) Config() gpath.Config {
	return r.cfg
}

// Capabilities returns the device capabilities.
func (r *Resources) Capabilities() Capabilities {
	return r.caps
}

// Program returns the compiled program of kind, or nil when unavailable.
func (r *Resources) Program(kind ProgramKind) Program {
	if kind < 0 || int(kind) >= len(r.programs) {
		return nil
	}
	return r.programs[kind]
}

// SplineFill reports whether fills evaluate curves in the cubic fill
// program.
func (r *Resources) SplineFill() bool {
	return r.cfg.GPUSplineFill && r.programs[ProgramCubicFill] != nil
}

// Ramp returns the gradient color ramp texture.
func (r *Resources) Ramp() Ramp {
	return r.ramp
}

// LoadRamp uploads gradient texels to the color ramp.
func (r *Resources) LoadRamp(texels []uint32) error {
	if r.ramp == nil {
		return fmt.Errorf("render: no color ramp: %w", gpath.ErrUnsupportedPattern)
	}
	r.rampMu.Lock()
	defer r.rampMu.Unlock()
	r.loaded = ""
	return r.dev.WriteRamp(r.ramp, texels)
}

// LoadGradient fills the color ramp with the gradient of stops. Computed
// texels are cached, and nothing is uploaded when the ramp already holds
// this gradient.
func (r *Resources) LoadGradient(stops []gpath.ColorStop, extend gpath.ExtendMode) error {
	if r.ramp == nil {
		return fmt.Errorf("render: no color ramp: %w", gpath.ErrUnsupportedPattern)
	}
	width := r.ramp.Width()
	build := func() []uint32 { return source.Ramp(stops, extend, width) }

	r.rampMu.Lock()
	defer r.rampMu.Unlock()
	if r.ramps == nil {
		r.loaded = ""
		return r.dev.WriteRamp(r.ramp, build())
	}
	key := rampKey(stops, extend, width)
	if key == r.loaded {
		return nil
	}
	if err := r.dev.WriteRamp(r.ramp, r.ramps.GetOrCreate(key, build)); err != nil {
		r.loaded = ""
		return err
	}
	r.loaded = key
	return nil
}

// RampStats returns the counters of the gradient ramp cache.
func (r *Resources) RampStats() cache.Stats {
	if r.ramps == nil {
		return cache.Stats{}
	}
	return r.ramps.Stats()
}

// rampKey encodes everything that determines the texels of a ramp. Stops
// are encoded in the order given; callers pass them sorted.
func rampKey(stops []gpath.ColorStop, extend gpath.ExtendMode, width int) string {
	b := make([]byte, 0, 16+40*len(stops))
	b = binary.LittleEndian.AppendUint64(b, uint64(width))
	b = binary.LittleEndian.AppendUint64(b, uint64(extend))
	for _, s := range stops {
		for _, f := range [...]float64{s.Offset, s.Color.R, s.Color.G, s.Color.B, s.Color.A} {
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
		}
	}
	return string(b)
}

// Draw uploads a mesh batch and renders it as an indexed triangle list.
func (r *Resources) Draw(b mesh.Batch, layout Layout, s State, p Paint) error {
	if r.positions == nil {
		return ErrReleased
	}
	if len(b.Positions) > r.positions.Len() || len(b.Indices) > r.indices.Len() {
		return fmt.Errorf("render: batch of %d vertices, %d indices: %w",
			len(b.Positions), len(b.Indices), gpath.ErrCapacityExceeded)
	}
	if err := r.dev.WriteVertices(r.positions, b.Positions); err != nil {
		return err
	}
	op := &RenderOperation{
		Topology:  gputypes.PrimitiveTopologyTriangleList,
		Layout:    layout,
		Positions: r.positions,
		Indices:   r.indices,
		Count:     len(b.Indices),
		State:     s,
		Paint:     p,
	}
	if layout.Textured() {
		if len(b.TexCoords) != len(b.Positions) {
			return fmt.Errorf("render: %s layout needs texture coordinates: %w", layout, gpath.ErrInvariant)
		}
		if err := r.dev.WriteVertices(r.texcoords, b.TexCoords); err != nil {
			return err
		}
		op.TexCoords = r.texcoords
	}
	if err := r.dev.WriteIndices(r.indices, b.Indices); err != nil {
		return err
	}
	return r.dev.Render(op)
}

// DrawQuad renders the rectangle box as a four-vertex triangle strip.
// Empty boxes draw nothing.
func (r *Resources) DrawQuad(box gpath.Box, s State, p Paint) error {
	if r.positions == nil {
		return ErrReleased
	}
	if box.IsEmpty() {
		return nil
	}
	left, top := float32(box.MinX), float32(box.MinY)
	right, bottom := float32(box.MaxX), float32(box.MaxY)
	quad := []f32.Vec3{
		{right, top, 0},
		{left, top, 0},
		{right, bottom, 0},
		{left, bottom, 0},
	}
	if err := r.dev.WriteVertices(r.positions, quad); err != nil {
		return err
	}
	return r.dev.Render(&RenderOperation{
		Topology:  gputypes.PrimitiveTopologyTriangleStrip,
		Layout:    LayoutSource,
		Positions: r.positions,
		Count:     quadVertices,
		State:     s,
		Paint:     p,
	})
}

// Pass is a draw configuration that mesh builders flush into. Its state
// and paint may change between flushes.
type Pass struct {
	res *Resources

	Layout Layout
	State  State
	Paint  Paint
}

// NewPass returns a pass drawing with layout through r.
func (r *Resources) NewPass(layout Layout) *Pass {
	return &Pass{res: r, Layout: layout}
}

// DrawTriangles implements mesh.Target.
func (p *Pass) DrawTriangles(b mesh.Batch) error {
	return p.res.Draw(b, p.Layout, p.State, p.Paint)
}

// NewMesh returns a mesh builder sized to the hardware buffers that
// flushes into p.
func (p *Pass) NewMesh() (*mesh.Builder, error) {
	capacity := p.res.cfg.MeshCapacity
	return mesh.New(p, capacity, capacity, p.Layout.Textured())
}

var _ mesh.Target = (*Pass)(nil)
