//go:build !nogpu

package wgpu

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	_ "github.com/gogpu/wgpu/hal/allbackends"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/backend"
	"github.com/gogpu/gpath/render"
)

// ErrForeignObject is returned when a buffer, ramp or program created by
// another device is passed to this one.
var ErrForeignObject = errors.New("wgpu: object belongs to another device")

// ErrNotWGPUDevice is returned by NewFromHandle when the host handle does
// not carry a *wgpu.Device.
var ErrNotWGPUDevice = errors.New("wgpu: device handle is not a *wgpu.Device")

func init() {
	backend.Register(backend.BackendWGPU, func(width, height int) (render.Device, error) {
		return Open(render.NewPixmapTarget(width, height))
	})
}

// uniformSize is the byte size of the Uniforms block: two mat4x4<f32>,
// two vec4<f32> and a vec4<u32>.
const uniformSize = 2*64 + 3*16

// readbackAlign is the row alignment of texture to buffer copies.
const readbackAlign = 256

// Device is a render.Device on a wgpu device. Draws go to an offscreen
// color texture with a depth/stencil attachment; Flush copies the color
// texture back into the PixmapTarget.
type Device struct {
	dev    *wgpu.Device
	queue  *wgpu.Queue
	target *render.PixmapTarget
	w, h   int
	caps   render.Capabilities

	// release tears down the instance and adapter of an Open device.
	release func()

	color        *wgpu.Texture
	colorView    *wgpu.TextureView
	depth        *wgpu.Texture
	depthView    *wgpu.TextureView
	staging      *wgpu.Buffer
	bytesPerRow  uint32
	uniforms     *wgpu.Buffer
	bindLayout   *wgpu.BindGroupLayout
	layout       *wgpu.PipelineLayout
	cache        *pipelineCache
	blank        *ramp
	draws        int
	uniformBytes [uniformSize]byte
}

// Open creates a headless device on the first adapter wgpu finds and
// renders into target. It fails with backend.ErrBackendNotAvailable when
// no GPU can be opened.
func Open(target *render.PixmapTarget) (*Device, error) {
	instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{Backends: wgpu.BackendsAll})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", backend.ErrBackendNotAvailable, err)
	}
	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: request adapter: %w", backend.ErrBackendNotAvailable, err)
	}
	dev, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: request device: %w", backend.ErrBackendNotAvailable, err)
	}

	d, err := New(dev, target)
	if err != nil {
		dev.Release()
		adapter.Release()
		instance.Release()
		return nil, err
	}
	info := adapter.Info()
	d.caps.VendorName, d.caps.DeviceName = info.Vendor, info.Name
	d.release = func() {
		dev.Release()
		adapter.Release()
		instance.Release()
	}
	gpath.Logger().Info("wgpu: device opened", "adapter", info.Name, "backend", info.Backend)
	return d, nil
}

// NewFromHandle renders through the device of a host application, such
// as a windowing framework that already owns one.
func NewFromHandle(h render.DeviceHandle, target *render.PixmapTarget) (*Device, error) {
	dev, ok := h.Device().(*wgpu.Device)
	if !ok || dev == nil {
		return nil, ErrNotWGPUDevice
	}
	return New(dev, target)
}

// New creates a device drawing with dev into target. The color texture is
// initialized from the target pixels, depth to 1 and stencil to 0. The
// caller keeps ownership of dev.
func New(dev *wgpu.Device, target *render.PixmapTarget) (*Device, error) {
	w, h := target.Width(), target.Height()
	d := &Device{
		dev:    dev,
		queue:  dev.Queue(),
		target: target,
		w:      w,
		h:      h,
		caps: render.Capabilities{
			FragmentPrograms: true,
			MaxTextureSize:   dev.Limits().MaxTextureDimension2D,
			DeviceName:       "wgpu",
		},
		bytesPerRow: align(uint32(4*w), readbackAlign),
	}
	if d.caps.MaxTextureSize == 0 {
		d.caps.MaxTextureSize = 8192
	}
	if err := d.init(); err != nil {
		d.Release()
		return nil, err
	}
	return d, nil
}

func (d *Device) init() error {
	var err error
	size := wgpu.Extent3D{Width: uint32(d.w), Height: uint32(d.h), DepthOrArrayLayers: 1}

	d.color, err = d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "gpath_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.target.Format(),
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create color texture: %w", err)
	}
	if d.colorView, err = d.dev.CreateTextureView(d.color, nil); err != nil {
		return fmt.Errorf("wgpu: create color view: %w", err)
	}

	d.depth, err = d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "gpath_depth_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthStencilFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create depth/stencil texture: %w", err)
	}
	if d.depthView, err = d.dev.CreateTextureView(d.depth, nil); err != nil {
		return fmt.Errorf("wgpu: create depth/stencil view: %w", err)
	}

	d.staging, err = d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "gpath_readback",
		Size:  uint64(d.bytesPerRow) * uint64(d.h),
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create readback buffer: %w", err)
	}
	d.uniforms, err = d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "gpath_uniforms",
		Size:  uniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}

	d.bindLayout, err = d.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "gpath_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	d.layout, err = d.dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "gpath_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{d.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}

	d.cache = newPipelineCache(d.dev, d.target.Format(), d.layout)
	for _, s := range []render.Shader{render.ShaderSolid, render.ShaderLinear} {
		if err := d.cache.compile(s); err != nil {
			return err
		}
	}

	blank, err := d.CreateRamp(1)
	if err != nil {
		return err
	}
	d.blank = blank.(*ramp)

	if err := d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: d.color},
		d.target.Pixels(),
		&wgpu.ImageDataLayout{BytesPerRow: uint32(d.target.Stride()), RowsPerImage: uint32(d.h)},
		&size,
	); err != nil {
		return fmt.Errorf("wgpu: upload target: %w", err)
	}
	return d.Clear(render.ClearDepth|render.ClearStencil, gpath.Transparent, 1, 0)
}

// Release frees the GPU resources of d, and the device itself when it
// was created by Open.
func (d *Device) Release() {
	if d.cache != nil {
		d.cache.release()
		d.cache = nil
	}
	if d.blank != nil {
		d.blank.Destroy()
		d.blank = nil
	}
	if d.layout != nil {
		d.layout.Release()
		d.layout = nil
	}
	if d.bindLayout != nil {
		d.bindLayout.Release()
		d.bindLayout = nil
	}
	if d.uniforms != nil {
		d.uniforms.Release()
		d.uniforms = nil
	}
	if d.staging != nil {
		d.staging.Release()
		d.staging = nil
	}
	if d.depthView != nil {
		d.depthView.Release()
		d.depthView = nil
	}
	if d.depth != nil {
		d.depth.Release()
		d.depth = nil
	}
	if d.colorView != nil {
		d.colorView.Release()
		d.colorView = nil
	}
	if d.color != nil {
		d.color.Release()
		d.color = nil
	}
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

// Capabilities implements render.Device.
func (d *Device) Capabilities() render.Capabilities {
	return d.caps
}

// Target implements render.Device.
func (d *Device) Target() render.RenderTarget {
	return d.target
}

// Draws returns the number of draws submitted.
func (d *Device) Draws() int {
	return d.draws
}

type buffer struct {
	dev  *Device
	kind render.BufferKind
	n    int
	buf  *wgpu.Buffer
}

func (b *buffer) Kind() render.BufferKind { return b.kind }
func (b *buffer) Len() int                { return b.n }

func (b *buffer) Destroy() {
	if b.buf != nil {
		b.buf.Release()
		b.buf, b.n = nil, 0
	}
}

type ramp struct {
	dev   *Device
	width int
	tex   *wgpu.Texture
	view  *wgpu.TextureView
	group *wgpu.BindGroup
}

func (r *ramp) Width() int { return r.width }

func (r *ramp) Destroy() {
	if r.group != nil {
		r.group.Release()
		r.view.Release()
		r.tex.Release()
		r.group, r.view, r.tex = nil, nil, nil
	}
}

type program struct {
	dev  *Device
	kind render.ProgramKind
}

func (p *program) Kind() render.ProgramKind { return p.kind }
func (p *program) Destroy()                 {}

// CreateBuffer implements render.Device.
func (d *Device) CreateBuffer(kind render.BufferKind, count int) (render.Buffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("wgpu: %s buffer of %d elements", kind, count)
	}
	var size uint64
	var usage gputypes.BufferUsage
	switch kind {
	case render.BufferPosition, render.BufferTexCoord:
		size, usage = uint64(12*count), wgpu.BufferUsageVertex
	case render.BufferIndex:
		// Queue writes are 4-byte aligned.
		size, usage = uint64(align(uint32(2*count), 4)), wgpu.BufferUsageIndex
	default:
		return nil, fmt.Errorf("wgpu: unknown buffer kind %d", kind)
	}
	buf, err := d.dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "gpath_" + kind.String(),
		Size:  size,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s buffer: %w", kind, err)
	}
	return &buffer{dev: d, kind: kind, n: count, buf: buf}, nil
}

func (d *Device) own(buf render.Buffer, kind render.BufferKind) (*buffer, error) {
	b, ok := buf.(*buffer)
	if !ok || b.dev != d || b.buf == nil {
		return nil, ErrForeignObject
	}
	if b.kind != kind && !(kind == render.BufferPosition && b.kind == render.BufferTexCoord) {
		return nil, fmt.Errorf("wgpu: %s buffer used as %s", b.kind, kind)
	}
	return b, nil
}

// WriteVertices implements render.Device.
func (d *Device) WriteVertices(buf render.Buffer, data []f32.Vec3) error {
	b, err := d.own(buf, render.BufferPosition)
	if err != nil {
		return err
	}
	if len(data) > b.n {
		return fmt.Errorf("wgpu: %d vertices into %d: %w", len(data), b.n, gpath.ErrCapacityExceeded)
	}
	if len(data) == 0 {
		return nil
	}
	out := make([]byte, 12*len(data))
	for i, v := range data {
		for k := 0; k < 3; k++ {
			binary.LittleEndian.PutUint32(out[12*i+4*k:], math.Float32bits(v[k]))
		}
	}
	return d.queue.WriteBuffer(b.buf, 0, out)
}

// WriteIndices implements render.Device.
func (d *Device) WriteIndices(buf render.Buffer, data []uint16) error {
	b, err := d.own(buf, render.BufferIndex)
	if err != nil {
		return err
	}
	if len(data) > b.n {
		return fmt.Errorf("wgpu: %d indices into %d: %w", len(data), b.n, gpath.ErrCapacityExceeded)
	}
	if len(data) == 0 {
		return nil
	}
	out := make([]byte, align(uint32(2*len(data)), 4))
	for i, v := range data {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	return d.queue.WriteBuffer(b.buf, 0, out)
}

// CreateRamp implements render.Device.
func (d *Device) CreateRamp(width int) (render.Ramp, error) {
	if width <= 0 || uint32(width) > d.caps.MaxTextureSize {
		return nil, fmt.Errorf("wgpu: ramp width %d", width)
	}
	tex, err := d.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "gpath_ramp",
		Size:          wgpu.Extent3D{Width: uint32(width), Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create ramp texture: %w", err)
	}
	view, err := d.dev.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("wgpu: create ramp view: %w", err)
	}
	group, err := d.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "gpath_ramp_bind_group",
		Layout: d.bindLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: d.uniforms, Size: uniformSize},
			{Binding: 1, TextureView: view},
		},
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("wgpu: create ramp bind group: %w", err)
	}
	r := &ramp{dev: d, width: width, tex: tex, view: view, group: group}
	if err := d.WriteRamp(r, make([]uint32, width)); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// WriteRamp implements render.Device.
func (d *Device) WriteRamp(r render.Ramp, texels []uint32) error {
	rp, ok := r.(*ramp)
	if !ok || rp.dev != d || rp.tex == nil {
		return ErrForeignObject
	}
	if len(texels) != rp.width {
		return fmt.Errorf("wgpu: %d texels into a ramp of %d", len(texels), rp.width)
	}
	return d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: rp.tex},
		rampBytes(texels),
		&wgpu.ImageDataLayout{BytesPerRow: uint32(4 * rp.width), RowsPerImage: 1},
		&wgpu.Extent3D{Width: uint32(rp.width), Height: 1, DepthOrArrayLayers: 1},
	)
}

// rampBytes converts ARGB texels to RGBA8 bytes.
func rampBytes(texels []uint32) []byte {
	out := make([]byte, 4*len(texels))
	for i, c := range texels {
		out[4*i+0] = uint8(c >> 16)
		out[4*i+1] = uint8(c >> 8)
		out[4*i+2] = uint8(c)
		out[4*i+3] = uint8(c >> 24)
	}
	return out
}

// CreateProgram implements render.Device. The program's shader module is
// compiled here, so a failure surfaces before any draw uses it.
func (d *Device) CreateProgram(kind render.ProgramKind) (render.Program, error) {
	s, err := programShader(kind)
	if err != nil {
		return nil, err
	}
	if err := d.cache.compile(s); err != nil {
		return nil, err
	}
	return &program{dev: d, kind: kind}, nil
}

// Clear implements render.Device. Colors are stored premultiplied.
func (d *Device) Clear(flags render.ClearFlags, c gpath.RGBA, depth float32, stencil uint8) error {
	load := func(clear bool) gputypes.LoadOp {
		if clear {
			return gputypes.LoadOpClear
		}
		return gputypes.LoadOpLoad
	}
	p := c.Float32()
	a := float64(p[3])
	return d.submit("gpath_clear", &wgpu.RenderPassDescriptor{
		Label: "gpath_clear",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       d.colorView,
			LoadOp:     load(flags&render.ClearColor != 0),
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(p[0]) * a, G: float64(p[1]) * a, B: float64(p[2]) * a, A: a},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:              d.depthView,
			DepthLoadOp:       load(flags&render.ClearDepth != 0),
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   depth,
			StencilLoadOp:     load(flags&render.ClearStencil != 0),
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: uint32(stencil),
		},
	}, nil)
}

// submit records one render pass, runs record inside it and submits the
// command buffer.
func (d *Device) submit(label string, desc *wgpu.RenderPassDescriptor, record func(*wgpu.RenderPassEncoder)) error {
	enc, err := d.dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("wgpu: create encoder: %w", err)
	}
	pass, err := enc.BeginRenderPass(desc)
	if err != nil {
		enc.DiscardEncoding()
		return fmt.Errorf("wgpu: begin %s pass: %w", label, err)
	}
	if record != nil {
		record(pass)
	}
	if err := pass.End(); err != nil {
		enc.DiscardEncoding()
		return fmt.Errorf("wgpu: end %s pass: %w", label, err)
	}
	cmd, err := enc.Finish()
	if err != nil {
		return fmt.Errorf("wgpu: finish %s: %w", label, err)
	}
	if _, err := d.queue.Submit(cmd); err != nil {
		return fmt.Errorf("wgpu: submit %s: %w", label, err)
	}
	return nil
}

// Render implements render.Device. Each operation is one render pass that
// loads and stores every attachment, so draws apply in submission order.
func (d *Device) Render(op *render.RenderOperation) error {
	pos, err := d.own(op.Positions, render.BufferPosition)
	if err != nil {
		return err
	}
	var tex *buffer
	if op.Layout.Textured() {
		if op.TexCoords == nil {
			return fmt.Errorf("wgpu: %s layout without texture coordinates: %w", op.Layout, gpath.ErrInvariant)
		}
		if tex, err = d.own(op.TexCoords, render.BufferTexCoord); err != nil {
			return err
		}
	}
	var idx *buffer
	if op.Indices != nil {
		if idx, err = d.own(op.Indices, render.BufferIndex); err != nil {
			return err
		}
		if op.Count > idx.n {
			return fmt.Errorf("wgpu: %d indices beyond %d: %w", op.Count, idx.n, gpath.ErrInvariant)
		}
	} else if op.Count > pos.n {
		return fmt.Errorf("wgpu: vertex %d beyond %d: %w", op.Count-1, pos.n, gpath.ErrInvariant)
	}
	switch op.Topology {
	case gputypes.PrimitiveTopologyTriangleList:
		if op.Count%3 != 0 {
			return fmt.Errorf("wgpu: triangle list of %d vertices: %w", op.Count, gpath.ErrInvariant)
		}
	case gputypes.PrimitiveTopologyTriangleStrip:
	default:
		return fmt.Errorf("wgpu: unsupported topology %s", op.Topology)
	}
	group, err := d.bind(&op.Paint)
	if err != nil {
		return err
	}
	pipeline, err := d.cache.get(keyOf(op))
	if err != nil {
		return err
	}
	if op.Count == 0 {
		return nil
	}

	encodeUniforms(&d.uniformBytes, op)
	if err := d.queue.WriteBuffer(d.uniforms, 0, d.uniformBytes[:]); err != nil {
		return fmt.Errorf("wgpu: write uniforms: %w", err)
	}

	err = d.submit("gpath_draw", &wgpu.RenderPassDescriptor{
		Label: "gpath_draw",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    d.colorView,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:           d.depthView,
			DepthLoadOp:    gputypes.LoadOpLoad,
			DepthStoreOp:   gputypes.StoreOpStore,
			StencilLoadOp:  gputypes.LoadOpLoad,
			StencilStoreOp: gputypes.StoreOpStore,
		},
	}, func(pass *wgpu.RenderPassEncoder) {
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, group, nil)
		pass.SetStencilReference(uint32(op.State.StencilRef))
		pass.SetVertexBuffer(0, pos.buf, 0)
		if tex != nil {
			pass.SetVertexBuffer(1, tex.buf, 0)
		}
		if idx != nil {
			pass.SetIndexBuffer(idx.buf, gputypes.IndexFormatUint16, 0)
			pass.DrawIndexed(uint32(op.Count), 1, 0, 0, 0)
		} else {
			pass.Draw(uint32(op.Count), 1, 0, 0)
		}
	})
	if err != nil {
		return err
	}
	d.draws++
	return nil
}

// bind checks the program and ramp of p and returns the bind group that
// carries its ramp.
func (d *Device) bind(p *render.Paint) (*wgpu.BindGroup, error) {
	var kind render.ProgramKind
	switch p.Shader {
	case render.ShaderSolid, render.ShaderLinear:
	case render.ShaderRadial:
		kind = render.ProgramRadial
	case render.ShaderCubicFill:
		kind = render.ProgramCubicFill
	default:
		return nil, fmt.Errorf("wgpu: unknown shader %d", p.Shader)
	}
	if p.Shader == render.ShaderRadial || p.Shader == render.ShaderCubicFill {
		prog, ok := p.Program.(*program)
		if !ok || prog.dev != d {
			return nil, fmt.Errorf("wgpu: %s shader without its program: %w", p.Shader, ErrForeignObject)
		}
		if prog.kind != kind {
			return nil, fmt.Errorf("wgpu: %s shader bound to the %s program", p.Shader, prog.kind)
		}
	}
	if p.Shader == render.ShaderLinear || p.Shader == render.ShaderRadial {
		r, ok := p.Ramp.(*ramp)
		if !ok || r.dev != d || r.group == nil {
			return nil, fmt.Errorf("wgpu: %s shader without a ramp: %w", p.Shader, ErrForeignObject)
		}
		return r.group, nil
	}
	return d.blank.group, nil
}

// encodeUniforms lays out the Uniforms block of op. Matrices are stored
// column-major.
func encodeUniforms(out *[uniformSize]byte, op *render.RenderOperation) {
	put := func(off int, v float32) {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(v))
	}
	for i, v := range op.State.Transform.Transpose() {
		put(4*i, v)
	}
	for i, v := range op.Paint.Matrix.Transpose() {
		put(64+4*i, v)
	}
	for i, v := range op.Paint.Color.Float32() {
		put(128+4*i, v)
	}
	for i, v := range op.Paint.Constants {
		put(144+4*i, v)
	}
	binary.LittleEndian.PutUint32(out[160:], uint32(op.Paint.Extend))
	for off := 164; off < uniformSize; off += 4 {
		binary.LittleEndian.PutUint32(out[off:], 0)
	}
}

// Flush implements render.Flusher by copying the color texture into the
// target pixels.
func (d *Device) Flush() error {
	return d.FlushContext(context.Background())
}

// FlushContext is Flush with a context bounding the wait for the GPU.
func (d *Device) FlushContext(ctx context.Context) error {
	enc, err := d.dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "gpath_readback"})
	if err != nil {
		return fmt.Errorf("wgpu: create encoder: %w", err)
	}
	enc.CopyTextureToBuffer(d.color, d.staging, []wgpu.BufferTextureCopy{{
		BufferLayout: wgpu.ImageDataLayout{BytesPerRow: d.bytesPerRow, RowsPerImage: uint32(d.h)},
		TextureBase:  wgpu.ImageCopyTexture{Texture: d.color},
		Size:         wgpu.Extent3D{Width: uint32(d.w), Height: uint32(d.h), DepthOrArrayLayers: 1},
	}})
	cmd, err := enc.Finish()
	if err != nil {
		return fmt.Errorf("wgpu: finish readback: %w", err)
	}
	if _, err := d.queue.Submit(cmd); err != nil {
		return fmt.Errorf("wgpu: submit readback: %w", err)
	}

	size := uint64(d.bytesPerRow) * uint64(d.h)
	if err := d.staging.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("wgpu: map readback: %w", err)
	}
	rng, err := d.staging.MappedRange(0, size)
	if err != nil {
		_ = d.staging.Unmap()
		return fmt.Errorf("wgpu: readback range: %w", err)
	}
	src := rng.Bytes()
	pix, stride := d.target.Pixels(), d.target.Stride()
	for y := 0; y < d.h; y++ {
		copy(pix[y*stride:y*stride+4*d.w], src[y*int(d.bytesPerRow):])
	}
	if err := d.staging.Unmap(); err != nil {
		return fmt.Errorf("wgpu: unmap readback: %w", err)
	}
	return nil
}

func align(n, a uint32) uint32 {
	return (n + a - 1) / a * a
}

var (
	_ render.Device  = (*Device)(nil)
	_ render.Flusher = (*Device)(nil)
)
