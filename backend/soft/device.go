package soft

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/backend"
	"github.com/gogpu/gpath/render"
)

// ErrForeignObject is returned when a buffer, ramp or program created by
// another device is passed to this one.
var ErrForeignObject = errors.New("soft: object belongs to another device")

func init() {
	backend.Register(backend.BackendSoft, func(width, height int) (render.Device, error) {
		return New(render.NewPixmapTarget(width, height)), nil
	})
}

// Option configures a Device.
type Option func(*Device)

// WithoutFragmentPrograms makes the device report no fragment-program
// support, like fixed-function hardware.
func WithoutFragmentPrograms() Option {
	return func(d *Device) {
		d.caps.FragmentPrograms = false
	}
}

// Device is a software render.Device. It rasterizes into a PixmapTarget
// with an 8-bit stencil buffer and a float32 depth buffer, and emulates the
// fragment programs.
type Device struct {
	target  *render.PixmapTarget
	w, h    int
	caps    render.Capabilities
	stencil []uint8
	depth   []float32

	draws     int
	fragments int
}

// New returns a device rendering into target. The stencil buffer starts
// at 0 and the depth buffer at 1.
func New(target *render.PixmapTarget, opts ...Option) *Device {
	w, h := target.Width(), target.Height()
	d := &Device{
		target: target,
		w:      w,
		h:      h,
		caps: render.Capabilities{
			FragmentPrograms: true,
			MaxTextureSize:   8192,
			VendorName:       "gogpu",
			DeviceName:       "soft",
		},
		stencil: make([]uint8, w*h),
		depth:   make([]float32, w*h),
	}
	for i := range d.depth {
		d.depth[i] = 1
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Capabilities implements render.Device.
func (d *Device) Capabilities() render.Capabilities {
	return d.caps
}

// Target implements render.Device.
func (d *Device) Target() render.RenderTarget {
	return d.target
}

// Pixmap returns the target.
func (d *Device) Pixmap() *render.PixmapTarget {
	return d.target
}

// Stencil returns the stencil value at pixel (x, y).
func (d *Device) Stencil(x, y int) uint8 {
	return d.stencil[y*d.w+x]
}

// Depth returns the depth value at pixel (x, y).
func (d *Device) Depth(x, y int) float32 {
	return d.depth[y*d.w+x]
}

// Stats returns the number of draws executed and fragments that reached
// the color stage.
func (d *Device) Stats() (draws, fragments int) {
	return d.draws, d.fragments
}

type buffer struct {
	dev      *Device
	kind     render.BufferKind
	n        int
	vertices []f32.Vec3
	indices  []uint16
}

func (b *buffer) Kind() render.BufferKind { return b.kind }
func (b *buffer) Len() int                { return b.n }

func (b *buffer) Destroy() {
	b.vertices, b.indices, b.n = nil, nil, 0
}

type ramp struct {
	dev    *Device
	texels []uint32
}

func (r *ramp) Width() int { return len(r.texels) }
func (r *ramp) Destroy()   { r.texels = nil }

type program struct {
	dev  *Device
	kind render.ProgramKind
}

func (p *program) Kind() render.ProgramKind { return p.kind }
func (p *program) Destroy()                 {}

// CreateBuffer implements render.Device.
func (d *Device) CreateBuffer(kind render.BufferKind, count int) (render.Buffer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("soft: %s buffer of %d elements", kind, count)
	}
	b := &buffer{dev: d, kind: kind, n: count}
	switch kind {
	case render.BufferPosition, render.BufferTexCoord:
		b.vertices = make([]f32.Vec3, count)
	case render.BufferIndex:
		b.indices = make([]uint16, count)
	default:
		return nil, fmt.Errorf("soft: unknown buffer kind %d", kind)
	}
	return b, nil
}

func (d *Device) own(buf render.Buffer, kind render.BufferKind) (*buffer, error) {
	b, ok := buf.(*buffer)
	if !ok || b.dev != d {
		return nil, ErrForeignObject
	}
	if b.kind != kind && !(kind == render.BufferPosition && b.kind == render.BufferTexCoord) {
		return nil, fmt.Errorf("soft: %s buffer used as %s", b.kind, kind)
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
		return fmt.Errorf("soft: %d vertices into %d: %w", len(data), b.n, gpath.ErrCapacityExceeded)
	}
	copy(b.vertices, data)
	return nil
}

// WriteIndices implements render.Device.
func (d *Device) WriteIndices(buf render.Buffer, data []uint16) error {
	b, err := d.own(buf, render.BufferIndex)
	if err != nil {
		return err
	}
	if len(data) > b.n {
		return fmt.Errorf("soft: %d indices into %d: %w", len(data), b.n, gpath.ErrCapacityExceeded)
	}
	copy(b.indices, data)
	return nil
}

// CreateRamp implements render.Device.
func (d *Device) CreateRamp(width int) (render.Ramp, error) {
	if width <= 0 || width > int(d.caps.MaxTextureSize) {
		return nil, fmt.Errorf("soft: ramp width %d", width)
	}
	return &ramp{dev: d, texels: make([]uint32, width)}, nil
}

// WriteRamp implements render.Device.
func (d *Device) WriteRamp(r render.Ramp, texels []uint32) error {
	rp, ok := r.(*ramp)
	if !ok || rp.dev != d {
		return ErrForeignObject
	}
	if len(texels) != len(rp.texels) {
		return fmt.Errorf("soft: %d texels into a ramp of %d", len(texels), len(rp.texels))
	}
	copy(rp.texels, texels)
	return nil
}

// CreateProgram implements render.Device.
func (d *Device) CreateProgram(kind render.ProgramKind) (render.Program, error) {
	if !d.caps.FragmentPrograms {
		return nil, errors.New("soft: fragment programs disabled")
	}
	switch kind {
	case render.ProgramRadial, render.ProgramCubicFill:
		return &program{dev: d, kind: kind}, nil
	default:
		return nil, fmt.Errorf("soft: unknown program %d", kind)
	}
}

// Clear implements render.Device. Colors are stored premultiplied.
func (d *Device) Clear(flags render.ClearFlags, c gpath.RGBA, depth float32, stencil uint8) error {
	if flags&render.ClearColor != 0 {
		px := premultiply(c.Float32())
		pix := d.target.Pixels()
		stride := d.target.Stride()
		for y := 0; y < d.h; y++ {
			row := pix[y*stride : y*stride+4*d.w]
			for x := 0; x < d.w; x++ {
				copy(row[4*x:4*x+4], px[:])
			}
		}
	}
	if flags&render.ClearDepth != 0 {
		for i := range d.depth {
			d.depth[i] = depth
		}
	}
	if flags&render.ClearStencil != 0 {
		for i := range d.stencil {
			d.stencil[i] = stencil
		}
	}
	return nil
}

var _ render.Device = (*Device)(nil)
