package soft

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/internal/source"
	"github.com/gogpu/gpath/render"
)

// shader computes the straight-alpha color of the fragment at pixel
// center (px, py) with interpolated texture coordinate tc. keep is false
// for discarded fragments.
type shader func(px, py float32, tc f32.Vec3) (c [4]float32, keep bool)

func (d *Device) checkProgram(p *render.Paint, kind render.ProgramKind) error {
	prog, ok := p.Program.(*program)
	if !ok || prog.dev != d {
		return fmt.Errorf("soft: %s shader without its program: %w", p.Shader, ErrForeignObject)
	}
	if prog.kind != kind {
		return fmt.Errorf("soft: %s shader bound to the %s program", p.Shader, prog.kind)
	}
	return nil
}

func (d *Device) bindRamp(p *render.Paint) ([]uint32, error) {
	r, ok := p.Ramp.(*ramp)
	if !ok || r.dev != d {
		return nil, fmt.Errorf("soft: %s shader without a ramp: %w", p.Shader, ErrForeignObject)
	}
	return r.texels, nil
}

// shader returns the emulation of the paint's fragment stage.
func (d *Device) shader(p *render.Paint) (shader, error) {
	color := p.Color.Float32()
	switch p.Shader {
	case render.ShaderSolid:
		return func(float32, float32, f32.Vec3) ([4]float32, bool) {
			return color, true
		}, nil

	case render.ShaderLinear:
		texels, err := d.bindRamp(p)
		if err != nil {
			return nil, err
		}
		m, extend := p.Matrix, p.Extend
		return func(px, py float32, _ f32.Vec3) ([4]float32, bool) {
			return sample(texels, extend, m.Apply(px, py, 0)[0]), true
		}, nil

	case render.ShaderRadial:
		if err := d.checkProgram(p, render.ProgramRadial); err != nil {
			return nil, err
		}
		texels, err := d.bindRamp(p)
		if err != nil {
			return nil, err
		}
		m, extend := p.Matrix, p.Extend
		c2 := gpath.V2(float64(p.Constants[0]), float64(p.Constants[1]))
		r1, r2 := float64(p.Constants[2]), float64(p.Constants[3])
		return func(px, py float32, _ f32.Vec3) ([4]float32, bool) {
			q := m.Apply(px, py, 0)
			t, ok := source.RadialParameter(gpath.V2(float64(q[0]), float64(q[1])), c2, r1, r2)
			if !ok {
				return [4]float32{}, false
			}
			return sample(texels, extend, float32(t)), true
		}, nil

	case render.ShaderCubicFill:
		if err := d.checkProgram(p, render.ProgramCubicFill); err != nil {
			return nil, err
		}
		return func(_, _ float32, tc f32.Vec3) ([4]float32, bool) {
			k, l, m := tc[0], tc[1], tc[2]
			return color, k*k*k-l*m <= 0
		}, nil

	default:
		return nil, fmt.Errorf("soft: unknown shader %d", p.Shader)
	}
}

// sample looks up the ramp at t with nearest filtering. The extend mode
// selects the addressing outside [0, 1]: transparent border, clamp, wrap
// or mirror.
func sample(texels []uint32, extend gpath.ExtendMode, t float32) [4]float32 {
	if len(texels) == 0 || math32.IsNaN(t) {
		return [4]float32{}
	}
	switch extend {
	case gpath.ExtendNone:
		if t < 0 || t > 1 {
			return [4]float32{}
		}
	case gpath.ExtendRepeat:
		t -= math32.Floor(t)
	case gpath.ExtendReflect:
		t = math32.Mod(math32.Abs(t), 2)
		if t > 1 {
			t = 2 - t
		}
	default:
		t = math32.Max(0, math32.Min(1, t))
	}
	n := len(texels)
	i := min(int(t*float32(n)), n-1)
	return unpack(texels[i])
}

// unpack converts an ARGB texel to straight-alpha components.
func unpack(argb uint32) [4]float32 {
	return [4]float32{
		float32(argb>>16&0xff) / 255,
		float32(argb>>8&0xff) / 255,
		float32(argb&0xff) / 255,
		float32(argb>>24) / 255,
	}
}

func to8(v float32) uint8 {
	return uint8(math32.Round(math32.Max(0, math32.Min(1, v)) * 255))
}

func premultiply(c [4]float32) [4]uint8 {
	a := c[3]
	return [4]uint8{to8(c[0] * a), to8(c[1] * a), to8(c[2] * a), to8(a)}
}

func checkBlend(b *gputypes.BlendState) error {
	if b == nil {
		return nil
	}
	for _, c := range []gputypes.BlendComponent{b.Color, b.Alpha} {
		for _, f := range []gputypes.BlendFactor{c.SrcFactor, c.DstFactor} {
			switch f {
			case gputypes.BlendFactorZero, gputypes.BlendFactorOne,
				gputypes.BlendFactorSrc, gputypes.BlendFactorOneMinusSrc,
				gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha,
				gputypes.BlendFactorDst, gputypes.BlendFactorOneMinusDst,
				gputypes.BlendFactorDstAlpha, gputypes.BlendFactorOneMinusDstAlpha:
			default:
				return fmt.Errorf("soft: unsupported blend factor %s", f)
			}
		}
		switch c.Operation {
		case gputypes.BlendOperationAdd, gputypes.BlendOperationSubtract,
			gputypes.BlendOperationReverseSubtract, gputypes.BlendOperationMin,
			gputypes.BlendOperationMax:
		default:
			return fmt.Errorf("soft: unsupported blend operation %s", c.Operation)
		}
	}
	return nil
}

func factor(f gputypes.BlendFactor, ch int, src, dst [4]float32) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorSrc:
		return src[ch]
	case gputypes.BlendFactorOneMinusSrc:
		return 1 - src[ch]
	case gputypes.BlendFactorSrcAlpha:
		return src[3]
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - src[3]
	case gputypes.BlendFactorDst:
		return dst[ch]
	case gputypes.BlendFactorOneMinusDst:
		return 1 - dst[ch]
	case gputypes.BlendFactorDstAlpha:
		return dst[3]
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 1 - dst[3]
	default:
		return 1
	}
}

func apply(c gputypes.BlendComponent, ch int, src, dst [4]float32) float32 {
	s := src[ch] * factor(c.SrcFactor, ch, src, dst)
	t := dst[ch] * factor(c.DstFactor, ch, src, dst)
	switch c.Operation {
	case gputypes.BlendOperationSubtract:
		return s - t
	case gputypes.BlendOperationReverseSubtract:
		return t - s
	case gputypes.BlendOperationMin:
		return math32.Min(src[ch], dst[ch])
	case gputypes.BlendOperationMax:
		return math32.Max(src[ch], dst[ch])
	default:
		return s + t
	}
}

// blend combines src with the stored pixel. The target holds the blend
// results directly; with source-over blending these are premultiplied.
func (d *Device) blend(x, y int, src [4]float32, b *gputypes.BlendState) {
	pix := d.target.Pixels()
	o := y*d.target.Stride() + 4*x
	px := pix[o : o+4 : o+4]

	out := src
	if b != nil {
		dst := [4]float32{
			float32(px[0]) / 255, float32(px[1]) / 255, float32(px[2]) / 255, float32(px[3]) / 255,
		}
		for ch := 0; ch < 3; ch++ {
			out[ch] = apply(b.Color, ch, src, dst)
		}
		out[3] = apply(b.Alpha, 3, src, dst)
	}
	for ch := range out {
		px[ch] = to8(out[ch])
	}
}
