// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/internal/fill"
	"github.com/gogpu/gpath/internal/mesh"
	"github.com/gogpu/gpath/internal/source"
	"github.com/gogpu/gpath/internal/splines"
	"github.com/gogpu/gpath/internal/stroke"
	"github.com/gogpu/gpath/render"
)

// ErrClosed is returned by operations on a closed surface.
var ErrClosed = errors.New("surface: closed")

// Surface draws paths onto the target of a render device.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, or external synchronization must be used.
type Surface struct {
	res           *render.Resources
	width, height int

	fanPass    *render.Pass
	fan        *mesh.Builder
	splinePass *render.Pass
	spline     *mesh.Builder
	curves     *splines.Buffer

	hasClip bool
	closed  bool
}

// New creates a surface covering the target of res's device. The surface
// acquires its own reference to res and releases it on Close.
func New(res *render.Resources) (*Surface, error) {
	target := res.Device().Target()
	w, h := target.Width(), target.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("surface: invalid size %dx%d", w, h)
	}

	s := &Surface{
		res:        res,
		width:      w,
		height:     h,
		fanPass:    res.NewPass(render.LayoutStencil),
		splinePass: res.NewPass(render.LayoutSpline),
	}
	var err error
	if s.fan, err = s.fanPass.NewMesh(); err != nil {
		return nil, fmt.Errorf("surface: stencil mesh: %w", err)
	}
	if res.SplineFill() {
		if s.spline, err = s.splinePass.NewMesh(); err != nil {
			return nil, fmt.Errorf("surface: spline mesh: %w", err)
		}
		s.curves = splines.New(res.Config().SplineBudget)
	}
	res.Acquire()
	return s, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int {
	return s.width
}

// Height returns the surface height in pixels.
func (s *Surface) Height() int {
	return s.height
}

// Clipped reports whether a clip is active.
func (s *Surface) Clipped() bool {
	return s.hasClip
}

// Close releases the surface's reference to its resources. Close is
// idempotent.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.res.Release()
	return nil
}

// Clear fills the whole surface with c, ignoring the clip.
func (s *Surface) Clear(c gpath.RGBA) error {
	if s.closed {
		return ErrClosed
	}
	return s.res.Device().Clear(render.ClearColor, c, 1, 0)
}

// Flush makes the device target hold everything drawn so far. It is a
// no-op for devices that draw into the target directly.
func (s *Surface) Flush() error {
	if s.closed {
		return ErrClosed
	}
	if f, ok := s.res.Device().(render.Flusher); ok {
		return f.Flush()
	}
	return nil
}

func (s *Surface) bounds() gpath.Box {
	return gpath.Box{MinX: 0, MinY: 0, MaxX: float64(s.width), MaxY: float64(s.height)}
}

// abort clears the stencil left behind by a failed mask.
func (s *Surface) abort(err error) error {
	if cerr := s.res.Device().Clear(render.ClearStencil, gpath.Transparent, 1, 0); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

func (s *Surface) initState() render.State {
	return render.InitialState(s.width, s.height, s.hasClip)
}

// bindPaint derives the shading of p and uploads its color ramp.
func (s *Surface) bindPaint(p gpath.Paint) (render.Paint, error) {
	st, err := source.Derive(p)
	if err != nil {
		return render.Paint{}, err
	}

	out := render.Paint{Color: st.Color, Matrix: st.Matrix, Extend: st.Extend}
	switch st.Kind {
	case source.Solid:
		out.Shader = render.ShaderSolid
		return out, nil
	case source.Linear:
		out.Shader = render.ShaderLinear
	case source.Radial:
		prog := s.res.Program(render.ProgramRadial)
		if prog == nil {
			return render.Paint{}, fmt.Errorf("surface: radial gradient without fragment programs: %w",
				gpath.ErrUnsupportedPattern)
		}
		out.Shader = render.ShaderRadial
		out.Program = prog
		out.Constants = [4]float32{
			float32(st.Circle2.X), float32(st.Circle2.Y), float32(st.R1), float32(st.R2),
		}
	}

	ramp := s.res.Ramp()
	if ramp == nil {
		return render.Paint{}, fmt.Errorf("surface: %s gradient without a color ramp: %w",
			st.Kind, gpath.ErrUnsupportedPattern)
	}
	if err := s.res.LoadGradient(st.Stops, st.Extend); err != nil {
		return render.Paint{}, fmt.Errorf("surface: load ramp: %w", err)
	}
	out.Ramp = ramp
	return out, nil
}

// fillMask stencils path with rule and returns the bounds of the drawn
// geometry. With spline fill, the deferred curves are drawn as a second
// pass with the same stencil state, seeded with the fan's bounds.
func (s *Surface) fillMask(path gpath.PathSource, rule gpath.FillRule, tolerance float64, st render.State) (gpath.Box, error) {
	mask := st.FillMask(rule)
	s.fan.Reset()
	s.fanPass.State = mask

	var curves *splines.Buffer
	if s.curves != nil {
		s.curves.Reset()
		curves = s.curves
	}

	box, err := fill.New(s.fan, curves).Fill(path, tolerance)
	if err != nil {
		return box, fmt.Errorf("surface: fill: %w", err)
	}
	if curves == nil || curves.IsEmpty() {
		return box, nil
	}

	s.spline.Reset()
	s.spline.SetBounds(box)
	s.splinePass.State = mask
	s.splinePass.Paint = render.Paint{
		Shader:  render.ShaderCubicFill,
		Program: s.res.Program(render.ProgramCubicFill),
	}
	if _, err := fill.Splines(s.spline, curves); err != nil {
		return box, fmt.Errorf("surface: spline pass: %w", err)
	}
	return s.spline.Bounds(), nil
}

// Fill fills path with paint under rule. Curves are flattened within
// tolerance device pixels.
func (s *Surface) Fill(op gpath.Operator, paint gpath.Paint, path gpath.PathSource, rule gpath.FillRule, tolerance float64) error {
	if s.closed {
		return ErrClosed
	}
	if op == gpath.OperatorDest {
		return nil
	}
	bound, err := s.bindPaint(paint)
	if err != nil {
		return err
	}

	st := s.initState()
	box, err := s.fillMask(path, rule, tolerance, st)
	if err != nil {
		return s.abort(err)
	}
	return s.res.DrawQuad(box, st.Cover(), bound)
}

// Stroke strokes path with a pen of style.Width transformed by ctm. The
// path is in device space; ctm only shapes the pen.
func (s *Surface) Stroke(op gpath.Operator, paint gpath.Paint, path gpath.PathSource, style gpath.StrokeStyle, ctm gpath.Matrix, tolerance float64) error {
	if s.closed {
		return ErrClosed
	}
	if op == gpath.OperatorDest {
		return nil
	}
	bound, err := s.bindPaint(paint)
	if err != nil {
		return err
	}

	pen := stroke.NewPen(style.Width/2, tolerance, ctm)
	st := s.initState()
	s.fan.Reset()
	s.fanPass.State = st.StrokeMask()

	stroker := stroke.NewStroker(pen, stroke.NewMesh(s.fan), tolerance)
	if stroker.Hairline() {
		gpath.Logger().Debug("surface: hairline stroke skipped", "width", style.Width)
		return nil
	}
	box, err := stroker.Stroke(path)
	if err != nil {
		return s.abort(fmt.Errorf("surface: stroke: %w", err))
	}
	return s.res.DrawQuad(box, st.Cover(), bound)
}

// Paint covers the whole surface, within the clip, with paint.
func (s *Surface) Paint(op gpath.Operator, paint gpath.Paint) error {
	if s.closed {
		return ErrClosed
	}
	if op == gpath.OperatorDest {
		return nil
	}
	bound, err := s.bindPaint(paint)
	if err != nil {
		return err
	}
	return s.res.DrawQuad(s.bounds(), s.initState(), bound)
}

// Clip restricts later drawing to the inside of path under rule,
// intersected with the current clip. A nil path resets the clip.
func (s *Surface) Clip(path gpath.PathSource, rule gpath.FillRule, tolerance float64) error {
	if s.closed {
		return ErrClosed
	}
	if path == nil {
		s.ResetClip()
		return nil
	}

	if !s.hasClip {
		if err := s.res.Device().Clear(render.ClearDepth|render.ClearStencil, gpath.Transparent, 1, 0); err != nil {
			return fmt.Errorf("surface: clear clip: %w", err)
		}
		s.hasClip = true
	}

	st := s.initState()
	if _, err := s.fillMask(path, rule, tolerance, st); err != nil {
		return s.abort(err)
	}
	return s.res.DrawQuad(s.bounds(), st.ClipWrite(), render.Paint{})
}

// ResetClip removes the clip.
func (s *Surface) ResetClip() {
	s.hasClip = false
}
