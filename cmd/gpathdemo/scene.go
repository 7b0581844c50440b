package main

import (
	"math"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/surface"
)

// drawScene paints the demo: a gradient background, overlapping circles,
// an even-odd star, gradient-filled shapes, a clipped stripe pattern and
// stroked curves. Coordinates are scaled to the surface size.
func drawScene(s *surface.Surface, tol float64) error {
	w, h := float64(s.Width()), float64(s.Height())
	sx, sy := w/800, h/600
	at := func(x, y float64) (float64, float64) { return x * sx, y * sy }
	over := gpath.OperatorOver

	bg := gpath.LinearGradient{
		P1: gpath.V2(0, 0),
		P2: gpath.V2(0, h),
		Stops: []gpath.ColorStop{
			{Offset: 0, Color: gpath.RGB(0.1, 0.2, 0.4)},
			{Offset: 1, Color: gpath.RGB(0.5, 0.5, 0.6)},
		},
	}
	if err := s.Paint(over, bg); err != nil {
		return err
	}

	circles := []struct {
		x, y float64
		c    gpath.RGBA
	}{
		{150, 150, gpath.NewRGBA(1, 0.3, 0.3, 0.8)},
		{200, 150, gpath.NewRGBA(0.3, 1, 0.3, 0.8)},
		{175, 200, gpath.NewRGBA(0.3, 0.3, 1, 0.8)},
	}
	for _, c := range circles {
		p := gpath.NewPath()
		x, y := at(c.x, c.y)
		p.Circle(x, y, 60*sx)
		if err := s.Fill(over, gpath.Solid(c.c), p, gpath.FillRuleNonZero, tol); err != nil {
			return err
		}
	}

	cx, cy := at(600, 150)
	if err := s.Fill(over, gpath.Solid(gpath.RGB(1, 0.85, 0)), star(cx, cy, 90*sx, 5), gpath.FillRuleEvenOdd, tol); err != nil {
		return err
	}

	rx, ry := at(400, 400)
	disc := gpath.NewPath()
	disc.Circle(rx, ry, 90*sx)
	radial := gpath.RadialGradient{
		C1: gpath.V2(rx-30*sx, ry-30*sy),
		R1: 0,
		C2: gpath.V2(rx, ry),
		R2: 90 * sx,
		Stops: []gpath.ColorStop{
			{Offset: 0, Color: gpath.RGB(1, 1, 1)},
			{Offset: 0.6, Color: gpath.RGB(0.9, 0.4, 0.1)},
			{Offset: 1, Color: gpath.RGB(0.4, 0.1, 0)},
		},
	}
	if err := s.Fill(over, radial, disc, gpath.FillRuleNonZero, tol); err != nil {
		return err
	}

	// Stripes clipped to a rounded shape.
	clip := gpath.NewPath()
	x0, y0 := at(60, 330)
	x1, y1 := at(260, 530)
	clip.MoveTo(x0, y0)
	clip.CurveTo(x1, y0-40*sy, x1+40*sx, y1, x1, y1)
	clip.LineTo(x0, y1)
	clip.Close()
	if err := s.Clip(clip, gpath.FillRuleNonZero, tol); err != nil {
		return err
	}
	stripes := gpath.LinearGradient{
		P1:     gpath.V2(x0, y0),
		P2:     gpath.V2(x0+20*sx, y0+20*sy),
		Extend: gpath.ExtendReflect,
		Stops: []gpath.ColorStop{
			{Offset: 0, Color: gpath.RGB(0.1, 0.6, 0.9)},
			{Offset: 1, Color: gpath.RGB(0.95, 0.95, 1)},
		},
	}
	if err := s.Paint(over, stripes); err != nil {
		return err
	}
	s.ResetClip()

	wave := gpath.NewPath()
	wx, wy := at(520, 420)
	wave.MoveTo(wx, wy)
	wave.CurveTo(wx+50*sx, wy-50*sy, wx+100*sx, wy+50*sy, wx+150*sx, wy)
	wave.CurveTo(wx+180*sx, wy-30*sy, wx+210*sx, wy+30*sy, wx+240*sx, wy)
	style := gpath.StrokeStyle{Width: 6 * sx}
	if err := s.Stroke(over, gpath.Solid(gpath.RGB(1, 0.5, 0)), wave, style, gpath.Identity(), tol); err != nil {
		return err
	}

	// An elliptical pen: the stroke matrix squashes the pen vertically.
	ring := gpath.NewPath()
	ex, ey := at(650, 520)
	ring.Circle(ex, ey, 50*sx)
	pen := gpath.StrokeStyle{Width: 10 * sx}
	return s.Stroke(over, gpath.Solid(gpath.RGB(1, 1, 1)), ring, pen, gpath.Scale(1, 0.3), tol)
}

// star returns a closed star polygon with n points whose edges cross, so
// the even-odd rule leaves the center empty.
func star(cx, cy, r float64, n int) *gpath.Path {
	p := gpath.NewPath()
	for i := 0; i < n; i++ {
		a := float64(2*i%n)*2*math.Pi/float64(n) - math.Pi/2
		x, y := cx+r*math.Cos(a), cy+r*math.Sin(a)
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	p.Close()
	return p
}
