// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/backend/soft"
	"github.com/gogpu/gpath/render"
)

func newTestSurface(t *testing.T, w, h int, cfg gpath.Config, opts ...soft.Option) (*Surface, *soft.Device) {
	t.Helper()
	dev := soft.New(render.NewPixmapTarget(w, h), opts...)
	res, err := render.NewResources(dev, cfg)
	if err != nil {
		t.Fatalf("NewResources() error = %v", err)
	}
	s, err := New(res)
	res.Release()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, dev
}

func pixel(dev *soft.Device, x, y int) color.RGBA {
	return dev.Pixmap().Image().RGBAAt(x, y)
}

// covered returns the pixels with non-zero alpha.
func covered(img *image.RGBA) map[image.Point]bool {
	out := map[image.Point]bool{}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				out[image.Pt(x, y)] = true
			}
		}
	}
	return out
}

func stencilClean(t *testing.T, dev *soft.Device, w, h int) {
	t.Helper()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if v := dev.Stencil(x, y); v != 0 {
				t.Fatalf("stencil(%d, %d) = %d after drawing, want 0", x, y, v)
			}
		}
	}
}

var (
	red  = gpath.RGB(1, 0, 0)
	blue = gpath.RGB(0, 0, 1)
)

func TestFillRectangle(t *testing.T) {
	s, dev := newTestSurface(t, 8, 8, gpath.NewConfig())
	p := gpath.NewPath()
	p.Rectangle(2, 2, 4, 4)

	if err := s.Fill(gpath.OperatorOver, gpath.Solid(red), p, gpath.FillRuleNonZero, 0.1); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			inside := x >= 2 && x < 6 && y >= 2 && y < 6
			want := color.RGBA{}
			if inside {
				want = color.RGBA{R: 255, A: 255}
			}
			if got := pixel(dev, x, y); got != want {
				t.Errorf("pixel(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
	stencilClean(t, dev, 8, 8)
}

// star is a five-pointed star drawn as one self-overlapping contour.
func star(cx, cy, r float64) *gpath.Path {
	p := gpath.NewPath()
	for i := 0; i < 5; i++ {
		a := -math.Pi/2 + float64(i)*4*math.Pi/5
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

func TestFillRules(t *testing.T) {
	tests := []struct {
		name       string
		rule       gpath.FillRule
		wantCenter bool
	}{
		{"nonzero", gpath.FillRuleNonZero, true},
		{"evenodd", gpath.FillRuleEvenOdd, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, dev := newTestSurface(t, 32, 32, gpath.NewConfig())
			if err := s.Fill(gpath.OperatorOver, gpath.Solid(red), star(16, 16, 14), tt.rule, 0.1); err != nil {
				t.Fatalf("Fill() error = %v", err)
			}
			if got := pixel(dev, 16, 16).A != 0; got != tt.wantCenter {
				t.Errorf("center painted = %v, want %v", got, tt.wantCenter)
			}
			if pixel(dev, 16, 5).A == 0 {
				t.Error("top arm not painted")
			}
			if pixel(dev, 2, 2).A != 0 {
				t.Error("outside corner painted")
			}
			stencilClean(t, dev, 32, 32)
		})
	}
}

func TestStroke(t *testing.T) {
	s, dev := newTestSurface(t, 16, 16, gpath.NewConfig())
	p := gpath.NewPath()
	p.MoveTo(2, 8)
	p.LineTo(14, 8)

	err := s.Stroke(gpath.OperatorOver, gpath.Solid(blue), p, gpath.StrokeStyle{Width: 4}, gpath.Identity(), 0.1)
	if err != nil {
		t.Fatalf("Stroke() error = %v", err)
	}
	for _, y := range []int{6, 7, 8, 9} {
		if c := pixel(dev, 8, y); c != (color.RGBA{B: 255, A: 255}) {
			t.Errorf("pixel(8, %d) = %v, want opaque blue", y, c)
		}
	}
	for _, y := range []int{4, 11} {
		if c := pixel(dev, 8, y); c.A != 0 {
			t.Errorf("pixel(8, %d) = %v, want untouched", y, c)
		}
	}
	stencilClean(t, dev, 16, 16)
}

func TestStrokeHairline(t *testing.T) {
	s, dev := newTestSurface(t, 8, 8, gpath.NewConfig())
	p := gpath.NewPath()
	p.MoveTo(1, 1)
	p.LineTo(7, 7)

	if err := s.Stroke(gpath.OperatorOver, gpath.Solid(red), p, gpath.StrokeStyle{}, gpath.Identity(), 0.1); err != nil {
		t.Fatalf("Stroke() error = %v", err)
	}
	if draws, _ := dev.Stats(); draws != 0 {
		t.Errorf("hairline issued %d draws", draws)
	}
}

func TestLinearGradient(t *testing.T) {
	s, dev := newTestSurface(t, 16, 4, gpath.NewConfig())
	g := gpath.LinearGradient{
		P1: gpath.V2(0, 0),
		P2: gpath.V2(16, 0),
		Stops: []gpath.ColorStop{
			{Offset: 0, Color: red},
			{Offset: 1, Color: blue},
		},
	}
	if err := s.Paint(gpath.OperatorOver, g); err != nil {
		t.Fatalf("Paint() error = %v", err)
	}

	left, right := pixel(dev, 0, 1), pixel(dev, 15, 1)
	if left.R < 200 || left.B > 55 {
		t.Errorf("left end = %v, want mostly red", left)
	}
	if right.B < 200 || right.R > 55 {
		t.Errorf("right end = %v, want mostly blue", right)
	}
	if mid := pixel(dev, 8, 1); mid.R < 80 || mid.B < 80 {
		t.Errorf("middle = %v, want a mix", mid)
	}
}

func TestGradientRampReuse(t *testing.T) {
	s, _ := newTestSurface(t, 16, 16, gpath.NewConfig())
	reversed := gpath.LinearGradient{
		P1: gpath.V2(0, 0),
		P2: gpath.V2(16, 0),
		Stops: []gpath.ColorStop{
			{Offset: 0, Color: blue},
			{Offset: 1, Color: red},
		},
	}
	// The radial gradient shares its stops with the first draw, so the
	// second draw finds the ramp already loaded.
	for _, p := range []gpath.Paint{radialGradient(), radialGradient(), reversed, radialGradient()} {
		if err := s.Paint(gpath.OperatorOver, p); err != nil {
			t.Fatalf("Paint() error = %v", err)
		}
	}
	st := s.res.RampStats()
	if st.Len != 2 || st.Misses != 2 || st.Hits != 1 {
		t.Errorf("RampStats() = %+v, want 2 entries, 2 misses, 1 hit", st)
	}
}

func radialGradient() gpath.RadialGradient {
	return gpath.RadialGradient{
		C1: gpath.V2(8, 8),
		C2: gpath.V2(8, 8),
		R2: 8,
		Stops: []gpath.ColorStop{
			{Offset: 0, Color: red},
			{Offset: 1, Color: blue},
		},
	}
}

func TestRadialGradient(t *testing.T) {
	s, dev := newTestSurface(t, 16, 16, gpath.NewConfig())
	if err := s.Paint(gpath.OperatorOver, radialGradient()); err != nil {
		t.Fatalf("Paint() error = %v", err)
	}
	if c := pixel(dev, 7, 7); c.R < 200 {
		t.Errorf("center = %v, want mostly red", c)
	}
	if c := pixel(dev, 0, 0); c.B < 250 || c.R > 5 {
		t.Errorf("padded corner = %v, want blue", c)
	}
}

func TestUnsupportedPaintHasNoEffect(t *testing.T) {
	tests := []struct {
		name  string
		paint gpath.Paint
		opts  []soft.Option
	}{
		{"surface pattern", gpath.SurfacePattern{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}, nil},
		{"radial without programs", radialGradient(), []soft.Option{soft.WithoutFragmentPrograms()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, dev := newTestSurface(t, 16, 16, gpath.NewConfig(), tt.opts...)
			p := gpath.NewPath()
			p.Rectangle(1, 1, 10, 10)

			err := s.Fill(gpath.OperatorOver, tt.paint, p, gpath.FillRuleNonZero, 0.1)
			if !errors.Is(err, gpath.ErrUnsupportedPattern) {
				t.Fatalf("Fill() error = %v, want ErrUnsupportedPattern", err)
			}
			if draws, _ := dev.Stats(); draws != 0 {
				t.Errorf("%d draws issued", draws)
			}
			stencilClean(t, dev, 16, 16)
		})
	}
}

func TestOperatorDest(t *testing.T) {
	s, dev := newTestSurface(t, 8, 8, gpath.NewConfig())
	p := gpath.NewPath()
	p.Rectangle(0, 0, 8, 8)

	if err := s.Fill(gpath.OperatorDest, gpath.Solid(red), p, gpath.FillRuleNonZero, 0.1); err != nil {
		t.Fatal(err)
	}
	if err := s.Paint(gpath.OperatorDest, gpath.Solid(red)); err != nil {
		t.Fatal(err)
	}
	if draws, _ := dev.Stats(); draws != 0 {
		t.Errorf("%d draws issued", draws)
	}
}

func TestClipIntersection(t *testing.T) {
	s, dev := newTestSurface(t, 16, 8, gpath.NewConfig())
	a := gpath.NewPath()
	a.Rectangle(0, 0, 8, 8)
	b := gpath.NewPath()
	b.Rectangle(4, 0, 8, 8)

	for _, p := range []*gpath.Path{a, b} {
		if err := s.Clip(p, gpath.FillRuleNonZero, 0.1); err != nil {
			t.Fatalf("Clip() error = %v", err)
		}
	}
	if !s.Clipped() {
		t.Fatal("Clipped() = false after Clip")
	}
	if err := s.Paint(gpath.OperatorOver, gpath.Solid(red)); err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 16; x++ {
		want := x >= 4 && x < 8
		if got := pixel(dev, x, 3).A != 0; got != want {
			t.Errorf("column %d painted = %v, want %v", x, got, want)
		}
	}
	stencilClean(t, dev, 16, 8)

	s.ResetClip()
	if s.Clipped() {
		t.Fatal("Clipped() = true after ResetClip")
	}
	if err := s.Paint(gpath.OperatorOver, gpath.Solid(blue)); err != nil {
		t.Fatal(err)
	}
	if c := pixel(dev, 14, 3); c != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("pixel outside old clip = %v, want blue", c)
	}
}

func TestClipFill(t *testing.T) {
	s, dev := newTestSurface(t, 8, 8, gpath.NewConfig())
	clip := gpath.NewPath()
	clip.Rectangle(0, 0, 4, 8)
	if err := s.Clip(clip, gpath.FillRuleNonZero, 0.1); err != nil {
		t.Fatal(err)
	}
	p := gpath.NewPath()
	p.Rectangle(2, 2, 4, 4)
	if err := s.Fill(gpath.OperatorOver, gpath.Solid(red), p, gpath.FillRuleNonZero, 0.1); err != nil {
		t.Fatal(err)
	}
	got := covered(dev.Pixmap().Image())
	if len(got) != 8 {
		t.Errorf("%d pixels painted, want 8", len(got))
	}
	for pt := range got {
		if pt.X < 2 || pt.X >= 4 || pt.Y < 2 || pt.Y >= 6 {
			t.Errorf("pixel %v painted outside the clipped rectangle", pt)
		}
	}
	stencilClean(t, dev, 8, 8)
}

func TestSplineFillMatchesFlattening(t *testing.T) {
	draw := func(spline bool) map[image.Point]bool {
		cfg := gpath.NewConfig(gpath.WithGPUSplineFill(spline))
		s, dev := newTestSurface(t, 32, 32, cfg)
		if got := s.curves != nil; got != spline {
			t.Fatalf("spline pass enabled = %v, want %v", got, spline)
		}
		p := gpath.NewPath()
		p.Circle(16, 16, 10)
		if err := s.Fill(gpath.OperatorOver, gpath.Solid(red), p, gpath.FillRuleNonZero, 0.1); err != nil {
			t.Fatalf("Fill() error = %v", err)
		}
		stencilClean(t, dev, 32, 32)
		return covered(dev.Pixmap().Image())
	}

	flat, curved := draw(false), draw(true)
	for _, set := range []map[image.Point]bool{flat, curved} {
		if n := len(set); math.Abs(float64(n)-100*math.Pi) > 15 {
			t.Errorf("%d pixels covered, want about %.0f", n, 100*math.Pi)
		}
	}
	diff := 0
	for pt := range flat {
		if !curved[pt] {
			diff++
		}
	}
	for pt := range curved {
		if !flat[pt] {
			diff++
		}
	}
	if diff > 12 {
		t.Errorf("spline fill differs from flattening in %d pixels", diff)
	}
}

func TestSplineFillWithoutPrograms(t *testing.T) {
	cfg := gpath.NewConfig(gpath.WithGPUSplineFill(true))
	s, _ := newTestSurface(t, 8, 8, cfg, soft.WithoutFragmentPrograms())
	if s.curves != nil {
		t.Error("spline pass enabled without fragment programs")
	}
}

func TestClosed(t *testing.T) {
	s, _ := newTestSurface(t, 4, 4, gpath.NewConfig())
	res := s.res
	if got := res.Refs(); got != 1 {
		t.Fatalf("Refs() = %d, want 1", got)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if got := res.Refs(); got != 0 {
		t.Errorf("Refs() = %d after Close, want 0", got)
	}
	if err := s.Paint(gpath.OperatorOver, gpath.Solid(red)); !errors.Is(err, ErrClosed) {
		t.Errorf("Paint() error = %v, want ErrClosed", err)
	}
}

type flushingDevice struct {
	*soft.Device
	flushes int
}

func (d *flushingDevice) Flush() error {
	d.flushes++
	return nil
}

func TestFlush(t *testing.T) {
	s, _ := newTestSurface(t, 4, 4, gpath.NewConfig())
	if err := s.Flush(); err != nil {
		t.Errorf("Flush() on a direct device error = %v", err)
	}

	dev := &flushingDevice{Device: soft.New(render.NewPixmapTarget(4, 4))}
	res, err := render.NewResources(dev, gpath.NewConfig())
	if err != nil {
		t.Fatal(err)
	}
	fs, err := New(res)
	res.Release()
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Flush(); err != nil {
		t.Fatal(err)
	}
	if dev.flushes != 1 {
		t.Errorf("flushes = %d, want 1", dev.flushes)
	}
	_ = fs.Close()
	if err := fs.Flush(); !errors.Is(err, ErrClosed) {
		t.Errorf("Flush() after Close error = %v, want ErrClosed", err)
	}
}
