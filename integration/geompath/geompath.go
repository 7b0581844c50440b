// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package geompath connects seehuhn.de/go/geom paths to gpath.
//
// Source replays a *path.Data as gpath path events, so geometry built with
// the geom packages (for example by a PDF renderer) can be filled, stroked
// or used as a clip on a surface:
//
//	data := (&path.Data{}).MoveTo(vec.Vec2{X: 10, Y: 10}).
//	    CubeTo(vec.Vec2{X: 40, Y: 0}, vec.Vec2{X: 60, Y: 40}, vec.Vec2{X: 90, Y: 20}).
//	    Close()
//	err := s.Fill(gpath.OperatorOver, paint, geompath.New(data), gpath.FillRuleNonZero, 0.25)
//
// Quadratic segments are elevated to cubics. Export goes the other way and
// records any gpath.PathSource into a new *path.Data.
package geompath

import (
	"fmt"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"github.com/gogpu/gpath"
)

// Source is a gpath.PathSource over a geom path. CTM maps the path
// coordinates to device space.
type Source struct {
	Data *path.Data
	CTM  matrix.Matrix
}

// New returns a source replaying p without transformation.
func New(p *path.Data) Source {
	return Source{Data: p, CTM: matrix.Identity}
}

// NewTransformed returns a source replaying p mapped by m.
func NewTransformed(p *path.Data, m matrix.Matrix) Source {
	return Source{Data: p, CTM: m}
}

func (s Source) apply(v vec.Vec2) gpath.Vec2 {
	m := s.CTM
	return gpath.V2(m[0]*v.X+m[2]*v.Y+m[4], m[1]*v.X+m[3]*v.Y+m[5])
}

// Interpret implements gpath.PathSource.
func (s Source) Interpret(v gpath.PathVisitor) error {
	if s.Data == nil {
		return nil
	}
	coords := s.Data.Coords
	need := func(i, n int) error {
		if i+n > len(coords) {
			return fmt.Errorf("geompath: command needs %d points, %d left: %w", n, len(coords)-i, gpath.ErrInvalidPath)
		}
		return nil
	}

	var current gpath.Vec2
	i := 0
	for _, cmd := range s.Data.Cmds {
		var err error
		switch cmd {
		case path.CmdMoveTo:
			if err = need(i, 1); err != nil {
				return err
			}
			current = s.apply(coords[i])
			err = v.MoveTo(current)
			i++
		case path.CmdLineTo:
			if err = need(i, 1); err != nil {
				return err
			}
			current = s.apply(coords[i])
			err = v.LineTo(current)
			i++
		case path.CmdQuadTo:
			if err = need(i, 2); err != nil {
				return err
			}
			q, end := s.apply(coords[i]), s.apply(coords[i+1])
			c1 := current.Add(q.Sub(current).Mul(2.0 / 3))
			c2 := end.Add(q.Sub(end).Mul(2.0 / 3))
			current = end
			err = v.CurveTo(c1, c2, end)
			i += 2
		case path.CmdCubeTo:
			if err = need(i, 3); err != nil {
				return err
			}
			current = s.apply(coords[i+2])
			err = v.CurveTo(s.apply(coords[i]), s.apply(coords[i+1]), current)
			i += 3
		case path.CmdClose:
			err = v.ClosePath()
		default:
			return fmt.Errorf("geompath: unknown command %d: %w", cmd, gpath.ErrInvalidPath)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// InterpretFlat implements gpath.PathSource.
func (s Source) InterpretFlat(tolerance float64, v gpath.PathVisitor) error {
	return s.Interpret(gpath.NewFlattener(v, tolerance))
}

// Export records the events of src into a new geom path.
func Export(src gpath.PathSource) (*path.Data, error) {
	r := &recorder{data: &path.Data{}}
	if err := src.Interpret(r); err != nil {
		return nil, err
	}
	return r.data, nil
}

type recorder struct {
	data *path.Data
}

func pt(p gpath.Vec2) vec.Vec2 {
	return vec.Vec2{X: p.X, Y: p.Y}
}

func (r *recorder) MoveTo(p gpath.Vec2) error {
	r.data.MoveTo(pt(p))
	return nil
}

func (r *recorder) LineTo(p gpath.Vec2) error {
	r.data.LineTo(pt(p))
	return nil
}

func (r *recorder) CurveTo(p1, p2, p3 gpath.Vec2) error {
	r.data.CubeTo(pt(p1), pt(p2), pt(p3))
	return nil
}

func (r *recorder) ClosePath() error {
	r.data.Close()
	return nil
}
