// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface draws paths onto a render.Device with the
// stencil-then-cover method.
//
// A Surface is created on shared render.Resources and dispatches four
// operations:
//
//   - Fill tessellates the path into triangle fans, accumulates their
//     winding in the stencil buffer and covers the marked pixels with the
//     paint. With GPU spline fill enabled, curves are drawn as control
//     hulls evaluated by the cubic fill program instead of being flattened.
//   - Stroke sweeps a pen polygon along the path into a triangle strip,
//     marks every covered pixel once and covers them.
//   - Paint covers the whole surface.
//   - Clip writes depth outside a path so later operations only touch the
//     pixels inside it. Clips intersect until ResetClip.
//
// Every operation binds its paint before touching the stencil, so an
// unsupported paint fails without side effects. Drawing with
// gpath.OperatorDest does nothing.
//
// # Usage
//
//	target := render.NewPixmapTarget(256, 256)
//	res, err := render.NewResources(soft.New(target), gpath.NewConfig())
//	if err != nil {
//	    return err
//	}
//	s, err := surface.New(res)
//	res.Release() // the surface holds its own reference
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	p := gpath.NewPath()
//	p.Circle(128, 128, 100)
//	err = s.Fill(gpath.OperatorOver, gpath.Solid(gpath.RGB(1, 0, 0)), p,
//	    gpath.FillRuleNonZero, 0.1)
package surface
