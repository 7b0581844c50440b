// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the device abstraction the path engine draws
// through and the shared resource group that owns its hardware objects.
//
// A Device executes RenderOperations: a vertex range with fixed-function
// state (transform, culling, blending, stencil and depth) and a Paint that
// selects the shading. Devices are provided by the backends; the software
// reference device lives in backend/soft and the wgpu/hal device in
// backend/wgpu.
//
// # Resources
//
// Resources is the explicit context shared by every surface drawing with
// one device. It is created once, shared by reference and counted:
//
//	res, err := render.NewResources(dev, gpath.NewConfig())
//	if err != nil {
//	    return err
//	}
//	defer res.Release()
//
//	other := res.Acquire() // a second surface on the same device
//	defer other.Release()
//
// It holds the position, texture coordinate and index buffers sized to the
// mesh capacity, the vertex layouts, the programs (compiled up front when
// the device reports fragment programs) and the gradient color ramp.
//
// # Stencil-then-cover
//
// State carries presets for the passes a surface issues. A fill first
// writes the winding of its triangle fan into the stencil buffer with
// color writes off (FillMask), then draws a quad over the mesh bounds that
// shades every pixel with a non-zero stencil and resets it (Cover). Strokes
// use StrokeMask so overlapping strip triangles count once. Clipping
// writes depth outside the clip path (ClipWrite) so later draws fail the
// depth test there.
package render
