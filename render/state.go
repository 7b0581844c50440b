// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpath"
)

// Layout selects which vertex buffers a draw reads.
type Layout int

const (
	// LayoutSource reads positions for cover and paint quads.
	LayoutSource Layout = iota
	// LayoutStencil reads positions for stencil masks.
	LayoutStencil
	// LayoutSpline reads positions and texture coordinates for the cubic
	// fill pass.
	LayoutSpline
)

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutSource:
		return "source"
	case LayoutStencil:
		return "stencil"
	case LayoutSpline:
		return "spline"
	default:
		return "unknown"
	}
}

// Textured reports whether the layout reads texture coordinates.
func (l Layout) Textured() bool {
	return l == LayoutSpline
}

const vec3Stride = 3 * 4

// VertexBuffers returns the buffer layouts of l: position at location 0
// and, for LayoutSpline, texture coordinates at location 1. Each attribute
// lives in a buffer of its own.
func (l Layout) VertexBuffers() []gputypes.VertexBufferLayout {
	out := []gputypes.VertexBufferLayout{{
		ArrayStride: vec3Stride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		},
	}}
	if l.Textured() {
		out = append(out, gputypes.VertexBufferLayout{
			ArrayStride: vec3Stride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
			},
		})
	}
	return out
}

// State is the fixed-function state of a draw.
type State struct {
	// Transform maps pixel coordinates to normalized device coordinates.
	Transform gpath.Matrix4

	Cull       gputypes.CullMode
	ColorWrite bool

	// Blend is nil for replacement.
	Blend *gputypes.BlendState

	// StencilTest enables the stencil faces. Back faces are those wound
	// clockwise in device coordinates.
	StencilTest  bool
	StencilFront gputypes.StencilFaceState
	StencilBack  gputypes.StencilFaceState
	StencilRef   uint8

	// DepthTest compares the fragment depth with DepthCompare.
	DepthTest    bool
	DepthCompare gputypes.CompareFunction
	DepthWrite   bool
}

// WorldMatrix maps pixel coordinates of a width x height target, y down,
// to normalized device coordinates, y up.
func WorldMatrix(width, height int) gpath.Matrix4 {
	return gpath.Translate4(-1, 1, 0).Mul(gpath.Scale4(2/float32(width), -2/float32(height), 1))
}

// InitialState returns the state every surface operation starts from:
// the world transform, no culling, color writes with source-over alpha
// blending and the stencil disabled. With clipped set the depth test
// rejects fragments outside the clip.
func InitialState(width, height int, clipped bool) State {
	blend := gputypes.BlendStateAlpha()
	s := State{
		Transform:    WorldMatrix(width, height),
		Cull:         gputypes.CullModeNone,
		ColorWrite:   true,
		Blend:        &blend,
		DepthCompare: gputypes.CompareFunctionLessEqual,
	}
	if clipped {
		s.DepthTest = true
		s.DepthCompare = gputypes.CompareFunctionLess
	}
	return s
}

func face(cmp gputypes.CompareFunction, op gputypes.StencilOperation) gputypes.StencilFaceState {
	return gputypes.StencilFaceState{Compare: cmp, FailOp: op, DepthFailOp: op, PassOp: op}
}

// FillMask returns s configured to accumulate the winding of a triangle
// fan in the stencil buffer. NonZero counts front faces up and back faces
// down; EvenOdd inverts on every covering triangle. Color writes are off.
func (s State) FillMask(rule gpath.FillRule) State {
	s.ColorWrite = false
	s.StencilTest = true
	s.StencilRef = 0
	switch rule {
	case gpath.FillRuleEvenOdd:
		s.StencilFront = face(gputypes.CompareFunctionAlways, gputypes.StencilOperationInvert)
		s.StencilBack = s.StencilFront
	default:
		s.StencilFront = face(gputypes.CompareFunctionAlways, gputypes.StencilOperationIncrementWrap)
		s.StencilBack = face(gputypes.CompareFunctionAlways, gputypes.StencilOperationDecrementWrap)
	}
	return s
}

// StrokeMask returns s configured to mark each pixel of a stroke once:
// the stencil passes only where it is still zero and then saturates.
func (s State) StrokeMask() State {
	s.ColorWrite = false
	s.StencilTest = true
	s.StencilRef = 0
	s.StencilFront = gputypes.StencilFaceState{
		Compare:     gputypes.CompareFunctionEqual,
		FailOp:      gputypes.StencilOperationKeep,
		DepthFailOp: gputypes.StencilOperationKeep,
		PassOp:      gputypes.StencilOperationIncrementClamp,
	}
	s.StencilBack = s.StencilFront
	return s
}

// Cover returns s configured to shade pixels with a non-zero stencil and
// reset every stencil value it touches.
func (s State) Cover() State {
	s.ColorWrite = true
	s.StencilTest = true
	s.StencilRef = 0
	s.StencilFront = face(gputypes.CompareFunctionNotEqual, gputypes.StencilOperationZero)
	s.StencilBack = s.StencilFront
	return s
}

// ClipWrite returns s configured to write depth where the clip path left
// a zero stencil, clearing the stencil everywhere.
func (s State) ClipWrite() State {
	s.ColorWrite = false
	s.DepthWrite = true
	s.StencilTest = true
	s.StencilRef = 0
	s.StencilFront = face(gputypes.CompareFunctionEqual, gputypes.StencilOperationZero)
	s.StencilBack = s.StencilFront
	return s
}

// DepthStencil returns the state as a gputypes descriptor for format.
// Disabled tests become Always comparisons that keep the stored values.
func (s State) DepthStencil(format gputypes.TextureFormat) gputypes.DepthStencilState {
	ds := gputypes.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: s.DepthWrite,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      face(gputypes.CompareFunctionAlways, gputypes.StencilOperationKeep),
		StencilBack:       face(gputypes.CompareFunctionAlways, gputypes.StencilOperationKeep),
		StencilReadMask:   0xff,
		StencilWriteMask:  0xff,
	}
	if s.DepthTest {
		ds.DepthCompare = s.DepthCompare
	}
	if s.StencilTest {
		ds.StencilFront, ds.StencilBack = s.StencilFront, s.StencilBack
	}
	return ds
}

// ColorWriteMask returns the channels a draw with s writes.
func (s State) ColorWriteMask() gputypes.ColorWriteMask {
	if s.ColorWrite {
		return gputypes.ColorWriteMaskAll
	}
	return gputypes.ColorWriteMaskNone
}

// Shader selects how a draw computes fragment colors.
type Shader int

const (
	// ShaderSolid shades with Paint.Color.
	ShaderSolid Shader = iota
	// ShaderLinear samples the ramp at row 0 of Paint.Matrix applied to the
	// pixel position.
	ShaderLinear
	// ShaderRadial runs the radial program on Paint.Matrix applied to the
	// pixel position and samples the ramp at the result.
	ShaderRadial
	// ShaderCubicFill discards fragments outside the curve given by the
	// interpolated texture coordinate. Color writes are usually off.
	ShaderCubicFill
)

// String returns the shader name.
func (s Shader) String() string {
	switch s {
	case ShaderSolid:
		return "solid"
	case ShaderLinear:
		return "linear"
	case ShaderRadial:
		return "radial"
	case ShaderCubicFill:
		return "cubic-fill"
	default:
		return "unknown"
	}
}

// Paint binds the shading of a draw.
type Paint struct {
	Shader Shader
	Color  gpath.RGBA

	// Ramp and Extend are used by the gradient shaders. Extend selects the
	// ramp addressing: None samples transparent outside [0, 1], Pad clamps,
	// Repeat wraps and Reflect mirrors.
	Ramp   Ramp
	Extend gpath.ExtendMode

	// Matrix maps pixel coordinates to the gradient texture coordinate.
	Matrix gpath.Matrix4

	// Program is the fragment program of ShaderRadial and ShaderCubicFill.
	Program Program

	// Constants are the program constants. For ShaderRadial they are the
	// second circle center relative to the first and both radii.
	Constants [4]float32
}

// RenderOperation is one draw call.
type RenderOperation struct {
	Topology gputypes.PrimitiveTopology
	Layout   Layout

	Positions Buffer
	TexCoords Buffer

	// Indices is nil for non-indexed draws.
	Indices Buffer

	// Count is the number of indices, or of vertices when Indices is nil.
	Count int

	State State
	Paint Paint
}
