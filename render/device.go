// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/gpath"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host owns the device and queue; the wgpu backend builds a Device on
// top of them instead of creating its own. DeviceHandle is an alias for
// gpucontext.DeviceProvider so any gpucontext host can be passed directly.
type DeviceHandle = gpucontext.DeviceProvider

// Capabilities describes what a device can do.
type Capabilities struct {
	// FragmentPrograms reports support for the radial gradient and cubic
	// fill programs.
	FragmentPrograms bool

	// MaxTextureSize is the maximum texture dimension supported.
	MaxTextureSize uint32

	// VendorName is the GPU vendor name.
	VendorName string

	// DeviceName is the GPU device name.
	DeviceName string
}

// BufferKind selects the contents of a hardware buffer.
type BufferKind int

const (
	// BufferPosition holds vertex positions (x, y, z).
	BufferPosition BufferKind = iota
	// BufferTexCoord holds vertex texture coordinates (s, t, r).
	BufferTexCoord
	// BufferIndex holds 16-bit vertex indices.
	BufferIndex
)

// String returns the buffer kind name.
func (k BufferKind) String() string {
	switch k {
	case BufferPosition:
		return "position"
	case BufferTexCoord:
		return "texcoord"
	case BufferIndex:
		return "index"
	default:
		return "unknown"
	}
}

// Buffer is a device vertex or index buffer.
type Buffer interface {
	// Kind returns what the buffer holds.
	Kind() BufferKind

	// Len returns the capacity in elements.
	Len() int

	// Destroy releases the buffer.
	Destroy()
}

// Ramp is a one-dimensional color texture sampled by gradient paints.
type Ramp interface {
	// Width returns the number of texels.
	Width() int

	// Destroy releases the texture.
	Destroy()
}

// ProgramKind identifies a fragment program.
type ProgramKind int

const (
	// ProgramRadial computes the radial gradient parameter per fragment.
	ProgramRadial ProgramKind = iota
	// ProgramCubicFill discards fragments outside the implicit curve
	// k³ - l·m <= 0 of the interpolated texture coordinate.
	ProgramCubicFill
)

// String returns the program name.
func (k ProgramKind) String() string {
	switch k {
	case ProgramRadial:
		return "radial"
	case ProgramCubicFill:
		return "cubic-fill"
	default:
		return "unknown"
	}
}

// Program is a compiled fragment program.
type Program interface {
	// Kind returns which program this is.
	Kind() ProgramKind

	// Destroy releases the program.
	Destroy()
}

// ClearFlags selects the buffers Clear resets.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil
)

// Device is the hardware abstraction the path engine draws through. A
// device renders into one target and is used from a single goroutine.
type Device interface {
	// Capabilities reports the device features.
	Capabilities() Capabilities

	// Target returns the surface the device renders into.
	Target() RenderTarget

	// CreateBuffer allocates a buffer of count elements.
	CreateBuffer(kind BufferKind, count int) (Buffer, error)

	// WriteVertices uploads positions or texture coordinates to the start
	// of buf.
	WriteVertices(buf Buffer, data []f32.Vec3) error

	// WriteIndices uploads indices to the start of buf.
	WriteIndices(buf Buffer, data []uint16) error

	// CreateRamp allocates a color ramp of width texels.
	CreateRamp(width int) (Ramp, error)

	// WriteRamp uploads ARGB texels to r.
	WriteRamp(r Ramp, texels []uint32) error

	// CreateProgram compiles a fragment program.
	CreateProgram(kind ProgramKind) (Program, error)

	// Clear resets the selected buffers of the target.
	Clear(flags ClearFlags, color gpath.RGBA, depth float32, stencil uint8) error

	// Render draws op.
	Render(op *RenderOperation) error
}

// Flusher is implemented by devices that render somewhere other than the
// target pixels. Flush makes the target reflect every draw submitted so
// far. Devices without it write the target directly.
type Flusher interface {
	Flush() error
}
