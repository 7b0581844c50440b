//go:build !nogpu

// Package wgpu implements render.Device on gogpu/wgpu, the Pure Go WebGPU
// implementation (Vulkan, Metal, DX12 and GLES).
//
// Draws are recorded into an offscreen RGBA8 texture with a
// Depth24PlusStencil8 attachment. Each RenderOperation becomes one render
// pass that loads and stores every attachment, so stencil-then-cover
// sequences see the results of earlier draws. Pipelines are created on
// first use and cached by the fixed-function state they bake in.
//
// The fragment stages are WGSL programs compiled to SPIR-V with naga: a
// solid color, a linear ramp lookup, the two-point conical gradient and
// the Loop-Blinn cubic discard. Ramps are one-row textures read with
// textureLoad; the extend mode is applied in the shader.
//
// The target pixels are only updated by Flush, which copies the color
// texture back through a staging buffer.
//
// # Registration
//
// Importing the package registers the backend under backend.BackendWGPU:
//
//	import _ "github.com/gogpu/gpath/backend/wgpu"
//
//	dev, name, err := backend.Default(800, 600) // wgpu when a GPU is present
//
// Applications that already own a device pass it through NewFromHandle.
// Building with the nogpu tag leaves the package empty.
package wgpu
