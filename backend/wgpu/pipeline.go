//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/gpath"
	"github.com/gogpu/gpath/render"
)

// depthStencilFormat is the format of the combined depth/stencil buffer.
const depthStencilFormat = gputypes.TextureFormatDepth24PlusStencil8

// pipelineKey identifies a render pipeline. Everything a RenderOperation
// sets that WebGPU bakes into pipeline state is part of the key; the
// stencil reference is dynamic.
type pipelineKey struct {
	shader   render.Shader
	layout   render.Layout
	topology gputypes.PrimitiveTopology
	cull     gputypes.CullMode
	mask     gputypes.ColorWriteMask
	blended  bool
	blend    gputypes.BlendState
	ds       gputypes.DepthStencilState
}

func keyOf(op *render.RenderOperation) pipelineKey {
	k := pipelineKey{
		shader:   op.Paint.Shader,
		layout:   op.Layout,
		topology: op.Topology,
		cull:     op.State.Cull,
		mask:     op.State.ColorWriteMask(),
		ds:       op.State.DepthStencil(depthStencilFormat),
	}
	if op.State.Blend != nil {
		k.blended, k.blend = true, *op.State.Blend
	}
	return k
}

// pipelineCache creates render pipelines on first use. Shader modules are
// compiled ahead of time by the device; a pipeline for a shader without a
// module is an error.
type pipelineCache struct {
	dev       *wgpu.Device
	format    gputypes.TextureFormat
	layout    *wgpu.PipelineLayout
	modules   map[render.Shader]*wgpu.ShaderModule
	pipelines map[pipelineKey]*wgpu.RenderPipeline
}

func newPipelineCache(dev *wgpu.Device, format gputypes.TextureFormat, layout *wgpu.PipelineLayout) *pipelineCache {
	return &pipelineCache{
		dev:       dev,
		format:    format,
		layout:    layout,
		modules:   make(map[render.Shader]*wgpu.ShaderModule),
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
	}
}

// compile creates the shader module of s unless it exists.
func (c *pipelineCache) compile(s render.Shader) error {
	if _, ok := c.modules[s]; ok {
		return nil
	}
	src, err := shaderSource(s)
	if err != nil {
		return err
	}
	spirv, err := compileSPIRV(src)
	if err != nil {
		return fmt.Errorf("%s: %w", s, err)
	}
	mod, err := c.dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "gpath_" + s.String(),
		SPIRV: spirv,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create %s shader module: %w", s, err)
	}
	c.modules[s] = mod
	return nil
}

func (c *pipelineCache) get(k pipelineKey) (*wgpu.RenderPipeline, error) {
	if p, ok := c.pipelines[k]; ok {
		return p, nil
	}
	mod, ok := c.modules[k.shader]
	if !ok {
		return nil, fmt.Errorf("wgpu: %s shader not compiled: %w", k.shader, gpath.ErrInvariant)
	}

	entry := "vs_main"
	if k.layout.Textured() {
		entry = "vs_spline"
	}
	target := gputypes.ColorTargetState{Format: c.format, WriteMask: k.mask}
	if k.blended {
		b := k.blend
		target.Blend = &b
	}

	p, err := c.dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("gpath_%s_%s", k.shader, k.layout),
		Layout: c.layout,
		Vertex: wgpu.VertexState{
			Module:     mod,
			EntryPoint: entry,
			Buffers:    k.layout.VertexBuffers(),
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  k.topology,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  k.cull,
		},
		DepthStencil: depthStencil(k.ds),
		Multisample:  gputypes.DefaultMultisampleState(),
		Fragment: &wgpu.FragmentState{
			Module:     mod,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create %s pipeline: %w", k.shader, err)
	}
	gpath.Logger().Debug("wgpu: pipeline created",
		"shader", k.shader.String(), "layout", k.layout.String(), "count", len(c.pipelines)+1)
	c.pipelines[k] = p
	return p, nil
}

func (c *pipelineCache) release() {
	for k, p := range c.pipelines {
		p.Release()
		delete(c.pipelines, k)
	}
	for s, m := range c.modules {
		m.Release()
		delete(c.modules, s)
	}
}

// stencilOp converts a gputypes stencil operation to the wgpu encoding,
// which starts at Keep instead of an undefined value.
func stencilOp(op gputypes.StencilOperation) wgpu.StencilOperation {
	switch op {
	case gputypes.StencilOperationZero:
		return wgpu.StencilOperationZero
	case gputypes.StencilOperationReplace:
		return wgpu.StencilOperationReplace
	case gputypes.StencilOperationInvert:
		return wgpu.StencilOperationInvert
	case gputypes.StencilOperationIncrementClamp:
		return wgpu.StencilOperationIncrementClamp
	case gputypes.StencilOperationDecrementClamp:
		return wgpu.StencilOperationDecrementClamp
	case gputypes.StencilOperationIncrementWrap:
		return wgpu.StencilOperationIncrementWrap
	case gputypes.StencilOperationDecrementWrap:
		return wgpu.StencilOperationDecrementWrap
	default:
		return wgpu.StencilOperationKeep
	}
}

func stencilFace(f gputypes.StencilFaceState) wgpu.StencilFaceState {
	cmp := f.Compare
	if cmp == gputypes.CompareFunctionUndefined {
		cmp = gputypes.CompareFunctionAlways
	}
	return wgpu.StencilFaceState{
		Compare:     cmp,
		FailOp:      stencilOp(f.FailOp),
		DepthFailOp: stencilOp(f.DepthFailOp),
		PassOp:      stencilOp(f.PassOp),
	}
}

func depthStencil(ds gputypes.DepthStencilState) *wgpu.DepthStencilState {
	return &wgpu.DepthStencilState{
		Format:            ds.Format,
		DepthWriteEnabled: ds.DepthWriteEnabled,
		DepthCompare:      ds.DepthCompare,
		StencilFront:      stencilFace(ds.StencilFront),
		StencilBack:       stencilFace(ds.StencilBack),
		StencilReadMask:   ds.StencilReadMask,
		StencilWriteMask:  ds.StencilWriteMask,
	}
}
