//go:build !nogpu

package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/gpath/render"
)

// Embedded WGSL sources. Every program is the common prelude followed by
// one fragment stage.

//go:embed shaders/common.wgsl
var commonSource string

//go:embed shaders/solid.wgsl
var solidSource string

//go:embed shaders/linear.wgsl
var linearSource string

//go:embed shaders/radial.wgsl
var radialSource string

//go:embed shaders/cubic.wgsl
var cubicSource string

// shaderSource returns the complete WGSL module of s.
func shaderSource(s render.Shader) (string, error) {
	var frag string
	switch s {
	case render.ShaderSolid:
		frag = solidSource
	case render.ShaderLinear:
		frag = linearSource
	case render.ShaderRadial:
		frag = radialSource
	case render.ShaderCubicFill:
		frag = cubicSource
	default:
		return "", fmt.Errorf("wgpu: unknown shader %d", s)
	}
	return commonSource + "\n" + frag, nil
}

// programShader is the shader a fragment program implements.
func programShader(k render.ProgramKind) (render.Shader, error) {
	switch k {
	case render.ProgramRadial:
		return render.ShaderRadial, nil
	case render.ProgramCubicFill:
		return render.ShaderCubicFill, nil
	default:
		return 0, fmt.Errorf("wgpu: unknown program %d", k)
	}
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(src string) ([]uint32, error) {
	b, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader: %w", err)
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("wgpu: SPIR-V of %d bytes", len(b))
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[4*i]) |
			uint32(b[4*i+1])<<8 |
			uint32(b[4*i+2])<<16 |
			uint32(b[4*i+3])<<24
	}
	return words, nil
}
