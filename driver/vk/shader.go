// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

// ShaderCode wraps a compiled SPIR-V module. Reflection data
// is supplied by the caller at construction time; this
// package does not parse SPIR-V itself (that is the job of
// an offline reflector, not the runtime driver).
type ShaderCode struct {
	gpu    *GPU
	vk     vkc.ShaderModule
	reflect driver.ShaderReflection
}

// NewShaderCode creates a shader module from SPIR-V bytes.
// Reflection metadata is left empty; callers that need
// binding/push-constant layout information attach it via
// SetReflection after construction, mirroring how a build
// step would stitch offline-reflected JSON onto the binary.
func (g *GPU) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	info := vkc.ShaderModuleCreateInfo{
		SType:    vkc.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    bytesToUint32(data),
	}
	var mod vkc.ShaderModule
	if res := vkc.CreateShaderModule(g.dev, &info, nil, &mod); res != vkc.Success {
		return nil, newVkErr("create shader module", res)
	}
	return &ShaderCode{gpu: g, vk: mod}, nil
}

func bytesToUint32(b []byte) []uint32 {
	out := make([]uint32, (len(b)+3)/4)
	for i := range out {
		var w uint32
		for j := 0; j < 4; j++ {
			idx := i*4 + j
			if idx < len(b) {
				w |= uint32(b[idx]) << (8 * uint(j))
			}
		}
		out[i] = w
	}
	return out
}

func (s *ShaderCode) Destroy() { vkc.DestroyShaderModule(s.gpu.dev, s.vk, nil) }

// Reflect returns the metadata attached via SetReflection, or
// the zero value if none was set.
func (s *ShaderCode) Reflect() driver.ShaderReflection { return s.reflect }

// SetReflection attaches reflection metadata produced by an
// external tool to this shader code object.
func (s *ShaderCode) SetReflection(r driver.ShaderReflection) { s.reflect = r }
