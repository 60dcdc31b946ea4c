// Copyright 2024 The Voxen Authors. All rights reserved.

package shaderbind

import "github.com/voxen-engine/voxen/voxelize"

// Frame carries the per-frame/per-draw uniform values a
// ShaderUniformSemantic may resolve to. Byte layout for
// push-constant semantics is caller-defined; Frame only
// supplies the values, not their encoding.
type Frame struct {
	ModelViewProjection        [16]float32
	ModelView                  [16]float32
	InverseModel               [16]float32
	InverseModelViewProjection [16]float32
	AmbientColor               [4]float32
	LightColor                 [4]float32
	LightDir                   [3]float32
	ViewportW, ViewportH       uint32
}

// Defaults holds the device-wide fallback resources
// substituted when a material is missing a property a
// shader's reflected layout expects, so that a mesh is never
// un-drawable: a 1x1 magenta texture and a clamp-to-edge
// sampler.
type Defaults struct {
	MagentaTexture *voxelize.Texture
	ClampSampler   voxelize.SamplerState
}

// NewDefaults builds the standard fallback resource set.
func NewDefaults() Defaults {
	return Defaults{
		MagentaTexture: &voxelize.Texture{
			Width: 1, Height: 1,
			Pixels: []byte{255, 0, 255, 255},
		},
		ClampSampler: voxelize.SamplerState{
			WrapU: voxelize.ClampToEdge,
			WrapV: voxelize.ClampToEdge,
		},
	}
}

// ResolvedBinding is a fully resolved value ready to write
// into a descriptor table entry or a push-constant byte
// range.
type ResolvedBinding struct {
	Location ShaderBindingLocation
	Texture  *voxelize.Texture
	Sampler  voxelize.SamplerState
	Scalar   float32
	Vector   [4]float32
	Matrix   [16]float32
	HasValue bool
}

// Resolve walks m's resource semantics and returns one
// ResolvedBinding per entry: material-backed semantics are
// looked up on mat, substituting def when the material lacks
// the property; uniform semantics pull their value from fr.
func Resolve(m *MaterialShaderMap, mat *voxelize.Material, fr *Frame, def Defaults) []ResolvedBinding {
	out := make([]ResolvedBinding, 0, len(m.ResourceSemantics))
	for loc, sem := range m.ResourceSemantics {
		if sem.IsUniform {
			out = append(out, resolveUniform(loc, sem.Uniform, fr))
			continue
		}
		out = append(out, resolveMaterial(loc, sem.Material, mat, def))
	}
	return out
}

func resolveUniform(loc ShaderBindingLocation, sem ShaderUniformSemantic, fr *Frame) ResolvedBinding {
	rb := ResolvedBinding{Location: loc, HasValue: true}
	switch sem {
	case SemModelViewProjection:
		rb.Matrix = fr.ModelViewProjection
	case SemModelView:
		rb.Matrix = fr.ModelView
	case SemInverseModel:
		rb.Matrix = fr.InverseModel
	case SemInverseModelViewProjection:
		rb.Matrix = fr.InverseModelViewProjection
	case SemAmbientColor:
		rb.Vector = fr.AmbientColor
	case SemLightColor:
		rb.Vector = fr.LightColor
	case SemLightDir:
		copy(rb.Vector[:3], fr.LightDir[:])
	case SemViewportSize:
		rb.Vector[0] = float32(fr.ViewportW)
		rb.Vector[1] = float32(fr.ViewportH)
	default:
		rb.HasValue = false
	}
	return rb
}

func resolveMaterial(loc ShaderBindingLocation, sem MaterialSemantic, mat *voxelize.Material, def Defaults) ResolvedBinding {
	rb := ResolvedBinding{Location: loc}
	switch sem {
	case SemBaseColorTexture:
		if p, ok := mat.Property(voxelize.BaseColorTexture); ok && p.Kind == voxelize.KindTexture && p.Texture != nil {
			rb.Texture, rb.Sampler = p.Texture, p.Sampler
		} else {
			rb.Texture, rb.Sampler = def.MagentaTexture, def.ClampSampler
		}
		rb.HasValue = true
	case SemBaseColorSampler:
		if p, ok := mat.Property(voxelize.BaseColorTexture); ok && p.Kind == voxelize.KindTexture {
			rb.Sampler = p.Sampler
		} else {
			rb.Sampler = def.ClampSampler
		}
		rb.HasValue = true
	case SemBaseColor:
		if p, ok := mat.Property(voxelize.BaseColor); ok && p.Kind == voxelize.KindColor {
			rb.Vector = p.Color
		} else {
			rb.Vector = [4]float32{1, 1, 1, 1}
		}
		rb.HasValue = true
	case SemMetallic:
		rb.Scalar, rb.HasValue = scalarOr(mat, voxelize.Metallic, 0), true
	case SemRoughness:
		rb.Scalar, rb.HasValue = scalarOr(mat, voxelize.Roughness, 1), true
	case SemNormalTexture:
		if p, ok := mat.Property(voxelize.NormalTexture); ok && p.Kind == voxelize.KindTexture && p.Texture != nil {
			rb.Texture, rb.Sampler = p.Texture, p.Sampler
		} else {
			rb.Texture, rb.Sampler = def.MagentaTexture, def.ClampSampler
		}
		rb.HasValue = true
	}
	return rb
}

func scalarOr(mat *voxelize.Material, key voxelize.PropertyKey, fallback float32) float32 {
	if p, ok := mat.Property(key); ok && p.Kind == voxelize.KindScalar {
		return p.Scalar
	}
	return fallback
}
