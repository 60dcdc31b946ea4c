// Copyright 2024 The Voxen Authors. All rights reserved.

// Package shaderbind maps reflected shader resource and
// push-constant locations to named semantics, and resolves
// those semantics against a Material plus a fixed set of
// per-frame uniform values to produce the concrete bindings a
// driver.CmdBuffer needs.
package shaderbind

import "github.com/voxen-engine/voxen/driver"

// MaterialSemantic names a material-derived binding.
type MaterialSemantic int

const (
	SemBaseColor MaterialSemantic = iota
	SemBaseColorTexture
	SemBaseColorSampler
	SemMetallic
	SemRoughness
	SemNormalTexture
)

// ShaderUniformSemantic names a per-frame/per-draw uniform
// binding that does not come from a material.
type ShaderUniformSemantic int

const (
	SemModelViewProjection ShaderUniformSemantic = iota
	SemModelView
	SemInverseModel
	SemInverseModelViewProjection
	SemAmbientColor
	SemLightColor
	SemLightDir
	SemViewportSize
)

// VertexAttrSemantic names a vertex input attribute.
type VertexAttrSemantic int

const (
	AttrPosition VertexAttrSemantic = iota
	AttrNormal
	AttrTextureCoordinates
	AttrColor
	AttrTangent
)

// ShaderBindingLocation identifies one resource slot in a
// shader's reflected layout: a descriptor set/binding pair,
// or, when Offset is nonzero, a byte range within the
// push-constant block.
type ShaderBindingLocation struct {
	Set, Binding, Offset int
}

// ResourceSemantic is either a MaterialSemantic or a
// ShaderUniformSemantic; IsUniform selects which of the two
// fields applies.
type ResourceSemantic struct {
	Material MaterialSemantic
	Uniform  ShaderUniformSemantic
	IsUniform bool
}

// MaterialShaderMap pairs a vertex and fragment shader
// function with the tables needed to bind a mesh draw:
// reflected resource locations to semantics, and reflected
// input attribute locations to vertex semantics.
type MaterialShaderMap struct {
	Vertex, Fragment driver.ShaderFunc

	ResourceSemantics       map[ShaderBindingLocation]ResourceSemantic
	InputAttributeSemantics map[int]VertexAttrSemantic
}
