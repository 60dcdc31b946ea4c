// Copyright 2024 The Voxen Authors. All rights reserved.

// Package voxelize converts a stream of triangles into a
// sparse voxel octree, resolving each occupied leaf's color
// through a caller-supplied material resolver.
package voxelize

import "github.com/voxen-engine/voxen/linear"

// PropertyKey names a material property slot.
type PropertyKey int

const (
	BaseColor PropertyKey = iota
	BaseColorTexture
	Metallic
	Roughness
	NormalTexture
)

// PropertyKind tags the concrete type held by a Property.
type PropertyKind int

const (
	KindScalar PropertyKind = iota
	KindVector
	KindColor
	KindTexture
)

// Property is a tagged material value: a scalar, a vector, a
// packed color, or a texture+sampler pair. Only the field
// matching Kind is meaningful.
type Property struct {
	Kind    PropertyKind
	Scalar  float32
	Vector  linear.V3
	Color   [4]float32
	Texture *Texture
	Sampler SamplerState
}

// AddrMode selects texture wrap behavior along one axis.
type AddrMode int

const (
	Repeat AddrMode = iota
	ClampToEdge
	MirrorRepeat
)

// SamplerState is the minimal sampling state voxelize needs
// to read texels: nearest-neighbor wrap behavior per axis.
type SamplerState struct {
	WrapU, WrapV AddrMode
}

// Texture holds decoded RGBA8 texel data and its dimensions.
// Decoding (PNG/JPEG) happens before voxelize sees the data;
// see DecodeTexture.
type Texture struct {
	Width, Height int
	Pixels        []byte // RGBA8, row-major, Width*Height*4 bytes.
}

// At samples the nearest texel at wrapped UV coordinates
// u, v ∈ [0,1) (wrapping applied per mode) and returns its
// RGBA channels.
func (tx *Texture) At(u, v float32, wrapU, wrapV AddrMode) (r, g, b, a uint8) {
	if tx == nil || tx.Width == 0 || tx.Height == 0 {
		return 255, 255, 255, 255
	}
	x := wrapCoord(u, tx.Width, wrapU)
	y := wrapCoord(v, tx.Height, wrapV)
	i := (y*tx.Width + x) * 4
	return tx.Pixels[i], tx.Pixels[i+1], tx.Pixels[i+2], tx.Pixels[i+3]
}

func wrapCoord(t float32, size int, mode AddrMode) int {
	switch mode {
	case ClampToEdge:
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
	case MirrorRepeat:
		t -= 2 * floor(t/2)
		if t > 1 {
			t = 2 - t
		}
	default: // Repeat.
		t -= floor(t)
		if t < 0 {
			t += 1
		}
	}
	i := int(t * float32(size))
	if i >= size {
		i = size - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func floor(x float32) float32 {
	i := float32(int(x))
	if x < 0 && i != x {
		i--
	}
	return i
}

// Material holds a property map keyed by PropertyKey, plus a
// name for diagnostics.
type Material struct {
	Name       string
	Properties map[PropertyKey]Property
}

// Property looks up key, returning the zero Property and
// false if absent.
func (m *Material) Property(key PropertyKey) (Property, bool) {
	if m == nil || m.Properties == nil {
		return Property{}, false
	}
	p, ok := m.Properties[key]
	return p, ok
}

// Vertex is one corner of a MaterialFace: a position, UV and
// per-vertex RGBA color.
type Vertex struct {
	Pos   linear.V3
	UV    [2]float32
	Color [4]float32
}

// MaterialFace is one triangle, carrying a reference to the
// Material it is drawn with.
type MaterialFace struct {
	V        [3]Vertex
	Material *Material
}

// Normal returns the face's (unnormalized) geometric normal.
func (f *MaterialFace) Normal() linear.V3 {
	var e1, e2, n linear.V3
	e1.Sub(&f.V[1].Pos, &f.V[0].Pos)
	e2.Sub(&f.V[2].Pos, &f.V[0].Pos)
	n.Cross(&e1, &e2)
	return n
}
