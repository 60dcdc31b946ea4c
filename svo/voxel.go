// Copyright 2024 The Voxen Authors. All rights reserved.

// Package svo implements a sparse voxel octree (SVO): a
// hierarchical, serializable, mutable volume store indexed
// by integer lattice coordinates, with a per-leaf payload
// of packed color and material tag.
package svo

// Voxel is the per-leaf payload: a packed 32-bit RGBA color
// and a small material tag. It is opaque to the tree: Octree
// only requires equality (==, since Voxel has no pointer
// fields) and the Mean operator used to coarsen a uniform
// subtree into a single value.
type Voxel struct {
	Color uint32 // Packed 0xRRGGBBAA.
	Tag   uint8  // Material id.
}

// RGBA splits Color into its four channels.
func (v Voxel) RGBA() (r, g, b, a uint8) {
	return uint8(v.Color >> 24), uint8(v.Color >> 16), uint8(v.Color >> 8), uint8(v.Color)
}

// NewVoxel packs r, g, b, a and tag into a Voxel.
func NewVoxel(r, g, b, a, tag uint8) Voxel {
	return Voxel{
		Color: uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a),
		Tag:   tag,
	}
}

// MeanVoxel averages a non-empty set of voxels channel-wise
// and takes the tag of the first entry (ties in material
// identity are not meaningful once colors are blended).
// Used when flattening a subtree past the requested
// traversal depth into a single representative leaf.
func MeanVoxel(vs []Voxel) Voxel {
	if len(vs) == 0 {
		return Voxel{}
	}
	var r, g, b, a uint32
	for _, v := range vs {
		cr, cg, cb, ca := v.RGBA()
		r += uint32(cr)
		g += uint32(cg)
		b += uint32(cb)
		a += uint32(ca)
	}
	n := uint32(len(vs))
	return NewVoxel(uint8(r/n), uint8(g/n), uint8(b/n), uint8(a/n), vs[0].Tag)
}
