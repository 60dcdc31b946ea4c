// Copyright 2024 The Voxen Authors. All rights reserved.

package voxelize

import (
	"github.com/voxen-engine/voxen/linear"
	"github.com/voxen-engine/voxen/svo"
)

// Resolver resolves the color of one occupied leaf of the
// voxelization tree, given the material faces present in it
// and the leaf's center in the normalized unit-cube coordinate
// space ([0,1]^3) that Voxelize subdivides in. faces are the
// same faces passed to Voxelize, transformed into that space.
type Resolver func(faces []MaterialFace, triIndices []int, center linear.V3) (r, g, b, a uint8)

// Voxelize builds a svo.Model of the given depth from faces,
// resolving each occupied leaf's payload through resolve.
// The model's AABB is the (possibly axis-fixed) bounding box
// of faces in their original coordinate space.
func Voxelize(faces []MaterialFace, depth int, resolve Resolver) *svo.Model {
	box := facesAABB(faces)
	box.Fix()

	toUnit, _ := linear.ScaleTranslate(&box)
	unitFaces := make([]MaterialFace, len(faces))
	for i, f := range faces {
		unitFaces[i] = f
		for j := range f.V {
			unitFaces[i].V[j].Pos = transformPoint(&toUnit, f.V[j].Pos)
		}
	}

	all := make([]int, len(unitFaces))
	for i := range all {
		all[i] = i
	}
	root := newTriOctree(linear.AABB{Min: linear.V3{0, 0, 0}, Max: linear.V3{1, 1, 1}}, all)
	root.subdivide(unitFaces, depth)

	model := svo.NewModel(depth, box.Min, box.Max)
	walkLeaves(root, depth, func(x, y, z uint32, tris []int) {
		cx, cy, cz := leafCenter(x, y, z, depth)
		r, g, b, a := resolve(unitFaces, tris, linear.V3{cx, cy, cz})
		model.Tree.Insert(x, y, z, svo.NewVoxel(r, g, b, a, 0))
	})
	return model
}

// walkLeaves re-derives each node's lattice coordinate from
// the child octant indices taken to reach it (mirroring
// subdivide's own box.Octant(i) split), so Insert can be
// addressed directly without keeping a side table.
func walkLeaves(n *triOctree, targetDepth int, visit func(x, y, z uint32, tris []int)) {
	walk(n, 0, 0, 0, 0, targetDepth, visit)
}

func walk(n *triOctree, x, y, z, depth uint32, targetDepth int, visit func(x, y, z uint32, tris []int)) {
	if n == nil {
		return
	}
	if n.isLeaf() {
		if len(n.tris) > 0 && int(depth) == targetDepth {
			visit(x, y, z, n.tris)
		}
		return
	}
	for i, c := range n.children {
		if c == nil {
			continue
		}
		cx := x<<1 | uint32(i&1)
		cy := y<<1 | uint32((i>>1)&1)
		cz := z<<1 | uint32((i>>2)&1)
		walk(c, cx, cy, cz, depth+1, targetDepth, visit)
	}
}

func leafCenter(x, y, z uint32, depth int) (cx, cy, cz float32) {
	res := float32(uint32(1) << uint(depth))
	return (float32(x) + 0.5) / res, (float32(y) + 0.5) / res, (float32(z) + 0.5) / res
}

func facesAABB(faces []MaterialFace) linear.AABB {
	if len(faces) == 0 {
		return linear.AABB{}
	}
	box := linear.AABB{Min: faces[0].V[0].Pos, Max: faces[0].V[0].Pos}
	for _, f := range faces {
		for _, v := range f.V {
			for i := 0; i < 3; i++ {
				if v.Pos[i] < box.Min[i] {
					box.Min[i] = v.Pos[i]
				}
				if v.Pos[i] > box.Max[i] {
					box.Max[i] = v.Pos[i]
				}
			}
		}
	}
	return box
}

func transformPoint(m *linear.M4, p linear.V3) linear.V3 {
	v4 := linear.V4{p[0], p[1], p[2], 1}
	var out linear.V4
	out.Mul(m, &v4)
	return linear.V3{out[0], out[1], out[2]}
}
