// Copyright 2024 The Voxen Authors. All rights reserved.

package voxelize

import "github.com/voxen-engine/voxen/linear"

// triOctree is the intermediate structure built while
// voxelizing: each node holds the indices of the triangles
// (into the caller's face slice) that overlap its cube, and
// is subdivided until remainingDepth reaches zero or it holds
// no triangles.
type triOctree struct {
	box      linear.AABB
	tris     []int
	children [8]*triOctree // nil until subdivide is called.
}

func newTriOctree(box linear.AABB, tris []int) *triOctree {
	return &triOctree{box: box, tris: tris}
}

// subdivide splits n into 8 equal children, redistributing
// triangles that overlap each child's AABB, recursing while
// remainingDepth > 0 and the node still holds triangles.
func (n *triOctree) subdivide(faces []MaterialFace, remainingDepth int) {
	if remainingDepth <= 0 || len(n.tris) == 0 {
		return
	}
	for i := 0; i < 8; i++ {
		childBox := n.box.Octant(i)
		var childTris []int
		for _, t := range n.tris {
			if triOverlapsAABB(&faces[t], &childBox) {
				childTris = append(childTris, t)
			}
		}
		if len(childTris) == 0 {
			continue
		}
		child := newTriOctree(childBox, childTris)
		child.subdivide(faces, remainingDepth-1)
		n.children[i] = child
	}
	// Parent no longer needs its own copy once pushed down;
	// leaves at this level are identified by having no
	// children and non-empty tris.
}

// isLeaf reports whether n was not subdivided further (either
// it ran out of depth budget, or has no children because none
// were created).
func (n *triOctree) isLeaf() bool {
	for _, c := range n.children {
		if c != nil {
			return false
		}
	}
	return true
}

// triOverlapsAABB is a conservative overlap test between a
// triangle and an axis-aligned box: it checks the triangle's
// own AABB against box first (cheap reject), then tests the
// triangle's supporting plane against box. The edge axes of a
// full separating-axis test are not checked.
func triOverlapsAABB(f *MaterialFace, box *linear.AABB) bool {
	var triMin, triMax linear.V3
	triMin, triMax = f.V[0].Pos, f.V[0].Pos
	for _, v := range f.V[1:] {
		for i := 0; i < 3; i++ {
			if v.Pos[i] < triMin[i] {
				triMin[i] = v.Pos[i]
			}
			if v.Pos[i] > triMax[i] {
				triMax[i] = v.Pos[i]
			}
		}
	}
	for i := 0; i < 3; i++ {
		if triMax[i] < box.Min[i] || triMin[i] > box.Max[i] {
			return false
		}
	}
	return planeOverlapsAABB(f, box)
}

// planeOverlapsAABB tests whether the triangle's supporting
// plane passes through box, using the standard box-extent
// projection test (Akenine-Möller).
func planeOverlapsAABB(f *MaterialFace, box *linear.AABB) bool {
	c := box.Center()
	e := box.Extent()
	n := f.Normal()

	var v0 linear.V3
	v0.Sub(&f.V[0].Pos, &c)

	r := e[0]*abs32(n[0]) + e[1]*abs32(n[1]) + e[2]*abs32(n[2])
	s := n.Dot(&v0)
	return abs32(s) <= r
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
