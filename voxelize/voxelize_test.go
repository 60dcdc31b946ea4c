// Copyright 2024 The Voxen Authors. All rights reserved.

package voxelize

import (
	"testing"

	"github.com/voxen-engine/voxen/linear"
)

// tetrahedronFaces returns the four triangular faces of a
// tetrahedron inside [0,1]^3, each carrying a
// solid base color of #808080 via per-vertex color.
func tetrahedronFaces() []MaterialFace {
	pts := [4]linear.V3{
		{0.1, 0.1, 0.1},
		{0.9, 0.3, 0.2},
		{0.3, 0.9, 0.2},
		{0.3, 0.3, 0.9},
	}
	gray := [4]float32{0.5, 0.5, 0.5, 1}
	mk := func(i, j, k int) MaterialFace {
		return MaterialFace{V: [3]Vertex{
			{Pos: pts[i], Color: gray},
			{Pos: pts[j], Color: gray},
			{Pos: pts[k], Color: gray},
		}}
	}
	return []MaterialFace{
		mk(0, 1, 2),
		mk(0, 1, 3),
		mk(0, 2, 3),
		mk(1, 2, 3),
	}
}

func TestVoxelizeTetrahedron(t *testing.T) {
	faces := tetrahedronFaces()
	model := Voxelize(faces, 6, DefaultResolver)

	if model.Tree.NumLeafNodes() == 0 {
		t.Fatal("expected at least one occupied leaf")
	}

	wantMin, wantMax := facesAABBPublic(faces)
	const tol = 1e-4
	for i := 0; i < 3; i++ {
		if absDiff(model.AABBMin[i], wantMin[i]) > tol || absDiff(model.AABBMax[i], wantMax[i]) > tol {
			t.Fatalf("model AABB = [%v,%v], want [%v,%v]", model.AABBMin, model.AABBMax, wantMin, wantMax)
		}
	}
}

func facesAABBPublic(faces []MaterialFace) (min, max linear.V3) {
	box := facesAABB(faces)
	return box.Min, box.Max
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
