// Copyright 2024 The Voxen Authors. All rights reserved.

package volume

import (
	"testing"

	"github.com/voxen-engine/voxen/linear"
	"github.com/voxen-engine/voxen/svo"
)

func buildTestModel(t *testing.T) *svo.Model {
	t.Helper()
	m := svo.NewModel(4, [3]float32{-1, -1, -1}, [3]float32{1, 1, 1})
	for x := uint32(0); x < 16; x++ {
		for y := uint32(0); y < 16; y++ {
			for z := uint32(0); z < 16; z++ {
				m.Tree.Insert(x, y, z, svo.NewVoxel(uint8(x*16), uint8(y*16), uint8(z*16), 255, 0))
			}
		}
	}
	return m
}

func lookAt(eye linear.V3) (view, proj linear.M4) {
	view.I()
	view[3] = linear.V4{-eye[0], -eye[1], -eye[2], 1}
	// Perspective looking down -Z with near plane 1 and
	// clip-space depth in [0, w].
	proj.I()
	proj[2][2] = -1
	proj[2][3] = -1
	proj[3][2] = -1
	proj[3][3] = 0
	return
}

func TestBuilderCacheReuse(t *testing.T) {
	model := buildTestModel(t)
	b := NewBuilder()
	params := Params{
		LODBoundaryDepth: 1,
		MinDetail:        0,
		MaxDetail:        4,
		DistMin:          1,
		DistMax:          10,
		ViewportW:        1920,
		ViewportH:        1080,
	}

	view, proj := lookAt(linear.V3{0, 0, 5})
	var mvp linear.M4
	mvp.Mul(&proj, &view)

	layers1, ok := b.Build(model, &mvp, &view, params)
	if !ok {
		t.Fatal("unexpected full culling")
	}
	if len(layers1) == 0 {
		t.Fatal("expected at least one layer")
	}
	arr1 := layers1[0].Array

	layers2, ok := b.Build(model, &mvp, &view, params)
	if !ok {
		t.Fatal("unexpected full culling on second call")
	}
	arr2 := layers2[0].Array
	if len(arr1.Nodes) != len(arr2.Nodes) {
		t.Fatalf("identical view produced different array sizes: %d vs %d", len(arr1.Nodes), len(arr2.Nodes))
	}

	// Move the camera much closer so bestFit grows and
	// targetDepth for at least one node should change,
	// forcing a rebuild of that node's cached array.
	viewClose, projClose := lookAt(linear.V3{0, 0, 1.05})
	var mvpClose linear.M4
	mvpClose.Mul(&projClose, &viewClose)
	layers3, ok := b.Build(model, &mvpClose, &viewClose, params)
	if !ok {
		t.Fatal("unexpected full culling on close view")
	}
	if len(layers3) == 0 {
		t.Fatal("expected at least one layer on close view")
	}
}
