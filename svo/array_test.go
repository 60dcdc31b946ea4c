// Copyright 2024 The Voxen Authors. All rights reserved.

package svo

import "testing"

func TestFlatArrayLocality(t *testing.T) {
	tr := NewOctree(3)
	lim := uint32(8)
	for x := uint32(0); x < lim; x++ {
		for y := uint32(0); y < lim; y++ {
			for z := uint32(0); z < lim; z++ {
				tr.Insert(x, y, z, NewVoxel(uint8(x*16), uint8(y*16), uint8(z*16), 255, 0))
			}
		}
	}

	arr := tr.MakeSubarray(0, 3)
	nodes := arr.Nodes
	if len(nodes) == 0 {
		t.Fatal("empty array")
	}

	var check func(i int) int
	check = func(i int) int {
		n := nodes[i]
		if n.Flags&arrayFlagLeaf != 0 {
			return 1
		}
		total := 1
		off := i + int(n.Offset)
		seen := 0
		for oct := 0; oct < 8; oct++ {
			if n.ChildMask&(1<<uint(oct)) == 0 {
				continue
			}
			if off+seen >= len(nodes) {
				t.Fatalf("child index out of range at node %d", i)
			}
			sub := check(off + seen)
			seen += sub
			total += sub
		}
		return total
	}
	total := check(0)
	if total != len(nodes) {
		t.Fatalf("subtree node count = %d, want %d (whole array)", total, len(nodes))
	}
}

func TestMakeArrayPriorityOrdering(t *testing.T) {
	tr := NewOctree(1)
	tr.Insert(0, 0, 0, NewVoxel(1, 0, 0, 0, 0))
	tr.Insert(1, 0, 0, NewVoxel(0, 1, 0, 0, 0))

	// Priority favors the lowest X first.
	arr := tr.MakeArray(func(c [3]float32) float32 { return c[0] })
	if len(arr.Nodes) < 2 {
		t.Fatalf("expected at least root + one leaf, got %d", len(arr.Nodes))
	}
	root := arr.Nodes[0]
	first := arr.Nodes[int(root.Offset)]
	if first.Center[0] >= 32768 {
		t.Fatalf("expected lowest-X child to be visited first, got center.x=%d", first.Center[0])
	}
}
