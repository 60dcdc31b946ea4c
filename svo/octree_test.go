// Copyright 2024 The Voxen Authors. All rights reserved.

package svo

import (
	"math/rand"
	"testing"
)

func TestInsertLookupEraseDepth12(t *testing.T) {
	const depth = 12
	const n = 1 << 14 // Scaled down from 2^24 to keep the test fast.
	lim := uint32(1) << depth
	tr := NewOctree(depth)
	v := NewVoxel(0xFF, 0x00, 0xFF, 0xFF, 0)

	r := rand.New(rand.NewSource(1))
	type coord struct{ x, y, z uint32 }
	coords := make([]coord, 0, n)
	seen := make(map[coord]bool, n)
	for len(coords) < n {
		c := coord{r.Uint32() % lim, r.Uint32() % lim, r.Uint32() % lim}
		if seen[c] {
			continue
		}
		seen[c] = true
		coords = append(coords, c)
		if _, err := tr.Insert(c.x, c.y, c.z, v); err != nil {
			t.Fatalf("insert(%v): %v", c, err)
		}
	}

	for _, c := range coords {
		got, ok := tr.Lookup(c.x, c.y, c.z)
		if !ok || got != v {
			t.Fatalf("lookup(%v) = %v, %v; want %v, true", c, got, ok, v)
		}
	}

	var unsampled coord
	for {
		unsampled = coord{r.Uint32() % lim, r.Uint32() % lim, r.Uint32() % lim}
		if !seen[unsampled] {
			break
		}
	}
	if _, ok := tr.Lookup(unsampled.x, unsampled.y, unsampled.z); ok {
		t.Fatalf("lookup(%v) unexpectedly found a value", unsampled)
	}

	r.Shuffle(len(coords), func(i, j int) { coords[i], coords[j] = coords[j], coords[i] })
	for _, c := range coords {
		tr.Erase(c.x, c.y, c.z)
	}
	if got := tr.NumLeafNodes(); got != 0 {
		t.Fatalf("NumLeafNodes() after full erase = %d, want 0", got)
	}
	for _, c := range coords {
		if _, ok := tr.Lookup(c.x, c.y, c.z); ok {
			t.Fatalf("lookup(%v) found a value after erase", c)
		}
	}
}

func TestCollapse(t *testing.T) {
	const depth = 4
	lim := uint32(1) << depth
	tr := NewOctree(depth)
	v := NewVoxel(1, 2, 3, 4, 7)

	for x := uint32(0); x < lim; x++ {
		for y := uint32(0); y < lim; y++ {
			for z := uint32(0); z < lim; z++ {
				if _, err := tr.Insert(x, y, z, v); err != nil {
					t.Fatalf("insert(%d,%d,%d): %v", x, y, z, err)
				}
			}
		}
	}

	tr.Collapse()
	if got := tr.NumLeafNodes(); got != 1 {
		t.Fatalf("NumLeafNodes() after collapse = %d, want 1", got)
	}
	got, ok := tr.Lookup(7, 3, 11)
	if !ok || got != v {
		t.Fatalf("lookup(7,3,11) = %v, %v; want %v, true", got, ok, v)
	}
}

func TestEraseThroughCollapsedAncestor(t *testing.T) {
	const depth = 3
	lim := uint32(1) << depth
	tr := NewOctree(depth)
	v := NewVoxel(9, 9, 9, 9, 1)
	for x := uint32(0); x < lim; x++ {
		for y := uint32(0); y < lim; y++ {
			for z := uint32(0); z < lim; z++ {
				tr.Insert(x, y, z, v)
			}
		}
	}
	tr.Collapse()
	if tr.NumLeafNodes() != 1 {
		t.Fatalf("expected collapse to 1 leaf")
	}

	tr.Erase(0, 0, 0)
	if _, ok := tr.Lookup(0, 0, 0); ok {
		t.Fatalf("lookup(0,0,0) found a value after erase")
	}
	// Every other coordinate must retain v, propagated from
	// the split collapsed ancestor.
	for x := uint32(0); x < lim; x++ {
		for y := uint32(0); y < lim; y++ {
			for z := uint32(0); z < lim; z++ {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				got, ok := tr.Lookup(x, y, z)
				if !ok || got != v {
					t.Fatalf("lookup(%d,%d,%d) = %v,%v; want %v,true", x, y, z, got, ok, v)
				}
			}
		}
	}
}

func TestInsertOutOfRange(t *testing.T) {
	tr := NewOctree(2)
	if _, err := tr.Insert(4, 0, 0, Voxel{}); err != ErrCoord {
		t.Fatalf("Insert out of range: got %v, want ErrCoord", err)
	}
}

func TestCloneIndependence(t *testing.T) {
	tr := NewOctree(3)
	tr.Insert(1, 1, 1, NewVoxel(1, 1, 1, 1, 0))
	cp := tr.Clone()
	tr.Insert(2, 2, 2, NewVoxel(2, 2, 2, 2, 0))
	if _, ok := cp.Lookup(2, 2, 2); ok {
		t.Fatalf("clone observed a mutation made after Clone()")
	}
	if v, ok := cp.Lookup(1, 1, 1); !ok || v.Tag != 0 {
		t.Fatalf("clone missing pre-existing value")
	}
}
