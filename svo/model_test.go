// Copyright 2024 The Voxen Authors. All rights reserved.

package svo

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestModelSerializationRoundTrip(t *testing.T) {
	const depth = 8
	lim := uint32(1) << depth
	m := NewModel(depth, [3]float32{0, 0, 0}, [3]float32{1, 1, 1})

	r := rand.New(rand.NewSource(2))
	type coord struct{ x, y, z uint32 }
	seen := make(map[coord]bool)
	for len(seen) < 4096 {
		c := coord{r.Uint32() % lim, r.Uint32() % lim, r.Uint32() % lim}
		if seen[c] {
			continue
		}
		seen[c] = true
		col := uint32(len(seen))
		m.Tree.Insert(c.x, c.y, c.z, Voxel{Color: col, Tag: uint8(len(seen) % 16)})
	}

	enc := m.Serialize()
	dec, err := Deserialize(enc)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if dec.Tree.Depth() != m.Tree.Depth() {
		t.Fatalf("depth mismatch: got %d, want %d", dec.Tree.Depth(), m.Tree.Depth())
	}
	for c := range seen {
		want, _ := m.Tree.Lookup(c.x, c.y, c.z)
		got, ok := dec.Tree.Lookup(c.x, c.y, c.z)
		if !ok || got != want {
			t.Fatalf("lookup(%v) = %v,%v; want %v,true", c, got, ok, want)
		}
	}

	reenc := dec.Serialize()
	if !bytes.Equal(enc, reenc) {
		t.Fatalf("re-serialization mismatch: %d vs %d bytes", len(enc), len(reenc))
	}
}

func TestDeserializeBadMagic(t *testing.T) {
	data := make([]byte, 32)
	if _, err := Deserialize(data); err != ErrBadMagic {
		t.Fatalf("Deserialize: got %v, want ErrBadMagic", err)
	}
}

func TestDeserializeTruncated(t *testing.T) {
	if _, err := Deserialize([]byte{'V', 'O', 'X', 'N'}); err != ErrTruncated {
		t.Fatalf("Deserialize: got %v, want ErrTruncated", err)
	}
}

func TestDeserializeBadVersion(t *testing.T) {
	m := NewModel(1, [3]float32{}, [3]float32{1, 1, 1})
	enc := m.Serialize()
	enc[4] = 0xFF
	if _, err := Deserialize(enc); err != ErrBadVersion {
		t.Fatalf("Deserialize: got %v, want ErrBadVersion", err)
	}
}

func TestWorldToLatticeRoundTrip(t *testing.T) {
	m := NewModel(4, [3]float32{-1, -1, -1}, [3]float32{1, 1, 1})
	x, y, z, ok := m.WorldToLattice([3]float32{0, 0, 0})
	if !ok {
		t.Fatalf("WorldToLattice(0,0,0) rejected")
	}
	c := m.LatticeToWorldCenter(x, y, z)
	for i := 0; i < 3; i++ {
		if c[i] < -0.2 || c[i] > 0.2 {
			t.Fatalf("LatticeToWorldCenter = %v, want near origin", c)
		}
	}
	if _, _, _, ok := m.WorldToLattice([3]float32{5, 5, 5}); ok {
		t.Fatalf("WorldToLattice accepted an out-of-AABB point")
	}
}
