// Copyright 2024 The Voxen Authors. All rights reserved.

package svo

import (
	"encoding/binary"
	"math"
)

var magic = [4]byte{'V', 'O', 'X', 'N'}

const modelVersion = 1

// ErrBadMagic is returned by Deserialize when the input does
// not begin with the expected magic bytes.
var ErrBadMagic = newOctErr("bad magic")

// ErrBadVersion is returned by Deserialize when the input
// declares a version this package does not understand.
var ErrBadVersion = newOctErr("unsupported version")

// ErrTruncated is returned by Deserialize when the input ends
// before a complete record could be read.
var ErrTruncated = newOctErr("truncated data")

// ErrMalformed is returned by Deserialize when a node
// descriptor byte is internally inconsistent.
var ErrMalformed = newOctErr("malformed node record")

// Model wraps an Octree with a world-space axis-aligned
// bounding box, so lattice coordinates can be mapped to and
// from world positions, and the whole thing can be
// serialized to and from a binary form for storage.
type Model struct {
	Tree           *Octree
	AABBMin, AABBMax [3]float32
}

// NewModel creates an empty Model of the given depth,
// spanning the given world-space AABB.
func NewModel(depth int, aabbMin, aabbMax [3]float32) *Model {
	return &Model{Tree: NewOctree(depth), AABBMin: aabbMin, AABBMax: aabbMax}
}

// WorldToLattice maps a world-space position to the integer
// lattice coordinate of the leaf cube that contains it. ok is
// false if p lies outside the model's AABB.
func (m *Model) WorldToLattice(p [3]float32) (x, y, z uint32, ok bool) {
	res := uint32(1) << uint(m.Tree.Depth())
	var c [3]uint32
	for i := 0; i < 3; i++ {
		lo, hi := m.AABBMin[i], m.AABBMax[i]
		if hi <= lo || p[i] < lo || p[i] > hi {
			return 0, 0, 0, false
		}
		t := (p[i] - lo) / (hi - lo)
		idx := uint32(t * float32(res))
		if idx >= res {
			idx = res - 1
		}
		c[i] = idx
	}
	return c[0], c[1], c[2], true
}

// LatticeToWorldCenter maps a lattice coordinate back to the
// world-space center of its leaf cube.
func (m *Model) LatticeToWorldCenter(x, y, z uint32) [3]float32 {
	res := float32(uint32(1) << uint(m.Tree.Depth()))
	c := [3]uint32{x, y, z}
	var out [3]float32
	for i := 0; i < 3; i++ {
		t := (float32(c[i]) + 0.5) / res
		out[i] = m.AABBMin[i] + t*(m.AABBMax[i]-m.AABBMin[i])
	}
	return out
}

// Serialize encodes the model to its binary wire form:
// magic(4) | version(2) | depth(2) | aabbMin(12) | aabbMax(12)
// followed by the root node record, recursively.
func (m *Model) Serialize() []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, magic[:]...)
	buf = appendU16(buf, modelVersion)
	buf = appendU16(buf, uint16(m.Tree.Depth()))
	for _, v := range m.AABBMin {
		buf = appendU32(buf, math.Float32bits(v))
	}
	for _, v := range m.AABBMax {
		buf = appendU32(buf, math.Float32bits(v))
	}
	buf = encodeNode(buf, m.Tree.root)
	return buf
}

func appendU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// descriptor bits, per node record.
const (
	descHasLeaf     = 1 << 0
	descHasChildren = 1 << 1
)

func encodeNode(buf []byte, n *node) []byte {
	if n == nil {
		return append(buf, 0)
	}
	if n.value != nil {
		buf = append(buf, descHasLeaf)
		v := *n.value
		buf = append(buf, byte(v.Color>>24), byte(v.Color>>16), byte(v.Color>>8), byte(v.Color), v.Tag)
		return buf
	}
	var mask uint8
	count := 0
	for i, ch := range n.children {
		if ch != nil {
			mask |= 1 << uint(i)
			count++
		}
	}
	if count == 0 {
		return append(buf, 0)
	}
	buf = append(buf, byte(descHasChildren)|byte((count-1)<<4), mask)
	for _, ch := range n.children {
		if ch != nil {
			buf = encodeNode(buf, ch)
		}
	}
	return buf
}

// Deserialize decodes a binary-encoded Model. On any short
// read, bad magic/version, or malformed node descriptor, it
// returns a nil Model and the corresponding error; no partial
// tree is returned.
func Deserialize(data []byte) (*Model, error) {
	if len(data) < 4+2+2+24 {
		return nil, ErrTruncated
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return nil, ErrBadMagic
	}
	pos := 4
	version := binary.LittleEndian.Uint16(data[pos:])
	pos += 2
	if version != modelVersion {
		return nil, ErrBadVersion
	}
	depth := binary.LittleEndian.Uint16(data[pos:])
	pos += 2
	var aabbMin, aabbMax [3]float32
	for i := 0; i < 3; i++ {
		aabbMin[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
	}
	for i := 0; i < 3; i++ {
		aabbMax[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
	}
	root, pos, err := decodeNode(data, pos)
	if err != nil {
		return nil, err
	}
	_ = pos
	return &Model{
		Tree:    &Octree{root: root, depth: int(depth)},
		AABBMin: aabbMin,
		AABBMax: aabbMax,
	}, nil
}

func decodeNode(data []byte, pos int) (*node, int, error) {
	if pos >= len(data) {
		return nil, pos, ErrTruncated
	}
	desc := data[pos]
	pos++
	switch {
	case desc&descHasLeaf != 0:
		if desc&descHasChildren != 0 {
			return nil, pos, ErrMalformed
		}
		if pos+5 > len(data) {
			return nil, pos, ErrTruncated
		}
		color := uint32(data[pos])<<24 | uint32(data[pos+1])<<16 | uint32(data[pos+2])<<8 | uint32(data[pos+3])
		tag := data[pos+4]
		pos += 5
		return leafNode(Voxel{Color: color, Tag: tag}), pos, nil
	case desc&descHasChildren != 0:
		if pos >= len(data) {
			return nil, pos, ErrTruncated
		}
		mask := data[pos]
		pos++
		count := int(desc>>4) + 1
		if popcount8(mask) != count {
			return nil, pos, ErrMalformed
		}
		n := &node{}
		var err error
		for i := 0; i < 8; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			n.children[i], pos, err = decodeNode(data, pos)
			if err != nil {
				return nil, pos, err
			}
		}
		return n, pos, nil
	default:
		return nil, pos, nil
	}
}

func popcount8(b uint8) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}
