// Copyright 2024 The Voxen Authors. All rights reserved.

package svo

import (
	"encoding/binary"
	"math"
)

// arrayFlagLeaf marks a Node as carrying a payload (leaf)
// rather than a stride/offset to its children.
const arrayFlagLeaf = 1 << 0

// Node is the flattened, GPU-uploadable representation of
// one octree node, as produced by MakeSubarray/MakeArray. It
// is laid out to match its 16-byte on-the-wire form exactly
// (see AppendTo), though the in-memory struct may be padded
// by the compiler.
type Node struct {
	// Center holds the quantized center of the node's cube
	// within the unit cube, one uint16 per axis (0..65535
	// maps to [0,1]).
	Center [3]uint16

	// Depth is this node's depth in the tree (half-extent is
	// 2^-Depth).
	Depth uint8

	// Flags holds per-node bits; bit 0 set means Payload is
	// a leaf color, unset means it is a stride/offset.
	Flags uint8

	// Payload holds a packed RGBA color when Flags&arrayFlagLeaf
	// is set. It is unused for interior nodes: AppendTo packs
	// their ChildMask and Offset into the wire payload instead.
	Payload uint32

	// ChildMask has one bit set per present octant, valid
	// only when this is an interior node of a VolumeArray
	// (as opposed to the stride-form flat array). Index i is
	// present if ChildMask&(1<<i) != 0.
	ChildMask uint8

	// Offset is the index delta from this node to its first
	// child, valid only when this is an interior node of a
	// VolumeArray.
	Offset uint32
}

func quantizeCenter(c [3]float32) [3]uint16 {
	var q [3]uint16
	for i, v := range c {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		q[i] = uint16(v * 65535)
	}
	return q
}

// VolumeArray is a depth-first flattening of a subtree,
// rooted at the node passed to MakeSubarray/MakeArray, ready
// for upload to the raycast shader's storage buffer.
type VolumeArray struct {
	Nodes []Node
}

// makeSubarray appends the depth-first flattening of n
// (whose cube has the given center/halfExtent and sits at
// depth curDepth in the full tree) to dst, stopping recursion
// at absolute depth maxDepth: any subtree deeper than that is
// averaged into a single leaf via MeanVoxel. It
// returns the updated slice and the stride (node count,
// including this one) contributed by n's subtree.
func makeSubarray(dst []Node, n *node, center [3]float32, halfExtent float32, curDepth, maxDepth int) ([]Node, int) {
	if n == nil {
		return dst, 0
	}
	idx := len(dst)
	if n.value != nil || curDepth >= maxDepth {
		v := n.value
		if v == nil {
			// Past maxDepth: coarsen whatever remains below
			// this point into a single representative leaf.
			var vs []Voxel
			collectLeaves(n, &vs)
			mv := MeanVoxel(vs)
			v = &mv
		}
		dst = append(dst, Node{
			Center:  quantizeCenter(center),
			Depth:   uint8(curDepth),
			Flags:   arrayFlagLeaf,
			Payload: v.Color,
		})
		return dst, 1
	}
	// Reserve this node's slot; fill ChildMask/Offset once
	// children are known.
	dst = append(dst, Node{
		Center: quantizeCenter(center),
		Depth:  uint8(curDepth),
	})
	childExtent := halfExtent / 2
	var mask uint8
	offset := 0
	firstChild := -1
	for i, ch := range n.children {
		if ch == nil {
			continue
		}
		cc := octantCenter(center, childExtent, i)
		var stride int
		if firstChild < 0 {
			firstChild = len(dst) - idx
		}
		dst, stride = makeSubarray(dst, ch, cc, childExtent, curDepth+1, maxDepth)
		mask |= 1 << uint(i)
		offset += stride
	}
	dst[idx].ChildMask = mask
	if firstChild >= 0 {
		dst[idx].Offset = uint32(firstChild)
	}
	return dst, len(dst) - idx
}

func octantCenter(center [3]float32, childExtent float32, octant int) [3]float32 {
	c := center
	if octant&1 != 0 {
		c[0] += childExtent
	} else {
		c[0] -= childExtent
	}
	if octant&2 != 0 {
		c[1] += childExtent
	} else {
		c[1] -= childExtent
	}
	if octant&4 != 0 {
		c[2] += childExtent
	} else {
		c[2] -= childExtent
	}
	return c
}

func collectLeaves(n *node, out *[]Voxel) {
	if n == nil {
		return
	}
	if n.value != nil {
		*out = append(*out, *n.value)
		return
	}
	for _, ch := range n.children {
		collectLeaves(ch, out)
	}
}

// MakeSubarray flattens the whole tree depth-first from the
// root, stopping at depth maxDepth: any subtree below that
// depth is averaged into a single leaf. Node centers are
// expressed in the unit cube [0,1]^3.
//
// atDepth is not used: the flattening always starts at the
// root. NodeHandle.MakeSubarray flattens a single subtree.
func (t *Octree) MakeSubarray(atDepth int, maxDepth int) VolumeArray {
	if t.root == nil {
		return VolumeArray{}
	}
	nodes, _ := makeSubarray(nil, t.root, [3]float32{0.5, 0.5, 0.5}, 0.5, 0, maxDepth)
	_ = atDepth
	return VolumeArray{Nodes: nodes}
}

// MakeArray flattens the entire tree top-down, but at every
// interior node reorders its children by priority(childIndex)
// ascending before recursing, so that two equally-deep
// siblings appear in the order a caller wants them visited
// (typically front-to-back by camera-space Z, to aid
// shader-side early ray termination).
func (t *Octree) MakeArray(priority func(center [3]float32) float32) VolumeArray {
	if t.root == nil {
		return VolumeArray{}
	}
	nodes := makeArray(nil, t.root, [3]float32{0.5, 0.5, 0.5}, 0.5, 0, priority)
	return VolumeArray{Nodes: nodes}
}

func makeArray(dst []Node, n *node, center [3]float32, halfExtent float32, curDepth int, priority func([3]float32) float32) []Node {
	idx := len(dst)
	if n.value != nil {
		return append(dst, Node{
			Center:  quantizeCenter(center),
			Depth:   uint8(curDepth),
			Flags:   arrayFlagLeaf,
			Payload: n.value.Color,
		})
	}
	dst = append(dst, Node{Center: quantizeCenter(center), Depth: uint8(curDepth)})
	childExtent := halfExtent / 2

	type ordered struct {
		idx int
		ctr [3]float32
		p   float32
	}
	var present []ordered
	for i, ch := range n.children {
		if ch == nil {
			continue
		}
		cc := octantCenter(center, childExtent, i)
		present = append(present, ordered{i, cc, priority(cc)})
	}
	for i := 1; i < len(present); i++ {
		for j := i; j > 0 && present[j].p < present[j-1].p; j-- {
			present[j], present[j-1] = present[j-1], present[j]
		}
	}

	var mask uint8
	firstChild := -1
	for _, o := range present {
		if firstChild < 0 {
			firstChild = len(dst) - idx
		}
		dst = makeArray(dst, n.children[o.idx], o.ctr, childExtent, curDepth+1, priority)
		mask |= 1 << uint(o.idx)
	}
	dst[idx].ChildMask = mask
	if firstChild >= 0 {
		dst[idx].Offset = uint32(firstChild)
	}
	return dst
}

// nodeByteSize is the on-the-wire size of one Node record.
const nodeByteSize = 16

// AppendTo appends the GPU wire encoding of a (root first,
// depth-first) VolumeArray to dst: an interior node's Payload
// field carries its ChildMask in the low byte and Offset in
// the remaining 24 bits, shifted so that a single uint32 read
// recovers both on the shader side.
func (a VolumeArray) AppendTo(dst []byte) []byte {
	var buf [nodeByteSize]byte
	for _, n := range a.Nodes {
		binary.LittleEndian.PutUint16(buf[0:2], n.Center[0])
		binary.LittleEndian.PutUint16(buf[2:4], n.Center[1])
		binary.LittleEndian.PutUint16(buf[4:6], n.Center[2])
		buf[6] = n.Depth
		buf[7] = n.Flags
		if n.Flags&arrayFlagLeaf != 0 {
			binary.LittleEndian.PutUint32(buf[8:12], n.Payload)
		} else {
			binary.LittleEndian.PutUint32(buf[8:12], n.Offset<<8|uint32(n.ChildMask))
		}
		binary.LittleEndian.PutUint16(buf[12:14], 0)
		binary.LittleEndian.PutUint16(buf[14:16], 0)
		dst = append(dst, buf[:]...)
	}
	return dst
}

// NodeHandle identifies one node of an Octree by its
// pointer, together with the world-space (unit-cube) center,
// half-extent and depth it occupies. It is comparable, so it
// can key a map, letting a caller cache per-subtree state
// (such as a flattened VolumeArray) across frames and reuse
// it as long as the handle compares equal.
type NodeHandle struct {
	n      *node
	center [3]float32
	extent float32
	depth  int
}

// Center returns h's node's center in the unit cube.
func (h NodeHandle) Center() [3]float32 { return h.center }

// Extent returns h's node's half-extent.
func (h NodeHandle) Extent() float32 { return h.extent }

// Depth returns h's node's depth.
func (h NodeHandle) Depth() int { return h.depth }

// MakeSubarray flattens h's subtree exactly as
// Octree.MakeSubarray does for a whole tree, stopping
// maxDepth levels past h.
func (h NodeHandle) MakeSubarray(maxDepth int) VolumeArray {
	if h.n == nil {
		return VolumeArray{}
	}
	nodes, _ := makeSubarray(nil, h.n, h.center, h.extent, h.depth, h.depth+maxDepth)
	return VolumeArray{Nodes: nodes}
}

// NodesAtDepth returns a handle for every node present at
// exact depth d, or, if a collapsed ancestor leaf is
// encountered first, a handle for that ancestor standing in
// for the whole subtree at depth d.
func (t *Octree) NodesAtDepth(d int) []NodeHandle {
	var out []NodeHandle
	if t.root == nil || d < 0 {
		return nil
	}
	var rec func(n *node, center [3]float32, extent float32, depth int)
	rec = func(n *node, center [3]float32, extent float32, depth int) {
		if n == nil {
			return
		}
		if depth == d || n.value != nil {
			out = append(out, NodeHandle{n, center, extent, depth})
			return
		}
		childExtent := extent / 2
		for i, ch := range n.children {
			if ch == nil {
				continue
			}
			rec(ch, octantCenter(center, childExtent, i), childExtent, depth+1)
		}
	}
	rec(t.root, [3]float32{0.5, 0.5, 0.5}, 0.5, 0)
	return out
}

// Bytes returns the header-prefixed GPU wire form of a
// VolumeArray given the world-space AABB it was built
// against: aabbMin(12) | pad(4) | aabbMax(12) | pad(4),
// followed by the node body.
func Bytes(a VolumeArray, aabbMin, aabbMax [3]float32) []byte {
	buf := make([]byte, 0, 32+len(a.Nodes)*nodeByteSize)
	var f [4]byte
	for _, v := range aabbMin {
		binary.LittleEndian.PutUint32(f[:], math.Float32bits(v))
		buf = append(buf, f[:]...)
	}
	buf = append(buf, 0, 0, 0, 0)
	for _, v := range aabbMax {
		binary.LittleEndian.PutUint32(f[:], math.Float32bits(v))
		buf = append(buf, f[:]...)
	}
	buf = append(buf, 0, 0, 0, 0)
	return a.AppendTo(buf)
}
