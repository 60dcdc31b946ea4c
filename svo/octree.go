// Copyright 2024 The Voxen Authors. All rights reserved.

package svo

import "errors"

// octPrefix tags errors returned by this package.
const octPrefix = "svo: "

func newOctErr(reason string) error { return errors.New(octPrefix + reason) }

// ErrCoord is returned by Insert when the given lattice
// coordinate lies outside [0, 2^D) on any axis.
var ErrCoord = newOctErr("coordinate out of range")

// node is one node of the tree. Exactly one of value and
// children may be non-empty: a leaf node has value set and
// children entirely nil; an interior node has value nil and
// at least one non-nil entry in children. A nil *node
// (absent from its parent) represents an empty subtree.
//
// Children are ordered by bit-packed (x,y,z) in {0,1}^3:
// index = z*4 + y*2 + x.
type node struct {
	value    *Voxel
	children [8]*node
}

func leafNode(v Voxel) *node { return &node{value: &v} }

// isLeaf reports whether n holds a value directly.
func (n *node) isLeaf() bool { return n != nil && n.value != nil }

// split turns a leaf node into an interior node whose eight
// children are leaves holding n's former value, so that a
// subsequent write at finer resolution can pick one child to
// modify without losing the value of its siblings. Used by
// Insert/Erase when descending through a node collapsed by a
// previous call to Collapse.
func (n *node) split() {
	if n.value == nil {
		return
	}
	v := *n.value
	n.value = nil
	for i := range n.children {
		n.children[i] = leafNode(v)
	}
}

// Octree is a mutable sparse 8-ary tree of fixed depth D,
// storing a Voxel at each occupied leaf path.
type Octree struct {
	root  *node
	depth int
}

// NewOctree creates an empty octree of the given depth. The
// tree's coordinate space is [0, 2^depth)^3 on each axis.
func NewOctree(depth int) *Octree {
	if depth < 0 {
		depth = 0
	}
	return &Octree{depth: depth}
}

// Depth returns the tree's maximum depth D.
func (t *Octree) Depth() int { return t.depth }

// childIndex returns the child index of (x,y,z) at depth d:
// bit0=x, bit1=y, bit2=z, taken from the bit at position
// D-1-d.
func childIndex(x, y, z uint32, d, depth int) int {
	shift := uint(depth - 1 - d)
	return int((x>>shift)&1) | int((y>>shift)&1)<<1 | int((z>>shift)&1)<<2
}

func (t *Octree) inRange(x, y, z uint32) bool {
	lim := uint32(1) << uint(t.depth)
	return x < lim && y < lim && z < lim
}

// Insert sets the voxel at lattice coordinate (x,y,z),
// creating any missing interior nodes along the path. It
// returns whether the stored value changed (false if v was
// already present at that coordinate, whether as a direct
// leaf or via a collapsed ancestor).
//
// x, y and z must lie in [0, 2^D). Insert returns ErrCoord
// otherwise.
func (t *Octree) Insert(x, y, z uint32, v Voxel) (bool, error) {
	if !t.inRange(x, y, z) {
		return false, ErrCoord
	}
	if t.depth == 0 {
		if t.root != nil && t.root.value != nil && *t.root.value == v {
			return false, nil
		}
		t.root = leafNode(v)
		return true, nil
	}
	if t.root == nil {
		t.root = &node{}
	} else if t.root.isLeaf() {
		if *t.root.value == v {
			return false, nil
		}
		t.root.split()
	}
	n := t.root
	for d := 0; d < t.depth; d++ {
		i := childIndex(x, y, z, d, t.depth)
		last := d == t.depth-1
		child := n.children[i]
		switch {
		case child == nil:
			if last {
				n.children[i] = leafNode(v)
				return true, nil
			}
			child = &node{}
			n.children[i] = child
		case last:
			if child.value != nil && *child.value == v {
				return false, nil
			}
			n.children[i] = leafNode(v)
			return true, nil
		case child.isLeaf():
			if *child.value == v {
				return false, nil
			}
			child.split()
		}
		n = n.children[i]
	}
	return true, nil
}

// Lookup returns the voxel covering lattice coordinate
// (x,y,z): the leaf value at depth D, or the value of a
// collapsed ancestor leaf whose sub-cube contains the
// coordinate. ok is false if the path terminates at a
// missing child, or if the coordinate is out of range.
func (t *Octree) Lookup(x, y, z uint32) (v Voxel, ok bool) {
	if !t.inRange(x, y, z) {
		return Voxel{}, false
	}
	n := t.root
	if n == nil {
		return Voxel{}, false
	}
	for d := 0; d < t.depth; d++ {
		if n.value != nil {
			return *n.value, true
		}
		i := childIndex(x, y, z, d, t.depth)
		n = n.children[i]
		if n == nil {
			return Voxel{}, false
		}
	}
	if n.value == nil {
		return Voxel{}, false
	}
	return *n.value, true
}

// Erase removes the voxel at lattice coordinate (x,y,z), if
// present. It descends creating no nodes; a collapsed
// ancestor leaf on the erase path is split first, so its
// uniform value propagates to the seven siblings not on the
// path. Any interior node that loses its last child is
// itself removed from its parent. Erasing a coordinate with
// no stored value, or one out of range, is a no-op.
func (t *Octree) Erase(x, y, z uint32) {
	if !t.inRange(x, y, z) || t.root == nil {
		return
	}
	if t.depth == 0 {
		t.root = nil
		return
	}
	if t.root.isLeaf() {
		t.root.split()
	}
	path := make([]*node, t.depth)
	idx := make([]int, t.depth)
	n := t.root
	for d := 0; d < t.depth; d++ {
		i := childIndex(x, y, z, d, t.depth)
		path[d] = n
		idx[d] = i
		child := n.children[i]
		if child == nil {
			return // Nothing to erase.
		}
		last := d == t.depth-1
		if !last && child.isLeaf() {
			child.split()
		}
		n = child
	}
	if n.value == nil {
		return
	}
	// Remove the leaf and prune empty ancestors bottom-up.
	for d := t.depth - 1; d >= 0; d-- {
		path[d].children[idx[d]] = nil
		if hasAnyChild(path[d]) {
			break
		}
		if d == 0 {
			t.root = nil
		}
	}
}

func hasAnyChild(n *node) bool {
	for _, c := range n.children {
		if c != nil {
			return true
		}
	}
	return false
}

// Collapse walks the tree bottom-up and replaces any
// interior node whose eight children are all leaves holding
// an equal Voxel with a single leaf holding that value.
func (t *Octree) Collapse() {
	t.root = collapseNode(t.root)
}

func collapseNode(n *node) *node {
	if n == nil || n.value != nil {
		return n
	}
	allLeaf := true
	var v Voxel
	first := true
	for i := range n.children {
		n.children[i] = collapseNode(n.children[i])
		c := n.children[i]
		if c == nil || c.value == nil {
			allLeaf = false
			continue
		}
		if first {
			v = *c.value
			first = false
		} else if *c.value != v {
			allLeaf = false
		}
	}
	if allLeaf && !first {
		return leafNode(v)
	}
	return n
}

// NumDescendants returns the total number of nodes in the
// tree, interior and leaf, excluding absent children. O(n).
func (t *Octree) NumDescendants() int { return countNodes(t.root) }

func countNodes(n *node) int {
	if n == nil {
		return 0
	}
	c := 1
	for _, ch := range n.children {
		c += countNodes(ch)
	}
	return c
}

// NumLeafNodes returns the number of leaf nodes in the tree.
// O(n).
func (t *Octree) NumLeafNodes() int { return countLeaves(t.root) }

func countLeaves(n *node) int {
	if n == nil {
		return 0
	}
	if n.value != nil {
		return 1
	}
	c := 0
	for _, ch := range n.children {
		c += countLeaves(ch)
	}
	return c
}

// MaxDepthLevels returns the depth of the deepest leaf
// actually present in the tree (which may be less than D if
// ancestors were collapsed). O(n).
func (t *Octree) MaxDepthLevels() int {
	if t.root == nil {
		return 0
	}
	return maxDepth(t.root, 0)
}

func maxDepth(n *node, d int) int {
	if n.value != nil {
		return d
	}
	best := d
	for _, ch := range n.children {
		if ch == nil {
			continue
		}
		if m := maxDepth(ch, d+1); m > best {
			best = m
		}
	}
	return best
}

// Clone returns a deep copy of t, letting a caller snapshot
// a subtree for flattening without racing a concurrent
// voxelizer mutating the same tree in the background.
func (t *Octree) Clone() *Octree {
	return &Octree{root: cloneNode(t.root), depth: t.depth}
}

func cloneNode(n *node) *node {
	if n == nil {
		return nil
	}
	cp := &node{}
	if n.value != nil {
		v := *n.value
		cp.value = &v
		return cp
	}
	for i, ch := range n.children {
		cp.children[i] = cloneNode(ch)
	}
	return cp
}

// EnumerateLevel invokes visit once for every node present
// at exact depth d, passing the world-space-relative AABB
// (within the unit cube) derived from the path so far, the
// depth, and whether the node is a leaf. It stops early if
// visit returns false.
func (t *Octree) EnumerateLevel(d int, visit func(min, max [3]float32, depth int, leaf bool) bool) {
	if t.root == nil || d < 0 {
		return
	}
	var min, max [3]float32 = [3]float32{0, 0, 0}, [3]float32{1, 1, 1}
	enumerate(t.root, 0, d, min, max, visit)
}

func enumerate(n *node, cur, target int, lo, hi [3]float32, visit func([3]float32, [3]float32, int, bool) bool) bool {
	if n == nil {
		return true
	}
	if cur == target {
		return visit(lo, hi, cur, n.value != nil)
	}
	if n.value != nil {
		// Collapsed ancestor stands in for every
		// descendant at the target depth.
		return visit(lo, hi, target, true)
	}
	mid := [3]float32{
		(lo[0] + hi[0]) / 2,
		(lo[1] + hi[1]) / 2,
		(lo[2] + hi[2]) / 2,
	}
	for i, ch := range n.children {
		clo, chi := lo, hi
		if i&1 != 0 {
			clo[0] = mid[0]
		} else {
			chi[0] = mid[0]
		}
		if i&2 != 0 {
			clo[1] = mid[1]
		} else {
			chi[1] = mid[1]
		}
		if i&4 != 0 {
			clo[2] = mid[2]
		} else {
			chi[2] = mid[2]
		}
		if !enumerate(ch, cur+1, target, clo, chi, visit) {
			return false
		}
	}
	return true
}
