// Copyright 2024 The Voxen Authors. All rights reserved.

package linear

import "math"

// AABB is an axis-aligned bounding box defined by its
// minimum and maximum corners.
type AABB struct {
	Min V3
	Max V3
}

// Center returns the center point of b.
func (b *AABB) Center() (c V3) {
	c.Add(&b.Min, &b.Max)
	c.Scale(0.5, &c)
	return
}

// Extent returns the half-extent of b along each axis.
func (b *AABB) Extent() (e V3) {
	e.Sub(&b.Max, &b.Min)
	e.Scale(0.5, &e)
	return
}

// Degenerate reports whether b has zero extent along
// any axis.
func (b *AABB) Degenerate() bool {
	for i := range b.Min {
		if b.Max[i] <= b.Min[i] {
			return true
		}
	}
	return false
}

// Fix replaces any degenerate axis of b with a unit
// extent centered on the existing value, so the box
// can be used to build a normalization transform.
func (b *AABB) Fix() {
	for i := range b.Min {
		if b.Max[i] <= b.Min[i] {
			b.Min[i] -= 0.5
			b.Max[i] += 0.5
		}
	}
}

// Union sets b to the union of l and r.
func (b *AABB) Union(l, r *AABB) {
	for i := range b.Min {
		b.Min[i] = min(l.Min[i], r.Min[i])
		b.Max[i] = max(l.Max[i], r.Max[i])
	}
}

// Corners writes the eight corners of b to c, ordered
// by bit-packed (x,y,z), index = z*4 + y*2 + x.
func (b *AABB) Corners(c *[8]V3) {
	for i := range c {
		c[i] = V3{
			pick(b.Min[0], b.Max[0], i&1 != 0),
			pick(b.Min[1], b.Max[1], i&2 != 0),
			pick(b.Min[2], b.Max[2], i&4 != 0),
		}
	}
}

func pick(lo, hi float32, useHi bool) float32 {
	if useHi {
		return hi
	}
	return lo
}

// Octant returns the sub-box of b identified by the
// given octant index (same bit packing as Corners),
// split at the box's center.
func (b *AABB) Octant(index int) AABB {
	c := b.Center()
	var o AABB
	for i := range o.Min {
		bit := (index >> uint(i)) & 1
		if bit == 0 {
			o.Min[i], o.Max[i] = b.Min[i], c[i]
		} else {
			o.Min[i], o.Max[i] = c[i], b.Max[i]
		}
	}
	return o
}

// Rect is an axis-aligned 2D rectangle.
type Rect struct {
	X, Y, Width, Height float32
}

// Transform composes a translation, rotation and
// uniform-per-axis scale into a 4x4 matrix.
type Transform struct {
	Pos   V3
	Rot   Q
	Scale V3
}

// Mat sets m to the matrix equivalent of t.
func (t *Transform) Mat(m *M4) {
	x, y, z, w := t.Rot.V[0], t.Rot.V[1], t.Rot.V[2], t.Rot.R
	m[0] = V4{
		(1 - 2*(y*y+z*z)) * t.Scale[0],
		(2 * (x*y + z*w)) * t.Scale[0],
		(2 * (x*z - y*w)) * t.Scale[0],
		0,
	}
	m[1] = V4{
		(2 * (x*y - z*w)) * t.Scale[1],
		(1 - 2*(x*x+z*z)) * t.Scale[1],
		(2 * (y*z + x*w)) * t.Scale[1],
		0,
	}
	m[2] = V4{
		(2 * (x*z + y*w)) * t.Scale[2],
		(2 * (y*z - x*w)) * t.Scale[2],
		(1 - 2*(x*x+y*y)) * t.Scale[2],
		0,
	}
	m[3] = V4{t.Pos[0], t.Pos[1], t.Pos[2], 1}
}

// ScaleTranslate builds the 4x4 matrix that maps b to
// the unit cube [0,1]^3 (the inverse of placing a unit
// cube at b), and its inverse.
func ScaleTranslate(b *AABB) (toUnit, fromUnit M4) {
	e := b.Extent()
	var size V3
	size.Scale(2, &e)
	var inv V3
	for i := range inv {
		if size[i] == 0 {
			inv[i] = 1
		} else {
			inv[i] = 1 / size[i]
		}
	}
	toUnit.I()
	toUnit[0][0] = inv[0]
	toUnit[1][1] = inv[1]
	toUnit[2][2] = inv[2]
	toUnit[3][0] = -b.Min[0] * inv[0]
	toUnit[3][1] = -b.Min[1] * inv[1]
	toUnit[3][2] = -b.Min[2] * inv[2]

	fromUnit.I()
	fromUnit[0][0] = size[0]
	fromUnit[1][1] = size[1]
	fromUnit[2][2] = size[2]
	fromUnit[3][0] = b.Min[0]
	fromUnit[3][1] = b.Min[1]
	fromUnit[3][2] = b.Min[2]
	return
}

// Log2Ceil returns ceil(log2(x)) for x > 1, and 0 for
// x <= 1.
func Log2Ceil(x float32) int {
	if x <= 1 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(x))))
}

// Clamp restricts x to the range [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	return max(lo, min(hi, x))
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 { return a + (b-a)*t }
