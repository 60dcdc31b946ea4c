// Copyright 2024 The Voxen Authors. All rights reserved.

// Package volume produces the view-dependent level-of-detail
// flattening of a svo.Model that is fed to the raycaster: a
// set of Layers, each a flattened subtree sized to how much
// screen-space detail it currently warrants, concatenated in
// front-to-back order.
package volume

import (
	"github.com/voxen-engine/voxen/linear"
	"github.com/voxen-engine/voxen/svo"
)

// Layer is one subtree's flattened array, scoped to the
// model's world-space AABB.
type Layer struct {
	Array  svo.VolumeArray
	Handle svo.NodeHandle
	Depth  int // Depth actually reached by Array's leaves.

	worldMin, worldMax linear.V3
}

// Bounds returns the layer's world-space AABB.
func (l *Layer) Bounds() linear.AABB {
	return linear.AABB{Min: l.worldMin, Max: l.worldMax}
}

func unitToWorld(modelMin, modelMax linear.V3, center [3]float32, extent float32) (min, max linear.V3) {
	size := modelMax
	size.Sub(&modelMax, &modelMin)
	for i := 0; i < 3; i++ {
		lo := center[i] - extent
		hi := center[i] + extent
		min[i] = modelMin[i] + lo*size[i]
		max[i] = modelMin[i] + hi*size[i]
	}
	return
}
