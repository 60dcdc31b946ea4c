// Copyright 2024 The Voxen Authors. All rights reserved.

package volume

import (
	"sort"
	"sync"

	"github.com/voxen-engine/voxen/linear"
	"github.com/voxen-engine/voxen/svo"
)

// Params controls the per-frame LOD selection.
type Params struct {
	// LODBoundaryDepth is the depth at which interior nodes
	// are evaluated for an individual LOD decision (C11's
	// NodesAtDepth argument).
	LODBoundaryDepth int

	// MinDetail and MaxDetail clamp targetDepth. Build lowers
	// MaxDetail to the model's own tree depth, and to 16 (the
	// precision of the uint16 node centers), when it is larger.
	MinDetail, MaxDetail int

	// DistMin and DistMax are the view-space distances
	// between which bestFit shrinks linearly to zero.
	DistMin, DistMax float32

	// ViewportW, ViewportH are the render target dimensions
	// in pixels, used to turn a projected NDC extent into a
	// pixel extent.
	ViewportW, ViewportH int
}

type cacheEntry struct {
	array svo.VolumeArray
	depth int
}

// Builder incrementally flattens a svo.Model into per-frame
// Layers, caching each LOD-boundary subtree's last flattened
// array so that an unchanged view does not rebuild anything.
type Builder struct {
	mu    sync.Mutex
	cache map[svo.NodeHandle]cacheEntry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{cache: make(map[svo.NodeHandle]cacheEntry)}
}

// Build projects model's AABB through mvp; if it lies
// entirely outside the clip volume, it returns (nil, false).
// Otherwise it evaluates every LOD-boundary node, rebuilding
// or reusing its cached array as Params dictates, and returns
// the layers concatenated in front-to-back view-space Z
// order.
func (b *Builder) Build(model *svo.Model, mvp *linear.M4, viewSpace *linear.M4, p Params) ([]*Layer, bool) {
	box := linear.AABB{Min: model.AABBMin, Max: model.AABBMax}
	if clipCulled(&box, mvp) {
		return nil, false
	}
	if d := model.Tree.Depth(); p.MaxDetail > d {
		p.MaxDetail = d
	}
	if p.MaxDetail > 16 {
		p.MaxDetail = 16
	}

	handles := model.Tree.NodesAtDepth(p.LODBoundaryDepth)
	layers := make([]*Layer, 0, len(handles))

	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[svo.NodeHandle]bool, len(handles))
	for _, h := range handles {
		seen[h] = true
		worldMin, worldMax := unitToWorld(model.AABBMin, model.AABBMax, h.Center(), h.Extent())
		target := targetDepth(&box, h, mvp, viewSpace, p)

		entry, ok := b.cache[h]
		if !ok || entry.depth != target {
			entry = cacheEntry{array: h.MakeSubarray(target - h.Depth()), depth: target}
			b.cache[h] = entry
		}
		layers = append(layers, &Layer{
			Array:    entry.array,
			Handle:   h,
			Depth:    target,
			worldMin: worldMin,
			worldMax: worldMax,
		})
	}
	// Evict cache entries for subtrees no longer present
	// (e.g. the tree was mutated between frames).
	for h := range b.cache {
		if !seen[h] {
			delete(b.cache, h)
		}
	}

	sort.Slice(layers, func(i, j int) bool {
		bi, bj := layers[i].Bounds(), layers[j].Bounds()
		return viewSpaceZ(bi.Center(), viewSpace) < viewSpaceZ(bj.Center(), viewSpace)
	})
	return layers, true
}

func viewSpaceZ(center linear.V3, view *linear.M4) float32 {
	v4 := linear.V4{center[0], center[1], center[2], 1}
	var out linear.V4
	out.Mul(view, &v4)
	return out[2]
}

// clipCulled reports whether every corner of box projects
// outside the same clip-space plane through mvp (a
// conservative but cheap all-corners-on-one-side test).
func clipCulled(box *linear.AABB, mvp *linear.M4) bool {
	var corners [8]linear.V3
	box.Corners(&corners)
	var clip [8]linear.V4
	for i, c := range corners {
		v4 := linear.V4{c[0], c[1], c[2], 1}
		clip[i].Mul(mvp, &v4)
	}
	checks := []func(linear.V4) bool{
		func(v linear.V4) bool { return v[0] > v[3] },
		func(v linear.V4) bool { return v[0] < -v[3] },
		func(v linear.V4) bool { return v[1] > v[3] },
		func(v linear.V4) bool { return v[1] < -v[3] },
		func(v linear.V4) bool { return v[2] > v[3] },
		func(v linear.V4) bool { return v[2] < 0 },
	}
	for _, check := range checks {
		all := true
		for _, c := range clip {
			if !check(c) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// targetDepth implements the per-node bestFit computation:
// project the node's cube corners through mvp, take the
// screen-space pixel extent, derive bestFit = log2(max
// pixel extent) clamped to [0,125], shrink it to zero as
// view-space distance goes from DistMax to DistMin, then
// clamp currentDepth+bestFit to MaxDetail.
func targetDepth(modelBox *linear.AABB, h svo.NodeHandle, mvp, view *linear.M4, p Params) int {
	c := h.Center()
	e := h.Extent()
	size := modelBox.Extent()
	var lo, hi linear.V3
	for i := 0; i < 3; i++ {
		lo[i] = modelBox.Min[i] + (c[i]-e)*(2*size[i])
		hi[i] = modelBox.Min[i] + (c[i]+e)*(2*size[i])
	}
	nodeBox := linear.AABB{Min: lo, Max: hi}
	var corners [8]linear.V3
	nodeBox.Corners(&corners)

	var ndcMin, ndcMax [2]float32
	ndcMin[0], ndcMin[1] = 1, 1
	ndcMax[0], ndcMax[1] = -1, -1
	for _, cn := range corners {
		v4 := linear.V4{cn[0], cn[1], cn[2], 1}
		var clip linear.V4
		clip.Mul(mvp, &v4)
		if clip[3] == 0 {
			continue
		}
		x, y := clip[0]/clip[3], clip[1]/clip[3]
		ndcMin[0] = min32(ndcMin[0], x)
		ndcMax[0] = max32(ndcMax[0], x)
		ndcMin[1] = min32(ndcMin[1], y)
		ndcMax[1] = max32(ndcMax[1], y)
	}
	pixelW := (ndcMax[0] - ndcMin[0]) * 0.5 * float32(p.ViewportW)
	pixelH := (ndcMax[1] - ndcMin[1]) * 0.5 * float32(p.ViewportH)
	bestFit := linear.Log2Ceil(max32(pixelW, pixelH))
	bf := linear.Clamp(float32(bestFit), 0, 125)

	nodeWorldCenter := h.Center()
	worldCenter, _ := unitToWorld(modelBox.Min, modelBox.Max, nodeWorldCenter, 0)
	dist := viewSpaceZ(worldCenter, view)
	if dist < 0 {
		dist = -dist
	}
	shrink := float32(1)
	if p.DistMax > p.DistMin {
		shrink = 1 - linear.Clamp((dist-p.DistMin)/(p.DistMax-p.DistMin), 0, 1)
	}
	bf *= shrink

	target := h.Depth() + int(bf)
	if target > p.MaxDetail {
		target = p.MaxDetail
	}
	if target < p.MinDetail {
		target = p.MinDetail
	}
	if target < h.Depth() {
		target = h.Depth()
	}
	return target
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
