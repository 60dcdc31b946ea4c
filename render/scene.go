// Copyright 2024 The Voxen Authors. All rights reserved.

package render

import (
	"github.com/voxen-engine/voxen/driver"
	"github.com/voxen-engine/voxen/linear"
	"github.com/voxen-engine/voxen/svo"
	"github.com/voxen-engine/voxen/volume"
)

// PrepareScene reallocates the G-buffer if the target
// resolution changed, culls the model against the view
// frustum, and runs the LOD/cache algorithm to select and
// upload the volume layers for the frame. Culled reports
// whether Render should be skipped entirely this frame.
func (r *Renderer) PrepareScene(model *svo.Model, mvp, viewSpace *linear.M4, targetW, targetH int) error {
	w, h := renderDims(targetW, targetH, r.params.RenderScale)
	if err := r.reallocGBuffer(w, h); err != nil {
		return err
	}

	lodParams := r.params.LOD
	lodParams.ViewportW, lodParams.ViewportH = w, h

	layers, culled := r.builder.Build(model, mvp, viewSpace, lodParams)
	r.stats = Stats{RenderWidth: w, RenderHeight: h, Culled: culled}
	if culled {
		r.releaseLayerBuffers()
		return nil
	}

	if err := r.uploadLayers(layers); err != nil {
		return err
	}
	r.stats.LayerCount = len(layers)
	return nil
}

// releaseLayerBuffers returns every buffer bound for the
// current frame to the pool rather than destroying it, so the
// next frame can reuse one of matching capacity without a
// fresh GPU allocation.
func (r *Renderer) releaseLayerBuffers() {
	for _, idx := range r.layerBufIdx {
		r.bufFree.Unset(idx)
	}
	r.layers, r.layerBufs, r.layerBufIdx = nil, nil, nil
}

// uploadLayers replaces the renderer's live layer buffers with
// one pooled host-visible GPU buffer per selected layer,
// keeping them alive through the frame's submission. The LOD
// builder's own cache (keyed by svo.NodeHandle) is what
// actually avoids rebuilding array contents across frames;
// this step still has to re-upload whatever it selects, since
// GPU buffers aren't part of that cache.
func (r *Renderer) uploadLayers(layers []*volume.Layer) error {
	r.releaseLayerBuffers()
	r.layers = layers
	r.layerBufs = make([]driver.Buffer, len(layers))
	r.layerBufIdx = make([]int, len(layers))
	for i, l := range layers {
		data := l.Array.AppendTo(nil)
		idx, buf, err := r.acquireLayerBuffer(int64(len(data)))
		if err != nil {
			return err
		}
		copy(buf.Bytes(), data)
		r.layerBufs[i] = buf
		r.layerBufIdx[i] = idx
	}
	return nil
}

// acquireLayerBuffer returns a pooled host-visible buffer with
// capacity at least size, preferring a free slot that already
// holds a large-enough buffer. Slot occupancy is tracked with
// a bit vector (bitvec.V), the same way a staging-buffer block
// allocator would: Set marks a slot bound for this frame, Unset
// (in releaseLayerBuffers) returns it to the free list for the
// next one.
func (r *Renderer) acquireLayerBuffer(size int64) (int, driver.Buffer, error) {
	for idx, inUse := range r.bufFree.All() {
		if inUse {
			continue
		}
		if idx < len(r.bufPool) && r.bufPool[idx] != nil && r.bufPoolCap[idx] >= size {
			r.bufFree.Set(idx)
			return idx, r.bufPool[idx], nil
		}
	}

	idx, ok := r.bufFree.Search()
	if !ok {
		idx = r.bufFree.Grow(1)
	}
	for len(r.bufPool) <= idx {
		r.bufPool = append(r.bufPool, nil)
		r.bufPoolCap = append(r.bufPoolCap, 0)
	}
	if r.bufPool[idx] != nil {
		r.bufPool[idx].Destroy()
	}
	buf, err := r.gpu.NewBuffer(size, true, driver.UShaderRead)
	if err != nil {
		return 0, nil, err
	}
	r.bufPool[idx], r.bufPoolCap[idx] = buf, size
	r.bufFree.Set(idx)
	return idx, buf, nil
}
