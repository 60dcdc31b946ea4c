// Copyright 2024 The Voxen Authors. All rights reserved.

package render

import (
	"testing"

	"github.com/voxen-engine/voxen/driver"
)

// fakeBuffer is a minimal host-visible driver.Buffer double that
// tracks whether it has been destroyed, enough to exercise the
// pooled layer-buffer allocator without a GPU.
type fakeBuffer struct {
	data      []byte
	destroyed bool
}

func (b *fakeBuffer) Destroy()        { b.destroyed = true }
func (b *fakeBuffer) Visible() bool   { return true }
func (b *fakeBuffer) Bytes() []byte   { return b.data }
func (b *fakeBuffer) Cap() int64      { return int64(len(b.data)) }

// fakeGPU implements only the driver.GPU method acquireLayerBuffer
// needs; every other call panics via the nil embedded interface,
// which is fine since the allocator never reaches them.
type fakeGPU struct {
	driver.GPU
	allocs int
}

func (g *fakeGPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	g.allocs++
	return &fakeBuffer{data: make([]byte, size)}, nil
}

func TestAcquireLayerBufferReusesFreeSlot(t *testing.T) {
	g := &fakeGPU{}
	r := &Renderer{gpu: g}

	idx1, buf1, err := r.acquireLayerBuffer(128)
	if err != nil {
		t.Fatalf("acquireLayerBuffer: %v", err)
	}
	r.bufFree.Unset(idx1)

	idx2, buf2, err := r.acquireLayerBuffer(64)
	if err != nil {
		t.Fatalf("acquireLayerBuffer: %v", err)
	}
	if idx2 != idx1 {
		t.Fatalf("expected reuse of freed slot %d, got new slot %d", idx1, idx2)
	}
	if buf2 != buf1 {
		t.Fatal("expected the same underlying buffer to be reused, capacity was sufficient")
	}
	if g.allocs != 1 {
		t.Fatalf("expected exactly one GPU allocation, got %d", g.allocs)
	}
}

func TestAcquireLayerBufferGrowsWhenTooSmall(t *testing.T) {
	g := &fakeGPU{}
	r := &Renderer{gpu: g}

	idx1, buf1, err := r.acquireLayerBuffer(32)
	if err != nil {
		t.Fatalf("acquireLayerBuffer: %v", err)
	}
	r.bufFree.Unset(idx1)

	// The free slot's buffer is too small; the slot is reused
	// and its buffer is destroyed and replaced by a larger one.
	idx2, buf2, err := r.acquireLayerBuffer(1024)
	if err != nil {
		t.Fatalf("acquireLayerBuffer: %v", err)
	}
	if idx2 != idx1 {
		t.Fatalf("expected the freed slot %d to be refilled, got slot %d", idx1, idx2)
	}
	if buf2 == buf1 || !buf1.(*fakeBuffer).destroyed {
		t.Fatal("expected the undersized buffer to be destroyed and replaced")
	}
	if g.allocs != 2 {
		t.Fatalf("expected two GPU allocations, got %d", g.allocs)
	}
}

func TestReleaseLayerBuffersFreesSlots(t *testing.T) {
	g := &fakeGPU{}
	r := &Renderer{gpu: g}

	idx, buf, err := r.acquireLayerBuffer(16)
	if err != nil {
		t.Fatalf("acquireLayerBuffer: %v", err)
	}
	r.layerBufIdx = []int{idx}
	r.layerBufs = []driver.Buffer{buf}

	r.releaseLayerBuffers()

	idx2, buf2, err := r.acquireLayerBuffer(16)
	if err != nil {
		t.Fatalf("acquireLayerBuffer: %v", err)
	}
	if idx2 != idx || buf2 != buf {
		t.Fatal("expected released slot and buffer to be reused")
	}
	if r.layers != nil || r.layerBufs != nil || r.layerBufIdx != nil {
		t.Fatal("releaseLayerBuffers did not clear frame-local slices")
	}
}
