// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	"sync"
	"time"

	vkc "github.com/goki/vulkan"
)

const fencePollTimeout = 2 * time.Millisecond

type fenceWait struct {
	fence vkc.Fence
	done  chan error
}

// fenceArbiter owns a dedicated goroutine that polls
// submission fences and dispatches completion callbacks. A
// single poller amortizes the cost of vkWaitForFences across
// every in-flight submission instead of spawning one
// goroutine per Submit call, and lets fences be recycled as
// soon as they are observed signaled.
type fenceArbiter struct {
	dev vkc.Device

	mu       sync.Mutex
	pending  []fenceWait
	reusable []vkc.Fence

	quit chan struct{}
	wake chan struct{}
	wg   sync.WaitGroup
}

func newFenceArbiter(dev vkc.Device) *fenceArbiter {
	a := &fenceArbiter{dev: dev, quit: make(chan struct{}), wake: make(chan struct{}, 1)}
	a.wg.Add(1)
	go a.run()
	return a
}

// acquireFence returns a recycled fence in the unsignaled
// state, or creates a new one if none is available.
func (a *fenceArbiter) acquireFence() (vkc.Fence, error) {
	a.mu.Lock()
	if n := len(a.reusable); n > 0 {
		f := a.reusable[n-1]
		a.reusable = a.reusable[:n-1]
		a.mu.Unlock()
		vkc.ResetFences(a.dev, 1, []vkc.Fence{f})
		return f, nil
	}
	a.mu.Unlock()

	info := vkc.FenceCreateInfo{SType: vkc.StructureTypeFenceCreateInfo}
	var f vkc.Fence
	if res := vkc.CreateFence(a.dev, &info, nil, &f); res != vkc.Success {
		return vkc.Fence(nil), newVkErr("create fence", res)
	}
	return f, nil
}

// releaseFence returns an unused fence (one that was never
// submitted, or whose submission failed) to the reusable pool
// instead of leaking the handle.
func (a *fenceArbiter) releaseFence(f vkc.Fence) {
	a.mu.Lock()
	a.reusable = append(a.reusable, f)
	a.mu.Unlock()
}

// track registers a fence/completion-channel pair for
// polling; the channel receives exactly once, in the order
// fences are observed signaled, not submission order.
func (a *fenceArbiter) track(f vkc.Fence, done chan error) {
	a.mu.Lock()
	a.pending = append(a.pending, fenceWait{fence: f, done: done})
	a.mu.Unlock()
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *fenceArbiter) run() {
	defer a.wg.Done()
	t := time.NewTicker(fencePollTimeout)
	defer t.Stop()
	for {
		select {
		case <-a.quit:
			return
		case <-t.C:
		case <-a.wake:
		}
		a.poll()
	}
}

func (a *fenceArbiter) poll() {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	var ready []fenceWait
	var stillPending []fenceWait
	for _, p := range pending {
		res := vkc.GetFenceStatus(a.dev, p.fence)
		if res == vkc.Success {
			ready = append(ready, p)
		} else {
			stillPending = append(stillPending, p)
		}
	}

	a.mu.Lock()
	// Merge back any entries track() added while this poll was
	// in flight, rather than overwriting them.
	a.pending = append(stillPending, a.pending...)
	for _, r := range ready {
		a.reusable = append(a.reusable, r.fence)
	}
	a.mu.Unlock()

	for _, r := range ready {
		r.done <- nil
	}
}

func (a *fenceArbiter) stop() {
	close(a.quit)
	a.wg.Wait()
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.pending {
		vkc.DestroyFence(a.dev, p.fence, nil)
	}
	for _, f := range a.reusable {
		vkc.DestroyFence(a.dev, f, nil)
	}
}
