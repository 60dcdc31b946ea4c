// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	"unsafe"

	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

// Queue implements driver.Queue over one Vulkan queue family
// and its associated command pool.
type Queue struct {
	gpu    *GPU
	vk     vkc.Queue
	family uint32
	pool   vkc.CommandPool
	flags  driver.QueueFlags
}

func (q *Queue) Destroy() { vkc.DestroyCommandPool(q.gpu.dev, q.pool, nil) }

func (q *Queue) Flags() driver.QueueFlags { return q.flags }

// NewCmdBuffer allocates a new primary command buffer from
// the queue's pool.
func (q *Queue) NewCmdBuffer() (driver.CmdBuffer, error) {
	info := vkc.CommandBufferAllocateInfo{
		SType:              vkc.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        q.pool,
		Level:              vkc.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	bufs := make([]vkc.CommandBuffer, 1)
	if res := vkc.AllocateCommandBuffers(q.gpu.dev, &info, bufs); res != vkc.Success {
		return nil, newVkErr("allocate command buffer", res)
	}
	return &CmdBuffer{gpu: q.gpu, queue: q, vk: bufs[0]}, nil
}

// Submit commits cb as a single batch. A fence is drawn from
// the GPU's fence arbiter so the caller observes completion
// through WorkItem.Done without blocking the submitting
// goroutine.
func (q *Queue) Submit(cb []driver.CmdBuffer) (*driver.WorkItem, error) {
	bufs := make([]vkc.CommandBuffer, len(cb))
	var waitSem, signalSem []vkc.Semaphore
	var waitValue, signalValue []uint64
	var waitStage []vkc.PipelineStageFlags
	for i, c := range cb {
		vc := c.(*CmdBuffer)
		bufs[i] = vc.vk
		waitSem = append(waitSem, vc.waitSem...)
		waitValue = append(waitValue, vc.waitValue...)
		waitStage = append(waitStage, vc.waitStage...)
		signalSem = append(signalSem, vc.signalSem...)
		signalValue = append(signalValue, vc.signalValue...)
	}

	fence, err := q.gpu.arbiter.acquireFence()
	if err != nil {
		return nil, err
	}
	info := vkc.SubmitInfo{
		SType:              vkc.StructureTypeSubmitInfo,
		CommandBufferCount: uint32(len(bufs)),
		PCommandBuffers:    bufs,
	}
	if len(waitSem) > 0 {
		info.WaitSemaphoreCount = uint32(len(waitSem))
		info.PWaitSemaphores = waitSem
		info.PWaitDstStageMask = waitStage
	}
	if len(signalSem) > 0 {
		info.SignalSemaphoreCount = uint32(len(signalSem))
		info.PSignalSemaphores = signalSem
	}
	if len(waitSem) > 0 || len(signalSem) > 0 {
		timeline := vkc.TimelineSemaphoreSubmitInfo{
			SType:                     vkc.StructureTypeTimelineSemaphoreSubmitInfo,
			WaitSemaphoreValueCount:   uint32(len(waitValue)),
			PWaitSemaphoreValues:      waitValue,
			SignalSemaphoreValueCount: uint32(len(signalValue)),
			PSignalSemaphoreValues:    signalValue,
		}
		info.PNext = unsafe.Pointer(&timeline)
	}
	if res := vkc.QueueSubmit(q.vk, 1, []vkc.SubmitInfo{info}, fence); res != vkc.Success {
		q.gpu.arbiter.releaseFence(fence)
		return nil, newVkErr("queue submit", res)
	}
	wi := &driver.WorkItem{Work: cb, Done: make(chan error, 1)}
	q.gpu.arbiter.track(fence, wi.Done)
	return wi, nil
}
