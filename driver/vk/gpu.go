// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	"sync"
	"unsafe"

	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

// GPU implements driver.GPU over one Vulkan device.
type GPU struct {
	inst vkc.Instance
	pdev vkc.PhysicalDevice
	dev  vkc.Device

	families    []uint32
	familyFlags []vkc.QueueFlags

	qmu sync.Mutex

	descPools *descPoolSet
	arbiter   *fenceArbiter
}

func (g *GPU) destroy() {
	g.arbiter.stop()
	vkc.DeviceWaitIdle(g.dev)
	vkc.DestroyDevice(g.dev, nil)
	vkc.DestroyInstance(g.inst, nil)
}

// Driver returns nil: the GPU keeps no reference to the
// Driver that opened it.
func (g *GPU) Driver() driver.Driver { return nil }

func flagsToVk(want driver.QueueFlags) vkc.QueueFlags {
	var f vkc.QueueFlags
	if want&driver.QCopy != 0 {
		f |= vkc.QueueFlags(vkc.QueueTransferBit)
	}
	if want&driver.QRender != 0 {
		f |= vkc.QueueFlags(vkc.QueueGraphicsBit)
	}
	if want&driver.QCompute != 0 {
		f |= vkc.QueueFlags(vkc.QueueComputeBit)
	}
	return f
}

// NewQueue returns the first family whose flags are a
// superset of want, preferring an exact-flag match.
func (g *GPU) NewQueue(want driver.QueueFlags) (driver.Queue, error) {
	wantVk := flagsToVk(want)
	g.qmu.Lock()
	defer g.qmu.Unlock()

	best := -1
	bestExact := false
	for i, flags := range g.familyFlags {
		if flags&wantVk != wantVk {
			continue
		}
		exact := flags == wantVk
		if best < 0 || (exact && !bestExact) {
			best, bestExact = i, exact
		}
	}
	if best < 0 {
		return nil, driver.ErrNoDevice
	}
	fam := g.families[best]
	var q vkc.Queue
	vkc.GetDeviceQueue(g.dev, fam, 0, &q)

	var poolInfo = vkc.CommandPoolCreateInfo{
		SType:            vkc.StructureTypeCommandPoolCreateInfo,
		Flags:            vkc.CommandPoolCreateFlags(vkc.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: fam,
	}
	var pool vkc.CommandPool
	vkc.CreateCommandPool(g.dev, &poolInfo, nil, &pool)

	return &Queue{gpu: g, vk: q, family: fam, pool: pool, flags: want}, nil
}

// NewCmdBuffer satisfies driver.GPU by allocating a transient
// render/compute/copy-capable queue implicitly; most callers
// are expected to go through NewQueue directly.
func (g *GPU) NewCmdBuffer() (driver.CmdBuffer, error) {
	q, err := g.NewQueue(driver.QRender | driver.QCompute | driver.QCopy)
	if err != nil {
		return nil, err
	}
	return q.NewCmdBuffer()
}

// Limits reports a conservative, device-independent set of
// limits; a real backend would query
// vkGetPhysicalDeviceProperties here.
func (g *GPU) Limits() driver.Limits {
	return driver.Limits{
		MaxDispatch:      [3]int{65535, 65535, 65535},
		ExtDynamicState3: false,
	}
}

func (g *GPU) NewEvent() (driver.Event, error) {
	typeInfo := vkc.SemaphoreTypeCreateInfo{
		SType:         vkc.StructureTypeSemaphoreTypeCreateInfo,
		SemaphoreType: vkc.SemaphoreTypeTimeline,
		InitialValue:  0,
	}
	info := vkc.SemaphoreCreateInfo{SType: vkc.StructureTypeSemaphoreCreateInfo, PNext: unsafe.Pointer(&typeInfo)}
	var sem vkc.Semaphore
	if res := vkc.CreateSemaphore(g.dev, &info, nil, &sem); res != vkc.Success {
		return nil, newVkErr("create semaphore", res)
	}
	return &Event{gpu: g, vk: sem}, nil
}
