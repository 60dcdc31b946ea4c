// Copyright 2024 The Voxen Authors. All rights reserved.

// Package vk implements the driver interfaces over the
// Vulkan API via github.com/goki/vulkan.
package vk

import (
	"fmt"
	"sync"

	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

const driverName = "vulkan"

func init() {
	driver.Register(&Driver{})
}

var vulkanInit sync.Once
var vulkanInitErr error

func ensureLoader() error {
	vulkanInit.Do(func() {
		if err := vkc.SetDefaultGetInstanceProcAddr(); err != nil {
			vulkanInitErr = fmt.Errorf("vk: load library: %w", err)
			return
		}
		vulkanInitErr = vkc.Init()
	})
	return vulkanInitErr
}

// Driver implements driver.Driver and opens a single vk.GPU
// instance backed by one Vulkan instance/device pair.
type Driver struct {
	mu  sync.Mutex
	gpu *GPU
}

// Name returns the driver name, "vulkan".
func (d *Driver) Name() string { return driverName }

// Open creates the Vulkan instance and device on first call;
// subsequent calls return the same *GPU.
func (d *Driver) Open() (driver.GPU, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gpu != nil {
		return d.gpu, nil
	}
	if err := ensureLoader(); err != nil {
		return nil, driver.ErrNotInstalled
	}
	gpu, err := newGPU()
	if err != nil {
		return nil, err
	}
	d.gpu = gpu
	return gpu, nil
}

// Close destroys the device and instance, if open.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gpu == nil {
		return
	}
	d.gpu.destroy()
	d.gpu = nil
}

func newGPU() (*GPU, error) {
	appInfo := vkc.ApplicationInfo{
		SType:         vkc.StructureTypeApplicationInfo,
		PEngineName:   "voxen\x00",
		EngineVersion: vkc.MakeVersion(1, 0, 0),
		ApiVersion:    vkc.MakeVersion(1, 2, 0),
	}
	instInfo := vkc.InstanceCreateInfo{
		SType:            vkc.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var inst vkc.Instance
	if res := vkc.CreateInstance(&instInfo, nil, &inst); res != vkc.Success {
		return nil, fmt.Errorf("vk: create instance: result %d", res)
	}
	vkc.InitInstance(inst)

	var count uint32
	vkc.EnumeratePhysicalDevices(inst, &count, nil)
	if count == 0 {
		vkc.DestroyInstance(inst, nil)
		return nil, driver.ErrNoDevice
	}
	pdevs := make([]vkc.PhysicalDevice, count)
	vkc.EnumeratePhysicalDevices(inst, &count, pdevs)

	pdev, famIdx, famProps, ok := pickDevice(pdevs)
	if !ok {
		vkc.DestroyInstance(inst, nil)
		return nil, driver.ErrNoDevice
	}

	queueInfos := make([]vkc.DeviceQueueCreateInfo, len(famIdx))
	prio := []float32{1}
	for i, fam := range famIdx {
		queueInfos[i] = vkc.DeviceQueueCreateInfo{
			SType:            vkc.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: fam,
			QueueCount:       1,
			PQueuePriorities: prio,
		}
	}
	devInfo := vkc.DeviceCreateInfo{
		SType:                vkc.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: uint32(len(queueInfos)),
		PQueueCreateInfos:    queueInfos,
	}
	var dev vkc.Device
	if res := vkc.CreateDevice(pdev, &devInfo, nil, &dev); res != vkc.Success {
		vkc.DestroyInstance(inst, nil)
		return nil, fmt.Errorf("vk: create device: result %d", res)
	}

	g := &GPU{
		inst: inst, pdev: pdev, dev: dev,
		families: famIdx, familyFlags: famProps,
		descPools: newDescPoolSet(),
	}
	g.arbiter = newFenceArbiter(dev)
	return g, nil
}

// pickDevice selects the first physical device exposing at
// least one queue family, and returns the family indices
// along with their reported flags (one family is reused for
// whichever of copy/render/compute it supports, mirroring
// how most consumer GPUs expose a single universal family
// plus an async-compute/transfer family).
func pickDevice(pdevs []vkc.PhysicalDevice) (vkc.PhysicalDevice, []uint32, []vkc.QueueFlags, bool) {
	for _, pdev := range pdevs {
		var n uint32
		vkc.GetPhysicalDeviceQueueFamilyProperties(pdev, &n, nil)
		if n == 0 {
			continue
		}
		props := make([]vkc.QueueFamilyProperties, n)
		vkc.GetPhysicalDeviceQueueFamilyProperties(pdev, &n, props)
		idx := make([]uint32, 0, n)
		flags := make([]vkc.QueueFlags, 0, n)
		for i, p := range props {
			p.Deref()
			idx = append(idx, uint32(i))
			flags = append(flags, p.QueueFlags)
		}
		return pdev, idx, flags, true
	}
	return vkc.PhysicalDevice(nil), nil, nil, false
}
