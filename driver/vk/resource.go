// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	"unsafe"

	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

func newVkErr(op string, res vkc.Result) error {
	return &vkError{op: op, res: res}
}

type vkError struct {
	op  string
	res vkc.Result
}

func (e *vkError) Error() string { return "vk: " + e.op + ": result " + itoa(int(e.res)) }

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [12]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}

func usageToVkBuffer(u driver.Usage) vkc.BufferUsageFlags {
	f := vkc.BufferUsageFlags(vkc.BufferUsageTransferSrcBit | vkc.BufferUsageTransferDstBit)
	if u&driver.UVertexData != 0 {
		f |= vkc.BufferUsageFlags(vkc.BufferUsageVertexBufferBit)
	}
	if u&driver.UIndexData != 0 {
		f |= vkc.BufferUsageFlags(vkc.BufferUsageIndexBufferBit)
	}
	if u&driver.UShaderConst != 0 {
		f |= vkc.BufferUsageFlags(vkc.BufferUsageUniformBufferBit)
	}
	if u&driver.UShaderRead != 0 || u&driver.UShaderWrite != 0 {
		f |= vkc.BufferUsageFlags(vkc.BufferUsageStorageBufferBit)
	}
	return f
}

// Buffer wraps a Vulkan buffer and its bound memory.
type Buffer struct {
	gpu     *GPU
	vk      vkc.Buffer
	mem     vkc.DeviceMemory
	size    int64
	visible bool
	mapped  []byte
}

// NewBuffer creates a buffer of size bytes. visible requests
// host-visible, host-coherent memory suitable for CPU
// updates; otherwise device-local memory is preferred.
func (g *GPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	info := vkc.BufferCreateInfo{
		SType:       vkc.StructureTypeBufferCreateInfo,
		Size:        vkc.DeviceSize(size),
		Usage:       usageToVkBuffer(usg),
		SharingMode: vkc.SharingModeExclusive,
	}
	var buf vkc.Buffer
	if res := vkc.CreateBuffer(g.dev, &info, nil, &buf); res != vkc.Success {
		return nil, newVkErr("create buffer", res)
	}
	var req vkc.MemoryRequirements
	vkc.GetBufferMemoryRequirements(g.dev, buf, &req)
	req.Deref()

	props := vkc.MemoryPropertyFlags(vkc.MemoryPropertyDeviceLocalBit)
	if visible {
		props = vkc.MemoryPropertyFlags(vkc.MemoryPropertyHostVisibleBit | vkc.MemoryPropertyHostCoherentBit)
	}
	memType, err := g.findMemoryType(req.MemoryTypeBits, props)
	if err != nil {
		vkc.DestroyBuffer(g.dev, buf, nil)
		return nil, err
	}
	allocInfo := vkc.MemoryAllocateInfo{
		SType:           vkc.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memType,
	}
	var mem vkc.DeviceMemory
	if res := vkc.AllocateMemory(g.dev, &allocInfo, nil, &mem); res != vkc.Success {
		vkc.DestroyBuffer(g.dev, buf, nil)
		return nil, newVkErr("allocate memory", res)
	}
	vkc.BindBufferMemory(g.dev, buf, mem, 0)

	b := &Buffer{gpu: g, vk: buf, mem: mem, size: size, visible: visible}
	if visible {
		var ptr unsafe.Pointer
		vkc.MapMemory(g.dev, mem, 0, vkc.DeviceSize(size), 0, &ptr)
		b.mapped = unsafe.Slice((*byte)(ptr), size)
	}
	return b, nil
}

func (g *GPU) findMemoryType(typeBits uint32, props vkc.MemoryPropertyFlags) (uint32, error) {
	var memProps vkc.PhysicalDeviceMemoryProperties
	vkc.GetPhysicalDeviceMemoryProperties(g.pdev, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		t := memProps.MemoryTypes[i]
		t.Deref()
		if typeBits&(1<<i) != 0 && t.PropertyFlags&props == props {
			return i, nil
		}
	}
	return 0, driver.ErrNoDeviceMemory
}

func (b *Buffer) Destroy() {
	if b.mapped != nil {
		vkc.UnmapMemory(b.gpu.dev, b.mem)
	}
	vkc.DestroyBuffer(b.gpu.dev, b.vk, nil)
	vkc.FreeMemory(b.gpu.dev, b.mem, nil)
}

func (b *Buffer) Visible() bool { return b.visible }
func (b *Buffer) Bytes() []byte { return b.mapped }
func (b *Buffer) Cap() int64    { return b.size }

// Sampler wraps a Vulkan sampler.
type Sampler struct {
	gpu *GPU
	vk  vkc.Sampler
}

func filterToVk(f driver.Filter) vkc.Filter {
	if f == driver.FLinear {
		return vkc.FilterLinear
	}
	return vkc.FilterNearest
}

func addrModeToVk(m driver.AddrMode) vkc.SamplerAddressMode {
	switch m {
	case driver.AMirror:
		return vkc.SamplerAddressModeMirroredRepeat
	case driver.AClamp:
		return vkc.SamplerAddressModeClampToEdge
	default:
		return vkc.SamplerAddressModeRepeat
	}
}

// NewSampler creates a sampler from the given Sampling state.
func (g *GPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) {
	info := vkc.SamplerCreateInfo{
		SType:        vkc.StructureTypeSamplerCreateInfo,
		MagFilter:    filterToVk(spln.Mag),
		MinFilter:    filterToVk(spln.Min),
		AddressModeU: addrModeToVk(spln.AddrU),
		AddressModeV: addrModeToVk(spln.AddrV),
		AddressModeW: addrModeToVk(spln.AddrW),
	}
	var s vkc.Sampler
	if res := vkc.CreateSampler(g.dev, &info, nil, &s); res != vkc.Success {
		return nil, newVkErr("create sampler", res)
	}
	return &Sampler{gpu: g, vk: s}, nil
}

func (s *Sampler) Destroy() { vkc.DestroySampler(s.gpu.dev, s.vk, nil) }
