// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	"hash/fnv"
	"sync"

	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
	"github.com/voxen-engine/voxen/internal/bitm"
)

const descPoolShards = 7

func descTypeToVk(t driver.DescType) vkc.DescriptorType {
	switch t {
	case driver.DBuffer:
		return vkc.DescriptorTypeStorageBuffer
	case driver.DImage:
		return vkc.DescriptorTypeStorageImage
	case driver.DConstant:
		return vkc.DescriptorTypeUniformBuffer
	case driver.DTexture:
		return vkc.DescriptorTypeSampledImage
	case driver.DSampler:
		return vkc.DescriptorTypeSampler
	default:
		return vkc.DescriptorTypeStorageBuffer
	}
}

// descPoolChain manages the vkc.DescriptorPool objects backing
// one DescHeap layout. Pools grow geometrically: the n-th
// pool added to the chain sizes maxSets as 2*prev+1 (rounded
// up to the bitm.Bitm[uint32] granularity), so a heap that
// keeps requesting fresh copies never blocks on
// VK_ERROR_OUT_OF_POOL_MEMORY after the first few grows. Each
// pool's live set count is tracked with a bitm.Bitm, one bit
// per set slot, the same slot-accounting structure a
// staging-buffer ring uses to track block occupancy.
type descPoolChain struct {
	mu     sync.Mutex
	dev    vkc.Device
	sizes  []vkc.DescriptorPoolSize
	layout vkc.DescriptorSetLayout
	pools  []vkc.DescriptorPool
	live   []bitm.Bitm[uint32]
}

func newDescPoolChain(dev vkc.Device, ds []driver.Descriptor) *descPoolChain {
	bindings := make([]vkc.DescriptorSetLayoutBinding, len(ds))
	sizes := make([]vkc.DescriptorPoolSize, len(ds))
	for i, d := range ds {
		vt := descTypeToVk(d.Type)
		bindings[i] = vkc.DescriptorSetLayoutBinding{
			Binding:         uint32(d.Nr),
			DescriptorType:  vt,
			DescriptorCount: uint32(maxInt(d.Len, 1)),
			StageFlags:      vkc.ShaderStageFlags(stageToVk(d.Stages)),
		}
		sizes[i] = vkc.DescriptorPoolSize{Type: vt, DescriptorCount: uint32(maxInt(d.Len, 1))}
	}
	info := vkc.DescriptorSetLayoutCreateInfo{
		SType:        vkc.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	var layout vkc.DescriptorSetLayout
	vkc.CreateDescriptorSetLayout(dev, &info, nil, &layout)
	return &descPoolChain{dev: dev, sizes: sizes, layout: layout}
}

func stageToVk(s driver.Stage) vkc.ShaderStageFlagBits {
	var f vkc.ShaderStageFlagBits
	if s&driver.SVertex != 0 {
		f |= vkc.ShaderStageVertexBit
	}
	if s&driver.SFragment != 0 {
		f |= vkc.ShaderStageFragmentBit
	}
	if s&driver.SCompute != 0 {
		f |= vkc.ShaderStageComputeBit
	}
	return f
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// grow appends a new pool sized to 2*prevCap+1 sets, rounded up
// to a whole number of uint32 bitmap words, the geometric
// growth rule for the chain.
func (c *descPoolChain) grow() (vkc.DescriptorPool, int) {
	prev := 0
	if n := len(c.live); n > 0 {
		prev = c.live[n-1].Len()
	}
	raw := 2*prev + 1
	next := ((raw + 31) / 32) * 32
	sizes := make([]vkc.DescriptorPoolSize, len(c.sizes))
	for i, s := range c.sizes {
		sizes[i] = vkc.DescriptorPoolSize{Type: s.Type, DescriptorCount: s.DescriptorCount * uint32(next)}
	}
	info := vkc.DescriptorPoolCreateInfo{
		SType:         vkc.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vkc.DescriptorPoolCreateFlags(vkc.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       uint32(next),
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	var pool vkc.DescriptorPool
	vkc.CreateDescriptorPool(c.dev, &info, nil, &pool)
	var bm bitm.Bitm[uint32]
	bm.Grow(next / 32)
	c.pools = append(c.pools, pool)
	c.live = append(c.live, bm)
	return pool, next
}

// allocSets returns n newly allocated descriptor sets from
// whichever pool in the chain has room, growing the chain if
// none does.
func (c *descPoolChain) allocSets(n int) []vkc.DescriptorSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, pool := range c.pools {
		if idx, ok := c.live[i].SearchRange(n); ok {
			return c.tryAlloc(pool, i, idx, n)
		}
	}
	pool, cap := c.grow()
	for cap < n {
		// A single request larger than the freshly grown
		// pool; grow again until it fits.
		pool, cap = c.grow()
	}
	idx, ok := c.live[len(c.pools)-1].SearchRange(n)
	if !ok {
		return nil
	}
	return c.tryAlloc(pool, len(c.pools)-1, idx, n)
}

func (c *descPoolChain) tryAlloc(pool vkc.DescriptorPool, poolIdx, bitIdx, n int) []vkc.DescriptorSet {
	layouts := make([]vkc.DescriptorSetLayout, n)
	for i := range layouts {
		layouts[i] = c.layout
	}
	info := vkc.DescriptorSetAllocateInfo{
		SType:              vkc.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: uint32(n),
		PSetLayouts:        layouts,
	}
	sets := make([]vkc.DescriptorSet, n)
	if res := vkc.AllocateDescriptorSets(c.dev, &info, &sets[0]); res != vkc.Success {
		return nil
	}
	for i := 0; i < n; i++ {
		c.live[poolIdx].Set(bitIdx + i)
	}
	return sets
}

// release returns n sets to the chain. Which bits are cleared
// doesn't need to correspond to the sets the caller actually
// destroyed, since individual descriptor sets are never freed
// back to Vulkan here: only the live count matters, and a
// pool is bulk-reset the moment its count drops to zero,
// which is far cheaper than per-set frees.
func (c *descPoolChain) release(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.pools) - 1; i >= 0 && n > 0; i-- {
		bm := &c.live[i]
		freed := 0
		for bit := 0; bit < bm.Len() && freed < n; bit++ {
			if bm.IsSet(bit) {
				bm.Unset(bit)
				freed++
			}
		}
		n -= freed
		if bm.Rem() == bm.Len() {
			vkc.ResetDescriptorPool(c.dev, c.pools[i], 0)
		}
	}
}

func (c *descPoolChain) destroy() {
	vkc.DestroyDescriptorSetLayout(c.dev, c.layout, nil)
	for _, p := range c.pools {
		vkc.DestroyDescriptorPool(c.dev, p, nil)
	}
}

// descPoolSet shards descPoolChains by a content hash of
// their descriptor layout across K buckets, each with its own
// mutex, so unrelated DescHeaps never contend on the same
// lock.
type descPoolSet struct {
	shards [descPoolShards]struct {
		mu     sync.Mutex
		chains map[uint64]*descPoolChain
	}
}

func newDescPoolSet() *descPoolSet {
	s := &descPoolSet{}
	for i := range s.shards {
		s.shards[i].chains = make(map[uint64]*descPoolChain)
	}
	return s
}

func descLayoutHash(ds []driver.Descriptor) uint64 {
	h := fnv.New64a()
	var b [8]byte
	for _, d := range ds {
		b[0] = byte(d.Type)
		b[1] = byte(d.Stages)
		putU32(b[2:6], uint32(d.Nr))
		h.Write(b[:6])
		var l [4]byte
		putU32(l[:], uint32(d.Len))
		h.Write(l[:])
	}
	return h.Sum64()
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func (s *descPoolSet) chainFor(dev vkc.Device, ds []driver.Descriptor) *descPoolChain {
	key := descLayoutHash(ds)
	shard := &s.shards[key%descPoolShards]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	c, ok := shard.chains[key]
	if !ok {
		c = newDescPoolChain(dev, ds)
		shard.chains[key] = c
	}
	return c
}

// DescHeap implements driver.DescHeap over one descriptor-set
// layout, drawing its live sets from the GPU's shared
// descPoolSet.
type DescHeap struct {
	gpu   *GPU
	chain *descPoolChain
	ds    []driver.Descriptor
	sets  []vkc.DescriptorSet
}

// NewDescHeap creates a heap for the given descriptor layout.
// No sets are allocated until New is called.
func (g *GPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	return &DescHeap{gpu: g, chain: g.descPools.chainFor(g.dev, ds), ds: ds}, nil
}

func (h *DescHeap) Destroy() {
	if len(h.sets) > 0 {
		h.chain.release(len(h.sets))
	}
}

// New allocates n heap copies, releasing any previously held
// set.
func (h *DescHeap) New(n int) error {
	if n == len(h.sets) {
		return nil
	}
	if len(h.sets) > 0 {
		h.chain.release(len(h.sets))
		h.sets = nil
	}
	if n == 0 {
		return nil
	}
	sets := h.chain.allocSets(n)
	if sets == nil {
		return driver.ErrNoDeviceMemory
	}
	h.sets = sets
	return nil
}

func (h *DescHeap) Count() int { return len(h.sets) }

func (h *DescHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {
	infos := make([]vkc.DescriptorBufferInfo, len(buf))
	for i, b := range buf {
		infos[i] = vkc.DescriptorBufferInfo{Buffer: b.(*Buffer).vk, Offset: vkc.DeviceSize(off[i]), Range: vkc.DeviceSize(size[i])}
	}
	write := vkc.WriteDescriptorSet{
		SType:           vkc.StructureTypeWriteDescriptorSet,
		DstSet:          h.sets[cpy],
		DstBinding:      uint32(nr),
		DstArrayElement: uint32(start),
		DescriptorCount: uint32(len(infos)),
		DescriptorType:  descTypeToVk(h.descType(nr)),
		PBufferInfo:     infos,
	}
	vkc.UpdateDescriptorSets(h.gpu.dev, 1, []vkc.WriteDescriptorSet{write}, 0, nil)
}

func (h *DescHeap) SetImage(cpy, nr, start int, iv []driver.ImageView) {
	infos := make([]vkc.DescriptorImageInfo, len(iv))
	for i, v := range iv {
		infos[i] = vkc.DescriptorImageInfo{ImageView: v.(*ImageView).vk, ImageLayout: vkc.ImageLayoutGeneral}
	}
	write := vkc.WriteDescriptorSet{
		SType:           vkc.StructureTypeWriteDescriptorSet,
		DstSet:          h.sets[cpy],
		DstBinding:      uint32(nr),
		DstArrayElement: uint32(start),
		DescriptorCount: uint32(len(infos)),
		DescriptorType:  descTypeToVk(h.descType(nr)),
		PImageInfo:      infos,
	}
	vkc.UpdateDescriptorSets(h.gpu.dev, 1, []vkc.WriteDescriptorSet{write}, 0, nil)
}

func (h *DescHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler) {
	infos := make([]vkc.DescriptorImageInfo, len(splr))
	for i, s := range splr {
		infos[i] = vkc.DescriptorImageInfo{Sampler: s.(*Sampler).vk}
	}
	write := vkc.WriteDescriptorSet{
		SType:           vkc.StructureTypeWriteDescriptorSet,
		DstSet:          h.sets[cpy],
		DstBinding:      uint32(nr),
		DstArrayElement: uint32(start),
		DescriptorCount: uint32(len(infos)),
		DescriptorType:  vkc.DescriptorTypeSampler,
		PImageInfo:      infos,
	}
	vkc.UpdateDescriptorSets(h.gpu.dev, 1, []vkc.WriteDescriptorSet{write}, 0, nil)
}

func (h *DescHeap) descType(nr int) driver.DescType {
	for _, d := range h.ds {
		if d.Nr == nr {
			return d.Type
		}
	}
	return driver.DBuffer
}

// DescTable binds a set of DescHeaps for use by a pipeline.
type DescTable struct {
	heaps []*DescHeap
}

// NewDescTable groups the given heaps into a single table.
func (g *GPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	heaps := make([]*DescHeap, len(dh))
	for i, h := range dh {
		heaps[i] = h.(*DescHeap)
	}
	return &DescTable{heaps: heaps}, nil
}

func (t *DescTable) Destroy() {}
