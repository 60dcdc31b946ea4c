// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

// CmdBuffer implements driver.CmdBuffer over one Vulkan
// command buffer. Resources referenced by recorded commands
// are retained in refs until the command buffer is reset, so
// they cannot be destroyed while a submission using them may
// still be in flight.
type CmdBuffer struct {
	gpu    *GPU
	queue  *Queue
	vk     vkc.CommandBuffer
	layout vkc.PipelineLayout
	refs   []any

	waitSem    []vkc.Semaphore
	waitValue  []uint64
	waitStage  []vkc.PipelineStageFlags
	signalSem   []vkc.Semaphore
	signalValue []uint64
}

func (c *CmdBuffer) Destroy() {
	vkc.FreeCommandBuffers(c.gpu.dev, c.queue.pool, 1, []vkc.CommandBuffer{c.vk})
}

func (c *CmdBuffer) retain(v any) { c.refs = append(c.refs, v) }

func (c *CmdBuffer) Begin() error {
	c.refs = c.refs[:0]
	c.waitSem, c.waitValue, c.waitStage = c.waitSem[:0], c.waitValue[:0], c.waitStage[:0]
	c.signalSem, c.signalValue = c.signalSem[:0], c.signalValue[:0]
	info := vkc.CommandBufferBeginInfo{SType: vkc.StructureTypeCommandBufferBeginInfo}
	if res := vkc.BeginCommandBuffer(c.vk, &info); res != vkc.Success {
		return newVkErr("begin command buffer", res)
	}
	return nil
}

func (c *CmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
	p := pass.(*RenderPass)
	c.retain(p)
	c.retain(fb)
	values := make([]vkc.ClearValue, len(clear))
	for i, cv := range clear {
		values[i].SetColor(cv.Color[:])
	}
	info := vkc.RenderPassBeginInfo{
		SType:           vkc.StructureTypeRenderPassBeginInfo,
		RenderPass:      p.vk,
		Framebuffer:     fb.(*Framebuf).vk,
		ClearValueCount: uint32(len(values)),
		PClearValues:    values,
	}
	vkc.CmdBeginRenderPass(c.vk, &info, vkc.SubpassContentsInline)
}

func (c *CmdBuffer) NextSubpass() { vkc.CmdNextSubpass(c.vk, vkc.SubpassContentsInline) }

func (c *CmdBuffer) EndPass() { vkc.CmdEndRenderPass(c.vk) }

func (c *CmdBuffer) BeginWork(wait bool) {
	if wait {
		c.Barrier([]driver.Barrier{{
			SyncBefore:   driver.SVertexInput | driver.SVertexShading | driver.SFragmentShading | driver.SComputeShading | driver.SColorOutput | driver.SDSOutput | driver.SCopy,
			SyncAfter:    driver.SComputeShading,
			AccessBefore: driver.AColorWrite | driver.ADSWrite | driver.ACopyWrite | driver.AShaderWrite,
			AccessAfter:  driver.AShaderRead | driver.AShaderWrite,
		}})
	}
}

func (c *CmdBuffer) EndWork() {}

func (c *CmdBuffer) BeginBlit(wait bool) {
	if wait {
		c.Barrier([]driver.Barrier{{
			SyncBefore:   driver.SVertexInput | driver.SVertexShading | driver.SFragmentShading | driver.SComputeShading | driver.SColorOutput | driver.SDSOutput | driver.SCopy,
			SyncAfter:    driver.SCopy,
			AccessBefore: driver.AColorWrite | driver.ADSWrite | driver.ACopyWrite | driver.AShaderWrite,
			AccessAfter:  driver.ACopyRead | driver.ACopyWrite,
		}})
	}
}

func (c *CmdBuffer) EndBlit() {}

func (c *CmdBuffer) SetPipeline(pl driver.Pipeline) {
	p := pl.(*Pipeline)
	c.retain(p)
	c.layout = p.layout
	bind := vkc.PipelineBindPointGraphics
	if !p.graphics {
		bind = vkc.PipelineBindPointCompute
	}
	vkc.CmdBindPipeline(c.vk, bind, p.vk)
}

func (c *CmdBuffer) SetViewport(vp []driver.Viewport) {
	vks := make([]vkc.Viewport, len(vp))
	for i, v := range vp {
		vks[i] = vkc.Viewport{X: v.X, Y: v.Y, Width: v.Width, Height: v.Height, MinDepth: 0, MaxDepth: 1}
	}
	vkc.CmdSetViewport(c.vk, 0, uint32(len(vks)), vks)
}

func (c *CmdBuffer) SetScissor(sciss []driver.Scissor) {
	vks := make([]vkc.Rect2D, len(sciss))
	for i, s := range sciss {
		vks[i] = vkc.Rect2D{
			Offset: vkc.Offset2D{X: int32(s.X), Y: int32(s.Y)},
			Extent: vkc.Extent2D{Width: uint32(s.Width), Height: uint32(s.Height)},
		}
	}
	vkc.CmdSetScissor(c.vk, 0, uint32(len(vks)), vks)
}

func (c *CmdBuffer) SetBlendColor(r, g, b, a float32) {
	vkc.CmdSetBlendConstants(c.vk, [4]float32{r, g, b, a})
}

func (c *CmdBuffer) SetStencilRef(value uint32) {
	vkc.CmdSetStencilReference(c.vk, vkc.StencilFaceFlags(vkc.StencilFrontAndBack), value)
}

func (c *CmdBuffer) SetCullMode(mode driver.CullMode) {}
func (c *CmdBuffer) SetFrontFacing(clockwise bool)     {}

func (c *CmdBuffer) SetDepthBias(value, slope, clamp float32) {
	vkc.CmdSetDepthBias(c.vk, value, clamp, slope)
}

func (c *CmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {
	bufs := make([]vkc.Buffer, len(buf))
	offs := make([]vkc.DeviceSize, len(buf))
	for i, b := range buf {
		vb := b.(*Buffer)
		c.retain(vb)
		bufs[i] = vb.vk
		offs[i] = vkc.DeviceSize(off[i])
	}
	vkc.CmdBindVertexBuffers(c.vk, uint32(start), uint32(len(bufs)), bufs, offs)
}

func indexFmtToVk(f driver.IndexFmt) vkc.IndexType {
	if f == driver.Index32 {
		return vkc.IndexTypeUint32
	}
	return vkc.IndexTypeUint16
}

func (c *CmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
	b := buf.(*Buffer)
	c.retain(b)
	vkc.CmdBindIndexBuffer(c.vk, b.vk, vkc.DeviceSize(off), indexFmtToVk(format))
}

func (c *CmdBuffer) bindDescTable(bind vkc.PipelineBindPoint, table driver.DescTable, start int, heapCopy []int) {
	dt := table.(*DescTable)
	c.retain(dt)
	var sets []vkc.DescriptorSet
	for i, h := range dt.heaps {
		cpy := 0
		if i < len(heapCopy) {
			cpy = heapCopy[i]
		}
		if cpy < len(h.sets) {
			sets = append(sets, h.sets[cpy])
		}
	}
	if len(sets) == 0 {
		return
	}
	vkc.CmdBindDescriptorSets(c.vk, bind, c.layout, uint32(start), uint32(len(sets)), sets, 0, nil)
}

func (c *CmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
	c.bindDescTable(vkc.PipelineBindPointGraphics, table, start, heapCopy)
}

func (c *CmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {
	c.bindDescTable(vkc.PipelineBindPointCompute, table, start, heapCopy)
}

func (c *CmdBuffer) PushConstant(stages driver.Stage, offset int, data []byte) {
	vkc.CmdPushConstants(c.vk, c.layout, vkc.ShaderStageFlags(stageToVk(stages)), uint32(offset), uint32(len(data)), unsafePtr(data))
}

func (c *CmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	vkc.CmdDraw(c.vk, uint32(vertCount), uint32(instCount), uint32(baseVert), uint32(baseInst))
}

func (c *CmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	vkc.CmdDrawIndexed(c.vk, uint32(idxCount), uint32(instCount), uint32(baseIdx), int32(vertOff), uint32(baseInst))
}

func (c *CmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) {
	vkc.CmdDispatch(c.vk, uint32(grpCountX), uint32(grpCountY), uint32(grpCountZ))
}

func (c *CmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	from, to := param.From.(*Buffer), param.To.(*Buffer)
	c.retain(from)
	c.retain(to)
	region := vkc.BufferCopy{SrcOffset: vkc.DeviceSize(param.FromOff), DstOffset: vkc.DeviceSize(param.ToOff), Size: vkc.DeviceSize(param.Size)}
	vkc.CmdCopyBuffer(c.vk, from.vk, to.vk, 1, []vkc.BufferCopy{region})
}

func (c *CmdBuffer) CopyImage(param *driver.ImageCopy) {
	from, to := param.From.(*Image), param.To.(*Image)
	c.retain(from)
	c.retain(to)
	region := vkc.ImageCopy{
		SrcSubresource: vkc.ImageSubresourceLayers{AspectMask: vkc.ImageAspectFlags(vkc.ImageAspectColorBit), MipLevel: uint32(param.FromLevel), BaseArrayLayer: uint32(param.FromLayer), LayerCount: uint32(param.Layers)},
		SrcOffset:      vkc.Offset3D{X: int32(param.FromOff.X), Y: int32(param.FromOff.Y), Z: int32(param.FromOff.Z)},
		DstSubresource: vkc.ImageSubresourceLayers{AspectMask: vkc.ImageAspectFlags(vkc.ImageAspectColorBit), MipLevel: uint32(param.ToLevel), BaseArrayLayer: uint32(param.ToLayer), LayerCount: uint32(param.Layers)},
		DstOffset:      vkc.Offset3D{X: int32(param.ToOff.X), Y: int32(param.ToOff.Y), Z: int32(param.ToOff.Z)},
		Extent:         vkc.Extent3D{Width: uint32(param.Size.Width), Height: uint32(param.Size.Height), Depth: uint32(param.Size.Depth)},
	}
	vkc.CmdCopyImage(c.vk, from.vk, vkc.ImageLayoutTransferSrcOptimal, to.vk, vkc.ImageLayoutTransferDstOptimal, 1, []vkc.ImageCopy{region})
}

func (c *CmdBuffer) bufImgCopy(param *driver.BufImgCopy) (vkc.BufferImageCopy, *Buffer, *Image) {
	buf, img := param.Buf.(*Buffer), param.Img.(*Image)
	aspect := vkc.ImageAspectColorBit
	if param.DepthCopy {
		aspect = vkc.ImageAspectDepthBit
	} else if img.format == vkc.FormatD24UnormS8Uint || img.format == vkc.FormatD32SfloatS8Uint {
		aspect = vkc.ImageAspectStencilBit
	}
	return vkc.BufferImageCopy{
		BufferOffset:      vkc.DeviceSize(param.BufOff),
		BufferRowLength:   uint32(param.Stride[0]),
		BufferImageHeight: uint32(param.Stride[1]),
		ImageSubresource:  vkc.ImageSubresourceLayers{AspectMask: vkc.ImageAspectFlags(aspect), MipLevel: uint32(param.Level), BaseArrayLayer: uint32(param.Layer), LayerCount: 1},
		ImageOffset:       vkc.Offset3D{X: int32(param.ImgOff.X), Y: int32(param.ImgOff.Y), Z: int32(param.ImgOff.Z)},
		ImageExtent:       vkc.Extent3D{Width: uint32(param.Size.Width), Height: uint32(param.Size.Height), Depth: uint32(param.Size.Depth)},
	}, buf, img
}

func (c *CmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {
	region, buf, img := c.bufImgCopy(param)
	c.retain(buf)
	c.retain(img)
	vkc.CmdCopyBufferToImage(c.vk, buf.vk, img.vk, vkc.ImageLayoutTransferDstOptimal, 1, []vkc.BufferImageCopy{region})
}

func (c *CmdBuffer) CopyImgToBuf(param *driver.BufImgCopy) {
	region, buf, img := c.bufImgCopy(param)
	c.retain(buf)
	c.retain(img)
	vkc.CmdCopyImageToBuffer(c.vk, img.vk, vkc.ImageLayoutTransferSrcOptimal, buf.vk, 1, []vkc.BufferImageCopy{region})
}

func (c *CmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	b := buf.(*Buffer)
	c.retain(b)
	word := uint32(value) * 0x01010101
	vkc.CmdFillBuffer(c.vk, b.vk, vkc.DeviceSize(off), vkc.DeviceSize(size), word)
}

func accessToVk(a driver.Access) vkc.AccessFlagBits {
	var f vkc.AccessFlagBits
	if a&driver.AVertexBufRead != 0 {
		f |= vkc.AccessVertexAttributeReadBit
	}
	if a&driver.AIndexBufRead != 0 {
		f |= vkc.AccessIndexReadBit
	}
	if a&driver.AColorRead != 0 {
		f |= vkc.AccessColorAttachmentReadBit
	}
	if a&driver.AColorWrite != 0 {
		f |= vkc.AccessColorAttachmentWriteBit
	}
	if a&driver.ADSRead != 0 {
		f |= vkc.AccessDepthStencilAttachmentReadBit
	}
	if a&driver.ADSWrite != 0 {
		f |= vkc.AccessDepthStencilAttachmentWriteBit
	}
	if a&driver.ACopyRead != 0 {
		f |= vkc.AccessTransferReadBit
	}
	if a&driver.ACopyWrite != 0 {
		f |= vkc.AccessTransferWriteBit
	}
	if a&driver.AShaderRead != 0 {
		f |= vkc.AccessShaderReadBit
	}
	if a&driver.AShaderWrite != 0 {
		f |= vkc.AccessShaderWriteBit
	}
	return f
}

func syncToVk(s driver.Sync) vkc.PipelineStageFlagBits {
	var f vkc.PipelineStageFlagBits
	if s&driver.SVertexInput != 0 {
		f |= vkc.PipelineStageVertexInputBit
	}
	if s&driver.SVertexShading != 0 {
		f |= vkc.PipelineStageVertexShaderBit
	}
	if s&driver.SFragmentShading != 0 {
		f |= vkc.PipelineStageFragmentShaderBit
	}
	if s&driver.SComputeShading != 0 {
		f |= vkc.PipelineStageComputeShaderBit
	}
	if s&driver.SColorOutput != 0 {
		f |= vkc.PipelineStageColorAttachmentOutputBit
	}
	if s&driver.SDSOutput != 0 {
		f |= vkc.PipelineStageEarlyFragmentTestsBit | vkc.PipelineStageLateFragmentTestsBit
	}
	if s&driver.SCopy != 0 {
		f |= vkc.PipelineStageTransferBit
	}
	if f == 0 {
		f = vkc.PipelineStageTopOfPipeBit
	}
	return f
}

func (c *CmdBuffer) Barrier(b []driver.Barrier) {
	for _, bb := range b {
		mb := vkc.MemoryBarrier{
			SType:         vkc.StructureTypeMemoryBarrier,
			SrcAccessMask: vkc.AccessFlags(accessToVk(bb.AccessBefore)),
			DstAccessMask: vkc.AccessFlags(accessToVk(bb.AccessAfter)),
		}
		vkc.CmdPipelineBarrier(c.vk,
			vkc.PipelineStageFlags(syncToVk(bb.SyncBefore)), vkc.PipelineStageFlags(syncToVk(bb.SyncAfter)),
			0, 1, []vkc.MemoryBarrier{mb}, 0, nil, 0, nil)
	}
}

func layoutToVk(l driver.Layout) vkc.ImageLayout {
	switch l {
	case driver.LColorTarget:
		return vkc.ImageLayoutColorAttachmentOptimal
	case driver.LDSTarget:
		return vkc.ImageLayoutDepthStencilAttachmentOptimal
	case driver.LDSRead:
		return vkc.ImageLayoutDepthStencilReadOnlyOptimal
	case driver.LResolveSrc, driver.LCopySrc:
		return vkc.ImageLayoutTransferSrcOptimal
	case driver.LResolveDst, driver.LCopyDst:
		return vkc.ImageLayoutTransferDstOptimal
	case driver.LShaderRead:
		return vkc.ImageLayoutShaderReadOnlyOptimal
	case driver.LPresent:
		return vkc.ImageLayoutPresentSrc
	case driver.LCommon:
		return vkc.ImageLayoutGeneral
	default:
		return vkc.ImageLayoutUndefined
	}
}

// Transition only records a barrier when the view's tracked
// layout actually differs from LayoutAfter, so repeated
// Transition calls targeting an already-correct layout are
// free.
func (c *CmdBuffer) Transition(t []driver.Transition) {
	for _, tr := range t {
		view := tr.View.(*ImageView)
		dstAccess := accessToVk(tr.AccessAfter)
		dstStage := syncToVk(tr.SyncAfter)
		_, changed := view.setLayout(tr.LayoutAfter, vkc.AccessFlags(dstAccess), vkc.PipelineStageFlags(dstStage))
		if !changed {
			continue
		}
		c.retain(view)
		barrier := vkc.ImageMemoryBarrier{
			SType:               vkc.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       vkc.AccessFlags(accessToVk(tr.AccessBefore)),
			DstAccessMask:       vkc.AccessFlags(dstAccess),
			OldLayout:           layoutToVk(tr.LayoutBefore),
			NewLayout:           layoutToVk(tr.LayoutAfter),
			SrcQueueFamilyIndex: vkc.QueueFamilyIgnored,
			DstQueueFamilyIndex: vkc.QueueFamilyIgnored,
			SubresourceRange:    vkc.ImageSubresourceRange{AspectMask: vkc.ImageAspectFlags(vkc.ImageAspectColorBit), LevelCount: 1, LayerCount: 1},
		}
		vkc.CmdPipelineBarrier(c.vk,
			vkc.PipelineStageFlags(syncToVk(tr.SyncBefore)), vkc.PipelineStageFlags(dstStage),
			0, 0, nil, 0, nil, 1, []vkc.ImageMemoryBarrier{barrier})
	}
}

func (c *CmdBuffer) WaitEvent(ev driver.Event, value uint64, stage driver.Sync) {
	// goki/vulkan's timeline-semaphore wait is a property of
	// the submission, not of the command buffer itself
	// (VkTimelineSemaphoreSubmitInfo); recording here queues
	// the wait for Queue.Submit to attach, and retains the
	// event so it outlives the command buffer's in-flight
	// lifetime.
	e := ev.(*Event)
	c.retain(e)
	c.waitSem = append(c.waitSem, e.vk)
	c.waitValue = append(c.waitValue, value)
	c.waitStage = append(c.waitStage, vkc.PipelineStageFlags(syncToVk(stage)))
}

func (c *CmdBuffer) SignalEvent(ev driver.Event, value uint64, stage driver.Sync) {
	e := ev.(*Event)
	c.retain(e)
	c.signalSem = append(c.signalSem, e.vk)
	c.signalValue = append(c.signalValue, value)
}

func (c *CmdBuffer) End() error {
	if res := vkc.EndCommandBuffer(c.vk); res != vkc.Success {
		vkc.ResetCommandBuffer(c.vk, 0)
		return newVkErr("end command buffer", res)
	}
	return nil
}

func (c *CmdBuffer) Reset() error {
	if res := vkc.ResetCommandBuffer(c.vk, 0); res != vkc.Success {
		return newVkErr("reset command buffer", res)
	}
	c.refs = c.refs[:0]
	c.waitSem, c.waitValue, c.waitStage = c.waitSem[:0], c.waitValue[:0], c.waitStage[:0]
	c.signalSem, c.signalValue = c.signalSem[:0], c.signalValue[:0]
	return nil
}
