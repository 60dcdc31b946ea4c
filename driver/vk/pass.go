// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

func loadOpToVk(op driver.LoadOp) vkc.AttachmentLoadOp {
	switch op {
	case driver.LClear:
		return vkc.AttachmentLoadOpClear
	case driver.LLoad:
		return vkc.AttachmentLoadOpLoad
	default:
		return vkc.AttachmentLoadOpDontCare
	}
}

func storeOpToVk(op driver.StoreOp) vkc.AttachmentStoreOp {
	if op == driver.SStore {
		return vkc.AttachmentStoreOpStore
	}
	return vkc.AttachmentStoreOpDontCare
}

// RenderPass wraps a Vulkan render pass built from the
// Attachment/Subpass description given to NewRenderPass.
type RenderPass struct {
	gpu  *GPU
	vk   vkc.RenderPass
	natt int
}

// NewRenderPass builds a render pass from the given
// attachments and subpasses. Only each subpass's Color
// indices are used; its DS, MSR and Wait fields are not
// applied, and no subpass dependencies are created.
func (g *GPU) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	vkAtt := make([]vkc.AttachmentDescription, len(att))
	for i, a := range att {
		vkAtt[i] = vkc.AttachmentDescription{
			Format:         pixelFmtToVk(a.Format),
			Samples:        vkc.SampleCountFlagBits(sampleCount(a.Samples)),
			LoadOp:         loadOpToVk(a.Load[0]),
			StoreOp:        storeOpToVk(a.Store[0]),
			StencilLoadOp:  loadOpToVk(a.Load[1]),
			StencilStoreOp: storeOpToVk(a.Store[1]),
			InitialLayout:  vkc.ImageLayoutUndefined,
			FinalLayout:    vkc.ImageLayoutGeneral,
		}
	}
	vkSub := make([]vkc.SubpassDescription, len(sub))
	refs := make([][]vkc.AttachmentReference, len(sub))
	for i, s := range sub {
		refs[i] = make([]vkc.AttachmentReference, len(s.Color))
		for j, c := range s.Color {
			refs[i][j] = vkc.AttachmentReference{Attachment: uint32(c), Layout: vkc.ImageLayoutColorAttachmentOptimal}
		}
		vkSub[i] = vkc.SubpassDescription{
			PipelineBindPoint:    vkc.PipelineBindPointGraphics,
			ColorAttachmentCount: uint32(len(refs[i])),
			PColorAttachments:    refs[i],
		}
	}
	info := vkc.RenderPassCreateInfo{
		SType:           vkc.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(vkAtt)),
		PAttachments:    vkAtt,
		SubpassCount:    uint32(len(vkSub)),
		PSubpasses:      vkSub,
	}
	var pass vkc.RenderPass
	if res := vkc.CreateRenderPass(g.dev, &info, nil, &pass); res != vkc.Success {
		return nil, newVkErr("create render pass", res)
	}
	return &RenderPass{gpu: g, vk: pass, natt: len(att)}, nil
}

func (p *RenderPass) Destroy() { vkc.DestroyRenderPass(p.gpu.dev, p.vk, nil) }

// NewFB creates a framebuffer for the given image views.
func (p *RenderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	views := make([]vkc.ImageView, len(iv))
	for i, v := range iv {
		views[i] = v.(*ImageView).vk
	}
	info := vkc.FramebufferCreateInfo{
		SType:           vkc.StructureTypeFramebufferCreateInfo,
		RenderPass:      p.vk,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           uint32(width),
		Height:          uint32(height),
		Layers:          uint32(layers),
	}
	var fb vkc.Framebuffer
	if res := vkc.CreateFramebuffer(p.gpu.dev, &info, nil, &fb); res != vkc.Success {
		return nil, newVkErr("create framebuffer", res)
	}
	return &Framebuf{gpu: p.gpu, vk: fb}, nil
}

// Framebuf wraps a Vulkan framebuffer.
type Framebuf struct {
	gpu *GPU
	vk  vkc.Framebuffer
}

func (f *Framebuf) Destroy() { vkc.DestroyFramebuffer(f.gpu.dev, f.vk, nil) }
