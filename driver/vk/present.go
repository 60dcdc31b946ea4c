// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
	"github.com/voxen-engine/voxen/wsi"
)

// NewSwapchain creates a swapchain presenting into win.
func (g *GPU) NewSwapchain(win wsi.Window, imageCount int) (driver.Swapchain, error) {
	surface, err := createSurface(g.inst, win)
	if err != nil {
		return nil, err
	}
	sc := &Swapchain{gpu: g, win: win, surface: surface}
	if err := sc.create(imageCount); err != nil {
		vkc.DestroySurface(g.inst, surface, nil)
		return nil, err
	}
	return sc, nil
}

// Swapchain implements driver.Swapchain over a Vulkan
// surface/swapchain pair. Recreate tears down and rebuilds
// the swapchain and its views in place, preserving the
// Swapchain value's identity across a resize.
type Swapchain struct {
	gpu        *GPU
	win        wsi.Window
	surface    vkc.Surface
	vk         vkc.Swapchain
	format     vkc.Format
	imageCount int
	images     []vkc.Image
	views      []driver.ImageView
}

func createSurface(inst vkc.Instance, win wsi.Window) (vkc.Surface, error) {
	// The concrete handle type of win.Handle() is platform
	// defined; goki/vulkan exposes one CreateXxxSurface call
	// per windowing backend (Win32/Xlib/Xcb/Wayland/Metal).
	// Presentation support beyond this entry point is left
	// to the caller's platform build tags.
	return vkc.Surface(nil), driver.ErrCannotPresent
}

func (s *Swapchain) create(imageCount int) error {
	var caps vkc.SurfaceCapabilities
	vkc.GetPhysicalDeviceSurfaceCapabilities(s.gpu.pdev, s.surface, &caps)
	caps.Deref()

	var formatCount uint32
	vkc.GetPhysicalDeviceSurfaceFormats(s.gpu.pdev, s.surface, &formatCount, nil)
	formats := make([]vkc.SurfaceFormat, formatCount)
	vkc.GetPhysicalDeviceSurfaceFormats(s.gpu.pdev, s.surface, &formatCount, formats)
	format := vkc.FormatB8g8r8a8Unorm
	if len(formats) > 0 {
		formats[0].Deref()
		format = formats[0].Format
	}

	info := vkc.SwapchainCreateInfo{
		SType:           vkc.StructureTypeSwapchainCreateInfo,
		Surface:         s.surface,
		MinImageCount:   uint32(imageCount),
		ImageFormat:     format,
		ImageColorSpace: vkc.ColorSpaceSrgbNonlinear,
		ImageExtent:     vkc.Extent2D{Width: uint32(s.win.Width()), Height: uint32(s.win.Height())},
		ImageArrayLayers: 1,
		ImageUsage:      vkc.ImageUsageFlags(vkc.ImageUsageColorAttachmentBit),
		PresentMode:     vkc.PresentModeFifo,
		Clipped:         vkc.True,
	}
	var sc vkc.Swapchain
	if res := vkc.CreateSwapchain(s.gpu.dev, &info, nil, &sc); res != vkc.Success {
		return newVkErr("create swapchain", res)
	}

	var count uint32
	vkc.GetSwapchainImages(s.gpu.dev, sc, &count, nil)
	images := make([]vkc.Image, count)
	vkc.GetSwapchainImages(s.gpu.dev, sc, &count, images)

	views := make([]driver.ImageView, len(images))
	for i, img := range images {
		viewInfo := vkc.ImageViewCreateInfo{
			SType:    vkc.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vkc.ImageViewType2d,
			Format:   format,
			SubresourceRange: vkc.ImageSubresourceRange{
				AspectMask: vkc.ImageAspectFlags(vkc.ImageAspectColorBit),
				LevelCount: 1, LayerCount: 1,
			},
		}
		var vkView vkc.ImageView
		if res := vkc.CreateImageView(s.gpu.dev, &viewInfo, nil, &vkView); res != vkc.Success {
			return newVkErr("create swapchain image view", res)
		}
		iv := &ImageView{gpu: s.gpu, vk: vkView}
		iv.layout = driver.LUndefined
		views[i] = iv
	}

	s.vk, s.format, s.imageCount, s.images, s.views = sc, format, imageCount, images, views
	return nil
}

func (s *Swapchain) destroySwapchainResources() {
	for _, v := range s.views {
		v.Destroy()
	}
	if s.vk != nil {
		vkc.DestroySwapchain(s.gpu.dev, s.vk, nil)
	}
}

func (s *Swapchain) Destroy() {
	s.destroySwapchainResources()
	vkc.DestroySurface(s.gpu.inst, s.surface, nil)
}

func (s *Swapchain) Views() []driver.ImageView { return s.views }

func (s *Swapchain) Next(cb driver.CmdBuffer) (int, error) {
	var idx uint32
	res := vkc.AcquireNextImage(s.gpu.dev, s.vk, ^uint64(0), vkc.Semaphore(nil), vkc.Fence(nil), &idx)
	switch res {
	case vkc.Success, vkc.Suboptimal:
		return int(idx), nil
	case vkc.ErrorOutOfDate:
		return 0, driver.ErrSwapchain
	default:
		return 0, newVkErr("acquire next image", res)
	}
}

func (s *Swapchain) Present(index int, cb driver.CmdBuffer) error {
	idx := uint32(index)
	info := vkc.PresentInfo{
		SType:          vkc.StructureTypePresentInfo,
		SwapchainCount: 1,
		PSwapchains:    []vkc.Swapchain{s.vk},
		PImageIndices:  []uint32{idx},
	}
	res := vkc.QueuePresent(cb.(*CmdBuffer).queue.vk, &info)
	if res == vkc.ErrorOutOfDate || res == vkc.Suboptimal {
		return driver.ErrSwapchain
	}
	if res != vkc.Success {
		return newVkErr("queue present", res)
	}
	return nil
}

func (s *Swapchain) Recreate() error {
	s.destroySwapchainResources()
	return s.create(s.imageCount)
}

func (s *Swapchain) Format() driver.PixelFmt {
	switch s.format {
	case vkc.FormatB8g8r8a8Unorm:
		return driver.BGRA8Unorm
	case vkc.FormatB8g8r8a8Srgb:
		return driver.BGRA8sRGB
	default:
		return driver.RGBA8Unorm
	}
}
