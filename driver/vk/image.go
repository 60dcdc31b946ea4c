// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	"sync"

	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

func pixelFmtToVk(pf driver.PixelFmt) vkc.Format {
	switch pf {
	case driver.RGBA8Unorm:
		return vkc.FormatR8g8b8a8Unorm
	case driver.RGBA8sRGB:
		return vkc.FormatR8g8b8a8Srgb
	case driver.BGRA8Unorm:
		return vkc.FormatB8g8r8a8Unorm
	case driver.BGRA8sRGB:
		return vkc.FormatB8g8r8a8Srgb
	case driver.RG8Unorm:
		return vkc.FormatR8g8Unorm
	case driver.R8Unorm:
		return vkc.FormatR8Unorm
	case driver.RGBA16Float:
		return vkc.FormatR16g16b16a16Sfloat
	case driver.RG16Float:
		return vkc.FormatR16g16Sfloat
	case driver.R16Float:
		return vkc.FormatR16Sfloat
	case driver.RGBA32Float:
		return vkc.FormatR32g32b32a32Sfloat
	case driver.RG32Float:
		return vkc.FormatR32g32Sfloat
	case driver.R32Float:
		return vkc.FormatR32Sfloat
	case driver.D16Unorm:
		return vkc.FormatD16Unorm
	case driver.D32Float:
		return vkc.FormatD32Sfloat
	case driver.D24UnormS8Uint:
		return vkc.FormatD24UnormS8Uint
	case driver.D32FloatS8Uint:
		return vkc.FormatD32SfloatS8Uint
	default:
		return vkc.FormatR8g8b8a8Unorm
	}
}

func usageToVkImage(u driver.Usage) vkc.ImageUsageFlags {
	f := vkc.ImageUsageFlags(vkc.ImageUsageTransferSrcBit | vkc.ImageUsageTransferDstBit)
	if u&driver.UShaderSample != 0 || u&driver.UShaderRead != 0 {
		f |= vkc.ImageUsageFlags(vkc.ImageUsageSampledBit)
	}
	if u&driver.UShaderWrite != 0 {
		f |= vkc.ImageUsageFlags(vkc.ImageUsageStorageBit)
	}
	if u&driver.URenderTarget != 0 {
		f |= vkc.ImageUsageFlags(vkc.ImageUsageColorAttachmentBit)
	}
	return f
}

// Image wraps a Vulkan image and its bound memory.
type Image struct {
	gpu    *GPU
	vk     vkc.Image
	mem    vkc.DeviceMemory
	format vkc.Format
	size   driver.Dim3D
	layers int
	levels int
}

// NewImage creates an image of the given format and extent.
func (g *GPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	vkFmt := pixelFmtToVk(pf)
	imgType := vkc.ImageType2d
	if size.Depth > 1 {
		imgType = vkc.ImageType3d
	}
	info := vkc.ImageCreateInfo{
		SType:     vkc.StructureTypeImageCreateInfo,
		ImageType: imgType,
		Format:    vkFmt,
		Extent: vkc.Extent3D{
			Width: uint32(size.Width), Height: uint32(size.Height), Depth: uint32(size.Depth),
		},
		MipLevels:   uint32(levels),
		ArrayLayers: uint32(layers),
		Samples:     vkc.SampleCountFlagBits(sampleCount(samples)),
		Tiling:      vkc.ImageTilingOptimal,
		Usage:       usageToVkImage(usg),
		SharingMode: vkc.SharingModeExclusive,
		InitialLayout: vkc.ImageLayoutUndefined,
	}
	var img vkc.Image
	if res := vkc.CreateImage(g.dev, &info, nil, &img); res != vkc.Success {
		return nil, newVkErr("create image", res)
	}
	var req vkc.MemoryRequirements
	vkc.GetImageMemoryRequirements(g.dev, img, &req)
	req.Deref()
	memType, err := g.findMemoryType(req.MemoryTypeBits, vkc.MemoryPropertyFlags(vkc.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vkc.DestroyImage(g.dev, img, nil)
		return nil, err
	}
	allocInfo := vkc.MemoryAllocateInfo{
		SType:           vkc.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memType,
	}
	var mem vkc.DeviceMemory
	if res := vkc.AllocateMemory(g.dev, &allocInfo, nil, &mem); res != vkc.Success {
		vkc.DestroyImage(g.dev, img, nil)
		return nil, newVkErr("allocate memory", res)
	}
	vkc.BindImageMemory(g.dev, img, mem, 0)
	return &Image{gpu: g, vk: img, mem: mem, format: vkFmt, size: size, layers: layers, levels: levels}, nil
}

func sampleCount(n int) int {
	switch {
	case n <= 1:
		return 1
	case n <= 2:
		return 2
	case n <= 4:
		return 4
	case n <= 8:
		return 8
	default:
		return 16
	}
}

func (im *Image) Destroy() {
	vkc.DestroyImage(im.gpu.dev, im.vk, nil)
	vkc.FreeMemory(im.gpu.dev, im.mem, nil)
}

func viewTypeToVk(t driver.ViewType) vkc.ImageViewType {
	switch t {
	case driver.IView1D:
		return vkc.ImageViewType1d
	case driver.IView3D:
		return vkc.ImageViewType3d
	case driver.IViewCube:
		return vkc.ImageViewTypeCube
	case driver.IView1DArray:
		return vkc.ImageViewType1dArray
	case driver.IView2DArray, driver.IView2DMSArray:
		return vkc.ImageViewType2dArray
	case driver.IViewCubeArray:
		return vkc.ImageViewTypeCubeArray
	default:
		return vkc.ImageViewType2d
	}
}

// NewView creates a new typed view of the image.
func (im *Image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	info := vkc.ImageViewCreateInfo{
		SType:    vkc.StructureTypeImageViewCreateInfo,
		Image:    im.vk,
		ViewType: viewTypeToVk(typ),
		Format:   im.format,
		SubresourceRange: vkc.ImageSubresourceRange{
			AspectMask:     vkc.ImageAspectFlags(vkc.ImageAspectColorBit),
			BaseMipLevel:   uint32(level),
			LevelCount:     uint32(levels),
			BaseArrayLayer: uint32(layer),
			LayerCount:     uint32(layers),
		},
	}
	var view vkc.ImageView
	if res := vkc.CreateImageView(im.gpu.dev, &info, nil, &view); res != vkc.Success {
		return nil, newVkErr("create image view", res)
	}
	return &ImageView{gpu: im.gpu, vk: view}, nil
}

// ImageView tracks the layout an image view was last
// transitioned to, so a CmdBuffer only records a barrier
// when the requested layout actually differs.
type ImageView struct {
	gpu *GPU
	vk  vkc.ImageView

	mu       sync.Mutex
	layout   driver.Layout
	access   vkc.AccessFlags
	stage    vkc.PipelineStageFlags
}

func (v *ImageView) Destroy() { vkc.DestroyImageView(v.gpu.dev, v.vk, nil) }

func (v *ImageView) Layout() driver.Layout {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.layout
}

func (v *ImageView) setLayout(l driver.Layout, access vkc.AccessFlags, stage vkc.PipelineStageFlags) (driver.Layout, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	prev := v.layout
	if prev == l {
		return prev, false
	}
	v.layout, v.access, v.stage = l, access, stage
	return prev, true
}
