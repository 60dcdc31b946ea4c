// Copyright 2024 The Voxen Authors. All rights reserved.

package render

import "github.com/voxen-engine/voxen/driver"

// gbuffer holds the raycast pass's G-buffer render targets
// plus the SSAO and blur intermediate targets. All targets
// are reallocated together when the rendering resolution
// changes.
type gbuffer struct {
	width, height int

	position     driver.Image
	positionView driver.ImageView
	albedo       driver.Image
	albedoView   driver.ImageView
	normal       driver.Image
	normalView   driver.ImageView

	ssao     driver.Image
	ssaoView driver.ImageView
	blurred     driver.Image
	blurredView driver.ImageView
}

func (g *gbuffer) destroy() {
	for _, d := range []driver.Destroyer{
		g.positionView, g.position,
		g.albedoView, g.albedo,
		g.normalView, g.normal,
		g.ssaoView, g.ssao,
		g.blurredView, g.blurred,
	} {
		if d != nil {
			d.Destroy()
		}
	}
	*g = gbuffer{}
}

// renderDims derives the raycast target resolution from the
// swap-chain target size and the configured render scale,
// clamped to [0.1, 1.0].
func renderDims(targetW, targetH int, scale float32) (int, int) {
	if scale < 0.1 {
		scale = 0.1
	} else if scale > 1 {
		scale = 1
	}
	w := int(float32(targetW) * scale)
	h := int(float32(targetH) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// reallocGBuffer rebuilds every target at the given resolution if it
// differs from the current one. A no-op when dimensions are
// unchanged, so PrepareScene can call it every frame.
func (r *Renderer) reallocGBuffer(width, height int) error {
	if r.gbuf.width == width && r.gbuf.height == height {
		return nil
	}
	r.gbuf.destroy()

	mk := func(pf driver.PixelFmt, usg driver.Usage) (driver.Image, driver.ImageView, error) {
		img, err := r.gpu.NewImage(pf, driver.Dim3D{Width: width, Height: height, Depth: 1}, 1, 1, 1, usg)
		if err != nil {
			return nil, nil, err
		}
		view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
		if err != nil {
			img.Destroy()
			return nil, nil, err
		}
		return img, view, nil
	}

	rw := driver.UShaderWrite | driver.UShaderSample

	var err error
	if r.gbuf.position, r.gbuf.positionView, err = mk(driver.RGBA32Float, rw); err != nil {
		return err
	}
	if r.gbuf.albedo, r.gbuf.albedoView, err = mk(driver.RGBA8Unorm, rw); err != nil {
		return err
	}
	if r.gbuf.normal, r.gbuf.normalView, err = mk(driver.RGBA8Unorm, rw); err != nil {
		return err
	}
	if r.gbuf.ssao, r.gbuf.ssaoView, err = mk(driver.R8Unorm, rw|driver.URenderTarget); err != nil {
		return err
	}
	if r.gbuf.blurred, r.gbuf.blurredView, err = mk(driver.R8Unorm, rw|driver.URenderTarget); err != nil {
		return err
	}
	r.gbuf.width, r.gbuf.height = width, height
	return nil
}
