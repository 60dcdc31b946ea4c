// Copyright 2024 The Voxen Authors. All rights reserved.

package render

import "github.com/voxen-engine/voxen/driver"

// Each fullscreen pass writes a single color attachment; the
// ssao/blur passes target R8Unorm, the composition pass
// targets whatever format the swap-chain exposes.
func (r *Renderer) initRenderPasses(targetFmt driver.PixelFmt) error {
	mk := func(pf driver.PixelFmt) (driver.RenderPass, error) {
		return r.gpu.NewRenderPass(
			[]driver.Attachment{{Format: pf, Samples: 1, Load: [2]driver.LoadOp{driver.LDontCare, driver.LDontCare}, Store: [2]driver.StoreOp{driver.SStore, driver.SDontCare}}},
			[]driver.Subpass{{Color: []int{0}, DS: -1}},
		)
	}
	var err error
	if r.ssaoPass, err = mk(driver.R8Unorm); err != nil {
		return err
	}
	if r.blurPass, err = mk(driver.R8Unorm); err != nil {
		return err
	}
	if r.compPass, err = mk(targetFmt); err != nil {
		return err
	}
	return nil
}
