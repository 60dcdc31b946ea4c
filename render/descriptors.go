// Copyright 2024 The Voxen Authors. All rights reserved.

package render

import "github.com/voxen-engine/voxen/driver"

// descriptors holds the descriptor heaps/tables shared across
// the renderer's fixed pipeline set. Volume layer buffers are
// bound individually per dispatch (see setLayerBuffer in
// frame.go) since their
// count varies per frame.
type descriptors struct {
	gbufferHeap driver.DescHeap
	gbufferTbl  driver.DescTable

	ssaoHeap driver.DescHeap
	ssaoTbl  driver.DescTable

	compHeap driver.DescHeap
	compTbl  driver.DescTable

	layerHeap driver.DescHeap
	layerTbl  driver.DescTable
}

func (r *Renderer) initDescriptors(shaders ShaderSet) error {
	gpu := r.gpu

	var err error
	r.desc.gbufferHeap, err = gpu.NewDescHeap([]driver.Descriptor{
		{Type: driver.DImage, Stages: driver.SCompute, Nr: 0, Len: 1}, // position
		{Type: driver.DImage, Stages: driver.SCompute, Nr: 1, Len: 1}, // albedo
		{Type: driver.DImage, Stages: driver.SCompute, Nr: 2, Len: 1}, // normal
	})
	if err != nil {
		return err
	}
	r.desc.gbufferTbl, err = gpu.NewDescTable([]driver.DescHeap{r.desc.gbufferHeap})
	if err != nil {
		return err
	}

	r.desc.layerHeap, err = gpu.NewDescHeap([]driver.Descriptor{
		{Type: driver.DBuffer, Stages: driver.SCompute, Nr: 0, Len: 1},
	})
	if err != nil {
		return err
	}
	r.desc.layerTbl, err = gpu.NewDescTable([]driver.DescHeap{r.desc.layerHeap})
	if err != nil {
		return err
	}

	r.desc.ssaoHeap, err = gpu.NewDescHeap([]driver.Descriptor{
		{Type: driver.DTexture, Stages: driver.SFragment, Nr: 0, Len: 1}, // position
		{Type: driver.DTexture, Stages: driver.SFragment, Nr: 1, Len: 1}, // normal
		{Type: driver.DTexture, Stages: driver.SFragment, Nr: 2, Len: 1}, // noise
		{Type: driver.DConstant, Stages: driver.SFragment, Nr: 3, Len: 1}, // kernel
		{Type: driver.DSampler, Stages: driver.SFragment, Nr: 4, Len: 2},
	})
	if err != nil {
		return err
	}
	r.desc.ssaoTbl, err = gpu.NewDescTable([]driver.DescHeap{r.desc.ssaoHeap})
	if err != nil {
		return err
	}

	r.desc.compHeap, err = gpu.NewDescHeap([]driver.Descriptor{
		{Type: driver.DTexture, Stages: driver.SFragment, Nr: 0, Len: 1}, // position
		{Type: driver.DTexture, Stages: driver.SFragment, Nr: 1, Len: 1}, // normal
		{Type: driver.DTexture, Stages: driver.SFragment, Nr: 2, Len: 1}, // albedo
		{Type: driver.DTexture, Stages: driver.SFragment, Nr: 3, Len: 1}, // ssao
		{Type: driver.DSampler, Stages: driver.SFragment, Nr: 4, Len: 1},
	})
	if err != nil {
		return err
	}
	r.desc.compTbl, err = gpu.NewDescTable([]driver.DescHeap{r.desc.compHeap})
	return err
}
