// Copyright 2024 The Voxen Authors. All rights reserved.

package render

import "github.com/voxen-engine/voxen/driver"

func (r *Renderer) initPipelines(shaders ShaderSet) error {
	gpu := r.gpu

	clearCode, err := gpu.NewShaderCode(shaders.DepthClear)
	if err != nil {
		return err
	}
	layerCode, err := gpu.NewShaderCode(shaders.DepthLayer)
	if err != nil {
		return err
	}
	vertCode, err := gpu.NewShaderCode(shaders.FullscreenVertex)
	if err != nil {
		return err
	}
	ssaoCode, err := gpu.NewShaderCode(shaders.SSAO)
	if err != nil {
		return err
	}
	blurCode, err := gpu.NewShaderCode(shaders.Blur)
	if err != nil {
		return err
	}
	blur2Code, err := gpu.NewShaderCode(shaders.Blur2)
	if err != nil {
		return err
	}
	compCode, err := gpu.NewShaderCode(shaders.Composition)
	if err != nil {
		return err
	}

	r.clearPipe, err = gpu.NewPipeline(&driver.CompState{
		Func:      driver.ShaderFunc{Code: clearCode, Name: "main"},
		Desc:      r.desc.gbufferTbl,
		SpecIndex: -1,
	})
	if err != nil {
		return ErrPipelineUnavailable
	}

	r.raycastDataPipe, err = gpu.NewPipeline(&driver.CompState{
		Func:      driver.ShaderFunc{Code: layerCode, Name: "main"},
		Desc:      r.desc.layerTbl,
		SpecIndex: 0,
		SpecValue: uint32(raycastData),
	})
	if err != nil {
		return ErrPipelineUnavailable
	}

	r.raycastVisPipe, err = gpu.NewPipeline(&driver.CompState{
		Func:      driver.ShaderFunc{Code: layerCode, Name: "main"},
		Desc:      r.desc.layerTbl,
		SpecIndex: 0,
		SpecValue: uint32(raycastVisualizer),
	})
	if err != nil {
		return ErrPipelineUnavailable
	}

	fsInput := []driver.VertexIn{{Format: driver.Float32x2, Stride: 8, Nr: 0, Name: "pos"}}

	r.ssaoPipe, err = gpu.NewPipeline(&driver.GraphState{
		VertFunc: driver.ShaderFunc{Code: vertCode, Name: "main"},
		FragFunc: driver.ShaderFunc{Code: ssaoCode, Name: "main"},
		Desc:     r.desc.ssaoTbl,
		Input:    fsInput,
		Topology: driver.TTriStrip,
		Pass:     r.ssaoPass,
	})
	if err != nil {
		return ErrPipelineUnavailable
	}

	r.blurPipe, err = gpu.NewPipeline(&driver.GraphState{
		VertFunc: driver.ShaderFunc{Code: vertCode, Name: "main"},
		FragFunc: driver.ShaderFunc{Code: blurCode, Name: "main"},
		Desc:     r.desc.ssaoTbl,
		Input:    fsInput,
		Topology: driver.TTriStrip,
		Pass:     r.blurPass,
	})
	if err != nil {
		return ErrPipelineUnavailable
	}

	r.blur2Pipe, err = gpu.NewPipeline(&driver.GraphState{
		VertFunc: driver.ShaderFunc{Code: vertCode, Name: "main"},
		FragFunc: driver.ShaderFunc{Code: blur2Code, Name: "main"},
		Desc:     r.desc.ssaoTbl,
		Input:    fsInput,
		Topology: driver.TTriStrip,
		Pass:     r.blurPass,
	})
	if err != nil {
		return ErrPipelineUnavailable
	}

	r.compPipe, err = gpu.NewPipeline(&driver.GraphState{
		VertFunc: driver.ShaderFunc{Code: vertCode, Name: "main"},
		FragFunc: driver.ShaderFunc{Code: compCode, Name: "main"},
		Desc:     r.desc.compTbl,
		Input:    fsInput,
		Topology: driver.TTriStrip,
		Pass:     r.compPass,
	})
	if err != nil {
		return ErrPipelineUnavailable
	}
	return nil
}
