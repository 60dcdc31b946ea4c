// Copyright 2024 The Voxen Authors. All rights reserved.

package vk

import (
	"errors"
	"unsafe"

	vkc "github.com/goki/vulkan"

	"github.com/voxen-engine/voxen/driver"
)

func unsafePtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

var errBadPipelineState = errors.New("vk: NewPipeline: state must be *driver.GraphState or *driver.CompState")

func topologyToVk(t driver.Topology) vkc.PrimitiveTopology {
	switch t {
	case driver.TPoint:
		return vkc.PrimitiveTopologyPointList
	case driver.TLine:
		return vkc.PrimitiveTopologyLineList
	case driver.TLnStrip:
		return vkc.PrimitiveTopologyLineStrip
	case driver.TTriStrip:
		return vkc.PrimitiveTopologyTriangleStrip
	default:
		return vkc.PrimitiveTopologyTriangleList
	}
}

func cullModeToVk(m driver.CullMode) vkc.CullModeFlagBits {
	switch m {
	case driver.CFront:
		return vkc.CullModeFrontBit
	case driver.CBack:
		return vkc.CullModeBackBit
	default:
		return vkc.CullModeNone
	}
}

func cmpFuncToVk(f driver.CmpFunc) vkc.CompareOp {
	switch f {
	case driver.CLess:
		return vkc.CompareOpLess
	case driver.CEqual:
		return vkc.CompareOpEqual
	case driver.CLessEqual:
		return vkc.CompareOpLessOrEqual
	case driver.CGreater:
		return vkc.CompareOpGreater
	case driver.CNotEqual:
		return vkc.CompareOpNotEqual
	case driver.CGreaterEqual:
		return vkc.CompareOpGreaterOrEqual
	case driver.CAlways:
		return vkc.CompareOpAlways
	default:
		return vkc.CompareOpNever
	}
}

func vertexFmtToVk(f driver.VertexFmt) vkc.Format {
	switch f {
	case driver.Float32:
		return vkc.FormatR32Sfloat
	case driver.Float32x2:
		return vkc.FormatR32g32Sfloat
	case driver.Float32x3:
		return vkc.FormatR32g32b32Sfloat
	case driver.Float32x4:
		return vkc.FormatR32g32b32a32Sfloat
	case driver.UInt32:
		return vkc.FormatR32Uint
	case driver.UInt8x4:
		return vkc.FormatR8g8b8a8Uint
	default:
		return vkc.FormatR32g32b32a32Sfloat
	}
}

// Pipeline wraps a graphics or compute pipeline.
type Pipeline struct {
	gpu      *GPU
	vk       vkc.Pipeline
	layout   vkc.PipelineLayout
	graphics bool
}

// NewPipeline creates either a graphics or a compute pipeline
// depending on the concrete type of state.
func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) {
	switch st := state.(type) {
	case *driver.GraphState:
		return g.newGraphPipeline(st)
	case *driver.CompState:
		return g.newCompPipeline(st)
	default:
		return nil, errBadPipelineState
	}
}

func (g *GPU) pipelineLayout(desc driver.DescTable) (vkc.PipelineLayout, error) {
	var setLayouts []vkc.DescriptorSetLayout
	if dt, ok := desc.(*DescTable); ok {
		for _, h := range dt.heaps {
			setLayouts = append(setLayouts, h.chain.layout)
		}
	}
	info := vkc.PipelineLayoutCreateInfo{
		SType:          vkc.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(setLayouts)),
		PSetLayouts:    setLayouts,
	}
	var layout vkc.PipelineLayout
	if res := vkc.CreatePipelineLayout(g.dev, &info, nil, &layout); res != vkc.Success {
		return vkc.PipelineLayout(nil), newVkErr("create pipeline layout", res)
	}
	return layout, nil
}

func (g *GPU) newGraphPipeline(st *driver.GraphState) (driver.Pipeline, error) {
	layout, err := g.pipelineLayout(st.Desc)
	if err != nil {
		return nil, err
	}
	bindings := make([]vkc.VertexInputBindingDescription, len(st.Input))
	attrs := make([]vkc.VertexInputAttributeDescription, len(st.Input))
	for i, in := range st.Input {
		bindings[i] = vkc.VertexInputBindingDescription{Binding: uint32(i), Stride: uint32(in.Stride), InputRate: vkc.VertexInputRateVertex}
		attrs[i] = vkc.VertexInputAttributeDescription{Location: uint32(in.Nr), Binding: uint32(i), Format: vertexFmtToVk(in.Format)}
	}
	vertIn := vkc.PipelineVertexInputStateCreateInfo{
		SType:                           vkc.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attrs)),
		PVertexAttributeDescriptions:    attrs,
	}
	asm := vkc.PipelineInputAssemblyStateCreateInfo{
		SType:    vkc.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: topologyToVk(st.Topology),
	}
	raster := vkc.PipelineRasterizationStateCreateInfo{
		SType:    vkc.StructureTypePipelineRasterizationStateCreateInfo,
		CullMode: vkc.CullModeFlags(cullModeToVk(st.Raster.Cull)),
		LineWidth: 1,
	}
	ds := vkc.PipelineDepthStencilStateCreateInfo{
		SType:            vkc.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vkc.True,
		DepthWriteEnable: vkc.True,
		DepthCompareOp:   cmpFuncToVk(st.DS.DepthCmp),
	}
	msaa := vkc.PipelineMultisampleStateCreateInfo{
		SType:                vkc.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vkc.SampleCountFlagBits(sampleCount(st.Samples)),
	}
	viewport := vkc.PipelineViewportStateCreateInfo{
		SType:         vkc.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	dynStates := []vkc.DynamicState{vkc.DynamicStateViewport, vkc.DynamicStateScissor}
	dyn := vkc.PipelineDynamicStateCreateInfo{
		SType:             vkc.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynStates)),
		PDynamicStates:    dynStates,
	}
	stages := []vkc.PipelineShaderStageCreateInfo{
		{SType: vkc.StructureTypePipelineShaderStageCreateInfo, Stage: vkc.ShaderStageVertexBit, Module: st.VertFunc.Code.(*ShaderCode).vk, PName: st.VertFunc.Name + "\x00"},
		{SType: vkc.StructureTypePipelineShaderStageCreateInfo, Stage: vkc.ShaderStageFragmentBit, Module: st.FragFunc.Code.(*ShaderCode).vk, PName: st.FragFunc.Name + "\x00"},
	}
	info := vkc.GraphicsPipelineCreateInfo{
		SType:               vkc.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:           uint32(len(stages)),
		PStages:              stages,
		PVertexInputState:    &vertIn,
		PInputAssemblyState:  &asm,
		PViewportState:       &viewport,
		PRasterizationState:  &raster,
		PMultisampleState:    &msaa,
		PDepthStencilState:   &ds,
		PDynamicState:        &dyn,
		Layout:               layout,
		RenderPass:           st.Pass.(*RenderPass).vk,
		Subpass:              uint32(st.Subpass),
	}
	pipelines := make([]vkc.Pipeline, 1)
	if res := vkc.CreateGraphicsPipelines(g.dev, vkc.PipelineCache(nil), 1, []vkc.GraphicsPipelineCreateInfo{info}, nil, pipelines); res != vkc.Success {
		vkc.DestroyPipelineLayout(g.dev, layout, nil)
		return nil, newVkErr("create graphics pipeline", res)
	}
	return &Pipeline{gpu: g, vk: pipelines[0], layout: layout, graphics: true}, nil
}

func (g *GPU) newCompPipeline(st *driver.CompState) (driver.Pipeline, error) {
	layout, err := g.pipelineLayout(st.Desc)
	if err != nil {
		return nil, err
	}
	var specInfo *vkc.SpecializationInfo
	var entries []vkc.SpecializationMapEntry
	var data []byte
	if st.SpecIndex >= 0 {
		entries = []vkc.SpecializationMapEntry{{ConstantID: uint32(st.SpecIndex), Offset: 0, Size: 4}}
		data = make([]byte, 4)
		putU32(data, st.SpecValue)
		specInfo = &vkc.SpecializationInfo{
			MapEntryCount: uint32(len(entries)),
			PMapEntries:   entries,
			Dataset:       uint(len(data)),
			PData:         unsafePtr(data),
		}
	}
	stage := vkc.PipelineShaderStageCreateInfo{
		SType:               vkc.StructureTypePipelineShaderStageCreateInfo,
		Stage:               vkc.ShaderStageComputeBit,
		Module:              st.Func.Code.(*ShaderCode).vk,
		PName:               st.Func.Name + "\x00",
		PSpecializationInfo: specInfo,
	}
	info := vkc.ComputePipelineCreateInfo{
		SType:  vkc.StructureTypeComputePipelineCreateInfo,
		Stage:  stage,
		Layout: layout,
	}
	pipelines := make([]vkc.Pipeline, 1)
	if res := vkc.CreateComputePipelines(g.dev, vkc.PipelineCache(nil), 1, []vkc.ComputePipelineCreateInfo{info}, nil, pipelines); res != vkc.Success {
		vkc.DestroyPipelineLayout(g.dev, layout, nil)
		return nil, newVkErr("create compute pipeline", res)
	}
	return &Pipeline{gpu: g, vk: pipelines[0], layout: layout}, nil
}

func (p *Pipeline) Destroy() {
	vkc.DestroyPipeline(p.gpu.dev, p.vk, nil)
	vkc.DestroyPipelineLayout(p.gpu.dev, p.layout, nil)
}
