// Copyright 2024 The Voxen Authors. All rights reserved.

// Package render drives per-frame traversal of a volume
// model into a raycast G-buffer followed by an SSAO and
// composition pass chain.
package render

import (
	"errors"

	"github.com/voxen-engine/voxen/driver"
	"github.com/voxen-engine/voxen/internal/bitvec"
	"github.com/voxen-engine/voxen/volume"
)

// DrawMode selects which intermediate target the composition
// pass writes to the swap-chain image, pushed as a single
// uint32 at the start of the composition push-constant block.
type DrawMode uint32

// Draw modes.
const (
	Composition DrawMode = iota
	Raycast
	SSAO
	Albedo
)

// Push-constant byte offsets shared by every raycast variant.
// Exact values are caller-defined; this package only needs a
// single stable mapping, which the offsets below provide.
const (
	pcInverseModel     = 0
	pcInverseMVP       = 64
	pcMVP              = 128
	pcModelView        = 192
	pcAmbientColor     = 256
	pcLightColor       = 272
	pcLightDir         = 288
	pcWidth            = 300
	pcHeight           = 304
	pcRaycastSize      = 308
)

const (
	pcSSAOProjection = 0
	pcSSAORadius     = 64
	pcSSAOBias       = 68
	pcSSAOSize       = 72
)

const (
	pcCompDrawMode = 0
	pcCompSize     = 4
)

// ErrPipelineUnavailable is returned by Init when the driver
// fails to create one of the renderer's fixed pipelines. A
// failure to create a shader module is returned as the
// driver's own error.
var ErrPipelineUnavailable = errors.New("render: pipeline creation failed")

// raycastVariant selects the voxel_depth_layer.comp
// specialization constant value.
type raycastVariant uint32

const (
	raycastData       raycastVariant = 0
	raycastVisualizer raycastVariant = 1
)

// ShaderSet carries the compiled SPIR-V for every stage the
// renderer needs; the caller is responsible for compiling and
// reflecting these offline.
type ShaderSet struct {
	DepthClear       []byte
	DepthLayer       []byte
	SSAO             []byte
	Blur             []byte
	Blur2            []byte
	Composition      []byte
	FullscreenVertex []byte
}

// Params configures a Renderer.
type Params struct {
	RenderScale float32
	Visualizer  bool
	BlurMode    BlurMode
	SSAORadius  float32
	SSAOBias    float32
	LOD         volume.Params
}

// BlurMode selects the SSAO denoise pass.
type BlurMode int

// Blur modes.
const (
	BlurNone BlurMode = iota
	BlurBox
	BlurGaussianSeparable
)

// Renderer drives one swap-chain-sized volume rendering
// pipeline: raycast compute into a G-buffer, SSAO, blur, and
// deferred composition.
type Renderer struct {
	gpu    driver.GPU
	params Params

	desc descriptors

	clearPipe       driver.Pipeline
	raycastDataPipe driver.Pipeline
	raycastVisPipe  driver.Pipeline
	ssaoPipe        driver.Pipeline
	blurPipe        driver.Pipeline
	blur2Pipe       driver.Pipeline
	compPipe        driver.Pipeline

	kernel ssaoKernel
	noise  driver.Image
	noiseView driver.ImageView

	gbuf gbuffer

	ssaoPass driver.RenderPass
	blurPass driver.RenderPass
	compPass driver.RenderPass

	builder *volume.Builder
	layers  []*volume.Layer

	// layerBufs holds the live GPU buffers bound for the
	// current frame's layers; layerBufIdx holds each one's
	// slot index into bufPool so releaseLayerBuffers can
	// return it to the pool instead of destroying it. The pool
	// is tracked with a bit vector (bitvec.V), the same way a
	// staging-buffer block allocator tracks slot occupancy: a
	// set bit means the slot's buffer is bound to a layer this
	// frame, an unset bit means it's free for reuse next frame.
	layerBufs   []driver.Buffer
	layerBufIdx []int
	bufPool     []driver.Buffer
	bufPoolCap  []int64
	bufFree     bitvec.V[uint32]

	stats Stats
}

// Stats reports workload counters and render dimensions for
// the most recently prepared frame, as filled in by
// PrepareScene. TrianglesIn is not filled in by this package.
type Stats struct {
	LayerCount   int
	TrianglesIn  int
	Culled       bool
	RenderWidth  int
	RenderHeight int
}

// Stats returns the counters of the most recently prepared
// frame.
func (r *Renderer) Stats() Stats { return r.stats }

// Init builds the fixed shader pipelines, the SSAO kernel and
// noise texture, and the descriptor layouts they share. It
// must be called once before PrepareScene/Render.
func (r *Renderer) Init(gpu driver.GPU, shaders ShaderSet, p Params, targetFmt driver.PixelFmt) error {
	r.gpu = gpu
	r.params = p
	r.builder = volume.NewBuilder()

	if err := r.initDescriptors(shaders); err != nil {
		return err
	}
	if err := r.initRenderPasses(targetFmt); err != nil {
		return err
	}
	if err := r.initPipelines(shaders); err != nil {
		return err
	}
	r.kernel = newSSAOKernel()
	if err := r.initNoiseTexture(); err != nil {
		return err
	}
	return nil
}

// Destroy releases every GPU resource the renderer owns:
// pipelines, descriptor heaps/tables, render passes, the
// G-buffer and SSAO targets, the noise texture, and the
// pooled layer buffers. The Renderer must not be used again
// afterward.
func (r *Renderer) Destroy() {
	r.releaseLayerBuffers()
	for _, b := range r.bufPool {
		if b != nil {
			b.Destroy()
		}
	}
	r.bufPool, r.bufPoolCap = nil, nil
	r.bufFree = bitvec.V[uint32]{}

	r.gbuf.destroy()

	if r.noiseView != nil {
		r.noiseView.Destroy()
	}
	if r.noise != nil {
		r.noise.Destroy()
	}

	for _, p := range []driver.Pipeline{
		r.clearPipe, r.raycastDataPipe, r.raycastVisPipe,
		r.ssaoPipe, r.blurPipe, r.blur2Pipe, r.compPipe,
	} {
		if p != nil {
			p.Destroy()
		}
	}

	for _, pass := range []driver.RenderPass{r.ssaoPass, r.blurPass, r.compPass} {
		if pass != nil {
			pass.Destroy()
		}
	}

	for _, d := range []driver.Destroyer{
		r.desc.gbufferTbl, r.desc.gbufferHeap,
		r.desc.ssaoTbl, r.desc.ssaoHeap,
		r.desc.compTbl, r.desc.compHeap,
		r.desc.layerTbl, r.desc.layerHeap,
	} {
		if d != nil {
			d.Destroy()
		}
	}
}

func (r *Renderer) raycastPipeline() driver.Pipeline {
	if r.params.Visualizer {
		return r.raycastVisPipe
	}
	return r.raycastDataPipe
}
