// Copyright 2024 The Voxen Authors. All rights reserved.

package render

import (
	"math"

	"github.com/voxen-engine/voxen/driver"
	"github.com/voxen-engine/voxen/linear"
)

// FrameParams carries the per-frame camera and lighting state
// the raycast and composition passes need.
type FrameParams struct {
	InverseModel    linear.M4
	InverseMVP      linear.M4
	MVP             linear.M4
	ModelView       linear.M4
	Projection      linear.M4
	AmbientColor    [4]float32
	LightColor      [4]float32
	LightDir        [3]float32
	ZNear, ZFar     float32
	DrawMode        DrawMode
}

const workgroupSize = 8

// Render records the raycast, SSAO, blur and composition
// passes into cb, targeting the swap-chain framebuffer fb for
// the final composition draw. PrepareScene must have been
// called for this frame first; if it reported the model
// culled, Render is a no-op.
func (r *Renderer) Render(cb driver.CmdBuffer, fb driver.Framebuf, fp FrameParams) error {
	if r.stats.Culled {
		return nil
	}

	groupsX := (r.gbuf.width + workgroupSize - 1) / workgroupSize
	groupsY := (r.gbuf.height + workgroupSize - 1) / workgroupSize

	// Encoder A: clear the G-buffer.
	cb.BeginWork(false)
	cb.SetPipeline(r.clearPipe)
	cb.SetDescTableComp(r.desc.gbufferTbl, 0, []int{0})
	cb.Dispatch(groupsX, groupsY, 1)
	cb.EndWork()

	// Encoder B: raycast each layer in the builder's
	// front-to-back order, so the later dispatch for a
	// farther layer never overwrites a nearer one that
	// already wrote depth this frame; the shader itself
	// enforces the depth test on write.
	cb.BeginWork(true)
	cb.SetPipeline(r.raycastPipeline())
	r.pushRaycastConstants(cb, fp)
	for _, buf := range r.layerBufs {
		r.setLayerBuffer(cb, buf)
		// Re-bind push constants after setLayerBuffer: some
		// drivers corrupt prior push-constant state on
		// bindDescriptorSets.
		r.pushRaycastConstants(cb, fp)
		cb.Dispatch(groupsX, groupsY, 1)
	}
	cb.EndWork()

	// Encoder C: SSAO.
	ssaoFB, err := r.ssaoTargetFB()
	if err != nil {
		return err
	}
	cb.BeginPass(r.ssaoPass, ssaoFB, []driver.ClearValue{{}})
	cb.SetPipeline(r.ssaoPipe)
	cb.SetDescTableGraph(r.desc.ssaoTbl, 0, []int{0})
	r.pushSSAOConstants(cb, fp)
	cb.Draw(3, 1, 0, 0)
	cb.EndPass()

	if r.params.BlurMode != BlurNone {
		if err := r.recordBlur(cb); err != nil {
			return err
		}
	}

	// Final composition.
	cb.BeginPass(r.compPass, fb, []driver.ClearValue{{}})
	cb.SetPipeline(r.compPipe)
	cb.SetDescTableGraph(r.desc.compTbl, 0, []int{0})
	var mode [4]byte
	putU32(mode[:], uint32(fp.DrawMode))
	cb.PushConstant(driver.SFragment, pcCompDrawMode, mode[:])
	cb.Draw(3, 1, 0, 0)
	cb.EndPass()

	return nil
}

func (r *Renderer) pushRaycastConstants(cb driver.CmdBuffer, fp FrameParams) {
	stages := driver.SCompute
	cb.PushConstant(stages, pcInverseModel, mat4Bytes(&fp.InverseModel))
	cb.PushConstant(stages, pcInverseMVP, mat4Bytes(&fp.InverseMVP))
	cb.PushConstant(stages, pcMVP, mat4Bytes(&fp.MVP))
	cb.PushConstant(stages, pcModelView, mat4Bytes(&fp.ModelView))
	cb.PushConstant(stages, pcAmbientColor, vec4Bytes(fp.AmbientColor))
	cb.PushConstant(stages, pcLightColor, vec4Bytes(fp.LightColor))
	cb.PushConstant(stages, pcLightDir, vec3Bytes(fp.LightDir))
	var wh [8]byte
	putU32(wh[0:4], uint32(r.gbuf.width))
	putU32(wh[4:8], uint32(r.gbuf.height))
	cb.PushConstant(stages, pcWidth, wh[:])
}

func (r *Renderer) pushSSAOConstants(cb driver.CmdBuffer, fp FrameParams) {
	cb.PushConstant(driver.SFragment, pcSSAOProjection, mat4Bytes(&fp.Projection))
	var rb [8]byte
	putF32(rb[0:4], r.params.SSAORadius)
	putF32(rb[4:8], r.params.SSAOBias)
	cb.PushConstant(driver.SFragment, pcSSAORadius, rb[:])
}

func (r *Renderer) setLayerBuffer(cb driver.CmdBuffer, buf driver.Buffer) {
	r.desc.layerHeap.New(1)
	r.desc.layerHeap.SetBuffer(0, 0, 0, []driver.Buffer{buf}, []int64{0}, []int64{buf.Cap()})
	cb.SetDescTableComp(r.desc.layerTbl, 0, []int{0})
}

func (r *Renderer) recordBlur(cb driver.CmdBuffer) error {
	pipe := r.blurPipe
	passes := 1
	if r.params.BlurMode == BlurGaussianSeparable {
		passes = 2
	}
	for i := 0; i < passes; i++ {
		p := pipe
		if r.params.BlurMode == BlurGaussianSeparable && i == 1 {
			p = r.blur2Pipe
		}
		fb, err := r.blurTargetFB()
		if err != nil {
			return err
		}
		cb.BeginPass(r.blurPass, fb, []driver.ClearValue{{}})
		cb.SetPipeline(p)
		cb.SetDescTableGraph(r.desc.ssaoTbl, 0, []int{0})
		cb.Draw(3, 1, 0, 0)
		cb.EndPass()
	}
	return nil
}

func (r *Renderer) ssaoTargetFB() (driver.Framebuf, error) {
	return r.ssaoPass.NewFB([]driver.ImageView{r.gbuf.ssaoView}, r.gbuf.width, r.gbuf.height, 1)
}

func (r *Renderer) blurTargetFB() (driver.Framebuf, error) {
	return r.blurPass.NewFB([]driver.ImageView{r.gbuf.blurredView}, r.gbuf.width, r.gbuf.height, 1)
}

func mat4Bytes(m *linear.M4) []byte {
	out := make([]byte, 64)
	n := 0
	for _, col := range *m {
		for _, f := range col {
			putF32(out[n:n+4], f)
			n += 4
		}
	}
	return out
}

func vec4Bytes(v [4]float32) []byte {
	out := make([]byte, 16)
	for i, f := range v {
		putF32(out[i*4:i*4+4], f)
	}
	return out
}

func vec3Bytes(v [3]float32) []byte {
	out := make([]byte, 12)
	for i, f := range v {
		putF32(out[i*4:i*4+4], f)
	}
	return out
}

func putF32(b []byte, f float32) {
	putU32(b, math.Float32bits(f))
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
