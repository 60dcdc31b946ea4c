// Copyright 2024 The Voxen Authors. All rights reserved.

package render

import (
	"math"

	"github.com/voxen-engine/voxen/driver"
	"github.com/voxen-engine/voxen/linear"
)

const ssaoKernelSize = 64
const noiseDim = 4

// ssaoKernel is a hemisphere of sample offsets around +Z,
// scaled so samples cluster closer to the origin: scale(i) =
// lerp(0.1, 1, (i/64)^2).
type ssaoKernel struct {
	samples [ssaoKernelSize]linear.V3
}

// newSSAOKernel deterministically fills the hemisphere using a
// simple low-discrepancy spiral instead of a PRNG, since the
// kernel only needs to decorrelate sample directions, not be
// statistically random.
func newSSAOKernel() ssaoKernel {
	var k ssaoKernel
	const golden = 2.399963229728653 // Radians, golden angle.
	for i := 0; i < ssaoKernelSize; i++ {
		t := float32(i) / float32(ssaoKernelSize)
		theta := float64(i) * golden
		sinT, cosT := math.Sincos(theta)
		r := float32(math.Sqrt(float64(t)))
		x := r * float32(cosT)
		y := r * float32(sinT)
		z := float32(math.Sqrt(1 - float64(t)*0.5))
		v := linear.V3{x, y, z}
		var n linear.V3
		n.Norm(&v)
		scale := linear.Lerp(0.1, 1, t*t)
		var s linear.V3
		s.Scale(scale, &n)
		k.samples[i] = s
	}
	return k
}

// noiseTexel is a unit-length vector in the screen-tangent
// XY plane, taken from a golden-angle spiral rather than
// drawn at random, packed the way a shader expects to
// sample and unpack it (no Z component needed for tangent
// rotation).
type noiseTexel struct{ x, y float32 }

func noiseTexture() [noiseDim * noiseDim]noiseTexel {
	var out [noiseDim * noiseDim]noiseTexel
	const golden = 2.399963229728653
	for i := range out {
		theta := float64(i) * golden * 3
		sinT, cosT := math.Sincos(theta)
		out[i] = noiseTexel{float32(cosT), float32(sinT)}
	}
	return out
}

func (r *Renderer) initNoiseTexture() error {
	img, err := r.gpu.NewImage(driver.RGBA16Float, driver.Dim3D{Width: noiseDim, Height: noiseDim, Depth: 1}, 1, 1, 1, driver.UShaderSample)
	if err != nil {
		return err
	}
	view, err := img.NewView(driver.IView2D, 0, 1, 0, 1)
	if err != nil {
		img.Destroy()
		return err
	}
	r.noise, r.noiseView = img, view
	return nil
}
