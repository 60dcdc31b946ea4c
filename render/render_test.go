// Copyright 2024 The Voxen Authors. All rights reserved.

package render

import (
	"math"
	"testing"

	"github.com/voxen-engine/voxen/linear"
)

func TestRenderDimsClamp(t *testing.T) {
	cases := []struct {
		w, h     int
		scale    float32
		wantW    int
		wantH    int
	}{
		{1920, 1080, 0.5, 960, 540},
		{1920, 1080, 0, 192, 108},      // clamped up to 0.1
		{1920, 1080, 2, 1920, 1080},    // clamped down to 1.0
		{4, 4, 0.1, 1, 1},              // floor of 1 pixel
	}
	for _, c := range cases {
		w, h := renderDims(c.w, c.h, c.scale)
		if w != c.wantW || h != c.wantH {
			t.Errorf("renderDims(%d, %d, %v) = (%d, %d), want (%d, %d)",
				c.w, c.h, c.scale, w, h, c.wantW, c.wantH)
		}
	}
}

func TestPutU32PutF32RoundTrip(t *testing.T) {
	b := make([]byte, 4)
	putU32(b, 0xdeadbeef)
	got := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	if got != 0xdeadbeef {
		t.Fatalf("putU32 wrote %#x, want %#x", got, uint32(0xdeadbeef))
	}

	putF32(b, 3.5)
	gotF := math.Float32frombits(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
	if gotF != 3.5 {
		t.Fatalf("putF32 wrote %v, want 3.5", gotF)
	}
}

func TestMat4Bytes(t *testing.T) {
	var m linear.M4
	m.I()
	b := mat4Bytes(&m)
	if len(b) != 64 {
		t.Fatalf("mat4Bytes length = %d, want 64", len(b))
	}
	// Column 0, row 0 of the identity matrix is 1.0.
	f := math.Float32frombits(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
	if f != 1 {
		t.Fatalf("mat4Bytes[0:4] = %v, want 1", f)
	}
	// Column 0, row 1 is 0.0.
	f = math.Float32frombits(uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24)
	if f != 0 {
		t.Fatalf("mat4Bytes[4:8] = %v, want 0", f)
	}
}

func TestVec4BytesVec3Bytes(t *testing.T) {
	v4 := vec4Bytes([4]float32{1, 2, 3, 4})
	if len(v4) != 16 {
		t.Fatalf("vec4Bytes length = %d, want 16", len(v4))
	}
	v3 := vec3Bytes([3]float32{1, 2, 3})
	if len(v3) != 12 {
		t.Fatalf("vec3Bytes length = %d, want 12", len(v3))
	}
	last := math.Float32frombits(uint32(v3[8]) | uint32(v3[9])<<8 | uint32(v3[10])<<16 | uint32(v3[11])<<24)
	if last != 3 {
		t.Fatalf("vec3Bytes[8:12] = %v, want 3", last)
	}
}

func TestSSAOKernelHemisphereAndScale(t *testing.T) {
	k := newSSAOKernel()
	for i, s := range k.samples {
		if s[2] < 0 {
			t.Fatalf("sample %d has negative Z %v, expected +Z hemisphere", i, s[2])
		}
		length := float32(math.Sqrt(float64(s[0]*s[0] + s[1]*s[1] + s[2]*s[2])))
		if length < 0.05 || length > 1.01 {
			t.Fatalf("sample %d length %v outside expected scale range", i, length)
		}
	}
	// Samples should cluster closer to the origin for low i and
	// reach further out for high i (scale(i) = lerp(0.1, 1, (i/64)^2)).
	first := k.samples[0]
	last := k.samples[ssaoKernelSize-1]
	lenFirst := float32(math.Sqrt(float64(first[0]*first[0] + first[1]*first[1] + first[2]*first[2])))
	lenLast := float32(math.Sqrt(float64(last[0]*last[0] + last[1]*last[1] + last[2]*last[2])))
	if lenFirst >= lenLast {
		t.Fatalf("expected increasing sample scale, got first=%v last=%v", lenFirst, lenLast)
	}
}

func TestNoiseTextureUnitLength(t *testing.T) {
	tex := noiseTexture()
	for i, texel := range tex {
		l := float32(math.Sqrt(float64(texel.x*texel.x + texel.y*texel.y)))
		if l < 0.99 || l > 1.01 {
			t.Fatalf("noise texel %d length %v, want ~1", i, l)
		}
	}
}
