// Copyright 2024 The Voxen Authors. All rights reserved.

package shaderbind

import (
	"testing"

	"github.com/voxen-engine/voxen/voxelize"
)

func TestResolveMissingMaterialUsesDefaults(t *testing.T) {
	def := NewDefaults()
	m := &MaterialShaderMap{
		ResourceSemantics: map[ShaderBindingLocation]ResourceSemantic{
			{Set: 0, Binding: 0}: {Material: SemBaseColorTexture},
			{Set: 0, Binding: 1}: {Uniform: SemViewportSize, IsUniform: true},
		},
	}
	fr := &Frame{ViewportW: 800, ViewportH: 600}

	out := Resolve(m, nil, fr, def)
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	var sawTexture, sawViewport bool
	for _, rb := range out {
		switch rb.Location.Binding {
		case 0:
			sawTexture = true
			if rb.Texture != def.MagentaTexture {
				t.Fatalf("expected default magenta texture for missing material property")
			}
		case 1:
			sawViewport = true
			if rb.Vector[0] != 800 || rb.Vector[1] != 600 {
				t.Fatalf("viewport uniform = %v, want 800x600", rb.Vector)
			}
		}
	}
	if !sawTexture || !sawViewport {
		t.Fatalf("missing expected resolved bindings: %+v", out)
	}
}

func TestResolveMaterialBaseColor(t *testing.T) {
	mat := &voxelize.Material{Properties: map[voxelize.PropertyKey]voxelize.Property{
		voxelize.BaseColor: {Kind: voxelize.KindColor, Color: [4]float32{0.2, 0.4, 0.6, 1}},
	}}
	m := &MaterialShaderMap{
		ResourceSemantics: map[ShaderBindingLocation]ResourceSemantic{
			{Set: 0, Binding: 0}: {Material: SemBaseColor},
		},
	}
	out := Resolve(m, mat, &Frame{}, NewDefaults())
	if len(out) != 1 || out[0].Vector != [4]float32{0.2, 0.4, 0.6, 1} {
		t.Fatalf("got %+v", out)
	}
}
