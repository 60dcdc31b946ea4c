// Copyright 2024 The Voxen Authors. All rights reserved.

package voxelize

import "github.com/voxen-engine/voxen/linear"

// DefaultResolver is the reference Resolver: for each
// candidate triangle it casts a ray from center along the
// triangle's plane normal (both directions), takes the
// nearer hit, interpolates vertex color and UV at the hit's
// barycentric coordinates, and samples the material's
// base-color texture (nearest-neighbor) if present,
// multiplying by the material's base color; otherwise it
// uses the interpolated vertex color times the base color.
// Results are averaged across all candidate triangles.
func DefaultResolver(faces []MaterialFace, triIndices []int, center linear.V3) (r, g, b, a uint8) {
	var sr, sg, sb, sa float32
	n := 0
	for _, ti := range triIndices {
		f := &faces[ti]
		cr, cg, cb, ca, ok := sampleFace(f, center)
		if !ok {
			continue
		}
		sr += cr
		sg += cg
		sb += cb
		sa += ca
		n++
	}
	if n == 0 {
		return 0, 0, 0, 0
	}
	fn := float32(n)
	return clamp255(sr / fn), clamp255(sg / fn), clamp255(sb / fn), clamp255(sa / fn)
}

func sampleFace(f *MaterialFace, center linear.V3) (r, g, b, a float32, ok bool) {
	normal := f.Normal()
	var n linear.V3
	n.Norm(&normal)

	hit, u, v, w, hasHit := rayPlaneBarycentric(f, center, n)
	if !hasHit {
		return 0, 0, 0, 0, false
	}
	_ = hit

	uu := u*f.V[0].UV[0] + v*f.V[1].UV[0] + w*f.V[2].UV[0]
	vv := u*f.V[0].UV[1] + v*f.V[1].UV[1] + w*f.V[2].UV[1]
	vr := u*f.V[0].Color[0] + v*f.V[1].Color[0] + w*f.V[2].Color[0]
	vg := u*f.V[0].Color[1] + v*f.V[1].Color[1] + w*f.V[2].Color[1]
	vb := u*f.V[0].Color[2] + v*f.V[1].Color[2] + w*f.V[2].Color[2]
	va := u*f.V[0].Color[3] + v*f.V[1].Color[3] + w*f.V[2].Color[3]

	baseColor := [4]float32{1, 1, 1, 1}
	var tex *Texture
	var samp SamplerState
	if f.Material != nil {
		if p, ok := f.Material.Property(BaseColor); ok && p.Kind == KindColor {
			baseColor = p.Color
		}
		if p, ok := f.Material.Property(BaseColorTexture); ok && p.Kind == KindTexture {
			tex = p.Texture
			samp = p.Sampler
		}
	}

	if tex != nil {
		tr, tg, tb, ta := tex.At(uu, vv, samp.WrapU, samp.WrapV)
		return float32(tr) * baseColor[0], float32(tg) * baseColor[1], float32(tb) * baseColor[2], float32(ta) * baseColor[3], true
	}
	return vr * 255 * baseColor[0], vg * 255 * baseColor[1], vb * 255 * baseColor[2], va * 255 * baseColor[3], true
}

// rayPlaneBarycentric intersects the line through p along
// dir (tested in both directions) with the plane of f, and
// returns the barycentric weights of the nearer hit. ok is
// false if the line is parallel to the plane or the hit lies
// outside the triangle.
func rayPlaneBarycentric(f *MaterialFace, p, dir linear.V3) (hit linear.V3, u, v, w float32, ok bool) {
	n := f.Normal()
	var e1, e2 linear.V3
	e1.Sub(&f.V[1].Pos, &f.V[0].Pos)
	e2.Sub(&f.V[2].Pos, &f.V[0].Pos)

	denom := n.Dot(&dir)
	if denom == 0 {
		return hit, 0, 0, 0, false
	}
	var toPlane linear.V3
	toPlane.Sub(&f.V[0].Pos, &p)
	t := n.Dot(&toPlane) / denom
	var scaled linear.V3
	scaled.Scale(t, &dir)
	hit.Add(&p, &scaled)

	bu, bv, bw, inside := barycentric(f, hit)
	if !inside {
		return hit, 0, 0, 0, false
	}
	return hit, bu, bv, bw, true
}

func barycentric(f *MaterialFace, p linear.V3) (u, v, w float32, inside bool) {
	var v0, v1, v2 linear.V3
	v0.Sub(&f.V[1].Pos, &f.V[0].Pos)
	v1.Sub(&f.V[2].Pos, &f.V[0].Pos)
	v2.Sub(&p, &f.V[0].Pos)

	d00 := v0.Dot(&v0)
	d01 := v0.Dot(&v1)
	d11 := v1.Dot(&v1)
	d20 := v2.Dot(&v0)
	d21 := v2.Dot(&v1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 0, 0, 0, false
	}
	bv := (d11*d20 - d01*d21) / denom
	bw := (d00*d21 - d01*d20) / denom
	bu := 1 - bv - bw
	const eps = 1e-4
	inside = bu >= -eps && bv >= -eps && bw >= -eps
	return bu, bv, bw, inside
}

func clamp255(x float32) uint8 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}
