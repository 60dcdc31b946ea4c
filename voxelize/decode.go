// Copyright 2024 The Voxen Authors. All rights reserved.

package voxelize

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/bmp"
)

// DecodeTexture decodes an encoded base-color texture (PNG,
// JPEG or BMP) into the flat RGBA8 form voxelize samples
// directly, so a glTF-style image buffer can be handed to a
// Resolver without going through the GPU at all.
func DecodeTexture(data []byte) (*Texture, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if img2, err2 := bmp.Decode(bytes.NewReader(data)); err2 == nil {
			img, format = img2, "bmp"
		} else {
			return nil, fmt.Errorf("voxelize: decode texture: %w", err)
		}
	}
	_ = format
	return toRGBA8(img), nil
}

func toRGBA8(img image.Image) *Texture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &Texture{Width: w, Height: h, Pixels: make([]byte, w*h*4)}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			out.Pixels[i] = byte(r >> 8)
			out.Pixels[i+1] = byte(g >> 8)
			out.Pixels[i+2] = byte(bl >> 8)
			out.Pixels[i+3] = byte(a >> 8)
			i += 4
		}
	}
	return out
}
