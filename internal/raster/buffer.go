package raster

import (
	"image"

	"uiraster/internal/color"
)

// FrameBuffer holds the rendering target as a flat slice of premultiplied
// colors in the frame's blend space.
type FrameBuffer struct {
	Width  int
	Height int
	Space  color.Space
	Pix    []color.Premul // row-major, len = W*H
}

// NewFrameBuffer allocates a transparent buffer.
func NewFrameBuffer(w, h int, space color.Space) *FrameBuffer {
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Space:  space,
		Pix:    make([]color.Premul, w*h),
	}
}

// Fill sets every pixel to c.
func (fb *FrameBuffer) Fill(c color.Premul) {
	for i := range fb.Pix {
		fb.Pix[i] = c
	}
}

// At returns the pixel at (x, y).
func (fb *FrameBuffer) At(x, y int) color.Premul {
	return fb.Pix[y*fb.Width+x]
}

// ToRGBA resolves the buffer to premultiplied 8-bit sRGB, ready to present.
func (fb *FrameBuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, p := range fb.Pix {
		c := p.RGBA(fb.Space)
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// ToNRGBA resolves the buffer to straight 8-bit sRGB, the layout encoders
// expect.
func (fb *FrameBuffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, p := range fb.Pix {
		c := p.NRGBA(fb.Space)
		o := i * 4
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
	}
	return img
}
