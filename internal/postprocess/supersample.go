package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales a premultiplied frame down to w×h with CatmullRom
// filtering. Filtering premultiplied values keeps transparent texels from
// darkening the edges they border.
func Downsample(img *image.RGBA, w, h int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Unpremultiply converts a premultiplied image to straight alpha.
func Unpremultiply(img *image.RGBA) *image.NRGBA {
	b := img.Bounds()
	result := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float64(img.Pix[si+3])
			if a > 0 {
				inv := 255.0 / a
				result.Pix[di] = clamp8(float64(img.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float64(img.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float64(img.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = img.Pix[si+3]
		}
	}
	return result
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
