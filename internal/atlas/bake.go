package atlas

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
)

// Bake rasterizes the region's path into dst as a white coverage mask, so the
// same region can also be drawn as a direct-sampling sprite. Texels of the
// region outside the path become transparent.
func (r *PathRegion) Bake(dst *image.NRGBA) {
	b := r.Bounds.Intersect(dst.Rect)
	if b.Empty() {
		return
	}
	w, h := r.Bounds.Dx(), r.Bounds.Dy()

	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	for _, c := range r.path.contours {
		if len(c) < 2 {
			continue
		}
		z.MoveTo(float32(c[0].X), float32(c[0].Y))
		for _, pt := range c[1:] {
			z.LineTo(float32(pt.X), float32(pt.Y))
		}
		z.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := mask.AlphaAt(x-r.Bounds.Min.X, y-r.Bounds.Min.Y).A
			i := dst.PixOffset(x, y)
			p := dst.Pix[i : i+4 : i+4]
			p[0], p[1], p[2], p[3] = 0xff, 0xff, 0xff, a
		}
	}
}

// BakeAll rasterizes every path region into the atlas bitmap.
func (a *Atlas) BakeAll() {
	for _, r := range a.paths {
		r.Bake(a.img)
	}
}
