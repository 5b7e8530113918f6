// Package atlas holds the shared texture sprites are sampled from: an RGBA
// bitmap for raster content plus vector path regions for content drawn with
// winding-rule coverage. Packing is somebody else's job; the atlas only
// answers lookups and samples.
package atlas

import (
	"errors"
	"image"
	"math"

	"uiraster/internal/color"
	"uiraster/internal/mathutil"
)

// ErrOutOfAtlas reports a path region that does not fit inside the bitmap.
var ErrOutOfAtlas = errors.New("atlas: region outside atlas")

// Atlas is immutable once handed to a frame; concurrent reads are safe.
type Atlas struct {
	img   *image.NRGBA
	paths []*PathRegion
}

// New wraps img. The image is not copied; callers must not modify it while
// frames are rendered from the atlas.
func New(img *image.NRGBA) *Atlas {
	return &Atlas{img: img}
}

// NewBlank returns a fully transparent atlas of w×h texels.
func NewBlank(w, h int) *Atlas {
	return New(image.NewNRGBA(image.Rect(0, 0, w, h)))
}

// Image returns the bitmap.
func (a *Atlas) Image() *image.NRGBA {
	return a.img
}

// Bounds returns the bitmap rectangle in atlas coordinates.
func (a *Atlas) Bounds() image.Rectangle {
	return a.img.Rect
}

// Size returns the atlas size in texels.
func (a *Atlas) Size() mathutil.Vec2 {
	b := a.img.Rect
	return mathutil.V2(float64(b.Dx()), float64(b.Dy()))
}

// AddPath registers a vector region whose contours are given relative to
// bounds.Min.
func (a *Atlas) AddPath(bounds image.Rectangle, p *Path) (*PathRegion, error) {
	if bounds.Empty() || !bounds.In(a.img.Rect) {
		return nil, ErrOutOfAtlas
	}
	r := newPathRegion(bounds, p)
	a.paths = append(a.paths, r)
	return r, nil
}

// Paths returns the registered vector regions in insertion order.
func (a *Atlas) Paths() []*PathRegion {
	return a.paths
}

// PathAt returns the vector region containing the center of the source rect
// (origin, size), or nil. When regions overlap the last one added wins.
func (a *Atlas) PathAt(origin, size mathutil.Vec2) *PathRegion {
	c := origin.Add(size.Scale(0.5))
	pt := image.Pt(int(math.Floor(c.X)), int(math.Floor(c.Y)))
	for i := len(a.paths) - 1; i >= 0; i-- {
		if pt.In(a.paths[i].Bounds) {
			return a.paths[i]
		}
	}
	return nil
}

// SourceRect converts a sprite's float source rect to whole texels, the
// region bilinear sampling is clamped to. The result always holds at least
// one texel and lies inside the atlas, unless the atlas is empty.
func (a *Atlas) SourceRect(origin, size mathutil.Vec2) image.Rectangle {
	r := image.Rect(
		int(math.Floor(origin.X)), int(math.Floor(origin.Y)),
		int(math.Ceil(origin.X+size.X)), int(math.Ceil(origin.Y+size.Y)),
	)
	b := a.img.Rect
	r.Min.X = clampInt(r.Min.X, b.Min.X, b.Max.X-1)
	r.Min.Y = clampInt(r.Min.Y, b.Min.Y, b.Max.Y-1)
	r.Max.X = clampInt(r.Max.X, r.Min.X+1, b.Max.X)
	r.Max.Y = clampInt(r.Max.Y, r.Min.Y+1, b.Max.Y)
	return r
}

// Sample filters the bitmap bilinearly at atlas position p, where texel
// (x, y) has its center at (x+0.5, y+0.5). Texel lookups are clamped to clip
// and never wrap, so filtering at the edge of a source region cannot pull in
// a neighbouring atlas entry. The result is premultiplied in space.
func (a *Atlas) Sample(p mathutil.Vec2, clip image.Rectangle, space color.Space) color.Premul {
	clip = clip.Intersect(a.img.Rect)
	if clip.Empty() {
		return color.Premul{}
	}

	fx := p.X - 0.5
	fy := p.Y - 0.5
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return color.Premul{}
	}
	x0f, y0f := math.Floor(fx), math.Floor(fy)
	dx := float32(fx - x0f)
	dy := float32(fy - y0f)

	x0 := clampTexel(x0f, clip.Min.X, clip.Max.X-1)
	x1 := clampTexel(x0f+1, clip.Min.X, clip.Max.X-1)
	y0 := clampTexel(y0f, clip.Min.Y, clip.Max.Y-1)
	y1 := clampTexel(y0f+1, clip.Min.Y, clip.Max.Y-1)

	t00 := a.texel(x0, y0).Premul(space)
	t10 := a.texel(x1, y0).Premul(space)
	t01 := a.texel(x0, y1).Premul(space)
	t11 := a.texel(x1, y1).Premul(space)

	top := color.Mix(t00, t10, dx)
	bottom := color.Mix(t01, t11, dx)
	return color.Mix(top, bottom, dy)
}

func (a *Atlas) texel(x, y int) color.RGBA8 {
	i := a.img.PixOffset(x, y)
	p := a.img.Pix[i : i+4 : i+4]
	return color.RGBA8{R: p[0], G: p[1], B: p[2], A: p[3]}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampTexel(v float64, lo, hi int) int {
	if v <= float64(lo) {
		return lo
	}
	if v >= float64(hi) {
		return hi
	}
	return int(v)
}
