package raster

import (
	"math"

	"uiraster/internal/color"
	"uiraster/internal/mathutil"
	"uiraster/internal/scene"
)

// ShadeQuad returns the premultiplied color of q at p, a point relative to the
// quad's origin in scene units. aa is the width of the coverage ramp in the
// same units, normally one device pixel. A zero result means no coverage.
//
// The shape is a rounded rectangle with corner arcs of the clamped radius.
// Inside it, a point is border colored when it lies within the band of any
// side, however wide the band; at corners the side is chosen by which axis
// overshoots the inner corner more, and an exact tie uses the average of the
// two widths.
func ShadeQuad(q scene.Quad, p mathutil.Vec2, aa float64, sh Shading) color.Premul {
	if !(q.Size.X > 0) || !(q.Size.Y > 0) {
		return color.Premul{}
	}
	if !(aa > 0) {
		aa = 1
	}

	half := mathutil.V2(float64(q.Size.X), float64(q.Size.Y)).Scale(0.5)
	c2p := p.Sub(half)
	r := float64(q.ClampedCornerRadius())

	dist := roundedRectDistance(c2p, half, r)
	coverage := saturate(0.5 - dist/aa)
	if !(coverage > 0) {
		return color.Premul{}
	}

	b := q.Borders()
	w, h := float64(q.Size.X), float64(q.Size.Y)
	vertical, dx := borderSide(p.X, w, float64(b[3]), float64(b[1]))
	horizontal, dy := borderSide(p.Y, h, float64(b[0]), float64(b[2]))

	// Overshoot past the inner corner of the chosen sides.
	p2ic := mathutil.V2(r+vertical-dx, r+horizontal-dy)
	var width float64
	switch {
	case p2ic.X < 0 && p2ic.Y < 0:
		width = 0
	case p2ic.Y > p2ic.X:
		width = horizontal
	case p2ic.X > p2ic.Y:
		width = vertical
	default:
		width = (vertical + horizontal) / 2
	}

	fill := q.Background.Premul(sh.Space)
	if width > 0 {
		t := saturate(0.5 - (dist+width)/aa)
		fill = color.Mix(q.BorderColor.Premul(sh.Space), fill, float32(t))
	}
	return fill.Scale(float32(coverage) * sh.Opacity)
}

// borderSide picks the border governing coordinate v along an axis of length
// n with near-side width lo and far-side width hi. A point inside either band
// belongs to that band; otherwise the nearer side wins. It returns the width
// and the distance from v to that side's edge.
func borderSide(v, n, lo, hi float64) (width, edge float64) {
	switch {
	case v < lo:
		return lo, v
	case v >= n-hi:
		return hi, n - v
	case v < n/2:
		return lo, v
	default:
		return hi, n - v
	}
}

// roundedRectDistance is the signed distance from c2p, relative to the
// rectangle's center, to a rectangle of half extents half with corner radius
// r. Negative inside.
func roundedRectDistance(c2p, half mathutil.Vec2, r float64) float64 {
	e := c2p.Abs().Sub(half).Add(mathutil.V2(r, r))
	outside := mathutil.V2(math.Max(e.X, 0), math.Max(e.Y, 0)).Len()
	inside := math.Min(0, math.Max(e.X, e.Y))
	return outside + inside - r
}

func saturate(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
