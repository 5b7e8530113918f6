package atlas

import (
	"image"
	"math"

	"uiraster/internal/mathutil"
)

// Flatness is the maximum distance, in atlas texels, between a curve and the
// line segments it is flattened into.
const Flatness = 0.1

// Path collects contours with the usual pen commands. Curves are flattened
// into line segments as they are added; every contour is implicitly closed.
type Path struct {
	contours [][]mathutil.Vec2
	pen      mathutil.Vec2
	open     bool
}

// NewPath returns an empty path.
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new contour at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.pen = mathutil.V2(x, y)
	p.contours = append(p.contours, []mathutil.Vec2{p.pen})
	p.open = true
}

// LineTo adds a straight edge from the pen to (x, y).
func (p *Path) LineTo(x, y float64) {
	if !p.open {
		p.MoveTo(p.pen.X, p.pen.Y)
	}
	p.pen = mathutil.V2(x, y)
	last := len(p.contours) - 1
	p.contours[last] = append(p.contours[last], p.pen)
}

// QuadTo adds a quadratic Bézier with control point (cx, cy).
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p0, p1, p2 := p.pen, mathutil.V2(cx, cy), mathutil.V2(x, y)
	dd := p0.Sub(p1.Scale(2)).Add(p2).Len()
	n := segments(dd / (8 * Flatness))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		q := p0.Scale(s * s).Add(p1.Scale(2 * s * t)).Add(p2.Scale(t * t))
		p.LineTo(q.X, q.Y)
	}
}

// CubeTo adds a cubic Bézier with control points (c1x, c1y) and (c2x, c2y).
func (p *Path) CubeTo(c1x, c1y, c2x, c2y, x, y float64) {
	p0, p1, p2, p3 := p.pen, mathutil.V2(c1x, c1y), mathutil.V2(c2x, c2y), mathutil.V2(x, y)
	dd := math.Max(
		p0.Sub(p1.Scale(2)).Add(p2).Len(),
		p1.Sub(p2.Scale(2)).Add(p3).Len(),
	)
	n := segments(3 * dd / (4 * Flatness))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		q := p0.Scale(s * s * s).
			Add(p1.Scale(3 * s * s * t)).
			Add(p2.Scale(3 * s * t * t)).
			Add(p3.Scale(t * t * t))
		p.LineTo(q.X, q.Y)
	}
}

// Close ends the current contour. The next command starts a new one at the
// contour's first point.
func (p *Path) Close() {
	if !p.open {
		return
	}
	c := p.contours[len(p.contours)-1]
	p.pen = c[0]
	p.open = false
}

// Reversed returns a copy of p with every contour running the other way.
func (p *Path) Reversed() *Path {
	r := &Path{pen: p.pen}
	for _, c := range p.contours {
		rc := make([]mathutil.Vec2, len(c))
		for i, pt := range c {
			rc[len(c)-1-i] = pt
		}
		r.contours = append(r.contours, rc)
	}
	return r
}

// Contours returns the flattened contours.
func (p *Path) Contours() [][]mathutil.Vec2 {
	return p.contours
}

func segments(v float64) int {
	n := int(math.Ceil(math.Sqrt(v)))
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}

type edge struct {
	a, b mathutil.Vec2
}

// PathRegion is a rectangle of the atlas whose content is a vector path
// rather than texels. Edges are stored in atlas coordinates.
type PathRegion struct {
	Bounds image.Rectangle

	path  *Path
	edges []edge
}

func newPathRegion(bounds image.Rectangle, p *Path) *PathRegion {
	off := mathutil.V2(float64(bounds.Min.X), float64(bounds.Min.Y))
	r := &PathRegion{Bounds: bounds, path: p}
	for _, c := range p.contours {
		if len(c) < 2 {
			continue
		}
		for i := range c {
			a := c[i].Add(off)
			b := c[(i+1)%len(c)].Add(off)
			if a.Y == b.Y {
				// Horizontal edges never cross a horizontal ray.
				continue
			}
			r.edges = append(r.edges, edge{a, b})
		}
	}
	return r
}

// Path returns the region's path in region-local coordinates.
func (r *PathRegion) Path() *Path {
	return r.path
}

// Winding returns the winding number of the path around atlas position pt:
// the sum of signed crossings of the ray from pt towards +x. Edges going down
// (increasing y) count +1, edges going up count -1.
func (r *PathRegion) Winding(pt mathutil.Vec2) int {
	w := 0
	for _, e := range r.edges {
		a, b := e.a, e.b
		// Half-open rule so a ray through a shared vertex counts once.
		if (a.Y <= pt.Y) == (b.Y <= pt.Y) {
			continue
		}
		x := a.X + (pt.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if x <= pt.X {
			continue
		}
		if b.Y > a.Y {
			w++
		} else {
			w--
		}
	}
	return w
}

// Coverage returns the fraction of an n×n grid of samples spread over the
// footprint around pt that are inside under the nonzero rule.
func (r *PathRegion) Coverage(pt, footprint mathutil.Vec2, n int) float32 {
	if n < 1 {
		n = 1
	}
	inside := 0
	for j := 0; j < n; j++ {
		oy := ((float64(j)+0.5)/float64(n) - 0.5) * footprint.Y
		for i := 0; i < n; i++ {
			ox := ((float64(i)+0.5)/float64(n) - 0.5) * footprint.X
			if r.Winding(pt.Add(mathutil.V2(ox, oy))) != 0 {
				inside++
			}
		}
	}
	return float32(inside) / float32(n*n)
}
