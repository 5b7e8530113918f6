package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uiraster/internal/color"
	"uiraster/internal/mathutil"
	"uiraster/internal/scene"
)

var (
	red   = color.RGBA8{R: 255, A: 255}
	green = color.RGBA8{G: 255, A: 255}
	blue  = color.RGBA8{B: 255, A: 255}
	white = color.RGBA8{R: 255, G: 255, B: 255, A: 255}
)

func opaque() Shading {
	return Shading{Opacity: 1, Space: color.SpaceSRGB, WindingSamples: DefaultWindingSamples}
}

func assertPremul(t *testing.T, want, got color.Premul, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.G, got.G, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.B, got.B, 1e-5, msgAndArgs...)
	assert.InDelta(t, want.A, got.A, 1e-5, msgAndArgs...)
}

// rectWithBorder is the plain reference: a pixel is border colored when it
// lies inside any of the four bands, background inside the inner box, and
// uncovered outside the rectangle.
func rectWithBorder(q scene.Quad, p mathutil.Vec2) color.Premul {
	w, h := float64(q.Size.X), float64(q.Size.Y)
	if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
		return color.Premul{}
	}
	b := q.Borders()
	if p.Y < float64(b[0]) || p.X >= w-float64(b[1]) || p.Y >= h-float64(b[2]) || p.X < float64(b[3]) {
		return q.BorderColor.Premul(color.SpaceSRGB)
	}
	return q.Background.Premul(color.SpaceSRGB)
}

func TestQuadSquareCornersMatchRect(t *testing.T) {
	quads := []scene.Quad{
		{Size: scene.Vec2{X: 20, Y: 20}, Background: blue, BorderColor: red,
			BorderTop: 2, BorderRight: 3, BorderBottom: 4, BorderLeft: 1},
		{Size: scene.Vec2{X: 30, Y: 12}, Background: green, BorderColor: white,
			BorderTop: 3, BorderRight: 3, BorderBottom: 3, BorderLeft: 3},
		{Size: scene.Vec2{X: 16, Y: 16}, Background: green, BorderColor: red},
		{Size: scene.Vec2{X: 9, Y: 7}, Background: blue, BorderColor: red,
			BorderTop: 3, BorderLeft: 2},
		// Bands wider than half the quad reach past the center line.
		{Size: scene.Vec2{X: 40, Y: 40}, Background: blue, BorderColor: red,
			BorderLeft: 30},
		{Size: scene.Vec2{X: 4, Y: 20}, Background: blue, BorderColor: red,
			BorderLeft: 3},
		{Size: scene.Vec2{X: 12, Y: 30}, Background: green, BorderColor: white,
			BorderTop: 2, BorderBottom: 25, BorderRight: 9},
	}
	for qi, q := range quads {
		for y := -2; y < int(q.Size.Y)+2; y++ {
			for x := -2; x < int(q.Size.X)+2; x++ {
				p := mathutil.V2(float64(x)+0.5, float64(y)+0.5)
				want := rectWithBorder(q, p)
				got := ShadeQuad(q, p, 1, opaque())
				require.Equal(t, want, got, "quad %d at %v", qi, p)
			}
		}
	}
}

func TestQuadArcCoverage(t *testing.T) {
	q := scene.Quad{
		Size:         scene.Vec2{X: 100, Y: 100},
		Background:   white,
		CornerRadius: 20,
	}
	// Top-left arc is centered at (20, 20); walk outwards along the diagonal.
	center := mathutil.V2(20, 20)
	dir := mathutil.V2(-1, -1).Scale(1 / math.Sqrt2)
	at := func(d float64) float32 {
		return ShadeQuad(q, center.Add(dir.Scale(d)), 1, opaque()).A
	}

	onArc := at(20)
	assert.InDelta(t, 0.5, onArc, 1e-4, "a point on the arc is half covered")
	assert.Greater(t, onArc, float32(0))
	assert.Equal(t, float32(0), at(21), "one unit outside the arc")
	assert.Equal(t, float32(1), at(19))

	prev := at(15)
	for d := 15.0; d <= 22; d += 0.125 {
		cur := at(d)
		assert.LessOrEqual(t, cur, prev, "coverage grows at %v", d)
		prev = cur
	}

	// The rectangle corner itself lies outside the rounded shape.
	assert.Equal(t, float32(0), ShadeQuad(q, mathutil.V2(0.5, 0.5), 1, opaque()).A)
}

func TestQuadCornerRadiusClamped(t *testing.T) {
	q := scene.Quad{Size: scene.Vec2{X: 20, Y: 10}, Background: white, CornerRadius: 1000}
	clamped := q
	clamped.CornerRadius = 5
	for _, p := range []mathutil.Vec2{{X: 1, Y: 1}, {X: 10, Y: 5}, {X: 19.5, Y: 9.5}, {X: 2.5, Y: 5}} {
		assert.Equal(t, ShadeQuad(clamped, p, 1, opaque()), ShadeQuad(q, p, 1, opaque()), "at %v", p)
	}
}

func TestQuadCornerTieAverages(t *testing.T) {
	q := scene.Quad{
		Size:        scene.Vec2{X: 40, Y: 40},
		Background:  blue,
		BorderColor: red,
		BorderTop:   4,
		BorderLeft:  8,
	}
	// (6, 2) overshoots the inner corner (8, 4) by 2 on both axes.
	got := ShadeQuad(q, mathutil.V2(6, 2), 16, opaque())

	bg := blue.Premul(color.SpaceSRGB)
	border := red.Premul(color.SpaceSRGB)
	// distance -2, averaged width 6, ramp 16
	want := color.Mix(border, bg, 0.25).Scale(0.625)
	assertPremul(t, want, got)
}

func TestQuadRotationSymmetry(t *testing.T) {
	const side = 40
	q := scene.Quad{
		Size:         scene.Vec2{X: side, Y: side},
		Background:   blue,
		BorderColor:  red,
		BorderTop:    2,
		BorderRight:  5,
		BorderBottom: 7,
		BorderLeft:   5,
		CornerRadius: 6,
	}
	// Rotating the square 90° clockwise moves the left border to the top.
	rot := q
	rot.BorderTop, rot.BorderRight, rot.BorderBottom, rot.BorderLeft =
		q.BorderLeft, q.BorderTop, q.BorderRight, q.BorderBottom

	for y := 0.25; y < side; y += 1 {
		for x := 0.25; x < side; x += 1 {
			p := mathutil.V2(x, y)
			r := mathutil.V2(side-y, x)
			assert.Equal(t, ShadeQuad(q, p, 3, opaque()), ShadeQuad(rot, r, 3, opaque()), "at %v", p)
		}
	}
}

func TestQuadOpacity(t *testing.T) {
	q := scene.Quad{Size: scene.Vec2{X: 10, Y: 10}, Background: color.RGBA8{R: 255, A: 128}}
	sh := opaque()
	sh.Opacity = 0.5
	got := ShadeQuad(q, mathutil.V2(5, 5), 1, sh)
	assert.InDelta(t, 128.0/255*0.5, got.A, 1e-6)
	assert.InDelta(t, got.A, got.R, 1e-6)
}

func TestQuadEmpty(t *testing.T) {
	q := scene.Quad{Background: white}
	assert.Equal(t, color.Premul{}, ShadeQuad(q, mathutil.V2(0, 0), 1, opaque()))
}
