package transform

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uiraster/internal/mathutil"
	"uiraster/internal/scene"
)

func uniforms() scene.FrameUniforms {
	return scene.DefaultUniforms(200, 100)
}

func TestIdentity(t *testing.T) {
	tr := Resolve(uniforms())
	p := mathutil.V2(37.5, 12.25)

	q, ok := tr.ToScreen(p)
	require.True(t, ok)
	assert.InDelta(t, p.X, q.X, 1e-9)
	assert.InDelta(t, p.Y, q.Y, 1e-9)
	assert.InDelta(t, 1, tr.PixelFootprint(p), 1e-9)
}

func TestNDC(t *testing.T) {
	tr := Resolve(uniforms())
	tests := []struct {
		in, want mathutil.Vec2
	}{
		{mathutil.V2(0, 0), mathutil.V2(-1, 1)},
		{mathutil.V2(200, 100), mathutil.V2(1, -1)},
		{mathutil.V2(100, 50), mathutil.V2(0, 0)},
	}
	for _, tt := range tests {
		got, ok := tr.ToNDC(tt.in)
		require.True(t, ok)
		assert.InDelta(t, tt.want.X, got.X, 1e-9)
		assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
	}
}

func TestScale(t *testing.T) {
	u := uniforms()
	u.Scale = 2
	tr := Resolve(u)
	q, ok := tr.ToScreen(mathutil.V2(10, 20))
	require.True(t, ok)
	assert.InDelta(t, 20, q.X, 1e-9)
	assert.InDelta(t, 40, q.Y, 1e-9)
	assert.InDelta(t, 0.5, tr.PixelFootprint(q), 1e-9)
}

func TestRotateZInPlane(t *testing.T) {
	u := uniforms()
	u.RotateZ = math.Pi / 2
	tr := Resolve(u)
	// A quarter turn around the viewport center (100, 50).
	q, ok := tr.ToScreen(mathutil.V2(110, 50))
	require.True(t, ok)
	assert.InDelta(t, 100, q.X, 1e-9)
	assert.InDelta(t, 60, q.Y, 1e-9)
}

func TestTiltForeshortens(t *testing.T) {
	u := uniforms()
	u.RotateY = float32(mathutil.Deg2Rad(30))
	u.FOV = float32(mathutil.Deg2Rad(60))
	persp := Resolve(u)
	u.FOV = 0
	ortho := Resolve(u)
	require.True(t, persp.Perspective())
	require.False(t, ortho.Perspective())

	right := mathutil.V2(190, 50)
	left := mathutil.V2(10, 50)
	pr, ok := persp.ToScreen(right)
	require.True(t, ok)
	pl, ok := persp.ToScreen(left)
	require.True(t, ok)
	or, _ := ortho.ToScreen(right)
	ol, _ := ortho.ToScreen(left)

	// One side recedes and shrinks towards the center, the other comes
	// closer and grows away from it.
	assert.Less(t, math.Abs(pr.X-100), math.Abs(or.X-100))
	assert.Greater(t, math.Abs(pl.X-100), math.Abs(ol.X-100))
	// Orthographic tilt is symmetric.
	assert.InDelta(t, math.Abs(or.X-100), math.Abs(ol.X-100), 1e-9)
}

func TestNonPositiveFOVIsOrthographic(t *testing.T) {
	u := uniforms()
	u.RotateX = 0.4
	u.FOV = -1
	a := Resolve(u)
	u.FOV = 0
	b := Resolve(u)
	u.FOV = float32(math.NaN())
	c := Resolve(u)
	p := mathutil.V2(30, 70)
	qa, _ := a.ToScreen(p)
	qb, _ := b.ToScreen(p)
	qc, _ := c.ToScreen(p)
	assert.Equal(t, qb, qa)
	assert.Equal(t, qb, qc)
	assert.False(t, c.Perspective())
}

func TestRoundTrip(t *testing.T) {
	u := uniforms()
	u.Scale = 1.5
	u.RotateX = 0.3
	u.RotateY = -0.5
	u.RotateZ = 0.2
	u.FOV = 1
	tr := Resolve(u)

	for _, p := range []mathutil.Vec2{{X: 10, Y: 10}, {X: 80, Y: 40}, {X: 120, Y: 5}} {
		q, ok := tr.ToScreen(p)
		require.True(t, ok)
		back, ok := tr.ToScene(q)
		require.True(t, ok)
		assert.InDelta(t, p.X, back.X, 1e-6)
		assert.InDelta(t, p.Y, back.Y, 1e-6)
	}
}

func TestEdgeOnPlaneHasNoBounds(t *testing.T) {
	u := uniforms()
	u.RotateX = math.Pi / 2
	tr := Resolve(u)
	_, ok := tr.ToScene(mathutil.V2(10, 10))
	assert.False(t, ok)
	assert.True(t, tr.Bounds(mathutil.V2(0, 0), mathutil.V2(50, 50)).Empty())
}

func TestBounds(t *testing.T) {
	tr := Resolve(uniforms())
	assert.Equal(t, image.Rect(9, 19, 41, 61), tr.Bounds(mathutil.V2(10, 20), mathutil.V2(30, 40)))
	assert.Equal(t, image.Rect(0, 0, 11, 11), tr.Bounds(mathutil.V2(-50, -50), mathutil.V2(60, 60)))
	assert.True(t, tr.Bounds(mathutil.V2(500, 500), mathutil.V2(10, 10)).Empty())
}

func TestFOVCapped(t *testing.T) {
	u := uniforms()
	u.RotateY = 0.3
	u.FOV = 10
	tr := Resolve(u)
	_, ok := tr.ToScreen(mathutil.V2(100, 50))
	assert.True(t, ok)
}
