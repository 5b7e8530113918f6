package glyphs

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uiraster/internal/atlas"
	"uiraster/internal/color"
	"uiraster/internal/mathutil"
	"uiraster/internal/scene"
)

func regular(t *testing.T) *Font {
	t.Helper()
	f, err := Regular()
	require.NoError(t, err)
	return f
}

func TestOutlineHole(t *testing.T) {
	f := regular(t)
	o, err := f.Outline('O', 64)
	require.NoError(t, err)
	require.NotNil(t, o.Path)
	assert.Greater(t, o.Advance, 0.0)
	assert.Less(t, o.Offset.Y, float32(0), "glyph sits above the baseline")

	a := atlas.NewBlank(o.Size.X, o.Size.Y)
	r, err := a.AddPath(image.Rectangle{Max: o.Size}, o.Path)
	require.NoError(t, err)

	mid := float64(o.Size.Y) / 2
	center := mathutil.V2(float64(o.Size.X)/2, mid)
	assert.Zero(t, r.Winding(center), "the counter of O is a hole")

	var ink bool
	for x := 0.5; x < float64(o.Size.X)/2; x++ {
		if r.Winding(mathutil.V2(x, mid)) != 0 {
			ink = true
			break
		}
	}
	assert.True(t, ink, "the left stroke is inside")
	assert.Zero(t, r.Winding(mathutil.V2(0.25, 0.25)), "padding is empty")
}

func TestOutlineSpace(t *testing.T) {
	o, err := regular(t).Outline(' ', 32)
	require.NoError(t, err)
	assert.Nil(t, o.Path)
	assert.Greater(t, o.Advance, 0.0)
}

func TestSheetText(t *testing.T) {
	a := atlas.NewBlank(256, 64)
	s := NewSheet(a, image.Rect(0, 0, 256, 64), regular(t), 24)
	b := scene.NewBuilder(scene.DefaultUniforms(200, 50), "ui", 2)

	adv, err := s.Text(b, scene.Vec2{X: 10, Y: 30}, "Hi yo", color.RGBA8{A: 255})
	require.NoError(t, err)
	assert.Greater(t, adv, float32(0))

	sc := b.Scene()
	require.Len(t, sc.Sprites, 4)
	assert.Len(t, a.Paths(), 4)
	for _, sp := range sc.Sprites {
		assert.True(t, sp.Winding)
		assert.Equal(t, sp.TargetSize, sp.SourceSize)
		org := mathutil.V2(float64(sp.AtlasOrigin.X), float64(sp.AtlasOrigin.Y))
		size := mathutil.V2(float64(sp.SourceSize.X), float64(sp.SourceSize.Y))
		assert.NotNil(t, a.PathAt(org, size))
	}

	// Repeated runes reuse their region.
	_, err = s.Text(b, scene.Vec2{X: 10, Y: 45}, "oH", color.RGBA8{A: 255})
	require.NoError(t, err)
	assert.Len(t, a.Paths(), 4)
}

func TestSheetFull(t *testing.T) {
	a := atlas.NewBlank(64, 64)
	s := NewSheet(a, image.Rect(0, 0, 20, 20), regular(t), 48)
	_, _, _, err := s.Entry('W')
	assert.ErrorIs(t, err, ErrSheetFull)
}
