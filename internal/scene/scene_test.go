package scene

import (
	"bytes"
	"errors"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uiraster/internal/color"
)

func sampleScene() *Scene {
	return &Scene{
		Atlas: "ui.png",
		Uniforms: FrameUniforms{
			ViewportSize: Vec2{640, 480},
			Scale:        2,
			RotateX:      0.1,
			RotateY:      -0.2,
			RotateZ:      0.3,
			FOV:          0.8,
			Opacity:      0.75,
		},
		Quads: []Quad{{
			Origin:       Vec2{10, 20},
			Size:         Vec2{100, 50},
			Background:   color.RGBA8{R: 1, G: 2, B: 3, A: 4},
			BorderTop:    1,
			BorderRight:  2,
			BorderBottom: 3,
			BorderLeft:   4,
			BorderColor:  color.RGBA8{R: 200, G: 100, B: 50, A: 255},
			CornerRadius: 8,
			Z:            -3,
		}},
		Sprites: []Sprite{{
			Origin:      Vec2{5, 6},
			TargetSize:  Vec2{16, 16},
			SourceSize:  Vec2{32, 32},
			AtlasOrigin: Vec2{64, 0},
			Color:       color.RGBA8{R: 255, G: 255, B: 255, A: 255},
			Winding:     true,
			Z:           -5,
		}},
	}
}

func TestRecordLayout(t *testing.T) {
	q := Quad{Origin: Vec2{1, 2}, BorderColor: color.RGBA8{R: 9, G: 8, B: 7, A: 6}, Z: 1.5}
	b, err := q.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, QuadSize)
	assert.Equal(t, []byte{9, 8, 7, 6}, b[36:40])
	assert.Equal(t, math.Float32bits(1.5), le.Uint32(b[44:]))

	s := Sprite{Winding: true, Z: 2}
	b, err = s.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, SpriteSize)
	assert.Equal(t, byte(1), b[36])
	assert.Equal(t, []byte{0, 0, 0}, b[37:40])
	assert.Equal(t, math.Float32bits(2), le.Uint32(b[40:]))

	u := FrameUniforms{Opacity: 0.5}
	b, err = u.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, UniformsSize)
	assert.Equal(t, math.Float32bits(0.5), le.Uint32(b[28:]))
}

func TestSpriteWindingByte(t *testing.T) {
	b := make([]byte, SpriteSize)
	b[36] = 7
	var s Sprite
	require.NoError(t, s.UnmarshalBinary(b))
	assert.True(t, s.Winding)
}

func TestContainer(t *testing.T) {
	want := sampleScene()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))
	assert.Equal(t, headerSize+len(want.Atlas)+UniformsSize+QuadSize+SpriteSize, buf.Len())

	got, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodeErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleScene()))
	data := buf.Bytes()

	_, err := Decode(bytes.NewReader(data[:len(data)-1]))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "got %v", err)

	_, err = Decode(bytes.NewReader(data[:3]))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "got %v", err)

	bad := append([]byte("NOPE"), data[4:]...)
	_, err = Decode(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrBadMagic)

	v2 := append([]byte(nil), data...)
	le.PutUint16(v2[4:], 2)
	_, err = Decode(bytes.NewReader(v2))
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestYAML(t *testing.T) {
	src := []byte(`
atlas: icons.png
viewport: [320, 200]
rotate: {y: 30}
fov: 60
quads:
  - origin: [10, 10]
    size: [100, 40]
    background: "#336699"
    border: {top: 2, left: 1}
    border_color: "#ffffff80"
    corner_radius: 6
    z: 1
sprites:
  - origin: [0, 0]
    target_size: [16, 16]
    source_size: [16, 16]
    atlas_origin: [32, 0]
    winding: true
`)
	sc, err := ParseYAML(src)
	require.NoError(t, err)
	assert.Equal(t, "icons.png", sc.Atlas)
	assert.Equal(t, float32(1), sc.Uniforms.Scale)
	assert.Equal(t, float32(1), sc.Uniforms.Opacity)
	assert.InDelta(t, math.Pi/6, sc.Uniforms.RotateY, 1e-6)
	assert.InDelta(t, math.Pi/3, sc.Uniforms.FOV, 1e-6)
	require.Len(t, sc.Quads, 1)
	assert.Equal(t, color.RGBA8{R: 0x33, G: 0x66, B: 0x99, A: 0xff}, sc.Quads[0].Background)
	assert.Equal(t, float32(2), sc.Quads[0].BorderTop)
	assert.Equal(t, float32(0), sc.Quads[0].BorderRight)
	require.Len(t, sc.Sprites, 1)
	assert.Equal(t, color.RGBA8{R: 255, G: 255, B: 255, A: 255}, sc.Sprites[0].Color)
	assert.True(t, sc.Sprites[0].Winding)

	_, err = ParseYAML([]byte("viewport: [1, 1]\nbogus: 1\n"))
	assert.Error(t, err)
	_, err = ParseYAML([]byte("viewport: [1, 1]\nquads:\n  - background: \"#12\"\n"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	want := sampleScene()

	for _, name := range []string{"a.qsb", "a.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, want))
		got, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, want.Atlas, got.Atlas, name)
		assert.Equal(t, want.Quads, got.Quads, name)
		assert.Equal(t, want.Sprites, got.Sprites, name)
		assert.InDelta(t, want.Uniforms.RotateZ, got.Uniforms.RotateZ, 1e-6, name)
		assert.InDelta(t, want.Uniforms.FOV, got.Uniforms.FOV, 1e-6, name)
		assert.Equal(t, want.Uniforms.Opacity, got.Uniforms.Opacity, name)
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.Error(t, Save(filepath.Join(dir, "a.txt"), want))
	assert.True(t, IsSceneFile("x.YML"))
	assert.False(t, IsSceneFile("x.png"))
}

func TestValidate(t *testing.T) {
	u := DefaultUniforms(10, 10)
	assert.NoError(t, u.Validate())

	u.ViewportSize.X = 0
	assert.ErrorIs(t, u.Validate(), ErrInvalidViewport)

	u = DefaultUniforms(10, float32(math.NaN()))
	assert.ErrorIs(t, u.Validate(), ErrInvalidViewport)

	u = DefaultUniforms(3e9, 3e9)
	assert.ErrorIs(t, u.Validate(), ErrInvalidViewport)

	u = DefaultUniforms(MaxViewportSide, MaxViewportPixels/MaxViewportSide)
	assert.NoError(t, u.Validate())
	u.ViewportSize.Y++
	assert.ErrorIs(t, u.Validate(), ErrInvalidViewport)

	u = DefaultUniforms(10, 10)
	u.Scale = -1
	assert.ErrorIs(t, u.Validate(), ErrInvalidScale)
}

func TestClamping(t *testing.T) {
	u := FrameUniforms{Opacity: 3}
	assert.Equal(t, float32(1), u.ClampedOpacity())
	u.Opacity = -1
	assert.Equal(t, float32(0), u.ClampedOpacity())

	q := Quad{Size: Vec2{40, 100}, CornerRadius: 500}
	assert.Equal(t, float32(20), q.ClampedCornerRadius())
	q.CornerRadius = -3
	assert.Equal(t, float32(0), q.ClampedCornerRadius())
	q.BorderLeft = -2
	q.BorderTop = 1
	assert.Equal(t, [4]float32{1, 0, 0, 0}, q.Borders())

	assert.True(t, Quad{Size: Vec2{-1, 5}}.Malformed())
	assert.False(t, Quad{Size: Vec2{0, 5}}.Malformed())
	assert.True(t, Sprite{TargetSize: Vec2{1, 1}}.Malformed())
}

func TestBuilderLayers(t *testing.T) {
	b := NewBuilder(DefaultUniforms(100, 100), "atlas.png", 2)
	white := color.RGBA8{R: 255, G: 255, B: 255, A: 255}

	b.Quad(Rect{Vec2{1.2, 2.3}, Vec2{10.4, 5}}, QuadStyle{
		Background:   white,
		Border:       Border{Width: 1, Color: white, Top: true},
		CornerRadius: 3,
	})
	b.PushLayer()
	b.Glyph(Vec2{3.7, 4.2}, AtlasEntry{Origin: Vec2{8, 0}, Size: Vec2{6, 9}, Offset: Vec2{1, -7}}, white)
	bounds := Rect{Vec2{0, 0}, Vec2{10.2, 10.2}}
	src := b.IconSourceSize(bounds)
	b.Icon(bounds, AtlasEntry{Size: src, Winding: true}, white)

	sc := b.Scene()
	require.Len(t, sc.Quads, 1)
	q := sc.Quads[0]
	assert.Equal(t, Vec2{2, 5}, q.Origin)
	assert.Equal(t, Vec2{21, 10}, q.Size)
	assert.Equal(t, float32(2), q.BorderTop)
	assert.Equal(t, float32(0), q.BorderLeft)
	assert.Equal(t, float32(6), q.CornerRadius)
	assert.Equal(t, float32(0), q.Z)

	require.Len(t, sc.Sprites, 2)
	g := sc.Sprites[0]
	assert.Equal(t, Vec2{8, 1}, g.Origin)
	assert.Equal(t, float32(-5), g.Z)
	icon := sc.Sprites[1]
	assert.Equal(t, Vec2{21, 21}, icon.TargetSize)
	assert.Equal(t, Vec2{42, 42}, icon.SourceSize)
	assert.True(t, icon.Winding)
	assert.Less(t, g.Z, q.Z, "later layers are nearer")
}
