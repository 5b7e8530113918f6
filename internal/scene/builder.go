package scene

import (
	"github.com/chewxy/math32"

	"uiraster/internal/color"
)

// Rect is a rectangle in logical (pre scale factor) units.
type Rect struct {
	Origin Vec2
	Size   Vec2
}

// Border describes which edges of a quad carry a border of Width logical units.
type Border struct {
	Width  float32
	Color  color.RGBA8
	Top    bool
	Right  bool
	Bottom bool
	Left   bool
}

// AllSides returns a border of width w on every edge.
func AllSides(w float32, c color.RGBA8) Border {
	return Border{Width: w, Color: c, Top: true, Right: true, Bottom: true, Left: true}
}

// QuadStyle is the logical description of a quad handed to the builder.
type QuadStyle struct {
	Background   color.RGBA8
	Border       Border
	CornerRadius float32
}

// AtlasEntry locates content inside the atlas: its top-left texel and its
// native size in texels. Offset is added to a glyph's snapped origin.
type AtlasEntry struct {
	Origin  Vec2
	Size    Vec2
	Offset  Vec2
	Winding bool
}

// Builder assembles a Scene the way a layout pass would: layers paint in
// push order, every layer draws its quads below its sprites, and logical
// units are multiplied by the device scale factor and snapped to the pixel
// grid.
type Builder struct {
	// ScaleFactor converts logical units to device pixels.
	ScaleFactor float32
	// LayerZFactor is the z distance between consecutive primitive groups.
	LayerZFactor float32

	scene Scene
	layer int
}

// NewBuilder starts a scene with the given uniforms, atlas name and device
// scale factor. A non-positive scale factor means 1.
func NewBuilder(u FrameUniforms, atlas string, scaleFactor float32) *Builder {
	if !positive(scaleFactor) {
		scaleFactor = 1
	}
	return &Builder{
		ScaleFactor:  scaleFactor,
		LayerZFactor: 1,
		scene:        Scene{Atlas: atlas, Uniforms: u},
	}
}

// PushLayer starts a new layer; everything added afterwards is nearer than
// everything added before.
func (b *Builder) PushLayer() {
	b.layer++
}

// Layer returns the index of the current layer.
func (b *Builder) Layer() int {
	return b.layer
}

// Each layer owns three z slots (quads, reserved, sprites). Smaller z is
// nearer, so later layers get more negative values.
func (b *Builder) quadZ() float32 {
	return -float32(b.layer*3) * b.LayerZFactor
}

func (b *Builder) spriteZ() float32 {
	return -float32(b.layer*3+2) * b.LayerZFactor
}

func round(v float32) float32 {
	return math32.Floor(v + 0.5)
}

// Quad adds a quad covering bounds.
func (b *Builder) Quad(bounds Rect, style QuadStyle) {
	sf := b.ScaleFactor
	bw := style.Border.Width * sf
	edge := func(on bool) float32 {
		if on {
			return bw
		}
		return 0
	}
	b.scene.Quads = append(b.scene.Quads, Quad{
		Origin:       Vec2{round(bounds.Origin.X * sf), round(bounds.Origin.Y * sf)},
		Size:         Vec2{round(bounds.Size.X * sf), round(bounds.Size.Y * sf)},
		Background:   style.Background,
		BorderTop:    edge(style.Border.Top),
		BorderRight:  edge(style.Border.Right),
		BorderBottom: edge(style.Border.Bottom),
		BorderLeft:   edge(style.Border.Left),
		BorderColor:  style.Border.Color,
		CornerRadius: style.CornerRadius * sf,
		Z:            b.quadZ(),
	})
}

// Glyph adds a glyph sprite whose pen position is origin. The origin is
// floored to the pixel grid before the entry's offset is applied, so glyph
// bitmaps stay texel-aligned.
func (b *Builder) Glyph(origin Vec2, e AtlasEntry, tint color.RGBA8) {
	sf := b.ScaleFactor
	o := Vec2{math32.Floor(origin.X*sf) + e.Offset.X, math32.Floor(origin.Y*sf) + e.Offset.Y}
	b.scene.Sprites = append(b.scene.Sprites, Sprite{
		Origin:      o,
		TargetSize:  e.Size,
		SourceSize:  e.Size,
		AtlasOrigin: e.Origin,
		Color:       tint,
		Winding:     e.Winding,
		Z:           b.spriteZ(),
	})
}

// Icon adds an icon drawn into bounds. The target size is rounded up to
// whole pixels; the atlas entry is usually rendered at IconSourceSize.
func (b *Builder) Icon(bounds Rect, e AtlasEntry, tint color.RGBA8) {
	sf := b.ScaleFactor
	b.scene.Sprites = append(b.scene.Sprites, Sprite{
		Origin:      Vec2{math32.Floor(bounds.Origin.X * sf), math32.Floor(bounds.Origin.Y * sf)},
		TargetSize:  Vec2{math32.Ceil(bounds.Size.X * sf), math32.Ceil(bounds.Size.Y * sf)},
		SourceSize:  e.Size,
		AtlasOrigin: e.Origin,
		Color:       tint,
		Winding:     e.Winding,
		Z:           b.spriteZ(),
	})
}

// IconSourceSize is the atlas size an icon for bounds should be rendered at:
// twice its device-pixel target size.
func (b *Builder) IconSourceSize(bounds Rect) Vec2 {
	sf := b.ScaleFactor
	return Vec2{math32.Ceil(bounds.Size.X*sf) * 2, math32.Ceil(bounds.Size.Y*sf) * 2}
}

// Scene returns the scene built so far. The builder keeps ownership of the
// slices; call Scene once when done.
func (b *Builder) Scene() *Scene {
	sc := b.scene
	return &sc
}
