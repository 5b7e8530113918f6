// Package scene defines the records a frame is described with: one
// FrameUniforms plus ordered sequences of quads and sprites. The records are
// plain values with a fixed binary layout (see wire.go); two bit-identical
// records are interchangeable.
package scene

import (
	"errors"

	"github.com/chewxy/math32"

	"uiraster/internal/color"
)

// Viewport limits. Larger frames are rejected rather than allocated.
const (
	MaxViewportSide   = 1 << 15
	MaxViewportPixels = 1 << 27
)

var (
	// ErrInvalidViewport reports a viewport with a non-positive or NaN side,
	// or one past MaxViewportSide or MaxViewportPixels.
	ErrInvalidViewport = errors.New("scene: viewport must be positive and within limits")
	// ErrInvalidScale reports a non-positive or NaN scale.
	ErrInvalidScale = errors.New("scene: scale must be positive")
)

// Vec2 is a pair of 32-bit floats, the unit of every geometric record field.
type Vec2 struct {
	X, Y float32
}

// FrameUniforms holds the per-frame view parameters. Angles are radians.
type FrameUniforms struct {
	ViewportSize Vec2
	Scale        float32
	RotateX      float32
	RotateY      float32
	RotateZ      float32
	FOV          float32
	Opacity      float32
}

// DefaultUniforms returns an untransformed, fully opaque frame of w×h pixels.
func DefaultUniforms(w, h float32) FrameUniforms {
	return FrameUniforms{ViewportSize: Vec2{w, h}, Scale: 1, Opacity: 1}
}

// Validate checks the fatal preconditions of a frame. Opacity is not checked
// here; it is clamped by ClampedOpacity instead.
func (u FrameUniforms) Validate() error {
	w, h := u.ViewportSize.X, u.ViewportSize.Y
	if !positive(w) || !positive(h) {
		return ErrInvalidViewport
	}
	if w > MaxViewportSide || h > MaxViewportSide ||
		float64(math32.Ceil(w))*float64(math32.Ceil(h)) > MaxViewportPixels {
		return ErrInvalidViewport
	}
	if !positive(u.Scale) {
		return ErrInvalidScale
	}
	return nil
}

// ClampedOpacity returns Opacity clamped to [0,1]. NaN counts as opaque.
func (u FrameUniforms) ClampedOpacity() float32 {
	if math32.IsNaN(u.Opacity) {
		return 1
	}
	return math32.Min(math32.Max(u.Opacity, 0), 1)
}

// Quad is an axis-aligned rectangle with per-edge borders and one corner
// radius shared by all four corners.
type Quad struct {
	Origin       Vec2
	Size         Vec2
	Background   color.RGBA8
	BorderTop    float32
	BorderRight  float32
	BorderBottom float32
	BorderLeft   float32
	BorderColor  color.RGBA8
	CornerRadius float32
	Z            float32
}

// Malformed reports geometry the rasterizer must never see: a negative or NaN
// size.
func (q Quad) Malformed() bool {
	return !(q.Size.X >= 0) || !(q.Size.Y >= 0)
}

// ClampedCornerRadius returns the corner radius limited to [0, min(w,h)/2].
func (q Quad) ClampedCornerRadius() float32 {
	r := q.CornerRadius
	if math32.IsNaN(r) || r < 0 {
		return 0
	}
	limit := math32.Min(math32.Max(q.Size.X, 0), math32.Max(q.Size.Y, 0)) / 2
	return math32.Min(r, limit)
}

// Borders returns the border widths in top, right, bottom, left order with
// negative or NaN widths replaced by 0.
func (q Quad) Borders() [4]float32 {
	return [4]float32{
		nonNegative(q.BorderTop),
		nonNegative(q.BorderRight),
		nonNegative(q.BorderBottom),
		nonNegative(q.BorderLeft),
	}
}

// Sprite is one atlas-backed instance: a source rectangle of the atlas drawn
// into a target rectangle of the scene.
type Sprite struct {
	Origin      Vec2
	TargetSize  Vec2
	SourceSize  Vec2
	AtlasOrigin Vec2
	Color       color.RGBA8
	// Winding selects nonzero-winding coverage over a vector path region
	// instead of direct sampling of bitmap texels.
	Winding bool
	Z       float32
}

// Malformed reports a sprite whose target or source size is not positive.
func (s Sprite) Malformed() bool {
	return !positive(s.TargetSize.X) || !positive(s.TargetSize.Y) ||
		!positive(s.SourceSize.X) || !positive(s.SourceSize.Y)
}

// Scene is one frame's worth of records plus the name of the atlas the
// sprites refer to.
type Scene struct {
	Atlas    string
	Uniforms FrameUniforms
	Quads    []Quad
	Sprites  []Sprite
}

func positive(v float32) bool {
	return v > 0 && !math32.IsInf(v, 1)
}

func nonNegative(v float32) float32 {
	if math32.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
