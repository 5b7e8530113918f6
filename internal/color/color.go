// Package color holds the two color representations of the renderer and the
// conversions between them.
//
// RGBA8 is the wire representation used by every quad and sprite record:
// straight (non-premultiplied) alpha, sRGB-encoded channels. Premul is the
// blending representation: premultiplied float32 channels in the blend space
// chosen for the frame. All compositing happens on Premul values so the quad
// and sprite paths cannot disagree on the convention.
package color

import (
	"fmt"
	"strconv"
	"strings"
)

// Space selects the space blending happens in.
type Space uint8

const (
	// SpaceSRGB blends the encoded channels directly, like a GPU writing
	// into a non-sRGB render target.
	SpaceSRGB Space = iota
	// SpaceLinear decodes to linear light before blending and encodes again
	// when the frame is resolved.
	SpaceLinear
)

// RGBA8 is a straight-alpha, sRGB-encoded color with 8-bit channels.
type RGBA8 struct {
	R, G, B, A uint8
}

// Transparent is the zero color.
var Transparent = RGBA8{}

// Premul is a premultiplied color with float32 channels in [0,1].
type Premul struct {
	R, G, B, A float32
}

// Premul converts c into the blend space and premultiplies it.
func (c RGBA8) Premul(space Space) Premul {
	a := float32(c.A) / 255
	return Premul{decode(c.R, space) * a, decode(c.G, space) * a, decode(c.B, space) * a, a}
}

// Straight returns the unpremultiplied float channels of c in the blend space.
func (c RGBA8) Straight(space Space) (r, g, b, a float32) {
	return decode(c.R, space), decode(c.G, space), decode(c.B, space), float32(c.A) / 255
}

// Scale multiplies every channel by k, which is how coverage and opacity are
// applied to a premultiplied color.
func (p Premul) Scale(k float32) Premul {
	return Premul{p.R * k, p.G * k, p.B * k, p.A * k}
}

// Over composites p over dst (Porter-Duff source-over on premultiplied
// values): S + D*(1-Sa).
func (p Premul) Over(dst Premul) Premul {
	inv := 1 - p.A
	return Premul{
		p.R + dst.R*inv,
		p.G + dst.G*inv,
		p.B + dst.B*inv,
		p.A + dst.A*inv,
	}
}

// Mix linearly interpolates between a (t=0) and b (t=1). Mixing a color with
// itself returns it unchanged for any t.
func Mix(a, b Premul, t float32) Premul {
	return Premul{
		a.R + (b.R-a.R)*t,
		a.G + (b.G-a.G)*t,
		a.B + (b.B-a.B)*t,
		a.A + (b.A-a.A)*t,
	}
}

// NRGBA resolves p back to straight 8-bit channels in sRGB encoding.
func (p Premul) NRGBA(space Space) RGBA8 {
	if p.A <= 0 {
		return Transparent
	}
	inv := 1 / p.A
	return RGBA8{
		encode(p.R*inv, space),
		encode(p.G*inv, space),
		encode(p.B*inv, space),
		quantize(p.A),
	}
}

// RGBA resolves p to premultiplied 8-bit channels in sRGB encoding, the
// layout of image.RGBA.
func (p Premul) RGBA(space Space) RGBA8 {
	s := p.NRGBA(space)
	a := uint32(s.A)
	return RGBA8{
		uint8((uint32(s.R)*a + 127) / 255),
		uint8((uint32(s.G)*a + 127) / 255),
		uint8((uint32(s.B)*a + 127) / 255),
		s.A,
	}
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHex(s string) (RGBA8, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return RGBA8{}, fmt.Errorf("color: invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGBA8{}, fmt.Errorf("color: invalid hex color %q: %w", s, err)
	}
	return RGBA8{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Hex formats c as "#rrggbbaa".
func (c RGBA8) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c RGBA8) String() string {
	return c.Hex()
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func quantize(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
