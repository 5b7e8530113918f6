package raster

import (
	"image"

	"uiraster/internal/atlas"
	"uiraster/internal/color"
	"uiraster/internal/mathutil"
	"uiraster/internal/scene"
)

// Shading carries the per-frame parameters the shaders read.
type Shading struct {
	// Opacity is the frame opacity, already clamped to [0,1].
	Opacity float32
	Space   color.Space
	Atlas   *atlas.Atlas
	// WindingSamples is the side of the sub-sample grid used for winding
	// coverage.
	WindingSamples int
}

// spriteShader is a sprite with its atlas lookups done once.
type spriteShader struct {
	s      scene.Sprite
	origin mathutil.Vec2
	ratio  mathutil.Vec2
	clip   image.Rectangle
	region *atlas.PathRegion
	tint   color.Premul
	tr, tg float32
	tb, ta float32
}

func prepareSprite(s scene.Sprite, sh Shading) spriteShader {
	src := mathutil.V2(float64(s.SourceSize.X), float64(s.SourceSize.Y))
	ss := spriteShader{
		s:      s,
		origin: mathutil.V2(float64(s.AtlasOrigin.X), float64(s.AtlasOrigin.Y)),
		ratio: mathutil.V2(
			float64(s.SourceSize.X)/float64(s.TargetSize.X),
			float64(s.SourceSize.Y)/float64(s.TargetSize.Y),
		),
	}
	if sh.Atlas == nil {
		return ss
	}
	if s.Winding {
		ss.region = sh.Atlas.PathAt(ss.origin, src)
		ss.tint = s.Color.Premul(sh.Space)
	} else {
		ss.clip = sh.Atlas.SourceRect(ss.origin, src)
		ss.tr, ss.tg, ss.tb, ss.ta = s.Color.Straight(sh.Space)
	}
	return ss
}

// ShadeSprite returns the premultiplied color of s at p, a point relative to
// the sprite's origin in scene units; aa is one device pixel in scene units.
//
// p maps proportionally into the source rectangle of the atlas. Bitmap
// sprites sample the atlas bilinearly, clamped to the source rectangle, and
// multiply the sample by the tint. Winding sprites take their coverage from
// the path region under the source rectangle with the nonzero rule and use
// the tint color as is. A zero result means no coverage.
func ShadeSprite(s scene.Sprite, p mathutil.Vec2, aa float64, sh Shading) color.Premul {
	ss := prepareSprite(s, sh)
	return ss.shade(p, aa, sh)
}

func (ss *spriteShader) shade(p mathutil.Vec2, aa float64, sh Shading) color.Premul {
	if sh.Atlas == nil {
		return color.Premul{}
	}
	at := ss.origin.Add(p.Mul(ss.ratio))

	if ss.s.Winding {
		if ss.region == nil {
			return color.Premul{}
		}
		if !(aa > 0) {
			aa = 1
		}
		fp := ss.ratio.Scale(aa)
		cov := ss.region.Coverage(at, fp, sh.WindingSamples)
		if cov == 0 {
			return color.Premul{}
		}
		return ss.tint.Scale(cov * sh.Opacity)
	}

	smp := sh.Atlas.Sample(at, ss.clip, sh.Space)
	if smp.A == 0 {
		return color.Premul{}
	}
	k := ss.ta * sh.Opacity
	return color.Premul{
		R: smp.R * ss.tr * k,
		G: smp.G * ss.tg * k,
		B: smp.B * ss.tb * k,
		A: smp.A * k,
	}
}
