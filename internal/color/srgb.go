package color

import "math"

// Gamma is the display gamma used for the linear blend space.
const Gamma = 2.2

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float32

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = float32(math.Pow(float64(i)/255.0, Gamma))
	}
}

func decode(v uint8, space Space) float32 {
	if space == SpaceLinear {
		return srgbToLinear[v]
	}
	return float32(v) / 255
}

func encode(v float32, space Space) uint8 {
	v = clamp01(v)
	if space == SpaceLinear {
		return quantize(float32(math.Pow(float64(v), 1/Gamma)))
	}
	return quantize(v)
}
