package mathutil

// Vec3 is a 3-component vector (value type, stack-allocated). The transform
// resolver uses it for points of the scene plane embedded at z = 0.
type Vec3 [3]float64

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}
