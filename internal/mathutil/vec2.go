package mathutil

import "math"

// Vec2 is a 2-component vector in scene or device space.
type Vec2 struct {
	X, Y float64
}

func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{v.X + w.X, v.Y + w.Y}
}

func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{v.X - w.X, v.Y - w.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Mul multiplies component-wise.
func (v Vec2) Mul(w Vec2) Vec2 {
	return Vec2{v.X * w.X, v.Y * w.Y}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) Abs() Vec2 {
	return Vec2{math.Abs(v.X), math.Abs(v.Y)}
}
