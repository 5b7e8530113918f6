package mathutil

import "math"

// RotX returns a rotation around the X axis. Angle in radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotY returns a rotation around the Y axis.
func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// RotZ returns a rotation around the Z axis.
func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// RotXYZ applies X first, then Y, then Z: Rz × Ry × Rx.
func RotXYZ(x, y, z float64) Mat3 {
	return RotZ(z).Mul(RotY(y)).Mul(RotX(x))
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return r * 180 / math.Pi
}
