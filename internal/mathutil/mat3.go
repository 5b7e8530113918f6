package mathutil

import "math"

// Mat3 is a 3×3 matrix stored row-major: [r0c0, r0c1, r0c2, r1c0, ...].
// It doubles as a rotation matrix and as a 2D homography acting on (x, y, 1).
type Mat3 [9]float64

func Identity3() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mul returns m × b.
func (m Mat3) Mul(b Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i*3+j] = m[i*3]*b[j] + m[i*3+1]*b[3+j] + m[i*3+2]*b[6+j]
		}
	}
	return r
}

// MulVec3 returns m × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Col returns column c.
func (m Mat3) Col(c int) Vec3 {
	return Vec3{m[c], m[3+c], m[6+c]}
}

// Project applies m as a homography to the point (p.X, p.Y, 1) and returns
// the dehomogenized point together with the homogeneous w. Callers decide what
// a non-positive w means; Project itself never divides by zero.
func (m Mat3) Project(p Vec2) (Vec2, float64) {
	x := m[0]*p.X + m[1]*p.Y + m[2]
	y := m[3]*p.X + m[4]*p.Y + m[5]
	w := m[6]*p.X + m[7]*p.Y + m[8]
	if w == 0 {
		return Vec2{x, y}, 0
	}
	return Vec2{x / w, y / w}, w
}

func (m Mat3) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Inverse returns the inverse of m. ok is false when m is singular (or close
// enough to it that the inverse is meaningless), in which case the identity is
// returned.
func (m Mat3) Inverse() (inv Mat3, ok bool) {
	d := m.Det()
	if math.Abs(d) < 1e-12 || math.IsNaN(d) {
		return Identity3(), false
	}
	invD := 1.0 / d
	return Mat3{
		(m[4]*m[8] - m[5]*m[7]) * invD,
		(m[2]*m[7] - m[1]*m[8]) * invD,
		(m[1]*m[5] - m[2]*m[4]) * invD,
		(m[5]*m[6] - m[3]*m[8]) * invD,
		(m[0]*m[8] - m[2]*m[6]) * invD,
		(m[2]*m[3] - m[0]*m[5]) * invD,
		(m[3]*m[7] - m[4]*m[6]) * invD,
		(m[1]*m[6] - m[0]*m[7]) * invD,
		(m[0]*m[4] - m[1]*m[3]) * invD,
	}, true
}
