package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tol = 1e-9

func TestRotXYZOrder(t *testing.T) {
	// X first: a 90° X rotation moves +Y to +Z, then a 90° Y rotation moves +Z to +X.
	m := RotXYZ(math.Pi/2, math.Pi/2, 0)
	v := m.MulVec3(Vec3{0, 1, 0})
	assert.InDelta(t, 1, v[0], tol)
	assert.InDelta(t, 0, v[1], tol)
	assert.InDelta(t, 0, v[2], tol)
}

func TestInverse(t *testing.T) {
	m := Mat3{2, 0.5, 3, 0, 1.5, -1, 0.001, 0.002, 1}
	inv, ok := m.Inverse()
	assert.True(t, ok)
	id := m.Mul(inv)
	for i, want := range Identity3() {
		assert.InDelta(t, want, id[i], 1e-9, "element %d", i)
	}

	_, ok = Mat3{}.Inverse()
	assert.False(t, ok)
}

func TestProject(t *testing.T) {
	m := Mat3{2, 0, 0, 0, 2, 0, 0, 0, 2}
	p, w := m.Project(V2(3, 4))
	assert.Equal(t, 2.0, w)
	assert.Equal(t, V2(3, 4), p)

	_, w = Mat3{}.Project(V2(1, 1))
	assert.Zero(t, w)
}

func TestDegRad(t *testing.T) {
	assert.InDelta(t, math.Pi, Deg2Rad(180), tol)
	assert.InDelta(t, 90, Rad2Deg(math.Pi/2), tol)
}

func TestVectorOps(t *testing.T) {
	assert.Equal(t, Vec3{5, 7, 9}, Vec3{1, 2, 3}.Add(Vec3{4, 5, 6}))
	assert.Equal(t, Vec3{2, 4, 6}, Vec3{1, 2, 3}.Scale(2))
	assert.Equal(t, V2(4, -2), V2(1, 2).Add(V2(3, -4)))
	assert.Equal(t, V2(-2, 6), V2(1, 2).Sub(V2(3, -4)))
	assert.Equal(t, V2(3, -8), V2(1, 2).Mul(V2(3, -4)))
}
