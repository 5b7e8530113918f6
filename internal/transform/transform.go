// Package transform resolves the per-frame view transform: scale, rotation
// of the scene plane around X, Y and Z, optional perspective, and the mapping
// to device pixels and normalized device coordinates.
package transform

import (
	"image"
	"math"

	"uiraster/internal/mathutil"
	"uiraster/internal/scene"
)

const (
	// MaxFOV caps the field of view just below 180°, where the camera
	// distance would reach zero.
	MaxFOV = 179 * math.Pi / 180

	// minDepth is the closest distance to the camera a point may have and
	// still be projected.
	minDepth = 0.1
)

// unitVertices are the two triangles every instance is drawn with.
var unitVertices = [6]mathutil.Vec2{
	{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
	{X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1},
}

// UnitVertices returns the unit-square corners of the two triangles every
// instance is drawn with. An instance scales them by its size and offsets
// them by its origin.
func UnitVertices() [6]mathutil.Vec2 {
	return unitVertices
}

// Transform maps scene space to device space for one frame. It is immutable
// and safe to share between rasterization workers.
type Transform struct {
	viewport mathutil.Vec2
	toScreen mathutil.Mat3
	toScene  mathutil.Mat3

	invertible  bool
	perspective bool
	// minW is the smallest homogeneous w a visible point may have.
	minW float64
	// footprint caches PixelFootprint for affine transforms, where it is
	// the same everywhere.
	footprint float64
}

// Resolve builds the transform for u. The composition order is: uniform
// scale, centering on the viewport, rotation X then Y then Z with the plane
// at z = 0, perspective division, and un-centering. A non-positive (or NaN)
// FOV gives an orthographic projection.
func Resolve(u scene.FrameUniforms) Transform {
	w, h := float64(u.ViewportSize.X), float64(u.ViewportSize.Y)
	s := float64(u.Scale)
	cx, cy := w/2, h/2

	R := mathutil.RotXYZ(float64(u.RotateX), float64(u.RotateY), float64(u.RotateZ))
	c0, c1 := R.Col(0).Scale(s), R.Col(1).Scale(s)
	// Rotated position of scene point p is c0*p.x + c1*p.y + t.
	t := R.Col(0).Scale(-cx).Add(R.Col(1).Scale(-cy))

	// k is 1/cameraDistance; zero means orthographic.
	var k float64
	fov := float64(u.FOV)
	perspective := fov > 0
	if perspective {
		fov = math.Min(fov, MaxFOV)
		dist := (math.Max(w, h) / 2) / math.Tan(fov/2)
		k = 1 / dist
	}

	// w = 1 - z*k, then x' = x + cx*w so the division by w re-centers.
	wRow := [3]float64{-c0[2] * k, -c1[2] * k, 1 - t[2]*k}
	H := mathutil.Mat3{
		c0[0] + cx*wRow[0], c1[0] + cx*wRow[1], t[0] + cx*wRow[2],
		c0[1] + cy*wRow[0], c1[1] + cy*wRow[1], t[1] + cy*wRow[2],
		wRow[0], wRow[1], wRow[2],
	}
	inv, ok := H.Inverse()

	tr := Transform{
		viewport:    mathutil.V2(w, h),
		toScreen:    H,
		toScene:     inv,
		invertible:  ok,
		perspective: perspective,
		minW:        minDepth * k,
	}
	if !perspective {
		tr.minW = 0
		if ok {
			tr.footprint = tr.footprintAt(mathutil.V2(0, 0))
		}
	}
	return tr
}

// Viewport returns the viewport size in pixels.
func (t Transform) Viewport() mathutil.Vec2 {
	return t.viewport
}

// Perspective reports whether the transform divides by depth.
func (t Transform) Perspective() bool {
	return t.perspective
}

func (t Transform) visible(w float64) bool {
	if t.perspective {
		return w >= t.minW
	}
	return w > 0
}

// ToScreen maps a scene point to device pixels. ok is false for points
// behind (or too close to) the camera.
func (t Transform) ToScreen(p mathutil.Vec2) (mathutil.Vec2, bool) {
	q, w := t.toScreen.Project(p)
	if !t.visible(w) {
		return mathutil.Vec2{}, false
	}
	return q, true
}

// ToNDC maps a scene point to normalized device coordinates: x grows to the
// right and y grows upwards, both in [-1, 1] across the viewport.
func (t Transform) ToNDC(p mathutil.Vec2) (mathutil.Vec2, bool) {
	q, ok := t.ToScreen(p)
	if !ok {
		return mathutil.Vec2{}, false
	}
	return mathutil.V2(q.X/t.viewport.X*2-1, 1-q.Y/t.viewport.Y*2), true
}

// ToScene maps a device position back onto the scene plane. ok is false when
// the position does not see the plane: the plane is edge-on, or the ray hits
// it behind the camera.
func (t Transform) ToScene(px mathutil.Vec2) (mathutil.Vec2, bool) {
	if !t.invertible {
		return mathutil.Vec2{}, false
	}
	p, w := t.toScene.Project(px)
	if w == 0 {
		return mathutil.Vec2{}, false
	}
	if _, fw := t.toScreen.Project(p); !t.visible(fw) {
		return mathutil.Vec2{}, false
	}
	return p, true
}

// PixelFootprint returns the scene-space length covered by one device pixel
// at px, the larger of the two axis derivatives. Coverage ramps are this wide
// so edges stay one device pixel soft under any scale or tilt.
func (t Transform) PixelFootprint(px mathutil.Vec2) float64 {
	if !t.perspective && t.footprint > 0 {
		return t.footprint
	}
	return t.footprintAt(px)
}

func (t Transform) footprintAt(px mathutil.Vec2) float64 {
	p0, w0 := t.toScene.Project(px)
	px1, w1 := t.toScene.Project(px.Add(mathutil.V2(1, 0)))
	py1, w2 := t.toScene.Project(px.Add(mathutil.V2(0, 1)))
	if w0 == 0 || w1 == 0 || w2 == 0 {
		return 1
	}
	f := math.Max(px1.Sub(p0).Len(), py1.Sub(p0).Len())
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	return f
}

// Bounds returns the device-pixel rectangle covered by the scene rectangle
// (origin, size), grown by one pixel for antialiasing and clipped to the
// viewport. When a corner falls behind the camera the whole viewport is
// returned and per-pixel visibility decides.
func (t Transform) Bounds(origin, size mathutil.Vec2) image.Rectangle {
	full := image.Rect(0, 0, int(math.Ceil(t.viewport.X)), int(math.Ceil(t.viewport.Y)))
	if !t.invertible {
		return image.Rectangle{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range unitVertices {
		q, ok := t.ToScreen(origin.Add(v.Mul(size)))
		if !ok {
			return full
		}
		minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
		minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
	}

	r := image.Rect(
		int(math.Floor(minX))-1, int(math.Floor(minY))-1,
		int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1,
	)
	return r.Intersect(full)
}
