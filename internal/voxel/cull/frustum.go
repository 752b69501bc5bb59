// Package cull implements view-frustum culling against chunk AABBs and
// directional-obscurance culling against a chunk's per-octant obscurance
// table, the two coarse rejection tests a renderer runs before drawing a
// chunk's submesh.
package cull

import "github.com/go-gl/mathgl/mgl32"

// FrustumPlane is one bounding plane of a view frustum: a unit normal and
// a signed displacement such that unit_normal . p + displacement is
// positive for points inside the half-space the plane bounds.
type FrustumPlane struct {
	UnitNormal  [3]float32
	Displacement float32
}

// SignedDistance returns the signed distance from p to the plane, positive
// on the inside.
func (p FrustumPlane) SignedDistance(point [3]float32) float32 {
	return p.UnitNormal[0]*point[0] + p.UnitNormal[1]*point[1] + p.UnitNormal[2]*point[2] + p.Displacement
}

// Frustum is six bounding planes plus, per plane, the index of the AABB
// corner with the largest signed distance on that plane's positive side —
// the one corner that must be checked to reject an AABB outright — and the
// apex position used by obscurance culling to pick a viewing octant.
type Frustum struct {
	Planes                           [6]FrustumPlane
	LargestSignedDistAABBCornerIndex [6]int
	ApexPosition                     [3]float32
}

// cornerIndexForNormal returns, for a plane with the given unit normal,
// the AABB corner index (bit layout: bit2=x, bit1=y, bit0=z; see
// aabbCorner) that has the largest signed distance on the plane's
// positive side. A negative normal component selects that axis's max
// corner, a non-negative component selects its min corner — normal
// (-1,-1,-1) therefore selects corner 7 (all-max) and (+1,+1,+1) selects
// corner 0 (all-min).
func cornerIndexForNormal(normal [3]float32) int {
	idx := 0
	if normal[0] < 0 {
		idx |= 4
	}
	if normal[1] < 0 {
		idx |= 2
	}
	if normal[2] < 0 {
		idx |= 1
	}
	return idx
}

// aabbCorner returns AABB corner i (0-7, bit layout bit2=x,bit1=y,bit0=z)
// for the box spanning [min,max].
func aabbCorner(min, max [3]float32, i int) [3]float32 {
	var c [3]float32
	if i&4 != 0 {
		c[0] = max[0]
	} else {
		c[0] = min[0]
	}
	if i&2 != 0 {
		c[1] = max[1]
	} else {
		c[1] = min[1]
	}
	if i&1 != 0 {
		c[2] = max[2]
	} else {
		c[2] = min[2]
	}
	return c
}

// FromPlanesAndApex builds a Frustum from six already-computed planes and
// an apex position, deriving each plane's largest-signed-distance corner
// index from its normal.
func FromPlanesAndApex(planes [6]FrustumPlane, apex [3]float32) *Frustum {
	f := &Frustum{Planes: planes, ApexPosition: apex}
	for i, p := range planes {
		f.LargestSignedDistAABBCornerIndex[i] = cornerIndexForNormal(p.UnitNormal)
	}
	return f
}

// FrustumFromViewProjection extracts the six frustum planes from a
// combined view-projection matrix via the standard Gribb-Hartmann method,
// and sets the apex to the camera position implied by the inverse
// transform's translation component (eyePosition).
func FrustumFromViewProjection(viewProj mgl32.Mat4, eyePosition mgl32.Vec3) *Frustum {
	row0 := viewProj.Row(0)
	row1 := viewProj.Row(1)
	row2 := viewProj.Row(2)
	row3 := viewProj.Row(3)

	add := func(a, b mgl32.Vec4) mgl32.Vec4 { return a.Add(b) }
	sub := func(a, b mgl32.Vec4) mgl32.Vec4 { return a.Sub(b) }

	rawPlanes := [6]mgl32.Vec4{
		add(row3, row0), // left
		sub(row3, row0), // right
		add(row3, row1), // bottom
		sub(row3, row1), // top
		add(row3, row2), // near
		sub(row3, row2), // far
	}

	var planes [6]FrustumPlane
	for i, raw := range rawPlanes {
		n := mgl32.Vec3{raw[0], raw[1], raw[2]}
		length := n.Len()
		if length < 1e-8 {
			length = 1
		}
		planes[i] = FrustumPlane{
			UnitNormal:   [3]float32{n[0] / length, n[1] / length, n[2] / length},
			Displacement: raw[3] / length,
		}
	}

	return FromPlanesAndApex(planes, [3]float32{eyePosition[0], eyePosition[1], eyePosition[2]})
}

// ForOrthographicFrustum builds a Frustum for an orthographic projection,
// which has no true apex (all view rays are parallel). A synthetic apex is
// placed along the negative view direction at apexDistance, far enough
// back that obscurance culling's "is the chunk between the apex and
// camera" logic still behaves sensibly for a parallel-projection camera.
func ForOrthographicFrustum(viewProj mgl32.Mat4, eyePosition, viewDirection mgl32.Vec3, apexDistance float32) *Frustum {
	f := FrustumFromViewProjection(viewProj, eyePosition)
	dir := viewDirection.Normalize()
	apex := eyePosition.Sub(dir.Mul(apexDistance))
	f.ApexPosition = [3]float32{apex[0], apex[1], apex[2]}
	return f
}

// IntersectsAABB reports whether the axis-aligned box [min,max] intersects
// or lies inside the frustum. It uses the p-vertex rejection test: for
// each plane, only the corner with the largest signed distance (picked via
// LargestSignedDistAABBCornerIndex) needs checking — if even that corner
// is outside, the whole box is outside.
func (f *Frustum) IntersectsAABB(min, max [3]float32) bool {
	for i, plane := range f.Planes {
		corner := aabbCorner(min, max, f.LargestSignedDistAABBCornerIndex[i])
		if plane.SignedDistance(corner) < 0 {
			return false
		}
	}
	return true
}
