package cull

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"voxelcore/internal/voxel/submesh"
)

func TestCullingCornerSelectionMatchesSpecExample(t *testing.T) {
	s := float32(1 / math.Sqrt(3))

	allNegative := [3]float32{-s, -s, -s}
	assert.Equal(t, 7, cornerIndexForNormal(allNegative), "negative normal selects the all-max corner")

	allPositive := [3]float32{s, s, s}
	assert.Equal(t, 0, cornerIndexForNormal(allPositive), "positive normal selects the all-min corner")
}

func TestIntersectsAABBRejectsBoxFullyOutsideAPlane(t *testing.T) {
	planes := [6]FrustumPlane{
		{UnitNormal: [3]float32{1, 0, 0}, Displacement: 0}, // inside iff x >= 0
		{UnitNormal: [3]float32{-1, 0, 0}, Displacement: 100},
		{UnitNormal: [3]float32{0, 1, 0}, Displacement: 0},
		{UnitNormal: [3]float32{0, -1, 0}, Displacement: 100},
		{UnitNormal: [3]float32{0, 0, 1}, Displacement: 0},
		{UnitNormal: [3]float32{0, 0, -1}, Displacement: 100},
	}
	f := FromPlanesAndApex(planes, [3]float32{50, 50, -10})

	assert.True(t, f.IntersectsAABB([3]float32{10, 10, 10}, [3]float32{20, 20, 20}))
	assert.False(t, f.IntersectsAABB([3]float32{-50, 10, 10}, [3]float32{-20, 20, 20}), "box entirely at x<0 is outside the left plane")
}

func TestIsObscuredLooksUpViewerOctant(t *testing.T) {
	var table submesh.ObscuranceTable
	table[1][1][1] = true // +X,+Y,+Z octant obscured

	center := [3]float32{0, 0, 0}
	viewerInObscuredOctant := [3]float32{5, 5, 5}
	viewerElsewhere := [3]float32{-5, 5, 5}

	assert.True(t, IsObscured(table, center, viewerInObscuredOctant))
	assert.False(t, IsObscured(table, center, viewerElsewhere))
}
