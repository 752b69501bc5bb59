// Package math provides small scalar helpers shared by the voxel core and
// worldgen packages: clamping and the euclidean distance
// chunkgrid.World.CarveSphere uses to shape a smooth SDF sphere.
package math

import (
	"math"
)

// Clamp restricts value between min and max.
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Distance3D calculates euclidean distance in 3D.
func Distance3D(x1, y1, z1, x2, y2, z2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	dz := z2 - z1
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
