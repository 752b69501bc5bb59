package cull

import "voxelcore/internal/voxel/submesh"

// IsObscured reports whether a chunk centered at chunkCenter, with the
// given directional-obscurance table, is fully hidden when viewed from
// viewerPosition. The octant looked up is the one viewerPosition occupies
// relative to chunkCenter on each axis: viewerPosition ahead of center on
// an axis selects that axis's positive-face obscurance, behind selects the
// negative-face one.
func IsObscured(table submesh.ObscuranceTable, chunkCenter, viewerPosition [3]float32) bool {
	bit := func(center, viewer float32) int {
		if viewer >= center {
			return 1
		}
		return 0
	}
	x := bit(chunkCenter[0], viewerPosition[0])
	y := bit(chunkCenter[1], viewerPosition[1])
	z := bit(chunkCenter[2], viewerPosition[2])
	return table[x][y][z]
}
