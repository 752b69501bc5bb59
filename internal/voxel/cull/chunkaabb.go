package cull

import "voxelcore/internal/voxel/chunkgrid"

// ChunkAABB returns the world-space bounding box of chunk idx, matching the
// half-voxel-shifted origin the mesher places chunk geometry at (see
// mesher.Mesher.MeshChunk's chunkOrigin derivation) so a culled-out chunk's
// box lines up exactly with the geometry it would otherwise draw.
func ChunkAABB(idx chunkgrid.Index, voxelExtent float64) (min, max [3]float32) {
	extent := float32(voxelExtent)
	chunkExtent := extent * float32(chunkgrid.Size)
	origin := [3]float32{
		float32(idx.X)*chunkExtent - 0.5*extent,
		float32(idx.Y)*chunkExtent - 0.5*extent,
		float32(idx.Z)*chunkExtent - 0.5*extent,
	}
	return origin, [3]float32{origin[0] + chunkExtent, origin[1] + chunkExtent, origin[2] + chunkExtent}
}
