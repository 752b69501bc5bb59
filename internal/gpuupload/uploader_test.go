package gpuupload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/material"
	"voxelcore/internal/voxel/mesher"
	"voxelcore/internal/voxel/submesh"
)

func fakeMesh(vertexCount int) mesher.ChunkMeshResult {
	var r mesher.ChunkMeshResult
	for i := 0; i < vertexCount; i++ {
		r.Positions = append(r.Positions, [3]float32{float32(i), 0, 0})
		r.Normals = append(r.Normals, [3]float32{0, 1, 0})
		r.IndexMaterials = append(r.IndexMaterials, mesher.IndexMaterials{
			Materials: [4]material.ID{material.Dirt, 0, 0, 0},
			Weights:   [4]uint8{8, 0, 0, 0},
		})
	}
	for i := 0; i+2 < vertexCount; i += 3 {
		r.Indices = append(r.Indices, uint32(i), uint32(i+1), uint32(i+2))
	}
	return r
}

func TestInterleaveVerticesPacksPositionNormalAndBlend(t *testing.T) {
	mgr := submesh.NewManager()
	require.NoError(t, mgr.WriteChunk(chunkgrid.Index{}, fakeMesh(3), 0))

	out := make([]float32, 3*vertexFloats)
	interleaveVertices(mgr, 0, 3, out)

	// Vertex 1's position.x should be 1 (see fakeMesh), at its vertex base.
	assert.Equal(t, float32(1), out[1*vertexFloats+0])
	// Normal is always (0,1,0) in fakeMesh.
	assert.Equal(t, float32(1), out[1*vertexFloats+4])
	// Material id slot 0 and its weight.
	assert.Equal(t, float32(material.Dirt), out[1*vertexFloats+6])
	assert.Equal(t, float32(8), out[1*vertexFloats+10])
}

func TestInterleaveVerticesHonorsRangeOffset(t *testing.T) {
	mgr := submesh.NewManager()
	require.NoError(t, mgr.WriteChunk(chunkgrid.Index{}, fakeMesh(6), 0))

	out := make([]float32, 2*vertexFloats)
	interleaveVertices(mgr, 2, 4, out)

	assert.Equal(t, float32(2), out[0*vertexFloats+0])
	assert.Equal(t, float32(3), out[1*vertexFloats+0])
}

func TestVertexFloatsLayoutMatchesAttributePointers(t *testing.T) {
	require.Equal(t, 14, vertexFloats, "3 position + 3 normal + 4 material ids + 4 weights")
}
