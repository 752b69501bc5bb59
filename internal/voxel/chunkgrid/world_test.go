package chunkgrid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/voxel/material"
	"voxelcore/internal/voxel/sdf"
	"voxelcore/internal/voxel/voxelerr"
)

func TestSetVoxelCreatesAndDropsChunks(t *testing.T) {
	w := New(1.0, nil)

	require.NoError(t, w.SetVoxel(0, 0, 0, material.Stone))
	c, ok := w.GetChunk(Index{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, 1, c.SolidCount())

	require.NoError(t, w.SetVoxel(0, 0, 0, material.Empty))
	_, ok = w.GetChunk(Index{0, 0, 0})
	assert.False(t, ok, "chunk should be dropped once its last voxel is cleared")
}

func TestSetVoxelRejectsUnknownMaterial(t *testing.T) {
	w := New(1.0, nil)
	err := w.SetVoxel(0, 0, 0, material.ID(250))
	require.Error(t, err)
	assert.True(t, errors.Is(err, voxelerr.ErrMaterialUnknown))
}

func TestSetVoxelRejectsOutOfBoundsChunk(t *testing.T) {
	w := New(1.0, nil)
	err := w.SetVoxel(maxChunkCoord*Size+Size, 0, 0, material.Stone)
	require.Error(t, err)
	assert.True(t, errors.Is(err, voxelerr.ErrOutOfBounds))
}

func TestNegativeCoordinatesMapToConsistentChunk(t *testing.T) {
	w := New(1.0, nil)
	require.NoError(t, w.SetVoxel(-1, -1, -1, material.Dirt))
	c, ok := w.GetChunk(Index{-1, -1, -1})
	require.True(t, ok)
	assert.Equal(t, material.Dirt, c.Material(Size-1, Size-1, Size-1))
}

func TestInvalidatedMeshChunkIndicesTracksEditsAndClears(t *testing.T) {
	w := New(1.0, nil)
	require.NoError(t, w.SetVoxel(0, 0, 0, material.Stone))
	require.NoError(t, w.SetVoxel(Size, 0, 0, material.Stone))

	indices := w.InvalidatedMeshChunkIndices()
	assert.Contains(t, indices, Index{0, 0, 0})
	assert.Contains(t, indices, Index{1, 0, 0})

	w.MarkChunkMeshesSynchronized()
	assert.Empty(t, w.InvalidatedMeshChunkIndices())
}

func TestFaceObscuranceRequiresBothSlabsSolid(t *testing.T) {
	w := New(1.0, nil)
	// Fill chunk (0,0,0) solid.
	require.NoError(t, w.SetRegion([3]int32{0, 0, 0}, [3]int32{Size, Size, Size}, material.Stone))
	c, ok := w.GetChunk(Index{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, FaceFlags(0), c.Flags(), "an isolated solid chunk has no obscured faces")

	// Fill the +X neighbor solid too; now the shared face should obscure
	// on both sides.
	require.NoError(t, w.SetRegion([3]int32{Size, 0, 0}, [3]int32{2 * Size, Size, Size}, material.Stone))

	c, _ = w.GetChunk(Index{0, 0, 0})
	assert.True(t, c.Flags().Obscured(FacePosX))
	n, _ := w.GetChunk(Index{1, 0, 0})
	assert.True(t, n.Flags().Obscured(FaceNegX))
}

func TestFullyObscuredInteriorChunk(t *testing.T) {
	w := New(1.0, nil)
	// A 3x3x3 block of fully solid chunks; the center chunk should end up
	// with every face obscured.
	require.NoError(t, w.SetRegion([3]int32{-Size, -Size, -Size}, [3]int32{2 * Size, 2 * Size, 2 * Size}, material.Stone))

	center, ok := w.GetChunk(Index{0, 0, 0})
	require.True(t, ok)
	for _, face := range allFaces {
		assert.True(t, center.Flags().Obscured(face))
	}
}

func TestFillSDFForChunkBorrowsNeighborHaloAndDefaultsMissing(t *testing.T) {
	w := New(1.0, nil)
	require.NoError(t, w.SetVoxel(0, 0, 0, material.Stone))
	require.NoError(t, w.SetVoxel(-1, 0, 0, material.Dirt))

	buf := sdf.New(Size)
	flags, ok := w.FillSDFForChunkIfExposed(Index{0, 0, 0}, buf)
	require.True(t, ok)
	assert.Equal(t, FaceFlags(0), flags)

	// Padded coordinate (0,1,1) is local (-1,0,0): the borrowed halo voxel
	// from the west neighbor.
	_, mat := buf.Get(0, 1, 1)
	assert.Equal(t, material.Dirt, mat)

	// The far corner of the halo has no backing chunk at all.
	dist, mat := buf.Get(0, 0, 0)
	assert.Equal(t, material.Empty, mat)
	assert.Equal(t, float32(sdf.Far), dist)
}

func TestCarveSphereProducesRoundedNegativeCore(t *testing.T) {
	w := New(1.0, nil)
	require.NoError(t, w.CarveSphere([3]float64{8, 8, 8}, 3, material.Stone))

	c, ok := w.GetChunk(Index{0, 0, 0})
	require.True(t, ok)
	assert.Equal(t, material.Stone, c.Material(8, 8, 8))
	assert.Less(t, c.Distance(8, 8, 8), float32(0))
	assert.Equal(t, material.Empty, c.Material(0, 0, 0))
}

func TestSplitDisconnectedSeparatesComponents(t *testing.T) {
	w := New(1.0, nil)
	require.NoError(t, w.SetVoxel(0, 0, 0, material.Stone))
	require.NoError(t, w.SetVoxel(0, 0, 0+100*Size, material.Stone))

	split := w.SplitDisconnected()
	require.Len(t, split, 1)
	assert.Equal(t, 1, w.ChunkCount())
	assert.Equal(t, 1, split[0].ChunkCount())

	_, ok := split[0].GetChunk(Index{0, 0, 0})
	assert.True(t, ok, "child world should be rebased so its component starts at the origin")

	offset := split[0].OriginOffsetInRoot()
	assert.Equal(t, float32(100*Size), offset[2])
}

func TestSplitDisconnectedNoopOnSingleComponent(t *testing.T) {
	w := New(1.0, nil)
	require.NoError(t, w.SetVoxel(0, 0, 0, material.Stone))
	require.NoError(t, w.SetVoxel(1, 0, 0, material.Stone))
	assert.Nil(t, w.SplitDisconnected())
}
