package worldgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/material"
)

func TestHeightAtIsDeterministicForASeed(t *testing.T) {
	g := NewGenerator(DefaultConfig(42))

	a := g.HeightAt(10, -5)
	b := g.HeightAt(10, -5)
	assert.Equal(t, a, b)

	c := g.HeightAt(11, -5)
	assert.NotEqual(t, a, c, "neighboring columns should (almost always) differ")
}

func TestGenerateColumnFillsSubsurfaceAndLeavesSkyEmpty(t *testing.T) {
	w := chunkgrid.New(1.0, nil)
	cfg := DefaultConfig(7)
	cfg.BaseHeight = 10
	cfg.Amplitude = 0 // flatten terrain so the surface height is exactly known
	g := NewGenerator(cfg)

	require.NoError(t, g.GenerateColumn(w, 0, 0, 0, 20))

	idx, lx, ly, lz := voxelToChunkForTest(0, 2, 0)
	c, ok := w.GetChunk(idx)
	require.True(t, ok)
	assert.Equal(t, cfg.Biome.Subsurface, c.Material(lx, ly, lz))

	idx, lx, ly, lz = voxelToChunkForTest(0, 18, 0)
	if c, ok := w.GetChunk(idx); ok {
		assert.Equal(t, material.Empty, c.Material(lx, ly, lz))
	}
}

func TestGenerateChunkFillsEveryColumn(t *testing.T) {
	w := chunkgrid.New(1.0, nil)
	g := NewGenerator(DefaultConfig(3))

	require.NoError(t, g.GenerateChunk(w, chunkgrid.Index{X: 0, Y: 0, Z: 0}, -2, 2))

	assert.Greater(t, w.ChunkCount(), 0)
}

// voxelToChunkForTest duplicates chunkgrid's private voxel-to-chunk split
// for local test assertions (chunkgrid.Size is exported, the mapping
// function is not).
func voxelToChunkForTest(gx, gy, gz int32) (chunkgrid.Index, int, int, int) {
	size := int32(chunkgrid.Size)
	cx, lx := gx/size, gx%size
	if lx < 0 {
		lx += size
		cx--
	}
	cy, ly := gy/size, gy%size
	if ly < 0 {
		ly += size
		cy--
	}
	cz, lz := gz/size, gz%size
	if lz < 0 {
		lz += size
		cz--
	}
	return chunkgrid.Index{X: cx, Y: cy, Z: cz}, int(lx), int(ly), int(lz)
}
