package debugviz

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/material"
)

func TestWriteChunkSlicePNGProducesScaledImage(t *testing.T) {
	w := chunkgrid.New(1.0, nil)
	require.NoError(t, w.SetRegion([3]int32{0, 0, 0}, [3]int32{chunkgrid.Size, 1, chunkgrid.Size}, material.Grass))

	c, ok := w.GetChunk(chunkgrid.Index{})
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, WriteChunkSlicePNG(&buf, c, 0))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, chunkgrid.Size*slicePixelScale, bounds.Dx())
	assert.Equal(t, chunkgrid.Size*slicePixelScale, bounds.Dy())
}

func TestWriteHeightmapPNGNormalizesRange(t *testing.T) {
	heights := [][]float64{
		{0, 5, 10},
		{10, 5, 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHeightmapPNG(&buf, heights, 0, 10))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 3, bounds.Dx())
	assert.Equal(t, 2, bounds.Dy())
}

func TestWriteHeightmapPNGHandlesEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeightmapPNG(&buf, nil, 0, 1))
	assert.NotEmpty(t, buf.Bytes())
}

func TestMaterialColorFallsBackForUnknownMaterial(t *testing.T) {
	c := materialColor(material.ID(250))
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)
	assert.Equal(t, uint8(255), c.B)
}
