package submesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/mesher"
	"voxelcore/internal/voxel/voxelerr"
)

func fakeMesh(vertexCount int) mesher.ChunkMeshResult {
	var r mesher.ChunkMeshResult
	for i := 0; i < vertexCount; i++ {
		r.Positions = append(r.Positions, [3]float32{float32(i), 0, 0})
		r.Normals = append(r.Normals, [3]float32{0, 1, 0})
		r.IndexMaterials = append(r.IndexMaterials, mesher.IndexMaterials{})
	}
	// A trivial fan of indices referencing local vertex 0..vertexCount-1,
	// just enough to exercise re-basing; not a meaningful mesh.
	for i := 0; i+2 < vertexCount; i++ {
		r.Indices = append(r.Indices, uint32(0), uint32(i+1), uint32(i+2))
	}
	return r
}

func TestWriteChunkAllocatesDistinctRanges(t *testing.T) {
	m := NewManager()
	a := chunkgrid.Index{X: 0}
	b := chunkgrid.Index{X: 1}

	require.NoError(t, m.WriteChunk(a, fakeMesh(100), 0))
	require.NoError(t, m.WriteChunk(b, fakeMesh(100), 0))

	subA, ok := m.Submesh(a)
	require.True(t, ok)
	subB, ok := m.Submesh(b)
	require.True(t, ok)

	assert.Equal(t, Range{0, 100}, subA.VertexRange)
	assert.Equal(t, Range{100, 200}, subB.VertexRange)
}

func TestRangeReuseAfterShrink(t *testing.T) {
	m := NewManager()
	a := chunkgrid.Index{X: 0}
	b := chunkgrid.Index{X: 1}

	require.NoError(t, m.WriteChunk(a, fakeMesh(100), 0))
	require.NoError(t, m.WriteChunk(b, fakeMesh(100), 0))
	m.ReportGPUResourcesSynchronized()

	require.NoError(t, m.WriteChunk(b, fakeMesh(40), 0))

	subA, _ := m.Submesh(a)
	assert.Equal(t, Range{0, 100}, subA.VertexRange, "untouched chunk A keeps its original range")

	subB, _ := m.Submesh(b)
	assert.Equal(t, uint32(40), subB.VertexRange.Len())
	assert.GreaterOrEqual(t, subB.VertexRange.Start, uint32(100))

	require.NoError(t, m.PerformMaintenance())
	var freeTotal uint32
	for _, r := range m.vertexAlloc.FreeRanges() {
		freeTotal += r.Len()
	}
	assert.Equal(t, uint32(60), freeTotal)
}

func TestChunkRemovedFreesRangesAndFlagsRemoval(t *testing.T) {
	m := NewManager()
	c := chunkgrid.Index{X: 5}
	require.NoError(t, m.WriteChunk(c, fakeMesh(50), 0))
	m.ReportGPUResourcesSynchronized()

	sub, _ := m.Submesh(c)
	oldVertexRange := sub.VertexRange

	require.NoError(t, m.RemoveChunk(c))

	_, ok := m.Submesh(c)
	assert.False(t, ok)

	ranges, removed := m.Modifications()
	assert.True(t, removed)
	for _, r := range ranges {
		assert.NotEqual(t, oldVertexRange, r.VertexRange, "updated_ranges must not contain the removed chunk's former range")
	}
}

func TestWriteChunkWithEmptyMeshActsAsRemoval(t *testing.T) {
	m := NewManager()
	c := chunkgrid.Index{X: 0}
	require.NoError(t, m.WriteChunk(c, fakeMesh(10), 0))

	require.NoError(t, m.WriteChunk(c, mesher.ChunkMeshResult{}, 0))
	_, ok := m.Submesh(c)
	assert.False(t, ok)
}

func TestWriteChunkRejectsIndexOutsideVertexRange(t *testing.T) {
	m := NewManager()
	c := chunkgrid.Index{X: 0}

	bad := fakeMesh(3)
	bad.Indices = append(bad.Indices, 99)

	err := m.WriteChunk(c, bad, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, voxelerr.ErrInvariantViolation)
	_, ok := m.Submesh(c)
	assert.False(t, ok, "a rejected write must not install a submesh")
}

func TestFullyObscuredFlagsProduceAllTrueObscuranceTable(t *testing.T) {
	m := NewManager()
	c := chunkgrid.Index{X: 0}
	allFlags := chunkgrid.FaceNegX | chunkgrid.FacePosX | chunkgrid.FaceNegY | chunkgrid.FacePosY | chunkgrid.FaceNegZ | chunkgrid.FacePosZ

	require.NoError(t, m.WriteChunk(c, fakeMesh(10), allFlags))
	sub, ok := m.Submesh(c)
	require.True(t, ok)

	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			for cc := 0; cc < 2; cc++ {
				assert.True(t, sub.Obscurance[a][b][cc])
			}
		}
	}
}

func TestReportGPUResourcesSynchronizedClearsLog(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.WriteChunk(chunkgrid.Index{X: 0}, fakeMesh(10), 0))
	ranges, _ := m.Modifications()
	assert.NotEmpty(t, ranges)

	m.ReportGPUResourcesSynchronized()
	ranges, removed := m.Modifications()
	assert.Empty(t, ranges)
	assert.False(t, removed)
}

// TestComputeObscuranceMatchesReferenceForEveryFlagCombination exhaustively
// checks all 64 combinations of the six face-obscurance flags against a
// from-scratch reference computation of the table, rather than only the
// all-obscured case.
func TestComputeObscuranceMatchesReferenceForEveryFlagCombination(t *testing.T) {
	faces := []chunkgrid.FaceFlags{
		chunkgrid.FaceNegX, chunkgrid.FacePosX,
		chunkgrid.FaceNegY, chunkgrid.FacePosY,
		chunkgrid.FaceNegZ, chunkgrid.FacePosZ,
	}

	for bits := 0; bits < 64; bits++ {
		var flags chunkgrid.FaceFlags
		for i, f := range faces {
			if bits&(1<<i) != 0 {
				flags |= f
			}
		}

		got := computeObscurance(flags)

		obscuredX := [2]bool{flags.Obscured(chunkgrid.FaceNegX), flags.Obscured(chunkgrid.FacePosX)}
		obscuredY := [2]bool{flags.Obscured(chunkgrid.FaceNegY), flags.Obscured(chunkgrid.FacePosY)}
		obscuredZ := [2]bool{flags.Obscured(chunkgrid.FaceNegZ), flags.Obscured(chunkgrid.FacePosZ)}

		for a := 0; a < 2; a++ {
			for b := 0; b < 2; b++ {
				for c := 0; c < 2; c++ {
					want := obscuredX[a] && obscuredY[b] && obscuredZ[c]
					assert.Equal(t, want, got[a][b][c], "bits=%06b octant=(%d,%d,%d)", bits, a, b, c)
				}
			}
		}
	}
}
