package submesh

import (
	"fmt"
	"sort"

	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/mesher"
	"voxelcore/internal/voxel/voxelerr"
)

// DataRanges names the packed-array ranges a single chunk's submesh
// currently occupies, as reported to a GPU uploader through Modifications.
type DataRanges struct {
	VertexRange Range
	IndexRange  Range
}

// ObscuranceTable is the directional-obscurance lookup a culling pass
// consults per octant: ObscuranceTable[negX?0:1][negY?0:1][negZ?0:1]
// reports whether that octant's view into the chunk is fully blocked.
type ObscuranceTable [2][2][2]bool

// Submesh records where one chunk's geometry lives in the packed arrays.
type Submesh struct {
	ChunkIndex  chunkgrid.Index
	VertexRange Range
	IndexRange  Range
	Obscurance  ObscuranceTable
}

// Manager owns the packed vertex/index arrays shared across every chunk in
// a world, the range allocators backing them, and the modification log a
// GPU uploader drains once per frame. Mirrors the
// ChunkedVoxelObjectMesh/ChunkSubmeshManager split of the engine this is
// adapted from: one shared buffer pair, one allocator pair, one manager.
type Manager struct {
	vertexAlloc *RangeAllocator
	indexAlloc  *RangeAllocator

	positions [][3]float32
	normals   [][3]float32
	materials []mesher.IndexMaterials
	indices   []uint32

	submeshes map[chunkgrid.Index]*Submesh

	updatedRanges     []DataRanges
	chunksWereRemoved bool
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		vertexAlloc: NewRangeAllocator(),
		indexAlloc:  NewRangeAllocator(),
		submeshes:   make(map[chunkgrid.Index]*Submesh),
	}
}

// Positions, Normals, Materials and Indices return the current packed
// backing arrays. Regions outside any live submesh's range may hold stale
// data from a freed chunk; callers must only read through a Submesh's own
// recorded ranges.
func (m *Manager) Positions() [][3]float32          { return m.positions }
func (m *Manager) Normals() [][3]float32             { return m.normals }
func (m *Manager) Materials() []mesher.IndexMaterials { return m.materials }
func (m *Manager) Indices() []uint32                 { return m.indices }

// Submesh returns the submesh record for idx, if one exists.
func (m *Manager) Submesh(idx chunkgrid.Index) (*Submesh, bool) {
	s, ok := m.submeshes[idx]
	return s, ok
}

// SubmeshCount returns the number of chunks currently holding a submesh.
func (m *Manager) SubmeshCount() int {
	return len(m.submeshes)
}

// WriteChunk installs or replaces chunk idx's geometry from mesh, deriving
// its obscurance table from flags. An empty mesh is treated as a removal:
// a chunk whose SDF no longer crosses the surface has nothing to render.
//
// Returns an error wrapping voxelerr.ErrInvariantViolation if mesh
// references a vertex index outside its own vertex range (checked before
// the allocators are touched, so the chunk's prior submesh, if any, is left
// as it was) or if the allocators' free-range bookkeeping is found
// corrupted after allocation (the new submesh is then not installed) —
// both are internal accounting bugs the caller (the meshing pass) must
// abort on rather than silently upload corrupted geometry.
func (m *Manager) WriteChunk(idx chunkgrid.Index, mesh mesher.ChunkMeshResult, flags chunkgrid.FaceFlags) error {
	if mesh.Empty() {
		return m.RemoveChunk(idx)
	}

	vertexCount := uint32(len(mesh.Positions))
	for _, localIdx := range mesh.Indices {
		if localIdx >= vertexCount {
			return fmt.Errorf("%w: chunk %v index %d references vertex outside range [0,%d)", voxelerr.ErrInvariantViolation, idx, localIdx, vertexCount)
		}
	}

	if old, ok := m.submeshes[idx]; ok {
		m.vertexAlloc.Free(old.VertexRange)
		m.indexAlloc.Free(old.IndexRange)
	}

	vertexRange := m.vertexAlloc.Allocate(vertexCount)
	indexRange := m.indexAlloc.Allocate(uint32(len(mesh.Indices)))

	if err := m.vertexAlloc.CheckInvariants(); err != nil {
		return err
	}
	if err := m.indexAlloc.CheckInvariants(); err != nil {
		return err
	}

	m.growBackingArrays()

	copy(m.positions[vertexRange.Start:vertexRange.End], mesh.Positions)
	copy(m.normals[vertexRange.Start:vertexRange.End], mesh.Normals)
	copy(m.materials[vertexRange.Start:vertexRange.End], mesh.IndexMaterials)

	rebased := m.indices[indexRange.Start:indexRange.End]
	for i, localIdx := range mesh.Indices {
		rebased[i] = vertexRange.Start + localIdx
	}

	m.submeshes[idx] = &Submesh{
		ChunkIndex:  idx,
		VertexRange: vertexRange,
		IndexRange:  indexRange,
		Obscurance:  computeObscurance(flags),
	}

	m.updatedRanges = append(m.updatedRanges, DataRanges{VertexRange: vertexRange, IndexRange: indexRange})
	return nil
}

// RemoveChunk drops chunk idx's submesh, freeing its ranges. A no-op if
// the chunk had no submesh. Returns an error wrapping
// voxelerr.ErrInvariantViolation if freeing corrupts the allocators'
// free-range bookkeeping.
func (m *Manager) RemoveChunk(idx chunkgrid.Index) error {
	old, ok := m.submeshes[idx]
	if !ok {
		return nil
	}
	m.vertexAlloc.Free(old.VertexRange)
	m.indexAlloc.Free(old.IndexRange)
	if err := m.vertexAlloc.CheckInvariants(); err != nil {
		return err
	}
	if err := m.indexAlloc.CheckInvariants(); err != nil {
		return err
	}
	delete(m.submeshes, idx)
	m.chunksWereRemoved = true
	return nil
}

// growBackingArrays extends the packed arrays so every currently allocated
// range (vertex and index) is addressable, zero-filling any newly added
// tail.
func (m *Manager) growBackingArrays() {
	vlen := int(m.vertexAlloc.Length())
	if vlen > len(m.positions) {
		m.positions = append(m.positions, make([][3]float32, vlen-len(m.positions))...)
		m.normals = append(m.normals, make([][3]float32, vlen-len(m.normals))...)
		m.materials = append(m.materials, make([]mesher.IndexMaterials, vlen-len(m.materials))...)
	}
	ilen := int(m.indexAlloc.Length())
	if ilen > len(m.indices) {
		m.indices = append(m.indices, make([]uint32, ilen-len(m.indices))...)
	}
}

// PerformMaintenance coalesces adjacent free ranges in both allocators.
// Intended to be called once per meshing pass, not per chunk. Returns an
// error wrapping voxelerr.ErrInvariantViolation if merging exposes
// corrupted free-range bookkeeping.
func (m *Manager) PerformMaintenance() error {
	m.vertexAlloc.MergeConsecutive()
	m.indexAlloc.MergeConsecutive()
	if err := m.vertexAlloc.CheckInvariants(); err != nil {
		return err
	}
	return m.indexAlloc.CheckInvariants()
}

// Modifications returns the vertex/index ranges touched since the last
// ReportGPUResourcesSynchronized, and whether any chunk was removed in that
// span. Order matches the order WriteChunk calls were made in.
func (m *Manager) Modifications() ([]DataRanges, bool) {
	return m.updatedRanges, m.chunksWereRemoved
}

// ReportGPUResourcesSynchronized clears the modification log, acknowledging
// that an uploader has applied every range Modifications last returned.
func (m *Manager) ReportGPUResourcesSynchronized() {
	m.updatedRanges = nil
	m.chunksWereRemoved = false
}

// SortedChunkIndices returns every chunk index currently holding a
// submesh, in deterministic order. Useful for culling passes that need a
// stable iteration order across frames.
func (m *Manager) SortedChunkIndices() []chunkgrid.Index {
	out := make([]chunkgrid.Index, 0, len(m.submeshes))
	for idx := range m.submeshes {
		out = append(out, idx)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return out
}

// computeObscurance derives the eight-octant obscurance table from the six
// face-obscurance flags: an octant's view is blocked iff all three faces
// bounding it on its own side are obscured.
func computeObscurance(flags chunkgrid.FaceFlags) ObscuranceTable {
	obscuredX := [2]bool{flags.Obscured(chunkgrid.FaceNegX), flags.Obscured(chunkgrid.FacePosX)}
	obscuredY := [2]bool{flags.Obscured(chunkgrid.FaceNegY), flags.Obscured(chunkgrid.FacePosY)}
	obscuredZ := [2]bool{flags.Obscured(chunkgrid.FaceNegZ), flags.Obscured(chunkgrid.FacePosZ)}

	var table ObscuranceTable
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			for c := 0; c < 2; c++ {
				table[a][b][c] = obscuredX[a] && obscuredY[b] && obscuredZ[c]
			}
		}
	}
	return table
}
