package chunkgrid

import "voxelcore/internal/voxel/material"

// Size is the edge length of a chunk's interior voxel cube, fixed at
// compile time (see spec.md's Non-goals: no per-world chunk size).
const Size = 16

const voxelsPerChunk = Size * Size * Size

// Index addresses a chunk in the world's unbounded integer chunk grid.
type Index struct {
	X, Y, Z int32
}

// Add returns the index offset by the given delta.
func (idx Index) Add(dx, dy, dz int32) Index {
	return Index{idx.X + dx, idx.Y + dy, idx.Z + dz}
}

// FaceFlags records, per chunk, which of the six faces are fully obscured
// by solid matter on both sides of the face (this chunk's outer slab and
// the neighboring chunk's adjoining slab). Used to seed the directional
// obscurance table the submesh layer carries per chunk.
type FaceFlags uint8

const (
	FaceNegX FaceFlags = 1 << iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ
)

// Obscured reports whether the named face is set.
func (f FaceFlags) Obscured(face FaceFlags) bool {
	return f&face != 0
}

// Chunk is a dense Size^3 block of voxels: a material id and a signed
// distance sample per cell, plus the bookkeeping the world needs to decide
// when the chunk is exposed, dirty, or empty enough to drop.
type Chunk struct {
	index     Index
	materials []material.ID
	distances []float32

	solidCount int
	flags      FaceFlags
}

func newChunk(idx Index) *Chunk {
	c := &Chunk{
		index:     idx,
		materials: make([]material.ID, voxelsPerChunk),
		distances: make([]float32, voxelsPerChunk),
	}
	for i := range c.distances {
		c.distances[i] = defaultEmptyDistance
	}
	return c
}

// defaultEmptyDistance and defaultSolidDistance are the binary distance
// samples written by the discrete edit operations (SetVoxel, SetRegion).
// CarveSphere instead writes the true distance to the sphere surface, which
// is what gives it a rounded rather than blocky silhouette.
const (
	defaultEmptyDistance = 0.5
	defaultSolidDistance = -0.5
)

// Index returns the chunk's grid address.
func (c *Chunk) Index() Index {
	return c.index
}

// Flags returns the chunk's current face-obscurance flags.
func (c *Chunk) Flags() FaceFlags {
	return c.flags
}

// SolidCount returns the number of non-empty voxels currently stored.
func (c *Chunk) SolidCount() int {
	return c.solidCount
}

// Exposed reports whether the chunk holds any matter at all. A chunk with
// no solid voxels is never stored by World (see World.writeVoxelLocked), so in
// practice this is always true for a chunk retrieved from the map; it
// remains useful for a chunk a caller is holding onto across an edit.
func (c *Chunk) Exposed() bool {
	return c.solidCount > 0
}

func localIndex(lx, ly, lz int) int {
	return lx + ly*Size + lz*Size*Size
}

func inLocalBounds(lx, ly, lz int) bool {
	return lx >= 0 && lx < Size && ly >= 0 && ly < Size && lz >= 0 && lz < Size
}

// Material returns the material id at local coordinates (lx,ly,lz), or
// material.Empty if the coordinates fall outside the chunk.
func (c *Chunk) Material(lx, ly, lz int) material.ID {
	if !inLocalBounds(lx, ly, lz) {
		return material.Empty
	}
	return c.materials[localIndex(lx, ly, lz)]
}

// Distance returns the signed distance sample at local coordinates
// (lx,ly,lz). Coordinates outside the chunk read as defaultEmptyDistance
// (not sdf.Far, which is what the halo fill uses for a missing neighbor).
func (c *Chunk) Distance(lx, ly, lz int) float32 {
	if !inLocalBounds(lx, ly, lz) {
		return defaultEmptyDistance
	}
	return c.distances[localIndex(lx, ly, lz)]
}

// setVoxel writes a material/distance pair at local coordinates and reports
// whether the material changed. Bounds are the caller's responsibility;
// this is only called from World with coordinates already in range.
func (c *Chunk) setVoxel(lx, ly, lz int, mat material.ID, dist float32) bool {
	i := localIndex(lx, ly, lz)
	old := c.materials[i]
	if old == mat {
		c.distances[i] = dist
		return false
	}
	if old.IsEmpty() && !mat.IsEmpty() {
		c.solidCount++
	} else if !old.IsEmpty() && mat.IsEmpty() {
		c.solidCount--
	}
	c.materials[i] = mat
	c.distances[i] = dist
	return true
}

// outerSlabSolid reports whether every voxel on the named face's outer
// slab is non-empty. Used to derive FaceFlags together with the
// neighboring chunk's adjoining slab.
func (c *Chunk) outerSlabSolid(face FaceFlags) bool {
	switch face {
	case FaceNegX:
		return c.slabSolid(func(a, b int) (int, int, int) { return 0, a, b })
	case FacePosX:
		return c.slabSolid(func(a, b int) (int, int, int) { return Size - 1, a, b })
	case FaceNegY:
		return c.slabSolid(func(a, b int) (int, int, int) { return a, 0, b })
	case FacePosY:
		return c.slabSolid(func(a, b int) (int, int, int) { return a, Size - 1, b })
	case FaceNegZ:
		return c.slabSolid(func(a, b int) (int, int, int) { return a, b, 0 })
	case FacePosZ:
		return c.slabSolid(func(a, b int) (int, int, int) { return a, b, Size - 1 })
	default:
		return false
	}
}

func (c *Chunk) slabSolid(coord func(a, b int) (int, int, int)) bool {
	for a := 0; a < Size; a++ {
		for b := 0; b < Size; b++ {
			x, y, z := coord(a, b)
			if c.materials[localIndex(x, y, z)].IsEmpty() {
				return false
			}
		}
	}
	return true
}

// opposite returns the face on the far side of a chunk boundary, i.e. the
// face a neighbor in the given direction presents back at this chunk.
func opposite(face FaceFlags) FaceFlags {
	switch face {
	case FaceNegX:
		return FacePosX
	case FacePosX:
		return FaceNegX
	case FaceNegY:
		return FacePosY
	case FacePosY:
		return FaceNegY
	case FaceNegZ:
		return FacePosZ
	case FacePosZ:
		return FaceNegZ
	default:
		return 0
	}
}

func faceDelta(face FaceFlags) (int32, int32, int32) {
	switch face {
	case FaceNegX:
		return -1, 0, 0
	case FacePosX:
		return 1, 0, 0
	case FaceNegY:
		return 0, -1, 0
	case FacePosY:
		return 0, 1, 0
	case FaceNegZ:
		return 0, 0, -1
	case FacePosZ:
		return 0, 0, 1
	default:
		return 0, 0, 0
	}
}

var allFaces = [6]FaceFlags{FaceNegX, FacePosX, FaceNegY, FacePosY, FaceNegZ, FacePosZ}
