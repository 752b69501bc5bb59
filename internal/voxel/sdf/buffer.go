// Package sdf holds the padded signed-distance scratch buffer the mesher
// reuses across chunks during a meshing pass: one voxel of halo on every
// face so surface-nets can look at a cell's full 2x2x2 neighborhood without
// crossing back into the owning chunk's storage.
package sdf

import "voxelcore/internal/voxel/material"

// Far is the distance value assigned to samples with no real data behind
// them (an unloaded neighbor chunk). It reads as "empty" to the mesher:
// strictly positive and large enough that no interpolation mistakes it for
// a nearby surface.
const Far float32 = 1 << 20

// Buffer is a cube of side Interior+2, holding one material id and one
// distance sample per cell. Index (0,0,0) through (Interior+1,Interior+1,
// Interior+1) in "padded" coordinates; the chunk's own Interior^3 voxels
// live at padded coordinates [1, Interior].
type Buffer struct {
	Interior  int
	Values    []float32
	Materials []material.ID
}

// New allocates a buffer sized for chunks of the given interior edge length.
func New(interior int) *Buffer {
	padded := interior + 2
	n := padded * padded * padded
	return &Buffer{
		Interior:  interior,
		Values:    make([]float32, n),
		Materials: make([]material.ID, n),
	}
}

// Padded returns the buffer's edge length including the one-voxel halo.
func (b *Buffer) Padded() int {
	return b.Interior + 2
}

// Reset fills the buffer with the "no data" sentinel: empty material, far
// distance. Called once per chunk before a mesher borrows neighbor data
// into the halo and copies the chunk's own interior in.
func (b *Buffer) Reset() {
	for i := range b.Values {
		b.Values[i] = Far
		b.Materials[i] = material.Empty
	}
}

func (b *Buffer) index(x, y, z int) int {
	p := b.Padded()
	return x + y*p + z*p*p
}

// Set writes a sample at padded coordinates (x,y,z), each in
// [0, Interior+1].
func (b *Buffer) Set(x, y, z int, dist float32, mat material.ID) {
	i := b.index(x, y, z)
	b.Values[i] = dist
	b.Materials[i] = mat
}

// Get reads the sample at padded coordinates (x,y,z).
func (b *Buffer) Get(x, y, z int) (float32, material.ID) {
	i := b.index(x, y, z)
	return b.Values[i], b.Materials[i]
}

// InBounds reports whether the padded coordinate is within this buffer.
func (b *Buffer) InBounds(x, y, z int) bool {
	p := b.Padded()
	return x >= 0 && x < p && y >= 0 && y < p && z >= 0 && z < p
}
