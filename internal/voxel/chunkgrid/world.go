// Package chunkgrid implements the chunked sparse signed-distance-field
// voxel world: the sparse Size^3 chunk storage, its edit operations, and the
// bookkeeping (dirty set, face-obscurance flags) the mesher and submesh
// layers consume. Chunks are created lazily on first non-empty write and
// dropped once emptied; everywhere else in the grid reads as "empty, far".
package chunkgrid

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voxelcore/internal/voxel/material"
	"voxelcore/internal/voxel/sdf"
	"voxelcore/internal/voxel/voxelerr"
	pkgmath "voxelcore/pkg/math"
)

// maxChunkCoord bounds a chunk index component. The grid is conceptually
// unbounded, but arithmetic on chunk/voxel coordinates is done in int32 and
// int64 intermediates; this keeps every such computation comfortably clear
// of overflow rather than silently wrapping.
const maxChunkCoord = 1 << 20

// World is one chunked SDF voxel object: a sparse map of loaded chunks plus
// the dirty-set and obscurance bookkeeping a meshing pass consumes. A World
// is not safe for concurrent edits; it is safe for a meshing pass to read
// concurrently with the worker-pool fan-out described in the mesher
// package, since that pass only reads chunk data while holding the world's
// read lock for the duration of the snapshot it takes per chunk.
type World struct {
	mu sync.RWMutex

	id          uuid.UUID
	voxelExtent float64
	originOffset [3]float32

	chunks map[Index]*Chunk
	dirty  map[Index]struct{}

	log *zap.SugaredLogger
}

// New creates an empty world. voxelExtent is the edge length of one voxel
// in world-space units; logger may be nil, in which case a no-op logger is
// used.
func New(voxelExtent float64, logger *zap.SugaredLogger) *World {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &World{
		id:          uuid.New(),
		voxelExtent: voxelExtent,
		chunks:      make(map[Index]*Chunk),
		dirty:       make(map[Index]struct{}),
		log:         logger,
	}
}

// ID returns the world's identity, stable for its lifetime.
func (w *World) ID() uuid.UUID {
	return w.id
}

// VoxelExtent returns the world-space edge length of a single voxel.
func (w *World) VoxelExtent() float64 {
	return w.voxelExtent
}

// ChunkExtent returns the world-space edge length of one chunk.
func (w *World) ChunkExtent() float64 {
	return float64(Size) * w.voxelExtent
}

// OriginOffsetInRoot returns the world-space vector from the root world's
// origin to this world's origin, as set by SplitDisconnected. A world that
// was never split reports the zero vector.
func (w *World) OriginOffsetInRoot() [3]float32 {
	return w.originOffset
}

// ChunkCount returns the number of chunks currently stored.
func (w *World) ChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// ExposedChunkCountHeuristic returns an upper bound on the number of chunks
// a meshing pass will visit. Every stored chunk holds at least one solid
// voxel (chunks are dropped once emptied, see writeVoxelLocked), so this is
// exactly the loaded chunk count; callers size worker-pool queues and
// scratch-buffer pools from it.
func (w *World) ExposedChunkCountHeuristic() int {
	return w.ChunkCount()
}

func floorDivMod(v, size int32) (q, r int32) {
	q = v / size
	r = v % size
	if r < 0 {
		r += size
		q--
	}
	return q, r
}

func voxelToChunk(gx, gy, gz int32) (Index, int, int, int) {
	cx, lx := floorDivMod(gx, Size)
	cy, ly := floorDivMod(gy, Size)
	cz, lz := floorDivMod(gz, Size)
	return Index{cx, cy, cz}, int(lx), int(ly), int(lz)
}

func chunkInBounds(idx Index) bool {
	return abs32(idx.X) <= maxChunkCoord && abs32(idx.Y) <= maxChunkCoord && abs32(idx.Z) <= maxChunkCoord
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// GetChunk returns the chunk at idx, if loaded.
func (w *World) GetChunk(idx Index) (*Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[idx]
	return c, ok
}

// SetVoxel writes a single voxel at global voxel coordinates (gx,gy,gz),
// creating its chunk if needed. A write of material.Empty to a voxel whose
// chunk does not exist is a no-op. Returns voxelerr.ErrOutOfBounds if the
// coordinate's chunk index exceeds the representable range, or
// voxelerr.ErrMaterialUnknown if mat has no registry entry.
func (w *World) SetVoxel(gx, gy, gz int32, mat material.ID) error {
	if err := material.Validate(mat); err != nil {
		return err
	}
	idx, lx, ly, lz := voxelToChunk(gx, gy, gz)
	if !chunkInBounds(idx) {
		return fmt.Errorf("%w: chunk %v", voxelerr.ErrOutOfBounds, idx)
	}

	dist := float32(defaultEmptyDistance)
	if !mat.IsEmpty() {
		dist = defaultSolidDistance
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.writeVoxelLocked(idx, lx, ly, lz, mat, dist)
	return nil
}

// SetVoxelWithDistance writes a voxel with an explicit signed-distance
// sample rather than SetVoxel's binary near/far convention. Intended for
// procedural generation, where a continuous density function gives a
// smoother surface than a blocky binary fill would.
func (w *World) SetVoxelWithDistance(gx, gy, gz int32, mat material.ID, dist float32) error {
	if err := material.Validate(mat); err != nil {
		return err
	}
	idx, lx, ly, lz := voxelToChunk(gx, gy, gz)
	if !chunkInBounds(idx) {
		return fmt.Errorf("%w: chunk %v", voxelerr.ErrOutOfBounds, idx)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.writeVoxelLocked(idx, lx, ly, lz, mat, dist)
	return nil
}

// SetRegion fills every voxel in the half-open box [min,max) with mat.
func (w *World) SetRegion(min, max [3]int32, mat material.ID) error {
	if err := material.Validate(mat); err != nil {
		return err
	}
	if min[0] >= max[0] || min[1] >= max[1] || min[2] >= max[2] {
		return nil
	}

	// Chunk indices grow monotonically with voxel coordinates, so checking
	// the box's two corner chunks up front rejects an out-of-bounds region
	// before any voxel is written.
	for _, corner := range [2][3]int32{min, {max[0] - 1, max[1] - 1, max[2] - 1}} {
		if idx, _, _, _ := voxelToChunk(corner[0], corner[1], corner[2]); !chunkInBounds(idx) {
			return fmt.Errorf("%w: chunk %v", voxelerr.ErrOutOfBounds, idx)
		}
	}

	dist := float32(defaultEmptyDistance)
	if !mat.IsEmpty() {
		dist = defaultSolidDistance
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for gx := min[0]; gx < max[0]; gx++ {
		for gy := min[1]; gy < max[1]; gy++ {
			for gz := min[2]; gz < max[2]; gz++ {
				idx, lx, ly, lz := voxelToChunk(gx, gy, gz)
				if !chunkInBounds(idx) {
					return fmt.Errorf("%w: chunk %v", voxelerr.ErrOutOfBounds, idx)
				}
				w.writeVoxelLocked(idx, lx, ly, lz, mat, dist)
			}
		}
	}
	return nil
}

// CarveSphere sets every voxel within radius (in voxel units) of center to
// mat, writing the true signed distance to the sphere surface rather than
// the binary distance SetVoxel/SetRegion use. That's what gives a carved or
// placed sphere a rounded silhouette in the resulting mesh instead of a
// blocky one. center and radius are in voxel-index units (not world-space),
// matching SetVoxel/SetRegion's coordinate space.
func (w *World) CarveSphere(center [3]float64, radius float64, mat material.ID) error {
	if err := material.Validate(mat); err != nil {
		return err
	}
	if radius <= 0 {
		return nil
	}

	// One extra voxel of margin lets the distance field's near-surface
	// samples stay accurate even for voxels just outside the sphere,
	// which the mesher's edge interpolation benefits from.
	margin := 1.0
	minX := int32(math.Floor(center[0] - radius - margin))
	maxX := int32(math.Ceil(center[0] + radius + margin))
	minY := int32(math.Floor(center[1] - radius - margin))
	maxY := int32(math.Ceil(center[1] + radius + margin))
	minZ := int32(math.Floor(center[2] - radius - margin))
	maxZ := int32(math.Ceil(center[2] + radius + margin))

	// Reject the whole scan box up front, as SetRegion does, so an
	// out-of-bounds sphere writes nothing.
	for _, corner := range [2][3]int32{{minX, minY, minZ}, {maxX, maxY, maxZ}} {
		if idx, _, _, _ := voxelToChunk(corner[0], corner[1], corner[2]); !chunkInBounds(idx) {
			return fmt.Errorf("%w: chunk %v", voxelerr.ErrOutOfBounds, idx)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for gx := minX; gx <= maxX; gx++ {
		for gy := minY; gy <= maxY; gy++ {
			for gz := minZ; gz <= maxZ; gz++ {
				dist := pkgmath.Distance3D(float64(gx)+0.5, float64(gy)+0.5, float64(gz)+0.5,
					center[0], center[1], center[2]) - radius
				if dist > margin {
					continue
				}
				idx, lx, ly, lz := voxelToChunk(gx, gy, gz)
				if !chunkInBounds(idx) {
					return fmt.Errorf("%w: chunk %v", voxelerr.ErrOutOfBounds, idx)
				}
				voxelMat := material.Empty
				if dist < 0 {
					voxelMat = mat
				}
				w.writeVoxelLocked(idx, lx, ly, lz, voxelMat, float32(dist))
			}
		}
	}
	return nil
}

// writeVoxelLocked performs one voxel write and its follow-on bookkeeping:
// lazy chunk creation, empty-chunk eviction, dirty-set marking, and
// face-obscurance recomputation for the touched chunk and its neighbors.
// Caller must hold w.mu.
func (w *World) writeVoxelLocked(idx Index, lx, ly, lz int, mat material.ID, dist float32) {
	c, ok := w.chunks[idx]
	if !ok {
		if mat.IsEmpty() {
			return
		}
		c = newChunk(idx)
		w.chunks[idx] = c
	}

	changed := c.setVoxel(lx, ly, lz, mat, dist)

	if c.SolidCount() == 0 {
		delete(w.chunks, idx)
	}

	if !changed {
		return
	}

	w.markTouchedLocked(idx)
}

// markTouchedLocked marks idx and its six face neighbors dirty and
// recomputes face-obscurance flags for all of them: an edit to idx's outer
// slab can change whether a neighbor's adjoining face is obscured, and an
// edit to idx's own interior can change which of idx's own faces are
// obscured.
func (w *World) markTouchedLocked(idx Index) {
	w.dirty[idx] = struct{}{}
	w.recomputeFlagsLocked(idx)

	for _, face := range allFaces {
		dx, dy, dz := faceDelta(face)
		n := idx.Add(dx, dy, dz)
		if _, ok := w.chunks[n]; !ok {
			continue
		}
		w.dirty[n] = struct{}{}
		w.recomputeFlagsLocked(n)
	}
}

func (w *World) recomputeFlagsLocked(idx Index) {
	c, ok := w.chunks[idx]
	if !ok {
		return
	}
	var flags FaceFlags
	for _, face := range allFaces {
		if !c.outerSlabSolid(face) {
			continue
		}
		dx, dy, dz := faceDelta(face)
		n, ok := w.chunks[idx.Add(dx, dy, dz)]
		if !ok {
			continue
		}
		if n.outerSlabSolid(opposite(face)) {
			flags |= face
		}
	}
	c.flags = flags
}

// InvalidatedMeshChunkIndices returns the chunk indices touched since the
// last MarkChunkMeshesSynchronized, sorted for determinism.
func (w *World) InvalidatedMeshChunkIndices() []Index {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Index, 0, len(w.dirty))
	for idx := range w.dirty {
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

// MarkChunkMeshesSynchronized clears the dirty set, acknowledging that a
// mesher has finished processing every index InvalidatedMeshChunkIndices
// last returned.
func (w *World) MarkChunkMeshesSynchronized() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirty = make(map[Index]struct{})
}

// FillSDFForChunkIfExposed fills scratch with the padded signed-distance
// neighborhood of the chunk at idx: its own Size^3 interior plus a
// one-voxel halo borrowed from the six face neighbors (missing neighbors
// read as sdf.Far, per the package's halo-fill contract). Returns the
// chunk's face flags and true, or false if idx has no loaded chunk.
func (w *World) FillSDFForChunkIfExposed(idx Index, scratch *sdf.Buffer) (FaceFlags, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	c, ok := w.chunks[idx]
	if !ok {
		return 0, false
	}

	scratch.Reset()
	p := scratch.Padded()
	for px := 0; px < p; px++ {
		for py := 0; py < p; py++ {
			for pz := 0; pz < p; pz++ {
				gx, gy, gz := px-1, py-1, pz-1
				cIdx, lx, ly, lz := localOffsetChunk(idx, gx, gy, gz)
				src := c
				if cIdx != idx {
					src, ok = w.chunks[cIdx]
					if !ok {
						continue
					}
				}
				scratch.Set(px, py, pz, src.Distance(lx, ly, lz), src.Material(lx, ly, lz))
			}
		}
	}
	return c.flags, true
}

// localOffsetChunk resolves a local offset (possibly outside [0,Size)) from
// chunk idx into the chunk that actually owns it and that chunk's own local
// coordinates.
func localOffsetChunk(idx Index, lx, ly, lz int) (Index, int, int, int) {
	cdx, nlx := floorDivMod(int32(lx), Size)
	cdy, nly := floorDivMod(int32(ly), Size)
	cdz, nlz := floorDivMod(int32(lz), Size)
	return idx.Add(cdx, cdy, cdz), int(nlx), int(nly), int(nlz)
}

// ForEachExposedChunkWithSDF visits every chunk currently holding matter,
// filling scratch with its padded neighborhood before each call to visit.
// Chunks are visited in the same deterministic order as
// InvalidatedMeshChunkIndices. scratch is reused across calls; visit must
// not retain it past its call.
func (w *World) ForEachExposedChunkWithSDF(scratch *sdf.Buffer, visit func(idx Index, flags FaceFlags)) {
	w.mu.RLock()
	indices := make([]Index, 0, len(w.chunks))
	for idx := range w.chunks {
		indices = append(indices, idx)
	}
	w.mu.RUnlock()

	sort.Slice(indices, func(i, j int) bool {
		a, b := indices[i], indices[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})

	for _, idx := range indices {
		flags, ok := w.FillSDFForChunkIfExposed(idx, scratch)
		if !ok {
			continue
		}
		visit(idx, flags)
	}
}

// SplitDisconnected partitions the world's loaded chunks into connected
// components (chunk-level face adjacency; two loaded chunks are connected
// if they share a face) and, when there is more than one, keeps the
// largest in place and returns the rest as new Worlds. Connectivity is
// judged at chunk granularity rather than per-voxel: an exact voxel-level
// flood fill over a sparse, unbounded grid has no useful bound on its own
// cost, and the spec does not require sub-chunk precision here. Among
// equally large components, the one holding the lowest chunk index
// (ordered by X, then Y, then Z) is kept. Returns nil if the world is
// already a single component.
func (w *World) SplitDisconnected() []*World {
	w.mu.Lock()
	defer w.mu.Unlock()

	components := w.connectedComponentsLocked()
	if len(components) <= 1 {
		return nil
	}

	largest := 0
	for i, comp := range components {
		if len(comp) > len(components[largest]) {
			largest = i
		}
	}

	var split []*World
	for i, comp := range components {
		if i == largest {
			continue
		}
		split = append(split, w.extractComponentLocked(comp))
	}
	return split
}

func (w *World) connectedComponentsLocked() [][]Index {
	visited := make(map[Index]bool, len(w.chunks))
	var components [][]Index

	starts := make([]Index, 0, len(w.chunks))
	for idx := range w.chunks {
		starts = append(starts, idx)
	}
	sort.Slice(starts, func(i, j int) bool {
		a, b := starts[i], starts[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})

	for _, start := range starts {
		if visited[start] {
			continue
		}
		var comp []Index
		stack := []Index{start}
		visited[start] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)
			for _, face := range allFaces {
				dx, dy, dz := faceDelta(face)
				n := cur.Add(dx, dy, dz)
				if visited[n] {
					continue
				}
				if _, ok := w.chunks[n]; !ok {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}
		components = append(components, comp)
	}
	return components
}

// extractComponentLocked removes the given chunk indices from w and returns
// a new World containing them, rebased so the component's minimum chunk
// index becomes (0,0,0); originOffset records the world-space position of
// that corner relative to the root world's origin (w's own offset plus the
// corner's position in w).
func (w *World) extractComponentLocked(comp []Index) *World {
	min := comp[0]
	for _, idx := range comp[1:] {
		if idx.X < min.X {
			min.X = idx.X
		}
		if idx.Y < min.Y {
			min.Y = idx.Y
		}
		if idx.Z < min.Z {
			min.Z = idx.Z
		}
	}

	child := New(w.voxelExtent, w.log)
	extent := float32(w.ChunkExtent())
	child.originOffset = [3]float32{
		w.originOffset[0] + float32(min.X)*extent,
		w.originOffset[1] + float32(min.Y)*extent,
		w.originOffset[2] + float32(min.Z)*extent,
	}

	for _, idx := range comp {
		c := w.chunks[idx]
		delete(w.chunks, idx)
		delete(w.dirty, idx)

		rebased := idx.Add(-min.X, -min.Y, -min.Z)
		c.index = rebased
		child.chunks[rebased] = c
		child.dirty[rebased] = struct{}{}
	}

	w.log.Debugw("split disconnected voxel component",
		"parent", w.id, "child", child.id, "chunks", len(comp))

	return child
}
