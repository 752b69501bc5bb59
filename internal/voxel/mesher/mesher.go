// Package mesher turns a chunk's signed-distance field into a triangle
// mesh using surface nets: one vertex per active cell (a cell whose eight
// corners don't all share the same distance sign), placed at the average
// of its sign-changing edge crossings, with a central-difference normal
// and a per-vertex material blend drawn from the cell's solid corners.
package mesher

import (
	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/material"
	"voxelcore/internal/voxel/sdf"
)

// IndexMaterials is the per-vertex material blend the GPU shader uses to
// interpolate between up to four materials meeting at a surface vertex.
// Weights always sum to 8; unused slots are material.Empty with weight 0.
type IndexMaterials struct {
	Materials [4]material.ID
	Weights   [4]uint8
}

// ChunkMeshResult is one chunk's surface-nets output, with vertex
// positions already in world space (the chunk's origin offset folded in).
// Indices are local to this result's own Positions/Normals/IndexMaterials
// slices; the submesh layer re-bases them when it copies the result into
// the packed arrays shared across chunks.
type ChunkMeshResult struct {
	Positions      [][3]float32
	Normals        [][3]float32
	IndexMaterials []IndexMaterials
	Indices        []uint32
}

// Empty reports whether the result has no geometry, which happens when a
// chunk's SDF is uniformly positive or uniformly negative (see spec's edge
// cases: an all-solid or all-empty chunk contributes nothing).
func (r ChunkMeshResult) Empty() bool {
	return len(r.Indices) == 0
}

// cornerOffset[i] gives the (x,y,z) offset of cube corner i, 0-7, using the
// convention index = x + 2y + 4z.
var cornerOffset = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1},
}

// cubeEdges lists the 12 cube edges as corner-index pairs.
var cubeEdges = [12][2]int{
	{0, 1}, {0, 2}, {0, 4},
	{1, 3}, {1, 5},
	{2, 3}, {2, 6},
	{3, 7},
	{4, 5}, {4, 6},
	{5, 7},
	{6, 7},
}

// Mesher generates surface-nets geometry for one chunk at a time. It holds
// no per-chunk state, so a single Mesher may be shared across goroutines
// fed from distinct sdf.Buffer scratch instances, matching the worker-pool
// fan-out in Sync.
type Mesher struct {
	voxelExtent float64
}

// New creates a Mesher for a world whose voxels have the given edge length.
func New(voxelExtent float64) *Mesher {
	return &Mesher{voxelExtent: voxelExtent}
}

// MeshChunk polygonizes the padded SDF neighborhood in buf (as produced by
// chunkgrid.World.FillSDFForChunkIfExposed) into a ChunkMeshResult. idx is
// the chunk's grid address, used to place output vertices in world space.
func (m *Mesher) MeshChunk(idx chunkgrid.Index, buf *sdf.Buffer) ChunkMeshResult {
	var result ChunkMeshResult

	n := chunkgrid.Size
	// vertexAt maps a cell's (lx,ly,lz) to its index in result.Positions,
	// or -1 if that cell produced no vertex.
	vertexAt := make([]int32, n*n*n)
	for i := range vertexAt {
		vertexAt[i] = -1
	}
	cellIndex := func(x, y, z int) int { return x + y*n + z*n*n }

	// chunkOrigin is the world-space position of this chunk's local
	// (0,0,0) voxel corner. The half-voxel shift keeps a voxel's sample
	// point at its center rather than its near corner.
	extent := float32(m.voxelExtent)
	chunkExtent := extent * float32(n)
	chunkOrigin := [3]float32{
		float32(idx.X)*chunkExtent - 0.5*extent,
		float32(idx.Y)*chunkExtent - 0.5*extent,
		float32(idx.Z)*chunkExtent - 0.5*extent,
	}

	for lz := 0; lz < n; lz++ {
		for ly := 0; ly < n; ly++ {
			for lx := 0; lx < n; lx++ {
				v, ok := m.buildCellVertex(buf, lx, ly, lz, chunkOrigin, extent)
				if !ok {
					continue
				}
				idxOut := int32(len(result.Positions))
				result.Positions = append(result.Positions, v.position)
				result.Normals = append(result.Normals, v.normal)
				result.IndexMaterials = append(result.IndexMaterials, v.blend)
				vertexAt[cellIndex(lx, ly, lz)] = idxOut
			}
		}
	}

	// Quad generation: a lattice edge that crosses the surface is shared
	// by the four cells around it; when all four produced a vertex, close
	// the quad between them. Walking edges (not cells) is what keeps this
	// from needing direction-specific special cases at the chunk boundary
	// beyond the obvious one of requiring all four neighbor cells in range.
	m.emitQuadsAlongAxis(&result, buf, vertexAt, cellIndex, 0) // x-edges
	m.emitQuadsAlongAxis(&result, buf, vertexAt, cellIndex, 1) // y-edges
	m.emitQuadsAlongAxis(&result, buf, vertexAt, cellIndex, 2) // z-edges

	return result
}

// emitQuadsAlongAxis walks every lattice edge parallel to the given axis
// (0=x,1=y,2=z) and, where the edge crosses the surface, emits the quad
// joining the four cells around it.
func (m *Mesher) emitQuadsAlongAxis(result *ChunkMeshResult, buf *sdf.Buffer, vertexAt []int32, cellIndex func(x, y, z int) int, axis int) {
	n := chunkgrid.Size

	// u, v are the two axes perpendicular to axis; a cell quad needs both
	// neighbor coordinates in [1, n-1] so all four surrounding cells exist.
	for base := 0; base < n; base++ {
		for u := 1; u < n; u++ {
			for v := 1; v < n; v++ {
				var px, py, pz int
				switch axis {
				case 0:
					px, py, pz = base, u, v
				case 1:
					px, py, pz = u, base, v
				default:
					px, py, pz = u, v, base
				}

				// Lattice corner samples at the two ends of this edge, in
				// padded buffer coordinates (+1 for the halo offset).
				d0, _ := buf.Get(px+1, py+1, pz+1)
				var qx, qy, qz int
				switch axis {
				case 0:
					qx, qy, qz = px+1, py, pz
				case 1:
					qx, qy, qz = px, py+1, pz
				default:
					qx, qy, qz = px, py, pz+1
				}
				d1, _ := buf.Get(qx+1, qy+1, qz+1)

				if (d0 > 0) == (d1 > 0) {
					continue
				}

				// The four cells sharing this edge have min corners at
				// (u-1 or u, v-1 or v) in the two perpendicular axes, and
				// `base` fixed along axis.
				var c0, c1, c2, c3 int32
				switch axis {
				case 0:
					c0 = vertexAt[cellIndex(base, u-1, v-1)]
					c1 = vertexAt[cellIndex(base, u, v-1)]
					c2 = vertexAt[cellIndex(base, u-1, v)]
					c3 = vertexAt[cellIndex(base, u, v)]
				case 1:
					c0 = vertexAt[cellIndex(u-1, base, v-1)]
					c1 = vertexAt[cellIndex(u, base, v-1)]
					c2 = vertexAt[cellIndex(u-1, base, v)]
					c3 = vertexAt[cellIndex(u, base, v)]
				default:
					c0 = vertexAt[cellIndex(u-1, v-1, base)]
					c1 = vertexAt[cellIndex(u, v-1, base)]
					c2 = vertexAt[cellIndex(u-1, v, base)]
					c3 = vertexAt[cellIndex(u, v, base)]
				}

				if c0 < 0 || c1 < 0 || c2 < 0 || c3 < 0 {
					continue
				}

				// d0 (the lower-coordinate corner) solid (non-positive,
				// matching the sign convention buildCellVertex and the
				// crossing test above use) selects one winding, empty the
				// other, so the quad's normal faces from solid to empty.
				if d0 <= 0 {
					result.Indices = append(result.Indices, uint32(c0), uint32(c1), uint32(c2))
					result.Indices = append(result.Indices, uint32(c1), uint32(c3), uint32(c2))
				} else {
					result.Indices = append(result.Indices, uint32(c0), uint32(c2), uint32(c1))
					result.Indices = append(result.Indices, uint32(c1), uint32(c2), uint32(c3))
				}
			}
		}
	}
}

type cellVertex struct {
	position [3]float32
	normal   [3]float32
	blend    IndexMaterials
}

// buildCellVertex evaluates one cell's eight corners and, if they don't
// all share a sign, returns its surface-nets vertex.
func (m *Mesher) buildCellVertex(buf *sdf.Buffer, lx, ly, lz int, origin [3]float32, extent float32) (cellVertex, bool) {
	var dists [8]float32
	var mats [8]material.ID
	for i, off := range cornerOffset {
		px, py, pz := lx+1+off[0], ly+1+off[1], lz+1+off[2]
		dists[i], mats[i] = buf.Get(px, py, pz)
	}

	var positive, negative bool
	for _, d := range dists {
		if d > 0 {
			positive = true
		} else {
			negative = true
		}
	}
	if !positive || !negative {
		return cellVertex{}, false
	}

	var sum [3]float32
	var count float32
	for _, e := range cubeEdges {
		a, b := e[0], e[1]
		da, db := dists[a], dists[b]
		if (da > 0) == (db > 0) {
			continue
		}
		t := da / (da - db)
		oa, ob := cornerOffset[a], cornerOffset[b]
		for axis := 0; axis < 3; axis++ {
			pos := float32(oa[axis]) + t*float32(ob[axis]-oa[axis])
			sum[axis] += pos
		}
		count++
	}

	var local [3]float32
	for axis := 0; axis < 3; axis++ {
		local[axis] = sum[axis] / count
	}

	position := [3]float32{
		origin[0] + (float32(lx)+local[0])*extent,
		origin[1] + (float32(ly)+local[1])*extent,
		origin[2] + (float32(lz)+local[2])*extent,
	}

	normal := m.centralDifferenceNormal(buf, lx+1, ly+1, lz+1)
	blend := blendMaterials(mats, dists)

	return cellVertex{position: position, normal: normal, blend: blend}, true
}

// centralDifferenceNormal estimates the SDF gradient at padded coordinate
// (px,py,pz) by sampling one step to either side along each axis. Every
// active cell's corner-0 lattice point has a full one-voxel margin on all
// sides within the padded buffer, so this never reads outside it.
func (m *Mesher) centralDifferenceNormal(buf *sdf.Buffer, px, py, pz int) [3]float32 {
	dxPos, _ := buf.Get(px+1, py, pz)
	dxNeg, _ := buf.Get(px-1, py, pz)
	dyPos, _ := buf.Get(px, py+1, pz)
	dyNeg, _ := buf.Get(px, py-1, pz)
	dzPos, _ := buf.Get(px, py, pz+1)
	dzNeg, _ := buf.Get(px, py, pz-1)

	g := [3]float32{dxPos - dxNeg, dyPos - dyNeg, dzPos - dzNeg}
	length := sqrt32(g[0]*g[0] + g[1]*g[1] + g[2]*g[2])
	if length < 1e-8 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{g[0] / length, g[1] / length, g[2] / length}
}

func sqrt32(v float32) float32 {
	// Newton's method avoids pulling in math.Sqrt's float64 round trip for
	// a value that's already known to be non-negative and well-scaled.
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 8; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

// blendMaterials builds the up-to-four-material blend for a vertex from
// its cell's solid (negative-distance) corners, weighting by how many
// corners share each material and scaling to a total of 8.
func blendMaterials(mats [8]material.ID, dists [8]float32) IndexMaterials {
	counts := make(map[material.ID]int, 4)
	var order []material.ID
	for i, d := range dists {
		if d > 0 {
			continue
		}
		id := mats[i]
		if id.IsEmpty() {
			continue
		}
		if _, seen := counts[id]; !seen {
			order = append(order, id)
		}
		counts[id]++
	}

	// Keep at most the four most frequent materials, ties broken by id so
	// results are deterministic.
	sortByCountThenID(order, counts)
	if len(order) > 4 {
		order = order[:4]
	}

	var out IndexMaterials
	total := 0
	for _, id := range order {
		total += counts[id]
	}
	if total == 0 {
		return out
	}

	assigned := 0
	for i, id := range order {
		out.Materials[i] = id
		w := counts[id] * 8 / total
		out.Weights[i] = uint8(w)
		assigned += w
	}
	// Largest-remainder style top-up: hand any rounding shortfall to the
	// most frequent material so weights always sum to exactly 8.
	if assigned < 8 && len(order) > 0 {
		out.Weights[0] += uint8(8 - assigned)
	}
	return out
}

func sortByCountThenID(order []material.ID, counts map[material.ID]int) {
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := order[j-1], order[j]
			if counts[a] > counts[b] || (counts[a] == counts[b] && a <= b) {
				break
			}
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
}

