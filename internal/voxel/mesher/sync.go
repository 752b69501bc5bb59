package mesher

import (
	"runtime"
	"sync"

	"github.com/alitto/pond/v2"

	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/sdf"
	"voxelcore/internal/voxel/submesh"
)

// Sync runs one meshing pass over every chunk index w currently has
// marked dirty: remeshes each into a ChunkMeshResult (or detects its
// removal) using a bounded worker pool, one sdf.Buffer scratch per task so
// concurrent tasks never share mutable state, then merges every result
// into mgr sequentially on the calling goroutine — the single owner of
// the allocators and modification log, per the package's concurrency
// model. maxWorkers bounds pool concurrency; pass 0 to use
// runtime.NumCPU().
//
// Returns an error wrapping voxelerr.ErrInvariantViolation, and aborts the
// remainder of the merge, if mgr detects corrupted range bookkeeping or an
// out-of-range vertex index while merging a result — this is the fatal
// condition spec.md requires the meshing pass to surface rather than push
// to the GPU.
func (m *Mesher) Sync(w *chunkgrid.World, mgr *submesh.Manager, maxWorkers int) error {
	indices := w.InvalidatedMeshChunkIndices()
	if len(indices) == 0 {
		return nil
	}

	type outcome struct {
		idx     chunkgrid.Index
		result  ChunkMeshResult
		flags   chunkgrid.FaceFlags
		present bool
	}

	results := make([]outcome, len(indices))

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	pool := pond.NewPool(maxWorkers)
	var wg sync.WaitGroup
	wg.Add(len(indices))

	for i, idx := range indices {
		i, idx := i, idx
		pool.Submit(func() {
			defer wg.Done()
			buf := sdf.New(chunkgrid.Size)
			flags, ok := w.FillSDFForChunkIfExposed(idx, buf)
			if !ok {
				results[i] = outcome{idx: idx, present: false}
				return
			}
			results[i] = outcome{idx: idx, result: m.MeshChunk(idx, buf), flags: flags, present: true}
		})
	}

	wg.Wait()
	pool.StopAndWait()

	// Merge sequentially: mgr.WriteChunk/RemoveChunk own the allocators
	// and modification log and are not safe for concurrent callers.
	for _, o := range results {
		if !o.present {
			if err := mgr.RemoveChunk(o.idx); err != nil {
				return err
			}
			continue
		}
		if err := mgr.WriteChunk(o.idx, o.result, o.flags); err != nil {
			return err
		}
	}

	if err := mgr.PerformMaintenance(); err != nil {
		return err
	}
	w.MarkChunkMeshesSynchronized()
	return nil
}
