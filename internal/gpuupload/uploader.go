// Package gpuupload is the reference GPU buffer uploader: the external
// collaborator described by spec.md's sync protocol, never imported by the
// voxel core packages. It drains a submesh.Manager's modification log once
// per frame and keeps a set of OpenGL buffers in step with the packed CPU
// arrays. Adapted from the teacher's ChunkMesh/NewChunkMesh buffer setup.
package gpuupload

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"voxelcore/internal/voxel/submesh"
)

// vertexFloats is the number of float32 values packed per vertex in the
// interleaved buffer: position(3) + normal(3) + materials(4) + weights(4),
// the last two stored as plain float values (material id, weight 0-8).
const vertexFloats = 3 + 3 + 4 + 4

// Uploader owns a VAO and the GPU buffers backing a submesh.Manager's
// packed vertex/index arrays. Not safe for concurrent use; intended to run
// on the thread holding the GL context, reading the modification log
// produced by the single-threaded meshing pass.
type Uploader struct {
	vao, vbo, ebo   uint32
	vertexCapacity  uint32
	indexCapacity   uint32
	scratch         []float32
}

// New allocates the VAO and empty GPU buffers, configuring vertex attribute
// pointers for the interleaved layout documented on vertexFloats.
func New() *Uploader {
	u := &Uploader{}

	gl.GenVertexArrays(1, &u.vao)
	gl.BindVertexArray(u.vao)

	gl.GenBuffers(1, &u.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, u.vbo)

	gl.GenBuffers(1, &u.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, u.ebo)

	stride := int32(vertexFloats * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, stride, 10*4)
	gl.EnableVertexAttribArray(3)

	gl.BindVertexArray(0)
	return u
}

// Delete releases the uploader's GL resources.
func (u *Uploader) Delete() {
	gl.DeleteBuffers(1, &u.vbo)
	gl.DeleteBuffers(1, &u.ebo)
	gl.DeleteVertexArrays(1, &u.vao)
}

// Sync drains mgr's modification log and brings the GPU buffers up to
// date, then acknowledges the sync so the log starts fresh for the next
// frame. Three cases, matching the external sync protocol:
//
//  1. No modifications: nothing to do.
//  2. The packed arrays grew past the buffers' current capacity: the
//     whole buffer must be reallocated (glBufferData orphans prior
//     contents), so the full current array is re-uploaded rather than
//     just the touched ranges.
//  3. Capacity is unchanged: only the specific vertex/index ranges
//     Modifications reported need re-uploading, via glBufferSubData.
//
// chunksWereRemoved carries no extra upload work by itself — removed
// chunks' ranges are simply absent from future draw calls via their
// owning submesh records — but is reported back to the caller so a
// renderer can, for instance, invalidate a cached draw-call list.
func (u *Uploader) Sync(mgr *submesh.Manager) (chunksWereRemoved bool) {
	ranges, removed := mgr.Modifications()
	if len(ranges) == 0 {
		mgr.ReportGPUResourcesSynchronized()
		return removed
	}

	vertexCount := uint32(len(mgr.Positions()))
	indexCount := uint32(len(mgr.Indices()))

	if vertexCount > u.vertexCapacity || indexCount > u.indexCapacity {
		u.reallocateAndUploadAll(mgr, vertexCount, indexCount)
	} else {
		for _, r := range ranges {
			u.uploadVertexRange(mgr, r.VertexRange.Start, r.VertexRange.End)
			u.uploadIndexRange(mgr, r.IndexRange.Start, r.IndexRange.End)
		}
	}

	mgr.ReportGPUResourcesSynchronized()
	return removed
}

func (u *Uploader) reallocateAndUploadAll(mgr *submesh.Manager, vertexCount, indexCount uint32) {
	u.vertexCapacity = vertexCount
	u.indexCapacity = indexCount

	interleaved := u.interleave(mgr, 0, vertexCount)
	gl.BindBuffer(gl.ARRAY_BUFFER, u.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(interleaved)*4, gl.Ptr(interleaved), gl.DYNAMIC_DRAW)

	indices := mgr.Indices()
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, u.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.DYNAMIC_DRAW)
}

func (u *Uploader) uploadVertexRange(mgr *submesh.Manager, start, end uint32) {
	if end <= start {
		return
	}
	interleaved := u.interleave(mgr, start, end)
	offset := int(start) * vertexFloats * 4
	gl.BindBuffer(gl.ARRAY_BUFFER, u.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, offset, len(interleaved)*4, gl.Ptr(interleaved))
}

func (u *Uploader) uploadIndexRange(mgr *submesh.Manager, start, end uint32) {
	if end <= start {
		return
	}
	indices := mgr.Indices()[start:end]
	offset := int(start) * 4
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, u.ebo)
	gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, offset, len(indices)*4, gl.Ptr(indices))
}

// interleave packs positions, normals and the material blend for vertices
// [start,end) into the scratch buffer used for every upload, reused across
// calls to avoid reallocating on every synced range.
func (u *Uploader) interleave(mgr *submesh.Manager, start, end uint32) []float32 {
	need := int(end-start) * vertexFloats
	if cap(u.scratch) < need {
		u.scratch = make([]float32, need)
	}
	out := u.scratch[:need]
	interleaveVertices(mgr, start, end, out)
	return out
}

// interleaveVertices packs vertices [start,end) from mgr into out, which
// must have length (end-start)*vertexFloats. Factored out of Uploader.interleave
// so the packing logic can be tested without an OpenGL context.
func interleaveVertices(mgr *submesh.Manager, start, end uint32, out []float32) {
	positions := mgr.Positions()
	normals := mgr.Normals()
	materials := mgr.Materials()

	for i := 0; i < int(end-start); i++ {
		base := i * vertexFloats
		p := positions[int(start)+i]
		nrm := normals[int(start)+i]
		blend := materials[int(start)+i]

		out[base+0], out[base+1], out[base+2] = p[0], p[1], p[2]
		out[base+3], out[base+4], out[base+5] = nrm[0], nrm[1], nrm[2]
		for m := 0; m < 4; m++ {
			out[base+6+m] = float32(blend.Materials[m])
		}
		for m := 0; m < 4; m++ {
			out[base+10+m] = float32(blend.Weights[m])
		}
	}
}

// IndexCount returns the number of indices currently backing the EBO.
func (u *Uploader) IndexCount() int32 {
	return int32(u.indexCapacity)
}

// DrawRange issues one draw call covering the count indices starting at
// startIndex in the shared EBO — a single submesh's IndexRange, as
// reported by submesh.Submesh. Callers are expected to skip ranges a
// culling pass rejected rather than draw the whole buffer every frame;
// the shared VAO still makes every chunk's geometry live in one buffer
// pair, but the draw call itself is per surviving chunk.
func (u *Uploader) DrawRange(startIndex, count uint32) {
	if count == 0 {
		return
	}
	gl.BindVertexArray(u.vao)
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(int(startIndex)*4))
	gl.BindVertexArray(0)
}

// VAO returns the uploader's vertex array object handle.
func (u *Uploader) VAO() uint32 {
	return u.vao
}
