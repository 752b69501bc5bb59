// Package submesh packs per-chunk mesh geometry into shared vertex and
// index arrays: a best-fit free-range allocator hands out element ranges,
// and a Manager tracks which chunk owns which range plus the log of
// ranges a GPU uploader still needs to see.
package submesh

import (
	"fmt"

	"voxelcore/internal/voxel/voxelerr"
)

// Range is a half-open interval [Start, End) over a packed array.
type Range struct {
	Start, End uint32
}

// Len returns the number of elements the range covers.
func (r Range) Len() uint32 {
	return r.End - r.Start
}

// Empty reports whether the range covers nothing.
func (r Range) Empty() bool {
	return r.Start >= r.End
}

// RangeAllocator hands out best-fit ranges over an initially-unbounded
// packed array and reclaims them on free, coalescing adjacent free ranges
// only when MergeConsecutive is called (not eagerly on every free) so a
// burst of frees doesn't pay for repeated rescans.
type RangeAllocator struct {
	// freeRanges is kept sorted by Start; ranges never overlap.
	freeRanges []Range
	// length is the logical size of the backing array: everything from
	// 0 to length that isn't in freeRanges is allocated.
	length uint32
}

// NewRangeAllocator creates an allocator over an initially-empty array.
func NewRangeAllocator() *RangeAllocator {
	return &RangeAllocator{}
}

// Length returns the current logical size of the backing array.
func (a *RangeAllocator) Length() uint32 {
	return a.length
}

// Allocate returns a range of the requested length, reusing the
// smallest free range that fits (best fit), or appending to the end of
// the array if no free range is large enough.
func (a *RangeAllocator) Allocate(requiredLen uint32) Range {
	if requiredLen == 0 {
		return Range{}
	}

	bestIdx := -1
	for i, r := range a.freeRanges {
		if r.Len() < requiredLen {
			continue
		}
		if bestIdx == -1 || r.Len() < a.freeRanges[bestIdx].Len() {
			bestIdx = i
		}
	}

	if bestIdx == -1 {
		start := a.length
		a.length += requiredLen
		return Range{Start: start, End: start + requiredLen}
	}

	chosen := a.freeRanges[bestIdx]
	allocated := Range{Start: chosen.Start, End: chosen.Start + requiredLen}

	remainder := Range{Start: allocated.End, End: chosen.End}
	if remainder.Empty() {
		a.freeRanges = append(a.freeRanges[:bestIdx], a.freeRanges[bestIdx+1:]...)
	} else {
		a.freeRanges[bestIdx] = remainder
	}

	return allocated
}

// Free returns a previously allocated range to the pool. It does not merge
// with adjacent free ranges; call MergeConsecutive during periodic
// maintenance to do that.
func (a *RangeAllocator) Free(r Range) {
	if r.Empty() {
		return
	}

	idx := 0
	for idx < len(a.freeRanges) && a.freeRanges[idx].Start < r.Start {
		idx++
	}
	a.freeRanges = append(a.freeRanges, Range{})
	copy(a.freeRanges[idx+1:], a.freeRanges[idx:])
	a.freeRanges[idx] = r
}

// MergeConsecutive coalesces runs of free ranges where one ends exactly
// where the next begins, reducing fragmentation that Free alone leaves
// behind. Intended to be called periodically (once per meshing pass),
// not on every Free.
func (a *RangeAllocator) MergeConsecutive() {
	if len(a.freeRanges) < 2 {
		return
	}

	merged := a.freeRanges[:1]
	for _, r := range a.freeRanges[1:] {
		last := &merged[len(merged)-1]
		if last.End == r.Start {
			last.End = r.End
			continue
		}
		merged = append(merged, r)
	}
	a.freeRanges = merged
}

// FreeRanges returns the allocator's current free ranges, sorted by Start.
// Exposed for tests and diagnostics; callers must not mutate the result.
func (a *RangeAllocator) FreeRanges() []Range {
	return a.freeRanges
}

// CheckInvariants reports whether the allocator's free-range bookkeeping is
// still internally consistent: ranges sorted by Start, never overlapping
// each other, and never extending past the backing array's logical length.
// Returns an error wrapping voxelerr.ErrInvariantViolation on failure, per
// the requirement that disjoint-range-overlap corruption abort the meshing
// pass and surface the condition rather than silently corrupt the packed
// arrays. Called from Manager.WriteChunk and PerformMaintenance after every
// allocator mutation.
func (a *RangeAllocator) CheckInvariants() error {
	for i, r := range a.freeRanges {
		if r.End > a.length {
			return fmt.Errorf("%w: free range %v extends past backing length %d", voxelerr.ErrInvariantViolation, r, a.length)
		}
		if i > 0 && a.freeRanges[i-1].End > r.Start {
			return fmt.Errorf("%w: free ranges %v and %v overlap", voxelerr.ErrInvariantViolation, a.freeRanges[i-1], r)
		}
	}
	return nil
}
