package submesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/voxel/voxelerr"
)

func TestRangeAllocatorAllocatesNothingBeforeFreed(t *testing.T) {
	a := NewRangeAllocator()
	r := a.Allocate(10)
	assert.Equal(t, Range{0, 10}, r)
	assert.Empty(t, a.FreeRanges())
}

func TestRangeAllocatorFreesAndAllocatesSingleRange(t *testing.T) {
	a := NewRangeAllocator()
	r := a.Allocate(10)
	a.Free(r)
	require.Len(t, a.FreeRanges(), 1)
	assert.Equal(t, Range{0, 10}, a.FreeRanges()[0])

	reused := a.Allocate(10)
	assert.Equal(t, Range{0, 10}, reused)
	assert.Empty(t, a.FreeRanges())
}

func TestRangeAllocatorAllocatesRangeInSmallestSlot(t *testing.T) {
	a := NewRangeAllocator()
	r1 := a.Allocate(10)
	r2 := a.Allocate(5)
	r3 := a.Allocate(20)
	a.Free(r1)
	a.Free(r2)
	a.Free(r3)

	got := a.Allocate(4)
	assert.Equal(t, r2.Start, got.Start)
	assert.Equal(t, r2.Start+4, got.End)
	assert.NoError(t, a.CheckInvariants())
}

func TestRangeAllocatorUsesPartsOfLargerSlots(t *testing.T) {
	a := NewRangeAllocator()
	r := a.Allocate(100)
	a.Free(r)

	got := a.Allocate(30)
	assert.Equal(t, Range{0, 30}, got)
	require.Len(t, a.FreeRanges(), 1)
	assert.Equal(t, Range{30, 100}, a.FreeRanges()[0])
}

func TestRangeAllocatorDoesNotMergeTwoDisconnectedFreeRanges(t *testing.T) {
	a := NewRangeAllocator()
	r1 := a.Allocate(10)
	a.Allocate(5) // gap
	r3 := a.Allocate(10)

	a.Free(r1)
	a.Free(r3)

	require.Len(t, a.FreeRanges(), 2)
	a.MergeConsecutive()
	assert.Len(t, a.FreeRanges(), 2)
}

func TestRangeAllocatorMergesTwoConsecutiveFreeRanges(t *testing.T) {
	a := NewRangeAllocator()
	r1 := a.Allocate(10)
	r2 := a.Allocate(10)

	a.Free(r1)
	a.Free(r2)
	require.Len(t, a.FreeRanges(), 2)

	a.MergeConsecutive()
	require.Len(t, a.FreeRanges(), 1)
	assert.Equal(t, Range{0, 20}, a.FreeRanges()[0])
}

func TestRangeAllocatorMergesThreeConsecutiveFreeRanges(t *testing.T) {
	a := NewRangeAllocator()
	r1 := a.Allocate(10)
	r2 := a.Allocate(10)
	r3 := a.Allocate(10)

	a.Free(r2)
	a.Free(r1)
	a.Free(r3)

	a.MergeConsecutive()
	require.Len(t, a.FreeRanges(), 1)
	assert.Equal(t, Range{0, 30}, a.FreeRanges()[0])
}

func TestRangeAllocatorMergesFourConsecutiveFreeRanges(t *testing.T) {
	a := NewRangeAllocator()
	r1 := a.Allocate(10)
	r2 := a.Allocate(10)
	r3 := a.Allocate(10)
	r4 := a.Allocate(10)

	a.Free(r3)
	a.Free(r1)
	a.Free(r4)
	a.Free(r2)

	a.MergeConsecutive()
	require.Len(t, a.FreeRanges(), 1)
	assert.Equal(t, Range{0, 40}, a.FreeRanges()[0])
	assert.NoError(t, a.CheckInvariants())
}

func TestRangeAllocatorCheckInvariantsDetectsOverlappingFreeRanges(t *testing.T) {
	a := NewRangeAllocator()
	a.Allocate(20)
	a.length = 20
	// Hand-corrupt the free list with two overlapping ranges; this can't
	// happen through Allocate/Free/MergeConsecutive alone, but is exactly
	// the accounting corruption CheckInvariants exists to catch.
	a.freeRanges = []Range{{Start: 0, End: 10}, {Start: 5, End: 20}}

	err := a.CheckInvariants()
	require.Error(t, err)
	assert.ErrorIs(t, err, voxelerr.ErrInvariantViolation)
}

func TestRangeAllocatorCheckInvariantsDetectsRangePastLength(t *testing.T) {
	a := NewRangeAllocator()
	a.length = 10
	a.freeRanges = []Range{{Start: 0, End: 20}}

	err := a.CheckInvariants()
	require.Error(t, err)
	assert.ErrorIs(t, err, voxelerr.ErrInvariantViolation)
}
