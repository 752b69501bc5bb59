// Package voxelerr defines the sentinel error kinds shared across the voxel
// core, matching spec.md's three error kinds: OutOfBounds, MaterialUnknown
// (both no-op, recoverable) and InvariantViolation (fatal, programmer-facing).
package voxelerr

import "errors"

// ErrOutOfBounds is returned when a chunk or voxel index exceeds a
// representable bound. The call that produced it is a no-op.
var ErrOutOfBounds = errors.New("voxelcore: index out of bounds")

// ErrMaterialUnknown is returned when a write references a material id
// outside the registry. The call that produced it is a no-op.
var ErrMaterialUnknown = errors.New("voxelcore: material unknown")

// ErrInvariantViolation indicates internal accounting detected a disjoint
// submesh range overlap or an index outside its claimed vertex range. It is
// fatal to the meshing pass that produced it and is meant for programmer
// inspection, not recovery.
var ErrInvariantViolation = errors.New("voxelcore: invariant violation")

// Is reports whether err wraps target via errors.Is, provided for callers
// that prefer a free function over importing errors directly.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
