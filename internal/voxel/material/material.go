// Package material defines the voxel material registry used throughout the
// voxel core: the small integer identity stored per-voxel, and the static
// properties (name, color) that the mesher blends on the GPU.
package material

import (
	"fmt"

	"voxelcore/internal/voxel/voxelerr"
)

// ID identifies a voxel material. Zero is reserved for "empty" (no solid
// matter); non-zero ids index the Registry.
type ID uint8

// Empty is the material id of an empty voxel.
const Empty ID = 0

// MaxMaterials bounds the registry size. The subsystem does not support a
// dynamic material count at run time (see Non-goals), so this is a
// compile-time constant rather than a registry-size field.
const MaxMaterials = 256

// Definition holds the static properties of a material.
type Definition struct {
	Name  string
	Color [3]float32
}

// Registry is the fixed table of known materials, indexed by ID. Entry 0 is
// always the empty placeholder and is never matched against a voxel.
var Registry = map[ID]Definition{
	Empty:  {Name: "empty", Color: [3]float32{0, 0, 0}},
	Dirt:   {Name: "dirt", Color: [3]float32{0.55, 0.41, 0.08}},
	Stone:  {Name: "stone", Color: [3]float32{0.48, 0.48, 0.48}},
	Sand:   {Name: "sand", Color: [3]float32{0.88, 0.75, 0.56}},
	Snow:   {Name: "snow", Color: [3]float32{0.94, 0.94, 0.94}},
	Grass:  {Name: "grass", Color: [3]float32{0.34, 0.49, 0.27}},
}

// Predefined material ids. Additional ids may be registered by a caller
// before any world is created; see Register.
const (
	Dirt ID = iota + 1
	Stone
	Sand
	Snow
	Grass
)

// Known reports whether id has a registry entry (or is Empty, which is
// always valid as a write target).
func Known(id ID) bool {
	if id == Empty {
		return true
	}
	_, ok := Registry[id]
	return ok
}

// Validate returns voxelerr.ErrMaterialUnknown wrapped with id if id is not
// Known. Callers compare against the shared sentinel with errors.Is rather
// than a package-local one, so the whole subsystem reports this edge case
// uniformly.
func Validate(id ID) error {
	if !Known(id) {
		return fmt.Errorf("%w: material id %d", voxelerr.ErrMaterialUnknown, id)
	}
	return nil
}

// Register adds or replaces a material definition. Intended for use during
// world setup, before any chunk data references the id; the subsystem does
// not support changing the registry while chunks are live (see Non-goals:
// dynamic voxel-type count at run time).
func Register(id ID, def Definition) {
	Registry[id] = def
}

// Name returns the material's display name, or "unknown" if unregistered.
func (id ID) Name() string {
	if def, ok := Registry[id]; ok {
		return def.Name
	}
	return "unknown"
}

// IsEmpty reports whether id represents the absence of matter.
func (id ID) IsEmpty() bool {
	return id == Empty
}
