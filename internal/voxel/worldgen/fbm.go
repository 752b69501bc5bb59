// Package worldgen populates a chunkgrid.World with procedural terrain: a
// fractal-Brownian-motion height field sampled with OpenSimplex noise,
// written as a smooth signed-distance surface rather than blocky per-voxel
// fills. Adapted from the teacher's height-column terrain generator, which
// built discrete block columns from the same kind of FBM height sample.
package worldgen

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// FBMConfig controls how octaves of simplex noise are summed into one
// height sample.
type FBMConfig struct {
	Octaves     int
	Lacunarity  float64
	Persistence float64
	Scale       float64
}

// DefaultFBMConfig returns reasonable defaults for rolling terrain.
func DefaultFBMConfig() FBMConfig {
	return FBMConfig{
		Octaves:     4,
		Lacunarity:  2.0,
		Persistence: 0.5,
		Scale:       0.01,
	}
}

// FBM sums octaves of a 2D noise source into a single normalized sample.
type FBM struct {
	Config FBMConfig
}

// NewFBM creates an FBM sampler with the given configuration.
func NewFBM(cfg FBMConfig) FBM {
	return FBM{Config: cfg}
}

// Sample2D evaluates the fractal sum at (x,z), normalized to roughly
// [-1, 1].
func (f FBM) Sample2D(noise opensimplex.Noise, x, z float64) float64 {
	var total, amplitude, frequency, maxValue float64
	amplitude = 1
	frequency = f.Config.Scale

	for o := 0; o < f.Config.Octaves; o++ {
		total += noise.Eval2(x*frequency, z*frequency) * amplitude
		maxValue += amplitude
		amplitude *= f.Config.Persistence
		frequency *= f.Config.Lacunarity
	}

	if maxValue == 0 {
		return 0
	}
	return total / maxValue
}
