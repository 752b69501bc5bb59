package worldgen

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/material"
	pkgmath "voxelcore/pkg/math"
)

// Biome names a terrain variant: its surface material, typical height
// modifier, and amplitude, following the teacher's predefined-biome table
// but driving continuous density instead of discrete block layers.
type Biome struct {
	Name          string
	Surface       material.ID
	Subsurface    material.ID
	HeightMod     float64
	AmplitudeMod  float64
}

// Predefined biomes, adapted from the teacher's terrain generator.
var (
	BiomePlains = Biome{Name: "plains", Surface: material.Grass, Subsurface: material.Dirt, HeightMod: 0, AmplitudeMod: 1}
	BiomeDesert = Biome{Name: "desert", Surface: material.Sand, Subsurface: material.Sand, HeightMod: -2, AmplitudeMod: 0.6}
	BiomeSnow   = Biome{Name: "snow", Surface: material.Snow, Subsurface: material.Stone, HeightMod: 4, AmplitudeMod: 1.4}
)

// Config controls a Generator's terrain shape.
type Config struct {
	Seed        int64
	BaseHeight  float64
	Amplitude   float64
	Biome       Biome
	VoxelExtent float64
}

// DefaultConfig returns rolling plains terrain.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:        seed,
		BaseHeight:  64,
		Amplitude:   16,
		Biome:       BiomePlains,
		VoxelExtent: 1.0,
	}
}

// Generator fills a chunkgrid.World with a smooth height-field surface,
// writing the true signed distance to the terrain surface (positive above,
// negative below) rather than a blocky binary fill.
type Generator struct {
	cfg        Config
	heightFBM  FBM
	heightNoise opensimplex.Noise
}

// NewGenerator creates a Generator from cfg.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg:         cfg,
		heightFBM:   NewFBM(DefaultFBMConfig()),
		heightNoise: opensimplex.New(cfg.Seed),
	}
}

// HeightAt returns the terrain surface height (in voxel units) at the
// given world XZ column.
func (g *Generator) HeightAt(gx, gz int32) float64 {
	n := pkgmath.Clamp(g.heightFBM.Sample2D(g.heightNoise, float64(gx), float64(gz)), -1, 1)
	return g.cfg.BaseHeight + g.cfg.Biome.HeightMod + n*g.cfg.Amplitude*g.cfg.Biome.AmplitudeMod
}

// GenerateColumn fills world-space voxel column (gx,gz) between minY and
// maxY (exclusive) with the biome's material below the terrain surface and
// empty above it, writing the true signed distance to the surface so the
// mesher produces a smooth hillside rather than a staircase.
func (g *Generator) GenerateColumn(w *chunkgrid.World, gx, gz int32, minY, maxY int32) error {
	surface := g.HeightAt(gx, gz)

	for gy := minY; gy < maxY; gy++ {
		dist := float32(float64(gy) - surface)
		mat := g.cfg.Biome.Subsurface
		if float64(gy) >= surface-1 {
			mat = g.cfg.Biome.Surface
		}
		if dist >= 0 {
			mat = material.Empty
		}
		if err := w.SetVoxelWithDistance(gx, gy, gz, mat, dist); err != nil {
			return err
		}
	}
	return nil
}

// GenerateChunk fills every column of the chunk at idx between minY and
// maxY.
func (g *Generator) GenerateChunk(w *chunkgrid.World, idx chunkgrid.Index, minY, maxY int32) error {
	baseX := idx.X * chunkgrid.Size
	baseZ := idx.Z * chunkgrid.Size
	for lx := int32(0); lx < chunkgrid.Size; lx++ {
		for lz := int32(0); lz < chunkgrid.Size; lz++ {
			if err := g.GenerateColumn(w, baseX+lx, baseZ+lz, minY, maxY); err != nil {
				return err
			}
		}
	}
	return nil
}
