// Package debugviz renders voxel-world diagnostics to PNG: a heightmap
// slice of a chunk's material layout, useful for eyeballing worldgen
// output without a graphics context. Not part of the core meshing
// pipeline; a pure debugging aid in the teacher's spirit of exposing a
// simple inspection tool alongside the engine's render path.
package debugviz

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/material"
)

// slicePixelScale enlarges each voxel to a block of pixels so a 16x16
// chunk slice is actually legible in an image viewer.
const slicePixelScale = 8

// WriteChunkSlicePNG renders a single Y-layer of chunk c (ly in
// [0, chunkgrid.Size)) as a PNG, one colored block per voxel, colored by
// the voxel's material. The raw one-pixel-per-voxel image is upscaled with
// nearest-neighbor interpolation so material boundaries stay crisp.
func WriteChunkSlicePNG(w io.Writer, c *chunkgrid.Chunk, ly int) error {
	raw := image.NewRGBA(image.Rect(0, 0, chunkgrid.Size, chunkgrid.Size))
	for lx := 0; lx < chunkgrid.Size; lx++ {
		for lz := 0; lz < chunkgrid.Size; lz++ {
			mat := c.Material(lx, ly, lz)
			raw.Set(lx, lz, materialColor(mat))
		}
	}

	scaled := image.NewRGBA(image.Rect(0, 0, chunkgrid.Size*slicePixelScale, chunkgrid.Size*slicePixelScale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), raw, raw.Bounds(), draw.Over, nil)
	return png.Encode(w, scaled)
}

// WriteHeightmapPNG renders a width x depth grayscale heightmap PNG, one
// pixel per XZ column, where pixel brightness encodes height relative to
// [minHeight, maxHeight].
func WriteHeightmapPNG(w io.Writer, heights [][]float64, minHeight, maxHeight float64) error {
	depth := len(heights)
	if depth == 0 {
		return png.Encode(w, image.NewGray(image.Rect(0, 0, 1, 1)))
	}
	width := len(heights[0])

	img := image.NewGray(image.Rect(0, 0, width, depth))
	span := maxHeight - minHeight
	if span <= 0 {
		span = 1
	}
	for z, row := range heights {
		for x, h := range row {
			t := (h - minHeight) / span
			if t < 0 {
				t = 0
			}
			if t > 1 {
				t = 1
			}
			img.SetGray(x, z, color.Gray{Y: uint8(t * 255)})
		}
	}
	return png.Encode(w, img)
}

func materialColor(id material.ID) color.RGBA {
	def, ok := material.Registry[id]
	if !ok {
		return color.RGBA{255, 0, 255, 255}
	}
	return color.RGBA{
		R: uint8(def.Color[0] * 255),
		G: uint8(def.Color[1] * 255),
		B: uint8(def.Color[2] * 255),
		A: 255,
	}
}
