// Command voxeldemo is a minimal end-to-end driver for the voxel core: it
// generates a patch of rolling terrain, meshes it, packs the result into a
// submesh.Manager, uploads it to the GPU, and draws it through a culled
// frustum each frame. Adapted from the teacher's cmd/voxelgame entry point,
// stripped down to the voxel pipeline (no inventory, physics, or save
// system — those are out of this module's scope).
package main

import (
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"voxelcore/internal/gpuupload"
	"voxelcore/internal/render"
	"voxelcore/internal/voxel/chunkgrid"
	"voxelcore/internal/voxel/cull"
	"voxelcore/internal/voxel/mesher"
	"voxelcore/internal/voxel/submesh"
	"voxelcore/internal/voxel/worldgen"
)

// Version is build metadata, injected at build time via ldflags.
var Version = "dev"

const (
	voxelExtent   = 1.0
	worldRadiusXZ = 3 // chunks generated in each direction from the origin column
	terrainMinY   = 40 // spans worldgen.DefaultConfig's surface heights (64 ± 16)
	terrainMaxY   = 88
	meshWorkers   = 0 // 0 lets mesher.Sync pick a pool size
)

func main() {
	runtime.LockOSThread()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()
	log.Infow("starting voxeldemo", "version", Version)

	demo, err := newDemo(log)
	if err != nil {
		log.Fatalw("failed to initialize demo", "error", err)
	}
	defer demo.cleanup()

	demo.run()
}

// demo wires a chunkgrid.World through worldgen, a mesher.Mesher, a
// submesh.Manager and a gpuupload.Uploader into a drawable scene, with a
// GLFW window and camera providing the cull frustum.
type demo struct {
	log *zap.SugaredLogger

	engine   *render.Engine
	shader   *render.Shader
	world    *chunkgrid.World
	mesher   *mesher.Mesher
	manager  *submesh.Manager
	uploader *gpuupload.Uploader
}

func newDemo(log *zap.SugaredLogger) (*demo, error) {
	engine, err := render.NewEngine(render.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	shader, err := render.NewShader(voxelVertexShader, voxelFragmentShader)
	if err != nil {
		engine.Cleanup()
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	d := &demo{
		log:      log,
		engine:   engine,
		shader:   shader,
		world:    chunkgrid.New(voxelExtent, log),
		mesher:   mesher.New(voxelExtent),
		manager:  submesh.NewManager(),
		uploader: gpuupload.New(),
	}

	if err := d.generateTerrain(); err != nil {
		return nil, fmt.Errorf("generate terrain: %w", err)
	}

	if err := d.mesher.Sync(d.world, d.manager, meshWorkers); err != nil {
		engine.Cleanup()
		return nil, fmt.Errorf("initial mesh sync: %w", err)
	}
	d.uploader.Sync(d.manager)

	return d, nil
}

func (d *demo) generateTerrain() error {
	gen := worldgen.NewGenerator(worldgen.DefaultConfig(1))
	for cx := int32(-worldRadiusXZ); cx <= worldRadiusXZ; cx++ {
		for cz := int32(-worldRadiusXZ); cz <= worldRadiusXZ; cz++ {
			idx := chunkgrid.Index{X: cx, Y: 0, Z: cz}
			if err := gen.GenerateChunk(d.world, idx, terrainMinY, terrainMaxY); err != nil {
				return err
			}
		}
	}
	d.log.Infow("generated terrain", "loadedChunks", d.world.ChunkCount())
	return nil
}

func (d *demo) run() {
	for !d.engine.ShouldClose() {
		dt := d.engine.BeginFrame()
		d.engine.ProcessInput()
		if err := d.update(dt); err != nil {
			d.log.Fatalw("aborting: mesh sync reported corrupted submesh accounting", "error", err)
		}
		d.render()
		d.engine.EndFrame()
	}
}

// update re-meshes whatever the world has marked dirty since the last
// frame (nothing, after start-up, unless something later edits the world)
// and pushes any resulting changes to the GPU. An error here means the
// meshing pass found corrupted submesh accounting and must not proceed to
// rendering this frame's (partially-synced) geometry.
func (d *demo) update(dt float32) error {
	_ = dt
	if err := d.mesher.Sync(d.world, d.manager, meshWorkers); err != nil {
		return err
	}
	d.uploader.Sync(d.manager)
	return nil
}

// render culls every loaded chunk's submesh against the camera frustum and
// directional-obscurance table, then issues one draw call per surviving
// chunk's index range — culled chunks are never submitted to the GPU.
func (d *demo) render() {
	aspect := d.engine.Aspect()
	camera := d.engine.Camera
	frustum := camera.Frustum(aspect)

	d.shader.Use()
	d.shader.SetSceneUniforms(camera.ViewProjection(aspect), camera.Position)

	for _, idx := range d.manager.SortedChunkIndices() {
		sm, ok := d.manager.Submesh(idx)
		if !ok {
			continue
		}
		min, max := cull.ChunkAABB(idx, voxelExtent)
		if !frustum.IntersectsAABB(min, max) {
			continue
		}
		center := [3]float32{(min[0] + max[0]) / 2, (min[1] + max[1]) / 2, (min[2] + max[2]) / 2}
		if cull.IsObscured(sm.Obscurance, center, [3]float32{camera.Position[0], camera.Position[1], camera.Position[2]}) {
			continue
		}
		d.uploader.DrawRange(sm.IndexRange.Start, sm.IndexRange.Len())
	}
}

func (d *demo) cleanup() {
	d.uploader.Delete()
	d.shader.Delete()
	d.engine.Cleanup()
}
