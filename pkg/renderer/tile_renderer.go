package renderer

import (
	"image"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

// TileRenderer renders one sample for every pixel of a region using an integrator
type TileRenderer struct {
	camera        *geometry.Camera
	world         geometry.Shape
	integrator    integrator.Integrator
	width, height int
	maxDepth      int
}

// NewTileRenderer creates a tile renderer for a width x height image
func NewTileRenderer(camera *geometry.Camera, world geometry.Shape, integratorInst integrator.Integrator, width, height, maxDepth int) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		world:      world,
		integrator: integratorInst,
		width:      width,
		height:     height,
		maxDepth:   maxDepth,
	}
}

// RenderTileBounds merges one new sample into every pixel within bounds
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, acc *Accumulator, sampler core.Sampler) RenderStats {
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			acc.Merge(i, j, tr.samplePixel(i, j, sampler))
		}
	}

	pixels := bounds.Dx() * bounds.Dy()
	return RenderStats{
		TotalPixels:  pixels,
		TotalSamples: pixels,
	}
}

// samplePixel traces one jittered ray through pixel (i, j)
func (tr *TileRenderer) samplePixel(i, j int, sampler core.Sampler) core.Color {
	u, v := PixelUV(i, j, tr.width, tr.height, sampler.Get2D())
	ray := tr.camera.GetRay(u, v)
	return tr.integrator.RayColor(ray, tr.world, tr.maxDepth, sampler)
}
