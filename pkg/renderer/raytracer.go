package renderer

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
)

var defaultIntegrator = integrator.NewPathTracingIntegrator()

// RenderSample traces one path through image-plane coordinates (u, v) and
// returns its linear color. It is the single-sample entry point used by
// collaborators that schedule pixels themselves.
func RenderSample(camera *geometry.Camera, world geometry.Shape, u, v float64, maxDepth int, sampler core.Sampler) core.Color {
	return defaultIntegrator.RayColor(camera.GetRay(u, v), world, maxDepth, sampler)
}

// PixelUV maps pixel (col, row) plus a jitter in [0,1)^2 to image-plane
// coordinates. Row 0 is the top of the image.
func PixelUV(col, row, width, height int, jitter core.Vec2) (u, v float64) {
	u = (float64(col) + jitter.X) / float64(max(1, width-1))
	v = (float64(height-1-row) + jitter.Y) / float64(max(1, height-1))
	return u, v
}
