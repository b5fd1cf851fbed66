package integrator

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// NormalIntegrator shades each hit by its oriented normal mapped to [0,1].
// It ignores materials and is fully deterministic.
type NormalIntegrator struct {
	Sky SkyGradient
}

// NewNormalIntegrator creates a new normal visualization integrator
func NewNormalIntegrator() *NormalIntegrator {
	return &NormalIntegrator{Sky: DefaultSky()}
}

// RayColor returns 0.5*(normal+1) for the nearest hit, or the sky
func (ni *NormalIntegrator) RayColor(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Color {
	if depth <= 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	hit, isHit := world.Hit(ray, 0, math.Inf(1))
	if !isHit {
		return ni.Sky.Color(ray)
	}

	return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
}
