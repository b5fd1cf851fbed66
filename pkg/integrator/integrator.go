package integrator

import (
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the linear color arriving along ray.
	// depth bounds the number of scattering events; 0 yields black.
	RayColor(ray core.Ray, world geometry.Shape, depth int, sampler core.Sampler) core.Color
}

// Names of the available integrators
const (
	PathTracing = "path"
	Normals     = "normals"
)

// New returns the integrator registered under name
func New(name string) (Integrator, error) {
	switch name {
	case PathTracing, "":
		return NewPathTracingIntegrator(), nil
	case Normals:
		return NewNormalIntegrator(), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", name)
	}
}

// SkyGradient is the background seen by rays that escape the scene
type SkyGradient struct {
	Top    core.Color // Color straight up
	Bottom core.Color // Color straight down
}

// DefaultSky returns the white-to-sky-blue gradient
func DefaultSky() SkyGradient {
	return SkyGradient{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Color returns the gradient color for the ray's direction
func (g SkyGradient) Color(ray core.Ray) core.Color {
	unitDirection := ray.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return g.Bottom.Multiply(1.0 - t).Add(g.Top.Multiply(t))
}
