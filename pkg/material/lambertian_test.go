package material

import (
	"math/rand"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func TestLambertianScatter(t *testing.T) {
	albedo := core.NewVec3(0.7, 0.3, 0.2)
	lambertian := NewLambertian(albedo)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	hit := HitRecord{
		Point:    core.NewVec3(0, 0, 0),
		Normal:   core.NewVec3(0, 1, 0),
		T:        1.0,
		Face:     Front,
		Material: lambertian,
	}
	rayIn := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	for i := 0; i < 1000; i++ {
		scatter, didScatter := lambertian.Scatter(rayIn, hit, sampler)
		if !didScatter {
			t.Fatal("Lambertian should always scatter")
		}
		if scatter.Attenuation != albedo {
			t.Errorf("Expected attenuation %v, got %v", albedo, scatter.Attenuation)
		}
		if scatter.Scattered.Origin != hit.Point {
			t.Errorf("Scattered ray should start at the hit point, got %v", scatter.Scattered.Origin)
		}
		// normal + unit vector never points below the surface
		if scatter.Scattered.Direction.Dot(hit.Normal) < 0 {
			t.Errorf("Scattered direction %v points into the surface", scatter.Scattered.Direction)
		}
	}
}

func TestLambertianDegenerateDirection(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	// (0.5, 0.25, 0.5) maps to (0, -0.5, 0) in the unit sphere, which normalizes to -normal
	sampler := &fixedSampler{value3D: core.NewVec3(0.5, 0.25, 0.5)}
	hit := HitRecord{
		Point:  core.NewVec3(1, 2, 3),
		Normal: core.NewVec3(0, 1, 0),
		Face:   Front,
	}

	scatter, didScatter := lambertian.Scatter(core.NewRay(core.NewVec3(1, 3, 3), core.NewVec3(0, -1, 0)), hit, sampler)
	if !didScatter {
		t.Fatal("Lambertian should always scatter")
	}
	if scatter.Scattered.Direction != hit.Normal {
		t.Errorf("Degenerate scatter should fall back to the normal, got %v", scatter.Scattered.Direction)
	}
}
