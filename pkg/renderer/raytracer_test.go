package renderer

import (
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/integrator"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

func TestPixelUV(t *testing.T) {
	tests := []struct {
		name         string
		col, row     int
		jitter       core.Vec2
		wantU, wantV float64
	}{
		{"top left", 0, 0, core.NewVec2(0, 0), 0, 1},
		{"bottom right", 10, 5, core.NewVec2(0, 0), 1, 0},
		{"jittered", 5, 5, core.NewVec2(0.5, 0.5), 0.55, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, v := PixelUV(tt.col, tt.row, 11, 6, tt.jitter)
			if u != tt.wantU || v != tt.wantV {
				t.Errorf("Expected (%f,%f), got (%f,%f)", tt.wantU, tt.wantV, u, v)
			}
		})
	}

	// Single-pixel images must not divide by zero
	u, v := PixelUV(0, 0, 1, 1, core.NewVec2(0.5, 0.5))
	if u != 0.5 || v != 0.5 {
		t.Errorf("Expected (0.5,0.5) for a 1x1 image, got (%f,%f)", u, v)
	}
}

func TestRenderSampleEmptyWorld(t *testing.T) {
	camera := geometry.NewCamera(geometry.DefaultCameraConfig())
	world := geometry.NewWorld()
	sampler := core.NewSeededSampler(7)
	sky := integrator.DefaultSky()

	for _, uv := range [][2]float64{{0, 0}, {0.5, 0.5}, {1, 1}, {0.25, 0.8}} {
		got := RenderSample(camera, world, uv[0], uv[1], 50, sampler)
		expected := sky.Color(camera.GetRay(uv[0], uv[1]))
		if got != expected {
			t.Errorf("(%f,%f): expected %v, got %v", uv[0], uv[1], expected, got)
		}
	}
}

func TestRenderSampleDepthZero(t *testing.T) {
	camera := geometry.NewCamera(geometry.DefaultCameraConfig())
	world := geometry.NewWorld(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	if got := RenderSample(camera, world, 0.5, 0.5, 0, core.NewSeededSampler(1)); got != (core.Vec3{}) {
		t.Errorf("Expected black at depth 0, got %v", got)
	}
}
