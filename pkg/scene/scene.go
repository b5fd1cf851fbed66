package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	World          *geometry.World // Objects in the scene
	SamplingConfig SamplingConfig
	CameraConfig   geometry.CameraConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width    int   // Image width
	Height   int   // Image height
	MaxDepth int   // Maximum ray bounce depth
	Seed     int64 // Seed for scenes with randomized layout
}

// DefaultSamplingConfig returns the settings of the original renderer
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:    480,
		Height:   270,
		MaxDepth: 50,
		Seed:     42,
	}
}

// MergeSamplingConfig fills every zero field of overrides from defaults
func MergeSamplingConfig(defaults, overrides SamplingConfig) SamplingConfig {
	result := defaults
	if overrides.Width != 0 {
		result.Width = overrides.Width
	}
	if overrides.Height != 0 {
		result.Height = overrides.Height
	}
	if overrides.MaxDepth != 0 {
		result.MaxDepth = overrides.MaxDepth
	}
	if overrides.Seed != 0 {
		result.Seed = overrides.Seed
	}
	return result
}

// HeightForWidth returns the image height matching the camera aspect ratio, at least 1
func HeightForWidth(width int, aspectRatio float64) int {
	if aspectRatio <= 0 {
		return max(1, width)
	}
	return max(1, int(float64(width)/aspectRatio))
}

// New assembles a scene, creating its camera and deriving the image height
// from the width and aspect ratio when no height is set.
func New(cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig, shapes ...geometry.Shape) *Scene {
	if samplingConfig.Height == 0 {
		samplingConfig.Height = HeightForWidth(samplingConfig.Width, cameraConfig.AspectRatio)
	}
	return &Scene{
		Camera:         geometry.NewCamera(cameraConfig),
		World:          geometry.NewWorld(shapes...),
		SamplingConfig: samplingConfig,
		CameraConfig:   cameraConfig,
	}
}

// NewGroundSphere creates the large sphere used as a ground plane
func NewGroundSphere(mat material.Material) *geometry.Sphere {
	return geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, mat)
}

// GetPrimitiveCount returns the number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}
