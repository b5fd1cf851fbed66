package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewDefaultScene creates the four-sphere scene: ground, glass, metal and diffuse
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	origin := core.NewVec3(-2, 2, 2)
	defaultCameraConfig := geometry.CameraConfig{
		Origin:      origin,
		Direction:   geometry.LookAt(origin, core.NewVec3(0, 0, -1)),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        60.0,
		FocalLength: 1.0,
		AspectRatio: 16.0 / 9.0,
	}

	// Apply any overrides using the reusable merge function
	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.Height = 0

	materialGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	materialCenter := material.NewDielectric(1.5)
	materialLeft := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.2))
	materialRight := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)

	return New(cameraConfig, samplingConfig,
		NewGroundSphere(materialGround),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, materialCenter),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, materialRight),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, materialLeft),
	)
}

// NewBasicScene creates a single diffuse sphere resting on a diffuse ground
func NewBasicScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.DefaultCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.Height = 0

	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	return New(cameraConfig, samplingConfig,
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, gray),
		NewGroundSphere(gray),
	)
}

// NewEmptyScene creates a scene with no shapes, showing only the sky
func NewEmptyScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	cameraConfig := geometry.DefaultCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.Height = 0

	return New(cameraConfig, samplingConfig)
}
