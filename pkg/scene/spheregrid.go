package scene

import (
	"math"
	"math/rand"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Color {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS, cubed
	lms := core.NewVec3(
		l+0.3963377774*a+0.2158037573*b,
		l-0.1055613458*a-0.0638541728*b,
		l-0.0894841775*a-1.2914855480*b,
	)
	lms = lms.MultiplyVec(lms).MultiplyVec(lms)

	// LMS to linear RGB
	rgb := core.NewVec3(
		+4.0767416621*lms.X-3.3077115913*lms.Y+0.2309699292*lms.Z,
		-1.2684380046*lms.X+2.6097574011*lms.Y-0.3413193965*lms.Z,
		-0.0041960863*lms.X-0.7034186147*lms.Y+1.7076147010*lms.Z,
	)

	return rgb.Clamp(0, 1)
}

// NewSphereGridScene creates a grid of colored spheres on a large ground sphere.
// Every third sphere is glass, the rest alternate between diffuse and fuzzy metal.
// Positions are jittered with the default seed.
func NewSphereGridScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	return NewSeededSphereGridScene(DefaultSamplingConfig().Seed, cameraOverrides...)
}

// NewSeededSphereGridScene creates the sphere grid with positions jittered by seed
func NewSeededSphereGridScene(seed int64, cameraOverrides ...geometry.CameraConfig) *Scene {
	origin := core.NewVec3(0, 4, 9)
	defaultCameraConfig := geometry.CameraConfig{
		Origin:      origin,
		Direction:   geometry.LookAt(origin, core.NewVec3(0, 0, 0)),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40.0,
		FocalLength: 1.0,
		AspectRatio: 16.0 / 9.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.Height = 0
	samplingConfig.MaxDepth = 40
	samplingConfig.Seed = seed

	s := New(cameraConfig, samplingConfig,
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000,
			material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))),
	)

	random := rand.New(rand.NewSource(samplingConfig.Seed))
	glass := material.NewDielectric(1.5)

	gridSize := 10
	spacing := 0.9
	radius := 0.3
	half := float64(gridSize-1) * spacing / 2

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - half + (random.Float64()-0.5)*0.2
			z := float64(j)*spacing - half + (random.Float64()-0.5)*0.2
			position := core.NewVec3(x, radius, z)

			// Hue across X, chroma across Z
			hue := float64(i) / float64(gridSize-1) * 360.0
			chroma := 0.05 + float64(j)/float64(gridSize-1)*0.20
			lightness := 0.65 + 0.1*math.Sin(float64(i+j)*0.5)
			color := oklchToRGB(lightness, chroma, hue)

			var mat material.Material
			switch (i + j) % 3 {
			case 0:
				mat = glass
			case 1:
				mat = material.NewLambertian(color)
			default:
				mat = material.NewMetal(color, 0.05+0.1*float64((i*j)%3)/2.0)
			}

			s.World.Add(geometry.NewSphere(position, radius, mat))
		}
	}

	return s
}
