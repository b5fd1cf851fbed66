package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// Vec3 is a JSON [x, y, z] triple
type Vec3 [3]float64

func (v Vec3) toCore() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// SceneFile is the JSON representation of a scene
type SceneFile struct {
	Name        string                  `json:"name,omitempty"`
	Description string                  `json:"description,omitempty"`
	Group       string                  `json:"group,omitempty"`
	Camera      CameraSpec              `json:"camera"`
	Render      RenderSpec              `json:"render"`
	Materials   map[string]MaterialSpec `json:"materials"`
	Spheres     []SphereSpec            `json:"spheres"`
}

// CameraSpec describes the camera. LookAt takes precedence over Direction.
// Zero fields keep the default camera's values.
type CameraSpec struct {
	Origin      *Vec3   `json:"origin,omitempty"`
	LookAt      *Vec3   `json:"lookAt,omitempty"`
	Direction   *Vec3   `json:"direction,omitempty"`
	Up          *Vec3   `json:"up,omitempty"`
	VFov        float64 `json:"vfov,omitempty"`
	FocalLength float64 `json:"focalLength,omitempty"`
	AspectRatio float64 `json:"aspectRatio,omitempty"`
}

// RenderSpec holds image size and path depth. Zero fields keep defaults;
// a zero height is derived from the width and aspect ratio.
type RenderSpec struct {
	Width    int `json:"width,omitempty"`
	Height   int `json:"height,omitempty"`
	MaxDepth int `json:"maxDepth,omitempty"`
}

// Material types understood in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// MaterialSpec describes one named material
type MaterialSpec struct {
	Type   string  `json:"type"`
	Albedo Vec3    `json:"albedo,omitempty"`
	Fuzz   float64 `json:"fuzz,omitempty"`
	IOR    float64 `json:"ior,omitempty"`
}

// SphereSpec places a sphere with a named material
type SphereSpec struct {
	Center   Vec3    `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// ParseSceneFile decodes a scene file from r, rejecting unknown fields
func ParseSceneFile(r io.Reader) (*SceneFile, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var file SceneFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &file, nil
}

// LoadSceneFile reads and decodes a JSON scene file
func LoadSceneFile(filename string) (*SceneFile, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	file, err := ParseSceneFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return file, nil
}

// LoadScene reads a JSON scene file and builds the scene it describes
func LoadScene(filename string) (*scene.Scene, error) {
	file, err := LoadSceneFile(filename)
	if err != nil {
		return nil, err
	}

	s, err := file.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// SaveSceneFile writes a scene file as indented JSON
func SaveSceneFile(filename string, file *SceneFile) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Build validates the file and constructs the scene
func (sf *SceneFile) Build() (*scene.Scene, error) {
	cameraConfig, err := sf.Camera.config()
	if err != nil {
		return nil, err
	}

	materials := make(map[string]material.Material, len(sf.Materials))
	for name, spec := range sf.Materials {
		mat, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	shapes := make([]geometry.Shape, 0, len(sf.Spheres))
	for i, spec := range sf.Spheres {
		if spec.Radius <= 0 {
			return nil, fmt.Errorf("sphere %d: radius must be positive, got %g", i, spec.Radius)
		}
		mat, ok := materials[spec.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: unknown material %q", i, spec.Material)
		}
		shapes = append(shapes, geometry.NewSphere(spec.Center.toCore(), spec.Radius, mat))
	}

	if sf.Render.Width < 0 || sf.Render.Height < 0 || sf.Render.MaxDepth < 0 {
		return nil, fmt.Errorf("render settings must not be negative: %+v", sf.Render)
	}

	defaults := scene.DefaultSamplingConfig()
	defaults.Height = 0
	samplingConfig := scene.MergeSamplingConfig(defaults, scene.SamplingConfig{
		Width:    sf.Render.Width,
		Height:   sf.Render.Height,
		MaxDepth: sf.Render.MaxDepth,
	})

	return scene.New(cameraConfig, samplingConfig, shapes...), nil
}

func (cs CameraSpec) config() (geometry.CameraConfig, error) {
	if cs.VFov < 0 || cs.VFov >= 180 {
		return geometry.CameraConfig{}, fmt.Errorf("camera vfov must be in (0, 180), got %g", cs.VFov)
	}
	if cs.FocalLength < 0 {
		return geometry.CameraConfig{}, fmt.Errorf("camera focal length must not be negative, got %g", cs.FocalLength)
	}
	if cs.AspectRatio < 0 {
		return geometry.CameraConfig{}, fmt.Errorf("camera aspect ratio must not be negative, got %g", cs.AspectRatio)
	}

	overrides := geometry.CameraConfig{
		VFov:        cs.VFov,
		FocalLength: cs.FocalLength,
		AspectRatio: cs.AspectRatio,
	}
	if cs.Origin != nil {
		overrides.Origin = cs.Origin.toCore()
	}
	if cs.Up != nil {
		overrides.Up = cs.Up.toCore()
	}

	config := geometry.MergeCameraConfig(geometry.DefaultCameraConfig(), overrides)

	switch {
	case cs.LookAt != nil:
		config.Direction = geometry.LookAt(config.Origin, cs.LookAt.toCore())
	case cs.Direction != nil:
		config.Direction = cs.Direction.toCore()
	}

	if config.Direction.NearZero() {
		return geometry.CameraConfig{}, fmt.Errorf("camera direction must not be zero")
	}
	if config.Direction.Normalize().Cross(config.Up.Normalize()).NearZero() {
		return geometry.CameraConfig{}, fmt.Errorf("camera up must not be parallel to the view direction")
	}

	return config, nil
}

func (ms MaterialSpec) build() (material.Material, error) {
	switch ms.Type {
	case MaterialLambertian:
		return material.NewLambertian(ms.Albedo.toCore()), nil
	case MaterialMetal:
		if ms.Fuzz < 0 || ms.Fuzz > 1 {
			return nil, fmt.Errorf("fuzz must be in [0, 1], got %g", ms.Fuzz)
		}
		return material.NewMetal(ms.Albedo.toCore(), ms.Fuzz), nil
	case MaterialDielectric:
		if ms.IOR <= 0 {
			return nil, fmt.Errorf("ior must be positive, got %g", ms.IOR)
		}
		return material.NewDielectric(ms.IOR), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", ms.Type)
	}
}

// validateFilePath rejects paths that cannot name a JSON scene file
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	if len(filename) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		return fmt.Errorf("invalid file type: only .json scene files are allowed")
	}

	return nil
}
