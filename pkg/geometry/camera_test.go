package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func vecClose(a, b core.Vec3) bool {
	return a.Subtract(b).Length() < 1e-9
}

func testCameraConfig() CameraConfig {
	return CameraConfig{
		Origin:      core.NewVec3(0, 0, 0),
		Direction:   core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		FocalLength: 1.0,
		AspectRatio: 2.0,
	}
}

func TestCameraBasis(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	// tan(45°) = 1, so the viewport is 2 high and 4 wide at focal length 1
	if !vecClose(camera.Horizontal(), core.NewVec3(4, 0, 0)) {
		t.Errorf("Expected horizontal (4,0,0), got %v", camera.Horizontal())
	}
	if !vecClose(camera.Vertical(), core.NewVec3(0, 2, 0)) {
		t.Errorf("Expected vertical (0,2,0), got %v", camera.Vertical())
	}
	if !vecClose(camera.LowerLeftCorner(), core.NewVec3(-2, -1, -1)) {
		t.Errorf("Expected lower left corner (-2,-1,-1), got %v", camera.LowerLeftCorner())
	}
}

func TestCameraGetRay(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	tests := []struct {
		name     string
		u, v     float64
		expected core.Vec3
	}{
		{"center looks along the gaze", 0.5, 0.5, core.NewVec3(0, 0, -1)},
		{"lower left", 0, 0, core.NewVec3(-2, -1, -1).Normalize()},
		{"upper right", 1, 1, core.NewVec3(2, 1, -1).Normalize()},
		{"right edge", 1, 0.5, core.NewVec3(2, 0, -1).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.u, tt.v)
			if ray.Origin != camera.Origin {
				t.Errorf("Ray should start at the camera origin, got %v", ray.Origin)
			}
			if !vecClose(ray.Direction, tt.expected) {
				t.Errorf("Expected direction %v, got %v", tt.expected, ray.Direction)
			}
			if math.Abs(ray.Direction.Length()-1) > 1e-12 {
				t.Errorf("Ray direction should be normalized, got length %f", ray.Direction.Length())
			}
		})
	}
}

func TestCameraUnnormalizedDirectionInput(t *testing.T) {
	config := testCameraConfig()
	config.Direction = core.NewVec3(0, 0, -7)
	camera := NewCamera(config)

	if !vecClose(camera.LowerLeftCorner(), core.NewVec3(-2, -1, -1)) {
		t.Errorf("Direction length should not change the basis, got %v", camera.LowerLeftCorner())
	}
}

func TestCameraSettersRecomputeBasis(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	camera.SetOrigin(core.NewVec3(1, 2, 3))
	if !vecClose(camera.LowerLeftCorner(), core.NewVec3(-1, 1, 2)) {
		t.Errorf("SetOrigin should shift the viewport, got %v", camera.LowerLeftCorner())
	}

	camera.SetDirection(core.NewVec3(1, 0, 0))
	if ray := camera.GetRay(0.5, 0.5); !vecClose(ray.Direction, core.NewVec3(1, 0, 0)) {
		t.Errorf("SetDirection should turn the gaze, got %v", ray.Direction)
	}

	camera.SetVFov(60)
	expectedHeight := 2 * math.Tan(math.Pi/6)
	if math.Abs(camera.Vertical().Length()-expectedHeight) > 1e-9 {
		t.Errorf("SetVFov should resize the viewport to %f, got %f", expectedHeight, camera.Vertical().Length())
	}

	camera.SetFocalLength(3)
	center := camera.LowerLeftCorner().Add(camera.Horizontal().Multiply(0.5)).Add(camera.Vertical().Multiply(0.5))
	if !vecClose(center, core.NewVec3(4, 2, 3)) {
		t.Errorf("SetFocalLength should move the viewport to (4,2,3), got %v", center)
	}
}

func TestCameraDirectFieldMutationNeedsUpdate(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	camera.Origin = core.NewVec3(0, 0, 10)
	camera.UpdateBasis()

	if !vecClose(camera.LowerLeftCorner(), core.NewVec3(-2, -1, 9)) {
		t.Errorf("UpdateBasis should use the new origin, got %v", camera.LowerLeftCorner())
	}
	if camera.Config().Origin != core.NewVec3(0, 0, 10) {
		t.Errorf("Config should report current inputs, got %v", camera.Config().Origin)
	}
}

func TestMergeCameraConfig(t *testing.T) {
	defaults := DefaultCameraConfig()
	merged := MergeCameraConfig(defaults, CameraConfig{
		Origin: core.NewVec3(-2, 2, 2),
		VFov:   60,
	})

	if merged.Origin != core.NewVec3(-2, 2, 2) || merged.VFov != 60 {
		t.Errorf("Overrides were not applied: %+v", merged)
	}
	if merged.Direction != defaults.Direction || merged.FocalLength != defaults.FocalLength ||
		merged.AspectRatio != defaults.AspectRatio || merged.Up != defaults.Up {
		t.Errorf("Zero fields should come from defaults: %+v", merged)
	}
}

func TestLookAt(t *testing.T) {
	got := LookAt(core.NewVec3(-2, 2, 2), core.NewVec3(0, 0, -1))
	expected := core.NewVec3(2, -2, -3).Normalize()
	if !vecClose(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
