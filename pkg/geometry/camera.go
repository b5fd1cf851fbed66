package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// CameraConfig contains the parameters that define a camera
type CameraConfig struct {
	Origin      core.Point3 // Eye position
	Direction   core.Vec3   // Gaze direction, normalized internally
	Up          core.Vec3   // Up hint used to orient the image plane
	VFov        float64     // Vertical field of view in degrees
	FocalLength float64     // Distance from the eye to the image plane
	AspectRatio float64     // Viewport width / height
}

// DefaultCameraConfig returns a camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Origin:      core.NewVec3(0, 0, 0),
		Direction:   core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		FocalLength: 1.0,
		AspectRatio: 16.0 / 9.0,
	}
}

// LookAt returns the gaze direction from one point towards another
func LookAt(from, to core.Point3) core.Vec3 {
	return to.Subtract(from).Normalize()
}

// MergeCameraConfig fills every zero field of overrides from defaults
func MergeCameraConfig(defaults, overrides CameraConfig) CameraConfig {
	result := defaults
	var zero core.Vec3

	if overrides.Origin != zero {
		result.Origin = overrides.Origin
	}
	if overrides.Direction != zero {
		result.Direction = overrides.Direction
	}
	if overrides.Up != zero {
		result.Up = overrides.Up
	}
	if overrides.VFov != 0 {
		result.VFov = overrides.VFov
	}
	if overrides.FocalLength != 0 {
		result.FocalLength = overrides.FocalLength
	}
	if overrides.AspectRatio != 0 {
		result.AspectRatio = overrides.AspectRatio
	}

	return result
}

// Camera generates rays for rendering.
//
// The exported fields are the camera inputs. After changing any of them
// directly, call UpdateBasis before the next GetRay; the Set* methods do that.
type Camera struct {
	Origin      core.Point3
	Direction   core.Vec3
	Up          core.Vec3
	VFov        float64
	FocalLength float64
	AspectRatio float64

	horizontal      core.Vec3
	vertical        core.Vec3
	lowerLeftCorner core.Vec3
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) *Camera {
	c := &Camera{
		Origin:      config.Origin,
		Direction:   config.Direction,
		Up:          config.Up,
		VFov:        config.VFov,
		FocalLength: config.FocalLength,
		AspectRatio: config.AspectRatio,
	}
	c.UpdateBasis()
	return c
}

// UpdateBasis recomputes the viewport vectors from the current inputs
func (c *Camera) UpdateBasis() {
	// w points backwards, away from the scene
	w := c.Direction.Normalize().Negate()
	right := c.Up.Cross(w).Normalize()
	trueUp := w.Cross(right)

	theta := c.VFov * math.Pi / 180
	viewportHeight := 2 * math.Tan(theta/2)
	viewportWidth := viewportHeight * c.AspectRatio

	c.horizontal = right.Multiply(viewportWidth)
	c.vertical = trueUp.Multiply(viewportHeight)
	c.lowerLeftCorner = c.Origin.
		Subtract(c.horizontal.Multiply(0.5)).
		Subtract(c.vertical.Multiply(0.5)).
		Subtract(w.Multiply(c.FocalLength))
}

// GetRay generates a ray for viewport coordinates (u, v) where 0 <= u,v <= 1.
// (0, 0) is the lower left corner. The direction is unit length.
func (c *Camera) GetRay(u, v float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(u)).
		Add(c.vertical.Multiply(v)).
		Subtract(c.Origin)

	return core.NewRay(c.Origin, direction.Normalize())
}

// SetOrigin moves the eye and recomputes the basis
func (c *Camera) SetOrigin(origin core.Point3) {
	c.Origin = origin
	c.UpdateBasis()
}

// SetDirection changes the gaze direction and recomputes the basis
func (c *Camera) SetDirection(direction core.Vec3) {
	c.Direction = direction
	c.UpdateBasis()
}

// SetVFov changes the vertical field of view (degrees) and recomputes the basis
func (c *Camera) SetVFov(vfov float64) {
	c.VFov = vfov
	c.UpdateBasis()
}

// SetFocalLength changes the focal length and recomputes the basis
func (c *Camera) SetFocalLength(focalLength float64) {
	c.FocalLength = focalLength
	c.UpdateBasis()
}

// Config returns the current camera inputs
func (c *Camera) Config() CameraConfig {
	return CameraConfig{
		Origin:      c.Origin,
		Direction:   c.Direction,
		Up:          c.Up,
		VFov:        c.VFov,
		FocalLength: c.FocalLength,
		AspectRatio: c.AspectRatio,
	}
}

// Horizontal returns the full-width viewport edge vector
func (c *Camera) Horizontal() core.Vec3 { return c.horizontal }

// Vertical returns the full-height viewport edge vector
func (c *Camera) Vertical() core.Vec3 { return c.vertical }

// LowerLeftCorner returns the viewport corner mapped to (u, v) = (0, 0)
func (c *Camera) LowerLeftCorner() core.Vec3 { return c.lowerLeftCorner }
