package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Material interface for objects that can scatter rays.
// Scatter returns false when the ray is absorbed.
// Implementations hold no mutable state, so one material may be shared
// by any number of shapes and goroutines.
type Material interface {
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray   // The scattered ray
	Attenuation core.Color // Multiplicative light loss
}

// Face records which side of a surface a ray arrived from
type Face int

const (
	// Front means the ray arrived against the outward normal
	Front Face = iota
	// Back means the ray arrived from inside the surface
	Back
)

// String returns "front" or "back"
func (f Face) String() string {
	if f == Front {
		return "front"
	}
	return "back"
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T        float64   // Parameter t along the ray
	Point    core.Vec3 // Point of intersection
	Normal   core.Vec3 // Unit surface normal, always opposing the incident ray
	Face     Face      // Which side of the surface was hit
	Material Material  // Material of the hit object
}

// SetFaceNormal orients the normal against the ray and records the face.
// outwardNormal must be unit length.
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	if ray.Direction.Dot(outwardNormal) < 0 {
		h.Face = Front
		h.Normal = outwardNormal
	} else {
		h.Face = Back
		h.Normal = outwardNormal.Negate()
	}
}

// FrontFace reports whether the ray hit the outside of the surface
func (h *HitRecord) FrontFace() bool {
	return h.Face == Front
}
