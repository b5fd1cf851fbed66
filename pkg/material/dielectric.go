package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract.
// The boundary is always between vacuum and the material; nested media are not tracked.
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering.
// Glass never absorbs and never tints.
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	n1, n2 := 1.0, d.RefractiveIndex
	if hit.Face == Back {
		n1, n2 = d.RefractiveIndex, 1.0
	}
	refractionRatio := n1 / n2

	unitDirection := rayIn.Direction.Normalize()
	cosTheta := math.Min(math.Abs(unitDirection.Dot(hit.Normal)), 1.0)

	var direction core.Vec3
	refracted, ok := Refract(unitDirection, hit.Normal, refractionRatio)
	if !ok || sampler.Get1D() < Reflectance(cosTheta, n1, n2) {
		direction = Reflect(unitDirection, hit.Normal)
	} else {
		direction = refracted
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: core.NewVec3(1.0, 1.0, 1.0),
	}, true
}

// Refract bends the unit vector uv through a surface with unit normal n using Snell's law.
// etaRatio is n1/n2. It returns false on total internal reflection.
func Refract(uv, n core.Vec3, etaRatio float64) (core.Vec3, bool) {
	cosTheta := math.Min(-uv.Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaRatio)
	if rOutPerp.LengthSquared() > 1.0 {
		return core.Vec3{}, false
	}
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel), true
}

// Reflectance calculates the Fresnel reflectance between media n1 and n2
// using Schlick's approximation
func Reflectance(cosine, n1, n2 float64) float64 {
	r0 := (n1 - n2) / (n1 + n2)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
