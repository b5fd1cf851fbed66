package material

import "github.com/df07/go-progressive-pathtracer/pkg/core"

// fixedSampler returns the same values on every draw so scatter paths can be forced
type fixedSampler struct {
	value1D float64
	value3D core.Vec3
}

func (f *fixedSampler) Get1D() float64 { return f.value1D }

func (f *fixedSampler) Get2D() core.Vec2 { return core.NewVec2(f.value1D, f.value1D) }

func (f *fixedSampler) Get3D() core.Vec3 { return f.value3D }
