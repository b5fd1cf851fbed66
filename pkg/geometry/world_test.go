package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// recordingShape remembers the bounds it was queried with
type recordingShape struct {
	inner *Sphere
	tMaxs []float64
}

func (r *recordingShape) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	r.tMaxs = append(r.tMaxs, tMax)
	return r.inner.Hit(ray, tMin, tMax)
}

func TestWorld_NearestHitIndependentOfOrder(t *testing.T) {
	near := NewSphere(core.NewVec3(0, 0, -3), 0.5, nil)
	far := NewSphere(core.NewVec3(0, 0, -10), 0.5, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	orders := map[string]*World{
		"near first": NewWorld(near, far),
		"far first":  NewWorld(far, near),
	}

	for name, world := range orders {
		t.Run(name, func(t *testing.T) {
			hit, isHit := world.Hit(ray, 0.001, math.Inf(1))
			if !isHit {
				t.Fatal("Expected hit")
			}
			if math.Abs(hit.T-2.5) > 1e-9 {
				t.Errorf("Expected nearest hit at t=2.5, got %f", hit.T)
			}
		})
	}
}

func TestWorld_ShrinksUpperBound(t *testing.T) {
	first := &recordingShape{inner: NewSphere(core.NewVec3(0, 0, -3), 0.5, nil)}
	second := &recordingShape{inner: NewSphere(core.NewVec3(0, 0, -10), 0.5, nil)}
	world := NewWorld(first, second)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	world.Hit(ray, 0.001, 100)

	if first.tMaxs[0] != 100 {
		t.Errorf("First shape should see the caller's tMax, got %f", first.tMaxs[0])
	}
	if math.Abs(second.tMaxs[0]-2.5) > 1e-9 {
		t.Errorf("Second shape should see the closest hit so far, got %f", second.tMaxs[0])
	}
}

func TestWorld_EmptyAndClear(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	world := NewWorld()
	if hit, isHit := world.Hit(ray, 0.001, math.Inf(1)); isHit || hit != nil {
		t.Error("Empty world should never be hit")
	}

	world.Add(NewSphere(core.NewVec3(0, 0, -1), 0.5, nil))
	world.Add(NewSphere(core.NewVec3(0, -100.5, -1), 100, nil))
	if world.Len() != 2 {
		t.Fatalf("Expected 2 shapes, got %d", world.Len())
	}
	if _, isHit := world.Hit(ray, 0.001, math.Inf(1)); !isHit {
		t.Error("Expected hit after adding shapes")
	}

	world.Clear()
	if world.Len() != 0 || len(world.Shapes()) != 0 {
		t.Errorf("Expected empty world after Clear, got %d shapes", world.Len())
	}
	if _, isHit := world.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Error("Cleared world should never be hit")
	}
}

func TestWorld_IsAShape(t *testing.T) {
	inner := NewWorld(NewSphere(core.NewVec3(0, 0, -2), 0.5, nil))
	outer := NewWorld(inner)

	hit, isHit := outer.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	if !isHit || math.Abs(hit.T-1.5) > 1e-9 {
		t.Errorf("Expected nested world hit at t=1.5, got %v %v", hit, isHit)
	}
}
