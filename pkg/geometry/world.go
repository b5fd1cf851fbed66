package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// World is an ordered collection of shapes scanned linearly for the nearest hit.
// It must not be modified while a render pass is running.
type World struct {
	shapes []Shape
}

// NewWorld creates a world holding the given shapes
func NewWorld(shapes ...Shape) *World {
	w := &World{}
	for _, shape := range shapes {
		w.Add(shape)
	}
	return w
}

// Add appends a shape to the world
func (w *World) Add(shape Shape) {
	w.shapes = append(w.shapes, shape)
}

// Clear removes every shape while keeping the allocated storage
func (w *World) Clear() {
	clear(w.shapes)
	w.shapes = w.shapes[:0]
}

// Len returns the number of shapes in the world
func (w *World) Len() int {
	return len(w.shapes)
}

// Shapes returns the shapes in insertion order
func (w *World) Shapes() []Shape {
	return w.shapes
}

// Hit returns the nearest intersection in [tMin, tMax] across all shapes.
// Each shape is queried with the closest distance found so far as its upper bound.
func (w *World) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range w.shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}
