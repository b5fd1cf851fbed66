package core

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}

func TestVec3Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	tests := []struct {
		name     string
		got      Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(5, -3, 9)},
		{"Subtract", a.Subtract(b), NewVec3(-3, 7, -3)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"Divide", b.Divide(2), NewVec3(2, -2.5, 3)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(4, -10, 18)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"Cross", NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)), NewVec3(0, 0, 1)},
		{"Square", b.Square(), NewVec3(16, 25, 36)},
		{"Clamp", NewVec3(-1, 0.5, 2).Clamp(0, 1), NewVec3(0, 0.5, 1)},
		{"Sqrt", NewVec3(4, -1, 0.25).Sqrt(), NewVec3(2, 0, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}

	// Operands are values and must be left untouched
	if a != NewVec3(1, 2, 3) || b != NewVec3(4, -5, 6) {
		t.Errorf("Operands were mutated: a=%v b=%v", a, b)
	}
}

func TestVec3AddInPlace(t *testing.T) {
	acc := NewVec3(0, 0, 0)
	acc.AddInPlace(NewVec3(1, 2, 3))
	acc.AddInPlace(NewVec3(1, 1, 1))

	if acc != NewVec3(2, 3, 4) {
		t.Errorf("Expected (2,3,4), got %v", acc)
	}
}

func TestVec3LengthAndNormalize(t *testing.T) {
	v := NewVec3(3, 4, 12)
	if v.Length() != 13 {
		t.Errorf("Expected length 13, got %f", v.Length())
	}
	if v.LengthSquared() != 169 {
		t.Errorf("Expected squared length 169, got %f", v.LengthSquared())
	}

	unit := v.Normalize()
	if math.Abs(unit.Length()-1) > 1e-12 {
		t.Errorf("Normalized vector should have unit length, got %f", unit.Length())
	}

	if zero := NewVec3(0, 0, 0).Normalize(); zero != NewVec3(0, 0, 0) {
		t.Errorf("Normalizing zero vector should return zero, got %v", zero)
	}
}

func TestVec3NearZero(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"zero", NewVec3(0, 0, 0), true},
		{"tiny", NewVec3(1e-9, -1e-9, 5e-9), true},
		{"one component large", NewVec3(1e-9, 1e-3, 0), false},
		{"unit", NewVec3(1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.NearZero(); got != tt.expected {
				t.Errorf("NearZero(%v) = %t, want %t", tt.v, got, tt.expected)
			}
		})
	}
}

func TestRayAt(t *testing.T) {
	tests := []struct {
		name     string
		ray      Ray
		param    float64
		expected Vec3
	}{
		{"t=0 returns origin", NewRay(NewVec3(1, 2, 3), NewVec3(1, 0, 0)), 0, NewVec3(1, 2, 3)},
		{"unit direction", NewRay(NewVec3(1, 2, 3), NewVec3(1, 0, 0)), 1, NewVec3(2, 2, 3)},
		{"scaled direction", NewRay(NewVec3(0, 0, 0), NewVec3(2, 3, 4)), 2, NewVec3(4, 6, 8)},
		{"negative direction", NewRay(NewVec3(5, 5, 5), NewVec3(-1, -1, -1)), 2, NewVec3(3, 3, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ray.At(tt.param); !vecNear(got, tt.expected, 1e-12) {
				t.Errorf("Ray.At(%f) = %v, want %v", tt.param, got, tt.expected)
			}
		})
	}
}
