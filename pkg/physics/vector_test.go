// pkg/physics/vector_test.go
package physics

import (
	"math"
	"testing"
)

func TestVector2D_Arithmetic(t *testing.T) {
	a := Vector2D{X: 3, Y: 4}
	b := Vector2D{X: -1, Y: 2}

	if got := a.Add(b); got != (Vector2D{X: 2, Y: 6}) {
		t.Errorf("Add() = %v", got)
	}
	if got := a.Sub(b); got != (Vector2D{X: 4, Y: 2}) {
		t.Errorf("Sub() = %v", got)
	}
	if got := a.Scale(2); got != (Vector2D{X: 6, Y: 8}) {
		t.Errorf("Scale() = %v", got)
	}
	if got := a.Length(); got != 5 {
		t.Errorf("Length() = %v, expected 5", got)
	}
	if got := a.Distance(Vector2D{}); got != 5 {
		t.Errorf("Distance() = %v, expected 5", got)
	}
}

func TestVector2D_Normalize(t *testing.T) {
	tests := []struct {
		name string
		v    Vector2D
	}{
		{"axis", Vector2D{X: 10}},
		{"diagonal", Vector2D{X: 3, Y: -4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.v.Normalize()
			if math.Abs(n.Length()-1) > 1e-9 {
				t.Errorf("Normalize() length = %v, expected 1", n.Length())
			}
		})
	}

	if got := (Vector2D{}).Normalize(); !got.IsZero() {
		t.Errorf("Normalize() of zero vector = %v, expected zero", got)
	}
}
