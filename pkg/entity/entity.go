// pkg/entity/entity.go
package entity

import (
	"sync/atomic"

	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// ID is a unique identifier for an entity within one engine.
type ID uint64

// IDGenerator hands out increasing entity IDs. The zero value is ready to use
// and starts at 1.
type IDGenerator struct {
	last atomic.Uint64
}

// Next returns a fresh ID.
func (g *IDGenerator) Next() ID {
	return ID(g.last.Add(1))
}

// Body is the identity and bounding box shared by every entity. The box is
// both the collision shape and the render placement.
type Body struct {
	ID   ID
	Rect physics.Rect
}

// Overlaps reports whether two bodies collide.
func (b Body) Overlaps(other Body) bool {
	return b.Rect.Overlaps(other.Rect)
}
