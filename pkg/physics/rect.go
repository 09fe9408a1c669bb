// pkg/physics/rect.go
package physics

// Rect is an axis-aligned bounding box. X and Y name the top-left corner in
// arena coordinates, with y growing downward.
type Rect struct {
	X, Y float64
	W, H float64
}

// NewRect creates a rectangle from its top-left corner and size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Center returns the centre point of the rectangle.
func (r Rect) Center() Vector2D {
	return Vector2D{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Overlaps reports whether two rectangles share interior area. Touching
// edges do not count.
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.W &&
		r.X+r.W > other.X &&
		r.Y < other.Y+other.H &&
		r.Y+r.H > other.Y
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(p Vector2D) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// Translate returns the rectangle moved by v.
func (r Rect) Translate(v Vector2D) Rect {
	r.X += v.X
	r.Y += v.Y
	return r
}

// ClampInside returns the rectangle moved so that it lies fully within
// [0,width] x [0,height]. A rectangle larger than the bounds is pinned to
// the top-left corner.
func (r Rect) ClampInside(width, height float64) Rect {
	r.X = Clamp(r.X, 0, width-r.W)
	r.Y = Clamp(r.Y, 0, height-r.H)
	return r
}

// Clamp restricts val to [lo, hi]. When hi < lo the result is lo.
func Clamp(val, lo, hi float64) float64 {
	if val > hi {
		val = hi
	}
	if val < lo {
		val = lo
	}
	return val
}
