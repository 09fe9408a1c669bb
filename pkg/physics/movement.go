package physics

// Direction holds the held directional inputs for one frame.
type Direction struct {
	Left, Right, Up, Down bool
}

// Axis converts held directions into a unit-per-axis step. Opposite keys
// cancel out.
func (d Direction) Axis() Vector2D {
	var v Vector2D
	if d.Left {
		v.X--
	}
	if d.Right {
		v.X++
	}
	if d.Up {
		v.Y--
	}
	if d.Down {
		v.Y++
	}
	return v
}

// MoveClamped moves body by the held direction scaled by speed plus an
// absolute pixel offset (a drag delta), then clamps it inside the arena.
func MoveClamped(body Rect, dir Direction, speed float64, offset Vector2D, width, height float64) Rect {
	step := dir.Axis().Scale(speed).Add(offset)
	return body.Translate(step).ClampInside(width, height)
}
