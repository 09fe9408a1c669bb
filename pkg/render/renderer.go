package render

import (
	"context"
	"image/color"

	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/physics"
)

// NullSurface draws nothing and logs each call at debug level. Sprites
// never resolve, so every entity takes the fallback path.
type NullSurface struct {
	width, height float64
	logger        *logging.Logger

	Frames int
	Rects  int
	Texts  int
}

// NewNullSurface creates a surface of the given size. A nil logger
// discards output.
func NewNullSurface(width, height float64, logger *logging.Logger) *NullSurface {
	if logger == nil {
		logger = logging.Nop()
	}
	return &NullSurface{width: width, height: height, logger: logger}
}

// Size implements Surface.
func (n *NullSurface) Size() (float64, float64) {
	return n.width, n.height
}

// Begin implements Surface.
func (n *NullSurface) Begin() {
	n.logger.Debug(context.Background(), "Begin called")
}

// DrawImage implements Surface.
func (n *NullSurface) DrawImage(key string, r physics.Rect, rotation float64) bool {
	n.logger.Debug(context.Background(), "DrawImage called",
		"key", key,
		"x", r.X,
		"y", r.Y,
		"rotation", rotation,
	)
	return false
}

// FillRect implements Surface.
func (n *NullSurface) FillRect(r physics.Rect, _ color.Color) {
	n.Rects++
	n.logger.Debug(context.Background(), "FillRect called", "x", r.X, "y", r.Y, "w", r.W, "h", r.H)
}

// DrawText implements Surface.
func (n *NullSurface) DrawText(x, y float64, s string, _ color.Color) {
	n.Texts++
	n.logger.Debug(context.Background(), "DrawText called", "x", x, "y", y, "text", s)
}

// End implements Surface.
func (n *NullSurface) End() error {
	n.Frames++
	n.logger.Debug(context.Background(), "End called", "frames", n.Frames)
	return nil
}
