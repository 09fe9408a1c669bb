package engo

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"
)

// HUDFontURL is the virtual file the embedded HUD font is registered as.
const HUDFontURL = "starstrike/goregular.ttf"

// DefaultFontSize matches the line height of the shared HUD.
const DefaultFontSize = 16

// LoadHUDFont registers the embedded Go Regular font with engo and builds
// a white HUD font. Text is tinted per draw through the render colour.
func LoadHUDFont(size float64) (*common.Font, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	if err := engo.Files.LoadReaderData(HUDFontURL, bytes.NewReader(goregular.TTF)); err != nil {
		return nil, fmt.Errorf("failed to load HUD font: %w", err)
	}
	font := &common.Font{
		URL:  HUDFontURL,
		FG:   color.White,
		Size: size,
	}
	if err := font.CreatePreloaded(); err != nil {
		return nil, fmt.Errorf("failed to create HUD font: %w", err)
	}
	return font, nil
}
