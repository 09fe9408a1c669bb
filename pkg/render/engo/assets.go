package engo

import (
	"image"
	"sync"

	"github.com/EngoEngine/engo/common"
	"github.com/disintegration/imaging"
)

// Resolver looks up a decoded sprite by key.
type Resolver interface {
	Resolve(key string) (image.Image, bool)
}

// TextureFunc uploads a decoded image. It needs a live GL context.
type TextureFunc func(img image.Image) common.Drawable

// NewTexture converts img to NRGBA and uploads it as a single texture.
func NewTexture(img image.Image) common.Drawable {
	return common.NewTextureSingle(common.NewImageObject(imaging.Clone(img)))
}

// AssetManager turns sprites into engo textures on first use.
type AssetManager struct {
	sprites    Resolver
	newTexture TextureFunc

	mu       sync.Mutex
	textures map[string]common.Drawable
}

// NewAssetManager creates a texture cache over sprites. A nil newTexture
// uses NewTexture.
func NewAssetManager(sprites Resolver, newTexture TextureFunc) *AssetManager {
	if newTexture == nil {
		newTexture = NewTexture
	}
	return &AssetManager{
		sprites:    sprites,
		newTexture: newTexture,
		textures:   make(map[string]common.Drawable),
	}
}

// Texture returns the texture for key, uploading it on first use.
func (am *AssetManager) Texture(key string) (common.Drawable, bool) {
	if key == "" || am.sprites == nil {
		return nil, false
	}

	am.mu.Lock()
	defer am.mu.Unlock()

	if tex, ok := am.textures[key]; ok {
		return tex, tex != nil
	}
	img, ok := am.sprites.Resolve(key)
	if !ok {
		am.textures[key] = nil
		return nil, false
	}
	tex := am.newTexture(img)
	am.textures[key] = tex
	return tex, tex != nil
}

// Len returns how many textures have been uploaded.
func (am *AssetManager) Len() int {
	am.mu.Lock()
	defer am.mu.Unlock()
	n := 0
	for _, tex := range am.textures {
		if tex != nil {
			n++
		}
	}
	return n
}

// Close releases every uploaded texture.
func (am *AssetManager) Close() {
	am.mu.Lock()
	defer am.mu.Unlock()
	for key, tex := range am.textures {
		if tex != nil {
			tex.Close()
		}
		delete(am.textures, key)
	}
}
