package assets

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/opd-ai/go-starstrike/pkg/logging"
)

// Library loads sprites from a directory and caches the decoded images.
// A key that fails to load is recorded as missing and renderers fall back
// to flat shapes for it.
type Library struct {
	dir    string
	logger *logging.Logger

	mu      sync.RWMutex
	images  map[string]image.Image
	missing map[string]error
}

// NewLibrary creates a library rooted at dir.
func NewLibrary(dir string, logger *logging.Logger) *Library {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Library{
		dir:     dir,
		logger:  logger,
		images:  make(map[string]image.Image),
		missing: make(map[string]error),
	}
}

// Dir returns the asset directory.
func (l *Library) Dir() string {
	return l.dir
}

// Load decodes key from disk, or returns the cached image.
func (l *Library) Load(key string) (image.Image, error) {
	l.mu.RLock()
	if img, ok := l.images[key]; ok {
		l.mu.RUnlock()
		return img, nil
	}
	l.mu.RUnlock()

	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if _, err := os.Stat(path); err != nil {
		l.markMissing(key, err)
		return nil, fmt.Errorf("sprite %s: %w", key, err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		l.markMissing(key, err)
		return nil, fmt.Errorf("sprite %s: %w", key, err)
	}

	l.mu.Lock()
	l.images[key] = img
	delete(l.missing, key)
	l.mu.Unlock()
	return img, nil
}

func (l *Library) markMissing(key string, err error) {
	l.mu.Lock()
	l.missing[key] = err
	l.mu.Unlock()
}

// Preload loads every key, stopping early when ctx is done. Failures are
// logged and recorded; the returned count is the number of keys loaded.
func (l *Library) Preload(ctx context.Context, keys []string) (int, error) {
	loaded := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}
		if _, err := l.Load(key); err != nil {
			l.logger.Warn(ctx, "Sprite unavailable", "key", key, "error", err)
			continue
		}
		loaded++
	}
	l.logger.Info(ctx, "Sprites preloaded",
		"dir", l.dir,
		"loaded", loaded,
		"missing", len(keys)-loaded,
	)
	return loaded, nil
}

// Image returns a cached image without touching the disk.
func (l *Library) Image(key string) (image.Image, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.images[key]
	return img, ok
}

// Resolve returns the image for key, loading it on first use. Keys already
// known to be missing are not retried.
func (l *Library) Resolve(key string) (image.Image, bool) {
	if key == "" {
		return nil, false
	}
	l.mu.RLock()
	img, ok := l.images[key]
	_, miss := l.missing[key]
	l.mu.RUnlock()
	if ok {
		return img, true
	}
	if miss {
		return nil, false
	}
	img, err := l.Load(key)
	return img, err == nil
}

// Missing returns the sorted keys that failed to load.
func (l *Library) Missing() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.missing))
	for k := range l.missing {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of cached images.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.images)
}
