package assets

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir, key string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLibraryPreload(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, ShipBlue)
	writePNG(t, dir, LaserBlue)

	lib := NewLibrary(dir, nil)
	n, err := lib.Preload(context.Background(), []string{ShipBlue, LaserBlue, PowerUpFreeze})
	if err != nil {
		t.Fatalf("Preload() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Preload() loaded %d, want 2", n)
	}

	img, ok := lib.Image(ShipBlue)
	if !ok {
		t.Fatal("ShipBlue not cached")
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("bounds = %v, want 4x3", b)
	}

	missing := lib.Missing()
	if len(missing) != 1 || missing[0] != PowerUpFreeze {
		t.Errorf("Missing() = %v, want [%s]", missing, PowerUpFreeze)
	}
}

func TestLibraryResolve(t *testing.T) {
	dir := t.TempDir()
	lib := NewLibrary(dir, nil)

	if _, ok := lib.Resolve(""); ok {
		t.Error("Resolve(\"\") succeeded")
	}
	if _, ok := lib.Resolve(Meteors[0]); ok {
		t.Fatal("Resolve() of absent file succeeded")
	}

	// Missing keys are not retried by Resolve.
	writePNG(t, dir, Meteors[0])
	if _, ok := lib.Resolve(Meteors[0]); ok {
		t.Error("Resolve() retried a missing key")
	}

	// Load clears the miss.
	if _, err := lib.Load(Meteors[0]); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := lib.Resolve(Meteors[0]); !ok {
		t.Error("Resolve() after Load failed")
	}
	if len(lib.Missing()) != 0 {
		t.Errorf("Missing() = %v, want empty", lib.Missing())
	}
}

func TestLibraryResolveLoadsLazily(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, EnemiesRed[2])
	lib := NewLibrary(dir, nil)

	if lib.Len() != 0 {
		t.Fatalf("Len() = %d before use", lib.Len())
	}
	if _, ok := lib.Resolve(EnemiesRed[2]); !ok {
		t.Fatal("Resolve() failed")
	}
	if lib.Len() != 1 {
		t.Errorf("Len() = %d, want 1", lib.Len())
	}
}

func TestLibraryPreloadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lib := NewLibrary(t.TempDir(), nil)
	n, err := lib.Preload(ctx, PowerUps)
	if err == nil {
		t.Fatal("Preload() with cancelled context returned nil error")
	}
	if n != 0 {
		t.Errorf("Preload() loaded %d, want 0", n)
	}
}

func TestLibraryCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, filepath.FromSlash(ShipGreen))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	lib := NewLibrary(dir, nil)
	if _, err := lib.Load(ShipGreen); err == nil {
		t.Fatal("Load() of corrupt file succeeded")
	}
	if len(lib.Missing()) != 1 {
		t.Errorf("Missing() = %v", lib.Missing())
	}
}

func TestEnemySets(t *testing.T) {
	if len(EnemiesBlack) != 5 {
		t.Fatalf("len(EnemiesBlack) = %d, want 5", len(EnemiesBlack))
	}
	if EnemiesBlack[0] != "enemies/enemyBlack1.png" || EnemiesBlack[4] != "enemies/enemyBlack5.png" {
		t.Errorf("EnemiesBlack = %v", EnemiesBlack)
	}
}
