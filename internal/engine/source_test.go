package engine

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestDirectorySourceCycles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_002.png"), 20, 10)
	writePNG(t, filepath.Join(dir, "frame_001.png"), 10, 10)
	writePNG(t, filepath.Join(dir, "frame_003.png"), 30, 10)

	src, err := NewDirectorySource(dir, "*.png")
	if err != nil {
		t.Fatalf("NewDirectorySource: %v", err)
	}
	if src.Len() != 3 {
		t.Fatalf("Len = %d, want 3", src.Len())
	}

	// Sorted filename order, then wrap around.
	wantWidths := []int{10, 20, 30, 10, 20}
	for i, want := range wantWidths {
		frame, err := src.Next(context.Background())
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if frame.Width != want {
			t.Fatalf("frame %d width = %d, want %d", i, frame.Width, want)
		}
		if frame.Timestamp.IsZero() {
			t.Fatalf("frame %d missing timestamp", i)
		}
	}
}

func TestDirectorySourceEmptyDir(t *testing.T) {
	if _, err := NewDirectorySource(t.TempDir(), "*.png"); err == nil {
		t.Fatal("empty directory accepted")
	}
}

func TestDirectorySourceCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := NewDirectorySource(dir, "*.png")
	if err != nil {
		t.Fatalf("NewDirectorySource: %v", err)
	}
	if _, err := src.Next(context.Background()); err == nil {
		t.Fatal("corrupt file decoded without error")
	}
}

func TestStaticSourceDefaults(t *testing.T) {
	src := NewStaticSource(0, 0)
	frame, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if frame.Width != 640 || frame.Height != 480 {
		t.Fatalf("default dims = %dx%d, want 640x480", frame.Width, frame.Height)
	}
}

func TestSourceHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewStaticSource(32, 32).Next(ctx); err == nil {
		t.Fatal("cancelled context ignored")
	}
}
