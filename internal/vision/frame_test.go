package vision

import (
	"image"
	"image/color"
	"testing"
)

// fillRect paints a solid color over a rectangle, clipped to the frame.
func fillRect(f *Frame, rect image.Rectangle, r, g, b uint8) {
	clipped := rect.Intersect(f.Bounds())
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			f.SetRGB(x, y, r, g, b)
		}
	}
}

func TestSampleRegion(t *testing.T) {
	f := NewFrame(10, 10)
	fillRect(f, f.Bounds(), 100, 150, 200)

	tests := []struct {
		name      string
		rect      image.Rectangle
		wantCount int
	}{
		{"Full frame", image.Rect(0, 0, 10, 10), 100},
		{"Interior region", image.Rect(2, 2, 5, 6), 12},
		{"Clipped to frame", image.Rect(8, 8, 20, 20), 4},
		{"Fully outside", image.Rect(50, 50, 60, 60), 0},
		{"Zero area", image.Rect(3, 3, 3, 8), 0},
		{"Inverted corners", image.Rect(8, 8, 2, 2), 36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.SampleRegion(tt.rect)
			if len(got) != tt.wantCount {
				t.Errorf("SampleRegion(%v) returned %d pixels, want %d", tt.rect, len(got), tt.wantCount)
			}
		})
	}
}

func TestSampleRegionValues(t *testing.T) {
	f := NewFrame(4, 4)
	fillRect(f, f.Bounds(), 10, 20, 30)
	f.SetRGB(1, 1, 200, 100, 50)

	pixels := f.SampleRegion(image.Rect(1, 1, 2, 2))
	if len(pixels) != 1 {
		t.Fatalf("expected 1 pixel, got %d", len(pixels))
	}
	if pixels[0] != (Pixel{R: 200, G: 100, B: 50}) {
		t.Errorf("sampled pixel = %+v, want {200 100 50}", pixels[0])
	}
}

func TestRGBAtOutOfBounds(t *testing.T) {
	f := NewFrame(4, 4)
	fillRect(f, f.Bounds(), 255, 255, 255)

	for _, pt := range []image.Point{{-1, 0}, {0, -1}, {4, 0}, {0, 4}, {100, 100}} {
		r, g, b := f.RGBAt(pt.X, pt.Y)
		if r != 0 || g != 0 || b != 0 {
			t.Errorf("RGBAt(%d, %d) = (%d, %d, %d), want black", pt.X, pt.Y, r, g, b)
		}
	}
}

func TestFrameFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.SetRGBA(2, 1, color.RGBA{R: 40, G: 80, B: 120, A: 255})

	f := FrameFromImage(src)
	if f.Width != 3 || f.Height != 2 {
		t.Fatalf("frame dims = %dx%d, want 3x2", f.Width, f.Height)
	}
	r, g, b := f.RGBAt(2, 1)
	if r != 40 || g != 80 || b != 120 {
		t.Errorf("RGBAt(2,1) = (%d, %d, %d), want (40, 80, 120)", r, g, b)
	}
}
