package vision

import (
	"image"
	"testing"
)

func TestDetectMaskCoveredFace(t *testing.T) {
	f := NewFrame(100, 100)
	face := image.Rect(20, 20, 80, 80)

	// Skin over the whole face, gray fabric over the lower half.
	fillRect(f, face, 160, 120, 90)
	fillRect(f, image.Rect(20, 50, 80, 80), 128, 128, 128)

	got := DetectMask(f, face)
	if !got.HasMask {
		t.Fatalf("DetectMask covered face: HasMask = false (fabric %v, skin %v)", got.FabricRatio, got.SkinRatio)
	}
	if got.Confidence != 0.95 {
		t.Errorf("covered face confidence = %v, want 0.95 (clamped)", got.Confidence)
	}
}

func TestDetectMaskBareFace(t *testing.T) {
	f := NewFrame(100, 100)
	face := image.Rect(20, 20, 80, 80)
	fillRect(f, face, 160, 120, 90)

	got := DetectMask(f, face)
	if got.HasMask {
		t.Fatalf("DetectMask bare face: HasMask = true (fabric %v, skin %v)", got.FabricRatio, got.SkinRatio)
	}
	if got.FabricRatio != 0 {
		t.Errorf("bare face fabric ratio = %v, want 0", got.FabricRatio)
	}
	// Low fabric evidence still reports the floor confidence, not zero.
	if got.Confidence != 0.1 {
		t.Errorf("bare face confidence = %v, want 0.1", got.Confidence)
	}
}

func TestDetectMaskPartialFabric(t *testing.T) {
	f := NewFrame(100, 100)
	face := image.Rect(0, 0, 100, 100)

	// Lower half (y 50..100): 40% fabric rows, 60% skin rows.
	fillRect(f, image.Rect(0, 50, 100, 80), 160, 120, 90)
	fillRect(f, image.Rect(0, 80, 100, 100), 30, 30, 30)

	got := DetectMask(f, face)
	if got.FabricRatio != 0.4 {
		t.Errorf("fabric ratio = %v, want 0.4", got.FabricRatio)
	}
	if got.SkinRatio != 0.6 {
		t.Errorf("skin ratio = %v, want 0.6", got.SkinRatio)
	}
	// fabric > 0.3 but skin >= 0.4: not a mask.
	if got.HasMask {
		t.Error("HasMask = true, want false when skin dominates")
	}
	if got.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8 (fabric*2)", got.Confidence)
	}
}

func TestDetectMaskUndecidableRegions(t *testing.T) {
	f := NewFrame(50, 50)
	fillRect(f, f.Bounds(), 128, 128, 128)

	tests := []struct {
		name string
		face image.Rectangle
	}{
		{"Outside frame", image.Rect(200, 200, 240, 240)},
		{"Zero area", image.Rect(10, 10, 10, 10)},
		{"Lower half below frame", image.Rect(10, 20, 40, 120)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectMask(f, tt.face)
			if got != (MaskResult{}) {
				t.Errorf("DetectMask(%v) = %+v, want zero result", tt.face, got)
			}
		})
	}
}

func TestDetectMaskNilFrame(t *testing.T) {
	if got := DetectMask(nil, image.Rect(0, 0, 10, 10)); got != (MaskResult{}) {
		t.Errorf("DetectMask(nil) = %+v, want zero result", got)
	}
}
