package vision

import "image"

const (
	maskFabricThreshold = 0.3
	maskSkinThreshold   = 0.4
	maskMinConfidence   = 0.1
	maskMaxConfidence   = 0.95
)

// MaskResult is the facial-covering decision for one face region.
type MaskResult struct {
	HasMask     bool    `json:"has_mask"`
	Confidence  float64 `json:"confidence"`
	SkinRatio   float64 `json:"skin_ratio"`
	FabricRatio float64 `json:"fabric_ratio"`
}

// DetectMask classifies the lower half of a face box (the nose/mouth region)
// as covered or uncovered. The decision is fail-soft: an empty or
// out-of-frame region yields the zero result, never an error. Landmark
// availability does not change the algorithm; only the face box matters.
func DetectMask(f *Frame, face image.Rectangle) MaskResult {
	if f == nil {
		return MaskResult{}
	}

	// Analysis is restricted to y from 50% of the face height downward.
	lower := image.Rect(
		face.Min.X,
		face.Min.Y+face.Dy()/2,
		face.Max.X,
		face.Max.Y,
	)

	pixels := f.SampleRegion(lower)
	if len(pixels) == 0 {
		return MaskResult{}
	}

	skin, fabric := 0, 0
	for _, p := range pixels {
		if IsSkinTone(p.R, p.G, p.B) {
			skin++
		}
		if IsFabricLike(p.R, p.G, p.B) {
			fabric++
		}
	}

	total := float64(len(pixels))
	skinRatio := float64(skin) / total
	fabricRatio := float64(fabric) / total

	return MaskResult{
		HasMask:     fabricRatio > maskFabricThreshold && skinRatio < maskSkinThreshold,
		Confidence:  clamp(fabricRatio*2, maskMinConfidence, maskMaxConfidence),
		SkinRatio:   skinRatio,
		FabricRatio: fabricRatio,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
