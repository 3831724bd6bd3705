package vision

// Fire/smoke decision thresholds. A high color-match ratio alone is
// sufficient; a moderate ratio needs corroborating motion evidence so a
// static orange or gray background does not trip the detector.
const (
	fireRatioWithMotion  = 0.002
	fireRatioStandalone  = 0.005
	smokeRatioWithMotion = 0.01
	smokeRatioStandalone = 0.03
)

// FireSmokeResult is the per-frame fire/smoke presence decision.
type FireSmokeResult struct {
	FireDetected  bool           `json:"fire_detected"`
	SmokeDetected bool           `json:"smoke_detected"`
	FireRatio     float64        `json:"fire_ratio"`
	SmokeRatio    float64        `json:"smoke_ratio"`
	Motion        MotionPatterns `json:"motion"`
}

// DetectFireSmoke classifies every pixel of the frame against the fire and
// smoke color bands and corroborates moderate ratios with the single-frame
// motion analysis of the same frame.
func DetectFireSmoke(f *Frame) FireSmokeResult {
	if f == nil || f.Width == 0 || f.Height == 0 {
		return FireSmokeResult{}
	}

	firePixels, smokePixels := 0, 0
	for y := 0; y < f.Height; y++ {
		row := y * f.Width * 4
		for x := 0; x < f.Width; x++ {
			i := row + x*4
			r, g, b := f.Pix[i], f.Pix[i+1], f.Pix[i+2]
			if IsFireColor(r, g, b) {
				firePixels++
			}
			if IsSmokeColor(r, g, b) {
				smokePixels++
			}
		}
	}

	total := float64(f.Width * f.Height)
	fireRatio := float64(firePixels) / total
	smokeRatio := float64(smokePixels) / total

	motion := AnalyzeMotion(f)

	return FireSmokeResult{
		FireDetected:  (fireRatio > fireRatioWithMotion && motion.HasFlickering) || fireRatio > fireRatioStandalone,
		SmokeDetected: (smokeRatio > smokeRatioWithMotion && motion.HasUpwardMovement) || smokeRatio > smokeRatioStandalone,
		FireRatio:     fireRatio,
		SmokeRatio:    smokeRatio,
		Motion:        motion,
	}
}
