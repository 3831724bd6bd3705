package vision

import "gonum.org/v1/gonum/stat"

// Per-pixel gradient thresholds and decision thresholds for the single-frame
// motion approximation. Shared contracts, same as the pixel classifiers.
const (
	flickerIntensityDelta = 40
	upwardGradientDelta   = 20
	flickeringThreshold   = 0.01
	upwardMotionThreshold = 0.008
)

// MotionPatterns summarises local intensity gradients of ONE frame. This is
// an intentional single-frame approximation: flicker and upward movement are
// inferred from spatial gradients, not from inter-frame differences.
type MotionPatterns struct {
	FlickeringRatio   float64 `json:"flickering_ratio"`
	UpwardMotionRatio float64 `json:"upward_motion_ratio"`
	HasFlickering     bool    `json:"has_flickering"`
	HasUpwardMovement bool    `json:"has_upward_movement"`

	// Intensity distribution of the scanned interior, for diagnostics.
	MeanIntensity   float64 `json:"mean_intensity"`
	IntensityStdDev float64 `json:"intensity_std_dev"`
}

// AnalyzeMotion scans every interior pixel (1-pixel border excluded) and
// compares its intensity against its four axis-aligned neighbours. Cost is
// O(width×height); callers throttle rather than running this on every tick.
func AnalyzeMotion(f *Frame) MotionPatterns {
	if f == nil || f.Width < 3 || f.Height < 3 {
		return MotionPatterns{}
	}

	intensityChanges := 0
	verticalGradients := 0
	intensities := make([]float64, 0, (f.Width-2)*(f.Height-2))

	for y := 1; y < f.Height-1; y++ {
		for x := 1; x < f.Width-1; x++ {
			current := intensityAt(f, x, y)
			intensities = append(intensities, current)

			up := intensityAt(f, x, y-1)
			down := intensityAt(f, x, y+1)
			left := intensityAt(f, x-1, y)
			right := intensityAt(f, x+1, y)
			avgNeighbor := (up + down + left + right) / 4

			if absFloat(current-avgNeighbor) > flickerIntensityDelta {
				intensityChanges++
			}
			// Brighter than the pixel below: proxy for smoke rising.
			if current-down > upwardGradientDelta {
				verticalGradients++
			}
		}
	}

	totalPixels := float64(f.Width * f.Height)
	flickeringRatio := float64(intensityChanges) / totalPixels
	upwardRatio := float64(verticalGradients) / totalPixels

	mean, std := stat.MeanStdDev(intensities, nil)

	return MotionPatterns{
		FlickeringRatio:   flickeringRatio,
		UpwardMotionRatio: upwardRatio,
		HasFlickering:     flickeringRatio > flickeringThreshold,
		HasUpwardMovement: upwardRatio > upwardMotionThreshold,
		MeanIntensity:     mean,
		IntensityStdDev:   std,
	}
}

func intensityAt(f *Frame, x, y int) float64 {
	r, g, b := f.RGBAt(x, y)
	return float64(int(r)+int(g)+int(b)) / 3
}
