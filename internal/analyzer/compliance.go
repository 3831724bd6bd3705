package analyzer

import (
	"fmt"

	"github.com/argus-vision/argus/internal/detect"
)

const (
	maskReadingMinConfidence = 0.5
	maskComplianceTarget     = 85
)

// AnalyzeCompliance measures facial-covering compliance over the faces
// that carry a confident mask reading. Unreadable faces count against
// coverage, not against compliance.
func AnalyzeCompliance(detections []detect.Detection, faces []detect.FaceDetection) Result {
	peopleCount := countClass(detections, detect.ClassPerson)

	analyzed, masked := 0, 0
	for _, f := range faces {
		if !f.MaskKnown || f.MaskConfidence <= maskReadingMinConfidence {
			continue
		}
		analyzed++
		if f.HasMask {
			masked++
		}
	}

	compliance := 0.0
	if analyzed > 0 {
		compliance = float64(masked) / float64(analyzed) * 100
	}

	var alerts []string
	if analyzed > 0 && compliance < maskComplianceTarget {
		alerts = append(alerts, fmt.Sprintf("Mask compliance at %.0f%%, below the %d%% target", compliance, maskComplianceTarget))
	}
	if peopleCount > analyzed {
		alerts = append(alerts, fmt.Sprintf("%d people without a mask reading", peopleCount-analyzed))
	}

	return Result{
		Module: ModuleCompliance,
		Alerts: alerts,
		Compliance: &ComplianceMetrics{
			PeopleCount:    peopleCount,
			FacesAnalyzed:  analyzed,
			MaskedFaces:    masked,
			MaskCompliance: compliance,
		},
	}
}
