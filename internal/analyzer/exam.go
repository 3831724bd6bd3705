package analyzer

import (
	"fmt"
	"math"

	"github.com/argus-vision/argus/internal/detect"
)

const (
	examGazeBase     = 95
	examLowFaceRatio = 0.8
)

// UniformComplianceUnmeasured is the placeholder for the uniform check:
// there is no uniform classifier yet, and reporting a fabricated score
// would make the aggregator nondeterministic. NaN renders as "n/a".
var UniformComplianceUnmeasured = math.NaN()

// AnalyzeExam surfaces proctoring violations. Every category present
// contributes one violation message; prohibited items are phones, laptops
// and any books beyond one per candidate.
func AnalyzeExam(detections []detect.Detection, faces []detect.FaceDetection) Result {
	persons := countClass(detections, detect.ClassPerson)
	phones := countClass(detections, detect.ClassCellPhone)
	laptops := countClass(detections, detect.ClassLaptop)
	books := countClass(detections, detect.ClassBook)
	backpacks := countClass(detections, detect.ClassBackpack)
	faceCount := len(faces)

	candidateCount := maxInt(persons, faceCount)

	faceRatio := 0.0
	if candidateCount > 0 {
		faceRatio = float64(faceCount) / float64(candidateCount)
	}

	gazeCompliance := math.Min(100, faceRatio*examGazeBase)

	excessBooks := maxInt(0, books-candidateCount)
	prohibited := phones + laptops + excessBooks

	var alerts []string
	if phones > 0 {
		alerts = append(alerts, fmt.Sprintf("%d mobile phone(s) detected during exam", phones))
	}
	if excessBooks > 0 {
		alerts = append(alerts, fmt.Sprintf("%d unauthorized book(s) detected", excessBooks))
	}
	if laptops > 0 {
		alerts = append(alerts, fmt.Sprintf("%d laptop(s) detected during exam", laptops))
	}
	if backpacks > 0 {
		alerts = append(alerts, fmt.Sprintf("%d backpack(s) inside the exam area", backpacks))
	}
	if candidateCount > 0 && faceRatio < examLowFaceRatio {
		alerts = append(alerts, "Low gaze compliance: candidates looking away from their desks")
	}

	return Result{
		Module: ModuleExam,
		Alerts: alerts,
		Exam: &ExamMetrics{
			CandidateCount:    candidateCount,
			GazeCompliance:    gazeCompliance,
			ProhibitedItems:   prohibited,
			UniformCompliance: UniformComplianceUnmeasured,
		},
	}
}
