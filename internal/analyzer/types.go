package analyzer

import (
	"math"

	"github.com/argus-vision/argus/internal/detect"
	"github.com/argus-vision/argus/internal/vision"
)

// Module identifies one monitoring aggregation mode.
type Module string

const (
	ModuleClassroom  Module = "classroom"
	ModuleExam       Module = "exam"
	ModuleOccupancy  Module = "occupancy"
	ModuleCompliance Module = "compliance"
	ModuleSafety     Module = "safety"
)

// Modules lists every supported module.
var Modules = []Module{ModuleClassroom, ModuleExam, ModuleOccupancy, ModuleCompliance, ModuleSafety}

// Valid reports whether m names a known module.
func (m Module) Valid() bool {
	for _, known := range Modules {
		if m == known {
			return true
		}
	}
	return false
}

// Result is one aggregation outcome: the module tag, its ordered alert
// strings, and exactly one populated metrics payload. Results are produced
// fresh per call and never mutated after return.
type Result struct {
	Module Module   `json:"module"`
	Alerts []string `json:"alerts"`

	Classroom  *ClassroomMetrics  `json:"classroom,omitempty"`
	Exam       *ExamMetrics       `json:"exam,omitempty"`
	Occupancy  *OccupancyMetrics  `json:"occupancy,omitempty"`
	Compliance *ComplianceMetrics `json:"compliance,omitempty"`
	Safety     *SafetyMetrics     `json:"safety,omitempty"`
}

// ClassroomMetrics summarizes engagement in a lecture setting.
type ClassroomMetrics struct {
	StudentCount   int     `json:"student_count"`
	FaceRatio      float64 `json:"face_ratio"`
	AttentionLevel int     `json:"attention_level"`
	PhoneCount     int     `json:"phone_count"`
	LaptopCount    int     `json:"laptop_count"`
}

// ExamMetrics summarizes proctoring signals.
//
// UniformCompliance stays NaN until a real uniform classifier exists; the
// field is excluded from JSON so the placeholder never reaches clients.
type ExamMetrics struct {
	CandidateCount    int     `json:"candidate_count"`
	GazeCompliance    float64 `json:"gaze_compliance"`
	ProhibitedItems   int     `json:"prohibited_items"`
	UniformCompliance float64 `json:"-"`
}

// OccupancyMetrics summarizes room utilization.
type OccupancyMetrics struct {
	Occupancy      int     `json:"occupancy"`
	TotalSeats     int     `json:"total_seats"`
	MaxCapacity    int     `json:"max_capacity"`
	AvailableSeats int     `json:"available_seats"`
	OccupancyRate  float64 `json:"occupancy_rate"`
}

// ComplianceMetrics summarizes facial-covering compliance. FacesAnalyzed
// counts only faces carrying a confident mask reading; faces without one
// are excluded from the ratio rather than guessed.
type ComplianceMetrics struct {
	PeopleCount    int     `json:"people_count"`
	FacesAnalyzed  int     `json:"faces_analyzed"`
	MaskedFaces    int     `json:"masked_faces"`
	MaskCompliance float64 `json:"mask_compliance"`
}

// SafetyMetrics summarizes hazard state. ResponseTime is a reported urgency
// indicator, not a measurement. The ratio and motion fields carry the raw
// pixel evidence behind the detection flags so dashboards can show why a
// hazard fired.
type SafetyMetrics struct {
	PeopleCount   int     `json:"people_count"`
	SystemStatus  string  `json:"system_status"`
	ResponseTime  string  `json:"response_time"`
	FireDetected  bool    `json:"fire_detected"`
	SmokeDetected bool    `json:"smoke_detected"`
	FireRatio     float64 `json:"fire_ratio"`
	SmokeRatio    float64 `json:"smoke_ratio"`

	Motion vision.MotionPatterns `json:"motion"`
}

// Analyze dispatches to the module's aggregator. Aggregators are pure:
// same detections, faces and frame always yield the same result. An
// unknown module yields an empty result carrying only the tag.
func Analyze(module Module, detections []detect.Detection, faces []detect.FaceDetection, frame *vision.Frame) Result {
	switch module {
	case ModuleClassroom:
		return AnalyzeClassroom(detections, faces)
	case ModuleExam:
		return AnalyzeExam(detections, faces)
	case ModuleOccupancy:
		return AnalyzeOccupancy(detections)
	case ModuleCompliance:
		return AnalyzeCompliance(detections, faces)
	case ModuleSafety:
		return AnalyzeSafety(detections, frame)
	default:
		return Result{Module: module}
	}
}

func countClass(detections []detect.Detection, class string) int {
	n := 0
	for _, d := range detections {
		if d.Class == class {
			n++
		}
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundToInt(v float64) int {
	return int(math.Round(v))
}
