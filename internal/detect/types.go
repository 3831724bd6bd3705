package detect

import (
	"context"
	"image"

	"github.com/argus-vision/argus/internal/vision"
)

// Class labels the aggregators key on. These follow the COCO vocabulary
// where it has the class; "fire extinguisher" is outside COCO and only ever
// appears from backends trained with an extended label set.
const (
	ClassPerson           = "person"
	ClassBook             = "book"
	ClassLaptop           = "laptop"
	ClassCellPhone        = "cell phone"
	ClassChair            = "chair"
	ClassBackpack         = "backpack"
	ClassCouch            = "couch"
	ClassBench            = "bench"
	ClassFireExtinguisher = "fire extinguisher"
)

// Detection is a single validated object hypothesis in frame pixel
// coordinates. Width and Height are always positive, X and Y non-negative;
// the adapter discards anything violating that before it surfaces.
type Detection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// Box returns the detection bounds as a rectangle.
func (d Detection) Box() image.Rectangle {
	return image.Rect(d.X, d.Y, d.X+d.Width, d.Y+d.Height)
}

// Landmark is a face keypoint in frame pixel coordinates. Score is the
// per-landmark probability when the backend provides one, 0 otherwise.
type Landmark struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Score float64 `json:"score,omitempty"`
}

// FaceDetection is a validated face hypothesis. The mask fields are
// populated by the mask detector (or the mock path), never by the backend:
// MaskKnown distinguishes "no reading" from "read as uncovered".
type FaceDetection struct {
	TopLeft     image.Point `json:"top_left"`
	BottomRight image.Point `json:"bottom_right"`
	Landmarks   []Landmark  `json:"landmarks,omitempty"`

	MaskKnown      bool    `json:"mask_known"`
	HasMask        bool    `json:"has_mask"`
	MaskConfidence float64 `json:"mask_confidence"`
}

// Box returns the face bounds as a rectangle.
func (f FaceDetection) Box() image.Rectangle {
	return image.Rectangle{Min: f.TopLeft, Max: f.BottomRight}
}

// RawPrediction is an unvalidated object prediction straight from a
// backend. The adapter is the trust boundary: raw predictions are parsed
// and filtered there, never handed to aggregators.
type RawPrediction struct {
	Class string
	Score float64
	// Box is x, y, width, height in frame pixel coordinates.
	Box [4]float64
}

// RawFace is an unvalidated face prediction straight from a backend.
type RawFace struct {
	X1, Y1, X2, Y2 float64
	Score          float64
	Landmarks      [][2]float64
}

// ObjectDetector is the object-detection capability contract. Timeouts are
// enforced by callers, not assumed of implementations.
type ObjectDetector interface {
	Detect(ctx context.Context, frame *vision.Frame) ([]RawPrediction, error)
	Close() error
}

// FaceDetector is the face-detection capability contract.
type FaceDetector interface {
	Detect(ctx context.Context, frame *vision.Frame) ([]RawFace, error)
	Close() error
}

// Provider hands out the currently loaded detectors. A nil detector means
// that capability is unavailable and the synthetic path takes over.
type Provider interface {
	ObjectDetector() ObjectDetector
	FaceDetector() FaceDetector
}
