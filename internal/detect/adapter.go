package detect

import (
	"context"
	"image"
	"log"
	"math"
	"sync/atomic"

	"github.com/argus-vision/argus/internal/vision"
)

// MinConfidence is the adapter's object detection confidence floor.
const MinConfidence = 0.3

// Adapter is the trust and failure boundary in front of the detection
// backend. It validates raw predictions into the strict Detection and
// FaceDetection shapes, attaches mask readings per face, and absorbs every
// backend failure into the synthetic mock path; it never raises.
type Adapter struct {
	provider Provider
	mock     *MockGenerator

	objectCalls   atomic.Int64
	faceCalls     atomic.Int64
	fallbackCalls atomic.Int64
}

// NewAdapter creates an adapter backed by the given provider. The mock
// generator must not be nil; it carries the fallback behavior.
func NewAdapter(provider Provider, mock *MockGenerator) *Adapter {
	return &Adapter{provider: provider, mock: mock}
}

// DetectObjects returns this frame's validated object detections, or
// synthetic ones when the capability is unavailable or the call fails.
func (a *Adapter) DetectObjects(ctx context.Context, frame *vision.Frame) []Detection {
	a.objectCalls.Add(1)

	detector := a.provider.ObjectDetector()
	if detector == nil {
		a.fallbackCalls.Add(1)
		return a.mock.Objects(frame)
	}

	raw, err := detector.Detect(ctx, frame)
	if err != nil {
		a.fallbackCalls.Add(1)
		log.Printf("⚠️  Object detection call failed, using synthetic detections: %v", err)
		return a.mock.Objects(frame)
	}

	detections := make([]Detection, 0, len(raw))
	for _, p := range raw {
		d, ok := parsePrediction(p)
		if !ok {
			continue
		}
		detections = append(detections, d)
	}
	return detections
}

// DetectFaces returns this frame's validated face detections with mask
// readings attached, or synthetic ones on unavailability/failure.
func (a *Adapter) DetectFaces(ctx context.Context, frame *vision.Frame) []FaceDetection {
	a.faceCalls.Add(1)

	detector := a.provider.FaceDetector()
	if detector == nil {
		a.fallbackCalls.Add(1)
		return a.mock.Faces(frame)
	}

	raw, err := detector.Detect(ctx, frame)
	if err != nil {
		a.fallbackCalls.Add(1)
		log.Printf("⚠️  Face detection call failed, using synthetic detections: %v", err)
		return a.mock.Faces(frame)
	}

	faces := make([]FaceDetection, 0, len(raw))
	for _, rf := range raw {
		face, ok := parseFace(rf)
		if !ok {
			continue
		}

		mask := vision.DetectMask(frame, face.Box())
		if mask.Confidence > 0 {
			face.MaskKnown = true
			face.HasMask = mask.HasMask
			face.MaskConfidence = mask.Confidence
		}

		faces = append(faces, face)
	}
	return faces
}

// FallbackCalls reports how many detection calls were served synthetically.
func (a *Adapter) FallbackCalls() int64 {
	return a.fallbackCalls.Load()
}

// parsePrediction validates one raw prediction. Rejections: empty class,
// confidence at or below the floor, non-positive box dimensions, negative
// origin.
func parsePrediction(p RawPrediction) (Detection, bool) {
	if p.Class == "" || p.Score <= MinConfidence {
		return Detection{}, false
	}

	x := int(math.Round(p.Box[0]))
	y := int(math.Round(p.Box[1]))
	w := int(math.Round(p.Box[2]))
	h := int(math.Round(p.Box[3]))

	if w <= 0 || h <= 0 || x < 0 || y < 0 {
		return Detection{}, false
	}

	return Detection{
		Class:      p.Class,
		Confidence: p.Score,
		X:          x,
		Y:          y,
		Width:      w,
		Height:     h,
	}, true
}

// parseFace validates one raw face. Degenerate boxes are rejected; corner
// order is normalised so downstream code can rely on TopLeft ≤ BottomRight.
func parseFace(rf RawFace) (FaceDetection, bool) {
	x1, y1, x2, y2 := rf.X1, rf.Y1, rf.X2, rf.Y2
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	if x2-x1 <= 0 || y2-y1 <= 0 || x1 < 0 || y1 < 0 {
		return FaceDetection{}, false
	}

	face := FaceDetection{
		TopLeft:     imagePoint(x1, y1),
		BottomRight: imagePoint(x2, y2),
	}

	for _, lm := range rf.Landmarks {
		face.Landmarks = append(face.Landmarks, Landmark{
			X: int(math.Round(lm[0])),
			Y: int(math.Round(lm[1])),
		})
	}

	return face, true
}

func imagePoint(x, y float64) image.Point {
	return image.Point{X: int(math.Round(x)), Y: int(math.Round(y))}
}
