package detect

import (
	"image"
	"math/rand"
	"sync"

	"github.com/argus-vision/argus/internal/vision"
)

// Mock appearance probabilities. They keep downstream aggregation exercised
// in demo/fallback mode and match the behavior the dashboards were tuned
// against.
const (
	mockPersonProbability    = 0.7
	mockSecondaryProbability = 0.3
	mockFaceProbability      = 0.6
)

var mockSecondaryClasses = []string{ClassBook, ClassLaptop, ClassCellPhone, ClassChair}

// MockGenerator produces synthetic detections when the real backend is
// unavailable. All randomness in the system lives here; aggregators stay
// deterministic.
type MockGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockGenerator creates a generator with its own seeded source so demo
// runs are reproducible under a fixed seed.
func NewMockGenerator(seed int64) *MockGenerator {
	return &MockGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Objects returns this tick's synthetic object detections: a person box
// with 85–95% confidence most of the time, occasionally one secondary
// object.
func (m *MockGenerator) Objects(frame *vision.Frame) []Detection {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, h := mockFrameDims(frame)
	var detections []Detection

	if m.rng.Float64() < mockPersonProbability {
		detections = append(detections, Detection{
			Class:      ClassPerson,
			Confidence: 0.85 + m.rng.Float64()*0.10,
			X:          w / 4,
			Y:          h / 6,
			Width:      w / 3,
			Height:     (h * 2) / 3,
		})
	}

	if m.rng.Float64() < mockSecondaryProbability {
		class := mockSecondaryClasses[m.rng.Intn(len(mockSecondaryClasses))]
		detections = append(detections, Detection{
			Class:      class,
			Confidence: 0.55 + m.rng.Float64()*0.30,
			X:          (w * 3) / 5,
			Y:          h / 2,
			Width:      w / 6,
			Height:     h / 5,
		})
	}

	return detections
}

// Faces returns this tick's synthetic face detections: at most one face
// with a fixed box, fixed landmark layout and a random mask reading.
func (m *MockGenerator) Faces(frame *vision.Frame) []FaceDetection {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rng.Float64() >= mockFaceProbability {
		return nil
	}

	w, h := mockFrameDims(frame)
	box := image.Rect(w*2/5, h/5, w*3/5, h*2/5)

	face := FaceDetection{
		TopLeft:     box.Min,
		BottomRight: box.Max,
		Landmarks: []Landmark{
			{X: box.Min.X + box.Dx()/3, Y: box.Min.Y + box.Dy()/3},     // left eye
			{X: box.Min.X + box.Dx()*2/3, Y: box.Min.Y + box.Dy()/3},   // right eye
			{X: box.Min.X + box.Dx()/2, Y: box.Min.Y + box.Dy()/2},     // nose
			{X: box.Min.X + box.Dx()/3, Y: box.Min.Y + box.Dy()*3/4},   // mouth left
			{X: box.Min.X + box.Dx()*2/3, Y: box.Min.Y + box.Dy()*3/4}, // mouth right
		},
		MaskKnown:      true,
		HasMask:        m.rng.Float64() < 0.5,
		MaskConfidence: 0.6 + m.rng.Float64()*0.3,
	}

	return []FaceDetection{face}
}

func mockFrameDims(frame *vision.Frame) (int, int) {
	if frame == nil || frame.Width == 0 || frame.Height == 0 {
		return 640, 480
	}
	return frame.Width, frame.Height
}
