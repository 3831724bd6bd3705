package detect

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/argus-vision/argus/internal/vision"
)

// Backend-level decode thresholds. The adapter applies its own confidence
// floor on top; keeping the backend cutoff slightly lower avoids clipping
// borderline candidates before NMS sees them.
const (
	decodeScoreThreshold = 0.25
	decodeIoUThreshold   = 0.45
)

// RuntimeConfig selects the ONNX Runtime shared library and execution
// provider. An empty LibraryPath leaves the loader's default resolution in
// place.
type RuntimeConfig struct {
	LibraryPath  string
	UseCUDA      bool
	CUDADeviceID int
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// initRuntime initializes the shared ONNX Runtime environment exactly once.
// SetSharedLibraryPath must happen before InitializeEnvironment.
func initRuntime(cfg RuntimeConfig) error {
	ortInitOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			ortInitErr = fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
			return
		}
		log.Printf("✅ ONNX Runtime environment initialized")
	})
	return ortInitErr
}

// newSessionOptions builds session options with the CUDA provider appended
// when requested and available. CUDA failures fall back to CPU, never error.
func newSessionOptions(cfg RuntimeConfig) (*ort.SessionOptions, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}

	if cfg.UseCUDA {
		cudaOptions, err := ort.NewCUDAProviderOptions()
		if err != nil {
			log.Printf("⚠️  CUDA not available, running on CPU: %v", err)
			return opts, nil
		}
		defer cudaOptions.Destroy()

		err = cudaOptions.Update(map[string]string{
			"device_id": fmt.Sprintf("%d", cfg.CUDADeviceID),
		})
		if err == nil {
			err = opts.AppendExecutionProviderCUDA(cudaOptions)
		}
		if err != nil {
			log.Printf("⚠️  Could not enable CUDA, running on CPU: %v", err)
		} else {
			log.Printf("✅ CUDA execution provider enabled (device %d)", cfg.CUDADeviceID)
		}
	}

	return opts, nil
}

// anchorCount is the YOLO prediction row count for a given input size:
// three anchors per cell over the 8/16/32-stride grids. 640x640 gives the
// familiar 25200.
func anchorCount(w, h int) int {
	return 3 * ((w/8)*(h/8) + (w/16)*(h/16) + (w/32)*(h/32))
}

// candidate is one decoded box before non-maximum suppression.
type candidate struct {
	classIndex int
	score      float64
	x1, y1     float64
	x2, y2     float64
	landmarks  [][2]float64
}

// ONNXObjectDetector runs a YOLO-family COCO object model through a
// persistent-tensor session. One session, one pair of tensors, reused for
// every frame; Detect serializes access.
type ONNXObjectDetector struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputWidth   int
	inputHeight  int
	anchors      int
}

// NewONNXObjectDetector loads the object model. Input layout is
// [1, 3, inputHeight, inputWidth] RGB, output [1, anchors, 85].
func NewONNXObjectDetector(modelPath string, inputWidth, inputHeight int, cfg RuntimeConfig) (*ONNXObjectDetector, error) {
	if err := initRuntime(cfg); err != nil {
		return nil, err
	}

	anchors := anchorCount(inputWidth, inputHeight)

	inputTensor, err := ort.NewTensor(
		[]int64{1, 3, int64(inputHeight), int64(inputWidth)},
		make([]float32, 3*inputWidth*inputHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewTensor(
		[]int64{1, int64(anchors), int64(5 + len(cocoLabels))},
		make([]float32, anchors*(5+len(cocoLabels))),
	)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	opts, err := newSessionOptions(cfg)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, err
	}
	defer opts.Destroy()

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create object session: %w", err)
	}

	log.Printf("✅ Object model loaded: %s (%dx%d, %d anchors)", modelPath, inputWidth, inputHeight, anchors)

	return &ONNXObjectDetector{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputWidth:   inputWidth,
		inputHeight:  inputHeight,
		anchors:      anchors,
	}, nil
}

// Detect runs the model on one frame and returns raw class predictions in
// frame pixel coordinates.
func (d *ONNXObjectDetector) Detect(ctx context.Context, frame *vision.Frame) ([]RawPrediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame == nil || frame.Width == 0 || frame.Height == 0 {
		return nil, fmt.Errorf("empty frame")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	frameToCHW(frame, d.inputWidth, d.inputHeight, d.inputTensor.GetData())

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("object inference failed: %w", err)
	}

	return d.decode(frame, d.outputTensor.GetData()), nil
}

func (d *ONNXObjectDetector) decode(frame *vision.Frame, out []float32) []RawPrediction {
	stride := 5 + len(cocoLabels)
	scaleX := float64(frame.Width) / float64(d.inputWidth)
	scaleY := float64(frame.Height) / float64(d.inputHeight)

	var cands []candidate
	for i := 0; i < d.anchors; i++ {
		row := out[i*stride : (i+1)*stride]

		obj := float64(row[4])
		if obj < decodeScoreThreshold {
			continue
		}

		bestClass, bestScore := 0, float64(row[5])
		for c := 1; c < len(cocoLabels); c++ {
			if s := float64(row[5+c]); s > bestScore {
				bestClass, bestScore = c, s
			}
		}

		score := obj * bestScore
		if score < decodeScoreThreshold {
			continue
		}

		cx := float64(row[0]) * scaleX
		cy := float64(row[1]) * scaleY
		bw := float64(row[2]) * scaleX
		bh := float64(row[3]) * scaleY

		cands = append(cands, candidate{
			classIndex: bestClass,
			score:      score,
			x1:         cx - bw/2,
			y1:         cy - bh/2,
			x2:         cx + bw/2,
			y2:         cy + bh/2,
		})
	}

	kept := suppress(cands, decodeIoUThreshold)

	preds := make([]RawPrediction, 0, len(kept))
	for _, c := range kept {
		x1, y1, x2, y2 := clipBox(c, frame)
		preds = append(preds, RawPrediction{
			Class: cocoLabels[c.classIndex],
			Score: c.score,
			Box:   [4]float64{x1, y1, x2 - x1, y2 - y1},
		})
	}
	return preds
}

// Close destroys the session and its tensors.
func (d *ONNXObjectDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
	if d.inputTensor != nil {
		d.inputTensor.Destroy()
		d.inputTensor = nil
	}
	if d.outputTensor != nil {
		d.outputTensor.Destroy()
		d.outputTensor = nil
	}
	return nil
}

// ONNXFaceDetector runs a YOLO-face model: output rows are
// [cx, cy, w, h, obj, 5x(lx, ly), face]. Same session layout as the object
// detector.
type ONNXFaceDetector struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputWidth   int
	inputHeight  int
	anchors      int
}

const faceRowStride = 16

// NewONNXFaceDetector loads the face model.
func NewONNXFaceDetector(modelPath string, inputWidth, inputHeight int, cfg RuntimeConfig) (*ONNXFaceDetector, error) {
	if err := initRuntime(cfg); err != nil {
		return nil, err
	}

	anchors := anchorCount(inputWidth, inputHeight)

	inputTensor, err := ort.NewTensor(
		[]int64{1, 3, int64(inputHeight), int64(inputWidth)},
		make([]float32, 3*inputWidth*inputHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewTensor(
		[]int64{1, int64(anchors), faceRowStride},
		make([]float32, anchors*faceRowStride),
	)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	opts, err := newSessionOptions(cfg)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, err
	}
	defer opts.Destroy()

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input"},
		[]string{"output"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		opts,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create face session: %w", err)
	}

	log.Printf("✅ Face model loaded: %s (%dx%d, %d anchors)", modelPath, inputWidth, inputHeight, anchors)

	return &ONNXFaceDetector{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputWidth:   inputWidth,
		inputHeight:  inputHeight,
		anchors:      anchors,
	}, nil
}

// Detect runs the face model on one frame.
func (d *ONNXFaceDetector) Detect(ctx context.Context, frame *vision.Frame) ([]RawFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame == nil || frame.Width == 0 || frame.Height == 0 {
		return nil, fmt.Errorf("empty frame")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	frameToCHW(frame, d.inputWidth, d.inputHeight, d.inputTensor.GetData())

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("face inference failed: %w", err)
	}

	return d.decode(frame, d.outputTensor.GetData()), nil
}

func (d *ONNXFaceDetector) decode(frame *vision.Frame, out []float32) []RawFace {
	scaleX := float64(frame.Width) / float64(d.inputWidth)
	scaleY := float64(frame.Height) / float64(d.inputHeight)

	var cands []candidate
	for i := 0; i < d.anchors; i++ {
		row := out[i*faceRowStride : (i+1)*faceRowStride]

		obj := float64(row[4])
		if obj < decodeScoreThreshold {
			continue
		}
		score := obj * float64(row[15])
		if score < decodeScoreThreshold {
			continue
		}

		cx := float64(row[0]) * scaleX
		cy := float64(row[1]) * scaleY
		bw := float64(row[2]) * scaleX
		bh := float64(row[3]) * scaleY

		landmarks := make([][2]float64, 0, 5)
		for l := 0; l < 5; l++ {
			landmarks = append(landmarks, [2]float64{
				float64(row[5+l*2]) * scaleX,
				float64(row[6+l*2]) * scaleY,
			})
		}

		cands = append(cands, candidate{
			score:     score,
			x1:        cx - bw/2,
			y1:        cy - bh/2,
			x2:        cx + bw/2,
			y2:        cy + bh/2,
			landmarks: landmarks,
		})
	}

	kept := suppress(cands, decodeIoUThreshold)

	faces := make([]RawFace, 0, len(kept))
	for _, c := range kept {
		x1, y1, x2, y2 := clipBox(c, frame)
		faces = append(faces, RawFace{
			X1:        x1,
			Y1:        y1,
			X2:        x2,
			Y2:        y2,
			Score:     c.score,
			Landmarks: c.landmarks,
		})
	}
	return faces
}

// Close destroys the session and its tensors.
func (d *ONNXFaceDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
	if d.inputTensor != nil {
		d.inputTensor.Destroy()
		d.inputTensor = nil
	}
	if d.outputTensor != nil {
		d.outputTensor.Destroy()
		d.outputTensor = nil
	}
	return nil
}

// frameToCHW resizes the frame (nearest neighbor) into a [3, h, w]
// channel-planar float32 buffer normalized to [0, 1]. dst must hold 3*w*h
// values.
func frameToCHW(frame *vision.Frame, w, h int, dst []float32) {
	plane := w * h
	for y := 0; y < h; y++ {
		srcY := y * frame.Height / h
		for x := 0; x < w; x++ {
			srcX := x * frame.Width / w
			r, g, b := frame.RGBAt(srcX, srcY)

			i := y*w + x
			dst[i] = float32(r) / 255.0
			dst[plane+i] = float32(g) / 255.0
			dst[2*plane+i] = float32(b) / 255.0
		}
	}
}

// suppress is greedy per-class non-maximum suppression.
func suppress(cands []candidate, iouThreshold float64) []candidate {
	sort.Slice(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	var kept []candidate
	for _, c := range cands {
		overlaps := false
		for _, k := range kept {
			if k.classIndex == c.classIndex && iou(c, k) > iouThreshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}

func iou(a, b candidate) float64 {
	ix1 := math.Max(a.x1, b.x1)
	iy1 := math.Max(a.y1, b.y1)
	ix2 := math.Min(a.x2, b.x2)
	iy2 := math.Min(a.y2, b.y2)

	iw := math.Max(0, ix2-ix1)
	ih := math.Max(0, iy2-iy1)
	inter := iw * ih
	if inter == 0 {
		return 0
	}

	areaA := (a.x2 - a.x1) * (a.y2 - a.y1)
	areaB := (b.x2 - b.x1) * (b.y2 - b.y1)
	return inter / (areaA + areaB - inter)
}

func clipBox(c candidate, frame *vision.Frame) (x1, y1, x2, y2 float64) {
	x1 = math.Max(0, c.x1)
	y1 = math.Max(0, c.y1)
	x2 = math.Min(float64(frame.Width), c.x2)
	y2 = math.Min(float64(frame.Height), c.y2)
	return x1, y1, x2, y2
}
