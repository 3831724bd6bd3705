package detect

import (
	"context"
	"fmt"
)

const defaultInputSize = 640

// ONNXLoader builds the real detectors from configured model paths. An
// empty path means that capability is not configured and loading it fails;
// the caller decides what an unavailable capability means.
type ONNXLoader struct {
	Runtime         RuntimeConfig
	ObjectModelPath string
	FaceModelPath   string
	InputWidth      int
	InputHeight     int
}

// Warmup initializes the shared runtime so model loads fail fast when the
// shared library is missing.
func (l *ONNXLoader) Warmup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return initRuntime(l.Runtime)
}

// LoadObjects loads the object detection model.
func (l *ONNXLoader) LoadObjects(ctx context.Context) (ObjectDetector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.ObjectModelPath == "" {
		return nil, fmt.Errorf("no object model configured")
	}
	w, h := l.inputDims()
	return NewONNXObjectDetector(l.ObjectModelPath, w, h, l.Runtime)
}

// LoadFaces loads the face detection model.
func (l *ONNXLoader) LoadFaces(ctx context.Context) (FaceDetector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.FaceModelPath == "" {
		return nil, fmt.Errorf("no face model configured")
	}
	w, h := l.inputDims()
	return NewONNXFaceDetector(l.FaceModelPath, w, h, l.Runtime)
}

func (l *ONNXLoader) inputDims() (int, int) {
	w, h := l.InputWidth, l.InputHeight
	if w <= 0 {
		w = defaultInputSize
	}
	if h <= 0 {
		h = defaultInputSize
	}
	return w, h
}
