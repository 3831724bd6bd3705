package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/argus-vision/argus/internal/detect"
)

var (
	// ErrBackendTimeout marks a model load that exceeded its time budget.
	ErrBackendTimeout = errors.New("backend load timed out")
	// ErrBackendUnavailable marks exhausted load attempts. The registry is
	// still Ready after it: the synthetic path serves all detections.
	ErrBackendUnavailable = errors.New("detection backend unavailable")
)

// State is the backend lifecycle phase.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Loader builds the detector backends. Implementations own the heavy work
// (runtime init, model file loads); the registry owns retries and timeouts.
type Loader interface {
	Warmup(ctx context.Context) error
	LoadObjects(ctx context.Context) (detect.ObjectDetector, error)
	LoadFaces(ctx context.Context) (detect.FaceDetector, error)
}

// Config controls the load lifecycle.
type Config struct {
	MaxAttempts  int
	RetryBackoff time.Duration
	LoadTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 2 * time.Second
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = 30 * time.Second
	}
	return c
}

// Stats is a point-in-time snapshot of the registry.
type Stats struct {
	State         string    `json:"state"`
	Attempts      int       `json:"attempts"`
	Real          bool      `json:"real"`
	ObjectsLoaded bool      `json:"objects_loaded"`
	FacesLoaded   bool      `json:"faces_loaded"`
	ObjectLoadMs  float64   `json:"object_load_ms"`
	FaceLoadMs    float64   `json:"face_load_ms"`
	ReadyAt       time.Time `json:"ready_at"`
}

// Registry owns the detection backends and their load lifecycle. It always
// converges to Ready: when every load attempt fails it goes Ready with no
// real models and the adapter's synthetic path takes over permanently.
// Registry implements detect.Provider.
type Registry struct {
	loader Loader
	cfg    Config

	mu       sync.RWMutex
	state    State
	attempts int
	real     bool
	objects  detect.ObjectDetector
	faces    detect.FaceDetector

	objectLoadMs float64
	faceLoadMs   float64
	readyAt      time.Time
}

// New creates a registry in the uninitialized state.
func New(loader Loader, cfg Config) *Registry {
	return &Registry{loader: loader, cfg: cfg.withDefaults()}
}

// Initialize drives the backend load to completion: up to MaxAttempts
// rounds with a fixed backoff between them, each model load under its own
// timeout. An
// attempt succeeds when at least one model loads; the missing capability
// stays nil and is served synthetically. Initialize is idempotent: a
// second call while initializing or ready is a no-op.
func (r *Registry) Initialize(ctx context.Context) error {
	r.mu.Lock()
	if r.state != StateUninitialized {
		r.mu.Unlock()
		return nil
	}
	r.state = StateInitializing
	r.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		r.mu.Lock()
		r.attempts = attempt
		r.mu.Unlock()

		log.Printf("📦 Loading detection backends (attempt %d/%d)...", attempt, r.cfg.MaxAttempts)

		objects, faces, err := r.loadOnce(ctx)
		if objects != nil || faces != nil {
			r.mu.Lock()
			r.objects = objects
			r.faces = faces
			r.real = true
			r.state = StateReady
			r.readyAt = time.Now()
			r.mu.Unlock()

			log.Printf("✅ Detection backends ready (objects=%v, faces=%v)", objects != nil, faces != nil)
			return nil
		}

		lastErr = err
		log.Printf("⚠️  Backend load attempt %d/%d failed: %v", attempt, r.cfg.MaxAttempts, err)

		if attempt < r.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
			case <-time.After(r.cfg.RetryBackoff):
			}
			if ctx.Err() != nil {
				break
			}
		}
	}

	r.mu.Lock()
	r.real = false
	r.state = StateReady
	r.readyAt = time.Now()
	r.mu.Unlock()

	log.Printf("⚠️  All backend load attempts exhausted, serving synthetic detections")
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, lastErr)
}

// loadOnce runs one full load round. The two models load concurrently and
// independently, each under its own timeout; the round errors only when
// neither model came up.
func (r *Registry) loadOnce(ctx context.Context) (detect.ObjectDetector, detect.FaceDetector, error) {
	if _, err := runWithTimeout(ctx, r.cfg.LoadTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.loader.Warmup(ctx)
	}); err != nil {
		return nil, nil, fmt.Errorf("warmup: %w", err)
	}

	var (
		wg        sync.WaitGroup
		objects   detect.ObjectDetector
		faces     detect.FaceDetector
		objectErr error
		faceErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		objects, objectErr = runWithTimeout(ctx, r.cfg.LoadTimeout, r.loader.LoadObjects)
		if objectErr != nil {
			objects = nil
			log.Printf("⚠️  Object model load failed: %v", objectErr)
			return
		}
		r.mu.Lock()
		r.objectLoadMs = time.Since(start).Seconds() * 1000
		r.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		faces, faceErr = runWithTimeout(ctx, r.cfg.LoadTimeout, r.loader.LoadFaces)
		if faceErr != nil {
			faces = nil
			log.Printf("⚠️  Face model load failed: %v", faceErr)
			return
		}
		r.mu.Lock()
		r.faceLoadMs = time.Since(start).Seconds() * 1000
		r.mu.Unlock()
	}()
	wg.Wait()

	if objects == nil && faces == nil {
		return nil, nil, fmt.Errorf("objects: %v; faces: %v", objectErr, faceErr)
	}
	return objects, faces, nil
}

// ObjectDetector returns the loaded object backend, nil when unavailable.
func (r *Registry) ObjectDetector() detect.ObjectDetector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.objects
}

// FaceDetector returns the loaded face backend, nil when unavailable.
func (r *Registry) FaceDetector() detect.FaceDetector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.faces
}

// State returns the current lifecycle phase.
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// IsModelReady reports whether initialization has converged, real or not.
func (r *Registry) IsModelReady() bool {
	return r.State() == StateReady
}

// HasRealModels reports whether at least one real backend is loaded.
func (r *Registry) HasRealModels() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.real
}

// Stats returns a snapshot for the health surface.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		State:         r.state.String(),
		Attempts:      r.attempts,
		Real:          r.real,
		ObjectsLoaded: r.objects != nil,
		FacesLoaded:   r.faces != nil,
		ObjectLoadMs:  r.objectLoadMs,
		FaceLoadMs:    r.faceLoadMs,
		ReadyAt:       r.readyAt,
	}
}

// Close releases the loaded backends.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	if r.objects != nil {
		if err := r.objects.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.objects = nil
	}
	if r.faces != nil {
		if err := r.faces.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.faces = nil
	}
	r.real = false
	return firstErr
}

// runWithTimeout runs fn under its own deadline. The done channel is
// buffered so a late fn never leaks its goroutine on the send.
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)

	go func() {
		value, err := fn(ctx)
		done <- result{value, err}
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w after %s", ErrBackendTimeout, timeout)
	}
}
