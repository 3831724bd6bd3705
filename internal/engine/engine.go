package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/argus-vision/argus/internal/analyzer"
	"github.com/argus-vision/argus/internal/detect"
	"github.com/argus-vision/argus/internal/registry"
	"github.com/argus-vision/argus/logger"
)

// Detection call budget: the loop may tick faster than this, but backend
// calls are throttled and intermediate ticks reuse last-known-good
// detections.
const maxDetectionCallsPerSecond = 10

// Config controls one analysis loop.
type Config struct {
	// Module selects the aggregator. Empty means every module runs each tick.
	Module analyzer.Module
	// FrameRate is the loop tick rate in frames per second. Defaults to 15.
	FrameRate float64
}

func (c Config) tickInterval() time.Duration {
	fps := c.FrameRate
	if fps <= 0 {
		fps = 15
	}
	return time.Duration(float64(time.Second) / fps)
}

// TickResult is one loop iteration's complete output.
type TickResult struct {
	Timestamp  time.Time              `json:"timestamp"`
	Tick       int64                  `json:"tick"`
	Detections []detect.Detection     `json:"detections"`
	Faces      []detect.FaceDetection `json:"faces"`
	Results    []analyzer.Result      `json:"results"`
	Ready      bool                   `json:"ready"`
	Real       bool                   `json:"real"`
	Reused     bool                   `json:"reused"`
}

// Engine drives the frame loop: pull a frame, obtain detections under the
// call budget, aggregate, publish. Every failure inside a tick is absorbed;
// the loop itself never stops except through its context.
type Engine struct {
	cfg      Config
	source   FrameSource
	adapter  *detect.Adapter
	registry *registry.Registry
	logs     *logger.BufferedLogger

	mu             sync.Mutex
	lastDetections []detect.Detection
	lastFaces      []detect.FaceDetection
	lastDetectAt   time.Time
	ticks          int64
	recovered      int64
}

// New assembles an engine. The registry may be uninitialized; Run starts
// its load in the background and the adapter serves synthetically until it
// converges.
func New(cfg Config, source FrameSource, adapter *detect.Adapter, reg *registry.Registry, logs *logger.BufferedLogger) *Engine {
	if logs == nil {
		// No logger configured: run a disabled one so StartTick hands out
		// nil tick loggers and nothing accumulates with no flusher behind it.
		logs = logger.NewBufferedLogger(false, 0)
		logs.SetEnabled(false)
	}
	return &Engine{
		cfg:      cfg,
		source:   source,
		adapter:  adapter,
		registry: reg,
		logs:     logs,
	}
}

// Run executes the loop until ctx is done, publishing every tick's result.
// The publish callback must not block for long; slow consumers should
// buffer on their side.
func (e *Engine) Run(ctx context.Context, publish func(TickResult)) error {
	go func() {
		if err := e.registry.Initialize(ctx); err != nil {
			log.Printf("⚠️  Backend initialization ended degraded: %v", err)
		}
	}()

	interval := e.cfg.tickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("🎬 Analysis loop started (interval %s, module %q)", interval, e.cfg.Module)

	for {
		select {
		case <-ctx.Done():
			log.Printf("🎬 Analysis loop stopped after %d ticks (%d recovered)", e.Ticks(), e.Recovered())
			return ctx.Err()
		case <-ticker.C:
			if result, ok := e.tick(ctx); ok {
				publish(result)
			}
		}
	}
}

// tick runs one iteration. Panics and source errors degrade the tick, not
// the loop.
func (e *Engine) tick(ctx context.Context) (result TickResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.mu.Lock()
			e.recovered++
			e.mu.Unlock()
			log.Printf("⚠️  Tick recovered from panic: %v", r)
			ok = false
		}
	}()

	tickLog := e.logs.StartTick()
	defer tickLog.Commit()

	frame, err := e.source.Next(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return TickResult{}, false
		}
		log.Printf("⚠️  Frame source failed this tick: %v", err)
		return TickResult{}, false
	}

	e.mu.Lock()
	e.ticks++
	tickNum := e.ticks
	throttled := time.Since(e.lastDetectAt) < time.Second/maxDetectionCallsPerSecond
	if !throttled {
		e.lastDetectAt = time.Now()
	}
	lastDetections := e.lastDetections
	lastFaces := e.lastFaces
	e.mu.Unlock()

	var detections []detect.Detection
	var faces []detect.FaceDetection

	if throttled {
		detections, faces = lastDetections, lastFaces
	} else {
		start := time.Now()
		detections = e.adapter.DetectObjects(ctx, frame)
		faces = e.adapter.DetectFaces(ctx, frame)
		tickLog.Printf("🔍 Detection: %d objects, %d faces in %.2fms",
			len(detections), len(faces), time.Since(start).Seconds()*1000)

		e.mu.Lock()
		e.lastDetections = detections
		e.lastFaces = faces
		e.mu.Unlock()
	}

	results := make([]analyzer.Result, 0, len(analyzer.Modules))
	for _, m := range e.modules() {
		res := analyzer.Analyze(m, detections, faces, frame)
		if len(res.Alerts) > 0 {
			tickLog.Printf("🚨 %s: %v", m, res.Alerts)
		}
		results = append(results, res)
	}

	return TickResult{
		Timestamp:  frame.Timestamp,
		Tick:       tickNum,
		Detections: detections,
		Faces:      faces,
		Results:    results,
		Ready:      e.registry.IsModelReady(),
		Real:       e.registry.HasRealModels(),
		Reused:     throttled,
	}, true
}

func (e *Engine) modules() []analyzer.Module {
	if e.cfg.Module != "" {
		return []analyzer.Module{e.cfg.Module}
	}
	return analyzer.Modules
}

// Ticks reports how many ticks completed the frame stage.
func (e *Engine) Ticks() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

// Recovered reports how many ticks were absorbed after a panic.
func (e *Engine) Recovered() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recovered
}

// AnalyzeOnce runs a single frame through the full pipeline outside the
// loop. Used by the one-shot CLI path.
func (e *Engine) AnalyzeOnce(ctx context.Context) (TickResult, error) {
	frame, err := e.source.Next(ctx)
	if err != nil {
		return TickResult{}, err
	}

	detections := e.adapter.DetectObjects(ctx, frame)
	faces := e.adapter.DetectFaces(ctx, frame)

	results := make([]analyzer.Result, 0, len(analyzer.Modules))
	for _, m := range e.modules() {
		results = append(results, analyzer.Analyze(m, detections, faces, frame))
	}

	return TickResult{
		Timestamp:  frame.Timestamp,
		Tick:       1,
		Detections: detections,
		Faces:      faces,
		Results:    results,
		Ready:      e.registry.IsModelReady(),
		Real:       e.registry.HasRealModels(),
	}, nil
}
