package logger

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// BufferedLogger accumulates log entries in memory and flushes them
// asynchronously, so per-tick logging never adds latency inside the frame
// loop. At 10+ ticks per second, sampling keeps the output readable.
type BufferedLogger struct {
	buffer     bytes.Buffer
	mu         sync.Mutex
	autoFlush  bool
	flushChan  chan struct{}
	stopChan   chan struct{}
	enabled    atomic.Bool
	tickNum    atomic.Uint64
	sampleRate int // 0 = log every tick, N = log 1 in N
}

// NewBufferedLogger creates a buffered logger. With autoFlush the
// background flusher drains the buffer every 100ms.
func NewBufferedLogger(autoFlush bool, sampleRate int) *BufferedLogger {
	bl := &BufferedLogger{
		autoFlush:  autoFlush,
		flushChan:  make(chan struct{}, 100),
		stopChan:   make(chan struct{}),
		sampleRate: sampleRate,
	}
	bl.enabled.Store(true)

	if autoFlush {
		go bl.flusher()
	}

	return bl
}

// TickLogger collects one analysis tick's log lines. A nil TickLogger is
// valid and discards everything, which is how sampling skips ticks.
type TickLogger struct {
	parent  *BufferedLogger
	buffer  bytes.Buffer
	tickNum uint64
}

// StartTick opens a logging context for one loop iteration. Returns nil
// when the tick is sampled out or logging is disabled.
func (bl *BufferedLogger) StartTick() *TickLogger {
	if !bl.enabled.Load() {
		return nil
	}

	tickNum := bl.tickNum.Add(1)
	if bl.sampleRate != 0 && tickNum%uint64(bl.sampleRate) != 0 {
		return nil
	}

	return &TickLogger{parent: bl, tickNum: tickNum}
}

// Printf appends a formatted line to the tick buffer.
func (tl *TickLogger) Printf(format string, args ...interface{}) {
	if tl == nil {
		return
	}

	timestamp := time.Now().Format("2006/01/02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(&tl.buffer, "[%s] [Tick#%d] %s\n", timestamp, tl.tickNum, msg)
}

// Commit hands the tick's lines to the parent buffer. Call it after the
// tick's result has been published.
func (tl *TickLogger) Commit() {
	if tl == nil || tl.buffer.Len() == 0 {
		return
	}

	tl.parent.mu.Lock()
	tl.parent.buffer.Write(tl.buffer.Bytes())
	tl.parent.mu.Unlock()

	if tl.parent.autoFlush {
		select {
		case tl.parent.flushChan <- struct{}{}:
		default:
			// Channel full, the periodic flush covers it.
		}
	}
}

// Flush writes all buffered lines to the process log.
func (bl *BufferedLogger) Flush() {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	if bl.buffer.Len() > 0 {
		log.Print(bl.buffer.String())
		bl.buffer.Reset()
	}
}

func (bl *BufferedLogger) flusher() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-bl.flushChan:
			bl.Flush()
		case <-ticker.C:
			bl.Flush()
		case <-bl.stopChan:
			bl.Flush()
			return
		}
	}
}

// Stop halts the background flusher after a final flush.
func (bl *BufferedLogger) Stop() {
	close(bl.stopChan)
}

// SetEnabled toggles logging.
func (bl *BufferedLogger) SetEnabled(enabled bool) {
	bl.enabled.Store(enabled)
}

// IsEnabled reports whether logging is on.
func (bl *BufferedLogger) IsEnabled() bool {
	return bl.enabled.Load()
}

// SetSampleRate changes the sampling rate. 0 logs every tick, N logs 1 in N.
func (bl *BufferedLogger) SetSampleRate(rate int) {
	bl.sampleRate = rate
}

// GetStats returns current logging statistics.
func (bl *BufferedLogger) GetStats() map[string]interface{} {
	bl.mu.Lock()
	bufferSize := bl.buffer.Len()
	bl.mu.Unlock()

	return map[string]interface{}{
		"total_ticks": bl.tickNum.Load(),
		"buffer_size": bufferSize,
		"sample_rate": bl.sampleRate,
		"enabled":     bl.enabled.Load(),
	}
}
