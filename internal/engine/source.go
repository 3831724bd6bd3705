package engine

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/argus-vision/argus/internal/vision"
)

// FrameSource produces the frames the analysis loop consumes. Next blocks
// at most until ctx is done; a source that cycles never runs out.
type FrameSource interface {
	Next(ctx context.Context) (*vision.Frame, error)
	Close() error
}

// DirectorySource replays still images from a directory in sorted order,
// cycling forever. It stands in for a live camera during bring-up and in
// demo installs.
type DirectorySource struct {
	paths []string
	index int
}

// NewDirectorySource lists dir for files matching pattern (e.g. "*.png").
// An empty match set is an error: a source with nothing to replay would
// stall the loop silently.
func NewDirectorySource(dir, pattern string) (*DirectorySource, error) {
	if pattern == "" {
		pattern = "*.png"
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no frames in %s matching %s", dir, pattern)
	}
	sort.Strings(matches)
	return &DirectorySource{paths: matches}, nil
}

// Next decodes the next image in the cycle.
func (s *DirectorySource) Next(ctx context.Context) (*vision.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.paths[s.index]
	s.index = (s.index + 1) % len(s.paths)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading frame %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding frame %s: %w", path, err)
	}

	frame := vision.FrameFromImage(img)
	frame.Timestamp = time.Now()
	return frame, nil
}

// Len reports how many files the source cycles over.
func (s *DirectorySource) Len() int { return len(s.paths) }

// Close is a no-op; files are opened per frame.
func (s *DirectorySource) Close() error { return nil }

// StaticSource produces blank frames of a fixed size. It keeps the loop
// and the synthetic detection path running when no input is configured.
type StaticSource struct {
	width  int
	height int
}

// NewStaticSource creates a blank-frame source. Non-positive dimensions
// fall back to 640x480.
func NewStaticSource(width, height int) *StaticSource {
	if width <= 0 || height <= 0 {
		width, height = 640, 480
	}
	return &StaticSource{width: width, height: height}
}

// Next returns a fresh zeroed frame.
func (s *StaticSource) Next(ctx context.Context) (*vision.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vision.NewFrame(s.width, s.height), nil
}

// Close is a no-op.
func (s *StaticSource) Close() error { return nil }
