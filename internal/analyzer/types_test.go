package analyzer

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-vision/argus/internal/detect"
	"github.com/argus-vision/argus/internal/vision"
)

func imagePt(x, y int) image.Point {
	return image.Point{X: x, Y: y}
}

func TestAnalyzeDispatch(t *testing.T) {
	dets := persons(3)
	faces := someFaces(2)
	frame := vision.NewFrame(64, 64)

	tests := []struct {
		module    Module
		populated func(Result) bool
	}{
		{ModuleClassroom, func(r Result) bool { return r.Classroom != nil }},
		{ModuleExam, func(r Result) bool { return r.Exam != nil }},
		{ModuleOccupancy, func(r Result) bool { return r.Occupancy != nil }},
		{ModuleCompliance, func(r Result) bool { return r.Compliance != nil }},
		{ModuleSafety, func(r Result) bool { return r.Safety != nil }},
	}

	for _, tt := range tests {
		t.Run(string(tt.module), func(t *testing.T) {
			res := Analyze(tt.module, dets, faces, frame)
			assert.Equal(t, tt.module, res.Module)
			assert.True(t, tt.populated(res), "metrics payload missing: %+v", res)
		})
	}
}

func TestAnalyzeUnknownModule(t *testing.T) {
	res := Analyze(Module("parking"), persons(1), nil, nil)
	assert.Equal(t, Module("parking"), res.Module)
	assert.Nil(t, res.Classroom)
	assert.Nil(t, res.Safety)
	assert.Empty(t, res.Alerts)
}

func TestModuleValid(t *testing.T) {
	for _, m := range Modules {
		assert.True(t, m.Valid(), "module %q", m)
	}
	assert.False(t, Module("parking").Valid())
	assert.False(t, Module("").Valid())
}

func TestResultMarshalsWithoutPlaceholder(t *testing.T) {
	// The exam placeholder is NaN; it must never leak into the JSON surface.
	res := AnalyzeExam(persons(2), someFaces(2))
	require.NotNil(t, res.Exam)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "uniform")
	assert.Contains(t, string(data), "\"candidate_count\":2")
}

func TestResultOmitsUnrelatedMetrics(t *testing.T) {
	res := AnalyzeOccupancy([]detect.Detection{{Class: detect.ClassChair, Confidence: 0.8, Width: 4, Height: 4}})

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "classroom")
	assert.NotContains(t, string(data), "safety")
	assert.Contains(t, string(data), "\"total_seats\":1")
}
