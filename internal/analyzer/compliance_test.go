package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-vision/argus/internal/detect"
)

func maskedFace(hasMask bool, confidence float64) detect.FaceDetection {
	return detect.FaceDetection{
		TopLeft:        imagePt(10, 10),
		BottomRight:    imagePt(40, 50),
		MaskKnown:      true,
		HasMask:        hasMask,
		MaskConfidence: confidence,
	}
}

func TestAnalyzeComplianceMixedReadings(t *testing.T) {
	faces := []detect.FaceDetection{
		maskedFace(true, 0.9),
		maskedFace(false, 0.8),
		// Below the reading cutoff, then a face with no reading at all.
		maskedFace(true, 0.4),
		{TopLeft: imagePt(0, 0), BottomRight: imagePt(10, 10)},
	}

	res := AnalyzeCompliance(persons(5), faces)

	require.NotNil(t, res.Compliance)
	m := res.Compliance
	assert.Equal(t, 5, m.PeopleCount)
	assert.Equal(t, 2, m.FacesAnalyzed)
	assert.Equal(t, 1, m.MaskedFaces)
	assert.InDelta(t, 50, m.MaskCompliance, 1e-9)
	assert.Contains(t, res.Alerts, "Mask compliance at 50%, below the 85% target")
	assert.Contains(t, res.Alerts, "3 people without a mask reading")
}

func TestAnalyzeComplianceFullCompliance(t *testing.T) {
	faces := []detect.FaceDetection{maskedFace(true, 0.9), maskedFace(true, 0.7)}

	res := AnalyzeCompliance(persons(2), faces)

	require.NotNil(t, res.Compliance)
	assert.InDelta(t, 100, res.Compliance.MaskCompliance, 1e-9)
	assert.Empty(t, res.Alerts)
}

func TestAnalyzeComplianceNoReadableFaces(t *testing.T) {
	res := AnalyzeCompliance(persons(3), nil)

	require.NotNil(t, res.Compliance)
	assert.Zero(t, res.Compliance.FacesAnalyzed)
	assert.Zero(t, res.Compliance.MaskCompliance)
	// No compliance alert without readings, but uncovered people still surface.
	assert.Equal(t, []string{"3 people without a mask reading"}, res.Alerts)
}

func TestAnalyzeComplianceReadingCutoffIsExclusive(t *testing.T) {
	// Confidence exactly at the cutoff does not count as a reading.
	res := AnalyzeCompliance(nil, []detect.FaceDetection{maskedFace(true, 0.5)})

	require.NotNil(t, res.Compliance)
	assert.Zero(t, res.Compliance.FacesAnalyzed)
}

func TestAnalyzeComplianceEmptyScene(t *testing.T) {
	res := AnalyzeCompliance(nil, nil)

	require.NotNil(t, res.Compliance)
	assert.Zero(t, res.Compliance.PeopleCount)
	assert.Empty(t, res.Alerts)
}
