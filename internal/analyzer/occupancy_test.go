package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-vision/argus/internal/detect"
)

func TestAnalyzeOccupancyOverCapacity(t *testing.T) {
	dets := withClass(persons(25), detect.ClassChair, 5)

	res := AnalyzeOccupancy(dets)

	require.NotNil(t, res.Occupancy)
	m := res.Occupancy
	assert.Equal(t, 25, m.Occupancy)
	assert.Equal(t, 5, m.TotalSeats)
	assert.Equal(t, 20, m.MaxCapacity, "capacity floor applies over sparse seating")
	assert.InDelta(t, 100, m.OccupancyRate, 1e-9, "rate clamps at 100")
	assert.Zero(t, m.AvailableSeats)
	assert.Contains(t, res.Alerts, "Occupancy of 25 exceeds estimated capacity of 20")
	assert.Contains(t, res.Alerts, "Critical occupancy: 100% of capacity")
}

func TestAnalyzeOccupancySeatWeights(t *testing.T) {
	dets := withClass(nil, detect.ClassChair, 10)
	dets = withClass(dets, detect.ClassBench, 2)
	dets = withClass(dets, detect.ClassCouch, 1)

	res := AnalyzeOccupancy(dets)

	require.NotNil(t, res.Occupancy)
	// 10 + 2*3 + 1*4
	assert.Equal(t, 20, res.Occupancy.TotalSeats)
	assert.Equal(t, 20, res.Occupancy.MaxCapacity)
	assert.Equal(t, 20, res.Occupancy.AvailableSeats)
	assert.Empty(t, res.Alerts)
}

func TestAnalyzeOccupancyBands(t *testing.T) {
	tests := []struct {
		name      string
		people    int
		chairs    int
		wantAlert string
	}{
		{"Half full", 20, 40, ""},
		{"High", 30, 40, "High occupancy: 75% of capacity"},
		{"Very high", 36, 40, "Very high occupancy: 90% of capacity"},
		{"Critical", 39, 40, "Critical occupancy: 98% of capacity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dets := withClass(persons(tt.people), detect.ClassChair, tt.chairs)
			res := AnalyzeOccupancy(dets)

			require.NotNil(t, res.Occupancy)
			if tt.wantAlert == "" {
				assert.Empty(t, res.Alerts)
				return
			}
			assert.Equal(t, []string{tt.wantAlert}, res.Alerts, "only the highest band alerts")
		})
	}
}

func TestAnalyzeOccupancyEmptyScene(t *testing.T) {
	res := AnalyzeOccupancy(nil)

	require.NotNil(t, res.Occupancy)
	assert.Zero(t, res.Occupancy.Occupancy)
	assert.Equal(t, 20, res.Occupancy.MaxCapacity)
	assert.Equal(t, 20, res.Occupancy.AvailableSeats)
	assert.Zero(t, res.Occupancy.OccupancyRate)
	assert.Empty(t, res.Alerts)
}
