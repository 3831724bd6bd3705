package analyzer

import (
	"fmt"
	"math"

	"github.com/argus-vision/argus/internal/detect"
)

// Seat estimation weights and floor. A room with no visible seating still
// gets a 20-person working capacity so the rate stays meaningful.
const (
	seatsPerBench    = 3
	seatsPerCouch    = 4
	minRoomCapacity  = 20
	occupancyHighPct = 70
	occupancyVeryPct = 85
	occupancyCritPct = 95
)

// AnalyzeOccupancy estimates room utilization from visible people and
// seating furniture. Only the highest crossed utilization band alerts.
func AnalyzeOccupancy(detections []detect.Detection) Result {
	occupancy := countClass(detections, detect.ClassPerson)
	chairs := countClass(detections, detect.ClassChair)
	benches := countClass(detections, detect.ClassBench)
	couches := countClass(detections, detect.ClassCouch)

	totalSeats := chairs + benches*seatsPerBench + couches*seatsPerCouch
	maxCapacity := maxInt(totalSeats, minRoomCapacity)

	rate := math.Min(100, float64(occupancy)/float64(maxCapacity)*100)
	available := maxInt(0, maxCapacity-occupancy)

	var alerts []string
	switch {
	case rate > occupancyCritPct:
		alerts = append(alerts, fmt.Sprintf("Critical occupancy: %.0f%% of capacity", rate))
	case rate > occupancyVeryPct:
		alerts = append(alerts, fmt.Sprintf("Very high occupancy: %.0f%% of capacity", rate))
	case rate > occupancyHighPct:
		alerts = append(alerts, fmt.Sprintf("High occupancy: %.0f%% of capacity", rate))
	}
	if occupancy > maxCapacity {
		alerts = append(alerts, fmt.Sprintf("Occupancy of %d exceeds estimated capacity of %d", occupancy, maxCapacity))
	}

	return Result{
		Module: ModuleOccupancy,
		Alerts: alerts,
		Occupancy: &OccupancyMetrics{
			Occupancy:      occupancy,
			TotalSeats:     totalSeats,
			MaxCapacity:    maxCapacity,
			AvailableSeats: available,
			OccupancyRate:  rate,
		},
	}
}
