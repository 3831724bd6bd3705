package analyzer

import (
	"fmt"

	"github.com/argus-vision/argus/internal/detect"
	"github.com/argus-vision/argus/internal/vision"
)

// System status levels, lowest to highest urgency. Fire takes absolute
// priority over crowd status.
const (
	StatusOperational = "operational"
	StatusWarning     = "warning"
	StatusCrowded     = "crowded"
	StatusEmergency   = "emergency"
)

const (
	safetyHighOccupancy = 10
	safetyCrowdLimit    = 20
)

// AnalyzeSafety runs the fire/smoke heuristics over the frame and combines
// them with crowd and equipment signals. A nil frame skips the pixel
// heuristics but still reports crowding.
func AnalyzeSafety(detections []detect.Detection, frame *vision.Frame) Result {
	persons := countClass(detections, detect.ClassPerson)
	bags := countClass(detections, detect.ClassBackpack)
	extinguishers := countClass(detections, detect.ClassFireExtinguisher)

	var hazard vision.FireSmokeResult
	if frame != nil {
		hazard = vision.DetectFireSmoke(frame)
	}

	status := StatusOperational
	switch {
	case hazard.FireDetected:
		status = StatusEmergency
	case persons > safetyCrowdLimit:
		status = StatusCrowded
	case hazard.SmokeDetected:
		status = StatusWarning
	}

	responseTime := "0.3s"
	switch {
	case hazard.FireDetected || hazard.SmokeDetected:
		responseTime = "0.1s"
	case persons > safetyCrowdLimit:
		responseTime = "0.5s"
	}

	var alerts []string
	if hazard.FireDetected {
		alerts = append(alerts, fmt.Sprintf("Fire signature detected (%.1f%% of frame)", hazard.FireRatio*100))
	}
	if hazard.SmokeDetected {
		alerts = append(alerts, fmt.Sprintf("Smoke signature detected (%.1f%% of frame)", hazard.SmokeRatio*100))
	}
	if persons > safetyHighOccupancy {
		alerts = append(alerts, fmt.Sprintf("High occupancy: %d people in view", persons))
	}
	if persons > safetyCrowdLimit {
		alerts = append(alerts, fmt.Sprintf("Crowd risk: %d people in view", persons))
	}
	if bags > persons {
		alerts = append(alerts, fmt.Sprintf("%d bag(s) appear unattended", bags-persons))
	}
	if extinguishers == 0 {
		alerts = append(alerts, "No fire extinguisher visible in the monitored area")
	}

	return Result{
		Module: ModuleSafety,
		Alerts: alerts,
		Safety: &SafetyMetrics{
			PeopleCount:   persons,
			SystemStatus:  status,
			ResponseTime:  responseTime,
			FireDetected:  hazard.FireDetected,
			SmokeDetected: hazard.SmokeDetected,
			FireRatio:     hazard.FireRatio,
			SmokeRatio:    hazard.SmokeRatio,
			Motion:        hazard.Motion,
		},
	}
}
