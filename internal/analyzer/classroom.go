package analyzer

import (
	"fmt"

	"github.com/argus-vision/argus/internal/detect"
)

const (
	classroomAttentionBase = 85
	classroomPhonePenalty  = 10
	classroomLaptopPenalty = 5
	classroomLowFaceRatio  = 0.7
	classroomLaptopLimit   = 2
)

// AnalyzeClassroom estimates engagement in a lecture setting. Student count
// takes the larger of person and face counts so partially occluded students
// still register.
func AnalyzeClassroom(detections []detect.Detection, faces []detect.FaceDetection) Result {
	persons := countClass(detections, detect.ClassPerson)
	phones := countClass(detections, detect.ClassCellPhone)
	laptops := countClass(detections, detect.ClassLaptop)
	faceCount := len(faces)

	studentCount := maxInt(persons, faceCount)

	faceRatio := 0.0
	if studentCount > 0 {
		faceRatio = float64(faceCount) / float64(studentCount)
	}

	attention := clampInt(
		roundToInt(faceRatio*classroomAttentionBase-float64(phones*classroomPhonePenalty+laptops*classroomLaptopPenalty)),
		0, 100,
	)

	var alerts []string
	if phones > 0 {
		alerts = append(alerts, fmt.Sprintf("%d mobile phone(s) detected", phones))
	}
	if laptops > classroomLaptopLimit {
		alerts = append(alerts, fmt.Sprintf("%d laptops open during class", laptops))
	}
	if studentCount > 0 && faceRatio < classroomLowFaceRatio {
		alerts = append(alerts, "Low attention: most students are not facing the camera")
	}

	return Result{
		Module: ModuleClassroom,
		Alerts: alerts,
		Classroom: &ClassroomMetrics{
			StudentCount:   studentCount,
			FaceRatio:      faceRatio,
			AttentionLevel: attention,
			PhoneCount:     phones,
			LaptopCount:    laptops,
		},
	}
}
