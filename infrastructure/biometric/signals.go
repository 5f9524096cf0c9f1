package biometric

import (
	"math"

	"rollcall.io/infrastructure/biometric/types"
)

// face mesh indices
const (
	leftEyeOuter, leftEyeInner, leftEyeUpper, leftEyeLower     = 33, 133, 159, 145
	rightEyeOuter, rightEyeInner, rightEyeUpper, rightEyeLower = 263, 362, 386, 374
	mouthLeft, mouthRight, mouthUp, mouthDown                  = 61, 291, 13, 14
	noseTip, chin                                              = 1, 199

	// one past the highest index read by measure
	meshSize = rightEyeUpper + 1
)

type meshMetrics struct {
	leftEAR        float64
	rightEAR       float64
	smileRatio     float64
	mouthOpenRatio float64
	pose           types.Pose
}

// measure returns false when the mesh is too short to hold every index used.
func measure(landmarks *types.Landmarks) (meshMetrics, bool) {
	if landmarks == nil || len(landmarks.Points) < meshSize {
		return meshMetrics{}, false
	}
	w, h := landmarks.Width, landmarks.Height
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	at := func(i int) types.Point {
		p := landmarks.Points[i]
		return types.Point{X: p.X * w, Y: p.Y * h}
	}

	metrics := meshMetrics{
		leftEAR:  ratio(distance(at(leftEyeUpper), at(leftEyeLower)), distance(at(leftEyeOuter), at(leftEyeInner))),
		rightEAR: ratio(distance(at(rightEyeUpper), at(rightEyeLower)), distance(at(rightEyeOuter), at(rightEyeInner))),
	}
	iod := distance(at(leftEyeOuter), at(rightEyeOuter))
	metrics.smileRatio = ratio(distance(at(mouthLeft), at(mouthRight)), iod)
	metrics.mouthOpenRatio = ratio(distance(at(mouthUp), at(mouthDown)), iod)

	if landmarks.Pose != nil {
		metrics.pose = *landmarks.Pose
	} else {
		metrics.pose = estimatePose(at(leftEyeOuter), at(rightEyeOuter), at(noseTip), at(chin))
	}
	return metrics, true
}

// estimatePose is a planar approximation used when the extractor does not
// report head orientation. It is accurate to a few degrees near frontal,
// which is enough for the 8 degree turn gate.
func estimatePose(leftEye, rightEye, nose, chinPoint types.Point) types.Pose {
	mid := types.Point{X: (leftEye.X + rightEye.X) / 2, Y: (leftEye.Y + rightEye.Y) / 2}
	halfIOD := distance(leftEye, rightEye) / 2
	if halfIOD == 0 {
		return types.Pose{}
	}
	yaw := math.Asin(clampUnit((nose.X - mid.X) / halfIOD))

	// at rest the nose tip sits a little under half way between the eye line and the chin
	const neutralNoseDrop = 0.45
	pitch := 0.0
	if span := chinPoint.Y - mid.Y; span > 0 {
		pitch = math.Asin(clampUnit(((nose.Y-mid.Y)/span - neutralNoseDrop) * 2))
	}
	roll := math.Atan2(rightEye.Y-leftEye.Y, rightEye.X-leftEye.X)
	return types.Pose{Yaw: degrees(yaw), Pitch: degrees(pitch), Roll: degrees(roll)}
}

func distance(p, q types.Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
