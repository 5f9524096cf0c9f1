package biometric

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rollcall.io/infrastructure/biometric/types"
)

// mesh builds a face whose eye aspect ratio, smile ratio and mouth opening
// ratio equal the given values.
func mesh(ear, smile, mouth float64) *types.Landmarks {
	points := make([]types.Point, 468)
	points[leftEyeOuter] = types.Point{X: 0.30, Y: 0.40}
	points[leftEyeInner] = types.Point{X: 0.40, Y: 0.40}
	points[leftEyeUpper] = types.Point{X: 0.35, Y: 0.40 - ear*0.05}
	points[leftEyeLower] = types.Point{X: 0.35, Y: 0.40 + ear*0.05}
	points[rightEyeOuter] = types.Point{X: 0.70, Y: 0.40}
	points[rightEyeInner] = types.Point{X: 0.60, Y: 0.40}
	points[rightEyeUpper] = types.Point{X: 0.65, Y: 0.40 - ear*0.05}
	points[rightEyeLower] = types.Point{X: 0.65, Y: 0.40 + ear*0.05}
	points[mouthLeft] = types.Point{X: 0.5 - smile*0.2, Y: 0.7}
	points[mouthRight] = types.Point{X: 0.5 + smile*0.2, Y: 0.7}
	points[mouthUp] = types.Point{X: 0.5, Y: 0.7 - mouth*0.2}
	points[mouthDown] = types.Point{X: 0.5, Y: 0.7 + mouth*0.2}
	points[noseTip] = types.Point{X: 0.5, Y: 0.625}
	points[chin] = types.Point{X: 0.5, Y: 0.9}
	return &types.Landmarks{Points: points, Pose: &types.Pose{}}
}

func TestMeasureRatios(t *testing.T) {
	metrics, ok := measure(mesh(0.3, 0.15, 0.05))
	require.True(t, ok)
	assert.InDelta(t, 0.3, metrics.leftEAR, 1e-9)
	assert.InDelta(t, 0.3, metrics.rightEAR, 1e-9)
	assert.InDelta(t, 0.15, metrics.smileRatio, 1e-9)
	assert.InDelta(t, 0.05, metrics.mouthOpenRatio, 1e-9)
}

func TestMeasureRejectsShortMesh(t *testing.T) {
	tests := []struct {
		name      string
		landmarks *types.Landmarks
		ok        bool
	}{
		{name: "nil", landmarks: nil},
		{name: "ten points", landmarks: &types.Landmarks{Points: make([]types.Point, 10)}},
		{name: "three hundred points", landmarks: &types.Landmarks{Points: make([]types.Point, 300)}},
		{name: "one short of the last index", landmarks: &types.Landmarks{Points: make([]types.Point, 386)}},
		{name: "just long enough", landmarks: &types.Landmarks{Points: make([]types.Point, 387)}, ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := measure(tt.landmarks)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestSessionTreatsShortMeshAsNoSignal(t *testing.T) {
	session := NewChallengeSession([]ChallengeSpec{Smile(0.2)})
	state := session.ProcessFrame(types.Frame{
		CapturedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Landmarks:  &types.Landmarks{Points: make([]types.Point, 300)},
	})
	assert.Equal(t, SessionRunning, state)
}

func TestEstimatePose(t *testing.T) {
	frontal := mesh(0.3, 0.1, 0.05)
	frontal.Pose = nil
	metrics, ok := measure(frontal)
	require.True(t, ok)
	assert.InDelta(t, 0, metrics.pose.Yaw, 1e-6)
	assert.InDelta(t, 0, metrics.pose.Pitch, 1e-6)
	assert.InDelta(t, 0, metrics.pose.Roll, 1e-6)

	turned := mesh(0.3, 0.1, 0.05)
	turned.Pose = nil
	turned.Points[noseTip].X = 0.5 + 0.2*math.Sin(20*math.Pi/180)
	metrics, _ = measure(turned)
	assert.InDelta(t, 20, metrics.pose.Yaw, 1e-6)
}

func TestBlinkDetector(t *testing.T) {
	detector := NewBlinkDetector()
	assert.False(t, detector.Update(0.1, 0.1))
	assert.False(t, detector.Update(0.3, 0.3), "a single closed frame is not a blink")

	assert.False(t, detector.Update(0.1, 0.1))
	assert.False(t, detector.Update(0.1, 0.1))
	assert.False(t, detector.Update(0.1, 0.1))
	assert.True(t, detector.Update(0.3, 0.3))
	assert.False(t, detector.Update(0.3, 0.3))
	assert.Equal(t, 1, detector.Total())

	// the mean of both eyes is what counts
	assert.False(t, detector.Update(0.05, 0.5))
	assert.False(t, detector.Update(0.05, 0.5))
	assert.False(t, detector.Update(0.3, 0.3))
}

func TestProcessFrameCountsBlinksFromLandmarks(t *testing.T) {
	session := NewChallengeSession([]ChallengeSpec{BlinkN(1)})
	frames := []types.Frame{
		{CapturedAt: after(0), Landmarks: mesh(0.3, 0.1, 0.05)},
		{CapturedAt: after(100 * time.Millisecond), Landmarks: mesh(0.1, 0.1, 0.05)},
		{CapturedAt: after(200 * time.Millisecond), Landmarks: nil},
		{CapturedAt: after(300 * time.Millisecond), Landmarks: mesh(0.1, 0.1, 0.05)},
		{CapturedAt: after(400 * time.Millisecond), Landmarks: mesh(0.3, 0.1, 0.05)},
	}
	var state SessionState
	for _, frame := range frames {
		state = session.ProcessFrame(frame)
	}
	// the faceless frame does not break the closed-eye run
	assert.Equal(t, SessionPassed, state)
}

func TestFacelessFramesOnlyTimeOut(t *testing.T) {
	session := NewChallengeSession([]ChallengeSpec{Smile(SmileThreshold)})
	assert.Equal(t, SessionRunning, session.ProcessFrame(types.Frame{CapturedAt: after(0)}))
	assert.Equal(t, SessionFailed, session.ProcessFrame(types.Frame{CapturedAt: after(4 * time.Second)}))
}
