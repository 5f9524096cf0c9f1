package liveness_usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "rollcall.io/application/appErrors"
	attendance_usecases "rollcall.io/application/usecases/attendance"
	"rollcall.io/infrastructure/biometric"
	"rollcall.io/infrastructure/biometric/types"
)

type memoryChallenges struct {
	mu    sync.Mutex
	seeds map[string]int64
}

func (m *memoryChallenges) Save(ctx context.Context, id string, seed int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seeds == nil {
		m.seeds = map[string]int64{}
	}
	m.seeds[id] = seed
	return nil
}

func (m *memoryChallenges) Take(ctx context.Context, id string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seed, ok := m.seeds[id]
	delete(m.seeds, id)
	return seed, ok, nil
}

type stubFrames struct {
	landmarks *types.Landmarks
	byImage   map[string]*types.Landmarks
	calls     int
}

func (s *stubFrames) Frame(ctx context.Context, data []byte, capturedAt time.Time) (types.Frame, error) {
	s.calls++
	if landmarks, ok := s.byImage[string(data)]; ok {
		return types.Frame{CapturedAt: capturedAt, Landmarks: landmarks}, nil
	}
	return types.Frame{CapturedAt: capturedAt, Landmarks: s.landmarks}, nil
}

func (s *stubFrames) CheckSpoof(ctx context.Context, data []byte) (types.SpoofVerdict, error) {
	return types.SpoofVerdict{Overall: types.SpoofLabelReal}, nil
}

type stubMarker struct {
	images [][]byte
}

func (s *stubMarker) MarkFromImage(ctx context.Context, courseID string, image []byte) (*attendance_usecases.MarkResult, error) {
	s.images = append(s.images, image)
	return &attendance_usecases.MarkResult{Success: true, Status: attendance_usecases.StatusMarked, CourseID: courseID}, nil
}

// face mesh indices used by the signal extraction
const (
	leftOuter, leftInner, leftUpper, leftLower     = 33, 133, 159, 145
	rightOuter, rightInner, rightUpper, rightLower = 263, 362, 386, 374
	mouthL, mouthR, mouthU, mouthD                 = 61, 291, 13, 14
)

func face(ear, smile, mouth float64, pose types.Pose) *types.Landmarks {
	points := make([]types.Point, 468)
	points[leftOuter] = types.Point{X: 0.30, Y: 0.40}
	points[leftInner] = types.Point{X: 0.40, Y: 0.40}
	points[leftUpper] = types.Point{X: 0.35, Y: 0.40 - ear*0.05}
	points[leftLower] = types.Point{X: 0.35, Y: 0.40 + ear*0.05}
	points[rightOuter] = types.Point{X: 0.70, Y: 0.40}
	points[rightInner] = types.Point{X: 0.60, Y: 0.40}
	points[rightUpper] = types.Point{X: 0.65, Y: 0.40 - ear*0.05}
	points[rightLower] = types.Point{X: 0.65, Y: 0.40 + ear*0.05}
	points[mouthL] = types.Point{X: 0.5 - smile*0.2, Y: 0.7}
	points[mouthR] = types.Point{X: 0.5 + smile*0.2, Y: 0.7}
	points[mouthU] = types.Point{X: 0.5, Y: 0.7 - mouth*0.2}
	points[mouthD] = types.Point{X: 0.5, Y: 0.7 + mouth*0.2}
	return &types.Landmarks{Points: points, Pose: &pose}
}

func neutral() *types.Landmarks {
	return face(0.3, 0.1, 0.05, types.Pose{})
}

// answer produces landmarks that satisfy spec.
func answer(spec biometric.ChallengeSpec) []*types.Landmarks {
	switch spec.Kind {
	case biometric.ChallengeBlink:
		var out []*types.Landmarks
		for i := 0; i < spec.Count; i++ {
			closed := face(0.1, 0.1, 0.05, types.Pose{})
			out = append(out, closed, closed, neutral())
		}
		return out
	case biometric.ChallengeTurnHead:
		pose := map[biometric.Direction]types.Pose{
			biometric.DirectionLeft:  {Yaw: -20},
			biometric.DirectionRight: {Yaw: 20},
			biometric.DirectionUp:    {Pitch: -20},
			biometric.DirectionDown:  {Pitch: 20},
		}[spec.Direction]
		return []*types.Landmarks{face(0.3, 0.1, 0.05, pose)}
	case biometric.ChallengeSmile:
		return []*types.Landmarks{face(0.3, 0.5, 0.05, types.Pose{})}
	case biometric.ChallengeMouthOpen:
		return []*types.Landmarks{face(0.3, 0.1, 0.5, types.Pose{})}
	}
	return nil
}

func framesFor(sequence []biometric.ChallengeSpec, start time.Time) []FrameInput {
	frames := []FrameInput{{CapturedAt: start, Landmarks: neutral(), Image: []byte("first")}}
	at := start
	for _, spec := range sequence {
		for _, landmarks := range answer(spec) {
			at = at.Add(100 * time.Millisecond)
			frames = append(frames, FrameInput{CapturedAt: at, Landmarks: landmarks})
		}
	}
	return frames
}

// imageFramesFor answers the sequence with images whose landmarks the stub
// extractor knows about.
func imageFramesFor(sequence []biometric.ChallengeSpec, start time.Time, extractor *stubFrames) []FrameInput {
	landmarkFrames := framesFor(sequence, start)
	extractor.byImage = map[string]*types.Landmarks{}
	frames := make([]FrameInput, len(landmarkFrames))
	for i, frame := range landmarkFrames {
		image := fmt.Sprintf("frame-%d", i)
		extractor.byImage[image] = frame.Landmarks
		frames[i] = FrameInput{CapturedAt: frame.CapturedAt, Image: []byte(image)}
	}
	return frames
}

var start = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newUseCase(marker *stubMarker) (*LivenessUseCase, *stubFrames) {
	frames := &stubFrames{}
	u := &LivenessUseCase{
		Faces:      frames,
		Challenges: &memoryChallenges{},
		TTL:        time.Minute,
		Now:        func() time.Time { return start },
	}
	if marker != nil {
		u.Attendance = marker
	}
	return u, frames
}

func TestIssueChallenge(t *testing.T) {
	u, _ := newUseCase(nil)
	issued, err := u.IssueChallenge(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)
	assert.Len(t, issued.Sequence, 4)
	assert.Len(t, issued.Instructions, 4)
	assert.Equal(t, start.Add(time.Minute), issued.ExpiresAt)
}

func TestVerifyChallengePassesAndMarks(t *testing.T) {
	marker := &stubMarker{}
	u, extractor := newUseCase(marker)
	ctx := context.Background()

	issued, err := u.IssueChallenge(ctx)
	require.NoError(t, err)

	verdict, err := u.VerifyChallenge(ctx, issued.ID, imageFramesFor(issued.Sequence, start, extractor), "CS101")
	require.NoError(t, err)
	assert.Equal(t, biometric.SessionPassed, verdict.Session.State)
	assert.Equal(t, 4, verdict.Session.Passes)
	require.NotNil(t, verdict.Attendance)
	assert.Equal(t, [][]byte{[]byte("frame-0")}, marker.images)
}

func TestVerifyChallengeWithoutCourseUsesLandmarks(t *testing.T) {
	marker := &stubMarker{}
	u, extractor := newUseCase(marker)
	ctx := context.Background()
	issued, err := u.IssueChallenge(ctx)
	require.NoError(t, err)

	verdict, err := u.VerifyChallenge(ctx, issued.ID, framesFor(issued.Sequence, start), "")
	require.NoError(t, err)
	assert.Equal(t, biometric.SessionPassed, verdict.Session.State)
	assert.Nil(t, verdict.Attendance)
	assert.Empty(t, marker.images)
	assert.Equal(t, 0, extractor.calls)
}

func TestVerifyChallengeIgnoresClientLandmarksWhenMarking(t *testing.T) {
	marker := &stubMarker{}
	u, _ := newUseCase(marker)
	ctx := context.Background()
	issued, err := u.IssueChallenge(ctx)
	require.NoError(t, err)

	// a scripted landmark stream with a photo tacked on after the last answer
	frames := framesFor(issued.Sequence, start)
	frames[0].Image = nil
	frames = append(frames, FrameInput{CapturedAt: start.Add(time.Hour), Image: []byte("photo")})

	verdict, err := u.VerifyChallenge(ctx, issued.ID, frames, "CS101")
	require.NoError(t, err)
	assert.Equal(t, biometric.SessionFailed, verdict.Session.State)
	assert.Nil(t, verdict.Attendance)
	assert.Empty(t, marker.images)
}

func TestVerifyChallengeMarksOnlyConsumedFrames(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(frames []FrameInput, extractor *stubFrames) []FrameInput
		expected [][]byte
	}{
		{
			name: "image after the session ended",
			prepare: func(frames []FrameInput, extractor *stubFrames) []FrameInput {
				extractor.byImage["photo"] = neutral()
				return append(frames, FrameInput{CapturedAt: start.Add(time.Hour), Image: []byte("photo")})
			},
			expected: [][]byte{[]byte("frame-0")},
		},
		{
			name: "leading frame without a face",
			prepare: func(frames []FrameInput, extractor *stubFrames) []FrameInput {
				return append([]FrameInput{{CapturedAt: start, Image: []byte("blank")}}, frames...)
			},
			expected: [][]byte{[]byte("frame-0")},
		},
		{
			name: "leading frame with landmarks only",
			prepare: func(frames []FrameInput, extractor *stubFrames) []FrameInput {
				return append([]FrameInput{{CapturedAt: start, Landmarks: neutral()}}, frames...)
			},
			expected: [][]byte{[]byte("frame-0")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marker := &stubMarker{}
			u, extractor := newUseCase(marker)
			ctx := context.Background()
			issued, err := u.IssueChallenge(ctx)
			require.NoError(t, err)

			frames := tt.prepare(imageFramesFor(issued.Sequence, start, extractor), extractor)
			verdict, err := u.VerifyChallenge(ctx, issued.ID, frames, "CS101")
			require.NoError(t, err)
			assert.Equal(t, biometric.SessionPassed, verdict.Session.State)
			assert.Equal(t, tt.expected, marker.images)
		})
	}
}

func TestVerifyChallengeIsSingleUse(t *testing.T) {
	u, _ := newUseCase(nil)
	ctx := context.Background()
	issued, err := u.IssueChallenge(ctx)
	require.NoError(t, err)

	_, err = u.VerifyChallenge(ctx, issued.ID, nil, "")
	require.NoError(t, err)
	_, err = u.VerifyChallenge(ctx, issued.ID, nil, "")
	assert.True(t, errors.Is(err, apperrors.ErrChallengeExpired))
}

func TestFailedSessionDoesNotMark(t *testing.T) {
	marker := &stubMarker{}
	u, _ := newUseCase(marker)
	ctx := context.Background()
	issued, err := u.IssueChallenge(ctx)
	require.NoError(t, err)

	frames := []FrameInput{{CapturedAt: start, Image: []byte("first")}}
	for i := 1; i <= 4; i++ {
		frames = append(frames, FrameInput{CapturedAt: start.Add(time.Duration(i) * 4 * time.Second)})
	}
	verdict, err := u.VerifyChallenge(ctx, issued.ID, frames, "CS101")
	require.NoError(t, err)
	assert.Equal(t, biometric.SessionFailed, verdict.Session.State)
	assert.Nil(t, verdict.Attendance)
	assert.Empty(t, marker.images)
}

func TestRunSessionExtractsLandmarksFromImages(t *testing.T) {
	u, frames := newUseCase(nil)
	frames.landmarks = face(0.3, 0.5, 0.05, types.Pose{})

	result, err := u.RunSession(context.Background(), []biometric.ChallengeSpec{biometric.Smile(biometric.SmileThreshold)}, []FrameInput{
		{CapturedAt: start, Image: []byte("img")},
		{CapturedAt: start.Add(time.Second), Image: []byte("img")},
	})
	require.NoError(t, err)
	assert.Equal(t, biometric.SessionPassed, result.State)
	// the session ended on the first frame
	assert.Equal(t, 1, frames.calls)
}

func TestRunSessionIncomplete(t *testing.T) {
	u, _ := newUseCase(nil)
	sequence := []biometric.ChallengeSpec{biometric.Smile(biometric.SmileThreshold), biometric.Smile(biometric.SmileThreshold)}
	result, err := u.RunSession(context.Background(), sequence, []FrameInput{{CapturedAt: start, Landmarks: face(0.3, 0.5, 0.05, types.Pose{})}})
	require.NoError(t, err)
	assert.Equal(t, biometric.SessionFailed, result.State)
	assert.Equal(t, "incomplete", result.Reason)
}

func TestRunSessionAbandonedOnCancel(t *testing.T) {
	u, _ := newUseCase(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := u.RunSession(ctx, []biometric.ChallengeSpec{biometric.Smile(0.2)}, []FrameInput{{CapturedAt: start}})
	assert.True(t, errors.Is(err, context.Canceled))
}
