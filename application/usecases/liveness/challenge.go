package liveness_usecases

import (
	"context"
	"math/rand"
	"time"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/constants"
	attendance_usecases "rollcall.io/application/usecases/attendance"
	"rollcall.io/application/utils"
	"rollcall.io/infrastructure/biometric"
	"rollcall.io/infrastructure/biometric/types"
	"rollcall.io/infrastructure/logger"
)

type FrameSource interface {
	Frame(ctx context.Context, data []byte, capturedAt time.Time) (types.Frame, error)
	CheckSpoof(ctx context.Context, data []byte) (types.SpoofVerdict, error)
}

// ChallengeStore keeps issued challenge seeds until they are used or expire.
// Take must hand out a seed at most once.
type ChallengeStore interface {
	Save(ctx context.Context, id string, seed int64, ttl time.Duration) error
	Take(ctx context.Context, id string) (int64, bool, error)
}

type AttendanceMarker interface {
	MarkFromImage(ctx context.Context, courseID string, image []byte) (*attendance_usecases.MarkResult, error)
}

type LivenessUseCase struct {
	Faces      FrameSource
	Challenges ChallengeStore
	Attendance AttendanceMarker
	TTL        time.Duration
	Now        func() time.Time
}

// FrameInput is one captured frame. Landmarks take precedence over Image
// unless the frames are being used to identify someone.
type FrameInput struct {
	CapturedAt time.Time
	Image      []byte
	Landmarks  *types.Landmarks
}

type IssuedChallenge struct {
	ID           string
	Sequence     []biometric.ChallengeSpec
	Instructions []string
	ExpiresAt    time.Time
}

type ChallengeVerdict struct {
	Session    biometric.SessionResult
	Attendance *attendance_usecases.MarkResult
}

// CheckImage is the single shot liveness check.
func (u *LivenessUseCase) CheckImage(ctx context.Context, image []byte) (types.SpoofVerdict, error) {
	return u.Faces.CheckSpoof(ctx, image)
}

// IssueChallenge draws a random challenge sequence and remembers its seed.
func (u *LivenessUseCase) IssueChallenge(ctx context.Context) (*IssuedChallenge, error) {
	seed := rand.Int63()
	id := utils.GenerateUULDString()
	if err := u.Challenges.Save(ctx, id, seed, u.TTL); err != nil {
		return nil, err
	}
	sequence := sequenceFor(seed)
	instructions := make([]string, len(sequence))
	for i, spec := range sequence {
		instructions[i] = spec.Instruction()
	}
	return &IssuedChallenge{
		ID:           id,
		Sequence:     sequence,
		Instructions: instructions,
		ExpiresAt:    u.now().Add(u.TTL),
	}, nil
}

// VerifyChallenge replays frames against an issued challenge. The challenge is
// consumed whatever the outcome. When a course is given the frames are read
// from their images only, and attendance is marked for a passed session from
// the first face the session itself measured.
func (u *LivenessUseCase) VerifyChallenge(ctx context.Context, id string, frames []FrameInput, courseID string) (*ChallengeVerdict, error) {
	seed, ok, err := u.Challenges.Take(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrChallengeExpired
	}

	identify := courseID != "" && u.Attendance != nil
	result, face, err := u.replay(ctx, sequenceFor(seed), frames, identify)
	if err != nil {
		return nil, err
	}
	verdict := &ChallengeVerdict{Session: *result}
	if result.State != biometric.SessionPassed || !identify {
		return verdict, nil
	}
	if face == nil {
		logger.Warning("passed challenge carried no face to identify", logger.LoggerOptions{
			Key:  "challenge",
			Data: id,
		})
		return verdict, nil
	}
	marked, err := u.Attendance.MarkFromImage(ctx, courseID, face)
	if err != nil {
		return nil, err
	}
	verdict.Attendance = marked
	return verdict, nil
}

// RunSession feeds frames in order until the session ends. A cancelled
// context abandons the session and returns the context error.
func (u *LivenessUseCase) RunSession(ctx context.Context, sequence []biometric.ChallengeSpec, frames []FrameInput) (*biometric.SessionResult, error) {
	result, _, err := u.replay(ctx, sequence, frames, false)
	return result, err
}

// replay runs a fresh session over frames. With imagesOnly set, client
// landmarks are ignored and frames without an image carry no signal; the
// returned image is then the first one the session consumed with a face in it.
func (u *LivenessUseCase) replay(ctx context.Context, sequence []biometric.ChallengeSpec, frames []FrameInput, imagesOnly bool) (*biometric.SessionResult, []byte, error) {
	session := biometric.NewChallengeSession(sequence)
	var face []byte
	for _, input := range frames {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		frame := types.Frame{CapturedAt: input.CapturedAt}
		if !imagesOnly {
			frame.Landmarks = input.Landmarks
		}
		if frame.Landmarks == nil && len(input.Image) > 0 {
			extracted, err := u.Faces.Frame(ctx, input.Image, input.CapturedAt)
			if err != nil {
				return nil, nil, err
			}
			frame = extracted
			if imagesOnly && face == nil && frame.Landmarks != nil {
				face = input.Image
			}
		}
		if session.ProcessFrame(frame) != biometric.SessionRunning {
			break
		}
	}
	result := session.Finish()
	return &result, face, nil
}

func sequenceFor(seed int64) []biometric.ChallengeSpec {
	return biometric.ChooseChallenges(rand.New(rand.NewSource(seed)), constants.NUM_CHALLENGES)
}

func (u *LivenessUseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}
