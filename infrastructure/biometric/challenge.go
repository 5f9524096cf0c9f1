package biometric

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"rollcall.io/infrastructure/biometric/types"
)

type ChallengeKind string

const (
	ChallengeBlink     ChallengeKind = "blink"
	ChallengeTurnHead  ChallengeKind = "turn_head"
	ChallengeSmile     ChallengeKind = "smile"
	ChallengeMouthOpen ChallengeKind = "mouth_open"
)

type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
)

const (
	ChallengeTimeout      = 3500 * time.Millisecond
	TurnAngleThreshold    = 8.0
	SmileThreshold        = 0.20
	MouthOpenThreshold    = 0.20
	maxBlinksPerChallenge = 2
)

var challengeKinds = []ChallengeKind{ChallengeBlink, ChallengeTurnHead, ChallengeSmile, ChallengeMouthOpen}
var directions = []Direction{DirectionLeft, DirectionRight, DirectionUp, DirectionDown}

type ChallengeSpec struct {
	Kind      ChallengeKind `json:"kind"`
	Count     int           `json:"count,omitempty"`
	Direction Direction     `json:"direction,omitempty"`
	Threshold float64       `json:"threshold,omitempty"`
	Timeout   time.Duration `json:"timeout"`
}

func BlinkN(n int) ChallengeSpec {
	return ChallengeSpec{Kind: ChallengeBlink, Count: n, Timeout: ChallengeTimeout}
}

func TurnHead(direction Direction) ChallengeSpec {
	return ChallengeSpec{Kind: ChallengeTurnHead, Direction: direction, Threshold: TurnAngleThreshold, Timeout: ChallengeTimeout}
}

func Smile(threshold float64) ChallengeSpec {
	return ChallengeSpec{Kind: ChallengeSmile, Threshold: threshold, Timeout: ChallengeTimeout}
}

func MouthOpen(threshold float64) ChallengeSpec {
	return ChallengeSpec{Kind: ChallengeMouthOpen, Threshold: threshold, Timeout: ChallengeTimeout}
}

// Instruction is the prompt shown to the person.
func (c ChallengeSpec) Instruction() string {
	switch c.Kind {
	case ChallengeBlink:
		return fmt.Sprintf("Blink %d time(s)", c.Count)
	case ChallengeTurnHead:
		return fmt.Sprintf("Turn head %s", strings.ToUpper(string(c.Direction)))
	case ChallengeSmile:
		return "Smile"
	case ChallengeMouthOpen:
		return "Open your mouth"
	}
	return "Follow the instruction"
}

// ChooseChallenges draws n challenges uniformly over the four kinds. The
// result is a pure function of the generator state, so a stored seed
// reproduces the sequence.
func ChooseChallenges(rng *rand.Rand, n int) []ChallengeSpec {
	out := make([]ChallengeSpec, 0, n)
	for i := 0; i < n; i++ {
		switch challengeKinds[rng.Intn(len(challengeKinds))] {
		case ChallengeBlink:
			out = append(out, BlinkN(1+rng.Intn(maxBlinksPerChallenge)))
		case ChallengeTurnHead:
			out = append(out, TurnHead(directions[rng.Intn(len(directions))]))
		case ChallengeSmile:
			out = append(out, Smile(SmileThreshold))
		case ChallengeMouthOpen:
			out = append(out, MouthOpen(MouthOpenThreshold))
		}
	}
	return out
}

type SessionState string

const (
	SessionRunning SessionState = "running"
	SessionPassed  SessionState = "passed"
	SessionFailed  SessionState = "failed"
)

// ChallengeSession runs a fixed challenge sequence against timestamped frames.
// It never reads the wall clock; elapsed time comes from the frames.
// A session is not safe for concurrent use.
type ChallengeSession struct {
	sequence       []ChallengeSpec
	currentIndex   int
	startOfCurrent time.Time
	lastSeen       time.Time
	started        bool
	blinks         int
	outcomes       []bool
	state          SessionState

	detector *BlinkDetector
}

func NewChallengeSession(sequence []ChallengeSpec) *ChallengeSession {
	session := &ChallengeSession{
		sequence: append([]ChallengeSpec(nil), sequence...),
		outcomes: make([]bool, 0, len(sequence)),
		state:    SessionRunning,
		detector: NewBlinkDetector(),
	}
	if len(sequence) == 0 {
		session.state = SessionFailed
	}
	return session
}

func (s *ChallengeSession) State() SessionState {
	return s.state
}

func (s *ChallengeSession) Outcomes() []bool {
	return append([]bool(nil), s.outcomes...)
}

// Current returns the active challenge, or nil once the session has ended.
func (s *ChallengeSession) Current() *ChallengeSpec {
	if s.state != SessionRunning {
		return nil
	}
	c := s.sequence[s.currentIndex]
	return &c
}

// ProcessFrame derives the frame's signal and feeds it to the session.
// Frames without landmarks carry a zero signal and leave the blink detector alone.
func (s *ChallengeSession) ProcessFrame(frame types.Frame) SessionState {
	signal := types.Signal{}
	if metrics, ok := measure(frame.Landmarks); ok {
		signal = types.Signal{
			Blinked:        s.detector.Update(metrics.leftEAR, metrics.rightEAR),
			Yaw:            metrics.pose.Yaw,
			Pitch:          metrics.pose.Pitch,
			Roll:           metrics.pose.Roll,
			SmileRatio:     metrics.smileRatio,
			MouthOpenRatio: metrics.mouthOpenRatio,
		}
	}
	return s.Process(signal, frame.CapturedAt)
}

// Process advances the session by one frame captured at the given time.
// At most one challenge resolves per frame; the next one starts its timer at
// this frame. Timestamps earlier than one already seen are treated as equal to it.
func (s *ChallengeSession) Process(signal types.Signal, at time.Time) SessionState {
	if s.state != SessionRunning {
		return s.state
	}
	if !s.started {
		s.started = true
		s.startOfCurrent = at
		s.lastSeen = at
	}
	if at.Before(s.lastSeen) {
		at = s.lastSeen
	}
	s.lastSeen = at

	current := s.sequence[s.currentIndex]
	if satisfied(current, signal, &s.blinks) {
		s.resolve(true, at)
	} else if at.Sub(s.startOfCurrent) > current.Timeout {
		s.resolve(false, at)
	}
	return s.state
}

func (s *ChallengeSession) resolve(passed bool, at time.Time) {
	s.outcomes = append(s.outcomes, passed)
	s.currentIndex++
	s.blinks = 0
	s.startOfCurrent = at
	if s.currentIndex < len(s.sequence) {
		return
	}
	if s.Passes() > len(s.sequence)/2 {
		s.state = SessionPassed
	} else {
		s.state = SessionFailed
	}
}

func (s *ChallengeSession) Passes() int {
	passes := 0
	for _, ok := range s.outcomes {
		if ok {
			passes++
		}
	}
	return passes
}

func satisfied(c ChallengeSpec, signal types.Signal, blinks *int) bool {
	switch c.Kind {
	case ChallengeBlink:
		if signal.Blinked {
			*blinks++
		}
		return *blinks >= c.Count
	case ChallengeTurnHead:
		switch c.Direction {
		case DirectionLeft:
			return signal.Yaw < -c.Threshold
		case DirectionRight:
			return signal.Yaw > c.Threshold
		case DirectionUp:
			return signal.Pitch < -c.Threshold
		case DirectionDown:
			return signal.Pitch > c.Threshold
		}
	case ChallengeSmile:
		return signal.SmileRatio > c.Threshold
	case ChallengeMouthOpen:
		return signal.MouthOpenRatio > c.Threshold
	}
	return false
}

// SessionResult is the externally reported summary of a session.
type SessionResult struct {
	State    SessionState    `json:"state"`
	Passes   int             `json:"passes"`
	Outcomes []bool          `json:"outcomes"`
	Sequence []ChallengeSpec `json:"sequence"`
	Reason   string          `json:"reason,omitempty"`
}

// Finish closes the input stream. A session still running is reported as
// failed with reason "incomplete".
func (s *ChallengeSession) Finish() SessionResult {
	result := SessionResult{
		State:    s.state,
		Passes:   s.Passes(),
		Outcomes: s.Outcomes(),
		Sequence: append([]ChallengeSpec(nil), s.sequence...),
	}
	switch s.state {
	case SessionRunning:
		result.State = SessionFailed
		result.Reason = "incomplete"
	case SessionFailed:
		result.Reason = "challenges_failed"
	}
	return result
}
