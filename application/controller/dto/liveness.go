package dto

import (
	"time"

	"rollcall.io/infrastructure/biometric/types"
)

type LivenessImageDTO struct {
	Image []byte `json:"image" form:"-" validate:"required"`
}

// ChallengeFrameDTO is one captured frame. Landmarks win over Image when both are sent.
type ChallengeFrameDTO struct {
	CapturedAt time.Time        `json:"capturedAt" validate:"required"`
	Image      []byte           `json:"image" validate:"required_without=Landmarks"`
	Landmarks  *types.Landmarks `json:"landmarks"`
}

type VerifyChallengeDTO struct {
	ID       string              `uri:"id" json:"-" validate:"required"`
	Frames   []ChallengeFrameDTO `json:"frames" validate:"required,min=1,max=600,dive"`
	CourseID string              `json:"courseId" validate:"omitempty,course_key,max=64"`
}
