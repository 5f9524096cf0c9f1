package dto

import (
	"rollcall.io/infrastructure/biometric"
	"rollcall.io/infrastructure/biometric/types"
)

type EnrollResponse struct {
	Success  bool                     `json:"success"`
	Status   string                   `json:"status"`
	Reason   string                   `json:"reason,omitempty"`
	Identity *IdentityProfileResponse `json:"identity,omitempty"`
	Verdict  *types.SpoofVerdict      `json:"verdict,omitempty"`
}

type VerifyResponse struct {
	Success    bool    `json:"success"`
	Status     string  `json:"status"`
	Reason     string  `json:"reason,omitempty"`
	MatchedID  *string `json:"matchedId"`
	Name       string  `json:"name,omitempty"`
	Similarity float64 `json:"similarity"`
}

type MarkResponse struct {
	Success    bool                `json:"success"`
	Status     string              `json:"status"`
	Reason     string              `json:"reason,omitempty"`
	Similarity *float64            `json:"similarity,omitempty"`
	Date       string              `json:"date"`
	CourseID   string              `json:"courseId"`
	IdentityID string              `json:"identityId,omitempty"`
	Name       string              `json:"name,omitempty"`
	Verdict    *types.SpoofVerdict `json:"verdict,omitempty"`
}

type LivenessResponse struct {
	Success bool               `json:"success"`
	Status  string             `json:"status"`
	Reason  string             `json:"reason,omitempty"`
	Verdict types.SpoofVerdict `json:"verdict"`
}

type ChallengeResponse struct {
	ID           string                    `json:"id"`
	Sequence     []biometric.ChallengeSpec `json:"sequence"`
	Instructions []string                  `json:"instructions"`
	ExpiresAt    string                    `json:"expiresAt"`
}

type ChallengeVerdictResponse struct {
	Success    bool                    `json:"success"`
	Status     string                  `json:"status"`
	Reason     string                  `json:"reason,omitempty"`
	Session    biometric.SessionResult `json:"session"`
	Attendance *MarkResponse           `json:"attendance,omitempty"`
}
