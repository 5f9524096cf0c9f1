package controller

import (
	"net/http"
	"time"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/constants"
	"rollcall.io/application/controller/dto"
	"rollcall.io/application/interfaces"
	liveness_usecases "rollcall.io/application/usecases/liveness"
	"rollcall.io/infrastructure/biometric"
	"rollcall.io/infrastructure/biometric/types"
	server_response "rollcall.io/infrastructure/serverResponse"
	"rollcall.io/infrastructure/validator"
)

// CheckLiveness is the single image spoof check.
func (c *Controller) CheckLiveness(ctx *interfaces.ApplicationContext[dto.LivenessImageDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	verdict, err := c.Liveness.CheckImage(ctx.Context(), ctx.Body.Image)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("check_liveness", ctx.RequestID, err))
		return
	}
	response := dto.LivenessResponse{Status: string(verdict.Overall), Verdict: verdict}
	switch verdict.Overall {
	case types.SpoofLabelReal:
		response.Success = true
		server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "face is live", response, nil, &constants.LIVENESS_PASSED)
	case types.SpoofLabelSpoof:
		response.Reason = "spoof detected"
		server_response.Responder.Respond(ctx.Ctx, http.StatusOK, response.Reason, response, nil, &constants.SPOOF_REJECTED)
	default:
		response.Reason = "liveness could not be verified"
		server_response.Responder.Respond(ctx.Ctx, http.StatusOK, response.Reason, response, nil, &constants.LIVENESS_UNVERIFIABLE)
	}
}

func (c *Controller) IssueChallenge(ctx *interfaces.ApplicationContext[any]) {
	issued, err := c.Liveness.IssueChallenge(ctx.Context())
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("issue_challenge", ctx.RequestID, err))
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "challenge issued", dto.ChallengeResponse{
		ID:           issued.ID,
		Sequence:     issued.Sequence,
		Instructions: issued.Instructions,
		ExpiresAt:    issued.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil, nil)
}

func (c *Controller) VerifyChallenge(ctx *interfaces.ApplicationContext[dto.VerifyChallengeDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	frames := make([]liveness_usecases.FrameInput, len(ctx.Body.Frames))
	for i, frame := range ctx.Body.Frames {
		frames[i] = liveness_usecases.FrameInput{
			CapturedAt: frame.CapturedAt,
			Image:      frame.Image,
			Landmarks:  frame.Landmarks,
		}
	}
	verdict, err := c.Liveness.VerifyChallenge(ctx.Context(), ctx.Body.ID, frames, ctx.Body.CourseID)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("verify_challenge", ctx.RequestID, err))
		return
	}
	response := dto.ChallengeVerdictResponse{
		Success:    verdict.Session.State == biometric.SessionPassed,
		Status:     string(verdict.Session.State),
		Reason:     verdict.Session.Reason,
		Session:    verdict.Session,
		Attendance: markResponse(verdict.Attendance),
	}
	if !response.Success {
		server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "liveness challenge failed", response, nil, &constants.LIVENESS_FAILED)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "liveness challenge passed", response, nil, &constants.LIVENESS_PASSED)
}
