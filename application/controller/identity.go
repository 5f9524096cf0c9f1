package controller

import (
	"encoding/base64"
	"net/http"
	"time"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/constants"
	"rollcall.io/application/controller/dto"
	"rollcall.io/application/interfaces"
	identity_usecases "rollcall.io/application/usecases/identity"
	"rollcall.io/entities"
	server_response "rollcall.io/infrastructure/serverResponse"
	"rollcall.io/infrastructure/validator"
)

func (c *Controller) EnrollIdentity(ctx *interfaces.ApplicationContext[dto.EnrollIdentityDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	result, err := c.Identity.Enroll(ctx.Context(), ctx.Body.Name, ctx.Body.ID, ctx.Body.Image)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("enroll", ctx.RequestID, err))
		return
	}
	response := dto.EnrollResponse{
		Status:  string(result.Status),
		Verdict: result.Verdict,
	}
	switch result.Status {
	case identity_usecases.Enrolled:
		response.Success = true
		response.Identity = profileResponse(result.Identity, false)
		server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "identity enrolled", response, nil, &constants.IDENTITY_ENROLLED)
	case identity_usecases.EnrollSpoof:
		response.Reason = "spoof detected"
		server_response.Responder.Respond(ctx.Ctx, http.StatusForbidden, response.Reason, response, nil, &constants.SPOOF_REJECTED)
	default:
		response.Reason = "liveness could not be verified"
		server_response.Responder.Respond(ctx.Ctx, http.StatusUnprocessableEntity, response.Reason, response, nil, &constants.LIVENESS_UNVERIFIABLE)
	}
}

func (c *Controller) VerifyIdentity(ctx *interfaces.ApplicationContext[dto.VerifyIdentityDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	result, err := c.Identity.Verify(ctx.Context(), ctx.Body.Image)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("verify", ctx.RequestID, err))
		return
	}
	response := dto.VerifyResponse{
		MatchedID:  result.Match.MatchedID,
		Name:       result.DisplayName,
		Similarity: result.Match.Similarity,
	}
	if result.Match.MatchedID == nil {
		response.Status = "no_match"
		response.Reason = "no matching identity"
		server_response.Responder.Respond(ctx.Ctx, http.StatusOK, response.Reason, response, nil, &constants.NO_MATCH_FOUND)
		return
	}
	response.Success = true
	response.Status = "matched"
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "identity matched", response, nil, nil)
}

func (c *Controller) IdentityProfile(ctx *interfaces.ApplicationContext[dto.IdentityIDDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	identity, err := c.Identity.Profile(ctx.Context(), ctx.Body.ID)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("profile", ctx.RequestID, err))
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "identity fetched", profileResponse(identity, true), nil, nil)
}

func (c *Controller) DeleteIdentity(ctx *interfaces.ApplicationContext[dto.IdentityIDDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	deleted, err := c.Identity.Delete(ctx.Context(), ctx.Body.ID)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("delete", ctx.RequestID, err))
		return
	}
	if !deleted {
		apperrors.NotFoundError(ctx.Ctx, "identity does not exist")
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "identity deleted", nil, nil, nil)
}

func (c *Controller) CountIdentities(ctx *interfaces.ApplicationContext[any]) {
	count, err := c.Identity.Count(ctx.Context())
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("count", ctx.RequestID, err))
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "identities counted", map[string]any{
		"count": count,
	}, nil, nil)
}

func profileResponse(identity *entities.EnrolledIdentity, withImage bool) *dto.IdentityProfileResponse {
	if identity == nil {
		return nil
	}
	response := &dto.IdentityProfileResponse{
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
		CreatedAt:   identity.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   identity.UpdatedAt.Format(time.RFC3339),
	}
	if withImage && len(identity.ImageData) > 0 {
		response.Image = base64.StdEncoding.EncodeToString(identity.ImageData)
		response.ImageType = identity.ImageType
	}
	return response
}
