package controller

import (
	"net/http"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/constants"
	"rollcall.io/application/controller/dto"
	"rollcall.io/application/interfaces"
	attendance_usecases "rollcall.io/application/usecases/attendance"
	server_response "rollcall.io/infrastructure/serverResponse"
	"rollcall.io/infrastructure/validator"
)

func (c *Controller) MarkAttendance(ctx *interfaces.ApplicationContext[dto.MarkAttendanceDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	result, err := c.Attendance.MarkFromImage(ctx.Context(), ctx.Body.CourseID, ctx.Body.Image)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("mark_attendance", ctx.RequestID, err))
		return
	}
	respondWithMark(ctx.Ctx, result)
}

// ManualMark records attendance for an identity matched outside this request.
func (c *Controller) ManualMark(ctx *interfaces.ApplicationContext[dto.ManualMarkDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	result, err := c.Attendance.MarkIdentity(ctx.Context(), ctx.Body.Date, ctx.Body.CourseID, ctx.Body.IdentityID, ctx.Body.Similarity)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("manual_mark", ctx.RequestID, err))
		return
	}
	respondWithMark(ctx.Ctx, result)
}

func (c *Controller) AttendanceReport(ctx *interfaces.ApplicationContext[dto.AttendanceQueryDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	var (
		payload any
		err     error
	)
	switch {
	case ctx.Body.CourseID != "" && ctx.Body.IdentityID != "":
		apperrors.ClientError(ctx.Ctx, "filter by courseId or identityId, not both", nil, nil)
		return
	case ctx.Body.CourseID != "":
		payload, err = c.Attendance.ByDateAndCourse(ctx.Context(), ctx.Body.Date, ctx.Body.CourseID)
	case ctx.Body.IdentityID != "":
		payload, err = c.Attendance.ByDateAndIdentity(ctx.Context(), ctx.Body.Date, ctx.Body.IdentityID)
	default:
		payload, err = c.Attendance.ByDate(ctx.Context(), ctx.Body.Date)
	}
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("attendance_report", ctx.RequestID, err))
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "attendance fetched", payload, nil, nil)
}

func (c *Controller) AttendanceStats(ctx *interfaces.ApplicationContext[dto.AttendanceStatsDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr)
		return
	}
	count, err := c.Counts.Count(ctx.Context(), ctx.Body.Date, ctx.Body.CourseID)
	if err != nil {
		apperrors.RespondWithError(ctx.Ctx, apperrors.Wrap("attendance_stats", ctx.RequestID, err))
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "attendance counted", map[string]any{
		"date":     ctx.Body.Date,
		"courseId": ctx.Body.CourseID,
		"count":    count,
	}, nil, nil)
}

func markResponse(result *attendance_usecases.MarkResult) *dto.MarkResponse {
	if result == nil {
		return nil
	}
	return &dto.MarkResponse{
		Success:    result.Success,
		Status:     string(result.Status),
		Reason:     result.Reason,
		Similarity: result.Similarity,
		Date:       result.Date,
		CourseID:   result.CourseID,
		IdentityID: result.IdentityID,
		Name:       result.DisplayName,
		Verdict:    result.Verdict,
	}
}

func respondWithMark(ctx any, result *attendance_usecases.MarkResult) {
	response := markResponse(result)
	switch result.Status {
	case attendance_usecases.StatusMarked:
		server_response.Responder.Respond(ctx, http.StatusCreated, "attendance marked", response, nil, &constants.ATTENDANCE_MARKED)
	case attendance_usecases.StatusDuplicate:
		server_response.Responder.Respond(ctx, http.StatusOK, result.Reason, response, nil, &constants.ATTENDANCE_DUPLICATE)
	case attendance_usecases.StatusUnmarked:
		server_response.Responder.Respond(ctx, http.StatusOK, result.Reason, response, nil, &constants.NO_MATCH_FOUND)
	case attendance_usecases.StatusSpoof:
		server_response.Responder.Respond(ctx, http.StatusForbidden, result.Reason, response, nil, &constants.SPOOF_REJECTED)
	default:
		server_response.Responder.Respond(ctx, http.StatusUnprocessableEntity, result.Reason, response, nil, &constants.LIVENESS_UNVERIFIABLE)
	}
}
