package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"rollcall.io/application/constants"
	"rollcall.io/infrastructure/logger"
	server_response "rollcall.io/infrastructure/serverResponse"
)

func NotFoundError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusNotFound, message, nil, nil, nil)
}

func ValidationFailedError(ctx interface{}, errMessages *[]error) {
	server_response.Responder.Respond(ctx, http.StatusUnprocessableEntity, "Payload validation failed 🙄", nil, *errMessages, nil)
}

func EntityAlreadyExistsError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusConflict, message, nil, nil, nil)
}

func AuthenticationError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusUnauthorized, message, nil, nil, nil)
}

func AuthorizationError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusForbidden, message, nil, nil, nil)
}

func ExternalDependencyError(ctx interface{}, serviceName string, err error, responseCode *uint) {
	logger.Error(fmt.Sprintf("error with %s", serviceName), logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusServiceUnavailable,
		"Our face service is temporarily down 😢. Please check back later.", nil, nil, responseCode)
}

func ErrorProcessingPayload(ctx interface{}) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, "Abnormal payload passed 🤨", nil, nil, nil)
}

func FatalServerError(ctx interface{}, err error) {
	logger.Error("fatal server error", logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusInternalServerError,
		"Something went wrong on our side 😢. Please check back later.", nil, nil, nil)
}

func UnknownError(ctx interface{}, err error, responseCode *uint) {
	logger.Error("unknown error", logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusBadRequest,
		"Something went wrong somewhere 😭. Please check back later.", nil, nil, responseCode)
}

func CustomError(ctx interface{}, msg string, responseCode *uint) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, nil, nil, responseCode)
}

func ClientError(ctx interface{}, msg string, errs []error, responseCode *uint) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, nil, errs, responseCode)
}

// Outcome is the tagged body every face endpoint answers with.
type Outcome struct {
	Success    bool     `json:"success"`
	Status     string   `json:"status"`
	Reason     string   `json:"reason,omitempty"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// RespondWithError maps the error taxonomy to a status code and a tagged outcome so
// clients can tell "no face" from "model down" from "no match" without parsing text.
func RespondWithError(ctx interface{}, err error) {
	status, code, outcome := Classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
	server_response.Responder.Respond(ctx, status, outcome.Reason, outcome, nil, code)
}

// Classify is exported for handler tests.
func Classify(err error) (int, *uint, Outcome) {
	switch {
	case errors.Is(err, ErrNoFaceDetected):
		return http.StatusUnprocessableEntity, &constants.NO_FACE_DETECTED, Outcome{Status: "no_face", Reason: "no face detected"}
	case errors.Is(err, ErrInvalidImage):
		return http.StatusBadRequest, &constants.INVALID_IMAGE, Outcome{Status: "invalid_image", Reason: "only decodable JPG/PNG images are accepted"}
	case errors.Is(err, ErrEmbeddingDimensionMismatch):
		return http.StatusInternalServerError, &constants.EMBEDDING_MISMATCH, Outcome{Status: "error", Reason: "embedding dimension mismatch"}
	case errors.Is(err, ErrModelUnavailable):
		return http.StatusServiceUnavailable, &constants.MODEL_UNAVAILABLE, Outcome{Status: "error", Reason: "face models are unavailable"}
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable, &constants.STORE_UNAVAILABLE, Outcome{Status: "error", Reason: "storage is temporarily unavailable"}
	case errors.Is(err, ErrChallengeExpired):
		return http.StatusGone, &constants.CHALLENGE_EXPIRED, Outcome{Status: "expired", Reason: "challenge is unknown, used or expired"}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, nil, Outcome{Status: "not_found", Reason: "not found"}
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, nil, Outcome{Status: "unauthorised", Reason: "invalid credentials"}
	case errors.Is(err, ErrInvalidKey):
		return http.StatusBadRequest, nil, Outcome{Status: "invalid_key", Reason: "ids and courses may not contain '.' or start with '$'"}
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict, nil, Outcome{Status: "exists", Reason: "already exists"}
	default:
		return http.StatusInternalServerError, nil, Outcome{Status: "error", Reason: "internal server error"}
	}
}
