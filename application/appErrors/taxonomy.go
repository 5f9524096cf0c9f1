package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable means a model collaborator failed to initialise or answer.
	// It is fatal for the request and is not retried automatically.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrNoFaceDetected means the locator returned no usable face.
	ErrNoFaceDetected = errors.New("no face detected")
	// ErrInvalidImage means undecodable bytes or an unsupported content type.
	ErrInvalidImage = errors.New("invalid image")
	// ErrEmbeddingDimensionMismatch means a vector does not have the configured length.
	ErrEmbeddingDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrStoreUnavailable is transient. The caller may retry the whole request.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotFound is returned by stores for absent single-entity lookups.
	ErrNotFound = errors.New("not found")
	// ErrChallengeExpired means the challenge id is unknown, already used or expired.
	ErrChallengeExpired = errors.New("challenge expired")
	// ErrInvalidCredentials is returned by operator login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAlreadyExists is returned when a unique entity is created twice.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidKey means an id or course cannot be used as a storage key.
	ErrInvalidKey = errors.New("invalid key")
)

// OperationError annotates an error with where it happened.
type OperationError struct {
	Operation string
	RequestID string
	Err       error
}

func (e *OperationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.RequestID != "" {
		return fmt.Sprintf("%s (request_id=%s): %v", e.Operation, e.RequestID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Wrap returns nil for a nil err.
func Wrap(operation, requestID string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, RequestID: requestID, Err: err}
}

// DimensionError carries the lengths involved in a dimension mismatch.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrEmbeddingDimensionMismatch, e.Want, e.Got)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrEmbeddingDimensionMismatch
}

// StoreError marks err as a transient storage failure while keeping its cause.
func StoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, Err: fmt.Errorf("%w: %w", ErrStoreUnavailable, err)}
}

// ModelError marks err as a model collaborator failure while keeping its cause.
func ModelError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, Err: fmt.Errorf("%w: %w", ErrModelUnavailable, err)}
}
