package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rollcall.io/application/constants"
)

func TestOperationErrorUnwraps(t *testing.T) {
	err := Wrap("catalog.get_all", "req-1", ErrStoreUnavailable)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "catalog.get_all", opErr.Operation)
	assert.Equal(t, "catalog.get_all (request_id=req-1): store unavailable", err.Error())
	assert.Nil(t, Wrap("noop", "", nil))
}

func TestStoreAndModelErrorsKeepCause(t *testing.T) {
	cause := errors.New("connection reset")

	storeErr := StoreError("ledger.insert", cause)
	assert.ErrorIs(t, storeErr, ErrStoreUnavailable)
	assert.ErrorIs(t, storeErr, cause)

	modelErr := ModelError("remote.embed", cause)
	assert.ErrorIs(t, modelErr, ErrModelUnavailable)
	assert.ErrorIs(t, modelErr, cause)
	assert.NotErrorIs(t, modelErr, ErrStoreUnavailable)
}

func TestDimensionErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("enroll: %w", &DimensionError{Want: 512, Got: 128})
	assert.ErrorIs(t, err, ErrEmbeddingDimensionMismatch)
	assert.Contains(t, err.Error(), "want 512, got 128")
}

func TestClassifyDistinguishesFailureKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   *uint
		wantTag    string
	}{
		{"no face", Wrap("face.embed", "", ErrNoFaceDetected), http.StatusUnprocessableEntity, &constants.NO_FACE_DETECTED, "no_face"},
		{"model down", ModelError("remote.detect", errors.New("dial tcp")), http.StatusServiceUnavailable, &constants.MODEL_UNAVAILABLE, "error"},
		{"invalid image", ErrInvalidImage, http.StatusBadRequest, &constants.INVALID_IMAGE, "invalid_image"},
		{"store down", StoreError("ledger.insert", errors.New("timeout")), http.StatusServiceUnavailable, &constants.STORE_UNAVAILABLE, "error"},
		{"expired challenge", ErrChallengeExpired, http.StatusGone, &constants.CHALLENGE_EXPIRED, "expired"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, nil, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, outcome := Classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantTag, outcome.Status)
			assert.False(t, outcome.Success)
		})
	}
}
