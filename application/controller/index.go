package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	attendance_usecases "rollcall.io/application/usecases/attendance"
	auth_usecases "rollcall.io/application/usecases/auth"
	identity_usecases "rollcall.io/application/usecases/identity"
	liveness_usecases "rollcall.io/application/usecases/liveness"
)

// MaxImageSize caps a single uploaded image.
const MaxImageSize = 10 << 20

var errImageMissing = errors.New("image file is required")

type AttendanceCounts interface {
	Count(ctx context.Context, date string, courseID string) (int64, error)
}

type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// Controller holds the use cases every handler talks to.
type Controller struct {
	Identity   *identity_usecases.IdentityUseCase
	Attendance *attendance_usecases.AttendanceUseCase
	Liveness   *liveness_usecases.LivenessUseCase
	Operators  *auth_usecases.OperatorUseCase
	Counts     AttendanceCounts
	Health     HealthChecker
	Version    string
}

// ReadImage loads the multipart file sent under field.
func ReadImage(ctx *gin.Context, field string) ([]byte, error) {
	header, err := ctx.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, errImageMissing
		}
		return nil, err
	}
	if header.Size > MaxImageSize {
		return nil, fmt.Errorf("image is larger than %d bytes", MaxImageSize)
	}
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(io.LimitReader(file, MaxImageSize))
}

func IsImageMissing(err error) bool {
	return errors.Is(err, errImageMissing)
}
