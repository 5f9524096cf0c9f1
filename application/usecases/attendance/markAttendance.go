package attendance_usecases

import (
	"context"
	"errors"
	"time"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/services/ledger"
	"rollcall.io/application/utils"
	"rollcall.io/entities"
	"rollcall.io/infrastructure/biometric/types"
	"rollcall.io/infrastructure/logger"
)

type FaceAnalyzer interface {
	Embed(ctx context.Context, data []byte) ([]float32, error)
	CheckSpoof(ctx context.Context, data []byte) (types.SpoofVerdict, error)
}

type IdentityCatalog interface {
	Match(ctx context.Context, query []float32) (types.MatchResult, error)
	Get(ctx context.Context, id string) (entities.EnrolledIdentity, error)
}

// AttendanceEvents is told about every newly inserted record.
type AttendanceEvents interface {
	AttendanceMarked(ctx context.Context, date string, courseID string, identityID string) error
}

type AttendanceUseCase struct {
	Faces             FaceAnalyzer
	Catalog           IdentityCatalog
	Ledger            *ledger.Ledger
	Events            AttendanceEvents
	Location          *time.Location
	RequireSpoofCheck bool
	Now               func() time.Time
}

type MarkStatus string

const (
	StatusMarked       MarkStatus = "marked"
	StatusDuplicate    MarkStatus = "duplicate"
	StatusUnmarked     MarkStatus = "unmarked"
	StatusSpoof        MarkStatus = "spoof"
	StatusUnverifiable MarkStatus = "unverifiable"
)

type MarkResult struct {
	Success     bool
	Status      MarkStatus
	Date        string
	CourseID    string
	IdentityID  string
	DisplayName string
	Similarity  *float64
	Verdict     *types.SpoofVerdict
	Reason      string
}

// MarkFromImage runs the spoof gate, identifies the face and records
// attendance for today's date in the configured zone.
func (u *AttendanceUseCase) MarkFromImage(ctx context.Context, courseID string, image []byte) (*MarkResult, error) {
	date := utils.AttendanceDate(u.now(), u.Location)
	result := &MarkResult{Date: date, CourseID: utils.NormalizeCourse(courseID)}

	if u.RequireSpoofCheck {
		verdict, err := u.Faces.CheckSpoof(ctx, image)
		if err != nil {
			return nil, err
		}
		result.Verdict = &verdict
		switch verdict.Overall {
		case types.SpoofLabelSpoof:
			result.Status = StatusSpoof
			result.Reason = "spoof detected"
			return result, nil
		case types.SpoofLabelNoFace, types.SpoofLabelUnknown:
			result.Status = StatusUnverifiable
			result.Reason = "liveness could not be verified"
			return result, nil
		}
	}

	embedding, err := u.Faces.Embed(ctx, image)
	if err != nil {
		return nil, err
	}
	match, err := u.Catalog.Match(ctx, embedding)
	if err != nil {
		return nil, err
	}
	similarity := match.Similarity
	result.Similarity = &similarity
	if match.MatchedID == nil {
		result.Status = StatusUnmarked
		result.Reason = "no matching identity"
		return result, nil
	}

	identity, err := u.Catalog.Get(ctx, *match.MatchedID)
	if err != nil {
		// deleted between match and lookup
		if errors.Is(err, apperrors.ErrNotFound) {
			result.Status = StatusUnmarked
			result.Reason = "no matching identity"
			return result, nil
		}
		return nil, err
	}
	return u.mark(ctx, result, identity.ID, identity.DisplayName, similarity)
}

// MarkIdentity records attendance for an already verified identity.
func (u *AttendanceUseCase) MarkIdentity(ctx context.Context, date string, courseID string, identityID string, similarity float64) (*MarkResult, error) {
	identity, err := u.Catalog.Get(ctx, identityID)
	if err != nil {
		return nil, err
	}
	result := &MarkResult{Date: date, CourseID: utils.NormalizeCourse(courseID), Similarity: &similarity}
	return u.mark(ctx, result, identity.ID, identity.DisplayName, similarity)
}

func (u *AttendanceUseCase) mark(ctx context.Context, result *MarkResult, identityID string, displayName string, similarity float64) (*MarkResult, error) {
	outcome, err := u.Ledger.Mark(ctx, result.Date, result.CourseID, identityID, entities.AttendanceRecord{
		DisplayName: displayName,
		Similarity:  similarity,
		Timestamp:   u.now(),
	})
	if err != nil {
		return nil, err
	}
	result.IdentityID = identityID
	result.DisplayName = displayName
	if outcome == ledger.Duplicate {
		result.Status = StatusDuplicate
		result.Reason = "attendance already marked"
		return result, nil
	}

	result.Success = true
	result.Status = StatusMarked
	if u.Events != nil {
		if err := u.Events.AttendanceMarked(ctx, result.Date, result.CourseID, identityID); err != nil {
			// counters are best effort, the ledger is the record
			logger.Warning("could not publish attendance event", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
	}
	return result, nil
}

func (u *AttendanceUseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}
