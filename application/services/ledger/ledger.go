// Package ledger records at most one attendance fact per day, course and identity.
package ledger

import (
	"context"
	"fmt"
	"time"

	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/utils"
	"rollcall.io/entities"
)

type MarkOutcome string

const (
	Inserted  MarkOutcome = "inserted"
	Duplicate MarkOutcome = "duplicate"
)

// LedgerStore is the persistence behind the ledger. InsertIfAbsent must be
// atomic per key: of any number of concurrent calls for one key exactly one
// reports true.
type LedgerStore interface {
	InsertIfAbsent(ctx context.Context, key entities.AttendanceKey, record entities.AttendanceRecord) (bool, error)
	ByDate(ctx context.Context, date string) (map[string]map[string]entities.AttendanceRecord, error)
	ByDateAndCourse(ctx context.Context, date string, courseID string) (map[string]entities.AttendanceRecord, error)
	ByDateAndIdentity(ctx context.Context, date string, identityID string) (map[string]entities.AttendanceRecord, error)
}

type Ledger struct {
	Store LedgerStore
	Now   func() time.Time
}

func New(store LedgerStore) *Ledger {
	return &Ledger{Store: store, Now: time.Now}
}

// Mark writes record under (date, courseID, identityID) unless one is
// already there. An existing record is never modified.
func (l *Ledger) Mark(ctx context.Context, date string, courseID string, identityID string, record entities.AttendanceRecord) (MarkOutcome, error) {
	key, err := makeKey(date, courseID, identityID)
	if err != nil {
		return "", err
	}
	record.IdentityID = key.IdentityID
	record.DisplayName = utils.NormalizeName(record.DisplayName)
	record.Status = entities.AttendanceStatusMarked
	if record.Timestamp.IsZero() {
		record.Timestamp = l.now()
	}

	inserted, err := l.Store.InsertIfAbsent(ctx, key, record)
	if err != nil {
		return "", apperrors.Wrap("ledger.mark", "", err)
	}
	if inserted {
		return Inserted, nil
	}
	return Duplicate, nil
}

func (l *Ledger) ByDate(ctx context.Context, date string) (map[string]map[string]entities.AttendanceRecord, error) {
	if !utils.IsDate(date) {
		return nil, fmt.Errorf("%w: date %q", apperrors.ErrInvalidKey, date)
	}
	return l.Store.ByDate(ctx, date)
}

func (l *Ledger) ByDateAndCourse(ctx context.Context, date string, courseID string) (map[string]entities.AttendanceRecord, error) {
	key, err := makeKey(date, courseID, "_")
	if err != nil {
		return nil, err
	}
	return l.Store.ByDateAndCourse(ctx, key.Date, key.CourseID)
}

// ByDateAndIdentity returns the identity's records for the day keyed by course.
func (l *Ledger) ByDateAndIdentity(ctx context.Context, date string, identityID string) (map[string]entities.AttendanceRecord, error) {
	key, err := makeKey(date, "_", identityID)
	if err != nil {
		return nil, err
	}
	return l.Store.ByDateAndIdentity(ctx, key.Date, key.IdentityID)
}

func (l *Ledger) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

func makeKey(date string, courseID string, identityID string) (entities.AttendanceKey, error) {
	key := entities.AttendanceKey{
		Date:       date,
		CourseID:   utils.NormalizeCourse(courseID),
		IdentityID: utils.NormalizeID(identityID),
	}
	if !utils.IsDate(key.Date) {
		return key, fmt.Errorf("%w: date %q", apperrors.ErrInvalidKey, date)
	}
	if !utils.IsStorageKey(key.CourseID) {
		return key, fmt.Errorf("%w: course %q", apperrors.ErrInvalidKey, courseID)
	}
	if !utils.IsStorageKey(key.IdentityID) {
		return key, fmt.Errorf("%w: identity %q", apperrors.ErrInvalidKey, identityID)
	}
	return key, nil
}
