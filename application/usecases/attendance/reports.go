package attendance_usecases

import (
	"context"

	"rollcall.io/entities"
)

func (u *AttendanceUseCase) ByDate(ctx context.Context, date string) (map[string]map[string]entities.AttendanceRecord, error) {
	return u.Ledger.ByDate(ctx, date)
}

func (u *AttendanceUseCase) ByDateAndCourse(ctx context.Context, date string, courseID string) (map[string]entities.AttendanceRecord, error) {
	return u.Ledger.ByDateAndCourse(ctx, date, courseID)
}

func (u *AttendanceUseCase) ByDateAndIdentity(ctx context.Context, date string, identityID string) (map[string]entities.AttendanceRecord, error) {
	return u.Ledger.ByDateAndIdentity(ctx, date, identityID)
}
