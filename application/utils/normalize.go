package utils

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// DateLayout is the calendar-day key used by the attendance ledger.
const DateLayout = "2006-01-02"

// NormalizeID trims surrounding whitespace and case-folds an identity key.
// Every catalog and ledger access goes through it so keys never diverge.
func NormalizeID(id string) string {
	// cases.Caser keeps state, so one is built per call
	return cases.Fold().String(strings.TrimSpace(id))
}

// NormalizeName trims a display name without touching its case.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeCourse trims a course key. Course ids keep their case.
func NormalizeCourse(course string) string {
	return strings.TrimSpace(course)
}

// AttendanceDate formats t as the day key in loc.
func AttendanceDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// IsDate reports whether s is a valid YYYY-MM-DD day key.
func IsDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsStorageKey reports whether a normalized key can be used as a document
// field name: non-empty, no '.', no leading '$'.
func IsStorageKey(key string) bool {
	return key != "" && !strings.Contains(key, ".") && !strings.HasPrefix(key, "$")
}
