package ledger

import (
	"context"
	"sync"

	"rollcall.io/entities"
)

// MemoryStore is a LedgerStore held in process memory. It backs tests and
// single node runs without a database.
type MemoryStore struct {
	mu   sync.Mutex
	days map[string]map[string]map[string]entities.AttendanceRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: map[string]map[string]map[string]entities.AttendanceRecord{}}
}

func (s *MemoryStore) InsertIfAbsent(ctx context.Context, key entities.AttendanceKey, record entities.AttendanceRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	courses, ok := s.days[key.Date]
	if !ok {
		courses = map[string]map[string]entities.AttendanceRecord{}
		s.days[key.Date] = courses
	}
	students, ok := courses[key.CourseID]
	if !ok {
		students = map[string]entities.AttendanceRecord{}
		courses[key.CourseID] = students
	}
	if _, exists := students[key.IdentityID]; exists {
		return false, nil
	}
	students[key.IdentityID] = record
	return true, nil
}

func (s *MemoryStore) ByDate(ctx context.Context, date string) (map[string]map[string]entities.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]map[string]entities.AttendanceRecord{}
	for course, students := range s.days[date] {
		out[course] = copyStudents(students)
	}
	return out, nil
}

func (s *MemoryStore) ByDateAndCourse(ctx context.Context, date string, courseID string) (map[string]entities.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyStudents(s.days[date][courseID]), nil
}

func (s *MemoryStore) ByDateAndIdentity(ctx context.Context, date string, identityID string) (map[string]entities.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]entities.AttendanceRecord{}
	for course, students := range s.days[date] {
		if record, ok := students[identityID]; ok {
			out[course] = record
		}
	}
	return out, nil
}

func copyStudents(students map[string]entities.AttendanceRecord) map[string]entities.AttendanceRecord {
	out := make(map[string]entities.AttendanceRecord, len(students))
	for id, record := range students {
		out[id] = record
	}
	return out
}
