package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/entities"
)

var fixed = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newLedger() *Ledger {
	l := New(NewMemoryStore())
	l.Now = func() time.Time { return fixed }
	return l
}

func record(name string, similarity float64) entities.AttendanceRecord {
	return entities.AttendanceRecord{DisplayName: name, Similarity: similarity}
}

func TestMarkFirstWriteWins(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	outcome, err := l.Mark(ctx, "2024-03-01", "CS101", "R01", record("Ada", 0.9))
	require.NoError(t, err)
	assert.Equal(t, Inserted, outcome)

	outcome, err = l.Mark(ctx, "2024-03-01", "CS101", " r01 ", record("Someone Else", 0.7))
	require.NoError(t, err)
	assert.Equal(t, Duplicate, outcome)

	students, err := l.ByDateAndCourse(ctx, "2024-03-01", "CS101")
	require.NoError(t, err)
	require.Len(t, students, 1)
	stored := students["r01"]
	assert.Equal(t, "Ada", stored.DisplayName)
	assert.Equal(t, 0.9, stored.Similarity)
	assert.Equal(t, "r01", stored.IdentityID)
	assert.Equal(t, entities.AttendanceStatusMarked, stored.Status)
	assert.Equal(t, fixed, stored.Timestamp)
}

func TestMarkKeysAreIndependent(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	for _, key := range []struct{ date, course, id string }{
		{"2024-03-01", "CS101", "r01"},
		{"2024-03-02", "CS101", "r01"},
		{"2024-03-01", "MA201", "r01"},
		{"2024-03-01", "CS101", "r02"},
	} {
		outcome, err := l.Mark(ctx, key.date, key.course, key.id, record("x", 0.8))
		require.NoError(t, err)
		assert.Equal(t, Inserted, outcome)
	}

	byIdentity, err := l.ByDateAndIdentity(ctx, "2024-03-01", "R01")
	require.NoError(t, err)
	assert.Len(t, byIdentity, 2)
	assert.Contains(t, byIdentity, "CS101")
	assert.Contains(t, byIdentity, "MA201")

	byDate, err := l.ByDate(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Len(t, byDate, 2)
	assert.Len(t, byDate["CS101"], 2)
}

func TestConcurrentMarksInsertExactlyOnce(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	const writers = 64
	outcomes := make(chan MarkOutcome, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := l.Mark(ctx, "2024-03-01", "CS101", "R01", record("Ada", 0.9))
			assert.NoError(t, err)
			outcomes <- outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	inserted := 0
	for outcome := range outcomes {
		if outcome == Inserted {
			inserted++
		}
	}
	assert.Equal(t, 1, inserted)
}

func TestReadsOnEmptyLedgerAreEmpty(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	byDate, err := l.ByDate(ctx, "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, byDate)

	byCourse, err := l.ByDateAndCourse(ctx, "2024-03-01", "CS101")
	require.NoError(t, err)
	assert.Empty(t, byCourse)

	byIdentity, err := l.ByDateAndIdentity(ctx, "2024-03-01", "r01")
	require.NoError(t, err)
	assert.Empty(t, byIdentity)
}

func TestMarkRejectsUnsafeKeys(t *testing.T) {
	l := newLedger()
	tests := []struct {
		name, date, course, id string
	}{
		{"bad date", "01-03-2024", "CS101", "r01"},
		{"dotted course", "2024-03-01", "CS.101", "r01"},
		{"operator identity", "2024-03-01", "CS101", "$set"},
		{"blank identity", "2024-03-01", "CS101", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Mark(context.Background(), tt.date, tt.course, tt.id, record("x", 0.8))
			assert.True(t, errors.Is(err, apperrors.ErrInvalidKey))
		})
	}
}

type failingStore struct{ MemoryStore }

func (*failingStore) InsertIfAbsent(ctx context.Context, key entities.AttendanceKey, record entities.AttendanceRecord) (bool, error) {
	return false, apperrors.StoreError("insert", errors.New("timeout"))
}

func TestStoreFailureIsReportedNotSwallowed(t *testing.T) {
	l := New(&failingStore{})
	_, err := l.Mark(context.Background(), "2024-03-01", "CS101", "r01", record("x", 0.8))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStoreUnavailable))
}
