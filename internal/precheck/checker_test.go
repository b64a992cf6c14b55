package precheck

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

// fakeOracle records calls and serves canned results. When gate is set for a
// request's start time, the call blocks until that channel closes, letting
// tests control response ordering.
type fakeOracle struct {
	mu      sync.Mutex
	calls   []models.ConflictCheckRequest
	results map[string]*models.ConflictCheckResult
	errs    map[string]error
	gates   map[string]chan struct{}
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		results: make(map[string]*models.ConflictCheckResult),
		errs:    make(map[string]error),
		gates:   make(map[string]chan struct{}),
	}
}

func (f *fakeOracle) CheckConflicts(ctx context.Context, classGroupID string, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate := f.gates[req.StartTime]
	result := f.results[req.StartTime]
	err := f.errs[req.StartTime]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if result == nil {
		return &models.ConflictCheckResult{HasConflict: false}, nil
	}
	cp := *result
	return &cp, nil
}

func (f *fakeOracle) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func candidate(day models.Weekday, start, end string) models.TimetableEntry {
	return models.TimetableEntry{
		Day:       day,
		Name:      "Algorithms",
		Location:  "Room101",
		StartTime: start,
		EndTime:   end,
		Type:      models.EntryLecture,
	}
}

func TestCheckNowCleanAdd(t *testing.T) {
	oracle := newFakeOracle()
	checker := NewChecker(oracle, time.Millisecond, zap.NewNop())

	result := checker.CheckNow(context.Background(), Request{
		ClassGroupID: "cg-1",
		Candidate:    candidate(models.Monday, "09:00", "10:00"),
		EditIndex:    -1,
	})

	require.NotNil(t, result)
	assert.False(t, result.HasConflict)
	assert.Equal(t, 1, oracle.callCount())
}

func TestCheckNowInsufficientInput(t *testing.T) {
	oracle := newFakeOracle()
	checker := NewChecker(oracle, time.Millisecond, zap.NewNop())

	assert.Nil(t, checker.CheckNow(context.Background(), Request{
		Candidate: candidate(models.Monday, "", "10:00"),
		EditIndex: -1,
	}))
	assert.Nil(t, checker.CheckNow(context.Background(), Request{
		Candidate: candidate(models.Monday, "10:00", "10:00"),
		EditIndex: -1,
	}))
	assert.Equal(t, 0, oracle.callCount())
}

func TestCheckNowTimeFormatShortCircuits(t *testing.T) {
	oracle := newFakeOracle()
	checker := NewChecker(oracle, time.Millisecond, zap.NewNop())

	result := checker.CheckNow(context.Background(), Request{
		ClassGroupID: "cg-1",
		Candidate:    candidate(models.Monday, "09:30", "10:30"),
		EditIndex:    -1,
	})

	require.NotNil(t, result)
	assert.True(t, result.HasConflict)
	assert.Equal(t, []models.ConflictType{models.ConflictTimeFormat}, result.ConflictType)
	assert.Empty(t, result.AffectedUsers)
	assert.Empty(t, result.Alternatives)
	assert.Equal(t, 0, oracle.callCount(), "format errors must not reach the oracle")
}

func TestCheckNowLocalOverlapShortCircuits(t *testing.T) {
	oracle := newFakeOracle()
	checker := NewChecker(oracle, time.Millisecond, zap.NewNop())

	staged := []models.TimetableEntry{candidate(models.Monday, "09:00", "10:00")}
	result := checker.CheckNow(context.Background(), Request{
		ClassGroupID: "cg-1",
		Candidate:    candidate(models.Monday, "09:00", "11:00"),
		Staged:       staged,
		EditIndex:    -1,
	})

	require.NotNil(t, result)
	assert.True(t, result.HasConflict)
	assert.Equal(t, []models.ConflictType{models.ConflictLocal}, result.ConflictType)
	assert.Equal(t, "This time slot conflicts with another entry in the current timetable.", result.Message)
	assert.Equal(t, 0, oracle.callCount(), "local clashes must not reach the oracle")
}

func TestCheckNowOracleFailureIsUndetermined(t *testing.T) {
	oracle := newFakeOracle()
	oracle.errs["09:00"] = context.DeadlineExceeded
	checker := NewChecker(oracle, time.Millisecond, zap.NewNop())

	result := checker.CheckNow(context.Background(), Request{
		ClassGroupID: "cg-1",
		Candidate:    candidate(models.Monday, "09:00", "10:00"),
		EditIndex:    -1,
	})

	assert.Nil(t, result, "transport failure yields no verdict, not a conflict")
}

func TestCheckNowFiltersAlternatives(t *testing.T) {
	oracle := newFakeOracle()
	oracle.results["09:00"] = &models.ConflictCheckResult{
		HasConflict:  true,
		Message:      "room busy",
		ConflictType: []models.ConflictType{models.ConflictClassroom},
		Alternatives: []models.AlternativeSlot{
			{Day: models.Monday, StartTime: "09:30", EndTime: "10:30", Label: "bad"},
			{Day: models.Monday, StartTime: "10:00", EndTime: "12:00", Label: "good"},
		},
	}
	checker := NewChecker(oracle, time.Millisecond, zap.NewNop())

	result := checker.CheckNow(context.Background(), Request{
		ClassGroupID: "cg-1",
		Candidate:    candidate(models.Monday, "09:00", "10:00"),
		EditIndex:    -1,
	})

	require.NotNil(t, result)
	require.Len(t, result.Alternatives, 1)
	assert.Equal(t, "good", result.Alternatives[0].Label)
}

func TestSubmitDebouncesRapidChanges(t *testing.T) {
	oracle := newFakeOracle()
	checker := NewChecker(oracle, 50*time.Millisecond, zap.NewNop())
	defer checker.Close()

	var mu sync.Mutex
	var delivered []*models.ConflictCheckResult
	deliver := func(r *models.ConflictCheckResult) {
		mu.Lock()
		delivered = append(delivered, r)
		mu.Unlock()
	}

	// Three rapid changes within the debounce window.
	checker.Submit(Request{ClassGroupID: "cg-1", Candidate: candidate(models.Monday, "09:00", "10:00"), EditIndex: -1}, deliver)
	checker.Submit(Request{ClassGroupID: "cg-1", Candidate: candidate(models.Monday, "10:00", "11:00"), EditIndex: -1}, deliver)
	checker.Submit(Request{ClassGroupID: "cg-1", Candidate: candidate(models.Monday, "11:00", "12:00"), EditIndex: -1}, deliver)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 1
	}, time.Second, 5*time.Millisecond)

	require.Equal(t, 1, oracle.callCount(), "only the last change reaches the oracle")
	oracle.mu.Lock()
	assert.Equal(t, "11:00", oracle.calls[0].StartTime)
	oracle.mu.Unlock()
}

func TestSubmitDiscardsStaleResponses(t *testing.T) {
	oracle := newFakeOracle()
	gate := make(chan struct{})
	oracle.gates["09:00"] = gate
	oracle.results["09:00"] = &models.ConflictCheckResult{
		HasConflict:  true,
		Message:      "stale verdict",
		ConflictType: []models.ConflictType{models.ConflictClassroom},
	}

	checker := NewChecker(oracle, 5*time.Millisecond, zap.NewNop())
	defer checker.Close()

	var mu sync.Mutex
	var delivered []*models.ConflictCheckResult
	deliver := func(r *models.ConflictCheckResult) {
		mu.Lock()
		delivered = append(delivered, r)
		mu.Unlock()
	}

	// First submission's oracle call hangs on the gate.
	checker.Submit(Request{ClassGroupID: "cg-1", Candidate: candidate(models.Monday, "09:00", "10:00"), EditIndex: -1}, deliver)
	assert.Eventually(t, func() bool { return oracle.callCount() == 1 }, time.Second, time.Millisecond)

	// Second submission supersedes it and resolves immediately.
	checker.Submit(Request{ClassGroupID: "cg-1", Candidate: candidate(models.Monday, "11:00", "12:00"), EditIndex: -1}, deliver)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(delivered) == 1
	}, time.Second, time.Millisecond)

	// Now let the first call's response arrive late.
	close(gate)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, delivered, 1, "stale response must be discarded")
	require.NotNil(t, delivered[0])
	assert.False(t, delivered[0].HasConflict)
}

func TestSubmitDeliversLocalVerdictSynchronously(t *testing.T) {
	oracle := newFakeOracle()
	checker := NewChecker(oracle, time.Hour, zap.NewNop())
	defer checker.Close()

	var got *models.ConflictCheckResult
	checker.Submit(Request{
		ClassGroupID: "cg-1",
		Candidate:    candidate(models.Monday, "09:15", "10:15"),
		EditIndex:    -1,
	}, func(r *models.ConflictCheckResult) { got = r })

	require.NotNil(t, got)
	assert.Equal(t, []models.ConflictType{models.ConflictTimeFormat}, got.ConflictType)
}

func TestCloseStopsPendingChecks(t *testing.T) {
	oracle := newFakeOracle()
	checker := NewChecker(oracle, 10*time.Millisecond, zap.NewNop())

	checker.Submit(Request{ClassGroupID: "cg-1", Candidate: candidate(models.Monday, "09:00", "10:00"), EditIndex: -1}, func(*models.ConflictCheckResult) {
		t.Error("delivery after Close")
	})
	checker.Close()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, oracle.callCount())
}
