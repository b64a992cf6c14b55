package precheck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/timeslot"
)

func newTestSession(oracle Oracle, staged []models.TimetableEntry) *Session {
	checker := NewChecker(oracle, time.Millisecond, zap.NewNop())
	return NewSession("cg-1", staged, checker)
}

func TestSessionStartsEmpty(t *testing.T) {
	session := newTestSession(newFakeOracle(), nil)
	defer session.Close()

	assert.Equal(t, StateEmpty, session.State())
	assert.False(t, session.CanAdd())
}

func TestSessionIncompleteCandidateStaysEmpty(t *testing.T) {
	session := newTestSession(newFakeOracle(), nil)
	defer session.Close()

	session.UpdateCandidate(models.TimetableEntry{Day: models.Monday, StartTime: "09:00"})
	assert.Equal(t, StateEmpty, session.State())

	session.UpdateCandidate(candidate(models.Monday, "10:00", "10:00"))
	assert.Equal(t, StateEmpty, session.State())
}

func TestSessionCleanAddFlow(t *testing.T) {
	session := newTestSession(newFakeOracle(), nil)
	defer session.Close()

	session.UpdateCandidate(candidate(models.Monday, "09:00", "10:00"))

	assert.Eventually(t, func() bool { return session.State() == StateClear }, time.Second, time.Millisecond)
	assert.True(t, session.CanAdd())
	require.True(t, session.AddEntry())
	assert.Equal(t, StateEmpty, session.State())
	require.Len(t, session.Staged(), 1)
	assert.Equal(t, "09:00", session.Staged()[0].StartTime)
}

func TestSessionBlockedTimeFormat(t *testing.T) {
	oracle := newFakeOracle()
	session := newTestSession(oracle, nil)
	defer session.Close()

	session.UpdateCandidate(candidate(models.Monday, "09:30", "10:30"))

	assert.Equal(t, StateBlockedFormat, session.State())
	assert.False(t, session.CanAdd())
	assert.Equal(t, 0, oracle.callCount())
}

func TestSessionBlockedLocal(t *testing.T) {
	oracle := newFakeOracle()
	staged := []models.TimetableEntry{candidate(models.Monday, "09:00", "10:00")}
	session := newTestSession(oracle, staged)
	defer session.Close()

	session.UpdateCandidate(candidate(models.Monday, "09:00", "11:00"))

	assert.Equal(t, StateBlockedLocal, session.State())
	assert.False(t, session.CanAdd())
	assert.Equal(t, 0, oracle.callCount(), "local clash resolved without oracle call")
}

func TestSessionBlockedRemoteThenAlternative(t *testing.T) {
	oracle := newFakeOracle()
	oracle.results["09:00"] = &models.ConflictCheckResult{
		HasConflict:  true,
		Message:      "Room101 is already booked",
		ConflictType: []models.ConflictType{models.ConflictClassroom},
		Alternatives: []models.AlternativeSlot{
			{Day: models.Monday, StartTime: "11:00", EndTime: "12:00", Label: "Monday 11:00-12:00"},
		},
	}
	session := newTestSession(oracle, nil)
	defer session.Close()

	session.UpdateCandidate(candidate(models.Monday, "09:00", "10:00"))
	assert.Eventually(t, func() bool { return session.State() == StateBlockedRemote }, time.Second, time.Millisecond)

	verdict := session.Verdict()
	require.NotNil(t, verdict)
	require.Len(t, verdict.Alternatives, 1)

	updated := session.ApplyAlternative(verdict.Alternatives[0])
	assert.Equal(t, "11:00", updated.StartTime)
	assert.Equal(t, "12:00", updated.EndTime)
	assert.Eventually(t, func() bool { return session.State() == StateClear }, time.Second, time.Millisecond)
}

func TestSessionUndeterminedThenRetry(t *testing.T) {
	oracle := newFakeOracle()
	oracle.errs["09:00"] = assert.AnError
	session := newTestSession(oracle, nil)
	defer session.Close()

	session.UpdateCandidate(candidate(models.Monday, "09:00", "10:00"))
	assert.Eventually(t, func() bool { return session.State() == StateUndetermined }, time.Second, time.Millisecond)
	assert.False(t, session.CanAdd(), "undetermined must not allow adding")

	oracle.mu.Lock()
	delete(oracle.errs, "09:00")
	oracle.mu.Unlock()

	session.Retry()
	assert.Eventually(t, func() bool { return session.State() == StateClear }, time.Second, time.Millisecond)
}

func TestSessionEditEntryExcludesOwnSlot(t *testing.T) {
	oracle := newFakeOracle()
	staged := []models.TimetableEntry{candidate(models.Monday, "09:00", "10:00")}
	session := newTestSession(oracle, staged)
	defer session.Close()

	require.True(t, session.EditEntry(0))
	// Same slot as itself: not a local clash while editing in place.
	assert.Eventually(t, func() bool { return session.State() == StateClear }, time.Second, time.Millisecond)
}

func TestSessionEditEntryCommitReplacesSlot(t *testing.T) {
	oracle := newFakeOracle()
	staged := []models.TimetableEntry{candidate(models.Monday, "09:00", "10:00")}
	session := newTestSession(oracle, staged)
	defer session.Close()

	require.True(t, session.EditEntry(0))
	session.UpdateCandidate(candidate(models.Monday, "09:00", "11:00"))
	assert.Eventually(t, func() bool { return session.State() == StateClear }, time.Second, time.Millisecond)

	require.True(t, session.AddEntry())
	buf := session.Staged()
	require.Len(t, buf, 1, "commit must replace the edited slot, not append beside it")
	assert.Equal(t, "11:00", buf[0].EndTime)
	assert.False(t, timeslot.HasLocalOverlap(buf[0], buf, 0))
}

func TestSessionRemoveWhileEditingKeepsCommitTarget(t *testing.T) {
	oracle := newFakeOracle()
	staged := []models.TimetableEntry{
		candidate(models.Monday, "09:00", "10:00"),
		candidate(models.Tuesday, "09:00", "10:00"),
	}
	session := newTestSession(oracle, staged)
	defer session.Close()

	require.True(t, session.EditEntry(1))
	session.UpdateCandidate(candidate(models.Tuesday, "10:00", "11:00"))
	require.True(t, session.RemoveEntry(0))
	assert.Eventually(t, func() bool { return session.State() == StateClear }, time.Second, time.Millisecond)

	require.True(t, session.AddEntry())
	buf := session.Staged()
	require.Len(t, buf, 1)
	assert.Equal(t, models.Tuesday, buf[0].Day)
	assert.Equal(t, "10:00", buf[0].StartTime)
}

func TestSessionRemoveEntry(t *testing.T) {
	staged := []models.TimetableEntry{
		candidate(models.Monday, "09:00", "10:00"),
		candidate(models.Tuesday, "09:00", "10:00"),
	}
	session := newTestSession(newFakeOracle(), staged)
	defer session.Close()

	require.True(t, session.RemoveEntry(0))
	require.Len(t, session.Staged(), 1)
	assert.Equal(t, models.Tuesday, session.Staged()[0].Day)
	assert.False(t, session.RemoveEntry(5))
}

func TestSessionCanSaveGate(t *testing.T) {
	staged := []models.TimetableEntry{
		candidate(models.Monday, "09:00", "10:00"),
		// Constructed directly, bypassing the add flow.
		candidate(models.Tuesday, "11:00", "10:00"),
	}
	session := newTestSession(newFakeOracle(), staged)
	defer session.Close()

	check := session.CanSave()
	assert.False(t, check.OK)
	assert.Equal(t, "End time must be after start time", check.Error)
}
