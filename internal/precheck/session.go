package precheck

import (
	"sync"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/timeslot"
)

// State is one phase of composing a candidate timetable entry.
type State string

const (
	StateEmpty           State = "EMPTY"
	StateValidating      State = "VALIDATING"
	StateBlockedFormat   State = "BLOCKED_TIME_FORMAT"
	StateBlockedLocal    State = "BLOCKED_LOCAL"
	StateCheckingRemote  State = "CHECKING_REMOTE"
	StateClear           State = "CLEAR"
	StateBlockedRemote   State = "BLOCKED_REMOTE"
	StateUndetermined    State = "UNDETERMINED"
)

// Session tracks one edit session over a class group's staged timetable:
// the candidate entry being composed, the staged buffer, and the verdict of
// the latest conflict check. Only explicit user actions mutate the buffer;
// asynchronous verdicts only move the state.
type Session struct {
	ClassGroupID string

	checker *Checker

	mu        sync.Mutex
	candidate models.TimetableEntry
	staged    []models.TimetableEntry
	editIndex int
	state     State
	verdict   *models.ConflictCheckResult
}

// NewSession starts an edit session seeded with the group's current entries.
func NewSession(classGroupID string, staged []models.TimetableEntry, checker *Checker) *Session {
	buf := make([]models.TimetableEntry, len(staged))
	copy(buf, staged)
	return &Session{
		ClassGroupID: classGroupID,
		checker:      checker,
		staged:       buf,
		editIndex:    -1,
		state:        StateEmpty,
	}
}

// State returns the current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Verdict returns the latest conflict result, nil when none applies.
func (s *Session) Verdict() *models.ConflictCheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verdict
}

// Staged returns a copy of the staged buffer in insertion order.
func (s *Session) Staged() []models.TimetableEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]models.TimetableEntry, len(s.staged))
	copy(buf, s.staged)
	return buf
}

// UpdateCandidate applies a field change and re-runs the check pipeline.
// Each call supersedes any in-flight check for the previous candidate.
func (s *Session) UpdateCandidate(candidate models.TimetableEntry) {
	s.mu.Lock()
	s.candidate = candidate
	s.verdict = nil

	if candidate.Day == "" || candidate.StartTime == "" || candidate.EndTime == "" ||
		candidate.StartTime == candidate.EndTime {
		s.state = StateEmpty
		s.mu.Unlock()
		return
	}

	s.state = StateValidating
	req := Request{
		ClassGroupID: s.ClassGroupID,
		Candidate:    candidate,
		Staged:       s.staged,
		EditIndex:    s.editIndex,
	}
	s.mu.Unlock()

	s.checker.Submit(req, func(result *models.ConflictCheckResult) {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A field change after this check was issued restarts the pipeline;
		// only accept the verdict while this candidate is still current.
		if s.candidate == candidate && (s.state == StateValidating || s.state == StateCheckingRemote) {
			s.applyVerdictLocked(result)
		}
	})

	s.mu.Lock()
	if s.state == StateValidating && s.candidate == candidate {
		// Local stages passed; the debounced oracle call is pending.
		s.state = StateCheckingRemote
	}
	s.mu.Unlock()
}

// Retry re-issues the remote check after an undetermined verdict.
func (s *Session) Retry() {
	s.mu.Lock()
	if s.state != StateUndetermined {
		s.mu.Unlock()
		return
	}
	candidate := s.candidate
	s.mu.Unlock()
	s.UpdateCandidate(candidate)
}

// CanAdd reports whether the candidate may be appended to the buffer.
func (s *Session) CanAdd() bool {
	return s.State() == StateClear
}

// AddEntry commits the cleared candidate: appended when composing a new
// entry, written back over its own slot when editing in place. The session
// resets for the next entry. It is a no-op unless the state is Clear.
func (s *Session) AddEntry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClear {
		return false
	}
	if s.editIndex >= 0 && s.editIndex < len(s.staged) {
		s.staged[s.editIndex] = s.candidate
	} else {
		s.staged = append(s.staged, s.candidate)
	}
	s.candidate = models.TimetableEntry{}
	s.editIndex = -1
	s.state = StateEmpty
	s.verdict = nil
	return true
}

// RemoveEntry drops the staged entry at index. Removing the slot being
// edited turns the pending commit into an append; removing an earlier slot
// keeps the edit pointed at the same entry.
func (s *Session) RemoveEntry(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.staged) {
		return false
	}
	s.staged = append(s.staged[:index], s.staged[index+1:]...)
	switch {
	case index == s.editIndex:
		s.editIndex = -1
	case index < s.editIndex:
		s.editIndex--
	}
	return true
}

// EditEntry loads the staged entry at index into the candidate for in-place
// editing; its own slot is excluded from local overlap checks.
func (s *Session) EditEntry(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.staged) {
		s.mu.Unlock()
		return false
	}
	s.editIndex = index
	candidate := s.staged[index]
	s.mu.Unlock()
	s.UpdateCandidate(candidate)
	return true
}

// ApplyAlternative pre-fills the candidate with a suggested slot and re-runs
// the pipeline, returning the updated candidate.
func (s *Session) ApplyAlternative(alt models.AlternativeSlot) models.TimetableEntry {
	s.mu.Lock()
	candidate := s.candidate
	candidate.Day = alt.Day
	candidate.StartTime = alt.StartTime
	candidate.EndTime = alt.EndTime
	s.mu.Unlock()
	s.UpdateCandidate(candidate)
	return candidate
}

// CanSave runs the pre-submission gate over the staged buffer.
func (s *Session) CanSave() timeslot.SaveCheck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return timeslot.CanSave(s.staged)
}

// Close releases the underlying checker's pending work.
func (s *Session) Close() {
	s.checker.Close()
}

func (s *Session) applyVerdictLocked(result *models.ConflictCheckResult) {
	s.verdict = result
	switch {
	case result == nil:
		s.state = StateUndetermined
	case !result.HasConflict:
		s.state = StateClear
	case result.HasType(models.ConflictTimeFormat):
		s.state = StateBlockedFormat
	case result.HasType(models.ConflictLocal):
		s.state = StateBlockedLocal
	default:
		s.state = StateBlockedRemote
	}
}
