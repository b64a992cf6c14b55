// Package precheck is the advisory client-side half of timetable conflict
// checking: it mirrors the server's validation locally so a form can give
// instant feedback, and consults the authoritative oracle only for the
// dimensions it cannot see (other groups' rooms, professors, students).
// Verdicts are advisory; the save endpoint remains the source of truth.
package precheck

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/timeslot"
)

// localConflictMessage matches the message the legacy console displayed for
// clashes inside the staged buffer.
const localConflictMessage = "This time slot conflicts with another entry in the current timetable."

// Oracle is the remote authoritative conflict checker.
type Oracle interface {
	CheckConflicts(ctx context.Context, classGroupID string, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error)
}

// Request carries one candidate entry and the edit context it is checked in.
type Request struct {
	ClassGroupID string
	Candidate    models.TimetableEntry
	Staged       []models.TimetableEntry
	// EditIndex is the staged index being edited in place, or -1 when adding.
	EditIndex int
}

// Checker coordinates validation, local overlap detection and debounced
// oracle calls. Submissions are sequence-numbered; a verdict is only
// delivered when no newer submission exists, so a slow oracle response can
// never clobber the verdict of a fresher candidate.
type Checker struct {
	oracle Oracle
	delay  time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	closed bool
}

// NewChecker builds a Checker. delay is the debounce window before an oracle
// call is issued; zero falls back to the 500ms the console shipped with.
func NewChecker(oracle Oracle, delay time.Duration, logger *zap.Logger) *Checker {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{oracle: oracle, delay: delay, logger: logger}
}

// CheckNow runs the full pipeline synchronously, bypassing the debounce.
// A nil result means "no verdict": either the candidate lacks the fields
// needed to check it, or the oracle could not be reached. Callers must not
// treat nil as a pass.
func (c *Checker) CheckNow(ctx context.Context, req Request) *models.ConflictCheckResult {
	if verdict, final := c.localVerdict(req); final {
		return verdict
	}
	return c.remoteVerdict(ctx, req)
}

// Submit schedules a check for the candidate. Format and local-overlap
// verdicts are delivered synchronously before Submit returns; oracle-backed
// verdicts arrive on deliver after the debounce window, unless a newer
// submission supersedes this one first. deliver may be called from another
// goroutine.
func (c *Checker) Submit(req Request, deliver func(*models.ConflictCheckResult)) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.seq++
	mySeq := c.seq
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	verdict, final := c.localVerdict(req)
	if final {
		c.mu.Unlock()
		deliver(verdict)
		return
	}

	c.timer = time.AfterFunc(c.delay, func() {
		if !c.isLatest(mySeq) {
			return
		}
		result := c.remoteVerdict(context.Background(), req)
		if !c.isLatest(mySeq) {
			return
		}
		deliver(result)
	})
	c.mu.Unlock()
}

// Close stops any pending debounce timer. Subsequent submissions are ignored.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Checker) isLatest(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && seq == c.seq
}

// localVerdict runs the synchronous stages. final is true when the pipeline
// short-circuits: either a verdict was produced or there is not enough
// information to check anything (nil verdict).
func (c *Checker) localVerdict(req Request) (*models.ConflictCheckResult, bool) {
	cand := req.Candidate
	if cand.Day == "" || cand.StartTime == "" || cand.EndTime == "" || cand.StartTime == cand.EndTime {
		return nil, true
	}

	if v := timeslot.ValidateTimeRange(cand.StartTime, cand.EndTime); !v.Valid {
		return &models.ConflictCheckResult{
			HasConflict:  true,
			Message:      v.Message,
			ConflictType: []models.ConflictType{models.ConflictTimeFormat},
		}, true
	}

	if timeslot.HasLocalOverlap(cand, req.Staged, req.EditIndex) {
		return &models.ConflictCheckResult{
			HasConflict:  true,
			Message:      localConflictMessage,
			ConflictType: []models.ConflictType{models.ConflictLocal},
		}, true
	}

	return nil, false
}

func (c *Checker) remoteVerdict(ctx context.Context, req Request) *models.ConflictCheckResult {
	result, err := c.oracle.CheckConflicts(ctx, req.ClassGroupID, models.ConflictCheckRequest{
		Day:       req.Candidate.Day,
		StartTime: req.Candidate.StartTime,
		EndTime:   req.Candidate.EndTime,
		Location:  req.Candidate.Location,
	})
	if err != nil {
		c.logger.Warn("conflict oracle unreachable, verdict undetermined",
			zap.String("class_group_id", req.ClassGroupID), zap.Error(err))
		return nil
	}
	if result != nil {
		result.Alternatives = timeslot.FilterValidAlternatives(result.Alternatives)
	}
	return result
}
