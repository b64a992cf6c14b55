package timeslot

import "github.com/tahasaad555/campus-admin-api/internal/models"

// Overlaps reports whether two entries collide: same day and intersecting
// half-open [start, end) intervals. Entries with unparseable times never
// overlap; the validator owns format errors.
func Overlaps(a, b models.TimetableEntry) bool {
	if a.Day != b.Day {
		return false
	}
	aStart, ok := ToMinutes(a.StartTime)
	if !ok {
		return false
	}
	aEnd, ok := ToMinutes(a.EndTime)
	if !ok {
		return false
	}
	bStart, ok := ToMinutes(b.StartTime)
	if !ok {
		return false
	}
	bEnd, ok := ToMinutes(b.EndTime)
	if !ok {
		return false
	}
	return bStart < aEnd && bEnd > aStart
}

// HasLocalOverlap scans the staged entries for the first collision with the
// candidate. skipIndex excludes the entry being edited in place; pass -1 when
// adding a new entry. The staged slice is never mutated.
func HasLocalOverlap(candidate models.TimetableEntry, staged []models.TimetableEntry, skipIndex int) bool {
	for i, existing := range staged {
		if i == skipIndex {
			continue
		}
		if Overlaps(candidate, existing) {
			return true
		}
	}
	return false
}

// RangesOverlap is the bare interval predicate on clock strings, shared with
// reservation availability checks.
func RangesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	as, ok := ToMinutes(aStart)
	if !ok {
		return false
	}
	ae, ok := ToMinutes(aEnd)
	if !ok {
		return false
	}
	bs, ok := ToMinutes(bStart)
	if !ok {
		return false
	}
	be, ok := ToMinutes(bEnd)
	if !ok {
		return false
	}
	return bs < ae && be > as
}
