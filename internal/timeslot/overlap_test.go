package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

func entry(day models.Weekday, start, end string) models.TimetableEntry {
	return models.TimetableEntry{Day: day, StartTime: start, EndTime: end, Location: "A101"}
}

func TestOverlapsSameDay(t *testing.T) {
	a := entry(models.Monday, "09:00", "10:00")
	b := entry(models.Monday, "09:30", "10:30")
	assert.True(t, Overlaps(a, b))
}

func TestOverlapsDifferentDay(t *testing.T) {
	a := entry(models.Monday, "09:00", "10:00")
	b := entry(models.Tuesday, "09:00", "10:00")
	assert.False(t, Overlaps(a, b))
}

func TestOverlapsAdjacentSlots(t *testing.T) {
	// [09:00,10:00) and [10:00,11:00) share only the boundary instant.
	a := entry(models.Monday, "09:00", "10:00")
	b := entry(models.Monday, "10:00", "11:00")
	assert.False(t, Overlaps(a, b))
	assert.False(t, Overlaps(b, a))
}

func TestOverlapsSymmetry(t *testing.T) {
	pairs := [][2]models.TimetableEntry{
		{entry(models.Monday, "09:00", "10:00"), entry(models.Monday, "09:30", "10:30")},
		{entry(models.Monday, "08:00", "10:00"), entry(models.Monday, "09:00", "11:00")},
		{entry(models.Friday, "13:00", "14:00"), entry(models.Friday, "15:00", "16:00")},
		{entry(models.Wednesday, "09:00", "11:00"), entry(models.Wednesday, "10:00", "11:00")},
	}
	for _, pair := range pairs {
		assert.Equal(t,
			HasLocalOverlap(pair[0], []models.TimetableEntry{pair[1]}, -1),
			HasLocalOverlap(pair[1], []models.TimetableEntry{pair[0]}, -1),
			"overlap must be symmetric for %v vs %v", pair[0], pair[1])
	}
}

func TestHasLocalOverlapSkipsEditedEntry(t *testing.T) {
	staged := []models.TimetableEntry{
		entry(models.Monday, "09:00", "10:00"),
		entry(models.Tuesday, "09:00", "10:00"),
	}
	candidate := entry(models.Monday, "09:00", "10:00")

	assert.True(t, HasLocalOverlap(candidate, staged, -1))
	// Editing entry 0 in place: its own old slot must not count as a clash.
	assert.False(t, HasLocalOverlap(candidate, staged, 0))
}

func TestHasLocalOverlapEmptyBuffer(t *testing.T) {
	assert.False(t, HasLocalOverlap(entry(models.Monday, "09:00", "10:00"), nil, -1))
}

func TestRangesOverlap(t *testing.T) {
	assert.True(t, RangesOverlap("09:00", "11:00", "10:00", "12:00"))
	assert.False(t, RangesOverlap("09:00", "10:00", "10:00", "11:00"))
	assert.False(t, RangesOverlap("09:00", "10:00", "bogus", "11:00"))
}
