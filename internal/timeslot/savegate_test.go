package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

func TestCanSaveAcceptsValidBuffer(t *testing.T) {
	staged := []models.TimetableEntry{
		entry(models.Monday, "09:00", "10:00"),
		entry(models.Tuesday, "14:00", "16:00"),
	}
	check := CanSave(staged)
	assert.True(t, check.OK)
	assert.Empty(t, check.Error)
}

func TestCanSaveBlocksOnReversedRange(t *testing.T) {
	staged := []models.TimetableEntry{
		entry(models.Monday, "09:00", "10:00"),
		entry(models.Tuesday, "11:00", "10:00"),
	}
	check := CanSave(staged)
	assert.False(t, check.OK)
	assert.Equal(t, "End time must be after start time", check.Error)
}

func TestCanSaveEmptyBuffer(t *testing.T) {
	assert.True(t, CanSave(nil).OK)
}
