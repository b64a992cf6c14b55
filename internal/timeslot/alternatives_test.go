package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

func TestFilterValidAlternativesDropsMisaligned(t *testing.T) {
	alternatives := []models.AlternativeSlot{
		{Day: models.Monday, StartTime: "09:30", EndTime: "10:30", Label: "Mon 9:30"},
		{Day: models.Monday, StartTime: "10:00", EndTime: "12:00", Label: "Mon 10-12"},
		{Day: models.Tuesday, StartTime: "09:00", EndTime: "09:45", Label: "Tue short"},
		{Day: models.Friday, StartTime: "14:00", EndTime: "14:00", Label: "zero length"},
		{Day: models.Thursday, StartTime: "11:00", EndTime: "12:00", Label: "Thu 11-12"},
	}

	filtered := FilterValidAlternatives(alternatives)

	assert.Len(t, filtered, 2)
	assert.Equal(t, "Mon 10-12", filtered[0].Label)
	assert.Equal(t, "Thu 11-12", filtered[1].Label)
}

func TestFilterValidAlternativesPreservesOrder(t *testing.T) {
	alternatives := []models.AlternativeSlot{
		{Day: models.Friday, StartTime: "15:00", EndTime: "16:00", Label: "c"},
		{Day: models.Monday, StartTime: "09:00", EndTime: "10:00", Label: "a"},
		{Day: models.Tuesday, StartTime: "10:00", EndTime: "11:00", Label: "b"},
	}

	filtered := FilterValidAlternatives(alternatives)

	labels := make([]string, 0, len(filtered))
	for _, alt := range filtered {
		labels = append(labels, alt.Label)
	}
	assert.Equal(t, []string{"c", "a", "b"}, labels)
}

func TestFilterValidAlternativesEmptyInput(t *testing.T) {
	assert.Empty(t, FilterValidAlternatives(nil))
}
