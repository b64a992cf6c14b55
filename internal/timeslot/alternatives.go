package timeslot

import "github.com/tahasaad555/campus-admin-api/internal/models"

// FilterValidAlternatives drops malformed alternative slots: both times must
// be whole-hour aligned and the duration a positive multiple of an hour.
// Order is preserved. The 8:00-18:00 bounds are not re-checked here; the
// oracle producing the alternatives is expected to respect them.
func FilterValidAlternatives(alternatives []models.AlternativeSlot) []models.AlternativeSlot {
	filtered := make([]models.AlternativeSlot, 0, len(alternatives))
	for _, alt := range alternatives {
		startHour, startMin, startOK := ParseClock(alt.StartTime)
		if !startOK || startMin != 0 {
			continue
		}
		endHour, endMin, endOK := ParseClock(alt.EndTime)
		if !endOK || endMin != 0 {
			continue
		}
		if endHour <= startHour {
			continue
		}
		filtered = append(filtered, alt)
	}
	return filtered
}
