package timeslot

import "github.com/tahasaad555/campus-admin-api/internal/models"

// SaveCheck is the verdict of the pre-submission gate.
type SaveCheck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// CanSave re-validates every staged entry before the timetable is submitted
// for persistence. The first failing entry blocks the whole save; there is
// no partial acceptance.
func CanSave(staged []models.TimetableEntry) SaveCheck {
	for _, entry := range staged {
		if v := ValidateTimeRange(entry.StartTime, entry.EndTime); !v.Valid {
			return SaveCheck{Error: v.Message}
		}
	}
	return SaveCheck{OK: true}
}
