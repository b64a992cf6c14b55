// Package timeslot holds the pure slot arithmetic behind timetable
// scheduling: clock parsing, range validation, interval overlap and the
// pre-save gate. Everything here is deterministic and side-effect free.
package timeslot

import (
	"strconv"
	"strings"
)

// Validation is the outcome of checking a candidate time range.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

const (
	msgTimesRequired  = "Start and end times are required"
	msgStartOnHour    = "Start time must be on the hour (e.g., 9:00, 10:00)"
	msgEndOnHour      = "End time must be on the hour (e.g., 9:00, 10:00)"
	msgStartBounds    = "Start time must be between 8:00 AM and 5:00 PM"
	msgEndBounds      = "End time must be between 9:00 AM and 6:00 PM"
	msgEndAfterStart  = "End time must be after start time"
	msgDuration       = "Class duration must be exactly 1 or 2 hours (e.g., 9:00-10:00 or 9:00-11:00)"
)

// ParseClock splits an "HH:MM" (or "H:MM") clock string into hour and minute.
func ParseClock(clock string) (hour, minute int, ok bool) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// ToMinutes converts a clock string to minutes since midnight.
func ToMinutes(clock string) (int, bool) {
	h, m, ok := ParseClock(clock)
	if !ok {
		return 0, false
	}
	return h*60 + m, true
}

// ValidateTimeRange checks a candidate (start, end) pair against the
// timetable slot rules: whole-hour alignment, the 8:00-18:00 teaching
// window and a duration of exactly one or two hours.
func ValidateTimeRange(startTime, endTime string) Validation {
	if startTime == "" || endTime == "" {
		return Validation{Message: msgTimesRequired}
	}

	startHour, startMin, startOK := ParseClock(startTime)
	if !startOK || startMin != 0 {
		return Validation{Message: msgStartOnHour}
	}
	endHour, endMin, endOK := ParseClock(endTime)
	if !endOK || endMin != 0 {
		return Validation{Message: msgEndOnHour}
	}

	if startHour < 8 || startHour >= 18 {
		return Validation{Message: msgStartBounds}
	}
	if endHour < 9 || endHour > 18 {
		return Validation{Message: msgEndBounds}
	}

	start := startHour*60 + startMin
	end := endHour*60 + endMin
	if end <= start {
		return Validation{Message: msgEndAfterStart}
	}

	if duration := end - start; duration != 60 && duration != 120 {
		return Validation{Message: msgDuration}
	}

	return Validation{Valid: true}
}
