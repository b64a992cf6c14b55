package timeslot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTimeRangeRequiresBothTimes(t *testing.T) {
	assert.Equal(t, Validation{Message: "Start and end times are required"}, ValidateTimeRange("", "10:00"))
	assert.Equal(t, Validation{Message: "Start and end times are required"}, ValidateTimeRange("09:00", ""))
	assert.Equal(t, Validation{Message: "Start and end times are required"}, ValidateTimeRange("", ""))
}

func TestValidateTimeRangeWholeHourAlignment(t *testing.T) {
	for _, minutes := range []string{"01", "15", "30", "59"} {
		start := fmt.Sprintf("09:%s", minutes)
		result := ValidateTimeRange(start, "11:00")
		assert.False(t, result.Valid, "start %s should be rejected", start)
		assert.Equal(t, "Start time must be on the hour (e.g., 9:00, 10:00)", result.Message)

		end := fmt.Sprintf("10:%s", minutes)
		result = ValidateTimeRange("09:00", end)
		assert.False(t, result.Valid, "end %s should be rejected", end)
		assert.Equal(t, "End time must be on the hour (e.g., 9:00, 10:00)", result.Message)
	}
}

func TestValidateTimeRangeBounds(t *testing.T) {
	cases := []struct {
		start, end string
		message    string
	}{
		{"07:00", "08:00", "Start time must be between 8:00 AM and 5:00 PM"},
		{"18:00", "19:00", "Start time must be between 8:00 AM and 5:00 PM"},
		{"08:00", "19:00", "End time must be between 9:00 AM and 6:00 PM"},
		{"17:00", "19:00", "End time must be between 9:00 AM and 6:00 PM"},
	}
	for _, tc := range cases {
		result := ValidateTimeRange(tc.start, tc.end)
		assert.False(t, result.Valid, "%s-%s", tc.start, tc.end)
		assert.Equal(t, tc.message, result.Message)
	}
}

func TestValidateTimeRangeOrderingAndDuration(t *testing.T) {
	result := ValidateTimeRange("10:00", "10:00")
	assert.Equal(t, "End time must be after start time", result.Message)

	result = ValidateTimeRange("11:00", "10:00")
	assert.Equal(t, "End time must be after start time", result.Message)

	result = ValidateTimeRange("09:00", "12:00")
	assert.Equal(t, "Class duration must be exactly 1 or 2 hours (e.g., 9:00-10:00 or 9:00-11:00)", result.Message)
}

func TestValidateTimeRangeAccepts(t *testing.T) {
	for _, tc := range [][2]string{
		{"09:00", "10:00"},
		{"09:00", "11:00"},
		{"08:00", "09:00"},
		{"17:00", "18:00"},
		{"16:00", "18:00"},
	} {
		result := ValidateTimeRange(tc[0], tc[1])
		assert.True(t, result.Valid, "%s-%s should be accepted", tc[0], tc[1])
		assert.Empty(t, result.Message)
	}
}

func TestValidateTimeRangeDeterministic(t *testing.T) {
	first := ValidateTimeRange("09:00", "09:30")
	second := ValidateTimeRange("09:00", "09:30")
	assert.Equal(t, first, second)

	first = ValidateTimeRange("09:00", "10:00")
	second = ValidateTimeRange("09:00", "10:00")
	assert.Equal(t, first, second)
}

func TestParseClock(t *testing.T) {
	h, m, ok := ParseClock("9:05")
	assert.True(t, ok)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	_, _, ok = ParseClock("25:00")
	assert.False(t, ok)
	_, _, ok = ParseClock("10:71")
	assert.False(t, ok)
	_, _, ok = ParseClock("morning")
	assert.False(t, ok)
}
