package precheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

func TestParseSaveRejectionPrefixedLines(t *testing.T) {
	message := "CLASSROOM CONFLICT: Room101 is booked on MONDAY 09:00-10:00\n" +
		"PROFESSOR CONFLICT: Jane Doe teaches Group B at this time\n" +
		"STUDENT CONFLICT: 3 students have overlapping meetings"

	lines := ParseSaveRejection(message)

	require.Len(t, lines, 3)
	assert.Equal(t, models.ConflictClassroom, lines[0].Category)
	assert.Equal(t, "Room101 is booked on MONDAY 09:00-10:00", lines[0].Text)
	assert.Equal(t, models.ConflictProfessor, lines[1].Category)
	assert.Equal(t, models.ConflictStudent, lines[2].Category)
}

func TestParseSaveRejectionLegacyFormat(t *testing.T) {
	message := "Timetable conflicts detected: \n" +
		"- CLASSROOM CONFLICT: Room202 double-booked\n" +
		"- STUDENT CONFLICT: John Smith enrolled in two meetings"

	lines := ParseSaveRejection(message)

	require.Len(t, lines, 2)
	assert.Equal(t, models.ConflictClassroom, lines[0].Category)
	assert.Equal(t, "Room202 double-booked", lines[0].Text)
	assert.Equal(t, models.ConflictStudent, lines[1].Category)
	assert.Equal(t, "John Smith enrolled in two meetings", lines[1].Text)
}

func TestParseSaveRejectionTimetableLines(t *testing.T) {
	message := "TIMETABLE CONFLICT: Algorithms (MONDAY 09:00-11:00) overlaps Databases (MONDAY 10:00-11:00) in this timetable"

	lines := ParseSaveRejection(message)

	require.Len(t, lines, 1)
	assert.Equal(t, models.ConflictLocal, lines[0].Category)
	assert.Equal(t, "Algorithms (MONDAY 09:00-11:00) overlaps Databases (MONDAY 10:00-11:00) in this timetable", lines[0].Text)
}

func TestParseSaveRejectionKeepsUnknownLines(t *testing.T) {
	message := "CLASSROOM CONFLICT: Room101 busy\nsomething unexpected happened"

	lines := ParseSaveRejection(message)

	require.Len(t, lines, 2, "no line may be summarized away")
	assert.Equal(t, ConflictUnknown, lines[1].Category)
	assert.Equal(t, "something unexpected happened", lines[1].Text)
}

func TestParseSaveRejectionEmptyMessage(t *testing.T) {
	assert.Empty(t, ParseSaveRejection(""))
}
