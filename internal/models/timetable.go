package models

import "time"

// Weekday enumerates the teaching days a timetable entry may occupy.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
)

// Weekdays lists teaching days in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// ValidWeekday reports whether the value is a known teaching day.
func ValidWeekday(d Weekday) bool {
	for _, day := range Weekdays {
		if day == d {
			return true
		}
	}
	return false
}

// EntryType categorises a timetable entry.
type EntryType string

const (
	EntryLecture    EntryType = "LECTURE"
	EntryLab        EntryType = "LAB"
	EntryTutorial   EntryType = "TUTORIAL"
	EntrySeminar    EntryType = "SEMINAR"
	EntryWorkshop   EntryType = "WORKSHOP"
	EntryStudyGroup EntryType = "STUDY_GROUP"
)

// TimetableEntry is a single recurring class meeting.
// StartTime and EndTime are clock strings ("HH:MM") aligned to whole hours.
type TimetableEntry struct {
	ID           string    `db:"id" json:"id,omitempty"`
	ClassGroupID string    `db:"class_group_id" json:"class_group_id,omitempty"`
	Day          Weekday   `db:"day" json:"day"`
	Name         string    `db:"name" json:"name"`
	Instructor   string    `db:"instructor" json:"instructor,omitempty"`
	Location     string    `db:"location" json:"location"`
	StartTime    string    `db:"start_time" json:"startTime"`
	EndTime      string    `db:"end_time" json:"endTime"`
	Color        string    `db:"color" json:"color,omitempty"`
	Type         EntryType `db:"type" json:"type"`
	Position     int       `db:"position" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// StudentTimetableEntry pairs an entry with the enrolled student it binds.
type StudentTimetableEntry struct {
	TimetableEntry
	StudentID        string `db:"student_id" json:"student_id"`
	StudentFirstName string `db:"student_first_name" json:"student_first_name"`
	StudentLastName  string `db:"student_last_name" json:"student_last_name"`
}

// ConflictType tags one dimension of a scheduling conflict.
type ConflictType string

const (
	ConflictClassroom  ConflictType = "CLASSROOM"
	ConflictProfessor  ConflictType = "PROFESSOR"
	ConflictStudent    ConflictType = "STUDENT"
	ConflictTimeFormat ConflictType = "TIME_FORMAT"
	ConflictLocal      ConflictType = "LOCAL"
)

// AffectedUser identifies a person whose schedule collides with a candidate
// entry. The legacy wire contract also reports room clashes through this
// shape: Role is set to "CLASSROOM" and LastName carries the room number.
type AffectedUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// AlternativeSlot is a suggested non-conflicting replacement slot.
type AlternativeSlot struct {
	Day       Weekday `json:"day"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Label     string  `json:"label"`
}

// ConflictCheckRequest is the wire payload for the check-conflicts endpoint.
// Field names follow the legacy console contract.
type ConflictCheckRequest struct {
	Day       Weekday `json:"day" validate:"required"`
	StartTime string  `json:"startTime" validate:"required"`
	EndTime   string  `json:"endTime" validate:"required"`
	Location  string  `json:"location"`
}

// ConflictCheckResult is the outcome of checking one candidate entry against
// existing commitments. When HasConflict is false all other fields are empty.
type ConflictCheckResult struct {
	HasConflict      bool           `json:"hasConflict"`
	Message          string         `json:"message"`
	ConflictType     []ConflictType `json:"conflictType,omitempty"`
	AffectedUsers    []AffectedUser `json:"affectedUsers,omitempty"`
	Alternatives     []AlternativeSlot `json:"alternatives,omitempty"`
	ConflictingRooms []string       `json:"conflictingRooms,omitempty"`
}

// HasType reports whether the result carries the given conflict dimension.
func (r *ConflictCheckResult) HasType(t ConflictType) bool {
	if r == nil {
		return false
	}
	for _, ct := range r.ConflictType {
		if ct == t {
			return true
		}
	}
	return false
}
