package models

import "time"

// ClassGroup represents a cohort of students taught by one professor.
type ClassGroup struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	ProfessorID  string    `db:"professor_id" json:"professor_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassGroupDetail extends ClassGroup with professor info and membership.
type ClassGroupDetail struct {
	ClassGroup
	ProfessorFirstName string   `db:"professor_first_name" json:"professor_first_name"`
	ProfessorLastName  string   `db:"professor_last_name" json:"professor_last_name"`
	StudentIDs         []string `json:"student_ids"`
}

// ClassGroupFilter defines filter criteria for listing class groups.
type ClassGroupFilter struct {
	AcademicYear string
	ProfessorID  string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
