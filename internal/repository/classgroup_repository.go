package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

const entryColumns = "id, class_group_id, day, name, instructor, location, start_time, end_time, color, type, position, created_at"

// ClassGroupRepository provides persistence for class groups, their student
// membership and their recurring timetable entries.
type ClassGroupRepository struct {
	db *sqlx.DB
}

// NewClassGroupRepository creates a new class group repository.
func NewClassGroupRepository(db *sqlx.DB) *ClassGroupRepository {
	return &ClassGroupRepository{db: db}
}

// List returns class groups with optional filtering and pagination.
func (r *ClassGroupRepository) List(ctx context.Context, filter models.ClassGroupFilter) ([]models.ClassGroup, int, error) {
	base := "FROM class_groups WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.ProfessorID != "" {
		conditions = append(conditions, fmt.Sprintf("professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":          true,
		"academic_year": true,
		"created_at":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, academic_year, professor_id, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var groups []models.ClassGroup
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list class groups: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count class groups: %w", err)
	}

	return groups, total, nil
}

// FindByID loads a class group with its professor's name and student ids.
func (r *ClassGroupRepository) FindByID(ctx context.Context, id string) (*models.ClassGroupDetail, error) {
	const query = `SELECT cg.id, cg.name, cg.academic_year, cg.professor_id, cg.created_at, cg.updated_at,
			u.first_name AS professor_first_name, u.last_name AS professor_last_name
		FROM class_groups cg
		JOIN users u ON u.id = cg.professor_id
		WHERE cg.id = $1`

	var detail models.ClassGroupDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}

	studentIDs, err := r.ListStudentIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.StudentIDs = studentIDs
	return &detail, nil
}

// Create inserts a class group.
func (r *ClassGroupRepository) Create(ctx context.Context, group *models.ClassGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	const query = `INSERT INTO class_groups (id, name, academic_year, professor_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		group.ID, group.Name, group.AcademicYear, group.ProfessorID, group.CreatedAt, group.UpdatedAt); err != nil {
		return fmt.Errorf("create class group: %w", err)
	}
	return nil
}

// Update modifies mutable class group fields.
func (r *ClassGroupRepository) Update(ctx context.Context, group *models.ClassGroup) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_groups SET name = $2, academic_year = $3, professor_id = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		group.ID, group.Name, group.AcademicYear, group.ProfessorID, group.UpdatedAt); err != nil {
		return fmt.Errorf("update class group: %w", err)
	}
	return nil
}

// Delete removes a class group along with its membership and timetable.
func (r *ClassGroupRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete class group: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_entries WHERE class_group_id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM class_group_students WHERE class_group_id = $1`, id); err != nil {
		return fmt.Errorf("delete class group students: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM class_groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete class group: %w", err)
	}
	return nil
}

// ListStudentIDs returns ids of students enrolled in a class group.
func (r *ClassGroupRepository) ListStudentIDs(ctx context.Context, classGroupID string) ([]string, error) {
	const query = `SELECT student_id FROM class_group_students WHERE class_group_id = $1 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list class group students: %w", err)
	}
	return ids, nil
}

// SetStudents replaces the membership of a class group.
func (r *ClassGroupRepository) SetStudents(ctx context.Context, classGroupID string, studentIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set students: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM class_group_students WHERE class_group_id = $1`, classGroupID); err != nil {
		return fmt.Errorf("clear class group students: %w", err)
	}
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO class_group_students (class_group_id, student_id) VALUES ($1, $2)`,
			classGroupID, studentID); err != nil {
			return fmt.Errorf("enrol student %s: %w", studentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set students: %w", err)
	}
	return nil
}

// ListEntries returns the timetable of a class group in stored order.
func (r *ClassGroupRepository) ListEntries(ctx context.Context, classGroupID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM timetable_entries WHERE class_group_id = $1 ORDER BY position", entryColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ReplaceTimetable atomically swaps a class group's timetable for the given
// entries. Positions are assigned from slice order.
func (r *ClassGroupRepository) ReplaceTimetable(ctx context.Context, classGroupID string, entries []models.TimetableEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace timetable: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_entries WHERE class_group_id = $1`, classGroupID); err != nil {
		return fmt.Errorf("clear timetable entries: %w", err)
	}

	const insert = `INSERT INTO timetable_entries (id, class_group_id, day, name, instructor, location, start_time, end_time, color, type, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	now := time.Now().UTC()
	for i, entry := range entries {
		id := entry.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, insert,
			id, classGroupID, entry.Day, entry.Name, entry.Instructor, entry.Location,
			entry.StartTime, entry.EndTime, entry.Color, entry.Type, i, now); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE class_groups SET updated_at = $2 WHERE id = $1`, classGroupID, now); err != nil {
		return fmt.Errorf("stamp class group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace timetable: %w", err)
	}
	return nil
}

// ListEntriesForRoom returns entries of other class groups held in the room
// on the given day.
func (r *ClassGroupRepository) ListEntriesForRoom(ctx context.Context, location string, day models.Weekday, excludeGroupID string) ([]models.TimetableEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetable_entries
		WHERE location = $1 AND day = $2 AND class_group_id <> $3
		ORDER BY start_time`, entryColumns)
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, location, day, excludeGroupID); err != nil {
		return nil, fmt.Errorf("list entries for room: %w", err)
	}
	return entries, nil
}

// ListEntriesForProfessor returns entries of other class groups taught by the
// professor on the given day.
func (r *ClassGroupRepository) ListEntriesForProfessor(ctx context.Context, professorID string, day models.Weekday, excludeGroupID string) ([]models.TimetableEntry, error) {
	const query = `SELECT te.id, te.class_group_id, te.day, te.name, te.instructor, te.location, te.start_time, te.end_time, te.color, te.type, te.position, te.created_at
		FROM timetable_entries te
		JOIN class_groups cg ON cg.id = te.class_group_id
		WHERE cg.professor_id = $1 AND te.day = $2 AND te.class_group_id <> $3
		ORDER BY te.start_time`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, professorID, day, excludeGroupID); err != nil {
		return nil, fmt.Errorf("list entries for professor: %w", err)
	}
	return entries, nil
}

// ListEntriesForStudents returns entries of other class groups that the given
// students attend on the given day, each paired with the student it binds.
func (r *ClassGroupRepository) ListEntriesForStudents(ctx context.Context, studentIDs []string, day models.Weekday, excludeGroupID string) ([]models.StudentTimetableEntry, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT te.id, te.class_group_id, te.day, te.name, te.instructor, te.location, te.start_time, te.end_time, te.color, te.type, te.position, te.created_at,
			cgs.student_id, u.first_name AS student_first_name, u.last_name AS student_last_name
		FROM timetable_entries te
		JOIN class_group_students cgs ON cgs.class_group_id = te.class_group_id
		JOIN users u ON u.id = cgs.student_id
		WHERE cgs.student_id IN (?) AND te.day = ? AND te.class_group_id <> ?
		ORDER BY te.start_time`, studentIDs, day, excludeGroupID)
	if err != nil {
		return nil, fmt.Errorf("build student entries query: %w", err)
	}
	query = r.db.Rebind(query)

	var entries []models.StudentTimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list entries for students: %w", err)
	}
	return entries, nil
}
