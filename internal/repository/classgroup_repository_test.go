package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

func newClassGroupRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func entryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "class_group_id", "day", "name", "instructor", "location", "start_time", "end_time", "color", "type", "position", "created_at"})
}

func TestClassGroupRepositoryListEntries(t *testing.T) {
	db, mock, cleanup := newClassGroupRepoMock(t)
	defer cleanup()
	repo := NewClassGroupRepository(db)

	rows := entryRows().
		AddRow("e1", "cg-1", "MONDAY", "Algorithms", "Dr. Doe", "Room101", "09:00", "10:00", "", "LECTURE", 0, time.Now()).
		AddRow("e2", "cg-1", "TUESDAY", "Databases", "Dr. Doe", "Room202", "11:00", "13:00", "", "LAB", 1, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries WHERE class_group_id = $1 ORDER BY position")).
		WithArgs("cg-1").
		WillReturnRows(rows)

	entries, err := repo.ListEntries(context.Background(), "cg-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.Monday, entries[0].Day)
	assert.Equal(t, "09:00", entries[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassGroupRepositoryReplaceTimetable(t *testing.T) {
	db, mock, cleanup := newClassGroupRepoMock(t)
	defer cleanup()
	repo := NewClassGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries WHERE class_group_id = $1")).
		WithArgs("cg-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WithArgs(sqlmock.AnyArg(), "cg-1", models.Monday, "Algorithms", "", "Room101", "09:00", "10:00", "", models.EntryLecture, 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WithArgs(sqlmock.AnyArg(), "cg-1", models.Tuesday, "Databases", "", "Room202", "11:00", "13:00", "", models.EntryLab, 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE class_groups SET updated_at").
		WithArgs("cg-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.TimetableEntry{
		{Day: models.Monday, Name: "Algorithms", Location: "Room101", StartTime: "09:00", EndTime: "10:00", Type: models.EntryLecture},
		{Day: models.Tuesday, Name: "Databases", Location: "Room202", StartTime: "11:00", EndTime: "13:00", Type: models.EntryLab},
	}
	require.NoError(t, repo.ReplaceTimetable(context.Background(), "cg-1", entries))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassGroupRepositoryReplaceTimetableRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newClassGroupRepoMock(t)
	defer cleanup()
	repo := NewClassGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_entries WHERE class_group_id = $1")).
		WithArgs("cg-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	entries := []models.TimetableEntry{
		{Day: models.Monday, Name: "Algorithms", Location: "Room101", StartTime: "09:00", EndTime: "10:00", Type: models.EntryLecture},
	}
	err := repo.ReplaceTimetable(context.Background(), "cg-1", entries)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassGroupRepositoryListEntriesForRoomExcludesGroup(t *testing.T) {
	db, mock, cleanup := newClassGroupRepoMock(t)
	defer cleanup()
	repo := NewClassGroupRepository(db)

	rows := entryRows().
		AddRow("e9", "cg-2", "MONDAY", "Physics", "Dr. Ray", "Room101", "09:00", "11:00", "", "LECTURE", 0, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE location = $1 AND day = $2 AND class_group_id <> $3")).
		WithArgs("Room101", models.Monday, "cg-1").
		WillReturnRows(rows)

	entries, err := repo.ListEntriesForRoom(context.Background(), "Room101", models.Monday, "cg-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cg-2", entries[0].ClassGroupID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassGroupRepositoryListEntriesForStudentsEmptyInput(t *testing.T) {
	db, mock, cleanup := newClassGroupRepoMock(t)
	defer cleanup()
	repo := NewClassGroupRepository(db)

	entries, err := repo.ListEntriesForStudents(context.Background(), nil, models.Monday, "cg-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassGroupRepositorySetStudents(t *testing.T) {
	db, mock, cleanup := newClassGroupRepoMock(t)
	defer cleanup()
	repo := NewClassGroupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_group_students WHERE class_group_id = $1")).
		WithArgs("cg-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO class_group_students").
		WithArgs("cg-1", "s1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO class_group_students").
		WithArgs("cg-1", "s2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetStudents(context.Background(), "cg-1", []string{"s1", "s2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
