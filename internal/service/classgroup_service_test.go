package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/precheck"
	appErrors "github.com/tahasaad555/campus-admin-api/pkg/errors"
)

type mockClassGroupRepo struct {
	group    *models.ClassGroupDetail
	entries  []models.TimetableEntry
	replaced []models.TimetableEntry
}

func (m *mockClassGroupRepo) List(ctx context.Context, filter models.ClassGroupFilter) ([]models.ClassGroup, int, error) {
	return nil, 0, nil
}

func (m *mockClassGroupRepo) FindByID(ctx context.Context, id string) (*models.ClassGroupDetail, error) {
	if m.group == nil || m.group.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.group, nil
}

func (m *mockClassGroupRepo) Create(ctx context.Context, group *models.ClassGroup) error { return nil }
func (m *mockClassGroupRepo) Update(ctx context.Context, group *models.ClassGroup) error { return nil }
func (m *mockClassGroupRepo) Delete(ctx context.Context, id string) error                { return nil }
func (m *mockClassGroupRepo) SetStudents(ctx context.Context, classGroupID string, studentIDs []string) error {
	return nil
}

func (m *mockClassGroupRepo) ListEntries(ctx context.Context, classGroupID string) ([]models.TimetableEntry, error) {
	if m.replaced != nil {
		return m.replaced, nil
	}
	return m.entries, nil
}

func (m *mockClassGroupRepo) ReplaceTimetable(ctx context.Context, classGroupID string, entries []models.TimetableEntry) error {
	m.replaced = entries
	return nil
}

type mockUserFinder struct {
	users map[string]models.User
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, sql.ErrNoRows
}

type stubChecker struct {
	results map[string]*models.ConflictCheckResult
	calls   int
}

func (s *stubChecker) Check(ctx context.Context, classGroupID string, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error) {
	s.calls++
	if r, ok := s.results[req.StartTime]; ok {
		return r, nil
	}
	return &models.ConflictCheckResult{HasConflict: false}, nil
}

func newTimetableFixture(checker *stubChecker) (*ClassGroupService, *mockClassGroupRepo) {
	repo := &mockClassGroupRepo{group: testGroup()}
	users := &mockUserFinder{users: map[string]models.User{
		"prof-1": {ID: "prof-1", Role: models.RoleProfessor, Active: true},
	}}
	svc := NewClassGroupService(repo, users, checker, nil, nil, nil)
	return svc, repo
}

func TestReplaceTimetablePersistsCleanSubmission(t *testing.T) {
	checker := &stubChecker{}
	svc, repo := newTimetableFixture(checker)

	entries := []models.TimetableEntry{
		{Day: models.Monday, Name: "Algorithms", Location: "Room101", StartTime: "09:00", EndTime: "10:00", Type: models.EntryLecture},
		{Day: models.Monday, Name: "Databases", Location: "Room202", StartTime: "10:00", EndTime: "12:00", Type: models.EntryLab},
	}
	saved, err := svc.ReplaceTimetable(context.Background(), "cg-1", entries)

	require.NoError(t, err)
	assert.Len(t, saved, 2)
	assert.Len(t, repo.replaced, 2)
	assert.Equal(t, 2, checker.calls)
}

func TestReplaceTimetableRejectsInvalidSlot(t *testing.T) {
	checker := &stubChecker{}
	svc, repo := newTimetableFixture(checker)

	entries := []models.TimetableEntry{
		{Day: models.Monday, Name: "Algorithms", Location: "Room101", StartTime: "09:00", EndTime: "12:30", Type: models.EntryLecture},
	}
	_, err := svc.ReplaceTimetable(context.Background(), "cg-1", entries)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, repo.replaced, "nothing may be persisted on validation failure")
	assert.Equal(t, 0, checker.calls, "conflict scan must not run on invalid input")
}

func TestReplaceTimetableRejectsIntraListOverlap(t *testing.T) {
	checker := &stubChecker{}
	svc, repo := newTimetableFixture(checker)

	entries := []models.TimetableEntry{
		{Day: models.Monday, Name: "Algorithms", Location: "Room101", StartTime: "09:00", EndTime: "11:00", Type: models.EntryLecture},
		{Day: models.Monday, Name: "Databases", Location: "Room202", StartTime: "10:00", EndTime: "11:00", Type: models.EntryLab},
	}
	_, err := svc.ReplaceTimetable(context.Background(), "cg-1", entries)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "TIMETABLE CONFLICT: ")
	assert.Nil(t, repo.replaced)

	lines := precheck.ParseSaveRejection(appErr.Message)
	require.Len(t, lines, 1)
	assert.Equal(t, models.ConflictLocal, lines[0].Category)
}

func TestReplaceTimetableEnumeratesAllIntraListOverlaps(t *testing.T) {
	checker := &stubChecker{}
	svc, _ := newTimetableFixture(checker)

	entries := []models.TimetableEntry{
		{Day: models.Monday, Name: "Algorithms", Location: "Room101", StartTime: "09:00", EndTime: "11:00", Type: models.EntryLecture},
		{Day: models.Monday, Name: "Databases", Location: "Room202", StartTime: "10:00", EndTime: "11:00", Type: models.EntryLab},
		{Day: models.Tuesday, Name: "Networks", Location: "Room303", StartTime: "09:00", EndTime: "10:00", Type: models.EntryLecture},
		{Day: models.Tuesday, Name: "Compilers", Location: "Room404", StartTime: "09:00", EndTime: "11:00", Type: models.EntrySeminar},
	}
	_, err := svc.ReplaceTimetable(context.Background(), "cg-1", entries)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	lines := precheck.ParseSaveRejection(appErr.Message)
	require.Len(t, lines, 2, "one line per colliding pair")
	for _, line := range lines {
		assert.Equal(t, models.ConflictLocal, line.Category)
	}
	assert.Contains(t, lines[0].Text, "Algorithms")
	assert.Contains(t, lines[0].Text, "Databases")
	assert.Contains(t, lines[1].Text, "Networks")
	assert.Contains(t, lines[1].Text, "Compilers")
}

func TestReplaceTimetableRejectionLinesAreParseable(t *testing.T) {
	checker := &stubChecker{results: map[string]*models.ConflictCheckResult{
		"09:00": {
			HasConflict:      true,
			ConflictType:     []models.ConflictType{models.ConflictClassroom, models.ConflictProfessor, models.ConflictStudent},
			ConflictingRooms: []string{"Room101"},
			AffectedUsers: []models.AffectedUser{
				{ID: "room:Room101", LastName: "Room101", Role: "CLASSROOM"},
				{ID: "prof-1", FirstName: "Jane", LastName: "Doe", Role: "PROFESSOR"},
				{ID: "s1", FirstName: "John", LastName: "Smith", Role: "STUDENT"},
			},
		},
	}}
	svc, _ := newTimetableFixture(checker)

	entries := []models.TimetableEntry{
		{Day: models.Monday, Name: "Algorithms", Location: "Room101", StartTime: "09:00", EndTime: "10:00", Type: models.EntryLecture},
	}
	_, err := svc.ReplaceTimetable(context.Background(), "cg-1", entries)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	lines := precheck.ParseSaveRejection(appErr.Message)
	require.Len(t, lines, 3)
	assert.Equal(t, models.ConflictClassroom, lines[0].Category)
	assert.Equal(t, models.ConflictProfessor, lines[1].Category)
	assert.Equal(t, models.ConflictStudent, lines[2].Category)
	for _, line := range lines {
		assert.NotEqual(t, precheck.ConflictUnknown, line.Category)
		assert.False(t, strings.Contains(line.Text, "CONFLICT:"), "prefix must be stripped from %q", line.Text)
	}
}

func TestCreateClassGroupRequiresProfessorRole(t *testing.T) {
	repo := &mockClassGroupRepo{group: testGroup()}
	users := &mockUserFinder{users: map[string]models.User{
		"11111111-1111-4111-8111-111111111111": {ID: "11111111-1111-4111-8111-111111111111", Role: models.RoleStudent, Active: true},
	}}
	svc := NewClassGroupService(repo, users, &stubChecker{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), ClassGroupRequest{
		Name:         "CS-2A",
		AcademicYear: "2026/2027",
		ProfessorID:  "11111111-1111-4111-8111-111111111111",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a professor")
}
