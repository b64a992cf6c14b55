package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/timeslot"
	appErrors "github.com/tahasaad555/campus-admin-api/pkg/errors"
)

type classGroupRepository interface {
	List(ctx context.Context, filter models.ClassGroupFilter) ([]models.ClassGroup, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassGroupDetail, error)
	Create(ctx context.Context, group *models.ClassGroup) error
	Update(ctx context.Context, group *models.ClassGroup) error
	Delete(ctx context.Context, id string) error
	SetStudents(ctx context.Context, classGroupID string, studentIDs []string) error
	ListEntries(ctx context.Context, classGroupID string) ([]models.TimetableEntry, error)
	ReplaceTimetable(ctx context.Context, classGroupID string, entries []models.TimetableEntry) error
}

type classGroupUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type conflictChecker interface {
	Check(ctx context.Context, classGroupID string, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error)
}

type classGroupCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ClassGroupRequest is the payload for creating or updating a class group.
type ClassGroupRequest struct {
	Name         string `json:"name" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
	ProfessorID  string `json:"professor_id" validate:"required,uuid4"`
}

// ClassGroupService manages class groups, their membership and their
// timetables. Timetable saves are all-or-nothing: validation or conflicts on
// any entry reject the whole submission.
type ClassGroupService struct {
	repo      classGroupRepository
	users     classGroupUserRepository
	conflicts conflictChecker
	cache     classGroupCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassGroupService constructs a ClassGroupService.
func NewClassGroupService(repo classGroupRepository, users classGroupUserRepository, conflicts conflictChecker, cache classGroupCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ClassGroupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassGroupService{repo: repo, users: users, conflicts: conflicts, cache: cache, validator: validate, logger: logger}
}

// List returns class groups matching the filter.
func (s *ClassGroupService) List(ctx context.Context, filter models.ClassGroupFilter) ([]models.ClassGroup, int, error) {
	groups, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class groups")
	}
	return groups, total, nil
}

// Get loads one class group with professor info and student membership.
func (s *ClassGroupService) Get(ctx context.Context, id string) (*models.ClassGroupDetail, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
	}
	return group, nil
}

// Create registers a new class group after verifying the professor.
func (s *ClassGroupService) Create(ctx context.Context, req ClassGroupRequest) (*models.ClassGroup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class group payload")
	}
	if err := s.requireProfessor(ctx, req.ProfessorID); err != nil {
		return nil, err
	}

	group := &models.ClassGroup{
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		ProfessorID:  req.ProfessorID,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class group")
	}
	return group, nil
}

// Update modifies a class group.
func (s *ClassGroupService) Update(ctx context.Context, id string, req ClassGroupRequest) (*models.ClassGroup, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class group payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ProfessorID != req.ProfessorID {
		if err := s.requireProfessor(ctx, req.ProfessorID); err != nil {
			return nil, err
		}
	}

	group := &models.ClassGroup{
		ID:           id,
		Name:         req.Name,
		AcademicYear: req.AcademicYear,
		ProfessorID:  req.ProfessorID,
		CreatedAt:    existing.CreatedAt,
	}
	if err := s.repo.Update(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class group")
	}
	return group, nil
}

// Delete removes a class group, its membership and its timetable.
func (s *ClassGroupService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class group")
	}
	s.invalidateDashboards(ctx)
	return nil
}

// SetStudents replaces the class group's enrolled students.
func (s *ClassGroupService) SetStudents(ctx context.Context, id string, studentIDs []string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	for _, studentID := range studentIDs {
		user, err := s.users.FindByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s not found", studentID))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if user.Role != models.RoleStudent {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("user %s is not a student", studentID))
		}
	}
	if err := s.repo.SetStudents(ctx, id, studentIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set class group students")
	}
	return nil
}

// GetTimetable returns the class group's timetable in stored order.
func (s *ClassGroupService) GetTimetable(ctx context.Context, id string) ([]models.TimetableEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return entries, nil
}

// ReplaceTimetable validates and persists a full timetable submission. Every
// entry must pass the slot rules, entries must not collide with each other,
// and none may collide with other groups' rooms, the professor or enrolled
// students. Any conflict rejects the whole submission with one line per
// finding, each prefixed with its conflict category.
func (s *ClassGroupService) ReplaceTimetable(ctx context.Context, id string, entries []models.TimetableEntry) ([]models.TimetableEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if check := timeslot.CanSave(entries); !check.OK {
		return nil, appErrors.Clone(appErrors.ErrValidation, check.Error)
	}
	for _, entry := range entries {
		if !models.ValidWeekday(entry.Day) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day: %s", entry.Day))
		}
	}

	// Overlaps inside the submission itself are reported pairwise, one line
	// per colliding pair, before any external dimension is consulted.
	var conflictLines []string
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if timeslot.Overlaps(entries[i], entries[j]) {
				conflictLines = append(conflictLines, fmt.Sprintf("TIMETABLE CONFLICT: %s (%s %s-%s) overlaps %s (%s %s-%s) in this timetable",
					entries[i].Name, entries[i].Day, entries[i].StartTime, entries[i].EndTime,
					entries[j].Name, entries[j].Day, entries[j].StartTime, entries[j].EndTime))
			}
		}
	}

	for _, entry := range entries {
		verdict, err := s.conflicts.Check(ctx, id, models.ConflictCheckRequest{
			Day:       entry.Day,
			StartTime: entry.StartTime,
			EndTime:   entry.EndTime,
			Location:  entry.Location,
		})
		if err != nil {
			return nil, err
		}
		if !verdict.HasConflict {
			continue
		}
		conflictLines = append(conflictLines, conflictLinesFor(entry, verdict)...)
	}

	if len(conflictLines) > 0 {
		return nil, appErrors.Clone(appErrors.ErrConflict, strings.Join(conflictLines, "\n"))
	}

	if err := s.repo.ReplaceTimetable(ctx, id, entries); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable")
	}
	s.invalidateDashboards(ctx)

	saved, err := s.repo.ListEntries(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload timetable")
	}
	return saved, nil
}

func conflictLinesFor(entry models.TimetableEntry, verdict *models.ConflictCheckResult) []string {
	var lines []string
	slot := fmt.Sprintf("%s %s-%s", entry.Day, entry.StartTime, entry.EndTime)
	for _, room := range verdict.ConflictingRooms {
		lines = append(lines, fmt.Sprintf("CLASSROOM CONFLICT: Room %s is already booked on %s", room, slot))
	}
	for _, user := range verdict.AffectedUsers {
		switch user.Role {
		case string(models.RoleProfessor):
			lines = append(lines, fmt.Sprintf("PROFESSOR CONFLICT: %s %s is teaching elsewhere on %s", user.FirstName, user.LastName, slot))
		case string(models.RoleStudent):
			lines = append(lines, fmt.Sprintf("STUDENT CONFLICT: %s %s has another class on %s", user.FirstName, user.LastName, slot))
		}
	}
	return lines
}

func (s *ClassGroupService) requireProfessor(ctx context.Context, professorID string) error {
	user, err := s.users.FindByID(ctx, professorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "professor not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load professor")
	}
	if user.Role != models.RoleProfessor {
		return appErrors.Clone(appErrors.ErrValidation, "assigned user is not a professor")
	}
	if !user.Active {
		return appErrors.Clone(appErrors.ErrValidation, "assigned professor is inactive")
	}
	return nil
}

func (s *ClassGroupService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
