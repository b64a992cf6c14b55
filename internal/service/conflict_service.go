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

const maxAlternatives = 3

type conflictClassGroupRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClassGroupDetail, error)
	ListEntriesForRoom(ctx context.Context, location string, day models.Weekday, excludeGroupID string) ([]models.TimetableEntry, error)
	ListEntriesForProfessor(ctx context.Context, professorID string, day models.Weekday, excludeGroupID string) ([]models.TimetableEntry, error)
	ListEntriesForStudents(ctx context.Context, studentIDs []string, day models.Weekday, excludeGroupID string) ([]models.StudentTimetableEntry, error)
}

type conflictUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// ConflictService answers whether a candidate timetable slot collides with
// commitments outside the class group being edited: other groups in the same
// room, the group's professor elsewhere, or any enrolled student elsewhere.
type ConflictService struct {
	groups    conflictClassGroupRepository
	users     conflictUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConflictService constructs a ConflictService.
func NewConflictService(groups conflictClassGroupRepository, users conflictUserRepository, validate *validator.Validate, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ConflictService{groups: groups, users: users, validator: validate, logger: logger}
}

// Check evaluates one candidate slot for a class group. A malformed time range
// yields a TIME_FORMAT conflict rather than an error so callers always get a
// verdict for well-formed requests.
func (s *ConflictService) Check(ctx context.Context, classGroupID string, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	if !models.ValidWeekday(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day: %s", req.Day))
	}

	if v := timeslot.ValidateTimeRange(req.StartTime, req.EndTime); !v.Valid {
		return &models.ConflictCheckResult{
			HasConflict:  true,
			Message:      v.Message,
			ConflictType: []models.ConflictType{models.ConflictTimeFormat},
		}, nil
	}

	group, err := s.groups.FindByID(ctx, classGroupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
	}

	result, err := s.scan(ctx, group, req)
	if err != nil {
		return nil, err
	}
	if !result.HasConflict {
		return &models.ConflictCheckResult{HasConflict: false}, nil
	}

	alternatives, err := s.suggestAlternatives(ctx, group, req)
	if err != nil {
		s.logger.Warn("failed to compute alternative slots", zap.Error(err))
	} else {
		result.Alternatives = alternatives
	}
	return result, nil
}

// scan collects every conflict dimension for the candidate slot.
func (s *ConflictService) scan(ctx context.Context, group *models.ClassGroupDetail, req models.ConflictCheckRequest) (*models.ConflictCheckResult, error) {
	candidate := models.TimetableEntry{Day: req.Day, StartTime: req.StartTime, EndTime: req.EndTime, Location: req.Location}

	result := &models.ConflictCheckResult{}
	var messages []string

	if req.Location != "" {
		roomEntries, err := s.groups.ListEntriesForRoom(ctx, req.Location, req.Day, group.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan room bookings")
		}
		for _, entry := range roomEntries {
			if !timeslot.Overlaps(candidate, entry) {
				continue
			}
			result.ConflictType = appendUniqueType(result.ConflictType, models.ConflictClassroom)
			// Legacy wire contract: room clashes ride in affectedUsers with
			// role CLASSROOM and the room number in lastName.
			result.AffectedUsers = appendUniqueUser(result.AffectedUsers, models.AffectedUser{
				ID:       "room:" + req.Location,
				LastName: req.Location,
				Role:     string(models.ConflictClassroom),
			})
			result.ConflictingRooms = appendUniqueString(result.ConflictingRooms, req.Location)
			messages = append(messages, fmt.Sprintf("Room %s is already booked on %s %s-%s (%s)",
				req.Location, req.Day, entry.StartTime, entry.EndTime, entry.Name))
		}
	}

	professorEntries, err := s.groups.ListEntriesForProfessor(ctx, group.ProfessorID, req.Day, group.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan professor schedule")
	}
	for _, entry := range professorEntries {
		if !timeslot.Overlaps(candidate, entry) {
			continue
		}
		result.ConflictType = appendUniqueType(result.ConflictType, models.ConflictProfessor)
		result.AffectedUsers = appendUniqueUser(result.AffectedUsers, models.AffectedUser{
			ID:        group.ProfessorID,
			FirstName: group.ProfessorFirstName,
			LastName:  group.ProfessorLastName,
			Role:      string(models.RoleProfessor),
		})
		messages = append(messages, fmt.Sprintf("Professor %s %s teaches %s on %s %s-%s",
			group.ProfessorFirstName, group.ProfessorLastName, entry.Name, req.Day, entry.StartTime, entry.EndTime))
	}

	studentEntries, err := s.groups.ListEntriesForStudents(ctx, group.StudentIDs, req.Day, group.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan student schedules")
	}
	clashedStudents := 0
	for _, entry := range studentEntries {
		if !timeslot.Overlaps(candidate, entry.TimetableEntry) {
			continue
		}
		result.ConflictType = appendUniqueType(result.ConflictType, models.ConflictStudent)
		before := len(result.AffectedUsers)
		result.AffectedUsers = appendUniqueUser(result.AffectedUsers, models.AffectedUser{
			ID:        entry.StudentID,
			FirstName: entry.StudentFirstName,
			LastName:  entry.StudentLastName,
			Role:      string(models.RoleStudent),
		})
		if len(result.AffectedUsers) > before {
			clashedStudents++
		}
	}
	if clashedStudents > 0 {
		messages = append(messages, fmt.Sprintf("%d student(s) have overlapping classes at this time", clashedStudents))
	}

	if len(result.ConflictType) == 0 {
		return &models.ConflictCheckResult{HasConflict: false}, nil
	}
	result.HasConflict = true
	result.Message = strings.Join(messages, "; ")
	return result, nil
}

// suggestAlternatives proposes up to maxAlternatives clear slots of the same
// duration: first later and earlier hours on the requested day, then the same
// hours on other teaching days.
func (s *ConflictService) suggestAlternatives(ctx context.Context, group *models.ClassGroupDetail, req models.ConflictCheckRequest) ([]models.AlternativeSlot, error) {
	startHour, _, startOK := timeslot.ParseClock(req.StartTime)
	endHour, _, endOK := timeslot.ParseClock(req.EndTime)
	if !startOK || !endOK {
		return nil, fmt.Errorf("malformed clock range %s-%s", req.StartTime, req.EndTime)
	}
	duration := endHour - startHour

	type candidateSlot struct {
		day   models.Weekday
		start int
	}
	var candidates []candidateSlot

	// Same day first, scanning outward from the requested hour.
	for offset := 1; offset <= 9; offset++ {
		if later := startHour + offset; later+duration <= 18 {
			candidates = append(candidates, candidateSlot{req.Day, later})
		}
		if earlier := startHour - offset; earlier >= 8 {
			candidates = append(candidates, candidateSlot{req.Day, earlier})
		}
	}
	for _, day := range models.Weekdays {
		if day == req.Day {
			continue
		}
		candidates = append(candidates, candidateSlot{day, startHour})
	}

	var alternatives []models.AlternativeSlot
	for _, c := range candidates {
		if len(alternatives) >= maxAlternatives {
			break
		}
		probe := models.ConflictCheckRequest{
			Day:       c.day,
			StartTime: fmt.Sprintf("%02d:00", c.start),
			EndTime:   fmt.Sprintf("%02d:00", c.start+duration),
			Location:  req.Location,
		}
		verdict, err := s.scan(ctx, group, probe)
		if err != nil {
			return nil, err
		}
		if verdict.HasConflict {
			continue
		}
		alternatives = append(alternatives, models.AlternativeSlot{
			Day:       probe.Day,
			StartTime: probe.StartTime,
			EndTime:   probe.EndTime,
			Label:     fmt.Sprintf("%s %s-%s", probe.Day, probe.StartTime, probe.EndTime),
		})
	}
	return alternatives, nil
}

func appendUniqueType(types []models.ConflictType, t models.ConflictType) []models.ConflictType {
	for _, existing := range types {
		if existing == t {
			return types
		}
	}
	return append(types, t)
}

func appendUniqueUser(users []models.AffectedUser, user models.AffectedUser) []models.AffectedUser {
	for _, existing := range users {
		if existing.ID == user.ID {
			return users
		}
	}
	return append(users, user)
}

func appendUniqueString(values []string, value string) []string {
	for _, existing := range values {
		if existing == value {
			return values
		}
	}
	return append(values, value)
}
