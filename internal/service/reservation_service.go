package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	"github.com/tahasaad555/campus-admin-api/internal/timeslot"
	appErrors "github.com/tahasaad555/campus-admin-api/pkg/errors"
)

type reservationRepository interface {
	List(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	Create(ctx context.Context, reservation *models.Reservation) error
	UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) error
	ListActiveForRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]models.Reservation, error)
}

type reservationRoomRepository interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// CreateReservationRequest is the payload for booking a room.
type CreateReservationRequest struct {
	RoomID    string `json:"room_id" validate:"required,uuid4"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Purpose   string `json:"purpose" validate:"required"`
}

// Legal transitions of the reservation lifecycle.
var reservationTransitions = map[models.ReservationStatus][]models.ReservationStatus{
	models.ReservationPending:  {models.ReservationApproved, models.ReservationRejected, models.ReservationCancelled},
	models.ReservationApproved: {models.ReservationCancelled},
}

// ReservationService manages ad-hoc room bookings.
type ReservationService struct {
	repo      reservationRepository
	rooms     reservationRoomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReservationService constructs a ReservationService.
func NewReservationService(repo reservationRepository, rooms reservationRoomRepository, validate *validator.Validate, logger *zap.Logger) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReservationService{repo: repo, rooms: rooms, validator: validate, logger: logger}
}

// List returns reservations matching the filter.
func (s *ReservationService) List(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, int, error) {
	reservations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reservations")
	}
	return reservations, total, nil
}

// Get loads one reservation by id.
func (s *ReservationService) Get(ctx context.Context, id string) (*models.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	return reservation, nil
}

// Create books a room for a one-off slot. The room must be active and free of
// pending or approved reservations overlapping the requested interval.
func (s *ReservationService) Create(ctx context.Context, userID string, req CreateReservationRequest) (*models.Reservation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation payload")
	}
	if v := timeslot.ValidateTimeRange(req.StartTime, req.EndTime); !v.Valid {
		return nil, appErrors.Clone(appErrors.ErrValidation, v.Message)
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	room, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	if !room.Active {
		return nil, appErrors.Clone(appErrors.ErrRoomUnavailable, "room is inactive")
	}

	existing, err := s.repo.ListActiveForRoomAndDate(ctx, req.RoomID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check availability")
	}
	for _, held := range existing {
		if timeslot.RangesOverlap(req.StartTime, req.EndTime, held.StartTime, held.EndTime) {
			return nil, appErrors.Clone(appErrors.ErrRoomUnavailable,
				fmt.Sprintf("room %s is held %s-%s on %s", room.Number, held.StartTime, held.EndTime, req.Date))
		}
	}

	reservation := &models.Reservation{
		RoomID:    req.RoomID,
		UserID:    userID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Purpose:   req.Purpose,
		Status:    models.ReservationPending,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reservation")
	}
	return reservation, nil
}

// UpdateStatus moves a reservation through its lifecycle: pending may be
// approved, rejected or cancelled; approved may only be cancelled.
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error) {
	reservation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(reservation.Status, status) {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("cannot move reservation from %s to %s", reservation.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reservation")
	}
	reservation.Status = status
	return reservation, nil
}

func transitionAllowed(from, to models.ReservationStatus) bool {
	for _, allowed := range reservationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
