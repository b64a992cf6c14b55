package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahasaad555/campus-admin-api/internal/models"
	appErrors "github.com/tahasaad555/campus-admin-api/pkg/errors"
)

type mockReservationRepo struct {
	reservations map[string]models.Reservation
	active       []models.Reservation
	created      *models.Reservation
	statuses     map[string]models.ReservationStatus
}

func (m *mockReservationRepo) List(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, int, error) {
	return nil, 0, nil
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	if r, ok := m.reservations[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReservationRepo) Create(ctx context.Context, reservation *models.Reservation) error {
	reservation.ID = "res-new"
	m.created = reservation
	return nil
}

func (m *mockReservationRepo) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) error {
	if m.statuses == nil {
		m.statuses = make(map[string]models.ReservationStatus)
	}
	m.statuses[id] = status
	return nil
}

func (m *mockReservationRepo) ListActiveForRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]models.Reservation, error) {
	return m.active, nil
}

type mockRoomFinder struct {
	rooms map[string]models.Room
}

func (m *mockRoomFinder) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := m.rooms[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

const testRoomID = "22222222-2222-4222-8222-222222222222"

func newReservationFixture(active []models.Reservation) (*ReservationService, *mockReservationRepo) {
	repo := &mockReservationRepo{active: active}
	rooms := &mockRoomFinder{rooms: map[string]models.Room{
		testRoomID: {ID: testRoomID, Number: "Room101", Active: true},
	}}
	return NewReservationService(repo, rooms, nil, nil), repo
}

func TestReservationCreateFreeSlot(t *testing.T) {
	svc, repo := newReservationFixture(nil)

	reservation, err := svc.Create(context.Background(), "u1", CreateReservationRequest{
		RoomID:    testRoomID,
		Date:      "2026-09-07",
		StartTime: "09:00",
		EndTime:   "10:00",
		Purpose:   "study group",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, reservation.Status)
	assert.Equal(t, "u1", repo.created.UserID)
}

func TestReservationCreateRejectsOverlap(t *testing.T) {
	held := []models.Reservation{{RoomID: testRoomID, StartTime: "09:00", EndTime: "11:00", Status: models.ReservationApproved}}
	svc, repo := newReservationFixture(held)

	_, err := svc.Create(context.Background(), "u1", CreateReservationRequest{
		RoomID:    testRoomID,
		Date:      "2026-09-07",
		StartTime: "10:00",
		EndTime:   "11:00",
		Purpose:   "study group",
	})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrRoomUnavailable.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestReservationCreateAllowsAdjacentSlot(t *testing.T) {
	held := []models.Reservation{{RoomID: testRoomID, StartTime: "09:00", EndTime: "10:00", Status: models.ReservationApproved}}
	svc, _ := newReservationFixture(held)

	_, err := svc.Create(context.Background(), "u1", CreateReservationRequest{
		RoomID:    testRoomID,
		Date:      "2026-09-07",
		StartTime: "10:00",
		EndTime:   "11:00",
		Purpose:   "study group",
	})

	require.NoError(t, err)
}

func TestReservationCreateRejectsBadClock(t *testing.T) {
	svc, _ := newReservationFixture(nil)

	_, err := svc.Create(context.Background(), "u1", CreateReservationRequest{
		RoomID:    testRoomID,
		Date:      "2026-09-07",
		StartTime: "09:30",
		EndTime:   "10:30",
		Purpose:   "study group",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Start time must be on the hour")
}

func TestReservationStatusTransitions(t *testing.T) {
	repo := &mockReservationRepo{reservations: map[string]models.Reservation{
		"res-1": {ID: "res-1", Status: models.ReservationPending},
		"res-2": {ID: "res-2", Status: models.ReservationRejected},
	}}
	rooms := &mockRoomFinder{}
	svc := NewReservationService(repo, rooms, nil, nil)

	updated, err := svc.UpdateStatus(context.Background(), "res-1", models.ReservationApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationApproved, updated.Status)

	_, err = svc.UpdateStatus(context.Background(), "res-2", models.ReservationApproved)
	require.Error(t, err, "rejected is terminal")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}
