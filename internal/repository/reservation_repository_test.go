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

func newReservationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReservationRepositoryCreateAndUpdateStatus(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	mock.ExpectExec("INSERT INTO reservations").
		WithArgs(sqlmock.AnyArg(), "r1", "u1", sqlmock.AnyArg(), "09:00", "10:00", "study group", models.ReservationPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	reservation := &models.Reservation{
		RoomID:    "r1",
		UserID:    "u1",
		Date:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "10:00",
		Purpose:   "study group",
		Status:    models.ReservationPending,
	}
	require.NoError(t, repo.Create(context.Background(), reservation))
	assert.NotEmpty(t, reservation.ID)

	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs(reservation.ID, models.ReservationApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), reservation.ID, models.ReservationApproved))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryListActiveForRoomAndDate(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "room_id", "user_id", "date", "start_time", "end_time", "purpose", "status", "created_at", "updated_at"}).
		AddRow("res1", "r1", "u1", date, "09:00", "10:00", "seminar", "APPROVED", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE room_id = $1 AND date = $2 AND status IN ('PENDING', 'APPROVED')")).
		WithArgs("r1", date).
		WillReturnRows(rows)

	reservations, err := repo.ListActiveForRoomAndDate(context.Background(), "r1", date)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, models.ReservationApproved, reservations[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	status := models.ReservationPending
	rows := sqlmock.NewRows([]string{"id", "room_id", "user_id", "date", "start_time", "end_time", "purpose", "status", "created_at", "updated_at", "room_number", "user_first_name", "user_last_name"}).
		AddRow("res1", "r1", "u1", time.Now(), "09:00", "10:00", "seminar", "PENDING", time.Now(), time.Now(), "Room101", "Jane", "Doe")
	mock.ExpectQuery(regexp.QuoteMeta("res.status = $1")).
		WithArgs(status).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ReservationFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Room101", list[0].RoomNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}
