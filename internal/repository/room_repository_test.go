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

func newRoomRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "number", "building", "capacity", "type", "features", "active", "created_at", "updated_at"}).
		AddRow("r1", "Room101", "Main", 30, "CLASSROOM", "{projector}", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, number, building, capacity, type, features, active, created_at, updated_at FROM rooms WHERE 1=1 ORDER BY number ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rooms WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.RoomFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListFiltersAndRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	roomType := models.RoomTypeLab
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE 1=1 AND type = $1 AND capacity >= $2 ORDER BY number ASC LIMIT 20 OFFSET 0")).
		WithArgs(roomType, 25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "building", "capacity", "type", "features", "active", "created_at", "updated_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(roomType, 25).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.RoomFilter{
		Type:   &roomType,
		MinCap: 25,
		SortBy: "capacity; DROP TABLE rooms",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("INSERT INTO rooms").
		WithArgs(sqlmock.AnyArg(), "Room101", "Main", 30, models.RoomTypeClassroom, sqlmock.AnyArg(), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := &models.Room{Number: "Room101", Building: "Main", Capacity: 30, Type: models.RoomTypeClassroom, Active: true}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.NotEmpty(t, room.ID)

	mock.ExpectExec("UPDATE rooms SET active = FALSE").
		WithArgs("r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryExistsByNumber(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rooms WHERE number = $1 AND id <> $2 LIMIT 1")).
		WithArgs("Room101", "r1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err := repo.ExistsByNumber(context.Background(), "Room101", "r1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
