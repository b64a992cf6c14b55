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

// ReservationRepository provides persistence for ad-hoc room reservations.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// List returns reservations with denormalised room and requester info.
func (r *ReservationRepository) List(ctx context.Context, filter models.ReservationFilter) ([]models.ReservationDetail, int, error) {
	base := `FROM reservations res
		JOIN rooms rm ON rm.id = res.room_id
		JOIN users u ON u.id = res.user_id
		WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("res.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("res.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("res.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("res.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("res.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"date":       "res.date",
		"status":     "res.status",
		"created_at": "res.created_at",
	}
	sortCol, ok := allowedSorts[sortBy]
	if !ok {
		sortCol = "res.date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf(`SELECT res.id, res.room_id, res.user_id, res.date, res.start_time, res.end_time, res.purpose, res.status, res.created_at, res.updated_at,
			rm.number AS room_number, u.first_name AS user_first_name, u.last_name AS user_last_name
		%s ORDER BY %s %s LIMIT %d OFFSET %d`, base, sortCol, order, size, offset)
	var reservations []models.ReservationDetail
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	return reservations, total, nil
}

// FindByID loads a reservation by id.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	const query = `SELECT id, room_id, user_id, date, start_time, end_time, purpose, status, created_at, updated_at
		FROM reservations WHERE id = $1`
	var reservation models.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, id); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Create inserts a new reservation.
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	const query = `INSERT INTO reservations (id, room_id, user_id, date, start_time, end_time, purpose, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		reservation.ID, reservation.RoomID, reservation.UserID, reservation.Date,
		reservation.StartTime, reservation.EndTime, reservation.Purpose, reservation.Status,
		reservation.CreatedAt, reservation.UpdatedAt); err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// UpdateStatus moves a reservation through its approval lifecycle.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) error {
	const query = `UPDATE reservations SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	return nil
}

// ListActiveForRoomAndDate returns pending and approved reservations holding
// the room on the given date.
func (r *ReservationRepository) ListActiveForRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]models.Reservation, error) {
	const query = `SELECT id, room_id, user_id, date, start_time, end_time, purpose, status, created_at, updated_at
		FROM reservations
		WHERE room_id = $1 AND date = $2 AND status IN ('PENDING', 'APPROVED')
		ORDER BY start_time`
	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, roomID, date); err != nil {
		return nil, fmt.Errorf("list reservations for room: %w", err)
	}
	return reservations, nil
}
