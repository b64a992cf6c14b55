package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tahasaad555/campus-admin-api/internal/models"
)

// DashboardRepository runs the aggregate queries behind the admin landing page.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates a new dashboard repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountActiveRooms returns the number of bookable rooms.
func (r *DashboardRepository) CountActiveRooms(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM rooms WHERE active = TRUE`); err != nil {
		return 0, fmt.Errorf("count active rooms: %w", err)
	}
	return count, nil
}

// CountClassGroups returns the total number of class groups.
func (r *DashboardRepository) CountClassGroups(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM class_groups`); err != nil {
		return 0, fmt.Errorf("count class groups: %w", err)
	}
	return count, nil
}

// CountTimetableEntries returns the total number of scheduled meetings.
func (r *DashboardRepository) CountTimetableEntries(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM timetable_entries`); err != nil {
		return 0, fmt.Errorf("count timetable entries: %w", err)
	}
	return count, nil
}

// CountPendingReservations returns reservations awaiting review.
func (r *DashboardRepository) CountPendingReservations(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reservations WHERE status = 'PENDING'`); err != nil {
		return 0, fmt.Errorf("count pending reservations: %w", err)
	}
	return count, nil
}

// CountUsersByRole returns active user counts grouped by role.
func (r *DashboardRepository) CountUsersByRole(ctx context.Context) ([]models.RoleCount, error) {
	const query = `SELECT role, COUNT(*) AS count FROM users WHERE active = TRUE GROUP BY role ORDER BY role`
	var counts []models.RoleCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	return counts, nil
}

// BusiestRooms returns the locations carrying the most weekly timetable hours.
func (r *DashboardRepository) BusiestRooms(ctx context.Context, limit int) ([]models.RoomUsage, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT location, COUNT(*) AS entry_count,
			COALESCE(SUM(CAST(SPLIT_PART(end_time, ':', 1) AS INT) - CAST(SPLIT_PART(start_time, ':', 1) AS INT)), 0) AS hours_used
		FROM timetable_entries
		GROUP BY location
		ORDER BY hours_used DESC, location
		LIMIT %d`, limit)
	var usage []models.RoomUsage
	if err := r.db.SelectContext(ctx, &usage, query); err != nil {
		return nil, fmt.Errorf("busiest rooms: %w", err)
	}
	return usage, nil
}
