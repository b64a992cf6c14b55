package models

import "time"

// ReservationStatus tracks the approval lifecycle of an ad-hoc booking.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationApproved  ReservationStatus = "APPROVED"
	ReservationRejected  ReservationStatus = "REJECTED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation is an ad-hoc one-off room booking, distinct from the recurring
// timetable entries owned by class groups.
type Reservation struct {
	ID        string            `db:"id" json:"id"`
	RoomID    string            `db:"room_id" json:"room_id"`
	UserID    string            `db:"user_id" json:"user_id"`
	Date      time.Time         `db:"date" json:"date"`
	StartTime string            `db:"start_time" json:"start_time"`
	EndTime   string            `db:"end_time" json:"end_time"`
	Purpose   string            `db:"purpose" json:"purpose"`
	Status    ReservationStatus `db:"status" json:"status"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// ReservationDetail adds denormalised room and requester info for list views.
type ReservationDetail struct {
	Reservation
	RoomNumber    string `db:"room_number" json:"room_number"`
	UserFirstName string `db:"user_first_name" json:"user_first_name"`
	UserLastName  string `db:"user_last_name" json:"user_last_name"`
}

// ReservationFilter captures filter criteria for listing reservations.
type ReservationFilter struct {
	RoomID    string
	UserID    string
	Status    *ReservationStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
