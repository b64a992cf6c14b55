package models

import "time"

// ReportType enumerates the supported report renderings.
type ReportType string

const (
	ReportRoomUsageCSV  ReportType = "ROOM_USAGE_CSV"
	ReportTimetablePDF  ReportType = "TIMETABLE_PDF"
	ReportReservationCSV ReportType = "RESERVATIONS_CSV"
)

// ReportStatus tracks the lifecycle of an asynchronous report job.
type ReportStatus string

const (
	ReportPending ReportStatus = "PENDING"
	ReportRunning ReportStatus = "RUNNING"
	ReportDone    ReportStatus = "DONE"
	ReportFailed  ReportStatus = "FAILED"
)

// ReportJob is a queued report generation request and, once rendered, its payload.
type ReportJob struct {
	ID          string       `db:"id" json:"id"`
	Type        ReportType   `db:"type" json:"type"`
	Status      ReportStatus `db:"status" json:"status"`
	Params      string       `db:"params" json:"params,omitempty"`
	ContentType string       `db:"content_type" json:"content_type,omitempty"`
	Payload     []byte       `db:"payload" json:"-"`
	Error       string       `db:"error" json:"error,omitempty"`
	RequestedBy string       `db:"requested_by" json:"requested_by"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}
