package models

// RoleCount pairs a user role with how many active users hold it.
type RoleCount struct {
	Role  UserRole `db:"role" json:"role"`
	Count int      `db:"count" json:"count"`
}

// RoomUsage summarises how many timetable hours a room carries per week.
type RoomUsage struct {
	Location   string `db:"location" json:"location"`
	EntryCount int    `db:"entry_count" json:"entry_count"`
	HoursUsed  int    `db:"hours_used" json:"hours_used"`
}

// DashboardSummary is the aggregate payload behind the admin landing page.
type DashboardSummary struct {
	ActiveRooms         int         `json:"active_rooms"`
	ClassGroups         int         `json:"class_groups"`
	TimetableEntries    int         `json:"timetable_entries"`
	PendingReservations int         `json:"pending_reservations"`
	UsersByRole         []RoleCount `json:"users_by_role"`
	BusiestRooms        []RoomUsage `json:"busiest_rooms"`
}
