package models

import (
	"time"

	"github.com/lib/pq"
)

// RoomType distinguishes bookable room categories.
type RoomType string

const (
	RoomTypeClassroom RoomType = "CLASSROOM"
	RoomTypeStudyRoom RoomType = "STUDY_ROOM"
	RoomTypeLab       RoomType = "LAB"
)

// Room represents a bookable campus room.
type Room struct {
	ID        string         `db:"id" json:"id"`
	Number    string         `db:"number" json:"number"`
	Building  string         `db:"building" json:"building"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Type      RoomType       `db:"type" json:"type"`
	Features  pq.StringArray `db:"features" json:"features"`
	Active    bool           `db:"active" json:"active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering criteria for listing rooms.
type RoomFilter struct {
	Building  string
	Type      *RoomType
	Active    *bool
	MinCap    int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
