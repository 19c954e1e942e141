package domain

import "time"

// StaffMember models a hotel staff member eligible for request assignment.
//
// MaxConcurrent is the capacity ceiling on simultaneously IN_PROGRESS
// requests. The current load is never stored on this record; it is always
// derived from request rows so the ceiling cannot drift.
type StaffMember struct {
	ID            string
	HotelID       string
	Name          string
	Email         string
	MaxConcurrent int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StaffWorkload is the derived point-in-time load view for one staff member.
type StaffWorkload struct {
	StaffID   string
	Name      string
	Load      int
	Capacity  int
	Available bool
}
