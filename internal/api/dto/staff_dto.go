package dto

import "time"

// CreateStaffRequest payload.
type CreateStaffRequest struct {
	HotelID       string `json:"hotel_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	MaxConcurrent int    `json:"max_concurrent"`
	Active        bool   `json:"active"`
}

// UpdateStaffRequest payload; omitted fields are left unchanged.
type UpdateStaffRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	MaxConcurrent *int    `json:"max_concurrent"`
	Active        *bool   `json:"active"`
}

// StaffMemberResponse response.
type StaffMemberResponse struct {
	ID            string    `json:"id"`
	HotelID       string    `json:"hotel_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	MaxConcurrent int       `json:"max_concurrent"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StaffWorkloadResponse is one row of the workload snapshot.
type StaffWorkloadResponse struct {
	StaffID   string `json:"staff_id"`
	Name      string `json:"name"`
	Load      int    `json:"load"`
	Capacity  int    `json:"capacity"`
	Available bool   `json:"available"`
}
