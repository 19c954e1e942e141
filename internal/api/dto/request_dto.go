package dto

import (
	"time"

	"github.com/stayops/hotel-request-service/internal/domain"
)

// CreateRequestRequest payload.
type CreateRequestRequest struct {
	HotelID         string                 `json:"hotel_id"`
	RoomID          string                 `json:"room_id"`
	ServiceCategory string                 `json:"service_category"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Priority        domain.RequestPriority `json:"priority"`
}

// AssignRequestRequest payload; StaffID nil means auto-select.
type AssignRequestRequest struct {
	StaffID *string `json:"staff_id"`
}

// ReassignRequestRequest payload.
type ReassignRequestRequest struct {
	StaffID string `json:"staff_id"`
}

// RateRequestRequest payload.
type RateRequestRequest struct {
	Rating int `json:"rating"`
}

// BulkApplyRequest payload.
type BulkApplyRequest struct {
	RequestIDs []string              `json:"request_ids"`
	Operation  string                `json:"operation"`
	StaffID    *string               `json:"staff_id"`
	Status     *domain.RequestStatus `json:"status"`
}

// BulkItemResponse is one per-item outcome, aligned with input order.
type BulkItemResponse struct {
	RequestID string `json:"request_id"`
	OK        bool   `json:"ok"`
	ErrorCode string `json:"error_code,omitempty"`
}

// BulkApplyResponse carries the item results with a derived summary.
type BulkApplyResponse struct {
	Results    []BulkItemResponse `json:"results"`
	Successful int                `json:"successful"`
	Failed     int                `json:"failed"`
}

// RequestSummary response.
type RequestSummary struct {
	ID              string                 `json:"id"`
	ExternalKey     string                 `json:"external_key"`
	HotelID         string                 `json:"hotel_id"`
	RoomID          string                 `json:"room_id"`
	ServiceCategory string                 `json:"service_category"`
	Title           string                 `json:"title"`
	Status          domain.RequestStatus   `json:"status"`
	Priority        domain.RequestPriority `json:"priority"`
	AssignedStaffID *string                `json:"assigned_staff_id,omitempty"`
	RequestedAt     time.Time              `json:"requested_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// RequestDetailResponse provides full request info.
type RequestDetailResponse struct {
	ID              string                 `json:"id"`
	ExternalKey     string                 `json:"external_key"`
	HotelID         string                 `json:"hotel_id"`
	RoomID          string                 `json:"room_id"`
	GuestID         string                 `json:"guest_id"`
	ServiceCategory string                 `json:"service_category"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Status          domain.RequestStatus   `json:"status"`
	Priority        domain.RequestPriority `json:"priority"`
	AssignedStaffID *string                `json:"assigned_staff_id,omitempty"`
	GuestRating     *int                   `json:"guest_rating,omitempty"`
	RequestedAt     time.Time              `json:"requested_at"`
	StartedAt       *time.Time             `json:"started_at,omitempty"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
	UpdatedAt       time.Time              `json:"updated_at"`
}
