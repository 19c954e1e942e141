package domain

import "time"

// RequestStatus enumerates lifecycle states for service requests.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "PENDING"
	RequestStatusInProgress RequestStatus = "IN_PROGRESS"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusCancelled  RequestStatus = "CANCELLED"
)

// Terminal reports whether no further transitions may leave the status.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// RequestPriority enumerates urgency, URGENT > HIGH > MEDIUM > LOW.
type RequestPriority string

const (
	RequestPriorityLow    RequestPriority = "LOW"
	RequestPriorityMedium RequestPriority = "MEDIUM"
	RequestPriorityHigh   RequestPriority = "HIGH"
	RequestPriorityUrgent RequestPriority = "URGENT"
)

// ServiceRequest is the aggregate for guest-originated service requests.
//
// AssignedStaffID is non-nil exactly while the request is IN_PROGRESS or
// COMPLETED; cancelling a request releases the assignee. StartedAt and
// CompletedAt are each stamped once and never rewritten.
type ServiceRequest struct {
	ID              string
	ExternalKey     string
	HotelID         string
	RoomID          string
	GuestID         string
	ServiceCategory string
	Title           string
	Description     string
	Status          RequestStatus
	Priority        RequestPriority
	AssignedStaffID *string
	GuestRating     *int
	RequestedAt     time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	UpdatedAt       time.Time
}
