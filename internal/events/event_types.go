package events

import (
	"time"

	"github.com/stayops/hotel-request-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestCreated      EventType = "request_created"
	EventRequestStateChanged EventType = "request_state_changed"
	EventRequestRated        EventType = "request_rated"
	EventRequestDeleted      EventType = "request_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	GuestID *string            `json:"guest_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services. Payloads are a closed
// set of typed structs so downstream aggregation stays exhaustive.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id"`
	HotelID   string    `json:"hotel_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// RequestCreatedPayload payload.
type RequestCreatedPayload struct {
	ServiceCategory string                 `json:"service_category"`
	Priority        domain.RequestPriority `json:"priority"`
	RoomID          string                 `json:"room_id"`
	Title           string                 `json:"title"`
}

// RequestStateChangedPayload payload.
type RequestStateChangedPayload struct {
	FromStatus      domain.RequestStatus `json:"from_status"`
	ToStatus        domain.RequestStatus `json:"to_status"`
	AssignedStaffID *string              `json:"assigned_staff_id,omitempty"`
}

// RequestRatedPayload payload.
type RequestRatedPayload struct {
	Rating int `json:"rating"`
}

// RequestDeletedPayload payload.
type RequestDeletedPayload struct {
	LastStatus domain.RequestStatus `json:"last_status"`
}
