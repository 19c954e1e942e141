package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/events"
	"github.com/stayops/hotel-request-service/internal/repository"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// RequestService coordinates the request lifecycle outside of assignment:
// intake, reads, completion, cancellation, deletion and rating. Every
// mutation is a conditional store write; a failed precondition leaves the
// stored state untouched.
type RequestService struct {
	requests   repository.RequestRepository
	dispatcher events.Dispatcher
}

// RequestDependencies bundles repositories for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	Dispatcher  events.Dispatcher
}

// RequestCreateInput describes intake payload.
type RequestCreateInput struct {
	HotelID         string
	RoomID          string
	ServiceCategory string
	Title           string
	Description     string
	Priority        domain.RequestPriority
}

// RequestListFilter describes listing filters for staff views.
type RequestListFilter struct {
	HotelID         *string
	AssignedStaffID *string
	Statuses        []domain.RequestStatus
	Priorities      []domain.RequestPriority
	Categories      []string
	SearchTerm      *string
	RequestedFrom   *time.Time
	RequestedTo     *time.Time
	Limit           int
	Offset          int
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateRequest records a new guest request in PENDING state with no assignee.
func (s *RequestService) CreateRequest(ctx context.Context, guestID string, input RequestCreateInput) (*domain.ServiceRequest, error) {
	if input.HotelID == "" || input.RoomID == "" || input.ServiceCategory == "" || strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("hotel_id, room_id, service_category, title required", nil)
	}

	request := &domain.ServiceRequest{
		ExternalKey:     generateRequestKey(),
		HotelID:         input.HotelID,
		RoomID:          input.RoomID,
		GuestID:         guestID,
		ServiceCategory: input.ServiceCategory,
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		Status:          domain.RequestStatusPending,
		Priority:        input.Priority,
	}
	if request.Priority == "" {
		request.Priority = domain.RequestPriorityMedium
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestCreated,
		RequestID: request.ID,
		HotelID:   request.HotelID,
		Actor:     guestActor(guestID),
		Payload: events.RequestCreatedPayload{
			ServiceCategory: request.ServiceCategory,
			Priority:        request.Priority,
			RoomID:          request.RoomID,
			Title:           request.Title,
		},
	})
	return request, nil
}

// ListGuestRequests returns the guest's own requests.
func (s *RequestService) ListGuestRequests(ctx context.Context, guestID string, limit, offset int) ([]domain.ServiceRequest, error) {
	result, err := s.requests.ListWithFilter(ctx, repository.RequestFilter{
		GuestID: &guestID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return result, nil
}

// GetRequestForGuest fetches a request ensuring ownership.
func (s *RequestService) GetRequestForGuest(ctx context.Context, guestID, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.GuestID != guestID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return request, nil
}

// ListRequests returns requests matching the staff-side filter.
func (s *RequestService) ListRequests(ctx context.Context, filter RequestListFilter) ([]domain.ServiceRequest, error) {
	result, err := s.requests.ListWithFilter(ctx, repository.RequestFilter{
		HotelID:         filter.HotelID,
		AssignedStaffID: filter.AssignedStaffID,
		Statuses:        filter.Statuses,
		Priorities:      filter.Priorities,
		Categories:      filter.Categories,
		SearchTerm:      filter.SearchTerm,
		RequestedFrom:   filter.RequestedFrom,
		RequestedTo:     filter.RequestedTo,
		Limit:           filter.Limit,
		Offset:          filter.Offset,
	})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return result, nil
}

// GetRequest fetches a request for staff callers.
func (s *RequestService) GetRequest(ctx context.Context, requestID string) (*domain.ServiceRequest, error) {
	return s.getRequest(ctx, requestID)
}

// Complete marks an IN_PROGRESS request COMPLETED, stamping completed_at
// once. Completing an already COMPLETED request is a no-op success so a
// client retrying after a lost response sees the same outcome; the original
// completed_at is kept.
func (s *RequestService) Complete(ctx context.Context, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status == domain.RequestStatusCompleted {
		return request, nil
	}
	if request.Status != domain.RequestStatusInProgress {
		return nil, apperrors.NewInvalidTransition("complete", string(request.Status))
	}

	now := time.Now().UTC()
	done, err := s.requests.TransitionStatus(ctx, request.ID, domain.RequestStatusInProgress, domain.RequestStatusCompleted, &now)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !done {
		fresh, err := s.getRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if fresh.Status == domain.RequestStatusCompleted {
			return fresh, nil
		}
		return nil, apperrors.NewInvalidTransition("complete", string(fresh.Status))
	}

	oldStatus := request.Status
	request.Status = domain.RequestStatusCompleted
	request.CompletedAt = &now
	request.UpdatedAt = now

	actor := events.Actor{Type: domain.SubjectTypeStaff, StaffID: request.AssignedStaffID}
	s.publishStateChanged(ctx, request, oldStatus, actor)
	return request, nil
}

// Cancel cancels a PENDING or IN_PROGRESS request. Cancelling an active
// request releases the assignee, which frees the staff member's capacity by
// virtue of the derived load computation.
func (s *RequestService) Cancel(ctx context.Context, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// One retry covers the PENDING -> IN_PROGRESS race between read and commit.
	for attempt := 0; attempt < 2; attempt++ {
		if request.Status.Terminal() {
			return nil, apperrors.NewInvalidTransition("cancel", string(request.Status))
		}
		done, err := s.requests.TransitionStatus(ctx, request.ID, request.Status, domain.RequestStatusCancelled, nil)
		if err != nil {
			return nil, apperrors.NewStoreUnavailable(err)
		}
		if done {
			oldStatus := request.Status
			request.Status = domain.RequestStatusCancelled
			request.AssignedStaffID = nil
			request.UpdatedAt = time.Now().UTC()
			s.publishStateChanged(ctx, request, oldStatus, events.Actor{Type: domain.SubjectTypeStaff})
			return request, nil
		}
		request, err = s.getRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
	}
	return nil, apperrors.NewInvalidTransition("cancel", string(request.Status))
}

// CancelAsGuest cancels the guest's own request while it is still PENDING.
// Once staff work has started only the staff surface may cancel.
func (s *RequestService) CancelAsGuest(ctx context.Context, guestID, requestID string) (*domain.ServiceRequest, error) {
	request, err := s.GetRequestForGuest(ctx, guestID, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestStatusPending {
		return nil, apperrors.NewInvalidTransition("cancel", string(request.Status))
	}

	done, err := s.requests.TransitionStatus(ctx, request.ID, domain.RequestStatusPending, domain.RequestStatusCancelled, nil)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !done {
		fresh, err := s.getRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewInvalidTransition("cancel", string(fresh.Status))
	}

	oldStatus := request.Status
	request.Status = domain.RequestStatusCancelled
	request.AssignedStaffID = nil
	request.UpdatedAt = time.Now().UTC()
	s.publishStateChanged(ctx, request, oldStatus, guestActor(guestID))
	return request, nil
}

// Delete removes the record entirely. Administrative, allowed from any
// state, irreversible; the emitted event is the audit trail.
func (s *RequestService) Delete(ctx context.Context, requestID string) error {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, request.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("service request", map[string]any{"request_id": requestID})
		}
		return apperrors.NewStoreUnavailable(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventRequestDeleted,
		RequestID: request.ID,
		HotelID:   request.HotelID,
		Actor:     events.Actor{Type: domain.SubjectTypeStaff},
		Payload:   events.RequestDeletedPayload{LastStatus: request.Status},
	})
	return nil
}

// Rate records the guest rating for a COMPLETED request, once.
func (s *RequestService) Rate(ctx context.Context, guestID, requestID string, rating int) (*domain.ServiceRequest, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewInvalidRating("rating must be between 1 and 5")
	}
	request, err := s.GetRequestForGuest(ctx, guestID, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestStatusCompleted {
		return nil, apperrors.NewInvalidTransition("rate", string(request.Status))
	}
	if request.GuestRating != nil {
		return nil, apperrors.NewInvalidRating("request already rated")
	}

	done, err := s.requests.SetRating(ctx, request.ID, rating)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !done {
		return nil, apperrors.NewInvalidRating("request already rated")
	}

	request.GuestRating = &rating
	request.UpdatedAt = time.Now().UTC()
	s.publish(ctx, events.Event{
		Type:      events.EventRequestRated,
		RequestID: request.ID,
		HotelID:   request.HotelID,
		Actor:     guestActor(guestID),
		Payload:   events.RequestRatedPayload{Rating: rating},
	})
	return request, nil
}

func (s *RequestService) getRequest(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": id})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return request, nil
}

func (s *RequestService) publishStateChanged(ctx context.Context, request *domain.ServiceRequest, from domain.RequestStatus, actor events.Actor) {
	s.publish(ctx, events.Event{
		Type:      events.EventRequestStateChanged,
		RequestID: request.ID,
		HotelID:   request.HotelID,
		Actor:     actor,
		Payload: events.RequestStateChangedPayload{
			FromStatus:      from,
			ToStatus:        request.Status,
			AssignedStaffID: request.AssignedStaffID,
		},
	})
}

func (s *RequestService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateRequestKey() string {
	return "REQ-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
