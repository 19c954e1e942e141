package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/events"
	"github.com/stayops/hotel-request-service/internal/repository"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// AssignmentService owns staff selection and the PENDING -> IN_PROGRESS
// transition. Selection works from a fresh capacity snapshot on every call;
// the commit itself re-checks capacity inside the store so a lost race is
// surfaced as CAPACITY_EXCEEDED rather than an overbooked staff member.
type AssignmentService struct {
	requests   repository.RequestRepository
	staff      repository.StaffRepository
	tracker    *CapacityTracker
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	RequestRepo repository.RequestRepository
	StaffRepo   repository.StaffRepository
	Tracker     *CapacityTracker
	Dispatcher  events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		requests:   deps.RequestRepo,
		staff:      deps.StaffRepo,
		tracker:    deps.Tracker,
		dispatcher: deps.Dispatcher,
	}
}

// SelectStaff picks the eligible staff member with the lowest current load,
// breaking ties by lowest staff ID so repeated calls stay deterministic.
// The second return value is false when nobody has free capacity.
//
// serviceCategory is accepted as an extension point for capability-aware
// routing; the current policy treats all staff as capability-equivalent.
func (s *AssignmentService) SelectStaff(ctx context.Context, hotelID, serviceCategory string) (*domain.StaffWorkload, bool, error) {
	_ = serviceCategory

	snapshot, err := s.tracker.Snapshot(ctx, hotelID)
	if err != nil {
		return nil, false, err
	}

	eligible := snapshot[:0:0]
	for _, wl := range snapshot {
		if wl.Available {
			eligible = append(eligible, wl)
		}
	}
	if len(eligible) == 0 {
		return nil, false, nil
	}
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Load != eligible[j].Load {
			return eligible[i].Load < eligible[j].Load
		}
		return eligible[i].StaffID < eligible[j].StaffID
	})
	chosen := eligible[0]
	return &chosen, true, nil
}

// AssignAndStart moves a PENDING request to IN_PROGRESS. When staffID is nil
// the selector chooses an assignee; when no one has capacity the request
// stays PENDING and NO_CAPACITY_AVAILABLE is returned. The capacity check is
// repeated at commit time, so a race for the last free slot fails exactly
// one of the callers with CAPACITY_EXCEEDED.
func (s *AssignmentService) AssignAndStart(ctx context.Context, requestID string, staffID *string) (*domain.ServiceRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestStatusPending {
		return nil, apperrors.NewInvalidTransition("assign", string(request.Status))
	}

	var assignee *domain.StaffMember
	if staffID != nil {
		assignee, err = s.getStaff(ctx, *staffID)
		if err != nil {
			return nil, err
		}
		if !assignee.Active {
			return nil, apperrors.NewConflict("staff member inactive", map[string]any{"staff_id": assignee.ID})
		}
	} else {
		chosen, ok, err := s.SelectStaff(ctx, request.HotelID, request.ServiceCategory)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.NewNoCapacityAvailable(request.HotelID)
		}
		assignee, err = s.getStaff(ctx, chosen.StaffID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	claimed, err := s.requests.ClaimPending(ctx, request.ID, assignee.ID, assignee.MaxConcurrent, now)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !claimed {
		fresh, err := s.getRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if fresh.Status != domain.RequestStatusPending {
			return nil, apperrors.NewInvalidTransition("assign", string(fresh.Status))
		}
		return nil, apperrors.NewCapacityExceeded(assignee.ID)
	}

	request.Status = domain.RequestStatusInProgress
	request.AssignedStaffID = &assignee.ID
	request.StartedAt = &now
	request.UpdatedAt = now

	s.publishStateChanged(ctx, request, domain.RequestStatusPending, staffActor(assignee.ID))
	return request, nil
}

// Reassign hands an IN_PROGRESS request to another staff member under the
// same commit-time capacity guard. Reassigning to the current assignee is a
// no-op success.
func (s *AssignmentService) Reassign(ctx context.Context, requestID, staffID string) (*domain.ServiceRequest, error) {
	request, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestStatusInProgress {
		return nil, apperrors.NewInvalidTransition("reassign", string(request.Status))
	}
	if request.AssignedStaffID != nil && *request.AssignedStaffID == staffID {
		return request, nil
	}

	assignee, err := s.getStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if !assignee.Active {
		return nil, apperrors.NewConflict("staff member inactive", map[string]any{"staff_id": assignee.ID})
	}

	moved, err := s.requests.ReassignActive(ctx, request.ID, assignee.ID, assignee.MaxConcurrent)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !moved {
		fresh, err := s.getRequest(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if fresh.Status != domain.RequestStatusInProgress {
			return nil, apperrors.NewInvalidTransition("reassign", string(fresh.Status))
		}
		return nil, apperrors.NewCapacityExceeded(assignee.ID)
	}

	request.AssignedStaffID = &assignee.ID
	request.UpdatedAt = time.Now().UTC()

	s.publishStateChanged(ctx, request, domain.RequestStatusInProgress, staffActor(assignee.ID))
	return request, nil
}

func (s *AssignmentService) getRequest(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service request", map[string]any{"request_id": id})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return request, nil
}

func (s *AssignmentService) getStaff(ctx context.Context, id string) (*domain.StaffMember, error) {
	staff, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": id})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return staff, nil
}

func (s *AssignmentService) publishStateChanged(ctx context.Context, request *domain.ServiceRequest, from domain.RequestStatus, actor events.Actor) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventRequestStateChanged,
		RequestID: request.ID,
		HotelID:   request.HotelID,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload: events.RequestStateChangedPayload{
			FromStatus:      from,
			ToStatus:        request.Status,
			AssignedStaffID: request.AssignedStaffID,
		},
	})
}

func staffActor(staffID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeStaff, StaffID: &staffID}
}

func guestActor(guestID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeGuest, GuestID: &guestID}
}
