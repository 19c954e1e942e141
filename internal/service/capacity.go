package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/repository"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// CapacityTracker derives per-staff load from IN_PROGRESS request rows.
// Load is never cached between operations; every call reads the store so a
// freed slot (completion, cancellation) is visible immediately.
type CapacityTracker struct {
	requests repository.RequestRepository
	staff    repository.StaffRepository
}

// NewCapacityTracker creates the tracker.
func NewCapacityTracker(requests repository.RequestRepository, staff repository.StaffRepository) *CapacityTracker {
	return &CapacityTracker{requests: requests, staff: staff}
}

// CurrentLoad returns the staff member's active request count.
func (t *CapacityTracker) CurrentLoad(ctx context.Context, staffID string) (int, error) {
	count, err := t.requests.CountActiveByStaff(ctx, staffID)
	if err != nil {
		return 0, apperrors.NewStoreUnavailable(err)
	}
	return count, nil
}

// IsAvailable reports whether the staff member can accept another request.
func (t *CapacityTracker) IsAvailable(ctx context.Context, staffID string) (bool, error) {
	staff, err := t.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
		}
		return false, apperrors.NewStoreUnavailable(err)
	}
	if !staff.Active {
		return false, nil
	}
	load, err := t.CurrentLoad(ctx, staffID)
	if err != nil {
		return false, err
	}
	return load < staff.MaxConcurrent, nil
}

// Snapshot returns the derived workload for every staff member of a hotel,
// ordered by staff ID.
func (t *CapacityTracker) Snapshot(ctx context.Context, hotelID string) ([]domain.StaffWorkload, error) {
	staffList, err := t.staff.ListByHotel(ctx, hotelID, repository.StaffFilter{})
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	counts, err := t.requests.ActiveCountsByHotel(ctx, hotelID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	snapshot := make([]domain.StaffWorkload, 0, len(staffList))
	for _, staff := range staffList {
		load := counts[staff.ID]
		snapshot = append(snapshot, domain.StaffWorkload{
			StaffID:   staff.ID,
			Name:      staff.Name,
			Load:      load,
			Capacity:  staff.MaxConcurrent,
			Available: staff.Active && load < staff.MaxConcurrent,
		})
	}
	return snapshot, nil
}
