package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/repository"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// StaffService manages staff member configuration. Capacity is configuration
// data owned by the hotel administration; the engine never defaults it, so a
// positive MaxConcurrent is required on create.
type StaffService struct {
	staff repository.StaffRepository
}

// NewStaffService constructs the service.
func NewStaffService(staff repository.StaffRepository) *StaffService {
	return &StaffService{staff: staff}
}

// StaffCreateInput describes a new staff member.
type StaffCreateInput struct {
	HotelID       string
	Name          string
	Email         string
	MaxConcurrent int
	Active        bool
}

// StaffUpdateInput describes partial updates; nil fields are left unchanged.
type StaffUpdateInput struct {
	Name          *string
	Email         *string
	MaxConcurrent *int
	Active        *bool
}

// CreateStaffMember registers a staff member.
func (s *StaffService) CreateStaffMember(ctx context.Context, input StaffCreateInput) (*domain.StaffMember, error) {
	if input.HotelID == "" || strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("hotel_id and name required", nil)
	}
	if input.MaxConcurrent <= 0 {
		return nil, apperrors.NewValidationError("max_concurrent must be positive", nil)
	}
	staff := &domain.StaffMember{
		HotelID:       input.HotelID,
		Name:          strings.TrimSpace(input.Name),
		Email:         strings.TrimSpace(input.Email),
		MaxConcurrent: input.MaxConcurrent,
		Active:        input.Active,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return staff, nil
}

// UpdateStaffMember applies configuration changes. Deactivating a staff
// member only blocks new assignment; work already in progress stays assigned.
func (s *StaffService) UpdateStaffMember(ctx context.Context, staffID string, input StaffUpdateInput) (*domain.StaffMember, error) {
	staff, err := s.GetStaffMember(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		staff.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		staff.Email = strings.TrimSpace(*input.Email)
	}
	if input.MaxConcurrent != nil {
		if *input.MaxConcurrent <= 0 {
			return nil, apperrors.NewValidationError("max_concurrent must be positive", nil)
		}
		staff.MaxConcurrent = *input.MaxConcurrent
	}
	if input.Active != nil {
		staff.Active = *input.Active
	}
	if err := s.staff.Update(ctx, staff); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return staff, nil
}

// GetStaffMember fetches one staff member.
func (s *StaffService) GetStaffMember(ctx context.Context, staffID string) (*domain.StaffMember, error) {
	staff, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return staff, nil
}

// ListStaffMembers lists a hotel's staff.
func (s *StaffService) ListStaffMembers(ctx context.Context, hotelID string, activeOnly bool, limit, offset int) ([]domain.StaffMember, error) {
	filter := repository.StaffFilter{Limit: limit, Offset: offset}
	if activeOnly {
		active := true
		filter.Active = &active
	}
	result, err := s.staff.ListByHotel(ctx, hotelID, filter)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return result, nil
}
