package service

import (
	"context"

	"github.com/stayops/hotel-request-service/internal/domain"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// BulkOperation enumerates batch operation kinds.
type BulkOperation string

const (
	BulkOpAssign       BulkOperation = "ASSIGN"
	BulkOpReassign     BulkOperation = "REASSIGN"
	BulkOpStatusChange BulkOperation = "STATUS_CHANGE"
)

// BulkInput describes one bulk call.
type BulkInput struct {
	RequestIDs []string
	Operation  BulkOperation
	// StaffID is the explicit assignee for ASSIGN (optional, selector runs
	// when nil) and the target for REASSIGN (required).
	StaffID *string
	// Status is the STATUS_CHANGE target, COMPLETED or CANCELLED.
	Status *domain.RequestStatus
}

// BulkItemResult reports one item's outcome, aligned 1:1 with input order.
type BulkItemResult struct {
	RequestID string
	OK        bool
	ErrorCode string
}

// BulkService applies a lifecycle operation across many requests with
// partial-success semantics: items are processed in input order, each under
// the same preconditions as the single-item operation, and one failure never
// aborts or rolls back the rest.
type BulkService struct {
	requests    *RequestService
	assignments *AssignmentService
}

// NewBulkService constructs the service.
func NewBulkService(requests *RequestService, assignments *AssignmentService) *BulkService {
	return &BulkService{requests: requests, assignments: assignments}
}

// BulkApply validates the operation parameters once, then runs the per-item
// operation for every request ID. For ASSIGN without an explicit staff
// member the selector re-snapshots capacity before each item, so a staff
// member who fills up mid-batch stops receiving further items.
func (s *BulkService) BulkApply(ctx context.Context, input BulkInput) ([]BulkItemResult, error) {
	if len(input.RequestIDs) == 0 {
		return nil, apperrors.NewValidationError("request_ids required", nil)
	}
	switch input.Operation {
	case BulkOpAssign:
	case BulkOpReassign:
		if input.StaffID == nil {
			return nil, apperrors.NewValidationError("staff_id required for REASSIGN", nil)
		}
	case BulkOpStatusChange:
		if input.Status == nil {
			return nil, apperrors.NewValidationError("status required for STATUS_CHANGE", nil)
		}
		if *input.Status != domain.RequestStatusCompleted && *input.Status != domain.RequestStatusCancelled {
			return nil, apperrors.NewValidationError("status must be COMPLETED or CANCELLED",
				map[string]any{"status": *input.Status})
		}
	default:
		return nil, apperrors.NewValidationError("unknown bulk operation",
			map[string]any{"operation": input.Operation})
	}

	results := make([]BulkItemResult, 0, len(input.RequestIDs))
	for _, requestID := range input.RequestIDs {
		err := s.applyOne(ctx, requestID, input)
		result := BulkItemResult{RequestID: requestID, OK: err == nil}
		if err != nil {
			result.ErrorCode = apperrors.CodeOf(err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *BulkService) applyOne(ctx context.Context, requestID string, input BulkInput) error {
	switch input.Operation {
	case BulkOpAssign:
		_, err := s.assignments.AssignAndStart(ctx, requestID, input.StaffID)
		return err
	case BulkOpReassign:
		_, err := s.assignments.Reassign(ctx, requestID, *input.StaffID)
		return err
	default:
		if *input.Status == domain.RequestStatusCompleted {
			_, err := s.requests.Complete(ctx, requestID)
			return err
		}
		_, err := s.requests.Cancel(ctx, requestID)
		return err
	}
}
