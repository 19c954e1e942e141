package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/events"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

func TestCreateRequestDefaults(t *testing.T) {
	engine := newTestEngine()

	request, err := engine.request.CreateRequest(context.Background(), "guest-1", RequestCreateInput{
		HotelID:         "hotel-1",
		RoomID:          "room-101",
		ServiceCategory: "housekeeping",
		Title:           "Extra towels",
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if request.Status != domain.RequestStatusPending {
		t.Fatalf("expected PENDING, got %s", request.Status)
	}
	if request.Priority != domain.RequestPriorityMedium {
		t.Fatalf("expected default MEDIUM priority, got %s", request.Priority)
	}
	if request.AssignedStaffID != nil {
		t.Fatal("new request must not carry an assignee")
	}
	if !strings.HasPrefix(request.ExternalKey, "REQ-") {
		t.Fatalf("unexpected external key %q", request.ExternalKey)
	}
	if request.RequestedAt.IsZero() {
		t.Fatal("requestedAt must be stamped")
	}

	created := engine.dispatcher.byType(events.EventRequestCreated)
	if len(created) != 1 {
		t.Fatalf("expected 1 created event, got %d", len(created))
	}
}

func TestCreateRequestValidation(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.request.CreateRequest(context.Background(), "guest-1", RequestCreateInput{
		HotelID: "hotel-1",
		RoomID:  "room-101",
		Title:   "  ",
	})
	assertCode(t, err, apperrors.CodeValidationFailed)
}

func TestGetRequestForGuestScoping(t *testing.T) {
	engine := newTestEngine()
	engine.seedPending("req-1")

	if _, err := engine.request.GetRequestForGuest(context.Background(), "guest-1", "req-1"); err != nil {
		t.Fatalf("owner must see own request: %v", err)
	}

	_, err := engine.request.GetRequestForGuest(context.Background(), "guest-2", "req-1")
	assertCode(t, err, apperrors.CodeForbidden)
}

// TestRequestLifecycle walks a request through assignment, completion and
// rating, including the out-of-range and repeat rating rejections.
func TestRequestLifecycle(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 2, true)
	engine.seedPending("req-1")
	ctx := context.Background()

	assigned, err := engine.assignment.AssignAndStart(ctx, "req-1", nil)
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if assigned.Status != domain.RequestStatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", assigned.Status)
	}

	completed, err := engine.request.Complete(ctx, "req-1")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != domain.RequestStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("expected COMPLETED with timestamp, got %+v", completed)
	}

	_, err = engine.request.Rate(ctx, "guest-1", "req-1", 6)
	assertCode(t, err, apperrors.CodeInvalidRating)

	rated, err := engine.request.Rate(ctx, "guest-1", "req-1", 4)
	if err != nil {
		t.Fatalf("rate failed: %v", err)
	}
	if rated.GuestRating == nil || *rated.GuestRating != 4 {
		t.Fatalf("expected rating 4, got %v", rated.GuestRating)
	}

	_, err = engine.request.Rate(ctx, "guest-1", "req-1", 2)
	assertCode(t, err, apperrors.CodeInvalidRating)

	stored, err := engine.requests.GetByID(ctx, "req-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.GuestRating == nil || *stored.GuestRating != 4 {
		t.Fatalf("rejected rating overwrote the stored one: %v", stored.GuestRating)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 2, true)
	engine.seedPending("req-1")
	ctx := context.Background()

	if _, err := engine.assignment.AssignAndStart(ctx, "req-1", nil); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	first, err := engine.request.Complete(ctx, "req-1")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	eventsBefore := len(engine.dispatcher.byType(events.EventRequestStateChanged))

	second, err := engine.request.Complete(ctx, "req-1")
	if err != nil {
		t.Fatalf("repeated complete must be a no-op success: %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("repeat changed completedAt: %v vs %v", second.CompletedAt, first.CompletedAt)
	}
	if after := len(engine.dispatcher.byType(events.EventRequestStateChanged)); after != eventsBefore {
		t.Fatal("repeated complete must not emit another state-changed event")
	}
}

func TestCompleteRejectsPending(t *testing.T) {
	engine := newTestEngine()
	engine.seedPending("req-1")

	_, err := engine.request.Complete(context.Background(), "req-1")
	assertCode(t, err, apperrors.CodeInvalidTransition)
}

func TestCancelFreesCapacity(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 1, true)
	engine.seedPending("req-1")
	engine.seedPending("req-2")
	ctx := context.Background()

	if _, err := engine.assignment.AssignAndStart(ctx, "req-1", strPtr("staff-a")); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := engine.assignment.AssignAndStart(ctx, "req-2", strPtr("staff-a")); err == nil {
		t.Fatal("expected second assignment to fail at capacity 1")
	}

	cancelled, err := engine.request.Cancel(ctx, "req-1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.RequestStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.AssignedStaffID != nil {
		t.Fatal("cancel must release the assignee")
	}

	if _, err := engine.assignment.AssignAndStart(ctx, "req-2", strPtr("staff-a")); err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}
}

func TestCancelRejectsTerminalStates(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 2, true)
	engine.seedPending("req-1")
	ctx := context.Background()

	if _, err := engine.assignment.AssignAndStart(ctx, "req-1", nil); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := engine.request.Complete(ctx, "req-1"); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	_, err := engine.request.Cancel(ctx, "req-1")
	assertCode(t, err, apperrors.CodeInvalidTransition)

	_, err = engine.request.Cancel(ctx, "req-1")
	assertCode(t, err, apperrors.CodeInvalidTransition)
}

func TestCancelAsGuestPendingOnly(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 2, true)
	engine.seedPending("req-1")
	engine.seedPending("req-2")
	ctx := context.Background()

	cancelled, err := engine.request.CancelAsGuest(ctx, "guest-1", "req-1")
	if err != nil {
		t.Fatalf("guest cancel of pending request failed: %v", err)
	}
	if cancelled.Status != domain.RequestStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	if _, err := engine.assignment.AssignAndStart(ctx, "req-2", nil); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	_, err = engine.request.CancelAsGuest(ctx, "guest-1", "req-2")
	assertCode(t, err, apperrors.CodeInvalidTransition)

	engine.seedPending("req-3")
	_, err = engine.request.CancelAsGuest(ctx, "guest-2", "req-3")
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestRateRequiresCompletion(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 2, true)
	engine.seedPending("req-1")
	ctx := context.Background()

	_, err := engine.request.Rate(ctx, "guest-1", "req-1", 3)
	assertCode(t, err, apperrors.CodeInvalidTransition)

	if _, err := engine.assignment.AssignAndStart(ctx, "req-1", nil); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	_, err = engine.request.Rate(ctx, "guest-1", "req-1", 3)
	assertCode(t, err, apperrors.CodeInvalidTransition)
}

func TestDeleteEmitsAuditEvent(t *testing.T) {
	engine := newTestEngine()
	engine.seedPending("req-1")
	ctx := context.Background()

	if err := engine.request.Delete(ctx, "req-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := engine.requests.GetByID(ctx, "req-1"); err == nil {
		t.Fatal("request should be gone after delete")
	}

	deleted := engine.dispatcher.byType(events.EventRequestDeleted)
	if len(deleted) != 1 {
		t.Fatalf("expected 1 deleted event, got %d", len(deleted))
	}
	payload, ok := deleted[0].Payload.(events.RequestDeletedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", deleted[0].Payload)
	}
	if payload.LastStatus != domain.RequestStatusPending {
		t.Fatalf("expected last status PENDING, got %s", payload.LastStatus)
	}

	err := engine.request.Delete(ctx, "req-1")
	assertCode(t, err, apperrors.CodeNotFound)
}
