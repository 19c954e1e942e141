package service

import (
	"context"
	"testing"

	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

func TestCreateStaffMemberRequiresCapacity(t *testing.T) {
	engine := newTestEngine()
	svc := NewStaffService(engine.staff)
	ctx := context.Background()

	_, err := svc.CreateStaffMember(ctx, StaffCreateInput{HotelID: "hotel-1", Name: "Ada"})
	assertCode(t, err, apperrors.CodeValidationFailed)

	_, err = svc.CreateStaffMember(ctx, StaffCreateInput{HotelID: "hotel-1", Name: "Ada", MaxConcurrent: -1})
	assertCode(t, err, apperrors.CodeValidationFailed)

	staff, err := svc.CreateStaffMember(ctx, StaffCreateInput{
		HotelID:       "hotel-1",
		Name:          " Ada ",
		MaxConcurrent: 3,
		Active:        true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if staff.ID == "" {
		t.Fatal("expected an assigned ID")
	}
	if staff.Name != "Ada" {
		t.Fatalf("expected trimmed name, got %q", staff.Name)
	}
}

func TestUpdateStaffMemberPartial(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 2, true)
	svc := NewStaffService(engine.staff)
	ctx := context.Background()

	capacity := 5
	updated, err := svc.UpdateStaffMember(ctx, "staff-a", StaffUpdateInput{MaxConcurrent: &capacity})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.MaxConcurrent != 5 {
		t.Fatalf("expected capacity 5, got %d", updated.MaxConcurrent)
	}
	if updated.Name != "Staff staff-a" || !updated.Active {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	zero := 0
	_, err = svc.UpdateStaffMember(ctx, "staff-a", StaffUpdateInput{MaxConcurrent: &zero})
	assertCode(t, err, apperrors.CodeValidationFailed)

	_, err = svc.UpdateStaffMember(ctx, "missing", StaffUpdateInput{})
	assertCode(t, err, apperrors.CodeNotFound)
}

// Deactivation blocks new work but leaves current assignments alone.
func TestDeactivationKeepsActiveAssignments(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 2, true)
	engine.seedPending("req-1")
	svc := NewStaffService(engine.staff)
	ctx := context.Background()

	if _, err := engine.assignment.AssignAndStart(ctx, "req-1", strPtr("staff-a")); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	inactive := false
	if _, err := svc.UpdateStaffMember(ctx, "staff-a", StaffUpdateInput{Active: &inactive}); err != nil {
		t.Fatalf("deactivation failed: %v", err)
	}

	request, err := engine.requests.GetByID(ctx, "req-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if request.AssignedStaffID == nil || *request.AssignedStaffID != "staff-a" {
		t.Fatalf("deactivation must not touch active work: %+v", request)
	}

	engine.seedPending("req-2")
	_, err = engine.assignment.AssignAndStart(ctx, "req-2", strPtr("staff-a"))
	assertCode(t, err, apperrors.CodeConflict)
}

func TestListStaffMembersActiveFilter(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 2, true)
	engine.seedStaff("staff-b", 2, false)
	svc := NewStaffService(engine.staff)
	ctx := context.Background()

	all, err := svc.ListStaffMembers(ctx, "hotel-1", false, 50, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 staff, got %d", len(all))
	}

	active, err := svc.ListStaffMembers(ctx, "hotel-1", true, 50, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != "staff-a" {
		t.Fatalf("expected only staff-a, got %+v", active)
	}
}

func TestCapacityTrackerAvailability(t *testing.T) {
	engine := newTestEngine()
	engine.seedStaff("staff-a", 1, true)
	engine.seedStaff("staff-b", 1, false)
	engine.seedPending("req-1")
	ctx := context.Background()

	available, err := engine.tracker.IsAvailable(ctx, "staff-a")
	if err != nil || !available {
		t.Fatalf("idle active staff must be available: %v %v", available, err)
	}

	if _, err := engine.assignment.AssignAndStart(ctx, "req-1", strPtr("staff-a")); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	available, err = engine.tracker.IsAvailable(ctx, "staff-a")
	if err != nil || available {
		t.Fatalf("staff at capacity must be unavailable: %v %v", available, err)
	}

	available, err = engine.tracker.IsAvailable(ctx, "staff-b")
	if err != nil || available {
		t.Fatalf("inactive staff must be unavailable: %v %v", available, err)
	}

	_, err = engine.tracker.IsAvailable(ctx, "missing")
	assertCode(t, err, apperrors.CodeNotFound)
}
