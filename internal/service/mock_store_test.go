package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/events"
	"github.com/stayops/hotel-request-service/internal/repository"
)

// mockRequestRepo is an in-memory RequestRepository. The conditional
// mutations take the same all-or-nothing form as the SQL ones: every
// precondition is evaluated under the lock that also applies the change.
type mockRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*domain.ServiceRequest
	seq      int
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]*domain.ServiceRequest)}
}

func (m *mockRequestRepo) Create(_ context.Context, request *domain.ServiceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if request.ID == "" {
		m.seq++
		request.ID = fmt.Sprintf("req-%03d", m.seq)
	}
	if request.RequestedAt.IsZero() {
		request.RequestedAt = time.Now().UTC()
	}
	request.UpdatedAt = request.RequestedAt
	clone := *request
	m.requests[request.ID] = &clone
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if request, ok := m.requests[id]; ok {
		clone := *request
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRequestRepo) GetByExternalKey(_ context.Context, key string) (*domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, request := range m.requests {
		if request.ExternalKey == key {
			clone := *request
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRequestRepo) ListWithFilter(_ context.Context, filter repository.RequestFilter) ([]domain.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.ServiceRequest
	for _, request := range m.requests {
		if filter.HotelID != nil && request.HotelID != *filter.HotelID {
			continue
		}
		if filter.GuestID != nil && request.GuestID != *filter.GuestID {
			continue
		}
		if filter.AssignedStaffID != nil {
			if request.AssignedStaffID == nil || *request.AssignedStaffID != *filter.AssignedStaffID {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, request.Status) {
			continue
		}
		result = append(result, *request)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockRequestRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.requests, id)
	return nil
}

func (m *mockRequestRepo) CountActiveByStaff(_ context.Context, staffID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeCountLocked(staffID), nil
}

func (m *mockRequestRepo) ActiveCountsByHotel(_ context.Context, hotelID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, request := range m.requests {
		if request.HotelID == hotelID && request.Status == domain.RequestStatusInProgress && request.AssignedStaffID != nil {
			counts[*request.AssignedStaffID]++
		}
	}
	return counts, nil
}

func (m *mockRequestRepo) ClaimPending(_ context.Context, id, staffID string, capacity int, startedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status != domain.RequestStatusPending {
		return false, nil
	}
	if m.activeCountLocked(staffID) >= capacity {
		return false, nil
	}
	started := startedAt
	request.Status = domain.RequestStatusInProgress
	request.AssignedStaffID = &staffID
	request.StartedAt = &started
	request.UpdatedAt = startedAt
	return true, nil
}

func (m *mockRequestRepo) ReassignActive(_ context.Context, id, staffID string, capacity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status != domain.RequestStatusInProgress {
		return false, nil
	}
	if request.AssignedStaffID != nil && *request.AssignedStaffID == staffID {
		return false, nil
	}
	if m.activeCountLocked(staffID) >= capacity {
		return false, nil
	}
	request.AssignedStaffID = &staffID
	request.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *mockRequestRepo) TransitionStatus(_ context.Context, id string, from, to domain.RequestStatus, stamp *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status != from {
		return false, nil
	}
	request.Status = to
	request.UpdatedAt = time.Now().UTC()
	switch to {
	case domain.RequestStatusCompleted:
		request.CompletedAt = stamp
	case domain.RequestStatusCancelled:
		request.AssignedStaffID = nil
	}
	return true, nil
}

func (m *mockRequestRepo) SetRating(_ context.Context, id string, rating int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	request, ok := m.requests[id]
	if !ok || request.Status != domain.RequestStatusCompleted || request.GuestRating != nil {
		return false, nil
	}
	request.GuestRating = &rating
	request.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *mockRequestRepo) activeCountLocked(staffID string) int {
	count := 0
	for _, request := range m.requests {
		if request.Status == domain.RequestStatusInProgress && request.AssignedStaffID != nil && *request.AssignedStaffID == staffID {
			count++
		}
	}
	return count
}

func (m *mockRequestRepo) seed(request domain.ServiceRequest) *domain.ServiceRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if request.RequestedAt.IsZero() {
		request.RequestedAt = time.Now().UTC().Add(-time.Hour)
	}
	clone := request
	m.requests[request.ID] = &clone
	return &clone
}

func containsStatus(statuses []domain.RequestStatus, status domain.RequestStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// mockStaffRepo is an in-memory StaffRepository.
type mockStaffRepo struct {
	mu    sync.Mutex
	staff map[string]*domain.StaffMember
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{staff: make(map[string]*domain.StaffMember)}
}

func (m *mockStaffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if staff.ID == "" {
		staff.ID = fmt.Sprintf("staff-%03d", len(m.staff)+1)
	}
	staff.CreatedAt = time.Now().UTC()
	staff.UpdatedAt = staff.CreatedAt
	clone := *staff
	m.staff[staff.ID] = &clone
	return nil
}

func (m *mockStaffRepo) Update(_ context.Context, staff *domain.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.staff[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *staff
	m.staff[staff.ID] = &clone
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if staff, ok := m.staff[id]; ok {
		clone := *staff
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockStaffRepo) ListByHotel(_ context.Context, hotelID string, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.StaffMember
	for _, staff := range m.staff {
		if staff.HotelID != hotelID {
			continue
		}
		if filter.Active != nil && staff.Active != *filter.Active {
			continue
		}
		result = append(result, *staff)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStaffRepo) seed(staff domain.StaffMember) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := staff
	m.staff[staff.ID] = &clone
}

// mockAnalyticsRepo returns canned aggregation rows.
type mockAnalyticsRepo struct {
	statusCounts      map[domain.RequestStatus]int
	priorityCounts    map[domain.RequestPriority]int
	categoryStats     []repository.CategoryStat
	avgResponseSecs   *float64
	avgCompletionSecs *float64
	performance       []repository.StaffPerformanceRow
}

func (m *mockAnalyticsRepo) StatusCounts(context.Context, string, time.Time, time.Time) (map[domain.RequestStatus]int, error) {
	if m.statusCounts == nil {
		return map[domain.RequestStatus]int{}, nil
	}
	return m.statusCounts, nil
}

func (m *mockAnalyticsRepo) PriorityCounts(context.Context, string, time.Time, time.Time) (map[domain.RequestPriority]int, error) {
	if m.priorityCounts == nil {
		return map[domain.RequestPriority]int{}, nil
	}
	return m.priorityCounts, nil
}

func (m *mockAnalyticsRepo) CategoryStats(context.Context, string, time.Time, time.Time) ([]repository.CategoryStat, error) {
	return m.categoryStats, nil
}

func (m *mockAnalyticsRepo) AvgResponseSeconds(context.Context, string, time.Time, time.Time) (*float64, error) {
	return m.avgResponseSecs, nil
}

func (m *mockAnalyticsRepo) AvgCompletionSeconds(context.Context, string, time.Time, time.Time) (*float64, error) {
	return m.avgCompletionSecs, nil
}

func (m *mockAnalyticsRepo) StaffPerformance(context.Context, string, time.Time, time.Time) ([]repository.StaffPerformanceRow, error) {
	return m.performance, nil
}

// captureDispatcher records published events.
type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}

// testEngine bundles the services under test over shared mocks.
type testEngine struct {
	requests   *mockRequestRepo
	staff      *mockStaffRepo
	dispatcher *captureDispatcher
	tracker    *CapacityTracker
	request    *RequestService
	assignment *AssignmentService
	bulk       *BulkService
}

func newTestEngine() *testEngine {
	requests := newMockRequestRepo()
	staff := newMockStaffRepo()
	dispatcher := &captureDispatcher{}
	tracker := NewCapacityTracker(requests, staff)
	requestService := NewRequestService(RequestDependencies{
		RequestRepo: requests,
		Dispatcher:  dispatcher,
	})
	assignmentService := NewAssignmentService(AssignmentDependencies{
		RequestRepo: requests,
		StaffRepo:   staff,
		Tracker:     tracker,
		Dispatcher:  dispatcher,
	})
	return &testEngine{
		requests:   requests,
		staff:      staff,
		dispatcher: dispatcher,
		tracker:    tracker,
		request:    requestService,
		assignment: assignmentService,
		bulk:       NewBulkService(requestService, assignmentService),
	}
}

func (e *testEngine) seedStaff(id string, capacity int, active bool) {
	e.staff.seed(domain.StaffMember{
		ID:            id,
		HotelID:       "hotel-1",
		Name:          "Staff " + id,
		MaxConcurrent: capacity,
		Active:        active,
	})
}

func (e *testEngine) seedPending(id string) {
	e.requests.seed(domain.ServiceRequest{
		ID:              id,
		ExternalKey:     "REQ-" + id,
		HotelID:         "hotel-1",
		RoomID:          "room-101",
		GuestID:         "guest-1",
		ServiceCategory: "housekeeping",
		Title:           "Extra towels",
		Status:          domain.RequestStatusPending,
		Priority:        domain.RequestPriorityMedium,
	})
}
