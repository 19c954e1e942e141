package service

import (
	"context"
	"time"

	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/repository"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// CategoryBreakdown summarizes one service category in a window.
type CategoryBreakdown struct {
	Category          string
	Count             int
	AvgCompletionTime *time.Duration
}

// StaffPerformance combines historical performance with the live workload.
type StaffPerformance struct {
	StaffID           string
	Name              string
	CompletedRequests int
	AvgCompletionTime *time.Duration
	AvgRating         *float64
	CurrentWorkload   int
}

// HotelAnalytics is the aggregate view over a half-open window [from, to).
// Nil averages mean "insufficient data" and are distinct from a true zero.
type HotelAnalytics struct {
	HotelID           string
	From              time.Time
	To                time.Time
	TotalRequests     int
	CompletionRate    float64
	AvgResponseTime   *time.Duration
	AvgCompletionTime *time.Duration
	ByStatus          map[domain.RequestStatus]int
	ByPriority        map[domain.RequestPriority]int
	ByCategory        []CategoryBreakdown
	StaffPerformance  []StaffPerformance
}

// AnalyticsService derives workload and performance metrics on demand. The
// aggregation queries run in the store; this service owns the formulas and
// the null-safety rules.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
	tracker   *CapacityTracker
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(analytics repository.AnalyticsRepository, tracker *CapacityTracker) *AnalyticsService {
	return &AnalyticsService{analytics: analytics, tracker: tracker}
}

// GetWorkloadSnapshot returns the current load versus capacity per staff member.
func (s *AnalyticsService) GetWorkloadSnapshot(ctx context.Context, hotelID string) ([]domain.StaffWorkload, error) {
	return s.tracker.Snapshot(ctx, hotelID)
}

// GetAnalytics computes the windowed aggregate view for one hotel.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, hotelID string, from, to time.Time) (*HotelAnalytics, error) {
	if !to.After(from) {
		return nil, apperrors.NewValidationError("window end must be after start", nil)
	}

	byStatus, err := s.analytics.StatusCounts(ctx, hotelID, from, to)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	byPriority, err := s.analytics.PriorityCounts(ctx, hotelID, from, to)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	categoryStats, err := s.analytics.CategoryStats(ctx, hotelID, from, to)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	avgResponse, err := s.analytics.AvgResponseSeconds(ctx, hotelID, from, to)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	avgCompletion, err := s.analytics.AvgCompletionSeconds(ctx, hotelID, from, to)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	performanceRows, err := s.analytics.StaffPerformance(ctx, hotelID, from, to)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	snapshot, err := s.tracker.Snapshot(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range byStatus {
		total += count
	}
	completionRate := 0.0
	if total > 0 {
		completionRate = float64(byStatus[domain.RequestStatusCompleted]) / float64(total)
	}

	byCategory := make([]CategoryBreakdown, 0, len(categoryStats))
	for _, stat := range categoryStats {
		byCategory = append(byCategory, CategoryBreakdown{
			Category:          stat.Category,
			Count:             stat.Count,
			AvgCompletionTime: secondsToDuration(stat.AvgCompletionSeconds),
		})
	}

	// Current workload comes from the tracker, not history; staff with no
	// requests in the window still appear with zero counts.
	rowsByStaff := make(map[string]repository.StaffPerformanceRow, len(performanceRows))
	for _, row := range performanceRows {
		rowsByStaff[row.StaffID] = row
	}
	performance := make([]StaffPerformance, 0, len(snapshot))
	for _, wl := range snapshot {
		row := rowsByStaff[wl.StaffID]
		performance = append(performance, StaffPerformance{
			StaffID:           wl.StaffID,
			Name:              wl.Name,
			CompletedRequests: row.CompletedCount,
			AvgCompletionTime: secondsToDuration(row.AvgCompletionSeconds),
			AvgRating:         row.AvgRating,
			CurrentWorkload:   wl.Load,
		})
	}

	return &HotelAnalytics{
		HotelID:           hotelID,
		From:              from,
		To:                to,
		TotalRequests:     total,
		CompletionRate:    completionRate,
		AvgResponseTime:   secondsToDuration(avgResponse),
		AvgCompletionTime: secondsToDuration(avgCompletion),
		ByStatus:          byStatus,
		ByPriority:        byPriority,
		ByCategory:        byCategory,
		StaffPerformance:  performance,
	}, nil
}

func secondsToDuration(seconds *float64) *time.Duration {
	if seconds == nil {
		return nil
	}
	d := time.Duration(*seconds * float64(time.Second))
	return &d
}
