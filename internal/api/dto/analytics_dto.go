package dto

import (
	"time"

	"github.com/stayops/hotel-request-service/internal/domain"
)

// CategoryBreakdownResponse summarizes one service category.
type CategoryBreakdownResponse struct {
	Category             string   `json:"category"`
	Count                int      `json:"count"`
	AvgCompletionSeconds *float64 `json:"avg_completion_seconds"`
}

// StaffPerformanceResponse is one staff member's performance row.
type StaffPerformanceResponse struct {
	StaffID              string   `json:"staff_id"`
	Name                 string   `json:"name"`
	CompletedRequests    int      `json:"completed_requests"`
	AvgCompletionSeconds *float64 `json:"avg_completion_seconds"`
	AvgRating            *float64 `json:"avg_rating"`
	CurrentWorkload      int      `json:"current_workload"`
}

// AnalyticsResponse is the windowed aggregate view. Null averages mean
// insufficient data, not zero.
type AnalyticsResponse struct {
	HotelID              string                         `json:"hotel_id"`
	From                 time.Time                      `json:"from"`
	To                   time.Time                      `json:"to"`
	TotalRequests        int                            `json:"total_requests"`
	CompletionRate       float64                        `json:"completion_rate"`
	AvgResponseSeconds   *float64                       `json:"avg_response_seconds"`
	AvgCompletionSeconds *float64                       `json:"avg_completion_seconds"`
	ByStatus             map[domain.RequestStatus]int   `json:"by_status"`
	ByPriority           map[domain.RequestPriority]int `json:"by_priority"`
	ByCategory           []CategoryBreakdownResponse    `json:"by_category"`
	StaffPerformance     []StaffPerformanceResponse     `json:"staff_performance"`
}
