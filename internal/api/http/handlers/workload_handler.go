package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stayops/hotel-request-service/internal/api/dto"
	"github.com/stayops/hotel-request-service/internal/service"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// WorkloadHandler serves workload snapshots and analytics.
type WorkloadHandler struct {
	analytics *service.AnalyticsService
}

// NewWorkloadHandler constructs handler.
func NewWorkloadHandler(analyticsService *service.AnalyticsService) *WorkloadHandler {
	return &WorkloadHandler{analytics: analyticsService}
}

// GetWorkloadSnapshot GET /staff/workload.
func (h *WorkloadHandler) GetWorkloadSnapshot(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	snapshot, err := h.analytics.GetWorkloadSnapshot(c.Context(), principal.Staff.HotelID)
	if err != nil {
		return err
	}
	items := make([]dto.StaffWorkloadResponse, 0, len(snapshot))
	for _, wl := range snapshot {
		items = append(items, dto.StaffWorkloadResponse{
			StaffID:   wl.StaffID,
			Name:      wl.Name,
			Load:      wl.Load,
			Capacity:  wl.Capacity,
			Available: wl.Available,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetAnalytics GET /staff/analytics?from=...&to=...
func (h *WorkloadHandler) GetAnalytics(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	to := time.Now()
	if parsed := parseTime(c.Query("to")); parsed != nil {
		to = *parsed
	}
	from := to.AddDate(0, -1, 0)
	if parsed := parseTime(c.Query("from")); parsed != nil {
		from = *parsed
	}
	if !to.After(from) {
		return apperrors.NewValidationError("to must be after from", nil)
	}

	analytics, err := h.analytics.GetAnalytics(c.Context(), principal.Staff.HotelID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": analyticsResponse(analytics)})
}

func analyticsResponse(a *service.HotelAnalytics) dto.AnalyticsResponse {
	byCategory := make([]dto.CategoryBreakdownResponse, 0, len(a.ByCategory))
	for _, cat := range a.ByCategory {
		byCategory = append(byCategory, dto.CategoryBreakdownResponse{
			Category:             cat.Category,
			Count:                cat.Count,
			AvgCompletionSeconds: durationToSeconds(cat.AvgCompletionTime),
		})
	}
	performance := make([]dto.StaffPerformanceResponse, 0, len(a.StaffPerformance))
	for _, row := range a.StaffPerformance {
		performance = append(performance, dto.StaffPerformanceResponse{
			StaffID:              row.StaffID,
			Name:                 row.Name,
			CompletedRequests:    row.CompletedRequests,
			AvgCompletionSeconds: durationToSeconds(row.AvgCompletionTime),
			AvgRating:            row.AvgRating,
			CurrentWorkload:      row.CurrentWorkload,
		})
	}
	return dto.AnalyticsResponse{
		HotelID:              a.HotelID,
		From:                 a.From,
		To:                   a.To,
		TotalRequests:        a.TotalRequests,
		CompletionRate:       a.CompletionRate,
		AvgResponseSeconds:   durationToSeconds(a.AvgResponseTime),
		AvgCompletionSeconds: durationToSeconds(a.AvgCompletionTime),
		ByStatus:             a.ByStatus,
		ByPriority:           a.ByPriority,
		ByCategory:           byCategory,
		StaffPerformance:     performance,
	}
}

func durationToSeconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	seconds := d.Seconds()
	return &seconds
}
