package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stayops/hotel-request-service/internal/api/dto"
	"github.com/stayops/hotel-request-service/internal/auth"
	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/service"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// RequestsHandler manages guest-facing request endpoints.
type RequestsHandler struct {
	requests *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{requests: requestService}
}

// CreateRequest POST /requests.
func (h *RequestsHandler) CreateRequest(c *fiber.Ctx) error {
	principal, err := guestPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.RequestCreateInput{
		HotelID:         req.HotelID,
		RoomID:          req.RoomID,
		ServiceCategory: req.ServiceCategory,
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
	}
	request, err := h.requests.CreateRequest(c.Context(), principal.GuestID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestDetail(request)})
}

// ListRequests GET /requests.
func (h *RequestsHandler) ListRequests(c *fiber.Ctx) error {
	principal, err := guestPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	requests, err := h.requests.ListGuestRequests(c.Context(), principal.GuestID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, requestSummary(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /requests/:id.
func (h *RequestsHandler) GetRequest(c *fiber.Ctx) error {
	principal, err := guestPrincipal(c)
	if err != nil {
		return err
	}
	request, err := h.requests.GetRequestForGuest(c.Context(), principal.GuestID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// CancelRequest POST /requests/:id/cancel.
func (h *RequestsHandler) CancelRequest(c *fiber.Ctx) error {
	principal, err := guestPrincipal(c)
	if err != nil {
		return err
	}
	request, err := h.requests.CancelAsGuest(c.Context(), principal.GuestID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// RateRequest POST /requests/:id/rating.
func (h *RequestsHandler) RateRequest(c *fiber.Ctx) error {
	principal, err := guestPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RateRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	request, err := h.requests.Rate(c.Context(), principal.GuestID, c.Params("id"), req.Rating)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

func guestPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.SubjectType != domain.SubjectTypeGuest {
		return nil, apperrors.NewUnauthorized("guest required")
	}
	return principal, nil
}

func staffPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return principal, nil
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func splitParam(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func requestSummary(request *domain.ServiceRequest) dto.RequestSummary {
	return dto.RequestSummary{
		ID:              request.ID,
		ExternalKey:     request.ExternalKey,
		HotelID:         request.HotelID,
		RoomID:          request.RoomID,
		ServiceCategory: request.ServiceCategory,
		Title:           request.Title,
		Status:          request.Status,
		Priority:        request.Priority,
		AssignedStaffID: request.AssignedStaffID,
		RequestedAt:     request.RequestedAt,
		UpdatedAt:       request.UpdatedAt,
	}
}

func requestDetail(request *domain.ServiceRequest) dto.RequestDetailResponse {
	return dto.RequestDetailResponse{
		ID:              request.ID,
		ExternalKey:     request.ExternalKey,
		HotelID:         request.HotelID,
		RoomID:          request.RoomID,
		GuestID:         request.GuestID,
		ServiceCategory: request.ServiceCategory,
		Title:           request.Title,
		Description:     request.Description,
		Status:          request.Status,
		Priority:        request.Priority,
		AssignedStaffID: request.AssignedStaffID,
		GuestRating:     request.GuestRating,
		RequestedAt:     request.RequestedAt,
		StartedAt:       request.StartedAt,
		CompletedAt:     request.CompletedAt,
		UpdatedAt:       request.UpdatedAt,
	}
}
