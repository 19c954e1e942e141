package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stayops/hotel-request-service/internal/api/dto"
	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/service"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// StaffRequestsHandler handles the staff-side lifecycle endpoints.
type StaffRequestsHandler struct {
	requests    *service.RequestService
	assignments *service.AssignmentService
	bulk        *service.BulkService
}

// NewStaffRequestsHandler constructs handler.
func NewStaffRequestsHandler(requests *service.RequestService, assignments *service.AssignmentService, bulk *service.BulkService) *StaffRequestsHandler {
	return &StaffRequestsHandler{requests: requests, assignments: assignments, bulk: bulk}
}

// ListRequests GET /staff/requests.
func (h *StaffRequestsHandler) ListRequests(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	filter := parseStaffRequestFilter(c)
	filter.HotelID = &principal.Staff.HotelID
	requests, err := h.requests.ListRequests(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.RequestSummary, 0, len(requests))
	for i := range requests {
		items = append(items, requestSummary(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetRequest GET /staff/requests/:id.
func (h *StaffRequestsHandler) GetRequest(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	request, err := h.requests.GetRequest(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// AssignRequest POST /staff/requests/:id/assign.
func (h *StaffRequestsHandler) AssignRequest(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	var req dto.AssignRequestRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	request, err := h.assignments.AssignAndStart(c.Context(), c.Params("id"), req.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// ReassignRequest POST /staff/requests/:id/reassign.
func (h *StaffRequestsHandler) ReassignRequest(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	var req dto.ReassignRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.StaffID == "" {
		return apperrors.NewValidationError("staff_id required", nil)
	}
	request, err := h.assignments.Reassign(c.Context(), c.Params("id"), req.StaffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// CompleteRequest POST /staff/requests/:id/complete.
func (h *StaffRequestsHandler) CompleteRequest(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	request, err := h.requests.Complete(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// CancelRequest POST /staff/requests/:id/cancel.
func (h *StaffRequestsHandler) CancelRequest(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	request, err := h.requests.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestDetail(request)})
}

// DeleteRequest DELETE /staff/requests/:id.
func (h *StaffRequestsHandler) DeleteRequest(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	if err := h.requests.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// BulkApply POST /staff/requests/bulk.
func (h *StaffRequestsHandler) BulkApply(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	var req dto.BulkApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	results, err := h.bulk.BulkApply(c.Context(), service.BulkInput{
		RequestIDs: req.RequestIDs,
		Operation:  service.BulkOperation(strings.ToUpper(req.Operation)),
		StaffID:    req.StaffID,
		Status:     req.Status,
	})
	if err != nil {
		return err
	}

	response := dto.BulkApplyResponse{Results: make([]dto.BulkItemResponse, 0, len(results))}
	for _, result := range results {
		response.Results = append(response.Results, dto.BulkItemResponse{
			RequestID: result.RequestID,
			OK:        result.OK,
			ErrorCode: result.ErrorCode,
		})
		if result.OK {
			response.Successful++
		} else {
			response.Failed++
		}
	}
	return c.JSON(fiber.Map{"data": response})
}

func parseStaffRequestFilter(c *fiber.Ctx) service.RequestListFilter {
	filter := service.RequestListFilter{}
	for _, part := range splitParam(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.RequestStatus(part))
	}
	for _, part := range splitParam(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.RequestPriority(part))
	}
	filter.Categories = splitParam(c.Query("category"))
	if staffID := c.Query("assigned_staff_id"); staffID != "" {
		filter.AssignedStaffID = &staffID
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	filter.RequestedFrom = parseTime(c.Query("requested_from"))
	filter.RequestedTo = parseTime(c.Query("requested_to"))
	filter.Limit, filter.Offset = parsePagination(c)
	return filter
}
