package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/stayops/hotel-request-service/internal/api/dto"
	"github.com/stayops/hotel-request-service/internal/domain"
	"github.com/stayops/hotel-request-service/internal/service"
	apperrors "github.com/stayops/hotel-request-service/pkg/util"
)

// StaffHandler manages staff member configuration endpoints.
type StaffHandler struct {
	staff *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staffService}
}

// CreateStaffMember POST /staff/members.
func (h *StaffHandler) CreateStaffMember(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	staff, err := h.staff.CreateStaffMember(c.Context(), service.StaffCreateInput{
		HotelID:       req.HotelID,
		Name:          req.Name,
		Email:         req.Email,
		MaxConcurrent: req.MaxConcurrent,
		Active:        req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(staff)})
}

// UpdateStaffMember PATCH /staff/members/:id.
func (h *StaffHandler) UpdateStaffMember(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	var req dto.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	staff, err := h.staff.UpdateStaffMember(c.Context(), c.Params("id"), service.StaffUpdateInput{
		Name:          req.Name,
		Email:         req.Email,
		MaxConcurrent: req.MaxConcurrent,
		Active:        req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// GetStaffMember GET /staff/members/:id.
func (h *StaffHandler) GetStaffMember(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	staff, err := h.staff.GetStaffMember(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(staff)})
}

// ListStaffMembers GET /staff/members.
func (h *StaffHandler) ListStaffMembers(c *fiber.Ctx) error {
	principal, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := parsePagination(c)
	activeOnly := c.Query("active") == "true"
	staffList, err := h.staff.ListStaffMembers(c.Context(), principal.Staff.HotelID, activeOnly, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.StaffMemberResponse, 0, len(staffList))
	for i := range staffList {
		items = append(items, staffResponse(&staffList[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func staffResponse(staff *domain.StaffMember) dto.StaffMemberResponse {
	return dto.StaffMemberResponse{
		ID:            staff.ID,
		HotelID:       staff.HotelID,
		Name:          staff.Name,
		Email:         staff.Email,
		MaxConcurrent: staff.MaxConcurrent,
		Active:        staff.Active,
		CreatedAt:     staff.CreatedAt,
		UpdatedAt:     staff.UpdatedAt,
	}
}
