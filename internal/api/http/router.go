package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stayops/hotel-request-service/internal/api/http/handlers"
	"github.com/stayops/hotel-request-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Requests       *handlers.RequestsHandler
	StaffRequests  *handlers.StaffRequestsHandler
	Workload       *handlers.WorkloadHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	guest := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireGuest())
	guest.Post("", cfg.Requests.CreateRequest)
	guest.Get("", cfg.Requests.ListRequests)
	guest.Get("/:id", cfg.Requests.GetRequest)
	guest.Post("/:id/cancel", cfg.Requests.CancelRequest)
	guest.Post("/:id/rating", cfg.Requests.RateRequest)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Get("/requests", cfg.StaffRequests.ListRequests)
	staff.Post("/requests/bulk", cfg.StaffRequests.BulkApply)
	staff.Get("/requests/:id", cfg.StaffRequests.GetRequest)
	staff.Post("/requests/:id/assign", cfg.StaffRequests.AssignRequest)
	staff.Post("/requests/:id/reassign", cfg.StaffRequests.ReassignRequest)
	staff.Post("/requests/:id/complete", cfg.StaffRequests.CompleteRequest)
	staff.Post("/requests/:id/cancel", cfg.StaffRequests.CancelRequest)
	staff.Delete("/requests/:id", cfg.StaffRequests.DeleteRequest)

	staff.Get("/workload", cfg.Workload.GetWorkloadSnapshot)
	staff.Get("/analytics", cfg.Workload.GetAnalytics)

	staff.Post("/members", cfg.Staff.CreateStaffMember)
	staff.Get("/members", cfg.Staff.ListStaffMembers)
	staff.Get("/members/:id", cfg.Staff.GetStaffMember)
	staff.Patch("/members/:id", cfg.Staff.UpdateStaffMember)
}
