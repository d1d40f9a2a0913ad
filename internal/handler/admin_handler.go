package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/pkg/auth"
	"github.com/staynest/service-booking/pkg/middleware"
	"github.com/staynest/service-booking/pkg/response"
)

// AdminBookingHandler serves the operator views over all bookings.
type AdminBookingHandler struct {
	service *application.BookingService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service *application.BookingService) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin routes behind the admin role.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.POST("/bookings/:id/sweep", h.SweepConflicts)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

// SweepConflicts handles POST /api/v1/admin/bookings/:id/sweep. It declines the pending requests
// overlapping an accepted booking, for when the event-driven sweep was missed.
func (h *AdminBookingHandler) SweepConflicts(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	declined, err := h.service.DeclineConflictingRequests(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"booking_id": bookingID, "declined": declined})
}
