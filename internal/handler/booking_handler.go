package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/application"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	"github.com/staynest/service-booking/pkg/auth"
	"github.com/staynest/service-booking/pkg/middleware"
	"github.com/staynest/service-booking/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListMyBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/accept", h.transition(bookingDomain.StatusAccepted))
		bookings.POST("/:id/decline", h.transition(bookingDomain.StatusDeclined))
		bookings.POST("/:id/cancel", h.transition(bookingDomain.StatusCanceled))
		bookings.PATCH("/:id/status", h.UpdateStatus)
	}

	host := r.Group("/api/v1/host")
	host.Use(authMW)
	{
		host.GET("/bookings", h.ListHostBookings)
	}
}

// CreateBooking handles POST /api/v1/bookings. The guest defaults to the caller.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.GuestID == uuid.Nil {
		req.GuestID = userID
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListMyBookings handles GET /api/v1/bookings: the caller's bookings as a guest.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.GetGuestBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListHostBookings handles GET /api/v1/host/bookings: bookings on every property the caller hosts.
func (h *BookingHandler) ListHostBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.GetHostBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// transition handles POST /api/v1/bookings/:id/{accept,decline,cancel}.
func (h *BookingHandler) transition(target bookingDomain.BookingStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.setStatus(c, target)
	}
}

// UpdateStatus handles PATCH /api/v1/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req application.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	target, err := bookingDomain.ParseBookingStatus(req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.setStatus(c, target)
}

func (h *BookingHandler) setStatus(c *gin.Context, target bookingDomain.BookingStatus) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.SetBookingStatus(c.Request.Context(), userID, bookingID, target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
