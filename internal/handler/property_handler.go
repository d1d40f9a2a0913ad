package handler

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/pkg/auth"
	"github.com/staynest/service-booking/pkg/domain"
	"github.com/staynest/service-booking/pkg/middleware"
	"github.com/staynest/service-booking/pkg/response"
)

// PropertyHandler handles HTTP requests for listings and their calendars.
type PropertyHandler struct {
	properties   *application.PropertyService
	bookings     *application.BookingService
	availability *application.AvailabilityService
	now          func() time.Time
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(
	properties *application.PropertyService,
	bookings *application.BookingService,
	availability *application.AvailabilityService,
) *PropertyHandler {
	return &PropertyHandler{
		properties:   properties,
		bookings:     bookings,
		availability: availability,
		now:          time.Now,
	}
}

// RegisterRoutes registers the public and authenticated property routes.
func (h *PropertyHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	public := r.Group("/api/v1/properties")
	{
		public.GET("", h.SearchProperties)
		public.GET("/:id", h.GetProperty)
		public.GET("/:id/blocked-dates", h.BlockedDates)
		public.GET("/:id/availability", h.CheckAvailability)
	}

	owned := r.Group("/api/v1/properties")
	owned.Use(authMW)
	{
		owned.POST("", h.CreateProperty)
		owned.PUT("/:id", h.UpdateProperty)
		owned.DELETE("/:id", h.DeactivateProperty)
		owned.GET("/:id/bookings", h.BookingBoard)
	}

	host := r.Group("/api/v1/host")
	host.Use(authMW)
	{
		host.GET("/properties", h.ListHostProperties)
	}
}

// SearchProperties handles GET /api/v1/properties.
func (h *PropertyHandler) SearchProperties(c *gin.Context) {
	req := application.SearchPropertiesRequest{City: c.Query("city")}

	var err error
	if req.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		response.Error(c, err)
		return
	}
	if req.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		response.Error(c, err)
		return
	}
	if req.Guests, err = queryInt(c, "guests"); err != nil {
		response.Error(c, err)
		return
	}
	if req.CheckIn, err = queryDate(c, "check_in"); err != nil {
		response.Error(c, err)
		return
	}
	if req.CheckOut, err = queryDate(c, "check_out"); err != nil {
		response.Error(c, err)
		return
	}
	if req.Page, err = queryInt(c, "page"); err != nil {
		response.Error(c, err)
		return
	}
	if req.PageSize, err = queryInt(c, "page_size"); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.properties.SearchProperties(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetProperty handles GET /api/v1/properties/:id.
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	propertyID, ok := propertyParam(c)
	if !ok {
		return
	}
	result, err := h.properties.GetProperty(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// BlockedDates handles GET /api/v1/properties/:id/blocked-dates.
func (h *PropertyHandler) BlockedDates(c *gin.Context) {
	propertyID, ok := propertyParam(c)
	if !ok {
		return
	}
	if _, err := h.properties.GetProperty(c.Request.Context(), propertyID); err != nil {
		response.Error(c, err)
		return
	}

	dates, err := h.availability.BlockedDates(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if dates == nil {
		dates = []civil.Date{}
	}
	response.Success(c, gin.H{"property_id": propertyID, "blocked_dates": dates})
}

// CheckAvailability handles GET /api/v1/properties/:id/availability?check_in=&check_out=.
func (h *PropertyHandler) CheckAvailability(c *gin.Context) {
	propertyID, ok := propertyParam(c)
	if !ok {
		return
	}
	checkIn, err := queryDate(c, "check_in")
	if err != nil {
		response.Error(c, err)
		return
	}
	checkOut, err := queryDate(c, "check_out")
	if err != nil {
		response.Error(c, err)
		return
	}
	if checkIn == nil || checkOut == nil {
		response.Error(c, domain.NewValidationError("check_in and check_out are required"))
		return
	}

	available, err := h.availability.IsAvailable(c.Request.Context(), propertyID, *checkIn, *checkOut)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"property_id":    propertyID,
		"check_in_date":  *checkIn,
		"check_out_date": *checkOut,
		"available":      available,
	})
}

// CreateProperty handles POST /api/v1/properties.
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.properties.CreateProperty(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateProperty handles PUT /api/v1/properties/:id.
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	propertyID, ok := propertyParam(c)
	if !ok {
		return
	}

	var req application.PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.properties.UpdateProperty(c.Request.Context(), userID, propertyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeactivateProperty handles DELETE /api/v1/properties/:id.
func (h *PropertyHandler) DeactivateProperty(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	propertyID, ok := propertyParam(c)
	if !ok {
		return
	}

	if err := h.properties.DeactivateProperty(c.Request.Context(), userID, propertyID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": propertyID, "status": "inactive"})
}

// BookingBoard handles GET /api/v1/properties/:id/bookings: the host's view of a listing's
// requests, upcoming stays and past stays.
func (h *PropertyHandler) BookingBoard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	propertyID, ok := propertyParam(c)
	if !ok {
		return
	}

	today := civil.DateOf(h.now().UTC())
	if d, err := queryDate(c, "today"); err != nil {
		response.Error(c, err)
		return
	} else if d != nil {
		today = *d
	}

	result, err := h.bookings.GetPropertyBookingBoard(c.Request.Context(), userID, propertyID, today)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListHostProperties handles GET /api/v1/host/properties.
func (h *PropertyHandler) ListHostProperties(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := h.properties.ListHostProperties(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func propertyParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid property ID")
		return uuid.Nil, false
	}
	return id, true
}
