package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/pkg/auth"
	"github.com/staynest/service-booking/pkg/middleware"
	"github.com/staynest/service-booking/pkg/response"
)

// FavoriteHandler handles saved-property requests.
type FavoriteHandler struct {
	service *application.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(service *application.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// RegisterRoutes registers favorite routes.
func (h *FavoriteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	favorites := r.Group("/api/v1/favorites")
	favorites.Use(middleware.AuthMiddleware(jwtManager))
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("/:propertyId", h.ToggleFavorite)
		favorites.GET("/:propertyId", h.FavoriteStatus)
	}
}

// ToggleFavorite handles POST /api/v1/favorites/:propertyId.
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		response.BadRequest(c, "invalid property ID")
		return
	}

	result, err := h.service.ToggleFavorite(c.Request.Context(), userID, propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// FavoriteStatus handles GET /api/v1/favorites/:propertyId.
func (h *FavoriteHandler) FavoriteStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		response.BadRequest(c, "invalid property ID")
		return
	}

	favorited, err := h.service.IsFavorited(c.Request.Context(), userID, propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	count, err := h.service.FavoriteCount(c.Request.Context(), propertyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"property_id": propertyID, "favorited": favorited, "count": count})
}

// ListFavorites handles GET /api/v1/favorites.
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := h.service.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
