package handler

import (
	"net/http"

	"uslugo/internal/services"
	"uslugo/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// FavoriteHandler exposes the caller's saved listings.
type FavoriteHandler struct {
	service *services.FavoriteService
}

func NewFavoriteHandler(service *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// List handles GET /api/favorites.
func (h *FavoriteHandler) List(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	listings, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(listings))
}

// Toggle handles POST /api/favorites/:serviceId and reports whether
// the listing is favorited after the call.
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	favorited, err := h.service.Toggle(c.Request.Context(), userID, c.Param("serviceId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"favorited": favorited}))
}
