package handler

import (
	"net/http"
	"strconv"

	"uslugo/internal/repository"
	"uslugo/internal/services"
	"uslugo/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServiceHandler exposes the listings catalog: CRUD for the owner's
// listings, public browsing and filtered search.
type ServiceHandler struct {
	service *services.ListingService
}

func NewServiceHandler(service *services.ListingService) *ServiceHandler {
	return &ServiceHandler{service: service}
}

// Create handles POST /api/services.
func (h *ServiceHandler) Create(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	var req httpdto.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	listing, err := h.service.Create(c.Request.Context(), userID, listingInput(req))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(listing))
}

// Update handles PUT /api/services/:id. Only the owner may update.
func (h *ServiceHandler) Update(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid listing id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	listing, err := h.service.Update(c.Request.Context(), userID, id, listingInput(req))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(listing))
}

// Delete handles DELETE /api/services/:id.
func (h *ServiceHandler) Delete(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid listing id", "INVALID_REQUEST"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// Get handles GET /api/services/:id.
func (h *ServiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid listing id", "INVALID_REQUEST"))
		return
	}

	listing, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(listing))
}

// List handles GET /api/services. With any filter query parameter set
// it narrows the result; otherwise it returns the whole catalog.
func (h *ServiceHandler) List(c *gin.Context) {
	f := repository.ServiceFilter{
		Category:      c.Query("category"),
		Subcategory:   c.Query("subcategory"),
		CustomService: c.Query("customService"),
		PriceType:     c.Query("priceType"),
		City:          c.Query("city"),
		MinPrice:      parseQueryFloat(c, "minPrice"),
		MaxPrice:      parseQueryFloat(c, "maxPrice"),
	}

	var (
		listings []services.Listing
		err      error
	)
	if f == (repository.ServiceFilter{}) {
		listings, err = h.service.ListAll(c.Request.Context())
	} else {
		listings, err = h.service.Filter(c.Request.Context(), f)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(listings))
}

// Mine handles GET /api/services/my.
func (h *ServiceHandler) Mine(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	listings, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(listings))
}

// UploadImage handles POST /api/services/:id/images as a multipart form
// with an "image" file field.
func (h *ServiceHandler) UploadImage(c *gin.Context) {
	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid listing id", "INVALID_REQUEST"))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("image file required", "INVALID_REQUEST"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unreadable upload", "INVALID_REQUEST"))
		return
	}
	defer file.Close()

	listing, err := h.service.AddImage(
		c.Request.Context(),
		userID,
		id,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(listing))
}

func listingInput(req httpdto.ListingRequest) services.ListingInput {
	return services.ListingInput{
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		CustomService: req.CustomService,
		PriceType:     req.PriceType,
		Price:         req.Price,
		City:          req.City,
		Description:   req.Description,
		Mode:          req.Mode,
	}
}

func parseQueryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
