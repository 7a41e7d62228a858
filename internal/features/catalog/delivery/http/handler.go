package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "anime-tracker-backend/internal/common/errors"
	"anime-tracker-backend/internal/features/catalog/models"
	"anime-tracker-backend/internal/features/catalog/service"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(service service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	anime := router.Group("/anime")
	{
		anime.GET("/search", h.Search)
		anime.GET("/:malId", h.GetDetails)
	}
}

// @Summary Search the anime catalog
// @Description Proxy to the Jikan v4 search. An empty query returns an empty list.
// @Tags catalog
// @Produce json
// @Param q query string false "Title query"
// @Param limit query int false "Maximum results (default 5, max 25)"
// @Success 200 {object} models.SearchResponse
// @Failure 502 {object} middleware.ErrorResponse "Catalog unavailable"
// @Router /anime/search [get]
func (h *CatalogHandler) Search(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			_ = c.Error(apperrors.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	list, err := h.service.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.SearchResponse{Success: true, Data: list})
}

// @Summary Get anime details
// @Tags catalog
// @Produce json
// @Param malId path int true "MyAnimeList ID"
// @Success 200 {object} models.DetailsResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid id"
// @Failure 404 {object} middleware.ErrorResponse "Anime not found"
// @Failure 502 {object} middleware.ErrorResponse "Catalog unavailable"
// @Router /anime/{malId} [get]
func (h *CatalogHandler) GetDetails(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("malId"))
	if err != nil {
		_ = c.Error(apperrors.NewValidationError("malId", "must be a positive integer"))
		return
	}

	details, err := h.service.GetDetails(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.DetailsResponse{Success: true, Data: details})
}
