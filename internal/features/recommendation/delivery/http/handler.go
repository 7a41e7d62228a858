package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anime-tracker-backend/internal/common/middleware"
	"anime-tracker-backend/internal/common/validation"
	"anime-tracker-backend/internal/features/recommendation/models"
	"anime-tracker-backend/internal/features/recommendation/service"
)

type RecommendationHandler struct {
	service service.RecommendationService
}

func NewRecommendationHandler(service service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// RegisterRoutes mounts the routes; all of them need a resolved caller.
func (h *RecommendationHandler) RegisterRoutes(router *gin.RouterGroup) {
	recs := router.Group("/recommendations")
	recs.Use(middleware.RequireIdentity())
	{
		recs.GET("/received", h.ListReceived)
		recs.POST("/:userId", h.Send)
		recs.PATCH("/:id", h.Resolve)
	}
}

// @Summary Send recommendation
// @Description Recommend a title to another user, addressed by telegram id or profile id
// @Tags recommendations
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param userId path string true "Target telegram id or profile id"
// @Param recommendation body models.SendRequest true "Recommendation"
// @Success 201 {object} models.RecommendationResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 401 {object} middleware.ErrorResponse "Missing init data"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /recommendations/{userId} [post]
func (h *RecommendationHandler) Send(c *gin.Context) {
	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.FromBindingError(err))
		return
	}

	caller, _ := middleware.TelegramID(c)
	req.SenderHandle = middleware.TelegramUsername(c)
	rec, err := h.service.Send(c.Request.Context(), caller, c.Param("userId"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, models.RecommendationResponse{
		Success: true,
		Message: "Recommendation sent successfully",
		Data:    rec,
	})
}

// @Summary List received recommendations
// @Description Pending recommendations for the caller, newest first
// @Tags recommendations
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.ListResponse
// @Failure 401 {object} middleware.ErrorResponse "Missing init data"
// @Router /recommendations/received [get]
func (h *RecommendationHandler) ListReceived(c *gin.Context) {
	caller, _ := middleware.TelegramID(c)
	list, err := h.service.ListPending(c.Request.Context(), caller)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.ListResponse{Success: true, Data: list})
}

// @Summary Resolve recommendation
// @Description Accept (adds the title to the watch list as planned) or reject a pending recommendation
// @Tags recommendations
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Recommendation ID"
// @Param status body models.ResolveRequest true "Resolution"
// @Success 200 {object} models.RecommendationResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid status"
// @Failure 404 {object} middleware.ErrorResponse "Recommendation not found"
// @Failure 409 {object} middleware.ErrorResponse "Already resolved"
// @Router /recommendations/{id} [patch]
func (h *RecommendationHandler) Resolve(c *gin.Context) {
	var req models.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.FromBindingError(err))
		return
	}

	caller, _ := middleware.TelegramID(c)

	rec, err := h.service.Resolve(c.Request.Context(), caller, c.Param("id"), models.Status(req.Status))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.RecommendationResponse{
		Success: true,
		Message: "Recommendation status updated",
		Data:    rec,
	})
}
