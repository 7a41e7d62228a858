package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "anime-tracker-backend/internal/common/errors"
	"anime-tracker-backend/internal/common/validation"
	"anime-tracker-backend/internal/features/user/models"
	"anime-tracker-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/user")
	{
		users.POST("", h.ResolveUser)
		users.GET("/:telegramId", h.GetUser)
		users.POST("/avatar/:telegramId", h.UploadAvatar)
		users.POST("/anime/:telegramId", h.UpsertAnime)
	}

	router.GET("/profile/:profileId", h.GetProfile)
}

// @Summary Resolve user
// @Description Create the user on first contact, otherwise update the username and return the stored document
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.ResolveUserRequest true "Telegram identity"
// @Success 200 {object} models.User
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /user [post]
func (h *UserHandler) ResolveUser(c *gin.Context) {
	var req models.ResolveUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.FromBindingError(err))
		return
	}

	user, err := h.service.GetOrCreate(c.Request.Context(), req.TelegramID, req.Username)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Get user
// @Tags users
// @Produce json
// @Param telegramId path string true "Telegram ID"
// @Success 200 {object} models.User
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /user/{telegramId} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("telegramId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Get user by public profile id
// @Tags users
// @Produce json
// @Param profileId path string true "Profile ID"
// @Success 200 {object} models.User
// @Failure 404 {object} middleware.ErrorResponse "Profile not found"
// @Router /profile/{profileId} [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.service.GetByProfileID(c.Request.Context(), c.Param("profileId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Upload avatar
// @Description Store one image from the "avatar" multipart field and record its URL
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param telegramId path string true "Telegram ID"
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} models.User
// @Failure 400 {object} middleware.ErrorResponse "No file or unsupported file"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /user/avatar/{telegramId} [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		_ = c.Error(apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "No file uploaded"))
		return
	}

	user, err := h.service.UploadAvatar(c.Request.Context(), c.Param("telegramId"), file)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Add or update a watch-list entry
// @Description Existing titles only change status; new titles are appended with the catalog fields
// @Tags users
// @Accept json
// @Produce json
// @Param telegramId path string true "Telegram ID"
// @Param entry body models.UpsertAnimeRequest true "Entry"
// @Success 200 {object} models.User
// @Failure 400 {object} middleware.ErrorResponse "Invalid title or status"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /user/anime/{telegramId} [post]
func (h *UserHandler) UpsertAnime(c *gin.Context) {
	var req models.UpsertAnimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(validation.FromBindingError(err))
		return
	}

	user, err := h.service.UpsertAnime(c.Request.Context(), c.Param("telegramId"), req.ToEntry())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}
