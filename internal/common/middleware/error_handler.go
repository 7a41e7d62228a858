package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"anime-tracker-backend/internal/common/errors"
	"anime-tracker-backend/internal/common/logger"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Code      errors.ErrorCode `json:"code"`
	Details   map[string]any   `json:"details,omitempty"`
	RequestID string           `json:"request_id"`
}

// RequestID middleware для добавления ID запроса
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// Recovery перехватывает панику и отвечает 500 вместо падения процесса
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := GetRequestID(c)

		logger.Error().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := errors.Wrap(fmt.Errorf("panic: %v", recovered), errors.ErrCodeInternal, "Internal server error")
		sendErrorResponse(c, appErr)
	})
}

// ErrorHandler converts the last error attached with c.Error into a JSON
// response. Handlers only call c.Error(err) and return.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr, ok := errors.AsAppError(err)
		if !ok {
			appErr = errors.Wrap(err, errors.ErrCodeInternal, "Internal server error")
		}

		sendErrorResponse(c, appErr)
	}
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError) {
	requestID := GetRequestID(c)
	appErr.WithRequestID(requestID)

	logError(c, appErr)

	response := ErrorResponse{
		Success:   false,
		Message:   appErr.Message,
		Code:      appErr.Code,
		RequestID: requestID,
	}
	// Внутренние детали (операции хранилища и т.п.) наружу не уходят
	if !appErr.IsInternal() {
		response.Details = appErr.Details
	}

	c.AbortWithStatusJSON(appErr.HTTPStatus(), response)
}

func logError(c *gin.Context, appErr *errors.AppError) {
	var event *zerolog.Event
	switch {
	case appErr.IsInternal():
		event = logger.Error()
	case appErr.Code == errors.ErrCodeUnauthorized:
		event = logger.Warn()
	default:
		event = logger.Info()
	}

	event = event.
		Str("request_id", appErr.RequestID).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code))

	if len(appErr.Details) > 0 {
		event = event.Interface("details", appErr.Details)
	}
	if appErr.Cause != nil {
		event = event.Err(appErr.Cause)
	}

	event.Msg(appErr.Message)
}

// GetRequestID получает ID запроса из контекста
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return "unknown"
}

// NotFound answers unmatched routes with the common error body.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		sendErrorResponse(c, errors.New(errors.ErrCodeNotFound, http.StatusText(http.StatusNotFound)).
			WithDetail("path", c.Request.URL.Path))
	}
}
