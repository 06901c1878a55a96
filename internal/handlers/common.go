package handlers

import (
	"errors"
	"net/http"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and response helpers for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) requestFields(c *gin.Context) []interface{} {
	userID, _ := c.Get(ContextUserID)
	return []interface{}{
		"request_id", c.GetHeader(utils.RequestIDHeader),
		"user_id", userID,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
}

// LogError logs error details with request context
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, append(h.requestFields(c), additionalFields...)...)
}

func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		Message: message,
		Details: details,
	})
}

// actor returns the authenticated caller. AuthMiddleware guarantees both
// keys on protected routes.
func (h *BaseHandler) actor(c *gin.Context) (services.Actor, bool) {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
			Code:    "missing",
		})
		return services.Actor{}, false
	}
	role, _ := c.Get(ContextUserRole)
	userRole, _ := role.(models.UserRole)
	return services.Actor{UserID: userID, Role: userRole}, true
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
			Code:    "validation_failed",
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
			Code: "forbidden",
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error(), Code: "unauthorized"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error(), Code: "forbidden"})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error(), Code: "not_found"})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error(), Code: "conflict"})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error(), Code: "validation_failed"})
	case services.IsUpstream(err):
		h.LogError(c, err, "Upstream service failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: "Upstream service unavailable", Code: "upstream_unavailable"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}

// LogRequest logs an incoming request with context
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Info(message, append(h.requestFields(c), additionalFields...)...)
}
