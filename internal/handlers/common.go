package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/screening-service/internal/imaging"
	"github.com/SAP-F-2025/screening-service/internal/memorygame"
	"github.com/SAP-F-2025/screening-service/internal/services"
	"github.com/SAP-F-2025/screening-service/internal/utils"
	"github.com/SAP-F-2025/screening-service/internal/validator"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides request-scoped logging and shared request plumbing
type BaseHandler struct {
	logger    utils.Logger
	validator *validator.Validator
}

func NewBaseHandler(logger utils.Logger, v *validator.Validator) BaseHandler {
	return BaseHandler{
		logger:    logger,
		validator: v,
	}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLoggerFromContext(c, h.logger)
}

// LogRequest logs the start of a handled operation
func (h *BaseHandler) LogRequest(c *gin.Context, message string, fields ...interface{}) {
	h.log(c).Info(message, fields...)
}

// LogError logs error details with request context
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, fields ...interface{}) {
	h.log(c).LogError(err, message, fields...)
}

// bindJSON decodes the body into req and runs struct validation. On failure
// it writes the 400 response and returns false.
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err,
		})
		return false
	}
	return true
}

// handleServiceError maps service and domain errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Code:    businessRuleError.Rule,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Screening session not found",
		})
	case errors.Is(err, memorygame.ErrInvalidIndex):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid card index",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrGameNotFinished):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Memory game is not finished",
		})
	case errors.Is(err, services.ErrAnswersAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Orientation answers already submitted",
		})
	case errors.Is(err, services.ErrSessionFinished):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Screening is already finished",
		})
	case errors.Is(err, services.ErrReportNotReady):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Screening is not finished yet",
		})
	case errors.Is(err, imaging.ErrAnalyzerDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Scan analysis is not configured",
		})
	case errors.Is(err, imaging.ErrAnalysisFailed):
		h.LogError(c, err, "Scan analysis backend failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Scan analysis failed",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
