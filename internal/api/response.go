package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Standard error codes
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeBadRequest = "BAD_REQUEST"

	// ErrCodeCatalogUnavailable distinguishes "system degraded" from
	// "genuinely no match" on the decision screen.
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"

	// ErrCodeLearningDegraded means the decision stands but was not
	// learned; the operator may resubmit the feedback.
	ErrCodeLearningDegraded = "LEARNING_DEGRADED"
)

// SendSuccess sends a successful response
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
	})
}

// SendError sends an error response
func SendError(c *gin.Context, statusCode int, code, message, details string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Convenience methods for common responses

func SendValidationError(c *gin.Context, message, details string) {
	SendError(c, http.StatusBadRequest, ErrCodeValidation, message, details)
}

func SendNotFound(c *gin.Context, resource string) {
	SendError(c, http.StatusNotFound, ErrCodeNotFound, resource+" not found", "")
}

func SendConflict(c *gin.Context, message string) {
	SendError(c, http.StatusConflict, ErrCodeConflict, message, "")
}

func SendInternalError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, ErrCodeInternal, message, "")
}

func SendCatalogUnavailable(c *gin.Context) {
	SendError(c, http.StatusServiceUnavailable, ErrCodeCatalogUnavailable,
		"the dictionary could not be read", "")
}

func SendLearningDegraded(c *gin.Context) {
	SendError(c, http.StatusBadGateway, ErrCodeLearningDegraded,
		"the decision was recorded but could not be learned", "")
}
