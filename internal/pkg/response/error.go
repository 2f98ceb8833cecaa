package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error  string                `json:"error"`
	Fields []apperror.FieldError `json:"fields,omitempty"`
}

// Error sends a JSON error response.
// Validation errors keep their per-field details, consistency violations map to 409,
// AppErrors carry their own status. Anything else is logged and reported as 500.
func Error(c *gin.Context, err error) {
	var valErr *apperror.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: valErr.Fields})
		return
	}

	var conflict *apperror.ConsistencyViolation
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: conflict.Reason})
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	slog.ErrorContext(c.Request.Context(), "unhandled error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest sends a 400 with an optional binding detail.
func BadRequest(c *gin.Context, message string, err error) {
	body := gin.H{"error": message}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}
