package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/license-monitor/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps application error codes to HTTP statuses. Unclassified
// errors are treated as internal and their details are not exposed.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch apperrors.CodeOf(err) {
	case apperrors.ErrNotFound:
		status = http.StatusNotFound
	case apperrors.ErrBadRequest:
		status = http.StatusBadRequest
	case apperrors.ErrConflict:
		status = http.StatusConflict
	case apperrors.ErrTooManyRequests:
		status = http.StatusTooManyRequests
	case apperrors.ErrUnauthorized:
		status = http.StatusUnauthorized
	case apperrors.ErrConfiguration:
		status = http.StatusInternalServerError
	default:
		message = "internal server error"
	}

	c.JSON(status, NewErrorResponse(message))
}
