package httpapi

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/learnerbot/internal/domain"
	"github.com/alexanderramin/learnerbot/internal/service"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// classify maps a service error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest, "empty_message"
	case errors.Is(err, service.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, service.ErrUnknownBadge):
		return http.StatusNotFound, "unknown_badge"
	case errors.Is(err, domain.ErrInvariant):
		return http.StatusInternalServerError, "invariant_violation"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
