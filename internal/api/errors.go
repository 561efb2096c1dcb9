package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanksrelay/relay/internal/auth"
	"github.com/thanksrelay/relay/internal/relay"
)

// statusFor maps domain errors to HTTP status codes. Unknown errors are
// internal failures.
func statusFor(err error) int {
	switch {
	case errors.Is(err, relay.ErrPostNotFound),
		errors.Is(err, relay.ErrParentNotFound),
		errors.Is(err, relay.ErrRootNotFound),
		errors.Is(err, relay.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, relay.ErrTaskAlreadySaved):
		return http.StatusConflict
	case errors.Is(err, relay.ErrHideOwnPost),
		errors.Is(err, relay.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes a JSON error response for err
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak internals to clients.
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
