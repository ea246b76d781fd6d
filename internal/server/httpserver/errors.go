package httpserver

import (
	"errors"
	"net/http"

	"github.com/KaityXD/choas-lib/internal/common"
	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors to a status code and a client-safe message.
func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrInvalidName):
		return http.StatusBadRequest, "invalid file name"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "file not found"
	case errors.Is(err, common.ErrPayloadTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "file too large"
	case errors.Is(err, common.ErrTooManyLogins):
		return http.StatusTooManyRequests, common.ErrTooManyLogins.Error()
	case errors.Is(err, common.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "daily upload limit reached"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(c *gin.Context, err error) {
	code, msg := statusFor(err)
	c.JSON(code, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
