package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/railbooking/internal/auth"
	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrTrainNotFound),
		errors.Is(err, domain.ErrReservationNotFound),
		errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientSeats),
		errors.Is(err, domain.ErrNotCancellable),
		errors.Is(err, domain.ErrTrainBusy),
		errors.Is(err, domain.ErrCustomerExists),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logFrom(c).WithError(err).Error("request failed")
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func logFrom(c *gin.Context) logrus.FieldLogger {
	if l, ok := c.Get(loggerKey); ok {
		if fl, ok := l.(logrus.FieldLogger); ok {
			return fl
		}
	}
	return logrus.StandardLogger()
}
