package handlers

import (
	"errors"
	"net/http"

	"invoicehub/internal/invoicing"
	"invoicehub/internal/logger"
	"invoicehub/internal/services"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// formatValidationErrors returns the field -> messages map sent as "details".
func formatValidationErrors(err error) map[string][]string {
	var verr *invoicing.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return map[string][]string{"request": {err.Error()}}
}

func validationFailed(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": formatValidationErrors(err)})
}

// respondError writes the status and message for a service error. notFound is the
// message used for services.ErrNotFound.
func respondError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		validationFailed(c, err)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists"})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrRenderFailed):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
	case errors.Is(err, services.ErrNotificationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send reminder email"})
	default:
		logger.FromContext(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("Unhandled service error")
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
