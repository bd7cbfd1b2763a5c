package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/repository/sheets"
	"github.com/mamadbah2/bubbel/internal/service/records"
	"github.com/mamadbah2/bubbel/internal/service/reporting"
	"github.com/mamadbah2/bubbel/internal/service/timer"
)

const (
	// ClientCookie identifies a browser for timer sessions.
	ClientCookie = "bubbel_client"

	clientIDKey     = "client_id"
	clientCookieAge = 3600 * 24 * 365
)

// ClientIdentity reuses the client cookie or issues a new one.
func ClientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(ClientCookie)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, id, clientCookieAge, "/", "", false, true)
		}
		c.Set(clientIDKey, id)
		c.Next()
	}
}

func clientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}

func statusFor(err error) int {
	var partial *records.PartialEditError
	switch {
	case errors.As(err, &partial):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrFieldNotAllowed),
		errors.Is(err, models.ErrMissingStart),
		errors.Is(err, models.ErrEndBeforeStart),
		errors.Is(err, models.ErrUnknownRecordType),
		errors.Is(err, models.ErrUnknownColumn),
		errors.Is(err, records.ErrInvalidQuantity),
		errors.Is(err, records.ErrInvalidValue),
		errors.Is(err, records.ErrInvalidRow),
		errors.Is(err, timer.ErrUntimedKind):
		return http.StatusBadRequest
	case errors.Is(err, records.ErrRecordNotFound),
		errors.Is(err, records.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, records.ErrDuplicateRecordID),
		errors.Is(err, timer.ErrSessionRunning),
		errors.Is(err, timer.ErrNoActiveSession):
		return http.StatusConflict
	case errors.Is(err, sheets.ErrNotConfigured),
		errors.Is(err, ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, reporting.ErrIncompleteData):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var partial *records.PartialEditError
	if errors.As(err, &partial) {
		written := make([]string, len(partial.Written))
		for i, col := range partial.Written {
			written[i] = col.Key()
		}
		body["written"] = written
		body["failed"] = partial.Failed.Key()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, body)
}
