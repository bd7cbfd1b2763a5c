package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/service/timer"
)

// TimerService tracks running sleep and feeding sessions per client.
type TimerService interface {
	Start(clientID string, kind models.RecordType, meta models.SessionMetadata) (models.ActiveSession, error)
	Stop(ctx context.Context, clientID string, kind models.RecordType) (models.BabyRecord, error)
	Cancel(clientID string, kind models.RecordType) error
	Active(clientID string) []models.ActiveSession
	Elapsed(session models.ActiveSession) time.Duration
}

// TimerHandler serves /api/timers.
type TimerHandler struct {
	svc    TimerService
	logger *zap.Logger
}

// NewTimerHandler creates a new timer handler.
func NewTimerHandler(svc TimerService, logger *zap.Logger) *TimerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimerHandler{svc: svc, logger: logger}
}

type sessionView struct {
	models.ActiveSession
	ElapsedSeconds int64 `json:"elapsed_seconds"`
}

func (h *TimerHandler) view(s models.ActiveSession) sessionView {
	return sessionView{ActiveSession: s, ElapsedSeconds: int64(h.svc.Elapsed(s).Seconds())}
}

// List returns the calling client's running sessions.
func (h *TimerHandler) List(c *gin.Context) {
	active := h.svc.Active(clientID(c))
	views := make([]sessionView, len(active))
	for i, s := range active {
		views[i] = h.view(s)
	}
	c.JSON(http.StatusOK, gin.H{"sessions": views})
}

// Start begins a :kind session. A running session of that kind answers 409 with the session.
func (h *TimerHandler) Start(c *gin.Context) {
	kind, err := models.ParseRecordType(c.Param("kind"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var meta models.SessionMetadata
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&meta); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	session, err := h.svc.Start(clientID(c), kind, meta)
	if errors.Is(err, timer.ErrSessionRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "session": h.view(session)})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(session))
}

// Stop ends the :kind session and returns the record it was saved as.
func (h *TimerHandler) Stop(c *gin.Context) {
	kind, err := models.ParseRecordType(c.Param("kind"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	rec, err := h.svc.Stop(c.Request.Context(), clientID(c), kind)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Cancel discards the :kind session without saving it.
func (h *TimerHandler) Cancel(c *gin.Context) {
	kind, err := models.ParseRecordType(c.Param("kind"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.svc.Cancel(clientID(c), kind); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
