package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
)

// ErrArchiveDisabled is returned when no report archive is configured.
var ErrArchiveDisabled = errors.New("report archive not configured")

// ReportArchive lists the nightly reports kept by the scheduler.
type ReportArchive interface {
	ListDailyReports(ctx context.Context, from, to time.Time) ([]models.DailyReport, error)
}

// ReportHandler serves the archived nightly reports.
type ReportHandler struct {
	archive ReportArchive
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportHandler creates a handler over archive. A nil archive answers 503.
func NewReportHandler(archive ReportArchive, loc *time.Location, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{archive: archive, loc: loc, logger: logger, now: time.Now}
}

// List returns the archived reports dated within ?from= and ?to=, oldest first.
func (h *ReportHandler) List(c *gin.Context) {
	if h.archive == nil {
		respondError(c, h.logger, ErrArchiveDisabled)
		return
	}

	from, to, err := queryDateRange(c, startOfDay(h.now(), h.loc), h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reports, err := h.archive.ListDailyReports(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if reports == nil {
		reports = []models.DailyReport{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}
