package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/service/reporting"
)

// Analytics is the read side behind the dashboard views.
type Analytics interface {
	Dashboard(ctx context.Context) reporting.Summary
	Daily(ctx context.Context, recordType models.RecordType, days int) ([]reporting.DayTotal, []string)
	Dayparts(ctx context.Context) ([]reporting.DaypartAverage, []string)
	Sleep(ctx context.Context) ([]reporting.SleepDay, []string)
	Weight(ctx context.Context) ([]reporting.WeightPoint, []string)
	Export(ctx context.Context, w io.Writer, from, to time.Time, recordType models.RecordType) (int, error)
}

// DashboardHandler serves the dashboard, analytics and export endpoints.
type DashboardHandler struct {
	svc    Analytics
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardHandler creates a new dashboard handler. Dates are bucketed in loc.
func NewDashboardHandler(svc Analytics, loc *time.Location, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{svc: svc, loc: loc, logger: logger, now: time.Now}
}

// Dashboard returns today's summary with inventory status and load warnings.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Dashboard(c.Request.Context()))
}

func queryDays(c *gin.Context) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return reporting.DefaultWindowDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > 366 {
		return 0, fmt.Errorf("days must be between 1 and 366")
	}
	return days, nil
}

// Daily returns zero-filled per-day totals for ?type= over the last ?days= days.
func (h *DashboardHandler) Daily(c *gin.Context) {
	recordType, err := models.ParseRecordType(c.Query("type"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	days, err := queryDays(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	series, warnings := h.svc.Daily(c.Request.Context(), recordType, days)
	c.JSON(http.StatusOK, gin.H{"type": recordType, "series": series, "warnings": warnings})
}

// Dayparts returns the average amount per part of the day.
func (h *DashboardHandler) Dayparts(c *gin.Context) {
	parts, warnings := h.svc.Dayparts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"dayparts": parts, "warnings": warnings})
}

// Sleep returns per-day sleep totals; ?days= keeps only the trailing window.
func (h *DashboardHandler) Sleep(c *gin.Context) {
	days, err := queryDays(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	all, warnings := h.svc.Sleep(c.Request.Context())
	cutoff := h.today().AddDate(0, 0, -(days - 1)).Format("2006-01-02")
	series := make([]reporting.SleepDay, 0, len(all))
	for _, d := range all {
		if d.Date >= cutoff {
			series = append(series, d)
		}
	}
	c.JSON(http.StatusOK, gin.H{"series": series, "warnings": warnings})
}

// Weight returns the weight measurements in time order.
func (h *DashboardHandler) Weight(c *gin.Context) {
	points, warnings := h.svc.Weight(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"series": points, "warnings": warnings})
}

// Export returns the records of [from, to] as a CSV attachment. Dates are YYYY-MM-DD and
// default to the trailing week.
func (h *DashboardHandler) Export(c *gin.Context) {
	from, to, err := queryDateRange(c, h.today(), h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var recordType models.RecordType
	if raw := c.Query("type"); raw != "" {
		if recordType, err = models.ParseRecordType(raw); err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	var buf bytes.Buffer
	if _, err := h.svc.Export(c.Request.Context(), &buf, from, to, recordType); err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("bubbel_%s_%s.csv", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *DashboardHandler) today() time.Time {
	return startOfDay(h.now(), h.loc)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// queryDateRange reads ?from= and ?to= as YYYY-MM-DD days in loc. Missing bounds default to
// the trailing week ending today.
func queryDateRange(c *gin.Context, today time.Time, loc *time.Location) (time.Time, time.Time, error) {
	to := today
	from := to.AddDate(0, 0, -(reporting.DefaultWindowDays - 1))

	var err error
	if raw := c.Query("from"); raw != "" {
		if from, err = time.ParseInLocation("2006-01-02", raw, loc); err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.ParseInLocation("2006-01-02", raw, loc); err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("from must not be after to")
	}
	return from, to, nil
}
