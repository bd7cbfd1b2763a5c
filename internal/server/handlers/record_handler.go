package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/service/loader"
	"github.com/mamadbah2/bubbel/internal/service/records"
)

// RecordService is the write path for baby records.
type RecordService interface {
	AddRecord(ctx context.Context, rec models.BabyRecord) (models.BabyRecord, error)
	EditRecord(ctx context.Context, id string, patch map[models.Column]string) (models.BabyRecord, error)
}

// RecordLister reads records from the cached snapshot.
type RecordLister interface {
	Records(ctx context.Context, recordType models.RecordType) ([]models.BabyRecord, []string)
}

// RecordHandler serves /api/records.
type RecordHandler struct {
	svc    RecordService
	lister RecordLister
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewRecordHandler constructs the records endpoints. Timestamps without a zone are read in loc.
func NewRecordHandler(svc RecordService, lister RecordLister, loc *time.Location, logger *zap.Logger) *RecordHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RecordHandler{svc: svc, lister: lister, loc: loc, logger: logger, now: time.Now}
}

type recordRequest struct {
	Type        string  `json:"type" binding:"required"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Amount      float64 `json:"amount" binding:"gte=0"`
	Note        string  `json:"note"`
	DiaperKind  string  `json:"diaper_kind"`
	BreastSide  string  `json:"breast_side"`
	PumpedML    float64 `json:"pumped_ml" binding:"gte=0"`
	BottleType  string  `json:"bottle_type"`
	FeedingKind string  `json:"feeding_kind"`
	Weight      float64 `json:"weight" binding:"gte=0"`
	Length      float64 `json:"length" binding:"gte=0"`
	Temperature float64 `json:"temperature" binding:"gte=0"`
	HealthNotes string  `json:"health_notes"`
}

func (h *RecordHandler) toRecord(req recordRequest) (models.BabyRecord, error) {
	recordType, err := models.ParseRecordType(req.Type)
	if err != nil {
		return models.BabyRecord{}, err
	}

	rec := models.BabyRecord{
		Type:        recordType,
		StartTime:   h.now().In(h.loc),
		Amount:      req.Amount,
		Note:        strings.TrimSpace(req.Note),
		DiaperKind:  req.DiaperKind,
		BreastSide:  req.BreastSide,
		PumpedML:    req.PumpedML,
		BottleType:  req.BottleType,
		FeedingKind: models.FeedingKind(req.FeedingKind),
		Weight:      req.Weight,
		Length:      req.Length,
		Temperature: req.Temperature,
		HealthNotes: strings.TrimSpace(req.HealthNotes),
	}

	if req.StartTime != "" {
		start, ok := loader.ParseTimestamp(req.StartTime, h.loc)
		if !ok {
			return models.BabyRecord{}, fmt.Errorf("%w: start_time=%q", records.ErrInvalidValue, req.StartTime)
		}
		rec.StartTime = start
	}
	if req.EndTime != "" {
		end, ok := loader.ParseTimestamp(req.EndTime, h.loc)
		if !ok {
			return models.BabyRecord{}, fmt.Errorf("%w: end_time=%q", records.ErrInvalidValue, req.EndTime)
		}
		rec.EndTime = &end
	}
	return rec, nil
}

// List returns cached records newest first, optionally filtered by ?type=.
func (h *RecordHandler) List(c *gin.Context) {
	var recordType models.RecordType
	if raw := c.Query("type"); raw != "" {
		t, err := models.ParseRecordType(raw)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		recordType = t
	}

	list, warnings := h.lister.Records(c.Request.Context(), recordType)
	c.JSON(http.StatusOK, gin.H{"records": list, "warnings": warnings})
}

// Create appends a record.
func (h *RecordHandler) Create(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid record payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	rec, err := h.toRecord(req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	saved, err := h.svc.AddRecord(c.Request.Context(), rec)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Update patches fields of the record named by :id. Keys are API field names or sheet headers.
func (h *RecordHandler) Update(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	patch := make(map[models.Column]string, len(body))
	for key, value := range body {
		col, err := models.ColumnByKey(key)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		patch[col] = patchValue(value)
	}

	updated, err := h.svc.EditRecord(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func patchValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return models.FormatNumber(v)
	default:
		return fmt.Sprint(v)
	}
}
