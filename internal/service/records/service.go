package records

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/repository/sheets"
	"github.com/mamadbah2/bubbel/internal/service/loader"
)

var (
	// ErrRecordNotFound indicates no row carries the requested id.
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecordID indicates the id occurs on more than one row.
	ErrDuplicateRecordID = errors.New("record id is not unique")
	// ErrProductNotFound indicates the inventory has no such product.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidQuantity indicates a restock or removal of less than one unit.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInvalidValue indicates an edit value that cannot be coerced to the column type.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidRow indicates a positional edit aimed at the header or before it.
	ErrInvalidRow = errors.New("row must be a data row")
)

var (
	recordsWriteRange       = sheets.ColumnsRange(sheets.RecordsSheet, 1, len(models.RecordHeaders()))
	replenishmentWriteRange = sheets.ColumnsRange(sheets.ReplenishmentSheet, 1, 3)
)

// PartialEditError reports a multi-cell edit that stopped part way. Cells already written stay written.
type PartialEditError struct {
	Row     int
	Written []models.Column
	Failed  models.Column
	Err     error
}

func (e *PartialEditError) Error() string {
	written := make([]string, len(e.Written))
	for i, c := range e.Written {
		written[i] = c.Key()
	}
	return fmt.Sprintf("edit row %d failed at %s after writing [%s]: %v",
		e.Row, e.Failed.Key(), strings.Join(written, ", "), e.Err)
}

func (e *PartialEditError) Unwrap() error { return e.Err }

// Service owns every mutation of the spreadsheet.
type Service struct {
	repo          sheets.Repository
	loader        *loader.Loader
	diaperProduct string
	logger        *zap.Logger
	now           func() time.Time

	// addMu serialises id assignment; lastSeq is the highest sequence this process issued.
	addMu   sync.Mutex
	lastSeq int
}

// NewService constructs the write path. diaperProduct is decremented for every diaper logged;
// leave it empty to disable automatic consumption.
func NewService(repository sheets.Repository, l *loader.Loader, diaperProduct string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:          repository,
		loader:        l,
		diaperProduct: diaperProduct,
		logger:        logger,
		now:           time.Now,
	}
}

// AddRecord assigns the next display id and appends the record. The id comes from a fresh
// read of the store, never from the cached snapshot. A sleep logged by duration gets its end
// derived from the start. The loader cache is not refreshed.
func (s *Service) AddRecord(ctx context.Context, rec models.BabyRecord) (models.BabyRecord, error) {
	if s.repo == nil {
		return models.BabyRecord{}, sheets.ErrNotConfigured
	}

	s.addMu.Lock()
	defer s.addMu.Unlock()

	rows, err := s.loader.ReadRecords(ctx)
	if err != nil {
		return models.BabyRecord{}, fmt.Errorf("read records: %w", err)
	}
	seq := nextSequence(rows)
	if seq <= s.lastSeq {
		seq = s.lastSeq + 1
	}
	rec.ID = models.FormatID(seq)
	if rec.Type == models.RecordSleep && rec.EndTime == nil && rec.Amount > 0 && rec.HasStart() {
		end := sleepEnd(rec)
		rec.EndTime = &end
	}

	row, err := rec.Row(s.loader.Location())
	if err != nil {
		return models.BabyRecord{}, err
	}

	if err := s.repo.WriteRow(ctx, recordsWriteRange, row); err != nil {
		return models.BabyRecord{}, fmt.Errorf("append record: %w", err)
	}
	s.lastSeq = seq

	s.logger.Info("record added", zap.String("id", rec.ID), zap.String("type", string(rec.Type)))

	if rec.Type == models.RecordDiaper && s.diaperProduct != "" {
		if _, err := s.UpdateInventory(ctx, s.diaperProduct, -1); err != nil {
			s.logger.Warn("diaper stock not decremented", zap.String("product", s.diaperProduct), zap.Error(err))
		}
	}

	return rec, nil
}

// nextSequence never goes below the row count so ids keep the R### display sequence.
func nextSequence(rows []loader.RecordRow) int {
	highest := len(rows)
	for _, r := range rows {
		if n, ok := models.ParseIDSequence(r.Record.ID); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

// EditRow writes each column of updates to one explicit sheet row, one cell at a time.
// Row positions go stale when rows move; prefer EditRecord.
func (s *Service) EditRow(ctx context.Context, row int, updates map[models.Column]string) error {
	if s.repo == nil {
		return sheets.ErrNotConfigured
	}
	if row < 2 {
		return fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}

	columns := make([]models.Column, 0, len(updates))
	for c := range updates {
		columns = append(columns, c)
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i] < columns[j] })

	written := make([]models.Column, 0, len(columns))
	for _, c := range columns {
		if err := s.repo.UpdateCell(ctx, sheets.RecordsSheet, row, c.Index(), updates[c]); err != nil {
			return &PartialEditError{Row: row, Written: written, Failed: c, Err: err}
		}
		written = append(written, c)
	}

	s.logger.Info("record row edited", zap.Int("row", row), zap.Int("cells", len(written)))
	return nil
}

// EditRecord applies patch to the record with the given id. The row is resolved with a fresh
// read of the store, so rows shifted by other writers do not redirect the edit.
func (s *Service) EditRecord(ctx context.Context, id string, patch map[models.Column]string) (models.BabyRecord, error) {
	rows, err := s.loader.ReadRecords(ctx)
	if err != nil {
		return models.BabyRecord{}, fmt.Errorf("resolve record %s: %w", id, err)
	}

	var match *loader.RecordRow
	for i := range rows {
		if rows[i].Record.ID != id {
			continue
		}
		if match != nil {
			return models.BabyRecord{}, fmt.Errorf("%w: %s", ErrDuplicateRecordID, id)
		}
		match = &rows[i]
	}
	if match == nil {
		return models.BabyRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	loc := s.loader.Location()
	current := match.Record
	merged, err := applyPatch(current, patch, loc)
	if err != nil {
		return models.BabyRecord{}, err
	}
	if err := merged.CheckTimes(); err != nil {
		return models.BabyRecord{}, err
	}

	before := current.Cells(loc)
	after := merged.Cells(loc)
	changes := make(map[models.Column]string)
	for c, v := range after {
		if before[c] != v {
			changes[c] = v
		}
	}
	for c := range before {
		if _, ok := after[c]; !ok {
			changes[c] = ""
		}
	}
	if len(changes) == 0 {
		return merged, nil
	}

	if err := s.EditRow(ctx, match.Row, changes); err != nil {
		return models.BabyRecord{}, err
	}
	return merged, nil
}

func applyPatch(rec models.BabyRecord, patch map[models.Column]string, loc *time.Location) (models.BabyRecord, error) {
	for c, raw := range patch {
		if c == models.ColID || c == models.ColType || !rec.Type.Allows(c) {
			return rec, fmt.Errorf("%w: %s on %s", models.ErrFieldNotAllowed, c.Key(), rec.Type)
		}

		raw = strings.TrimSpace(raw)
		switch {
		case c.IsTime():
			var ts *time.Time
			if raw != "" {
				parsed, ok := loader.ParseTimestamp(raw, loc)
				if !ok {
					return rec, fmt.Errorf("%w: %s=%q", ErrInvalidValue, c.Key(), raw)
				}
				ts = &parsed
			}
			if c == models.ColStartTime {
				if ts == nil {
					return rec, models.ErrMissingStart
				}
				rec.StartTime = *ts
			} else {
				rec.EndTime = ts
			}
		case c.IsNumeric():
			setNumber(&rec, c, loader.ParseNumber(raw))
		default:
			setText(&rec, c, raw)
		}
	}

	// A sleep edited by start and duration keeps its end consistent.
	_, hasEnd := patch[models.ColEndTime]
	_, hasStart := patch[models.ColStartTime]
	_, hasAmount := patch[models.ColAmount]
	if rec.Type == models.RecordSleep && !hasEnd && (hasStart || hasAmount) && rec.Amount > 0 {
		end := sleepEnd(rec)
		rec.EndTime = &end
	}

	return rec, nil
}

func sleepEnd(rec models.BabyRecord) time.Time {
	return rec.StartTime.Add(time.Duration(rec.Amount * float64(time.Minute)))
}

func setNumber(rec *models.BabyRecord, c models.Column, v float64) {
	switch c {
	case models.ColAmount:
		rec.Amount = v
	case models.ColPumped:
		rec.PumpedML = v
	case models.ColWeight:
		rec.Weight = v
	case models.ColLength:
		rec.Length = v
	case models.ColTemperature:
		rec.Temperature = v
	}
}

func setText(rec *models.BabyRecord, c models.Column, v string) {
	switch c {
	case models.ColNote:
		rec.Note = v
	case models.ColDiaperKind:
		rec.DiaperKind = v
	case models.ColBreastSide:
		rec.BreastSide = v
	case models.ColBottle:
		rec.BottleType = v
	case models.ColFeedingKind:
		rec.FeedingKind = models.FeedingKind(v)
	case models.ColHealthNotes:
		rec.HealthNotes = v
	}
}
