package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the format used for every timestamp cell written to the sheets.
const TimestampLayout = "2006-01-02 15:04"

// Column identifies one BabyRecords column by its zero-based position.
type Column int

const (
	ColID Column = iota
	ColType
	ColStartTime
	ColEndTime
	ColAmount
	ColNote
	ColDiaperKind
	ColBreastSide
	ColPumped
	ColBottle
	ColFeedingKind
	ColWeight
	ColLength
	ColTemperature
	ColHealthNotes
	columnCount
)

var (
	// ErrFieldNotAllowed signals a value for a column the record type does not own.
	ErrFieldNotAllowed = errors.New("field not allowed for record type")
	// ErrMissingStart signals a record without a start time.
	ErrMissingStart = errors.New("start time is required")
	// ErrEndBeforeStart signals an end time earlier than the start time.
	ErrEndBeforeStart = errors.New("end time is before start time")
	// ErrUnknownColumn is returned when a column key cannot be resolved.
	ErrUnknownColumn = errors.New("unknown column")
)

type columnDef struct {
	header string
	key    string
}

var columnDefs = [columnCount]columnDef{
	ColID:          {header: "ID", key: "id"},
	ColType:        {header: "Type", key: "type"},
	ColStartTime:   {header: "Starttijd", key: "start_time"},
	ColEndTime:     {header: "Eindtijd", key: "end_time"},
	ColAmount:      {header: "Hoeveelheid", key: "amount"},
	ColNote:        {header: "Opmerking", key: "note"},
	ColDiaperKind:  {header: "Type Luier", key: "diaper_kind"},
	ColBreastSide:  {header: "Borst", key: "breast_side"},
	ColPumped:      {header: "Kolven", key: "pumped_ml"},
	ColBottle:      {header: "Fles", key: "bottle_type"},
	ColFeedingKind: {header: "Voeding_type", key: "feeding_kind"},
	ColWeight:      {header: "Gewicht", key: "weight"},
	ColLength:      {header: "Lengte", key: "length"},
	ColTemperature: {header: "Temperatuur", key: "temperature"},
	ColHealthNotes: {header: "Opmerkingen / ziekten", key: "health_notes"},
}

// Header returns the sheet header name of the column.
func (c Column) Header() string { return columnDefs[c].header }

// Key returns the API field name of the column.
func (c Column) Key() string { return columnDefs[c].key }

// Index returns the 1-based sheet column number.
func (c Column) Index() int { return int(c) + 1 }

// IsTime reports whether the column stores a timestamp.
func (c Column) IsTime() bool { return c == ColStartTime || c == ColEndTime }

// IsNumeric reports whether the column stores a number.
func (c Column) IsNumeric() bool {
	switch c {
	case ColAmount, ColPumped, ColWeight, ColLength, ColTemperature:
		return true
	}
	return false
}

// RecordHeaders returns the BabyRecords header row in column order.
func RecordHeaders() []string {
	headers := make([]string, columnCount)
	for i := range columnDefs {
		headers[i] = columnDefs[i].header
	}
	return headers
}

// ColumnByKey resolves an API field name or a sheet header to its column.
func ColumnByKey(key string) (Column, error) {
	for i, def := range columnDefs {
		if def.key == key || def.header == key {
			return Column(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, key)
}

// Every type may set ID, Type, start time and note; the rest is listed per type.
var typeColumns = map[RecordType][]Column{
	RecordSleep:   {ColEndTime, ColAmount},
	RecordFeeding: {ColEndTime, ColAmount, ColBreastSide, ColPumped, ColBottle, ColFeedingKind},
	RecordDiaper:  {ColDiaperKind},
	RecordHealth:  {ColWeight, ColLength, ColTemperature, ColHealthNotes},
}

// Allows reports whether the record type owns the column.
func (t RecordType) Allows(c Column) bool {
	switch c {
	case ColID, ColType, ColStartTime, ColNote:
		_, known := typeColumns[t]
		return known
	}
	for _, owned := range typeColumns[t] {
		if owned == c {
			return true
		}
	}
	return false
}

// Cells returns the non-empty cell values of the record keyed by column.
func (r BabyRecord) Cells(loc *time.Location) map[Column]string {
	cells := map[Column]string{
		ColID:   r.ID,
		ColType: string(r.Type),
	}
	if r.HasStart() {
		cells[ColStartTime] = FormatTimestamp(r.StartTime, loc)
	}
	if r.EndTime != nil && !r.EndTime.IsZero() {
		cells[ColEndTime] = FormatTimestamp(*r.EndTime, loc)
	}
	cells[ColAmount] = FormatNumber(r.Amount)
	cells[ColNote] = r.Note
	cells[ColDiaperKind] = r.DiaperKind
	cells[ColBreastSide] = r.BreastSide
	cells[ColPumped] = FormatNumber(r.PumpedML)
	cells[ColBottle] = r.BottleType
	cells[ColFeedingKind] = string(r.FeedingKind)
	cells[ColWeight] = FormatNumber(r.Weight)
	cells[ColLength] = FormatNumber(r.Length)
	cells[ColTemperature] = FormatNumber(r.Temperature)
	cells[ColHealthNotes] = r.HealthNotes

	for c, v := range cells {
		if v == "" {
			delete(cells, c)
		}
	}
	return cells
}

// Validate checks the record against its type's column list and the time invariant.
func (r BabyRecord) Validate(loc *time.Location) error {
	if _, ok := typeColumns[r.Type]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRecordType, r.Type)
	}
	if err := r.CheckTimes(); err != nil {
		return err
	}
	for c := range r.Cells(loc) {
		if !r.Type.Allows(c) {
			return fmt.Errorf("%w: %s on %s", ErrFieldNotAllowed, c.Key(), r.Type)
		}
	}
	return nil
}

// CheckTimes enforces a present start and an end that does not precede it.
func (r BabyRecord) CheckTimes() error {
	if !r.HasStart() {
		return ErrMissingStart
	}
	if r.EndTime != nil && r.EndTime.Before(r.StartTime) {
		return ErrEndBeforeStart
	}
	return nil
}

// Row renders the record in sheet column order, unused columns left empty.
func (r BabyRecord) Row(loc *time.Location) ([]interface{}, error) {
	if err := r.Validate(loc); err != nil {
		return nil, err
	}
	cells := r.Cells(loc)
	row := make([]interface{}, columnCount)
	for i := range row {
		row[i] = cells[Column(i)]
	}
	return row, nil
}

// FormatTimestamp renders t in loc using TimestampLayout.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(TimestampLayout)
}

// FormatNumber renders v without trailing zeros; zero renders as an empty cell.
func FormatNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatID renders a record sequence number as R###.
func FormatID(seq int) string {
	return fmt.Sprintf("R%03d", seq)
}

// ParseIDSequence extracts the numeric part of an R### id.
func ParseIDSequence(id string) (int, bool) {
	if !strings.HasPrefix(id, "R") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, "R"))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
