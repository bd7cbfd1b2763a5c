package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/mamadbah2/bubbel/internal/domain/models"
)

// ExportCSV writes the records whose start date lies in [from, to] as CSV, header first.
// Both bounds are compared by calendar date in loc.
func ExportCSV(w io.Writer, records []models.BabyRecord, from, to time.Time, loc *time.Location) (int, error) {
	first, last := dayKey(from, loc), dayKey(to, loc)
	if first > last {
		return 0, fmt.Errorf("export range %s..%s is reversed", first, last)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(models.RecordHeaders()); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	written := 0
	for _, r := range records {
		if !r.HasStart() {
			continue
		}
		day := dayKey(r.StartTime, loc)
		if day < first || day > last {
			continue
		}

		cells := r.Cells(loc)
		line := make([]string, len(models.RecordHeaders()))
		for i := range line {
			line[i] = cells[models.Column(i)]
		}
		if err := cw.Write(line); err != nil {
			return written, fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("flush csv: %w", err)
	}
	return written, nil
}
