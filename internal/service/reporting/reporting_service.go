package reporting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/service/loader"
)

// DefaultWindowDays is the trend window used when the caller does not pick one.
const DefaultWindowDays = 7

// ErrIncompleteData is returned when a report would be built from a degraded snapshot.
var ErrIncompleteData = errors.New("spreadsheet data incomplete")

// Service exposes the dashboard and analytics over the cached snapshot.
type Service struct {
	loader *loader.Loader
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(l *loader.Loader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{loader: l, logger: logger, now: time.Now}
}

// Dashboard summarises today. Load warnings are passed through.
func (s *Service) Dashboard(ctx context.Context) Summary {
	snap := s.loader.Load(ctx)
	summary := TodaySummary(snap.Records, snap.Inventory, s.now(), s.loader.Location())
	summary.Warnings = snap.Warnings
	return summary
}

// Inventory classifies the cached inventory.
func (s *Service) Inventory(ctx context.Context) ([]InventoryStatus, []string) {
	snap := s.loader.Load(ctx)
	return ClassifyInventory(snap.Inventory), snap.Warnings
}

// Daily returns the per-day series of one record type over the trailing window.
func (s *Service) Daily(ctx context.Context, recordType models.RecordType, days int) ([]DayTotal, []string) {
	if days < 1 {
		days = DefaultWindowDays
	}
	snap := s.loader.Load(ctx)
	return DailyTotals(snap.Records, recordType, days, s.now(), s.loader.Location()), snap.Warnings
}

// Dayparts returns the mean feeding volume per daypart.
func (s *Service) Dayparts(ctx context.Context) ([]DaypartAverage, []string) {
	snap := s.loader.Load(ctx)
	return DaypartAverages(snap.Records, s.loader.Location()), snap.Warnings
}

// Sleep returns sleep duration and count per day.
func (s *Service) Sleep(ctx context.Context) ([]SleepDay, []string) {
	snap := s.loader.Load(ctx)
	return SleepDurations(snap.Records, s.loader.Location()), snap.Warnings
}

// Weight returns the weight curve.
func (s *Service) Weight(ctx context.Context) ([]WeightPoint, []string) {
	snap := s.loader.Load(ctx)
	return WeightSeries(snap.Records), snap.Warnings
}

// Records lists the cached records newest first. An empty type lists every type.
func (s *Service) Records(ctx context.Context, recordType models.RecordType) ([]models.BabyRecord, []string) {
	snap := s.loader.Load(ctx)
	out := filterType(snap.Records, recordType)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, snap.Warnings
}

func filterType(records []models.BabyRecord, recordType models.RecordType) []models.BabyRecord {
	out := make([]models.BabyRecord, 0, len(records))
	for _, r := range records {
		if recordType == "" || r.Type == recordType {
			out = append(out, r)
		}
	}
	return out
}

// Export streams the records of the date range as CSV, optionally restricted to one type.
func (s *Service) Export(ctx context.Context, w io.Writer, from, to time.Time, recordType models.RecordType) (int, error) {
	snap := s.loader.Load(ctx)
	if snap.Degraded() {
		return 0, fmt.Errorf("%w: %s", ErrIncompleteData, strings.Join(snap.Warnings, "; "))
	}
	n, err := ExportCSV(w, filterType(snap.Records, recordType), from, to, s.loader.Location())
	if err != nil {
		return n, err
	}
	s.logger.Info("records exported", zap.Int("rows", n), zap.Time("from", from), zap.Time("to", to))
	return n, nil
}

// BuildDailyReport aggregates the given calendar day from a fresh read of the store.
func (s *Service) BuildDailyReport(ctx context.Context, day time.Time) (models.DailyReport, error) {
	snap := s.loader.Refresh(ctx)
	if snap.Degraded() {
		return models.DailyReport{}, fmt.Errorf("%w: %s", ErrIncompleteData, strings.Join(snap.Warnings, "; "))
	}

	loc := s.loader.Location()
	key := dayKey(day, loc)
	report := models.DailyReport{
		Date:      startOfDay(day, loc),
		CreatedAt: s.now(),
	}

	for _, r := range snap.Records {
		if !r.HasStart() || dayKey(r.StartTime, loc) != key {
			continue
		}
		switch r.Type {
		case models.RecordSleep:
			report.SleepCount++
			report.SleepMinutes += r.Amount
		case models.RecordFeeding:
			report.PumpedML += r.PumpedML
			if r.CountsTowardIntake() {
				report.FeedingCount++
				report.FeedingML += r.Amount
			}
		case models.RecordDiaper:
			report.DiaperCount++
		}
	}

	dayEnd := report.Date.AddDate(0, 0, 1)
	for _, p := range WeightSeries(snap.Records) {
		if p.Time.Before(dayEnd) {
			report.LatestWeight = p.Weight
		}
	}

	for _, item := range ClassifyInventory(snap.Inventory) {
		if item.Status != models.StockOK {
			report.RestockProducts = append(report.RestockProducts, item.ProductName)
		}
	}

	s.logger.Debug("daily report built", zap.String("date", key), zap.Int("feedings", report.FeedingCount))
	return report, nil
}

// FormatDailyReport renders a one-message summary of the report.
func FormatDailyReport(report models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bubbel %s: %d sleeps (%.0f min), %d feedings (%.0f ml), %d diapers.",
		report.Date.Format(dateLayout),
		report.SleepCount, report.SleepMinutes,
		report.FeedingCount, report.FeedingML,
		report.DiaperCount)
	if report.PumpedML > 0 {
		fmt.Fprintf(&b, " Pumped %.0f ml.", report.PumpedML)
	}
	if report.LatestWeight > 0 {
		fmt.Fprintf(&b, " Weight %.2f kg.", report.LatestWeight)
	}
	if len(report.RestockProducts) > 0 {
		fmt.Fprintf(&b, " Restock: %s.", strings.Join(report.RestockProducts, ", "))
	}
	return b.String()
}
