package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/repository/sheets"
)

// DefaultTTL is how long a snapshot is reused before the store is read again.
const DefaultTTL = 60 * time.Second

var (
	recordsRange       = sheets.ColumnsRange(sheets.RecordsSheet, 1, len(models.RecordHeaders()))
	inventoryRange     = sheets.ColumnsRange(sheets.InventorySheet, 1, 3)
	replenishmentRange = sheets.ColumnsRange(sheets.ReplenishmentSheet, 1, 3)
)

// Snapshot is one consistent read of the three tables.
// An empty table means "no data"; Warnings explains tables that could not be read.
type Snapshot struct {
	Records        []models.BabyRecord         `json:"records"`
	Inventory      []models.InventoryItem      `json:"inventory"`
	Replenishments []models.ReplenishmentEntry `json:"replenishments"`
	FetchedAt      time.Time                   `json:"fetched_at"`
	Warnings       []string                    `json:"warnings,omitempty"`
}

// Degraded reports whether any table failed to load.
func (s Snapshot) Degraded() bool { return len(s.Warnings) > 0 }

// RecordRow pairs a record with the sheet row it was read from.
type RecordRow struct {
	Row    int
	Record models.BabyRecord
}

// InventoryRow pairs an inventory item with its sheet position.
type InventoryRow struct {
	Row      int
	StockCol int
	Item     models.InventoryItem
}

// Loader reads the spreadsheet and caches the parsed tables for a fixed window.
// Writes made elsewhere do not invalidate the cache.
type Loader struct {
	repo   sheets.Repository
	loc    *time.Location
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	cached  *Snapshot
	expires time.Time
}

// NewLoader wires a loader. A nil repository yields empty snapshots.
func NewLoader(repo sheets.Repository, loc *time.Location, ttl time.Duration, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Loader{
		repo:   repo,
		loc:    loc,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Location returns the zone timestamps are normalized to.
func (l *Loader) Location() *time.Location { return l.loc }

// Load returns the cached snapshot while it is fresh, otherwise reads the store.
// It never fails; unreachable tables come back empty with a warning.
func (l *Loader) Load(ctx context.Context) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.cached != nil && now.Before(l.expires) {
		return *l.cached
	}
	return l.refreshLocked(ctx, now)
}

// Refresh reads the store regardless of the cache and caches the result if it is complete.
func (l *Loader) Refresh(ctx context.Context) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshLocked(ctx, l.now())
}

func (l *Loader) refreshLocked(ctx context.Context, now time.Time) Snapshot {
	snap := l.fetch(ctx)
	snap.FetchedAt = now
	if !snap.Degraded() {
		l.cached = &snap
		l.expires = now.Add(l.ttl)
	}
	return snap
}

func (l *Loader) fetch(ctx context.Context) Snapshot {
	var snap Snapshot

	if l.repo == nil {
		snap.Warnings = append(snap.Warnings, "spreadsheet not configured; showing no data")
		return snap
	}

	records, err := l.ReadRecords(ctx)
	if err != nil {
		l.logger.Warn("records unavailable", zap.Error(err))
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("could not load %s: %v", sheets.RecordsSheet, err))
	}
	for _, r := range records {
		snap.Records = append(snap.Records, r.Record)
	}

	inventory, err := l.ReadInventory(ctx)
	if err != nil {
		l.logger.Warn("inventory unavailable", zap.Error(err))
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("could not load %s: %v", sheets.InventorySheet, err))
	}
	for _, r := range inventory {
		snap.Inventory = append(snap.Inventory, r.Item)
	}

	replenishments, err := l.ReadReplenishments(ctx)
	if err != nil {
		l.logger.Warn("replenishments unavailable", zap.Error(err))
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("could not load %s: %v", sheets.ReplenishmentSheet, err))
	}
	snap.Replenishments = replenishments

	l.logger.Debug("snapshot loaded",
		zap.Int("records", len(snap.Records)),
		zap.Int("inventory", len(snap.Inventory)),
		zap.Int("replenishments", len(snap.Replenishments)))

	return snap
}

// ReadRecords reads BabyRecords straight from the store, bypassing the cache.
func (l *Loader) ReadRecords(ctx context.Context) ([]RecordRow, error) {
	table, err := l.readTable(ctx, recordsRange)
	if err != nil {
		return nil, err
	}

	out := make([]RecordRow, 0, len(table.rows))
	for _, row := range table.rows {
		out = append(out, RecordRow{Row: row.number, Record: DecodeRecord(row.cells, l.loc)})
	}
	return out, nil
}

// ReadInventory reads Voorraad straight from the store, bypassing the cache.
func (l *Loader) ReadInventory(ctx context.Context) ([]InventoryRow, error) {
	table, err := l.readTable(ctx, inventoryRange)
	if err != nil {
		return nil, err
	}

	stockCol := table.column(models.HeaderCurrentStock)
	if stockCol == 0 && len(table.rows) > 0 {
		return nil, fmt.Errorf("%s: missing %q column", sheets.InventorySheet, models.HeaderCurrentStock)
	}

	out := make([]InventoryRow, 0, len(table.rows))
	for _, row := range table.rows {
		out = append(out, InventoryRow{
			Row:      row.number,
			StockCol: stockCol,
			Item: models.InventoryItem{
				ProductName:  row.cells[models.HeaderProductName],
				CurrentStock: ParseStock(row.cells[models.HeaderCurrentStock]),
				MinimumStock: ParseStock(row.cells[models.HeaderMinimumStock]),
			},
		})
	}
	return out, nil
}

// ReadReplenishments reads VoorraadBijvulling straight from the store.
func (l *Loader) ReadReplenishments(ctx context.Context) ([]models.ReplenishmentEntry, error) {
	table, err := l.readTable(ctx, replenishmentRange)
	if err != nil {
		return nil, err
	}

	out := make([]models.ReplenishmentEntry, 0, len(table.rows))
	for _, row := range table.rows {
		ts, _ := ParseTimestamp(row.cells[models.HeaderRestockDate], l.loc)
		out = append(out, models.ReplenishmentEntry{
			Timestamp:     ts,
			ProductName:   row.cells[models.HeaderProductName],
			QuantityAdded: ParseStock(row.cells[models.HeaderRestockAmount]),
		})
	}
	return out, nil
}

func (l *Loader) readTable(ctx context.Context, sheetRange string) (table, error) {
	if l.repo == nil {
		return table{}, sheets.ErrNotConfigured
	}
	values, err := l.repo.ReadRange(ctx, sheetRange)
	if err != nil {
		return table{}, err
	}
	return newTable(values), nil
}

// DecodeRecord maps one BabyRecords row (header -> raw value) to a record.
// Unparseable timestamps stay zero and unparseable numbers become 0.
func DecodeRecord(cells map[string]string, loc *time.Location) models.BabyRecord {
	get := func(c models.Column) string { return cells[c.Header()] }

	recordType := models.RecordType(get(models.ColType))
	if parsed, err := models.ParseRecordType(get(models.ColType)); err == nil {
		recordType = parsed
	}

	rec := models.BabyRecord{
		ID:          get(models.ColID),
		Type:        recordType,
		Amount:      ParseNumber(get(models.ColAmount)),
		Note:        get(models.ColNote),
		DiaperKind:  get(models.ColDiaperKind),
		BreastSide:  get(models.ColBreastSide),
		PumpedML:    ParseNumber(get(models.ColPumped)),
		BottleType:  get(models.ColBottle),
		FeedingKind: models.FeedingKind(get(models.ColFeedingKind)),
		Weight:      ParseNumber(get(models.ColWeight)),
		Length:      ParseNumber(get(models.ColLength)),
		Temperature: ParseNumber(get(models.ColTemperature)),
		HealthNotes: get(models.ColHealthNotes),
	}

	if start, ok := ParseTimestamp(get(models.ColStartTime), loc); ok {
		rec.StartTime = start
	}
	if end, ok := ParseTimestamp(get(models.ColEndTime), loc); ok {
		rec.EndTime = &end
	}
	return rec
}
