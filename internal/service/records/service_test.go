package records

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/bubbel/internal/domain/models"
	"github.com/mamadbah2/bubbel/internal/repository/sheets"
	"github.com/mamadbah2/bubbel/internal/service/loader"
)

func headerRow() []interface{} {
	headers := models.RecordHeaders()
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

func newFixture(t *testing.T, records ...[]interface{}) (*Service, *sheets.MemoryRepository, *loader.Loader) {
	t.Helper()

	recordRows := append([][]interface{}{headerRow()}, records...)
	repo := sheets.NewMemoryRepository(map[string][][]interface{}{
		sheets.RecordsSheet: recordRows,
		sheets.InventorySheet: {
			{"Productnaam", "Actuele voorraad", "Minimum voorraad"},
			{"Doekjes", "2", "1"},
			{"Luiers", "10", "5"},
		},
		sheets.ReplenishmentSheet: {
			{"Datum", "Productnaam", "Aantal"},
		},
	})

	l := loader.NewLoader(repo, time.UTC, time.Minute, nil)
	svc := NewService(repo, l, "Luiers", nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 2, 9, 15, 0, 0, time.UTC) }
	return svc, repo, l
}

type flakyRepo struct {
	sheets.Repository
	updates   int
	failAfter int
}

func (f *flakyRepo) UpdateCell(ctx context.Context, sheet string, row, col int, value interface{}) error {
	f.updates++
	if f.updates > f.failAfter {
		return errors.New("quota exceeded")
	}
	return f.Repository.UpdateCell(ctx, sheet, row, col, value)
}

func TestAddRecordAppendsInSchemaOrder(t *testing.T) {
	svc, repo, _ := newFixture(t,
		[]interface{}{"R001", "Luier", "2025-03-01 08:00", "", "", "", "Nat"},
		[]interface{}{"R002", "Luier", "2025-03-01 09:00", "", "", "", "Vuil"},
	)

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rec, err := svc.AddRecord(context.Background(), models.BabyRecord{
		Type:        models.RecordFeeding,
		StartTime:   start,
		Amount:      90,
		BreastSide:  "Links",
		FeedingKind: models.FeedingBreast,
		Note:        "rustig",
	})
	if err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}
	if rec.ID != "R003" {
		t.Errorf("ID = %s, want R003", rec.ID)
	}

	rows := repo.Rows(sheets.RecordsSheet)
	last := rows[len(rows)-1]
	want := []interface{}{"R003", "Voeding", "2025-03-01 10:00", "", "90", "rustig", "", "Links", "", "", "Borst", "", "", "", ""}
	if len(last) != len(want) {
		t.Fatalf("appended row has %d cells, want %d", len(last), len(want))
	}
	for i := range want {
		if last[i] != want[i] {
			t.Errorf("cell %s = %v, want %v", models.Column(i).Header(), last[i], want[i])
		}
	}
}

func TestAddRecordSequenceSkipsPastHighestID(t *testing.T) {
	svc, _, _ := newFixture(t,
		[]interface{}{"R010", "Luier", "2025-03-01 08:00"},
		[]interface{}{"R011", "Luier", "2025-03-01 09:00"},
	)

	rec, err := svc.AddRecord(context.Background(), models.BabyRecord{
		Type:      models.RecordHealth,
		StartTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Weight:    4.1,
	})
	if err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}
	if rec.ID != "R012" {
		t.Errorf("ID = %s, want R012", rec.ID)
	}
}

func TestConsecutiveAddsGetDistinctIDs(t *testing.T) {
	svc, _, l := newFixture(t,
		[]interface{}{"R001", "Luier", "2025-03-01 08:00", "", "", "", "Nat"},
	)
	ctx := context.Background()
	l.Load(ctx)

	first, err := svc.AddRecord(ctx, models.BabyRecord{
		Type:      models.RecordHealth,
		StartTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Weight:    4.1,
	})
	if err != nil {
		t.Fatalf("first AddRecord() error = %v", err)
	}
	second, err := svc.AddRecord(ctx, models.BabyRecord{
		Type:      models.RecordHealth,
		StartTime: time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC),
		Weight:    4.2,
	})
	if err != nil {
		t.Fatalf("second AddRecord() error = %v", err)
	}
	if first.ID != "R002" || second.ID != "R003" {
		t.Fatalf("ids = %s, %s; want R002, R003", first.ID, second.ID)
	}

	edited, err := svc.EditRecord(ctx, second.ID, map[models.Column]string{models.ColNote: "na bad"})
	if err != nil {
		t.Fatalf("EditRecord(%s) error = %v", second.ID, err)
	}
	if edited.Note != "na bad" {
		t.Errorf("note = %q", edited.Note)
	}
}

// staleReads serves every read from a frozen copy of the sheet.
type staleReads struct {
	sheets.Repository
	frozen map[string][][]interface{}
}

func (s *staleReads) ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error) {
	for name, rows := range s.frozen {
		if strings.HasPrefix(sheetRange, name+"!") {
			return rows, nil
		}
	}
	return s.Repository.ReadRange(ctx, sheetRange)
}

func TestAddRecordNeverReusesIssuedID(t *testing.T) {
	_, repo, _ := newFixture(t,
		[]interface{}{"R001", "Luier", "2025-03-01 08:00", "", "", "", "Nat"},
	)
	stale := &staleReads{
		Repository: repo,
		frozen:     map[string][][]interface{}{sheets.RecordsSheet: repo.Rows(sheets.RecordsSheet)},
	}
	l := loader.NewLoader(stale, time.UTC, time.Minute, nil)
	svc := NewService(stale, l, "", nil)

	ctx := context.Background()
	var ids []string
	for i := 0; i < 2; i++ {
		rec, err := svc.AddRecord(ctx, models.BabyRecord{
			Type:      models.RecordSleep,
			StartTime: time.Date(2025, 3, 1, 10+i, 0, 0, 0, time.UTC),
			Amount:    20,
		})
		if err != nil {
			t.Fatalf("AddRecord() error = %v", err)
		}
		ids = append(ids, rec.ID)
	}
	if ids[0] != "R002" || ids[1] != "R003" {
		t.Errorf("ids = %v, want [R002 R003]", ids)
	}
}

func TestAddRecordDoesNotRefreshCache(t *testing.T) {
	svc, _, l := newFixture(t)
	ctx := context.Background()

	before := l.Load(ctx)
	if _, err := svc.AddRecord(ctx, models.BabyRecord{
		Type:      models.RecordSleep,
		StartTime: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Amount:    30,
	}); err != nil {
		t.Fatal(err)
	}
	after := l.Load(ctx)
	if len(after.Records) != len(before.Records) {
		t.Errorf("cache changed after write: %d -> %d", len(before.Records), len(after.Records))
	}
}

func TestAddRecordRejectsForeignFields(t *testing.T) {
	svc, repo, _ := newFixture(t)

	_, err := svc.AddRecord(context.Background(), models.BabyRecord{
		Type:        models.RecordSleep,
		StartTime:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Temperature: 37.2,
	})
	if !errors.Is(err, models.ErrFieldNotAllowed) {
		t.Fatalf("AddRecord() error = %v, want ErrFieldNotAllowed", err)
	}
	if n := len(repo.Rows(sheets.RecordsSheet)); n != 1 {
		t.Errorf("rows = %d, nothing should be appended", n)
	}
}

func TestAddDiaperConsumesStock(t *testing.T) {
	svc, repo, _ := newFixture(t)

	if _, err := svc.AddRecord(context.Background(), models.BabyRecord{
		Type:       models.RecordDiaper,
		StartTime:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		DiaperKind: "Nat",
	}); err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}

	inventory := repo.Rows(sheets.InventorySheet)
	if inventory[2][1] != 9 {
		t.Errorf("Luiers stock = %v, want 9", inventory[2][1])
	}
	if n := len(repo.Rows(sheets.ReplenishmentSheet)); n != 1 {
		t.Errorf("consumption must not log a replenishment, rows = %d", n)
	}
}

func TestAddRecordRoundTrip(t *testing.T) {
	svc, repo, _ := newFixture(t)
	ctx := context.Background()

	start := time.Date(2025, 3, 1, 22, 14, 37, 0, time.UTC)
	end := start.Add(95 * time.Minute)
	in := models.BabyRecord{
		Type:        models.RecordFeeding,
		StartTime:   start,
		EndTime:     &end,
		Amount:      110.5,
		Note:        "nachtvoeding",
		BreastSide:  "Beide",
		PumpedML:    30,
		BottleType:  "melk",
		FeedingKind: models.FeedingBottle,
	}
	added, err := svc.AddRecord(ctx, in)
	if err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}

	fresh := loader.NewLoader(repo, time.UTC, time.Minute, nil)
	snap := fresh.Load(ctx)
	if len(snap.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(snap.Records))
	}
	got := snap.Records[0]

	if got.ID != added.ID || got.Type != in.Type {
		t.Errorf("id/type = %s/%s, want %s/%s", got.ID, got.Type, added.ID, in.Type)
	}
	if !got.StartTime.Equal(start.Truncate(time.Minute)) {
		t.Errorf("start = %v, want %v", got.StartTime, start.Truncate(time.Minute))
	}
	if got.EndTime == nil || !got.EndTime.Equal(end.Truncate(time.Minute)) {
		t.Errorf("end = %v, want %v", got.EndTime, end.Truncate(time.Minute))
	}
	if got.Amount != in.Amount || got.PumpedML != in.PumpedML || got.Note != in.Note ||
		got.BreastSide != in.BreastSide || got.BottleType != in.BottleType || got.FeedingKind != in.FeedingKind {
		t.Errorf("round trip = %+v, want %+v", got, in)
	}
}

func TestUpdateInventoryClampsAtZero(t *testing.T) {
	svc, repo, _ := newFixture(t)

	item, err := svc.UpdateInventory(context.Background(), "Doekjes", -5)
	if err != nil {
		t.Fatalf("UpdateInventory() error = %v", err)
	}
	if item.CurrentStock != 0 {
		t.Errorf("stock = %d, want 0", item.CurrentStock)
	}
	if item.Status() != models.StockCritical {
		t.Errorf("status = %s, want critical", item.Status())
	}
	if got := repo.Rows(sheets.InventorySheet)[1][1]; got != 0 {
		t.Errorf("stored stock = %v, want 0", got)
	}
}

func TestUpdateInventoryUnknownProduct(t *testing.T) {
	svc, repo, _ := newFixture(t)

	_, err := svc.UpdateInventory(context.Background(), "Speen", 3)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("UpdateInventory() error = %v, want ErrProductNotFound", err)
	}
	rows := repo.Rows(sheets.InventorySheet)
	if rows[1][1] != "2" || rows[2][1] != "10" {
		t.Errorf("inventory changed: %v", rows)
	}
}

func TestRestockLogsReplenishment(t *testing.T) {
	svc, repo, _ := newFixture(t)

	item, err := svc.Restock(context.Background(), "Luiers", 40)
	if err != nil {
		t.Fatalf("Restock() error = %v", err)
	}
	if item.CurrentStock != 50 {
		t.Errorf("stock = %d, want 50", item.CurrentStock)
	}

	log := repo.Rows(sheets.ReplenishmentSheet)
	if len(log) != 2 {
		t.Fatalf("replenishment rows = %d, want 2", len(log))
	}
	if log[1][0] != "2025-03-02 09:15" || log[1][1] != "Luiers" || log[1][2] != 40 {
		t.Errorf("replenishment row = %v", log[1])
	}

	if _, err := svc.Restock(context.Background(), "Luiers", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("Restock(0) error = %v, want ErrInvalidQuantity", err)
	}
}

func TestConsumeDoesNotLog(t *testing.T) {
	svc, repo, _ := newFixture(t)

	item, err := svc.Consume(context.Background(), "Luiers", 3)
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}
	if item.CurrentStock != 7 {
		t.Errorf("stock = %d, want 7", item.CurrentStock)
	}
	if n := len(repo.Rows(sheets.ReplenishmentSheet)); n != 1 {
		t.Errorf("replenishment rows = %d, want only the header", n)
	}
}

func TestEditRecordByID(t *testing.T) {
	svc, repo, _ := newFixture(t,
		[]interface{}{"R001", "Luier", "2025-03-01 08:00", "", "", "", "Nat"},
		[]interface{}{"R002", "Slaap", "2025-03-01 13:00", "2025-03-01 14:00", "60", "middag"},
		[]interface{}{"R003", "Luier", "2025-03-01 15:00", "", "", "", "Vuil"},
	)

	got, err := svc.EditRecord(context.Background(), "R002", map[models.Column]string{
		models.ColStartTime: "2025-03-01 13:30",
		models.ColAmount:    "45",
		models.ColNote:      "kort",
	})
	if err != nil {
		t.Fatalf("EditRecord() error = %v", err)
	}
	if got.EndTime == nil || models.FormatTimestamp(*got.EndTime, time.UTC) != "2025-03-01 14:15" {
		t.Errorf("end = %v, want start + amount", got.EndTime)
	}

	row := repo.Rows(sheets.RecordsSheet)[2]
	want := map[models.Column]string{
		models.ColID:        "R002",
		models.ColStartTime: "2025-03-01 13:30",
		models.ColEndTime:   "2025-03-01 14:15",
		models.ColAmount:    "45",
		models.ColNote:      "kort",
	}
	for c, v := range want {
		if row[int(c)] != v {
			t.Errorf("%s = %v, want %s", c.Header(), row[int(c)], v)
		}
	}

	if other := repo.Rows(sheets.RecordsSheet)[3]; other[5] != "" {
		t.Errorf("neighbouring row changed: %v", other)
	}
}

func TestEditRecordErrors(t *testing.T) {
	svc, _, _ := newFixture(t,
		[]interface{}{"R001", "Luier", "2025-03-01 08:00", "", "", "", "Nat"},
		[]interface{}{"R002", "Luier", "2025-03-01 09:00", "", "", "", "Nat"},
		[]interface{}{"R002", "Luier", "2025-03-01 10:00", "", "", "", "Vuil"},
	)
	ctx := context.Background()

	tests := []struct {
		name  string
		id    string
		patch map[models.Column]string
		want  error
	}{
		{name: "missing id", id: "R404", patch: map[models.Column]string{models.ColNote: "x"}, want: ErrRecordNotFound},
		{name: "duplicate id", id: "R002", patch: map[models.Column]string{models.ColNote: "x"}, want: ErrDuplicateRecordID},
		{name: "foreign column", id: "R001", patch: map[models.Column]string{models.ColWeight: "4"}, want: models.ErrFieldNotAllowed},
		{name: "type column", id: "R001", patch: map[models.Column]string{models.ColType: "Slaap"}, want: models.ErrFieldNotAllowed},
		{name: "bad timestamp", id: "R001", patch: map[models.Column]string{models.ColStartTime: "ooit"}, want: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.EditRecord(ctx, tt.id, tt.patch)
			if !errors.Is(err, tt.want) {
				t.Errorf("EditRecord() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEditRecordEndBeforeStart(t *testing.T) {
	svc, _, _ := newFixture(t,
		[]interface{}{"R001", "Slaap", "2025-03-01 13:00", "2025-03-01 14:00", "60"},
	)
	_, err := svc.EditRecord(context.Background(), "R001", map[models.Column]string{
		models.ColEndTime: "2025-03-01 12:00",
	})
	if !errors.Is(err, models.ErrEndBeforeStart) {
		t.Fatalf("EditRecord() error = %v, want ErrEndBeforeStart", err)
	}
}

func TestEditRowPartialFailure(t *testing.T) {
	_, repo, l := newFixture(t,
		[]interface{}{"R001", "Slaap", "2025-03-01 13:00", "2025-03-01 14:00", "60", "oud"},
	)
	flaky := &flakyRepo{Repository: repo, failAfter: 1}
	svc := NewService(flaky, l, "", nil)

	err := svc.EditRow(context.Background(), 2, map[models.Column]string{
		models.ColAmount: "30",
		models.ColNote:   "nieuw",
	})

	var partial *PartialEditError
	if !errors.As(err, &partial) {
		t.Fatalf("EditRow() error = %v, want *PartialEditError", err)
	}
	if len(partial.Written) != 1 || partial.Written[0] != models.ColAmount || partial.Failed != models.ColNote {
		t.Errorf("partial = %+v", partial)
	}

	row := repo.Rows(sheets.RecordsSheet)[1]
	if row[4] != "30" || row[5] != "oud" {
		t.Errorf("row = %v, want amount written and note untouched", row)
	}
}

func TestEditRowRejectsHeader(t *testing.T) {
	svc, _, _ := newFixture(t)
	if err := svc.EditRow(context.Background(), 1, map[models.Column]string{models.ColNote: "x"}); !errors.Is(err, ErrInvalidRow) {
		t.Errorf("EditRow(1) error = %v, want ErrInvalidRow", err)
	}
}

func TestWritesWithoutStore(t *testing.T) {
	l := loader.NewLoader(nil, time.UTC, time.Minute, nil)
	svc := NewService(nil, l, "Luiers", nil)
	ctx := context.Background()

	if _, err := svc.AddRecord(ctx, models.BabyRecord{Type: models.RecordDiaper, StartTime: time.Now()}); !errors.Is(err, sheets.ErrNotConfigured) {
		t.Errorf("AddRecord() error = %v", err)
	}
	if _, err := svc.UpdateInventory(ctx, "Luiers", 1); !errors.Is(err, sheets.ErrNotConfigured) {
		t.Errorf("UpdateInventory() error = %v", err)
	}
}

func TestAddSleepDerivesEnd(t *testing.T) {
	svc, repo, _ := newFixture(t)

	rec, err := svc.AddRecord(context.Background(), models.BabyRecord{
		Type:      models.RecordSleep,
		StartTime: time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC),
		Amount:    75,
	})
	if err != nil {
		t.Fatalf("AddRecord() error = %v", err)
	}
	if rec.EndTime == nil || rec.Duration() != 75*time.Minute {
		t.Errorf("end = %v, want start + 75m", rec.EndTime)
	}

	rows := repo.Rows(sheets.RecordsSheet)
	if got := rows[len(rows)-1][int(models.ColEndTime)]; got != "2025-03-01 14:15" {
		t.Errorf("stored end = %v", got)
	}
}
