package models

import (
	"errors"
	"testing"
	"time"
)

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		current, minimum int
		want             StockStatus
	}{
		{5, 5, StockCritical},
		{0, 0, StockCritical},
		{3, 5, StockCritical},
		{6, 5, StockLow},
		{7, 5, StockLow},
		{8, 5, StockLow},
		{9, 5, StockOK},
		{20, 5, StockOK},
		{1, 0, StockLow},
		{3, 0, StockOK},
	}

	for _, tt := range tests {
		if got := ClassifyStock(tt.current, tt.minimum); got != tt.want {
			t.Errorf("ClassifyStock(%d, %d) = %s, want %s", tt.current, tt.minimum, got, tt.want)
		}
	}
}

func TestClassifyStockExhaustive(t *testing.T) {
	for minimum := -3; minimum <= 10; minimum++ {
		for current := 0; current <= 20; current++ {
			got := ClassifyStock(current, minimum)
			var want StockStatus
			switch {
			case current <= minimum:
				want = StockCritical
			case current <= minimum+2:
				want = StockLow
			default:
				want = StockOK
			}
			if got != want {
				t.Fatalf("ClassifyStock(%d, %d) = %s, want %s", current, minimum, got, want)
			}
		}
	}
}

func TestClampStock(t *testing.T) {
	if got := ClampStock(2, -5); got != 0 {
		t.Errorf("ClampStock(2, -5) = %d, want 0", got)
	}
	if got := ClampStock(2, 3); got != 5 {
		t.Errorf("ClampStock(2, 3) = %d, want 5", got)
	}
	if got := ClampStock(0, 0); got != 0 {
		t.Errorf("ClampStock(0, 0) = %d, want 0", got)
	}
}

func TestParseRecordType(t *testing.T) {
	tests := []struct {
		in      string
		want    RecordType
		wantErr bool
	}{
		{"Slaap", RecordSleep, false},
		{"sleep", RecordSleep, false},
		{" Feeding ", RecordFeeding, false},
		{"Luier", RecordDiaper, false},
		{"health", RecordHealth, false},
		{"bath", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRecordType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseRecordType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrUnknownRecordType) {
			t.Errorf("ParseRecordType(%q) error = %v, want ErrUnknownRecordType", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseRecordType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRowOrder(t *testing.T) {
	loc := time.UTC
	start := time.Date(2025, 3, 1, 14, 30, 0, 0, loc)
	end := start.Add(45 * time.Minute)

	rec := BabyRecord{
		ID:        "R007",
		Type:      RecordSleep,
		StartTime: start,
		EndTime:   &end,
		Amount:    45,
		Note:      "na het badje",
	}

	row, err := rec.Row(loc)
	if err != nil {
		t.Fatalf("Row() error = %v", err)
	}
	if len(row) != len(RecordHeaders()) {
		t.Fatalf("row has %d cells, want %d", len(row), len(RecordHeaders()))
	}

	want := []string{"R007", "Slaap", "2025-03-01 14:30", "2025-03-01 15:15", "45", "na het badje", "", "", "", "", "", "", "", "", ""}
	for i, w := range want {
		if row[i] != w {
			t.Errorf("cell %d (%s) = %v, want %q", i, Column(i).Header(), row[i], w)
		}
	}
}

func TestRowRejectsForeignFields(t *testing.T) {
	rec := BabyRecord{
		ID:         "R001",
		Type:       RecordDiaper,
		StartTime:  time.Now(),
		DiaperKind: "Nat",
		Weight:     4.2,
	}
	if _, err := rec.Row(time.UTC); !errors.Is(err, ErrFieldNotAllowed) {
		t.Fatalf("Row() error = %v, want ErrFieldNotAllowed", err)
	}
}

func TestRowRejectsEndBeforeStart(t *testing.T) {
	start := time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)
	end := start.Add(-time.Minute)
	rec := BabyRecord{ID: "R001", Type: RecordSleep, StartTime: start, EndTime: &end}
	if _, err := rec.Row(time.UTC); !errors.Is(err, ErrEndBeforeStart) {
		t.Fatalf("Row() error = %v, want ErrEndBeforeStart", err)
	}
}

func TestRowRequiresStart(t *testing.T) {
	rec := BabyRecord{ID: "R001", Type: RecordHealth, Weight: 4}
	if _, err := rec.Row(time.UTC); !errors.Is(err, ErrMissingStart) {
		t.Fatalf("Row() error = %v, want ErrMissingStart", err)
	}
}

func TestColumnByKey(t *testing.T) {
	c, err := ColumnByKey("breast_side")
	if err != nil || c != ColBreastSide {
		t.Fatalf("ColumnByKey(breast_side) = %v, %v", c, err)
	}
	c, err = ColumnByKey("Opmerkingen / ziekten")
	if err != nil || c != ColHealthNotes {
		t.Fatalf("ColumnByKey(header) = %v, %v", c, err)
	}
	if c.Index() != 15 {
		t.Errorf("ColHealthNotes.Index() = %d, want 15", c.Index())
	}
	if _, err := ColumnByKey("shoe_size"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("ColumnByKey(shoe_size) error = %v, want ErrUnknownColumn", err)
	}
}

func TestIDSequence(t *testing.T) {
	if got := FormatID(7); got != "R007" {
		t.Errorf("FormatID(7) = %s", got)
	}
	if got := FormatID(1234); got != "R1234" {
		t.Errorf("FormatID(1234) = %s", got)
	}
	if n, ok := ParseIDSequence("R042"); !ok || n != 42 {
		t.Errorf("ParseIDSequence(R042) = %d, %v", n, ok)
	}
	if _, ok := ParseIDSequence("X42"); ok {
		t.Error("ParseIDSequence(X42) should fail")
	}
}

func TestDuration(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	rec := BabyRecord{StartTime: start, EndTime: &end}
	if rec.Duration() != 90*time.Minute {
		t.Errorf("Duration() = %v", rec.Duration())
	}
	if (BabyRecord{StartTime: start}).Duration() != 0 {
		t.Error("Duration() without end should be zero")
	}
}
