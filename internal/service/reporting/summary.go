package reporting

import (
	"time"

	"github.com/mamadbah2/bubbel/internal/domain/models"
)

// TypeSummary counts today's events of one type.
type TypeSummary struct {
	Type  models.RecordType `json:"type"`
	Count int               `json:"count"`
	Last  *time.Time        `json:"last,omitempty"`
}

// InventoryStatus is an inventory item with its classification.
type InventoryStatus struct {
	models.InventoryItem
	Status models.StockStatus `json:"status"`
}

// Summary is the dashboard view of today.
type Summary struct {
	Date         string             `json:"date"`
	Types        []TypeSummary      `json:"types"`
	FeedingML    float64            `json:"feeding_ml"`
	LatestHealth *models.BabyRecord `json:"latest_health,omitempty"`
	Inventory    []InventoryStatus  `json:"inventory"`
	Attention    []InventoryStatus  `json:"attention"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// TodaySummary builds the dashboard for the calendar day of now. Feedings only count breast
// and bottle sessions; the latest health record is taken regardless of date.
func TodaySummary(records []models.BabyRecord, inventory []models.InventoryItem, now time.Time, loc *time.Location) Summary {
	today := dayKey(now, loc)
	summary := Summary{
		Date:      today,
		Types:     make([]TypeSummary, len(models.RecordTypes)),
		Inventory: ClassifyInventory(inventory),
		Attention: []InventoryStatus{},
	}

	index := make(map[models.RecordType]int, len(models.RecordTypes))
	for i, t := range models.RecordTypes {
		summary.Types[i] = TypeSummary{Type: t}
		index[t] = i
	}

	for _, r := range records {
		if !r.HasStart() {
			continue
		}

		if r.Type == models.RecordHealth {
			if summary.LatestHealth == nil || r.StartTime.After(summary.LatestHealth.StartTime) {
				health := r
				summary.LatestHealth = &health
			}
		}

		if dayKey(r.StartTime, loc) != today {
			continue
		}
		if r.Type == models.RecordFeeding {
			if !r.CountsTowardIntake() {
				continue
			}
			summary.FeedingML += r.Amount
		}

		pos, ok := index[r.Type]
		if !ok {
			continue
		}
		ts := &summary.Types[pos]
		ts.Count++
		if ts.Last == nil || r.StartTime.After(*ts.Last) {
			start := r.StartTime
			ts.Last = &start
		}
	}

	for _, item := range summary.Inventory {
		if item.Status != models.StockOK {
			summary.Attention = append(summary.Attention, item)
		}
	}
	return summary
}

// ClassifyInventory attaches a status to every item.
func ClassifyInventory(items []models.InventoryItem) []InventoryStatus {
	out := make([]InventoryStatus, len(items))
	for i, item := range items {
		out[i] = InventoryStatus{InventoryItem: item, Status: item.Status()}
	}
	return out
}
