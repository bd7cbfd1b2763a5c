package models

import "time"

// StockStatus is the derived health of an inventory item.
type StockStatus string

const (
	StockCritical StockStatus = "critical"
	StockLow      StockStatus = "low"
	StockOK       StockStatus = "ok"
)

// LowStockMargin is how many units above the minimum still count as low.
const LowStockMargin = 2

// Sheet headers for the inventory and replenishment tables.
const (
	HeaderProductName   = "Productnaam"
	HeaderCurrentStock  = "Actuele voorraad"
	HeaderMinimumStock  = "Minimum voorraad"
	HeaderRestockDate   = "Datum"
	HeaderRestockAmount = "Aantal"
)

// ClassifyStock maps a stock level to its status.
//
// critical: current <= minimum
// low:      minimum < current <= minimum+LowStockMargin
// ok:       otherwise
func ClassifyStock(current, minimum int) StockStatus {
	switch {
	case current <= minimum:
		return StockCritical
	case current <= minimum+LowStockMargin:
		return StockLow
	default:
		return StockOK
	}
}

// InventoryItem is one tracked consumable.
type InventoryItem struct {
	ProductName  string `json:"product_name"`
	CurrentStock int    `json:"current_stock"`
	MinimumStock int    `json:"minimum_stock"`
}

// Status classifies the item's current stock.
func (i InventoryItem) Status() StockStatus {
	return ClassifyStock(i.CurrentStock, i.MinimumStock)
}

// ClampStock applies delta to current and never returns a negative level.
func ClampStock(current, delta int) int {
	next := current + delta
	if next < 0 {
		return 0
	}
	return next
}

// ReplenishmentEntry is an audit row for a stock increase.
type ReplenishmentEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	ProductName   string    `json:"product_name"`
	QuantityAdded int       `json:"quantity_added"`
}
