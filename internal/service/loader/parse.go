package loader

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Layouts without zone information; interpreted in the tracker location.
var naiveLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"02-01-2006 15:04",
	"02-01-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006 15:04:05",
	"2006-01-02",
}

// Layouts that carry an offset; converted to the tracker location.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04:05 -0700",
}

// ParseTimestamp parses a stored timestamp cell. Failure yields ok=false and a zero time.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber coerces a numeric cell, accepting a decimal comma. Failure yields 0.
func ParseNumber(raw string) float64 {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// ParseStock coerces a stock cell to a whole number, truncating decimals. Failure yields 0.
func ParseStock(raw string) int {
	d, err := parseDecimal(raw)
	if err != nil {
		return 0
	}
	return int(d.IntPart())
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value")
	}
	return decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
}

func cellString(value interface{}) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}
