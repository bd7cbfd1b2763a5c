package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RecordType enumerates the event categories stored in the BabyRecords sheet.
type RecordType string

const (
	RecordSleep   RecordType = "Slaap"
	RecordFeeding RecordType = "Voeding"
	RecordDiaper  RecordType = "Luier"
	RecordHealth  RecordType = "Gezondheid"
)

// RecordTypes lists every supported record type in display order.
var RecordTypes = []RecordType{RecordSleep, RecordFeeding, RecordDiaper, RecordHealth}

// FeedingKind distinguishes breast, bottle and pump sessions.
type FeedingKind string

const (
	FeedingBreast FeedingKind = "Borst"
	FeedingBottle FeedingKind = "Fles"
	FeedingPump   FeedingKind = "Kolven"
)

// ErrUnknownRecordType is returned when a type name cannot be mapped.
var ErrUnknownRecordType = errors.New("unknown record type")

var recordTypeAliases = map[string]RecordType{
	"slaap":      RecordSleep,
	"sleep":      RecordSleep,
	"voeding":    RecordFeeding,
	"feeding":    RecordFeeding,
	"luier":      RecordDiaper,
	"luiers":     RecordDiaper,
	"diaper":     RecordDiaper,
	"gezondheid": RecordHealth,
	"health":     RecordHealth,
}

// ParseRecordType accepts the stored sheet name or its English alias, case-insensitively.
func ParseRecordType(value string) (RecordType, error) {
	if t, ok := recordTypeAliases[strings.ToLower(strings.TrimSpace(value))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRecordType, value)
}

// Timed reports whether the type can be tracked with a running session.
func (t RecordType) Timed() bool {
	return t == RecordSleep || t == RecordFeeding
}

// BabyRecord is one logged caregiving event.
type BabyRecord struct {
	ID          string      `json:"id"`
	Type        RecordType  `json:"type"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     *time.Time  `json:"end_time,omitempty"`
	Amount      float64     `json:"amount"` // minutes for sleep, ml for feeding
	Note        string      `json:"note,omitempty"`
	DiaperKind  string      `json:"diaper_kind,omitempty"`
	BreastSide  string      `json:"breast_side,omitempty"`
	PumpedML    float64     `json:"pumped_ml,omitempty"`
	BottleType  string      `json:"bottle_type,omitempty"`
	FeedingKind FeedingKind `json:"feeding_kind,omitempty"`
	Weight      float64     `json:"weight,omitempty"`
	Length      float64     `json:"length,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	HealthNotes string      `json:"health_notes,omitempty"`
}

// HasStart reports whether the stored start time could be parsed.
func (r BabyRecord) HasStart() bool {
	return !r.StartTime.IsZero()
}

// Duration returns the elapsed time between start and end, or zero when either is missing.
func (r BabyRecord) Duration() time.Duration {
	if r.EndTime == nil || !r.HasStart() {
		return 0
	}
	d := r.EndTime.Sub(r.StartTime)
	if d < 0 {
		return 0
	}
	return d
}

// CountsTowardIntake reports whether a feeding contributes to the daily ml total.
// Pump sessions are excluded.
func (r BabyRecord) CountsTowardIntake() bool {
	return r.Type == RecordFeeding && (r.FeedingKind == FeedingBreast || r.FeedingKind == FeedingBottle)
}
