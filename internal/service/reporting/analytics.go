package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/bubbel/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Daypart names used by DaypartAverages, in display order.
const (
	DaypartMorning   = "Ochtend"
	DaypartAfternoon = "Middag"
	DaypartEvening   = "Avond"
	DaypartNight     = "Nacht"
)

var daypartOrder = []string{DaypartMorning, DaypartAfternoon, DaypartEvening, DaypartNight}

// DayTotal is one point of a per-day series.
type DayTotal struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DaypartAverage is the mean feeding volume for one part of the day.
type DaypartAverage struct {
	Daypart   string  `json:"daypart"`
	AverageML float64 `json:"average_ml"`
	Feedings  int     `json:"feedings"`
}

// SleepDay aggregates the sleeps that started on one date.
type SleepDay struct {
	Date    string  `json:"date"`
	Minutes float64 `json:"minutes"`
	Count   int     `json:"count"`
}

// WeightPoint is one weighed health check.
type WeightPoint struct {
	Time   time.Time `json:"time"`
	Weight float64   `json:"weight"`
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DailyTotals returns one value per calendar day for the trailing window ending on now's date.
// Every day is present; days without events are zero. Sleep sums minutes, Feeding sums the
// ml of breast and bottle feedings, Diaper and Health count events.
func DailyTotals(records []models.BabyRecord, recordType models.RecordType, days int, now time.Time, loc *time.Location) []DayTotal {
	if days < 1 {
		return nil
	}

	sums := make(map[string]float64)
	for _, r := range records {
		if r.Type != recordType || !r.HasStart() {
			continue
		}
		key := dayKey(r.StartTime, loc)
		switch recordType {
		case models.RecordSleep:
			sums[key] += r.Amount
		case models.RecordFeeding:
			if r.CountsTowardIntake() {
				sums[key] += r.Amount
			}
		default:
			sums[key]++
		}
	}

	today := startOfDay(now, loc)
	out := make([]DayTotal, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(dateLayout)
		out = append(out, DayTotal{Date: key, Value: sums[key]})
	}
	return out
}

func daypart(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return DaypartMorning
	case hour >= 12 && hour < 18:
		return DaypartAfternoon
	case hour >= 18:
		return DaypartEvening
	default:
		return DaypartNight
	}
}

// DaypartAverages returns the mean ml of breast and bottle feedings per daypart.
// Dayparts without a measured feeding are omitted.
func DaypartAverages(records []models.BabyRecord, loc *time.Location) []DaypartAverage {
	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, r := range records {
		if !r.CountsTowardIntake() || !r.HasStart() || r.Amount <= 0 {
			continue
		}
		part := daypart(r.StartTime.In(loc).Hour())
		sums[part] = sums[part].Add(decimal.NewFromFloat(r.Amount))
		counts[part]++
	}

	out := make([]DaypartAverage, 0, len(counts))
	for _, part := range daypartOrder {
		n := counts[part]
		if n == 0 {
			continue
		}
		avg := sums[part].Div(decimal.NewFromInt(int64(n))).Round(1)
		out = append(out, DaypartAverage{Daypart: part, AverageML: avg.InexactFloat64(), Feedings: n})
	}
	return out
}

// SleepDurations sums the measured duration of the sleeps that started on each date.
// A sleep without an end contributes to the count but not the minutes.
func SleepDurations(records []models.BabyRecord, loc *time.Location) []SleepDay {
	byDay := make(map[string]*SleepDay)
	for _, r := range records {
		if r.Type != models.RecordSleep || !r.HasStart() {
			continue
		}
		key := dayKey(r.StartTime, loc)
		day, ok := byDay[key]
		if !ok {
			day = &SleepDay{Date: key}
			byDay[key] = day
		}
		day.Count++
		day.Minutes += r.Duration().Minutes()
	}

	out := make([]SleepDay, 0, len(byDay))
	for _, day := range byDay {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// WeightSeries lists weighed health records in chronological order.
func WeightSeries(records []models.BabyRecord) []WeightPoint {
	var out []WeightPoint
	for _, r := range records {
		if r.Type != models.RecordHealth || r.Weight <= 0 || !r.HasStart() {
			continue
		}
		out = append(out, WeightPoint{Time: r.StartTime, Weight: r.Weight})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
