package models

import "time"

// DailyReport is the nightly snapshot archived in MongoDB.
type DailyReport struct {
	Date            time.Time `bson:"date" json:"date"`
	SleepCount      int       `bson:"sleep_count" json:"sleep_count"`
	SleepMinutes    float64   `bson:"sleep_minutes" json:"sleep_minutes"`
	FeedingCount    int       `bson:"feeding_count" json:"feeding_count"`
	FeedingML       float64   `bson:"feeding_ml" json:"feeding_ml"`
	PumpedML        float64   `bson:"pumped_ml" json:"pumped_ml"`
	DiaperCount     int       `bson:"diaper_count" json:"diaper_count"`
	LatestWeight    float64   `bson:"latest_weight,omitempty" json:"latest_weight,omitempty"`
	RestockProducts []string  `bson:"restock_products,omitempty" json:"restock_products,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
