package models

import "time"

// HerdReport is the daily snapshot of the herd stored in MongoDB and
// appended to the Sheets log.
type HerdReport struct {
	FarmID          string         `bson:"farm_id" json:"farm_id"`
	Date            Date           `bson:"date" json:"date"`
	HeadCount       int            `bson:"head_count" json:"head_count"`
	StockBySpecies  map[string]int `bson:"stock_by_species" json:"stock_by_species"`
	Expecting       int            `bson:"expecting" json:"expecting"`
	DueSoon         int            `bson:"due_soon" json:"due_soon"`
	Overdue         int            `bson:"overdue" json:"overdue"`
	OnFeed          int            `bson:"on_feed" json:"on_feed"`
	Sick            int            `bson:"sick" json:"sick"`
	VaccinationsDue int            `bson:"vaccinations_due" json:"vaccinations_due"`
	Season          string         `bson:"season" json:"season"`
	MoonPhase       string         `bson:"moon_phase" json:"moon_phase"`
	CreatedAt       time.Time      `bson:"created_at" json:"created_at"`
}
