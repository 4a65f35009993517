package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OccurrencePlanned      = "PLANNED"
	OccurrenceMaterialized = "MATERIALIZED"
	OccurrenceSkipped      = "SKIPPED"
	OccurrenceCancelled    = "CANCELLED"
)

// RouteSeriesOccurrence records what happened to one date of a series:
// whether a concrete route was materialized for it, it was skipped
// because one already existed, or it was cancelled.
type RouteSeriesOccurrence struct {
	gorm.Model

	CompanyID CompanyID `json:"company_id" gorm:"index"`
	SeriesID  SeriesID  `json:"series_id" gorm:"index"`
	Date      time.Time `json:"date" gorm:"index"`
	RouteID   *RouteID  `json:"route_id,omitempty"`
	Status    string    `json:"status" gorm:"default:PLANNED"`

	// Idempotency key for the materialization job.
	Key string `json:"key" gorm:"uniqueIndex"`
}
