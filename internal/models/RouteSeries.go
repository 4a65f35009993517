package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SeriesActive    = "ACTIVE"
	SeriesCancelled = "CANCELLED"
)

// RouteSeries is a recurring route template: every RecurrenceWeeks
// weeks on the weekday of StartDate, a concrete Route is materialized
// from it. A series is never deleted, only flagged CANCELLED.
type RouteSeries struct {
	gorm.Model

	Name      string    `json:"name" binding:"required"`
	CompanyID CompanyID `json:"company_id" gorm:"index"`
	Status    string    `json:"status" gorm:"default:ACTIVE"`

	// Recurrence: 1 = weekly, up to 4 = every fourth week.
	RecurrenceWeeks int        `json:"recurrence_weeks"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`

	// Route template fields.
	DriverID     *DriverID `json:"driver_id,omitempty"`
	VehicleID    VehicleID `json:"vehicle_id"`
	StartTime    string    `json:"start_time"` // "15:04"
	EndTime      string    `json:"end_time"`
	NameTemplate string    `json:"name_template"`

	Schedules []SeriesSchedule `gorm:"foreignKey:SeriesID" json:"schedules,omitempty"`
}

// MatchesDate reports whether the series recurs on the given date:
// on/after the start, on/before the end when one is set, same weekday
// as the start, and a whole multiple of RecurrenceWeeks weeks since it.
func (s *RouteSeries) MatchesDate(date time.Time) bool {
	day := truncateToDay(date)
	start := truncateToDay(s.StartDate)
	if day.Before(start) {
		return false
	}
	if s.EndDate != nil && day.After(truncateToDay(*s.EndDate)) {
		return false
	}
	if day.Weekday() != start.Weekday() {
		return false
	}
	days := int(day.Sub(start).Hours() / 24)
	weeks := days / 7
	interval := s.RecurrenceWeeks
	if interval < 1 {
		interval = 1
	}
	return weeks%interval == 0
}

// truncateToDay pins the calendar date to UTC midnight. Dates arrive
// in mixed zones (stored series dates are UTC, scheduler input is
// host-local); comparing raw instants would shift the day difference
// by the offset and break the week arithmetic above.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
