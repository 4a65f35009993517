package models

import (
	"time"

	"gorm.io/gorm"
)

// SeriesSchedule attaches one child's schedule to a series, with the
// stop positions to use when materializing and a validity window.
// The same schedule may appear more than once across non-overlapping
// windows: conflict resolution caps an assignment with a ValidTo and a
// later assignment may start after the cap.
type SeriesSchedule struct {
	gorm.Model

	CompanyID  CompanyID  `json:"company_id" gorm:"index"`
	SeriesID   SeriesID   `json:"series_id" gorm:"index"`
	ChildID    ChildID    `json:"child_id" gorm:"index"`
	ScheduleID ScheduleID `json:"schedule_id" gorm:"index"`

	PickupStopOrder  int `json:"pickup_stop_order"`
	DropoffStopOrder int `json:"dropoff_stop_order"`

	ValidFrom time.Time  `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
}

// ActiveOn reports whether the assignment covers the given date.
func (ss *SeriesSchedule) ActiveOn(date time.Time) bool {
	day := truncateToDay(date)
	if day.Before(truncateToDay(ss.ValidFrom)) {
		return false
	}
	if ss.ValidTo != nil && day.After(truncateToDay(*ss.ValidTo)) {
		return false
	}
	return true
}
