package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StopPickup  = "PICKUP"
	StopDropoff = "DROPOFF"
)

const (
	StopPending = "PENDING"
	StopDone    = "DONE"
	StopNoShow  = "NO_SHOW"
)

// Stop is one pickup or dropoff on a route. StopOrder is a signed
// gap-based ordering key: sorting by it yields the driving sequence.
// The column carries no uniqueness constraint; the order allocator
// keeps keys distinct among non-cancelled stops, and negative values
// are a reserved transient state of the pessimistic insertion tier.
type Stop struct {
	gorm.Model

	RouteID   RouteID   `json:"route_id" gorm:"index"`
	CompanyID CompanyID `json:"company_id" gorm:"index"`

	StopOrder int    `json:"stop_order"`
	Kind      string `json:"kind"` // PICKUP, DROPOFF

	ChildID    ChildID    `json:"child_id" gorm:"index"`
	ScheduleID ScheduleID `json:"schedule_id" gorm:"index"`

	PlannedTime time.Time `json:"planned_time"`

	Street string   `json:"street"`
	City   string   `json:"city"`
	Lat    *float64 `json:"lat,omitempty"`
	Lon    *float64 `json:"lon,omitempty"`

	Cancelled    bool       `json:"cancelled"`
	ActualTime   *time.Time `json:"actual_time,omitempty"`
	ActualStatus string     `json:"actual_status" gorm:"default:PENDING"` // PENDING, DONE, NO_SHOW
}
