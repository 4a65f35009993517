package models

import (
	"gorm.io/gorm"
)

// Schedule is a child's recurring transport need: where and when the
// child is picked up and dropped off on a given weekday. Times are
// stored as "15:04" strings and combined with a concrete date when a
// route is materialized.
type Schedule struct {
	gorm.Model
	CompanyID CompanyID `json:"company_id" gorm:"index"`
	ChildID   ChildID   `json:"child_id" gorm:"index"`

	Weekday     int    `json:"weekday"` // time.Weekday, 0 = Sunday
	PickupTime  string `json:"pickup_time"`
	DropoffTime string `json:"dropoff_time"`

	PickupStreet string   `json:"pickup_street"`
	PickupCity   string   `json:"pickup_city"`
	PickupLat    *float64 `json:"pickup_lat,omitempty"`
	PickupLon    *float64 `json:"pickup_lon,omitempty"`

	DropoffStreet string   `json:"dropoff_street"`
	DropoffCity   string   `json:"dropoff_city"`
	DropoffLat    *float64 `json:"dropoff_lat,omitempty"`
	DropoffLon    *float64 `json:"dropoff_lon,omitempty"`
}
