// internal/models/vehicle.go
package models

import (
	"gorm.io/gorm"
)

const (
	VehicleAvailable     = "AVAILABLE"
	VehicleInMaintenance = "IN_MAINTENANCE"
	VehicleRetired       = "RETIRED"
)

type Vehicle struct {
	gorm.Model
	Registration string    `json:"registration"`
	CompanyID    CompanyID `json:"company_id" gorm:"index"`
	Status       string    `json:"status" gorm:"default:AVAILABLE"` // AVAILABLE, IN_MAINTENANCE, RETIRED

	// Capacity for the capacity validator: total seats plus the
	// scarcer wheelchair and special child-seat places.
	Seats           int `json:"seats"`
	WheelchairSpots int `json:"wheelchair_spots"`
	SpecialSeats    int `json:"special_seats"`
}
