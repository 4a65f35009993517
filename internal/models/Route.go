package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoutePlanned    = "PLANNED"
	RouteInProgress = "IN_PROGRESS"
	RouteCompleted  = "COMPLETED"
	RouteCancelled  = "CANCELLED"
)

// Route is one concrete trip on one date: a driver, a vehicle and an
// ordered set of stops. Only PLANNED and IN_PROGRESS routes take part
// in scheduling-conflict checks.
type Route struct {
	gorm.Model

	Name      string    `json:"name" binding:"required"`
	CompanyID CompanyID `json:"company_id" gorm:"index"`
	Date      time.Time `json:"date" gorm:"index"`
	Status    string    `json:"status" gorm:"default:PLANNED"`

	DriverID  *DriverID `json:"driver_id" gorm:"index"`
	VehicleID VehicleID `json:"vehicle_id" gorm:"index"`

	PlannedStart time.Time `json:"planned_start"`
	PlannedEnd   time.Time `json:"planned_end"`

	// Set when the route was materialized from a recurring series.
	SeriesID       *SeriesID  `json:"series_id,omitempty" gorm:"index"`
	OccurrenceDate *time.Time `json:"occurrence_date,omitempty"`

	// Geometry stored as a WKB LINESTRING (SRID 4326); GeoJSON at the API edge.
	Geometry []byte `gorm:"type:bytea" json:"-"`

	Stops []Stop `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"stops,omitempty"`
}

// Window returns the planned driving window used for driver and
// vehicle conflict checks.
func (r *Route) Window() (start, end time.Time) {
	return r.PlannedStart, r.PlannedEnd
}
