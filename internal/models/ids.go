package models

// Typed identifiers keep route, stop and series ids from being swapped
// in service and store signatures.
type (
	CompanyID  uint
	RouteID    uint
	StopID     uint
	DriverID   uint
	VehicleID  uint
	ChildID    uint
	ScheduleID uint
	SeriesID   uint
)
