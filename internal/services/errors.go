// Package services orchestrates the route construction core: stop
// insertion with gap-based ordering, pre-commit validation of route
// mutations, and recurring series resolution and materialization.
package services

import (
	"fmt"
	"time"

	"caretransit/internal/models"
	"caretransit/internal/scheduling"
)

// StructuralError marks a malformed or incomplete stop list. It is
// raised before any lookup happens.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "invalid route structure: " + e.Reason
}

// NotFoundError marks a referenced entity that does not exist for the
// company.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// StateConflictError marks an entity in the wrong status for the
// requested operation, e.g. a driver that is not ACTIVE.
type StateConflictError struct {
	Entity string
	ID     uint
	State  string
	Want   string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s %d is %s, want %s", e.Entity, e.ID, e.State, e.Want)
}

// SchedulingConflictError marks a time overlap with another route for
// a driver, vehicle or child.
type SchedulingConflictError struct {
	Resource  string // "driver", "vehicle", "child"
	RouteID   models.RouteID
	RouteName string
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("%s is already booked on route %q (%d)", e.Resource, e.RouteName, e.RouteID)
}

// CapacityError wraps the first violated vehicle capacity constraint.
type CapacityError struct {
	Violation *scheduling.CapacityViolation
}

func (e *CapacityError) Error() string {
	return e.Violation.String()
}

// SeriesConflictError is raised when a child cannot be added to a
// series at all because the first requested occurrence already
// conflicts. It is partitioned for direct user display: dates blocked
// by unrelated single routes versus other series, keyed by child name.
type SeriesConflictError struct {
	SingleRouteConflicts map[string][]time.Time
	SeriesConflicts      map[string]string
}

func (e *SeriesConflictError) Error() string {
	return fmt.Sprintf("series assignment conflicts: %d single-route, %d series",
		len(e.SingleRouteConflicts), len(e.SeriesConflicts))
}
