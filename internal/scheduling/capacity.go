package scheduling

import (
	"fmt"

	"caretransit/internal/models"
)

// CapacityRequirement counts the places a set of children needs on a
// vehicle. Each sub-count is bounded by Total.
type CapacityRequirement struct {
	Total       int
	Wheelchair  int
	SpecialSeat int
}

// CapacityConstraint identifies which vehicle limit was violated.
type CapacityConstraint string

const (
	ConstraintWheelchair  CapacityConstraint = "WHEELCHAIR"
	ConstraintSpecialSeat CapacityConstraint = "SPECIAL_SEAT"
	ConstraintTotal       CapacityConstraint = "TOTAL"
)

// CapacityViolation is the first unmet constraint found by CheckFits.
type CapacityViolation struct {
	Constraint CapacityConstraint
	Required   int
	Available  int
}

func (v *CapacityViolation) String() string {
	return fmt.Sprintf("capacity: %s required %d, available %d", v.Constraint, v.Required, v.Available)
}

// Requirements computes the capacity a set of children needs. Children
// are deduplicated by id so a child with both a pickup and a dropoff
// stop counts one seat.
func Requirements(children []models.Child) CapacityRequirement {
	seen := make(map[uint]bool, len(children))
	var req CapacityRequirement
	for i := range children {
		c := &children[i]
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		req.Total++
		if c.NeedsWheelchair {
			req.Wheelchair++
		}
		if c.NeedsSpecialSeat {
			req.SpecialSeat++
		}
	}
	return req
}

// CheckFits returns the first violated constraint, or nil when the
// vehicle can carry the requirement. Constraints are checked from the
// scarcest place type to the most general: wheelchair, then special
// seat, then total seats. Callers rely on that reporting order.
func CheckFits(req CapacityRequirement, vehicle *models.Vehicle) *CapacityViolation {
	if req.Wheelchair > vehicle.WheelchairSpots {
		return &CapacityViolation{Constraint: ConstraintWheelchair, Required: req.Wheelchair, Available: vehicle.WheelchairSpots}
	}
	if req.SpecialSeat > vehicle.SpecialSeats {
		return &CapacityViolation{Constraint: ConstraintSpecialSeat, Required: req.SpecialSeat, Available: vehicle.SpecialSeats}
	}
	if req.Total > vehicle.Seats {
		return &CapacityViolation{Constraint: ConstraintTotal, Required: req.Total, Available: vehicle.Seats}
	}
	return nil
}
