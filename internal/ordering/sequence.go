package ordering

import (
	"errors"
	"sort"

	"caretransit/internal/models"
)

// ErrNotPermutation is returned by Reorder when the supplied mapping is
// not a permutation of 1..k over exactly the given stops.
var ErrNotPermutation = errors.New("ordering: new orders are not a permutation of 1..k")

// InsertAt shifts every stop whose order is at or past position by
// +count, opening a block of exact positions. Used where positional
// semantics are required instead of gap allocation, e.g. series
// materialization with fixed pickup/dropoff positions.
func InsertAt(stops []models.Stop, position, count int) []models.Stop {
	out := make([]models.Stop, len(stops))
	copy(out, stops)
	for i := range out {
		if out[i].StopOrder >= position {
			out[i].StopOrder += count
		}
	}
	return out
}

// RemoveAndRenumber drops the given stops and renumbers the survivors
// to consecutive 1..k, keeping their relative order.
func RemoveAndRenumber(stops []models.Stop, idsToRemove []models.StopID) []models.Stop {
	removed := make(map[models.StopID]bool, len(idsToRemove))
	for _, id := range idsToRemove {
		removed[id] = true
	}
	out := make([]models.Stop, 0, len(stops))
	for _, s := range stops {
		if !removed[models.StopID(s.ID)] {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StopOrder < out[j].StopOrder })
	for i := range out {
		out[i].StopOrder = i + 1
	}
	return out
}

// Reorder applies a user-supplied order mapping. The mapping must
// assign every stop exactly one position from 1..k.
func Reorder(stops []models.Stop, newOrderByID map[models.StopID]int) ([]models.Stop, error) {
	if len(newOrderByID) != len(stops) {
		return nil, ErrNotPermutation
	}
	seen := make(map[int]bool, len(stops))
	out := make([]models.Stop, len(stops))
	copy(out, stops)
	for i := range out {
		pos, ok := newOrderByID[models.StopID(out[i].ID)]
		if !ok || pos < 1 || pos > len(stops) || seen[pos] {
			return nil, ErrNotPermutation
		}
		seen[pos] = true
		out[i].StopOrder = pos
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StopOrder < out[j].StopOrder })
	return out, nil
}

// OrdersValid reports whether the stop orders form exactly 1..k. Route
// creation requires the caller-supplied stop list to be consecutive
// before gap-based keys are issued.
func OrdersValid(stops []models.Stop) bool {
	orders := make([]int, len(stops))
	for i, s := range stops {
		orders[i] = s.StopOrder
	}
	sort.Ints(orders)
	for i, o := range orders {
		if o != i+1 {
			return false
		}
	}
	return true
}
