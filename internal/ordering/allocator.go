// Package ordering computes gap-based ordering keys for the stops of a
// route. Keys are spaced out so a new stop can usually be inserted
// between two existing ones without renumbering the whole sequence;
// rebalancing restores canonical spacing once the gaps wear out.
package ordering

import (
	"errors"
	"fmt"
	"sort"

	"caretransit/internal/models"
)

const (
	// GapSize is the canonical spacing between consecutive keys.
	GapSize = 1000

	// MinGap is the smallest per-stop gap the allocator will split.
	MinGap = 10

	// RebalanceThreshold marks a sequence as compressed once its key
	// span shrinks below this fraction of the canonical span.
	RebalanceThreshold = 0.7

	// LockOffset shifts existing keys into a disjoint negative space
	// during the pessimistic insertion tier. It must stay comfortably
	// larger than any realistic stop count per route; keys produced
	// while a route is locked are never visible outside the
	// transaction that uses them.
	LockOffset = 10000
)

// ErrAnchorNotFound is returned when the requested anchor order does
// not belong to any stop in the sequence.
var ErrAnchorNotFound = errors.New("ordering: anchor stop not found")

// InsufficientGapError signals that the local gap cannot fit the
// requested number of new keys. The insertion coordinator catches it
// to advance to the next insertion tier.
type InsufficientGapError struct {
	Required  int
	Available int
}

func (e *InsufficientGapError) Error() string {
	return fmt.Sprintf("ordering: insufficient gap: required %d, available %d", e.Required, e.Available)
}

// CalculateForInsertion returns n new ordering keys for stops inserted
// after the stop whose key equals afterOrder, or at the head of the
// sequence when afterOrder is nil. stops must be sorted ascending by
// StopOrder and contain only non-cancelled stops.
func CalculateForInsertion(stops []models.Stop, afterOrder *int, n int) ([]int, error) {
	if n < 1 {
		return nil, fmt.Errorf("ordering: insertion count must be positive, got %d", n)
	}

	keys := make([]int, n)

	if len(stops) == 0 {
		for i := range keys {
			keys[i] = (i + 1) * GapSize
		}
		return keys, nil
	}

	if afterOrder == nil {
		// Head insertion treats the band [first-GapSize, first) as a
		// virtual gap and splits it evenly, the same way an interior
		// insert splits the gap between two neighbours. A single new
		// stop therefore lands half a gap below the first key, not a
		// whole GapSize below it, and repeated head inserts compress
		// this band until rebalancing restores canonical spacing.
		first := stops[0].StopOrder
		gap := GapSize
		if gap < MinGap*n {
			return nil, &InsufficientGapError{Required: MinGap * n, Available: gap}
		}
		step := gap / (n + 1)
		for i := range keys {
			keys[i] = first - GapSize + (i+1)*step
		}
		return keys, nil
	}

	idx := -1
	for i := range stops {
		if stops[i].StopOrder == *afterOrder {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrAnchorNotFound
	}

	anchor := stops[idx].StopOrder
	if idx == len(stops)-1 {
		// Tail insertion has unbounded room.
		for i := range keys {
			keys[i] = anchor + (i+1)*GapSize
		}
		return keys, nil
	}

	gap := stops[idx+1].StopOrder - anchor
	if gap < MinGap*n {
		return nil, &InsufficientGapError{Required: MinGap * n, Available: gap}
	}
	step := gap / (n + 1)
	for i := range keys {
		keys[i] = anchor + (i+1)*step
	}
	return keys, nil
}

// NeedsRebalancing reports whether the keys have compressed too much
// for future insertions.
func NeedsRebalancing(stops []models.Stop) bool {
	if len(stops) < 2 {
		return false
	}
	min, max := stops[0].StopOrder, stops[0].StopOrder
	for _, s := range stops[1:] {
		if s.StopOrder < min {
			min = s.StopOrder
		}
		if s.StopOrder > max {
			max = s.StopOrder
		}
	}
	span := float64(max - min)
	return span/float64(len(stops)*GapSize) < RebalanceThreshold
}

// Rebalance re-issues keys at canonical spacing, preserving the stop
// sequence and every other field. Rebalancing an already-rebalanced
// sequence yields the same keys.
func Rebalance(stops []models.Stop) []models.Stop {
	out := make([]models.Stop, len(stops))
	copy(out, stops)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StopOrder < out[j].StopOrder })
	for i := range out {
		out[i].StopOrder = (i + 1) * GapSize
	}
	return out
}
