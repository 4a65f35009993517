package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"caretransit/internal/models"
	"caretransit/internal/ordering"
)

// InsertStrategy names the insertion tier that ended up committing.
type InsertStrategy string

const (
	StrategyGapBased        InsertStrategy = "GAP_BASED"
	StrategyRebalanceRetry  InsertStrategy = "REBALANCE_RETRY"
	StrategyPessimisticLock InsertStrategy = "PESSIMISTIC_LOCK"
)

// InsertResult carries the stops as persisted plus the strategy that
// succeeded.
type InsertResult struct {
	Stops    []models.Stop
	Strategy InsertStrategy
}

// InsertionCoordinator inserts stops into a route's ordered sequence
// using a three-tier fallback chain:
//
//  1. gap-based key allocation inside an ordinary transaction;
//  2. on an insufficient gap, rebalance the whole sequence to
//     canonical spacing and retry the allocation once;
//  3. on any tier-2 failure, a serializable transaction that shifts
//     the tail of the sequence through a reserved negative key space
//     and inserts at exact positions.
//
// Keys computed by tiers 1 and 2 come from a snapshot read inside the
// same transaction, so concurrent writers at those tiers can at worst
// force the fallback, never corrupt the sequence. A tier-3 failure is
// fatal for the request; callers may retry the whole operation.
type InsertionCoordinator struct {
	uow StopUnitOfWork
}

func NewInsertionCoordinator(uow StopUnitOfWork) *InsertionCoordinator {
	return &InsertionCoordinator{uow: uow}
}

// InsertStops places the given new stops after the stop whose order
// key equals afterOrder (nil = head of the route). RouteID, CompanyID
// and StopOrder of the new stops are assigned here.
func (c *InsertionCoordinator) InsertStops(
	ctx context.Context,
	companyID models.CompanyID,
	routeID models.RouteID,
	newStops []models.Stop,
	afterOrder *int,
) (*InsertResult, error) {
	if len(newStops) == 0 {
		return nil, &StructuralError{Reason: "no stops to insert"}
	}

	log := logrus.WithFields(logrus.Fields{"route_id": routeID, "count": len(newStops)})

	inserted, err := c.insertGapBased(ctx, companyID, routeID, newStops, afterOrder)
	if err == nil {
		log.WithField("strategy", StrategyGapBased).Debug("stops inserted")
		return &InsertResult{Stops: inserted, Strategy: StrategyGapBased}, nil
	}
	var gapErr *ordering.InsufficientGapError
	if !errors.As(err, &gapErr) {
		return nil, err
	}
	log.WithError(err).Debug("gap-based insertion failed, rebalancing")

	inserted, err = c.insertWithRebalance(ctx, companyID, routeID, newStops, afterOrder)
	if err == nil {
		log.WithField("strategy", StrategyRebalanceRetry).Info("stops inserted after rebalance")
		return &InsertResult{Stops: inserted, Strategy: StrategyRebalanceRetry}, nil
	}
	log.WithError(err).Warn("rebalance insertion failed, escalating to pessimistic lock")

	inserted, err = c.insertPessimistic(ctx, companyID, routeID, newStops, afterOrder)
	if err != nil {
		return nil, fmt.Errorf("insert stops into route %d: all strategies exhausted: %w", routeID, err)
	}
	log.WithField("strategy", StrategyPessimisticLock).Info("stops inserted under pessimistic lock")
	return &InsertResult{Stops: inserted, Strategy: StrategyPessimisticLock}, nil
}

// Tier 1: allocate keys inside the existing gaps.
func (c *InsertionCoordinator) insertGapBased(
	ctx context.Context,
	companyID models.CompanyID,
	routeID models.RouteID,
	newStops []models.Stop,
	afterOrder *int,
) ([]models.Stop, error) {
	var inserted []models.Stop
	err := c.uow.Run(ctx, func(tx StopTx) error {
		current, err := tx.StopsForRoute(routeID, false)
		if err != nil {
			return err
		}
		keys, err := ordering.CalculateForInsertion(current, afterOrder, len(newStops))
		if err != nil {
			return err
		}
		inserted, err = createAt(tx, companyID, routeID, newStops, keys)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// Tier 2: rebalance the whole sequence to canonical spacing, then
// allocate once more. The anchor is re-located by stop identity since
// rebalancing rewrites its key.
func (c *InsertionCoordinator) insertWithRebalance(
	ctx context.Context,
	companyID models.CompanyID,
	routeID models.RouteID,
	newStops []models.Stop,
	afterOrder *int,
) ([]models.Stop, error) {
	var inserted []models.Stop
	err := c.uow.Run(ctx, func(tx StopTx) error {
		current, err := tx.StopsForRoute(routeID, false)
		if err != nil {
			return err
		}

		var anchorID uint
		if afterOrder != nil {
			for i := range current {
				if current[i].StopOrder == *afterOrder {
					anchorID = current[i].ID
					break
				}
			}
			if anchorID == 0 {
				return ordering.ErrAnchorNotFound
			}
		}

		rebalanced := ordering.Rebalance(current)
		if err := tx.UpdateOrders(rebalanced); err != nil {
			return err
		}

		current, err = tx.StopsForRoute(routeID, false)
		if err != nil {
			return err
		}

		anchor := afterOrder
		if afterOrder != nil {
			anchor = nil
			for i := range current {
				if current[i].ID == anchorID {
					anchor = &current[i].StopOrder
					break
				}
			}
			if anchor == nil {
				return ordering.ErrAnchorNotFound
			}
		}

		keys, err := ordering.CalculateForInsertion(current, anchor, len(newStops))
		if err != nil {
			return err
		}
		inserted, err = createAt(tx, companyID, routeID, newStops, keys)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// Tier 3: serialize access to the route. Every stop past the anchor is
// parked at -(order+LockOffset), the new stops take the exact positions
// anchor+1..anchor+n, and the parked stops come back past the inserted
// block. The negative keys never leave the transaction.
func (c *InsertionCoordinator) insertPessimistic(
	ctx context.Context,
	companyID models.CompanyID,
	routeID models.RouteID,
	newStops []models.Stop,
	afterOrder *int,
) ([]models.Stop, error) {
	var inserted []models.Stop
	err := c.uow.RunSerializable(ctx, func(tx StopTx) error {
		current, err := tx.StopsForRoute(routeID, false)
		if err != nil {
			return err
		}

		anchorBase := 0
		if afterOrder != nil {
			found := false
			for i := range current {
				if current[i].StopOrder == *afterOrder {
					anchorBase = current[i].StopOrder
					found = true
					break
				}
			}
			if !found {
				return ordering.ErrAnchorNotFound
			}
		}

		var trailing []models.Stop
		for _, s := range current {
			if s.StopOrder > anchorBase {
				trailing = append(trailing, s)
			}
		}

		for i := range trailing {
			trailing[i].StopOrder = -(trailing[i].StopOrder + ordering.LockOffset)
		}
		if err := tx.UpdateOrders(trailing); err != nil {
			return err
		}

		n := len(newStops)
		keys := make([]int, n)
		for i := range keys {
			keys[i] = anchorBase + i + 1
		}
		inserted, err = createAt(tx, companyID, routeID, newStops, keys)
		if err != nil {
			return err
		}

		for i := range trailing {
			trailing[i].StopOrder = -trailing[i].StopOrder + n
		}
		return tx.UpdateOrders(trailing)
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

func createAt(tx StopTx, companyID models.CompanyID, routeID models.RouteID, newStops []models.Stop, keys []int) ([]models.Stop, error) {
	toCreate := make([]*models.Stop, len(newStops))
	for i := range newStops {
		s := newStops[i]
		s.CompanyID = companyID
		s.RouteID = routeID
		s.StopOrder = keys[i]
		toCreate[i] = &s
	}
	if err := tx.CreateStops(toCreate); err != nil {
		return nil, err
	}
	out := make([]models.Stop, len(toCreate))
	for i, s := range toCreate {
		out[i] = *s
	}
	return out, nil
}
