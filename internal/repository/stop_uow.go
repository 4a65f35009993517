package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"caretransit/internal/models"
	"caretransit/internal/services"
)

// StopUnitOfWork runs stop-table work inside a database transaction.
// RunSerializable opens the transaction at SERIALIZABLE isolation so
// that concurrent insertions into the same route abort instead of
// interleaving.
type StopUnitOfWork struct {
	db *gorm.DB
}

func NewStopUnitOfWork(db *gorm.DB) *StopUnitOfWork { return &StopUnitOfWork{db: db} }

func (u *StopUnitOfWork) Run(ctx context.Context, fn func(services.StopTx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&stopTx{tx: tx})
	})
}

func (u *StopUnitOfWork) RunSerializable(ctx context.Context, fn func(services.StopTx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&stopTx{tx: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

type stopTx struct {
	tx *gorm.DB
}

func (t *stopTx) StopsForRoute(routeID models.RouteID, includeCancelled bool) ([]models.Stop, error) {
	q := t.tx.Where("route_id = ?", routeID)
	if !includeCancelled {
		q = q.Where("cancelled = false")
	}
	var stops []models.Stop
	err := q.Order("stop_order ASC").Find(&stops).Error
	return stops, err
}

func (t *stopTx) CreateStops(stops []*models.Stop) error {
	if len(stops) == 0 {
		return nil
	}
	return t.tx.Create(stops).Error
}

func (t *stopTx) UpdateOrders(stops []models.Stop) error {
	for i := range stops {
		err := t.tx.Model(&models.Stop{}).
			Where("id = ?", stops[i].ID).
			Update("stop_order", stops[i].StopOrder).Error
		if err != nil {
			return err
		}
	}
	return nil
}
