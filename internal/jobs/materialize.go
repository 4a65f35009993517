// Package jobs holds the background workers started by the server.
package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"caretransit/internal/models"
	"caretransit/internal/services"
)

// CompanyLister enumerates the tenants the materializer runs for.
type CompanyLister interface {
	ListCompanyIDs(ctx context.Context) ([]models.CompanyID, error)
}

// Materializer periodically rolls the materialization window forward so
// that every active series has concrete routes for the coming weeks.
type Materializer struct {
	service   *services.MaterializationService
	companies CompanyLister

	interval time.Duration
	horizon  time.Duration
}

func NewMaterializer(service *services.MaterializationService, companies CompanyLister, interval, horizon time.Duration) *Materializer {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if horizon <= 0 {
		horizon = 4 * 7 * 24 * time.Hour
	}
	return &Materializer{service: service, companies: companies, interval: interval, horizon: horizon}
}

// Start runs the worker until ctx is cancelled. The first pass happens
// immediately, later passes on the configured interval.
func (m *Materializer) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.runOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				logrus.Info("materializer stopped")
				return
			case <-ticker.C:
				m.runOnce(ctx)
			}
		}
	}()
}

func (m *Materializer) runOnce(ctx context.Context) {
	companyIDs, err := m.companies.ListCompanyIDs(ctx)
	if err != nil {
		logrus.WithError(err).Error("materializer: listing companies failed")
		return
	}

	from := time.Now()
	to := from.Add(m.horizon)
	for _, companyID := range companyIDs {
		report, err := m.service.MaterializeRange(ctx, companyID, from, to, false)
		if err != nil {
			logrus.WithError(err).WithField("company_id", companyID).
				Error("materializer: run failed")
			continue
		}
		if report.Materialized > 0 {
			logrus.WithFields(logrus.Fields{
				"company_id":   companyID,
				"materialized": report.Materialized,
			}).Info("materializer: routes created")
		}
	}
}
