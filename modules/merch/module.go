// Package merch wires the projection matching and OTD/capacity analytics
// engine: repositories, services and the event bus, over one pgx pool.
package merch

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/infrastructure/persistence"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/modules/merch/services"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/composables"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/configuration"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/eventbus"
	"github.com/ferruccio-conqueror/merchandiser-dashboard-sub005/pkg/schema"
)

// Engine is the assembled module. Every service shares the pool-carrying
// context produced by Context.
type Engine struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus

	Projections    *services.ProjectionService
	Matching       *services.MatchingService
	Capacity       *services.CapacityService
	Analytics      *services.AnalyticsService
	Imports        *services.ImportService
	Classification *services.ClassificationService
}

func NewEngine(pool *pgxpool.Pool, conf *configuration.Configuration, log *logrus.Logger) *Engine {
	bus := eventbus.NewEventPublisher(log)

	orders := persistence.NewOrderRepository()
	vendors := persistence.NewVendorRepository()
	staffRepo := persistence.NewStaffRepository()
	qualityRepo := persistence.NewQualityRepository()
	capacityRepo := persistence.NewCapacityRepository()
	snapshots := persistence.NewSnapshotRepository()
	active := persistence.NewActiveProjectionRepository()

	projections := services.NewProjectionService(snapshots, active, bus, log)
	matching := services.NewMatchingService(active, orders, vendors, bus, log, services.MatchingConfig{
		RegularWindowDays: conf.Matching.RegularWindowDays,
		SpoWindowDays:     conf.Matching.SpoWindowDays,
	})

	return &Engine{
		Pool:        pool,
		EventBus:    bus,
		Projections: projections,
		Matching:    matching,
		Capacity:    services.NewCapacityService(capacityRepo, orders, bus, log),
		Analytics:   services.NewAnalyticsService(orders, qualityRepo, staffRepo, log),
		Imports: services.NewImportService(
			orders, vendors, qualityRepo, capacityRepo, snapshots,
			projections, bus, log, conf.Import.BatchSize,
		),
		Classification: services.NewClassificationService(orders, qualityRepo, bus, log),
	}
}

// Context attaches the pool so repositories and InTx can reach the database.
func (e *Engine) Context(ctx context.Context) context.Context {
	return composables.WithPool(ctx, e.Pool)
}

// Migrate applies the module schema.
func Migrate(ctx context.Context, db *sql.DB, log *logrus.Logger) error {
	return schema.Migrate(ctx, db, persistence.MigrationsFS(), log)
}
