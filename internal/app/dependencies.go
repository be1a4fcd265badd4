package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/engine"
	"github.com/vladislavdragonenkov/storefront/internal/events"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/shipping"
	"github.com/vladislavdragonenkov/storefront/internal/storage/csvfile"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Engine   *engine.Engine
	Bus      *events.Bus
	History  *csvfile.HistoryStore
	Catalog  *csvfile.CatalogStore
	Timeline domain.TimelineRepository
	Shipping domain.ShippingProvider
	Metrics  *metrics.StoreMetrics
	Logger   *log.Entry
}

// NewDependencies создаёт и связывает зависимости приложения.
func NewDependencies(cfg Config, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	storeMetrics := metrics.NewStoreMetrics()
	bus := events.NewBus(logger.WithField("component", "event-bus"))
	bus.OnDrop(storeMetrics.RecordEventDropped)

	history := csvfile.NewHistoryStore(cfg.HistoryPath, logger.WithField("component", "history-store"))
	catalog := csvfile.NewCatalogStore(cfg.CatalogPath, logger.WithField("component", "catalog-store"))
	timeline := memory.NewTimelineRepository()

	eng := engine.NewEngine(history, timeline, bus, logger.WithField("component", "engine"))

	return &Dependencies{
		Engine:   eng,
		Bus:      bus,
		History:  history,
		Catalog:  catalog,
		Timeline: timeline,
		Shipping: shipping.NewProvider(logger.WithField("component", "shipping")),
		Metrics:  storeMetrics,
		Logger:   logger,
	}
}
