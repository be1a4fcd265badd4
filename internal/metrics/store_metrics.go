package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics содержит метрики движка магазина.
type StoreMetrics struct {
	// Счётчики операций
	checkoutStarted  prometheus.Counter
	checkoutFailed   prometheus.Counter
	checkoutComplete prometheus.Counter
	ordersShipped    prometheus.Counter
	ordersDelivered  prometheus.Counter

	// Гистограммы времени выполнения
	checkoutDuration      prometheus.Histogram
	historyAppendDuration prometheus.Histogram

	// Счётчики событий
	timelineEvents  prometheus.Counter
	eventsPublished prometheus.Counter
	eventsDropped   prometheus.Counter

	// Gauge по текущему состоянию каталога и журнала
	catalogProducts prometheus.Gauge
	ledgerOrders    prometheus.Gauge
}

// NewStoreMetrics создаёт экземпляр метрик на DefaultRegisterer.
func NewStoreMetrics() *StoreMetrics {
	return newStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		checkoutStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_started_total",
			Help: "Total number of checkout attempts",
		}),
		checkoutFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_failed_total",
			Help: "Total number of rejected checkouts (empty cart)",
		}),
		checkoutComplete: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_checkout_completed_total",
			Help: "Total number of orders created via checkout",
		}),
		ordersShipped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_shipped_total",
			Help: "Total number of orders handed to the shipping provider",
		}),
		ordersDelivered: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_delivered_total",
			Help: "Total number of orders marked as delivered",
		}),
		checkoutDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Duration of the in-memory checkout critical section",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}),
		historyAppendDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_history_append_duration_seconds",
			Help:    "Duration of durable order-history appends",
			Buckets: prometheus.DefBuckets,
		}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		eventsPublished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_events_published_total",
			Help: "Total number of domain events published to the bus",
		}),
		eventsDropped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_events_dropped_total",
			Help: "Total number of domain events dropped by slow subscribers",
		}),
		catalogProducts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_catalog_products",
			Help: "Number of distinct products currently in the catalog",
		}),
		ledgerOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_ledger_orders",
			Help: "Number of orders in the in-memory ledger",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCheckoutStarted увеличивает счётчик попыток оформления.
func (m *StoreMetrics) RecordCheckoutStarted() {
	m.checkoutStarted.Inc()
}

// RecordCheckoutFailed увеличивает счётчик отклонённых оформлений.
func (m *StoreMetrics) RecordCheckoutFailed() {
	m.checkoutFailed.Inc()
}

// RecordCheckoutCompleted увеличивает счётчик созданных заказов.
func (m *StoreMetrics) RecordCheckoutCompleted() {
	m.checkoutComplete.Inc()
}

// RecordOrderShipped увеличивает счётчик отгруженных заказов.
func (m *StoreMetrics) RecordOrderShipped() {
	m.ordersShipped.Inc()
}

// RecordOrderDelivered увеличивает счётчик доставленных заказов.
func (m *StoreMetrics) RecordOrderDelivered() {
	m.ordersDelivered.Inc()
}

// RecordCheckoutDuration записывает длительность критической секции оформления.
func (m *StoreMetrics) RecordCheckoutDuration(duration time.Duration) {
	m.checkoutDuration.Observe(duration.Seconds())
}

// RecordHistoryAppendDuration записывает длительность записи в историю.
func (m *StoreMetrics) RecordHistoryAppendDuration(duration time.Duration) {
	m.historyAppendDuration.Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *StoreMetrics) RecordTimelineEvent() {
	m.timelineEvents.Inc()
}

// RecordEventPublished увеличивает счётчик опубликованных событий.
func (m *StoreMetrics) RecordEventPublished() {
	m.eventsPublished.Inc()
}

// RecordEventDropped увеличивает счётчик потерянных событий.
func (m *StoreMetrics) RecordEventDropped() {
	m.eventsDropped.Inc()
}

// SetCatalogProducts выставляет текущее число товаров каталога.
func (m *StoreMetrics) SetCatalogProducts(count int) {
	m.catalogProducts.Set(float64(count))
}

// SetLedgerOrders выставляет текущее число заказов журнала.
func (m *StoreMetrics) SetLedgerOrders(count int) {
	m.ledgerOrders.Set(float64(count))
}
