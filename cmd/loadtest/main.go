// loadtest гоняет движок магазина под конкурентной нагрузкой: N сессий
// параллельно наполняют корзины и оформляют заказы против одного движка.
// По завершении проверяется уникальность и строгая монотонность выданных
// идентификаторов заказов и печатается JSON-отчёт с латентностью.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/engine"
	"github.com/vladislavdragonenkov/storefront/internal/session"
	"github.com/vladislavdragonenkov/storefront/internal/storage/csvfile"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type config struct {
	sessions  int
	checkouts int
	products  int
	history   string
	output    string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type report struct {
	StartedAt       time.Time      `json:"started_at"`
	DurationSeconds float64        `json:"duration_seconds"`
	Sessions        int            `json:"sessions"`
	CheckoutsPerSes int            `json:"checkouts_per_session"`
	OrdersCreated   int            `json:"orders_created"`
	CheckoutsFailed int64          `json:"checkouts_failed"`
	IDsUnique       bool           `json:"ids_unique"`
	IDsMonotonic    bool           `json:"ids_monotonic"`
	LatencyMs       latencySummary `json:"latency_ms"`
}

func main() {
	cfg := readFlags()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.WarnLevel)

	eng := engine.NewEngineWithoutMetrics(
		csvfile.NewHistoryStore(cfg.history, nil),
		memory.NewTimelineRepository(),
		nil,
		nil,
	)

	products := seedProducts(eng, cfg.products)

	started := time.Now()
	var (
		mu        sync.Mutex
		latencies []float64
		orderIDs  []int64
		failed    int64
	)

	var wg sync.WaitGroup
	for i := 0; i < cfg.sessions; i++ {
		customer := domain.NewCustomer(fmt.Sprintf("shopper-%d", i), false)
		if !eng.RegisterCustomer(customer) {
			fail("duplicate customer username generated")
		}
		sess := session.New(customer, eng, nil)

		wg.Add(1)
		go func(sess *session.Session, customer *domain.Customer, lane int) {
			defer wg.Done()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = sess.Close(ctx)
			}()

			for n := 0; n < cfg.checkouts; n++ {
				product := products[(lane+n)%len(products)]

				addDone := make(chan bool, 1)
				sess.AddToCart(product, 1, func(ok bool) { addDone <- ok })
				if !<-addDone {
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}

				start := time.Now()
				checkoutDone := make(chan struct{})
				sess.Checkout(func(order *domain.Order, err error) {
					elapsed := float64(time.Since(start).Microseconds()) / 1000.0
					mu.Lock()
					if err != nil || order == nil {
						failed++
					} else {
						latencies = append(latencies, elapsed)
						orderIDs = append(orderIDs, order.ID())
					}
					mu.Unlock()
					close(checkoutDone)
				})
				<-checkoutDone
			}
		}(sess, customer, i)
	}
	wg.Wait()

	rep := buildReport(started, cfg, latencies, orderIDs, failed)
	writeReport(cfg.output, rep)
}

func readFlags() config {
	var cfg config
	flag.IntVar(&cfg.sessions, "sessions", 16, "number of concurrent sessions")
	flag.IntVar(&cfg.checkouts, "checkouts", 100, "checkouts per session")
	flag.IntVar(&cfg.products, "products", 8, "number of seeded products")
	flag.StringVar(&cfg.history, "history", filepath.Join(os.TempDir(), "storefront_loadtest_history.csv"), "order history file path")
	flag.StringVar(&cfg.output, "output", "", "path for the JSON report (default: stdout)")
	flag.Parse()

	if cfg.sessions <= 0 || cfg.checkouts <= 0 || cfg.products <= 0 {
		fail("sessions, checkouts and products must be positive")
	}
	return cfg
}

func seedProducts(eng *engine.Engine, count int) []*domain.Product {
	products := make([]*domain.Product, 0, count)
	for i := 0; i < count; i++ {
		p, err := domain.NewProduct(domain.CategoryElectronics, domain.ProductConfig{
			Name:           fmt.Sprintf("Widget-%d", i),
			Price:          9.99 + float64(i),
			Stock:          math.MaxInt32,
			Description:    "loadtest widget",
			Brand:          "LoadCo",
			WarrantyMonths: 12,
		})
		if err != nil {
			fail("seed product: %v", err)
		}
		eng.AddProduct(p)
		products = append(products, p)
	}
	return products
}

func buildReport(started time.Time, cfg config, latencies []float64, orderIDs []int64, failed int64) report {
	unique := make(map[int64]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		unique[id] = struct{}{}
	}

	sorted := make([]int64, len(orderIDs))
	copy(sorted, orderIDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	monotonic := true
	for i := 1; i < len(sorted); i++ {
		if sorted[i] <= sorted[i-1] {
			monotonic = false
			break
		}
	}

	return report{
		StartedAt:       started,
		DurationSeconds: time.Since(started).Seconds(),
		Sessions:        cfg.sessions,
		CheckoutsPerSes: cfg.checkouts,
		OrdersCreated:   len(orderIDs),
		CheckoutsFailed: failed,
		IDsUnique:       len(unique) == len(orderIDs),
		IDsMonotonic:    monotonic,
		LatencyMs:       summarize(latencies),
	}
}

func summarize(latencies []float64) latencySummary {
	if len(latencies) == 0 {
		return latencySummary{}
	}
	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func writeReport(path string, rep report) {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		fail("marshal report: %v", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		fail("write report: %v", err)
	}
	fmt.Printf("report written to %s\n", path)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
