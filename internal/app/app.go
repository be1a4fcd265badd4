// Package app собирает движок магазина, хранилища и служебный HTTP-сервер
// в один запускаемый процесс.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

// Config описывает настройки запуска приложения.
type Config struct {
	MetricsAddr  string
	CatalogPath  string
	HistoryPath  string
	KafkaBrokers []string
}

// DefaultConfig возвращает базовые пути файлов и адрес служебного сервера.
func DefaultConfig() Config {
	return Config{
		MetricsAddr: ":9090",
		CatalogPath: "catalog.csv",
		HistoryPath: "orders_history.csv",
	}
}

// Run поднимает движок магазина: загружает каталог, восстанавливает историю
// заказов, подключает опциональный Kafka relay и служебный HTTP-сервер,
// после чего блокируется до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	deps := NewDependencies(cfg, logger)

	// Каталог загружается до истории: загрузчик истории разрешает имена
	// товаров через каталог.
	products, err := deps.Catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	for _, p := range products {
		deps.Engine.AddProduct(p)
	}
	logger.WithField("products", len(products)).Info("catalog loaded")

	restored, err := deps.History.LoadAll(deps.Engine)
	if err != nil {
		return fmt.Errorf("load order history: %w", err)
	}
	deps.Engine.RestoreOrders(restored)
	logger.WithField("orders", len(restored)).Info("order history restored")

	// Kafka relay опционален: без брокеров события остаются процессными.
	var kafkaProducer *kafka.Producer
	var relay *kafka.Relay
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			kafkaProducer = producer
			_, eventsCh := deps.Bus.Subscribe()
			relay = kafka.NewRelay(eventsCh, producer, logger.WithField("component", "kafka-relay"))
			relay.Start(ctx)
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka relay initialized")
		}
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("history-file", healthcheck.NewSimpleChecker("history-file", func() error {
		f, err := os.OpenFile(cfg.HistoryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		return f.Close()
	}))
	if relay != nil {
		healthHandler.RegisterChecker("kafka-relay", healthcheck.NewSimpleChecker("kafka-relay", func() error {
			if kafkaProducer == nil {
				return errors.New("kafka producer is not available")
			}
			return nil
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	<-ctx.Done()
	logger.Info("получен сигнал остановки, останавливаем магазин")

	if relay != nil {
		relay.Stop()
	}
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		} else {
			logger.Info("kafka producer closed")
		}
	}
	deps.Bus.Close()
	shutdownHTTP(metricsSrv, logger)

	return ctx.Err()
}

// startMetricsServer запускает HTTP-обработчики /metrics, /healthz и /livez.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez", addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
