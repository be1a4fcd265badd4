package kafka

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

var relayPublishResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_relay_publish_total",
	Help: "Total number of relay publish attempts grouped by result.",
}, []string{"result"})

// EventSink — то, что умеет принять сериализованное событие.
// Реализуется Producer; в тестах подменяется заглушкой.
type EventSink interface {
	PublishEvent(topic string, key string, event interface{}) error
}

// Relay пересылает события процессной шины во внешний брокер. Отказ публикации
// не останавливает поток: событие логируется и теряется, движок не ждёт брокер.
type Relay struct {
	source <-chan domain.Event
	sink   EventSink
	logger *log.Entry

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewRelay создаёт relay поверх канала подписчика шины.
func NewRelay(source <-chan domain.Event, sink EventSink, logger *log.Entry) *Relay {
	if logger == nil {
		logger = log.New().WithField("component", "kafka-relay")
	}
	return &Relay{source: source, sink: sink, logger: logger}
}

// Start запускает пересылку в фоне до отмены контекста или закрытия канала.
func (r *Relay) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-r.source:
				if !ok {
					return
				}
				r.forward(event)
			}
		}
	}()

	r.logger.Info("kafka relay started")
}

// Stop останавливает relay и дожидается завершения пересылки.
func (r *Relay) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.logger.Info("kafka relay stopped")
}

func (r *Relay) forward(event domain.Event) {
	topic := TopicFor(event)
	if err := r.sink.PublishEvent(topic, KeyFor(event), NewEnvelope(event)); err != nil {
		relayPublishResults.WithLabelValues("error").Inc()
		r.logger.WithError(err).WithFields(log.Fields{
			"topic":      topic,
			"event_type": event.Type,
		}).Warn("failed to relay event")
		return
	}
	relayPublishResults.WithLabelValues("ok").Inc()
}
