// Package events реализует процессную шину уведомлений движка: явный канал
// вместо observer-интерфейса. Сессии подписываются и перерисовываются по
// получении события.
package events

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultSubscriberBuffer = 64

// Bus рассылает доменные события подписчикам. Публикация не блокирует:
// если буфер подписчика полон, событие для него теряется с записью в лог.
// Медленная сессия не должна задерживать оформление заказа.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]chan domain.Event
	buffer int
	closed bool
	logger *log.Entry
	onDrop func()
}

// NewBus создаёт шину с буфером по умолчанию на подписчика.
func NewBus(logger *log.Entry) *Bus {
	return NewBusWithBuffer(defaultSubscriberBuffer, logger)
}

// NewBusWithBuffer создаёт шину с указанным размером буфера подписчика.
func NewBusWithBuffer(buffer int, logger *log.Entry) *Bus {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	if logger == nil {
		logger = log.New().WithField("component", "event-bus")
	}
	return &Bus{
		subs:   make(map[string]chan domain.Event),
		buffer: buffer,
		logger: logger,
	}
}

// OnDrop задаёт hook, вызываемый при потере события (для метрик).
func (b *Bus) OnDrop(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDrop = fn
}

// Subscribe регистрирует подписчика и возвращает его идентификатор и канал.
// Канал закрывается при Unsubscribe или Close.
func (b *Bus) Subscribe() (string, <-chan domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan domain.Event)
		close(ch)
		return "", ch
	}

	id := uuid.NewString()
	ch := make(chan domain.Event, b.buffer)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe снимает подписку и закрывает её канал.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish рассылает событие всем подписчикам без блокировки.
func (b *Bus) Publish(event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.WithFields(log.Fields{
				"subscriber": id,
				"event_type": event.Type,
			}).Warn("subscriber buffer full, dropping event")
			if b.onDrop != nil {
				b.onDrop()
			}
		}
	}
}

// Close закрывает шину и каналы всех подписчиков.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

var _ domain.EventPublisher = (*Bus)(nil)
