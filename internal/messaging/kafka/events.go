package kafka

import (
	"strconv"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Topics магазина.
const (
	TopicOrderEvents   = "storefront.order.events"
	TopicCatalogEvents = "storefront.catalog.events"
)

// Envelope — сериализуемая форма доменного события для Kafka.
type Envelope struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	OrderID  int64     `json:"order_id,omitempty"`
	Customer string    `json:"customer,omitempty"`
	Product  string    `json:"product,omitempty"`
	Status   string    `json:"status,omitempty"`
	Occurred time.Time `json:"occurred"`
}

// NewEnvelope оборачивает доменное событие в транспортную форму.
func NewEnvelope(event domain.Event) Envelope {
	return Envelope{
		ID:       event.ID,
		Type:     string(event.Type),
		OrderID:  event.OrderID,
		Customer: event.Customer,
		Product:  event.Product,
		Status:   string(event.Status),
		Occurred: event.Occurred,
	}
}

// TopicFor выбирает topic по типу события: заказные события идут в
// order.events, каталожные и регистрационные — в catalog.events.
func TopicFor(event domain.Event) string {
	switch event.Type {
	case domain.EventTypeOrderCreated, domain.EventTypeOrderStatusChanged:
		return TopicOrderEvents
	default:
		return TopicCatalogEvents
	}
}

// KeyFor выбирает ключ партиционирования: id заказа для заказных событий,
// иначе имя товара или покупателя.
func KeyFor(event domain.Event) string {
	if event.OrderID > 0 {
		return strconv.FormatInt(event.OrderID, 10)
	}
	if event.Product != "" {
		return event.Product
	}
	return event.Customer
}
