package domain

import "time"

// EventType определяет тип доменного события.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeProductAdded       EventType = "product.added"
	EventTypeProductRemoved     EventType = "product.removed"
	EventTypeCustomerRegistered EventType = "customer.registered"
)

// Event — уведомление о мутации движка. Сессии подписываются на шину событий
// и перерисовываются по получении; это явный канал вместо observer-интерфейса.
type Event struct {
	ID       string
	Type     EventType
	OrderID  int64
	Customer string
	Product  string
	Status   OrderStatus
	Occurred time.Time
}
