package domain

import (
	"sync"
	"time"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusNew — заказ создан при оформлении корзины.
	OrderStatusNew OrderStatus = "new"
	// OrderStatusPaid — оплата зафиксирована.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderItem — позиция заказа: общая ссылка на товар и зафиксированное количество.
// Товар не копируется; снимком является список позиций, а не сами товары.
type OrderItem struct {
	Product  *Product
	Quantity int
}

// Order — неизменяемый снимок корзины на момент оформления плюс изменяемый
// статус. Идентичность заказа определяется только ID. Сумма вычисляется один
// раз при оформлении и далее не пересчитывается из позиций.
type Order struct {
	id        int64
	customer  string
	items     []OrderItem
	total     float64
	createdAt time.Time

	mu     sync.Mutex
	status OrderStatus
}

// NewOrder собирает заказ со статусом new. Временная метка усечена до секунды.
func NewOrder(id int64, customer string, items []OrderItem, total float64, createdAt time.Time) *Order {
	snapshot := make([]OrderItem, len(items))
	copy(snapshot, items)
	return &Order{
		id:        id,
		customer:  customer,
		items:     snapshot,
		total:     total,
		createdAt: createdAt.Truncate(time.Second),
		status:    OrderStatusNew,
	}
}

func (o *Order) ID() int64            { return o.id }
func (o *Order) Customer() string     { return o.customer }
func (o *Order) Total() float64       { return o.total }
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// Items возвращает копию позиций заказа.
func (o *Order) Items() []OrderItem {
	items := make([]OrderItem, len(o.items))
	copy(items, o.items)
	return items
}

// Status возвращает текущий статус заказа.
func (o *Order) Status() OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Pay безусловно переводит заказ в paid из любого состояния, включая
// delivered. Guard'а здесь нет намеренно.
func (o *Order) Pay() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = OrderStatusPaid
}

// Ship переводит paid → shipped; из любого другого состояния — отказ без
// изменения статуса.
func (o *Order) Ship() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != OrderStatusPaid {
		return false
	}
	o.status = OrderStatusShipped
	return true
}

// Deliver переводит shipped → delivered; иначе отказ без изменения статуса.
func (o *Order) Deliver() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != OrderStatusShipped {
		return false
	}
	o.status = OrderStatusDelivered
	return true
}
