// Package engine содержит каталог товаров, реестр покупателей и журнал
// заказов — общее состояние процесса, разделяемое всеми сессиями.
package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

const (
	timelineEventOrderCreated       = "OrderCreated"
	timelineEventOrderStatusChanged = "OrderStatusChanged"
)

// Engine — явный контекст магазина, создаваемый один раз на старте процесса
// и передаваемый сессиям по ссылке. Все мутирующие методы линеаризуемы
// относительно друг друга: их охраняет один общий mutex. Файл истории
// охраняется собственным замком внутри HistoryStore, поэтому медленная запись
// на диск не задерживает просмотр каталога.
type Engine struct {
	mu        sync.Mutex
	products  []*domain.Product
	customers map[string]*domain.Customer
	orders    []*domain.Order
	nextID    int64

	discount domain.DiscountStrategy
	history  domain.HistoryStore
	timeline domain.TimelineRepository
	events   domain.EventPublisher
	logger   *log.Entry
	metrics  *metrics.StoreMetrics
}

// NewEngine создаёт движок с зависимостями. history, timeline и events
// опциональны: nil отключает соответствующую возможность.
func NewEngine(
	history domain.HistoryStore,
	timeline domain.TimelineRepository,
	events domain.EventPublisher,
	logger *log.Entry,
) *Engine {
	e := newEngine(history, timeline, events, logger)
	e.metrics = metrics.NewStoreMetrics()
	return e
}

// NewEngineWithoutMetrics создаёт движок без метрик (для тестов).
func NewEngineWithoutMetrics(
	history domain.HistoryStore,
	timeline domain.TimelineRepository,
	events domain.EventPublisher,
	logger *log.Entry,
) *Engine {
	return newEngine(history, timeline, events, logger)
}

func newEngine(
	history domain.HistoryStore,
	timeline domain.TimelineRepository,
	events domain.EventPublisher,
	logger *log.Entry,
) *Engine {
	if logger == nil {
		logger = log.New().WithField("component", "engine")
	}
	return &Engine{
		customers: make(map[string]*domain.Customer),
		nextID:    1,
		discount:  domain.NoDiscount{},
		history:   history,
		timeline:  timeline,
		events:    events,
		logger:    logger,
	}
}

// SetDiscountStrategy подменяет стратегию скидки; nil возвращает тождественную.
func (e *Engine) SetDiscountStrategy(strategy domain.DiscountStrategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if strategy == nil {
		strategy = domain.NoDiscount{}
	}
	e.discount = strategy
}

// DiscountStrategy возвращает текущую стратегию скидки.
func (e *Engine) DiscountStrategy() domain.DiscountStrategy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.discount
}

// AddProduct добавляет товар в каталог. Если товар с таким именем уже есть
// (без учёта регистра), остатки сливаются, а новый объект отбрасывается.
// nil — no-op.
func (e *Engine) AddProduct(p *domain.Product) {
	if p == nil {
		return
	}

	e.mu.Lock()
	existing := e.findByNameLocked(p.Name())
	if existing != nil {
		existing.AddStock(p.Stock())
	} else {
		e.products = append(e.products, p)
	}
	count := len(e.products)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.SetCatalogProducts(count)
	}
	e.publish(domain.Event{Type: domain.EventTypeProductAdded, Product: p.Name()})
}

// RemoveProduct удаляет товар по ссылке либо по доменному равенству.
func (e *Engine) RemoveProduct(p *domain.Product) bool {
	if p == nil {
		return false
	}

	e.mu.Lock()
	removed := false
	for i, candidate := range e.products {
		if candidate == p || candidate.Equal(p) {
			e.products = append(e.products[:i], e.products[i+1:]...)
			removed = true
			break
		}
	}
	count := len(e.products)
	e.mu.Unlock()

	if !removed {
		return false
	}
	if e.metrics != nil {
		e.metrics.SetCatalogProducts(count)
	}
	e.publish(domain.Event{Type: domain.EventTypeProductRemoved, Product: p.Name()})
	return true
}

// FindByName ищет товар по имени без учёта регистра; побеждает первое совпадение.
func (e *Engine) FindByName(name string) (*domain.Product, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.findByNameLocked(name)
	return p, p != nil
}

func (e *Engine) findByNameLocked(name string) *domain.Product {
	for _, p := range e.products {
		if p.NameMatches(name) {
			return p
		}
	}
	return nil
}

// ListAvailable возвращает копию списка товаров с положительным остатком,
// сохраняя относительный порядок каталога.
func (e *Engine) ListAvailable() []*domain.Product {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]*domain.Product, 0, len(e.products))
	for _, p := range e.products {
		if p.Stock() > 0 {
			result = append(result, p)
		}
	}
	return result
}

// ListAll возвращает копию полного списка товаров.
func (e *Engine) ListAll() []*domain.Product {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]*domain.Product, len(e.products))
	copy(result, e.products)
	return result
}

// RegisterCustomer отклоняет дубликаты имён (точное сравнение с учётом регистра).
func (e *Engine) RegisterCustomer(c *domain.Customer) bool {
	if c == nil || c.Username == "" {
		return false
	}

	e.mu.Lock()
	if _, exists := e.customers[c.Username]; exists {
		e.mu.Unlock()
		return false
	}
	e.customers[c.Username] = c
	e.mu.Unlock()

	e.publish(domain.Event{Type: domain.EventTypeCustomerRegistered, Customer: c.Username})
	return true
}

// Customer возвращает зарегистрированного покупателя по имени.
func (e *Engine) Customer(username string) (*domain.Customer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.customers[username]
	return c, ok
}

// Checkout превращает корзину в заказ. Протокол:
// выделить следующий id, снять снимок позиций, применить скидку, создать заказ
// со статусом new, дописать его в журнал и опустошить корзину — всё в одной
// критической секции. Затем заказ дописывается в долговременную историю;
// отказ записи логируется, но заказ в памяти остаётся финальным.
func (e *Engine) Checkout(customer string, cart *domain.Cart) (*domain.Order, error) {
	if e.metrics != nil {
		e.metrics.RecordCheckoutStarted()
	}
	if cart == nil || cart.IsEmpty() {
		if e.metrics != nil {
			e.metrics.RecordCheckoutFailed()
		}
		return nil, domain.ErrEmptyCart
	}

	start := time.Now()
	e.mu.Lock()
	id := e.nextID
	e.nextID++

	items := make([]domain.OrderItem, 0, len(cart.Items()))
	for _, line := range cart.Items() {
		items = append(items, domain.OrderItem{Product: line.Product, Quantity: line.Quantity})
	}
	total := e.discount.Apply(cart.CalculateTotal())
	order := domain.NewOrder(id, customer, items, total, time.Now())
	e.orders = append(e.orders, order)
	ledgerSize := len(e.orders)
	cart.Clear()
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.RecordCheckoutDuration(time.Since(start))
		e.metrics.RecordCheckoutCompleted()
		e.metrics.SetLedgerOrders(ledgerSize)
	}

	e.appendTimeline(order.ID(), timelineEventOrderCreated, string(order.Status()))
	e.publish(domain.Event{
		Type:     domain.EventTypeOrderCreated,
		OrderID:  order.ID(),
		Customer: order.Customer(),
		Status:   order.Status(),
	})

	if e.history != nil {
		appendStart := time.Now()
		if err := e.history.Append(order); err != nil {
			// Продажа уже финальна в памяти; потерю записи только логируем.
			e.logger.WithError(err).WithField("order_id", order.ID()).Error("failed to append order history")
		}
		if e.metrics != nil {
			e.metrics.RecordHistoryAppendDuration(time.Since(appendStart))
		}
	}

	return order, nil
}

// Order возвращает заказ журнала по идентификатору.
func (e *Engine) Order(id int64) (*domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, o := range e.orders {
		if o.ID() == id {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

// Orders возвращает копию журнала заказов в порядке создания.
func (e *Engine) Orders() []*domain.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]*domain.Order, len(e.orders))
	copy(result, e.orders)
	return result
}

// OrdersByCustomer возвращает заказы одного покупателя.
func (e *Engine) OrdersByCustomer(username string) []*domain.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]*domain.Order, 0)
	for _, o := range e.orders {
		if o.Customer() == username {
			result = append(result, o)
		}
	}
	return result
}

// PayOrder переводит заказ в paid и фиксирует событие.
func (e *Engine) PayOrder(id int64) error {
	order, err := e.Order(id)
	if err != nil {
		return err
	}
	order.Pay()
	e.recordStatusChange(order)
	return nil
}

// ShipOrder передаёт заказ провайдеру доставки. Провайдер обязан провести
// заказ через машину состояний; движок лишь фиксирует результат.
func (e *Engine) ShipOrder(id int64, provider domain.ShippingProvider) error {
	order, err := e.Order(id)
	if err != nil {
		return err
	}
	if provider == nil {
		return domain.ErrShipmentRejected
	}
	if err := provider.ShipOrder(order); err != nil {
		e.logger.WithError(err).WithField("order_id", id).Warn("shipping provider rejected order")
		return err
	}
	if e.metrics != nil {
		e.metrics.RecordOrderShipped()
	}
	e.recordStatusChange(order)
	return nil
}

// DeliverOrder завершает доставку; отказ машины состояний — не ошибка,
// а false без изменения статуса.
func (e *Engine) DeliverOrder(id int64) (bool, error) {
	order, err := e.Order(id)
	if err != nil {
		return false, err
	}
	if !order.Deliver() {
		return false, nil
	}
	if e.metrics != nil {
		e.metrics.RecordOrderDelivered()
	}
	e.recordStatusChange(order)
	return true, nil
}

// Timeline возвращает события жизненного цикла заказа.
func (e *Engine) Timeline(orderID int64) []domain.TimelineEvent {
	if e.timeline == nil {
		return nil
	}
	events, err := e.timeline.List(orderID)
	if err != nil {
		e.logger.WithError(err).WithField("order_id", orderID).Warn("failed to list timeline events")
		return nil
	}
	return events
}

// RestoreOrders подсаживает в журнал заказы, восстановленные из истории,
// и продвигает счётчик идентификаторов за максимальный встреченный id.
func (e *Engine) RestoreOrders(orders []*domain.Order) {
	if len(orders) == 0 {
		return
	}

	e.mu.Lock()
	for _, o := range orders {
		if o == nil {
			continue
		}
		e.orders = append(e.orders, o)
		if o.ID() >= e.nextID {
			e.nextID = o.ID() + 1
		}
	}
	ledgerSize := len(e.orders)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.SetLedgerOrders(ledgerSize)
	}
}

func (e *Engine) recordStatusChange(order *domain.Order) {
	status := order.Status()
	e.appendTimeline(order.ID(), timelineEventOrderStatusChanged, string(status))
	e.publish(domain.Event{
		Type:     domain.EventTypeOrderStatusChanged,
		OrderID:  order.ID(),
		Customer: order.Customer(),
		Status:   status,
	})
}

func (e *Engine) appendTimeline(orderID int64, eventType, reason string) {
	if e.timeline == nil {
		return
	}
	event := domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
	if err := e.timeline.Append(event); err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"order_id": orderID,
			"event":    eventType,
		}).Warn("failed to append timeline event")
		return
	}
	if e.metrics != nil {
		e.metrics.RecordTimelineEvent()
	}
}

func (e *Engine) publish(event domain.Event) {
	if e.events == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Occurred = time.Now().UTC()
	e.events.Publish(event)
	if e.metrics != nil {
		e.metrics.RecordEventPublished()
	}
}
