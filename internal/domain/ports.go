package domain

// ShippingProvider — граница внешнего API доставки. Ядро зависит только от
// возможности «отгрузить заказ»; провайдер обязан провести заказ через
// машину состояний (Pay, затем Ship), и только она решает исход.
type ShippingProvider interface {
	ShipOrder(order *Order) error
}

// ProductResolver разрешает имя товара в живую ссылку каталога.
// Нужен загрузчику истории: строки файла хранят только имена.
type ProductResolver interface {
	FindByName(name string) (*Product, bool)
}

// HistoryStore сериализует заказы в долговременное хранилище и обратно.
type HistoryStore interface {
	// Append дописывает один заказ; ошибки ввода-вывода возвращаются вызывающему.
	Append(order *Order) error
	// LoadAll восстанавливает заказы, разрешая товары через каталог.
	// Отсутствие файла — не ошибка, а пустая история.
	LoadAll(catalog ProductResolver) ([]*Order, error)
}

// EventPublisher получает доменные события после каждой мутирующей операции
// движка. Публикация не должна блокировать вызывающего.
type EventPublisher interface {
	Publish(event Event)
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(event TimelineEvent) error
	List(orderID int64) ([]TimelineEvent, error)
}
