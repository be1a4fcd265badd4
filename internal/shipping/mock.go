package shipping

import "github.com/vladislavdragonenkov/storefront/internal/domain"

// MockProvider — конфигурируемая заглушка ShippingProvider для тестов.
type MockProvider struct {
	ShipErr error

	ShipCalls int
	LastOrder *domain.Order
}

// NewMockProvider возвращает mock с успешным сценарием по умолчанию.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// ShipOrder считает вызовы и возвращает заранее настроенную ошибку.
// При успешном сценарии проводит заказ через машину состояний, как настоящий
// провайдер.
func (m *MockProvider) ShipOrder(order *domain.Order) error {
	m.ShipCalls++
	m.LastOrder = order
	if m.ShipErr != nil {
		return m.ShipErr
	}
	if order != nil {
		order.Pay()
		if !order.Ship() {
			return domain.ErrShipmentRejected
		}
	}
	return nil
}

var _ domain.ShippingProvider = (*MockProvider)(nil)
