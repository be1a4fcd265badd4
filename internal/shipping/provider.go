// Package shipping содержит реализацию возможности «отгрузить заказ».
// Ядро зависит только от сигнатуры ShipOrder; конкретная форма внешнего API
// доставки остаётся за адаптером.
package shipping

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Provider — провайдер доставки по умолчанию: фиксирует оплату и отгрузку
// через машину состояний заказа. Контракт ядра — только то, что Pay/Ship
// подчиняются машине состояний независимо от вызывающего.
type Provider struct {
	logger *log.Entry
}

// NewProvider создаёт провайдера доставки.
func NewProvider(logger *log.Entry) *Provider {
	if logger == nil {
		logger = log.New().WithField("component", "shipping")
	}
	return &Provider{logger: logger}
}

// ShipOrder проводит заказ через Pay и Ship. Отказ Ship означает, что машина
// состояний не допустила отгрузку.
func (p *Provider) ShipOrder(order *domain.Order) error {
	if order == nil {
		return domain.ErrOrderNotFound
	}

	order.Pay()
	if !order.Ship() {
		p.logger.WithFields(log.Fields{
			"order_id": order.ID(),
			"status":   order.Status(),
		}).Warn("state machine rejected shipment")
		return domain.ErrShipmentRejected
	}

	p.logger.WithField("order_id", order.ID()).Info("order handed to carrier")
	return nil
}

var _ domain.ShippingProvider = (*Provider)(nil)
