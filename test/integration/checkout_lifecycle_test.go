package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/engine"
	"github.com/vladislavdragonenkov/storefront/internal/events"
	"github.com/vladislavdragonenkov/storefront/internal/session"
	"github.com/vladislavdragonenkov/storefront/internal/shipping"
	"github.com/vladislavdragonenkov/storefront/internal/storage/csvfile"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// CheckoutLifecycleTestSuite тестирует полный цикл: каталог, корзина,
// оформление, доставка и восстановление истории из файла.
type CheckoutLifecycleTestSuite struct {
	suite.Suite
	engine   *engine.Engine
	bus      *events.Bus
	history  *csvfile.HistoryStore
	shipping *shipping.MockProvider

	historyPath string
	logger      *log.Entry
}

func (suite *CheckoutLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	suite.logger = baseLogger.WithField("component", "integration-test")

	suite.historyPath = filepath.Join(suite.T().TempDir(), "history.csv")
	suite.history = csvfile.NewHistoryStore(suite.historyPath, suite.logger)
	suite.bus = events.NewBus(suite.logger)
	suite.shipping = shipping.NewMockProvider()

	suite.engine = engine.NewEngineWithoutMetrics(
		suite.history,
		memory.NewTimelineRepository(),
		suite.bus,
		suite.logger,
	)
}

func (suite *CheckoutLifecycleTestSuite) TearDownTest() {
	suite.bus.Close()
}

func (suite *CheckoutLifecycleTestSuite) addLaptop(stock int) *domain.Product {
	laptop, err := domain.NewProduct(domain.CategoryElectronics, domain.ProductConfig{
		Name:           "Laptop",
		Price:          3500,
		Stock:          stock,
		Brand:          "Acme",
		WarrantyMonths: 24,
	})
	require.NoError(suite.T(), err)
	suite.engine.AddProduct(laptop)
	return laptop
}

func (suite *CheckoutLifecycleTestSuite) TestFullCheckoutLifecycle() {
	laptop := suite.addLaptop(5)

	_, eventsCh := suite.bus.Subscribe()

	// 1. Покупатель собирает корзину
	alice := domain.NewCustomer("alice", false)
	require.True(suite.T(), suite.engine.RegisterCustomer(alice))
	require.True(suite.T(), alice.AddToCart(laptop, 3))

	// Остаток 5, в корзине уже 3: ещё 3 не поместятся
	require.False(suite.T(), alice.AddToCart(laptop, 3))

	// 2. Оформление
	order, err := suite.engine.Checkout(alice.Username, alice.Cart())
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(1), order.ID())
	require.InDelta(suite.T(), 10500.00, order.Total(), 0.001)
	require.Equal(suite.T(), domain.OrderStatusNew, order.Status())
	require.True(suite.T(), alice.Cart().IsEmpty())

	// Остаток никогда не списывается при оформлении
	require.Equal(suite.T(), 5, laptop.Stock())

	// 3. Доставка через провайдера
	require.NoError(suite.T(), suite.engine.ShipOrder(order.ID(), suite.shipping))
	require.Equal(suite.T(), 1, suite.shipping.ShipCalls)
	require.Equal(suite.T(), domain.OrderStatusShipped, order.Status())

	delivered, err := suite.engine.DeliverOrder(order.ID())
	require.NoError(suite.T(), err)
	require.True(suite.T(), delivered)
	require.Equal(suite.T(), domain.OrderStatusDelivered, order.Status())

	// 4. Timeline зафиксировал создание и смены статусов
	timeline := suite.engine.Timeline(order.ID())
	require.GreaterOrEqual(suite.T(), len(timeline), 3) // created -> shipped -> delivered

	// 5. События дошли до подписчика шины
	var seen []domain.EventType
	deadline := time.After(2 * time.Second)
	for len(seen) < 4 {
		select {
		case ev := <-eventsCh:
			seen = append(seen, ev.Type)
		case <-deadline:
			suite.T().Fatalf("timed out waiting for events, got %v", seen)
		}
	}
	require.Contains(suite.T(), seen, domain.EventTypeOrderCreated)
	require.Contains(suite.T(), seen, domain.EventTypeOrderStatusChanged)
}

func (suite *CheckoutLifecycleTestSuite) TestHistoryRestoredAcrossRestart() {
	laptop := suite.addLaptop(10)

	cart := domain.NewCart()
	cart.AddItem(laptop, 2)
	order, err := suite.engine.Checkout("alice", cart)
	require.NoError(suite.T(), err)

	// «Перезапуск»: новый движок поверх того же файла истории
	restartedHistory := csvfile.NewHistoryStore(suite.historyPath, suite.logger)
	restarted := engine.NewEngineWithoutMetrics(restartedHistory, memory.NewTimelineRepository(), nil, suite.logger)
	restarted.AddProduct(laptop)

	restored, err := restartedHistory.LoadAll(restarted)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), restored, 1)
	restarted.RestoreOrders(restored)

	loaded := restored[0]
	require.Equal(suite.T(), order.ID(), loaded.ID())
	require.InDelta(suite.T(), order.Total(), loaded.Total(), 0.001)
	// Статус в истории не хранится: после рестарта заказ снова new
	require.Equal(suite.T(), domain.OrderStatusNew, loaded.Status())

	items := loaded.Items()
	require.Len(suite.T(), items, 1)
	require.Same(suite.T(), laptop, items[0].Product)
	require.Equal(suite.T(), 2, items[0].Quantity)

	// Счётчик id продвинут за восстановленный максимум
	cart2 := domain.NewCart()
	cart2.AddItem(laptop, 1)
	next, err := restarted.Checkout("bob", cart2)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), order.ID()+1, next.ID())
}

func (suite *CheckoutLifecycleTestSuite) TestDiscountedCheckout() {
	laptop := suite.addLaptop(10)

	discount, err := domain.NewPercentageDiscount(20)
	require.NoError(suite.T(), err)
	suite.engine.SetDiscountStrategy(discount)

	cart := domain.NewCart()
	cart.AddItem(laptop, 1)
	order, err := suite.engine.Checkout("alice", cart)
	require.NoError(suite.T(), err)
	require.InDelta(suite.T(), 2800.00, order.Total(), 0.001)
}

func (suite *CheckoutLifecycleTestSuite) TestConcurrentSessions() {
	laptop := suite.addLaptop(1 << 20)

	const sessions = 16
	type result struct {
		order *domain.Order
		err   error
	}
	results := make(chan result, sessions)

	var lanes []*session.Session
	for i := 0; i < sessions; i++ {
		customer := domain.NewCustomer("shopper", false)
		lane := session.New(customer, suite.engine, suite.logger)
		lanes = append(lanes, lane)

		lane.AddToCart(laptop, 1, nil)
		lane.Checkout(func(order *domain.Order, err error) {
			results <- result{order: order, err: err}
		})
	}

	ids := make(map[int64]bool, sessions)
	for i := 0; i < sessions; i++ {
		select {
		case res := <-results:
			require.NoError(suite.T(), res.err)
			require.False(suite.T(), ids[res.order.ID()], "duplicate order id %d", res.order.ID())
			ids[res.order.ID()] = true
		case <-time.After(5 * time.Second):
			suite.T().Fatal("timed out waiting for concurrent checkouts")
		}
	}
	require.Len(suite.T(), suite.engine.Orders(), sessions)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, lane := range lanes {
		require.NoError(suite.T(), lane.Close(ctx))
	}
}

func TestCheckoutLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutLifecycleTestSuite))
}
