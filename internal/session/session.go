// Package session реализует модель исполнения «одна рабочая полоса на сессию»:
// бизнес-логика каждой сессии выполняется на выделенной горутине, а результаты
// доставляются презентационному слою асинхронно через callbacks. Блокирующие
// операции (запись истории внутри оформления) никогда не выполняются на
// UI-потоке сессии.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/engine"
)

const taskQueueSize = 32

// Session — интерактивный контекст одного покупателя или менеджера.
// Корзиной владеет только сессия; общий движок разделяется всеми сессиями.
type Session struct {
	id       string
	customer *domain.Customer
	engine   *engine.Engine
	logger   *log.Entry

	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New создаёт сессию и запускает её рабочую полосу.
func New(customer *domain.Customer, eng *engine.Engine, logger *log.Entry) *Session {
	id := uuid.NewString()
	if logger == nil {
		logger = log.New().WithField("component", "session")
	}
	s := &Session{
		id:       id,
		customer: customer,
		engine:   eng,
		logger:   logger.WithField("session_id", id),
		tasks:    make(chan func(), taskQueueSize),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for task := range s.tasks {
			task()
		}
	}()

	return s
}

// ID возвращает идентификатор сессии.
func (s *Session) ID() string { return s.id }

// Customer возвращает владельца сессии.
func (s *Session) Customer() *domain.Customer { return s.customer }

// AddToCart ставит добавление товара в очередь полосы; итог проверки остатка
// придёт в callback.
func (s *Session) AddToCart(product *domain.Product, qty int, done func(ok bool)) bool {
	return s.enqueue(func() {
		ok := s.customer.AddToCart(product, qty)
		if done != nil {
			done(ok)
		}
	})
}

// RemoveFromCart ставит удаление строки корзины в очередь полосы.
func (s *Session) RemoveFromCart(product *domain.Product, done func(ok bool)) bool {
	return s.enqueue(func() {
		ok := s.customer.RemoveFromCart(product)
		if done != nil {
			done(ok)
		}
	})
}

// CartTotal вычисляет сумму корзины на полосе сессии.
func (s *Session) CartTotal(done func(total float64)) bool {
	return s.enqueue(func() {
		total := s.customer.Cart().CalculateTotal()
		if done != nil {
			done(total)
		}
	})
}

// Checkout оформляет корзину на полосе сессии. Запись истории — блокирующий
// ввод-вывод, поэтому она выполняется здесь же, не задерживая другие сессии.
func (s *Session) Checkout(done func(order *domain.Order, err error)) bool {
	return s.enqueue(func() {
		order, err := s.engine.Checkout(s.customer.Username, s.customer.Cart())
		if err != nil {
			s.logger.WithError(err).Debug("checkout rejected")
		}
		if done != nil {
			done(order, err)
		}
	})
}

// Do выполняет произвольную работу на полосе сессии (для презентационного слоя).
func (s *Session) Do(task func()) bool {
	return s.enqueue(task)
}

func (s *Session) enqueue(task func()) bool {
	if task == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Warn("task rejected, session is closed")
		return false
	}
	s.tasks <- task
	return true
}

// Close останавливает полосу, дождавшись уже поставленных задач.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.tasks)
	s.mu.Unlock()

	waitDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
