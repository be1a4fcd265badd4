// Package csvfile реализует долговременные хранилища поверх плоских
// текстовых файлов: журнал истории заказов и файл каталога товаров.
package csvfile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Формат строки истории: id,total(2 знака),ISO-время,"имя xкол-во;...".
// Первые три поля разбираются консервативным 4-частным сплитом, поэтому
// имена товаров не должны содержать запятых.
const historyTimeLayout = "2006-01-02T15:04:05"

// HistoryStore дописывает заказы в файл истории и восстанавливает их обратно.
// Один process-wide mutex сериализует все записи и чтения файла; дескриптор
// не удерживается между вызовами.
type HistoryStore struct {
	mu     sync.Mutex
	path   string
	logger *log.Entry
}

// NewHistoryStore создаёт хранилище для указанного пути.
func NewHistoryStore(path string, logger *log.Entry) *HistoryStore {
	if logger == nil {
		logger = log.New().WithField("component", "history-store")
	}
	return &HistoryStore{path: path, logger: logger}
}

// Path возвращает путь файла истории.
func (s *HistoryStore) Path() string { return s.path }

// Append форматирует заказ одной строкой и дописывает её в конец файла.
func (s *HistoryStore) Append(order *domain.Order) error {
	if order == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}

	line := formatHistoryLine(order)
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("append history line: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close history file: %w", err)
	}
	return nil
}

// LoadAll читает историю построчно, терпимо к мусору: строка с нечисловым id
// или суммой пропускается с записью в лог, нечитаемая метка времени заменяется
// текущим моментом, а позиции с неизвестным товаром отбрасываются. Статус
// в файле не хранится, восстановленные заказы всегда получают статус new.
func (s *HistoryStore) LoadAll(catalog domain.ProductResolver) ([]*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	var orders []*domain.Order
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		order, ok := s.parseHistoryLine(line, lineNo, catalog)
		if !ok {
			continue
		}
		orders = append(orders, order)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}
	return orders, nil
}

func formatHistoryLine(order *domain.Order) string {
	var items strings.Builder
	for i, item := range order.Items() {
		if i > 0 {
			items.WriteString(";")
		}
		items.WriteString(item.Product.Name())
		items.WriteString(" x")
		items.WriteString(strconv.Itoa(item.Quantity))
	}
	return fmt.Sprintf("%d,%.2f,%s,%s",
		order.ID(),
		order.Total(),
		order.CreatedAt().Format(historyTimeLayout),
		items.String(),
	)
}

func (s *HistoryStore) parseHistoryLine(line string, lineNo int, catalog domain.ProductResolver) (*domain.Order, bool) {
	fields := strings.SplitN(line, ",", 4)
	if len(fields) < 4 {
		s.logger.WithField("line", lineNo).Warn("skipping malformed history line")
		return nil, false
	}

	id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		s.logger.WithError(err).WithField("line", lineNo).Warn("skipping history line with bad order id")
		return nil, false
	}
	total, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		s.logger.WithError(err).WithField("line", lineNo).Warn("skipping history line with bad total")
		return nil, false
	}

	createdAt, err := time.ParseInLocation(historyTimeLayout, strings.TrimSpace(fields[2]), time.Local)
	if err != nil {
		// Нечитаемое время не фатально: подставляем текущий момент.
		s.logger.WithField("line", lineNo).Warn("history line has bad timestamp, using current time")
		createdAt = time.Now()
	}

	items := s.parseItems(fields[3], lineNo, catalog)
	return domain.NewOrder(id, "", items, total, createdAt), true
}

func (s *HistoryStore) parseItems(raw string, lineNo int, catalog domain.ProductResolver) []domain.OrderItem {
	var items []domain.OrderItem
	for _, token := range strings.Split(raw, ";") {
		token = strings.TrimSpace(strings.Trim(token, `"`))
		if token == "" {
			continue
		}
		parts := strings.SplitN(token, " x", 2)
		if len(parts) != 2 {
			s.logger.WithField("line", lineNo).Debug("dropping unparsable item token")
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || qty <= 0 {
			s.logger.WithField("line", lineNo).Debug("dropping item token with bad quantity")
			continue
		}
		if catalog == nil {
			continue
		}
		product, ok := catalog.FindByName(strings.TrimSpace(parts[0]))
		if !ok {
			s.logger.WithFields(log.Fields{
				"line": lineNo,
				"name": parts[0],
			}).Debug("dropping item referencing unknown product")
			continue
		}
		items = append(items, domain.OrderItem{Product: product, Quantity: qty})
	}
	return items
}

var _ domain.HistoryStore = (*HistoryStore)(nil)
