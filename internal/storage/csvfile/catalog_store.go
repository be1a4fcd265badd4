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

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const catalogHeader = "name,price,stock,description,category,imagePath"

// CatalogStore читает и записывает файл каталога товаров.
// Формат — CSV с фиксированным заголовком; описания и имена не должны
// содержать запятых.
type CatalogStore struct {
	mu     sync.Mutex
	path   string
	logger *log.Entry
}

// NewCatalogStore создаёт хранилище каталога для указанного пути.
func NewCatalogStore(path string, logger *log.Entry) *CatalogStore {
	if logger == nil {
		logger = log.New().WithField("component", "catalog-store")
	}
	return &CatalogStore{path: path, logger: logger}
}

// Path возвращает путь файла каталога.
func (s *CatalogStore) Path() string { return s.path }

// Load восстанавливает товары из файла. Пустые строки и повторный заголовок
// пропускаются; строки с нечисловой ценой или остатком пропускаются с записью
// в лог; неизвестная категория трактуется как электроника; пустой путь
// изображения получает значение по умолчанию. Отсутствие файла — пустой каталог.
func (s *CatalogStore) Load() ([]*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	var products []*domain.Product
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.EqualFold(line, catalogHeader) {
			continue
		}
		product, ok := s.parseRow(line, lineNo)
		if !ok {
			continue
		}
		products = append(products, product)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return products, nil
}

// Save перезаписывает файл каталога. Заголовок пишется всегда, даже для
// пустого каталога.
func (s *CatalogStore) Save(products []*domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create catalog file: %w", err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(catalogHeader + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("write catalog header: %w", err)
	}
	for _, p := range products {
		if p == nil {
			continue
		}
		row := fmt.Sprintf("%s,%.2f,%d,%s,%s,%s\n",
			p.Name(), p.Price(), p.Stock(), p.Description(), p.Category(), p.ImagePath())
		if _, err := w.WriteString(row); err != nil {
			_ = f.Close()
			return fmt.Errorf("write catalog row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("flush catalog file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close catalog file: %w", err)
	}
	return nil
}

func (s *CatalogStore) parseRow(line string, lineNo int) (*domain.Product, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 5 {
		s.logger.WithField("line", lineNo).Warn("skipping short catalog row")
		return nil, false
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		s.logger.WithError(err).WithField("line", lineNo).Warn("skipping catalog row with bad price")
		return nil, false
	}
	stock, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		s.logger.WithError(err).WithField("line", lineNo).Warn("skipping catalog row with bad stock")
		return nil, false
	}

	imagePath := ""
	if len(fields) >= 6 {
		imagePath = strings.TrimSpace(fields[5])
	}

	product, ok := domain.RestoreProduct(domain.ParseCategory(fields[4]), domain.ProductConfig{
		Name:        strings.TrimSpace(fields[0]),
		Price:       price,
		Stock:       stock,
		Description: strings.TrimSpace(fields[3]),
		ImagePath:   imagePath,
	})
	if !ok {
		s.logger.WithField("line", lineNo).Warn("skipping catalog row with invalid base fields")
		return nil, false
	}
	return product, true
}
