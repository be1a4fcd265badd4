package csvfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// catalogStub резолвит товары по имени из фиксированного набора.
type catalogStub struct {
	products []*domain.Product
}

func (c *catalogStub) FindByName(name string) (*domain.Product, bool) {
	for _, p := range c.products {
		if p.NameMatches(name) {
			return p, true
		}
	}
	return nil, false
}

func testProduct(t *testing.T, name string, price float64, stock int) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(domain.CategoryElectronics, domain.ProductConfig{
		Name:           name,
		Price:          price,
		Stock:          stock,
		Brand:          "Acme",
		WarrantyMonths: 12,
	})
	if err != nil {
		t.Fatalf("product setup failed: %v", err)
	}
	return p
}

func TestHistoryStore_AppendLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	store := NewHistoryStore(path, nil)

	laptop := testProduct(t, "Laptop", 3500, 5)
	phone := testProduct(t, "Phone", 900.5, 3)
	catalog := &catalogStub{products: []*domain.Product{laptop, phone}}

	created := time.Date(2026, 8, 28, 12, 30, 45, 0, time.Local)
	orders := []*domain.Order{
		domain.NewOrder(1, "alice", []domain.OrderItem{
			{Product: laptop, Quantity: 3},
		}, 10500, created),
		domain.NewOrder(2, "bob", []domain.OrderItem{
			{Product: laptop, Quantity: 1},
			{Product: phone, Quantity: 2},
		}, 5301, created.Add(time.Minute)),
	}
	for _, o := range orders {
		if err := store.Append(o); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	loaded, err := store.LoadAll(catalog)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 restored orders, got %d", len(loaded))
	}

	first := loaded[0]
	if first.ID() != 1 || first.Total() != 10500 {
		t.Fatalf("unexpected first order: id=%d total=%.2f", first.ID(), first.Total())
	}
	if !first.CreatedAt().Equal(created) {
		t.Fatalf("timestamp lost precision: want %v, got %v", created, first.CreatedAt())
	}
	// Статус в файле не хранится: восстановленный заказ всегда new.
	if first.Status() != domain.OrderStatusNew {
		t.Fatalf("restored order must be new, got %s", first.Status())
	}

	second := loaded[1]
	items := second.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 item lines, got %d", len(items))
	}
	if items[0].Product != laptop || items[0].Quantity != 1 {
		t.Fatalf("unexpected first item: %s x%d", items[0].Product.Name(), items[0].Quantity)
	}
	if items[1].Product != phone || items[1].Quantity != 2 {
		t.Fatalf("unexpected second item: %s x%d", items[1].Product.Name(), items[1].Quantity)
	}
}

func TestHistoryStore_FormatsTotalsWithTwoDecimals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	store := NewHistoryStore(path, nil)

	laptop := testProduct(t, "Laptop", 3500, 5)
	order := domain.NewOrder(7, "alice", []domain.OrderItem{
		{Product: laptop, Quantity: 3},
	}, 10500, time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local))
	if err := store.Append(order); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	got := strings.TrimSpace(string(raw))
	want := "7,10500.00,2026-01-02T03:04:05,Laptop x3"
	if got != want {
		t.Fatalf("unexpected history line:\n want %q\n  got %q", want, got)
	}
}

func TestHistoryStore_LoadAllMissingFile(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "absent.csv"), nil)
	orders, err := store.LoadAll(nil)
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if orders != nil {
		t.Fatalf("expected empty history, got %d orders", len(orders))
	}
}

func TestHistoryStore_LoadAllToleratesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	laptop := testProduct(t, "Laptop", 100, 5)
	catalog := &catalogStub{products: []*domain.Product{laptop}}

	lines := []string{
		"",                                        // пустая строка
		"not-a-number,10.00,2026-01-02T03:04:05,Laptop x1", // нечисловой id
		"3,abc,2026-01-02T03:04:05,Laptop x1",              // нечисловая сумма
		"4,10.00",                                          // мало полей
		"5,10.00,garbage-timestamp,Laptop x2",              // битое время
		"6,10.00,2026-01-02T03:04:05,Ghost x1;Laptop x3",   // неизвестный товар
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}

	store := NewHistoryStore(path, nil)
	before := time.Now()
	orders, err := store.LoadAll(catalog)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 surviving orders, got %d", len(orders))
	}

	// Битая метка времени заменяется текущим моментом, заказ не теряется.
	if orders[0].ID() != 5 {
		t.Fatalf("expected order 5 to survive, got %d", orders[0].ID())
	}
	if orders[0].CreatedAt().Before(before.Add(-time.Minute)) {
		t.Fatal("expected bad timestamp to be replaced with a recent one")
	}

	// Неизвестный Ghost отброшен, знакомый Laptop остался.
	items := orders[1].Items()
	if len(items) != 1 || items[0].Product != laptop || items[0].Quantity != 3 {
		t.Fatalf("unexpected surviving items: %v", items)
	}
}
