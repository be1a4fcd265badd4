package domain

import (
	"strings"
)

// Category задаёт категорию товара; она же служит тегом варианта.
type Category string

const (
	CategoryBook        Category = "book"
	CategoryClothing    Category = "clothing"
	CategoryElectronics Category = "electronics"
)

// DefaultImagePath используется, когда путь к изображению не указан.
const DefaultImagePath = "assets/default.png"

// ParseCategory приводит строку к известной категории.
// Неизвестное значение по умолчанию считается электроникой — так ведёт себя
// загрузчик каталога, и это поведение сохранено намеренно.
func ParseCategory(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(CategoryBook):
		return CategoryBook
	case string(CategoryClothing):
		return CategoryClothing
	case string(CategoryElectronics):
		return CategoryElectronics
	default:
		return CategoryElectronics
	}
}

// Variant — категорийная часть товара (сумма типов вместо иерархии подклассов).
type Variant interface {
	variantCategory() Category
}

// BookVariant хранит атрибуты книги.
type BookVariant struct {
	Author string
	Pages  int
}

func (BookVariant) variantCategory() Category { return CategoryBook }

// ClothingVariant хранит атрибуты одежды.
type ClothingVariant struct {
	Size string
}

func (ClothingVariant) variantCategory() Category { return CategoryClothing }

// ElectronicsVariant хранит атрибуты электроники.
type ElectronicsVariant struct {
	Brand          string
	WarrantyMonths int
}

func (ElectronicsVariant) variantCategory() Category { return CategoryElectronics }

// ProductConfig перечисляет поля, распознаваемые конструкторами товаров.
// Базовые поля общие; категорийные читаются только конструктором своей категории.
type ProductConfig struct {
	Name        string
	Price       float64
	Stock       int
	Description string
	Color       string
	ImagePath   string

	// Книга.
	Author string
	Pages  int
	// Одежда.
	Size string
	// Электроника.
	Brand          string
	WarrantyMonths int
}

// Product — товар каталога. Идентичность задаётся парой (имя, категория),
// цена и остаток изменяемы через защищённые сеттеры. Один и тот же *Product
// разделяется каталогом, корзинами и позициями заказов.
type Product struct {
	name        string
	category    Category
	price       float64
	stock       int
	description string
	color       string
	imagePath   string
	variant     Variant
}

// NewProduct конструирует товар указанной категории, валидируя базовые и
// категорийные поля. Отсутствие обязательного поля — ошибка конструктора,
// а не молчаливое значение по умолчанию.
func NewProduct(category Category, cfg ProductConfig) (*Product, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, ErrProductNameRequired
	}
	if cfg.Price <= 0 {
		return nil, ErrProductPriceInvalid
	}
	if cfg.Stock < 0 {
		return nil, ErrProductStockInvalid
	}

	var variant Variant
	switch category {
	case CategoryBook:
		if strings.TrimSpace(cfg.Author) == "" {
			return nil, ErrBookAuthorRequired
		}
		if cfg.Pages <= 0 {
			return nil, ErrBookPagesInvalid
		}
		variant = BookVariant{Author: cfg.Author, Pages: cfg.Pages}
	case CategoryClothing:
		if strings.TrimSpace(cfg.Size) == "" {
			return nil, ErrClothingSizeRequired
		}
		variant = ClothingVariant{Size: cfg.Size}
	case CategoryElectronics:
		if strings.TrimSpace(cfg.Brand) == "" {
			return nil, ErrElectronicsBrandRequired
		}
		if cfg.WarrantyMonths < 0 {
			return nil, ErrWarrantyInvalid
		}
		variant = ElectronicsVariant{Brand: cfg.Brand, WarrantyMonths: cfg.WarrantyMonths}
	default:
		return nil, ErrCategoryUnknown
	}

	return newProduct(category, cfg, variant), nil
}

// RestoreProduct — терпимый конструктор для загрузчиков файлов: в файле каталога
// категорийных полей нет, поэтому вариант заполняется нулевым значением категории.
// Возвращает false при некорректных базовых полях (имя/цена/остаток).
func RestoreProduct(category Category, cfg ProductConfig) (*Product, bool) {
	if strings.TrimSpace(cfg.Name) == "" || cfg.Price <= 0 || cfg.Stock < 0 {
		return nil, false
	}

	var variant Variant
	switch category {
	case CategoryBook:
		variant = BookVariant{Author: cfg.Author, Pages: cfg.Pages}
	case CategoryClothing:
		variant = ClothingVariant{Size: cfg.Size}
	default:
		variant = ElectronicsVariant{Brand: cfg.Brand, WarrantyMonths: cfg.WarrantyMonths}
	}

	return newProduct(variant.variantCategory(), cfg, variant), true
}

func newProduct(category Category, cfg ProductConfig, variant Variant) *Product {
	imagePath := cfg.ImagePath
	if strings.TrimSpace(imagePath) == "" {
		imagePath = DefaultImagePath
	}
	return &Product{
		name:        cfg.Name,
		category:    category,
		price:       cfg.Price,
		stock:       cfg.Stock,
		description: cfg.Description,
		color:       cfg.Color,
		imagePath:   imagePath,
		variant:     variant,
	}
}

func (p *Product) Name() string        { return p.name }
func (p *Product) Category() Category  { return p.category }
func (p *Product) Price() float64      { return p.price }
func (p *Product) Stock() int          { return p.stock }
func (p *Product) Description() string { return p.description }
func (p *Product) Color() string       { return p.color }
func (p *Product) ImagePath() string   { return p.imagePath }

// Variant возвращает категорийную часть товара для pattern match по типу.
func (p *Product) Variant() Variant { return p.variant }

// SetPrice отклоняет цену <= 0, оставляя прежнее значение.
func (p *Product) SetPrice(price float64) bool {
	if price <= 0 {
		return false
	}
	p.price = price
	return true
}

// SetStock отклоняет отрицательный остаток, оставляя прежнее значение.
func (p *Product) SetStock(stock int) bool {
	if stock < 0 {
		return false
	}
	p.stock = stock
	return true
}

// AddStock увеличивает остаток на delta (используется каталогом при слиянии).
func (p *Product) AddStock(delta int) bool {
	if delta < 0 {
		return false
	}
	p.stock += delta
	return true
}

// NameMatches сравнивает имя товара без учёта регистра.
func (p *Product) NameMatches(name string) bool {
	return strings.EqualFold(p.name, name)
}

// Equal сравнивает базовую идентичность (имя без учёта регистра + категория)
// и категорийную часть.
func (p *Product) Equal(other *Product) bool {
	if p == nil || other == nil {
		return p == other
	}
	if !strings.EqualFold(p.name, other.name) || p.category != other.category {
		return false
	}
	return p.variant == other.variant
}
