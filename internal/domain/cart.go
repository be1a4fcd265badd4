package domain

// CartItem — одна строка корзины: ссылка на товар и количество.
// Идентичность строки определяется товаром, поэтому повторное добавление
// того же товара сливает количества, а не создаёт вторую строку.
type CartItem struct {
	Product  *Product
	Quantity int
}

// Cart — корзина одного покупателя. Порядок строк сохраняется в порядке
// добавления. Корзина не проверяет остатки: это обязанность покупателя
// (см. Customer.AddToCart), а финальная проверка остаётся за оформлением.
type Cart struct {
	items []CartItem
}

// NewCart возвращает пустую корзину.
func NewCart() *Cart {
	return &Cart{}
}

// AddItem добавляет товар в корзину или увеличивает количество существующей
// строки. Возвращает false при nil-товаре или неположительном количестве.
func (c *Cart) AddItem(product *Product, qty int) bool {
	if product == nil || qty <= 0 {
		return false
	}
	for i := range c.items {
		if c.items[i].Product == product {
			c.items[i].Quantity += qty
			return true
		}
	}
	c.items = append(c.items, CartItem{Product: product, Quantity: qty})
	return true
}

// RemoveItem удаляет строку целиком независимо от количества.
func (c *Cart) RemoveItem(product *Product) bool {
	if product == nil {
		return false
	}
	for i := range c.items {
		if c.items[i].Product == product {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// QuantityOf возвращает количество товара, уже лежащее в корзине.
func (c *Cart) QuantityOf(product *Product) int {
	for i := range c.items {
		if c.items[i].Product == product {
			return c.items[i].Quantity
		}
	}
	return 0
}

// CalculateTotal считает сумму по текущим ценам товаров.
func (c *Cart) CalculateTotal() float64 {
	var total float64
	for i := range c.items {
		total += float64(c.items[i].Quantity) * c.items[i].Product.Price()
	}
	return total
}

// Items возвращает копию строк корзины; товары остаются общими ссылками.
func (c *Cart) Items() []CartItem {
	items := make([]CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Clear опустошает корзину (вызывается после успешного оформления).
func (c *Cart) Clear() {
	c.items = nil
}

// IsEmpty сообщает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}
