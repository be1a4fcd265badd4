package domain

// Customer — участник системы со своей корзиной. Признак Manager — это
// флаг возможностей (управление каталогом), а не граница безопасности.
type Customer struct {
	Username string
	Manager  bool

	cart *Cart
}

// NewCustomer создаёт покупателя с пустой корзиной.
func NewCustomer(username string, manager bool) *Customer {
	return &Customer{
		Username: username,
		Manager:  manager,
		cart:     NewCart(),
	}
}

// Cart возвращает корзину покупателя. Корзиной владеет только он сам.
func (c *Customer) Cart() *Cart {
	return c.cart
}

// AddToCart выполняет проверку остатка перед делегированием корзине:
// сумма уже лежащего в корзине и добавляемого не должна превышать текущий
// остаток товара. Проверка точечная: остаток может измениться между
// добавлением и оформлением, оформление остаток не перепроверяет.
func (c *Customer) AddToCart(product *Product, qty int) bool {
	if product == nil || qty <= 0 {
		return false
	}
	alreadyInCart := c.cart.QuantityOf(product)
	if alreadyInCart+qty > product.Stock() {
		return false
	}
	return c.cart.AddItem(product, qty)
}

// RemoveFromCart удаляет строку товара из корзины.
func (c *Customer) RemoveFromCart(product *Product) bool {
	return c.cart.RemoveItem(product)
}
