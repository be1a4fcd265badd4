package domain

import "errors"

var (
	// ErrEmptyCart возвращается при попытке оформить пустую или отсутствующую корзину.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrOrderNotFound возвращается, если заказ не найден в журнале.
	ErrOrderNotFound = errors.New("order not found")
	// Ошибка отсутствующего имени товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка некорректной цены товара (<= 0).
	ErrProductPriceInvalid = errors.New("product price must be greater than zero")
	// Ошибка отрицательного остатка товара.
	ErrProductStockInvalid = errors.New("product stock must be non-negative")
	// Ошибка неизвестной категории товара.
	ErrCategoryUnknown = errors.New("unknown product category")
	// Ошибка отсутствующего автора для книги.
	ErrBookAuthorRequired = errors.New("book author is required")
	// Ошибка некорректного числа страниц книги.
	ErrBookPagesInvalid = errors.New("book pages must be greater than zero")
	// Ошибка отсутствующего размера одежды.
	ErrClothingSizeRequired = errors.New("clothing size is required")
	// Ошибка отсутствующего бренда электроники.
	ErrElectronicsBrandRequired = errors.New("electronics brand is required")
	// Ошибка отрицательного срока гарантии.
	ErrWarrantyInvalid = errors.New("warranty months must be non-negative")
	// Ошибка некорректного процента скидки (вне [0,100] или NaN).
	ErrDiscountPercentInvalid = errors.New("discount percent must be within [0,100]")
	// ErrShipmentRejected сигнализирует, что заказ не прошёл машину состояний при отгрузке.
	ErrShipmentRejected = errors.New("order is not eligible for shipment")
)

// IsValidationError проверяет, относится ли ошибка к отказам конструкторов домена.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrProductNameRequired,
		ErrProductPriceInvalid,
		ErrProductStockInvalid,
		ErrCategoryUnknown,
		ErrBookAuthorRequired,
		ErrBookPagesInvalid,
		ErrClothingSizeRequired,
		ErrElectronicsBrandRequired,
		ErrWarrantyInvalid,
		ErrDiscountPercentInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
