package domain

import (
	"fmt"
	"math"
)

// DiscountStrategy — подключаемое преобразование subtotal → total.
// Результат всегда лежит в [0, subtotal].
type DiscountStrategy interface {
	Apply(subtotal float64) float64
	DisplayName() string
}

// NoDiscount — тождественная стратегия с отсечением отрицательных сумм.
type NoDiscount struct{}

// Apply возвращает subtotal без изменений; отрицательный subtotal даёт 0.
func (NoDiscount) Apply(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	return subtotal
}

func (NoDiscount) DisplayName() string { return "No discount" }

// PercentageDiscount снимает фиксированный процент от суммы.
type PercentageDiscount struct {
	percent float64
}

// NewPercentageDiscount валидирует процент на этапе конструирования:
// NaN и значения вне [0,100] отклоняются.
func NewPercentageDiscount(percent float64) (PercentageDiscount, error) {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return PercentageDiscount{}, ErrDiscountPercentInvalid
	}
	return PercentageDiscount{percent: percent}, nil
}

// Percent возвращает настроенный процент скидки.
func (d PercentageDiscount) Percent() float64 { return d.percent }

// Apply считает subtotal * (1 - percent/100) с отсечением в 0.
func (d PercentageDiscount) Apply(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	total := subtotal * (1 - d.percent/100)
	if total < 0 {
		return 0
	}
	return total
}

func (d PercentageDiscount) DisplayName() string {
	return fmt.Sprintf("%.0f%% off", d.percent)
}
