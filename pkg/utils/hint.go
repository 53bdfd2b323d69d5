package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// hint.go - разбор подсказок тейк-профита и стоп-лосса
//
// Модель пишет уровни в свободной форме: "+20%", "stop loss 5%", "2.50",
// "0.85 USDT". Значение со знаком процента трактуется как процент от цены
// входа, голое число - как абсолютный уровень цены.

var firstNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// PriceTarget - разобранная подсказка целевого уровня
type PriceTarget struct {
	// Percent - доля от цены входа (0.20 для "+20%"), если IsPrice == false
	Percent float64
	// Price - абсолютный уровень, если IsPrice == true
	Price float64
	// IsPrice - true, когда подсказка задаёт цену напрямую
	IsPrice bool
}

// ParseTarget разбирает подсказку уровня. Если число из подсказки извлечь
// не удалось, возвращается процентная цель defaultPct (в процентах: 20 = 20%).
func ParseTarget(hint string, defaultPct float64) PriceTarget {
	fallback := PriceTarget{Percent: defaultPct / 100}

	m := firstNumber.FindString(hint)
	if m == "" {
		return fallback
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return fallback
	}

	if strings.Contains(hint, "%") {
		return PriceTarget{Percent: val / 100}
	}
	return PriceTarget{Price: val, IsPrice: true}
}

// TakeProfitLevel вычисляет абсолютный уровень тейк-профита от цены входа.
// Процентная подсказка откладывается вверх от basePrice, ценовая берётся как есть.
func TakeProfitLevel(basePrice float64, hint string, defaultPct float64) float64 {
	t := ParseTarget(hint, defaultPct)
	if t.IsPrice {
		return t.Price
	}
	return basePrice * (1 + t.Percent)
}

// StopLossLevel вычисляет абсолютный уровень стоп-лосса от цены входа.
// Процентная подсказка откладывается вниз от basePrice.
func StopLossLevel(basePrice float64, hint string, defaultPct float64) float64 {
	t := ParseTarget(hint, defaultPct)
	if t.IsPrice {
		return t.Price
	}
	return basePrice * (1 - t.Percent)
}
