package utils

import (
	"errors"
	"regexp"
	"strings"
)

// symbol.go - нормализация тикеров и торговых пар
//
// Анализатор возвращает название монеты в свободной форме ("btc", "ARB ",
// "Arbitrum (ARB)"), а пара может прийти с задвоенным суффиксом котировки
// ("ARBUSDTUSDT") из-за дрейфа формата выше по конвейеру. Перед любым
// обращением к API цен символы приводятся к каноническому виду.

var nonAlphanumeric = regexp.MustCompile(`[^A-Z0-9]`)

// ErrBadPairLabel возвращается для метки пары не вида "BTC/ETH"
var ErrBadPairLabel = errors.New("pair label must look like \"BTC/ETH\"")

// NormalizeCoin приводит тикер монеты к каноническому виду:
// верхний регистр, только латинские буквы и цифры.
//
// Примеры:
//   - NormalizeCoin("btc") = "BTC"
//   - NormalizeCoin(" ARB.") = "ARB"
func NormalizeCoin(coin string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToUpper(coin), "")
}

// NormalizePair нормализует символ торговой пары: верхний регистр и схлопывание
// задвоенного суффикса валюты котировки ("ARBUSDTUSDT" -> "ARBUSDT").
func NormalizePair(pair, quote string) string {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	quote = strings.ToUpper(quote)
	if quote == "" {
		return pair
	}
	for strings.HasSuffix(pair, quote+quote) {
		pair = strings.TrimSuffix(pair, quote)
	}
	return pair
}

// CoinFromPair выделяет тикер монеты из символа пары, отрезая валюту котировки
//
// Примеры:
//   - CoinFromPair("ARBUSDT", "USDT") = "ARB"
//   - CoinFromPair("BTC", "USDT") = "BTC"
func CoinFromPair(pair, quote string) string {
	pair = NormalizePair(pair, quote)
	return strings.TrimSuffix(pair, strings.ToUpper(quote))
}

// SplitPairLabel разбирает метку пары вида "BTC/ETH" на активы A и B
func SplitPairLabel(label string) (assetA, assetB string, err error) {
	parts := strings.Split(label, "/")
	if len(parts) != 2 {
		return "", "", ErrBadPairLabel
	}
	assetA = NormalizeCoin(parts[0])
	assetB = NormalizeCoin(parts[1])
	if assetA == "" || assetB == "" {
		return "", "", ErrBadPairLabel
	}
	return assetA, assetB, nil
}
