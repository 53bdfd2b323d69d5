package bot

import (
	"errors"
	"math"

	"newstrader/internal/models"
)

// Ошибки статистики
var (
	// ErrSeriesMismatch - ряды закрытий двух ног разной длины
	ErrSeriesMismatch = errors.New("close series have different lengths")

	// ErrZeroDenominator - в ряду знаменателя встретился ноль
	ErrZeroDenominator = errors.New("denominator series contains zero")
)

// Mean возвращает среднее арифметическое ряда
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev возвращает стандартное отклонение ряда (по генеральной
// совокупности, деление на n)
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Ratios строит поэлементное отношение ряда B к ряду A
//
// Используется парной стратегией: ratio[i] = closesB[i] / closesA[i].
// Ряды должны быть одной длины и ряд A не должен содержать нулей.
func Ratios(closesB, closesA []float64) ([]float64, error) {
	if len(closesB) != len(closesA) {
		return nil, ErrSeriesMismatch
	}
	ratios := make([]float64, len(closesB))
	for i := range closesB {
		if closesA[i] == 0 {
			return nil, ErrZeroDenominator
		}
		ratios[i] = closesB[i] / closesA[i]
	}
	return ratios, nil
}

// Bands возвращает границы входа mean ± sigma·σ
func Bands(mean, std, sigma float64) (upper, lower float64) {
	return mean + sigma*std, mean - sigma*std
}

// Classify относит текущее отношение к типу сигнала.
//
// Попадание точно на границу считается выходом за нее.
func Classify(current, upper, lower float64) string {
	switch {
	case current >= upper:
		return models.SignalSellBBuyA
	case current <= lower:
		return models.SignalBuyBSellA
	default:
		return models.SignalHold
	}
}
