package models

import "time"

// PairSignal - неизменяемая запись аудита проверки пары
//
// Добавляется на каждом цикле сканирования для каждой пары, независимо от
// исхода. Используется для аудита стратегии и бэктеста; после вставки
// никогда не мутируется и не удаляется. Флаг WasOpened выставляется до
// вставки, если по сигналу была открыта позиция.
type PairSignal struct {
	ID           int64     `json:"id" db:"id"`
	Pair         string    `json:"pair" db:"pair"`
	CheckDate    time.Time `json:"check_date" db:"check_date"`
	CurrentRatio float64   `json:"current_ratio" db:"current_ratio"`
	MeanRatio    float64   `json:"mean_ratio" db:"mean_ratio"`
	StdDev       float64   `json:"std_dev" db:"std_dev"`
	UpperBand    float64   `json:"upper_band" db:"upper_band"`
	LowerBand    float64   `json:"lower_band" db:"lower_band"`
	SignalType   string    `json:"signal_type" db:"signal_type"`
	WasOpened    bool      `json:"was_opened" db:"was_opened"`
}

// Типы сигналов
const (
	SignalSellBBuyA = "SELL_B_BUY_A"
	SignalBuyBSellA = "BUY_B_SELL_A"
	SignalHold      = "HOLD"
)
