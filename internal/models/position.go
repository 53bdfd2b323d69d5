package models

import "time"

// PairPosition представляет открытую хедж-позицию pairs trading
//
// Создается атомарно только если исполнены обе ноги. Инвариант: не более
// одной active позиции на метку пары в любой момент. Мутируется один раз -
// при закрытии (статус closed, заполнение exit-полей); никогда не
// переоткрывается.
type PairPosition struct {
	ID            int64      `json:"id" db:"id"`
	Pair          string     `json:"pair" db:"pair"`                       // метка пары, например "BTC/ETH"
	AssetA        string     `json:"asset_a" db:"asset_a"`                 // BTC
	AssetB        string     `json:"asset_b" db:"asset_b"`                 // ETH
	Direction     string     `json:"direction" db:"direction"`             // SELL_B_BUY_A, BUY_B_SELL_A
	EntryRatio    float64    `json:"entry_ratio" db:"entry_ratio"`
	EntryDate     time.Time  `json:"entry_date" db:"entry_date"`
	TargetRatio   float64    `json:"target_ratio" db:"target_ratio"`       // всегда среднее (возврат к mean)
	StopLossRatio float64    `json:"stop_loss_ratio" db:"stop_loss_ratio"` // направленная 3σ-полоса
	DealIDA       *int64     `json:"deal_id_a,omitempty" db:"deal_id_a"`   // сделка ноги A
	DealIDB       *int64     `json:"deal_id_b,omitempty" db:"deal_id_b"`   // сделка ноги B
	Status        string     `json:"status" db:"status"`
	ExitRatio     *float64   `json:"exit_ratio,omitempty" db:"exit_ratio"`
	ExitDate      *time.Time `json:"exit_date,omitempty" db:"exit_date"`
	PnlPercent    *float64   `json:"pnl_percent,omitempty" db:"pnl_percent"`
}

// Направления позиции
const (
	DirectionSellBBuyA = "SELL_B_BUY_A" // B переоценен относительно A: шорт B, лонг A
	DirectionBuyBSellA = "BUY_B_SELL_A" // B недооценен относительно A: лонг B, шорт A
)

// Статусы позиции
const (
	PositionStatusActive = "active"
	PositionStatusClosed = "closed"
)
