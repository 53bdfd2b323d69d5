package models

import "time"

// PendingListing представляет отложенную покупку монеты, ожидающей листинга
//
// Создается когда немедленная сделка невозможна: у символа нет торгуемой
// цены ни на споте, ни на фьючерсах. Мутируется только проходом очереди
// (инкремент attempts, переход статуса).
//
// Инварианты:
//   - attempts монотонно возрастает
//   - покинув статус pending, строка никогда в него не возвращается
type PendingListing struct {
	ID            int64     `json:"id" db:"id"`
	Coin          string    `json:"coin" db:"coin"`                     // BTC
	Pair          string    `json:"pair" db:"pair"`                     // BTCUSDT
	ImpactScore   int       `json:"impact_score" db:"impact_score"`
	TakeProfit    string    `json:"take_profit" db:"take_profit"`       // текстовый описатель, например "+20%"
	StopLoss      string    `json:"stop_loss" db:"stop_loss"`           // например "-5%"
	TradeDuration string    `json:"trade_duration" db:"trade_duration"` // например "2-5 days"
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	LastCheck     time.Time `json:"last_check" db:"last_check"`
	Attempts      int       `json:"attempts" db:"attempts"`
	Status        string    `json:"status" db:"status"`
}

// Статусы отложенного листинга
const (
	ListingStatusPending   = "pending"   // ожидание появления цены
	ListingStatusCompleted = "completed" // цена появилась, сделка создана
	ListingStatusCancelled = "cancelled" // превышен лимит попыток
)

// Hint возвращает описатели сделки, сохраненные при постановке в очередь
func (l *PendingListing) Hint() TradeHint {
	return TradeHint{
		TakeProfit: l.TakeProfit,
		StopLoss:   l.StopLoss,
		Duration:   l.TradeDuration,
	}
}
