package models

// CoinUnspecified - значение поля Coin в нейтральном вердикте анализатора
const CoinUnspecified = "unspecified"

// Уровни срочности события
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Analysis представляет вердикт анализатора по заголовку новости
//
// Получается от внешнего анализатора (LLM). Анализатор сам выполняет
// ограниченные повторы и при неудаче возвращает нейтральный вердикт
// (impact_score = 0, coin = "unspecified") вместо ошибки - такой вердикт
// никогда не должен приводить к сделке и не записывается как обработанный.
type Analysis struct {
	ImpactScore   int    `json:"impact_score"`   // оценка влияния 0-100
	Urgency       string `json:"urgency"`        // low, medium, high
	Reasoning     string `json:"reasoning"`      // краткое объяснение
	Coin          string `json:"coin"`           // рекомендуемая монета (BTC, ETH, ...)
	TakeProfit    string `json:"take_profit"`    // цель, например "+12%" или "2.50"
	StopLoss      string `json:"stop_loss"`      // стоп, например "-5%" или "1.80"
	TradeDuration string `json:"trade_duration"` // срок удержания, например "2-5 days"
	Failed        bool   `json:"-"`              // true для нейтрального вердикта после неудачного анализа
}

// FailedAnalysis возвращает нейтральный вердикт после неудачного анализа
//
// Нейтральный вердикт сигнализирует "анализ не удался": новость не
// помечается обработанной и будет проанализирована повторно на следующем
// цикле опроса.
func FailedAnalysis(reason string) *Analysis {
	return &Analysis{
		ImpactScore: 0,
		Urgency:     UrgencyLow,
		Reasoning:   reason,
		Coin:        CoinUnspecified,
		Failed:      true,
	}
}

// TradeHint - описатели сделки из вердикта анализатора
//
// Поля текстовые: семантически процент или абсолютная цена (TakeProfit,
// StopLoss) и подсказка срока удержания (Duration). Пустые поля заменяются
// настроенными значениями по умолчанию при исполнении.
type TradeHint struct {
	TakeProfit string `json:"take_profit"`
	StopLoss   string `json:"stop_loss"`
	Duration   string `json:"trade_duration"`
}

// HintFromAnalysis извлекает описатели сделки из вердикта
func HintFromAnalysis(a *Analysis) TradeHint {
	if a == nil {
		return TradeHint{}
	}
	return TradeHint{
		TakeProfit: a.TakeProfit,
		StopLoss:   a.StopLoss,
		Duration:   a.TradeDuration,
	}
}
