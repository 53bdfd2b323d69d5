package bot

import (
	"context"
	"errors"
	"time"

	"newstrader/internal/gateway"
	"newstrader/internal/market"
	"newstrader/internal/models"
	"newstrader/pkg/retry"
	"newstrader/pkg/utils"
)

// executeNewsTrade создает сделку по новостному сигналу
//
// Количество считается от цены с наценкой проскальзывания, а уровни
// тейк-профита и стоп-лосса от наблюдаемой цены без наценки. Если у
// символа нет торгуемой цены, заявка ставится в очередь листингов
// (queued = true) вместо ошибки.
func (e *Engine) executeNewsTrade(ctx context.Context, coin string, hint models.TradeHint, title string, impact int) (dealID int64, queued bool, err error) {
	pair := utils.NormalizePair(coin+e.cfg.Trading.QuoteCurrency, e.cfg.Trading.QuoteCurrency)

	price, marketType, err := e.lookupPrice(ctx, pair)
	if err != nil {
		if errors.Is(err, market.ErrSymbolNotListed) {
			if qErr := e.enqueueListing(coin, pair, impact, hint); qErr != nil {
				return 0, false, qErr
			}
			e.notifier.TradeUpdate(ctx, "Монета еще не торгуется, заявка поставлена в очередь листингов", coin, hint)
			return 0, true, nil
		}
		return 0, false, err
	}

	legs, timeout := e.buildNewsLegs(pair, price, marketType, hint)
	dealID, err = e.gateway.Submit(ctx, legs, gateway.TradeTag{
		Tag:         title,
		DealTimeout: timeout,
		Market:      marketType,
	})
	if err != nil {
		RecordTrade("news", "failed")
		return 0, false, err
	}

	RecordTrade("news", "submitted")
	e.broadcast("trade", map[string]interface{}{
		"deal_id": dealID,
		"pair":    pair,
		"title":   title,
	})
	return dealID, false, nil
}

// lookupPrice получает цену с ограниченными повторами
func (e *Engine) lookupPrice(ctx context.Context, pair string) (float64, string, error) {
	cfg := retry.PriceLookupConfig()
	cfg.MaxRetries = e.cfg.Trading.PriceMaxRetries
	cfg.InitialDelay = e.cfg.Trading.PriceRetryDelay
	cfg.MaxDelay = e.cfg.Trading.PriceRetryDelay

	var marketType string
	price, err := retry.DoWithResult(ctx, func() (float64, error) {
		p, m, err := e.market.CurrentPrice(ctx, pair)
		if err == nil {
			marketType = m
		}
		return p, err
	}, cfg)
	if err != nil {
		RecordPriceLookupFailure()
		return 0, "", err
	}
	return price, marketType, nil
}

// buildNewsLegs собирает пакет из двух ног: лимитная покупка по цене с
// наценкой и OCO-продажа с уровнями от цены без наценки. Обе ноги
// адресуются бирже рынка, на котором нашлась цена.
func (e *Engine) buildNewsLegs(pair string, price float64, marketType string, hint models.TradeHint) ([]gateway.Leg, int64) {
	t := e.cfg.Trading
	adjusted := price * (1 + t.SlippagePercent/100)
	qty := t.AllocateUSDT / adjusted
	stock := gateway.StockForMarket(marketType)

	takeProfit := utils.TakeProfitLevel(price, hint.TakeProfit, t.DefaultTakeProfit)
	stopLoss := utils.StopLossLevel(price, hint.StopLoss, t.DefaultStopLoss)
	duration := utils.ParseTradeDuration(hint.Duration, utils.DefaultTradeDuration)

	legs := []gateway.Leg{
		{
			Stock:        stock,
			Pair:         pair,
			Type:         gateway.OrderTypeLimit,
			Side:         gateway.SideBuy,
			PositionSide: gateway.PositionSideLong,
			Data:         gateway.LegData{Qty: qty, Price: adjusted},
		},
		{
			Stock:        stock,
			Pair:         pair,
			Type:         gateway.OrderTypeOCO,
			Side:         gateway.SideSell,
			PositionSide: gateway.PositionSideLong,
			Data:         gateway.LegData{Qty: qty, Price: takeProfit, StopLoss: stopLoss},
		},
	}
	return legs, int64(duration / time.Second)
}

// enqueueListing ставит заявку в очередь ожидания листинга
func (e *Engine) enqueueListing(coin, pair string, impact int, hint models.TradeHint) error {
	return e.listings.Create(&models.PendingListing{
		Coin:          coin,
		Pair:          pair,
		ImpactScore:   impact,
		TakeProfit:    hint.TakeProfit,
		StopLoss:      hint.StopLoss,
		TradeDuration: hint.Duration,
	})
}
