package bot

import (
	"context"
	"errors"
	"testing"

	"newstrader/internal/gateway"
	"newstrader/internal/market"
	"newstrader/internal/models"
)

func TestBuildNewsLegs(t *testing.T) {
	engine := newTestEngine(Deps{})
	hint := models.TradeHint{TakeProfit: "+20%", StopLoss: "-5%", Duration: "2-5 days"}

	legs, timeout := engine.buildNewsLegs("BTCUSDT", 100, market.MarketSpot, hint)

	if len(legs) != 2 {
		t.Fatalf("ожидалось 2 ноги, получено %d", len(legs))
	}

	buy := legs[0]
	if buy.Type != gateway.OrderTypeLimit || buy.Side != gateway.SideBuy {
		t.Errorf("первая нога должна быть лимитной покупкой, получено %s/%s", buy.Type, buy.Side)
	}
	if buy.Stock != gateway.StockSpot || buy.PositionSide != gateway.PositionSideLong {
		t.Errorf("биржа/сторона позиции = %s/%s, ожидалось binance_spot/long", buy.Stock, buy.PositionSide)
	}
	// цена покупки с наценкой проскальзывания 1%
	if !almostEqual(buy.Data.Price, 101) {
		t.Errorf("цена покупки = %v, ожидалось 101", buy.Data.Price)
	}
	if !almostEqual(buy.Data.Qty, 10.0/101) {
		t.Errorf("количество = %v, ожидалось %v", buy.Data.Qty, 10.0/101)
	}

	// уровни выхода считаются от цены без наценки
	sell := legs[1]
	if sell.Type != gateway.OrderTypeOCO || sell.Side != gateway.SideSell {
		t.Errorf("вторая нога должна быть OCO-продажей, получено %s/%s", sell.Type, sell.Side)
	}
	if !almostEqual(sell.Data.Price, 120) {
		t.Errorf("тейк-профит = %v, ожидалось 120", sell.Data.Price)
	}
	if !almostEqual(sell.Data.StopLoss, 95) {
		t.Errorf("стоп-лосс = %v, ожидалось 95", sell.Data.StopLoss)
	}
	if !almostEqual(sell.Data.Qty, buy.Data.Qty) {
		t.Error("количество обеих ног должно совпадать")
	}

	// "2-5 days" - верхняя граница диапазона, 5 суток
	if timeout != 432000 {
		t.Errorf("deal_timeout = %d, ожидалось 432000", timeout)
	}
}

func TestBuildNewsLegsDefaults(t *testing.T) {
	engine := newTestEngine(Deps{})

	legs, timeout := engine.buildNewsLegs("BTCUSDT", 100, market.MarketSpot, models.TradeHint{})

	// значения по умолчанию: +20% / -5%, срок 7 суток
	if !almostEqual(legs[1].Data.Price, 120) {
		t.Errorf("тейк-профит по умолчанию = %v, ожидалось 120", legs[1].Data.Price)
	}
	if !almostEqual(legs[1].Data.StopLoss, 95) {
		t.Errorf("стоп-лосс по умолчанию = %v, ожидалось 95", legs[1].Data.StopLoss)
	}
	if timeout != 604800 {
		t.Errorf("deal_timeout по умолчанию = %d, ожидалось 604800", timeout)
	}
}

func TestBuildNewsLegsPriceHints(t *testing.T) {
	engine := newTestEngine(Deps{})
	hint := models.TradeHint{TakeProfit: "2.50", StopLoss: "1.80"}

	legs, _ := engine.buildNewsLegs("FOOUSDT", 2.0, market.MarketSpot, hint)

	// описатели без процента трактуются как абсолютные уровни
	if !almostEqual(legs[1].Data.Price, 2.50) {
		t.Errorf("тейк-профит = %v, ожидалось 2.50", legs[1].Data.Price)
	}
	if !almostEqual(legs[1].Data.StopLoss, 1.80) {
		t.Errorf("стоп-лосс = %v, ожидалось 1.80", legs[1].Data.StopLoss)
	}
}

func TestLookupPriceRetries(t *testing.T) {
	transient := errors.New("временная ошибка")
	mkt := &mockMarket{
		prices:        map[string]float64{"BTCUSDT": 50000},
		priceErrsOnce: map[string][]error{"BTCUSDT": {transient, transient}},
	}
	engine := newTestEngine(Deps{Market: mkt})

	price, marketType, err := engine.lookupPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if price != 50000 {
		t.Errorf("цена = %v, ожидалось 50000", price)
	}
	if marketType != market.MarketSpot {
		t.Errorf("рынок = %q, ожидался spot", marketType)
	}
	if mkt.priceCalls["BTCUSDT"] != 3 {
		t.Errorf("ожидалось 3 обращения за ценой, получено %d", mkt.priceCalls["BTCUSDT"])
	}
}

func TestLookupPriceExhaustsRetries(t *testing.T) {
	transient := errors.New("нет цены")
	mkt := &mockMarket{priceErrs: map[string]error{"BTCUSDT": transient}}
	engine := newTestEngine(Deps{Market: mkt})

	if _, _, err := engine.lookupPrice(context.Background(), "BTCUSDT"); err == nil {
		t.Fatal("ожидалась ошибка после исчерпания попыток")
	}
	if mkt.priceCalls["BTCUSDT"] != 3 {
		t.Errorf("ожидалось 3 обращения за ценой, получено %d", mkt.priceCalls["BTCUSDT"])
	}
}

func TestExecuteNewsTradeFuturesMarket(t *testing.T) {
	mkt := &mockMarket{
		prices:  map[string]float64{"BTCUSDT": 50000},
		markets: map[string]string{"BTCUSDT": market.MarketFutures},
	}
	gw := &mockGateway{}
	engine := newTestEngine(Deps{Market: mkt, Gateway: gw})

	if _, _, err := engine.executeNewsTrade(context.Background(), "BTC", models.TradeHint{}, "заголовок", 80); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(gw.calls) != 1 {
		t.Fatalf("ожидалось 1 поручение, получено %d", len(gw.calls))
	}
	if gw.calls[0].tag.Market != market.MarketFutures {
		t.Errorf("рынок в теге = %q, ожидался futures", gw.calls[0].tag.Market)
	}
	if gw.calls[0].legs[0].Stock != gateway.StockFutures {
		t.Errorf("биржа в ноге = %q, ожидалась binance_futures", gw.calls[0].legs[0].Stock)
	}
}

func TestExecuteNewsTradeSubmitFailure(t *testing.T) {
	mkt := &mockMarket{prices: map[string]float64{"BTCUSDT": 50000}}
	gw := &mockGateway{errs: []error{gateway.ErrRejected}}
	listings := &mockListings{}
	engine := newTestEngine(Deps{Market: mkt, Gateway: gw, Listings: listings})

	_, queued, err := engine.executeNewsTrade(context.Background(), "BTC", models.TradeHint{}, "Новость", 80)

	if queued {
		t.Error("отказ шлюза не ставит заявку в очередь листингов")
	}
	if !errors.Is(err, gateway.ErrRejected) {
		t.Errorf("ожидалась ошибка шлюза, получено %v", err)
	}
	if len(listings.created) != 0 {
		t.Error("очередь листингов не должна пополняться при отказе шлюза")
	}
}
