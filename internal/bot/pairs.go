package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"newstrader/internal/gateway"
	"newstrader/internal/market"
	"newstrader/internal/models"
	"newstrader/internal/notify"
	"newstrader/pkg/utils"
)

// scanPairs выполняет один цикл сканирования настроенных пар
func (e *Engine) scanPairs(ctx context.Context) {
	for _, label := range e.cfg.Pairs.Pairs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := e.checkPair(ctx, label); err != nil {
			log.Printf("Ошибка проверки пары %s: %v", label, err)
		}
	}
}

// checkPair считает статистику отношения и пишет сигнал аудита
//
// Пара с активной позицией пропускается целиком: ни истории, ни
// сигнала. Для остальных сигнал записывается на каждой проверке,
// включая HOLD; пересечение границы входа (включительно) открывает
// позицию.
func (e *Engine) checkPair(ctx context.Context, label string) error {
	assetA, assetB, err := utils.SplitPairLabel(label)
	if err != nil {
		return err
	}

	active, err := e.positions.HasActive(label)
	if err != nil {
		return err
	}
	if active {
		return nil
	}

	quote := e.cfg.Trading.QuoteCurrency
	closesA, err := e.market.DailyCloses(ctx, assetA+quote, e.cfg.Pairs.LookbackDays)
	if err != nil {
		return fmt.Errorf("история %s: %w", assetA, err)
	}
	closesB, err := e.market.DailyCloses(ctx, assetB+quote, e.cfg.Pairs.LookbackDays)
	if err != nil {
		return fmt.Errorf("история %s: %w", assetB, err)
	}

	ratios, err := Ratios(closesB, closesA)
	if err != nil {
		return err
	}
	if len(ratios) < e.cfg.Pairs.MinDays {
		return fmt.Errorf("недостаточно истории: %d дней из %d", len(ratios), e.cfg.Pairs.MinDays)
	}

	mean := Mean(ratios)
	std := StdDev(ratios)
	current := ratios[len(ratios)-1]
	upper, lower := Bands(mean, std, e.cfg.Pairs.EntrySigma)

	signalType := Classify(current, upper, lower)

	signal := &models.PairSignal{
		Pair:         label,
		CheckDate:    time.Now(),
		CurrentRatio: current,
		MeanRatio:    mean,
		StdDev:       std,
		UpperBand:    upper,
		LowerBand:    lower,
		SignalType:   signalType,
	}

	if signalType != models.SignalHold {
		opened, err := e.tryOpenPosition(ctx, label, assetA, assetB, signalType,
			current, mean, std)
		if err != nil {
			log.Printf("Позиция по паре %s не открыта: %v", label, err)
		}
		signal.WasOpened = opened
	}

	RecordPairSignal(signalType)
	if err := e.signals.Create(signal); err != nil {
		return fmt.Errorf("запись сигнала: %w", err)
	}
	e.broadcast("signal", signal)
	return nil
}

// tryOpenPosition открывает хедж-позицию по сигналу
//
// Ноги оцениваются по текущим рыночным ценам, не по дневным закрытиям
// статистики. Обе отправляются в шлюз отдельными поручениями; позиция
// сохраняется только если исполнены обе. Отказ второй ноги оставляет
// первую у шлюза, позиция при этом не создается.
func (e *Engine) tryOpenPosition(ctx context.Context, label, assetA, assetB, direction string,
	current, mean, std float64) (bool, error) {

	quote := e.cfg.Trading.QuoteCurrency
	priceA, _, err := e.market.CurrentPrice(ctx, assetA+quote)
	if err != nil {
		return false, fmt.Errorf("цена %s: %w", assetA, err)
	}
	priceB, _, err := e.market.CurrentPrice(ctx, assetB+quote)
	if err != nil {
		return false, fmt.Errorf("цена %s: %w", assetB, err)
	}

	p := e.cfg.Pairs
	sideA, sideB := gateway.SideBuy, gateway.SideSell
	stopLoss := mean + p.StopLossSigma*std
	if direction == models.DirectionBuyBSellA {
		sideA, sideB = gateway.SideSell, gateway.SideBuy
		stopLoss = mean - p.StopLossSigma*std
	}

	timeout := int64(utils.DefaultTradeDuration / time.Second)

	legA := e.buildPairLeg(assetA+quote, sideA, priceA)
	dealA, err := e.gateway.Submit(ctx, []gateway.Leg{legA}, gateway.TradeTag{
		Tag:         fmt.Sprintf("Пара %s: нога %s", label, assetA),
		DealTimeout: timeout,
		Market:      market.MarketSpot,
	})
	if err != nil {
		RecordTrade("pairs", "failed")
		return false, fmt.Errorf("нога %s: %w", assetA, err)
	}
	RecordTrade("pairs", "submitted")

	legB := e.buildPairLeg(assetB+quote, sideB, priceB)
	dealB, err := e.gateway.Submit(ctx, []gateway.Leg{legB}, gateway.TradeTag{
		Tag:         fmt.Sprintf("Пара %s: нога %s", label, assetB),
		DealTimeout: timeout,
		Market:      market.MarketSpot,
	})
	if err != nil {
		RecordTrade("pairs", "failed")
		PairLegFailures.Inc()
		e.notifier.PairsAlert(ctx,
			fmt.Sprintf("Вторая нога пары %s не исполнена, позиция не открыта", label),
			notify.PairsDetails{
				Pair:          label,
				Direction:     direction,
				CurrentRatio:  current,
				TargetRatio:   mean,
				StopLossRatio: stopLoss,
			})
		return false, fmt.Errorf("нога %s: %w", assetB, err)
	}
	RecordTrade("pairs", "submitted")

	position := &models.PairPosition{
		Pair:          label,
		AssetA:        assetA,
		AssetB:        assetB,
		Direction:     direction,
		EntryRatio:    current,
		EntryDate:     time.Now(),
		TargetRatio:   mean,
		StopLossRatio: stopLoss,
		DealIDA:       &dealA,
		DealIDB:       &dealB,
		Status:        models.PositionStatusActive,
	}
	if err := e.positions.Create(position); err != nil {
		return false, fmt.Errorf("сохранение позиции: %w", err)
	}

	e.notifier.PairsAlert(ctx,
		fmt.Sprintf("Открыта парная позиция %s", label),
		notify.PairsDetails{
			Pair:          label,
			Direction:     direction,
			CurrentRatio:  current,
			TargetRatio:   mean,
			StopLossRatio: stopLoss,
		})
	e.broadcast("position", position)
	return true, nil
}

// buildPairLeg собирает лимитную ногу пары
//
// Наценка проскальзывания прибавляется к цене обеих ног независимо от
// стороны; количество считается от цены с наценкой.
func (e *Engine) buildPairLeg(pair, side string, price float64) gateway.Leg {
	p := e.cfg.Pairs
	adjusted := price * (1 + p.SlippagePercent/100)
	return gateway.Leg{
		Stock:        gateway.StockSpot,
		Pair:         pair,
		Type:         gateway.OrderTypeLimit,
		Side:         side,
		PositionSide: gateway.PositionSideLong,
		Data: gateway.LegData{
			Qty:   p.AllocatePerLeg / adjusted,
			Price: adjusted,
		},
	}
}
