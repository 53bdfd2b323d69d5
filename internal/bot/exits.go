package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"newstrader/internal/models"
	"newstrader/internal/notify"
)

// checkExits проверяет условия выхода для всех активных позиций
func (e *Engine) checkExits(ctx context.Context) {
	positions, err := e.positions.GetActive()
	if err != nil {
		log.Printf("Ошибка чтения активных позиций: %v", err)
		return
	}
	SetOpenPositions(len(positions))

	for _, position := range positions {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := e.checkExit(ctx, position); err != nil {
			log.Printf("Ошибка проверки выхода по паре %s: %v", position.Pair, err)
		}
	}
}

// checkExit закрывает позицию при достижении цели или стоп-лосса
//
// Закрытие чисто учетное: ордера на закрытие шлюзу не отправляются,
// сроки сделок контролирует сам шлюз через deal_timeout.
func (e *Engine) checkExit(ctx context.Context, position *models.PairPosition) error {
	quote := e.cfg.Trading.QuoteCurrency
	priceA, _, err := e.market.CurrentPrice(ctx, position.AssetA+quote)
	if err != nil {
		return fmt.Errorf("цена %s: %w", position.AssetA, err)
	}
	priceB, _, err := e.market.CurrentPrice(ctx, position.AssetB+quote)
	if err != nil {
		return fmt.Errorf("цена %s: %w", position.AssetB, err)
	}
	if priceA == 0 {
		return fmt.Errorf("нулевая цена %s", position.AssetA)
	}
	current := priceB / priceA

	reason, hit := exitReason(position, current)
	if !hit {
		return nil
	}

	pnl := PnlPercent(position.Direction, position.EntryRatio, current)
	if err := e.positions.Close(position.ID, current, time.Now(), pnl); err != nil {
		return fmt.Errorf("закрытие позиции %d: %w", position.ID, err)
	}
	RecordPositionClosed(pnl)

	e.notifier.PairsAlert(ctx,
		fmt.Sprintf("%s: позиция %s закрыта", reason, position.Pair),
		notify.PairsDetails{
			Pair:          position.Pair,
			Direction:     position.Direction,
			CurrentRatio:  current,
			TargetRatio:   position.TargetRatio,
			StopLossRatio: position.StopLossRatio,
			Pnl:           &pnl,
		})
	e.broadcast("position", map[string]interface{}{
		"id":          position.ID,
		"pair":        position.Pair,
		"status":      models.PositionStatusClosed,
		"pnl_percent": pnl,
	})
	return nil
}

// exitReason проверяет достижение границы выхода (включительно)
//
// Для SELL_B_BUY_A вход был выше среднего: цель снизу, стоп сверху.
// Для BUY_B_SELL_A зеркально.
func exitReason(position *models.PairPosition, current float64) (string, bool) {
	switch position.Direction {
	case models.DirectionSellBBuyA:
		if current <= position.TargetRatio {
			return "Цель достигнута", true
		}
		if current >= position.StopLossRatio {
			return "Сработал стоп-лосс", true
		}
	case models.DirectionBuyBSellA:
		if current >= position.TargetRatio {
			return "Цель достигнута", true
		}
		if current <= position.StopLossRatio {
			return "Сработал стоп-лосс", true
		}
	}
	return "", false
}

// PnlPercent считает доходность позиции в процентах
//
// Базой служит изменение отношения B/A от входа к выходу. Для
// SELL_B_BUY_A позиция зарабатывает на падении отношения, поэтому знак
// инвертируется.
func PnlPercent(direction string, entryRatio, exitRatio float64) float64 {
	if entryRatio == 0 {
		return 0
	}
	raw := (exitRatio - entryRatio) / entryRatio * 100
	if direction == models.DirectionSellBBuyA {
		return -raw
	}
	return raw
}
