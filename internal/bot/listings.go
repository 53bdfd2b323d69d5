package bot

import (
	"context"
	"fmt"
	"log"

	"newstrader/internal/gateway"
	"newstrader/internal/models"
)

// processListings выполняет один проход очереди отложенных листингов
//
// Заявки обрабатываются от старых к новым. Для каждой делается одна
// проверка цены за проход: неудача увеличивает счетчик попыток, успех
// создает сделку и завершает заявку. Исчерпание лимита попыток отменяет
// заявку.
func (e *Engine) processListings(ctx context.Context) {
	items, err := e.listings.GetPending()
	if err != nil {
		log.Printf("Ошибка чтения очереди листингов: %v", err)
		return
	}
	SetPendingListings(len(items))

	for _, listing := range items {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.checkListing(ctx, listing)
	}
}

// checkListing обрабатывает одну заявку очереди
func (e *Engine) checkListing(ctx context.Context, listing *models.PendingListing) {
	if models.IsTerminalListing(listing.Status) {
		return
	}

	price, marketType, err := e.market.CurrentPrice(ctx, listing.Pair)
	if err != nil {
		if err := e.listings.RecordAttempt(listing.ID); err != nil {
			log.Printf("Ошибка учета попытки для заявки %d: %v", listing.ID, err)
			return
		}
		if listing.Attempts+1 >= e.cfg.Trading.MaxAttempts {
			e.cancelListing(ctx, listing)
		}
		return
	}

	legs, timeout := e.buildNewsLegs(listing.Pair, price, marketType, listing.Hint())
	tag := gateway.TradeTag{
		Tag:         fmt.Sprintf("Отложенный листинг %s", listing.Coin),
		DealTimeout: timeout,
		Market:      marketType,
	}
	if _, err := e.gateway.Submit(ctx, legs, tag); err != nil {
		// заявка остается pending и будет повторена на следующем проходе
		log.Printf("Сделка по листингу %s не создана: %v", listing.Coin, err)
		RecordTrade("listing", "failed")
		return
	}
	RecordTrade("listing", "submitted")

	if err := e.listings.MarkCompleted(listing.ID); err != nil {
		log.Printf("Ошибка завершения заявки %d: %v", listing.ID, err)
		return
	}
	RecordListingOutcome("completed")

	e.notifier.TradeUpdate(ctx,
		fmt.Sprintf("Листинг %s состоялся, сделка создана", listing.Coin),
		listing.Coin, listing.Hint())
	e.broadcast("listing", map[string]interface{}{
		"coin":   listing.Coin,
		"status": models.ListingStatusCompleted,
	})
}

// cancelListing отменяет заявку после исчерпания лимита попыток
func (e *Engine) cancelListing(ctx context.Context, listing *models.PendingListing) {
	if err := e.listings.MarkCancelled(listing.ID); err != nil {
		log.Printf("Ошибка отмены заявки %d: %v", listing.ID, err)
		return
	}
	RecordListingOutcome("cancelled")

	e.notifier.TradeUpdate(ctx,
		fmt.Sprintf("Заявка на %s отменена: лимит попыток (%d) исчерпан", listing.Coin, e.cfg.Trading.MaxAttempts),
		listing.Coin, listing.Hint())
	e.broadcast("listing", map[string]interface{}{
		"coin":   listing.Coin,
		"status": models.ListingStatusCancelled,
	})
}
