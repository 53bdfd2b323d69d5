package bot

import (
	"context"
	"log"
	"regexp"

	"newstrader/internal/models"
	"newstrader/pkg/utils"
)

// tickerPattern извлекает тикер из заголовка вида "Binance Will List Foo (FOO)"
var tickerPattern = regexp.MustCompile(`\(([A-Z0-9]{2,10})\)`)

// processNews выполняет один цикл опроса ленты анонсов
func (e *Engine) processNews(ctx context.Context) {
	articles, err := e.news.Latest(ctx)
	if err != nil {
		log.Printf("Ошибка получения ленты анонсов: %v", err)
		FeedErrors.Inc()
		return
	}

	for _, article := range articles {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e.processArticle(ctx, article)
	}
}

// processArticle обрабатывает одну новость
//
// Обработка идемпотентна: уже виденные id пропускаются, запись в
// processed_news создается ровно один раз - после полной обработки
// (уведомление и, при достаточном влиянии, выставление сделки).
// Нейтральный вердикт анализатора и отказ шлюза новость обработанной
// не помечают - она будет обработана повторно на следующем цикле.
func (e *Engine) processArticle(ctx context.Context, article models.NewsArticle) {
	seen, err := e.events.Exists(article.ID)
	if err != nil {
		log.Printf("Ошибка проверки новости %s: %v", article.ID, err)
		return
	}
	if seen {
		RecordNews("skipped")
		return
	}

	analysis := e.analyzer.Analyze(ctx, article.Title)
	if analysis.Failed {
		log.Printf("Анализ новости %s не удался, будет повторен: %s", article.ID, analysis.Reasoning)
		RecordNews("failed")
		return
	}

	e.notifier.NewsAlert(ctx, article, analysis)
	e.broadcast("news", map[string]interface{}{
		"article":  article,
		"analysis": analysis,
	})

	if analysis.ImpactScore < e.cfg.Trading.ImpactThreshold {
		e.markProcessed(article, nil)
		RecordNews("below_threshold")
		return
	}

	coin := e.resolveCoin(analysis.Coin, article.Title)
	dealID, queued, err := e.executeNewsTrade(ctx, coin, models.HintFromAnalysis(analysis), article.Title, analysis.ImpactScore)
	switch {
	case queued:
		e.markProcessed(article, nil)
		RecordNews("queued")
	case err != nil:
		log.Printf("Сделка по новости %s не создана, будет повторена: %v", article.ID, err)
		RecordNews("trade_failed")
	default:
		e.markProcessed(article, &dealID)
		RecordNews("traded")
	}
}

// markProcessed записывает новость как обработанную вместе с номером
// сделки, если она была создана
func (e *Engine) markProcessed(article models.NewsArticle, dealID *int64) {
	inserted, err := e.events.Create(&models.ProcessedEvent{
		ID:     article.ID,
		Title:  article.Title,
		DealID: dealID,
	})
	if err != nil {
		log.Printf("Ошибка записи новости %s: %v", article.ID, err)
		return
	}
	if !inserted {
		log.Printf("Новость %s уже записана конкурентной обработкой", article.ID)
	}
}

// resolveCoin определяет торгуемую монету для новости
//
// Приоритет: монета из вердикта анализатора, затем тикер в скобках из
// заголовка, затем монета по умолчанию.
func (e *Engine) resolveCoin(coin, title string) string {
	if coin != "" && coin != models.CoinUnspecified {
		return utils.NormalizeCoin(coin)
	}
	if m := tickerPattern.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	return e.cfg.Trading.DefaultCoin
}
