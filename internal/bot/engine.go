// Package bot содержит ядро торгового конвейера: новостной цикл,
// очередь отложенных листингов и парную стратегию.
package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"newstrader/internal/config"
	"newstrader/internal/gateway"
	"newstrader/internal/models"
	"newstrader/internal/notify"
)

// NewsSource поставляет свежие анонсы
type NewsSource interface {
	Latest(ctx context.Context) ([]models.NewsArticle, error)
}

// Analyzer выдает вердикт по заголовку новости
//
// При неудаче возвращает нейтральный вердикт (Failed = true), не ошибку.
type Analyzer interface {
	Analyze(ctx context.Context, title string) *models.Analysis
}

// MarketData поставляет рыночные цены
//
// CurrentPrice вместе с ценой возвращает рынок (spot или futures),
// на котором символ найден.
type MarketData interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, string, error)
	DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error)
}

// OrderGateway принимает торговые поручения
type OrderGateway interface {
	Submit(ctx context.Context, legs []gateway.Leg, tag gateway.TradeTag) (int64, error)
}

// EventStore хранит обработанные новости
type EventStore interface {
	Exists(id string) (bool, error)
	Create(event *models.ProcessedEvent) (bool, error)
}

// ListingStore хранит очередь отложенных листингов
type ListingStore interface {
	Create(listing *models.PendingListing) error
	GetPending() ([]*models.PendingListing, error)
	RecordAttempt(id int64) error
	MarkCompleted(id int64) error
	MarkCancelled(id int64) error
}

// PositionStore хранит парные позиции
type PositionStore interface {
	Create(position *models.PairPosition) error
	GetActive() ([]*models.PairPosition, error)
	HasActive(pair string) (bool, error)
	Close(id int64, exitRatio float64, exitDate time.Time, pnlPercent float64) error
}

// SignalStore хранит журнал сигналов пар
type SignalStore interface {
	Create(signal *models.PairSignal) error
}

// Broadcaster рассылает события конвейера подписчикам WebSocket
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// Deps - зависимости движка
type Deps struct {
	Config    *config.Config
	News      NewsSource
	Analyzer  Analyzer
	Market    MarketData
	Gateway   OrderGateway
	Events    EventStore
	Listings  ListingStore
	Positions PositionStore
	Signals   SignalStore
	Notifier  notify.Notifier
	Hub       Broadcaster // может быть nil
}

// Engine - движок торгового конвейера
//
// Запускает три фоновых воркера: новостной цикл, проход очереди
// листингов и парную стратегию (скан + проверка выходов). Все циклы
// останавливаются отменой контекста.
type Engine struct {
	cfg       *config.Config
	news      NewsSource
	analyzer  Analyzer
	market    MarketData
	gateway   OrderGateway
	events    EventStore
	listings  ListingStore
	positions PositionStore
	signals   SignalStore
	notifier  notify.Notifier
	hub       Broadcaster
}

// NewEngine создает движок конвейера
func NewEngine(deps Deps) *Engine {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Engine{
		cfg:       deps.Config,
		news:      deps.News,
		analyzer:  deps.Analyzer,
		market:    deps.Market,
		gateway:   deps.Gateway,
		events:    deps.Events,
		listings:  deps.Listings,
		positions: deps.Positions,
		signals:   deps.Signals,
		notifier:  notifier,
		hub:       deps.Hub,
	}
}

// Run запускает воркеры и блокируется до отмены контекста
func (e *Engine) Run(ctx context.Context) {
	log.Println("Торговый конвейер запущен")

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		e.runNewsWorker(ctx)
	}()
	go func() {
		defer wg.Done()
		e.runListingsWorker(ctx)
	}()
	go func() {
		defer wg.Done()
		e.runPairsWorker(ctx)
	}()

	wg.Wait()
	log.Println("Торговый конвейер остановлен")
}

// runNewsWorker опрашивает ленту анонсов с настроенным интервалом
func (e *Engine) runNewsWorker(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Intervals.News)
	defer ticker.Stop()

	e.cycle(ctx, "news", e.processNews)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.cycle(ctx, "news", e.processNews)
		}
	}
}

// runListingsWorker проходит очередь листингов с настроенным интервалом
func (e *Engine) runListingsWorker(ctx context.Context) {
	if !e.sleepCtx(ctx, e.cfg.Intervals.StartupDelay) {
		return
	}

	ticker := time.NewTicker(e.cfg.Intervals.Listings)
	defer ticker.Stop()

	e.cycle(ctx, "listings", e.processListings)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.cycle(ctx, "listings", e.processListings)
		}
	}
}

// runPairsWorker сканирует пары и проверяет выходы с настроенным интервалом
func (e *Engine) runPairsWorker(ctx context.Context) {
	if !e.sleepCtx(ctx, e.cfg.Intervals.StartupDelay) {
		return
	}

	ticker := time.NewTicker(e.cfg.Intervals.Pairs)
	defer ticker.Stop()

	e.cycle(ctx, "pairs", e.scanPairs)
	e.cycle(ctx, "exits", e.checkExits)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.cycle(ctx, "pairs", e.scanPairs)
			e.cycle(ctx, "exits", e.checkExits)
		}
	}
}

// cycle выполняет один проход воркера: паника не роняет движок,
// длительность прохода уходит в метрики
func (e *Engine) cycle(ctx context.Context, worker string, fn func(context.Context)) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Паника в цикле %s: %v", worker, r)
		}
		ObserveCycle(worker, time.Since(start).Seconds())
	}()
	fn(ctx)
}

// sleepCtx ждет d или отмены контекста, возвращает false при отмене
func (e *Engine) sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// broadcast рассылает событие подписчикам, если хаб подключен
func (e *Engine) broadcast(event string, payload interface{}) {
	if e.hub != nil {
		e.hub.Broadcast(event, payload)
	}
}
