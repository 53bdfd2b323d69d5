package bot

import (
	"context"
	"sync"
	"time"

	"newstrader/internal/config"
	"newstrader/internal/gateway"
	"newstrader/internal/market"
	"newstrader/internal/models"
	"newstrader/internal/notify"
)

// Ручные моки зависимостей движка

func testConfig() *config.Config {
	return &config.Config{
		Trading: config.TradingConfig{
			ImpactThreshold:   64,
			AllocateUSDT:      10,
			SlippagePercent:   1.0,
			DefaultTakeProfit: 20,
			DefaultStopLoss:   5,
			DefaultCoin:       "BTC",
			QuoteCurrency:     "USDT",
			PriceMaxRetries:   3,
			PriceRetryDelay:   time.Millisecond,
			MaxAttempts:       240,
		},
		Pairs: config.PairsConfig{
			Pairs:           []string{"BTC/ETH"},
			LookbackDays:    30,
			MinDays:         30,
			EntrySigma:      2.0,
			StopLossSigma:   3.0,
			AllocatePerLeg:  5,
			SlippagePercent: 1.0,
		},
		Intervals: config.IntervalsConfig{
			News:     time.Hour,
			Listings: time.Hour,
			Pairs:    time.Hour,
		},
	}
}

type mockNews struct {
	articles []models.NewsArticle
	err      error
}

func (m *mockNews) Latest(ctx context.Context) ([]models.NewsArticle, error) {
	return m.articles, m.err
}

type mockAnalyzer struct {
	analysis *models.Analysis
	calls    int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, title string) *models.Analysis {
	m.calls++
	if m.analysis == nil {
		return models.FailedAnalysis("мок без вердикта")
	}
	return m.analysis
}

type mockMarket struct {
	mu          sync.Mutex
	prices      map[string]float64
	priceErrs   map[string]error
	closes      map[string][]float64
	closesErrs  map[string]error
	priceCalls  map[string]int
	closesCalls int

	// priceErrsOnce задает ошибки первых вызовов, после исчерпания
	// возвращается prices[symbol]
	priceErrsOnce map[string][]error

	// markets задает рынок по символу, по умолчанию spot
	markets map[string]string
}

func (m *mockMarket) CurrentPrice(ctx context.Context, symbol string) (float64, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.priceCalls == nil {
		m.priceCalls = make(map[string]int)
	}
	m.priceCalls[symbol]++

	if queue := m.priceErrsOnce[symbol]; len(queue) > 0 {
		err := queue[0]
		m.priceErrsOnce[symbol] = queue[1:]
		if err != nil {
			return 0, "", err
		}
	} else if err := m.priceErrs[symbol]; err != nil {
		return 0, "", err
	}
	marketType := m.markets[symbol]
	if marketType == "" {
		marketType = market.MarketSpot
	}
	return m.prices[symbol], marketType, nil
}

func (m *mockMarket) DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	m.mu.Lock()
	m.closesCalls++
	m.mu.Unlock()
	if err := m.closesErrs[symbol]; err != nil {
		return nil, err
	}
	return m.closes[symbol], nil
}

type submitCall struct {
	legs []gateway.Leg
	tag  gateway.TradeTag
}

type mockGateway struct {
	mu      sync.Mutex
	calls   []submitCall
	dealIDs []int64
	errs    []error
	nextID  int64
}

func (m *mockGateway) Submit(ctx context.Context, legs []gateway.Leg, tag gateway.TradeTag) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.calls)
	m.calls = append(m.calls, submitCall{legs: legs, tag: tag})

	if i < len(m.errs) && m.errs[i] != nil {
		return 0, m.errs[i]
	}
	if i < len(m.dealIDs) {
		return m.dealIDs[i], nil
	}
	m.nextID++
	return m.nextID, nil
}

type mockEvents struct {
	existing map[string]bool
	created  []*models.ProcessedEvent

	existsErr error
	createErr error
	// duplicate имитирует гонку: Create возвращает inserted = false
	duplicate bool
}

func (m *mockEvents) Exists(id string) (bool, error) {
	return m.existing[id], m.existsErr
}

func (m *mockEvents) Create(event *models.ProcessedEvent) (bool, error) {
	if m.createErr != nil {
		return false, m.createErr
	}
	if m.duplicate {
		return false, nil
	}
	m.created = append(m.created, event)
	return true, nil
}

type mockListings struct {
	pending   []*models.PendingListing
	created   []*models.PendingListing
	attempts  []int64
	completed []int64
	cancelled []int64
	createErr error
}

func (m *mockListings) Create(listing *models.PendingListing) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, listing)
	return nil
}

func (m *mockListings) GetPending() ([]*models.PendingListing, error) { return m.pending, nil }

func (m *mockListings) RecordAttempt(id int64) error {
	m.attempts = append(m.attempts, id)
	return nil
}

func (m *mockListings) MarkCompleted(id int64) error {
	m.completed = append(m.completed, id)
	return nil
}

func (m *mockListings) MarkCancelled(id int64) error {
	m.cancelled = append(m.cancelled, id)
	return nil
}

type closeCall struct {
	id        int64
	exitRatio float64
	pnl       float64
}

type mockPositions struct {
	active    []*models.PairPosition
	hasActive bool
	created   []*models.PairPosition
	closed    []closeCall
	createErr error
}

func (m *mockPositions) Create(position *models.PairPosition) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, position)
	return nil
}

func (m *mockPositions) GetActive() ([]*models.PairPosition, error) { return m.active, nil }

func (m *mockPositions) HasActive(pair string) (bool, error) { return m.hasActive, nil }

func (m *mockPositions) Close(id int64, exitRatio float64, exitDate time.Time, pnlPercent float64) error {
	m.closed = append(m.closed, closeCall{id: id, exitRatio: exitRatio, pnl: pnlPercent})
	return nil
}

type mockSignals struct {
	created []*models.PairSignal
}

func (m *mockSignals) Create(signal *models.PairSignal) error {
	m.created = append(m.created, signal)
	return nil
}

type mockNotifier struct {
	newsAlerts   []models.NewsArticle
	tradeUpdates []string
	pairsAlerts  []string
}

func (m *mockNotifier) NewsAlert(ctx context.Context, article models.NewsArticle, analysis *models.Analysis) {
	m.newsAlerts = append(m.newsAlerts, article)
}

func (m *mockNotifier) TradeUpdate(ctx context.Context, title, coin string, hint models.TradeHint) {
	m.tradeUpdates = append(m.tradeUpdates, title)
}

func (m *mockNotifier) PairsAlert(ctx context.Context, text string, details notify.PairsDetails) {
	m.pairsAlerts = append(m.pairsAlerts, text)
}

// newTestEngine собирает движок на моках
func newTestEngine(deps Deps) *Engine {
	if deps.Config == nil {
		deps.Config = testConfig()
	}
	if deps.News == nil {
		deps.News = &mockNews{}
	}
	if deps.Analyzer == nil {
		deps.Analyzer = &mockAnalyzer{}
	}
	if deps.Market == nil {
		deps.Market = &mockMarket{}
	}
	if deps.Gateway == nil {
		deps.Gateway = &mockGateway{}
	}
	if deps.Events == nil {
		deps.Events = &mockEvents{}
	}
	if deps.Listings == nil {
		deps.Listings = &mockListings{}
	}
	if deps.Positions == nil {
		deps.Positions = &mockPositions{}
	}
	if deps.Signals == nil {
		deps.Signals = &mockSignals{}
	}
	if deps.Notifier == nil {
		deps.Notifier = &mockNotifier{}
	}
	return NewEngine(deps)
}
