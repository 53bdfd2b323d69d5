package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики Prometheus торгового конвейера

// ============ Новостной цикл ============

var (
	// NewsProcessed - результаты обработки новостей
	NewsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newstrader",
		Subsystem: "news",
		Name:      "processed_total",
		Help:      "Результаты обработки новостей: skipped, failed, below_threshold, traded, queued, trade_failed",
	}, []string{"result"})

	// FeedErrors - ошибки опроса источника анонсов
	FeedErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newstrader",
		Subsystem: "news",
		Name:      "feed_errors_total",
		Help:      "Ошибки получения ленты анонсов",
	})
)

// ============ Исполнение сделок ============

var (
	// TradesSubmitted - поручения, отправленные в шлюз
	TradesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newstrader",
		Subsystem: "trading",
		Name:      "trades_total",
		Help:      "Поручения шлюзу по источнику (news, listing, pairs) и результату (submitted, failed)",
	}, []string{"source", "result"})

	// PendingListings - текущий размер очереди отложенных листингов
	PendingListings = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "newstrader",
		Subsystem: "trading",
		Name:      "pending_listings",
		Help:      "Заявки в статусе pending на момент последнего прохода очереди",
	})

	// PriceLookupFailures - неудачные обращения за ценой (после повторов)
	PriceLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newstrader",
		Subsystem: "trading",
		Name:      "price_lookup_failures_total",
		Help:      "Обращения за ценой, не давшие результата после всех повторов",
	})

	// ListingOutcomes - терминальные исходы отложенных листингов
	ListingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newstrader",
		Subsystem: "trading",
		Name:      "listing_outcomes_total",
		Help:      "Исходы заявок очереди листингов: completed, cancelled",
	}, []string{"outcome"})
)

// ============ Парная стратегия ============

var (
	// PairSignals - сигналы сканера пар
	PairSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "newstrader",
		Subsystem: "pairs",
		Name:      "signals_total",
		Help:      "Сигналы по типу: SELL_B_BUY_A, BUY_B_SELL_A, HOLD",
	}, []string{"signal"})

	// PairLegFailures - отказ второй ноги при открытии позиции
	PairLegFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "newstrader",
		Subsystem: "pairs",
		Name:      "leg_failures_total",
		Help:      "Случаи, когда вторая нога пары не исполнилась и позиция не была открыта",
	})

	// OpenPositions - активные парные позиции
	OpenPositions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "newstrader",
		Subsystem: "pairs",
		Name:      "open_positions",
		Help:      "Активные позиции на момент последней проверки выходов",
	})

	// PositionPnl - распределение PnL закрытых позиций
	PositionPnl = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "newstrader",
		Subsystem: "pairs",
		Name:      "position_pnl_percent",
		Help:      "PnL закрытых позиций в процентах",
		Buckets:   []float64{-20, -10, -5, -2, 0, 2, 5, 10, 20},
	})
)

// ============ Циклы движка ============

var (
	// CycleDuration - длительность одного прохода рабочего цикла
	CycleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "newstrader",
		Subsystem: "engine",
		Name:      "cycle_duration_seconds",
		Help:      "Длительность прохода рабочего цикла по воркерам: news, listings, pairs, exits",
		Buckets:   prometheus.DefBuckets,
	}, []string{"worker"})
)

// ============ Вспомогательные функции ============

// RecordNews фиксирует результат обработки одной новости
func RecordNews(result string) {
	NewsProcessed.WithLabelValues(result).Inc()
}

// RecordTrade фиксирует отправку поручения в шлюз
func RecordTrade(source, result string) {
	TradesSubmitted.WithLabelValues(source, result).Inc()
}

// SetPendingListings обновляет размер очереди листингов
func SetPendingListings(n int) {
	PendingListings.Set(float64(n))
}

// RecordListingOutcome фиксирует терминальный исход заявки листинга
func RecordListingOutcome(outcome string) {
	ListingOutcomes.WithLabelValues(outcome).Inc()
}

// RecordPairSignal фиксирует сигнал сканера пар
func RecordPairSignal(signal string) {
	PairSignals.WithLabelValues(signal).Inc()
}

// SetOpenPositions обновляет число активных позиций
func SetOpenPositions(n int) {
	OpenPositions.Set(float64(n))
}

// RecordPositionClosed фиксирует закрытие позиции с ее PnL
func RecordPositionClosed(pnl float64) {
	PositionPnl.Observe(pnl)
}

// RecordPriceLookupFailure фиксирует неудачное получение цены
func RecordPriceLookupFailure() {
	PriceLookupFailures.Inc()
}

// ObserveCycle фиксирует длительность прохода рабочего цикла
func ObserveCycle(worker string, seconds float64) {
	CycleDuration.WithLabelValues(worker).Observe(seconds)
}
