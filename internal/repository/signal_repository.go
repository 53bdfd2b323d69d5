package repository

import (
	"database/sql"
	"time"

	"newstrader/internal/models"
)

// SignalRepository - работа с таблицей pairs_signals
//
// Журнал статистических проверок парного монитора. Запись добавляется
// при каждой проверке, включая HOLD, для последующего анализа стратегии.
type SignalRepository struct {
	db *sql.DB
}

// NewSignalRepository создает новый экземпляр репозитория
func NewSignalRepository(db *sql.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// Create добавляет запись о проверке пары
func (r *SignalRepository) Create(signal *models.PairSignal) error {
	query := `
		INSERT INTO pairs_signals (pair, check_date, current_ratio, mean_ratio, std_dev, upper_band, lower_band, signal_type, was_opened)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	if signal.CheckDate.IsZero() {
		signal.CheckDate = time.Now()
	}

	err := r.db.QueryRow(
		query,
		signal.Pair,
		signal.CheckDate,
		signal.CurrentRatio,
		signal.MeanRatio,
		signal.StdDev,
		signal.UpperBand,
		signal.LowerBand,
		signal.SignalType,
		signal.WasOpened,
	).Scan(&signal.ID)

	if err != nil {
		return err
	}

	return nil
}

// GetRecent возвращает последние N сигналов
func (r *SignalRepository) GetRecent(limit int) ([]*models.PairSignal, error) {
	query := `
		SELECT id, pair, check_date, current_ratio, mean_ratio, std_dev, upper_band, lower_band, signal_type, was_opened
		FROM pairs_signals
		ORDER BY check_date DESC
		LIMIT $1`

	return r.querySignals(query, limit)
}

// GetByPair возвращает последние N сигналов по конкретной паре
func (r *SignalRepository) GetByPair(pair string, limit int) ([]*models.PairSignal, error) {
	query := `
		SELECT id, pair, check_date, current_ratio, mean_ratio, std_dev, upper_band, lower_band, signal_type, was_opened
		FROM pairs_signals
		WHERE pair = $1
		ORDER BY check_date DESC
		LIMIT $2`

	return r.querySignals(query, pair, limit)
}

// querySignals выполняет запрос и сканирует строки сигналов
func (r *SignalRepository) querySignals(query string, args ...interface{}) ([]*models.PairSignal, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []*models.PairSignal
	for rows.Next() {
		signal := &models.PairSignal{}
		err := rows.Scan(
			&signal.ID,
			&signal.Pair,
			&signal.CheckDate,
			&signal.CurrentRatio,
			&signal.MeanRatio,
			&signal.StdDev,
			&signal.UpperBand,
			&signal.LowerBand,
			&signal.SignalType,
			&signal.WasOpened,
		)
		if err != nil {
			return nil, err
		}
		signals = append(signals, signal)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return signals, nil
}
