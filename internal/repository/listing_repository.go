package repository

import (
	"database/sql"
	"errors"
	"time"

	"newstrader/internal/models"
)

// Ошибки репозитория отложенных листингов
var (
	ErrListingNotFound   = errors.New("pending listing not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ListingRepository - работа с таблицей pending_listings
//
// Очередь монет, которых ещё нет на бирже: новость прошла анализ,
// а цену запросить не удалось. Воркер периодически повторяет попытки.
type ListingRepository struct {
	db *sql.DB
}

// NewListingRepository создает новый экземпляр репозитория
func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create ставит монету в очередь ожидания листинга
func (r *ListingRepository) Create(listing *models.PendingListing) error {
	query := `
		INSERT INTO pending_listings (coin, pair, impact_score, take_profit, stop_loss, trade_duration, created_at, last_check, attempts, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	now := time.Now()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	if listing.LastCheck.IsZero() {
		listing.LastCheck = now
	}
	if listing.Status == "" {
		listing.Status = models.ListingStatusPending
	}

	err := r.db.QueryRow(
		query,
		listing.Coin,
		listing.Pair,
		listing.ImpactScore,
		listing.TakeProfit,
		listing.StopLoss,
		listing.TradeDuration,
		listing.CreatedAt,
		listing.LastCheck,
		listing.Attempts,
		listing.Status,
	).Scan(&listing.ID)

	if err != nil {
		return err
	}

	return nil
}

// GetPending возвращает активные заявки очереди, самые старые первыми
func (r *ListingRepository) GetPending() ([]*models.PendingListing, error) {
	query := `
		SELECT id, coin, pair, impact_score, take_profit, stop_loss, trade_duration, created_at, last_check, attempts, status
		FROM pending_listings
		WHERE status = $1
		ORDER BY created_at ASC`

	return r.queryListings(query, models.ListingStatusPending)
}

// GetRecent возвращает последние N заявок любого статуса
func (r *ListingRepository) GetRecent(limit int) ([]*models.PendingListing, error) {
	query := `
		SELECT id, coin, pair, impact_score, take_profit, stop_loss, trade_duration, created_at, last_check, attempts, status
		FROM pending_listings
		ORDER BY created_at DESC
		LIMIT $1`

	return r.queryListings(query, limit)
}

// RecordAttempt фиксирует неудачную попытку получить цену:
// инкремент счётчика и обновление времени последней проверки.
// Работает только для заявок в статусе pending.
func (r *ListingRepository) RecordAttempt(id int64) error {
	query := `
		UPDATE pending_listings
		SET attempts = attempts + 1, last_check = $1
		WHERE id = $2 AND status = $3`

	result, err := r.db.Exec(query, time.Now(), id, models.ListingStatusPending)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrListingNotFound
	}

	return nil
}

// MarkCompleted завершает заявку: сделка по листингу выставлена.
// Разрешён только переход pending -> completed.
func (r *ListingRepository) MarkCompleted(id int64) error {
	return r.transition(id, models.ListingStatusCompleted)
}

// MarkCancelled отменяет заявку после исчерпания лимита попыток.
// Разрешён только переход pending -> cancelled.
func (r *ListingRepository) MarkCancelled(id int64) error {
	return r.transition(id, models.ListingStatusCancelled)
}

// transition переводит заявку из pending в терминальный статус
func (r *ListingRepository) transition(id int64, status string) error {
	if !models.CanTransitionListing(models.ListingStatusPending, status) {
		return ErrInvalidTransition
	}

	query := `
		UPDATE pending_listings
		SET status = $1, last_check = $2
		WHERE id = $3 AND status = $4`

	result, err := r.db.Exec(query, status, time.Now(), id, models.ListingStatusPending)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrListingNotFound
	}

	return nil
}

// CountByStatus возвращает количество заявок с определенным статусом
func (r *ListingRepository) CountByStatus(status string) (int, error) {
	query := `SELECT COUNT(*) FROM pending_listings WHERE status = $1`

	var count int
	err := r.db.QueryRow(query, status).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// queryListings выполняет запрос и сканирует строки заявок
func (r *ListingRepository) queryListings(query string, args ...interface{}) ([]*models.PendingListing, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*models.PendingListing
	for rows.Next() {
		listing := &models.PendingListing{}
		err := rows.Scan(
			&listing.ID,
			&listing.Coin,
			&listing.Pair,
			&listing.ImpactScore,
			&listing.TakeProfit,
			&listing.StopLoss,
			&listing.TradeDuration,
			&listing.CreatedAt,
			&listing.LastCheck,
			&listing.Attempts,
			&listing.Status,
		)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return listings, nil
}
