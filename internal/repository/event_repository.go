package repository

import (
	"database/sql"
	"errors"
	"time"

	"newstrader/internal/models"
)

// Ошибки репозитория обработанных новостей
var (
	ErrEventNotFound = errors.New("event not found")
)

// EventRepository - работа с таблицей processed_news
//
// Таблица хранит идентификаторы уже обработанных новостей, чтобы
// один и тот же анонс не анализировался повторно между перезапусками.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository создает новый экземпляр репозитория
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create помечает новость как обработанную, вместе с номером сделки,
// если она была создана
//
// Идемпотентно: повторная вставка того же id не является ошибкой.
// Возвращает true, если запись действительно создана.
func (r *EventRepository) Create(event *models.ProcessedEvent) (bool, error) {
	query := `
		INSERT INTO processed_news (id, title, processed_at, deal_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = time.Now()
	}

	result, err := r.db.Exec(query, event.ID, event.Title, event.ProcessedAt, event.DealID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// Exists проверяет, была ли новость уже обработана
func (r *EventRepository) Exists(id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM processed_news WHERE id = $1)`

	var exists bool
	err := r.db.QueryRow(query, id).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// GetByID возвращает обработанную новость по ID
func (r *EventRepository) GetByID(id string) (*models.ProcessedEvent, error) {
	query := `
		SELECT id, title, processed_at, deal_id
		FROM processed_news
		WHERE id = $1`

	event := &models.ProcessedEvent{}
	err := r.db.QueryRow(query, id).Scan(
		&event.ID,
		&event.Title,
		&event.ProcessedAt,
		&event.DealID,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	return event, nil
}

// GetRecent возвращает последние N обработанных новостей
func (r *EventRepository) GetRecent(limit int) ([]*models.ProcessedEvent, error) {
	query := `
		SELECT id, title, processed_at, deal_id
		FROM processed_news
		ORDER BY processed_at DESC
		LIMIT $1`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.ProcessedEvent
	for rows.Next() {
		event := &models.ProcessedEvent{}
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.ProcessedAt,
			&event.DealID,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Count возвращает общее количество обработанных новостей
func (r *EventRepository) Count() (int, error) {
	query := `SELECT COUNT(*) FROM processed_news`

	var count int
	err := r.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
