package repository

import (
	"database/sql"
	"errors"
	"time"

	"newstrader/internal/models"
)

// Ошибки репозитория парных позиций
var (
	ErrPositionNotFound = errors.New("pair position not found")
)

// PositionRepository - работа с таблицей pairs_positions
//
// Одна строка описывает обе ноги парной сделки. Позиция создаётся
// только когда обе ноги выставлены, поэтому Create вызывается
// единожды с обоими номерами сделок.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository создает новый экземпляр репозитория
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Create открывает парную позицию
func (r *PositionRepository) Create(position *models.PairPosition) error {
	query := `
		INSERT INTO pairs_positions (pair, asset_a, asset_b, direction, entry_ratio, entry_date, target_ratio, stop_loss_ratio, deal_id_a, deal_id_b, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	if position.EntryDate.IsZero() {
		position.EntryDate = time.Now()
	}
	if position.Status == "" {
		position.Status = models.PositionStatusActive
	}

	err := r.db.QueryRow(
		query,
		position.Pair,
		position.AssetA,
		position.AssetB,
		position.Direction,
		position.EntryRatio,
		position.EntryDate,
		position.TargetRatio,
		position.StopLossRatio,
		position.DealIDA,
		position.DealIDB,
		position.Status,
	).Scan(&position.ID)

	if err != nil {
		return err
	}

	return nil
}

// GetActive возвращает все открытые позиции
func (r *PositionRepository) GetActive() ([]*models.PairPosition, error) {
	query := `
		SELECT id, pair, asset_a, asset_b, direction, entry_ratio, entry_date, target_ratio, stop_loss_ratio, deal_id_a, deal_id_b, status, exit_ratio, exit_date, pnl_percent
		FROM pairs_positions
		WHERE status = $1
		ORDER BY entry_date ASC`

	return r.queryPositions(query, models.PositionStatusActive)
}

// HasActive проверяет, есть ли открытая позиция по паре.
// По одной паре допускается не более одной открытой позиции.
func (r *PositionRepository) HasActive(pair string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM pairs_positions WHERE pair = $1 AND status = $2)`

	var exists bool
	err := r.db.QueryRow(query, pair, models.PositionStatusActive).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Close закрывает позицию и записывает результат.
// Разрешён только переход active -> closed.
func (r *PositionRepository) Close(id int64, exitRatio float64, exitDate time.Time, pnlPercent float64) error {
	if !models.CanTransitionPosition(models.PositionStatusActive, models.PositionStatusClosed) {
		return ErrInvalidTransition
	}

	query := `
		UPDATE pairs_positions
		SET status = $1, exit_ratio = $2, exit_date = $3, pnl_percent = $4
		WHERE id = $5 AND status = $6`

	result, err := r.db.Exec(query, models.PositionStatusClosed, exitRatio, exitDate, pnlPercent, id, models.PositionStatusActive)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrPositionNotFound
	}

	return nil
}

// GetRecent возвращает последние N позиций любого статуса
func (r *PositionRepository) GetRecent(limit int) ([]*models.PairPosition, error) {
	query := `
		SELECT id, pair, asset_a, asset_b, direction, entry_ratio, entry_date, target_ratio, stop_loss_ratio, deal_id_a, deal_id_b, status, exit_ratio, exit_date, pnl_percent
		FROM pairs_positions
		ORDER BY entry_date DESC
		LIMIT $1`

	return r.queryPositions(query, limit)
}

// CountByStatus возвращает количество позиций с определенным статусом
func (r *PositionRepository) CountByStatus(status string) (int, error) {
	query := `SELECT COUNT(*) FROM pairs_positions WHERE status = $1`

	var count int
	err := r.db.QueryRow(query, status).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// queryPositions выполняет запрос и сканирует строки позиций
func (r *PositionRepository) queryPositions(query string, args ...interface{}) ([]*models.PairPosition, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []*models.PairPosition
	for rows.Next() {
		position := &models.PairPosition{}
		err := rows.Scan(
			&position.ID,
			&position.Pair,
			&position.AssetA,
			&position.AssetB,
			&position.Direction,
			&position.EntryRatio,
			&position.EntryDate,
			&position.TargetRatio,
			&position.StopLossRatio,
			&position.DealIDA,
			&position.DealIDB,
			&position.Status,
			&position.ExitRatio,
			&position.ExitDate,
			&position.PnlPercent,
		)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return positions, nil
}
