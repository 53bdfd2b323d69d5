package repository

import (
	"database/sql"
	"fmt"
)

// schema.go - создание таблиц при старте
//
// Бот сам готовит свою схему, чтобы деплой не требовал отдельного
// шага миграций. Все выражения идемпотентны.

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS processed_news (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL DEFAULT '',
		processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deal_id      BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS pending_listings (
		id             BIGSERIAL PRIMARY KEY,
		coin           TEXT NOT NULL,
		pair           TEXT NOT NULL,
		impact_score   INTEGER NOT NULL DEFAULT 0,
		take_profit    TEXT NOT NULL DEFAULT '',
		stop_loss      TEXT NOT NULL DEFAULT '',
		trade_duration TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_check     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		attempts       INTEGER NOT NULL DEFAULT 0,
		status         TEXT NOT NULL DEFAULT 'pending'
	)`,
	`CREATE TABLE IF NOT EXISTS pairs_positions (
		id              BIGSERIAL PRIMARY KEY,
		pair            TEXT NOT NULL,
		asset_a         TEXT NOT NULL,
		asset_b         TEXT NOT NULL,
		direction       TEXT NOT NULL,
		entry_ratio     DOUBLE PRECISION NOT NULL,
		entry_date      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		target_ratio    DOUBLE PRECISION NOT NULL,
		stop_loss_ratio DOUBLE PRECISION NOT NULL,
		deal_id_a       BIGINT,
		deal_id_b       BIGINT,
		status          TEXT NOT NULL DEFAULT 'active',
		exit_ratio      DOUBLE PRECISION,
		exit_date       TIMESTAMPTZ,
		pnl_percent     DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS pairs_signals (
		id            BIGSERIAL PRIMARY KEY,
		pair          TEXT NOT NULL,
		check_date    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		current_ratio DOUBLE PRECISION NOT NULL,
		mean_ratio    DOUBLE PRECISION NOT NULL,
		std_dev       DOUBLE PRECISION NOT NULL,
		upper_band    DOUBLE PRECISION NOT NULL,
		lower_band    DOUBLE PRECISION NOT NULL,
		signal_type   TEXT NOT NULL,
		was_opened    BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pending_listings_status ON pending_listings (status, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_pairs_positions_status ON pairs_positions (pair, status)`,
	`CREATE INDEX IF NOT EXISTS idx_pairs_signals_pair ON pairs_signals (pair, check_date)`,
}

// EnsureSchema создает таблицы и индексы, если их еще нет
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
