package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"newstrader/internal/models"
)

// ============================================================
// PositionRepository Tests
// ============================================================

func TestPositionRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	dealA := int64(100)
	dealB := int64(101)

	mock.ExpectQuery(`INSERT INTO pairs_positions`).
		WithArgs("BTC/ETH", "BTC", "ETH", models.DirectionSellBBuyA, 1.7, sqlmock.AnyArg(), 1.5, 1.8, &dealA, &dealB, models.PositionStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	repo := NewPositionRepository(db)
	position := &models.PairPosition{
		Pair:          "BTC/ETH",
		AssetA:        "BTC",
		AssetB:        "ETH",
		Direction:     models.DirectionSellBBuyA,
		EntryRatio:    1.7,
		TargetRatio:   1.5,
		StopLossRatio: 1.8,
		DealIDA:       &dealA,
		DealIDB:       &dealB,
	}

	if err := repo.Create(position); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if position.ID != 3 {
		t.Errorf("expected ID=3, got %d", position.ID)
	}
	if position.Status != models.PositionStatusActive {
		t.Errorf("expected status active, got %s", position.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPositionRepositoryGetActive(t *testing.T) {
	now := time.Now()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "pair", "asset_a", "asset_b", "direction", "entry_ratio", "entry_date", "target_ratio", "stop_loss_ratio", "deal_id_a", "deal_id_b", "status", "exit_ratio", "exit_date", "pnl_percent"}).
		AddRow(1, "BTC/ETH", "BTC", "ETH", "SELL_B_BUY_A", 1.7, now, 1.5, 1.8, nil, nil, "active", nil, nil, nil)
	mock.ExpectQuery(`SELECT .+ FROM pairs_positions WHERE status = \$1`).
		WithArgs(models.PositionStatusActive).
		WillReturnRows(rows)

	repo := NewPositionRepository(db)
	positions, err := repo.GetActive()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if positions[0].Pair != "BTC/ETH" || positions[0].ExitRatio != nil {
		t.Errorf("unexpected position: %+v", positions[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPositionRepositoryHasActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("BTC/ETH", models.PositionStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewPositionRepository(db)
	has, err := repo.HasActive("BTC/ETH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Error("expected has=true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPositionRepositoryClose(t *testing.T) {
	exitDate := time.Now()

	tests := []struct {
		name        string
		id          int64
		mockSetup   func(mock sqlmock.Sqlmock)
		expectError error
	}{
		{
			name: "success",
			id:   1,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE pairs_positions SET status = \$1`).
					WithArgs(models.PositionStatusClosed, 1.5, exitDate, 6.67, int64(1), models.PositionStatusActive).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			expectError: nil,
		},
		{
			name: "already closed",
			id:   2,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE pairs_positions SET status = \$1`).
					WithArgs(models.PositionStatusClosed, 1.5, exitDate, 6.67, int64(2), models.PositionStatusActive).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectError: ErrPositionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create mock: %v", err)
			}
			defer db.Close()

			tt.mockSetup(mock)

			repo := NewPositionRepository(db)
			err = repo.Close(tt.id, 1.5, exitDate, 6.67)

			if !errors.Is(err, tt.expectError) {
				t.Errorf("got error %v, want %v", err, tt.expectError)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

// ============================================================
// SignalRepository Tests
// ============================================================

func TestSignalRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO pairs_signals`).
		WithArgs("BTC/ETH", sqlmock.AnyArg(), 1.72, 1.5, 0.1, 1.7, 1.3, models.SignalSellBBuyA, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	repo := NewSignalRepository(db)
	signal := &models.PairSignal{
		Pair:         "BTC/ETH",
		CurrentRatio: 1.72,
		MeanRatio:    1.5,
		StdDev:       0.1,
		UpperBand:    1.7,
		LowerBand:    1.3,
		SignalType:   models.SignalSellBBuyA,
		WasOpened:    true,
	}

	if err := repo.Create(signal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signal.ID != 11 {
		t.Errorf("expected ID=11, got %d", signal.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSignalRepositoryGetByPair(t *testing.T) {
	now := time.Now()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "pair", "check_date", "current_ratio", "mean_ratio", "std_dev", "upper_band", "lower_band", "signal_type", "was_opened"}).
		AddRow(1, "BTC/ETH", now, 1.55, 1.5, 0.1, 1.7, 1.3, "HOLD", false)
	mock.ExpectQuery(`SELECT .+ FROM pairs_signals WHERE pair = \$1`).
		WithArgs("BTC/ETH", 20).
		WillReturnRows(rows)

	repo := NewSignalRepository(db)
	signals, err := repo.GetByPair("BTC/ETH", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].SignalType != models.SignalHold || signals[0].WasOpened {
		t.Errorf("unexpected signal: %+v", signals[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
