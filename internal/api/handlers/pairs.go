package handlers

import (
	"net/http"

	"newstrader/internal/models"
)

// PositionStore - доступ к парным позициям
type PositionStore interface {
	GetActive() ([]*models.PairPosition, error)
	GetRecent(limit int) ([]*models.PairPosition, error)
}

// SignalStore - доступ к журналу сигналов пар
type SignalStore interface {
	GetRecent(limit int) ([]*models.PairSignal, error)
	GetByPair(pair string, limit int) ([]*models.PairSignal, error)
}

// PairsHandler отдает позиции и сигналы парной стратегии
type PairsHandler struct {
	positions PositionStore
	signals   SignalStore
}

// NewPairsHandler создает handler парной стратегии
func NewPairsHandler(positions PositionStore, signals SignalStore) *PairsHandler {
	return &PairsHandler{positions: positions, signals: signals}
}

// GetPositions возвращает парные позиции
//
// GET /api/v1/positions - последние позиции любого статуса
// GET /api/v1/positions?status=active - только активные
func (h *PairsHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	var (
		positions []*models.PairPosition
		err       error
	)
	if r.URL.Query().Get("status") == models.PositionStatusActive {
		positions, err = h.positions.GetActive()
	} else {
		positions, err = h.positions.GetRecent(queryLimit(r))
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось получить позиции")
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

// GetSignals возвращает журнал сигналов
//
// GET /api/v1/signals?limit=50
// GET /api/v1/signals?pair=BTC/ETH - сигналы одной пары
func (h *PairsHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	var (
		signals []*models.PairSignal
		err     error
	)
	if pair := r.URL.Query().Get("pair"); pair != "" {
		signals, err = h.signals.GetByPair(pair, queryLimit(r))
	} else {
		signals, err = h.signals.GetRecent(queryLimit(r))
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось получить сигналы")
		return
	}
	writeJSON(w, http.StatusOK, signals)
}
