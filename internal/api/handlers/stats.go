package handlers

import (
	"log"
	"net/http"

	"newstrader/internal/models"
)

// StatsCounters - счетчики хранилищ для сводной статистики
type StatsCounters struct {
	Events    interface{ Count() (int, error) }
	Listings  interface{ CountByStatus(status string) (int, error) }
	Positions interface{ CountByStatus(status string) (int, error) }
}

// StatsResponse - сводка состояния конвейера
type StatsResponse struct {
	ProcessedNews     int `json:"processed_news"`
	PendingListings   int `json:"pending_listings"`
	CompletedListings int `json:"completed_listings"`
	CancelledListings int `json:"cancelled_listings"`
	ActivePositions   int `json:"active_positions"`
	ClosedPositions   int `json:"closed_positions"`
}

// StatsHandler отдает сводную статистику конвейера
type StatsHandler struct {
	counters StatsCounters
}

// NewStatsHandler создает handler статистики
func NewStatsHandler(counters StatsCounters) *StatsHandler {
	return &StatsHandler{counters: counters}
}

// GetStats возвращает сводку
//
// GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := StatsResponse{}
	var err error

	count := func(get func() (int, error)) int {
		if err != nil {
			return 0
		}
		var n int
		n, err = get()
		return n
	}

	stats.ProcessedNews = count(h.counters.Events.Count)
	stats.PendingListings = count(func() (int, error) {
		return h.counters.Listings.CountByStatus(models.ListingStatusPending)
	})
	stats.CompletedListings = count(func() (int, error) {
		return h.counters.Listings.CountByStatus(models.ListingStatusCompleted)
	})
	stats.CancelledListings = count(func() (int, error) {
		return h.counters.Listings.CountByStatus(models.ListingStatusCancelled)
	})
	stats.ActivePositions = count(func() (int, error) {
		return h.counters.Positions.CountByStatus(models.PositionStatusActive)
	})
	stats.ClosedPositions = count(func() (int, error) {
		return h.counters.Positions.CountByStatus(models.PositionStatusClosed)
	})

	if err != nil {
		log.Printf("Ошибка сбора статистики: %v", err)
		writeError(w, http.StatusInternalServerError, "не удалось собрать статистику")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
