package handlers

import (
	"net/http"
	"time"
)

// Pinger проверяет доступность базы данных
type Pinger interface {
	Ping() error
}

// HealthHandler отдает статус сервиса
type HealthHandler struct {
	db      Pinger
	started time.Time
}

// NewHealthHandler создает handler проверки здоровья
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// Health возвращает статус сервиса и базы данных
//
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}
