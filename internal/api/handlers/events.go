package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"newstrader/internal/models"
	"newstrader/internal/repository"
)

// EventStore - доступ к журналу обработанных новостей
type EventStore interface {
	GetRecent(limit int) ([]*models.ProcessedEvent, error)
	GetByID(id string) (*models.ProcessedEvent, error)
	Count() (int, error)
}

// EventsHandler отдает журнал обработанных новостей
type EventsHandler struct {
	events EventStore
}

// NewEventsHandler создает handler журнала новостей
func NewEventsHandler(events EventStore) *EventsHandler {
	return &EventsHandler{events: events}
}

// GetEvents возвращает последние обработанные новости
//
// GET /api/v1/events?limit=50
func (h *EventsHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.GetRecent(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "не удалось получить журнал новостей")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent возвращает одну новость по внешнему id
//
// GET /api/v1/events/{id}
func (h *EventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	event, err := h.events.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, "новость не найдена")
			return
		}
		writeError(w, http.StatusInternalServerError, "не удалось получить новость")
		return
	}
	writeJSON(w, http.StatusOK, event)
}
