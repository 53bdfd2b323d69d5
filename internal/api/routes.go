// Package api собирает HTTP маршруты сервиса мониторинга.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newstrader/internal/api/handlers"
	"newstrader/internal/api/middleware"
	"newstrader/internal/repository"
	"newstrader/internal/websocket"
)

// Dependencies - зависимости HTTP слоя
type Dependencies struct {
	Events    *repository.EventRepository
	Listings  *repository.ListingRepository
	Positions *repository.PositionRepository
	Signals   *repository.SignalRepository
	DB        handlers.Pinger
	Hub       *websocket.Hub

	// PasswordHash - bcrypt-хэш для basic auth API (пусто = auth отключен)
	PasswordHash string
}

// SetupRoutes настраивает маршруты приложения
//
// Структура:
//
//	/api/v1/
//	  ├── GET /events          - журнал обработанных новостей
//	  ├── GET /events/{id}     - одна новость
//	  ├── GET /listings        - очередь отложенных листингов
//	  ├── GET /positions       - парные позиции
//	  ├── GET /signals         - журнал сигналов пар
//	  └── GET /stats           - сводная статистика
//	/ws/stream                 - поток событий конвейера
//	/health                    - проверка здоровья
//	/metrics                   - метрики Prometheus
//
// API v1 защищен basic auth (если настроен хэш пароля); health,
// metrics и WebSocket поток открыты.
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.BasicAuth(deps.PasswordHash))

	if deps.Events != nil {
		eventsHandler := handlers.NewEventsHandler(deps.Events)
		api.HandleFunc("/events", eventsHandler.GetEvents).Methods("GET")
		api.HandleFunc("/events/{id}", eventsHandler.GetEvent).Methods("GET")
	}

	if deps.Listings != nil {
		listingsHandler := handlers.NewListingsHandler(deps.Listings)
		api.HandleFunc("/listings", listingsHandler.GetListings).Methods("GET")
	}

	if deps.Positions != nil && deps.Signals != nil {
		pairsHandler := handlers.NewPairsHandler(deps.Positions, deps.Signals)
		api.HandleFunc("/positions", pairsHandler.GetPositions).Methods("GET")
		api.HandleFunc("/signals", pairsHandler.GetSignals).Methods("GET")
	}

	if deps.Events != nil && deps.Listings != nil && deps.Positions != nil {
		statsHandler := handlers.NewStatsHandler(handlers.StatsCounters{
			Events:    deps.Events,
			Listings:  deps.Listings,
			Positions: deps.Positions,
		})
		api.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")
	}

	if deps.Hub != nil {
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.Hub, w, r)
		})
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
