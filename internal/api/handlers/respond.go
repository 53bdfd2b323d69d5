// Package handlers реализует HTTP handlers API мониторинга.
//
// API только для чтения: торговый конвейер управляется конфигурацией,
// endpoints отдают состояние (новости, очередь листингов, позиции,
// сигналы) для наблюдения.
package handlers

import (
	"log"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultLimit = 50

// errorResponse - тело ответа с ошибкой
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Ошибка сериализации ответа: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// queryLimit читает параметр limit с ограничением сверху
func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return defaultLimit
	}
	if limit > 500 {
		return 500
	}
	return limit
}
