package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// Recovery перехватывает панику в handlers
//
// Сервер продолжает обслуживать последующие запросы, клиент получает
// 500 без деталей ошибки.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC: %v\n", err)
				log.Printf("Stack trace:\n%s", debug.Stack())

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
