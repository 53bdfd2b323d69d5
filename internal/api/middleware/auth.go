package middleware

import (
	"net/http"

	"newstrader/pkg/crypto"
)

// BasicAuth защищает API мониторинга паролем
//
// Пароль сверяется с bcrypt-хэшем из конфигурации (API_PASSWORD_HASH).
// Пустой хэш отключает аутентификацию: сервис рассчитан на локальное
// развертывание для одного оператора. Имя пользователя не проверяется.
func BasicAuth(passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if passwordHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			_, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="newstrader"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := crypto.VerifyPassword(password, passwordHash); err != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="newstrader"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
