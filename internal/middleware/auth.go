// Package middleware содержит HTTP middleware для сервиса чеков.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmeshcher/receiptly/internal/token"
)

type contextKey string

const userIDKey contextKey = "userID"

const bearerPrefix = "Bearer "

// AuthMiddleware проверяет токен из заголовка Authorization.
type AuthMiddleware struct {
	signer   *token.Signer
	required bool
}

// NewAuthMiddleware создаёт AuthMiddleware. Если required выключен, запросы без
// заголовка обслуживаются анонимно, но неверный токен всё равно отклоняется.
func NewAuthMiddleware(signer *token.Signer, required bool) *AuthMiddleware {
	return &AuthMiddleware{
		signer:   signer,
		required: required,
	}
}

// Middleware проверяет токен и добавляет идентификатор пользователя в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if a.required {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		userID, ok := a.signer.Verify(strings.TrimSpace(header[len(bearerPrefix):]))
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext извлекает идентификатор пользователя из контекста запроса.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}
