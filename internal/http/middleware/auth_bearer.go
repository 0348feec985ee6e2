package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pribylovaa/gamerfeeds/internal/auth"
	apierrors "github.com/pribylovaa/gamerfeeds/internal/errors"
	"github.com/pribylovaa/gamerfeeds/internal/models"
	"github.com/pribylovaa/gamerfeeds/internal/service"
	logctx "github.com/pribylovaa/gamerfeeds/pkg/log"
)

// TokenParser проверяет bearer-токен (auth.Verifier).
type TokenParser interface {
	Parse(token string) (models.User, error)
}

// AuthBearer проверяет "Authorization: Bearer <jwt>" и кладёт пользователя в контекст.
// Без заголовка запрос проходит анонимно; битый или просроченный токен — 401.
func AuthBearer(p TokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || p == nil {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				apierrors.WriteError(w, r, fmt.Errorf("middleware/AuthBearer: %w", auth.ErrInvalidToken))
				return
			}

			token := strings.TrimSpace(header[len(prefix):])
			user, err := p.Parse(token)
			if err != nil {
				logctx.From(r.Context()).Warn("bearer token rejected", "err", err)
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := auth.WithUser(r.Context(), user)
			ctx = logctx.With(ctx, "user_id", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser пропускает только аутентифицированные запросы.
func RequireUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserFrom(r.Context()); !ok {
				apierrors.WriteError(w, r, fmt.Errorf("middleware/RequireUser: %w", service.ErrUnauthenticated))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
