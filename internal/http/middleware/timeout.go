package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	logctx "github.com/pribylovaa/gamerfeeds/pkg/log"
)

// Timeout навешивает deadline на запрос, если его ещё нет.
// Чтение (GET, HEAD, OPTIONS) получает read, запись получает write;
// write <= 0 означает read. Оба <= 0 делают мидлвар no-op.
// Запрос, переживший дедлайн, пишется в лог предупреждением.
func Timeout(read, write time.Duration) Middleware {
	if write <= 0 {
		write = read
	}

	return func(next http.Handler) http.Handler {
		if read <= 0 && write <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := write
			if readOnly(r.Method) {
				d = read
			}

			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logctx.From(ctx).Warn("request deadline exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", d.String(),
				)
			}
		})
	}
}

func readOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
