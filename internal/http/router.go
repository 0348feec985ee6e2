package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/gamerfeeds/internal/http/handlers"
	"github.com/pribylovaa/gamerfeeds/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
	// Auth проверяет bearer-токены; nil — все запросы анонимные.
	Auth middleware.TokenParser
	// WriteTimeout — дедлайн мутирующих запросов; <= 0 — как Timeout.
	WriteTimeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc handlers.CommentService, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования: id попадает в логгер
		middleware.Logging(opts.Logger),
		middleware.Metrics(),
		middleware.AuthBearer(opts.Auth),
	)
	root.Use(middleware.Timeout(opts.Timeout, opts.WriteTimeout))

	h := handlers.New(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// чтение
	r.Get("/comments/{id:[0-9]+}", h.GetComment)
	r.Get("/comments/{content_type}/{content_id}", h.ListComments)
	r.Get("/comments/{content_type}/{content_id}/count", h.CountComments)

	// запись и выдача по пользователю — только с токеном
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser())

		r.Post("/comments/{content_type}", h.CreateComment)
		r.Put("/comments/{id:[0-9]+}", h.UpdateComment)
		r.Delete("/comments/{id:[0-9]+}", h.DeleteComment)
		r.Get("/comments/user/{user_id}", h.ListUserComments)
	})
}
