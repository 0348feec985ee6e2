// service содержит бизнес-логику сервиса комментариев: правила записи,
// сборку веток и их точечную синхронизацию в кэше и у подписчиков.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/gamerfeeds/internal/cache"
	"github.com/pribylovaa/gamerfeeds/internal/clients/content"
	"github.com/pribylovaa/gamerfeeds/internal/commenttree"
	"github.com/pribylovaa/gamerfeeds/internal/config"
	"github.com/pribylovaa/gamerfeeds/internal/events"
	"github.com/pribylovaa/gamerfeeds/internal/models"
	"github.com/pribylovaa/gamerfeeds/internal/storage"
	"github.com/pribylovaa/gamerfeeds/pkg/log"
)

var (
	// ErrInvalidArgument — неверные входные параметры.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated — операция требует аутентифицированного пользователя.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound — комментарий не найден.
	ErrNotFound = errors.New("not found")
	// ErrTargetNotFound — игра/новость/обсуждение не существует.
	ErrTargetNotFound = errors.New("content not found")
	// ErrParentNotFound — родитель не найден или относится к другому элементу контента.
	ErrParentNotFound = errors.New("parent not found")
	// ErrSelfReply — ответ на собственный комментарий.
	ErrSelfReply = errors.New("cannot reply to own comment")
	// ErrForbidden — у пользователя нет прав на операцию.
	ErrForbidden = errors.New("forbidden")
	// ErrMaxDepthExceeded — превышена максимальная глубина ветки.
	ErrMaxDepthExceeded = errors.New("max depth exceeded")
	// ErrInternal — внутренняя ошибка (хранилище/каталог/контекст).
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика комментариев.
type Service struct {
	storage   storage.Storage
	cache     cache.ThreadCache
	publisher events.Publisher
	checker   content.TargetChecker
	limits    config.LimitsConfig
	now       func() time.Time
}

// New создаёт сервис. nil-зависимости cache/publisher/checker заменяются no-op реализациями.
func New(
	st storage.Storage,
	c cache.ThreadCache,
	p events.Publisher,
	checker content.TargetChecker,
	cfg config.Config,
) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if p == nil {
		p = events.NoopPublisher{}
	}
	if checker == nil {
		checker = content.AlwaysExists{}
	}

	return &Service{
		storage:   st,
		cache:     c,
		publisher: p,
		checker:   checker,
		limits:    cfg.Limits,
		now:       time.Now,
	}
}

// syncThread применяет точечное изменение к закэшированной ветке.
// Ошибки кэша не влияют на результат операции: ключ сбрасывается,
// следующее чтение пересоберёт ветку из хранилища.
func (s *Service) syncThread(ctx context.Context, target models.Target, fn cache.ApplyFunc) {
	err := s.cache.Apply(ctx, target, fn)
	if err == nil {
		return
	}

	lg := log.From(ctx).With("target", target.String())
	switch {
	case errors.Is(err, commenttree.ErrParentNotFound):
		lg.Warn("stale thread cache: parent missing, key invalidated")
	case errors.Is(err, cache.ErrContention):
		lg.Warn("thread cache contention, key invalidated")
	default:
		lg.Warn("thread cache sync failed", "err", err)
		if err := s.cache.Invalidate(ctx, target); err != nil {
			lg.Warn("thread cache invalidate failed", "err", err)
		}
	}
}

// publish отправляет событие; сбой брокера только логируется.
func (s *Service) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		log.From(ctx).Warn("publish event failed", "topic", topic, "err", err)
	}
}

func validTarget(t models.Target) bool {
	return t.Type.Valid() && t.ID > 0
}
