package service

import (
	"context"
	"fmt"

	"github.com/pribylovaa/gamerfeeds/internal/commenttree"
	"github.com/pribylovaa/gamerfeeds/internal/models"
	"github.com/pribylovaa/gamerfeeds/pkg/log"
)

// Thread — полная ветка элемента контента: корни и ответы, сначала новые.
// Читается из кэша; при промахе собирается из хранилища и кэшируется.
// Пустая ветка несуществующего элемента контента — ErrTargetNotFound.
func (s *Service) Thread(ctx context.Context, target models.Target) (models.Forest, error) {
	const op = "service/threads/Thread"

	lg := log.From(ctx).With("op", op, "target", target.String())

	if !validTarget(target) {
		lg.Warn("invalid argument: target")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	forest, err := s.thread(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(forest) == 0 {
		ok, err := s.checker.Exists(ctx, target)
		if err != nil {
			lg.Error("content lookup failed", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
		if !ok {
			lg.Warn("content not found")
			return nil, fmt.Errorf("%s: %w", op, ErrTargetNotFound)
		}
	}

	return forest, nil
}

// Subtree — прямые ответы узла parentID (с их поддеревьями) в ветке target.
func (s *Service) Subtree(ctx context.Context, target models.Target, parentID int64) (models.Forest, error) {
	const op = "service/threads/Subtree"

	lg := log.From(ctx).With("op", op, "target", target.String(), "parent_id", parentID)

	if !validTarget(target) || parentID <= 0 {
		lg.Warn("invalid argument")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	forest, err := s.thread(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	node, ok := commenttree.Find(forest, parentID)
	if !ok {
		lg.Warn("parent not found in thread")
		return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
	}

	return node.Replies, nil
}

// CommentsByUser — корневые комментарии пользователя с поддеревьями, сначала новые.
// limit == 0 — значение по умолчанию; больше максимума — обрезается.
func (s *Service) CommentsByUser(ctx context.Context, userID int64, limit int32) (models.Forest, error) {
	const op = "service/threads/CommentsByUser"

	lg := log.From(ctx).With("op", op, "author_id", userID, "limit", limit)

	if userID <= 0 || limit < 0 {
		lg.Warn("invalid argument")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	switch {
	case limit == 0:
		limit = s.limits.UserComments
	case limit > s.limits.UserCommentsMax:
		limit = s.limits.UserCommentsMax
	}

	roots, err := s.storage.ListByUser(ctx, userID, limit)
	if err != nil {
		lg.Error("storage error on ListByUser", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	threads := make(map[models.Target]models.Forest)
	out := make(models.Forest, 0, len(roots))

	for _, root := range roots {
		target := root.Target()

		forest, ok := threads[target]
		if !ok {
			forest, err = s.thread(ctx, target)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			threads[target] = forest
		}

		if node, found := commenttree.Find(forest, root.ID); found {
			out = append(out, *node)
			continue
		}

		// Ветка в кэше старше записи: отдаём корень без ответов.
		root.Replies = models.Forest{}
		out = append(out, root)
	}

	return out, nil
}

// CountByTarget — количество комментариев всех уровней.
func (s *Service) CountByTarget(ctx context.Context, target models.Target) (int64, error) {
	const op = "service/threads/CountByTarget"

	lg := log.From(ctx).With("op", op, "target", target.String())

	if !validTarget(target) {
		lg.Warn("invalid argument: target")
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	n, err := s.storage.CountByTarget(ctx, target)
	if err != nil {
		lg.Error("storage error on CountByTarget", "err", err)
		return 0, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return n, nil
}

// thread — ветка из кэша или из хранилища.
func (s *Service) thread(ctx context.Context, target models.Target) (models.Forest, error) {
	forest, ok, err := s.cache.Get(ctx, target)
	if err != nil {
		log.From(ctx).Warn("thread cache get failed", "target", target.String(), "err", err)
	}
	if ok {
		return forest, nil
	}

	return s.rebuild(ctx, target)
}

// rebuild собирает ветку из плоского списка хранилища и кладёт в кэш.
// Поколение читается до запроса к хранилищу: если запись успела изменить ветку,
// собранный лес может быть устаревшим и в кэш не попадает.
func (s *Service) rebuild(ctx context.Context, target models.Target) (models.Forest, error) {
	lg := log.From(ctx).With("target", target.String())

	gen, genErr := s.cache.Generation(ctx, target)
	if genErr != nil {
		lg.Warn("thread cache generation failed", "err", genErr)
	}

	rows, err := s.storage.ListByTarget(ctx, target)
	if err != nil {
		lg.Error("storage error on ListByTarget", "err", err)
		return nil, ErrInternal
	}

	forest := commenttree.Build(rows)

	if genErr != nil {
		return forest, nil
	}

	stored, err := s.cache.Fill(ctx, target, forest, gen)
	switch {
	case err != nil:
		lg.Warn("thread cache fill failed", "err", err)
	case !stored:
		lg.Debug("thread changed during rebuild, not cached")
	}

	return forest, nil
}
