package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/gamerfeeds/internal/commenttree"
	"github.com/pribylovaa/gamerfeeds/internal/events"
	"github.com/pribylovaa/gamerfeeds/internal/models"
	"github.com/pribylovaa/gamerfeeds/internal/storage"
	"github.com/pribylovaa/gamerfeeds/pkg/log"
)

// CreateCommentInput — создание корня (ParentID == nil) или ответа.
type CreateCommentInput struct {
	Target   models.Target
	ParentID *int64
	Content  string
}

// CreateComment — создание комментария от имени user.
//
// Валидация:
//   - пользователь аутентифицирован (ID > 0), иначе ErrUnauthenticated;
//   - Content после TrimSpace не пуст и не длиннее limits.max_content_length;
//   - Target: допустимый тип и положительный ID.
//
// Правила:
//   - элемент контента существует (ErrTargetNotFound);
//   - родитель существует и относится к тому же элементу контента (ErrParentNotFound);
//   - нельзя отвечать самому себе (ErrSelfReply);
//   - глубина ответа не больше limits.max_depth (ErrMaxDepthExceeded).
//
// Созданный узел вставляется в закэшированную ветку (commenttree.Insert)
// и публикуется как comment.created.
func (s *Service) CreateComment(ctx context.Context, user models.User, in CreateCommentInput) (*models.Comment, error) {
	const op = "service/comments/CreateComment"

	lg := log.From(ctx).With(
		"op", op,
		"user_id", user.ID,
		"target", in.Target.String(),
	)
	if in.ParentID != nil {
		lg = lg.With("parent_id", *in.ParentID)
	}

	if user.ID <= 0 {
		lg.Warn("unauthenticated")
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	in.Content = strings.TrimSpace(in.Content)
	if err := s.validateContent(in.Content); err != nil {
		lg.Warn("invalid argument: content", "reason", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !validTarget(in.Target) {
		lg.Warn("invalid argument: target")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	ok, err := s.checker.Exists(ctx, in.Target)
	if err != nil {
		lg.Error("content lookup failed", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}
	if !ok {
		lg.Warn("content not found")
		return nil, fmt.Errorf("%s: %w", op, ErrTargetNotFound)
	}

	if in.ParentID != nil {
		parent, err := s.storage.CommentByID(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				lg.Warn("parent not found")
				return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
			}

			lg.Error("storage error on parent lookup", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}

		switch {
		case parent.Target() != in.Target:
			lg.Warn("parent belongs to another content", "parent_target", parent.Target().String())
			return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		case parent.UserID == user.ID:
			lg.Warn("self reply")
			return nil, fmt.Errorf("%s: %w", op, ErrSelfReply)
		case parent.Level+1 > s.limits.MaxDepth:
			lg.Warn("max depth exceeded", "parent_level", parent.Level)
			return nil, fmt.Errorf("%s: %w", op, ErrMaxDepthExceeded)
		}
	}

	created, err := s.storage.CreateComment(ctx, models.Comment{
		Content:     in.Content,
		UserID:      user.ID,
		Username:    user.Username,
		ParentID:    in.ParentID,
		ContentType: in.Target.Type,
		ContentID:   in.Target.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrParentNotFound):
			// Родитель удалён между проверкой и вставкой.
			lg.Warn("parent not found on insert")
			return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		default:
			lg.Error("storage error on CreateComment", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if created.Replies == nil {
		created.Replies = models.Forest{}
	}

	node := *created
	s.syncThread(ctx, in.Target, func(f models.Forest) (models.Forest, error) {
		// Ветка могла быть пересобрана из хранилища уже с этим узлом.
		if _, ok := commenttree.Find(f, node.ID); ok {
			return f, nil
		}
		return commenttree.Insert(f, node)
	})
	s.publish(ctx, events.TopicCommentCreated, events.CommentCreated{Comment: created})

	lg.Info("comment created", "id", created.ID)
	return created, nil
}

// UpdateComment — изменение текста. Разрешено только автору; updated_at = now.
// Узел заменяется в ветке с сохранением позиции и ответов.
func (s *Service) UpdateComment(ctx context.Context, user models.User, id int64, text string) (*models.Comment, error) {
	const op = "service/comments/UpdateComment"

	lg := log.From(ctx).With("op", op, "user_id", user.ID, "id", id)

	if user.ID <= 0 {
		lg.Warn("unauthenticated")
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	if id <= 0 {
		lg.Warn("invalid argument: id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	text = strings.TrimSpace(text)
	if err := s.validateContent(text); err != nil {
		lg.Warn("invalid argument: content", "reason", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.commentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if existing.UserID != user.ID {
		lg.Warn("not an author", "author_id", existing.UserID)
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	updated, err := s.storage.UpdateContent(ctx, id, text, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found on update")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on UpdateContent", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	// Ответы не передаются: Replace сохранит поддерево из ветки.
	updated.Replies = nil

	node := *updated
	s.syncThread(ctx, updated.Target(), func(f models.Forest) (models.Forest, error) {
		return commenttree.Replace(f, id, &node), nil
	})
	s.publish(ctx, events.TopicCommentUpdated, events.CommentUpdated{Comment: updated})

	lg.Info("comment updated")
	return updated, nil
}

// DeleteComment — удаление комментария вместе с поддеревом.
// Разрешено автору или суперпользователю.
func (s *Service) DeleteComment(ctx context.Context, user models.User, id int64) error {
	const op = "service/comments/DeleteComment"

	lg := log.From(ctx).With("op", op, "user_id", user.ID, "id", id)

	if user.ID <= 0 {
		lg.Warn("unauthenticated")
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	if id <= 0 {
		lg.Warn("invalid argument: id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	existing, err := s.commentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if existing.UserID != user.ID && !user.IsSuperuser {
		lg.Warn("not an author or superuser", "author_id", existing.UserID)
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.storage.DeleteComment(ctx, id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found on delete")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on DeleteComment", "err", err)
			return fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	target := existing.Target()
	s.syncThread(ctx, target, func(f models.Forest) (models.Forest, error) {
		return commenttree.Remove(f, id), nil
	})
	s.publish(ctx, events.TopicCommentDeleted, events.CommentDeleted{
		ID:          id,
		ContentType: target.Type,
		ContentID:   target.ID,
	})

	lg.Info("comment deleted", "by_superuser", existing.UserID != user.ID)
	return nil
}

// CommentByID — комментарий вместе с полным поддеревом.
func (s *Service) CommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	const op = "service/comments/CommentByID"

	lg := log.From(ctx).With("op", op, "id", id)

	if id <= 0 {
		lg.Warn("invalid argument: id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	c, err := s.commentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	node, err := s.nodeInThread(ctx, *c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return node, nil
}

// commentByID читает запись без ответов и маппит ошибки хранилища.
func (s *Service) commentByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		lg := log.From(ctx).With("id", id)
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment not found")
			return nil, ErrNotFound
		}

		lg.Error("storage error on CommentByID", "err", err)
		return nil, ErrInternal
	}

	return c, nil
}

// nodeInThread находит узел c в ветке его элемента контента.
// Если кэш отстал от хранилища, ветка пересобирается.
func (s *Service) nodeInThread(ctx context.Context, c models.Comment) (*models.Comment, error) {
	target := c.Target()

	forest, err := s.thread(ctx, target)
	if err != nil {
		return nil, err
	}

	if node, ok := commenttree.Find(forest, c.ID); ok {
		return node, nil
	}

	log.From(ctx).Warn("comment missing in cached thread, rebuilding", "id", c.ID, "target", target.String())

	forest, err = s.rebuild(ctx, target)
	if err != nil {
		return nil, err
	}

	if node, ok := commenttree.Find(forest, c.ID); ok {
		return node, nil
	}

	// Удалён между чтениями.
	return nil, ErrNotFound
}

func (s *Service) validateContent(text string) error {
	if text == "" {
		return fmt.Errorf("%w: empty content", ErrInvalidArgument)
	}

	if utf8.RuneCountInString(text) > s.limits.MaxContentLength {
		return fmt.Errorf("%w: content longer than %d characters", ErrInvalidArgument, s.limits.MaxContentLength)
	}

	return nil
}
