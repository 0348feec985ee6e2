package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/gamerfeeds/internal/models"
	"github.com/pribylovaa/gamerfeeds/internal/storage"
)

const commentColumns = `id, content, user_id, username, parent_id, content_type, content_id, level, created_at, updated_at`

// CreateComment вставляет корень или ответ.
// Для ответа цель (content_type/content_id) и level берутся у родителя одной командой
// INSERT ... SELECT: если родителя нет, строка не вставляется и возвращается ErrParentNotFound.
func (s *Storage) CreateComment(ctx context.Context, c models.Comment) (*models.Comment, error) {
	const op = "storage.postgres.CreateComment"

	var row pgx.Row
	if c.IsRoot() {
		row = s.db.QueryRow(ctx, `
		INSERT INTO comments (content, user_id, username, parent_id, content_type, content_id, level)
		VALUES ($1, $2, $3, NULL, $4, $5, 0)
		RETURNING `+commentColumns,
			c.Content, c.UserID, c.Username, string(c.ContentType), c.ContentID)
	} else {
		row = s.db.QueryRow(ctx, `
		INSERT INTO comments (content, user_id, username, parent_id, content_type, content_id, level)
		SELECT $1, $2, $3, p.id, p.content_type, p.content_id, p.level + 1
		FROM comments p
		WHERE p.id = $4
		RETURNING `+commentColumns,
			c.Content, c.UserID, c.Username, *c.ParentID)
	}

	out, err := scanComment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
			// родитель удалён конкурентно между SELECT и INSERT.
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
			return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	out.Replies = models.Forest{}
	return out, nil
}

// UpdateContent меняет текст комментария и updated_at.
func (s *Storage) UpdateContent(ctx context.Context, id int64, content string, at time.Time) (*models.Comment, error) {
	const op = "storage.postgres.UpdateContent"

	row := s.db.QueryRow(ctx, `
	UPDATE comments
	SET content = $2, updated_at = $3
	WHERE id = $1
	RETURNING `+commentColumns, id, content, at.UTC())

	out, err := scanComment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// DeleteComment удаляет комментарий; потомки удаляются каскадом (FK ON DELETE CASCADE).
func (s *Storage) DeleteComment(ctx context.Context, id int64) error {
	const op = "storage.postgres.DeleteComment"

	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// CommentByID возвращает комментарий по идентификатору.
func (s *Storage) CommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	const op = "storage.postgres.CommentByID"

	out, err := scanComment(s.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListByTarget возвращает все комментарии элемента контента.
// Сортировка фиксирована: created_at DESC, id DESC.
func (s *Storage) ListByTarget(ctx context.Context, target models.Target) ([]models.Comment, error) {
	const op = "storage.postgres.ListByTarget"

	rows, err := s.db.Query(ctx, `
	SELECT `+commentColumns+`
	FROM comments
	WHERE content_type = $1 AND content_id = $2
	ORDER BY created_at DESC, id DESC
	`, string(target.Type), target.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListByUser возвращает корневые комментарии пользователя.
// limit <= 0 трактуется как 1.
func (s *Storage) ListByUser(ctx context.Context, userID int64, limit int32) ([]models.Comment, error) {
	const op = "storage.postgres.ListByUser"

	if limit <= 0 {
		limit = 1
	}

	rows, err := s.db.Query(ctx, `
	SELECT `+commentColumns+`
	FROM comments
	WHERE user_id = $1 AND parent_id IS NULL
	ORDER BY created_at DESC, id DESC
	LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CountByTarget считает комментарии всех уровней.
func (s *Storage) CountByTarget(ctx context.Context, target models.Target) (int64, error) {
	const op = "storage.postgres.CountByTarget"

	var n int64
	err := s.db.QueryRow(ctx, `
	SELECT count(*) FROM comments WHERE content_type = $1 AND content_id = $2
	`, string(target.Type), target.ID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	var (
		c           models.Comment
		contentType string
	)

	if err := row.Scan(
		&c.ID,
		&c.Content,
		&c.UserID,
		&c.Username,
		&c.ParentID,
		&contentType,
		&c.ContentID,
		&c.Level,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.ContentType = models.ContentType(contentType)
	// Нормализация в UTC.
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()

	return &c, nil
}

func collect(rows pgx.Rows) ([]models.Comment, error) {
	defer rows.Close()

	out := make([]models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return out, nil
}
