// storage определяет контракты доступа к хранилищу комментариев.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrConflict — конфликт уникальности.
	ErrConflict = errors.New("conflict")
	// ErrParentNotFound — указан parent_id, но родитель не найден.
	ErrParentNotFound = errors.New("parent not found")
)

// Storage описывает операции над комментариями.
type Storage interface {
	// CreateComment создаёт корневой комментарий или ответ.
	// Входной Comment должен содержать UserID, Username, Content, ContentType, ContentID
	// и, для ответа, ParentID.
	// Вычисляются хранилищем: ID, Level (= level родителя + 1), CreatedAt = UpdatedAt.
	// Возвращённый комментарий имеет пустой (не nil) Replies.
	// Ошибки: ErrParentNotFound.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// UpdateContent меняет текст и updated_at.
	// Если запись не найдена — ErrNotFound.
	UpdateContent(ctx context.Context, id int64, content string, at time.Time) (*models.Comment, error)

	// DeleteComment удаляет комментарий вместе со всеми потомками.
	// Если запись не найдена — ErrNotFound.
	DeleteComment(ctx context.Context, id int64) error

	// CommentByID возвращает комментарий без ответов (Replies == nil).
	// Если запись не найдена — ErrNotFound.
	CommentByID(ctx context.Context, id int64) (*models.Comment, error)

	// ListByTarget возвращает все комментарии элемента контента плоским списком,
	// сначала новые (created_at DESC, id DESC).
	ListByTarget(ctx context.Context, target models.Target) ([]models.Comment, error)

	// ListByUser возвращает корневые комментарии пользователя, сначала новые.
	ListByUser(ctx context.Context, userID int64, limit int32) ([]models.Comment, error)

	// CountByTarget — количество комментариев (всех уровней) элемента контента.
	CountByTarget(ctx context.Context, target models.Target) (int64, error)

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}
