// events публикует изменения комментариев, чтобы подписчики (другие инстансы,
// CLI watch, фронтенд-шлюзы) синхронизировали свои копии веток без перезагрузки.
package events

import (
	"context"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// Темы событий.
const (
	TopicCommentCreated = "gamerfeeds.comment.created"
	TopicCommentUpdated = "gamerfeeds.comment.updated"
	TopicCommentDeleted = "gamerfeeds.comment.deleted"

	// TopicAll — wildcard-подписка на все события комментариев.
	TopicAll = "gamerfeeds.comment.>"
)

// CommentCreated — создан корень или ответ (Replies пустой).
type CommentCreated struct {
	Comment *models.Comment `json:"comment"`
}

// CommentUpdated — изменён текст; Replies не передаются.
type CommentUpdated struct {
	Comment *models.Comment `json:"comment"`
}

// CommentDeleted — удалён узел вместе с поддеревом.
type CommentDeleted struct {
	ID          int64              `json:"id"`
	ContentType models.ContentType `json:"content_type"`
	ContentID   int64              `json:"content_id"`
}

// Target возвращает ветку, из которой удалён узел.
func (e CommentDeleted) Target() models.Target {
	return models.Target{Type: e.ContentType, ID: e.ContentID}
}

// Publisher — интерфейс отправки событий.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
