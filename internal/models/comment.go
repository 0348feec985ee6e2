// Package models содержит доменные сущности сервиса комментариев gamerfeeds.
package models

import (
	"fmt"
	"strings"
	"time"
)

// ContentType — тип контента, к которому привязана ветка комментариев.
type ContentType string

const (
	ContentGame       ContentType = "game"
	ContentNews       ContentType = "news"
	ContentDiscussion ContentType = "discussion"
)

// ParseContentType нормализует строку (trim + lower) и проверяет, что тип известен.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.Valid() {
		return "", fmt.Errorf("unknown content type %q", s)
	}

	return ct, nil
}

// Valid сообщает, входит ли тип в список поддерживаемых.
func (c ContentType) Valid() bool {
	switch c {
	case ContentGame, ContentNews, ContentDiscussion:
		return true
	default:
		return false
	}
}

// Target — элемент контента (игра/новость/обсуждение), к которому «подвешен» лес комментариев.
type Target struct {
	Type ContentType `json:"content_type"`
	ID   int64       `json:"content_id"`
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Type, t.ID)
}

// Comment — узел дерева комментариев.
// Важно:
//   - ID назначает хранилище, он уникален в пределах всего сервиса;
//   - ParentID, ContentType/ContentID, UserID неизменяемы после создания;
//   - Level — глубина узла (корень = 0);
//   - UpdatedAt == CreatedAt означает «не редактировался»;
//   - Replies — прямые ответы, сначала новые. У листа это пустой (не nil) срез,
//     nil означает «ответы не переданы» (ответ на PUT).
type Comment struct {
	ID          int64       `json:"id"`
	Content     string      `json:"content"`
	UserID      int64       `json:"user_id"`
	Username    string      `json:"username"`
	ParentID    *int64      `json:"parent_id"`
	ContentType ContentType `json:"content_type"`
	ContentID   int64       `json:"content_id"`
	Level       int32       `json:"level"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Replies     Forest      `json:"replies"`
}

// Forest — упорядоченная последовательность корневых комментариев.
type Forest []Comment

// Target возвращает элемент контента, к которому относится комментарий.
func (c Comment) Target() Target {
	return Target{Type: c.ContentType, ID: c.ContentID}
}

// IsRoot сообщает, что у комментария нет родителя.
func (c Comment) IsRoot() bool {
	return c.ParentID == nil
}

// IsEdited сообщает, менялся ли текст после создания.
func (c Comment) IsEdited() bool {
	return !c.UpdatedAt.Equal(c.CreatedAt)
}

// User — аутентифицированный пользователь (из claims bearer-токена).
type User struct {
	ID          int64
	Username    string
	IsSuperuser bool
}

// Int64 — хелпер для опциональных идентификаторов.
func Int64(v int64) *int64 { return &v }
