package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/gamerfeeds/internal/auth"
	apierrors "github.com/pribylovaa/gamerfeeds/internal/errors"
	"github.com/pribylovaa/gamerfeeds/internal/models"
	"github.com/pribylovaa/gamerfeeds/internal/service"
)

// CommentService — операции сервисного слоя, которые использует REST API.
type CommentService interface {
	CreateComment(ctx context.Context, user models.User, in service.CreateCommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, user models.User, id int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, user models.User, id int64) error
	Thread(ctx context.Context, target models.Target) (models.Forest, error)
	Subtree(ctx context.Context, target models.Target, parentID int64) (models.Forest, error)
	CommentByID(ctx context.Context, id int64) (*models.Comment, error)
	CommentsByUser(ctx context.Context, userID int64, limit int32) (models.Forest, error)
	CountByTarget(ctx context.Context, target models.Target) (int64, error)
}

// Handlers агрегирует зависимости REST-обработчиков.
type Handlers struct {
	Comments CommentService
}

func New(svc CommentService) *Handlers {
	return &Handlers{Comments: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// int64Param — положительный int64 из path-параметра.
func int64Param(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, apierrors.ErrBadRequest
	}
	return v, nil
}

// targetParams — {content_type}/{content_id} из пути.
func targetParams(r *http.Request) (models.Target, error) {
	ct, err := models.ParseContentType(chi.URLParam(r, "content_type"))
	if err != nil {
		return models.Target{}, apierrors.ErrBadRequest
	}

	id, err := int64Param(r, "content_id")
	if err != nil {
		return models.Target{}, err
	}

	return models.Target{Type: ct, ID: id}, nil
}

// user — аутентифицированный пользователь; роуты записи закрыты RequireUser,
// пустой User дойдёт до сервиса и вернётся как unauthenticated.
func user(r *http.Request) models.User {
	u, _ := auth.UserFrom(r.Context())
	return u
}
