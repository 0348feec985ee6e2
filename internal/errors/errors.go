// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход принимает ошибку сервисного слоя (или auth), на выход даёт:
//   - HTTP-статус;
//   - короткий стабильный code и безопасное message без утечки деталей.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/gamerfeeds/internal/auth"
	"github.com/pribylovaa/gamerfeeds/internal/service"
)

// Нестандартный код "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// APIError — единый формат для фронта.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ErrBadRequest — ошибка разбора запроса на уровне транспорта (тело, path/query параметры).
var ErrBadRequest = stderrors.New("bad request")

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

// Порядок важен: первое совпадение по errors.Is.
var table = []mapping{
	{ErrBadRequest, http.StatusBadRequest, "invalid_argument", "invalid request"},
	{service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{service.ErrSelfReply, http.StatusBadRequest, "self_reply", "cannot reply to own comment"},
	{service.ErrMaxDepthExceeded, http.StatusBadRequest, "max_depth_exceeded", "max depth exceeded"},
	{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "unauthenticated"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, "unauthenticated", "invalid token"},
	{auth.ErrTokenExpired, http.StatusUnauthorized, "unauthenticated", "token expired"},
	{service.ErrForbidden, http.StatusForbidden, "permission_denied", "permission denied"},
	{service.ErrNotFound, http.StatusNotFound, "not_found", "comment not found"},
	{service.ErrTargetNotFound, http.StatusNotFound, "content_not_found", "content not found"},
	{service.ErrParentNotFound, http.StatusNotFound, "parent_not_found", "parent comment not found"},
	{context.Canceled, StatusClientClosedRequest, "canceled", "canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
}

// ToHTTP конвертирует ошибку в HTTP-статус и тело ответа.
// nil и неизвестные ошибки — 500/internal: не отправляем "200 OK" с телом ошибки.
func ToHTTP(err error) (int, ErrorResponse) {
	if err != nil {
		for _, m := range table {
			if stderrors.Is(err, m.target) {
				return m.status, ErrorResponse{Error: APIError{Code: m.code, Message: m.message}}
			}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: "internal error",
		},
	}
}

// WriteError пишет статус и тело, добавляя request_id из X-Request-Id.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
