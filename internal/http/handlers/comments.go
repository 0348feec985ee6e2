package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/gamerfeeds/internal/errors"
	"github.com/pribylovaa/gamerfeeds/internal/models"
	"github.com/pribylovaa/gamerfeeds/internal/service"
)

// CreateCommentRequest — тело POST /comments/{content_type}.
type CreateCommentRequest struct {
	ContentID int64  `json:"content_id"`
	Content   string `json:"content"`
	ParentID  *int64 `json:"parent_id,omitempty"`
}

// UpdateCommentRequest — тело PUT /comments/{id}.
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CountResponse — ответ GET /comments/{content_type}/{content_id}/count.
type CountResponse struct {
	Total int64 `json:"total"`
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	ct, err := models.ParseContentType(chi.URLParam(r, "content_type"))
	if err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	var in CreateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	out, err := h.Comments.CreateComment(r.Context(), user(r), service.CreateCommentInput{
		Target:   models.Target{Type: ct, ID: in.ContentID},
		ParentID: in.ParentID,
		Content:  in.Content,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, out)
}

// ListComments — ветка элемента контента; с ?parent_id= — ответы одного узла.
func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	target, err := targetParams(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var forest models.Forest
	if v := r.URL.Query().Get("parent_id"); v != "" {
		parentID, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil || parentID <= 0 {
			apierrors.WriteError(w, r, apierrors.ErrBadRequest)
			return
		}

		forest, err = h.Comments.Subtree(r.Context(), target, parentID)
	} else {
		forest, err = h.Comments.Thread(r.Context(), target)
	}
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, forest)
}

func (h *Handlers) CountComments(w http.ResponseWriter, r *http.Request) {
	target, err := targetParams(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	n, err := h.Comments.CountByTarget(r.Context(), target)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Total: n})
}

func (h *Handlers) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out, err := h.Comments.CommentByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in UpdateCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, apierrors.ErrBadRequest)
		return
	}

	out, err := h.Comments.UpdateComment(r.Context(), user(r), id, in.Content)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.Comments.DeleteComment(r.Context(), user(r), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUserComments — корневые комментарии пользователя, ?limit= (0 — по умолчанию).
func (h *Handlers) ListUserComments(w http.ResponseWriter, r *http.Request) {
	userID, err := int64Param(r, "user_id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var limit int32
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			apierrors.WriteError(w, r, apierrors.ErrBadRequest)
			return
		}

		limit = int32(n)
	}

	out, err := h.Comments.CommentsByUser(r.Context(), userID, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
