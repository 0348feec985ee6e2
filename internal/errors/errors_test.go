package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/gamerfeeds/internal/auth"
	"github.com/pribylovaa/gamerfeeds/internal/service"
)

func TestToHTTP_Mapping(t *testing.T) {
	wrap := func(err error) error { return fmt.Errorf("service/comments/op: %w", err) }

	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"bad_request", wrap(ErrBadRequest), http.StatusBadRequest, "invalid_argument"},
		{"invalid_argument", wrap(service.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{"self_reply", wrap(service.ErrSelfReply), http.StatusBadRequest, "self_reply"},
		{"max_depth", wrap(service.ErrMaxDepthExceeded), http.StatusBadRequest, "max_depth_exceeded"},
		{"unauthenticated", wrap(service.ErrUnauthenticated), http.StatusUnauthorized, "unauthenticated"},
		{"bad_token", wrap(auth.ErrInvalidToken), http.StatusUnauthorized, "unauthenticated"},
		{"expired_token", wrap(auth.ErrTokenExpired), http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", wrap(service.ErrForbidden), http.StatusForbidden, "permission_denied"},
		{"not_found", wrap(service.ErrNotFound), http.StatusNotFound, "not_found"},
		{"target_not_found", wrap(service.ErrTargetNotFound), http.StatusNotFound, "content_not_found"},
		{"parent_not_found", wrap(service.ErrParentNotFound), http.StatusNotFound, "parent_not_found"},
		{"canceled", wrap(context.Canceled), StatusClientClosedRequest, "canceled"},
		{"deadline", wrap(context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"internal", wrap(service.ErrInternal), http.StatusInternalServerError, "internal"},
		{"unknown", fmt.Errorf("pgx: connection reset"), http.StatusInternalServerError, "internal"},
		{"nil", nil, http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestWriteError_EnvelopeAndRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/comments/1", nil)
	r.Header.Set("X-Request-Id", "rid-123")
	w := httptest.NewRecorder()

	WriteError(w, r, fmt.Errorf("op: %w", service.ErrForbidden))

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "permission_denied", body.Error.Code)
	require.Equal(t, "rid-123", body.Error.RequestID)
	require.NotContains(t, w.Body.String(), "op:")
}
