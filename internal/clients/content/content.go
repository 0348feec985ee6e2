// content проверяет существование элемента каталога (игры, новости, обсуждения),
// к которому пытаются привязать комментарий.
package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// TargetChecker — контракт проверки цели.
type TargetChecker interface {
	Exists(ctx context.Context, target models.Target) (bool, error)
}

// AlwaysExists — проверка отключена (content.base_url пуст).
type AlwaysExists struct{}

func (AlwaysExists) Exists(context.Context, models.Target) (bool, error) { return true, nil }

// HTTPChecker ходит в API каталога: GET {base}/games/{id}, /news/{id}, /discussions/{id}.
type HTTPChecker struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPChecker создаёт клиента с таймаутом на запрос.
func NewHTTPChecker(baseURL string, timeout time.Duration) (*HTTPChecker, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("content: parse base url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("content: unsupported scheme %q", u.Scheme)
	}

	return &HTTPChecker{
		base:   u,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// New выбирает реализацию по конфигурации.
func New(baseURL string, timeout time.Duration) (TargetChecker, error) {
	if baseURL == "" {
		return AlwaysExists{}, nil
	}

	return NewHTTPChecker(baseURL, timeout)
}

// Exists: 200 — есть, 404 — нет, прочее — ошибка.
func (c *HTTPChecker) Exists(ctx context.Context, target models.Target) (bool, error) {
	const op = "clients/content/Exists"

	collection, err := collectionOf(target.Type)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	u := c.base.JoinPath(collection, strconv.FormatInt(target.ID, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}
}

func collectionOf(t models.ContentType) (string, error) {
	switch t {
	case models.ContentGame:
		return "games", nil
	case models.ContentNews:
		return "news", nil
	case models.ContentDiscussion:
		return "discussions", nil
	default:
		return "", fmt.Errorf("unknown content type %q", t)
	}
}
