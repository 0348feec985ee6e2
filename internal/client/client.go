// client — HTTP-клиент REST API комментариев и локальная синхронизированная копия ветки.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// APIError — ответ сервера с envelope {error:{code,message,request_id}}.
type APIError struct {
	Status    int
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("api: %d %s: %s (request_id=%s)", e.Status, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode сообщает, что err — APIError с данным кодом.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client ходит в REST API сервиса комментариев.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// New создаёт клиента; token может быть пустым для чтения.
func New(baseURL, token string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}

	return &Client{
		base:  u,
		http:  &http.Client{Timeout: timeout},
		token: token,
	}, nil
}

// Thread — вся ветка элемента контента.
func (c *Client) Thread(ctx context.Context, target models.Target) (models.Forest, error) {
	const op = "client/Thread"

	var out models.Forest
	path := []string{"comments", string(target.Type), strconv.FormatInt(target.ID, 10)}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out == nil {
		out = models.Forest{}
	}
	return out, nil
}

// Create публикует корень (parentID == nil) или ответ.
func (c *Client) Create(ctx context.Context, target models.Target, parentID *int64, content string) (*models.Comment, error) {
	const op = "client/Create"

	body := map[string]any{
		"content_id": target.ID,
		"content":    content,
	}
	if parentID != nil {
		body["parent_id"] = *parentID
	}

	var out models.Comment
	if err := c.do(ctx, http.MethodPost, []string{"comments", string(target.Type)}, body, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.Replies == nil {
		out.Replies = models.Forest{}
	}
	return &out, nil
}

// Update меняет текст; Replies в ответе nil.
func (c *Client) Update(ctx context.Context, id int64, content string) (*models.Comment, error) {
	const op = "client/Update"

	var out models.Comment
	path := []string{"comments", strconv.FormatInt(id, 10)}
	if err := c.do(ctx, http.MethodPut, path, map[string]string{"content": content}, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// Delete удаляет комментарий вместе с поддеревом.
func (c *Client) Delete(ctx context.Context, id int64) error {
	const op = "client/Delete"

	if err := c.do(ctx, http.MethodDelete, []string{"comments", strconv.FormatInt(id, 10)}, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method string, path []string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path...).String(), body)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	var env struct {
		Error APIError `json:"error"`
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &env); err != nil || env.Error.Code == "" {
		env.Error = APIError{Code: "http_" + strconv.Itoa(resp.StatusCode), Message: strings.TrimSpace(string(raw))}
	}

	env.Error.Status = resp.StatusCode
	return &env.Error
}
