package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pribylovaa/gamerfeeds/internal/commenttree"
	"github.com/pribylovaa/gamerfeeds/internal/events"
	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// API — операции сервера, нужные ThreadView (реализуется *Client).
type API interface {
	Thread(ctx context.Context, target models.Target) (models.Forest, error)
	Create(ctx context.Context, target models.Target, parentID *int64, content string) (*models.Comment, error)
	Update(ctx context.Context, id int64, content string) (*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// ThreadView держит текущий лес одной ветки. Лес загружается один раз,
// дальше успешные изменения применяются локально через commenttree.
// Если локальная копия отстала (родителя нет), ветка перечитывается.
type ThreadView struct {
	api    API
	target models.Target

	mu     sync.RWMutex
	forest models.Forest
	loads  int
}

func NewThreadView(api API, target models.Target) *ThreadView {
	return &ThreadView{api: api, target: target, forest: models.Forest{}}
}

// Target — ветка, которую держит view.
func (v *ThreadView) Target() models.Target { return v.target }

// Load перечитывает ветку с сервера.
func (v *ThreadView) Load(ctx context.Context) error {
	f, err := v.api.Thread(ctx, v.target)
	if err != nil {
		return fmt.Errorf("client/ThreadView.Load: %w", err)
	}

	v.mu.Lock()
	v.forest = f
	v.loads++
	v.mu.Unlock()

	return nil
}

// Forest — текущий лес. Лес неизменяем, его можно читать без копирования.
func (v *ThreadView) Forest() models.Forest {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.forest
}

// Loads — сколько раз ветка читалась с сервера.
func (v *ThreadView) Loads() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.loads
}

// Post публикует комментарий и вставляет его в лес.
func (v *ThreadView) Post(ctx context.Context, parentID *int64, content string) (*models.Comment, error) {
	c, err := v.api.Create(ctx, v.target, parentID, content)
	if err != nil {
		return nil, err
	}

	node := *c
	if err := v.apply(ctx, func(f models.Forest) (models.Forest, error) {
		return commenttree.Insert(f, node)
	}); err != nil {
		return nil, err
	}

	return c, nil
}

// Edit меняет текст; позиция узла и его ответы сохраняются.
func (v *ThreadView) Edit(ctx context.Context, id int64, content string) (*models.Comment, error) {
	c, err := v.api.Update(ctx, id, content)
	if err != nil {
		return nil, err
	}

	node := *c
	node.Replies = nil
	if err := v.apply(ctx, func(f models.Forest) (models.Forest, error) {
		return commenttree.Replace(f, id, &node), nil
	}); err != nil {
		return nil, err
	}

	return c, nil
}

// Delete удаляет комментарий и вырезает поддерево из леса.
func (v *ThreadView) Delete(ctx context.Context, id int64) error {
	if err := v.api.Delete(ctx, id); err != nil {
		return err
	}

	return v.apply(ctx, func(f models.Forest) (models.Forest, error) {
		return commenttree.Remove(f, id), nil
	})
}

// ApplyEvent применяет событие чужой ветки — игнорируется.
// Уже известный узел из comment.created не вставляется повторно.
func (v *ThreadView) ApplyEvent(ctx context.Context, ev events.Event) error {
	if ev.Target() != v.target {
		return nil
	}

	return v.apply(ctx, func(f models.Forest) (models.Forest, error) {
		if ev.Created != nil && ev.Created.Comment != nil {
			if _, ok := commenttree.Find(f, ev.Created.Comment.ID); ok {
				return f, nil
			}
		}
		return ev.Apply(f)
	})
}

func (v *ThreadView) apply(ctx context.Context, fn func(models.Forest) (models.Forest, error)) error {
	v.mu.Lock()
	next, err := fn(v.forest)
	if err == nil {
		v.forest = next
	}
	v.mu.Unlock()

	if errors.Is(err, commenttree.ErrParentNotFound) {
		return v.Load(ctx)
	}

	return err
}

// Render печатает лес с отступом по глубине.
func Render(w io.Writer, f models.Forest) error {
	if len(f) == 0 {
		_, err := fmt.Fprintln(w, "(no comments)")
		return err
	}

	var werr error
	commenttree.Walk(f, func(c models.Comment, depth int) bool {
		edited := ""
		if c.IsEdited() {
			edited = " (edited)"
		}

		_, werr = fmt.Fprintf(w, "%s#%d %s%s: %s\n",
			strings.Repeat("  ", depth), c.ID, c.Username, edited, c.Content)
		return werr == nil
	})

	return werr
}
