package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/pribylovaa/gamerfeeds/internal/commenttree"
	"github.com/pribylovaa/gamerfeeds/internal/models"
)

// Event — декодированное событие; заполнено ровно одно из полей Created/Updated/Deleted.
type Event struct {
	Topic   string
	Created *CommentCreated
	Updated *CommentUpdated
	Deleted *CommentDeleted
}

// Decode разбирает полезную нагрузку по теме.
func Decode(topic string, data []byte) (Event, error) {
	ev := Event{Topic: topic}

	var err error
	switch topic {
	case TopicCommentCreated:
		ev.Created = &CommentCreated{}
		err = json.Unmarshal(data, ev.Created)
		if err == nil && ev.Created.Comment == nil {
			err = fmt.Errorf("empty comment")
		}
	case TopicCommentUpdated:
		ev.Updated = &CommentUpdated{}
		err = json.Unmarshal(data, ev.Updated)
		if err == nil && ev.Updated.Comment == nil {
			err = fmt.Errorf("empty comment")
		}
	case TopicCommentDeleted:
		ev.Deleted = &CommentDeleted{}
		err = json.Unmarshal(data, ev.Deleted)
	default:
		return Event{}, fmt.Errorf("unknown topic %q", topic)
	}

	if err != nil {
		return Event{}, fmt.Errorf("decode %s: %w", topic, err)
	}

	return ev, nil
}

// Target — ветка, которую затрагивает событие.
func (e Event) Target() models.Target {
	switch {
	case e.Created != nil:
		return e.Created.Comment.Target()
	case e.Updated != nil:
		return e.Updated.Comment.Target()
	case e.Deleted != nil:
		return e.Deleted.Target()
	default:
		return models.Target{}
	}
}

// Apply применяет событие к лесу его ветки.
// Для updated у замены сбрасываются Replies, чтобы сохранились локальные ответы.
func (e Event) Apply(f models.Forest) (models.Forest, error) {
	switch {
	case e.Created != nil:
		node := *e.Created.Comment
		if node.Replies == nil {
			node.Replies = models.Forest{}
		}
		return commenttree.Insert(f, node)
	case e.Updated != nil:
		node := *e.Updated.Comment
		node.Replies = nil
		return commenttree.Replace(f, node.ID, &node), nil
	case e.Deleted != nil:
		return commenttree.Remove(f, e.Deleted.ID), nil
	default:
		return f, nil
	}
}

// NATSSubscriber получает события из NATS.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber подключается к NATS с автоматическим переподключением.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	defaults := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}

	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return &NATSSubscriber{conn: nc}, nil
}

// Subscribe возвращает канал декодированных событий по теме (поддерживает
// wildcard, например TopicAll). Нераспознанные сообщения пропускаются.
// cancel отписывается и закрывает канал.
func (s *NATSSubscriber) Subscribe(topic string) (<-chan Event, func(), error) {
	ch := make(chan Event, 64)

	var (
		mu     sync.Mutex
		closed bool
		once   sync.Once
	)

	sub, err := s.conn.Subscribe(topic, func(msg *nats.Msg) {
		ev, err := Decode(msg.Subject, msg.Data)
		if err != nil {
			slog.Default().Warn("events: skip message", "subject", msg.Subject, "err", err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}

		select {
		case ch <- ev:
		default:
			slog.Default().Warn("events: subscriber is slow, message dropped", "subject", msg.Subject)
		}
	})
	if err != nil {
		close(ch)
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	// Flush гарантирует, что подписка зарегистрирована на сервере до возврата.
	if err := s.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		close(ch)
		return nil, nil, fmt.Errorf("flushing subscription: %w", err)
	}

	cancel := func() {
		once.Do(func() {
			_ = sub.Unsubscribe()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}

	return ch, cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
