package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// NATSPublisher публикует JSON-события в темы NATS.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher подключается к NATS с бесконечным переподключением.
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	defaults := []nats.Option{
		nats.Name("gamerfeeds-comments"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}

	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return &NATSPublisher{conn: nc}, nil
}

// Publish кодирует событие в JSON. Заголовок Nats-Msg-Id позволяет
// подписчикам (и JetStream, если он включён) отбрасывать дубли.
func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	msg := nats.NewMsg(topic)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, uuid.NewString())

	return p.conn.PublishMsg(msg)
}

// Flush дожидается подтверждения сервером всех отправленных сообщений.
func (p *NATSPublisher) Flush() error {
	return p.conn.Flush()
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
