package events

import "context"

// NoopPublisher — Publisher, который ничего не делает (NATS не настроен).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
