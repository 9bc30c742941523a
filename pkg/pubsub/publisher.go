package pubsub

import "context"

type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(context.Context, string, *Pack) error
	Stop(context.Context) error
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher dropping every message. It is used
// when no broker is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *Pack) error { return nil }
func (noopPublisher) Stop(context.Context) error                   { return nil }
