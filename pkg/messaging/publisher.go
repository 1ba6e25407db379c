// Package messaging defines the event publishing contract used by the order
// engine. Implementations live in pkg/nats; a no-op publisher is provided for
// deployments without a broker.
package messaging

import "context"

// Publisher delivers domain events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// NoopPublisher discards every event. Used when NATS is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ any) error { return nil }
