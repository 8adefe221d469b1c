package event

import (
	"context"

	"ideaboard/internal/domain"
)

// VotePublisher announces completed vote toggles
type VotePublisher interface {
	Publish(ctx context.Context, evt domain.VoteEvent) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.VoteEvent) error { return nil }
func (NopPublisher) Close() error                                    { return nil }
