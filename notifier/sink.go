package notifier

import (
	"context"

	"easychat/domain/event"
)

// Sink adapts the notifier to the realtime subscription: each "added"
// change in a batch becomes one independent trigger invocation.
type Sink struct {
	notifier *Notifier
}

func NewSink(n *Notifier) *Sink {
	return &Sink{notifier: n}
}

// Consume implements contract.EventSink.
func (s *Sink) Consume(ctx context.Context, batch event.Batch) error {
	for _, change := range batch.Changes {
		if change.Kind != event.Added {
			continue
		}
		snap := Snapshot{
			Author:    change.Message.Author,
			Body:      change.Message.Body,
			CreatedAt: change.Message.CreatedAt,
		}
		if err := s.notifier.HandleCreated(ctx, &snap); err != nil {
			return err
		}
	}
	return nil
}
