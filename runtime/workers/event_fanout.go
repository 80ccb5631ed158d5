package workers

import (
	"context"
	"log/slog"

	"easychat/contract"
	"easychat/domain/event"
)

// SinkSource resolves the current set of subscribers at delivery time,
// so sinks registered after the worker started still receive batches.
type SinkSource interface {
	Sinks() []contract.EventSink
}

// EventFanout broadcasts change batches to every active subscriber.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// durability, or retries. EventFanout is not a message broker: a failing
// sink is logged and stays subscribed, the batch is simply lost for it.
//
// All deliveries happen on the worker's single goroutine, so consumers see
// batches serialized, never concurrently.
type EventFanout struct {
	Log     *slog.Logger
	Batches chan event.Batch
	source  SinkSource
}

func NewEventFanout(log *slog.Logger, batches chan event.Batch, source SinkSource) *EventFanout {
	return &EventFanout{Log: log, Batches: batches, source: source}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case batch := <-w.Batches:
			w.Fanout(ctx, batch)
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping batch delivery")
			return nil
		}
	}
}

// Fanout delivers one batch to each subscriber. Sink errors never interrupt
// delivery to the remaining sinks.
func (w *EventFanout) Fanout(ctx context.Context, batch event.Batch) {
	for _, sink := range w.source.Sinks() {
		if err := sink.Consume(ctx, batch); err != nil {
			w.Log.Error("sink failed to consume batch", "error", err)
		}
	}
}
