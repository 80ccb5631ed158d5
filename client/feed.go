package client

import (
	"context"
	"log/slog"
	"sync"

	"easychat/contract"
	"easychat/domain/event"
	"easychat/projection"
)

// FeedView is the presentation half of the feed: it patches displayed nodes
// from reducer deltas and reveals the newest content.
type FeedView interface {
	Patch(deltas []projection.Delta)
	RevealLatest()
}

// FeedSynchronizer holds the standing subscription to the message collection
// and converts each incremental change into an idempotent view patch.
//
// Data arrival is handled by the pure projection.Feed reducer; presentation
// by the FeedView. Batches are delivered serialized by the fanout worker, so
// no locking is needed around the reducer beyond the handle bookkeeping.
type FeedSynchronizer struct {
	log  *slog.Logger
	feed *projection.Feed
	view FeedView

	mu      sync.Mutex
	dispose contract.Disposer
}

func NewFeedSynchronizer(log *slog.Logger, view FeedView) *FeedSynchronizer {
	return &FeedSynchronizer{log: log, feed: projection.NewFeed(), view: view}
}

// Activate opens the single standing subscription. The returned handle is
// owned by the synchronizer and released by Close.
func (f *FeedSynchronizer) Activate(store contract.MessageStore) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dispose != nil {
		return
	}
	f.dispose = store.Subscribe(f)
}

// Close releases the subscription. Safe to call more than once.
func (f *FeedSynchronizer) Close() {
	f.mu.Lock()
	dispose := f.dispose
	f.dispose = nil
	f.mu.Unlock()
	if dispose != nil {
		dispose()
	}
}

// Consume implements contract.EventSink: fold the batch into feed state,
// patch the view, and reveal the newest content. A batch that changes
// nothing (redelivery, non-added kinds) leaves the view untouched.
func (f *FeedSynchronizer) Consume(ctx context.Context, batch event.Batch) error {
	deltas := f.feed.Apply(batch)
	if len(deltas) == 0 {
		return nil
	}
	f.view.Patch(deltas)
	f.view.RevealLatest()
	return nil
}

// Feed exposes the current reduced state, for rendering a full page.
func (f *FeedSynchronizer) Feed() *projection.Feed {
	return f.feed
}
