// Package projection builds local feed state from observed change batches.
// Handles ordering, deduplication, and upserts.
// Does not emit events or interact with any UI directly.
package projection

import (
	"time"

	"easychat/domain/event"

	"github.com/google/uuid"
)

// Entry is the client-local projection of one message, keyed 1:1 by ID.
type Entry struct {
	ID        uuid.UUID
	Author    string
	Body      string
	AvatarRef string
	CreatedAt time.Time
}

// DeltaKind describes what a rendering step must do for one entry.
type DeltaKind int

const (
	// Appended means a new entry was added at the end of the feed.
	Appended DeltaKind = iota
	// Updated means an existing entry's displayed fields were refreshed.
	Updated
)

// Delta is one unit of work for the rendering step.
type Delta struct {
	Kind  DeltaKind
	Entry Entry
}

// Feed holds the ordered, append-mostly feed state.
// At most one entry exists per message ID: redelivery of the same ID
// updates in place instead of duplicating.
type Feed struct {
	entries []Entry
	index   map[uuid.UUID]int
}

func NewFeed() *Feed {
	return &Feed{index: make(map[uuid.UUID]int)}
}

// Apply folds a change batch into the feed and returns the deltas a renderer
// needs to patch its display. Only "added" changes are acted on: messages are
// immutable, so modifications and removals never occur in this system.
//
// The upsert is idempotent by ID. Appending at the end is correct because
// delivery order follows CreatedAt order.
func (f *Feed) Apply(batch event.Batch) []Delta {
	var deltas []Delta
	for _, change := range batch.Changes {
		if change.Kind != event.Added {
			continue
		}
		entry := Entry{
			ID:        change.Message.ID,
			Author:    change.Message.Author,
			Body:      change.Message.Body,
			AvatarRef: change.Message.AvatarRef,
			CreatedAt: change.Message.CreatedAt,
		}
		if pos, ok := f.index[entry.ID]; ok {
			f.entries[pos] = entry
			deltas = append(deltas, Delta{Kind: Updated, Entry: entry})
			continue
		}
		f.index[entry.ID] = len(f.entries)
		f.entries = append(f.entries, entry)
		deltas = append(deltas, Delta{Kind: Appended, Entry: entry})
	}
	return deltas
}

// Entries returns the feed in display order. The slice is a copy.
func (f *Feed) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Len reports the number of distinct entries.
func (f *Feed) Len() int {
	return len(f.entries)
}
